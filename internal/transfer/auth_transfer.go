package transfer

import "github.com/golang-jwt/jwt/v5"

type OperatorClaims struct {
	Operator string `json:"operator"`
	jwt.RegisteredClaims
}
