package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	config "github.com/maheshrc27/trendqueue/configs"
	"github.com/maheshrc27/trendqueue/pkg/utils"
)

// operator-token prints a signed operator JWT for the review dashboard.
func main() {
	operator := flag.String("operator", "admin", "operator name stored in the token")
	ttl := flag.Duration("ttl", 30*24*time.Hour, "token lifetime")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()
	if cfg.SecretKey == "" {
		log.Fatal("SECRET_KEY is not set; operator auth is disabled")
	}

	token, err := utils.GenerateToken(cfg.SecretKey, *operator, *ttl)
	if err != nil {
		log.Fatalf("Failed to generate token: %v", err)
	}

	fmt.Println(token)
}
