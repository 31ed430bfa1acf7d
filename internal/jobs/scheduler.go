package job

import (
	"fmt"

	"github.com/robfig/cron"
)

// Cron specs carry a leading seconds field.
const (
	Spec3AM         = "0 0 3 * * *"
	Spec3PM         = "0 0 15 * * *"
	SpecTokenChecks = "@every 00h10m00s"
)

type Jobs struct {
	Trending *TrendingRefreshJob
	Posting  *PostingJob
	Tokens   *TokenRefreshJob
}

// Schedule registers every job on c. refreshSpec drives the trending refresh.
func Schedule(c *cron.Cron, refreshSpec string, jobs Jobs) error {
	entries := []struct {
		spec string
		fn   func()
	}{
		{refreshSpec, jobs.Trending.Refresh},
		{Spec3AM, jobs.Posting.Post3AM},
		{Spec3PM, jobs.Posting.Post3PM},
		{SpecTokenChecks, jobs.Tokens.RefreshTokens},
	}

	for _, e := range entries {
		if err := c.AddFunc(e.spec, e.fn); err != nil {
			return fmt.Errorf("invalid cron spec %q: %w", e.spec, err)
		}
	}
	return nil
}
