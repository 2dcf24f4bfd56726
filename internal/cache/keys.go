package cache

import (
	"fmt"

	"github.com/google/uuid"
)

func BackfillJobKey(jobID uuid.UUID) string {
	return fmt.Sprintf("backfill:%s", jobID)
}

func RateLimitKey(keyPrefix string) string {
	return fmt.Sprintf("ratelimit:%s", keyPrefix)
}

func WineProfileJobKey(wineID uuid.UUID) string {
	return fmt.Sprintf("profile:%s", wineID)
}
