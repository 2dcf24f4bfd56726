package readiness

import (
	"github.com/vincave/vincave/pkg/models"
)

// Eligible reports whether a fetched bottle still needs scoring under the
// given mode. The filter runs in memory after the page fetch so the persisted
// query stays a plain ordered scan and the rules stay testable on their own.
func Eligible(mode models.BackfillMode, b *models.Bottle, currentVersion int) bool {
	switch mode {
	case models.ModeForceAll:
		return true
	case models.ModeStaleOrMissing:
		return readinessMissing(b) || b.ReadinessVersion != currentVersion
	default:
		// missing_only, and any unrecognized mode, takes the narrow rule.
		return readinessMissing(b)
	}
}

func readinessMissing(b *models.Bottle) bool {
	return b.ReadinessScore == nil || b.ReadinessStatus == nil || b.ReadinessUpdatedAt == nil
}
