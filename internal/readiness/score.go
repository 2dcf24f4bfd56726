// Package readiness computes drink-readiness scores and drinking windows for
// bottles, and runs the batch backfill that keeps them current.
package readiness

import (
	"fmt"
	"strings"

	"github.com/vincave/vincave/pkg/models"
)

// Version is the current readiness schema version. Bottles stamped with this
// version and a non-nil updated-at are fresh and skipped under default mode.
// Bump whenever the scoring algorithm changes in a way that should trigger a
// stale_or_missing backfill.
const Version = 3

const minVintage = 1900

// Input carries the bottle and wine facts the scorer reads. Region and Grapes
// feed only the low-confidence keyword fallback for reds.
type Input struct {
	Vintage *int
	Color   models.Color
	Region  string
	Grapes  []string
	Profile *models.StyleProfile
}

// Result is the outcome of scoring one bottle. WindowStart/WindowEnd are nil
// only for StatusUnknown; otherwise WindowStart <= WindowEnd always holds.
type Result struct {
	Score       int
	Status      models.ReadinessStatus
	WindowStart *int
	WindowEnd   *int
	Confidence  models.Confidence
	Reasons     []string
}

// potential is the aging-potential tier of a red wine.
type potential string

const (
	potentialLow    potential = "low"
	potentialMedium potential = "medium"
	potentialHigh   potential = "high"
)

// thresholds fixes the four age boundaries for a red tier, in years from
// vintage.
type thresholds struct {
	holdUntil int
	peakStart int
	peakEnd   int
	maxAge    int
}

var redThresholds = map[potential]thresholds{
	potentialHigh:   {holdUntil: 4, peakStart: 6, peakEnd: 15, maxAge: 25},
	potentialMedium: {holdUntil: 2, peakStart: 3, peakEnd: 8, maxAge: 15},
	potentialLow:    {holdUntil: 1, peakStart: 2, peakEnd: 5, maxAge: 8},
}

// Keyword lists for the no-profile fallback. These are a replaceable
// heuristic, not a contract: tests pin the tier thresholds, not this list.
var (
	longAgingRegions = []string{
		"bordeaux", "burgundy", "barolo", "barbaresco", "brunello",
		"rioja", "ribera del duero", "hermitage", "chateauneuf",
		"châteauneuf", "priorat", "napa", "douro",
	}
	longAgingGrapes = []string{
		"cabernet", "nebbiolo", "syrah", "shiraz", "tempranillo",
		"sangiovese", "mourvedre", "mourvèdre", "tannat", "aglianico",
	}
	lightBodiedGrapes = []string{
		"gamay", "dolcetto", "lambrusco", "cinsault", "schiava", "zweigelt",
	}
)

// Score computes the readiness of a bottle from its wine facts. It is pure:
// no I/O, no clock reads (the caller supplies currentYear once per run), and
// it never fails — invalid input degrades to the Unknown branch.
func Score(in Input, currentYear int) Result {
	if in.Vintage == nil {
		return unknown("no vintage recorded; cannot estimate maturity")
	}
	vintage := *in.Vintage
	if vintage < minVintage || vintage > currentYear+1 {
		return unknown(fmt.Sprintf("vintage %d outside plausible range [%d, %d]",
			vintage, minVintage, currentYear+1))
	}

	age := currentYear - vintage
	if age < 0 {
		age = 0
	}

	switch in.Color {
	case models.ColorSparkling:
		return scoreSparkling(vintage, age)
	case models.ColorWhite, models.ColorRose:
		return scoreWhiteOrRose(vintage, age, in.Color)
	default:
		// Red, and anything unrecognized, takes the red path.
		return scoreRed(in, vintage, age)
	}
}

func unknown(reason string) Result {
	return Result{
		Score:      50,
		Status:     models.StatusUnknown,
		Confidence: models.ConfidenceLow,
		Reasons:    []string{reason},
	}
}

func scoreSparkling(vintage, age int) Result {
	r := Result{
		Confidence:  models.ConfidenceHigh,
		WindowStart: intPtr(vintage),
		WindowEnd:   intPtr(vintage + 5),
	}
	switch {
	case age < 1:
		r.Score = 80
		r.Status = models.StatusInWindow
		r.Reasons = []string{"young sparkling wine; fresh and ready now"}
	case age <= 5:
		r.Score = 85
		r.Status = models.StatusInWindow
		r.Reasons = []string{"sparkling wine within its best drinking years"}
	default:
		r.Score = 60
		r.Status = models.StatusPastPeak
		r.Reasons = []string{fmt.Sprintf("sparkling wine at %d years is past typical freshness", age)}
	}
	return clampWindow(r)
}

func scoreWhiteOrRose(vintage, age int, color models.Color) Result {
	label := "white"
	if color == models.ColorRose {
		label = "rosé"
	}

	r := Result{
		Confidence:  models.ConfidenceMedium,
		WindowStart: intPtr(vintage),
	}
	switch {
	case age < 1:
		r.Score = 75
		r.Status = models.StatusInWindow
		r.WindowEnd = intPtr(vintage + 3)
		r.Reasons = []string{fmt.Sprintf("very young %s; drinkable now, will settle shortly", label)}
	case age <= 3:
		r.Score = 85
		r.Status = models.StatusPeak
		r.WindowEnd = intPtr(vintage + 3)
		r.Reasons = []string{fmt.Sprintf("%s at %d years is in its peak freshness band", label, age)}
	case age <= 7:
		r.Score = 70
		r.Status = models.StatusInWindow
		r.WindowEnd = intPtr(vintage + 7)
		r.Reasons = []string{fmt.Sprintf("%s at %d years is still in window but maturing", label, age)}
	default:
		r.Score = 55
		r.Status = models.StatusPastPeak
		r.WindowEnd = intPtr(vintage + 7)
		r.Reasons = []string{fmt.Sprintf("%s at %d years is likely past peak", label, age)}
	}
	return clampWindow(r)
}

func scoreRed(in Input, vintage, age int) Result {
	tier, confidence, tierReason := redPotential(in)
	th := redThresholds[tier]

	r := Result{
		Confidence:  confidence,
		WindowStart: intPtr(vintage + th.holdUntil),
		WindowEnd:   intPtr(vintage + th.maxAge),
		Reasons:     []string{tierReason},
	}

	switch {
	case age < th.holdUntil:
		r.Score = 40
		r.Status = models.StatusTooYoung
		r.Reasons = append(r.Reasons,
			fmt.Sprintf("at %d years this red needs more time; hold until %d", age, vintage+th.holdUntil))
	case age < th.peakStart:
		r.Score = 65
		r.Status = models.StatusApproaching
		r.Reasons = append(r.Reasons,
			fmt.Sprintf("approaching peak; best from %d", vintage+th.peakStart))
	case age <= th.peakEnd:
		r.Score = 90
		r.Status = models.StatusPeak
		r.Reasons = append(r.Reasons,
			fmt.Sprintf("at %d years this red is in its peak drinking window", age))
	case age <= th.maxAge:
		r.Score = 75
		r.Status = models.StatusInWindow
		r.Reasons = append(r.Reasons,
			fmt.Sprintf("past peak band but still within window until %d", vintage+th.maxAge))
	default:
		r.Score = 50
		r.Status = models.StatusPastPeak
		r.Reasons = append(r.Reasons,
			fmt.Sprintf("at %d years this red is past its estimated window", age))
	}
	return clampWindow(r)
}

// redPotential derives the aging-potential tier of a red. With a structural
// profile the tier comes from the summed dimensions at high/medium
// confidence; without one it falls back to keyword heuristics at low
// confidence.
func redPotential(in Input) (potential, models.Confidence, string) {
	if p := in.Profile; p != nil {
		sum := clampDim(p.Body) + clampDim(p.Tannin) + clampDim(p.Acidity) +
			clampDim(p.Oak) + clampDim(p.Power)
		switch {
		case sum >= 18:
			return potentialHigh, models.ConfidenceHigh,
				fmt.Sprintf("structural profile (sum %d) indicates high aging potential", sum)
		case sum <= 12:
			return potentialLow, models.ConfidenceHigh,
				fmt.Sprintf("structural profile (sum %d) indicates low aging potential", sum)
		default:
			return potentialMedium, models.ConfidenceMedium,
				fmt.Sprintf("structural profile (sum %d) indicates medium aging potential", sum)
		}
	}

	region := strings.ToLower(in.Region)
	for _, kw := range longAgingRegions {
		if strings.Contains(region, kw) {
			return potentialHigh, models.ConfidenceLow,
				fmt.Sprintf("region %q is a classic long-aging region", in.Region)
		}
	}
	for _, grape := range in.Grapes {
		g := strings.ToLower(grape)
		for _, kw := range longAgingGrapes {
			if strings.Contains(g, kw) {
				return potentialHigh, models.ConfidenceLow,
					fmt.Sprintf("grape %q typically ages well", grape)
			}
		}
	}
	for _, grape := range in.Grapes {
		g := strings.ToLower(grape)
		for _, kw := range lightBodiedGrapes {
			if strings.Contains(g, kw) {
				return potentialLow, models.ConfidenceLow,
					fmt.Sprintf("grape %q is light-bodied and drinks early", grape)
			}
		}
	}
	return potentialMedium, models.ConfidenceLow,
		"no profile and no recognized region or grape; assuming medium aging potential"
}

// clampWindow enforces WindowStart <= WindowEnd. A crossed window means the
// inputs were inconsistent, so confidence drops to low.
func clampWindow(r Result) Result {
	if r.WindowStart != nil && r.WindowEnd != nil && *r.WindowStart > *r.WindowEnd {
		r.WindowEnd = intPtr(*r.WindowStart + 5)
		r.Confidence = models.ConfidenceLow
		r.Reasons = append(r.Reasons, "drink window was inconsistent and has been widened")
	}
	return r
}

// clampDim bounds a profile dimension to [1, 5]. Power is synthesized on a
// 1-10 scale by older profile runs and must not skew the sum.
func clampDim(v int) int {
	if v < 1 {
		return 1
	}
	if v > 5 {
		return 5
	}
	return v
}

func intPtr(v int) *int { return &v }
