package policy

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/phishguard/phishguard-backend/internal/domain/errors"
)

// Thresholds is the immutable calibration-derived cutpoint set for the
// threshold policy. TStar is the single optimal operating point kept for
// reporting; Low and High bound the gray zone.
type Thresholds struct {
	TStar        float64 `json:"t_star"`
	Low          float64 `json:"low"`
	High         float64 `json:"high"`
	GrayZoneRate float64 `json:"gray_zone_rate"`
}

// Defaults used when a calibration file carries only some of the alias
// fields. These match the calibration run the legacy file format shipped
// with and are only fallbacks for individual missing aliases; a missing
// gray_zone_rate is still a hard error.
const (
	defaultTStar = 0.35
	defaultLow   = 0.004
	defaultHigh  = 0.999
)

// NewThresholds validates the cutpoint set.
func NewThresholds(tStar, low, high, grayZoneRate float64) (Thresholds, error) {
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"t_star", tStar},
		{"low", low},
		{"high", high},
		{"gray_zone_rate", grayZoneRate},
	} {
		if math.IsNaN(f.value) || f.value < 0.0 || f.value > 1.0 {
			return Thresholds{}, errors.NewConfigurationError("INVALID_THRESHOLDS",
				fmt.Sprintf("%s must be in [0,1], got %v", f.name, f.value))
		}
	}
	if low > high {
		return Thresholds{}, errors.NewConfigurationError("INVALID_THRESHOLDS",
			fmt.Sprintf("low (%v) must not exceed high (%v)", low, high))
	}
	return Thresholds{TStar: tStar, Low: low, High: high, GrayZoneRate: grayZoneRate}, nil
}

// MustNewThresholds creates Thresholds and panics on error (for tests).
func MustNewThresholds(tStar, low, high, grayZoneRate float64) Thresholds {
	th, err := NewThresholds(tStar, low, high, grayZoneRate)
	if err != nil {
		panic(err)
	}
	return th
}

// thresholdsFile accepts both on-disk shapes: fields nested under a
// "thresholds" key, or the same fields flat at the top level. Field-name
// aliases from older calibration runs are accepted too.
type thresholdsFile struct {
	Thresholds *thresholdsFields `json:"thresholds"`
	thresholdsFields
}

type thresholdsFields struct {
	TStar            *float64 `json:"t_star"`
	OptimalThreshold *float64 `json:"optimal_threshold"`
	Low              *float64 `json:"low"`
	GrayZoneLow      *float64 `json:"gray_zone_low"`
	High             *float64 `json:"high"`
	GrayZoneHigh     *float64 `json:"gray_zone_high"`
	GrayZoneRate     *float64 `json:"gray_zone_rate"`
}

// LoadThresholds reads a calibration file. Failure to load is fatal to the
// owning service; callers must not default around it.
func LoadThresholds(path string) (Thresholds, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Thresholds{}, errors.NewConfigurationError("THRESHOLDS_UNREADABLE",
			fmt.Sprintf("reading thresholds file %s", path)).WithCause(err)
	}

	var f thresholdsFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return Thresholds{}, errors.NewConfigurationError("THRESHOLDS_MALFORMED",
			fmt.Sprintf("parsing thresholds file %s", path)).WithCause(err)
	}

	fields := f.thresholdsFields
	if f.Thresholds != nil {
		fields = *f.Thresholds
	}

	if fields.GrayZoneRate == nil {
		return Thresholds{}, errors.NewConfigurationError("THRESHOLDS_MALFORMED",
			fmt.Sprintf("thresholds file %s is missing gray_zone_rate", path))
	}

	// Alias names win over the canonical ones when a file carries both;
	// older calibration runs emitted the aliases and they stay
	// authoritative for such files.
	tStar := coalesce(defaultTStar, fields.OptimalThreshold, fields.TStar)
	low := coalesce(defaultLow, fields.GrayZoneLow, fields.Low)
	high := coalesce(defaultHigh, fields.GrayZoneHigh, fields.High)

	return NewThresholds(tStar, low, high, *fields.GrayZoneRate)
}

func coalesce(fallback float64, candidates ...*float64) float64 {
	for _, c := range candidates {
		if c != nil {
			return *c
		}
	}
	return fallback
}

// Decide classifies a malicious probability into a policy band.
// Boundary semantics are strict: p == Low is REVIEW, p == High is BLOCK.
func Decide(pMalicious float64, th Thresholds) Decision {
	if pMalicious < th.Low {
		return DecisionAllow
	}
	if pMalicious >= th.High {
		return DecisionBlock
	}
	return DecisionReview
}
