package features

import (
	"fmt"
	"math"

	"github.com/phishguard/phishguard-backend/internal/domain/errors"
)

// FeatureDigest is the fixed-shape numeric summary of a URL used as judge
// and model input. The eight canonical fields are always populated; the
// Legacy block carries the older three URL-shape features when a caller
// still computes them.
type FeatureDigest struct {
	IsHTTPS                    int     `json:"IsHTTPS"`
	TLDLegitimateProb          float64 `json:"TLDLegitimateProb"`
	CharContinuationRate       float64 `json:"CharContinuationRate"`
	SpacialCharRatioInURL      float64 `json:"SpacialCharRatioInURL"`
	URLCharProb                float64 `json:"URLCharProb"`
	LetterRatioInURL           float64 `json:"LetterRatioInURL"`
	NoOfOtherSpecialCharsInURL int     `json:"NoOfOtherSpecialCharsInURL"`
	DomainLength               int     `json:"DomainLength"`

	Legacy *LegacyFeatures `json:"legacy,omitempty"`
}

// LegacyFeatures are the pre-8-feature URL-shape signals. All slots are
// optional; a nil pointer means the signal was not computed.
type LegacyFeatures struct {
	URLLen        *int     `json:"url_len,omitempty"`
	URLDigitRatio *float64 `json:"url_digit_ratio,omitempty"`
	URLSubdomains *int     `json:"url_subdomains,omitempty"`
}

// Validate rejects out-of-range values. Out-of-range input is a caller
// error, never silently clamped.
func (d FeatureDigest) Validate() error {
	if d.IsHTTPS != 0 && d.IsHTTPS != 1 {
		return errors.NewValidationError("INVALID_FEATURE",
			fmt.Sprintf("IsHTTPS must be 0 or 1, got %d", d.IsHTTPS))
	}
	for _, f := range []struct {
		name  string
		value float64
	}{
		{"TLDLegitimateProb", d.TLDLegitimateProb},
		{"CharContinuationRate", d.CharContinuationRate},
		{"SpacialCharRatioInURL", d.SpacialCharRatioInURL},
		{"URLCharProb", d.URLCharProb},
		{"LetterRatioInURL", d.LetterRatioInURL},
	} {
		if math.IsNaN(f.value) || f.value < 0.0 || f.value > 1.0 {
			return errors.NewValidationError("INVALID_FEATURE",
				fmt.Sprintf("%s must be in [0,1], got %v", f.name, f.value))
		}
	}
	if d.NoOfOtherSpecialCharsInURL < 0 {
		return errors.NewValidationError("INVALID_FEATURE",
			fmt.Sprintf("NoOfOtherSpecialCharsInURL must be >= 0, got %d", d.NoOfOtherSpecialCharsInURL))
	}
	if d.DomainLength < 0 {
		return errors.NewValidationError("INVALID_FEATURE",
			fmt.Sprintf("DomainLength must be >= 0, got %d", d.DomainLength))
	}
	if d.Legacy != nil {
		if err := d.Legacy.validate(); err != nil {
			return err
		}
	}
	return nil
}

func (l LegacyFeatures) validate() error {
	if l.URLLen != nil && *l.URLLen < 0 {
		return errors.NewValidationError("INVALID_FEATURE", "url_len must be >= 0")
	}
	if l.URLDigitRatio != nil && (*l.URLDigitRatio < 0.0 || *l.URLDigitRatio > 1.0) {
		return errors.NewValidationError("INVALID_FEATURE", "url_digit_ratio must be in [0,1]")
	}
	if l.URLSubdomains != nil && *l.URLSubdomains < 0 {
		return errors.NewValidationError("INVALID_FEATURE", "url_subdomains must be >= 0")
	}
	return nil
}

// NeutralDigest is the fixed low-information digest returned when a URL
// cannot be parsed. Callers must treat it as a degraded signal, not
// evidence of legitimacy.
func NeutralDigest() FeatureDigest {
	return FeatureDigest{
		IsHTTPS:                    0,
		TLDLegitimateProb:          0.5,
		CharContinuationRate:       0.0,
		SpacialCharRatioInURL:      0.0,
		URLCharProb:                0.05,
		LetterRatioInURL:           0.0,
		NoOfOtherSpecialCharsInURL: 0,
		DomainLength:               0,
	}
}

// ContextMap flattens the digest into the open key-value shape used for
// judge audit echo.
func (d FeatureDigest) ContextMap() map[string]interface{} {
	ctx := map[string]interface{}{
		"IsHTTPS":                    d.IsHTTPS,
		"TLDLegitimateProb":          d.TLDLegitimateProb,
		"CharContinuationRate":       d.CharContinuationRate,
		"SpacialCharRatioInURL":      d.SpacialCharRatioInURL,
		"URLCharProb":                d.URLCharProb,
		"LetterRatioInURL":           d.LetterRatioInURL,
		"NoOfOtherSpecialCharsInURL": d.NoOfOtherSpecialCharsInURL,
		"DomainLength":               d.DomainLength,
	}
	if d.Legacy != nil {
		if d.Legacy.URLLen != nil {
			ctx["url_len"] = *d.Legacy.URLLen
		}
		if d.Legacy.URLDigitRatio != nil {
			ctx["url_digit_ratio"] = *d.Legacy.URLDigitRatio
		}
		if d.Legacy.URLSubdomains != nil {
			ctx["url_subdomains"] = *d.Legacy.URLSubdomains
		}
	}
	return ctx
}
