package judge

import (
	"fmt"
	"strings"

	"github.com/phishguard/phishguard-backend/internal/domain/errors"
	"github.com/phishguard/phishguard-backend/internal/domain/features"
)

// Request carries a URL and its feature digest to a judge backend.
type Request struct {
	URL      string                 `json:"url"`
	Features features.FeatureDigest `json:"features"`
}

// NewRequest validates and normalizes a judge request. The URL is trimmed
// and must be non-empty; the digest must be within its declared bounds.
func NewRequest(rawURL string, digest features.FeatureDigest) (Request, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return Request{}, errors.ErrEmptyURL
	}
	if err := digest.Validate(); err != nil {
		return Request{}, err
	}
	return Request{URL: trimmed, Features: digest}, nil
}

// Response is a judge backend's assessment. Score is the judged risk in
// [0,1] and may be absent (nil); it is not the model probability. Context
// is an open key-value map echoed into the audit trail.
type Response struct {
	Verdict   Verdict                `json:"verdict"`
	Rationale string                 `json:"rationale"`
	Score     *float64               `json:"judge_score,omitempty"`
	Context   map[string]interface{} `json:"context"`
}

// Validate enforces the response contract shared by all backends.
func (r Response) Validate() error {
	if _, err := ParseVerdict(string(r.Verdict)); err != nil {
		return errors.NewValidationError("INVALID_VERDICT", err.Error())
	}
	if len(strings.TrimSpace(r.Rationale)) < 3 {
		return errors.NewValidationError("INVALID_RATIONALE",
			"rationale must be at least 3 characters")
	}
	if r.Score != nil && (*r.Score < 0.0 || *r.Score > 1.0) {
		return errors.NewValidationError("INVALID_JUDGE_SCORE",
			fmt.Sprintf("judge_score must be in [0,1], got %v", *r.Score))
	}
	return nil
}
