package rest

import (
	"github.com/go-playground/validator/v10"

	"github.com/phishguard/phishguard-backend/internal/service/triage"
)

var validate = validator.New()

// EvaluateRequest is the triage request body. PMalicious is optional;
// when absent the gateway asks the model service (or the heuristic).
type EvaluateRequest struct {
	URL        string   `json:"url" validate:"required,min=3"`
	PMalicious *float64 `json:"p_malicious,omitempty" validate:"omitempty,min=0,max=1"`

	// Optional feature overrides forwarded to the judge digest.
	Extras *ExtrasRequest `json:"extras,omitempty"`
}

// ExtrasRequest mirrors triage.Extras on the wire.
type ExtrasRequest struct {
	TLDLegitimateProb          *float64 `json:"tld_legitimate_prob,omitempty" validate:"omitempty,min=0,max=1"`
	NoOfOtherSpecialCharsInURL *int     `json:"special_chars,omitempty" validate:"omitempty,min=0"`
	SpacialCharRatioInURL      *float64 `json:"special_char_ratio,omitempty" validate:"omitempty,min=0,max=1"`
	CharContinuationRate       *float64 `json:"char_continuation_rate,omitempty" validate:"omitempty,min=0,max=1"`
	URLCharProb                *float64 `json:"url_char_prob,omitempty" validate:"omitempty,min=0,max=1"`
}

func (r *ExtrasRequest) toExtras() *triage.Extras {
	if r == nil {
		return nil
	}
	return &triage.Extras{
		TLDLegitimateProb:          r.TLDLegitimateProb,
		NoOfOtherSpecialCharsInURL: r.NoOfOtherSpecialCharsInURL,
		SpacialCharRatioInURL:      r.SpacialCharRatioInURL,
		CharContinuationRate:       r.CharContinuationRate,
		URLCharProb:                r.URLCharProb,
	}
}

// EvaluateResponse is the triage response body.
type EvaluateResponse struct {
	URL               string         `json:"url"`
	PMalicious        float64        `json:"p_malicious"`
	ProbabilitySource string         `json:"probability_source"`
	FinalDecision     string         `json:"final_decision"`
	PolicyReason      string         `json:"policy_reason"`
	Judge             *JudgeResponse `json:"judge,omitempty"`
	Cached            bool           `json:"cached,omitempty"`
}

// JudgeResponse echoes the judge outcome when one was invoked.
type JudgeResponse struct {
	Verdict    string                 `json:"verdict"`
	Rationale  string                 `json:"rationale"`
	JudgeScore *float64               `json:"judge_score,omitempty"`
	Context    map[string]interface{} `json:"context,omitempty"`
}

// ConfigResponse exposes the active calibration for operators.
type ConfigResponse struct {
	Thresholds   interface{} `json:"thresholds"`
	JudgeBackend string      `json:"judge_backend"`
	Routing      struct {
		ShortDomainLength     int     `json:"short_domain_length"`
		ShortDomainConfidence float64 `json:"short_domain_confidence"`
	} `json:"routing"`
	TLDTableSize int `json:"tld_table_size"`
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}
