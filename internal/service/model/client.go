package model

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/phishguard/phishguard-backend/internal/domain/errors"
)

// Probability sources reported to callers.
const (
	SourceModel     = "model"
	SourceHeuristic = "heuristic"
	SourceCaller    = "caller"
)

// Client supplies the malicious probability for a URL. The triage core
// treats the value as opaque.
type Client interface {
	Probability(ctx context.Context, url string) (p float64, source string, err error)
}

// HTTPClient queries an external model service for p_malicious.
type HTTPClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPClient creates a model service client.
func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type predictRequest struct {
	URL string `json:"url"`
}

type predictResponse struct {
	PMalicious float64 `json:"p_malicious"`
	Source     string  `json:"source"`
}

func (c *HTTPClient) Probability(ctx context.Context, url string) (float64, string, error) {
	body, err := json.Marshal(predictRequest{URL: url})
	if err != nil {
		return 0, "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/predict", bytes.NewReader(body))
	if err != nil {
		return 0, "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, "", errors.NewExternalError("model", "predict call failed").WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, "", errors.NewExternalError("model",
			fmt.Sprintf("predict returned status %d", resp.StatusCode))
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return 0, "", err
	}

	var out predictResponse
	if err := json.Unmarshal(payload, &out); err != nil {
		return 0, "", errors.NewExternalError("model", "predict payload malformed").WithCause(err)
	}
	if out.PMalicious < 0.0 || out.PMalicious > 1.0 {
		return 0, "", errors.NewExternalError("model",
			fmt.Sprintf("predict probability %v out of range", out.PMalicious))
	}
	source := out.Source
	if source == "" {
		source = SourceModel
	}
	return out.PMalicious, source, nil
}

// Heuristic is a transparent, bounded probability estimate for local use
// when no trained model service is configured. It is NOT the trained
// model; the weights are coarse URL-shape signals only.
type Heuristic struct{}

// NewHeuristic creates the heuristic probability source.
func NewHeuristic() *Heuristic {
	return &Heuristic{}
}

var heuristicTokens = []string{"login", "verify", "update", "secure", "account"}

func (h *Heuristic) Probability(_ context.Context, url string) (float64, string, error) {
	risk := 0.0

	switch n := len(url); {
	case n >= 160:
		risk += 0.50
	case n >= 100:
		risk += 0.35
	case n >= 80:
		risk += 0.20
	}

	switch dr := digitRatio(url); {
	case dr >= 0.30:
		risk += 0.35
	case dr >= 0.20:
		risk += 0.20
	case dr >= 0.10:
		risk += 0.10
	}

	switch sd := subdomainCount(url); {
	case sd >= 4:
		risk += 0.20
	case sd >= 3:
		risk += 0.10
	}

	lower := strings.ToLower(url)
	for _, tok := range heuristicTokens {
		if strings.Contains(lower, tok) {
			risk += 0.10
			break
		}
	}

	if risk > 1.0 {
		risk = 1.0
	}
	return risk, SourceHeuristic, nil
}

func digitRatio(s string) float64 {
	if s == "" {
		return 0.0
	}
	runes := []rune(s)
	digits := 0
	for _, r := range runes {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return float64(digits) / float64(len(runes))
}

func subdomainCount(s string) int {
	if s == "" {
		return 0
	}
	host := s
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	if i := strings.IndexByte(host, '/'); i >= 0 {
		host = host[:i]
	}
	n := strings.Count(host, ".") - 1
	if n < 0 {
		return 0
	}
	return n
}
