package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	domainjudge "github.com/phishguard/phishguard-backend/internal/domain/judge"
)

// DefaultLLMTimeout bounds the text-generation round trip. On expiry the
// request degrades to the stub synchronously, so total added latency is
// capped by this value plus sub-millisecond stub computation.
const DefaultLLMTimeout = 12 * time.Second

const maxRationaleLen = 500

// The endpoint returns best-effort natural language; exactly three labeled
// fields are recovered by pattern matching.
var (
	verdictRe   = regexp.MustCompile(`(?i)\bVERDICT\s*:\s*(LEAN_PHISH|LEAN_LEGIT|UNCERTAIN)\b`)
	scoreRe     = regexp.MustCompile(`(?is)\bSCORE\s*:\s*(0(?:\.\d+)?|1(?:\.0+)?)\b`)
	rationaleRe = regexp.MustCompile(`(?is)\bRATIONALE\s*:\s*(.+)`)
)

// LLMConfig configures the text-generation endpoint.
type LLMConfig struct {
	Host    string
	Model   string
	Timeout time.Duration
}

// LLMBackend judges via an external text-generation endpoint, parsing the
// verdict out of free text. Every failure path falls back to the
// deterministic stub; the audit context tags distinguish "llm" success
// from "stub_fallback".
type LLMBackend struct {
	cfg      LLMConfig
	client   *http.Client
	fallback *StubBackend
	logger   *slog.Logger
}

// NewLLM creates the LLM-backed judge.
func NewLLM(cfg LLMConfig, logger *slog.Logger) *LLMBackend {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultLLMTimeout
	}
	cfg.Host = strings.TrimRight(cfg.Host, "/")
	return &LLMBackend{
		cfg:      cfg,
		client:   &http.Client{Timeout: cfg.Timeout},
		fallback: NewStub(),
		logger:   logger,
	}
}

// Judge queries the generation endpoint and parses its reply. Any network
// error, timeout, or unparseable payload degrades to the stub result.
func (b *LLMBackend) Judge(ctx context.Context, req domainjudge.Request) (domainjudge.Response, error) {
	resp, err := b.generate(ctx, req)
	if err != nil {
		b.logger.WarnContext(ctx, "llm judge failed, falling back to stub",
			"model", b.cfg.Model, "error", err)
		fb, _ := b.fallback.Judge(ctx, req)
		fb.Context["backend"] = "stub_fallback"
		fb.Context["model"] = b.cfg.Model
		return fb, nil
	}
	return resp, nil
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
}

func (b *LLMBackend) generate(ctx context.Context, req domainjudge.Request) (domainjudge.Response, error) {
	prompt, err := buildPrompt(req)
	if err != nil {
		return domainjudge.Response{}, err
	}

	body, err := json.Marshal(generateRequest{Model: b.cfg.Model, Prompt: prompt})
	if err != nil {
		return domainjudge.Response{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, b.cfg.Timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		b.cfg.Host+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return domainjudge.Response{}, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := b.client.Do(httpReq)
	if err != nil {
		return domainjudge.Response{}, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode != http.StatusOK {
		return domainjudge.Response{}, fmt.Errorf("generation endpoint returned status %d", httpResp.StatusCode)
	}

	payload, err := io.ReadAll(io.LimitReader(httpResp.Body, 1<<20))
	if err != nil {
		return domainjudge.Response{}, err
	}

	var gen generateResponse
	if err := json.Unmarshal(payload, &gen); err != nil {
		return domainjudge.Response{}, fmt.Errorf("decoding generation payload: %w", err)
	}

	verdict, score, rationale := parseReply(gen.Response)

	auditCtx := req.Features.ContextMap()
	auditCtx["backend"] = "llm"
	auditCtx["model"] = b.cfg.Model

	resp := domainjudge.Response{
		Verdict:   verdict,
		Rationale: rationale,
		Score:     score,
		Context:   auditCtx,
	}
	// The parsed reply must honor the same contract the stub does;
	// anything out of band degrades to the fallback like a transport error.
	if err := resp.Validate(); err != nil {
		return domainjudge.Response{}, fmt.Errorf("generated response rejected: %w", err)
	}
	return resp, nil
}

// buildPrompt embeds the URL and digest as compact JSON and instructs the
// model to emit the three labeled fields the parser recovers.
func buildPrompt(req domainjudge.Request) (string, error) {
	feat, err := json.Marshal(req.Features)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	sb.WriteString("You are a security analyst. Assess phishing risk from the URL and ")
	sb.WriteString("compact URL-only features.\n")
	sb.WriteString("Respond with EXACTLY three fields on separate lines:\n")
	sb.WriteString("VERDICT: LEAN_PHISH | LEAN_LEGIT | UNCERTAIN\n")
	sb.WriteString("SCORE: number in [0,1]\n")
	sb.WriteString("RATIONALE: brief human explanation\n\n")
	fmt.Fprintf(&sb, "URL: %s\n", req.URL)
	fmt.Fprintf(&sb, "FEATURES_JSON: %s\n", feat)
	sb.WriteString("Consider length, digit ratio, subdomains, TLD prior, and any ")
	sb.WriteString("suspicious tokens in the URL.")
	return sb.String(), nil
}

// parseReply recovers the labeled fields. A missing or unrecognized
// verdict defaults to UNCERTAIN; a score outside [0,1] is discarded.
func parseReply(text string) (domainjudge.Verdict, *float64, string) {
	verdict := domainjudge.VerdictUncertain
	if m := verdictRe.FindStringSubmatch(text); m != nil {
		if v, err := domainjudge.ParseVerdict(strings.ToUpper(m[1])); err == nil {
			verdict = v
		}
	}

	var score *float64
	if m := scoreRe.FindStringSubmatch(text); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil && v >= 0.0 && v <= 1.0 {
			score = &v
		}
	}

	rationale := "no rationale"
	if m := rationaleRe.FindStringSubmatch(text); m != nil {
		line := strings.TrimSpace(m[1])
		if i := strings.IndexByte(line, '\n'); i >= 0 {
			line = line[:i]
		}
		if len(line) > maxRationaleLen {
			line = line[:maxRationaleLen]
		}
		if line != "" {
			rationale = line
		}
	}

	return verdict, score, rationale
}
