package triage

import (
	"context"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/phishguard/phishguard-backend/internal/domain/errors"
	"github.com/phishguard/phishguard-backend/internal/domain/features"
	domainjudge "github.com/phishguard/phishguard-backend/internal/domain/judge"
	"github.com/phishguard/phishguard-backend/internal/domain/policy"
	"github.com/phishguard/phishguard-backend/internal/metrics"
	judgesvc "github.com/phishguard/phishguard-backend/internal/service/judge"
)

const auditWriteTimeout = 5 * time.Second

// service implements the Service interface
type service struct {
	thresholds policy.Thresholds
	extractor  *features.Extractor
	backend    judgesvc.Backend
	stub       *judgesvc.StubBackend
	counters   Counters
	audit      AuditSink
	metrics    *metrics.Registry
	routing    RoutingConfig
	logger     *slog.Logger
}

// NewService creates the escalation orchestrator. The judge backend is
// injected by the caller; the deterministic stub stays available as the
// last-resort fallback regardless of which backend is configured. audit
// and registry may be nil (no-op).
func NewService(
	thresholds policy.Thresholds,
	extractor *features.Extractor,
	backend judgesvc.Backend,
	counters Counters,
	audit AuditSink,
	registry *metrics.Registry,
	routing RoutingConfig,
	logger *slog.Logger,
) Service {
	if counters == nil {
		counters = NewMemoryCounters()
	}
	if routing.ShortDomainLength <= 0 {
		routing = DefaultRoutingConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	stub := judgesvc.NewStub()
	if backend == nil {
		backend = stub
	}
	return &service{
		thresholds: thresholds,
		extractor:  extractor,
		backend:    backend,
		stub:       stub,
		counters:   counters,
		audit:      audit,
		metrics:    registry,
		routing:    routing,
		logger:     logger,
	}
}

// Evaluate applies the policy band first; for gray-zone probabilities it
// builds the feature digest, invokes the judge, and maps the verdict:
// LEAN_PHISH -> BLOCK, LEAN_LEGIT -> ALLOW, UNCERTAIN -> REVIEW.
func (s *service) Evaluate(ctx context.Context, rawURL string, pMalicious float64, extras *Extras) (*DecisionOutcome, error) {
	trimmedURL := strings.TrimSpace(rawURL)
	if trimmedURL == "" {
		return nil, errors.ErrEmptyURL
	}
	if pMalicious < 0.0 || pMalicious > 1.0 {
		return nil, errors.ErrInvalidProbability
	}

	base := policy.Decide(pMalicious, s.thresholds)
	s.counters.IncPolicy(base)
	s.metrics.RecordPolicyDecision(ctx, string(base))

	if base.IsTerminal() {
		// Fast path: final == policy, judge never invoked.
		s.counters.IncFinal(base)
		s.metrics.RecordFinalDecision(ctx, string(base), ReasonPolicyBand)
		outcome := &DecisionOutcome{
			FinalDecision: base,
			PolicyReason:  ReasonPolicyBand,
		}
		s.auditAsync(ctx, s.decisionRecord(trimmedURL, pMalicious, base, base), nil)
		return outcome, nil
	}

	shortDomain := s.isShortDomainRoute(trimmedURL, pMalicious)

	digest := s.extractor.Extract(trimmedURL, true)
	digest.Legacy = legacyFeatures(trimmedURL)
	applyExtras(&digest, extras)
	if err := digest.Validate(); err != nil {
		return nil, err
	}

	req, err := domainjudge.NewRequest(trimmedURL, digest)
	if err != nil {
		return nil, err
	}

	started := time.Now()
	jr, err := s.backend.Judge(ctx, req)
	if err != nil {
		// Backends fail open internally; this guard covers a misbehaving
		// implementation the same way.
		s.logger.WarnContext(ctx, "judge backend error, using stub", "error", err)
		jr, _ = s.stub.Judge(ctx, req)
		jr.Context["backend"] = "stub_fallback"
	}

	final, reason := mapVerdict(jr.Verdict, shortDomain)

	s.counters.IncJudge(jr.Verdict)
	s.counters.IncFinal(final)
	s.metrics.RecordJudge(ctx, string(jr.Verdict), backendTag(jr), float64(time.Since(started).Milliseconds()))
	s.metrics.RecordFinalDecision(ctx, string(final), reason)

	outcome := &DecisionOutcome{
		FinalDecision: final,
		PolicyReason:  reason,
		Judge:         &jr,
	}
	s.auditAsync(ctx,
		s.decisionRecord(trimmedURL, pMalicious, base, final),
		&JudgeRecord{
			URL:        trimmedURL,
			Verdict:    jr.Verdict,
			Rationale:  jr.Rationale,
			JudgeScore: jr.Score,
			Features:   jr.Context,
			CreatedAt:  time.Now().UTC(),
		})
	return outcome, nil
}

func (s *service) CountersSnapshot() CountersSnapshot {
	return s.counters.Snapshot()
}

func (s *service) ResetCounters() {
	s.counters.Reset()
}

// mapVerdict is the pure verdict-to-decision mapping, independent of which
// backend produced the verdict. The short-domain tag only decorates the
// audit reason.
func mapVerdict(v domainjudge.Verdict, shortDomain bool) (policy.Decision, string) {
	var final policy.Decision
	var suffix string
	switch v {
	case domainjudge.VerdictLeanPhish:
		final, suffix = policy.DecisionBlock, "lean-phish"
	case domainjudge.VerdictLeanLegit:
		final, suffix = policy.DecisionAllow, "lean-legit"
	default:
		final, suffix = policy.DecisionReview, "uncertain"
	}
	reason := reasonJudgePrefix
	if shortDomain {
		reason += reasonShortDomainInfix
	}
	return final, reason + suffix
}

// isShortDomainRoute reports whether the short-domain audit tag applies:
// the domain is short and the model was not yet moderately confident.
func (s *service) isShortDomainRoute(rawURL string, pMalicious float64) bool {
	domain := extractDomain(rawURL)
	return domain != "" &&
		len(domain) <= s.routing.ShortDomainLength &&
		pMalicious < s.routing.ShortDomainConfidence
}

func extractDomain(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Host
}

func (s *service) decisionRecord(url string, pMalicious float64, base, final policy.Decision) DecisionRecord {
	return DecisionRecord{
		URL:              url,
		PMalicious:       pMalicious,
		PolicyThresholds: s.thresholds,
		PolicyDecision:   base,
		FinalDecision:    final,
		CreatedAt:        time.Now().UTC(),
	}
}

// auditAsync emits audit records off the request's critical path. The
// sink is a non-critical side-effect channel: failures are counted and
// logged, never propagated.
func (s *service) auditAsync(ctx context.Context, dec DecisionRecord, jr *JudgeRecord) {
	if s.audit == nil {
		return
	}
	detached := context.WithoutCancel(ctx)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("audit sink panicked", "panic", r)
			}
		}()
		writeCtx, cancel := context.WithTimeout(detached, auditWriteTimeout)
		defer cancel()

		if err := s.audit.LogDecision(writeCtx, dec); err != nil {
			s.metrics.RecordAuditFailure(writeCtx, "decision")
			s.logger.WarnContext(writeCtx, "audit decision write failed", "error", err)
		}
		if jr != nil {
			if err := s.audit.LogJudge(writeCtx, *jr); err != nil {
				s.metrics.RecordAuditFailure(writeCtx, "judge")
				s.logger.WarnContext(writeCtx, "audit judge write failed", "error", err)
			}
		}
	}()
}

// legacyFeatures computes the three pre-8-feature URL-shape signals the
// stub still weighs at reduced strength.
func legacyFeatures(rawURL string) *features.LegacyFeatures {
	urlLen := len(rawURL)
	digitRatio := digitRatioOf(rawURL)
	subdomains := subdomainCount(rawURL)
	return &features.LegacyFeatures{
		URLLen:        &urlLen,
		URLDigitRatio: &digitRatio,
		URLSubdomains: &subdomains,
	}
}

func digitRatioOf(s string) float64 {
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

func applyExtras(d *features.FeatureDigest, extras *Extras) {
	if extras == nil {
		return
	}
	if extras.TLDLegitimateProb != nil {
		d.TLDLegitimateProb = *extras.TLDLegitimateProb
	}
	if extras.NoOfOtherSpecialCharsInURL != nil {
		d.NoOfOtherSpecialCharsInURL = *extras.NoOfOtherSpecialCharsInURL
	}
	if extras.SpacialCharRatioInURL != nil {
		d.SpacialCharRatioInURL = *extras.SpacialCharRatioInURL
	}
	if extras.CharContinuationRate != nil {
		d.CharContinuationRate = *extras.CharContinuationRate
	}
	if extras.URLCharProb != nil {
		d.URLCharProb = *extras.URLCharProb
	}
}

func backendTag(jr domainjudge.Response) string {
	if tag, ok := jr.Context["backend"].(string); ok {
		return tag
	}
	return "stub"
}
