package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/phishguard/phishguard-backend/internal/domain/features"
	"github.com/phishguard/phishguard-backend/internal/domain/policy"
	"github.com/phishguard/phishguard-backend/internal/infrastructure/cache"
	"github.com/phishguard/phishguard-backend/internal/service/model"
	"github.com/phishguard/phishguard-backend/internal/service/triage"
)

// Handler serves the triage API.
type Handler struct {
	triage       triage.Service
	model        model.Client
	cache        *cache.DecisionCache
	thresholds   policy.Thresholds
	tlds         *features.TLDTable
	routing      triage.RoutingConfig
	judgeBackend string
	logger       *slog.Logger
}

// HandlerDeps carries the handler's collaborators. cache may be nil.
type HandlerDeps struct {
	Triage       triage.Service
	Model        model.Client
	Cache        *cache.DecisionCache
	Thresholds   policy.Thresholds
	TLDs         *features.TLDTable
	Routing      triage.RoutingConfig
	JudgeBackend string
	Logger       *slog.Logger
}

// NewHandler creates the API handler.
func NewHandler(deps HandlerDeps) *Handler {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Model == nil {
		deps.Model = model.NewHeuristic()
	}
	if deps.TLDs == nil {
		deps.TLDs = features.EmptyTLDTable()
	}
	return &Handler{
		triage:       deps.Triage,
		model:        deps.Model,
		cache:        deps.Cache,
		thresholds:   deps.Thresholds,
		tlds:         deps.TLDs,
		routing:      deps.Routing,
		judgeBackend: deps.JudgeBackend,
		logger:       deps.Logger,
	}
}

// RegisterRoutes wires all endpoints onto the mux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/evaluate", h.handleEvaluate)
	mux.HandleFunc("GET /api/v1/stats", h.handleStats)
	mux.HandleFunc("POST /api/v1/stats/reset", h.handleStatsReset)
	mux.HandleFunc("GET /api/v1/config", h.handleConfig)
	mux.HandleFunc("GET /healthz", h.handleHealth)
}

func (h *Handler) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	var req EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, err)
		return
	}
	if err := validate.Struct(&req); err != nil {
		writeError(w, err)
		return
	}

	ctx := r.Context()

	var (
		pMalicious float64
		source     string
	)
	if req.PMalicious != nil {
		pMalicious, source = *req.PMalicious, model.SourceCaller
	} else {
		var err error
		pMalicious, source, err = h.model.Probability(ctx, req.URL)
		if err != nil {
			writeError(w, err)
			return
		}
	}

	if h.cache != nil && req.Extras == nil {
		if cached, ok := h.cache.Get(ctx, req.URL, pMalicious); ok {
			writeJSON(w, http.StatusOK, h.evaluateResponse(req.URL, pMalicious, source, cached, true))
			return
		}
	}

	outcome, err := h.triage.Evaluate(ctx, req.URL, pMalicious, req.Extras.toExtras())
	if err != nil {
		writeError(w, err)
		return
	}

	if h.cache != nil && req.Extras == nil {
		if err := h.cache.Put(ctx, req.URL, pMalicious, outcome); err != nil {
			h.logger.WarnContext(ctx, "decision cache write failed", "error", err)
		}
	}

	writeJSON(w, http.StatusOK, h.evaluateResponse(req.URL, pMalicious, source, outcome, false))
}

func (h *Handler) evaluateResponse(url string, p float64, source string, outcome *triage.DecisionOutcome, cached bool) EvaluateResponse {
	resp := EvaluateResponse{
		URL:               url,
		PMalicious:        p,
		ProbabilitySource: source,
		FinalDecision:     string(outcome.FinalDecision),
		PolicyReason:      outcome.PolicyReason,
		Cached:            cached,
	}
	if outcome.Judge != nil {
		resp.Judge = &JudgeResponse{
			Verdict:    string(outcome.Judge.Verdict),
			Rationale:  outcome.Judge.Rationale,
			JudgeScore: outcome.Judge.Score,
			Context:    outcome.Judge.Context,
		}
	}
	return resp
}

func (h *Handler) handleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.triage.CountersSnapshot())
}

func (h *Handler) handleStatsReset(w http.ResponseWriter, r *http.Request) {
	h.triage.ResetCounters()
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

func (h *Handler) handleConfig(w http.ResponseWriter, r *http.Request) {
	resp := ConfigResponse{
		Thresholds:   h.thresholds,
		JudgeBackend: h.judgeBackend,
		TLDTableSize: h.tlds.Len(),
	}
	resp.Routing.ShortDomainLength = h.routing.ShortDomainLength
	resp.Routing.ShortDomainConfidence = h.routing.ShortDomainConfidence
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}
