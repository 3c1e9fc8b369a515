package judge

import (
	"context"

	domainjudge "github.com/phishguard/phishguard-backend/internal/domain/judge"
)

// Backend produces a verdict for a gray-zone URL. Implementations must be
// safe for concurrent use. Backends that call out to external systems are
// required to fail open: any network, timeout, or parse failure degrades
// to the deterministic stub result instead of surfacing an error, so a
// non-nil error only ever reports a malformed request.
type Backend interface {
	Judge(ctx context.Context, req domainjudge.Request) (domainjudge.Response, error)
}

// BackendKind selects the configured judge implementation. Selection is a
// process-start decision; it is not switchable per request.
type BackendKind string

const (
	BackendStub BackendKind = "stub"
	BackendLLM  BackendKind = "llm"
)
