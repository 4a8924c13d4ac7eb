package types

import "errors"

// Error taxonomy by recovery policy, not by concrete type. Each sentinel
// is wrapped with fmt.Errorf("...: %w", ...) at the call site so callers
// can errors.Is against the policy class while still getting a specific
// message.
var (
	// ErrConfiguration covers missing/unresolvable providers and
	// malformed settings. Policy: surface; refuse to start the affected
	// subsystem.
	ErrConfiguration = errors.New("configuration error")

	// ErrProvider covers backend API errors and auth failures. Policy:
	// retry with backoff, then log and proceed at file granularity.
	ErrProvider = errors.New("provider error")

	// ErrIndexing covers internal invariant violations during chunking
	// or upsert. Policy: log and skip the file.
	ErrIndexing = errors.New("indexing error")

	// ErrValidation covers bad find_code request inputs. Policy: return
	// a degraded response with the KEYWORD_FALLBACK strategy.
	ErrValidation = errors.New("validation error")

	// ErrShutdownRequested signals a graceful shutdown in progress.
	ErrShutdownRequested = errors.New("shutdown requested")
)
