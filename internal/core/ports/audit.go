package ports

import (
	"context"
	"time"
)

// AuditEntry records one authorization outcome for the security audit trail.
type AuditEntry struct {
	AuthUserID string
	Email      string
	Kind       string // "callback" or "guard"
	Outcome    string // decision kind, or "error:<sentinel>"
	Path       string
	At         time.Time
}

// AuditRecorder persists audit entries.
type AuditRecorder interface {
	Record(ctx context.Context, entry AuditEntry) error
}

// AuditSink accepts entries for asynchronous recording. Implementations must
// never block or fail the request path.
type AuditSink interface {
	Enqueue(entry AuditEntry)
}
