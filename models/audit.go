package models

import (
	"time"
)

// AuditEntry is a free-text, append-only log line. Observability only.
type AuditEntry struct {
	ID        int64     `db:"id"`
	Entry     string    `db:"entry"`
	CreatedAt time.Time `db:"created_at"`
}
