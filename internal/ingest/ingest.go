// Package ingest holds shared types for bulk history imports.
package ingest

// Result holds the outcome of an import operation.
type Result struct {
	SessionsSeen int   `json:"sessions_seen"`
	SetsReceived int   `json:"sets_received"`
	SetsInserted int64 `json:"sets_inserted"`
	SetsSkipped  int64 `json:"sets_skipped"`

	Message string `json:"message,omitempty"`
}
