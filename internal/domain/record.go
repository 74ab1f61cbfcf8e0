// Package domain defines core business entities and value objects for calltrail.
//
// This file contains the record types persisted for each provider exchange.
// The domain layer is independent of infrastructure concerns and represents
// pure data structures.
package domain

import "time"

// Message is a single role/content turn sent to or from a provider.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CallRequestRecord captures the outbound half of one provider exchange.
// Immutable once built.
type CallRequestRecord struct {
	Provider  string                 `json:"provider"`
	Model     string                 `json:"model"`
	Messages  []Message              `json:"messages"`
	Options   map[string]interface{} `json:"options,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// CallResponseRecord captures the inbound half of one provider exchange.
// Content is a pointer so an aborted call serializes as null rather than "".
type CallResponseRecord struct {
	Content    *string   `json:"content"`
	Provider   string    `json:"provider"`
	Model      string    `json:"model"`
	Timestamp  time.Time `json:"timestamp"`
	DurationMS int64     `json:"duration_ms"`
	Truncated  bool      `json:"truncated,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// CallExchange is the collaborator-facing input to the recorder.
type CallExchange struct {
	DestinationDir string             `json:"destination_dir,omitempty"`
	Provider       string             `json:"provider"`
	Model          string             `json:"model"`
	Request        CallRequestRecord  `json:"request"`
	Response       CallResponseRecord `json:"response"`
	Redacted       bool               `json:"redacted,omitempty"`
}

// RecordMetadata is derived from an exchange and rendered into the record
// file header.
type RecordMetadata struct {
	Provider   string
	Model      string
	Timestamp  time.Time
	DurationMS int64
	Truncated  bool
	Redacted   bool
	SizeBytes  int
}

// RecordResult reports the outcome of persisting one exchange. Recording is
// best-effort: failures are carried here, never raised as panics.
type RecordResult struct {
	OK       bool
	FilePath string
	Reason   string
}
