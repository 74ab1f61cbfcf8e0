// Package recorder builds and durably persists one immutable record file
// per provider exchange.
package recorder

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/doeshing/calltrail/internal/domain"
	"github.com/doeshing/calltrail/internal/pkg/atomicfile"
	"github.com/doeshing/calltrail/internal/ports"
)

// Recorder implements the ports.CallRecorder port.
type Recorder struct {
	Writer    *atomicfile.Writer
	Namespace string
	Logger    ports.Logger

	// now is injectable for deterministic filename tests.
	now func() time.Time
}

// New builds a Recorder with the default atomic writer.
func New(namespace string, log ports.Logger) *Recorder {
	if namespace == "" {
		namespace = domain.DefaultRecordNamespace
	}
	return &Recorder{
		Writer:    atomicfile.NewWriter(),
		Namespace: namespace,
		Logger:    log,
		now:       time.Now,
	}
}

// Record implements ports.CallRecorder. All failures come back as result
// values so a failed recording never crashes the caller.
func (r *Recorder) Record(ex domain.CallExchange) domain.RecordResult {
	if ex.DestinationDir == "" {
		return domain.RecordResult{Reason: "destination directory not set"}
	}

	ts := ex.Request.Timestamp
	if ts.IsZero() {
		ts = r.now()
	}
	ts = ts.UTC()

	reqJSON, err := json.MarshalIndent(ex.Request, "", "  ")
	if err != nil {
		return domain.RecordResult{Reason: fmt.Sprintf("marshal request: %v", err)}
	}
	respJSON, err := json.MarshalIndent(ex.Response, "", "  ")
	if err != nil {
		return domain.RecordResult{Reason: fmt.Sprintf("marshal response: %v", err)}
	}

	meta := domain.RecordMetadata{
		Provider:   ex.Provider,
		Model:      ex.Model,
		Timestamp:  ts,
		DurationMS: ex.Response.DurationMS,
		Truncated:  ex.Response.Truncated,
		Redacted:   ex.Redacted,
	}

	// Two-pass sizing: render without size_bytes, measure, render again
	// with the measured value so the header stays accurate.
	draft := renderBody(meta, reqJSON, respJSON)
	meta.SizeBytes = len(draft)
	body := renderBody(meta, reqJSON, respJSON)

	name := r.fileName(ts, ex.Provider, ex.Model)
	path := filepath.Join(ex.DestinationDir, name)

	res := r.Writer.Write(path, []byte(body))
	if !res.OK {
		if r.Logger != nil {
			r.Logger.Warn("record write failed", map[string]interface{}{
				"path":   path,
				"reason": res.Reason,
			})
		}
		return domain.RecordResult{FilePath: res.Path, Reason: res.Reason}
	}
	return domain.RecordResult{OK: true, FilePath: res.Path}
}

// fileName builds <ns>-<UTCcompact>-<provider>-<model>-<unique>.txt. The
// uniqueness token mixes a millisecond clock read with a random fragment so
// rapid successive calls in the same millisecond still get distinct names.
func (r *Recorder) fileName(ts time.Time, provider, model string) string {
	return fmt.Sprintf("%s-%s-%s-%s-%s%s",
		r.Namespace,
		ts.Format(domain.CompactTimestampLayout),
		sanitizeComponent(provider),
		sanitizeComponent(model),
		uniquenessToken(r.now()),
		domain.RecordExtension,
	)
}

func uniquenessToken(t time.Time) string {
	return fmt.Sprintf("%05d%s", t.UnixMilli()%100000, uuid.NewString()[:8])
}

// sanitizeComponent lowercases, maps filesystem-unsafe characters to '-',
// collapses runs and caps the length. It never returns an empty component.
func sanitizeComponent(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('-')
		}
	}
	out := b.String()
	for strings.Contains(out, "--") {
		out = strings.ReplaceAll(out, "--", "-")
	}
	out = strings.Trim(out, "-")
	if out == "" {
		out = "unknown"
	}
	if len(out) > domain.SanitizedComponentMaxLen {
		out = strings.Trim(out[:domain.SanitizedComponentMaxLen], "-")
	}
	return out
}

func renderBody(meta domain.RecordMetadata, reqJSON, respJSON []byte) string {
	var b strings.Builder

	b.WriteString("provider: " + meta.Provider + "\n")
	b.WriteString("model: " + meta.Model + "\n")
	b.WriteString("timestamp: " + meta.Timestamp.Format(domain.TimestampFormat) + "\n")
	fmt.Fprintf(&b, "duration_ms: %d\n", meta.DurationMS)
	if meta.Truncated {
		b.WriteString("truncated: true\n")
	}
	if meta.Redacted {
		b.WriteString("redacted: true\n")
	}
	if meta.SizeBytes > 0 {
		fmt.Fprintf(&b, "size_bytes: %d\n", meta.SizeBytes)
	}
	b.WriteString("---\n\n")

	fence := chooseFence(reqJSON, respJSON)
	b.WriteString("Request:\n")
	b.WriteString(fence + "json\n")
	b.Write(reqJSON)
	b.WriteString("\n" + fence + "\n\n")
	b.WriteString("Response:\n")
	b.WriteString(fence + "json\n")
	b.Write(respJSON)
	b.WriteString("\n" + fence + "\n")

	return b.String()
}

// chooseFence grows a backtick fence until it no longer appears verbatim in
// either serialized block, switching to tildes if backticks are exhausted.
func chooseFence(blocks ...[]byte) string {
	for _, ch := range []string{"`", "~"} {
		for n := 3; n <= domain.MaxFenceLength; n++ {
			fence := strings.Repeat(ch, n)
			if !anyContains(blocks, fence) {
				return fence
			}
		}
	}
	// Both families exhausted; an absurdly long tilde fence is still safe
	// enough for a bounded-content record.
	return strings.Repeat("~", domain.MaxFenceLength*2)
}

func anyContains(blocks [][]byte, fence string) bool {
	for _, block := range blocks {
		if strings.Contains(string(block), fence) {
			return true
		}
	}
	return false
}

var _ ports.CallRecorder = (*Recorder)(nil)
