package record

import (
	"context"
	"strings"
	"testing"

	"github.com/doeshing/calltrail/internal/domain"
	"github.com/doeshing/calltrail/internal/infrastructure/redact"
	"github.com/doeshing/calltrail/internal/pkg/logger"
)

type stubConfig struct {
	cfg domain.Config
}

func (s *stubConfig) Load(context.Context) (domain.Config, error) {
	return s.cfg, nil
}

type captureRecorder struct {
	got domain.CallExchange
}

func (c *captureRecorder) Record(ex domain.CallExchange) domain.RecordResult {
	c.got = ex
	return domain.RecordResult{OK: true, FilePath: "/tmp/record.txt"}
}

func newService(rec *captureRecorder, cfg domain.Config) *Service {
	return &Service{
		ConfigProvider: &stubConfig{cfg: cfg},
		Redactor:       redact.New(),
		Recorder:       rec,
		Logger:         logger.NewStd(false),
	}
}

func TestRunRedactsBeforeRecording(t *testing.T) {
	rec := &captureRecorder{}
	svc := newService(rec, domain.Config{Archive: domain.ArchiveSettings{Dir: "/calls"}})

	content := "use sk-abcdEFGH0123456789wxyz for auth"
	res, err := svc.Run(context.Background(), domain.CallExchange{
		Provider: "openai",
		Model:    "gpt-4",
		Request: domain.CallRequestRecord{
			Messages: []domain.Message{{Role: "user", Content: "my key is sk-abcdEFGH0123456789wxyz"}},
		},
		Response: domain.CallResponseRecord{Content: &content},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !res.OK {
		t.Fatalf("expected success: %+v", res)
	}
	if !rec.got.Redacted {
		t.Fatal("redacted flag not set")
	}
	if strings.Contains(rec.got.Request.Messages[0].Content, "sk-abcd") {
		t.Fatalf("request content leaked: %q", rec.got.Request.Messages[0].Content)
	}
	if strings.Contains(*rec.got.Response.Content, "sk-abcd") {
		t.Fatalf("response content leaked: %q", *rec.got.Response.Content)
	}
	if rec.got.DestinationDir != "/calls" {
		t.Fatalf("destination not defaulted: %q", rec.got.DestinationDir)
	}
}

func TestRunAppliesExtraSecrets(t *testing.T) {
	rec := &captureRecorder{}
	svc := newService(rec, domain.Config{
		Archive:   domain.ArchiveSettings{Dir: "/calls"},
		Redaction: domain.RedactionSettings{ExtraSecrets: []string{"hunter2"}},
	})

	_, err := svc.Run(context.Background(), domain.CallExchange{
		Provider: "openai",
		Model:    "gpt-4",
		Request: domain.CallRequestRecord{
			Messages: []domain.Message{{Role: "user", Content: "password hunter2"}},
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if strings.Contains(rec.got.Request.Messages[0].Content, "hunter2") {
		t.Fatalf("extra secret leaked: %q", rec.got.Request.Messages[0].Content)
	}
}

func TestRunCleanExchangeKeepsRedactedFalse(t *testing.T) {
	rec := &captureRecorder{}
	svc := newService(rec, domain.Config{Archive: domain.ArchiveSettings{Dir: "/calls"}})

	_, err := svc.Run(context.Background(), domain.CallExchange{
		Provider: "openai",
		Model:    "gpt-4",
		Request: domain.CallRequestRecord{
			Messages: []domain.Message{{Role: "user", Content: "hello world"}},
		},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rec.got.Redacted {
		t.Fatal("clean exchange must not be flagged redacted")
	}
}

func TestRunMissingDepsFails(t *testing.T) {
	svc := &Service{}
	if _, err := svc.Run(context.Background(), domain.CallExchange{}); err == nil {
		t.Fatal("expected dependency error")
	}
}
