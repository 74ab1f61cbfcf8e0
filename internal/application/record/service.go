// Package record orchestrates redaction and durable persistence of one
// provider exchange.
package record

import (
	"context"
	"errors"
	"fmt"

	"github.com/doeshing/calltrail/internal/domain"
	"github.com/doeshing/calltrail/internal/ports"
)

// Service wires the redactor and recorder behind the collaborator contract.
type Service struct {
	ConfigProvider ports.ConfigProvider
	Redactor       ports.Redactor
	Recorder       ports.CallRecorder
	Logger         ports.Logger
}

// Run redacts and records one exchange. Recording is a durability aid, not
// a critical-path operation: failures come back in the result, and only
// wiring mistakes surface as errors.
func (s *Service) Run(ctx context.Context, ex domain.CallExchange) (domain.RecordResult, error) {
	if s.ConfigProvider == nil || s.Redactor == nil || s.Recorder == nil || s.Logger == nil {
		return domain.RecordResult{}, errors.New("record.Service dependencies not satisfied")
	}

	cfg, err := s.ConfigProvider.Load(ctx)
	if err != nil {
		return domain.RecordResult{}, fmt.Errorf("load config: %w", err)
	}

	if ex.DestinationDir == "" {
		ex.DestinationDir = cfg.Archive.Dir
	}
	if ex.Provider == "" {
		ex.Provider = ex.Request.Provider
	}
	if ex.Model == "" {
		ex.Model = ex.Request.Model
	}

	secrets := cfg.Redaction.ExtraSecrets
	redacted := s.Redactor.RedactMessages(ex.Request.Messages, secrets)
	if ex.Response.Content != nil {
		content, changed := s.Redactor.Redact(*ex.Response.Content, secrets)
		ex.Response.Content = &content
		redacted = redacted || changed
	}
	ex.Redacted = ex.Redacted || redacted

	res := s.Recorder.Record(ex)
	if !res.OK {
		s.Logger.Warn("exchange not recorded", map[string]interface{}{
			"provider": ex.Provider,
			"model":    ex.Model,
			"reason":   res.Reason,
		})
		return res, nil
	}

	s.Logger.Debug("exchange recorded", map[string]interface{}{
		"path":     res.FilePath,
		"redacted": ex.Redacted,
	})
	return res, nil
}
