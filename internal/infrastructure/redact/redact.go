// Package redact masks credential-shaped substrings before persistence.
// Masking is irreversible and the package is pure: no I/O, deterministic
// output for deterministic input.
package redact

import (
	"regexp"
	"strings"

	"github.com/doeshing/calltrail/internal/domain"
	"github.com/doeshing/calltrail/internal/ports"
)

// Replacement markers. Square brackets keep the markers out of the opaque
// token pattern's reach on later passes.
const (
	markerSecret = "[REDACTED:SECRET]"
	markerAPIKey = "[REDACTED:API-KEY]"
	markerBearer = "Bearer [REDACTED:TOKEN]"
	markerToken  = "[REDACTED:TOKEN]"
	markerParam  = "[REDACTED]"
)

var (
	// Provider-style API key tokens (sk-..., pk-..., rk-..., xoxb-...).
	apiKeyRe = regexp.MustCompile(`\b(?:sk|pk|rk|xox[bap])-[A-Za-z0-9_-]{16,}\b`)
	// Bearer-token authorization headers.
	bearerRe = regexp.MustCompile(`(?i)\bbearer\s+[A-Za-z0-9._~+/=-]{8,}`)
	// Long opaque alphanumeric/base64-like runs that look like tokens.
	opaqueRe = regexp.MustCompile(`\b[A-Za-z0-9+/_-]{32,}={0,2}\b`)
	// key=/token=/secret=-style query or assignment parameters.
	paramRe = regexp.MustCompile(`(?i)\b(key|apikey|api_key|token|access_token|secret|password)=[^&\s"']+`)
)

// Redactor implements the ports.Redactor port.
type Redactor struct{}

// New returns a stateless Redactor.
func New() *Redactor {
	return &Redactor{}
}

// Redact implements ports.Redactor. Rules apply in a fixed order: extra
// secrets first so caller-supplied literals win over pattern matches.
func (r *Redactor) Redact(text string, extraSecrets []string) (string, bool) {
	redacted := false

	for _, secret := range extraSecrets {
		if secret == "" {
			continue
		}
		if strings.Contains(text, secret) {
			text = strings.ReplaceAll(text, secret, markerSecret)
			redacted = true
		}
	}

	text, redacted = apply(apiKeyRe, text, markerAPIKey, redacted)
	text, redacted = apply(bearerRe, text, markerBearer, redacted)
	text, redacted = apply(opaqueRe, text, markerToken, redacted)

	if paramRe.MatchString(text) {
		text = paramRe.ReplaceAllString(text, "$1="+markerParam)
		redacted = true
	}

	return text, redacted
}

// RedactMessages implements ports.Redactor.
func (r *Redactor) RedactMessages(msgs []domain.Message, extraSecrets []string) bool {
	redacted := false
	for i := range msgs {
		content, changed := r.Redact(msgs[i].Content, extraSecrets)
		msgs[i].Content = content
		redacted = redacted || changed
	}
	return redacted
}

func apply(re *regexp.Regexp, text, marker string, redacted bool) (string, bool) {
	if !re.MatchString(text) {
		return text, redacted
	}
	return re.ReplaceAllString(text, marker), true
}

var _ ports.Redactor = (*Redactor)(nil)
