package sanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/prohmpiriya/tenant-service/internal/dto"
)

// Sanitizer strips unsafe markup from incoming tenant data. Legal texts keep
// user-generated-content HTML; every other string is reduced to plain text.
type Sanitizer struct {
	plain *bluemonday.Policy
	rich  *bluemonday.Policy
}

// New creates a Sanitizer
func New() *Sanitizer {
	return &Sanitizer{
		plain: bluemonday.StrictPolicy(),
		rich:  bluemonday.UGCPolicy(),
	}
}

// Tenant sanitizes a tenant request in place
func (s *Sanitizer) Tenant(req *dto.TenantDTO) {
	req.Name = s.Text(req.Name)
	req.Subdomain = strings.ToLower(s.Text(req.Subdomain))

	req.Theming.Logo = s.Text(req.Theming.Logo)
	req.Theming.Favicon = s.Text(req.Theming.Favicon)
	req.Theming.PrimaryColor = s.Text(req.Theming.PrimaryColor)
	req.Theming.SecondaryColor = s.Text(req.Theming.SecondaryColor)

	req.Content.Impressum = s.richMap(req.Content.Impressum)
	req.Content.Privacy = s.richMap(req.Content.Privacy)
	req.Content.TermsAndConditions = s.richMap(req.Content.TermsAndConditions)

	if req.Settings != nil {
		for i, lang := range req.Settings.ActiveLanguages {
			req.Settings.ActiveLanguages[i] = strings.ToLower(s.Text(lang))
		}
	}
}

// plainEntities restores the characters the strict policy escapes that cannot
// form markup. Angle brackets stay encoded.
var plainEntities = strings.NewReplacer("&amp;", "&", "&#34;", `"`, "&#39;", "'")

// Text reduces input to plain text. Entity-encoded tags are decoded before the
// strict policy runs so they are stripped like literal ones.
func (s *Sanitizer) Text(in string) string {
	out := s.plain.Sanitize(html.UnescapeString(in))
	return strings.TrimSpace(plainEntities.Replace(out))
}

// HTML keeps safe formatting markup
func (s *Sanitizer) HTML(in string) string {
	return s.rich.Sanitize(in)
}

func (s *Sanitizer) richMap(texts map[string]string) map[string]string {
	if texts == nil {
		return nil
	}
	out := make(map[string]string, len(texts))
	for lang, text := range texts {
		out[strings.ToLower(s.Text(lang))] = s.HTML(text)
	}
	return out
}
