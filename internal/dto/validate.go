package dto

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"golang.org/x/text/language"

	"github.com/prohmpiriya/tenant-service/internal/domain"
)

// MaxNameLength matches the width of the tenants.name column
const MaxNameLength = 100

var subdomainRegex = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]*[a-z0-9])?$`)

// ValidateSubdomain checks the subdomain is a single lowercase DNS label
func (d *TenantDTO) ValidateSubdomain() error {
	if len(d.Subdomain) > 63 || !subdomainRegex.MatchString(d.Subdomain) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidSubdomain, d.Subdomain)
	}
	return nil
}

// ValidateLanguages checks every legal-text key and active language is a known
// two-letter ISO 639-1 code, and active languages are not repeated
func (d *TenantDTO) ValidateLanguages() error {
	for _, texts := range []map[string]string{d.Content.Impressum, d.Content.Privacy, d.Content.TermsAndConditions} {
		for key := range texts {
			if !IsLanguageKey(key) {
				return fmt.Errorf("%w: %q", domain.ErrInvalidLanguage, key)
			}
		}
	}

	if d.Settings == nil {
		return nil
	}
	seen := make(map[string]struct{}, len(d.Settings.ActiveLanguages))
	for _, lang := range d.Settings.ActiveLanguages {
		if !IsLanguageKey(lang) {
			return fmt.Errorf("%w: %q", domain.ErrInvalidLanguage, lang)
		}
		if _, dup := seen[lang]; dup {
			return fmt.Errorf("%w: language %q listed twice", domain.ErrInvalidSettings, lang)
		}
		seen[lang] = struct{}{}
	}
	return nil
}

// Validate runs all content checks shared by create and update
func (d *TenantDTO) Validate() error {
	if err := d.ValidateSubdomain(); err != nil {
		return err
	}
	if utf8.RuneCountInString(d.Name) > MaxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", domain.ErrFieldTooLong, MaxNameLength)
	}
	if d.Licensing != nil && d.Licensing.AllowedNumberOfUsers != nil && *d.Licensing.AllowedNumberOfUsers < 0 {
		return fmt.Errorf("%w: allowed number of users must not be negative", domain.ErrValidation)
	}
	return d.ValidateLanguages()
}

// IsLanguageKey reports whether key is a known two-letter language code
func IsLanguageKey(key string) bool {
	if len(key) != 2 {
		return false
	}
	_, err := language.ParseBase(key)
	return err == nil
}
