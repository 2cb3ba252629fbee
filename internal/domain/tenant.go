package domain

import (
	"time"
)

// Tenant represents an organisation with its own branding, legal texts and feature settings
type Tenant struct {
	ID        int64
	Name      string
	Subdomain string
	Licensing *Licensing
	Theming   Theming
	Content   Content
	// SettingsBlob is the serialized Settings document as stored. Use DecodeSettings
	// and EncodeSettings to cross the boundary.
	SettingsBlob string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Licensing holds seat limits
type Licensing struct {
	AllowedNumberOfUsers *int
}

// AllowedUsers returns the licensed seat count, nil when unlimited or unset
func (l *Licensing) AllowedUsers() *int {
	if l == nil {
		return nil
	}
	return l.AllowedNumberOfUsers
}

// Theming holds free-form branding values
type Theming struct {
	Logo           string
	Favicon        string
	PrimaryColor   string
	SecondaryColor string
}

// Content holds the legal texts keyed by language code
type Content struct {
	Impressum                      map[string]string
	Privacy                        map[string]string
	TermsAndConditions             map[string]string
	DataPrivacyConfirmation        *time.Time
	TermsAndConditionsConfirmation *time.Time
}

// Settings decodes the tenant's settings document
func (t *Tenant) Settings() (Settings, error) {
	return DecodeSettings(t.SettingsBlob)
}
