package dto

import (
	"maps"
	"time"

	"github.com/prohmpiriya/tenant-service/internal/domain"
)

// ToEntity converts a tenant DTO into a new entity. Server-assigned fields
// (timestamps) are left zero.
func ToEntity(d *TenantDTO) (*domain.Tenant, error) {
	t := &domain.Tenant{
		Name:      d.Name,
		Subdomain: d.Subdomain,
		Licensing: licensingToEntity(d.Licensing),
		Theming:   themingToEntity(d.Theming),
		Content: domain.Content{
			Impressum:          maps.Clone(d.Content.Impressum),
			Privacy:            maps.Clone(d.Content.Privacy),
			TermsAndConditions: maps.Clone(d.Content.TermsAndConditions),
		},
	}
	if d.ID != nil {
		t.ID = *d.ID
	}

	if d.Settings != nil {
		blob, err := domain.EncodeSettings(SettingsToEntity(d.Settings))
		if err != nil {
			return nil, err
		}
		t.SettingsBlob = blob
	}
	return t, nil
}

// ApplyToEntity copies the mutable fields of an update request onto the persisted entity.
// Omitted settings and legal texts keep their stored values; licensing and theming are replaced.
func ApplyToEntity(d *TenantDTO, t *domain.Tenant) error {
	t.Name = d.Name
	t.Subdomain = d.Subdomain
	t.Licensing = licensingToEntity(d.Licensing)
	t.Theming = themingToEntity(d.Theming)

	if d.Content.Impressum != nil {
		t.Content.Impressum = maps.Clone(d.Content.Impressum)
	}
	if d.Content.Privacy != nil {
		t.Content.Privacy = maps.Clone(d.Content.Privacy)
	}
	if d.Content.TermsAndConditions != nil {
		t.Content.TermsAndConditions = maps.Clone(d.Content.TermsAndConditions)
	}

	if d.Settings == nil {
		return nil
	}

	persisted, err := t.Settings()
	if err != nil {
		return err
	}
	next := SettingsToEntity(d.Settings)
	if d.Settings.ActiveLanguages == nil {
		next.ActiveLanguages = persisted.ActiveLanguages
	}

	blob, err := domain.EncodeSettings(next)
	if err != nil {
		return err
	}
	t.SettingsBlob = blob
	return nil
}

// FromEntity converts an entity into its admin DTO
func FromEntity(t *domain.Tenant) (*TenantDTO, error) {
	id := t.ID
	d := &TenantDTO{
		ID:        &id,
		Name:      t.Name,
		Subdomain: t.Subdomain,
		Theming: ThemingDTO{
			Logo:           t.Theming.Logo,
			Favicon:        t.Theming.Favicon,
			PrimaryColor:   t.Theming.PrimaryColor,
			SecondaryColor: t.Theming.SecondaryColor,
		},
		Content: ContentDTO{
			Impressum:                      maps.Clone(t.Content.Impressum),
			Privacy:                        maps.Clone(t.Content.Privacy),
			TermsAndConditions:             maps.Clone(t.Content.TermsAndConditions),
			DataPrivacyConfirmation:        t.Content.DataPrivacyConfirmation,
			TermsAndConditionsConfirmation: t.Content.TermsAndConditionsConfirmation,
		},
		CreateDate: formatTime(t.CreatedAt),
		UpdateDate: formatTime(t.UpdatedAt),
	}

	if t.Licensing != nil {
		d.Licensing = &LicensingDTO{AllowedNumberOfUsers: copyInt(t.Licensing.AllowedNumberOfUsers)}
	}

	if t.SettingsBlob != "" {
		s, err := t.Settings()
		if err != nil {
			return nil, err
		}
		d.Settings = SettingsFromEntity(s)
	}
	return d, nil
}

// ToRestricted builds the public view of a tenant for one language
func ToRestricted(t *domain.Tenant, lang string, extended *ExtendedSettingsDTO) (*RestrictedTenantDTO, error) {
	s, err := t.Settings()
	if err != nil {
		return nil, err
	}

	return &RestrictedTenantDTO{
		ID:        t.ID,
		Name:      t.Name,
		Subdomain: t.Subdomain,
		Theming: ThemingDTO{
			Logo:           t.Theming.Logo,
			Favicon:        t.Theming.Favicon,
			PrimaryColor:   t.Theming.PrimaryColor,
			SecondaryColor: t.Theming.SecondaryColor,
		},
		Content: RestrictedContentDTO{
			Impressum:                      translate(t.Content.Impressum, lang),
			Privacy:                        translate(t.Content.Privacy, lang),
			TermsAndConditions:             translate(t.Content.TermsAndConditions, lang),
			DataPrivacyConfirmation:        t.Content.DataPrivacyConfirmation,
			TermsAndConditionsConfirmation: t.Content.TermsAndConditionsConfirmation,
		},
		Settings: &RestrictedSettingsDTO{
			FeatureTopicsEnabled:            s.FeatureTopicsEnabled,
			FeatureDemographicsEnabled:      s.FeatureDemographicsEnabled,
			FeatureAppointmentsEnabled:      s.FeatureAppointmentsEnabled,
			FeatureStatisticsEnabled:        s.FeatureStatisticsEnabled,
			FeatureGroupChatV2Enabled:       s.FeatureGroupChatV2Enabled,
			FeatureToolsEnabled:             s.FeatureToolsEnabled,
			FeatureAttachmentUploadDisabled: s.FeatureAttachmentUploadDisabled,
			TopicsInRegistrationEnabled:     s.TopicsInRegistrationEnabled,
			ActiveLanguages:                 activeLanguages(s.ActiveLanguages),
			ExtendedSettings:                extended,
		},
	}, nil
}

// SettingsToEntity resolves request flags with NullAsFalse
func SettingsToEntity(d *SettingsDTO) domain.Settings {
	var s domain.Settings
	for _, kind := range domain.SettingKinds {
		s.SetFlag(kind, NullAsFalse(d.Flag(kind)))
	}
	if d.ActiveLanguages != nil {
		s.ActiveLanguages = append([]string{}, d.ActiveLanguages...)
	}
	return s
}

// SettingsFromEntity exposes stored flags as explicit values
func SettingsFromEntity(s domain.Settings) *SettingsDTO {
	d := &SettingsDTO{}
	for _, kind := range domain.SettingKinds {
		d.SetFlag(kind, s.Flag(kind))
	}
	if s.ActiveLanguages != nil {
		d.ActiveLanguages = append([]string{}, s.ActiveLanguages...)
	}
	return d
}

func licensingToEntity(l *LicensingDTO) *domain.Licensing {
	if l == nil {
		return nil
	}
	return &domain.Licensing{AllowedNumberOfUsers: copyInt(l.AllowedNumberOfUsers)}
}

func themingToEntity(t ThemingDTO) domain.Theming {
	return domain.Theming{
		Logo:           t.Logo,
		Favicon:        t.Favicon,
		PrimaryColor:   t.PrimaryColor,
		SecondaryColor: t.SecondaryColor,
	}
}

func translate(texts map[string]string, lang string) string {
	if text, ok := texts[lang]; ok {
		return text
	}
	return texts[DefaultLanguage]
}

func activeLanguages(langs []string) []string {
	if len(langs) == 0 {
		return []string{DefaultLanguage}
	}
	return langs
}

func copyInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}
