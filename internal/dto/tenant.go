package dto

import (
	"time"

	"github.com/prohmpiriya/tenant-service/internal/domain"
)

// DefaultLanguage is used when a requested language has no content
const DefaultLanguage = "de"

// TenantDTO is the admin representation of a tenant, used for requests and responses
type TenantDTO struct {
	ID         *int64        `json:"id"`
	Name       string        `json:"name" binding:"required,min=1,max=100"`
	Subdomain  string        `json:"subdomain" binding:"required,min=1,max=100"`
	Licensing  *LicensingDTO `json:"licensing"`
	Theming    ThemingDTO    `json:"theming"`
	Content    ContentDTO    `json:"content"`
	Settings   *SettingsDTO  `json:"settings"`
	CreateDate string        `json:"createDate,omitempty"`
	UpdateDate string        `json:"updateDate,omitempty"`
}

// LicensingDTO carries seat limits
type LicensingDTO struct {
	AllowedNumberOfUsers *int `json:"allowedNumberOfUsers"`
}

// ThemingDTO carries branding values
type ThemingDTO struct {
	Logo           string `json:"logo"`
	Favicon        string `json:"favicon"`
	PrimaryColor   string `json:"primaryColor"`
	SecondaryColor string `json:"secondaryColor"`
}

// ContentDTO carries legal texts keyed by language code. A nil map means
// the text was not sent.
type ContentDTO struct {
	Impressum                      map[string]string `json:"impressum,omitempty"`
	Privacy                        map[string]string `json:"privacy,omitempty"`
	TermsAndConditions             map[string]string `json:"termsAndConditions,omitempty"`
	DataPrivacyConfirmation        *time.Time        `json:"dataPrivacyConfirmation,omitempty"`
	TermsAndConditionsConfirmation *time.Time        `json:"termsAndConditionsConfirmation,omitempty"`
}

// SettingsDTO is the request side of Settings. Flags are pointers so an absent
// flag can be told apart from false; business logic reads them through NullAsFalse.
type SettingsDTO struct {
	FeatureTopicsEnabled            *bool    `json:"featureTopicsEnabled"`
	FeatureDemographicsEnabled      *bool    `json:"featureDemographicsEnabled"`
	FeatureAppointmentsEnabled      *bool    `json:"featureAppointmentsEnabled"`
	FeatureStatisticsEnabled        *bool    `json:"featureStatisticsEnabled"`
	FeatureGroupChatV2Enabled       *bool    `json:"featureGroupChatV2Enabled"`
	FeatureToolsEnabled             *bool    `json:"featureToolsEnabled"`
	FeatureAttachmentUploadDisabled *bool    `json:"featureAttachmentUploadDisabled"`
	TopicsInRegistrationEnabled     *bool    `json:"topicsInRegistrationEnabled"`
	ActiveLanguages                 []string `json:"activeLanguages"`
}

// NullAsFalse reads an optional flag, treating absent as false
func NullAsFalse(b *bool) bool {
	return b != nil && *b
}

// BoolPtr returns a pointer to v
func BoolPtr(v bool) *bool {
	return &v
}

func (s *SettingsDTO) field(kind domain.SettingKind) **bool {
	switch kind {
	case domain.SettingFeatureTopicsEnabled:
		return &s.FeatureTopicsEnabled
	case domain.SettingFeatureDemographicsEnabled:
		return &s.FeatureDemographicsEnabled
	case domain.SettingFeatureAppointmentsEnabled:
		return &s.FeatureAppointmentsEnabled
	case domain.SettingFeatureStatisticsEnabled:
		return &s.FeatureStatisticsEnabled
	case domain.SettingFeatureGroupChatV2Enabled:
		return &s.FeatureGroupChatV2Enabled
	case domain.SettingFeatureToolsEnabled:
		return &s.FeatureToolsEnabled
	case domain.SettingFeatureAttachmentUploadDisabled:
		return &s.FeatureAttachmentUploadDisabled
	case domain.SettingTopicsInRegistrationEnabled:
		return &s.TopicsInRegistrationEnabled
	}
	return nil
}

// Flag returns the requested value of a flag, nil when absent
func (s *SettingsDTO) Flag(kind domain.SettingKind) *bool {
	if s == nil {
		return nil
	}
	if f := s.field(kind); f != nil {
		return *f
	}
	return nil
}

// SetFlag forces a flag to the given value
func (s *SettingsDTO) SetFlag(kind domain.SettingKind, value bool) {
	if f := s.field(kind); f != nil {
		*f = BoolPtr(value)
	}
}

// AdminTenantDTO is a tenant enriched with its admin users' emails
type AdminTenantDTO struct {
	TenantDTO
	AdminEmails []string `json:"adminEmails"`
}

// ExtendedSettingsDTO is the consulting-type settings bundle merged into tenant views
type ExtendedSettingsDTO struct {
	IsVideoCallAllowed       bool   `json:"isVideoCallAllowed"`
	SendWelcomeMessage       bool   `json:"sendWelcomeMessage"`
	WelcomeMessageText       string `json:"welcomeMessageText,omitempty"`
	SendFurtherStepsMessage  bool   `json:"sendFurtherStepsMessage"`
	NotificationsEnabled     bool   `json:"notificationsEnabled"`
	LanguageFormal           bool   `json:"languageFormal"`
	IsAnonymousConversations bool   `json:"isAnonymousConversationAllowed"`
}

// RestrictedTenantDTO is the public, unauthenticated view of a tenant with
// legal texts resolved for one language
type RestrictedTenantDTO struct {
	ID        int64                  `json:"id"`
	Name      string                 `json:"name"`
	Subdomain string                 `json:"subdomain"`
	Theming   ThemingDTO             `json:"theming"`
	Content   RestrictedContentDTO   `json:"content"`
	Settings  *RestrictedSettingsDTO `json:"settings"`
}

// RestrictedContentDTO carries legal texts for a single language
type RestrictedContentDTO struct {
	Impressum                      string     `json:"impressum"`
	Privacy                        string     `json:"privacy"`
	TermsAndConditions             string     `json:"termsAndConditions"`
	DataPrivacyConfirmation        *time.Time `json:"dataPrivacyConfirmation,omitempty"`
	TermsAndConditionsConfirmation *time.Time `json:"termsAndConditionsConfirmation,omitempty"`
}

// RestrictedSettingsDTO exposes resolved flags to anonymous clients
type RestrictedSettingsDTO struct {
	FeatureTopicsEnabled            bool                 `json:"featureTopicsEnabled"`
	FeatureDemographicsEnabled      bool                 `json:"featureDemographicsEnabled"`
	FeatureAppointmentsEnabled      bool                 `json:"featureAppointmentsEnabled"`
	FeatureStatisticsEnabled        bool                 `json:"featureStatisticsEnabled"`
	FeatureGroupChatV2Enabled       bool                 `json:"featureGroupChatV2Enabled"`
	FeatureToolsEnabled             bool                 `json:"featureToolsEnabled"`
	FeatureAttachmentUploadDisabled bool                 `json:"featureAttachmentUploadDisabled"`
	TopicsInRegistrationEnabled     bool                 `json:"topicsInRegistrationEnabled"`
	ActiveLanguages                 []string             `json:"activeLanguages"`
	ExtendedSettings                *ExtendedSettingsDTO `json:"extendedSettings,omitempty"`
}

// PublicTenantQuery holds query parameters of the public lookups
type PublicTenantQuery struct {
	Lang string `form:"lang" binding:"omitempty,max=8"`
	// TenantID is honoured only in single-domain mode
	TenantID *int64 `form:"tenantId" binding:"omitempty,min=1"`
}

// ListTenantsQuery represents query parameters for listing tenants
type ListTenantsQuery struct {
	Page    int    `form:"page" binding:"omitempty,min=1"`
	PerPage int    `form:"perPage" binding:"omitempty,min=1,max=100"`
	Search  string `form:"search" binding:"omitempty,max=255"`
}

// SetDefaults sets default values for query parameters
func (q *ListTenantsQuery) SetDefaults() {
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PerPage == 0 {
		q.PerPage = 20
	}
}

// Offset returns the row offset of the requested page
func (q *ListTenantsQuery) Offset() int {
	return (q.Page - 1) * q.PerPage
}

// ListTenantsResponse represents a page of tenants
type ListTenantsResponse struct {
	Tenants []*AdminTenantDTO `json:"tenants"`
	Total   int64             `json:"total"`
	Page    int               `json:"page"`
	PerPage int               `json:"perPage"`
}
