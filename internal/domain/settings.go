package domain

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SettingKind names a boolean feature flag. The value is the flag's JSON key.
type SettingKind string

const (
	SettingFeatureTopicsEnabled            SettingKind = "featureTopicsEnabled"
	SettingFeatureDemographicsEnabled      SettingKind = "featureDemographicsEnabled"
	SettingFeatureAppointmentsEnabled      SettingKind = "featureAppointmentsEnabled"
	SettingFeatureStatisticsEnabled        SettingKind = "featureStatisticsEnabled"
	SettingFeatureGroupChatV2Enabled       SettingKind = "featureGroupChatV2Enabled"
	SettingFeatureToolsEnabled             SettingKind = "featureToolsEnabled"
	SettingFeatureAttachmentUploadDisabled SettingKind = "featureAttachmentUploadDisabled"
	SettingTopicsInRegistrationEnabled     SettingKind = "topicsInRegistrationEnabled"
)

// SettingKinds lists every tracked flag in its fixed reporting order
var SettingKinds = []SettingKind{
	SettingFeatureTopicsEnabled,
	SettingFeatureDemographicsEnabled,
	SettingFeatureAppointmentsEnabled,
	SettingFeatureStatisticsEnabled,
	SettingFeatureGroupChatV2Enabled,
	SettingFeatureToolsEnabled,
	SettingFeatureAttachmentUploadDisabled,
	SettingTopicsInRegistrationEnabled,
}

// Settings is the typed feature configuration of a tenant
type Settings struct {
	FeatureTopicsEnabled            bool     `json:"featureTopicsEnabled"`
	FeatureDemographicsEnabled      bool     `json:"featureDemographicsEnabled"`
	FeatureAppointmentsEnabled      bool     `json:"featureAppointmentsEnabled"`
	FeatureStatisticsEnabled        bool     `json:"featureStatisticsEnabled"`
	FeatureGroupChatV2Enabled       bool     `json:"featureGroupChatV2Enabled"`
	FeatureToolsEnabled             bool     `json:"featureToolsEnabled"`
	FeatureAttachmentUploadDisabled bool     `json:"featureAttachmentUploadDisabled"`
	TopicsInRegistrationEnabled     bool     `json:"topicsInRegistrationEnabled"`
	ActiveLanguages                 []string `json:"activeLanguages"`
}

func (s *Settings) flag(kind SettingKind) *bool {
	switch kind {
	case SettingFeatureTopicsEnabled:
		return &s.FeatureTopicsEnabled
	case SettingFeatureDemographicsEnabled:
		return &s.FeatureDemographicsEnabled
	case SettingFeatureAppointmentsEnabled:
		return &s.FeatureAppointmentsEnabled
	case SettingFeatureStatisticsEnabled:
		return &s.FeatureStatisticsEnabled
	case SettingFeatureGroupChatV2Enabled:
		return &s.FeatureGroupChatV2Enabled
	case SettingFeatureToolsEnabled:
		return &s.FeatureToolsEnabled
	case SettingFeatureAttachmentUploadDisabled:
		return &s.FeatureAttachmentUploadDisabled
	case SettingTopicsInRegistrationEnabled:
		return &s.TopicsInRegistrationEnabled
	}
	return nil
}

// Flag returns the value of a flag; unknown kinds read as false
func (s Settings) Flag(kind SettingKind) bool {
	if p := s.flag(kind); p != nil {
		return *p
	}
	return false
}

// SetFlag sets a flag; unknown kinds are ignored
func (s *Settings) SetFlag(kind SettingKind, value bool) {
	if p := s.flag(kind); p != nil {
		*p = value
	}
}

// DecodeSettings parses a stored settings document. An empty document yields
// all-false defaults. Unknown keys are ignored and null flags read as false.
// A document that does not parse is a data integrity fault.
func DecodeSettings(blob string) (Settings, error) {
	var s Settings
	if strings.TrimSpace(blob) == "" {
		return s, nil
	}
	if err := json.Unmarshal([]byte(blob), &s); err != nil {
		return Settings{}, fmt.Errorf("%w: settings document: %v", ErrDataIntegrity, err)
	}
	return s, nil
}

// EncodeSettings serializes settings; only known keys are written
func EncodeSettings(s Settings) (string, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to encode settings: %w", err)
	}
	return string(b), nil
}
