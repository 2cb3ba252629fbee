package settings

import (
	"github.com/prohmpiriya/tenant-service/internal/domain"
	"github.com/prohmpiriya/tenant-service/internal/dto"
)

// DependentRule disables Child whenever Parent is disabled
type DependentRule struct {
	Parent domain.SettingKind
	Child  domain.SettingKind
}

// DefaultRules are the dependent-setting rules applied to every tenant
var DefaultRules = []DependentRule{
	{Parent: domain.SettingFeatureTopicsEnabled, Child: domain.SettingTopicsInRegistrationEnabled},
}

// Overrider enforces dependent-setting rules on incoming requests
type Overrider struct {
	rules []DependentRule
}

// NewOverrider creates an Overrider; without rules it uses DefaultRules
func NewOverrider(rules ...DependentRule) *Overrider {
	if len(rules) == 0 {
		rules = DefaultRules
	}
	return &Overrider{rules: rules}
}

// OnCreate forces each child flag to false when its parent is absent or false
func (o *Overrider) OnCreate(req *dto.TenantDTO) {
	if req.Settings == nil {
		return
	}
	for _, rule := range o.rules {
		if !dto.NullAsFalse(req.Settings.Flag(rule.Parent)) {
			req.Settings.SetFlag(rule.Child, false)
		}
	}
}

// OnUpdate forces each child flag to false when its parent was just switched off.
// A parent that was already off and stays off is not a change, so the child is left
// as requested. The detected changes are returned for the caller's use.
func (o *Overrider) OnUpdate(req *dto.TenantDTO, persisted *domain.Tenant) ([]domain.SettingKind, error) {
	changed, err := DetermineChangedSettings(req.Settings, persisted)
	if err != nil {
		return nil, err
	}

	for _, rule := range o.rules {
		if Contains(changed, rule.Parent) && !dto.NullAsFalse(req.Settings.Flag(rule.Parent)) {
			req.Settings.SetFlag(rule.Child, false)
		}
	}
	return changed, nil
}
