package settings

import (
	"fmt"
	"testing"

	"github.com/prohmpiriya/tenant-service/internal/domain"
	"github.com/prohmpiriya/tenant-service/internal/dto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// optional flag values: absent, false, true
var triState = []*bool{nil, dto.BoolPtr(false), dto.BoolPtr(true)}

func describe(b *bool) string {
	if b == nil {
		return "absent"
	}
	return fmt.Sprint(*b)
}

func TestOverrider_OnCreate_ChildNeverOutlivesParent(t *testing.T) {
	o := NewOverrider()

	for _, topics := range triState {
		for _, inRegistration := range triState {
			t.Run(describe(topics)+"/"+describe(inRegistration), func(t *testing.T) {
				req := &dto.TenantDTO{Settings: &dto.SettingsDTO{
					FeatureTopicsEnabled:        topics,
					TopicsInRegistrationEnabled: inRegistration,
				}}

				o.OnCreate(req)

				got := dto.NullAsFalse(req.Settings.TopicsInRegistrationEnabled)
				if !dto.NullAsFalse(topics) {
					assert.False(t, got)
					require.NotNil(t, req.Settings.TopicsInRegistrationEnabled)
				} else {
					assert.Equal(t, dto.NullAsFalse(inRegistration), got)
				}
			})
		}
	}
}

func TestOverrider_OnCreate_NoSettings(t *testing.T) {
	req := &dto.TenantDTO{}
	NewOverrider().OnCreate(req)
	assert.Nil(t, req.Settings)
}

func TestOverrider_OnUpdate_SwitchingParentOff(t *testing.T) {
	persisted := tenantWithBlob(`{"featureTopicsEnabled":true,"topicsInRegistrationEnabled":true}`)
	req := &dto.TenantDTO{Settings: &dto.SettingsDTO{
		FeatureTopicsEnabled:        dto.BoolPtr(false),
		TopicsInRegistrationEnabled: dto.BoolPtr(true),
	}}

	changed, err := NewOverrider().OnUpdate(req, persisted)
	require.NoError(t, err)

	assert.Equal(t, []domain.SettingKind{domain.SettingFeatureTopicsEnabled}, changed)
	assert.False(t, dto.NullAsFalse(req.Settings.TopicsInRegistrationEnabled))
}

func TestOverrider_OnUpdate_ParentAlreadyOff(t *testing.T) {
	// parent was off before and stays off: no change detected, child kept as requested
	persisted := tenantWithBlob(`{"featureTopicsEnabled":false,"topicsInRegistrationEnabled":true}`)
	req := &dto.TenantDTO{Settings: &dto.SettingsDTO{
		FeatureTopicsEnabled:        dto.BoolPtr(false),
		TopicsInRegistrationEnabled: dto.BoolPtr(true),
	}}

	changed, err := NewOverrider().OnUpdate(req, persisted)
	require.NoError(t, err)

	assert.Empty(t, changed)
	assert.True(t, dto.NullAsFalse(req.Settings.TopicsInRegistrationEnabled))
}

func TestOverrider_OnUpdate_ParentSwitchedOn(t *testing.T) {
	persisted := tenantWithBlob(`{"featureTopicsEnabled":false}`)
	req := &dto.TenantDTO{Settings: &dto.SettingsDTO{
		FeatureTopicsEnabled:        dto.BoolPtr(true),
		TopicsInRegistrationEnabled: dto.BoolPtr(true),
	}}

	_, err := NewOverrider().OnUpdate(req, persisted)
	require.NoError(t, err)
	assert.True(t, dto.NullAsFalse(req.Settings.TopicsInRegistrationEnabled))
}

func TestOverrider_OnUpdate_AbsentSettings(t *testing.T) {
	persisted := tenantWithBlob(`{"featureTopicsEnabled":true,"topicsInRegistrationEnabled":true}`)
	req := &dto.TenantDTO{}

	changed, err := NewOverrider().OnUpdate(req, persisted)
	require.NoError(t, err)
	assert.Empty(t, changed)
	assert.Nil(t, req.Settings)
}

func TestOverrider_OnUpdate_PersistedOnRequestedOff_Exhaustive(t *testing.T) {
	for _, inRegistration := range triState {
		for _, persistedChild := range []bool{false, true} {
			t.Run(describe(inRegistration)+fmt.Sprintf("/persisted=%v", persistedChild), func(t *testing.T) {
				persisted := tenantWithBlob(fmt.Sprintf(`{"featureTopicsEnabled":true,"topicsInRegistrationEnabled":%v}`, persistedChild))
				req := &dto.TenantDTO{Settings: &dto.SettingsDTO{
					FeatureTopicsEnabled:        dto.BoolPtr(false),
					TopicsInRegistrationEnabled: inRegistration,
				}}

				_, err := NewOverrider().OnUpdate(req, persisted)
				require.NoError(t, err)
				assert.False(t, dto.NullAsFalse(req.Settings.TopicsInRegistrationEnabled))
			})
		}
	}
}

func TestOverrider_OnUpdate_MalformedBlob(t *testing.T) {
	req := &dto.TenantDTO{Settings: &dto.SettingsDTO{}}
	_, err := NewOverrider().OnUpdate(req, tenantWithBlob("{"))
	assert.ErrorIs(t, err, domain.ErrDataIntegrity)
}

func TestOverrider_CustomRules(t *testing.T) {
	o := NewOverrider(DependentRule{
		Parent: domain.SettingFeatureGroupChatV2Enabled,
		Child:  domain.SettingFeatureToolsEnabled,
	})

	req := &dto.TenantDTO{Settings: &dto.SettingsDTO{
		FeatureToolsEnabled:         dto.BoolPtr(true),
		TopicsInRegistrationEnabled: dto.BoolPtr(true),
	}}
	o.OnCreate(req)

	assert.False(t, dto.NullAsFalse(req.Settings.FeatureToolsEnabled))
	assert.True(t, dto.NullAsFalse(req.Settings.TopicsInRegistrationEnabled), "default rule not active")
}
