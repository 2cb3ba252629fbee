package settings

import (
	"github.com/prohmpiriya/tenant-service/internal/domain"
	"github.com/prohmpiriya/tenant-service/internal/dto"
)

// DetermineChangedSettings lists the flags whose requested value differs from the
// persisted one, in domain.SettingKinds order. Absent requested settings yield no
// changes. Absent requested flags compare as false.
func DetermineChangedSettings(requested *dto.SettingsDTO, persisted *domain.Tenant) ([]domain.SettingKind, error) {
	if requested == nil {
		return nil, nil
	}

	stored, err := persisted.Settings()
	if err != nil {
		return nil, err
	}

	var changed []domain.SettingKind
	for _, kind := range domain.SettingKinds {
		if dto.NullAsFalse(requested.Flag(kind)) != stored.Flag(kind) {
			changed = append(changed, kind)
		}
	}
	return changed, nil
}

// Contains reports whether kind is in changed
func Contains(changed []domain.SettingKind, kind domain.SettingKind) bool {
	for _, c := range changed {
		if c == kind {
			return true
		}
	}
	return false
}
