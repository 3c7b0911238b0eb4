package models

import (
	"strconv"

	"github.com/julianstephens/habitreel/internal/constants"
)

// MapToSettings converts a map of key-value pairs to a Settings struct.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := Settings{}

	for key, value := range data {
		switch key {
		case constants.SettingTimezone:
			settings.Timezone = value
		case constants.SettingSortPreference:
			settings.SortPreference = value
		case constants.SettingRewardsEnabled:
			enabled, err := strconv.ParseBool(value)
			if err != nil {
				return Settings{}, err
			}
			settings.RewardsEnabled = enabled
		case constants.SettingRewardProviderURL:
			settings.RewardProviderURL = value
		}
	}
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingTimezone:          settings.Timezone,
		constants.SettingSortPreference:    settings.SortPreference,
		constants.SettingRewardsEnabled:    strconv.FormatBool(settings.RewardsEnabled),
		constants.SettingRewardProviderURL: settings.RewardProviderURL,
	}
}

// ApplyDefaultSettings applies default values to missing settings.
func ApplyDefaultSettings(settings *Settings) {
	if settings.Timezone == "" {
		settings.Timezone = constants.DefaultSettingZone
	}
	if settings.SortPreference == "" {
		settings.SortPreference = constants.DefaultSortPreference
	}
}
