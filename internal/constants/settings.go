package constants

const (
	SettingTimezone          = "timezone"
	SettingSortPreference    = "sort_preference"
	SettingRewardsEnabled    = "rewards_enabled"
	SettingRewardProviderURL = "reward_provider_url"

	// Default Settings Values
	DefaultSortPreference = "default"
	DefaultRewardsEnabled = false
	DefaultSettingZone    = "Local" // resolve from the runtime by default
)
