package models

// Settings represents application-wide settings
type Settings struct {
	Timezone          string `json:"timezone"`            // IANA timezone name (e.g. "America/New_York", or "Local" to resolve from the system)
	SortPreference    string `json:"sort_preference"`     // default habit ordering
	RewardsEnabled    bool   `json:"rewards_enabled"`     // whether completions unlock photo rewards
	RewardProviderURL string `json:"reward_provider_url"` // base URL of the photo provider
}
