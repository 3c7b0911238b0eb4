package models

// PhotoReward is a photo unlocked for a habit on a single calendar day
type PhotoReward struct {
	ID           string `json:"id"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl,omitempty"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
}
