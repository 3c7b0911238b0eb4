package models

import (
	"testing"

	"github.com/julianstephens/habitreel/internal/constants"
)

func TestMapToSettings(t *testing.T) {
	tests := []struct {
		name    string
		data    map[string]string
		want    Settings
		wantErr bool
	}{
		{
			name: "all keys",
			data: map[string]string{
				constants.SettingTimezone:          "Europe/London",
				constants.SettingSortPreference:    "streak",
				constants.SettingRewardsEnabled:    "true",
				constants.SettingRewardProviderURL: "https://photos.example.com",
			},
			want: Settings{
				Timezone:          "Europe/London",
				SortPreference:    "streak",
				RewardsEnabled:    true,
				RewardProviderURL: "https://photos.example.com",
			},
		},
		{
			name: "unknown keys are ignored",
			data: map[string]string{"day_start": "07:00"},
			want: Settings{},
		},
		{
			name:    "invalid bool",
			data:    map[string]string{constants.SettingRewardsEnabled: "maybe"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := MapToSettings(tt.data)
			if (err != nil) != tt.wantErr {
				t.Fatalf("MapToSettings() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("MapToSettings() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestApplyDefaultSettings(t *testing.T) {
	s := Settings{}
	ApplyDefaultSettings(&s)
	if s.Timezone != constants.DefaultSettingZone {
		t.Errorf("Timezone = %q, want %q", s.Timezone, constants.DefaultSettingZone)
	}
	if s.SortPreference != constants.DefaultSortPreference {
		t.Errorf("SortPreference = %q, want %q", s.SortPreference, constants.DefaultSortPreference)
	}

	s = Settings{Timezone: "Asia/Tokyo", SortPreference: "newest"}
	ApplyDefaultSettings(&s)
	if s.Timezone != "Asia/Tokyo" || s.SortPreference != "newest" {
		t.Errorf("ApplyDefaultSettings overwrote explicit values: %+v", s)
	}
}

func TestDayRecordBonus(t *testing.T) {
	if !(DayRecord{Due: false, Completed: true}).Bonus() {
		t.Error("completion on a non-due day should be a bonus")
	}
	if (DayRecord{Due: true, Completed: true}).Bonus() {
		t.Error("completion on a due day is not a bonus")
	}
}
