package settings

import (
	"fmt"

	"github.com/julianstephens/habitreel/internal/cli"
	"github.com/julianstephens/habitreel/internal/sorting"
	"github.com/julianstephens/habitreel/internal/utils"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	Timezone          *string `help:"IANA timezone used for day boundaries, or 'Local' to follow the system."`
	Sort              *string `help:"Default sort order for habit lists."`
	Rewards           *bool   `help:"Enable or disable photo rewards."`
	RewardProviderURL *string `name:"reward-provider-url" help:"Base URL of the photo provider."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	if c.List {
		ctx.Println("Current Settings:")
		ctx.Printf("  Timezone:              %s (resolved: %s)\n", settings.Timezone, utils.LocationOrDefault(settings.Timezone))
		ctx.Printf("  Sort Preference:       %s\n", ctx.Manager.SortPreference())
		ctx.Println("\nReward Settings:")
		ctx.Printf("  Rewards Enabled:       %v\n", settings.RewardsEnabled)
		ctx.Printf("  Reward Provider URL:   %s\n", settings.RewardProviderURL)
		return nil
	}

	var sortPref sorting.Strategy
	if c.Sort != nil {
		if sortPref, err = sorting.Parse(*c.Sort); err != nil {
			return err
		}
	}

	updated := false
	if c.Timezone != nil {
		if !utils.ValidateTimezone(*c.Timezone) {
			return fmt.Errorf("invalid timezone: %s", *c.Timezone)
		}
		settings.Timezone = *c.Timezone
		updated = true
	}
	if c.Sort != nil {
		// Same path as 'sort set' so the preference key stays authoritative.
		ctx.Manager.SetSortPreference(sortPref)
		settings.SortPreference = string(sortPref)
		updated = true
	}
	if c.Rewards != nil {
		settings.RewardsEnabled = *c.Rewards
		updated = true
	}
	if c.RewardProviderURL != nil {
		settings.RewardProviderURL = *c.RewardProviderURL
		updated = true
	}

	if updated {
		if err := ctx.Store.SaveSettings(settings); err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
		ctx.Println("Settings updated successfully.")
	} else {
		ctx.Println("No changes specified. Use --list to view settings or flags to update them.")
	}

	return nil
}
