package habits

import (
	"github.com/julianstephens/habitreel/internal/cli"
	"github.com/julianstephens/habitreel/internal/constants"
)

type RewardCmd struct {
	Show   RewardShowCmd   `cmd:"" help:"Show today's reward status for a habit."`
	Reveal RewardRevealCmd `cmd:"" help:"Reveal today's unlocked photo for a habit."`
}

type RewardShowCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
}

func (c *RewardShowCmd) Run(ctx *cli.Context) error {
	habit, photo, revealed, err := ctx.Manager.Reward(ctx.Evaluator(), c.Habit)
	if err != nil {
		return err
	}

	switch {
	case !habit.RewardEnabled:
		ctx.Printf("Rewards are off for %s. Enable them with '%s habit edit %q --reward'.\n", habit.Name, constants.AppName, habit.Name)
	case photo == nil:
		ctx.Printf("No reward yet for %s today. Complete it to unlock one.\n", habit.Name)
	case !revealed:
		ctx.Printf("🎁 A photo is waiting for %s. Run '%s reward reveal %q'.\n", habit.Name, constants.AppName, habit.Name)
	default:
		ctx.Printf("%s: %s (%dx%d)\n", habit.Name, photo.URL, photo.Width, photo.Height)
	}
	return nil
}

type RewardRevealCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
}

func (c *RewardRevealCmd) Run(ctx *cli.Context) error {
	photo, err := ctx.Manager.Reveal(ctx.Evaluator(), c.Habit)
	if err != nil {
		return err
	}
	ctx.Printf("🎉 %s (%dx%d)\n", photo.URL, photo.Width, photo.Height)
	if photo.ThumbnailURL != "" {
		ctx.Printf("   thumbnail: %s\n", photo.ThumbnailURL)
	}
	return nil
}
