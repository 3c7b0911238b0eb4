package system

import (
	"fmt"
	"time"

	"github.com/julianstephens/habitreel/internal/cli"
	"github.com/julianstephens/habitreel/internal/models"
	"github.com/julianstephens/habitreel/internal/utils"
	"github.com/julianstephens/habitreel/internal/validation"
)

type ValidateCmd struct {
	Fix bool `help:"Remove duplicate habits and unparsable completions."`
}

func (c *ValidateCmd) Run(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load storage: %w", err)
	}
	defer ctx.Store.Close()

	ctx.Println("Validating habits...")
	habits, result, err := validateHabits(ctx, true)
	if err != nil {
		return err
	}
	ctx.Println()
	ctx.Println(result.FormatReport())

	if !c.Fix || !result.HasConflicts() {
		return nil
	}

	actions := validation.AutoFixDuplicateHabits(result.Conflicts, habits, ctx.Store.DeleteHabit)
	actions = append(actions, validation.AutoFixCompletions(result.Conflicts, ctx.Store.RemoveCompletions)...)
	if len(actions) == 0 {
		ctx.Println("Nothing could be fixed automatically.")
		return nil
	}
	ctx.Println("Fixes applied:")
	for _, a := range actions {
		ctx.Printf("- %s\n", a.Action)
	}
	return nil
}

// validateHabits checks stored habits in the user's zone. It only needs a loaded store.
func validateHabits(ctx *cli.Context, includeDeleted bool) ([]models.Habit, validation.ValidationResult, error) {
	habits, err := ctx.Store.GetAllHabits(true, includeDeleted)
	if err != nil {
		return nil, validation.ValidationResult{}, fmt.Errorf("failed to get habits: %w", err)
	}

	tz := ""
	if settings, err := ctx.Store.GetSettings(); err == nil {
		tz = settings.Timezone
	}
	if ctx.Config != nil && ctx.Config.Timezone != "" {
		tz = ctx.Config.Timezone
	}
	now := time.Now()
	if ctx.Clock != nil {
		now = ctx.Clock.Now()
	}

	v := validation.New(utils.LocationOrDefault(tz), now)
	return habits, v.ValidateHabits(habits), nil
}
