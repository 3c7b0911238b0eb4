package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitreel/internal/constants"
	"github.com/julianstephens/habitreel/internal/utils"
)

// HabitFormModel backs the add habit form.
type HabitFormModel struct {
	Name      string
	Days      string
	TimeOfDay constants.TimeOfDay
	Reward    bool
}

func newHabitFormModel() *HabitFormModel {
	return &HabitFormModel{Days: "daily", TimeOfDay: constants.TimeOfDayAnytime}
}

// Frequency returns the normalized weekday names typed into the form.
func (f *HabitFormModel) Frequency() ([]string, error) {
	return utils.ParseWeekdays(f.Days)
}

func NewHabitForm(fm *HabitFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&fm.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Days").
				Description("daily, weekdays, weekends or a list like mon,wed,fri").
				Value(&fm.Days).
				Validate(func(s string) error {
					days, err := utils.ParseWeekdays(s)
					if err != nil {
						return err
					}
					if len(days) == 0 {
						return errors.New("at least one weekday is required")
					}
					return nil
				}),
			huh.NewSelect[constants.TimeOfDay]().
				Title("Time of day").
				Options(
					huh.NewOption("Anytime", constants.TimeOfDayAnytime),
					huh.NewOption("Morning", constants.TimeOfDayMorning),
					huh.NewOption("Afternoon", constants.TimeOfDayAfternoon),
					huh.NewOption("Evening", constants.TimeOfDayEvening),
				).
				Value(&fm.TimeOfDay),
			huh.NewConfirm().
				Title("Unlock a photo reward on completion?").
				Value(&fm.Reward),
		),
	)
}
