package habits

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/julianstephens/habitreel/internal/cli"
	"github.com/julianstephens/habitreel/internal/constants"
	"github.com/julianstephens/habitreel/internal/manager"
	"github.com/julianstephens/habitreel/internal/models"
	"github.com/julianstephens/habitreel/internal/sorting"
	"github.com/julianstephens/habitreel/internal/tracker"
	"github.com/julianstephens/habitreel/internal/utils"
)

type HabitCmd struct {
	Add     HabitAddCmd     `cmd:"" help:"Add a new habit."`
	List    HabitListCmd    `cmd:"" help:"List habits."`
	Edit    HabitEditCmd    `cmd:"" help:"Edit a habit."`
	Toggle  HabitToggleCmd  `cmd:"" help:"Mark a habit done for a day, or undo it."`
	Today   HabitTodayCmd   `cmd:"" help:"Show today's habit status."`
	Next    HabitNextCmd    `cmd:"" help:"Show when habits are next due."`
	History HabitHistoryCmd `cmd:"" help:"Show day-by-day history for a habit."`
	Log     HabitLogCmd     `cmd:"" help:"Show habit log (ASCII history)."`
	Delete  HabitDeleteCmd  `cmd:"" help:"Delete a habit (soft delete)."`
	Restore HabitRestoreCmd `cmd:"" help:"Restore a deleted habit."`
}

type HabitAddCmd struct {
	Name        string `arg:"" help:"Habit name."`
	Days        string `help:"Comma-separated weekdays, or daily, weekdays, weekends." default:"daily"`
	Description string `help:"Optional description."`
	Color       string `help:"Display color."`
	Icon        string `help:"Display icon."`
	TimeOfDay   string `help:"morning, afternoon, evening or anytime." default:"anytime" enum:"morning,afternoon,evening,anytime"`
	Start       string `help:"Start date in YYYY-MM-DD format (default: today)."`
	Reward      bool   `help:"Unlock a photo reward when completed."`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.Manager.Create(manager.HabitInput{
		Name:          c.Name,
		Description:   c.Description,
		Color:         c.Color,
		Icon:          c.Icon,
		Frequency:     strings.Split(c.Days, ","),
		TimeOfDay:     constants.TimeOfDay(c.TimeOfDay),
		StartDate:     c.Start,
		RewardEnabled: c.Reward,
	})
	if err != nil {
		return err
	}

	ctx.Printf("Added habit: %s (%s)\n", habit.Name, utils.FormatFrequency(habit.Frequency))
	return nil
}

type HabitListCmd struct {
	Inactive bool   `help:"Include inactive habits."`
	Deleted  bool   `help:"Include deleted habits."`
	Sort     string `help:"Sort strategy (default: saved preference)."`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	strategy, err := parseSort(c.Sort)
	if err != nil {
		return err
	}

	ev := ctx.Evaluator()
	habits, err := ctx.Manager.List(ev, manager.Filter{IncludeInactive: c.Inactive, IncludeDeleted: c.Deleted}, strategy)
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		ctx.Println("No habits found.")
		return nil
	}

	for _, h := range habits {
		status := ""
		switch {
		case h.IsDeleted():
			status = " [DELETED]"
		case !h.Active:
			status = " [INACTIVE]"
		}
		ctx.Printf("%-24s %-16s %-14s created %s%s\n",
			h.Name,
			utils.FormatFrequency(h.Frequency),
			tracker.StreakText(h.Streak),
			humanize.RelTime(h.CreatedAt, ev.Now(), "ago", "from now"),
			status,
		)
	}
	return nil
}

type HabitEditCmd struct {
	Habit       string  `arg:"" help:"Habit name or id."`
	Name        *string `help:"New name."`
	Days        *string `help:"New comma-separated weekdays."`
	Description *string `help:"New description."`
	Color       *string `help:"New color."`
	Icon        *string `help:"New icon."`
	TimeOfDay   *string `help:"morning, afternoon, evening or anytime."`
	Start       *string `help:"New start date in YYYY-MM-DD format."`
	Reward      *bool   `help:"Enable or disable photo rewards."`
	Active      *bool   `help:"Activate or deactivate the habit."`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	patch := manager.HabitPatch{
		Name:          c.Name,
		Description:   c.Description,
		Color:         c.Color,
		Icon:          c.Icon,
		StartDate:     c.Start,
		RewardEnabled: c.Reward,
		Active:        c.Active,
	}
	if c.Days != nil {
		patch.Frequency = strings.Split(*c.Days, ",")
	}
	if c.TimeOfDay != nil {
		tod := constants.TimeOfDay(*c.TimeOfDay)
		patch.TimeOfDay = &tod
	}

	habit, err := ctx.Manager.Update(c.Habit, patch)
	if err != nil {
		return err
	}
	ctx.Printf("Updated habit: %s\n", habit.Name)
	return nil
}

type HabitToggleCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
	Date  string `help:"Date in YYYY-MM-DD format, or 'yesterday' (default: today)."`
}

func (c *HabitToggleCmd) Run(ctx *cli.Context) error {
	ev := ctx.Evaluator()
	day, err := ctx.ResolveDay(ev, c.Date)
	if err != nil {
		return err
	}

	res, err := ctx.Manager.Toggle(context.Background(), c.Habit, day)
	if err != nil {
		return err
	}

	if !res.Completed {
		ctx.Printf("Unmarked %q for %s (streak: %s)\n", res.Habit.Name, res.Day, tracker.StreakText(res.Habit.Streak))
		return nil
	}
	ctx.Printf("✓ Marked %q for %s (streak: %s)\n", res.Habit.Name, res.Day, tracker.StreakText(res.Habit.Streak))
	if res.Reward != nil {
		ctx.Printf("🎁 Reward unlocked! Run '%s reward reveal %q' to see it.\n", constants.AppName, res.Habit.Name)
	}
	return nil
}

type HabitTodayCmd struct{}

func (c *HabitTodayCmd) Run(ctx *cli.Context) error {
	ev := ctx.Evaluator()
	habits, err := ctx.Manager.List(ev, manager.Filter{}, "")
	if err != nil {
		return err
	}
	if len(habits) == 0 {
		ctx.Println("No habits found.")
		return nil
	}

	ctx.Printf("Habits for %s (%s):\n\n", ev.TodayString(), ev.Today().Weekday())
	due, done := 0, 0
	for _, st := range ctx.Manager.Statuses(ev, habits) {
		mark := "[ ]"
		if st.CompletedToday {
			mark = "[x]"
		}
		note := ""
		switch {
		case st.DueToday && st.CompletedToday:
			due++
			done++
		case st.DueToday:
			due++
		case st.CompletedToday:
			note = " (bonus)"
		default:
			mark = " - "
			note = " (not scheduled)"
		}
		if st.Reward != nil {
			note += " 🎁"
		}
		ctx.Printf("%s %s%s\n", mark, st.Habit.Name, note)
	}

	ctx.Printf("\nRecorded: %d/%d due\n", done, due)
	return nil
}

type HabitNextCmd struct {
	Habit string `arg:"" optional:"" help:"Habit name or id (default: all habits)."`
}

func (c *HabitNextCmd) Run(ctx *cli.Context) error {
	ev := ctx.Evaluator()

	var habits []models.Habit
	if c.Habit != "" {
		h, err := ctx.Manager.Get(c.Habit)
		if err != nil {
			return err
		}
		habits = []models.Habit{h}
	} else {
		var err error
		habits, err = ctx.Manager.List(ev, manager.Filter{}, sorting.Alphabetical)
		if err != nil {
			return err
		}
	}
	if len(habits) == 0 {
		ctx.Println("No habits found.")
		return nil
	}

	for _, h := range habits {
		next, err := ev.NextDueDateFromToday(h)
		if err != nil {
			ctx.Printf("%-24s never (no scheduled days)\n", h.Name)
			continue
		}
		ctx.Printf("%-24s %s (%s)\n", h.Name, relativeDay(ev, next), next.Format(constants.DateFormat))
	}
	return nil
}

// relativeDay names a day relative to the evaluator's today.
func relativeDay(ev *tracker.Evaluator, day time.Time) string {
	days := 0
	for d := ev.Today(); d.Before(day); d = utils.AddDays(d, 1, ev.Location()) {
		days++
	}
	switch days {
	case 0:
		return "today"
	case 1:
		return "tomorrow"
	default:
		return fmt.Sprintf("%s, in %d days", day.Weekday(), days)
	}
}

type HabitHistoryCmd struct {
	Habit string `arg:"" help:"Habit name or id."`
	Start string `help:"First day in YYYY-MM-DD format (default: 6 days ago)."`
	End   string `help:"Last day in YYYY-MM-DD format (default: today)."`
}

func (c *HabitHistoryCmd) Run(ctx *cli.Context) error {
	ev := ctx.Evaluator()
	end, err := ctx.ResolveDay(ev, c.End)
	if err != nil {
		return err
	}
	start := utils.AddDays(end, -6, ev.Location())
	if c.Start != "" {
		if start, err = ctx.ResolveDay(ev, c.Start); err != nil {
			return err
		}
	}

	habit, records, err := ctx.Manager.History(ev, c.Habit, start, end)
	if err != nil {
		return err
	}
	if len(records) == 0 {
		return fmt.Errorf("start date %s is after end date %s", start.Format(constants.DateFormat), end.Format(constants.DateFormat))
	}

	ctx.Printf("%s (%s, %s)\n\n", habit.Name, utils.FormatFrequency(habit.Frequency), tracker.StreakText(habit.Streak))
	for _, r := range records {
		var state string
		switch {
		case r.Bonus():
			state = "done (bonus)"
		case r.Completed:
			state = "done"
		case !r.Due:
			state = "-"
		case r.Date.Equal(ev.Today()):
			state = "open"
		default:
			state = "missed"
		}
		ctx.Printf("  %s %s  %s\n", r.Date.Format(constants.DateFormat), r.Date.Weekday().String()[:3], state)
	}
	return nil
}

type HabitLogCmd struct {
	Days  int    `help:"Number of days to show." default:"14"`
	Habit string `help:"Show log for specific habit only."`
}

const logNameWidth = 20

func (c *HabitLogCmd) Run(ctx *cli.Context) error {
	if c.Days < 1 {
		return fmt.Errorf("--days must be at least 1")
	}
	ev := ctx.Evaluator()

	var habits []models.Habit
	if c.Habit != "" {
		h, err := ctx.Manager.Get(c.Habit)
		if err != nil {
			return err
		}
		habits = []models.Habit{h}
	} else {
		var err error
		habits, err = ctx.Manager.List(ev, manager.Filter{}, sorting.Alphabetical)
		if err != nil {
			return err
		}
	}
	if len(habits) == 0 {
		ctx.Println("No habits found.")
		return nil
	}

	end := ev.Today()
	start := utils.AddDays(end, -(c.Days - 1), ev.Location())

	ctx.Printf("Habit log (last %d days):\n\n", c.Days)
	var header strings.Builder
	header.WriteString(fmt.Sprintf("%-*s", logNameWidth, "Habit"))
	for d := start; !d.After(end); d = utils.AddDays(d, 1, ev.Location()) {
		header.WriteString(fmt.Sprintf(" %5s", d.Format("01/02")))
	}
	ctx.Println(header.String())
	ctx.Println(strings.Repeat("-", logNameWidth+6*c.Days))

	for _, h := range habits {
		var line strings.Builder
		line.WriteString(fmt.Sprintf("%-*s", logNameWidth, truncate(h.Name, logNameWidth)))
		for _, r := range ev.HistoryForRange(h, start, end) {
			switch {
			case r.Completed:
				line.WriteString("   x  ")
			case r.Due:
				line.WriteString("   .  ")
			default:
				line.WriteString("      ")
			}
		}
		ctx.Println(strings.TrimRight(line.String(), " "))
	}
	return nil
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit name or id to delete."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.Manager.Delete(c.Habit)
	if err != nil {
		return err
	}
	ctx.Printf("Deleted habit: %s\n", habit.Name)
	ctx.Printf("(This is a soft delete. Use '%s habit restore' to undo)\n", constants.AppName)
	return nil
}

type HabitRestoreCmd struct {
	Habit string `arg:"" help:"Habit name or id to restore."`
}

func (c *HabitRestoreCmd) Run(ctx *cli.Context) error {
	habit, err := ctx.Manager.Restore(c.Habit)
	if err != nil {
		return err
	}
	ctx.Printf("Restored habit: %s\n", habit.Name)
	return nil
}

func parseSort(s string) (sorting.Strategy, error) {
	if s == "" {
		return "", nil
	}
	return sorting.Parse(s)
}
