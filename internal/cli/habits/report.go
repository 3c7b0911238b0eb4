package habits

import (
	"encoding/json"
	"fmt"

	"github.com/julianstephens/habitreel/internal/cli"
	"github.com/julianstephens/habitreel/internal/report"
)

type ReportCmd struct {
	Weekly ReportWeeklyCmd `cmd:"" default:"1" help:"Show this week's completion report."`
}

type ReportWeeklyCmd struct {
	Format string `help:"Output format." default:"pretty" enum:"pretty,markdown,json"`
}

func (c *ReportWeeklyCmd) Run(ctx *cli.Context) error {
	weekly, err := ctx.Manager.WeeklyReport(ctx.Evaluator())
	if err != nil {
		return err
	}

	switch c.Format {
	case "json":
		data, err := json.MarshalIndent(weekly, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode report: %w", err)
		}
		ctx.Println(string(data))
		return nil
	case "markdown":
		ctx.Printf("%s", report.Markdown(weekly))
		return nil
	}

	out, err := report.Render(weekly, 0)
	if err != nil {
		return err
	}
	ctx.Printf("%s", out)
	return nil
}
