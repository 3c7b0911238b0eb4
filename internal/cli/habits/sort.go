package habits

import (
	"github.com/julianstephens/habitreel/internal/cli"
	"github.com/julianstephens/habitreel/internal/sorting"
)

type SortCmd struct {
	Get  SortGetCmd  `cmd:"" default:"1" help:"Show the saved sort order."`
	Set  SortSetCmd  `cmd:"" help:"Save the sort order used by lists."`
	List SortListCmd `cmd:"" help:"List available sort orders."`
}

type SortGetCmd struct{}

func (c *SortGetCmd) Run(ctx *cli.Context) error {
	st := ctx.Manager.SortPreference()
	ctx.Printf("%s (%s)\n", st, st.Label())
	return nil
}

type SortSetCmd struct {
	Strategy string `arg:"" help:"One of default, alphabetical, streak, newest, oldest, completion_rate."`
}

func (c *SortSetCmd) Run(ctx *cli.Context) error {
	st, err := sorting.Parse(c.Strategy)
	if err != nil {
		return err
	}
	ctx.Manager.SetSortPreference(st)
	ctx.Printf("Sort order set to %s (%s)\n", st, st.Label())
	return nil
}

type SortListCmd struct{}

func (c *SortListCmd) Run(ctx *cli.Context) error {
	current := ctx.Manager.SortPreference()
	for _, st := range sorting.Strategies {
		marker := " "
		if st == current {
			marker = "*"
		}
		ctx.Printf("%s %-16s %s\n", marker, st, st.Label())
	}
	return nil
}
