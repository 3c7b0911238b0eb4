package system

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/julianstephens/habitreel/internal/cli"
	"github.com/julianstephens/habitreel/internal/constants"
	"github.com/julianstephens/habitreel/internal/server"
)

type ServeCmd struct {
	Addr string `help:"Listen address (default: server.addr from the config file)."`
}

func (c *ServeCmd) Run(ctx *cli.Context) error {
	addr := c.Addr
	if addr == "" {
		addr = ctx.Config.Server.Addr
	}
	if addr == "" {
		addr = constants.DefaultServerAddr
	}

	ctx.PerformAutomaticBackup()

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := server.New(ctx.Manager)
	ctx.Printf("Serving the habit API on http://%s (Ctrl+C to stop)\n", addr)
	if err := srv.Run(runCtx, addr); err != nil {
		return err
	}
	ctx.Println("Server stopped.")
	return nil
}
