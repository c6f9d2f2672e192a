package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/starter-squad/lms/config"
	"github.com/starter-squad/lms/internal/bootstrap"
)

func main() {
	logger := bootstrap.InitLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	a := &app{
		logger: logger,
		in:     os.Stdin,
		out:    os.Stdout,
	}
	a.connect = a.connectInfra
	err := newRootCmd(a).ExecuteContext(ctx)
	stop()
	if err != nil {
		logger.Error("command failed", "error", err)
		os.Exit(1) //nolint:forbidigo // CLI must propagate command execution failure to callers
	}
}

// app carries what every subcommand needs. connect is swapped in tests.
type app struct {
	logger  *slog.Logger
	in      io.Reader
	out     io.Writer
	cfg     config.AppConfig
	connect func(ctx context.Context, want infraNeeds) (*infra, error)
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "lms-admin",
		Short: "Operate the LMS: migrations, accounts and sessions",
		Long: `lms-admin runs operational tasks against the same Postgres and Redis
the server uses. Configuration comes from the environment (and .env).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			cfg, err := bootstrap.LoadConfig()
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}
	root.SetIn(a.in)
	root.SetOut(a.out)

	root.AddCommand(
		migrateCmd(a),
		userCmd(a),
		sessionsCmd(a),
	)
	return root
}

func (a *app) printf(format string, args ...any) {
	fprintf(a.out, format, args...)
}

func fprintf(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
