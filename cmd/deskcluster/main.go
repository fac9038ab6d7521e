package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/cognicore/deskcluster/internal/ticketsrc"
	"github.com/cognicore/deskcluster/pkg/deskcluster"
	"github.com/cognicore/deskcluster/pkg/deskcluster/config"
	"github.com/cognicore/deskcluster/pkg/deskcluster/store"
	"github.com/cognicore/deskcluster/pkg/deskcluster/store/sqlite"
	"github.com/cognicore/deskcluster/pkg/deskcluster/ticket"
)

func main() {
	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// app carries the persistent flags and what PersistentPreRunE builds from
// them.
type app struct {
	configPath string
	input      string
	logLevel   string
	jsonLogs   bool

	out    io.Writer
	errOut io.Writer
	logger zerolog.Logger
	cfg    *config.Config
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{out: out, errOut: errOut}

	root := &cobra.Command{
		Use:           "deskcluster",
		Short:         "Cluster support tickets and classify new ones",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "YAML config file")
	flags.StringVar(&a.input, "input", "", "ticket file (.csv or .jsonl); defaults to the sqlite store")
	flags.StringVar(&a.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flags.BoolVar(&a.jsonLogs, "json-logs", false, "write logs as JSON")

	root.AddCommand(
		a.importCmd(),
		a.clustersCmd(),
		a.clusterCmd(),
		a.vocabularyCmd(),
		a.qualityCmd(),
		a.stabilityCmd(),
		a.classifyCmd(),
		a.similarityCmd(),
		a.reportCmd(),
	)
	return root
}

func (a *app) setup() error {
	level, err := zerolog.ParseLevel(strings.ToLower(a.logLevel))
	if err != nil {
		return fmt.Errorf("invalid --log-level %q: %w", a.logLevel, err)
	}
	var w io.Writer = zerolog.ConsoleWriter{Out: a.errOut, TimeFormat: time.Kitchen}
	if a.jsonLogs {
		w = a.errOut
	}
	a.logger = zerolog.New(w).Level(level).With().Timestamp().Logger()

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	a.cfg = cfg
	return nil
}

func (a *app) openStore(ctx context.Context) (store.Store, error) {
	return sqlite.OpenSQLite(ctx, a.cfg.DBPath)
}

// tickets reads --input, or the sqlite store when no input is given.
func (a *app) tickets(ctx context.Context) ([]ticket.Ticket, error) {
	if a.input != "" {
		return ticketsrc.Load(a.input, a.logger)
	}
	st, err := a.openStore(ctx)
	if err != nil {
		return nil, err
	}
	defer st.Close()

	tickets, err := st.ListTickets(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}
	if len(tickets) == 0 {
		return nil, fmt.Errorf("store %s is empty; run import or pass --input", a.cfg.DBPath)
	}
	return tickets, nil
}

// engine fits a fresh engine on the configured ticket source. withStore
// attaches the sqlite store so classifications are recorded.
func (a *app) engine(ctx context.Context, withStore bool) (*deskcluster.Engine, error) {
	tickets, err := a.tickets(ctx)
	if err != nil {
		return nil, err
	}

	opts := deskcluster.Options{Config: a.cfg, Logger: a.logger}
	if withStore {
		st, err := a.openStore(ctx)
		if err != nil {
			return nil, err
		}
		opts.Store = st
	}
	eng, err := deskcluster.New(opts)
	if err != nil {
		if opts.Store != nil {
			opts.Store.Close()
		}
		return nil, err
	}
	if _, err := eng.Fit(ctx, tickets); err != nil {
		eng.Close()
		return nil, err
	}
	return eng, nil
}
