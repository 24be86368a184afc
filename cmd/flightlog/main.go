// Command flightlog serves the flight enrichment API and runs one-off
// enrichment and statistics jobs.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	_ "time/tzdata"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/felixhommels/mcsbt-capstone-be/internal/config"
	"github.com/felixhommels/mcsbt-capstone-be/internal/enrich"
	"github.com/felixhommels/mcsbt-capstone-be/internal/logging"
	"github.com/felixhommels/mcsbt-capstone-be/internal/stats"
)

// cli carries state shared by the subcommands.
type cli struct {
	v          *viper.Viper
	configPath string
	cfg        *config.Config
	closeLog   func() error
}

func rootCommand() *cobra.Command {
	c := &cli{v: config.New()}

	root := &cobra.Command{
		Use:           "flightlog",
		Short:         "Flight enrichment and statistics service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "path to a YAML config file")
	root.PersistentFlags().String("log-level", "info", "log level: debug, info, warn, error")
	_ = c.v.BindPFlag("log.level", root.PersistentFlags().Lookup("log-level"))

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(c.v, c.configPath)
		if err != nil {
			return err
		}
		c.cfg = cfg
		c.closeLog = logging.Init(logging.Options{
			Level:      cfg.Log.Level,
			Format:     cfg.Log.Format,
			File:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
		})
		return nil
	}
	root.PersistentPostRunE = func(cmd *cobra.Command, args []string) error {
		if c.closeLog != nil {
			return c.closeLog()
		}
		return nil
	}

	root.AddCommand(c.serveCommand(), c.enrichCommand(), c.statsCommand())
	return root
}

func (c *cli) serveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(cmd.Context(), c.cfg)
			if err != nil {
				return err
			}
			defer app.Close()
			return app.Serve(cmd.Context())
		},
	}
}

func (c *cli) enrichCommand() *cobra.Command {
	var req enrich.EnrichRequest
	var save bool

	cmd := &cobra.Command{
		Use:   "enrich",
		Short: "Enrich one flight and print the record",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(cmd.Context(), c.cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			compose := app.composer.Enrich
			if save {
				compose = app.composer.EnrichAndStore
			}
			rec, err := compose(cmd.Context(), req)
			if err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), rec)
		},
	}
	cmd.Flags().StringVar(&req.FlightNumber, "flight", "", "flight designator, e.g. LX14")
	cmd.Flags().StringVar(&req.Date, "date", "", "departure date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&req.DepartureTime, "time", "", "scheduled local departure (HH:MM)")
	cmd.Flags().StringVar(&req.Timezone, "tz", "", "IANA timezone of the departure airport")
	cmd.Flags().StringVar(&req.UserID, "user", "cli", "user id to attribute the flight to")
	cmd.Flags().BoolVar(&save, "save", false, "persist the record")
	for _, f := range []string{"flight", "date", "time", "tz"} {
		_ = cmd.MarkFlagRequired(f)
	}
	return cmd
}

func (c *cli) statsCommand() *cobra.Command {
	var userID string
	var yearly bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Print a user's flight statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := NewApp(cmd.Context(), c.cfg)
			if err != nil {
				return err
			}
			defer app.Close()

			flights, err := app.store.QueryByUser(cmd.Context(), userID, false)
			if err != nil {
				return err
			}
			if yearly {
				return printJSON(cmd.OutOrStdout(), stats.AggregateYearly(flights))
			}
			return printJSON(cmd.OutOrStdout(), stats.Aggregate(flights))
		},
	}
	cmd.Flags().StringVar(&userID, "user", "", "user id")
	cmd.Flags().BoolVar(&yearly, "yearly", false, "include per-year breakdown")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "flightlog:", err)
		os.Exit(1)
	}
}
