// Command sniper runs the volume anomaly scanner for the exchange: a long-
// running daemon with scheduled scans and an HTTP API, plus one-shot commands
// for manual scans, portfolio management, and data import.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"VolumeSniper/internal/analyzer"
	"VolumeSniper/internal/config"
	"VolumeSniper/internal/fundamentals"
	"VolumeSniper/internal/importer"
	"VolumeSniper/internal/model"
	"VolumeSniper/internal/notifier"
	"VolumeSniper/internal/report"
	"VolumeSniper/internal/scheduler"
	"VolumeSniper/internal/server"
	"VolumeSniper/internal/session"
	"VolumeSniper/internal/store"
)

var (
	cfgPath string
	verbose bool
)

func main() {
	root := &cobra.Command{
		Use:           "sniper",
		Short:         "Volume anomaly scanner for thinly traded equities",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := zerolog.InfoLevel
			if verbose {
				level = zerolog.DebugLevel
			}
			log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
				Level(level).With().Timestamp().Logger()
		},
	}
	root.PersistentFlags().StringVarP(&cfgPath, "config", "c", envOr("CONFIG_PATH", "configs/config.yaml"), "path to config file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	root.AddCommand(
		serveCmd(),
		scanCmd(),
		checkCmd(),
		portfolioCmd(),
		importCmd(),
		statsCmd(),
	)

	if err := root.Execute(); err != nil {
		log.Error().Err(err).Msg("command failed")
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// app holds everything a command needs once config is loaded.
type app struct {
	cfg      *config.Config
	store    *store.SQLite
	book     *fundamentals.Book
	session  *session.Session
	analyzer *analyzer.Analyzer
}

func buildApp() (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	st, err := store.OpenSQLite(cfg.Database.SQLitePath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	book, err := fundamentals.Load(cfg.Fundamentals.File)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("load fundamentals: %w", err)
	}

	days, err := cfg.TradingWeekdays()
	if err != nil {
		st.Close()
		return nil, err
	}
	sess, err := session.New(cfg.Market.Timezone, cfg.Market.OpenTime, cfg.Market.SessionMinutes, days)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("build session: %w", err)
	}

	a := analyzer.New(st, st, book, sess)
	a.FilterCfg.HighCapThreshold = cfg.Thresholds.HighCap
	a.FilterCfg.PennyTrapMovePct = cfg.Thresholds.PennyMovePct
	a.FilterCfg.MinVolume = cfg.Thresholds.MinVolume
	a.ScoreCfg.RVOLThreshold = cfg.Thresholds.RVOL
	a.ScoreCfg.QuietMovePct = cfg.Thresholds.QuietMovePct
	a.ScoreCfg.LowCapThreshold = cfg.Thresholds.LowCap
	a.GuardCfg.StopLossPct = cfg.Thresholds.StopLossPct

	return &app{cfg: cfg, store: st, book: book, session: sess, analyzer: a}, nil
}

func (a *app) notifier() notifier.Notifier {
	if a.cfg.Telegram.BotToken == "" || a.cfg.Telegram.ChatID == "" {
		log.Info().Msg("telegram not configured, alerts disabled")
		return notifier.Noop{}
	}
	return notifier.NewTelegramNotifier(a.cfg.Telegram.BotToken, a.cfg.Telegram.ChatID)
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the scheduler and HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.store.Close()

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			sched := scheduler.New(ctx, a.analyzer, a.store, a.session,
				scheduler.NoopSnapshotter{}, a.notifier(), a.cfg.Report.OutputDir)
			if err := sched.RegisterAll(a.cfg.Schedule.SnapshotCrons, a.cfg.Schedule.ClosingCron); err != nil {
				return err
			}
			sched.Start()
			defer sched.Stop()

			srv := server.New(a.analyzer, a.store, a.store)
			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe(a.cfg.Server.Addr) }()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				log.Info().Str("signal", sig.String()).Msg("shutting down")
				return nil
			}
		},
	}
}

func scanCmd() *cobra.Command {
	var writeReport bool
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run a universe scan now and print the ranked signals",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.store.Close()

			result, err := a.analyzer.ScanUniverse(time.Now())
			if err != nil {
				return err
			}
			if err := a.store.ReplaceSignals(result.Scores); err != nil {
				return err
			}

			report.RenderTable(os.Stdout, result)
			if writeReport {
				path, err := report.WriteCSV(a.cfg.Report.OutputDir, result)
				if err != nil {
					return err
				}
				fmt.Printf("\nreport: %s\n", path)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&writeReport, "csv", false, "also write a CSV report")
	return cmd
}

func checkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Evaluate every open position against the exit matrix",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.store.Close()

			results, err := a.analyzer.EvaluatePositions(time.Now())
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Println("portfolio is empty")
				return nil
			}
			for _, r := range results {
				fmt.Printf("%-12s %-12s %-8s %+.1f%% (held %dd)\n",
					r.Ticker, r.Action, r.Urgency, r.ProfitPct, r.DaysHeld)
				if r.Reason != "" {
					fmt.Printf("  %s\n", r.Reason)
				}
			}
			return nil
		},
	}
}

func portfolioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "portfolio",
		Short: "Manage open positions",
	}

	add := &cobra.Command{
		Use:   "add TICKER PRICE QUANTITY",
		Short: "Record a new position",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			price, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("bad price %q: %w", args[1], err)
			}
			qty, err := strconv.ParseInt(args[2], 10, 64)
			if err != nil {
				return fmt.Errorf("bad quantity %q: %w", args[2], err)
			}

			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.store.Close()

			notes, _ := cmd.Flags().GetString("notes")
			pos := model.Position{
				Ticker: args[0], BuyPrice: price, Quantity: qty,
				PurchaseDate: time.Now(), Notes: notes,
			}
			if err := a.store.AddPosition(pos); err != nil {
				return err
			}
			fmt.Printf("added %s: %d @ %.2f\n", pos.Ticker, pos.Quantity, pos.BuyPrice)
			return nil
		},
	}
	add.Flags().String("notes", "", "free-form note on the position")

	list := &cobra.Command{
		Use:   "list",
		Short: "List open positions",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.store.Close()

			positions, err := a.store.Positions()
			if err != nil {
				return err
			}
			if len(positions) == 0 {
				fmt.Println("portfolio is empty")
				return nil
			}
			for _, p := range positions {
				fmt.Printf("%-12s %8s @ %.2f  peak %.2f  since %s\n",
					p.Ticker, humanize.Comma(p.Quantity), p.BuyPrice, p.HighestSeen,
					p.PurchaseDate.Format("2006-01-02"))
			}
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "remove TICKER",
		Short: "Remove a position after selling",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.store.Close()

			if err := a.store.RemovePosition(args[0]); err != nil {
				return err
			}
			fmt.Printf("removed %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(add, list, remove)
	return cmd
}

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import DIR",
		Short: "Bulk-load historical daily bars from CSV files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.store.Close()

			res, err := importer.ImportDir(a.store, args[0])
			if err != nil {
				return err
			}
			fmt.Printf("imported %d records from %d files\n", res.Records, res.Files)
			for _, f := range res.Failed {
				fmt.Printf("failed: %s\n", f)
			}
			return nil
		},
	}
}

func statsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show what the database holds",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp()
			if err != nil {
				return err
			}
			defer a.store.Close()

			st, err := a.store.Stats()
			if err != nil {
				return err
			}
			fmt.Printf("tickers:   %d\n", st.Tickers)
			fmt.Printf("bars:      %s\n", humanize.Comma(int64(st.Bars)))
			fmt.Printf("positions: %d\n", st.Positions)
			if st.FirstDate != "" {
				fmt.Printf("range:     %s → %s\n", st.FirstDate, st.LastDate)
			}
			return nil
		},
	}
}
