package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/okian/teamsplit/internal/adapters/http/api"
	service "github.com/okian/teamsplit/internal/app"
	"github.com/okian/teamsplit/internal/config"
	"github.com/okian/teamsplit/internal/domain/roster"
	"github.com/okian/teamsplit/internal/report"
	"github.com/okian/teamsplit/internal/simulate"
	"github.com/okian/teamsplit/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

const configKey = "config"

var errUsage = errors.New("usage")

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp(os.Stdout, os.Stderr).RunContext(ctx, os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "teamsplit: "+err.Error())
		stop()
		os.Exit(1)
	}
}

func newApp(stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "teamsplit",
		Usage:     "propose balanced two-team games from a results history",
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "YAML config file",
				EnvVars: []string{config.EnvFile},
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "override log_level",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			proposeCommand(),
			playersCommand(),
			serveCommand(),
			simulateCommand(),
		},
	}
}

// setup loads configuration and initializes logging for every command.
func setup(c *cli.Context) error {
	cfg, err := config.Load(c.Context, c.String("config"))
	if err != nil {
		return err
	}
	if lvl := c.String("log-level"); lvl != "" {
		cfg.LogLevel = lvl
	}

	if err := logger.Init(logger.WithWriter(c.App.ErrWriter), logger.WithFormat(cfg.LogFormat)); err != nil {
		return err
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(c.Context, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if c.App.Metadata == nil {
		c.App.Metadata = map[string]any{}
	}
	c.App.Metadata[configKey] = cfg
	return nil
}

func configFrom(c *cli.Context) *config.Config {
	if cfg, ok := c.App.Metadata[configKey].(*config.Config); ok {
		return cfg
	}
	return config.New()
}

func orderFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "order",
		Usage: "position order: history or online (default from config)",
	}
}

func proposeCommand() *cli.Command {
	return &cli.Command{
		Name:      "propose",
		Usage:     "propose teams for tonight's game",
		ArgsUsage: "<history> <online> [game_number]",
		Flags: []cli.Flag{
			orderFlag(),
			&cli.IntFlag{Name: "limit", Usage: "number of best splits to print (default from config)"},
			&cli.BoolFlag{Name: "plain", Usage: "print best splits one per line"},
			&cli.BoolFlag{Name: "json", Usage: "print the proposal as JSON"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 2 || c.NArg() > 3 {
				return fmt.Errorf("%w: teamsplit propose <history> <online> [game_number]", errUsage)
			}
			cfg := configFrom(c)
			svc, err := newService(cfg, c.Args().Get(0), c.String("order"))
			if err != nil {
				return err
			}

			p, err := svc.Propose(c.Context, service.Request{
				Online:     roster.SplitOnline(c.Args().Get(1)),
				GameNumber: c.Args().Get(2),
			})
			if err != nil {
				return err
			}

			if c.Bool("json") {
				enc := json.NewEncoder(c.App.Writer)
				enc.SetIndent("", "  ")
				return enc.Encode(p)
			}
			limit := cfg.ReportLimit
			if c.IsSet("limit") {
				limit = c.Int("limit")
			}
			return report.New(report.WithLimit(limit), report.WithPlain(c.Bool("plain"))).Proposal(c.App.Writer, p)
		},
	}
}

func playersCommand() *cli.Command {
	return &cli.Command{
		Name:      "players",
		Usage:     "list online players ranked by their history",
		ArgsUsage: "<history> <online>",
		Flags:     []cli.Flag{orderFlag()},
		Action: func(c *cli.Context) error {
			if c.NArg() != 2 {
				return fmt.Errorf("%w: teamsplit players <history> <online>", errUsage)
			}
			svc, err := newService(configFrom(c), c.Args().Get(0), c.String("order"))
			if err != nil {
				return err
			}
			players, err := svc.Players(c.Context, roster.SplitOnline(c.Args().Get(1)))
			if err != nil {
				return err
			}
			return report.New().Players(c.App.Writer, players)
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the HTTP API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "listen address (default from config)"},
			&cli.StringFlag{Name: "history", Usage: "history file (default from config)"},
			orderFlag(),
		},
		Action: func(c *cli.Context) error {
			cfg := configFrom(c)
			if addr := c.String("addr"); addr != "" {
				cfg.Addr = addr
			}
			path := c.String("history")
			if path == "" {
				path = cfg.HistoryPath
			}
			svc, err := newService(cfg, path, c.String("order"))
			if err != nil {
				return err
			}
			return serve(c.Context, newServer(cfg, svc))
		},
	}
}

func simulateCommand() *cli.Command {
	return &cli.Command{
		Name:      "simulate",
		Usage:     "write a synthetic season history",
		ArgsUsage: "<out.csv|out.xlsx>",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "players", Value: simulate.DefaultPlayers},
			&cli.IntFlag{Name: "games", Value: simulate.DefaultGames},
			&cli.Float64Flag{Name: "attendance", Value: simulate.DefaultAttendance},
			&cli.Uint64Flag{Name: "seed", Usage: "0 picks a random seed"},
			&cli.StringFlag{Name: "sheet", Usage: "worksheet name for XLSX output"},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("%w: teamsplit simulate <out>", errUsage)
			}
			season, err := simulate.Generate(simulate.Config{
				Players:    c.Int("players"),
				Games:      c.Int("games"),
				Attendance: c.Float64("attendance"),
				Seed:       c.Uint64("seed"),
				Sheet:      c.String("sheet"),
			})
			if err != nil {
				return err
			}
			path := c.Args().First()
			if err := simulate.Save(c.Context, path, season); err != nil {
				return err
			}
			logger.Named("simulate").Info(c.Context, "season written",
				logger.String("path", path),
				logger.Strings("players", season.Names),
				logger.Int("games", len(season.Rows)-2),
			)
			return nil
		},
	}
}

// newService builds the proposal service from configuration. Empty path and
// order fall back to the configured values.
func newService(cfg *config.Config, path, order string) (*service.Service, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	if order == "" {
		order = cfg.RosterOrder
	}
	o, err := roster.ParseOrder(order)
	if err != nil {
		return nil, err
	}
	if path == "" {
		path = cfg.HistoryPath
	}
	return service.New(
		service.WithHistoryPath(path),
		service.WithSheet(cfg.HistorySheet),
		service.WithMarkers(cfg.WinMarker, cfg.LossMarker, cfg.EndMarker),
		service.WithRosterOrder(o),
		service.WithLocation(loc),
		service.WithLogger(logger.Named("service")),
	), nil
}

func newServer(cfg *config.Config, svc *service.Service) *http.Server {
	apiServer := api.NewServer(svc, svc,
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
		api.WithLogger(logger.Named("http")),
	)
	return &http.Server{
		Addr:              cfg.Addr,
		Handler:           apiServer.Handler(),
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

// serve runs srv until ctx is canceled, then shuts it down gracefully.
func serve(ctx context.Context, srv *http.Server) error {
	log := logger.Named("server")
	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
		return err
	}
	log.Info(ctx, "server stopped")
	return nil
}
