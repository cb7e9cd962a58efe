package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sumukeio/niche-miner/api"
	"github.com/sumukeio/niche-miner/config"
	"github.com/sumukeio/niche-miner/filterx"
	"github.com/sumukeio/niche-miner/miner"
	"github.com/sumukeio/niche-miner/models"
	"github.com/sumukeio/niche-miner/session"
)

const usage = `usage: niche-miner <command> [flags] [args]

commands:
  login                 open the login page and wait for interactive login
  status                check whether the persisted session still authenticates
  validate <keyword>... check keywords for sponsored search results
  mine     <seed>...    mine product keywords for the given seed words
`

func main() {
	cfg := config.Load()
	initLogger(cfg.Log)

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
	command, args := os.Args[1], os.Args[2:]

	market, err := config.LoadProfile(cfg.Miner.ProfileFile)
	if err != nil {
		slog.Error("failed to load site profile", "error", err)
		os.Exit(1)
	}
	search := config.DefaultSearchProfile()

	var proxies *session.ProxyRotation
	if cfg.Browser.ProxyFile != "" {
		if proxies, err = session.LoadProxyList(cfg.Browser.ProxyFile); err != nil {
			slog.Error("failed to load proxy list", "error", err)
			os.Exit(1)
		}
	}
	runner := api.NewRunner(cfg, market, search, proxies)

	// Ctrl-C cancels between keywords and pages; mid-navigation waits
	// end at their own timeouts.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var runErr error
	switch command {
	case "login":
		runErr = runner.WithSession(ctx, func(ctx context.Context, m *miner.Miner) error {
			if _, err := m.RestoreSession(); err != nil {
				return err
			}
			return m.SetupLogin(ctx)
		})
	case "status":
		runErr = runner.WithSession(ctx, func(ctx context.Context, m *miner.Miner) error {
			if _, err := m.RestoreSession(); err != nil {
				return err
			}
			ok, sig, err := m.CheckLogin(ctx)
			if err != nil {
				return err
			}
			miner.EmitLoginStatus(ok)
			return emit(models.LoginStatusResponse{Success: true, LoggedIn: ok, Signal: sig})
		})
	case "validate":
		if len(args) == 0 {
			fmt.Fprintln(os.Stderr, "validate: at least one keyword required")
			os.Exit(2)
		}
		runErr = runner.WithSession(ctx, func(ctx context.Context, m *miner.Miner) error {
			results := m.ValidateKeywords(ctx, args)
			return emit(models.ValidateResponse{Success: true, Results: results})
		})
	case "mine":
		fcfg, seeds, err := parseMineArgs(args)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(2)
		}
		runErr = runner.WithSession(ctx, func(ctx context.Context, m *miner.Miner) error {
			stats, err := m.MineSeeds(ctx, seeds, fcfg, os.Getenv("MINER_PROJECT_ID"))
			if stats != nil {
				_ = emit(models.MineResponse{Success: err == nil, Stats: stats})
			}
			return err
		})
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if runErr != nil {
		slog.Error("run failed", "command", command, "error", runErr)
		os.Exit(1)
	}
}

// parseMineArgs reads the mine subcommand's filter flags and seed words.
func parseMineArgs(args []string) (filterx.Config, []string, error) {
	fs := flag.NewFlagSet("mine", flag.ContinueOnError)
	salesMin := fs.Int("sales-min", -1, "minimum sales count")
	salesMax := fs.Int("sales-max", -1, "maximum sales count")
	priceMin := fs.Float64("price-min", -1, "minimum price")
	priceMax := fs.Float64("price-max", -1, "maximum price")
	include := fs.String("include", "", "comma-separated terms that must all appear in the title")
	exclude := fs.String("exclude", "", "comma-separated terms that each veto a title")
	shopType := fs.String("shop-type", "", "keep only this shop type (tmall or c_shop)")

	if err := fs.Parse(args); err != nil {
		return filterx.Config{}, nil, err
	}
	seeds := fs.Args()
	if len(seeds) == 0 {
		return filterx.Config{}, nil, fmt.Errorf("mine: at least one seed word required")
	}

	var cfg filterx.Config
	if *salesMin >= 0 {
		cfg.SalesMin = salesMin
	}
	if *salesMax >= 0 {
		cfg.SalesMax = salesMax
	}
	if *priceMin >= 0 {
		cfg.PriceMin = priceMin
	}
	if *priceMax >= 0 {
		cfg.PriceMax = priceMax
	}
	cfg.IncludeTerms = splitTerms(*include)
	cfg.ExcludeTerms = splitTerms(*exclude)
	cfg.ShopType = models.ShopType(*shopType)
	return cfg, seeds, nil
}

func splitTerms(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func emit(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// initLogger configures slog the same way minerd does, to stderr so the
// JSON results own stdout.
func initLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}
