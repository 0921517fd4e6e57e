// Package nav parses nav command flags and launches the nav HTTP service.
package nav

import (
	"context"
	"flag"
	"path/filepath"
	"strings"

	"github.com/millennium-tools/banav/internal/platform/config"
	"github.com/millennium-tools/banav/internal/platform/otel"
	server "github.com/millennium-tools/banav/internal/services/nav"
)

// Config holds nav command configuration.
type Config struct {
	Addr            string `env:"BANAV_ADDR" envDefault:":8080"`
	DBPath          string `env:"BANAV_DB_PATH"`
	LookupEndpoint  string `env:"BANAV_LOOKUP_ENDPOINT" envDefault:"https://arona.diyigemt.com/api/v1/image"`
	CDNBaseURL      string `env:"BANAV_CDN_BASE_URL" envDefault:"https://arona.cdn.diyigemt.com/image"`
	ActivityFeedURL string `env:"BANAV_ACTIVITY_FEED_URL" envDefault:"https://ba.gamekee.com/v1/activity/query"`
	RosterURL       string `env:"BANAV_ROSTER_URL" envDefault:"https://schale.gg/data/zh/students.min.json"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := config.ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The nav HTTP listen address")
	fs.StringVar(&cfg.DBPath, "db", cfg.DBPath, "The nav SQLite database path")
	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		cfg.DBPath = filepath.Join("data", "nav.db")
	}
	return cfg, nil
}

// Run starts the nav service until context cancellation.
func Run(ctx context.Context, cfg Config) error {
	shutdown, err := otel.Setup(ctx, "banav")
	if err != nil {
		return err
	}
	defer func() { _ = shutdown(context.Background()) }()

	srv, err := server.New(server.Options{
		Addr:            cfg.Addr,
		DBPath:          cfg.DBPath,
		LookupEndpoint:  cfg.LookupEndpoint,
		CDNBaseURL:      cfg.CDNBaseURL,
		ActivityFeedURL: cfg.ActivityFeedURL,
		RosterURL:       cfg.RosterURL,
	})
	if err != nil {
		return err
	}
	return srv.Serve(ctx)
}
