package main

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/catalog-explorer/pkg/batch"
	"github.com/Sternrassler/catalog-explorer/pkg/client"
	"github.com/Sternrassler/catalog-explorer/pkg/explorer"
	"github.com/Sternrassler/catalog-explorer/pkg/logging"
	"github.com/Sternrassler/catalog-explorer/pkg/metrics"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const version = "0.1.0"

// app holds the per-invocation configuration and the wired services.
type app struct {
	baseURL     string
	userAgent   string
	redisURL    string
	logLevel    string
	pretty      bool
	rps         float64
	jsonOut     bool
	showMetrics bool

	api      *client.Client
	explorer *explorer.Explorer
	redis    *redis.Client
}

func newRootCmd() *cobra.Command {
	return (&app{}).command()
}

// run executes the CLI with args. Resources are released and --metrics is
// honoured whether or not the command succeeded.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	a := &app{}
	cmd := a.command()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(ctx)
	if terr := a.teardown(stderr); terr != nil && err == nil {
		err = terr
	}
	return err
}

func (a *app) command() *cobra.Command {

	rootCmd := &cobra.Command{
		Use:   "explorer",
		Short: "Browse the Rick and Morty catalog from the terminal",
		Long: `Lists, searches and inspects characters, locations and episodes
served by the public catalog API. Detail views resolve related records:
a character shows its first episodes, locations and episodes show every
resolvable resident or character.`,
		Version:           version,
		SilenceUsage:      true,
		PersistentPreRunE: a.setup,
	}

	rps := getEnvFloat("CATALOG_RPS", 10)
	pretty := getEnvBool("LOG_PRETTY", true)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.baseURL, "base-url", getEnv("CATALOG_BASE_URL", client.DefaultBaseURL), "catalog API base URL")
	flags.StringVar(&a.userAgent, "user-agent", getEnv("CATALOG_USER_AGENT", "catalog-explorer/"+version), "User-Agent header")
	flags.StringVar(&a.redisURL, "redis", getEnv("REDIS_URL", ""), "Redis address or URL for revalidation and shared back-off (optional)")
	flags.StringVar(&a.logLevel, "log-level", getEnv("LOG_LEVEL", "warn"), "log level (debug, info, warn, error, disabled)")
	flags.BoolVar(&a.pretty, "pretty", pretty, "human-readable log output")
	flags.Float64Var(&a.rps, "rps", rps, "maximum requests per second (0 for unlimited)")
	flags.BoolVar(&a.jsonOut, "json", false, "output as JSON")
	flags.BoolVar(&a.showMetrics, "metrics", false, "print request metrics to stderr after the command")

	rootCmd.AddCommand(
		a.newCharactersCmd(),
		a.newLocationsCmd(),
		a.newEpisodesCmd(),
		a.newCharacterCmd(),
		a.newLocationCmd(),
		a.newEpisodeCmd(),
		a.newSearchCmd(),
	)

	return rootCmd
}

func (a *app) setup(cmd *cobra.Command, args []string) error {
	logging.Setup(logging.Config{
		Level:  logging.LogLevel(a.logLevel),
		Pretty: a.pretty,
		Output: cmd.ErrOrStderr(),
	})

	cfg := client.DefaultConfig(a.userAgent)
	cfg.BaseURL = a.baseURL
	cfg.RequestsPerSecond = a.rps
	cfg.Burst = max(1, int(a.rps))

	if a.redisURL != "" {
		a.redis = connectRedis(cmd.Context(), a.redisURL)
		cfg.Redis = a.redis
	}

	api, err := client.New(cfg)
	if err != nil {
		return fmt.Errorf("create catalog client: %w", err)
	}
	a.api = api
	a.explorer = explorer.New(api, batch.DefaultConfig())

	log.Debug().
		Str("base_url", cfg.BaseURL).
		Bool("redis", cfg.Redis != nil).
		Float64("rps", cfg.RequestsPerSecond).
		Msg("Catalog client ready")

	return nil
}

func (a *app) teardown(w io.Writer) error {
	if a.api != nil {
		a.api.Close()
		a.api = nil
	}
	if a.redis != nil {
		a.redis.Close()
		a.redis = nil
	}
	if a.showMetrics {
		return metrics.Write(w)
	}
	return nil
}

// connectRedis returns a client for addr, or nil when it is unreachable.
// The explorer works without Redis.
func connectRedis(ctx context.Context, addr string) *redis.Client {
	opts := &redis.Options{Addr: addr}
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			log.Warn().Err(err).Str("redis", addr).Msg("Invalid Redis URL, continuing without Redis")
			return nil
		}
		opts = parsed
	}

	rdb := redis.NewClient(opts)
	if ctx == nil {
		ctx = context.Background()
	}
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		log.Warn().Err(err).Str("redis", opts.Addr).Msg("Redis unavailable, continuing without it")
		rdb.Close()
		return nil
	}
	return rdb
}

func parseID(arg string) (int, error) {
	id, err := strconv.Atoi(arg)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("invalid id %q: must be a positive integer", arg)
	}
	return id, nil
}
