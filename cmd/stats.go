package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pable/kaynstats/internal/aggregator"
	"github.com/pable/kaynstats/internal/cache"
	"github.com/pable/kaynstats/internal/classifier"
	"github.com/pable/kaynstats/internal/config"
	"github.com/pable/kaynstats/internal/model"
	"github.com/pable/kaynstats/internal/report"
	"github.com/pable/kaynstats/internal/riot"
)

// stats command flags.
var (
	// statsCount stops the scan after this many champion games; 0 scans everything.
	statsCount int
	// statsMaxMatches is how many ranked matches to page through.
	statsMaxMatches int
	// statsRegion is the platform id, e.g. EUW1 or NA1.
	statsRegion   string
	statsChampion string
	statsCSV      bool
	statsNoCSV    bool
	statsCSVPath  string
	// statsRecordAbsent caches matches without the champion so they are not refetched.
	statsRecordAbsent bool
	// statsIgnoreCorrupt starts from an empty cache when the cache file is unreadable.
	statsIgnoreCorrupt bool
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Fetch ranked matches and report Blue/Red pick and win rates",
	Long: `Resolves the player from SUMMONER_NAME and TAGLINE, pages through their ranked
solo/duo history, fetches every match not already cached, and classifies the
tracked champion's games by primary rune tree (Precision = Red, else Blue).

Credentials come from RIOT_API_KEY, SUMMONER_NAME and TAGLINE in the environment
or the --env file. Other settings may be given as KAYNSTATS_* variables.

Examples:
  # Stop once 20 Kayn games have been found
  kaynstats stats --count 20

  # Scan the last 1000 ranked games on NA without writing a CSV
  kaynstats stats --region NA1 --max-matches 1000 --no-csv`,
	Args: cobra.NoArgs,
	RunE: runStats,
}

func init() {
	statsCmd.Flags().IntVar(&statsCount, "count", 0, "target number of champion games (0 = no target)")
	statsCmd.Flags().IntVar(&statsMaxMatches, "max-matches", 500, "max number of ranked matches to scan (API limit 1000)")
	statsCmd.Flags().StringVar(&statsRegion, "region", "EUW1", "platform region (EUW1, NA1, KR, ...)")
	statsCmd.Flags().StringVar(&statsChampion, "champion", classifier.DefaultChampion, "champion to track")
	statsCmd.Flags().BoolVar(&statsCSV, "csv", true, "export results to CSV")
	statsCmd.Flags().BoolVar(&statsNoCSV, "no-csv", false, "do not export results to CSV")
	statsCmd.Flags().StringVar(&statsCSVPath, "csv-path", "kayn_stats.csv", "CSV output path")
	statsCmd.Flags().BoolVar(&statsRecordAbsent, "record-absent", false, "cache matches without the champion so later runs skip them")
	statsCmd.Flags().BoolVar(&statsIgnoreCorrupt, "ignore-corrupt", false, "start from an empty cache if the cache file cannot be parsed")
}

func runStats(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(envFile, cmd.Flags())
	if err != nil {
		return err
	}
	if quiet {
		cfg.Verbose = false
	}
	if statsNoCSV {
		cfg.CSV = false
	}

	log := newLogger(cfg.Verbose).WithField("run", uuid.NewString()[:8])
	clampMaxMatches(cfg, log)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := openStore(cfg.CachePath, statsIgnoreCorrupt, log)
	if err != nil {
		return err
	}
	defer store.Close()

	client := riot.NewClient(cfg.APIKey,
		riot.WithRateLimit(cfg.RequestsPerSecond),
		riot.WithLogger(log))

	summary, err := analyze(ctx, cfg, client, store, statsIgnoreCorrupt, log)
	if err != nil {
		return err
	}

	report.PrintSummary(os.Stdout, cfg.Champion, summary)
	if cfg.CSV {
		if err := report.ExportCSV(cfg.CSVPath, summary); err != nil {
			return err
		}
		log.Infof("%s stats exported to %s", cfg.Champion, cfg.CSVPath)
	}
	return nil
}

// clampMaxMatches lowers MaxMatches to the history cap. The note is only shown
// on verbose runs.
func clampMaxMatches(cfg *config.Config, log *logrus.Entry) {
	if cfg.MaxMatches > riot.MaxMatchHistory {
		log.Infof("Riot API limits match history to %d matches; scanning %d", riot.MaxMatchHistory, riot.MaxMatchHistory)
		cfg.MaxMatches = riot.MaxMatchHistory
	}
}

// openStore opens the cache at path. A database that cannot be opened as a
// cache is deleted and recreated when ignoreCorrupt is set.
func openStore(path string, ignoreCorrupt bool, log *logrus.Entry) (cache.Store, error) {
	store, err := cache.Open(path)
	if err == nil {
		return store, nil
	}
	if !errors.Is(err, cache.ErrCorruptState) {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	if !ignoreCorrupt {
		return nil, fmt.Errorf("open cache: %w (rerun with --ignore-corrupt to start over)", err)
	}
	log.WithError(err).Warn("cache unreadable, recreating it")
	if err := cache.Remove(path); err != nil {
		return nil, err
	}
	store, err = cache.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return store, nil
}

// analyze runs one incremental pass: resolve the account, list its ranked
// matches, classify the ones not yet cached, save, and summarize every cached
// record for the account. Records classified before a pipeline failure are
// saved before the error is returned.
func analyze(ctx context.Context, cfg *config.Config, client *riot.Client, store cache.Store, ignoreCorrupt bool, log *logrus.Entry) (aggregator.Summary, error) {
	c, err := store.Load()
	if err != nil {
		corrupt := errors.Is(err, cache.ErrCorruptState)
		if corrupt && !ignoreCorrupt {
			return aggregator.Summary{}, fmt.Errorf("load cache: %w (rerun with --ignore-corrupt to start over)", err)
		}
		if !corrupt {
			return aggregator.Summary{}, fmt.Errorf("load cache: %w", err)
		}
		log.WithError(err).Warn("cache unreadable, starting from an empty cache")
		if err := store.Reset(); err != nil {
			return aggregator.Summary{}, fmt.Errorf("reset cache: %w", err)
		}
		c = model.Cache{}
	}

	routing := cfg.RoutingRegion()
	acct, err := client.AccountByRiotID(ctx, routing, cfg.GameName, cfg.TagLine)
	if err != nil {
		return aggregator.Summary{}, fmt.Errorf("lookup player %s#%s: %w", cfg.GameName, cfg.TagLine, err)
	}
	log = log.WithField("player", acct.GameName+"#"+acct.TagLine)

	backoff := riot.Backoff{
		Cooldown:   cfg.RateLimitCooldown,
		MaxRetries: cfg.MaxRateLimitRetries,
		OnWait: func(retry int, _ error) {
			log.WithField("retry", retry).Infof("rate limit hit, sleeping %s", cfg.RateLimitCooldown)
		},
	}
	pager := &riot.Paginator{
		Source:    client,
		Routing:   routing,
		Queue:     cfg.Queue,
		PageDelay: cfg.PageDelay,
		Backoff:   backoff,
	}
	ids, err := pager.Collect(ctx, acct.PUUID, cfg.MaxMatches)
	if err != nil {
		return aggregator.Summary{}, fmt.Errorf("match history: %w", err)
	}

	todo := cache.FilterUnprocessed(c, acct.PUUID, ids)
	log.WithFields(logrus.Fields{
		"scanned": len(ids),
		"cached":  len(ids) - len(todo),
		"new":     len(todo),
	}).Info("match history loaded")

	pipe := classifier.New(client, classifier.Options{
		Champion:            cfg.Champion,
		Target:              cfg.Target,
		Cooldown:            cfg.RateLimitCooldown,
		MaxRateLimitRetries: cfg.MaxRateLimitRetries,
		MatchDelay:          cfg.MatchDelay,
		RecordAbsent:        cfg.RecordAbsent,
	}, log)
	res, runErr := pipe.Run(ctx, todo, acct.PUUID, routing)

	added := cache.Merge(c, acct.PUUID, res.Records)
	if err := store.Save(c); err != nil {
		if runErr != nil {
			return aggregator.Summary{}, fmt.Errorf("save cache: %v (after: %w)", err, runErr)
		}
		return aggregator.Summary{}, fmt.Errorf("save cache: %w", err)
	}
	log.WithFields(logrus.Fields{
		"fetched": res.Fetched,
		"found":   res.Found,
		"added":   added,
	}).Infof("finished analyzing matches, total %s games found: %d", cfg.Champion, res.Found)

	if runErr != nil {
		return aggregator.Summary{}, fmt.Errorf("classify matches (%d new records saved): %w", added, runErr)
	}
	return aggregator.Summarize(c[acct.PUUID]), nil
}
