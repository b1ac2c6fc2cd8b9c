package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/pable/kaynstats/internal/config"
)

// Persistent flags shared by every command.
var (
	cachePath string
	envFile   string
	verbose   bool
	quiet     bool
)

var rootCmd = &cobra.Command{
	Use:   "kaynstats",
	Short: "Ranked Blue/Red Kayn stats from the Riot API",
	Long: `Scan a player's ranked match history, classify each game of the tracked
champion as Blue or Red form by primary rune tree, and report pick and win rates.

Classified matches are cached, so repeated runs only fetch new matches.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cachePath, "cache", config.DefaultCachePath(),
		"match cache file (.json, .yaml, optional .zst; .db for SQLite)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "dotenv file with RIOT_API_KEY, SUMMONER_NAME, TAGLINE")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", true, "show progress messages")
	rootCmd.PersistentFlags().BoolVar(&quiet, "quiet", false, "suppress progress messages")

	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(dropCmd)
}

// newLogger returns the stderr logger; quiet runs only see warnings and errors.
func newLogger(verbose bool) *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	if verbose {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.WarnLevel)
	}
	return logger
}

// resolveCachePath returns the --cache flag if set, then KAYNSTATS_CACHE, then
// the default.
func resolveCachePath(cmd *cobra.Command) string {
	if cmd.Flags().Changed("cache") {
		return cachePath
	}
	if v := os.Getenv(config.EnvPrefix + "_CACHE"); v != "" {
		return v
	}
	return cachePath
}
