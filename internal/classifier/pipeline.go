package classifier

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/pable/kaynstats/internal/model"
	"github.com/pable/kaynstats/internal/riot"
)

// DefaultMatchDelay is the pause after each match that contained the champion.
const DefaultMatchDelay = 1300 * time.Millisecond

// MatchFetcher returns full match details. *riot.Client implements it.
type MatchFetcher interface {
	Match(ctx context.Context, routing, matchID string) (*riot.MatchDetail, error)
}

// Options tune a Pipeline.
type Options struct {
	Champion string
	// Target stops the run once this many champion games were found; 0 means no target.
	Target int
	// Cooldown is the wait after a 429 before retrying the same match.
	Cooldown time.Duration
	// MaxRateLimitRetries caps retries per match; 0 retries forever.
	MaxRateLimitRetries int
	MatchDelay          time.Duration
	// RecordAbsent stores an empty record for matches without the champion so
	// later runs skip them.
	RecordAbsent bool
	// Sleep replaces the wall-clock sleep, for tests.
	Sleep riot.SleepFunc
}

// Result is what one Run produced.
type Result struct {
	// Records holds every match classified this run, keyed by match id.
	Records model.MatchRecords
	// Found counts champion appearances across the run.
	Found int
	// Fetched counts match-detail fetches that succeeded.
	Fetched       int
	TargetReached bool
}

// Pipeline classifies uncached matches one at a time.
type Pipeline struct {
	fetcher MatchFetcher
	opts    Options
	log     *logrus.Entry
}

// New returns a Pipeline. A nil log discards output.
func New(fetcher MatchFetcher, opts Options, log *logrus.Entry) *Pipeline {
	if opts.Champion == "" {
		opts.Champion = DefaultChampion
	}
	if opts.Cooldown <= 0 {
		opts.Cooldown = riot.DefaultCooldown
	}
	if opts.Sleep == nil {
		opts.Sleep = riot.Sleep
	}
	if log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		log = logrus.NewEntry(discard)
	}
	return &Pipeline{fetcher: fetcher, opts: opts, log: log}
}

// Run fetches and classifies matchIDs in order for the account puuid.
//
// On error the returned Result still holds everything classified before the
// failure; the caller is expected to merge and save it. Run never persists.
func (p *Pipeline) Run(ctx context.Context, matchIDs []string, puuid, routing string) (Result, error) {
	res := Result{Records: make(model.MatchRecords)}

	for i, id := range matchIDs {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		entry := p.log.WithFields(logrus.Fields{
			"match":    id,
			"progress": fmt.Sprintf("%d/%d", i+1, len(matchIDs)),
		})

		m, err := p.fetch(ctx, entry, routing, id)
		if err != nil {
			return res, fmt.Errorf("match %s: %w", id, err)
		}
		res.Fetched++

		rec, found := Classify(m, puuid, p.opts.Champion)
		if found == 0 {
			if p.opts.RecordAbsent {
				res.Records[id] = model.ClassificationRecord{}
			}
			entry.Debug("champion not played")
			continue
		}

		res.Records[id] = rec
		res.Found += found
		entry.WithFields(logrus.Fields{
			"red":   rec.RedGames > 0,
			"found": res.Found,
		}).Infof("%s game found", p.opts.Champion)

		if p.opts.Target > 0 && res.Found >= p.opts.Target {
			res.TargetReached = true
			entry.Infof("target of %d %s games reached", p.opts.Target, p.opts.Champion)
			return res, nil
		}

		if err := p.opts.Sleep(ctx, p.opts.MatchDelay); err != nil {
			return res, err
		}
	}
	return res, nil
}

// fetch gets one match, waiting out 429s.
func (p *Pipeline) fetch(ctx context.Context, entry *logrus.Entry, routing, id string) (*riot.MatchDetail, error) {
	b := riot.Backoff{
		Cooldown:   p.opts.Cooldown,
		MaxRetries: p.opts.MaxRateLimitRetries,
		Sleep:      p.opts.Sleep,
		OnWait: func(retry int, _ error) {
			entry.WithField("retry", retry).Infof("rate limit hit, sleeping %s", p.opts.Cooldown)
		},
	}
	var m *riot.MatchDetail
	err := b.Do(ctx, func() error {
		var err error
		m, err = p.fetcher.Match(ctx, routing, id)
		return err
	})
	return m, err
}
