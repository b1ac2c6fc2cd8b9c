package riot

import (
	"context"
	"iter"
	"time"
)

const (
	// MaxMatchHistory is the deepest the match-v5 ids endpoint will page.
	MaxMatchHistory = 1000
	// MaxPageSize is the largest count the ids endpoint accepts.
	MaxPageSize = 100
	// QueueRankedSolo is the ranked solo/duo queue id.
	QueueRankedSolo = 420
	// DefaultPageDelay is the pause between page requests.
	DefaultPageDelay = time.Second
)

// PageFetcher returns one page of match ids. *Client implements it.
type PageFetcher interface {
	MatchIDs(ctx context.Context, routing, puuid string, queue, start, count int) ([]string, error)
}

// Paginator walks an account's match history one page at a time.
type Paginator struct {
	Source    PageFetcher
	Routing   string
	Queue     int
	PageSize  int // defaults to MaxPageSize
	PageDelay time.Duration
	Backoff   Backoff
}

// All yields up to maxMatches match ids for puuid, most recent first. The
// sequence ends early on an empty page and stops after the first error.
func (p *Paginator) All(ctx context.Context, puuid string, maxMatches int) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		if maxMatches > MaxMatchHistory {
			maxMatches = MaxMatchHistory
		}
		pageSize := p.PageSize
		if pageSize <= 0 || pageSize > MaxPageSize {
			pageSize = MaxPageSize
		}
		sleep := p.Backoff.Sleep
		if sleep == nil {
			sleep = Sleep
		}

		for start := 0; start < maxMatches; {
			if start > 0 {
				if err := sleep(ctx, p.PageDelay); err != nil {
					yield("", err)
					return
				}
			}

			count := min(pageSize, maxMatches-start)
			var page []string
			err := p.Backoff.Do(ctx, func() error {
				var err error
				page, err = p.Source.MatchIDs(ctx, p.Routing, puuid, p.Queue, start, count)
				return err
			})
			if err != nil {
				yield("", err)
				return
			}
			if len(page) == 0 {
				return
			}
			for _, id := range page {
				if !yield(id, nil) {
					return
				}
			}
			start += count
		}
	}
}

// Collect drains All into a slice.
func (p *Paginator) Collect(ctx context.Context, puuid string, maxMatches int) ([]string, error) {
	var ids []string
	for id, err := range p.All(ctx, puuid, maxMatches) {
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
