package riot

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pageCall struct{ start, count int }

// fakeHistory serves pages out of a fixed history and records each request.
type fakeHistory struct {
	ids   []string
	calls []pageCall
	// fail is returned (then cleared) for the call with this index.
	failAt  int
	failErr error
	failN   int
}

func (f *fakeHistory) MatchIDs(_ context.Context, _, _ string, _, start, count int) ([]string, error) {
	f.calls = append(f.calls, pageCall{start, count})
	if f.failErr != nil && len(f.calls)-1 >= f.failAt && f.failN > 0 {
		f.failN--
		return nil, f.failErr
	}
	if start >= len(f.ids) {
		return []string{}, nil
	}
	end := min(start+count, len(f.ids))
	return f.ids[start:end], nil
}

func history(n int) []string {
	ids := make([]string, n)
	for i := range ids {
		ids[i] = fmt.Sprintf("m%d", i)
	}
	return ids
}

type sleepRecorder struct{ sleeps []time.Duration }

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.sleeps = append(s.sleeps, d)
	return nil
}

func newPaginator(src PageFetcher, rec *sleepRecorder) *Paginator {
	return &Paginator{
		Source:    src,
		Routing:   RoutingEurope,
		Queue:     QueueRankedSolo,
		PageDelay: time.Second,
		Backoff:   Backoff{Cooldown: 5 * time.Second, Sleep: rec.sleep},
	}
}

func TestPaginatorWindows(t *testing.T) {
	src := &fakeHistory{ids: history(400)}
	rec := &sleepRecorder{}
	p := newPaginator(src, rec)

	ids, err := p.Collect(context.Background(), "p-1", 250)
	require.NoError(t, err)
	assert.Len(t, ids, 250)
	assert.Equal(t, "m0", ids[0])
	assert.Equal(t, "m249", ids[249])
	assert.Equal(t, []pageCall{{0, 100}, {100, 100}, {200, 50}}, src.calls)
	// one delay between each pair of requests
	assert.Equal(t, []time.Duration{time.Second, time.Second}, rec.sleeps)
}

func TestPaginatorStopsOnEmptyPage(t *testing.T) {
	src := &fakeHistory{ids: history(120)}
	p := newPaginator(src, &sleepRecorder{})

	ids, err := p.Collect(context.Background(), "p-1", 500)
	require.NoError(t, err)
	assert.Len(t, ids, 120)
	assert.Equal(t, []pageCall{{0, 100}, {100, 100}, {200, 100}}, src.calls)
}

func TestPaginatorEmptyHistory(t *testing.T) {
	src := &fakeHistory{}
	p := newPaginator(src, &sleepRecorder{})

	ids, err := p.Collect(context.Background(), "p-1", 50)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Len(t, src.calls, 1)
}

func TestPaginatorClampsToHistoryCap(t *testing.T) {
	src := &fakeHistory{ids: history(1500)}
	p := newPaginator(src, &sleepRecorder{})

	ids, err := p.Collect(context.Background(), "p-1", 5000)
	require.NoError(t, err)
	assert.Len(t, ids, MaxMatchHistory)
	assert.Len(t, src.calls, 10)
}

func TestPaginatorNonPositiveMax(t *testing.T) {
	src := &fakeHistory{ids: history(10)}
	p := newPaginator(src, &sleepRecorder{})

	ids, err := p.Collect(context.Background(), "p-1", 0)
	require.NoError(t, err)
	assert.Empty(t, ids)
	assert.Empty(t, src.calls)
}

func TestPaginatorLazyStop(t *testing.T) {
	src := &fakeHistory{ids: history(300)}
	p := newPaginator(src, &sleepRecorder{})

	var got []string
	for id, err := range p.All(context.Background(), "p-1", 300) {
		require.NoError(t, err)
		got = append(got, id)
		if len(got) == 5 {
			break
		}
	}
	assert.Len(t, got, 5)
	assert.Len(t, src.calls, 1)
}

func TestPaginatorRetriesRateLimit(t *testing.T) {
	src := &fakeHistory{
		ids:     history(150),
		failAt:  1,
		failErr: &APIError{Op: "GET ids", StatusCode: 429, Err: ErrRateLimited},
		failN:   2,
	}
	rec := &sleepRecorder{}
	p := newPaginator(src, rec)

	ids, err := p.Collect(context.Background(), "p-1", 150)
	require.NoError(t, err)
	assert.Len(t, ids, 150)
	// page delay, two cooldowns, then the successful retry
	assert.Equal(t, []time.Duration{time.Second, 5 * time.Second, 5 * time.Second}, rec.sleeps)
	assert.Equal(t, []pageCall{{0, 100}, {100, 50}, {100, 50}, {100, 50}}, src.calls)
}

func TestPaginatorPropagatesError(t *testing.T) {
	boom := &APIError{Op: "GET ids", StatusCode: 403, Err: ErrAuth}
	src := &fakeHistory{ids: history(150), failErr: boom, failN: 1}
	p := newPaginator(src, &sleepRecorder{})

	ids, err := p.Collect(context.Background(), "p-1", 150)
	assert.Nil(t, ids)
	assert.True(t, errors.Is(err, ErrAuth))
}
