package classifier

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pable/kaynstats/internal/model"
	"github.com/pable/kaynstats/internal/riot"
)

const me = "puuid-me"

// MockFetcher is a mock implementation of MatchFetcher.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Match(ctx context.Context, routing, matchID string) (*riot.MatchDetail, error) {
	args := m.Called(ctx, routing, matchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*riot.MatchDetail), args.Error(1)
}

type sleeps struct{ got []time.Duration }

func (s *sleeps) sleep(ctx context.Context, d time.Duration) error {
	s.got = append(s.got, d)
	return ctx.Err()
}

func newPipeline(f MatchFetcher, s *sleeps, opts Options) *Pipeline {
	opts.Sleep = s.sleep
	if opts.MatchDelay == 0 {
		opts.MatchDelay = DefaultMatchDelay
	}
	return New(f, opts, nil)
}

func kaynMatch(id string, style int, win bool) *riot.MatchDetail {
	return matchWith(id,
		participant("someone", "Lee Sin", RuneDomination, !win),
		participant(me, "Kayn", style, win),
	)
}

func otherMatch(id string) *riot.MatchDetail {
	return matchWith(id, participant(me, "Graves", RunePrecision, true))
}

func rateLimited() error {
	return &riot.APIError{Op: "GET match", StatusCode: 429, Err: riot.ErrRateLimited}
}

func TestRunExample(t *testing.T) {
	f := new(MockFetcher)
	ctx := context.Background()
	ids := []string{"m1", "m2", "m5", "m7", "m9"}
	f.On("Match", ctx, riot.RoutingEurope, "m1").Return(kaynMatch("m1", RunePrecision, true), nil)
	f.On("Match", ctx, riot.RoutingEurope, "m2").Return(otherMatch("m2"), nil)
	f.On("Match", ctx, riot.RoutingEurope, "m5").Return(kaynMatch("m5", RuneDomination, false), nil)
	f.On("Match", ctx, riot.RoutingEurope, "m7").Return(otherMatch("m7"), nil)
	f.On("Match", ctx, riot.RoutingEurope, "m9").Return(kaynMatch("m9", 9999, true), nil)

	s := &sleeps{}
	res, err := newPipeline(f, s, Options{}).Run(ctx, ids, me, riot.RoutingEurope)
	require.NoError(t, err)

	assert.Equal(t, model.MatchRecords{
		"m1": {RedGames: 1, RedWins: 1},
		"m5": {BlueGames: 1},
		"m9": {BlueGames: 1, BlueWins: 1},
	}, res.Records)
	assert.Equal(t, 3, res.Found)
	assert.Equal(t, 5, res.Fetched)
	assert.False(t, res.TargetReached)
	// delay only after matches with the champion
	assert.Equal(t, []time.Duration{DefaultMatchDelay, DefaultMatchDelay, DefaultMatchDelay}, s.got)
	f.AssertExpectations(t)
}

func TestRunEarlyExit(t *testing.T) {
	f := new(MockFetcher)
	ctx := context.Background()
	f.On("Match", ctx, riot.RoutingEurope, "m1").Return(kaynMatch("m1", RunePrecision, true), nil)
	f.On("Match", ctx, riot.RoutingEurope, "m2").Return(otherMatch("m2"), nil)
	f.On("Match", ctx, riot.RoutingEurope, "m3").Return(kaynMatch("m3", RuneInspiration, true), nil)

	s := &sleeps{}
	ids := []string{"m1", "m2", "m3", "m4", "m5"}
	res, err := newPipeline(f, s, Options{Target: 2}).Run(ctx, ids, me, riot.RoutingEurope)
	require.NoError(t, err)

	assert.True(t, res.TargetReached)
	assert.Equal(t, 2, res.Found)
	assert.Len(t, res.Records, 2)
	assert.Contains(t, res.Records, "m3")
	// no delay after the match that hit the target
	assert.Len(t, s.got, 1)
	f.AssertNotCalled(t, "Match", ctx, riot.RoutingEurope, "m4")
	f.AssertExpectations(t)
}

func TestRunTargetNotReached(t *testing.T) {
	f := new(MockFetcher)
	ctx := context.Background()
	f.On("Match", ctx, riot.RoutingEurope, "m1").Return(kaynMatch("m1", RunePrecision, false), nil)

	res, err := newPipeline(f, &sleeps{}, Options{Target: 5}).Run(ctx, []string{"m1"}, me, riot.RoutingEurope)
	require.NoError(t, err)
	assert.False(t, res.TargetReached)
	assert.Equal(t, 1, res.Found)
}

func TestRunRetriesRateLimitIndefinitely(t *testing.T) {
	f := new(MockFetcher)
	ctx := context.Background()
	f.On("Match", ctx, riot.RoutingEurope, "m1").Return(nil, rateLimited()).Times(7)
	f.On("Match", ctx, riot.RoutingEurope, "m1").Return(kaynMatch("m1", RunePrecision, true), nil).Once()

	s := &sleeps{}
	res, err := newPipeline(f, s, Options{Cooldown: 5 * time.Second}).Run(ctx, []string{"m1"}, me, riot.RoutingEurope)
	require.NoError(t, err)
	assert.Equal(t, model.ClassificationRecord{RedGames: 1, RedWins: 1}, res.Records["m1"])

	require.Len(t, s.got, 8)
	for _, d := range s.got[:7] {
		assert.Equal(t, 5*time.Second, d)
	}
	assert.Equal(t, DefaultMatchDelay, s.got[7])
	f.AssertNumberOfCalls(t, "Match", 8)
}

func TestRunRateLimitCeiling(t *testing.T) {
	f := new(MockFetcher)
	ctx := context.Background()
	f.On("Match", ctx, riot.RoutingEurope, "m1").Return(nil, rateLimited())

	_, err := newPipeline(f, &sleeps{}, Options{MaxRateLimitRetries: 3}).Run(ctx, []string{"m1"}, me, riot.RoutingEurope)
	require.Error(t, err)
	assert.ErrorIs(t, err, riot.ErrRateLimited)
	f.AssertNumberOfCalls(t, "Match", 4)
}

func TestRunTransientKeepsPartialProgress(t *testing.T) {
	f := new(MockFetcher)
	ctx := context.Background()
	f.On("Match", ctx, riot.RoutingEurope, "m1").Return(kaynMatch("m1", RunePrecision, true), nil)
	f.On("Match", ctx, riot.RoutingEurope, "m2").Return(nil,
		&riot.APIError{Op: "GET match", StatusCode: 503, Err: riot.ErrTransient})

	ids := []string{"m1", "m2", "m3"}
	res, err := newPipeline(f, &sleeps{}, Options{}).Run(ctx, ids, me, riot.RoutingEurope)
	require.Error(t, err)
	assert.ErrorIs(t, err, riot.ErrTransient)
	assert.Contains(t, err.Error(), "match m2")

	assert.Equal(t, model.MatchRecords{"m1": {RedGames: 1, RedWins: 1}}, res.Records)
	f.AssertNotCalled(t, "Match", ctx, riot.RoutingEurope, "m3")
}

func TestRunRecordAbsent(t *testing.T) {
	f := new(MockFetcher)
	ctx := context.Background()
	f.On("Match", ctx, riot.RoutingEurope, "m1").Return(otherMatch("m1"), nil)
	f.On("Match", ctx, riot.RoutingEurope, "m2").Return(kaynMatch("m2", RuneDomination, true), nil)

	res, err := newPipeline(f, &sleeps{}, Options{RecordAbsent: true}).Run(ctx, []string{"m1", "m2"}, me, riot.RoutingEurope)
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.True(t, res.Records["m1"].IsAbsence())
	assert.Equal(t, 1, res.Records.ChampionGames())
	assert.Equal(t, 1, res.Found)
}

func TestRunWithoutRecordAbsentSkipsMissing(t *testing.T) {
	f := new(MockFetcher)
	ctx := context.Background()
	f.On("Match", ctx, riot.RoutingEurope, "m1").Return(otherMatch("m1"), nil)
	f.On("Match", ctx, riot.RoutingEurope, "m2").Return(otherMatch("m2"), nil)

	res, err := newPipeline(f, &sleeps{}, Options{}).Run(ctx, []string{"m1", "m2"}, me, riot.RoutingEurope)
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.Equal(t, 2, res.Fetched)
}

func TestRunCustomChampion(t *testing.T) {
	f := new(MockFetcher)
	ctx := context.Background()
	f.On("Match", ctx, riot.RoutingEurope, "m1").Return(otherMatch("m1"), nil)

	res, err := newPipeline(f, &sleeps{}, Options{Champion: "Graves"}).Run(ctx, []string{"m1"}, me, riot.RoutingEurope)
	require.NoError(t, err)
	assert.Equal(t, model.MatchRecords{"m1": {RedGames: 1, RedWins: 1}}, res.Records)
}

func TestRunCancelled(t *testing.T) {
	f := new(MockFetcher)
	ctx, cancel := context.WithCancel(context.Background())
	f.On("Match", ctx, riot.RoutingEurope, "m1").Run(func(mock.Arguments) { cancel() }).
		Return(kaynMatch("m1", RunePrecision, true), nil)

	res, err := newPipeline(f, &sleeps{}, Options{}).Run(ctx, []string{"m1", "m2"}, me, riot.RoutingEurope)
	assert.ErrorIs(t, err, context.Canceled)
	// m1 was classified before the cancel took effect
	assert.Contains(t, res.Records, "m1")
	f.AssertNotCalled(t, "Match", ctx, riot.RoutingEurope, "m2")
}

func TestRunEmptyInput(t *testing.T) {
	f := new(MockFetcher)
	res, err := newPipeline(f, &sleeps{}, Options{Target: 1}).Run(context.Background(), nil, me, riot.RoutingEurope)
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	f.AssertNotCalled(t, "Match", mock.Anything, mock.Anything, mock.Anything)
}
