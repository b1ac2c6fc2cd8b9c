// Package riot provides a minimal client for the Riot account-v1 and match-v5
// APIs, plus the paginator and rate-limit backoff built on top of it.
package riot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// defaultHostFormat is the regional API host; %s is the routing region.
const defaultHostFormat = "https://%s.api.riotgames.com"

// Client is a minimal Riot API client.
type Client struct {
	apiKey  string
	http    *http.Client
	baseURL string // overrides the regional host when set
	limiter *rate.Limiter
	log     *logrus.Entry
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL sends every request to u instead of the regional host.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithRateLimit caps outgoing requests at rps per second. rps <= 0 disables the cap.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(log *logrus.Entry) Option {
	return func(c *Client) { c.log = log }
}

// NewClient returns a client authenticated with the given API key.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey: apiKey,
		http:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		c.log = logrus.NewEntry(discard)
	}
	return c
}

// Account is the response of the account-by-riot-id endpoint.
type Account struct {
	PUUID    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

func (a *Account) validate() error {
	if a.PUUID == "" {
		return fmt.Errorf("account: missing puuid")
	}
	return nil
}

// MatchDetail holds the fields we need from a match-v5 match.
type MatchDetail struct {
	Metadata struct {
		MatchID string `json:"matchId"`
	} `json:"metadata"`
	Info struct {
		GameCreation int64         `json:"gameCreation"`
		QueueID      int           `json:"queueId"`
		Participants []Participant `json:"participants"`
	} `json:"info"`
}

func (m *MatchDetail) validate() error {
	if m.Metadata.MatchID == "" {
		return fmt.Errorf("match: missing metadata.matchId")
	}
	if len(m.Info.Participants) == 0 {
		return fmt.Errorf("match %s: missing info.participants", m.Metadata.MatchID)
	}
	for i, p := range m.Info.Participants {
		if p.PUUID == "" {
			return fmt.Errorf("match %s: participant %d: missing puuid", m.Metadata.MatchID, i)
		}
	}
	return nil
}

// Participant is one player's entry in a match.
type Participant struct {
	PUUID        string `json:"puuid"`
	ChampionName string `json:"championName"`
	Win          bool   `json:"win"`
	Perks        struct {
		Styles []PerkStyle `json:"styles"`
	} `json:"perks"`
}

// PerkStyle is one rune tree selection.
type PerkStyle struct {
	Description string `json:"description"`
	Style       int    `json:"style"`
}

// PrimaryStyle returns the primary rune tree id, or false if none was reported.
func (p *Participant) PrimaryStyle() (int, bool) {
	if len(p.Perks.Styles) == 0 {
		return 0, false
	}
	return p.Perks.Styles[0].Style, true
}

// host returns the scheme and host for the given routing region.
func (c *Client) host(routing string) string {
	if c.baseURL != "" {
		return c.baseURL
	}
	return fmt.Sprintf(defaultHostFormat, routing)
}

// get performs an authenticated GET request and JSON-decodes the response body
// into out.
func (c *Client) get(ctx context.Context, routing, path string, query url.Values, out interface{}) error {
	u := c.host(routing) + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &APIError{Op: "GET " + path, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return &APIError{Op: "GET " + path, Err: err}
	}
	req.Header.Set("X-Riot-Token", c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return &APIError{Op: "GET " + path, Err: ctx.Err()}
		}
		return &APIError{Op: "GET " + path, Err: wrapTransient(err)}
	}
	defer resp.Body.Close()

	c.log.WithFields(logrus.Fields{
		"path":    path,
		"status":  resp.StatusCode,
		"elapsed": time.Since(start).Round(time.Millisecond),
	}).Debug("riot request")

	var body io.Reader = resp.Body
	if strings.EqualFold(resp.Header.Get("Content-Encoding"), "gzip") {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return &APIError{Op: "GET " + path, StatusCode: resp.StatusCode, Err: wrapTransient(err)}
		}
		defer gz.Close()
		body = gz
	}

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(body, 200))
		kind := classifyStatus(resp.StatusCode)
		if len(snippet) > 0 {
			kind = fmt.Errorf("%w: %s", kind, strings.TrimSpace(string(snippet)))
		}
		return &APIError{Op: "GET " + path, StatusCode: resp.StatusCode, Err: kind}
	}

	if err := json.NewDecoder(body).Decode(out); err != nil {
		return &APIError{Op: "GET " + path, StatusCode: resp.StatusCode, Err: wrapTransient(fmt.Errorf("decode: %w", err))}
	}
	return nil
}

// AccountByRiotID resolves a Riot ID (game name + tag line) to an account.
func (c *Client) AccountByRiotID(ctx context.Context, routing, gameName, tagLine string) (*Account, error) {
	path := fmt.Sprintf("/riot/account/v1/accounts/by-riot-id/%s/%s",
		url.PathEscape(gameName), url.PathEscape(tagLine))
	var a Account
	if err := c.get(ctx, routing, path, nil, &a); err != nil {
		return nil, err
	}
	if err := a.validate(); err != nil {
		return nil, &APIError{Op: "GET " + path, StatusCode: http.StatusOK, Err: wrapTransient(err)}
	}
	return &a, nil
}

// MatchIDs returns one page of match ids for puuid, most recent first.
func (c *Client) MatchIDs(ctx context.Context, routing, puuid string, queue, start, count int) ([]string, error) {
	path := fmt.Sprintf("/lol/match/v5/matches/by-puuid/%s/ids", url.PathEscape(puuid))
	q := url.Values{}
	if queue > 0 {
		q.Set("queue", fmt.Sprint(queue))
	}
	q.Set("start", fmt.Sprint(start))
	q.Set("count", fmt.Sprint(count))

	var ids []string
	if err := c.get(ctx, routing, path, q, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// Match returns the details for a single match.
func (c *Client) Match(ctx context.Context, routing, matchID string) (*MatchDetail, error) {
	path := "/lol/match/v5/matches/" + url.PathEscape(matchID)
	var m MatchDetail
	if err := c.get(ctx, routing, path, nil, &m); err != nil {
		return nil, err
	}
	if err := m.validate(); err != nil {
		return nil, &APIError{Op: "GET " + path, StatusCode: http.StatusOK, Err: wrapTransient(err)}
	}
	return &m, nil
}
