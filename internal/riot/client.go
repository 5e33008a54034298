// Package riot resolves Riot IDs into stable account identities and profile icons.
package riot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/riftvoice/backend/config"
	"github.com/riftvoice/backend/pkg/httpx"
)

const (
	// DefaultAccountBaseURL serves Account-V1 for the Asia region.
	DefaultAccountBaseURL = "https://asia.api.riotgames.com"
	// DefaultSummonerBaseURL serves Summoner-V4 for the JP1 platform.
	DefaultSummonerBaseURL = "https://jp1.api.riotgames.com"

	tokenHeader = "X-Riot-Token"
)

// ErrNotFound is returned when the account lookup answers 404.
var ErrNotFound = errors.New("riot: summoner not found")

// Account is the Account-V1 representation of a Riot ID.
type Account struct {
	PUUID    string `json:"puuid"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

// Summoner is the subset of Summoner-V4 this service reads.
type Summoner struct {
	PUUID         string `json:"puuid"`
	ProfileIconID int    `json:"profileIconId"`
	SummonerLevel int64  `json:"summonerLevel"`
}

// Identity is a verified handle.
type Identity struct {
	Handle  Handle
	PUUID   string
	IconID  int
	IconURL string
}

// Client calls the Riot developer API.
type Client struct {
	http        *http.Client
	apiKey      string
	accountURL  string
	summonerURL string
	ddragon     string
	logger      *zap.Logger
}

// NewClient creates a Riot API client. Empty base URLs fall back to the
// production hosts.
func NewClient(cfg config.RiotConfig, httpClient *http.Client, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	accountURL := cfg.AccountBaseURL
	if accountURL == "" {
		accountURL = DefaultAccountBaseURL
	}
	summonerURL := cfg.SummonerBaseURL
	if summonerURL == "" {
		summonerURL = DefaultSummonerBaseURL
	}
	return &Client{
		http:        httpClient,
		apiKey:      cfg.GameAPIKey,
		accountURL:  strings.TrimRight(accountURL, "/"),
		summonerURL: strings.TrimRight(summonerURL, "/"),
		ddragon:     cfg.DDragonVersion,
		logger:      logger.With(zap.String("component", "riot")),
	}
}

// Resolve verifies a Name#Tag handle and returns its stable id and icon.
// The summoner lookup needs the puuid from the account lookup, so the two
// calls run in sequence.
func (c *Client) Resolve(ctx context.Context, raw string) (Identity, error) {
	h, err := ParseHandle(raw)
	if err != nil {
		return Identity{}, err
	}
	account, err := c.AccountByRiotID(ctx, h)
	if err != nil {
		return Identity{}, err
	}
	summoner, err := c.SummonerByPUUID(ctx, account.PUUID)
	if err != nil {
		return Identity{}, err
	}
	return Identity{
		Handle:  h,
		PUUID:   account.PUUID,
		IconID:  summoner.ProfileIconID,
		IconURL: IconURL(c.ddragon, summoner.ProfileIconID),
	}, nil
}

// AccountByRiotID looks up an account by game name and tag line.
func (c *Client) AccountByRiotID(ctx context.Context, h Handle) (*Account, error) {
	endpoint := fmt.Sprintf("%s/riot/account/v1/accounts/by-riot-id/%s/%s",
		c.accountURL, url.PathEscape(h.Name), url.PathEscape(h.Tag))

	var account Account
	if err := c.get(ctx, "riot.account", endpoint, &account); err != nil {
		var ue *httpx.UpstreamError
		if errors.As(err, &ue) && ue.Status == http.StatusNotFound {
			return nil, ErrNotFound
		}
		c.logger.Error("account lookup failed", zap.Error(err), zap.String("summoner_id", h.String()))
		return nil, err
	}
	if account.PUUID == "" {
		err := &httpx.UpstreamError{Op: "riot.account", Err: errors.New("empty puuid")}
		c.logger.Error("account lookup failed", zap.Error(err), zap.String("summoner_id", h.String()))
		return nil, err
	}
	return &account, nil
}

// SummonerByPUUID fetches profile attributes for a resolved account.
func (c *Client) SummonerByPUUID(ctx context.Context, puuid string) (*Summoner, error) {
	endpoint := fmt.Sprintf("%s/lol/summoner/v4/summoners/by-puuid/%s", c.summonerURL, url.PathEscape(puuid))

	var summoner Summoner
	if err := c.get(ctx, "riot.summoner", endpoint, &summoner); err != nil {
		c.logger.Error("summoner lookup failed", zap.Error(err), zap.String("puuid", puuid))
		return nil, err
	}
	return &summoner, nil
}

func (c *Client) get(ctx context.Context, op, endpoint string, out any) error {
	return httpx.DoJSON(ctx, c.http, httpx.Request{
		Op:     op,
		Method: http.MethodGet,
		URL:    endpoint,
		Header: http.Header{tokenHeader: []string{c.apiKey}},
	}, out)
}
