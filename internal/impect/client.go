// Package impect pulls squad and match KPI data from the Impect Analysis
// Portal API. Auth is an OAuth2 password grant against Keycloak; every data
// call carries the resulting bearer token.
package impect

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	defaultTokenURL = "https://login.impect.com/auth/realms/production/protocol/openid-connect/token"
	defaultAPIBase  = "https://api.impect.com"
	clientID        = "api"
)

// ErrAuthFailed is returned when the token endpoint rejects the credentials
// or answers without an access token.
var ErrAuthFailed = errors.New("impect authentication failed")

type Client struct {
	httpClient *http.Client
	tokenURL   string
	apiBase    string
	token      string
	logger     *zerolog.Logger
}

func NewClient(logger *zerolog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokenURL:   defaultTokenURL,
		apiBase:    defaultAPIBase,
		logger:     logger,
	}
}

// NewClientWithBase is used by tests to point the client at a local server.
func NewClientWithBase(tokenURL, apiBase string, logger *zerolog.Logger) *Client {
	c := NewClient(logger)
	c.tokenURL = tokenURL
	c.apiBase = apiBase
	return c
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
}

// Authenticate exchanges the given credentials for a bearer token and keeps
// it for subsequent calls.
func (c *Client) Authenticate(ctx context.Context, username, password string) error {
	form := url.Values{
		"client_id":  {clientID},
		"grant_type": {"password"},
		"username":   {username},
		"password":   {password},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: token endpoint returned %d", ErrAuthFailed, resp.StatusCode)
	}

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return fmt.Errorf("%w: %w", ErrAuthFailed, err)
	}
	if token.AccessToken == "" {
		return fmt.Errorf("%w: no access_token in response", ErrAuthFailed)
	}

	c.token = token.AccessToken
	c.logger.Info().Msg("Authenticated with Impect")
	return nil
}

type squad struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type squadsResponse struct {
	Data []squad `json:"data"`
}

// SquadNames returns the squad ID to name mapping for the whole portal.
func (c *Client) SquadNames(ctx context.Context) (map[int]string, error) {
	var resp squadsResponse
	if err := c.get(ctx, "/v1/analysis/squads", &resp); err != nil {
		return nil, err
	}

	names := make(map[int]string, len(resp.Data))
	for _, s := range resp.Data {
		names[s.ID] = s.Name
	}
	return names, nil
}

type kpiValue struct {
	Value *float64 `json:"value"`
}

type performance struct {
	SquadID         int                 `json:"squadId"`
	OpponentSquadID int                 `json:"opponentSquadId"`
	MatchID         int                 `json:"matchId"`
	KPIsAndScores   map[string]kpiValue `json:"kpisAndScores"`
}

type performancesResponse struct {
	Data struct {
		Performances []performance `json:"performances"`
	} `json:"data"`
}

// MatchPerformance holds one squad's KPI values for one match.
type MatchPerformance struct {
	SquadID         int
	OpponentSquadID int
	KPIs            map[string]float64
}

// MatchKPIs fetches both squads' KPI values for a single match. The first
// return value is the requested squad, the second its opponent; the opponent
// may be nil when the API omits it.
func (c *Client) MatchKPIs(ctx context.Context, squadID, iterationID, matchID int, kpis []string) (*MatchPerformance, *MatchPerformance, error) {
	body := map[string]any{
		"kpisAndScores":          kpis,
		"matchId":                matchID,
		"squadId":                squadID,
		"competitionIterationId": iterationID,
		"compareWithMode":        "OPPONENT",
	}

	var resp performancesResponse
	if err := c.post(ctx, "/v1/analysis/performances/squads/single-match", body, &resp); err != nil {
		return nil, nil, err
	}

	var own, opponent *MatchPerformance
	for _, perf := range resp.Data.Performances {
		mp := &MatchPerformance{
			SquadID:         perf.SquadID,
			OpponentSquadID: perf.OpponentSquadID,
			KPIs:            flattenKPIs(perf.KPIsAndScores),
		}
		if perf.SquadID == squadID {
			own = mp
		} else {
			opponent = mp
		}
	}

	if own == nil {
		return nil, nil, fmt.Errorf("no performance data for squad %d in match %d", squadID, matchID)
	}
	return own, opponent, nil
}

func flattenKPIs(values map[string]kpiValue) map[string]float64 {
	out := make(map[string]float64, len(values))
	for k, v := range values {
		if v.Value != nil {
			out[k] = *v.Value
		}
	}
	return out
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+path, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	return c.do(req, out)
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBase+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("impect request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("impect API returned %d for %s: %s", resp.StatusCode, req.URL.Path, string(payload))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode impect response: %w", err)
	}
	return nil
}
