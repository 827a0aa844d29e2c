package rcon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/hll-crcon/stats-hooks/internal/models"
	"github.com/valyala/fasthttp"
	"golang.org/x/sync/errgroup"
)

// ErrNotFound is returned when the host answers with an empty result, e.g.
// the profile of a player it never saw.
var ErrNotFound = errors.New("not found")

// APIError is a failed call to the host API.
type APIError struct {
	Endpoint string
	Status   int
	Message  string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("crcon %s: status %d: %s", e.Endpoint, e.Status, e.Message)
	}
	return fmt.Sprintf("crcon %s: status %d", e.Endpoint, e.Status)
}

type Config struct {
	BaseURL string
	APIKey  string
	// By is the author recorded with every message sent to players.
	By          string
	Timeout     time.Duration
	Concurrency int
}

// Client talks to the CRCON HTTP API.
type Client struct {
	baseURL     string
	apiKey      string
	by          string
	timeout     time.Duration
	concurrency int
	client      *fasthttp.Client
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = 8
	}
	by := cfg.By
	if by == "" {
		by = "stats_hooks"
	}

	return &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:      cfg.APIKey,
		by:          by,
		timeout:     timeout,
		concurrency: concurrency,
		client: &fasthttp.Client{
			Name:                "hll-stats-hooks",
			MaxConnsPerHost:     64,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxIdleConnDuration: time.Minute,
		},
	}
}

type envelope[T any] struct {
	Result T      `json:"result"`
	Failed bool   `json:"failed"`
	Error  string `json:"error"`
}

func call[T any](ctx context.Context, c *Client, method, endpoint string, query url.Values, body any) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	uri := c.baseURL + "/api/" + endpoint
	if len(query) > 0 {
		uri += "?" + query.Encode()
	}
	req.SetRequestURI(uri)
	req.Header.SetMethod(method)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")

	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return zero, fmt.Errorf("crcon %s: encode: %w", endpoint, err)
		}
		req.Header.SetContentType("application/json")
		req.SetBodyRaw(payload)
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.timeout)
	}
	if err := c.client.DoDeadline(req, resp, deadline); err != nil {
		return zero, fmt.Errorf("crcon %s: %w", endpoint, err)
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return zero, &APIError{Endpoint: endpoint, Status: resp.StatusCode(), Message: errorMessage(resp.Body())}
	}

	var env envelope[json.RawMessage]
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return zero, fmt.Errorf("crcon %s: decode: %w", endpoint, err)
	}
	if env.Failed {
		return zero, &APIError{Endpoint: endpoint, Status: resp.StatusCode(), Message: env.Error}
	}
	if len(env.Result) == 0 || string(env.Result) == "null" {
		return zero, ErrNotFound
	}

	var result T
	if err := json.Unmarshal(env.Result, &result); err != nil {
		return zero, fmt.Errorf("crcon %s: decode result: %w", endpoint, err)
	}
	return result, nil
}

func errorMessage(body []byte) string {
	var env envelope[json.RawMessage]
	if err := json.Unmarshal(body, &env); err == nil && env.Error != "" {
		return env.Error
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return strings.TrimSpace(string(body))
}

// GetPlayerProfile returns ErrNotFound for players the host never saw.
func (c *Client) GetPlayerProfile(ctx context.Context, playerID string, nbSessions int) (*models.PlayerProfile, error) {
	q := url.Values{}
	q.Set("player_id", playerID)
	q.Set("nb_sessions", strconv.Itoa(nbSessions))
	p, err := call[models.PlayerProfile](ctx, c, fasthttp.MethodGet, "get_player_profile", q, nil)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (c *Client) GetTeamView(ctx context.Context) (*models.TeamView, error) {
	tv, err := call[models.TeamView](ctx, c, fasthttp.MethodGet, "get_team_view", nil, nil)
	if err != nil {
		return nil, err
	}
	return &tv, nil
}

func (c *Client) GetStatus(ctx context.Context) (*models.ServerStatus, error) {
	s, err := call[models.ServerStatus](ctx, c, fasthttp.MethodGet, "get_status", nil, nil)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *Client) GetVipIDs(ctx context.Context) ([]models.VipEntry, error) {
	vips, err := call[[]models.VipEntry](ctx, c, fasthttp.MethodGet, "get_vip_ids", nil, nil)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	return vips, err
}

// AddVip grants VIP until expiration, an ISO-8601 timestamp.
func (c *Client) AddVip(ctx context.Context, playerID, description, expiration string) error {
	body := map[string]any{
		"player_id":   playerID,
		"description": description,
		"expiration":  expiration,
	}
	_, err := call[json.RawMessage](ctx, c, fasthttp.MethodPost, "add_vip", nil, body)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// GetPlayerIDs lists connected players. The host encodes each one as a
// [name, player_id] pair.
func (c *Client) GetPlayerIDs(ctx context.Context) ([]models.PlayerRef, error) {
	pairs, err := call[[][]string](ctx, c, fasthttp.MethodGet, "get_playerids", nil, nil)
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	players := make([]models.PlayerRef, 0, len(pairs))
	for _, p := range pairs {
		if len(p) < 2 || p[1] == "" {
			continue
		}
		players = append(players, models.PlayerRef{Name: p[0], PlayerID: p[1]})
	}
	return players, nil
}

func (c *Client) MessagePlayer(ctx context.Context, playerID, message string) error {
	body := map[string]any{
		"player_id":    playerID,
		"message":      message,
		"by":           c.by,
		"save_message": false,
	}
	_, err := call[json.RawMessage](ctx, c, fasthttp.MethodPost, "message_player", nil, body)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}

// MessageAllPlayers sends message to every connected player and returns how
// many were reached. Individual failures do not stop the broadcast.
func (c *Client) MessageAllPlayers(ctx context.Context, message string) (int, error) {
	players, err := c.GetPlayerIDs(ctx)
	if err != nil {
		return 0, err
	}

	var (
		mu   sync.Mutex
		sent int
		errs []error
	)
	g := new(errgroup.Group)
	g.SetLimit(c.concurrency)
	for _, p := range players {
		p := p
		g.Go(func() error {
			err := c.MessagePlayer(ctx, p.PlayerID, message)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", p.PlayerID, err))
				return nil
			}
			sent++
			return nil
		})
	}
	_ = g.Wait()

	return sent, errors.Join(errs...)
}
