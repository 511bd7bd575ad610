package syncclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	gametypes "github.com/BeaujeanCyril/gloomhaven-companion/pkg/game/types"
	"github.com/BeaujeanCyril/gloomhaven-companion/pkg/gamesync"
	"github.com/BeaujeanCyril/gloomhaven-companion/pkg/log"
)

const (
	// DefaultPollInterval is the default delay between polling ticks.
	DefaultPollInterval = 2 * time.Second

	defaultRequestTimeout = 10 * time.Second
)

// Session is the identity tuple a PIN resolves to.
type Session struct {
	CampaignID int    `json:"campaignId"`
	GameID     int    `json:"gameId"`
	PlayerID   int    `json:"playerId"`
	PlayerName string `json:"playerName"`
}

// PlayerDataResponse is a player's poll result: the resolved session plus
// their roster entry, which is nil until the Game Master pushes state.
type PlayerDataResponse struct {
	Session    Session               `json:"session"`
	PlayerData *gametypes.SyncPlayer `json:"playerData"`
}

// Client drives the live-sync API through periodic request/response
// cycles. One polling loop is active at a time; starting a new loop stops
// the previous one. Ticks are wall-clock based, so a slow request can
// overlap the next tick; GM snapshots are applied by their lastUpdate
// stamp rather than arrival order.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu          sync.Mutex
	connected   bool
	lastSync    time.Time
	lastApplied time.Time
	cancelPoll  context.CancelFunc
}

// New creates a new sync client for the given server base URL
// (e.g. "http://localhost:8080").
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: defaultRequestTimeout,
		},
	}
}

// IsConnected reports whether the last request succeeded.
func (c *Client) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// LastSync returns the time of the last successful exchange.
func (c *Client) LastSync() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSync
}

func (c *Client) setConnected(connected bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = connected
	if connected {
		c.lastSync = time.Now()
	}
}

func (c *Client) doJSON(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reqBody *bytes.Buffer
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %v", err)
		}
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.setConnected(false)
		return fmt.Errorf("request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.setConnected(false)
		return fmt.Errorf("unexpected status %d for %s %s", resp.StatusCode, method, path)
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			c.setConnected(false)
			return fmt.Errorf("failed to decode response: %v", err)
		}
	}

	c.setConnected(true)
	return nil
}

// SyncGameState pushes the full roster to the server. This is the Game
// Master's path: it overwrites the shared state.
func (c *Client) SyncGameState(ctx context.Context, campaignID, scenarioID int, players []gametypes.SyncPlayer) error {
	body := map[string]interface{}{
		"campaignId": campaignID,
		"scenarioId": scenarioID,
		"players":    players,
	}
	return c.doJSON(ctx, http.MethodPost, "/api/game-sync/update", body, nil)
}

// FetchGameState retrieves the current shared state, or nil when nothing
// has been pushed for the campaign/scenario pair.
func (c *Client) FetchGameState(ctx context.Context, campaignID, scenarioID int) (*gamesync.GameState, error) {
	out := struct {
		Success bool                `json:"success"`
		State   *gamesync.GameState `json:"state"`
	}{}
	path := fmt.Sprintf("/api/game-sync/state?campaignId=%d&scenarioId=%d", campaignID, scenarioID)
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out.State, nil
}

// FetchPlayerData resolves the PIN and retrieves the player's own record.
func (c *Client) FetchPlayerData(ctx context.Context, pin string) (*PlayerDataResponse, error) {
	out := PlayerDataResponse{}
	if err := c.doJSON(ctx, http.MethodGet, "/api/game-sync/player/"+pin, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePlayerStats pushes a partial stats update for the player bound to
// the PIN and returns the updated record.
func (c *Client) UpdatePlayerStats(ctx context.Context, pin string, update gamesync.PlayerStatsUpdate) (*gametypes.SyncPlayer, error) {
	out := struct {
		Success    bool                  `json:"success"`
		PlayerData *gametypes.SyncPlayer `json:"playerData"`
	}{}
	if err := c.doJSON(ctx, http.MethodPost, "/api/game-sync/player/"+pin, update, &out); err != nil {
		return nil, err
	}
	return out.PlayerData, nil
}

// StartGMPolling polls the shared state and invokes onUpdate with the
// roster whenever a snapshot newer than the last applied one arrives.
func (c *Client) StartGMPolling(ctx context.Context, campaignID, scenarioID int, interval time.Duration, onUpdate func([]gametypes.SyncPlayer)) {
	c.startPolling(ctx, interval, func(tickCtx context.Context) {
		state, err := c.FetchGameState(tickCtx, campaignID, scenarioID)
		if err != nil {
			log.Debug("GM poll failed: %v", err)
			return
		}
		if state == nil {
			return
		}
		if !c.applyIfNewer(state.LastUpdate) {
			return
		}
		onUpdate(state.Players)
	})
}

// StartPlayerPolling polls the player's own record and invokes onUpdate
// with each fetched record.
func (c *Client) StartPlayerPolling(ctx context.Context, pin string, interval time.Duration, onUpdate func(gametypes.SyncPlayer)) {
	c.startPolling(ctx, interval, func(tickCtx context.Context) {
		resp, err := c.FetchPlayerData(tickCtx, pin)
		if err != nil {
			log.Debug("player poll failed: %v", err)
			return
		}
		if resp.PlayerData == nil {
			return
		}
		onUpdate(*resp.PlayerData)
	})
}

// startPolling runs tick at the given interval until the context is done
// or StopPolling is called. Each tick runs in its own goroutine so a slow
// request never delays the next tick.
func (c *Client) startPolling(ctx context.Context, interval time.Duration, tick func(context.Context)) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	c.StopPolling()

	pollCtx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.cancelPoll = cancel
	c.lastApplied = time.Time{}
	c.mu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-pollCtx.Done():
				return
			case <-ticker.C:
				go tick(pollCtx)
			}
		}
	}()
}

// StopPolling cancels the active polling loop, if any.
func (c *Client) StopPolling() {
	c.mu.Lock()
	cancel := c.cancelPoll
	c.cancelPoll = nil
	c.connected = false
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// applyIfNewer records the snapshot timestamp and reports whether the
// snapshot should be applied. Stale responses arriving out of order are
// dropped.
func (c *Client) applyIfNewer(lastUpdate time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !lastUpdate.After(c.lastApplied) {
		return false
	}
	c.lastApplied = lastUpdate
	return true
}
