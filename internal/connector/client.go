package connector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/kongor-lobby/masterserver/internal/codec"
)

// Config is the resolved (not raw-env) configuration for the two backing
// services. internal/config is responsible for reading environment
// variables and failing fast before this package is ever constructed.
type Config struct {
	UserServiceBaseURL      string
	InventoryServiceBaseURL string
}

// Client is the single entry point the rest of the server uses to read and
// write user and inventory state. It owns the liveness pingers and the
// user cache; callers never see HTTP.
type Client struct {
	cfg        Config
	httpClient *http.Client
	userPing   *pinger
	invPing    *pinger
	cache      *userCache
	stop       chan struct{}
}

// httpTimeout bounds every individual request; a hung backing service must
// never stall a connection's packet loop for longer than this.
const httpTimeout = 5 * time.Second

const pingInterval = 10 * time.Second

// New constructs a Client and starts its background liveness pingers.
// Call Close when the server shuts down to stop them.
func New(cfg Config) *Client {
	httpClient := &http.Client{Timeout: httpTimeout}
	c := &Client{
		cfg:        cfg,
		httpClient: httpClient,
		userPing:   newPinger("user-service", cfg.UserServiceBaseURL+"/healthz", httpClient, pingInterval),
		invPing:    newPinger("inventory-service", cfg.InventoryServiceBaseURL+"/healthz", httpClient, pingInterval),
		cache:      newUserCache(),
		stop:       make(chan struct{}),
	}
	go c.userPing.run(c.stop)
	go c.invPing.run(c.stop)
	return c
}

// Close stops the background liveness pingers.
func (c *Client) Close() {
	close(c.stop)
}

// UserServiceAlive reports whether the last liveness probe of the user
// service succeeded.
func (c *Client) UserServiceAlive() bool { return c.userPing.isAlive() }

// InventoryServiceAlive reports whether the last liveness probe of the
// inventory service succeeded.
func (c *Client) InventoryServiceAlive() bool { return c.invPing.isAlive() }

type loginResponse struct {
	UserID     uint32 `json:"userId"`
	UserName   string `json:"userName"`
	PlayerName string `json:"playerName"`
}

// ValidateCredentials checks a username/password pair against the user
// service and returns the resolved userId on success.
func (c *Client) ValidateCredentials(ctx context.Context, username, password string) (uint32, error) {
	if !c.userPing.isAlive() {
		return 0, ErrServiceUnavailable
	}

	body, _ := json.Marshal(map[string]string{"username": username, "password": password})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.UserServiceBaseURL+"/v1/auth/validate", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build validate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.userPing.checkNow()
		return 0, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var out loginResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return 0, fmt.Errorf("decode validate response: %w", err)
		}
		return out.UserID, nil
	case http.StatusUnauthorized, http.StatusForbidden:
		return 0, ErrInvalidCredentials
	default:
		return 0, fmt.Errorf("%w: unexpected status %d", ErrServiceUnavailable, resp.StatusCode)
	}
}

// GetUser resolves a full User projection by userId, through the cache.
func (c *Client) GetUser(ctx context.Context, userID uint32) (User, error) {
	if u, ok := c.cache.get(userID); ok {
		return u, nil
	}
	if !c.userPing.isAlive() {
		return User{}, ErrServiceUnavailable
	}

	u, err := c.fetchUser(ctx, fmt.Sprintf("%s/v1/users/%d", c.cfg.UserServiceBaseURL, userID))
	if err != nil {
		return User{}, err
	}
	c.cache.put(u)
	return u, nil
}

// GetUserByName resolves a User projection by username. It is not cached:
// it exists to support room join-by-name flows that are rare compared to
// the per-packet userId lookups GetUser serves.
func (c *Client) GetUserByName(ctx context.Context, userName string) (User, error) {
	if !c.userPing.isAlive() {
		return User{}, ErrServiceUnavailable
	}
	return c.fetchUser(ctx, fmt.Sprintf("%s/v1/users/by-name/%s", c.cfg.UserServiceBaseURL, userName))
}

func (c *Client) fetchUser(ctx context.Context, url string) (User, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return User{}, fmt.Errorf("build user request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.userPing.checkNow()
		return User{}, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var u User
		if err := json.NewDecoder(resp.Body).Decode(&u); err != nil {
			return User{}, fmt.Errorf("decode user response: %w", err)
		}
		return u, nil
	case http.StatusNotFound:
		return User{}, ErrNotFound
	default:
		return User{}, fmt.Errorf("%w: unexpected status %d", ErrServiceUnavailable, resp.StatusCode)
	}
}

// InvalidateUser drops a cached User so the next GetUser re-fetches it.
// Called whenever this server itself learns a user's profile changed.
func (c *Client) InvalidateUser(userID uint32) {
	c.cache.invalidate(userID)
}

// GetInventory fetches all four projections for one user from the
// inventory service. It is never cached: the service can mutate these out
// of band (store purchases, other clients) and a stale read would be worse
// than a slightly slower one.
func (c *Client) GetInventory(ctx context.Context, userID uint32) (Inventory, error) {
	if !c.invPing.isAlive() {
		return Inventory{}, ErrServiceUnavailable
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/v1/inventory/%d", c.cfg.InventoryServiceBaseURL, userID), nil)
	if err != nil {
		return Inventory{}, fmt.Errorf("build inventory request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.invPing.checkNow()
		return Inventory{}, fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		var inv Inventory
		if err := json.NewDecoder(resp.Body).Decode(&inv); err != nil {
			return Inventory{}, fmt.Errorf("decode inventory response: %w", err)
		}
		return inv, nil
	case http.StatusNotFound:
		return Inventory{}, ErrNotFound
	default:
		return Inventory{}, fmt.Errorf("%w: unexpected status %d", ErrServiceUnavailable, resp.StatusCode)
	}
}

// SetFavoriteLoadout write-throughs a named loadout to the inventory
// service on behalf of the caller's own account.
func (c *Client) SetFavoriteLoadout(ctx context.Context, userID uint32, loadout codec.Loadout) error {
	return c.writeThrough(ctx, fmt.Sprintf("%s/v1/inventory/%d/loadouts", c.cfg.InventoryServiceBaseURL, userID), loadout)
}

// SetFavoriteCosmetics write-throughs the 8-slot cosmetic set to the
// inventory service on behalf of the caller's own account.
func (c *Client) SetFavoriteCosmetics(ctx context.Context, userID uint32, cosmetics codec.CosmeticSlots) error {
	return c.writeThrough(ctx, fmt.Sprintf("%s/v1/inventory/%d/cosmetics", c.cfg.InventoryServiceBaseURL, userID), cosmetics)
}

// SetOptionBuyMenu write-throughs the buy menu slot order to the inventory
// service on behalf of the caller's own account.
func (c *Client) SetOptionBuyMenu(ctx context.Context, userID uint32, slots []uint32) error {
	return c.writeThrough(ctx, fmt.Sprintf("%s/v1/inventory/%d/buy-menu", c.cfg.InventoryServiceBaseURL, userID), slots)
}

func (c *Client) writeThrough(ctx context.Context, url string, payload any) error {
	if !c.invPing.isAlive() {
		return ErrServiceUnavailable
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal write-through payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build write-through request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.invPing.checkNow()
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: unexpected status %d", ErrServiceUnavailable, resp.StatusCode)
	}
	log.Debug().Str("url", url).Msg("write-through accepted")
	return nil
}
