package garmin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/retry"

	"github.com/Alessandro-giacometti/sleep-debt-app/internal"
)

// Client talks to the wearable-sync API. It is deliberately thin: session
// login plus a per-day sleep fetch, with retries around every call. A day
// the upstream has not published yet is not an error.
type Client struct {
	baseURL    string
	email      string
	password   string
	httpClient *http.Client
	token      string
	logger     internal.Logger
}

func NewClient(baseURL, email, password string, logger internal.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		email:      email,
		password:   password,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger,
	}
}

func (c *Client) Configured() bool {
	return c.email != "" && c.password != ""
}

// Login opens a session and caches the token for subsequent fetches.
func (c *Client) Login(ctx context.Context) error {
	body, err := json.Marshal(map[string]string{"email": c.email, "password": c.password})
	if err != nil {
		return err
	}

	return retry.Do(
		func() error {
			req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/session", strings.NewReader(string(body)))
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Content-Type", "application/json")
			resp, err := c.httpClient.Do(req)
			if err != nil {
				return err
			}
			defer resp.Body.Close()
			if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
				return retry.Unrecoverable(fmt.Errorf("login rejected with status %d", resp.StatusCode))
			}
			if resp.StatusCode != http.StatusOK {
				return fmt.Errorf("login returned status %d", resp.StatusCode)
			}
			var session struct {
				Token string `json:"token"`
			}
			if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
				return err
			}
			if session.Token == "" {
				return errors.New("login response missing token")
			}
			c.token = session.Token
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(4),
		retry.Delay(time.Second),
		retry.MaxDelay(30*time.Second),
		retry.DelayType(retry.FullJitterBackoffDelay),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warnf("garmin: login attempt %d failed: %v", n+1, err)
		}),
	)
}

// DailySleep fetches one calendar day's observed sleep duration. ok=false
// means the upstream has no data for that day (yet).
func (c *Client) DailySleep(ctx context.Context, date string) (hours float64, ok bool, err error) {
	endpoint := fmt.Sprintf("%s/wellness/dailySleep?date=%s", c.baseURL, url.QueryEscape(date))

	err = retry.Do(
		func() error {
			req, reqErr := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
			if reqErr != nil {
				return retry.Unrecoverable(reqErr)
			}
			req.Header.Set("Authorization", "Bearer "+c.token)
			resp, doErr := c.httpClient.Do(req)
			if doErr != nil {
				return doErr
			}
			defer resp.Body.Close()

			switch resp.StatusCode {
			case http.StatusOK:
			case http.StatusNoContent, http.StatusNotFound:
				// Day not published upstream yet.
				ok = false
				return nil
			case http.StatusUnauthorized:
				return retry.Unrecoverable(errors.New("session expired"))
			default:
				return fmt.Errorf("dailySleep returned status %d", resp.StatusCode)
			}

			var payload struct {
				SleepSeconds float64 `json:"sleepTimeSeconds"`
			}
			if decErr := json.NewDecoder(resp.Body).Decode(&payload); decErr != nil {
				return decErr
			}
			hours = payload.SleepSeconds / 3600.0
			ok = true
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.MaxDelay(20*time.Second),
		retry.DelayType(retry.FullJitterBackoffDelay),
		retry.OnRetry(func(n uint, err error) {
			c.logger.Warnf("garmin: fetch for %s attempt %d failed: %v", date, n+1, err)
		}),
	)
	if err != nil {
		return 0, false, err
	}
	return hours, ok, nil
}
