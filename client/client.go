// Package client is a typed REST client for the tramite API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"

	"github.com/kelydev/apiTramite/models"
	"github.com/kelydev/apiTramite/utils"
)

// APIError is a non-2xx answer of the API.
type APIError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error %d", e.Status)
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

// Detail is the message sent by the server, empty when there was none.
func (e *APIError) Detail() string { return e.Message }

// Client talks to the API on behalf of one user session.
type Client struct {
	httpClient *resty.Client
	refreshes  singleflight.Group

	mu      sync.RWMutex
	session models.TokenPair

	// OnSession is called after every login or token refresh.
	OnSession func(models.TokenPair)
}

// New creates a client for baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetHeader("Accept", "application/json").
			SetHeader("User-Agent", "tramite-panel/1.0").
			SetTimeout(timeout),
	}
}

// Session returns the current tokens and identity.
func (c *Client) Session() models.TokenPair {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

// SetSession replaces the current session, e.g. one restored from disk.
func (c *Client) SetSession(s models.TokenPair) {
	c.mu.Lock()
	c.session = s
	c.mu.Unlock()
}

func (c *Client) storeSession(s models.TokenPair) {
	c.SetSession(s)
	if c.OnSession != nil {
		c.OnSession(s)
	}
}

// Login authenticates and keeps the returned session.
func (c *Client) Login(ctx context.Context, username, password string) (models.TokenPair, error) {
	var pair models.TokenPair
	_, err := c.call(ctx, http.MethodPost, "/auth/login", false, func(r *resty.Request) {
		r.SetBody(models.Credentials{Username: username, Password: password}).SetResult(&pair)
	})
	if err != nil {
		return pair, err
	}
	c.storeSession(pair)
	return pair, nil
}

// Refresh exchanges the refresh token for a new session. Concurrent callers
// share one request.
func (c *Client) Refresh(ctx context.Context) error {
	_, err, _ := c.refreshes.Do("refresh", func() (any, error) {
		refreshToken := c.Session().RefreshToken
		if refreshToken == "" {
			return nil, &APIError{Status: http.StatusUnauthorized, Message: "No hay una sesión activa"}
		}
		var pair models.TokenPair
		_, err := c.call(ctx, http.MethodPost, "/auth/refresh", false, func(r *resty.Request) {
			r.SetBody(models.RefreshRequest{RefreshToken: refreshToken}).SetResult(&pair)
		})
		if err != nil {
			return nil, err
		}
		c.storeSession(pair)
		return nil, nil
	})
	return err
}

// Me returns the identity of the logged-in user.
func (c *Client) Me(ctx context.Context) (models.Sesion, error) {
	var s models.Sesion
	_, err := c.call(ctx, http.MethodGet, "/auth/me", false, func(r *resty.Request) { r.SetResult(&s) })
	return s, err
}

// call executes a request with the current access token. A 401 is answered
// by one token refresh and one retry. With raw set the body is left unread
// and the caller must close resp.RawBody().
func (c *Client) call(ctx context.Context, method, path string, raw bool, prepare func(*resty.Request)) (*resty.Response, error) {
	exec := func() (*resty.Response, error) {
		req := c.httpClient.R().SetContext(ctx).SetError(&utils.ErrorResponse{}).SetDoNotParseResponse(raw)
		if token := c.Session().AccessToken; token != "" {
			req.SetAuthToken(token)
		}
		if prepare != nil {
			prepare(req)
		}
		resp, err := req.Execute(method, path)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", method, path, err)
		}
		return resp, nil
	}

	resp, err := exec()
	if err != nil {
		return nil, err
	}

	if resp.StatusCode() == http.StatusUnauthorized && refreshable(path) && c.Session().RefreshToken != "" {
		if rerr := c.Refresh(ctx); rerr == nil {
			closeRaw(resp, raw)
			if resp, err = exec(); err != nil {
				return nil, err
			}
		} else {
			log.Debug().Err(rerr).Msg("token refresh failed")
		}
	}

	if resp.IsError() {
		return resp, toAPIError(resp, raw)
	}
	return resp, nil
}

func refreshable(path string) bool {
	return path != "/auth/login" && path != "/auth/refresh"
}

func closeRaw(resp *resty.Response, raw bool) {
	if raw && resp.RawBody() != nil {
		resp.RawBody().Close()
	}
}

func toAPIError(resp *resty.Response, raw bool) *APIError {
	apiErr := &APIError{Status: resp.StatusCode()}
	if raw {
		defer closeRaw(resp, raw)
		var body utils.ErrorResponse
		if err := json.NewDecoder(io.LimitReader(resp.RawBody(), 64<<10)).Decode(&body); err == nil {
			apiErr.Message, apiErr.Fields = body.Message, body.Fields
		}
		return apiErr
	}
	if body, ok := resp.Error().(*utils.ErrorResponse); ok && body != nil {
		apiErr.Message, apiErr.Fields = body.Message, body.Fields
	}
	return apiErr
}
