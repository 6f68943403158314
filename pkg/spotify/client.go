package spotify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/avast/retry-go"
	"github.com/igolaizola/llmtunes/pkg/catalog"
	"github.com/igolaizola/llmtunes/pkg/ratelimit"
)

const (
	defaultBaseURL = "https://api.spotify.com/v1/"
	defaultAuthURL = "https://accounts.spotify.com/api/token"
)

type Client struct {
	client          *http.Client
	debug           bool
	ratelimit       ratelimit.Lock
	retryWait       time.Duration
	attempts        uint
	baseURL         string
	authURL         string
	clientID        string
	clientSecret    string
	token           string
	tokenExpiration time.Time
}

type Config struct {
	// Wait is the fixed delay between two consecutive requests.
	Wait time.Duration
	// RetryWait is the fixed delay before retrying a transient failure.
	RetryWait    time.Duration
	Attempts     int
	Debug        bool
	Client       *http.Client
	ClientID     string
	ClientSecret string
	BaseURL      string
	AuthURL      string
}

func New(cfg *Config) *Client {
	wait := cfg.Wait
	if wait < 0 {
		wait = 0
	}
	retryWait := cfg.RetryWait
	if retryWait == 0 {
		retryWait = 5 * time.Second
	}
	attempts := cfg.Attempts
	if attempts <= 0 {
		attempts = 3
	}
	client := cfg.Client
	if client == nil {
		client = &http.Client{
			Timeout: 2 * time.Minute,
		}
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	authURL := cfg.AuthURL
	if authURL == "" {
		authURL = defaultAuthURL
	}

	return &Client{
		client:       client,
		ratelimit:    ratelimit.New(wait),
		retryWait:    retryWait,
		attempts:     uint(attempts),
		debug:        cfg.Debug,
		baseURL:      baseURL,
		authURL:      authURL,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
	}
}

type authResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// Auth fetches a client credentials token unless the current one is still
// valid. Rejected credentials wrap catalog.ErrUnauthorized.
func (c *Client) Auth(ctx context.Context) error {
	if c.token != "" && time.Now().Before(c.tokenExpiration) {
		return nil
	}

	form := url.Values{}
	form.Add("grant_type", "client_credentials")

	var resp authResponse
	if _, err := c.do(ctx, "POST", c.authURL, form, &resp); err != nil {
		var errStatus errStatusCode
		if errors.As(err, &errStatus) && (int(errStatus) == http.StatusBadRequest || int(errStatus) == http.StatusUnauthorized) {
			return fmt.Errorf("spotify: couldn't authenticate: %w: %w", catalog.ErrUnauthorized, err)
		}
		return fmt.Errorf("spotify: couldn't authenticate: %w", err)
	}
	if resp.AccessToken == "" {
		return errors.New("spotify: empty access token")
	}
	c.token = resp.AccessToken
	c.tokenExpiration = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	return nil
}

func (c *Client) log(format string, args ...interface{}) {
	if c.debug {
		format += "\n"
		log.Printf(format, args...)
	}
}

type errStatusCode int

func (e errStatusCode) Error() string {
	return fmt.Sprintf("%d", e)
}

// do sends the request retrying transient failures and expired tokens.
// The returned error is classified for the catalog: 404 wraps
// catalog.ErrNotFound and network errors, 429 and 5xx are transient.
func (c *Client) do(ctx context.Context, method, path string, in, out any) ([]byte, error) {
	_, isAuth := in.(url.Values)
	var b []byte
	var authErr error
	err := retry.Do(
		func() error {
			var err error
			b, err = c.doAttempt(ctx, method, path, in, out)
			if err == nil {
				return nil
			}
			var errStatus errStatusCode
			if !isAuth && errors.As(err, &errStatus) && int(errStatus) == http.StatusUnauthorized {
				// Token expired or revoked, get a new one before retrying
				c.token = ""
				if authErr = c.Auth(ctx); authErr != nil {
					return authErr
				}
			}
			return err
		},
		retry.Context(ctx),
		retry.Attempts(c.attempts),
		retry.Delay(c.retryWait),
		retry.DelayType(retry.FixedDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			return authErr == nil && retryable(err, isAuth)
		}),
		retry.OnRetry(func(n uint, err error) {
			c.log("spotify: retrying %s %s (%d): %v", method, path, n+1, err)
		}),
	)
	if err != nil {
		return nil, classify(err)
	}
	return b, nil
}

func retryable(err error, isAuth bool) bool {
	var errStatus errStatusCode
	if errors.As(err, &errStatus) {
		switch code := int(errStatus); {
		case code == http.StatusUnauthorized:
			return !isAuth
		case code == http.StatusTooManyRequests, code >= 500:
			return true
		default:
			return false
		}
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}

func classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return catalog.Transient(err)
	}
	var errStatus errStatusCode
	if errors.As(err, &errStatus) {
		switch code := int(errStatus); {
		case code == http.StatusNotFound:
			return fmt.Errorf("%w: %v", catalog.ErrNotFound, err)
		case code == http.StatusUnauthorized:
			return fmt.Errorf("%w: %w", catalog.ErrUnauthorized, err)
		case code == http.StatusTooManyRequests, code >= 500:
			return catalog.Transient(err)
		default:
			return err
		}
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return catalog.Transient(err)
	}
	return err
}

func (c *Client) doAttempt(ctx context.Context, method, path string, in, out any) ([]byte, error) {
	var body []byte
	var reqBody io.Reader
	var newAuth bool
	if f, ok := in.(url.Values); ok {
		reqBody = strings.NewReader(f.Encode())
		newAuth = true
	} else if in != nil {
		var err error
		body, err = json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("spotify: couldn't marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(body)
	}
	logBody := string(body)
	if len(logBody) > 100 {
		logBody = logBody[:100] + "..."
	}
	c.log("spotify: do %s %s %s", method, path, logBody)

	// Check if path is absolute
	u := c.baseURL + path
	if strings.HasPrefix(path, "http") {
		u = path
	}
	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, fmt.Errorf("spotify: couldn't create request: %w", err)
	}
	if newAuth {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.SetBasicAuth(c.clientID, c.clientSecret)
	} else {
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	unlock := c.ratelimit.Lock(ctx)
	defer unlock()

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("spotify: couldn't %s %s: %w", method, u, err)
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("spotify: couldn't read response body: %w", err)
	}
	c.log("spotify: response %s %s %d %s", method, path, resp.StatusCode, string(respBody))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		errMessage := string(respBody)
		if len(errMessage) > 100 {
			errMessage = errMessage[:100] + "..."
		}
		return nil, fmt.Errorf("spotify: %s %s returned (%s): %w", method, u, errMessage, errStatusCode(resp.StatusCode))
	}
	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return nil, fmt.Errorf("spotify: couldn't unmarshal response body (%T): %w", out, err)
		}
	}
	return respBody, nil
}
