package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/qepting91/devfeed/internal/domain"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/time/rate"
)

// Endpoint paths, relative to the configured base URL.
const (
	pathListPosts     = "api/posts/fetch_posts/"
	pathSearchPosts   = "api/posts/search/"
	pathToggleLike    = "api/posts/like/"
	pathRecordView    = "api/posts/view_post/"
	pathCheckAuth     = "api/accounts/check_authentication/"
	pathUserPosts     = "api/userprofile/fetch-user-posts/"
	pathUserAnalytics = "api/userprofile/fetch-user-analytics/"
)

// Credentials are optional; without them the server treats the caller as
// anonymous and the auth check fails closed.
type Credentials struct {
	Token     string
	SessionID string
	CSRFToken string
}

type ClientOptions struct {
	BaseURL     string
	UserAgent   string
	Timeout     time.Duration
	RatePerSec  float64
	Credentials Credentials
}

// Client talks to the feed API over HTTP.
type Client struct {
	base       *url.URL
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	creds      Credentials
}

func NewClient(opts ClientOptions) (*Client, error) {
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", opts.BaseURL)
	}
	if base.Path == "" || base.Path[len(base.Path)-1] != '/' {
		base.Path += "/"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	limit := rate.Inf
	if opts.RatePerSec > 0 {
		limit = rate.Limit(opts.RatePerSec)
	}

	jar, _ := cookiejar.New(nil)
	if opts.Credentials.SessionID != "" {
		jar.SetCookies(base, []*http.Cookie{{Name: "sessionid", Value: opts.Credentials.SessionID}})
	}
	if opts.Credentials.CSRFToken != "" {
		jar.SetCookies(base, []*http.Cookie{{Name: "csrftoken", Value: opts.Credentials.CSRFToken}})
	}

	return &Client{
		base: base,
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Jar:       jar,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		limiter:   rate.NewLimiter(limit, 1),
		userAgent: opts.UserAgent,
		creds:     opts.Credentials,
	}, nil
}

func (c *Client) ListPosts(ctx context.Context) ([]domain.Post, error) {
	body, err := c.do(ctx, "list posts", http.MethodGet, pathListPosts, nil, nil)
	if err != nil {
		return nil, err
	}
	posts, err := decodeListing(body)
	if err != nil {
		return nil, &domain.NetworkError{Op: "list posts", Err: err}
	}
	return posts, nil
}

func (c *Client) SearchPosts(ctx context.Context, query string) ([]domain.Post, error) {
	q := url.Values{"search": {query}}
	body, err := c.do(ctx, "search posts", http.MethodGet, pathSearchPosts, q, nil)
	if err != nil {
		return nil, err
	}
	posts, err := decodeSearch(body)
	if err != nil {
		return nil, &domain.NetworkError{Op: "search posts", Err: err}
	}
	return posts, nil
}

type postRef struct {
	PostID domain.PostID `json:"post_id"`
}

func (c *Client) ToggleLike(ctx context.Context, id domain.PostID) error {
	_, err := c.do(ctx, "toggle like", http.MethodPost, pathToggleLike, nil, postRef{PostID: id})
	return err
}

func (c *Client) RecordView(ctx context.Context, id domain.PostID) error {
	_, err := c.do(ctx, "record view", http.MethodPost, pathRecordView, nil, postRef{PostID: id})
	return err
}

func (c *Client) CheckAuth(ctx context.Context) (bool, error) {
	body, err := c.do(ctx, "check auth", http.MethodGet, pathCheckAuth, nil, nil)
	if err != nil {
		return false, err
	}
	ok, err := decodeAuth(body)
	if err != nil {
		return false, &domain.NetworkError{Op: "check auth", Err: err}
	}
	return ok, nil
}

func (c *Client) UserPosts(ctx context.Context) ([]domain.Post, error) {
	body, err := c.do(ctx, "fetch own posts", http.MethodGet, pathUserPosts, nil, nil)
	if err != nil {
		return nil, err
	}
	posts, err := decodeOwnPosts(body)
	if err != nil {
		return nil, &domain.NetworkError{Op: "fetch own posts", Err: err}
	}
	return posts, nil
}

func (c *Client) UserAnalytics(ctx context.Context) (domain.AnalyticsSummary, error) {
	body, err := c.do(ctx, "fetch analytics", http.MethodGet, pathUserAnalytics, nil, nil)
	if err != nil {
		return domain.AnalyticsSummary{}, err
	}
	summary, err := decodeAnalytics(body)
	if err != nil {
		return domain.AnalyticsSummary{}, &domain.NetworkError{Op: "fetch analytics", Err: err}
	}
	return summary, nil
}

// do performs one request and returns the response body. Every failure comes
// back as a *domain.NetworkError.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, payload any) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &domain.NetworkError{Op: op, Err: err}
	}

	u := c.base.ResolveReference(&url.URL{Path: path})
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, &domain.NetworkError{Op: op, Err: err}
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return nil, &domain.NetworkError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
		if c.creds.CSRFToken != "" {
			req.Header.Set("X-CSRFToken", c.creds.CSRFToken)
		}
	}
	if c.creds.Token != "" {
		req.Header.Set("Authorization", "Token "+c.creds.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.NetworkError{Op: op, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.NetworkError{Op: op, Err: fmt.Errorf("status %d", resp.StatusCode)}
	}
	return body, nil
}
