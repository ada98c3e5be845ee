// Package scraper harvests shows and credits from the Camdram REST API.
package scraper

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/cheeseechops/CamdramAPI/pkg/models"
)

const (
	DefaultBaseURL  = "https://www.camdram.net"
	defaultTimeout  = 30 * time.Second
	maxErrorBodyLen = 512
)

// StatusError is returned for any non-200 response.
type StatusError struct {
	Code int
	URL  string
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("camdram: GET %s: status %d: %s", e.URL, e.Code, e.Body)
}

// ClientOptions configures a Client. Without credentials requests are sent
// unauthenticated, which Camdram allows at a lower rate limit.
type ClientOptions struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
	HTTPClient   *http.Client
}

// Client talks to the Camdram JSON API.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient builds a client. With credentials, the returned client fetches
// and refreshes an OAuth2 client-credentials token on demand.
func NewClient(ctx context.Context, opts ClientOptions) *Client {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	hc := opts.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: timeout}
	}

	if opts.ClientID != "" && opts.ClientSecret != "" {
		tokenURL := opts.TokenURL
		if tokenURL == "" {
			tokenURL = base + "/oauth/v2/token"
		}
		cc := clientcredentials.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			TokenURL:     tokenURL,
			AuthStyle:    oauth2.AuthStyleInParams,
		}
		tokenCtx := context.WithValue(context.WithoutCancel(ctx), oauth2.HTTPClient, hc)
		authed := cc.Client(tokenCtx)
		authed.Timeout = timeout
		hc = authed
	}
	return &Client{BaseURL: base, HTTP: hc}
}

// get fetches path as JSON into out. ".json" is appended unless the last
// path segment already has an extension.
func (c *Client) get(ctx context.Context, path string, params url.Values, out any) error {
	u := c.BaseURL + path
	if last := path[strings.LastIndex(path, "/")+1:]; !strings.Contains(last, ".") {
		u += ".json"
	}
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("camdram: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("camdram: request %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodyLen))
		return &StatusError{Code: resp.StatusCode, URL: u, Body: strings.TrimSpace(string(body))}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("camdram: decode %s: %w", path, err)
	}
	return nil
}

func window(from, to string) url.Values {
	q := url.Values{}
	if from != "" {
		q.Set("from", from)
	}
	if to != "" {
		q.Set("to", to)
	}
	return q
}

func (c *Client) Venues(ctx context.Context) ([]models.Venue, error) {
	var out []models.Venue
	if err := c.get(ctx, "/venues", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Societies(ctx context.Context) ([]models.Society, error) {
	var out []models.Society
	if err := c.get(ctx, "/societies", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type diary struct {
	Events []struct {
		Show *models.Show `json:"show"`
	} `json:"events"`
}

func (d diary) shows() []models.Show {
	out := make([]models.Show, 0, len(d.Events))
	for _, e := range d.Events {
		if e.Show != nil {
			out = append(out, *e.Show)
		}
	}
	return out
}

// VenueDiary returns the shows behind every diary event at a venue.
func (c *Client) VenueDiary(ctx context.Context, slug, from, to string) ([]models.Show, error) {
	var d diary
	if err := c.get(ctx, "/venues/"+url.PathEscape(slug)+"/diary", window(from, to), &d); err != nil {
		return nil, err
	}
	return d.shows(), nil
}

func (c *Client) SocietyDiary(ctx context.Context, slug, from, to string) ([]models.Show, error) {
	var d diary
	if err := c.get(ctx, "/societies/"+url.PathEscape(slug)+"/diary", window(from, to), &d); err != nil {
		return nil, err
	}
	return d.shows(), nil
}

func (c *Client) VenueShows(ctx context.Context, slug, from, to string) ([]models.Show, error) {
	var out []models.Show
	if err := c.get(ctx, "/venues/"+url.PathEscape(slug)+"/shows", window(from, to), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) SocietyShows(ctx context.Context, slug, from, to string) ([]models.Show, error) {
	var out []models.Show
	if err := c.get(ctx, "/societies/"+url.PathEscape(slug)+"/shows", window(from, to), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Shows returns one page of the global show list. The endpoint answers with
// either a bare list or an object holding it under "shows".
func (c *Client) Shows(ctx context.Context, page, perPage int) ([]models.Show, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))

	var raw json.RawMessage
	if err := c.get(ctx, "/shows", q, &raw); err != nil {
		return nil, err
	}
	var list []models.Show
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}
	var wrapped struct {
		Shows []models.Show `json:"shows"`
	}
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return nil, errors.New("camdram: /shows: unexpected response shape")
	}
	return wrapped.Shows, nil
}

func (c *Client) Show(ctx context.Context, slug string) (*models.Show, error) {
	var out models.Show
	if err := c.get(ctx, "/shows/"+url.PathEscape(slug), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ShowRoles(ctx context.Context, slug string) ([]models.RoleEntry, error) {
	var out []models.RoleEntry
	if err := c.get(ctx, "/shows/"+url.PathEscape(slug)+"/roles", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
