package radarr

import (
	"bytes"
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

	"github.com/avast/retry-go/v4"
)

const userAgent = "marquee/0.1.0"

// Rating is one provider's score as proxied by Radarr's lookup payload.
type Rating struct {
	Votes int64   `json:"votes"`
	Value float64 `json:"value"`
	Type  string  `json:"type"`
}

// Ratings maps provider name to rating in Radarr's lookup schema.
type Ratings struct {
	IMDB           *Rating `json:"imdb,omitempty"`
	TMDB           *Rating `json:"tmdb,omitempty"`
	Metacritic     *Rating `json:"metacritic,omitempty"`
	RottenTomatoes *Rating `json:"rottenTomatoes,omitempty"`
}

// Language is Radarr's original-language descriptor.
type Language struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Movie models a Radarr movie resource, shared by lookup and library
// endpoints. ID is non-zero only for movies already in the library.
type Movie struct {
	ID               int64    `json:"id,omitempty"`
	Title            string   `json:"title"`
	TitleSlug        string   `json:"titleSlug"`
	Year             int      `json:"year"`
	TMDBID           int64    `json:"tmdbId"`
	IMDBID           string   `json:"imdbId"`
	Overview         string   `json:"overview"`
	Ratings          Ratings  `json:"ratings"`
	OriginalLanguage Language `json:"originalLanguage"`
}

// InLibrary reports whether this movie resource represents an existing
// library entry.
func (m Movie) InLibrary() bool {
	return m.ID > 0
}

// QualityProfile is one configured Radarr quality profile.
type QualityProfile struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// RootFolder is one configured Radarr root folder.
type RootFolder struct {
	ID   int64  `json:"id"`
	Path string `json:"path"`
}

// AddOptions controls Radarr's post-add behaviour.
type AddOptions struct {
	SearchForMovie bool   `json:"searchForMovie"`
	Monitor        string `json:"monitor"`
}

// AddRequest is the payload for POST /movie.
type AddRequest struct {
	Title               string     `json:"title"`
	TitleSlug           string     `json:"titleSlug"`
	Year                int        `json:"year"`
	TMDBID              int64      `json:"tmdbId"`
	QualityProfileID    int64      `json:"qualityProfileId"`
	RootFolderPath      string     `json:"rootFolderPath"`
	Monitored           bool       `json:"monitored"`
	MinimumAvailability string     `json:"minimumAvailability,omitempty"`
	Tags                []int64    `json:"tags,omitempty"`
	AddOptions          AddOptions `json:"addOptions"`
}

// AddDefaults carries the configured defaults applied to every addition.
type AddDefaults struct {
	QualityProfileID    int64
	RootFolderPath      string
	Monitor             bool
	MinimumAvailability string
	Tags                []string
	SearchOnAdd         bool
}

// BuildAddRequest assembles the POST /movie payload from a lookup result and
// the configured defaults. Non-numeric tags are dropped; Radarr tags are
// numeric identifiers.
func BuildAddRequest(lookup Movie, defaults AddDefaults) AddRequest {
	monitor := "none"
	if defaults.Monitor {
		monitor = "movieOnly"
	}
	req := AddRequest{
		Title:               lookup.Title,
		TitleSlug:           lookup.TitleSlug,
		Year:                lookup.Year,
		TMDBID:              lookup.TMDBID,
		QualityProfileID:    defaults.QualityProfileID,
		RootFolderPath:      defaults.RootFolderPath,
		Monitored:           defaults.Monitor,
		MinimumAvailability: defaults.MinimumAvailability,
		AddOptions: AddOptions{
			SearchForMovie: defaults.SearchOnAdd,
			Monitor:        monitor,
		},
	}
	for _, tag := range defaults.Tags {
		if id, err := strconv.ParseInt(strings.TrimSpace(tag), 10, 64); err == nil {
			req.Tags = append(req.Tags, id)
		}
	}
	return req
}

// StatusError is returned when Radarr responds with a non-success status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("radarr: http %d: %s", e.StatusCode, strings.TrimSpace(e.Body))
}

// Client provides access to the Radarr v3 API.
type Client struct {
	baseURL       string
	apiKey        string
	httpClient    *http.Client
	retryAttempts int
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRetryAttempts overrides the add retry count (defaults to 3).
func WithRetryAttempts(attempts int) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.retryAttempts = attempts
		}
	}
}

// New creates a Radarr client.
func New(baseURL, apiKey string, timeout time.Duration, opts ...Option) (*Client, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("radarr base url required")
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("radarr api key required")
	}
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	client := &Client{
		baseURL:       baseURL,
		apiKey:        apiKey,
		httpClient:    &http.Client{Timeout: timeout},
		retryAttempts: 3,
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Ping verifies connectivity and credentials against /system/status.
func (c *Client) Ping(ctx context.Context) error {
	var status struct {
		Version string `json:"version"`
	}
	return c.getJSON(ctx, "/api/v3/system/status", nil, &status)
}

// Lookup searches Radarr's metadata provider for the supplied term. Use
// "tmdb:123" or "imdb:tt0137523" to look up by identifier.
func (c *Client) Lookup(ctx context.Context, term string) ([]Movie, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, errors.New("lookup term must not be empty")
	}
	params := url.Values{}
	params.Set("term", term)
	var movies []Movie
	if err := c.getJSON(ctx, "/api/v3/movie/lookup", params, &movies); err != nil {
		return nil, fmt.Errorf("radarr lookup: %w", err)
	}
	return movies, nil
}

// LookupTMDB looks up a movie by TMDB identifier.
func (c *Client) LookupTMDB(ctx context.Context, tmdbID int64) ([]Movie, error) {
	if tmdbID <= 0 {
		return nil, errors.New("tmdb id must be positive")
	}
	return c.Lookup(ctx, fmt.Sprintf("tmdb:%d", tmdbID))
}

// LookupIMDB looks up a movie by IMDb identifier.
func (c *Client) LookupIMDB(ctx context.Context, imdbID string) ([]Movie, error) {
	imdbID = strings.TrimSpace(imdbID)
	if imdbID == "" {
		return nil, errors.New("imdb id must not be empty")
	}
	return c.Lookup(ctx, "imdb:"+imdbID)
}

// ListMovies returns every movie in the library.
func (c *Client) ListMovies(ctx context.Context) ([]Movie, error) {
	var movies []Movie
	if err := c.getJSON(ctx, "/api/v3/movie", nil, &movies); err != nil {
		return nil, fmt.Errorf("radarr list movies: %w", err)
	}
	return movies, nil
}

// QualityProfiles returns the configured quality profiles.
func (c *Client) QualityProfiles(ctx context.Context) ([]QualityProfile, error) {
	var profiles []QualityProfile
	if err := c.getJSON(ctx, "/api/v3/qualityprofile", nil, &profiles); err != nil {
		return nil, fmt.Errorf("radarr quality profiles: %w", err)
	}
	return profiles, nil
}

// RootFolders returns the configured root folders.
func (c *Client) RootFolders(ctx context.Context) ([]RootFolder, error) {
	var folders []RootFolder
	if err := c.getJSON(ctx, "/api/v3/rootfolder", nil, &folders); err != nil {
		return nil, fmt.Errorf("radarr root folders: %w", err)
	}
	return folders, nil
}

// Add issues POST /movie, retrying server errors. A transport error is never
// retried: the add may have committed before the response was lost, and a
// second POST would duplicate it. The returned Movie carries the library id
// Radarr assigned.
func (c *Client) Add(ctx context.Context, req AddRequest) (Movie, error) {
	var added Movie
	err := retry.Do(
		func() error {
			return c.postJSON(ctx, "/api/v3/movie", req, &added)
		},
		retry.Context(ctx),
		retry.Attempts(uint(c.retryAttempts)),
		retry.Delay(500*time.Millisecond),
		retry.MaxDelay(6*time.Second),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(func(err error) bool {
			var statusErr *StatusError
			return errors.As(err, &statusErr) && statusErr.StatusCode >= http.StatusInternalServerError
		}),
	)
	if err != nil {
		return Movie{}, fmt.Errorf("radarr add: %w", err)
	}
	return added, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, target any) error {
	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	return c.do(req, target)
}

func (c *Client) postJSON(ctx context.Context, path string, payload, target any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode body: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(encoded))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, target)
}

func (c *Client) do(req *http.Request, target any) error {
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	if target == nil {
		return nil
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
