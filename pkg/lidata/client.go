// Package lidata is the client for the primary company-data API: profile,
// job-posting, and funding endpoints keyed by a LinkedIn company URL.
// Credentials (key and host) come from environment configuration.
package lidata

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/expo-enrich/internal/resilience"
)

// Profile is the company-profile endpoint response.
type Profile struct {
	Name          string `json:"name"`
	Website       string `json:"website"`
	LinkedInURL   string `json:"linkedin_url"`
	Industry      string `json:"industry"`
	EmployeeCount int    `json:"employee_count"`
	EmployeeRange string `json:"employee_range"`
	Description   string `json:"description"`
}

// Job is one posted job from the company-jobs endpoint.
type Job struct {
	Title    string `json:"title"`
	Location string `json:"location"`
	PostedAt string `json:"posted_at"` // ISO date
}

// FundingRound is one round from the funding endpoint.
type FundingRound struct {
	RoundType   string `json:"round_type"`
	AmountUSD   int64  `json:"amount_usd"`
	AnnouncedOn string `json:"announced_on"` // ISO date
}

// Funding is the company-funding endpoint response.
type Funding struct {
	Rounds        []FundingRound `json:"rounds"`
	TotalUSD      int64          `json:"total_usd"`
	CrunchbaseURL string         `json:"crunchbase_url"`
}

// Client exposes the three primary-API lookups.
type Client interface {
	CompanyProfile(ctx context.Context, linkedInURL string) (*Profile, error)
	CompanyJobs(ctx context.Context, linkedInURL string) ([]Job, error)
	CompanyFunding(ctx context.Context, linkedInURL string) (*Funding, error)
}

// Option configures the client.
type Option func(*httpClient)

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithBaseURL overrides the URL derived from the host (useful in tests).
func WithBaseURL(base string) Option {
	return func(c *httpClient) {
		c.baseURL = base
	}
}

// WithRetry overrides the retry policy.
func WithRetry(cfg resilience.RetryConfig) Option {
	return func(c *httpClient) {
		c.retry = cfg
	}
}

type httpClient struct {
	key     string
	host    string
	baseURL string
	http    *http.Client
	retry   resilience.RetryConfig
}

// NewClient creates a client for the given API key and host.
func NewClient(key, host string, opts ...Option) Client {
	c := &httpClient{
		key:     key,
		host:    host,
		baseURL: "https://" + host,
		http:    &http.Client{Timeout: 20 * time.Second},
		retry:   resilience.DefaultRetryConfig(),
	}
	c.retry.OnRetry = resilience.RetryLogger("lidata", "get")
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CompanyProfile fetches the company profile for a LinkedIn URL.
func (c *httpClient) CompanyProfile(ctx context.Context, linkedInURL string) (*Profile, error) {
	var profile Profile
	if err := c.get(ctx, "/company", linkedInURL, &profile); err != nil {
		return nil, eris.Wrap(err, "lidata: company profile")
	}
	return &profile, nil
}

// CompanyJobs fetches recent job postings for a LinkedIn URL.
func (c *httpClient) CompanyJobs(ctx context.Context, linkedInURL string) ([]Job, error) {
	var resp struct {
		Jobs []Job `json:"jobs"`
	}
	if err := c.get(ctx, "/company/jobs", linkedInURL, &resp); err != nil {
		return nil, eris.Wrap(err, "lidata: company jobs")
	}
	return resp.Jobs, nil
}

// CompanyFunding fetches funding history for a LinkedIn URL.
func (c *httpClient) CompanyFunding(ctx context.Context, linkedInURL string) (*Funding, error) {
	var funding Funding
	if err := c.get(ctx, "/company/funding", linkedInURL, &funding); err != nil {
		return nil, eris.Wrap(err, "lidata: company funding")
	}
	return &funding, nil
}

// get performs one API call with the bounded 429 retry policy.
func (c *httpClient) get(ctx context.Context, path, linkedInURL string, out any) error {
	endpoint := c.baseURL + path + "?url=" + url.QueryEscape(linkedInURL)

	body, err := resilience.DoVal(ctx, c.retry, func(ctx context.Context) ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return nil, eris.Wrap(err, "create request")
		}
		req.Header.Set("x-rapidapi-key", c.key)
		req.Header.Set("x-rapidapi-host", c.host)

		resp, err := c.http.Do(req)
		if err != nil {
			return nil, eris.Wrap(err, "do request")
		}
		defer resp.Body.Close() //nolint:errcheck

		data, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
		if err != nil {
			return nil, eris.Wrap(err, "read body")
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, resilience.NewRateLimitError(
				eris.Errorf("http 429 from %s", path), resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return nil, eris.Errorf("http %d from %s", resp.StatusCode, path)
		}
		return data, nil
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return eris.Wrap(err, "decode response")
	}
	return nil
}
