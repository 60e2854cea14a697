package zenrows

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"math/rand"
	"net/http"
	"net/url"
	"time"

	"yad2_scraper/config"
)

// Instruction is one step of a browser interaction sequence executed by the
// rendering service (js_instructions). Exactly one field is set per step.
type Instruction struct {
	Wait  int    `json:"wait,omitempty"`  // milliseconds
	Click string `json:"click,omitempty"` // CSS selector
}

// RenderRequest describes one page render. Build it once, do not mutate.
type RenderRequest struct {
	URL          string
	JSRender     bool
	Instructions []Instruction
	ProxyCountry string
	Outputs      string            // side-channel extraction, e.g. "phone_numbers"
	Extra        map[string]string // raw extra query params
}

// RenderResponse is the folded outcome of a render. Transient failures never
// surface as errors; after the retry budget is spent the response carries
// empty HTML, status 500 and the last error text. Callers must treat that as
// "no data" and keep going.
type RenderResponse struct {
	HTML         string   `json:"html"`
	StatusCode   int      `json:"status_code"`
	PhoneNumbers []string `json:"phone_numbers"`
	Err          string   `json:"error,omitempty"`
}

// failureKind is the explicit retry decision. Nearly everything is
// retryable; fatal is reserved for conditions retrying cannot fix.
type failureKind int

const (
	retryable failureKind = iota
	fatal
)

// Client talks to the ZenRows rendering API. It holds no per-call state, so
// one instance is shared across sequential pipeline runs.
type Client struct {
	apiKey        string
	baseURL       string
	maxRetries    int
	backoffFactor float64
	proxyCountry  string
	httpClient    *http.Client

	// injectable for deterministic tests
	sleep func(time.Duration)
}

func New(cfg config.ZenRowsConfig, proxyCountry string) *Client {
	return &Client{
		apiKey:        cfg.APIKey,
		baseURL:       cfg.APIURL,
		maxRetries:    cfg.MaxRetries,
		backoffFactor: cfg.BackoffFactor,
		proxyCountry:  proxyCountry,
		httpClient:    &http.Client{Timeout: 90 * time.Second},
		sleep:         time.Sleep,
	}
}

// Render executes the request with bounded retries and exponential backoff.
// Sleep before attempt n+1 is exactly backoffFactor^n seconds, no jitter.
func (c *Client) Render(ctx context.Context, req RenderRequest) RenderResponse {
	params, err := c.buildParams(req)
	if err != nil {
		// malformed request: retrying cannot help
		return RenderResponse{StatusCode: 500, Err: err.Error()}
	}

	var lastErr string
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		resp, kind, err := c.doRequest(ctx, params)
		if err == nil {
			return resp
		}

		lastErr = err.Error()
		if kind == fatal {
			log.Printf("ZenRows: fatal error, not retrying: %v", err)
			break
		}

		if attempt < c.maxRetries {
			wait := c.backoffDuration(attempt)
			log.Printf("ZenRows: attempt %d/%d failed (%v), retrying in %s", attempt, c.maxRetries, err, wait)
			c.sleep(wait)
		} else {
			log.Printf("ZenRows: max retries (%d) exceeded, last error: %v", c.maxRetries, err)
		}
	}

	return RenderResponse{HTML: "", StatusCode: 500, Err: lastErr}
}

func (c *Client) backoffDuration(attempt int) time.Duration {
	secs := math.Pow(c.backoffFactor, float64(attempt))
	return time.Duration(secs * float64(time.Second))
}

func (c *Client) buildParams(req RenderRequest) (url.Values, error) {
	if req.URL == "" {
		return nil, fmt.Errorf("render request has no url")
	}

	params := url.Values{}
	params.Set("url", req.URL)
	params.Set("apikey", c.apiKey)
	params.Set("json_response", "true")
	params.Set("custom_headers", "true")
	params.Set("premium_proxy", "true")
	params.Set("original_status", "true")

	country := req.ProxyCountry
	if country == "" {
		country = c.proxyCountry
	}
	if country != "" {
		params.Set("proxy_country", country)
	}

	if req.JSRender {
		params.Set("js_render", "true")
	}

	if len(req.Instructions) > 0 {
		encoded, err := json.Marshal(req.Instructions)
		if err != nil {
			return nil, fmt.Errorf("encode js instructions: %w", err)
		}
		params.Set("js_instructions", string(encoded))
	}

	outputs := req.Outputs
	if outputs == "" && clicksPhoneControl(req.Instructions) {
		outputs = "phone_numbers"
	}
	if outputs != "" {
		params.Set("outputs", outputs)
	}

	for k, v := range req.Extra {
		params.Set(k, v)
	}

	return params, nil
}

func clicksPhoneControl(instructions []Instruction) bool {
	for _, in := range instructions {
		if in.Click == ".viewPhone" {
			return true
		}
	}
	return false
}

func (c *Client) doRequest(ctx context.Context, params url.Values) (RenderResponse, failureKind, error) {
	httpReq, err := http.NewRequestWithContext(ctx, "GET", c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return RenderResponse{}, fatal, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml")
	httpReq.Header.Set("Accept-Language", "he-IL,he;q=0.9,en-US;q=0.8,en;q=0.7")
	httpReq.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return RenderResponse{}, fatal, err
		}
		return RenderResponse{}, retryable, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable {
		return RenderResponse{}, retryable, fmt.Errorf("rate limited or unavailable: %d", resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return RenderResponse{}, retryable, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return RenderResponse{}, retryable, fmt.Errorf("read body: %w", err)
	}

	return parseBody(body), retryable, nil
}

// parseBody decodes the json_response envelope; a non-JSON body, or JSON
// that is not an envelope (e.g. a data endpoint's own payload), is treated
// as literal content with an assumed success status.
func parseBody(body []byte) RenderResponse {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(body, &probe); err == nil {
		if _, ok := probe["html"]; ok {
			var envelope RenderResponse
			if err := json.Unmarshal(body, &envelope); err == nil {
				if envelope.StatusCode == 0 {
					envelope.StatusCode = 200
				}
				return envelope
			}
		}
	}
	return RenderResponse{HTML: string(body), StatusCode: 200}
}

// RandomDelay returns a uniformly distributed pause used between repeated
// phone-resolution attempts to mimic human pacing.
func RandomDelay(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)))
}
