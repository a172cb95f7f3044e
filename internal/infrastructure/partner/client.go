package partner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"github.com/tdex-network/buysell-daemon/internal/core/ports"
	"github.com/tdex-network/buysell-daemon/pkg/circuitbreaker"
	"github.com/tdex-network/buysell-daemon/pkg/stats"
	"go.uber.org/ratelimit"
)

const (
	DefaultRequestTimeout = 30 * time.Second
	DefaultRateLimit      = 10
)

// Client issues JSON requests to a partner REST API. Requests are paced by a
// rate limiter and go through a circuit breaker that opens on repeated
// transport or server errors.
type Client struct {
	exchange   string
	httpClient *http.Client
	limiter    ratelimit.Limiter
	cb         *gobreaker.CircuitBreaker
}

func NewClient(exchange string, requestTimeout time.Duration, rateLimit int) *Client {
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}
	if rateLimit <= 0 {
		rateLimit = DefaultRateLimit
	}
	return &Client{
		exchange:   exchange,
		httpClient: &http.Client{Timeout: requestTimeout},
		limiter:    ratelimit.New(rateLimit),
		cb:         circuitbreaker.NewCircuitBreaker(exchange),
	}
}

type response struct {
	status int
	body   []byte
}

// Do sends the request and decodes the response body into out, if not nil.
// Non successful responses are returned as *ports.PartnerError.
func (c *Client) Do(
	ctx context.Context, method, url string, headers map[string]string,
	body, out interface{},
) (err error) {
	defer func() {
		stats.RecordPartnerRequest(c.exchange, err)
	}()

	var payload []byte
	if body != nil {
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	c.limiter.Take()

	res, err := c.cb.Execute(func() (interface{}, error) {
		resp, err := c.send(ctx, method, url, headers, payload)
		if err != nil {
			return nil, err
		}
		if resp.status >= http.StatusInternalServerError {
			return nil, c.partnerError(resp)
		}
		return resp, nil
	})
	if err != nil {
		return err
	}

	resp := res.(*response)
	if resp.status < http.StatusOK || resp.status >= http.StatusMultipleChoices {
		return c.partnerError(resp)
	}
	if out == nil || len(bytes.TrimSpace(resp.body)) <= 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", c.exchange, err)
	}
	return nil
}

func (c *Client) send(
	ctx context.Context, method, url string, headers map[string]string,
	payload []byte,
) (*response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return &response{resp.StatusCode, respBody}, nil
}

func (c *Client) partnerError(resp *response) error {
	return &ports.PartnerError{
		Exchange: c.exchange,
		Status:   resp.status,
		Body:     string(resp.body),
	}
}
