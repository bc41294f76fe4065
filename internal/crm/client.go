// Package crm is a typed client for the TableCRM REST API. Every call is
// credentialed by a cash-register token passed as a query parameter; the
// service uses no auth headers and no token refresh.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/abdymaleeq925/tablecrm/pkg/metrics"
)

const DefaultBaseURL = "https://app.tablecrm.com"

const apiPrefix = "/api/v1"

type Client struct {
	baseURL string
	http    *http.Client
	log     *zap.Logger
	metrics *metrics.ClientMetrics
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

func WithMetrics(m *metrics.ClientMetrics) Option {
	return func(c *Client) { c.metrics = m }
}

func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Contragents lists contacts. The full envelope is returned because the
// authentication flow inspects count and result to judge the response shape.
func (c *Client) Contragents(ctx context.Context, token string) (List[Contragent], error) {
	return getList[Contragent](ctx, c, "contragents", url.Values{"token": {token}})
}

// SearchContragents looks contacts up by phone. Several contacts may share a
// phone; the caller disambiguates.
func (c *Client) SearchContragents(ctx context.Context, token, phone string) (List[Contragent], error) {
	return getList[Contragent](ctx, c, "contragents", url.Values{"token": {token}, "phone": {phone}})
}

func (c *Client) Payboxes(ctx context.Context, token string) ([]Paybox, error) {
	l, err := getList[Paybox](ctx, c, "payboxes", url.Values{"token": {token}})
	return l.Result, err
}

func (c *Client) Organizations(ctx context.Context, token string) ([]Organization, error) {
	l, err := getList[Organization](ctx, c, "organizations", url.Values{"token": {token}})
	return l.Result, err
}

func (c *Client) Warehouses(ctx context.Context, token string) ([]Warehouse, error) {
	l, err := getList[Warehouse](ctx, c, "warehouses", url.Values{"token": {token}})
	return l.Result, err
}

func (c *Client) PriceTypes(ctx context.Context, token string) ([]PriceType, error) {
	l, err := getList[PriceType](ctx, c, "price_types", url.Values{"token": {token}})
	return l.Result, err
}

func (c *Client) Prices(ctx context.Context, token string) ([]PriceItem, error) {
	l, err := getList[PriceItem](ctx, c, "prices", url.Values{"token": {token}})
	return l.Result, err
}

// CreateSale posts a sales document. The endpoint takes a batch; the client
// always sends a batch of one. No idempotency key is attached, so a repeated
// call creates a second document.
func (c *Client) CreateSale(ctx context.Context, token string, doc SaleDoc) (SaleResult, error) {
	const op = "docs_sales"
	body, err := json.Marshal([]SaleDoc{doc})
	if err != nil {
		return SaleResult{}, fmt.Errorf("%s: encode payload: %w", op, err)
	}
	data, status, err := c.do(ctx, op, http.MethodPost, op, url.Values{"token": {token}}, bytes.NewReader(body))
	if err != nil {
		return SaleResult{}, err
	}
	var out SaleResult
	if len(data) > 0 {
		// The body is best-effort on errors; a non-JSON error page still
		// has to produce an APIError below.
		_ = json.Unmarshal(data, &out)
	}
	if status < 200 || status >= 300 || out.Detail != "" {
		return SaleResult{}, &APIError{Op: op, StatusCode: status, Detail: out.Detail}
	}
	return out, nil
}

func getList[T any](ctx context.Context, c *Client, op string, query url.Values) (List[T], error) {
	data, status, err := c.do(ctx, op, http.MethodGet, op, query, nil)
	if err != nil {
		return List[T]{}, err
	}
	var out List[T]
	if err := json.Unmarshal(data, &out); err != nil {
		return List[T]{}, fmt.Errorf("%s: decode response: %w", op, err)
	}
	if status < 200 || status >= 300 || out.Detail != "" {
		return List[T]{}, &APIError{Op: op, StatusCode: status, Detail: out.Detail}
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, op, method, endpoint string, query url.Values, body io.Reader) ([]byte, int, error) {
	u := c.baseURL + apiPrefix + "/" + endpoint + "/"
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: build request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	reqID := uuid.NewString()
	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(op, "error", start)
		c.log.Warn("crm request failed",
			zap.String("request_id", reqID),
			zap.String("endpoint", op),
			zap.Error(err))
		return nil, 0, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	c.observe(op, strconv.Itoa(resp.StatusCode), start)
	c.log.Debug("crm request",
		zap.String("request_id", reqID),
		zap.String("endpoint", op),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%s: read response: %w", op, err)
	}
	return data, resp.StatusCode, nil
}

func (c *Client) observe(endpoint, status string, start time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.Observe(endpoint, status, time.Since(start))
}
