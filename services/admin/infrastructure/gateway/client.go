// Package gateway is the HTTP client for the backend gateway's catalog and
// accounts APIs. It implements domain.Gateway and domain.Accounts and maps
// responses onto the admin error taxonomy.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/caelus-deploy/caelus/pkg/httpx"
	"github.com/caelus-deploy/caelus/pkg/logger"
	"github.com/caelus-deploy/caelus/pkg/operator"
	"github.com/caelus-deploy/caelus/services/admin/domain"
	"github.com/caelus-deploy/caelus/services/admin/domain/models"
)

// DefaultTimeout bounds a single gateway round trip when no client is supplied.
const DefaultTimeout = 10 * time.Second

// maxErrorBody caps how much of an error response is read.
const maxErrorBody = 64 << 10

var _ domain.Gateway = (*Client)(nil)

// Client talks to the gateway over HTTP. It never retries.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	log     logger.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default instrumented http.Client. The client is
// used as given: WithTimeout does not modify it.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout of the default http.Client.
// Non-positive values keep DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New returns a client for the gateway rooted at baseURL, e.g.
// "http://localhost:8080/api".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid gateway url %q", baseURL)
	}
	c := &Client{
		baseURL: strings.TrimRight(u.String(), "/"),
		timeout: DefaultTimeout,
		log:     logger.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{
			Timeout:   c.timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return c, nil
}

func (c *Client) ListProducts(ctx context.Context) ([]models.Product, error) {
	var out []models.Product
	if err := c.do(ctx, http.MethodGet, "/products", nil, &out); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return out, nil
}

func (c *Client) GetProduct(ctx context.Context, productID int64) (*models.Product, error) {
	var out models.Product
	if err := c.do(ctx, http.MethodGet, productPath(productID), nil, &out); err != nil {
		return nil, fmt.Errorf("get product %d: %w", productID, err)
	}
	return &out, nil
}

func (c *Client) CreateProduct(ctx context.Context, name string, description *string) (*models.Product, error) {
	body := struct {
		Name        string  `json:"name"`
		Description *string `json:"description,omitempty"`
	}{name, description}
	var out models.Product
	if err := c.do(ctx, http.MethodPost, "/products", body, &out); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return &out, nil
}

func (c *Client) DeleteProduct(ctx context.Context, productID int64) error {
	if err := c.do(ctx, http.MethodDelete, productPath(productID), nil, nil); err != nil {
		return fmt.Errorf("delete product %d: %w", productID, err)
	}
	return nil
}

func (c *Client) SetProductTemplate(ctx context.Context, productID, templateID int64) (*models.Product, error) {
	body := struct {
		TemplateID int64 `json:"template_id"`
	}{templateID}

	var out models.Product
	if err := c.do(ctx, http.MethodPut, productPath(productID), body, &out); err != nil {
		return nil, fmt.Errorf("set product %d template %d: %w", productID, templateID, err)
	}
	return &out, nil
}

func (c *Client) ListTemplates(ctx context.Context, productID int64) ([]models.Template, error) {
	var out []models.Template
	if err := c.do(ctx, http.MethodGet, productPath(productID)+"/templates", nil, &out); err != nil {
		return nil, fmt.Errorf("list templates of product %d: %w", productID, err)
	}
	return out, nil
}

func (c *Client) CreateTemplate(ctx context.Context, productID int64, imageRef *string) (*models.Template, error) {
	body := struct {
		ImageRef *string `json:"docker_image_url,omitempty"`
	}{imageRef}

	var out models.Template
	if err := c.do(ctx, http.MethodPost, productPath(productID)+"/templates", body, &out); err != nil {
		return nil, fmt.Errorf("create template for product %d: %w", productID, err)
	}
	return &out, nil
}

func (c *Client) DeleteTemplate(ctx context.Context, productID, templateID int64) error {
	path := productPath(productID) + "/templates/" + strconv.FormatInt(templateID, 10)
	if err := c.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("delete template %d of product %d: %w", templateID, productID, err)
	}
	return nil
}

func productPath(id int64) string {
	return "/products/" + strconv.FormatInt(id, 10)
}

// do performs one round trip. A nil out discards the response body.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%w: encode request: %w", domain.ErrTransportFailure, err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrTransportFailure, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if email, err := operator.EmailFromCtx(ctx); err == nil {
		req.Header.Set(operator.HeaderEmail, email)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", domain.ErrTransportFailure, err)
	}
	defer resp.Body.Close()

	c.log.DebugContext(ctx, "gateway request",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %w", domain.ErrTransportFailure, err)
	}
	return nil
}

// StatusError is the gateway's rejection of a request. It unwraps to the
// taxonomy sentinel matching the status.
type StatusError struct {
	Status  int
	Message string
	Fields  map[string]string
}

func (e *StatusError) Error() string {
	if len(e.Fields) == 0 {
		return e.Message
	}
	parts := make([]string, 0, len(e.Fields))
	for _, k := range slices.Sorted(maps.Keys(e.Fields)) {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return e.Message + " (" + strings.Join(parts, "; ") + ")"
}

// FieldErrors returns the per-field validation messages, if any.
func (e *StatusError) FieldErrors() map[string]string {
	return e.Fields
}

func (e *StatusError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return domain.ErrNotFound
	case http.StatusBadRequest, http.StatusConflict, http.StatusUnprocessableEntity:
		return domain.ErrValidationFailed
	default:
		return domain.ErrTransportFailure
	}
}

func statusError(resp *http.Response) error {
	se := &StatusError{Status: resp.StatusCode}

	var eb httpx.ErrorBody
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err := json.Unmarshal(raw, &eb); err == nil && eb.Error != "" {
		se.Message = eb.Error
		se.Fields = eb.Fields
	} else if msg := strings.TrimSpace(string(raw)); msg != "" {
		se.Message = msg
	}
	if se.Message == "" {
		se.Message = http.StatusText(resp.StatusCode)
	}
	return se
}
