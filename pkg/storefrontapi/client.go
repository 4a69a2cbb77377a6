package storefrontapi

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
	"sync"
	"time"
	"unicode/utf8"

	pkgerrors "github.com/angelmondragon/craftbazaar/pkg/errors"
	"github.com/angelmondragon/craftbazaar/pkg/logger"
	"github.com/angelmondragon/craftbazaar/pkg/metrics"
	"github.com/angelmondragon/craftbazaar/pkg/retry"
	"github.com/angelmondragon/craftbazaar/pkg/types"
	"github.com/google/uuid"
)

const (
	defaultTimeout             = 10 * time.Second
	responseBodyReadLimit int64 = 4 << 20
	rawErrorLimit               = 200

	HeaderRequestID = "X-Request-Id"
)

var errBaseURLRequired = errors.New("storefront api base url is required")

// Client talks to the storefront REST backend.
type Client struct {
	httpClient *http.Client
	jar        *sessionJar
	baseURL    string
	retry      retry.Config
	metrics    *metrics.StorefrontMetrics
	logg       *logger.Logger

	mu    sync.RWMutex
	token string
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client (which carries a cookie jar).
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithTimeout sets the per-request timeout of the default HTTP client.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithRetry configures how read-only requests are retried.
func WithRetry(attempts int, delay time.Duration) Option {
	return func(c *Client) {
		c.retry.MaxAttempts = attempts
		c.retry.Backoff = retry.ExponentialBackoff(delay)
	}
}

func WithMetrics(m *metrics.StorefrontMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

func WithLogger(logg *logger.Logger) Option {
	return func(c *Client) {
		if logg != nil {
			c.logg = logg
		}
	}
}

// NewClient builds a storefront client rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, errBaseURLRequired
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("parsing storefront api base url: %w", err)
	}

	jar, err := newSessionJar()
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	client := &Client{
		httpClient: &http.Client{Timeout: defaultTimeout, Jar: jar},
		jar:        jar,
		baseURL:    trimmed,
		retry: retry.Config{
			MaxAttempts: 3,
			Backoff:     retry.ExponentialBackoff(100 * time.Millisecond),
		},
		logg: logger.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	client.retry.ShouldRetry = shouldRetry

	return client, nil
}

// SetToken installs the bearer token sent on every request. Empty clears it
// together with any session cookies held by the default jar.
func (c *Client) SetToken(token string) {
	token = strings.TrimSpace(token)
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
	if token == "" && c.jar != nil && c.httpClient.Jar == c.jar {
		c.jar.reset()
	}
}

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) GetCart(ctx context.Context) ([]types.CartLine, error) {
	var payload types.CartPayload
	if err := c.get(ctx, OpGetCart, "/cart", nil, &payload); err != nil {
		return nil, err
	}
	if payload.Cart.Items == nil {
		return []types.CartLine{}, nil
	}
	return payload.Cart.Items, nil
}

type cartItemRequest struct {
	ProductID string `json:"productId,omitempty"`
	Quantity  int    `json:"quantity"`
}

func (c *Client) AddToCart(ctx context.Context, productID string, quantity int) error {
	if err := requireProductID(productID); err != nil {
		return err
	}
	return c.send(ctx, OpAddToCart, http.MethodPost, "/cart", cartItemRequest{ProductID: productID, Quantity: quantity}, nil)
}

func (c *Client) UpdateCartItem(ctx context.Context, productID string, quantity int) error {
	if err := requireProductID(productID); err != nil {
		return err
	}
	return c.send(ctx, OpUpdateCartItem, http.MethodPut, "/cart/"+url.PathEscape(productID), cartItemRequest{Quantity: quantity}, nil)
}

func (c *Client) ClearCart(ctx context.Context) error {
	return c.send(ctx, OpClearCart, http.MethodDelete, "/cart", nil, nil)
}

func (c *Client) GetWishlist(ctx context.Context) ([]types.WishlistEntry, error) {
	var payload types.WishlistPayload
	if err := c.get(ctx, OpGetWishlist, "/wishlist", nil, &payload); err != nil {
		return nil, err
	}
	if payload.Wishlist.Items == nil {
		return []types.WishlistEntry{}, nil
	}
	return payload.Wishlist.Items, nil
}

type wishlistItemRequest struct {
	ProductID string `json:"productId"`
}

func (c *Client) AddToWishlist(ctx context.Context, productID string) error {
	if err := requireProductID(productID); err != nil {
		return err
	}
	return c.send(ctx, OpAddToWishlist, http.MethodPost, "/wishlist", wishlistItemRequest{ProductID: productID}, nil)
}

func (c *Client) RemoveFromWishlist(ctx context.Context, productID string) error {
	if err := requireProductID(productID); err != nil {
		return err
	}
	return c.send(ctx, OpRemoveFromWishlist, http.MethodDelete, "/wishlist/"+url.PathEscape(productID), nil, nil)
}

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

// SignIn authenticates a shopper. A returned token is installed on the client.
func (c *Client) SignIn(ctx context.Context, email, password string) (*types.SignInPayload, error) {
	payload, err := c.signIn(ctx, OpSignIn, "/auth/signin", email, password)
	if err != nil {
		return nil, err
	}
	if payload.Token != "" {
		c.SetToken(payload.Token)
	}
	return payload, nil
}

// AdminSignIn authenticates an administrator. The shopper token is left as is.
func (c *Client) AdminSignIn(ctx context.Context, email, password string) (*types.SignInPayload, error) {
	return c.signIn(ctx, OpAdminSignIn, "/auth/admin/signin", email, password)
}

func (c *Client) signIn(ctx context.Context, op, path, email, password string) (*types.SignInPayload, error) {
	var payload types.SignInPayload
	req := credentialsRequest{Email: strings.TrimSpace(email), Password: password}
	if err := c.send(ctx, op, http.MethodPost, path, req, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// SignUp registers a new account. It does not sign the shopper in.
func (c *Client) SignUp(ctx context.Context, email, password, name string) (*types.User, error) {
	var payload struct {
		User types.User `json:"user"`
	}
	req := credentialsRequest{Email: strings.TrimSpace(email), Password: password, Name: strings.TrimSpace(name)}
	if err := c.send(ctx, OpSignUp, http.MethodPost, "/auth/signup", req, &payload); err != nil {
		return nil, err
	}
	return &payload.User, nil
}

func (c *Client) GetProducts(ctx context.Context, filter types.ProductFilter) ([]types.Product, error) {
	query := url.Values{}
	if filter.Category != "" {
		query.Set("category", filter.Category.String())
	}
	if filter.Limit > 0 {
		query.Set("limit", strconv.Itoa(filter.Limit))
	}

	var payload types.ProductsPayload
	if err := c.get(ctx, OpGetProducts, "/products", query, &payload); err != nil {
		return nil, err
	}
	if payload.Products == nil {
		return []types.Product{}, nil
	}
	return payload.Products, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (*types.Product, error) {
	if err := requireProductID(id); err != nil {
		return nil, err
	}
	var payload types.ProductPayload
	if err := c.get(ctx, OpGetProduct, "/products/"+url.PathEscape(id), nil, &payload); err != nil {
		return nil, err
	}
	return &payload.Product, nil
}

func requireProductID(id string) error {
	if strings.TrimSpace(id) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	return nil
}

// get runs an idempotent request under the retry policy.
func (c *Client) get(ctx context.Context, op, path string, query url.Values, out any) error {
	start := time.Now()
	err := retry.Do(ctx, c.retry, func() error {
		return c.do(ctx, op, http.MethodGet, path, query, nil, out)
	})
	c.metrics.ObserveRemoteCall(op, time.Since(start), err)
	return err
}

func (c *Client) send(ctx context.Context, op, method, path string, body any, out any) error {
	start := time.Now()
	err := c.do(ctx, op, method, path, nil, body, out)
	c.metrics.ObserveRemoteCall(op, time.Since(start), err)
	return err
}

func shouldRetry(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return pkgerrors.IsRetryable(err)
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "marshal "+op+" request")
		}
		reader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.buildURL(path, query), reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build "+op+" request")
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set(HeaderRequestID, requestID)
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token := c.Token(); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	logCtx := c.logg.WithFields(c.logg.WithOperation(ctx, op), map[string]any{
		"request_id": requestID,
		"method":     method,
		"path":       path,
	})

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logg.Warn(c.logg.WithError(logCtx, err), "storefront request failed")
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute "+op+" request")
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read "+op+" response")
	}
	c.logg.Debug(c.logg.WithField(logCtx, "status", resp.StatusCode), "storefront request completed")

	var envelope types.Envelope
	decodeErr := json.Unmarshal(raw, &envelope)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(op, resp.StatusCode, envelope.Error, raw, decodeErr)
	}
	if decodeErr != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, decodeErr, "decode "+op+" response")
	}
	if !envelope.Success {
		msg := strings.TrimSpace(envelope.Error)
		if msg == "" {
			msg = op + " was rejected"
		}
		return pkgerrors.New(pkgerrors.CodeValidation, msg).WithDetails(map[string]any{"operation": op, "status": resp.StatusCode})
	}

	if out == nil || len(envelope.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode "+op+" data")
	}
	return nil
}

func statusError(op string, status int, envelopeMsg string, raw []byte, decodeErr error) error {
	msg := strings.TrimSpace(envelopeMsg)
	if msg == "" && decodeErr != nil {
		msg = truncateRunes(strings.TrimSpace(string(raw)), rawErrorLimit)
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return pkgerrors.New(pkgerrors.CodeForStatus(status), msg).
		WithDetails(map[string]any{"operation": op, "status": status})
}

// truncateRunes cuts s to at most limit bytes without splitting a rune.
func truncateRunes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func (c *Client) buildURL(path string, query url.Values) string {
	full := fmt.Sprintf("%s/%s", c.baseURL, strings.TrimLeft(path, "/"))
	if len(query) > 0 {
		full += "?" + query.Encode()
	}
	return full
}
