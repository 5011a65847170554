// Package client talks to the menu API and keeps a local copy of the menu
// trees in sync with it.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"menu-app/models"
	"menu-app/types"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	DefaultAttempts = 3
	DefaultBackoff  = time.Second
	DefaultTimeout  = 10 * time.Second
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Code    string
	Message string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// Temporary reports whether retrying the request may succeed.
func (e *APIError) Temporary() bool {
	return e.Status >= fiber.StatusInternalServerError
}

// IsNotFound reports whether err is a 404 answer.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == fiber.StatusNotFound
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

type Client struct {
	baseURL  string
	timeout  time.Duration
	attempts int
	backoff  time.Duration
	log      logrus.FieldLogger
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithRetry sets how many times a request is sent and the base delay. The
// n-th retry waits n times the base delay.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.attempts = attempts
		}
		c.backoff = backoff
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) { c.log = log }
}

// New returns a client for the API rooted at baseURL, e.g.
// "http://localhost:9000/api/v1".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		timeout:  DefaultTimeout,
		attempts: DefaultAttempts,
		backoff:  DefaultBackoff,
		log:      logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do sends the request, retrying transport failures and 5xx answers, and
// decodes the data field of a successful answer into out.
func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		status, raw, err := c.send(method, c.baseURL+path, body)
		if err == nil {
			if status < fiber.StatusBadRequest {
				return decodeData(raw, out)
			}
			apiErr := decodeError(status, raw)
			if !apiErr.Temporary() {
				return apiErr
			}
			err = apiErr
		}
		lastErr = err
		if attempt == c.attempts {
			break
		}

		delay := c.backoff * time.Duration(attempt)
		c.log.WithError(err).WithFields(logrus.Fields{
			"method":  method,
			"path":    path,
			"attempt": attempt,
			"delay":   delay.String(),
		}).Warn("menu api request failed, retrying")

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return errors.Wrapf(lastErr, "%s %s failed after %d attempts", method, path, c.attempts)
}

func (c *Client) send(method, url string, body interface{}) (int, []byte, error) {
	a := fiber.AcquireAgent()
	req := a.Request()
	req.Header.SetMethod(method)
	req.SetRequestURI(url)
	req.Header.Set(fiber.HeaderAccept, fiber.MIMEApplicationJSON)
	if body != nil {
		a.JSON(body)
	}
	a.Timeout(c.timeout)

	if err := a.Parse(); err != nil {
		fiber.ReleaseAgent(a)
		return 0, nil, errors.Wrap(err, "prepare request")
	}
	// Bytes releases the agent.
	status, raw, errs := a.Bytes()
	if len(errs) > 0 {
		return 0, nil, errs[0]
	}
	return status, raw, nil
}

func decodeData(raw []byte, out interface{}) error {
	if out == nil || len(raw) == 0 {
		return nil
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return errors.Wrap(err, "decode response")
	}
	if len(env.Data) == 0 {
		return nil
	}
	return errors.Wrap(json.Unmarshal(env.Data, out), "decode response data")
}

func decodeError(status int, raw []byte) *APIError {
	apiErr := &APIError{Status: status}
	var env envelope
	if err := json.Unmarshal(raw, &env); err == nil && (env.Error != "" || env.Message != "") {
		apiErr.Code = env.Error
		apiErr.Message = env.Message
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(string(raw))
	if apiErr.Message == "" {
		apiErr.Message = fiber.NewError(status).Message
	}
	return apiErr
}

type CreateMenuItemRequest struct {
	Title       string             `json:"title"`
	Description string             `json:"description,omitempty"`
	URL         string             `json:"url,omitempty"`
	Icon        string             `json:"icon,omitempty"`
	ParentID    *types.SnowflakeID `json:"parentId,omitempty"`
	MenuID      types.SnowflakeID  `json:"menuId"`
}

type UpdateMenuRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// UpdateMenuItemRequest only sends the fields that are set. ParentID with Set
// and not Valid moves the item to the top level.
type UpdateMenuItemRequest struct {
	Title       *string
	Description *string
	URL         *string
	Icon        *string
	Order       *int
	IsActive    *bool
	ParentID    types.NullableID
}

func (r UpdateMenuItemRequest) MarshalJSON() ([]byte, error) {
	body := map[string]interface{}{}
	if r.Title != nil {
		body["title"] = *r.Title
	}
	if r.Description != nil {
		body["description"] = *r.Description
	}
	if r.URL != nil {
		body["url"] = *r.URL
	}
	if r.Icon != nil {
		body["icon"] = *r.Icon
	}
	if r.Order != nil {
		body["order"] = *r.Order
	}
	if r.IsActive != nil {
		body["isActive"] = *r.IsActive
	}
	if r.ParentID.Set {
		body["parentId"] = r.ParentID
	}
	return json.Marshal(body)
}

func (c *Client) Health(ctx context.Context) (map[string]string, error) {
	var out map[string]string
	err := c.do(ctx, fiber.MethodGet, "/health", nil, &out)
	return out, err
}

func (c *Client) ListMenus(ctx context.Context) ([]models.Menu, error) {
	var out []models.Menu
	err := c.do(ctx, fiber.MethodGet, "/menus", nil, &out)
	return out, err
}

func (c *Client) GetMenu(ctx context.Context, id types.SnowflakeID) (*models.Menu, error) {
	var out models.Menu
	if err := c.do(ctx, fiber.MethodGet, "/menus/"+id.String(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetMenuHierarchy fetches the menu with its tree cut at depth levels; zero
// means the full tree.
func (c *Client) GetMenuHierarchy(ctx context.Context, id types.SnowflakeID, depth int) (*models.Menu, error) {
	path := "/menus/" + id.String() + "/hierarchy"
	if depth > 0 {
		path += "?depth=" + strconv.Itoa(depth)
	}
	var out models.Menu
	if err := c.do(ctx, fiber.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateMenu(ctx context.Context, name, description string) (*models.Menu, error) {
	var out models.Menu
	body := map[string]string{"name": name, "description": description}
	if err := c.do(ctx, fiber.MethodPost, "/menus", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateMenu(ctx context.Context, id types.SnowflakeID, req UpdateMenuRequest) (*models.Menu, error) {
	var out models.Menu
	if err := c.do(ctx, fiber.MethodPatch, "/menus/"+id.String(), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteMenu(ctx context.Context, id types.SnowflakeID) error {
	return c.do(ctx, fiber.MethodDelete, "/menus/"+id.String(), nil, nil)
}

func (c *Client) ListMenuItems(ctx context.Context, menuID *types.SnowflakeID) ([]models.MenuItem, error) {
	path := "/menu-items"
	if menuID != nil {
		path += "?menuId=" + menuID.String()
	}
	var out []models.MenuItem
	err := c.do(ctx, fiber.MethodGet, path, nil, &out)
	return out, err
}

func (c *Client) GetMenuItemHierarchy(ctx context.Context, menuID types.SnowflakeID) ([]models.MenuItem, error) {
	var out []models.MenuItem
	err := c.do(ctx, fiber.MethodGet, "/menu-items/hierarchy/"+menuID.String(), nil, &out)
	return out, err
}

func (c *Client) GetMenuItem(ctx context.Context, id types.SnowflakeID) (*models.MenuItem, error) {
	var out models.MenuItem
	if err := c.do(ctx, fiber.MethodGet, "/menu-items/"+id.String(), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateMenuItem(ctx context.Context, req CreateMenuItemRequest) (*models.MenuItem, error) {
	var out models.MenuItem
	if err := c.do(ctx, fiber.MethodPost, "/menu-items", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateMenuItem(ctx context.Context, id types.SnowflakeID, req UpdateMenuItemRequest) (*models.MenuItem, error) {
	var out models.MenuItem
	if err := c.do(ctx, fiber.MethodPatch, "/menu-items/"+id.String(), req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteMenuItem(ctx context.Context, id types.SnowflakeID) error {
	return c.do(ctx, fiber.MethodDelete, "/menu-items/"+id.String(), nil, nil)
}

func (c *Client) ReorderMenuItems(ctx context.Context, menuID types.SnowflakeID, itemIDs []types.SnowflakeID) ([]models.MenuItem, error) {
	var out []models.MenuItem
	body := map[string][]types.SnowflakeID{"itemIds": itemIDs}
	err := c.do(ctx, fiber.MethodPatch, "/menu-items/reorder/"+menuID.String(), body, &out)
	return out, err
}
