package frappe

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/bestydev/woolworths-catalog-scraper/internal/config"
	"github.com/bestydev/woolworths-catalog-scraper/internal/models"
)

// Action says which write an upsert resolved to. ActionCreateFailed is the
// swallowed-create outcome: the document was not written, but per the
// reconciliation policy that is not an error for the caller.
type Action string

const (
	ActionCreated      Action = "created"
	ActionUpdated      Action = "updated"
	ActionCreateFailed Action = "create_failed"
)

// Client talks to a Frappe resource endpoint using token authentication.
type Client struct {
	baseURL   string
	apiKey    string
	apiSecret string
	http      *http.Client
	logger    *slog.Logger
}

func NewClient(cfg config.FrappeConfig) *Client {
	return &Client{
		baseURL:   strings.TrimRight(cfg.URL, "/"),
		apiKey:    cfg.APIKey,
		apiSecret: cfg.APISecret,
		http:      &http.Client{Timeout: cfg.Timeout},
		logger:    slog.Default().With("component", "frappe"),
	}
}

// Upsert checks whether the product document exists and then updates or
// creates it. A failed update is an error for the caller to count; a failed
// create is logged and otherwise ignored.
func (c *Client) Upsert(ctx context.Context, p *models.Product) (Action, error) {
	record := NewRecord(p)

	exists, err := c.exists(ctx, p.ID)
	if err != nil {
		return "", err
	}

	if exists {
		if err := c.update(ctx, p.ID, record); err != nil {
			return "", err
		}
		c.logger.Info("product updated", "productId", p.ID)
		return ActionUpdated, nil
	}

	if err := c.create(ctx, record); err != nil {
		c.logger.Error("failed to create product", "error", err, "productId", p.ID)
		return ActionCreateFailed, nil
	}

	c.logger.Info("product created", "productId", p.ID)
	return ActionCreated, nil
}

// exists treats any response other than 200 as absence. A 404 is the normal
// not-found answer; any other status is logged and also treated as absent.
func (c *Client) exists(ctx context.Context, productID string) (bool, error) {
	req, err := c.newRequest(ctx, http.MethodGet, c.documentURL(productID), nil)
	if err != nil {
		return false, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("existence check failed for %s: %w", productID, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	switch resp.StatusCode {
	case http.StatusOK:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		c.logger.Error("unexpected status on existence check",
			"status", resp.StatusCode, "productId", productID)
		return false, nil
	}
}

func (c *Client) update(ctx context.Context, productID string, record Record) error {
	return c.send(ctx, http.MethodPut, c.documentURL(productID), record)
}

func (c *Client) create(ctx context.Context, record Record) error {
	return c.send(ctx, http.MethodPost, c.baseURL, record)
}

func (c *Client) send(ctx context.Context, method, endpoint string, record Record) error {
	body, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	req, err := c.newRequest(ctx, method, endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s returned %d: %s", method, endpoint, resp.StatusCode, string(detail))
	}
	io.Copy(io.Discard, resp.Body)

	return nil
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Authorization", "token "+c.apiKey+":"+c.apiSecret)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return req, nil
}

func (c *Client) documentURL(productID string) string {
	return c.baseURL + "/" + url.PathEscape(productID)
}
