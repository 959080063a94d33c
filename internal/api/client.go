package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aure/amberctl/internal/models"
)

const (
	DefaultBaseURL = "https://api.amber.com.au/v1"
	DefaultTimeout = 30 * time.Second
)

// Client talks to the Amber REST API. It is configured once and then only
// read, so one value can serve every query of a run.
type Client struct {
	authToken  string
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a client for baseURL. An empty baseURL falls back to
// DefaultBaseURL and a non-positive timeout to DefaultTimeout.
func NewClient(baseURL, authToken string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		authToken: authToken,
		baseURL:   strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

type record interface {
	RequiredFields() []string
}

// nestedRecord is implemented by records with required keys inside an
// object field, or inside every element of an array-of-objects field.
type nestedRecord interface {
	NestedFields() map[string][]string
}

func (c *Client) getSites(ctx context.Context, url string) ([]models.SiteDetails, error) {
	return getRecords[models.SiteDetails](ctx, c, url)
}

func (c *Client) getPrices(ctx context.Context, url string) ([]models.PriceInterval, error) {
	return getRecords[models.PriceInterval](ctx, c, url)
}

func (c *Client) getUsage(ctx context.Context, url string) ([]models.UsageRecord, error) {
	return getRecords[models.UsageRecord](ctx, c, url)
}

func (c *Client) getRenewables(ctx context.Context, url string) ([]models.RenewablesRecord, error) {
	return getRecords[models.RenewablesRecord](ctx, c, url)
}

func getRecords[T record](ctx context.Context, c *Client, url string) ([]T, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	records, err := decodeRecords[T](body)
	if err != nil {
		return nil, &DecodeError{URL: url, Err: err}
	}
	return records, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.authToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{URL: url, Err: fmt.Errorf("reading body: %w", err)}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(body),
		}
	}
	return body, nil
}

// decodeRecords decodes a JSON array of T. Keys the upstream adds are
// ignored, but a required key that is missing or null fails the decode.
func decodeRecords[T record](body []byte) ([]T, error) {
	var raw []map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, fmt.Errorf("expected a JSON array, got null")
	}

	var zero T
	required := zero.RequiredFields()
	var nested map[string][]string
	if n, ok := any(zero).(nestedRecord); ok {
		nested = n.NestedFields()
	}
	for i, obj := range raw {
		if err := checkRequired(obj, required); err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		for key, keys := range nested {
			if err := checkNested(obj[key], keys); err != nil {
				return nil, fmt.Errorf("element %d: %s: %w", i, key, err)
			}
		}
	}

	records := make([]T, 0, len(raw))
	if err := json.Unmarshal(body, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func isNull(v json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(v), []byte("null"))
}

func checkRequired(obj map[string]json.RawMessage, keys []string) error {
	for _, key := range keys {
		v, ok := obj[key]
		if !ok || isNull(v) {
			return fmt.Errorf("missing required field %q", key)
		}
	}
	return nil
}

// checkNested applies keys to v when it is an object, or to every element
// when it is an array of objects.
func checkNested(v json.RawMessage, keys []string) error {
	trimmed := bytes.TrimSpace(v)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var elems []map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &elems); err != nil {
			return err
		}
		for i, elem := range elems {
			if elem == nil {
				return fmt.Errorf("element %d is null", i)
			}
			if err := checkRequired(elem, keys); err != nil {
				return fmt.Errorf("element %d: %w", i, err)
			}
		}
		return nil
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return err
	}
	return checkRequired(obj, keys)
}
