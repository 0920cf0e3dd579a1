package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const (
	defaultTimeout  = 10 * time.Second
	maxCatalogBytes = 8 << 20
	fetchKey        = "all"
)

var (
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	ErrCatalogBadStatus   = errors.New("catalog bad status")
	ErrCatalogMalformed   = errors.New("catalog malformed response")
)

// Source yields the full product list.
type Source interface {
	FetchAll(ctx context.Context) ([]Product, error)
}

// Client reads the remote catalog endpoint. Concurrent FetchAll calls share
// one in-flight request; nothing is cached between calls.
type Client struct {
	URL     string
	Client  *http.Client
	Log     *zap.Logger
	Metrics *Metrics

	group singleflight.Group
}

func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		URL:    strings.TrimRight(strings.TrimSpace(endpoint), "/"),
		Client: &http.Client{Timeout: timeout},
	}
}

func (c *Client) FetchAll(ctx context.Context) ([]Product, error) {
	ch := c.group.DoChan(fetchKey, func() (any, error) {
		// detached so one caller giving up does not fail the others
		return c.fetch(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return slices.Clone(res.Val.([]Product)), nil
	}
}

func (c *Client) fetch(ctx context.Context) ([]Product, error) {
	start := time.Now()
	products, err := c.do(ctx)
	c.Metrics.observe(err, time.Since(start))

	if err != nil && c.Log != nil {
		c.Log.Warn("catalog fetch failed", zap.String("url", c.URL), zap.Error(err))
	}
	return products, err
}

func (c *Client) do(ctx context.Context) ([]Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: status=%d", ErrCatalogBadStatus, resp.StatusCode)
	}

	var products []Product
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxCatalogBytes)).Decode(&products); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogMalformed, err)
	}
	if products == nil {
		products = []Product{}
	}
	return products, nil
}
