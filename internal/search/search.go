package search

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	apiURL = "https://serpapi.com"
	engine = "google"
	// Results requested per query. Five is enough to find an exact
	// name match without burning quota.
	defaultNum = 5
)

// Client talks to the SerpAPI search endpoint.
type Client struct {
	token  string
	logger *zap.Logger

	HTTPClient *http.Client
	APIURL     string
	Engine     string
}

func New(logger *zap.Logger, token string) *Client {
	return &Client{
		token:  token,
		APIURL: apiURL,
		Engine: engine,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		logger: logger,
	}
}

// Search runs the query and returns the organic results. A response without
// organic results is treated as an empty list, not an error.
func (c *Client) Search(ctx context.Context, query string, num int) ([]*Result, error) {
	if num <= 0 {
		num = defaultNum
	}

	return c.search(ctx, query, num)
}
