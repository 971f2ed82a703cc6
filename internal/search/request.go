package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

const searchPath = "/search.json"

// Result is one organic search result record. RichSnippet carries the short
// descriptor strings ("extensions") attached to some results.
type Result struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Snippet     string `json:"snippet"`
	RichSnippet struct {
		Top struct {
			Extensions []string `json:"extensions"`
		} `json:"top"`
	} `json:"rich_snippet"`
}

// Extensions returns the rich snippet descriptor strings, if any.
func (r *Result) Extensions() []string {
	return r.RichSnippet.Top.Extensions
}

type searchResponse struct {
	OrganicResults []map[string]any `json:"organic_results"`
}

func (c *Client) search(ctx context.Context, query string, num int) ([]*Result, error) {
	q := url.Values{}
	q.Set("engine", c.Engine)
	q.Set("q", query)
	q.Set("num", strconv.Itoa(num))
	q.Set("api_key", c.token)

	endpoint := fmt.Sprintf("%s%s", c.APIURL, searchPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.URL.RawQuery = q.Encode()

	c.logger.Debug("make search request",
		zap.String("query", query),
		zap.Int("num", num),
	)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("bad status: %s", resp.Status)
	}

	var response searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, err
	}

	if len(response.OrganicResults) == 0 {
		c.logger.Debug("no organic results in response", zap.String("query", query))
		return nil, nil
	}

	var results []*Result
	cfg := &mapstructure.DecoderConfig{
		Metadata: nil,
		Result:   &results,
		TagName:  "json",
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(response.OrganicResults); err != nil {
		return nil, err
	}

	c.logger.Debug("got search results", zap.Int("count", len(results)))

	return results, nil
}
