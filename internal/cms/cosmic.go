package cms

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
)

const DefaultCosmicURL = "https://api.cosmicjs.com/v3"

// CosmicConfig configures a Cosmic bucket client.
type CosmicConfig struct {
	BaseURL    string
	BucketSlug string
	ReadKey    string
	WriteKey   string
	Timeout    time.Duration
}

// CosmicClient talks to the Cosmic REST API.
type CosmicClient struct {
	config CosmicConfig
	client *http.Client
}

type findResponse struct {
	Objects []Object `json:"objects"`
	Total   int      `json:"total"`
}

type insertResponse struct {
	Object Object `json:"object"`
}

func NewCosmicClient(cfg CosmicConfig) *CosmicClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultCosmicURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &CosmicClient{
		config: cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *CosmicClient) Find(ctx context.Context, q Query) ([]Object, error) {
	endpoint, err := c.findURL(q)
	if err != nil {
		return nil, &ProviderError{Op: "find", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &ProviderError{Op: "find", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	var data findResponse
	if err := c.do(req, "find", &data); err != nil {
		return nil, err
	}
	if len(data.Objects) == 0 {
		return nil, ErrNotFound
	}
	return data.Objects, nil
}

func (c *CosmicClient) FindOne(ctx context.Context, q Query) (*Object, error) {
	q.Limit = 1
	objects, err := c.Find(ctx, q)
	if err != nil {
		return nil, err
	}
	return &objects[0], nil
}

func (c *CosmicClient) InsertOne(ctx context.Context, obj NewObject) (*Object, error) {
	body, err := json.Marshal(obj)
	if err != nil {
		return nil, &ProviderError{Op: "insert", Err: err}
	}

	endpoint := fmt.Sprintf("%s/buckets/%s/objects", c.config.BaseURL, url.PathEscape(c.config.BucketSlug))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &ProviderError{Op: "insert", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.config.WriteKey)

	var data insertResponse
	if err := c.do(req, "insert", &data); err != nil {
		return nil, err
	}
	return &data.Object, nil
}

func (c *CosmicClient) findURL(q Query) (string, error) {
	filter := make(map[string]any, len(q.Filter)+1)
	for k, v := range q.Filter {
		filter[k] = v
	}
	filter["type"] = q.Type

	queryJSON, err := json.Marshal(filter)
	if err != nil {
		return "", fmt.Errorf("failed to encode query: %w", err)
	}

	params := url.Values{}
	params.Set("read_key", c.config.ReadKey)
	params.Set("query", string(queryJSON))
	props := q.Props
	if len(props) == 0 {
		props = DefaultProps
	}
	params.Set("props", strings.Join(props, ","))
	if q.Depth > 0 {
		params.Set("depth", strconv.Itoa(q.Depth))
	}
	if q.Limit > 0 {
		params.Set("limit", strconv.Itoa(q.Limit))
	}

	return fmt.Sprintf("%s/buckets/%s/objects?%s", c.config.BaseURL, url.PathEscape(c.config.BucketSlug), params.Encode()), nil
}

// do sends req and decodes a 2xx body into out. 404 becomes ErrNotFound.
func (c *CosmicClient) do(req *http.Request, op string, out any) error {
	resp, err := c.client.Do(req)
	if err != nil {
		return &ProviderError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		var detail error
		if len(bytes.TrimSpace(msg)) > 0 {
			detail = fmt.Errorf("%s", bytes.TrimSpace(msg))
		}
		return &ProviderError{Op: op, Status: resp.StatusCode, Err: detail}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ProviderError{Op: op, Status: resp.StatusCode, Err: fmt.Errorf("malformed response: %w", err)}
	}
	return nil
}
