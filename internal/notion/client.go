package notion

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	DefaultBaseURL    = "https://www.notion.so/api/v3"
	defaultQueryLimit = 10000
	maxQueryLimit     = 1 << 20
)

// Client talks to the workspace's private v3 JSON API using a session
// token (the token_v2 cookie of a logged-in browser).
type Client struct {
	http       *resty.Client
	queryLimit int
}

type Option func(*Client)

// WithBaseURL points the client at another API root (tests, proxies).
func WithBaseURL(u string) Option {
	return func(c *Client) { c.http.SetBaseURL(u) }
}

// WithRetry overrides the retry policy for transient failures.
func WithRetry(count int, wait time.Duration) Option {
	return func(c *Client) {
		c.http.SetRetryCount(count).SetRetryWaitTime(wait)
	}
}

// WithQueryLimit caps the number of rows a single collection query returns.
func WithQueryLimit(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.queryLimit = n
		}
	}
}

func NewClient(token string, opts ...Option) *Client {
	c := &Client{queryLimit: defaultQueryLimit}
	c.http = resty.New().
		SetBaseURL(DefaultBaseURL).
		SetCookie(&http.Cookie{Name: "token_v2", Value: token}).
		SetHeader("Content-Type", "application/json").
		SetTimeout(60 * time.Second).
		SetRetryCount(3).
		SetRetryWaitTime(2 * time.Second).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			if err != nil {
				return true
			}
			return r.StatusCode() == http.StatusTooManyRequests || r.StatusCode() >= 500
		})
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetBlock resolves a page URL or id to its block record.
func (c *Client) GetBlock(ctx context.Context, urlOrID string) (*Block, error) {
	id, err := ParseID(urlOrID)
	if err != nil {
		return nil, err
	}

	rm, err := c.syncRecords(ctx, pointer{Table: "block", ID: id})
	if err != nil {
		return nil, err
	}
	rec, ok := rm.Block[id]
	if !ok || rec.Value == nil {
		return nil, fmt.Errorf("block %s not found or not accessible", id)
	}

	var v blockValue
	if err := json.Unmarshal(rec.Value, &v); err != nil {
		return nil, fmt.Errorf("decoding block %s: %w", id, err)
	}

	b := &Block{
		ID:           id,
		Type:         v.Type,
		Role:         rec.Role,
		SpaceID:      v.SpaceID,
		CollectionID: v.CollectionID,
		ViewIDs:      v.ViewIDs,
	}
	if b.CollectionID == "" && v.Format.CollectionPointer.ID != "" {
		b.CollectionID = v.Format.CollectionPointer.ID
	}
	return b, nil
}

// GetRows loads every row of a collection-backed block, through its first view.
func (c *Client) GetRows(ctx context.Context, b *Block) ([]Row, error) {
	if !b.IsCollection() || b.CollectionID == "" {
		return nil, fmt.Errorf("block %s is not a collection", b.ID)
	}
	if len(b.ViewIDs) == 0 {
		return nil, fmt.Errorf("collection %s has no views", b.CollectionID)
	}

	rm, err := c.syncRecords(ctx, pointer{Table: "collection", ID: b.CollectionID})
	if err != nil {
		return nil, err
	}
	rec, ok := rm.Collection[b.CollectionID]
	if !ok || rec.Value == nil {
		return nil, fmt.Errorf("collection %s not found or not accessible", b.CollectionID)
	}
	var coll collectionValue
	if err := json.Unmarshal(rec.Value, &coll); err != nil {
		return nil, fmt.Errorf("decoding collection %s: %w", b.CollectionID, err)
	}
	schema := coll.properties()

	// The reducer query has no cursor: when the server reports more rows
	// than the limit, ask again with a larger one.
	var resp queryCollectionResponse
	for limit := c.queryLimit; ; limit *= 2 {
		if limit > maxQueryLimit {
			limit = maxQueryLimit
		}
		resp = queryCollectionResponse{}
		if err := c.post(ctx, "/queryCollection", newQuery(b, limit), &resp); err != nil {
			return nil, err
		}
		if !resp.Result.ReducerResults.CollectionGroupResults.HasMore {
			break
		}
		if limit >= maxQueryLimit {
			return nil, fmt.Errorf("collection %s has more than %d rows", b.CollectionID, maxQueryLimit)
		}
	}

	ids := resp.Result.ReducerResults.CollectionGroupResults.BlockIDs
	if len(ids) == 0 {
		ids = resp.Result.BlockIDs
	}

	rows := make([]Row, 0, len(ids))
	for _, id := range ids {
		rec, ok := resp.RecordMap.Block[id]
		if !ok || rec.Value == nil {
			continue
		}
		var v blockValue
		if err := json.Unmarshal(rec.Value, &v); err != nil {
			return nil, fmt.Errorf("decoding row %s: %w", id, err)
		}
		rows = append(rows, decodeRow(id, v, schema))
	}
	return rows, nil
}

func newQuery(b *Block, limit int) queryCollectionRequest {
	return queryCollectionRequest{
		Collection:     spacePointer{ID: b.CollectionID, SpaceID: b.SpaceID},
		CollectionView: spacePointer{ID: b.ViewIDs[0], SpaceID: b.SpaceID},
		Loader: queryLoader{
			Type: "reducer",
			Reducers: map[string]queryReducer{
				"collection_group_results": {Type: "results", Limit: limit},
			},
			SearchQuery:  "",
			UserTimeZone: "UTC",
		},
	}
}

// RemoveRow marks the row as no longer alive, which moves it to the trash.
func (c *Client) RemoveRow(ctx context.Context, row Row) error {
	req := transactionRequest{
		Operations: []operation{{
			ID:      row.ID,
			Table:   "block",
			Path:    []string{},
			Command: "update",
			Args:    map[string]any{"alive": false},
		}},
	}
	return c.post(ctx, "/submitTransaction", req, nil)
}

func (c *Client) syncRecords(ctx context.Context, ptrs ...pointer) (*recordMap, error) {
	req := syncRecordValuesRequest{}
	for _, p := range ptrs {
		req.Requests = append(req.Requests, syncRequest{Pointer: p, Version: -1})
	}
	var resp syncRecordValuesResponse
	if err := c.post(ctx, "/syncRecordValues", req, &resp); err != nil {
		return nil, err
	}
	return &resp.RecordMap, nil
}

func (c *Client) post(ctx context.Context, endpoint string, body, result any) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post(endpoint)
	if err != nil {
		return fmt.Errorf("POST %s: %w", endpoint, err)
	}
	if resp.IsError() {
		return fmt.Errorf("POST %s: HTTP %d: %s", endpoint, resp.StatusCode(), truncate(resp.String(), 200))
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), result); err != nil {
		return fmt.Errorf("parsing %s response: %w", endpoint, err)
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
