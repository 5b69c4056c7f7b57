// Package cosmic implements types.ContentStore over the Cosmic REST API
// (v3). Reads authenticate with the bucket read key as a query parameter;
// writes carry the write key as a bearer token. Non-2xx responses become
// *types.StoreError values classified by status.
package cosmic

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
	"time"

	"go.uber.org/zap"

	"github.com/mesh-intelligence/contentdesk/pkg/types"
)

// Default endpoints of the hosted service.
const (
	DefaultAPIURL   = "https://api.cosmicjs.com"
	DefaultWriteURL = "https://workers.cosmicjs.com"
	DefaultTimeout  = 30 * time.Second
)

// Operation names reported in StoreError.Op.
const (
	opFind      = "find"
	opFindOne   = "find_one"
	opInsertOne = "insert_one"
	opUpdateOne = "update_one"
	opDeleteOne = "delete_one"
)

// Config errors.
var (
	ErrBucketSlugEmpty = errors.New("cosmic bucket slug must not be empty")
	ErrReadKeyEmpty    = errors.New("cosmic read key must not be empty")
)

// Config holds the bucket credentials and endpoints.
type Config struct {
	BucketSlug string
	ReadKey    string
	WriteKey   string

	// APIURL and WriteURL override the hosted endpoints; tests point both
	// at an httptest server.
	APIURL   string
	WriteURL string
	Timeout  time.Duration
}

// Validate checks that the bucket can be read.
func (c Config) Validate() error {
	if c.BucketSlug == "" {
		return ErrBucketSlugEmpty
	}
	if c.ReadKey == "" {
		return ErrReadKeyEmpty
	}
	return nil
}

// Client is a ContentStore backed by one Cosmic bucket. It is safe for
// concurrent use.
type Client struct {
	cfg  Config
	http *http.Client
	log  *zap.Logger
}

var _ types.ContentStore = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithLogger sets the client's logger.
func WithLogger(log *zap.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New returns a client for the configured bucket.
func New(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.WriteURL == "" {
		cfg.WriteURL = DefaultWriteURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	c := &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With(zap.String("bucket", cfg.BucketSlug))
	return c, nil
}

type objectsResponse struct {
	Objects []types.Object `json:"objects"`
	Total   int            `json:"total"`
}

type objectResponse struct {
	Object types.Object `json:"object"`
}

type errorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Find lists every object of q.Type.
func (c *Client) Find(ctx context.Context, q types.FindQuery) ([]types.Object, error) {
	u := c.readURL("objects", map[string]any{"type": q.Type}, q.Props, q.Depth)
	var resp objectsResponse
	if err := c.do(ctx, opFind, http.MethodGet, u, nil, &resp); err != nil {
		return nil, err
	}
	for i := range resp.Objects {
		if resp.Objects[i].Type == "" {
			resp.Objects[i].Type = q.Type
		}
	}
	return resp.Objects, nil
}

// FindOne returns one object by id.
func (c *Client) FindOne(ctx context.Context, q types.FindOneQuery) (types.Object, error) {
	query := map[string]any{}
	if q.Type != "" {
		query["type"] = q.Type
	}
	u := c.readURL("objects/"+url.PathEscape(q.ID), query, q.Props, q.Depth)
	var resp objectResponse
	if err := c.do(ctx, opFindOne, http.MethodGet, u, nil, &resp); err != nil {
		return types.Object{}, err
	}
	if resp.Object.Type == "" {
		resp.Object.Type = q.Type
	}
	return resp.Object, nil
}

// InsertOne creates an object.
func (c *Client) InsertOne(ctx context.Context, in types.Insert) (types.Object, error) {
	var resp objectResponse
	if err := c.do(ctx, opInsertOne, http.MethodPost, c.writeURL("objects"), in, &resp); err != nil {
		return types.Object{}, err
	}
	return resp.Object, nil
}

// UpdateOne patches an object. Absent fields are omitted from the body.
func (c *Client) UpdateOne(ctx context.Context, id string, u types.Update) (types.Object, error) {
	var resp objectResponse
	if err := c.do(ctx, opUpdateOne, http.MethodPatch, c.writeURL("objects/"+url.PathEscape(id)), u, &resp); err != nil {
		return types.Object{}, err
	}
	return resp.Object, nil
}

// DeleteOne removes an object.
func (c *Client) DeleteOne(ctx context.Context, id string) error {
	return c.do(ctx, opDeleteOne, http.MethodDelete, c.writeURL("objects/"+url.PathEscape(id)), nil, nil)
}

func (c *Client) bucketPath(base, path string) string {
	return strings.TrimRight(base, "/") + "/v3/buckets/" + url.PathEscape(c.cfg.BucketSlug) + "/" + path
}

func (c *Client) readURL(path string, query map[string]any, props []string, depth int) string {
	v := url.Values{}
	v.Set("read_key", c.cfg.ReadKey)
	if len(query) > 0 {
		// A map of strings always marshals.
		q, _ := json.Marshal(query)
		v.Set("query", string(q))
	}
	if len(props) > 0 {
		v.Set("props", strings.Join(props, ","))
	}
	if depth > 0 {
		v.Set("depth", strconv.Itoa(depth))
	}
	return c.bucketPath(c.cfg.APIURL, path) + "?" + v.Encode()
}

func (c *Client) writeURL(path string) string {
	return c.bucketPath(c.cfg.WriteURL, path)
}

// do sends one request and decodes a 2xx body into out.
func (c *Client) do(ctx context.Context, op, method, u string, body, out any) error {
	write := method != http.MethodGet
	if write && c.cfg.WriteKey == "" {
		return &types.StoreError{Op: op, Kind: types.ErrorUnauthorized, Msg: "write key not configured"}
	}

	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &types.StoreError{Op: op, Kind: types.ErrorInvalid, Msg: "encoding request", Err: err}
		}
		rd = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return &types.StoreError{Op: op, Kind: types.ErrorUnknown, Msg: "building request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if write {
		req.Header.Set("Authorization", "Bearer "+c.cfg.WriteKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		c.log.Warn("cosmic request failed", zap.String("op", op), zap.Error(err))
		return &types.StoreError{Op: op, Kind: types.ErrorUnavailable, Msg: "request failed", Err: err}
	}
	defer resp.Body.Close()

	c.log.Debug("cosmic request",
		zap.String("op", op),
		zap.String("method", method),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)))

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &types.StoreError{Op: op, Kind: types.ErrorUnavailable, Status: resp.StatusCode, Msg: "reading response", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(op, resp.StatusCode, data)
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &types.StoreError{Op: op, Kind: types.ErrorUnknown, Status: resp.StatusCode, Msg: "decoding response", Err: err}
	}
	return nil
}

func statusError(op string, status int, body []byte) error {
	var er errorResponse
	msg := ""
	if json.Unmarshal(body, &er) == nil {
		msg = er.Message
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	return &types.StoreError{Op: op, Kind: types.KindFromStatus(status), Status: status, Msg: msg}
}

// String identifies the client in logs without leaking keys.
func (c *Client) String() string {
	return fmt.Sprintf("cosmic(%s)", c.cfg.BucketSlug)
}
