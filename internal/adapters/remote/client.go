// Package remote sends finalized records to the append store over HTTP.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/okian/roster/internal/domain/model"
	"github.com/okian/roster/internal/domain/types"
)

const (
	defaultTimeout = 10 * time.Second
	maxBodyBytes   = 1 << 20
)

// Client posts records to one append endpoint.
type Client struct {
	url        string
	httpClient *http.Client
	userAgent  string
}

// New returns a client for the append endpoint at url.
func New(url string, opts ...Option) *Client {
	c := &Client{
		url:        url,
		httpClient: &http.Client{Timeout: defaultTimeout},
		userAgent:  "roster-client",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// URL returns the endpoint the client posts to.
func (c *Client) URL() string { return c.url }

// Append posts rec and returns the store's structured result whatever the
// HTTP status. Network failures wrap ErrTransport; a body that is not an
// AppendResult wraps ErrDecode.
func (c *Client) Append(ctx context.Context, rec model.Record) (types.AppendResult, error) {
	body, err := json.Marshal(types.SubmissionFromRecord(rec))
	if err != nil {
		return types.AppendResult{}, fmt.Errorf("encode submission: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return types.AppendResult{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return types.AppendResult{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return types.AppendResult{}, fmt.Errorf("%w: read body: %w", ErrTransport, err)
	}

	var result types.AppendResult
	if err := json.Unmarshal(data, &result); err != nil {
		return types.AppendResult{}, fmt.Errorf("%w: status %d: %w", ErrDecode, resp.StatusCode, err)
	}
	if !result.Success && result.Code == "" {
		result.Code = codeForStatus(resp.StatusCode)
	}
	return result, nil
}

// codeForStatus fills in a result code for stores that do not send one.
func codeForStatus(status int) string {
	switch {
	case status == http.StatusConflict:
		return types.CodeDuplicate
	case status >= 400 && status < 500:
		return types.CodeBadRequest
	default:
		return types.CodeInternal
	}
}

// RowsPath is where the store serves its rows.
const RowsPath = "/submissions"

// Rows reads the store's sheet. The append URL may be the store root or
// its RowsPath; rows are always read from RowsPath.
func (c *Client) Rows(ctx context.Context) (types.RowsResponse, error) {
	endpoint, err := rowsURL(c.url)
	if err != nil {
		return types.RowsResponse{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return types.RowsResponse{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return types.RowsResponse{}, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return types.RowsResponse{}, fmt.Errorf("%w: status %d", ErrUnexpectedStatus, resp.StatusCode)
	}

	var rows types.RowsResponse
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return types.RowsResponse{}, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	return rows, nil
}

func rowsURL(appendURL string) (string, error) {
	u, err := url.Parse(appendURL)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", appendURL, err)
	}
	p := strings.TrimRight(u.Path, "/")
	if !strings.HasSuffix(p, RowsPath) {
		p += RowsPath
	}
	u.Path = p
	u.RawPath = ""
	return u.String(), nil
}
