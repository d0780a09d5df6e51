// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package youtube

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tubefleet/tubefleet/internal/config"
	"github.com/tubefleet/tubefleet/internal/metrics"
)

// maxErrorBodySize limits how much of an error response body is read back
// for diagnostics.
const maxErrorBodySize = 64 * 1024

// Estimated quota unit costs per Data API operation. List calls cost 1 unit,
// write calls 50. Tracked against the daily project quota for usage warnings.
const (
	quotaCostList  = 1
	quotaCostWrite = 50
)

// ClientInterface defines the Data API operations the platform drives.
//
// Implemented by Client for production use and by BreakerClient, which adds
// circuit breaker protection. Every call takes the per-channel OAuth access
// token resolved by the channels service; the wrapper itself holds no
// credentials.
//
// Thread Safety: all methods are safe for concurrent use.
type ClientInterface interface {
	InsertBroadcast(ctx context.Context, token string, b *Broadcast) (*Broadcast, error)
	UpdateBroadcast(ctx context.Context, token string, b *Broadcast) (*Broadcast, error)
	DeleteBroadcast(ctx context.Context, token, broadcastID string) error
	TransitionBroadcast(ctx context.Context, token, broadcastID, lifeCycleStatus string) (*Broadcast, error)
	InsertStream(ctx context.Context, token, title string) (*Stream, error)
	BindBroadcast(ctx context.Context, token, broadcastID, streamID string) (*Broadcast, error)
	ListCommentThreads(ctx context.Context, token string, opts *CommentThreadListOptions) (*CommentThreadList, error)
	InsertComment(ctx context.Context, token, parentID, text string) (*CommentResource, error)
	SetCommentModerationStatus(ctx context.Context, token, commentID, status string) error
	GetMyChannel(ctx context.Context, token string) (*ChannelResource, error)
}

// Ensure Client implements ClientInterface
var _ ClientInterface = (*Client)(nil)

// Client is a thin wrapper over the YouTube Data API v3.
//
// Resilience:
//   - Retryable statuses (429, 5xx) retry with exponential backoff,
//     honoring Retry-After
//   - Non-2xx responses become APIError values that map onto the package
//     sentinels (ErrQuotaExceeded, ErrAuthRevoked, ErrNotFound)
//   - Every call records its duration and estimated quota cost
//
// Thread Safety: safe for concurrent use; each request builds its own
// http.Request.
type Client struct {
	baseURL        string
	client         *http.Client
	maxRetries     int
	retryBaseDelay time.Duration
}

// NewClient creates a Data API client from configuration.
func NewClient(cfg *config.YouTubeConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}

	return &Client{
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		client: &http.Client{
			Timeout: timeout,
		},
		maxRetries:     maxRetries,
		retryBaseDelay: time.Second,
	}
}

// InsertBroadcast creates a live broadcast. The returned resource carries
// YouTube's broadcast id and lifecycle status.
func (c *Client) InsertBroadcast(ctx context.Context, token string, b *Broadcast) (*Broadcast, error) {
	query := url.Values{}
	query.Set("part", "snippet,contentDetails,status")

	var created Broadcast
	err := c.call(ctx, "broadcast_insert", http.MethodPost, token, "/liveBroadcasts", query, b, &created, quotaCostWrite)
	if err != nil {
		return nil, fmt.Errorf("insert broadcast: %w", err)
	}
	return &created, nil
}

// UpdateBroadcast updates a broadcast's snippet and status. The resource
// must carry the broadcast id.
func (c *Client) UpdateBroadcast(ctx context.Context, token string, b *Broadcast) (*Broadcast, error) {
	query := url.Values{}
	query.Set("part", "snippet,status")

	var updated Broadcast
	err := c.call(ctx, "broadcast_update", http.MethodPut, token, "/liveBroadcasts", query, b, &updated, quotaCostWrite)
	if err != nil {
		return nil, fmt.Errorf("update broadcast %s: %w", b.ID, err)
	}
	return &updated, nil
}

// DeleteBroadcast removes a broadcast.
func (c *Client) DeleteBroadcast(ctx context.Context, token, broadcastID string) error {
	query := url.Values{}
	query.Set("id", broadcastID)

	err := c.call(ctx, "broadcast_delete", http.MethodDelete, token, "/liveBroadcasts", query, nil, nil, quotaCostWrite)
	if err != nil {
		return fmt.Errorf("delete broadcast %s: %w", broadcastID, err)
	}
	return nil
}

// TransitionBroadcast moves a broadcast to the given lifecycle status
// (testing, live, or complete).
func (c *Client) TransitionBroadcast(ctx context.Context, token, broadcastID, lifeCycleStatus string) (*Broadcast, error) {
	query := url.Values{}
	query.Set("id", broadcastID)
	query.Set("broadcastStatus", lifeCycleStatus)
	query.Set("part", "status")

	var transitioned Broadcast
	err := c.call(ctx, "broadcast_transition", http.MethodPost, token, "/liveBroadcasts/transition", query, nil, &transitioned, quotaCostWrite)
	if err != nil {
		return nil, fmt.Errorf("transition broadcast %s to %s: %w", broadcastID, lifeCycleStatus, err)
	}
	return &transitioned, nil
}

// InsertStream creates a reusable RTMP live stream. The returned resource
// carries the ingestion address and stream key.
func (c *Client) InsertStream(ctx context.Context, token, title string) (*Stream, error) {
	query := url.Values{}
	query.Set("part", "snippet,cdn,status")

	stream := &Stream{
		Snippet: StreamSnippet{Title: title},
		CDN: StreamCDN{
			IngestionType: "rtmp",
			Resolution:    "variable",
			FrameRate:     "variable",
		},
	}

	var created Stream
	err := c.call(ctx, "stream_insert", http.MethodPost, token, "/liveStreams", query, stream, &created, quotaCostWrite)
	if err != nil {
		return nil, fmt.Errorf("insert stream: %w", err)
	}
	return &created, nil
}

// BindBroadcast binds a live stream to a broadcast.
func (c *Client) BindBroadcast(ctx context.Context, token, broadcastID, streamID string) (*Broadcast, error) {
	query := url.Values{}
	query.Set("id", broadcastID)
	query.Set("streamId", streamID)
	query.Set("part", "id,contentDetails")

	var bound Broadcast
	err := c.call(ctx, "broadcast_bind", http.MethodPost, token, "/liveBroadcasts/bind", query, nil, &bound, quotaCostWrite)
	if err != nil {
		return nil, fmt.Errorf("bind broadcast %s to stream %s: %w", broadcastID, streamID, err)
	}
	return &bound, nil
}

// ListCommentThreads lists comment threads for a channel or video, newest
// first, with plain text bodies.
func (c *Client) ListCommentThreads(ctx context.Context, token string, opts *CommentThreadListOptions) (*CommentThreadList, error) {
	if opts == nil || (opts.ChannelID == "" && opts.VideoID == "") {
		return nil, errors.New("list comment threads: channel id or video id required")
	}

	query := url.Values{}
	query.Set("part", "snippet,replies")
	query.Set("order", "time")
	query.Set("textFormat", "plainText")
	if opts.ChannelID != "" {
		query.Set("allThreadsRelatedToChannelId", opts.ChannelID)
	}
	if opts.VideoID != "" {
		query.Set("videoId", opts.VideoID)
	}
	if opts.PageToken != "" {
		query.Set("pageToken", opts.PageToken)
	}
	if opts.MaxResults > 0 {
		query.Set("maxResults", strconv.Itoa(opts.MaxResults))
	}

	var list CommentThreadList
	err := c.call(ctx, "comment_threads_list", http.MethodGet, token, "/commentThreads", query, nil, &list, quotaCostList)
	if err != nil {
		return nil, fmt.Errorf("list comment threads: %w", err)
	}
	return &list, nil
}

// InsertComment posts a reply to an existing comment.
func (c *Client) InsertComment(ctx context.Context, token, parentID, text string) (*CommentResource, error) {
	query := url.Values{}
	query.Set("part", "snippet")

	body := struct {
		Snippet struct {
			ParentID     string `json:"parentId"`
			TextOriginal string `json:"textOriginal"`
		} `json:"snippet"`
	}{}
	body.Snippet.ParentID = parentID
	body.Snippet.TextOriginal = text

	var posted CommentResource
	err := c.call(ctx, "comment_insert", http.MethodPost, token, "/comments", query, body, &posted, quotaCostWrite)
	if err != nil {
		return nil, fmt.Errorf("insert comment reply to %s: %w", parentID, err)
	}
	return &posted, nil
}

// SetCommentModerationStatus sets a comment's moderation status
// (published, heldForReview, or rejected).
func (c *Client) SetCommentModerationStatus(ctx context.Context, token, commentID, status string) error {
	query := url.Values{}
	query.Set("id", commentID)
	query.Set("moderationStatus", status)

	err := c.call(ctx, "comment_set_moderation", http.MethodPost, token, "/comments/setModerationStatus", query, nil, nil, quotaCostWrite)
	if err != nil {
		return fmt.Errorf("set moderation status of %s to %s: %w", commentID, status, err)
	}
	return nil
}

// GetMyChannel fetches the channel owned by the token's Google account,
// including statistics. Used during linking and metadata sync.
func (c *Client) GetMyChannel(ctx context.Context, token string) (*ChannelResource, error) {
	query := url.Values{}
	query.Set("part", "snippet,statistics")
	query.Set("mine", "true")

	var list ChannelList
	err := c.call(ctx, "channel_get", http.MethodGet, token, "/channels", query, nil, &list, quotaCostList)
	if err != nil {
		return nil, fmt.Errorf("get channel: %w", err)
	}
	if len(list.Items) == 0 {
		return nil, fmt.Errorf("get channel: %w: account has no channel", ErrNotFound)
	}
	return &list.Items[0], nil
}

// call performs one API operation and records its metrics.
func (c *Client) call(ctx context.Context, op, method, token, path string, query url.Values, body, out interface{}, quotaUnits int) error {
	start := time.Now()
	err := c.doJSON(ctx, method, token, path, query, body, out)

	status := "success"
	if err != nil {
		status = "error"
		if errors.Is(err, ErrQuotaExceeded) {
			status = "quota"
		}
	}
	metrics.RecordYouTubeCall(op, status, time.Since(start), quotaUnits)

	return err
}

// doJSON encodes the request body, performs the request with retries, and
// decodes the response into out (skipped when out is nil or the response
// has no content).
func (c *Client) doJSON(ctx context.Context, method, token, path string, query url.Values, body, out interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	resp, err := c.doWithRetry(ctx, method, token, reqURL, payload)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classifyResponse(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// doWithRetry performs the request, retrying retryable statuses (429, 5xx)
// with exponential backoff. A Retry-After header overrides the computed
// delay. The context cancels backoff waits.
func (c *Client) doWithRetry(ctx context.Context, method, token, reqURL string, payload []byte) (*http.Response, error) {
	var lastStatus int

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		var body io.Reader = http.NoBody
		if payload != nil {
			body = bytes.NewReader(payload)
		}

		req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("http request: %w", err)
		}

		if !retryableStatus(resp.StatusCode) {
			return resp, nil
		}

		lastStatus = resp.StatusCode
		delay := c.retryBaseDelay * time.Duration(1<<uint(attempt))
		if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
			if seconds, err := time.ParseDuration(retryAfter + "s"); err == nil {
				delay = seconds
			}
		}
		_ = resp.Body.Close()

		if attempt == c.maxRetries {
			break
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if lastStatus == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: rate limited after %d attempts", ErrQuotaExceeded, c.maxRetries+1)
	}
	return nil, fmt.Errorf("%w: status %d after %d attempts", ErrUnavailable, lastStatus, c.maxRetries+1)
}

// retryableStatus reports whether the request should be retried.
func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// classifyResponse turns a non-2xx response into an APIError, parsing
// Google's error envelope for the reason code when present.
func classifyResponse(resp *http.Response) error {
	body := readBodyForError(resp.Body)

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    strings.TrimSpace(string(body)),
	}

	var envelope struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Errors  []struct {
				Reason string `json:"reason"`
			} `json:"errors"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		apiErr.Message = envelope.Error.Message
		if len(envelope.Error.Errors) > 0 {
			apiErr.Reason = envelope.Error.Errors[0].Reason
		}
	}

	return apiErr
}

// readBodyForError reads the response body for error reporting (max 64KB).
// Uses io.LimitReader to prevent unbounded allocation on large error pages.
func readBodyForError(r io.Reader) []byte {
	limitedReader := io.LimitReader(r, maxErrorBodySize)
	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return []byte("(failed to read response body)")
	}
	if len(body) == maxErrorBodySize {
		return append(body, []byte("... (truncated)")...)
	}
	return body
}
