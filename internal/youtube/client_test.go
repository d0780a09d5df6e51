// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package youtube

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/tubefleet/tubefleet/internal/config"
)

func testConfig(baseURL string) *config.YouTubeConfig {
	return &config.YouTubeConfig{
		Enabled:    true,
		BaseURL:    baseURL,
		Timeout:    5 * time.Second,
		MaxRetries: 2,
	}
}

func newTestClient(baseURL string) *Client {
	c := NewClient(testConfig(baseURL))
	c.retryBaseDelay = time.Millisecond
	return c
}

func TestNewClient(t *testing.T) {
	c := NewClient(&config.YouTubeConfig{
		BaseURL:    "https://www.googleapis.com/youtube/v3/",
		Timeout:    10 * time.Second,
		MaxRetries: 2,
	})

	if c.baseURL != "https://www.googleapis.com/youtube/v3" {
		t.Errorf("baseURL = %q, want trailing slash trimmed", c.baseURL)
	}
	if c.maxRetries != 2 {
		t.Errorf("maxRetries = %d, want 2", c.maxRetries)
	}
	if c.client.Timeout != 10*time.Second {
		t.Errorf("timeout = %v, want 10s", c.client.Timeout)
	}
}

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient(&config.YouTubeConfig{BaseURL: "https://example.com", MaxRetries: -1})

	if c.client.Timeout != 30*time.Second {
		t.Errorf("timeout = %v, want 30s default", c.client.Timeout)
	}
	if c.maxRetries != 0 {
		t.Errorf("maxRetries = %d, want 0 for negative config", c.maxRetries)
	}
}

func TestInsertBroadcast(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if r.URL.Path != "/liveBroadcasts" {
			t.Errorf("path = %s, want /liveBroadcasts", r.URL.Path)
		}
		if got := r.URL.Query().Get("part"); got != "snippet,contentDetails,status" {
			t.Errorf("part = %q", got)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("Authorization = %q", got)
		}
		if got := r.Header.Get("Content-Type"); got != "application/json" {
			t.Errorf("Content-Type = %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "bcast-1",
			"snippet": {"title": "Morning Show", "scheduledStartTime": "2026-09-01T09:00:00Z"},
			"status": {"lifeCycleStatus": "created", "privacyStatus": "private"}
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	start := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)
	created, err := client.InsertBroadcast(context.Background(), "tok-123", &Broadcast{
		Snippet: BroadcastSnippet{Title: "Morning Show", ScheduledStartTime: &start},
		Status:  &BroadcastStatus{PrivacyStatus: "private"},
	})

	if err != nil {
		t.Fatalf("InsertBroadcast() error = %v", err)
	}
	if created.ID != "bcast-1" {
		t.Errorf("ID = %q, want bcast-1", created.ID)
	}
	if created.Status.LifeCycleStatus != BroadcastLifeCycleCreated {
		t.Errorf("LifeCycleStatus = %q", created.Status.LifeCycleStatus)
	}
	if !created.Snippet.ScheduledStartTime.Equal(start) {
		t.Errorf("ScheduledStartTime = %v, want %v", created.Snippet.ScheduledStartTime, start)
	}
}

func TestInsertStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/liveStreams" {
			t.Errorf("path = %s, want /liveStreams", r.URL.Path)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "stream-1",
			"snippet": {"title": "Morning Show"},
			"cdn": {
				"ingestionType": "rtmp",
				"ingestionInfo": {
					"streamName": "abcd-1234-efgh-5678",
					"ingestionAddress": "rtmp://a.rtmp.youtube.com/live2"
				}
			}
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	stream, err := client.InsertStream(context.Background(), "tok-123", "Morning Show")

	if err != nil {
		t.Fatalf("InsertStream() error = %v", err)
	}
	if stream.ID != "stream-1" {
		t.Errorf("ID = %q", stream.ID)
	}
	if stream.CDN.IngestionInfo == nil {
		t.Fatal("IngestionInfo is nil")
	}
	if stream.CDN.IngestionInfo.StreamName != "abcd-1234-efgh-5678" {
		t.Errorf("StreamName = %q", stream.CDN.IngestionInfo.StreamName)
	}
	if stream.CDN.IngestionInfo.IngestionAddress != "rtmp://a.rtmp.youtube.com/live2" {
		t.Errorf("IngestionAddress = %q", stream.CDN.IngestionInfo.IngestionAddress)
	}
}

func TestBindBroadcast(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/liveBroadcasts/bind" {
			t.Errorf("path = %s", r.URL.Path)
		}
		query := r.URL.Query()
		if query.Get("id") != "bcast-1" || query.Get("streamId") != "stream-1" {
			t.Errorf("query = %v", query)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "bcast-1", "contentDetails": {"boundStreamId": "stream-1"}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	bound, err := client.BindBroadcast(context.Background(), "tok-123", "bcast-1", "stream-1")

	if err != nil {
		t.Fatalf("BindBroadcast() error = %v", err)
	}
	if bound.ContentDetails == nil || bound.ContentDetails.BoundStreamID != "stream-1" {
		t.Errorf("BoundStreamID not set: %+v", bound.ContentDetails)
	}
}

func TestTransitionBroadcast(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/liveBroadcasts/transition" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("broadcastStatus"); got != "live" {
			t.Errorf("broadcastStatus = %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": "bcast-1", "status": {"lifeCycleStatus": "live"}}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	transitioned, err := client.TransitionBroadcast(context.Background(), "tok-123", "bcast-1", BroadcastLifeCycleLive)

	if err != nil {
		t.Fatalf("TransitionBroadcast() error = %v", err)
	}
	if transitioned.Status.LifeCycleStatus != BroadcastLifeCycleLive {
		t.Errorf("LifeCycleStatus = %q, want live", transitioned.Status.LifeCycleStatus)
	}
}

func TestDeleteBroadcast(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %s, want DELETE", r.Method)
		}
		if got := r.URL.Query().Get("id"); got != "bcast-1" {
			t.Errorf("id = %q", got)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	if err := client.DeleteBroadcast(context.Background(), "tok-123", "bcast-1"); err != nil {
		t.Fatalf("DeleteBroadcast() error = %v", err)
	}
}

const commentThreadsFixture = `{
	"nextPageToken": "page-2",
	"pageInfo": {"totalResults": 2, "resultsPerPage": 20},
	"items": [
		{
			"id": "thread-1",
			"snippet": {
				"channelId": "UC123",
				"videoId": "vid-1",
				"totalReplyCount": 1,
				"topLevelComment": {
					"id": "comment-1",
					"snippet": {
						"videoId": "vid-1",
						"authorDisplayName": "Viewer One",
						"authorChannelId": {"value": "UCviewer1"},
						"textOriginal": "First!",
						"publishedAt": "2026-08-20T10:00:00Z"
					}
				}
			},
			"replies": {
				"comments": [
					{
						"id": "comment-2",
						"snippet": {
							"parentId": "comment-1",
							"authorDisplayName": "Viewer Two",
							"authorChannelId": {"value": "UCviewer2"},
							"textOriginal": "Welcome!",
							"publishedAt": "2026-08-20T10:05:00Z"
						}
					}
				]
			}
		},
		{
			"id": "thread-2",
			"snippet": {
				"channelId": "UC123",
				"videoId": "vid-1",
				"totalReplyCount": 0,
				"topLevelComment": {
					"id": "comment-3",
					"snippet": {
						"videoId": "vid-1",
						"authorDisplayName": "Viewer Three",
						"authorChannelId": {"value": "UCviewer3"},
						"textOriginal": "When is the next stream?",
						"publishedAt": "2026-08-20T11:00:00Z"
					}
				}
			}
		}
	]
}`

func TestListCommentThreads(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/commentThreads" {
			t.Errorf("path = %s", r.URL.Path)
		}
		query := r.URL.Query()
		if got := query.Get("allThreadsRelatedToChannelId"); got != "UC123" {
			t.Errorf("allThreadsRelatedToChannelId = %q", got)
		}
		if got := query.Get("maxResults"); got != "50" {
			t.Errorf("maxResults = %q", got)
		}
		if got := query.Get("order"); got != "time" {
			t.Errorf("order = %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(commentThreadsFixture))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	list, err := client.ListCommentThreads(context.Background(), "tok-123", &CommentThreadListOptions{
		ChannelID:  "UC123",
		MaxResults: 50,
	})

	if err != nil {
		t.Fatalf("ListCommentThreads() error = %v", err)
	}
	if list.NextPageToken != "page-2" {
		t.Errorf("NextPageToken = %q", list.NextPageToken)
	}
	if len(list.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(list.Items))
	}

	top := list.Items[0].Snippet.TopLevelComment
	if top.ID != "comment-1" {
		t.Errorf("top comment ID = %q", top.ID)
	}
	if top.Snippet.AuthorChannelID.Value != "UCviewer1" {
		t.Errorf("author channel = %q", top.Snippet.AuthorChannelID.Value)
	}
	if list.Items[0].Replies == nil || len(list.Items[0].Replies.Comments) != 1 {
		t.Fatalf("replies not parsed: %+v", list.Items[0].Replies)
	}
	if got := list.Items[0].Replies.Comments[0].Snippet.ParentID; got != "comment-1" {
		t.Errorf("reply parent = %q", got)
	}
	wantPublished := time.Date(2026, 8, 20, 11, 0, 0, 0, time.UTC)
	if !list.Items[1].Snippet.TopLevelComment.Snippet.PublishedAt.Equal(wantPublished) {
		t.Errorf("publishedAt = %v", list.Items[1].Snippet.TopLevelComment.Snippet.PublishedAt)
	}
}

func TestListCommentThreads_RequiresTarget(t *testing.T) {
	client := newTestClient("http://localhost:1")

	if _, err := client.ListCommentThreads(context.Background(), "tok", &CommentThreadListOptions{}); err == nil {
		t.Fatal("expected error for missing channel and video id")
	}
	if _, err := client.ListCommentThreads(context.Background(), "tok", nil); err == nil {
		t.Fatal("expected error for nil options")
	}
}

func TestInsertComment(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/comments" {
			t.Errorf("path = %s", r.URL.Path)
		}

		var body struct {
			Snippet struct {
				ParentID     string `json:"parentId"`
				TextOriginal string `json:"textOriginal"`
			} `json:"snippet"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body.Snippet.ParentID != "comment-1" {
			t.Errorf("parentId = %q", body.Snippet.ParentID)
		}
		if body.Snippet.TextOriginal != "Thanks for watching!" {
			t.Errorf("textOriginal = %q", body.Snippet.TextOriginal)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"id": "reply-1",
			"snippet": {"parentId": "comment-1", "textOriginal": "Thanks for watching!", "publishedAt": "2026-08-20T12:00:00Z"}
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	posted, err := client.InsertComment(context.Background(), "tok-123", "comment-1", "Thanks for watching!")

	if err != nil {
		t.Fatalf("InsertComment() error = %v", err)
	}
	if posted.ID != "reply-1" {
		t.Errorf("ID = %q", posted.ID)
	}
}

func TestSetCommentModerationStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/comments/setModerationStatus" {
			t.Errorf("path = %s", r.URL.Path)
		}
		query := r.URL.Query()
		if query.Get("id") != "comment-1" || query.Get("moderationStatus") != "heldForReview" {
			t.Errorf("query = %v", query)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	err := client.SetCommentModerationStatus(context.Background(), "tok-123", "comment-1", "heldForReview")
	if err != nil {
		t.Fatalf("SetCommentModerationStatus() error = %v", err)
	}
}

func TestGetMyChannel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/channels" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("mine"); got != "true" {
			t.Errorf("mine = %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"items": [
				{
					"id": "UC123",
					"snippet": {
						"title": "Fleet Channel",
						"customUrl": "@fleetchannel",
						"thumbnails": {"default": {"url": "https://yt3.example/thumb.jpg"}}
					},
					"statistics": {"subscriberCount": "15200", "videoCount": "340", "viewCount": "1048576"}
				}
			]
		}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	channel, err := client.GetMyChannel(context.Background(), "tok-123")

	if err != nil {
		t.Fatalf("GetMyChannel() error = %v", err)
	}
	if channel.ID != "UC123" {
		t.Errorf("ID = %q", channel.ID)
	}
	if channel.Snippet.Title != "Fleet Channel" {
		t.Errorf("Title = %q", channel.Snippet.Title)
	}
	if got := channel.Statistics.Subscribers(); got != 15200 {
		t.Errorf("Subscribers() = %d, want 15200", got)
	}
	if got := channel.Statistics.Videos(); got != 340 {
		t.Errorf("Videos() = %d, want 340", got)
	}
}

func TestGetMyChannel_NoChannel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items": []}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.GetMyChannel(context.Background(), "tok-123")

	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		sentinel   error
	}{
		{
			name:       "quota exceeded",
			statusCode: http.StatusForbidden,
			body:       `{"error": {"code": 403, "message": "Daily quota exceeded", "errors": [{"reason": "quotaExceeded"}]}}`,
			sentinel:   ErrQuotaExceeded,
		},
		{
			name:       "rate limit",
			statusCode: http.StatusForbidden,
			body:       `{"error": {"code": 403, "message": "Rate limit", "errors": [{"reason": "rateLimitExceeded"}]}}`,
			sentinel:   ErrQuotaExceeded,
		},
		{
			name:       "auth revoked",
			statusCode: http.StatusUnauthorized,
			body:       `{"error": {"code": 401, "message": "Invalid credentials", "errors": [{"reason": "authError"}]}}`,
			sentinel:   ErrAuthRevoked,
		},
		{
			name:       "not found",
			statusCode: http.StatusNotFound,
			body:       `{"error": {"code": 404, "message": "Broadcast not found", "errors": [{"reason": "liveBroadcastNotFound"}]}}`,
			sentinel:   ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.statusCode)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := newTestClient(server.URL)
			_, err := client.GetMyChannel(context.Background(), "tok-123")

			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, tt.sentinel) {
				t.Errorf("errors.Is(%v, %v) = false", err, tt.sentinel)
			}

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error %v is not an APIError", err)
			}
			if apiErr.StatusCode != tt.statusCode {
				t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, tt.statusCode)
			}
		})
	}
}

func TestRetryOnServerError(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items": [{"id": "UC123", "snippet": {"title": "Fleet"}}]}`))
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	channel, err := client.GetMyChannel(context.Background(), "tok-123")

	if err != nil {
		t.Fatalf("GetMyChannel() error = %v, want success after retries", err)
	}
	if channel.ID != "UC123" {
		t.Errorf("ID = %q", channel.ID)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryExhausted(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.GetMyChannel(context.Background(), "tok-123")

	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
	// maxRetries=2 means 3 attempts total
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetryOn429MapsToQuota(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	_, err := client.GetMyChannel(context.Background(), "tok-123")

	if !errors.Is(err, ErrQuotaExceeded) {
		t.Errorf("error = %v, want ErrQuotaExceeded", err)
	}
}

func TestRetryContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := newTestClient(server.URL)
	client.retryBaseDelay = 10 * time.Second // force the backoff wait to be the blocking point

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := client.GetMyChannel(ctx, "tok-123")
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want context.DeadlineExceeded", err)
	}
}
