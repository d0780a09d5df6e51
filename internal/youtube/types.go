// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package youtube

import (
	"strconv"
	"time"
)

// Broadcast lifecycle status values, as returned in status.lifeCycleStatus
// and accepted by TransitionBroadcast.
const (
	BroadcastLifeCycleCreated  = "created"
	BroadcastLifeCycleReady    = "ready"
	BroadcastLifeCycleTesting  = "testing"
	BroadcastLifeCycleLive     = "live"
	BroadcastLifeCycleComplete = "complete"
)

// Broadcast mirrors the liveBroadcast resource fields the platform touches.
// The same shape is sent on insert/update and parsed from responses.
type Broadcast struct {
	ID             string                   `json:"id,omitempty"`
	Snippet        BroadcastSnippet         `json:"snippet"`
	Status         *BroadcastStatus         `json:"status,omitempty"`
	ContentDetails *BroadcastContentDetails `json:"contentDetails,omitempty"`
}

// BroadcastSnippet holds broadcast metadata and scheduling times (RFC 3339).
type BroadcastSnippet struct {
	Title              string     `json:"title"`
	Description        string     `json:"description,omitempty"`
	ChannelID          string     `json:"channelId,omitempty"`
	ScheduledStartTime *time.Time `json:"scheduledStartTime,omitempty"`
	ScheduledEndTime   *time.Time `json:"scheduledEndTime,omitempty"`
	ActualStartTime    *time.Time `json:"actualStartTime,omitempty"`
	ActualEndTime      *time.Time `json:"actualEndTime,omitempty"`
	LiveChatID         string     `json:"liveChatId,omitempty"`
}

// BroadcastStatus carries lifecycle and privacy state.
type BroadcastStatus struct {
	LifeCycleStatus string `json:"lifeCycleStatus,omitempty"`
	PrivacyStatus   string `json:"privacyStatus,omitempty"`
	RecordingStatus string `json:"recordingStatus,omitempty"`
}

// BroadcastContentDetails carries the broadcast options the scheduler sets.
type BroadcastContentDetails struct {
	BoundStreamID   string `json:"boundStreamId,omitempty"`
	EnableDvr       bool   `json:"enableDvr"`
	EnableAutoStart bool   `json:"enableAutoStart"`
	EnableAutoStop  bool   `json:"enableAutoStop"`
}

// Stream mirrors the liveStream resource. The ingestion info on a created
// stream carries the RTMP address and stream key handed to broadcasters.
type Stream struct {
	ID      string        `json:"id,omitempty"`
	Snippet StreamSnippet `json:"snippet"`
	CDN     StreamCDN     `json:"cdn"`
	Status  *StreamStatus `json:"status,omitempty"`
}

// StreamSnippet holds stream metadata.
type StreamSnippet struct {
	Title string `json:"title"`
}

// StreamCDN describes the ingestion settings of a live stream.
type StreamCDN struct {
	IngestionType string         `json:"ingestionType,omitempty"`
	Resolution    string         `json:"resolution,omitempty"`
	FrameRate     string         `json:"frameRate,omitempty"`
	IngestionInfo *IngestionInfo `json:"ingestionInfo,omitempty"`
}

// IngestionInfo is the RTMP endpoint and stream key for a live stream.
// StreamName is the stream key and is treated as a secret.
type IngestionInfo struct {
	StreamName             string `json:"streamName,omitempty"`
	IngestionAddress       string `json:"ingestionAddress,omitempty"`
	BackupIngestionAddress string `json:"backupIngestionAddress,omitempty"`
}

// StreamStatus carries the live stream health state.
type StreamStatus struct {
	StreamStatus string `json:"streamStatus,omitempty"`
}

// CommentThreadListOptions selects which comment threads to list.
// Exactly one of ChannelID or VideoID should be set.
type CommentThreadListOptions struct {
	// ChannelID lists all threads related to the channel
	// (allThreadsRelatedToChannelId).
	ChannelID string

	// VideoID lists threads on a single video or broadcast.
	VideoID string

	// PageToken continues a previous listing.
	PageToken string

	// MaxResults caps the page size (1-100). Zero uses the API default.
	MaxResults int
}

// CommentThreadList is one page of comment threads.
type CommentThreadList struct {
	NextPageToken string          `json:"nextPageToken,omitempty"`
	PageInfo      PageInfo        `json:"pageInfo"`
	Items         []CommentThread `json:"items"`
}

// PageInfo is the API's paging envelope.
type PageInfo struct {
	TotalResults   int `json:"totalResults"`
	ResultsPerPage int `json:"resultsPerPage"`
}

// CommentThread is a top-level comment plus its replies.
type CommentThread struct {
	ID      string               `json:"id"`
	Snippet CommentThreadSnippet `json:"snippet"`
	Replies *CommentReplies      `json:"replies,omitempty"`
}

// CommentThreadSnippet identifies where the thread lives and its root comment.
type CommentThreadSnippet struct {
	ChannelID       string          `json:"channelId"`
	VideoID         string          `json:"videoId"`
	TopLevelComment CommentResource `json:"topLevelComment"`
	TotalReplyCount int             `json:"totalReplyCount"`
}

// CommentReplies holds the replies included with a thread listing.
type CommentReplies struct {
	Comments []CommentResource `json:"comments"`
}

// CommentResource mirrors the comment resource fields the platform reads.
type CommentResource struct {
	ID      string         `json:"id"`
	Snippet CommentSnippet `json:"snippet"`
}

// CommentSnippet holds the comment body, author, and moderation state.
type CommentSnippet struct {
	VideoID           string          `json:"videoId,omitempty"`
	ParentID          string          `json:"parentId,omitempty"`
	AuthorDisplayName string          `json:"authorDisplayName"`
	AuthorChannelID   AuthorChannelID `json:"authorChannelId"`
	TextDisplay       string          `json:"textDisplay,omitempty"`
	TextOriginal      string          `json:"textOriginal"`
	ModerationStatus  string          `json:"moderationStatus,omitempty"`
	PublishedAt       time.Time       `json:"publishedAt"`
	UpdatedAt         time.Time       `json:"updatedAt,omitempty"`
}

// AuthorChannelID is the API's wrapper object around an author's channel id.
type AuthorChannelID struct {
	Value string `json:"value"`
}

// ChannelList is the channels.list response envelope.
type ChannelList struct {
	Items []ChannelResource `json:"items"`
}

// ChannelResource mirrors the channel resource fields used for linking and
// metadata sync.
type ChannelResource struct {
	ID         string             `json:"id"`
	Snippet    ChannelSnippet     `json:"snippet"`
	Statistics *ChannelStatistics `json:"statistics,omitempty"`
}

// ChannelSnippet holds channel display metadata.
type ChannelSnippet struct {
	Title      string            `json:"title"`
	CustomURL  string            `json:"customUrl,omitempty"`
	Thumbnails ChannelThumbnails `json:"thumbnails"`
}

// ChannelThumbnails holds the thumbnail variants; only the default size is used.
type ChannelThumbnails struct {
	Default ChannelThumbnail `json:"default"`
}

// ChannelThumbnail is a single thumbnail image reference.
type ChannelThumbnail struct {
	URL string `json:"url"`
}

// ChannelStatistics carries counters the API serializes as decimal strings.
type ChannelStatistics struct {
	SubscriberCount string `json:"subscriberCount"`
	VideoCount      string `json:"videoCount"`
	ViewCount       string `json:"viewCount"`
}

// Subscribers parses the string-encoded subscriber count.
// Returns 0 when the count is hidden or unparsable.
func (s *ChannelStatistics) Subscribers() int64 {
	n, err := strconv.ParseInt(s.SubscriberCount, 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// Videos parses the string-encoded video count.
func (s *ChannelStatistics) Videos() int64 {
	n, err := strconv.ParseInt(s.VideoCount, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
