// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package youtube

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/tubefleet/tubefleet/internal/models"
)

// CommentGateway is the comment arm of the Data API wrapper: it lists
// recent threads for sync, posts chatbot replies, and applies moderation
// verdicts remotely.
//
// Implements comments.Source and moderation.RemoteModerator.
type CommentGateway struct {
	api    ClientInterface
	tokens TokenProvider
}

// NewCommentGateway creates a comment gateway over the given API client and
// token provider.
func NewCommentGateway(api ClientInterface, tokens TokenProvider) *CommentGateway {
	return &CommentGateway{api: api, tokens: tokens}
}

// ListRecentThreads pulls up to maxComments flattened comments from the
// channel's recent threads, newest threads first. Thread replies included
// in the listing are flattened alongside their top-level comments.
func (g *CommentGateway) ListRecentThreads(ctx context.Context, channel *models.Channel, maxComments int) ([]models.Comment, error) {
	token, err := g.tokens.AccessToken(ctx, channel.ID.String())
	if err != nil {
		return nil, fmt.Errorf("resolving channel token: %w", err)
	}

	var comments []models.Comment
	pageToken := ""
	for {
		page, err := g.api.ListCommentThreads(ctx, token, &CommentThreadListOptions{
			ChannelID:  channel.YouTubeChannelID,
			PageToken:  pageToken,
			MaxResults: 100,
		})
		if err != nil {
			return nil, fmt.Errorf("listing comment threads: %w", err)
		}

		for i := range page.Items {
			thread := &page.Items[i]
			comments = append(comments, commentFromResource(channel.ID, &thread.Snippet.TopLevelComment))
			if thread.Replies != nil {
				for j := range thread.Replies.Comments {
					comments = append(comments, commentFromResource(channel.ID, &thread.Replies.Comments[j]))
				}
			}
		}

		if page.NextPageToken == "" || (maxComments > 0 && len(comments) >= maxComments) {
			break
		}
		pageToken = page.NextPageToken
	}

	if maxComments > 0 && len(comments) > maxComments {
		comments = comments[:maxComments]
	}
	return comments, nil
}

// PostReply posts text as a reply to the given comment and returns
// YouTube's id for the posted reply.
func (g *CommentGateway) PostReply(ctx context.Context, channelID, parentCommentID, text string) (string, error) {
	token, err := g.tokens.AccessToken(ctx, channelID)
	if err != nil {
		return "", fmt.Errorf("resolving channel token: %w", err)
	}

	posted, err := g.api.InsertComment(ctx, token, parentCommentID, text)
	if err != nil {
		return "", fmt.Errorf("posting reply: %w", err)
	}
	return posted.ID, nil
}

// SetModerationStatus applies a moderation verdict to a comment remotely.
func (g *CommentGateway) SetModerationStatus(ctx context.Context, channelID, commentID, status string) error {
	token, err := g.tokens.AccessToken(ctx, channelID)
	if err != nil {
		return fmt.Errorf("resolving channel token: %w", err)
	}
	return g.api.SetCommentModerationStatus(ctx, token, commentID, status)
}

// commentFromResource maps an API comment resource onto the local row.
func commentFromResource(channelID uuid.UUID, res *CommentResource) models.Comment {
	text := res.Snippet.TextOriginal
	if text == "" {
		text = res.Snippet.TextDisplay
	}
	status := res.Snippet.ModerationStatus
	if status == "" {
		status = models.CommentStatusPublished
	}

	comment := models.Comment{
		ChannelID:        channelID,
		YouTubeCommentID: res.ID,
		VideoID:          res.Snippet.VideoID,
		AuthorChannelID:  res.Snippet.AuthorChannelID.Value,
		AuthorName:       res.Snippet.AuthorDisplayName,
		Text:             text,
		Status:           status,
		PublishedAt:      res.Snippet.PublishedAt,
	}
	if res.Snippet.ParentID != "" {
		parent := res.Snippet.ParentID
		comment.ParentCommentID = &parent
	}
	return comment
}
