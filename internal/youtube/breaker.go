// TubeFleet - YouTube Multi-Channel Automation Platform
// Copyright 2026 TubeFleet Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tubefleet/tubefleet

package youtube

import (
	"context"
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tubefleet/tubefleet/internal/logging"
	"github.com/tubefleet/tubefleet/internal/metrics"
)

// breakerName labels the YouTube API breaker in metrics and logs.
const breakerName = "youtube-api"

// BreakerClient wraps Client with a circuit breaker so a failing or slow
// Data API cannot stall the materializer, the comment sync, or moderation.
//
// The breaker uses real time for its interval and timeout. Tests should mock
// the underlying client rather than the breaker.
type BreakerClient struct {
	client *Client
	cb     *gobreaker.CircuitBreaker[interface{}]
}

// Ensure BreakerClient implements ClientInterface
var _ ClientInterface = (*BreakerClient)(nil)

// NewBreakerClient creates a Data API client behind a circuit breaker.
//
// Breaker configuration:
//   - Max 3 concurrent requests in half-open state
//   - 1 minute measurement window
//   - 2 minute open period before attempting recovery
//   - Opens at a 60% failure rate with at least 10 requests observed
func NewBreakerClient(client *Client) *BreakerClient {
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6
			if shouldTrip {
				logging.Warn().
					Uint32("failures", counts.TotalFailures).
					Float64("failure_rate", failureRatio*100).
					Msg("[CIRCUIT BREAKER] Opening YouTube API circuit")
			}
			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("[CIRCUIT BREAKER] YouTube API state transition")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},

		// Quota, revoked-auth, and not-found responses are API verdicts,
		// not API failures; they do not count toward tripping the breaker.
		IsSuccessful: func(err error) bool {
			if err == nil {
				return true
			}
			return errors.Is(err, ErrQuotaExceeded) || errors.Is(err, ErrAuthRevoked) || errors.Is(err, ErrNotFound)
		},
	})

	return &BreakerClient{
		client: client,
		cb:     cb,
	}
}

// execute wraps an API call with circuit breaker protection.
func (bc *BreakerClient) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := bc.cb.Execute(fn)
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "rejected").Inc()
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] YouTube API request rejected")
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "failure").Inc()
		}
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(breakerName, "success").Inc()
	return result, nil
}

// castResult type-casts the circuit breaker result with error checking.
func castResult[T any](result interface{}, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	typed, ok := result.(*T)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

// stateToFloat converts circuit breaker state to the metrics gauge value.
func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

// InsertBroadcast creates a live broadcast with circuit breaker protection.
func (bc *BreakerClient) InsertBroadcast(ctx context.Context, token string, b *Broadcast) (*Broadcast, error) {
	return castResult[Broadcast](bc.execute(func() (interface{}, error) {
		return bc.client.InsertBroadcast(ctx, token, b)
	}))
}

// UpdateBroadcast updates a broadcast with circuit breaker protection.
func (bc *BreakerClient) UpdateBroadcast(ctx context.Context, token string, b *Broadcast) (*Broadcast, error) {
	return castResult[Broadcast](bc.execute(func() (interface{}, error) {
		return bc.client.UpdateBroadcast(ctx, token, b)
	}))
}

// DeleteBroadcast removes a broadcast with circuit breaker protection.
func (bc *BreakerClient) DeleteBroadcast(ctx context.Context, token, broadcastID string) error {
	_, err := bc.execute(func() (interface{}, error) {
		return nil, bc.client.DeleteBroadcast(ctx, token, broadcastID)
	})
	return err
}

// TransitionBroadcast transitions a broadcast with circuit breaker protection.
func (bc *BreakerClient) TransitionBroadcast(ctx context.Context, token, broadcastID, lifeCycleStatus string) (*Broadcast, error) {
	return castResult[Broadcast](bc.execute(func() (interface{}, error) {
		return bc.client.TransitionBroadcast(ctx, token, broadcastID, lifeCycleStatus)
	}))
}

// InsertStream creates a live stream with circuit breaker protection.
func (bc *BreakerClient) InsertStream(ctx context.Context, token, title string) (*Stream, error) {
	return castResult[Stream](bc.execute(func() (interface{}, error) {
		return bc.client.InsertStream(ctx, token, title)
	}))
}

// BindBroadcast binds a stream to a broadcast with circuit breaker protection.
func (bc *BreakerClient) BindBroadcast(ctx context.Context, token, broadcastID, streamID string) (*Broadcast, error) {
	return castResult[Broadcast](bc.execute(func() (interface{}, error) {
		return bc.client.BindBroadcast(ctx, token, broadcastID, streamID)
	}))
}

// ListCommentThreads lists comment threads with circuit breaker protection.
func (bc *BreakerClient) ListCommentThreads(ctx context.Context, token string, opts *CommentThreadListOptions) (*CommentThreadList, error) {
	return castResult[CommentThreadList](bc.execute(func() (interface{}, error) {
		return bc.client.ListCommentThreads(ctx, token, opts)
	}))
}

// InsertComment posts a comment reply with circuit breaker protection.
func (bc *BreakerClient) InsertComment(ctx context.Context, token, parentID, text string) (*CommentResource, error) {
	return castResult[CommentResource](bc.execute(func() (interface{}, error) {
		return bc.client.InsertComment(ctx, token, parentID, text)
	}))
}

// SetCommentModerationStatus sets moderation status with circuit breaker protection.
func (bc *BreakerClient) SetCommentModerationStatus(ctx context.Context, token, commentID, status string) error {
	_, err := bc.execute(func() (interface{}, error) {
		return nil, bc.client.SetCommentModerationStatus(ctx, token, commentID, status)
	})
	return err
}

// GetMyChannel fetches the token's channel with circuit breaker protection.
func (bc *BreakerClient) GetMyChannel(ctx context.Context, token string) (*ChannelResource, error) {
	return castResult[ChannelResource](bc.execute(func() (interface{}, error) {
		return bc.client.GetMyChannel(ctx, token)
	}))
}
