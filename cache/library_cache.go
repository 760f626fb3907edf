// Package cache keeps a Redis write-through copy of each user's library
// lists so the hot GET endpoints skip MySQL. Every mutation invalidates the
// owner's keys; a nil client disables caching entirely.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"arifmusic/model"
)

const libraryTTL = 24 * time.Hour

// LibraryCache caches playlists and watchlists per owner.
type LibraryCache struct {
	rdb *redis.Client
}

// NewLibraryCache wraps a Redis client. rdb may be nil; all operations then
// report a miss and store nothing.
func NewLibraryCache(rdb *redis.Client) *LibraryCache {
	return &LibraryCache{rdb: rdb}
}

func playlistsKey(userID string) string {
	return fmt.Sprintf("library:playlists:%s", userID)
}

func watchlistsKey(userID string) string {
	return fmt.Sprintf("library:watchlists:%s", userID)
}

// Playlists returns the cached playlist list, or (nil, nil) on a miss.
func (c *LibraryCache) Playlists(ctx context.Context, userID string) ([]*model.Playlist, error) {
	if c == nil || c.rdb == nil {
		return nil, nil
	}
	raw, err := c.rdb.Get(ctx, playlistsKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read playlist cache: %w", err)
	}
	var playlists []*model.Playlist
	if err := json.Unmarshal(raw, &playlists); err != nil {
		return nil, fmt.Errorf("failed to decode playlist cache: %w", err)
	}
	return playlists, nil
}

// StorePlaylists caches the playlist list for the user.
func (c *LibraryCache) StorePlaylists(ctx context.Context, userID string, playlists []*model.Playlist) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	raw, err := json.Marshal(playlists)
	if err != nil {
		return fmt.Errorf("failed to encode playlist cache: %w", err)
	}
	return c.rdb.Set(ctx, playlistsKey(userID), raw, libraryTTL).Err()
}

// Watchlists returns the cached watchlist list, or (nil, nil) on a miss.
func (c *LibraryCache) Watchlists(ctx context.Context, userID string) ([]*model.Watchlist, error) {
	if c == nil || c.rdb == nil {
		return nil, nil
	}
	raw, err := c.rdb.Get(ctx, watchlistsKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read watchlist cache: %w", err)
	}
	var watchlists []*model.Watchlist
	if err := json.Unmarshal(raw, &watchlists); err != nil {
		return nil, fmt.Errorf("failed to decode watchlist cache: %w", err)
	}
	return watchlists, nil
}

// StoreWatchlists caches the watchlist list for the user.
func (c *LibraryCache) StoreWatchlists(ctx context.Context, userID string, watchlists []*model.Watchlist) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	raw, err := json.Marshal(watchlists)
	if err != nil {
		return fmt.Errorf("failed to encode watchlist cache: %w", err)
	}
	return c.rdb.Set(ctx, watchlistsKey(userID), raw, libraryTTL).Err()
}

// Invalidate drops both cached lists for the user.
func (c *LibraryCache) Invalidate(ctx context.Context, userID string) {
	if c == nil || c.rdb == nil {
		return
	}
	c.rdb.Del(ctx, playlistsKey(userID), watchlistsKey(userID))
}
