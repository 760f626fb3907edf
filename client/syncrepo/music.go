package syncrepo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"arifmusic/client/session"
	"arifmusic/client/store"
	"arifmusic/core/apperr"
	"arifmusic/model"
)

// Music manages tracks. Tracks live only in the local store; the backend has
// no music surface, so there is no remote path here.
type Music struct {
	store *store.Store
	sess  *session.Manager
}

// NewMusic wires the music repository.
func NewMusic(st *store.Store, sess *session.Manager) *Music {
	return &Music{store: st, sess: sess}
}

// Add registers a new track for the logged-in artist, awaiting moderation.
func (m *Music) Add(ctx context.Context, title, path, album, genre string, durationMs int64) (*model.Music, error) {
	current := m.sess.Current()
	if current == nil {
		return nil, apperr.New(apperr.Unauthenticated, "Not logged in")
	}
	if current.UserType != model.UserTypeArtist && current.UserType != model.UserTypeAdmin {
		return nil, apperr.New(apperr.Unauthorized, "Only artists can upload music")
	}
	if title == "" || path == "" {
		return nil, apperr.New(apperr.Validation, "Title and path are required")
	}

	track := &model.Music{
		ID:             uuid.NewString(),
		Title:          title,
		Artist:         current.Name,
		ArtistID:       current.UserID,
		Album:          album,
		Genre:          genre,
		DurationMs:     durationMs,
		Path:           path,
		ApprovalStatus: model.MusicPending,
		UploadedAt:     time.Now().UTC(),
	}
	if err := m.store.SaveMusic(ctx, track); err != nil {
		return nil, err
	}
	return track, nil
}

// ByID returns one track.
func (m *Music) ByID(ctx context.Context, id string) (*model.Music, error) {
	return m.store.MusicByID(ctx, id)
}

// All lists approved tracks.
func (m *Music) All(ctx context.Context) ([]*model.Music, error) {
	return m.store.AllMusic(ctx)
}

// ByArtist lists an artist's tracks, whatever their status.
func (m *Music) ByArtist(ctx context.Context, artistID string) ([]*model.Music, error) {
	return m.store.ArtistMusic(ctx, artistID)
}

// Pending lists tracks awaiting moderation; admin only.
func (m *Music) Pending(ctx context.Context) ([]*model.Music, error) {
	if err := m.requireAdmin(); err != nil {
		return nil, err
	}
	return m.store.PendingMusic(ctx)
}

// Trending lists the most-played approved tracks.
func (m *Music) Trending(ctx context.Context, limit int) ([]*model.Music, error) {
	return m.store.Trending(ctx, limit)
}

// NewReleases lists the latest approved tracks.
func (m *Music) NewReleases(ctx context.Context, limit int) ([]*model.Music, error) {
	return m.store.NewReleases(ctx, limit)
}

// Approve marks a pending track approved; admin only.
func (m *Music) Approve(ctx context.Context, id string) error {
	if err := m.requireAdmin(); err != nil {
		return err
	}
	return m.store.SetApprovalStatus(ctx, id, model.MusicApproved)
}

// Reject marks a pending track rejected; admin only.
func (m *Music) Reject(ctx context.Context, id string) error {
	if err := m.requireAdmin(); err != nil {
		return err
	}
	return m.store.SetApprovalStatus(ctx, id, model.MusicRejected)
}

// Delete removes a track. Allowed to the uploading artist and admins.
func (m *Music) Delete(ctx context.Context, id string) error {
	current := m.sess.Current()
	if current == nil {
		return apperr.New(apperr.Unauthenticated, "Not logged in")
	}
	track, err := m.store.MusicByID(ctx, id)
	if err != nil {
		return err
	}
	if track.ArtistID != current.UserID && current.UserType != model.UserTypeAdmin {
		return apperr.New(apperr.Unauthorized, "Not authorized to delete this music")
	}
	return m.store.DeleteMusic(ctx, id)
}

// RecordPlay notes that the logged-in user played a track. The play count
// rises only on the user's first play; later plays return counted=false.
// Anonymous listening never counts.
func (m *Music) RecordPlay(ctx context.Context, musicID string) (bool, error) {
	userID := m.sess.UserID()
	if userID == "" {
		return false, nil
	}
	if _, err := m.store.MusicByID(ctx, musicID); err != nil {
		return false, err
	}
	return m.store.RecordPlay(ctx, userID, musicID)
}

func (m *Music) requireAdmin() error {
	current := m.sess.Current()
	if current == nil {
		return apperr.New(apperr.Unauthenticated, "Not logged in")
	}
	if current.UserType != model.UserTypeAdmin {
		return apperr.New(apperr.Unauthorized, "Admin access required")
	}
	return nil
}
