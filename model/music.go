package model

import "time"

// MusicApprovalStatus tracks moderation of an artist upload.
type MusicApprovalStatus string

const (
	MusicPending  MusicApprovalStatus = "PENDING"
	MusicApproved MusicApprovalStatus = "APPROVED"
	MusicRejected MusicApprovalStatus = "REJECTED"
)

// Music represents an audio track. Tracks live in the on-device store only;
// the backend never owns them. PlayCount is incremented at most once per
// (user, music) pair via the play history table.
type Music struct {
	ID             string              `json:"id"`
	Title          string              `json:"title"`
	Artist         string              `json:"artist"`
	ArtistID       string              `json:"artistId"`
	Album          string              `json:"album,omitempty"`
	Genre          string              `json:"genre,omitempty"`
	DurationMs     int64               `json:"duration"` // 0 means unknown
	Path           string              `json:"path"`     // local file path or URI
	ArtworkURL     string              `json:"artworkUrl,omitempty"`
	PlayCount      int64               `json:"playCount"`
	ApprovalStatus MusicApprovalStatus `json:"approvalStatus"`
	UploadedAt     time.Time           `json:"uploadDate"`
}
