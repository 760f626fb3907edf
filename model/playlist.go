package model

import "time"

// Playlist is a user-curated, ordered song collection. Songs holds music IDs
// in playlist order; duplicates are rejected at the repository layer.
type Playlist struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	Name        string    `json:"name" gorm:"size:255;not null"`
	Description string    `json:"description" gorm:"type:text"`
	CoverArtURL string    `json:"coverArtUrl,omitempty" gorm:"size:512"`
	CreatedBy   string    `json:"createdBy" gorm:"size:36;not null;index"`
	IsPublic    bool      `json:"isPublic" gorm:"not null;default:true"`
	Songs       []string  `json:"songs" gorm:"-"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// PlaylistSong is one membership row. The unique index enforces the
// no-duplicates invariant at the database level.
type PlaylistSong struct {
	ID         int64     `gorm:"primaryKey;autoIncrement"`
	PlaylistID string    `gorm:"size:36;not null;uniqueIndex:idx_playlist_song"`
	MusicID    string    `gorm:"size:64;not null;uniqueIndex:idx_playlist_song"`
	Position   int       `gorm:"not null"`
	CreatedAt  time.Time
}
