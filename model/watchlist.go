package model

import "time"

// Watchlist is a private "save for later" collection. Unlike playlists there
// is no public flag; ownership rules are otherwise identical.
type Watchlist struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	Name        string    `json:"name" gorm:"size:255;not null"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedBy   string    `json:"createdBy" gorm:"size:36;not null;index"`
	Songs       []string  `json:"songs" gorm:"-"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// WatchlistSong is one membership row.
type WatchlistSong struct {
	ID          int64     `gorm:"primaryKey;autoIncrement"`
	WatchlistID string    `gorm:"size:36;not null;uniqueIndex:idx_watchlist_song"`
	MusicID     string    `gorm:"size:64;not null;uniqueIndex:idx_watchlist_song"`
	CreatedAt   time.Time
}

// WatchlistInfo is the compact shape returned by the membership check
// endpoint.
type WatchlistInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
