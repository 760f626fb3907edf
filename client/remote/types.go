package remote

import "arifmusic/model"

// RegisterRequest carries a client-assigned id plus the account fields.
type RegisterRequest struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	FullName string `json:"fullName"`
	UserType string `json:"userType"`
}

// LoginRequest is the credentials body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	ID                 string                   `json:"id"`
	Email              string                   `json:"email"`
	Name               string                   `json:"name"`
	FullName           string                   `json:"fullName"`
	UserType           model.UserType           `json:"userType"`
	VerificationStatus model.VerificationStatus `json:"verificationStatus"`
	Token              string                   `json:"token"`
}

// UserUpdateRequest updates the caller's profile; nil fields are untouched.
type UserUpdateRequest struct {
	FullName        *string `json:"fullName,omitempty"`
	Bio             *string `json:"bio,omitempty"`
	Password        *string `json:"password,omitempty"`
	ProfileImageURL *string `json:"profileImageUrl,omitempty"`
}

// PlaylistRequest creates a playlist.
type PlaylistRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	CoverArtURL string `json:"coverArtUrl,omitempty"`
	IsPublic    *bool  `json:"isPublic,omitempty"`
}

// PlaylistUpdateRequest updates playlist metadata.
type PlaylistUpdateRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	CoverArtURL *string `json:"coverArtUrl,omitempty"`
	IsPublic    *bool   `json:"isPublic,omitempty"`
}

// WatchlistRequest creates a watchlist.
type WatchlistRequest struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// WatchlistUpdateRequest updates watchlist metadata.
type WatchlistUpdateRequest struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
}

// AddSongRequest carries the music id for membership mutations.
type AddSongRequest struct {
	MusicID string `json:"musicId"`
}

// CheckWatchlistResponse is the membership check result.
type CheckWatchlistResponse struct {
	InWatchlist bool                  `json:"inWatchlist"`
	Watchlists  []model.WatchlistInfo `json:"watchlists"`
}
