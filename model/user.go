package model

import "time"

// UserType classifies what a user can do in the system.
type UserType string

const (
	UserTypeListener UserType = "LISTENER"
	UserTypeArtist   UserType = "ARTIST"
	UserTypeAdmin    UserType = "ADMIN"
	UserTypeGuest    UserType = "GUEST"
)

// VerificationStatus tracks an artist's verification request.
type VerificationStatus string

const (
	VerificationUnverified VerificationStatus = "UNVERIFIED"
	VerificationPending    VerificationStatus = "PENDING"
	VerificationVerified   VerificationStatus = "VERIFIED"
	VerificationRejected   VerificationStatus = "REJECTED"
)

// User represents an account. IDs are client-assigned UUIDs and immutable
// after creation.
type User struct {
	ID                 string             `json:"id" gorm:"primaryKey;size:36"`
	Email              string             `json:"email" gorm:"size:255;not null;uniqueIndex"`
	PasswordHash       string             `json:"-" gorm:"size:255;not null"`
	Name               string             `json:"name" gorm:"size:100;not null"`
	FullName           string             `json:"fullName" gorm:"size:255;not null"`
	UserType           UserType           `json:"userType" gorm:"size:16;not null;default:LISTENER"`
	VerificationStatus VerificationStatus `json:"verificationStatus" gorm:"size:16;not null;default:UNVERIFIED"`
	IsApproved         bool               `json:"isApproved"`
	IsSuspended        bool               `json:"isSuspended"`
	Bio                string             `json:"bio,omitempty" gorm:"type:text"`
	ProfileImageURL    string             `json:"profileImageUrl,omitempty" gorm:"size:512"`
	CreatedAt          time.Time          `json:"createdAt"`
	UpdatedAt          time.Time          `json:"updatedAt"`
}

// Follow is a directed edge between users, unique per pair.
type Follow struct {
	ID          int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	FollowerID  string    `json:"followerId" gorm:"size:36;not null;uniqueIndex:idx_follow_pair"`
	FollowingID string    `json:"followingId" gorm:"size:36;not null;uniqueIndex:idx_follow_pair"`
	CreatedAt   time.Time `json:"createdAt"`
}
