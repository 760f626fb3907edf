package server

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"arifmusic/core/apperr"
	"arifmusic/core/auth"
	"arifmusic/model"
)

// UserUpdateRequest is the profile update body. Nil fields are left as-is.
type UserUpdateRequest struct {
	FullName        *string `json:"fullName"`
	Bio             *string `json:"bio"`
	Password        *string `json:"password"`
	ProfileImageURL *string `json:"profileImageUrl"`
}

// GetProfileHandler returns the caller's own user record.
func (h *APIHandler) GetProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	user, err := h.userRepo.GetByID(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// UpdateProfileHandler updates the caller's own profile.
func (h *APIHandler) UpdateProfileHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	var req UserUpdateRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	user, err := h.userRepo.GetByID(r.Context(), userID)
	if err != nil {
		respondError(w, err)
		return
	}

	if req.FullName != nil && *req.FullName != "" {
		user.FullName = *req.FullName
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.ProfileImageURL != nil && *req.ProfileImageURL != "" {
		user.ProfileImageURL = *req.ProfileImageURL
	}
	if req.Password != nil && *req.Password != "" {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			respondError(w, err)
			return
		}
		user.PasswordHash = hash
	}

	if err := h.userRepo.Update(r.Context(), user); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// GetUserHandler returns a user by id.
func (h *APIHandler) GetUserHandler(w http.ResponseWriter, r *http.Request) {
	user, err := h.userRepo.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// GetUserByEmailHandler returns a user by email.
func (h *APIHandler) GetUserByEmailHandler(w http.ResponseWriter, r *http.Request) {
	user, err := h.userRepo.GetByEmail(r.Context(), mux.Vars(r)["email"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// UserExistsHandler reports whether an email is already registered. Used by
// the client before attempting registration; no auth.
func (h *APIHandler) UserExistsHandler(w http.ResponseWriter, r *http.Request) {
	_, err := h.userRepo.GetByEmail(r.Context(), mux.Vars(r)["email"])
	respondJSON(w, http.StatusOK, map[string]bool{"exists": err == nil})
}

// ResetPasswordHandler sets a new password for the given email. No auth,
// mirroring the upstream API contract.
func (h *APIHandler) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	password := r.URL.Query().Get("password")
	if email == "" || password == "" {
		respondError(w, apperr.New(apperr.Validation, "Email and password are required"))
		return
	}

	user, err := h.userRepo.GetByEmail(r.Context(), email)
	if err != nil {
		respondError(w, err)
		return
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		respondError(w, err)
		return
	}
	user.PasswordHash = hash
	if err := h.userRepo.Update(r.Context(), user); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, messageResponse{Message: "Password reset successful"})
}

// DeleteUserHandler removes a user. Only the user themselves or an admin may
// do this.
func (h *APIHandler) DeleteUserHandler(w http.ResponseWriter, r *http.Request) {
	targetID := mux.Vars(r)["id"]
	if !canMutate(r.Context(), targetID) {
		respondError(w, apperr.New(apperr.Unauthorized, "Not authorized to delete this user"))
		return
	}
	if err := h.userRepo.Delete(r.Context(), targetID); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, messageResponse{Message: "User removed"})
}

// UpdateUserTypeHandler changes a user's type. Admin only (enforced by
// middleware).
func (h *APIHandler) UpdateUserTypeHandler(w http.ResponseWriter, r *http.Request) {
	user, err := h.userRepo.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	newType := model.UserType(r.URL.Query().Get("type"))
	switch newType {
	case model.UserTypeListener, model.UserTypeArtist, model.UserTypeAdmin, model.UserTypeGuest:
	default:
		respondError(w, apperr.New(apperr.Validation, "Unknown user type"))
		return
	}
	user.UserType = newType
	if err := h.userRepo.Update(r.Context(), user); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// ApproveArtistHandler flips an artist's approval flag. Admin only.
func (h *APIHandler) ApproveArtistHandler(w http.ResponseWriter, r *http.Request) {
	user, err := h.userRepo.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	user.IsApproved = r.URL.Query().Get("approved") == "true"
	if err := h.userRepo.Update(r.Context(), user); err != nil {
		respondError(w, err)
		return
	}
	verb := "unapproved"
	if user.IsApproved {
		verb = "approved"
	}
	respondJSON(w, http.StatusOK, messageResponse{Message: fmt.Sprintf("Artist %s successfully", verb)})
}

// SuspendUserHandler flips a user's suspension flag. Admin only.
func (h *APIHandler) SuspendUserHandler(w http.ResponseWriter, r *http.Request) {
	user, err := h.userRepo.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	user.IsSuspended = r.URL.Query().Get("suspended") == "true"
	if err := h.userRepo.Update(r.Context(), user); err != nil {
		respondError(w, err)
		return
	}
	verb := "unsuspended"
	if user.IsSuspended {
		verb = "suspended"
	}
	respondJSON(w, http.StatusOK, messageResponse{Message: fmt.Sprintf("User %s successfully", verb)})
}

// SubmitVerificationHandler lets an artist request verification.
func (h *APIHandler) SubmitVerificationHandler(w http.ResponseWriter, r *http.Request) {
	targetID := mux.Vars(r)["id"]
	if !canMutate(r.Context(), targetID) {
		respondError(w, apperr.New(apperr.Unauthorized, "Not authorized"))
		return
	}
	user, err := h.userRepo.GetByID(r.Context(), targetID)
	if err != nil {
		respondError(w, err)
		return
	}
	if user.UserType != model.UserTypeArtist {
		respondError(w, apperr.New(apperr.Validation, "Only artists can request verification"))
		return
	}
	user.VerificationStatus = model.VerificationPending
	if err := h.userRepo.Update(r.Context(), user); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, messageResponse{Message: "Verification request submitted"})
}

// GetVerificationHandler returns a user's verification status.
func (h *APIHandler) GetVerificationHandler(w http.ResponseWriter, r *http.Request) {
	targetID := mux.Vars(r)["id"]
	if !canMutate(r.Context(), targetID) {
		respondError(w, apperr.New(apperr.Unauthorized, "Not authorized"))
		return
	}
	user, err := h.userRepo.GetByID(r.Context(), targetID)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]model.VerificationStatus{"status": user.VerificationStatus})
}

// UpdateVerificationHandler sets a user's verification status. Admin only.
func (h *APIHandler) UpdateVerificationHandler(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Status model.VerificationStatus `json:"status"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	user, err := h.userRepo.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	user.VerificationStatus = req.Status
	if err := h.userRepo.Update(r.Context(), user); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, messageResponse{Message: "Verification status updated"})
}

// FollowHandler creates a follow edge from the caller to the target user.
func (h *APIHandler) FollowHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	targetID := mux.Vars(r)["id"]
	if targetID == userID {
		respondError(w, apperr.New(apperr.Validation, "Cannot follow yourself"))
		return
	}
	if _, err := h.userRepo.GetByID(r.Context(), targetID); err != nil {
		respondError(w, err)
		return
	}
	if err := h.followRepo.Create(r.Context(), userID, targetID); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, messageResponse{Message: "Now following"})
}

// UnfollowHandler removes a follow edge.
func (h *APIHandler) UnfollowHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserIDFromContext(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	if err := h.followRepo.Delete(r.Context(), userID, mux.Vars(r)["id"]); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, messageResponse{Message: "Unfollowed"})
}

// FollowersHandler lists users following the target.
func (h *APIHandler) FollowersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.followRepo.Followers(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}

// FollowingHandler lists users the target follows.
func (h *APIHandler) FollowingHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.followRepo.Following(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, users)
}
