package server

import (
	"context"
	"net/http"
	"strings"

	"arifmusic/core/apperr"
	"arifmusic/core/auth"
	"arifmusic/logger"
	"arifmusic/model"
)

// RegisterRequest is the registration request body. The id is assigned by the
// client and immutable afterwards.
type RegisterRequest struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	FullName string `json:"fullName"`
	UserType string `json:"userType"`
}

// LoginRequest is the login request body.
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

// RegisterHandler handles user registration.
func (h *APIHandler) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if req.ID == "" || req.Email == "" || req.Password == "" || req.Name == "" || req.FullName == "" || req.UserType == "" {
		respondError(w, apperr.New(apperr.Validation, "Please provide all required fields"))
		return
	}

	if _, err := h.userRepo.GetByEmail(r.Context(), req.Email); err == nil {
		respondError(w, apperr.New(apperr.Conflict, "User already exists"))
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondError(w, err)
		return
	}

	user := &model.User{
		ID:                 req.ID,
		Email:              req.Email,
		PasswordHash:       hash,
		Name:               req.Name,
		FullName:           req.FullName,
		UserType:           model.UserType(req.UserType),
		VerificationStatus: model.VerificationUnverified,
	}
	if err := h.userRepo.Create(r.Context(), user); err != nil {
		respondError(w, err)
		return
	}

	token, err := auth.GenerateToken([]byte(h.cfg.JWTSecret), user)
	if err != nil {
		respondError(w, err)
		return
	}

	logger.Info("user registered", logger.String("email", user.Email), logger.String("userType", string(user.UserType)))
	respondJSON(w, http.StatusCreated, AuthResponse{
		ID:                 user.ID,
		Email:              user.Email,
		Name:               user.Name,
		FullName:           user.FullName,
		UserType:           user.UserType,
		VerificationStatus: user.VerificationStatus,
		Token:              token,
	})
}

// LoginHandler handles user login.
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	user, err := h.userRepo.GetByEmail(r.Context(), req.Email)
	if err != nil || !auth.VerifyPassword(req.Password, user.PasswordHash) {
		logger.Warn("login failed", logger.String("email", req.Email))
		respondError(w, apperr.New(apperr.Unauthenticated, "Invalid credentials"))
		return
	}

	if user.IsSuspended {
		respondError(w, apperr.New(apperr.Unauthorized, "Account suspended"))
		return
	}

	token, err := auth.GenerateToken([]byte(h.cfg.JWTSecret), user)
	if err != nil {
		respondError(w, err)
		return
	}

	logger.Info("login successful", logger.String("email", user.Email))
	respondJSON(w, http.StatusOK, AuthResponse{
		ID:                 user.ID,
		Email:              user.Email,
		Name:               user.Name,
		FullName:           user.FullName,
		UserType:           user.UserType,
		VerificationStatus: user.VerificationStatus,
		Token:              token,
	})
}

// AuthMiddleware checks for a valid bearer token and stashes the caller's id
// and type in the request context.
func (h *APIHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			respondError(w, apperr.New(apperr.Unauthenticated, "Authorization header is required"))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			respondError(w, apperr.New(apperr.Unauthenticated, "Invalid authorization header format"))
			return
		}

		claims, err := auth.ParseToken([]byte(h.cfg.JWTSecret), parts[1])
		if err != nil {
			respondError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), ctxUserID, claims.Subject)
		ctx = context.WithValue(ctx, ctxUserType, claims.UserType)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// AdminMiddleware rejects non-admin callers. Must run inside AuthMiddleware.
func (h *APIHandler) AdminMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !isAdmin(r.Context()) {
			respondError(w, apperr.New(apperr.Unauthorized, "Admin access required"))
			return
		}
		next.ServeHTTP(w, r)
	}
}
