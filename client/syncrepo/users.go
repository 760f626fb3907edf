package syncrepo

import (
	"context"

	"github.com/google/uuid"

	"arifmusic/client/remote"
	"arifmusic/client/session"
	"arifmusic/client/store"
	"arifmusic/core/apperr"
	"arifmusic/core/auth"
	"arifmusic/model"
)

// Users handles accounts, auth state and the follow graph.
type Users struct {
	gw    *remote.Gateway
	store *store.Store
	sess  *session.Manager
	conn  Connectivity
}

// NewUsers wires the user repository.
func NewUsers(gw *remote.Gateway, st *store.Store, sess *session.Manager, conn Connectivity) *Users {
	return &Users{gw: gw, store: st, sess: sess, conn: conn}
}

// Register creates an account. The id is assigned here so an account created
// offline keeps the same identity once the server learns about it. The
// password is stored locally as a bcrypt hash for offline login.
func (u *Users) Register(ctx context.Context, email, password, name, fullName string, userType model.UserType) (*model.User, error) {
	if email == "" || password == "" || name == "" || fullName == "" {
		return nil, apperr.New(apperr.Validation, "All fields are required")
	}
	if userType == "" {
		userType = model.UserTypeListener
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		ID:                 uuid.NewString(),
		Email:              email,
		PasswordHash:       hash,
		Name:               name,
		FullName:           fullName,
		UserType:           userType,
		VerificationStatus: model.VerificationUnverified,
	}

	var token string
	if u.conn.Online(ctx) {
		resp, err := u.gw.Register(ctx, remote.RegisterRequest{
			ID:       user.ID,
			Email:    email,
			Password: password,
			Name:     name,
			FullName: fullName,
			UserType: string(userType),
		})
		if err != nil && !offline(err) {
			return nil, err
		}
		if err == nil {
			token = resp.Token
			user.VerificationStatus = resp.VerificationStatus
		}
	}

	if err := u.store.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	if err := u.sess.Save(session.Session{
		Token:    token,
		UserID:   user.ID,
		Email:    user.Email,
		Name:     user.Name,
		UserType: user.UserType,
	}); err != nil {
		return nil, err
	}
	return user, nil
}

// Login authenticates against the server, falling back to the cached
// credential hash when offline. Offline sessions carry no token, so remote
// calls stay unauthenticated until the next online login.
func (u *Users) Login(ctx context.Context, email, password string) (*model.User, error) {
	if u.conn.Online(ctx) {
		resp, err := u.gw.Login(ctx, email, password)
		if err != nil && !offline(err) {
			return nil, err
		}
		if err == nil {
			hash, err := auth.HashPassword(password)
			if err != nil {
				return nil, err
			}
			user := &model.User{
				ID:                 resp.ID,
				Email:              resp.Email,
				PasswordHash:       hash,
				Name:               resp.Name,
				FullName:           resp.FullName,
				UserType:           resp.UserType,
				VerificationStatus: resp.VerificationStatus,
			}
			if err := u.store.SaveUser(ctx, user); err != nil {
				return nil, err
			}
			if err := u.sess.Save(session.Session{
				Token:    resp.Token,
				UserID:   resp.ID,
				Email:    resp.Email,
				Name:     resp.Name,
				UserType: resp.UserType,
			}); err != nil {
				return nil, err
			}
			return user, nil
		}
	}

	user, err := u.store.UserByEmail(ctx, email)
	if err != nil {
		if apperr.Is(err, apperr.NotFound) {
			return nil, apperr.New(apperr.Unauthenticated, "Invalid credentials")
		}
		return nil, err
	}
	if !auth.VerifyPassword(password, user.PasswordHash) {
		return nil, apperr.New(apperr.Unauthenticated, "Invalid credentials")
	}
	if user.IsSuspended {
		return nil, apperr.New(apperr.Unauthorized, "Account suspended")
	}
	if err := u.sess.Save(session.Session{
		UserID:   user.ID,
		Email:    user.Email,
		Name:     user.Name,
		UserType: user.UserType,
	}); err != nil {
		return nil, err
	}
	return user, nil
}

// Logout drops the session. Local data stays for the next login.
func (u *Users) Logout() error {
	return u.sess.Clear()
}

// Profile returns the logged-in user, preferring the server copy.
func (u *Users) Profile(ctx context.Context) (*model.User, error) {
	userID := u.sess.UserID()
	if userID == "" {
		return nil, apperr.New(apperr.Unauthenticated, "Not logged in")
	}

	if u.conn.Online(ctx) {
		user, err := u.gw.Profile(ctx)
		if err != nil && !offline(err) {
			return nil, err
		}
		if err == nil {
			if err := u.store.SaveUser(ctx, user); err != nil {
				return nil, err
			}
			return user, nil
		}
	}
	return u.store.UserByID(ctx, userID)
}

// UpdateProfile edits the logged-in user's profile on the server, then
// mirrors the result. Offline the edit is applied to the cached copy only.
func (u *Users) UpdateProfile(ctx context.Context, req remote.UserUpdateRequest) (*model.User, error) {
	userID := u.sess.UserID()
	if userID == "" {
		return nil, apperr.New(apperr.Unauthenticated, "Not logged in")
	}

	if u.conn.Online(ctx) {
		user, err := u.gw.UpdateProfile(ctx, req)
		if err != nil && !offline(err) {
			return nil, err
		}
		if err == nil {
			if req.Password != nil {
				if user.PasswordHash, err = auth.HashPassword(*req.Password); err != nil {
					return nil, err
				}
			}
			if err := u.store.SaveUser(ctx, user); err != nil {
				return nil, err
			}
			return user, nil
		}
	}

	user, err := u.store.UserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.FullName != nil {
		user.FullName = *req.FullName
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.ProfileImageURL != nil {
		user.ProfileImageURL = *req.ProfileImageURL
	}
	if req.Password != nil {
		if user.PasswordHash, err = auth.HashPassword(*req.Password); err != nil {
			return nil, err
		}
	}
	if err := u.store.SaveUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// UserByID fetches any user, mirroring the server copy when reachable.
func (u *Users) UserByID(ctx context.Context, id string) (*model.User, error) {
	if u.conn.Online(ctx) {
		user, err := u.gw.UserByID(ctx, id)
		if err != nil && !offline(err) {
			return nil, err
		}
		if err == nil {
			if err := u.store.SaveUser(ctx, user); err != nil {
				return nil, err
			}
			return user, nil
		}
	}
	return u.store.UserByID(ctx, id)
}

// DeleteAccount removes the logged-in user's account everywhere and logs out.
func (u *Users) DeleteAccount(ctx context.Context) error {
	userID := u.sess.UserID()
	if userID == "" {
		return apperr.New(apperr.Unauthenticated, "Not logged in")
	}

	if u.conn.Online(ctx) {
		if err := u.gw.DeleteUser(ctx, userID); err != nil && !offline(err) {
			return err
		}
	}
	if err := u.store.DeleteUser(ctx, userID); err != nil && !apperr.Is(err, apperr.NotFound) {
		return err
	}
	return u.sess.Clear()
}

// Follow creates a follow edge from the logged-in user.
func (u *Users) Follow(ctx context.Context, targetID string) error {
	userID := u.sess.UserID()
	if userID == "" {
		return apperr.New(apperr.Unauthenticated, "Not logged in")
	}
	if userID == targetID {
		return apperr.New(apperr.Validation, "Cannot follow yourself")
	}

	if u.conn.Online(ctx) {
		if err := u.gw.Follow(ctx, targetID); err != nil && !offline(err) {
			return err
		}
	}
	err := u.store.Follow(ctx, userID, targetID)
	if apperr.Is(err, apperr.Conflict) {
		// Already mirrored from an earlier sync.
		return nil
	}
	return err
}

// Unfollow removes a follow edge.
func (u *Users) Unfollow(ctx context.Context, targetID string) error {
	userID := u.sess.UserID()
	if userID == "" {
		return apperr.New(apperr.Unauthenticated, "Not logged in")
	}

	if u.conn.Online(ctx) {
		if err := u.gw.Unfollow(ctx, targetID); err != nil && !offline(err) {
			return err
		}
	}
	err := u.store.Unfollow(ctx, userID, targetID)
	if apperr.Is(err, apperr.NotFound) {
		return nil
	}
	return err
}

// Following lists the ids the logged-in user follows, mirroring the server
// edges when reachable.
func (u *Users) Following(ctx context.Context) ([]string, error) {
	userID := u.sess.UserID()
	if userID == "" {
		return nil, apperr.New(apperr.Unauthenticated, "Not logged in")
	}

	if u.conn.Online(ctx) {
		users, err := u.gw.Following(ctx, userID)
		if err != nil && !offline(err) {
			return nil, err
		}
		if err == nil {
			ids := make([]string, 0, len(users))
			for _, followed := range users {
				ids = append(ids, followed.ID)
				if err := u.store.SaveUser(ctx, followed); err != nil {
					return nil, err
				}
				if err := u.store.Follow(ctx, userID, followed.ID); err != nil && !apperr.Is(err, apperr.Conflict) {
					return nil, err
				}
			}
			return ids, nil
		}
	}
	return u.store.Following(ctx, userID)
}
