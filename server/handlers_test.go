package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"arifmusic/cache"
	"arifmusic/config"
	"arifmusic/core/auth"
	"arifmusic/model"
)

type testFixture struct {
	handler    *APIHandler
	router     http.Handler
	users      *fakeUserRepo
	playlists  *fakePlaylistRepo
	watchlists *fakeWatchlistRepo
	follows    *fakeFollowRepo
	cfg        *config.Config
}

func newFixture(t *testing.T) *testFixture {
	t.Helper()
	users := newFakeUserRepo()
	playlists := newFakePlaylistRepo()
	watchlists := newFakeWatchlistRepo()
	follows := newFakeFollowRepo()
	cfg := &config.Config{JWTSecret: "test-secret"}

	h := NewAPIHandler(users, playlists, watchlists, follows, cache.NewLibraryCache(nil), cfg)
	return &testFixture{
		handler:    h,
		router:     NewRouter(h),
		users:      users,
		playlists:  playlists,
		watchlists: watchlists,
		follows:    follows,
		cfg:        cfg,
	}
}

func (f *testFixture) seedUser(t *testing.T, id string, userType model.UserType) *model.User {
	t.Helper()
	hash, err := auth.HashPassword("secret")
	if err != nil {
		t.Fatal(err)
	}
	user := &model.User{
		ID:                 id,
		Email:              id + "@example.com",
		PasswordHash:       hash,
		Name:               id,
		FullName:           "User " + id,
		UserType:           userType,
		VerificationStatus: model.VerificationUnverified,
	}
	f.users.users[id] = user
	return user
}

func (f *testFixture) tokenFor(t *testing.T, user *model.User) string {
	t.Helper()
	token, err := auth.GenerateToken([]byte(f.cfg.JWTSecret), user)
	if err != nil {
		t.Fatal(err)
	}
	return token
}

func (f *testFixture) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp messageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode message body: %v", err)
	}
	return resp.Message
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/users/register", "", RegisterRequest{
		ID: "u1", Email: "a@example.com", Password: "secret",
		Name: "a", FullName: "A Person", UserType: "LISTENER",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	var created AuthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatal(err)
	}
	if created.Token == "" {
		t.Fatal("registration should return a token")
	}

	rec = f.do(t, http.MethodPost, "/api/users/login", "", LoginRequest{Email: "a@example.com", Password: "secret"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "u1", model.UserTypeListener)

	rec := f.do(t, http.MethodPost, "/api/users/register", "", RegisterRequest{
		ID: "u2", Email: "u1@example.com", Password: "other",
		Name: "b", FullName: "B Person", UserType: "LISTENER",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if msg := decodeMessage(t, rec); msg != "User already exists" {
		t.Fatalf("unexpected message %q", msg)
	}
	if len(f.users.users) != 1 {
		t.Fatal("a rejected registration must not create a user")
	}
}

func TestRegisterMissingFields(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodPost, "/api/users/register", "", RegisterRequest{Email: "a@example.com"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "u1", model.UserTypeListener)

	rec := f.do(t, http.MethodPost, "/api/users/login", "", LoginRequest{Email: "u1@example.com", Password: "wrong"})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
	if msg := decodeMessage(t, rec); msg != "Invalid credentials" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestLoginSuspendedUser(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser(t, "u1", model.UserTypeListener)
	user.IsSuspended = true

	rec := f.do(t, http.MethodPost, "/api/users/login", "", LoginRequest{Email: "u1@example.com", Password: "secret"})
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestAuthMiddlewareRejectsBadTokens(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/users/profile", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing header: expected 401, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodGet, "/api/users/profile", "garbage", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("garbage token: expected 401, got %d", rec.Code)
	}
}

func TestDeleteUserRequiresOwnerOrAdmin(t *testing.T) {
	f := newFixture(t)
	f.seedUser(t, "owner", model.UserTypeListener)
	other := f.seedUser(t, "other", model.UserTypeListener)
	admin := f.seedUser(t, "admin", model.UserTypeAdmin)

	rec := f.do(t, http.MethodDelete, "/api/users/owner", f.tokenFor(t, other), nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
	if _, ok := f.users.users["owner"]; !ok {
		t.Fatal("a rejected delete must not remove the user")
	}

	rec = f.do(t, http.MethodDelete, "/api/users/owner", f.tokenFor(t, admin), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("admin delete: expected 200, got %d", rec.Code)
	}
}

func TestFollowSelfRejected(t *testing.T) {
	f := newFixture(t)
	user := f.seedUser(t, "u1", model.UserTypeListener)

	rec := f.do(t, http.MethodPost, "/api/users/u1/follow", f.tokenFor(t, user), nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestFollowAndUnfollow(t *testing.T) {
	f := newFixture(t)
	follower := f.seedUser(t, "u1", model.UserTypeListener)
	f.seedUser(t, "u2", model.UserTypeArtist)
	token := f.tokenFor(t, follower)

	rec := f.do(t, http.MethodPost, "/api/users/u2/follow", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodPost, "/api/users/u2/follow", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("double follow: expected 400, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodDelete, "/api/users/u2/follow", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unfollow: expected 200, got %d", rec.Code)
	}

	rec = f.do(t, http.MethodDelete, "/api/users/u2/follow", token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("double unfollow: expected 404, got %d", rec.Code)
	}
}

func TestAdminEndpointsRejectNonAdmins(t *testing.T) {
	f := newFixture(t)
	listener := f.seedUser(t, "u1", model.UserTypeListener)
	f.seedUser(t, "u2", model.UserTypeArtist)

	rec := f.do(t, http.MethodPut, "/api/users/u2/approve?approved=true", f.tokenFor(t, listener), nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestVerificationFlow(t *testing.T) {
	f := newFixture(t)
	artist := f.seedUser(t, "artist", model.UserTypeArtist)
	admin := f.seedUser(t, "admin", model.UserTypeAdmin)

	rec := f.do(t, http.MethodPost, "/api/users/artist/verification-request", f.tokenFor(t, artist), nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if f.users.users["artist"].VerificationStatus != model.VerificationPending {
		t.Fatal("verification request should move status to PENDING")
	}

	rec = f.do(t, http.MethodPut, "/api/users/artist/verification", f.tokenFor(t, admin),
		map[string]string{"status": "VERIFIED"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if f.users.users["artist"].VerificationStatus != model.VerificationVerified {
		t.Fatal("admin update should set status to VERIFIED")
	}
}
