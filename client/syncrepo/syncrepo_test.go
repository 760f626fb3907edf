package syncrepo

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"arifmusic/client/remote"
	"arifmusic/client/session"
	"arifmusic/client/store"
	"arifmusic/core/apperr"
	"arifmusic/core/auth"
	"arifmusic/model"
)

type testEnv struct {
	sess    *session.Manager
	store   *store.Store
	users   *Users
	music   *Music
	library *Library
}

// newTestEnv wires the sync stack against the given server URL. An empty URL
// plus StaticConnectivity(false) simulates a fully offline device.
func newTestEnv(t *testing.T, serverURL string, conn Connectivity) *testEnv {
	t.Helper()
	dir := t.TempDir()

	sess, err := session.NewManager(filepath.Join(dir, "session.json"))
	if err != nil {
		t.Fatal(err)
	}
	st, err := store.Open(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { st.Close() })

	gw := remote.NewGateway(serverURL, sess)
	return &testEnv{
		sess:    sess,
		store:   st,
		users:   NewUsers(gw, st, sess, conn),
		music:   NewMusic(st, sess),
		library: NewLibrary(gw, st, sess, conn),
	}
}

func loginOffline(t *testing.T, env *testEnv, userType model.UserType) {
	t.Helper()
	if err := env.sess.Save(session.Session{
		UserID:   "u1",
		Email:    "a@example.com",
		Name:     "a",
		UserType: userType,
	}); err != nil {
		t.Fatal(err)
	}
}

func TestRegisterOnlineMirrorsLocally(t *testing.T) {
	var gotRegister remote.RegisterRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/users/register" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotRegister); err != nil {
			t.Errorf("failed to decode register body: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(remote.AuthResponse{
			ID:       gotRegister.ID,
			Email:    gotRegister.Email,
			Name:     gotRegister.Name,
			FullName: gotRegister.FullName,
			UserType: model.UserType(gotRegister.UserType),
			Token:    "tok-123",
		})
	}))
	defer srv.Close()

	env := newTestEnv(t, srv.URL, StaticConnectivity(true))
	ctx := context.Background()

	user, err := env.users.Register(ctx, "a@example.com", "secret", "a", "A Person", model.UserTypeListener)
	if err != nil {
		t.Fatal(err)
	}
	if gotRegister.ID != user.ID {
		t.Fatalf("server must receive the client-assigned id, got %q want %q", gotRegister.ID, user.ID)
	}
	if env.sess.Token() != "tok-123" {
		t.Fatalf("session should hold the server token, got %q", env.sess.Token())
	}

	cached, err := env.store.UserByEmail(ctx, "a@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if cached.ID != user.ID {
		t.Fatalf("local mirror id mismatch: %s vs %s", cached.ID, user.ID)
	}
	if !auth.VerifyPassword("secret", cached.PasswordHash) {
		t.Fatal("local mirror should hold a verifiable password hash")
	}
}

func TestRegisterDuplicateSurfacesConflict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"message": "User already exists"})
	}))
	defer srv.Close()

	env := newTestEnv(t, srv.URL, StaticConnectivity(true))

	_, err := env.users.Register(context.Background(), "a@example.com", "secret", "a", "A", model.UserTypeListener)
	if !apperr.Is(err, apperr.Conflict) {
		t.Fatalf("expected Conflict, got %v", err)
	}
	if env.sess.UserID() != "" {
		t.Fatal("a rejected registration must not log in")
	}
}

func TestRegisterOfflineCreatesLocalAccount(t *testing.T) {
	env := newTestEnv(t, "http://127.0.0.1:1", StaticConnectivity(false))
	ctx := context.Background()

	user, err := env.users.Register(ctx, "a@example.com", "secret", "a", "A", model.UserTypeListener)
	if err != nil {
		t.Fatal(err)
	}
	if env.sess.UserID() != user.ID {
		t.Fatal("offline registration should open a session")
	}
	if env.sess.Token() != "" {
		t.Fatal("offline sessions must carry no token")
	}
}

func TestLoginFallsBackToLocalCredentials(t *testing.T) {
	env := newTestEnv(t, "http://127.0.0.1:1", StaticConnectivity(false))
	ctx := context.Background()

	if _, err := env.users.Register(ctx, "a@example.com", "secret", "a", "A", model.UserTypeListener); err != nil {
		t.Fatal(err)
	}
	if err := env.users.Logout(); err != nil {
		t.Fatal(err)
	}

	if _, err := env.users.Login(ctx, "a@example.com", "wrong"); !apperr.Is(err, apperr.Unauthenticated) {
		t.Fatalf("bad password should be Unauthenticated, got %v", err)
	}

	user, err := env.users.Login(ctx, "a@example.com", "secret")
	if err != nil {
		t.Fatal(err)
	}
	if env.sess.UserID() != user.ID {
		t.Fatal("offline login should open a session")
	}
}

func TestCreatePlaylistOfflineIsRetrievable(t *testing.T) {
	env := newTestEnv(t, "http://127.0.0.1:1", StaticConnectivity(false))
	ctx := context.Background()
	loginOffline(t, env, model.UserTypeListener)

	created, err := env.library.CreatePlaylist(ctx, "Road Trip", "loud ones", true)
	if err != nil {
		t.Fatal(err)
	}

	lists, err := env.library.Playlists(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(lists) != 1 || lists[0].ID != created.ID {
		t.Fatalf("offline creation should be listed, got %+v", lists)
	}
}

func TestAddPlaylistSongRequiresKnownTrack(t *testing.T) {
	env := newTestEnv(t, "http://127.0.0.1:1", StaticConnectivity(false))
	ctx := context.Background()
	loginOffline(t, env, model.UserTypeListener)

	p, err := env.library.CreatePlaylist(ctx, "Mix", "", true)
	if err != nil {
		t.Fatal(err)
	}

	_, err = env.library.AddPlaylistSong(ctx, p.ID, "ghost")
	if !apperr.Is(err, apperr.NotFound) {
		t.Fatalf("unknown track should be NotFound, got %v", err)
	}
}

func TestAddPlaylistSongDuplicateConflicts(t *testing.T) {
	env := newTestEnv(t, "http://127.0.0.1:1", StaticConnectivity(false))
	ctx := context.Background()
	loginOffline(t, env, model.UserTypeArtist)

	track, err := env.music.Add(ctx, "Song", "/music/song.mp3", "", "", 0)
	if err != nil {
		t.Fatal(err)
	}
	p, err := env.library.CreatePlaylist(ctx, "Mix", "", true)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := env.library.AddPlaylistSong(ctx, p.ID, track.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := env.library.AddPlaylistSong(ctx, p.ID, track.ID); !apperr.Is(err, apperr.Conflict) {
		t.Fatalf("duplicate add should conflict, got %v", err)
	}
}

func TestToggleFavoriteOffline(t *testing.T) {
	env := newTestEnv(t, "http://127.0.0.1:1", StaticConnectivity(false))
	ctx := context.Background()
	loginOffline(t, env, model.UserTypeArtist)

	track, err := env.music.Add(ctx, "Song", "/music/song.mp3", "", "", 0)
	if err != nil {
		t.Fatal(err)
	}

	fav, err := env.library.ToggleFavorite(ctx, track.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !fav {
		t.Fatal("first toggle should favorite")
	}

	isFav, err := env.library.IsFavorite(ctx, track.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !isFav {
		t.Fatal("track should be favorited")
	}

	fav, err = env.library.ToggleFavorite(ctx, track.ID)
	if err != nil {
		t.Fatal(err)
	}
	if fav {
		t.Fatal("second toggle should unfavorite")
	}
}

func TestMusicUploadRequiresArtist(t *testing.T) {
	env := newTestEnv(t, "http://127.0.0.1:1", StaticConnectivity(false))
	ctx := context.Background()
	loginOffline(t, env, model.UserTypeListener)

	_, err := env.music.Add(ctx, "Song", "/music/song.mp3", "", "", 0)
	if !apperr.Is(err, apperr.Unauthorized) {
		t.Fatalf("listeners must not upload, got %v", err)
	}
}

func TestModerationFlow(t *testing.T) {
	env := newTestEnv(t, "http://127.0.0.1:1", StaticConnectivity(false))
	ctx := context.Background()
	loginOffline(t, env, model.UserTypeArtist)

	track, err := env.music.Add(ctx, "Song", "/music/song.mp3", "", "", 0)
	if err != nil {
		t.Fatal(err)
	}

	all, err := env.music.All(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 0 {
		t.Fatal("pending tracks must not be listed publicly")
	}

	if err := env.music.Approve(ctx, track.ID); !apperr.Is(err, apperr.Unauthorized) {
		t.Fatalf("artists must not approve, got %v", err)
	}

	loginOffline(t, env, model.UserTypeAdmin)
	if err := env.music.Approve(ctx, track.ID); err != nil {
		t.Fatal(err)
	}

	all, err = env.music.All(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 1 {
		t.Fatalf("approved track should be listed, got %d", len(all))
	}
}

func TestPlaylistsMirrorServerCopy(t *testing.T) {
	serverList := []*model.Playlist{
		{ID: "p1", Name: "Server Mix", CreatedBy: "u1", IsPublic: true, Songs: []string{"m1", "m2"}},
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/playlists" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode(serverList)
	}))
	defer srv.Close()

	env := newTestEnv(t, srv.URL, StaticConnectivity(true))
	ctx := context.Background()
	loginOffline(t, env, model.UserTypeListener)

	if _, err := env.library.Playlists(ctx); err != nil {
		t.Fatal(err)
	}

	cached, err := env.store.PlaylistByID(ctx, "p1")
	if err != nil {
		t.Fatal(err)
	}
	if len(cached.Songs) != 2 || cached.Songs[0] != "m1" {
		t.Fatalf("server playlist should be mirrored with songs, got %v", cached.Songs)
	}
}
