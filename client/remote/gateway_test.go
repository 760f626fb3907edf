package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"arifmusic/client/session"
	"arifmusic/core/apperr"
	"arifmusic/model"
)

func newTestSession(t *testing.T, token string) *session.Manager {
	t.Helper()
	sess, err := session.NewManager(filepath.Join(t.TempDir(), "session.json"))
	if err != nil {
		t.Fatal(err)
	}
	if token != "" {
		if err := sess.Save(session.Session{Token: token, UserID: "u1"}); err != nil {
			t.Fatal(err)
		}
	}
	return sess
}

func TestGatewaySendsBearerToken(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(&model.User{ID: "u1"})
	}))
	defer srv.Close()

	gw := NewGateway(srv.URL, newTestSession(t, "tok-123"))
	if _, err := gw.Profile(context.Background()); err != nil {
		t.Fatal(err)
	}
	if gotAuth != "Bearer tok-123" {
		t.Fatalf("expected bearer header, got %q", gotAuth)
	}
}

func TestGatewayOmitsAuthWhenLoggedOut(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(&model.User{ID: "u1"})
	}))
	defer srv.Close()

	gw := NewGateway(srv.URL, newTestSession(t, ""))
	if _, err := gw.UserByID(context.Background(), "u1"); err != nil {
		t.Fatal(err)
	}
	if gotAuth != "" {
		t.Fatalf("logged-out requests must not carry auth, got %q", gotAuth)
	}
}

func TestGatewayMapsErrorBodies(t *testing.T) {
	cases := []struct {
		status int
		kind   apperr.Kind
	}{
		{http.StatusBadRequest, apperr.Conflict},
		{http.StatusUnauthorized, apperr.Unauthenticated},
		{http.StatusForbidden, apperr.Unauthorized},
		{http.StatusNotFound, apperr.NotFound},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			json.NewEncoder(w).Encode(map[string]string{"message": "nope"})
		}))

		gw := NewGateway(srv.URL, newTestSession(t, ""))
		_, err := gw.UserByID(context.Background(), "u1")
		if !apperr.Is(err, tc.kind) {
			t.Errorf("status %d: expected kind %v, got %v", tc.status, tc.kind, err)
		}
		if apperr.Message(err) != "nope" {
			t.Errorf("status %d: expected server message, got %q", tc.status, apperr.Message(err))
		}
		srv.Close()
	}
}

func TestGatewayTagsTransportFailures(t *testing.T) {
	gw := NewGateway("http://127.0.0.1:1", newTestSession(t, ""))
	_, err := gw.UserByID(context.Background(), "u1")
	if !apperr.Is(err, apperr.Network) {
		t.Fatalf("expected Network error, got %v", err)
	}
}
