package session

import (
	"path/filepath"
	"testing"

	"arifmusic/model"
)

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	m, err := NewManager(path)
	if err != nil {
		t.Fatal(err)
	}
	if m.Current() != nil {
		t.Fatal("fresh manager should be logged out")
	}

	if err := m.Save(Session{
		Token:    "tok",
		UserID:   "u1",
		Email:    "a@example.com",
		Name:     "a",
		UserType: model.UserTypeListener,
	}); err != nil {
		t.Fatal(err)
	}

	reloaded, err := NewManager(path)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Token() != "tok" || reloaded.UserID() != "u1" {
		t.Fatalf("session did not survive reload: %+v", reloaded.Current())
	}
}

func TestClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")

	m, err := NewManager(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Save(Session{UserID: "u1"}); err != nil {
		t.Fatal(err)
	}
	if err := m.Clear(); err != nil {
		t.Fatal(err)
	}
	if m.Current() != nil {
		t.Fatal("clear should log out")
	}

	reloaded, err := NewManager(path)
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Current() != nil {
		t.Fatal("cleared session must not reload")
	}
}

func TestClearWithoutSessionFile(t *testing.T) {
	m, err := NewManager(filepath.Join(t.TempDir(), "session.json"))
	if err != nil {
		t.Fatal(err)
	}
	if err := m.Clear(); err != nil {
		t.Fatalf("clearing a missing file should succeed, got %v", err)
	}
}
