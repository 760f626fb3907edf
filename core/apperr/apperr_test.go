package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestKindOfWrappedError(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(NotFound, "User not found"))
	if !Is(err, NotFound) {
		t.Fatalf("kind should survive wrapping, got %v", KindOf(err))
	}
}

func TestKindOfPlainError(t *testing.T) {
	if got := KindOf(errors.New("boom")); got != Internal {
		t.Fatalf("plain errors default to Internal, got %v", got)
	}
}

func TestStatusCodes(t *testing.T) {
	cases := []struct {
		kind Kind
		want int
	}{
		{Validation, http.StatusBadRequest},
		{Conflict, http.StatusBadRequest},
		{Unauthenticated, http.StatusUnauthorized},
		{Unauthorized, http.StatusForbidden},
		{NotFound, http.StatusNotFound},
		{Internal, http.StatusInternalServerError},
		{Network, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := StatusCode(New(tc.kind, "x")); got != tc.want {
			t.Errorf("kind %v: expected %d, got %d", tc.kind, tc.want, got)
		}
	}
}

func TestFromStatusRoundTrip(t *testing.T) {
	cases := []struct {
		status int
		want   Kind
	}{
		{http.StatusBadRequest, Conflict},
		{http.StatusUnauthorized, Unauthenticated},
		{http.StatusForbidden, Unauthorized},
		{http.StatusNotFound, NotFound},
		{http.StatusInternalServerError, Internal},
	}
	for _, tc := range cases {
		err := FromStatus(tc.status, "msg")
		if got := KindOf(err); got != tc.want {
			t.Errorf("status %d: expected kind %v, got %v", tc.status, tc.want, got)
		}
		if Message(err) != "msg" {
			t.Errorf("status %d: message lost", tc.status)
		}
	}
}
