package errors

import (
	stdErrors "errors"
	"net/http"
	"testing"
)

func TestErrorIncludesInternal(t *testing.T) {
	internal := stdErrors.New("boom")
	err := Wrap(internal, "failed")

	if err.Error() != "failed: boom" {
		t.Fatalf("unexpected error string: %s", err.Error())
	}
}

func TestWithInternalCopies(t *testing.T) {
	base := New("TEST", "test", 400)
	with := base.WithInternal(stdErrors.New("oops"))

	if with == base {
		t.Fatal("expected WithInternal to return a copy")
	}

	if base.Internal != nil {
		t.Fatal("expected original error to remain unchanged")
	}

	if with.Internal == nil {
		t.Fatal("expected internal error to be set")
	}
}

func TestFromError(t *testing.T) {
	appErr := ErrNotFound
	if out := FromError(appErr); out != appErr {
		t.Fatal("expected FromError to return the same AppError instance")
	}

	raw := stdErrors.New("raw")
	out := FromError(raw)
	if out.Code != ErrInternalServer.Code {
		t.Fatalf("expected internal server code, got %s", out.Code)
	}
	if out.Internal == nil {
		t.Fatal("expected internal error to be attached")
	}
}

func TestNewBadRequest(t *testing.T) {
	err := NewBadRequest("invalid payload")
	if err.Code != ErrBadRequest.Code {
		t.Fatalf("expected %s, got %s", ErrBadRequest.Code, err.Code)
	}
	if err.Message != "invalid payload" {
		t.Fatalf("unexpected message: %s", err.Message)
	}
	if err.StatusCode != ErrBadRequest.StatusCode {
		t.Fatalf("unexpected status: %d", err.StatusCode)
	}
}

func TestAuthTaxonomyStatusCodes(t *testing.T) {
	cases := []struct {
		err  *AppError
		want int
	}{
		{ErrUnauthorized, http.StatusUnauthorized},
		{ErrInvalidCredentials, http.StatusUnauthorized},
		{ErrSessionExpired, http.StatusUnauthorized},
		{ErrUserInactive, http.StatusUnauthorized},
		{ErrTransient, http.StatusInternalServerError},
		{ErrConflict, http.StatusConflict},
	}

	for _, tc := range cases {
		if tc.err.StatusCode != tc.want {
			t.Fatalf("%s: expected status %d, got %d", tc.err.Code, tc.want, tc.err.StatusCode)
		}
	}
}

func TestErrorsIsThroughWrap(t *testing.T) {
	internal := stdErrors.New("db down")
	err := ErrTransient.WithInternal(internal)

	if !stdErrors.Is(err, internal) {
		t.Fatal("expected wrapped internal error to satisfy errors.Is")
	}
}
