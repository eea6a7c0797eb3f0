package sqlstore

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/peerhub/internal/apperror"
	"github.com/sakif/peerhub/internal/model"
)

// =========================================================================
// CREATE TESTS
// =========================================================================

func TestCreateUser(t *testing.T) {
	s := newTestStore(t)
	u := createTestUser(t, s, "ada")

	if u.ID == "" {
		t.Error("CreateUser() did not set ID")
	}
	if u.CreatedAt.IsZero() || u.UpdatedAt.IsZero() {
		t.Error("CreateUser() did not set timestamps")
	}
}

func TestCreateUser_DefaultsProvider(t *testing.T) {
	s := newTestStore(t)
	u := &model.User{Username: "bob", Email: "bob@example.com"}
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if u.Provider != model.ProviderLocal {
		t.Errorf("Provider = %q, want local", u.Provider)
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	createTestUser(t, s, "ada")

	dup := &model.User{Username: "other", Email: "ada@example.com", PasswordHash: "x"}
	err := s.CreateUser(context.Background(), dup)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("CreateUser() error = %v, want ErrConflict", err)
	}
}

// =========================================================================
// READ TESTS
// =========================================================================

func TestGetUserByID(t *testing.T) {
	s := newTestStore(t)
	created := createTestUser(t, s, "ada")

	got, err := s.GetUserByID(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if got.Username != "ada" || got.Email != "ada@example.com" {
		t.Errorf("GetUserByID() = %+v", got)
	}
	if got.PasswordHash != created.PasswordHash {
		t.Errorf("PasswordHash = %q, want %q", got.PasswordHash, created.PasswordHash)
	}
	if got.Provider != model.ProviderLocal {
		t.Errorf("Provider = %q, want local", got.Provider)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.GetUserByID(ctx, "missing"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByID() error = %v, want ErrNotFound", err)
	}
	if _, err := s.GetUserByEmail(ctx, "missing@example.com"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("GetUserByEmail() error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// UPDATE TESTS
// =========================================================================

func TestUpdateProfile(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := createTestUser(t, s, "ada")

	u.Username = "Ada L."
	u.Bio = "first programmer"
	u.ProfilePic = "https://cdn.example/ada.png"
	if err := s.UpdateProfile(ctx, u); err != nil {
		t.Fatalf("UpdateProfile() error = %v", err)
	}

	got, err := s.GetUserByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if got.Username != "Ada L." || got.Bio != "first programmer" || got.ProfilePic != "https://cdn.example/ada.png" {
		t.Errorf("profile not persisted: %+v", got)
	}
	if got.Email != "ada@example.com" {
		t.Errorf("UpdateProfile() must not change email, got %q", got.Email)
	}
}

func TestUpdateProfile_NotFound(t *testing.T) {
	s := newTestStore(t)
	err := s.UpdateProfile(context.Background(), &model.User{ID: "missing", Username: "x"})
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("UpdateProfile() error = %v, want ErrNotFound", err)
	}
}
