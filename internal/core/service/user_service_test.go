package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/catattrans/umkm-api/internal/core/domain"
	"github.com/catattrans/umkm-api/internal/core/ports"
)

func TestUserService_Create_DefaultsToKasir(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, zerolog.Nop())

	user, err := svc.Create(context.Background(), ports.CreateUserInput{
		Name:     "Budi",
		Username: "budi",
		Whatsapp: "+6281234567890",
		Password: "awal1234",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if user.Role != domain.RoleKasir {
		t.Fatalf("role = %q, want KASIR", user.Role)
	}
	if user.PasswordChanged {
		t.Fatalf("new accounts must require a first-login password change")
	}
	if user.PasswordHash == "awal1234" {
		t.Fatalf("password stored in plaintext")
	}
}

func TestUserService_Create_Validation(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, zerolog.Nop())

	cases := []ports.CreateUserInput{
		{Name: "", Username: "x", Password: "y"},
		{Name: "X", Username: "", Password: "y"},
		{Name: "X", Username: "x", Password: ""},
		{Name: "X", Username: "x", Password: "y", Role: "SUPERVISOR"},
	}
	for i, input := range cases {
		if _, err := svc.Create(context.Background(), input); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Errorf("case %d: expected ErrInvalidCredentials, got %v", i, err)
		}
	}
}

func TestUserService_Create_DuplicateUsername(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, zerolog.Nop())

	input := ports.CreateUserInput{Name: "Budi", Username: "budi", Password: "awal1234"}
	if _, err := svc.Create(context.Background(), input); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := svc.Create(context.Background(), input); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestUserService_Update_BlankPasswordUnchanged(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, zerolog.Nop())

	user, err := svc.Create(context.Background(), ports.CreateUserInput{Name: "Budi", Username: "budi", Password: "awal1234"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	originalHash := user.PasswordHash

	updated, err := svc.Update(context.Background(), ports.UpdateUserInput{
		ID:       user.ID,
		Name:     "Budi Santoso",
		Password: "   ",
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Name != "Budi Santoso" {
		t.Fatalf("name not updated: %q", updated.Name)
	}
	if updated.PasswordHash != originalHash {
		t.Fatalf("blank password must leave the hash untouched")
	}

	// A real password reset re-requires the first-login change.
	updated, err = svc.Update(context.Background(), ports.UpdateUserInput{ID: user.ID, Password: "reset9876"})
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if updated.PasswordChanged {
		t.Fatalf("password reset should clear PasswordChanged")
	}
	if bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("reset9876")) != nil {
		t.Fatalf("new hash does not match reset password")
	}
}

func TestUserService_DeleteThenListExcludes(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewUserService(repo, zerolog.Nop())

	user, _ := svc.Create(context.Background(), ports.CreateUserInput{Name: "Budi", Username: "budi", Password: "awal1234"})
	if err := svc.Delete(context.Background(), user.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	users, err := svc.List(context.Background(), ports.UserFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 0 {
		t.Fatalf("soft-deleted user still listed: %+v", users)
	}
	if err := svc.Delete(context.Background(), user.ID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("double delete: %v", err)
	}
}
