package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/minierp/console-gateway/internal/core/domain"
	"github.com/minierp/console-gateway/internal/infrastructure/db/memory"
)

const testSecret = "test-secret"

func newSessionService() *SessionService {
	return NewSessionService(memory.NewSessionRepository(), testSecret)
}

func TestSessionService_CreateAndRead(t *testing.T) {
	svc := newSessionService()
	ctx := context.Background()

	token, created, err := svc.Create(ctx, managerIdentity(), "bearer-abc", "")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if token == "" {
		t.Fatalf("expected signed token")
	}
	if created.ID == "" {
		t.Fatalf("expected session ID")
	}

	sess, err := svc.Read(ctx, token)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if sess.Credential != "bearer-abc" {
		t.Fatalf("credential did not round-trip: %q", sess.Credential)
	}
	if sess.Identity.Email != "alice@example.com" {
		t.Fatalf("unexpected identity: %+v", sess.Identity)
	}

	p := sess.Project()
	if p.Role != domain.RoleManager || !p.Verified || !p.Active {
		t.Fatalf("unexpected projection: %+v", p)
	}
}

func TestSessionService_TamperedTokenIsNoSession(t *testing.T) {
	svc := newSessionService()
	ctx := context.Background()

	token, _, err := svc.Create(ctx, managerIdentity(), "bearer-abc", "")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	// Flip the signature; the claims must now be worthless.
	tampered := token[:len(token)-2] + "xx"
	if _, err := svc.Read(ctx, tampered); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("expected ErrNoSession for tampered token, got %v", err)
	}

	if _, err := svc.Read(ctx, "not-a-token"); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("expected ErrNoSession for garbage token, got %v", err)
	}
	if _, err := svc.Read(ctx, ""); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("expected ErrNoSession for empty token, got %v", err)
	}
}

func TestSessionService_WrongKeyIsNoSession(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewSessionRepository()

	forger := NewSessionService(repo, "attacker-key")
	token, _, err := forger.Create(ctx, managerIdentity(), "bearer-abc", "")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	svc := NewSessionService(repo, testSecret)
	if _, err := svc.Read(ctx, token); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("expected ErrNoSession for foreign signature, got %v", err)
	}
}

func TestSessionService_DestroyIsIdempotent(t *testing.T) {
	svc := newSessionService()
	ctx := context.Background()

	token, _, err := svc.Create(ctx, managerIdentity(), "bearer-abc", "")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := svc.Destroy(ctx, token); err != nil {
		t.Fatalf("first Destroy returned error: %v", err)
	}
	if err := svc.Destroy(ctx, token); err != nil {
		t.Fatalf("second Destroy returned error: %v", err)
	}

	if _, err := svc.Read(ctx, token); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("expected ErrNoSession after destroy, got %v", err)
	}
}

func TestSessionService_CreateSupersedesPriorSession(t *testing.T) {
	svc := newSessionService()
	ctx := context.Background()

	first, _, err := svc.Create(ctx, managerIdentity(), "bearer-1", "")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	second, _, err := svc.Create(ctx, managerIdentity(), "bearer-2", first)
	if err != nil {
		t.Fatalf("superseding Create returned error: %v", err)
	}

	if _, err := svc.Read(ctx, first); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("expected first session to be superseded, got %v", err)
	}

	sess, err := svc.Read(ctx, second)
	if err != nil {
		t.Fatalf("Read of superseding session returned error: %v", err)
	}
	if sess.Credential != "bearer-2" {
		t.Fatalf("unexpected credential: %q", sess.Credential)
	}
}

func TestSessionService_ExpireByIDLeavesOneTimeMarker(t *testing.T) {
	svc := newSessionService()
	ctx := context.Background()

	token, created, err := svc.Create(ctx, managerIdentity(), "bearer-abc", "")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := svc.ExpireByID(ctx, created.ID); err != nil {
		t.Fatalf("ExpireByID returned error: %v", err)
	}

	// First read after expiry reports the reason, exactly once.
	if _, err := svc.Read(ctx, token); !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired, got %v", err)
	}
	if _, err := svc.Read(ctx, token); !errors.Is(err, domain.ErrNoSession) {
		t.Fatalf("expected ErrNoSession on second read, got %v", err)
	}
}

func TestSessionService_Refresh(t *testing.T) {
	svc := newSessionService()
	ctx := context.Background()

	token, created, err := svc.Create(ctx, managerIdentity(), "bearer-abc", "")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	refreshed, err := svc.Refresh(ctx, token)
	if err != nil {
		t.Fatalf("Refresh returned error: %v", err)
	}
	if len(strings.Split(refreshed, ".")) != 3 {
		t.Fatalf("refreshed token is not a JWT: %q", refreshed)
	}

	sess, err := svc.Read(ctx, refreshed)
	if err != nil {
		t.Fatalf("Read of refreshed token returned error: %v", err)
	}
	if sess.ID != created.ID {
		t.Fatalf("refresh changed the session ID: %s != %s", sess.ID, created.ID)
	}
}
