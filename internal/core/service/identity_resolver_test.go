package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/usermanagement/internal/core/domain"
	"github.com/example/usermanagement/internal/core/token"
)

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", true},
		{"Bearer  abc ", "abc", true},
		{"bearer abc", "", false},
		{"Basic abc", "", false},
		{"Bearer ", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := BearerToken(tc.header)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("BearerToken(%q) = %q, %v; want %q, %v", tc.header, got, ok, tc.want, tc.ok)
		}
	}
}

func TestIdentityResolver_Resolve(t *testing.T) {
	f := newFixture(t, nil)
	a := f.mustCreate(t, "kim@example.com", domain.RoleAdmin)
	tok, _, err := f.auth.Login(context.Background(), a.Email, "password1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	id, outcome := f.resolver.Resolve(context.Background(), "Bearer "+tok)
	if outcome != OutcomeAuthenticated || id == nil {
		t.Fatalf("expected authenticated identity, got %v %v", id, outcome)
	}
	if id.Email != a.Email || id.AccountID != a.ID || !id.HasRole(domain.RoleAdmin) || !id.Active {
		t.Fatalf("unexpected identity %+v", id)
	}

	if id, outcome := f.resolver.Resolve(context.Background(), ""); id != nil || outcome != OutcomeNoToken {
		t.Fatalf("expected anonymous without header, got %v %v", id, outcome)
	}
	if id, outcome := f.resolver.Resolve(context.Background(), "Bearer nope"); id != nil || outcome != OutcomeInvalidToken {
		t.Fatalf("expected anonymous for bad token, got %v %v", id, outcome)
	}
}

func TestIdentityResolver_ReflectsStoreChanges(t *testing.T) {
	f := newFixture(t, nil)
	a := f.mustCreate(t, "lee@example.com", domain.RoleAdmin)
	tok, _, err := f.auth.Login(context.Background(), a.Email, "password1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if _, err := f.repo.SetActive(context.Background(), a.ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	id, outcome := f.resolver.Resolve(context.Background(), "Bearer "+tok)
	if outcome != OutcomeAuthenticated || id.Active {
		t.Fatalf("expected inactive identity, got %+v %v", id, outcome)
	}
	if RequireRole(id, domain.RoleAdmin) != Denied {
		t.Fatalf("inactive identity must be denied by the guard")
	}

	if err := f.repo.Delete(context.Background(), a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if id, outcome := f.resolver.Resolve(context.Background(), "Bearer "+tok); id != nil || outcome != OutcomeUnknownSubject {
		t.Fatalf("expected unknown subject, got %v %v", id, outcome)
	}
}

func TestIdentityResolver_StoreErrorIsAnonymous(t *testing.T) {
	f := newFixture(t, nil)
	tok, err := f.codec.Issue("mia@example.com", tokenExtra())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	f.repo.findErr = errors.New("connection refused")

	if id, outcome := f.resolver.Resolve(context.Background(), "Bearer "+tok); id != nil || outcome != OutcomeStoreError {
		t.Fatalf("expected store error outcome, got %v %v", id, outcome)
	}
}

func TestIdentityResolver_ExpiredToken(t *testing.T) {
	f := newFixture(t, nil)
	a := f.mustCreate(t, "ned@example.com")
	tok, _, err := f.auth.Login(context.Background(), a.Email, "password1")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	f.clock.now = f.clock.now.Add(time.Hour)
	if id, outcome := f.resolver.Resolve(context.Background(), "Bearer "+tok); id != nil || outcome != OutcomeInvalidToken {
		t.Fatalf("expected token expiring exactly now to be rejected, got %v %v", id, outcome)
	}
}

func tokenExtra() token.Extra {
	return token.Extra{Roles: []string{"USER"}}
}
