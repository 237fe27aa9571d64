package mongo

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/example/usermanagement/internal/core/domain"
	"github.com/example/usermanagement/internal/core/ports"
)

func TestListFilter(t *testing.T) {
	active := true
	lo, hi := 18, 65

	got := listFilter(ports.ListAccountsFilter{Active: &active, Name: "a.b", MinAge: &lo, MaxAge: &hi})

	if got["active"] != true {
		t.Fatalf("expected active filter, got %v", got["active"])
	}
	re, ok := got["name"].(primitive.Regex)
	if !ok || re.Pattern != `a\.b` || re.Options != "i" {
		t.Fatalf("expected escaped case-insensitive regex, got %#v", got["name"])
	}
	age, ok := got["age"].(bson.M)
	if !ok || age["$gte"] != 18 || age["$lte"] != 65 {
		t.Fatalf("unexpected age filter %#v", got["age"])
	}

	if empty := listFilter(ports.ListAccountsFilter{}); len(empty) != 0 {
		t.Fatalf("expected empty filter, got %v", empty)
	}
}

func TestAccountDocument_RoundTrip(t *testing.T) {
	age := 30
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	in := &domain.Account{
		Name:         "Admin",
		Email:        "admin@example.com",
		PasswordHash: "hash",
		Age:          &age,
		Roles:        []domain.Role{domain.RoleAdmin, domain.RoleUser},
		Active:       true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	doc := toDocument(in)
	doc.ID = primitive.NewObjectID()
	out := doc.toDomain()

	if out.ID != doc.ID.Hex() {
		t.Fatalf("expected hex id, got %q", out.ID)
	}
	if !out.HasRole(domain.RoleAdmin) || !out.HasRole(domain.RoleUser) || out.PasswordHash != "hash" {
		t.Fatalf("unexpected account %+v", out)
	}
}

func TestAccountDocument_NormalizesStoredRoles(t *testing.T) {
	doc := accountDocument{ID: primitive.NewObjectID(), Roles: []string{"admin", "bogus"}}
	out := doc.toDomain()

	if len(out.Roles) != 2 || !out.HasRole(domain.RoleUser) || !out.HasRole(domain.RoleAdmin) {
		t.Fatalf("expected {ADMIN, USER}, got %v", out.Roles)
	}
}

func TestAuditDocument(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	doc := auditDocument(domain.AccountEvent{
		Type:       domain.EventAccountDeleted,
		AccountID:  "abc",
		Email:      "x@example.com",
		OccurredAt: at,
	}, at.Add(time.Second))

	if doc["type"] != "account.deleted" || doc["account_id"] != "abc" {
		t.Fatalf("unexpected audit document %v", doc)
	}
	if _, ok := doc["actor_email"]; ok {
		t.Fatalf("actor_email must be omitted when empty")
	}
}

func TestProfileUpdate(t *testing.T) {
	age := 41
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	got := profileUpdate(ports.ProfileChanges{Name: "Ann", Email: "ann@example.com", Phone: "+5511999999999", Age: &age, UpdatedAt: at})
	set, _ := got["$set"].(bson.M)
	if set["name"] != "Ann" || set["phone"] != "+5511999999999" || set["age"] != 41 || set["updated_at"] != at {
		t.Fatalf("unexpected $set %v", set)
	}
	for _, field := range []string{"active", "password_hash", "roles", "created_at"} {
		if _, ok := set[field]; ok {
			t.Errorf("%s must not be written by a profile update", field)
		}
	}
	if _, ok := got["$unset"]; ok {
		t.Errorf("nothing to unset, got %v", got["$unset"])
	}

	inactive := false
	got = profileUpdate(ports.ProfileChanges{Name: "Ann", Email: "ann@example.com", Active: &inactive, UpdatedAt: at})
	set, _ = got["$set"].(bson.M)
	if set["active"] != false {
		t.Errorf("explicit active change must be written, got %v", set)
	}
	unset, _ := got["$unset"].(bson.M)
	if _, ok := unset["phone"]; !ok {
		t.Errorf("cleared phone must be unset, got %v", unset)
	}
	if _, ok := unset["age"]; !ok {
		t.Errorf("cleared age must be unset, got %v", unset)
	}
}
