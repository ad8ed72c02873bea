//go:build integration

package lock

import (
	"context"
	"errors"
	"testing"

	"github.com/redis/go-redis/v9"

	"github.com/hospilock/hospilock-api/internal/auth"
)

// Integration tests require a running Redis server at 127.0.0.1:6379.
// They use DB 14 and flush it between tests.
//
// Run with:
//   go test -tags=integration ./internal/lock/...

func testClient(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr: "127.0.0.1:6379",
		DB:   14,
	})
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Fatalf("redis not reachable: %v", err)
	}
	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("flushing test db: %v", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func seedUser(t *testing.T, client *redis.Client, email string) {
	t.Helper()
	err := client.HSet(context.Background(), auth.Key(auth.RoleUser, email), map[string]any{
		"email":          email,
		"password":       "x",
		auth.FieldLockID: "",
	}).Err()
	if err != nil {
		t.Fatalf("seeding user: %v", err)
	}
}

func TestRegister_AllocatesSequentialIDs(t *testing.T) {
	client := testClient(t)
	reg := NewRegistry(client)
	ctx := context.Background()

	first, err := reg.Register(ctx, "10.0.0.1", "")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	second, err := reg.Register(ctx, "10.0.0.2", "")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if second.ID != first.ID+1 {
		t.Errorf("ids = %d, %d, want sequential", first.ID, second.ID)
	}
	if first.Status != StatusLocked {
		t.Errorf("new lock status = %d, want locked", first.Status)
	}
}

func TestRegister_WithOwner(t *testing.T) {
	client := testClient(t)
	reg := NewRegistry(client)
	ctx := context.Background()

	seedUser(t, client, "jane@example.com")

	l, err := reg.Register(ctx, "::ffff:10.0.0.1", "Jane@Example.com")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if l.IP != "10.0.0.1" {
		t.Errorf("IP = %q, want mapped prefix stripped", l.IP)
	}
	if l.OwnerEmail != "jane@example.com" {
		t.Errorf("OwnerEmail = %q, want normalized", l.OwnerEmail)
	}

	// Back-reference must resolve.
	got, err := reg.GetByOwnerEmail(ctx, "jane@example.com")
	if err != nil {
		t.Fatalf("GetByOwnerEmail() error = %v", err)
	}
	if got.ID != l.ID {
		t.Errorf("resolved lock id = %d, want %d", got.ID, l.ID)
	}
}

func TestRegister_Validation(t *testing.T) {
	client := testClient(t)
	reg := NewRegistry(client)
	ctx := context.Background()

	if _, err := reg.Register(ctx, "not-an-ip", ""); !errors.Is(err, ErrInvalidIP) {
		t.Errorf("bad ip: error = %v, want ErrInvalidIP", err)
	}
	if _, err := reg.Register(ctx, "10.0.0.1", "ghost@example.com"); !errors.Is(err, auth.ErrAccountNotFound) {
		t.Errorf("unknown owner: error = %v, want ErrAccountNotFound", err)
	}
}

func TestAssignOwner(t *testing.T) {
	client := testClient(t)
	reg := NewRegistry(client)
	ctx := context.Background()

	seedUser(t, client, "jane@example.com")
	seedUser(t, client, "john@example.com")

	l, err := reg.Register(ctx, "10.0.0.1", "")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if _, err := reg.AssignOwner(ctx, "jane@example.com", l.ID); err != nil {
		t.Fatalf("AssignOwner() error = %v", err)
	}

	// Owned means owned, even for the current owner repeating the call.
	if _, err := reg.AssignOwner(ctx, "jane@example.com", l.ID); !errors.Is(err, ErrLockOwned) {
		t.Errorf("repeat AssignOwner() error = %v, want ErrLockOwned", err)
	}

	// A second user cannot take an owned lock.
	if _, err := reg.AssignOwner(ctx, "john@example.com", l.ID); !errors.Is(err, ErrLockOwned) {
		t.Errorf("AssignOwner() error = %v, want ErrLockOwned", err)
	}

	// The owner cannot take a second lock.
	other, err := reg.Register(ctx, "10.0.0.2", "")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if _, err := reg.AssignOwner(ctx, "jane@example.com", other.ID); !errors.Is(err, ErrUserHasLock) {
		t.Errorf("AssignOwner() error = %v, want ErrUserHasLock", err)
	}
}

func TestStatusRoundTrip(t *testing.T) {
	client := testClient(t)
	reg := NewRegistry(client)
	ctx := context.Background()

	l, err := reg.Register(ctx, "10.0.0.1", "")
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if err := reg.SetStatus(ctx, l.ID, StatusUnlocked); err != nil {
		t.Fatalf("SetStatus() error = %v", err)
	}
	status, err := reg.GetStatus(ctx, l.ID)
	if err != nil {
		t.Fatalf("GetStatus() error = %v", err)
	}
	if status != StatusUnlocked {
		t.Errorf("status = %d, want unlocked", status)
	}

	if _, err := reg.GetStatus(ctx, 9999); !errors.Is(err, ErrLockNotFound) {
		t.Errorf("GetStatus(missing) error = %v, want ErrLockNotFound", err)
	}
}

func TestListAndCount(t *testing.T) {
	client := testClient(t)
	reg := NewRegistry(client)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if _, err := reg.Register(ctx, "10.0.0.1", ""); err != nil {
			t.Fatalf("Register() error = %v", err)
		}
	}

	locks, err := reg.List(ctx, 1, 2)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(locks) != 2 {
		t.Fatalf("List() returned %d locks, want 2", len(locks))
	}
	if locks[0].ID >= locks[1].ID {
		t.Errorf("List() not ordered by id: %d, %d", locks[0].ID, locks[1].ID)
	}

	n, err := reg.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if n != 5 {
		t.Errorf("Count() = %d, want 5", n)
	}
}
