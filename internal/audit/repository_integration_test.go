//go:build integration

package audit

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// Integration tests require a running Redis server at 127.0.0.1:6379.
// They use DB 15 and flush it between tests.
//
// Run with:
//   go test -tags=integration ./internal/audit/...

func testClient(t *testing.T) *redis.Client {
	t.Helper()
	client := redis.NewClient(&redis.Options{
		Addr: "127.0.0.1:6379",
		DB:   15,
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

func TestSigninLog(t *testing.T) {
	repo := NewRepository(testClient(t))
	ctx := context.Background()

	if err := repo.RecordSignin(ctx, "jane@example.com", "::ffff:10.0.0.9", true); err != nil {
		t.Fatalf("RecordSignin() error = %v", err)
	}
	if err := repo.RecordSignin(ctx, "ghost@example.com", "10.0.0.9", false); err != nil {
		t.Fatalf("RecordSignin() error = %v", err)
	}

	events, err := repo.ListSignins(ctx, Range{Offset: 0, Limit: -1})
	if err != nil {
		t.Fatalf("ListSignins() error = %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("ListSignins() returned %d events, want 2", len(events))
	}
	if events[0].IP != "10.0.0.9" {
		t.Errorf("IP = %q, want mapped prefix stripped", events[0].IP)
	}

	n, err := repo.CountSignins(ctx)
	if err != nil {
		t.Fatalf("CountSignins() error = %v", err)
	}
	if n != 2 {
		t.Errorf("CountSignins() = %d, want 2", n)
	}
}

func TestSigninLog_IdenticalAttemptsAllRecorded(t *testing.T) {
	repo := NewRepository(testClient(t))
	ctx := context.Background()

	// Repeated failed attempts from the same address land in the same
	// second and must each count, not collapse into one member.
	for i := 0; i < 3; i++ {
		if err := repo.RecordSignin(ctx, "jane@example.com", "10.0.0.9", false); err != nil {
			t.Fatalf("RecordSignin() error = %v", err)
		}
	}

	n, err := repo.CountSignins(ctx)
	if err != nil {
		t.Fatalf("CountSignins() error = %v", err)
	}
	if n != 3 {
		t.Errorf("CountSignins() = %d, want 3", n)
	}
}

func TestLockEventLog(t *testing.T) {
	repo := NewRepository(testClient(t))
	ctx := context.Background()

	millis := strconv.FormatInt(time.Now().UnixMilli(), 10)
	event, err := repo.RecordLockEvent(ctx, millis, "10.0.0.5", 1)
	if err != nil {
		t.Fatalf("RecordLockEvent() error = %v", err)
	}
	if event.Timestamp != time.Now().Unix() && event.Timestamp != time.Now().Unix()-1 {
		t.Errorf("Timestamp = %d, want truncated to seconds", event.Timestamp)
	}

	events, err := repo.ListLockEvents(ctx, Range{Offset: 0, Limit: 10})
	if err != nil {
		t.Fatalf("ListLockEvents() error = %v", err)
	}
	if len(events) != 1 || events[0].Status != 1 {
		t.Fatalf("ListLockEvents() = %+v, want one unlock", events)
	}
}

func TestRecordLockEvent_Validation(t *testing.T) {
	repo := NewRepository(testClient(t))
	ctx := context.Background()

	if _, err := repo.RecordLockEvent(ctx, "1693526400", "10.0.0.5", 0); !errors.Is(err, ErrInvalidTimestamp) {
		t.Errorf("seconds timestamp: error = %v, want ErrInvalidTimestamp", err)
	}
	if _, err := repo.RecordLockEvent(ctx, "1693526400000", "10.0.0.5", 2); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("bad status: error = %v, want ErrInvalidStatus", err)
	}
}

func TestListRange(t *testing.T) {
	repo := NewRepository(testClient(t))
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := repo.RecordSignin(ctx, "u"+strconv.Itoa(i)+"@example.com", "10.0.0.1", true); err != nil {
			t.Fatalf("RecordSignin() error = %v", err)
		}
	}

	page, err := repo.ListSignins(ctx, Range{Offset: 1, Limit: 2})
	if err != nil {
		t.Fatalf("ListSignins() error = %v", err)
	}
	if len(page) != 2 {
		t.Errorf("ListSignins(1,2) returned %d events, want 2", len(page))
	}

	empty, err := repo.ListSignins(ctx, Range{Offset: 3, Limit: 0})
	if err != nil {
		t.Fatalf("ListSignins() error = %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("zero limit returned %d events, want none", len(empty))
	}
}
