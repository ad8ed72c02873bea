package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Keys for the two event logs in the audit database. Each is a sorted
// set scored by epoch seconds with the JSON event as the member, so
// range reads come back in time order without a secondary index.
const (
	signinLogKey = "log:signin"
	lockLogKey   = "log:lock"
)

// Repository defines the interface for audit event persistence.
type Repository interface {
	RecordSignin(ctx context.Context, email, ip string, success bool) error
	RecordLockEvent(ctx context.Context, timestamp, ip string, status int) (*LockEvent, error)
	ListSignins(ctx context.Context, r Range) ([]SigninEvent, error)
	ListLockEvents(ctx context.Context, r Range) ([]LockEvent, error)
	CountSignins(ctx context.Context) (int, error)
	CountLockEvents(ctx context.Context) (int, error)
}

// RedisRepository implements Repository on sorted sets in the audit
// database, kept separate from account data so retention policies can
// differ.
type RedisRepository struct {
	client *redis.Client
}

// NewRepository creates a Redis-backed audit repository.
func NewRepository(client *redis.Client) *RedisRepository {
	return &RedisRepository{client: client}
}

// RecordSignin appends an authentication attempt. The timestamp is
// assigned here from the server clock, never taken from the caller.
func (r *RedisRepository) RecordSignin(ctx context.Context, email, ip string, success bool) error {
	event := SigninEvent{
		Timestamp: time.Now().UTC().Unix(),
		Email:     email,
		IP:        normalizeIP(ip),
		Success:   success,
	}
	return r.append(ctx, signinLogKey, event.Timestamp, storedSignin{event, uuid.NewString()})
}

// RecordLockEvent appends a device-reported state change. Firmware
// sends epoch milliseconds as a string; anything else is rejected
// before it reaches the log.
func (r *RedisRepository) RecordLockEvent(ctx context.Context, timestamp, ip string, status int) (*LockEvent, error) {
	if !millisPattern.MatchString(timestamp) {
		return nil, ErrInvalidTimestamp
	}
	if status != 0 && status != 1 {
		return nil, ErrInvalidStatus
	}

	millis, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return nil, ErrInvalidTimestamp
	}

	event := LockEvent{
		Timestamp: millis / 1000,
		IP:        normalizeIP(ip),
		Status:    status,
	}
	if err := r.append(ctx, lockLogKey, event.Timestamp, storedLock{event, uuid.NewString()}); err != nil {
		return nil, err
	}
	return &event, nil
}

// storedSignin and storedLock wrap events for persistence. The seq
// field keeps identical events within the same second from collapsing
// into one sorted-set member; readers unmarshal into the bare event
// type and never see it.
type storedSignin struct {
	SigninEvent
	Seq string `json:"seq"`
}

type storedLock struct {
	LockEvent
	Seq string `json:"seq"`
}

// append adds one event to a log, scored by its timestamp.
func (r *RedisRepository) append(ctx context.Context, key string, score int64, event any) error {
	member, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding audit event: %w", err)
	}
	if err := r.client.ZAdd(ctx, key, redis.Z{
		Score:  float64(score),
		Member: string(member),
	}).Err(); err != nil {
		return fmt.Errorf("appending audit event: %w", err)
	}
	return nil
}

// ListSignins returns authentication attempts oldest first.
func (r *RedisRepository) ListSignins(ctx context.Context, rng Range) ([]SigninEvent, error) {
	members, err := r.list(ctx, signinLogKey, rng)
	if err != nil {
		return nil, err
	}
	events := make([]SigninEvent, 0, len(members))
	for _, member := range members {
		var event SigninEvent
		if err := json.Unmarshal([]byte(member), &event); err != nil {
			continue // skip entries written by older formats
		}
		events = append(events, event)
	}
	return events, nil
}

// ListLockEvents returns device state changes oldest first.
func (r *RedisRepository) ListLockEvents(ctx context.Context, rng Range) ([]LockEvent, error) {
	members, err := r.list(ctx, lockLogKey, rng)
	if err != nil {
		return nil, err
	}
	events := make([]LockEvent, 0, len(members))
	for _, member := range members {
		var event LockEvent
		if err := json.Unmarshal([]byte(member), &event); err != nil {
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

func (r *RedisRepository) list(ctx context.Context, key string, rng Range) ([]string, error) {
	start, stop := rng.bounds()
	if stop >= 0 && stop < start {
		return nil, nil
	}
	members, err := r.client.ZRange(ctx, key, start, stop).Result()
	if err != nil {
		return nil, fmt.Errorf("reading audit log: %w", err)
	}
	return members, nil
}

// CountSignins returns the total number of recorded signin attempts.
func (r *RedisRepository) CountSignins(ctx context.Context) (int, error) {
	return r.count(ctx, signinLogKey)
}

// CountLockEvents returns the total number of recorded lock events.
func (r *RedisRepository) CountLockEvents(ctx context.Context) (int, error) {
	return r.count(ctx, lockLogKey)
}

func (r *RedisRepository) count(ctx context.Context, key string) (int, error) {
	n, err := r.client.ZCard(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("counting audit log: %w", err)
	}
	return int(n), nil
}
