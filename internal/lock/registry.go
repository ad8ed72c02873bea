package lock

import (
	"context"
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/hospilock/hospilock-api/internal/auth"
)

// Registry manages lock records and their assignment to user accounts.
type Registry interface {
	Register(ctx context.Context, ip, ownerEmail string) (*Lock, error)
	AssignOwner(ctx context.Context, email string, id int) (*Lock, error)
	GetByID(ctx context.Context, id int) (*Lock, error)
	GetByOwnerEmail(ctx context.Context, email string) (*Lock, error)
	GetStatus(ctx context.Context, id int) (int, error)
	SetStatus(ctx context.Context, id int, status int) error
	List(ctx context.Context, offset, limit int) ([]Lock, error)
	Count(ctx context.Context) (int, error)
}

// counterKey holds the next lock id. INCR makes allocation atomic and
// ids are never reused, even after a lock record is removed.
const counterKey = "lock_id_counter"

// lockKey is the hash key for a lock record.
func lockKey(id int) string { return "lock:" + strconv.Itoa(id) }

// scanPageSize is the COUNT hint for key scans over the lock namespace.
const scanPageSize = 100

// NormalizeIP strips the IPv4-mapped IPv6 prefix some stacks report
// for plain IPv4 peers.
func NormalizeIP(ip string) string {
	return strings.TrimPrefix(ip, "::ffff:")
}

// RedisRegistry implements Registry on Redis hashes in the accounts
// database, alongside the user records whose ownership field it keeps
// in step with.
type RedisRegistry struct {
	client *redis.Client
}

// NewRegistry creates a Redis-backed lock registry.
func NewRegistry(client *redis.Client) *RedisRegistry {
	return &RedisRegistry{client: client}
}

// Register allocates an id and stores a new lock. When ownerEmail is
// non-empty the lock is assigned immediately; the owner must exist and
// must not already hold a lock. The lock record and the owner's
// back-reference are written in one transaction.
func (r *RedisRegistry) Register(ctx context.Context, ip, ownerEmail string) (*Lock, error) {
	ip = NormalizeIP(strings.TrimSpace(ip))
	if net.ParseIP(ip) == nil {
		return nil, ErrInvalidIP
	}

	if ownerEmail != "" {
		ownerEmail = auth.NormalizeEmail(ownerEmail)
		if err := r.checkAssignable(ctx, ownerEmail); err != nil {
			return nil, err
		}
	}

	id64, err := r.client.Incr(ctx, counterKey).Result()
	if err != nil {
		return nil, fmt.Errorf("allocating lock id: %w", err)
	}

	l := &Lock{
		ID:         int(id64),
		IP:         ip,
		Status:     StatusLocked,
		OwnerEmail: ownerEmail,
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, lockKey(l.ID), lockFields(l))
		if ownerEmail != "" {
			pipe.HSet(ctx, auth.Key(auth.RoleUser, ownerEmail), auth.FieldLockID, strconv.Itoa(l.ID))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("storing lock: %w", err)
	}
	return l, nil
}

// AssignOwner gives an existing unowned lock to a user who holds none.
// Both the lock record and the user's back-reference change in one
// transaction so neither side can observe a half-done assignment.
func (r *RedisRegistry) AssignOwner(ctx context.Context, email string, id int) (*Lock, error) {
	email = auth.NormalizeEmail(email)

	l, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// Any non-empty owner blocks the assignment, including the same
	// user repeating it.
	if l.OwnerEmail != "" {
		return nil, ErrLockOwned
	}

	if err := r.checkAssignable(ctx, email); err != nil {
		return nil, err
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, lockKey(id), "email", email)
		pipe.HSet(ctx, auth.Key(auth.RoleUser, email), auth.FieldLockID, strconv.Itoa(id))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("assigning lock: %w", err)
	}

	l.OwnerEmail = email
	return l, nil
}

// checkAssignable verifies the user exists and holds no lock yet.
func (r *RedisRegistry) checkAssignable(ctx context.Context, email string) error {
	fields, err := r.client.HGetAll(ctx, auth.Key(auth.RoleUser, email)).Result()
	if err != nil {
		return fmt.Errorf("fetching owner: %w", err)
	}
	if len(fields) == 0 {
		return auth.ErrAccountNotFound
	}
	if fields[auth.FieldLockID] != "" {
		return ErrUserHasLock
	}
	return nil
}

// GetByID retrieves a lock record.
func (r *RedisRegistry) GetByID(ctx context.Context, id int) (*Lock, error) {
	fields, err := r.client.HGetAll(ctx, lockKey(id)).Result()
	if err != nil {
		return nil, fmt.Errorf("fetching lock: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrLockNotFound
	}
	return lockFromHash(id, fields), nil
}

// GetByOwnerEmail resolves a user's lock through the back-reference on
// their account record. Returns ErrNoLock when nothing is assigned.
func (r *RedisRegistry) GetByOwnerEmail(ctx context.Context, email string) (*Lock, error) {
	email = auth.NormalizeEmail(email)

	raw, err := r.client.HGet(ctx, auth.Key(auth.RoleUser, email), auth.FieldLockID).Result()
	if err == redis.Nil {
		// Field absent: either no such user or an admin-shaped record.
		exists, existsErr := r.client.Exists(ctx, auth.Key(auth.RoleUser, email)).Result()
		if existsErr != nil {
			return nil, fmt.Errorf("fetching owner: %w", existsErr)
		}
		if exists == 0 {
			return nil, auth.ErrAccountNotFound
		}
		return nil, ErrNoLock
	}
	if err != nil {
		return nil, fmt.Errorf("fetching owner: %w", err)
	}
	if raw == "" {
		return nil, ErrNoLock
	}

	id, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("corrupt lock reference %q: %w", raw, err)
	}
	return r.GetByID(ctx, id)
}

// GetStatus returns just the status field of a lock.
func (r *RedisRegistry) GetStatus(ctx context.Context, id int) (int, error) {
	raw, err := r.client.HGet(ctx, lockKey(id), "status").Result()
	if err == redis.Nil {
		return 0, ErrLockNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("fetching lock status: %w", err)
	}
	status, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("corrupt lock status %q: %w", raw, err)
	}
	return status, nil
}

// SetStatus records the device-confirmed state of a lock.
func (r *RedisRegistry) SetStatus(ctx context.Context, id int, status int) error {
	exists, err := r.client.Exists(ctx, lockKey(id)).Result()
	if err != nil {
		return fmt.Errorf("updating lock status: %w", err)
	}
	if exists == 0 {
		return ErrLockNotFound
	}
	if err := r.client.HSet(ctx, lockKey(id), "status", strconv.Itoa(status)).Err(); err != nil {
		return fmt.Errorf("updating lock status: %w", err)
	}
	return nil
}

// List returns locks ordered by id. A negative limit returns everything
// from offset onward.
func (r *RedisRegistry) List(ctx context.Context, offset, limit int) ([]Lock, error) {
	ids, err := r.scanIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing locks: %w", err)
	}
	sort.Ints(ids)

	ids = pageIDs(ids, offset, limit)

	locks := make([]Lock, 0, len(ids))
	for _, id := range ids {
		fields, err := r.client.HGetAll(ctx, lockKey(id)).Result()
		if err != nil {
			return nil, fmt.Errorf("listing locks: %w", err)
		}
		if len(fields) == 0 {
			continue // deleted between scan and fetch
		}
		locks = append(locks, *lockFromHash(id, fields))
	}
	return locks, nil
}

// Count returns the number of registered locks.
func (r *RedisRegistry) Count(ctx context.Context) (int, error) {
	ids, err := r.scanIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("counting locks: %w", err)
	}
	return len(ids), nil
}

// scanIDs collects every lock id via SCAN. Keys with a non-numeric
// suffix are skipped rather than failing the whole listing.
func (r *RedisRegistry) scanIDs(ctx context.Context) ([]int, error) {
	var ids []int
	iter := r.client.Scan(ctx, 0, "lock:*", scanPageSize).Iterator()
	for iter.Next(ctx) {
		raw := strings.TrimPrefix(iter.Val(), "lock:")
		id, err := strconv.Atoi(raw)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// pageIDs slices a sorted id list to [offset, offset+limit).
// A negative limit means no upper bound.
func pageIDs(ids []int, offset, limit int) []int {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(ids) {
		return nil
	}
	ids = ids[offset:]
	if limit >= 0 && limit < len(ids) {
		ids = ids[:limit]
	}
	return ids
}

// lockFields flattens a Lock into its stored hash form.
func lockFields(l *Lock) map[string]any {
	return map[string]any{
		"id":     strconv.Itoa(l.ID),
		"ip":     l.IP,
		"status": strconv.Itoa(l.Status),
		"email":  l.OwnerEmail,
	}
}

// lockFromHash rebuilds a Lock from its stored hash fields.
func lockFromHash(id int, fields map[string]string) *Lock {
	l := &Lock{
		ID:         id,
		IP:         fields["ip"],
		OwnerEmail: fields["email"],
	}
	if raw := fields["status"]; raw != "" {
		if status, err := strconv.Atoi(raw); err == nil {
			l.Status = status
		}
	}
	return l
}
