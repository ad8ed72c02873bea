package auth

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// AccountRepository defines the interface for account persistence.
type AccountRepository interface {
	Create(ctx context.Context, account *Account) error
	GetByEmail(ctx context.Context, role Role, email string) (*Account, error)
	List(ctx context.Context, role Role, offset, limit int) ([]Account, error)
	Count(ctx context.Context, role Role) (int, error)
	UpdatePassword(ctx context.Context, role Role, email, passwordHash string) error
}

// RedisAccountRepository implements AccountRepository on Redis hashes.
// Accounts are keyed "{role}:{email}"; the email inside the hash is the
// normalized form regardless of what the caller registered with.
type RedisAccountRepository struct {
	client *redis.Client
}

// NewAccountRepository creates a Redis-backed account repository.
func NewAccountRepository(client *redis.Client) *RedisAccountRepository {
	return &RedisAccountRepository{client: client}
}

// scanPageSize is the COUNT hint for key scans over account namespaces.
const scanPageSize = 100

// Create stores a new account. The registration timestamp is assigned here,
// not by the caller. Returns ErrAccountExists for a duplicate email.
func (r *RedisAccountRepository) Create(ctx context.Context, account *Account) error {
	email := NormalizeEmail(account.Email)
	key := Key(account.Role, email)

	account.Email = email
	account.RegisteredAt = time.Now().UTC().Truncate(time.Second)

	fields := [][2]string{
		{"password", account.PasswordHash},
		{"reg_date", account.RegisteredAt.Format(time.RFC3339)},
	}
	if account.Role == RoleUser {
		fields = append(fields,
			[2]string{"first_name", account.FirstName},
			[2]string{"last_name", account.LastName},
			[2]string{FieldLockID, ""})
	}

	// HSETNX per field inside MULTI/EXEC: the first writer for a key
	// sets every field in one step, a concurrent duplicate changes
	// nothing, and a failed pipeline leaves no half-written hash.
	var created *redis.BoolCmd
	_, err := r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		created = pipe.HSetNX(ctx, key, "email", email)
		for _, f := range fields {
			pipe.HSetNX(ctx, key, f[0], f[1])
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("creating account: %w", err)
	}
	if !created.Val() {
		return ErrAccountExists
	}
	return nil
}

// GetByEmail retrieves an account from the role's namespace.
func (r *RedisAccountRepository) GetByEmail(ctx context.Context, role Role, email string) (*Account, error) {
	fields, err := r.client.HGetAll(ctx, Key(role, email)).Result()
	if err != nil {
		return nil, fmt.Errorf("fetching account: %w", err)
	}
	if len(fields) == 0 {
		return nil, ErrAccountNotFound
	}
	return accountFromHash(role, fields), nil
}

// List returns accounts in a role's namespace ordered by email.
// A negative limit returns everything from offset onward.
func (r *RedisAccountRepository) List(ctx context.Context, role Role, offset, limit int) ([]Account, error) {
	keys, err := r.scanKeys(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	sort.Strings(keys)

	keys = pageKeys(keys, offset, limit)

	accounts := make([]Account, 0, len(keys))
	for _, key := range keys {
		fields, err := r.client.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("listing accounts: %w", err)
		}
		if len(fields) == 0 {
			continue // deleted between scan and fetch
		}
		accounts = append(accounts, *accountFromHash(role, fields))
	}
	return accounts, nil
}

// Count returns the number of accounts in a role's namespace.
func (r *RedisAccountRepository) Count(ctx context.Context, role Role) (int, error) {
	keys, err := r.scanKeys(ctx, role)
	if err != nil {
		return 0, fmt.Errorf("counting accounts: %w", err)
	}
	return len(keys), nil
}

// UpdatePassword replaces an account's password hash.
func (r *RedisAccountRepository) UpdatePassword(ctx context.Context, role Role, email, passwordHash string) error {
	key := Key(role, email)

	exists, err := r.client.Exists(ctx, key).Result()
	if err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	if exists == 0 {
		return ErrAccountNotFound
	}

	if err := r.client.HSet(ctx, key, "password", passwordHash).Err(); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}
	return nil
}

// scanKeys collects every key in a role's namespace via SCAN.
func (r *RedisAccountRepository) scanKeys(ctx context.Context, role Role) ([]string, error) {
	var keys []string
	iter := r.client.Scan(ctx, 0, string(role)+":*", scanPageSize).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	return keys, nil
}

// pageKeys slices a sorted key list to [offset, offset+limit).
// A negative limit means no upper bound.
func pageKeys(keys []string, offset, limit int) []string {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(keys) {
		return nil
	}
	keys = keys[offset:]
	if limit >= 0 && limit < len(keys) {
		keys = keys[:limit]
	}
	return keys
}

// accountFromHash rebuilds an Account from its stored hash fields.
func accountFromHash(role Role, fields map[string]string) *Account {
	account := &Account{
		Email:        fields["email"],
		PasswordHash: fields["password"],
		FirstName:    fields["first_name"],
		LastName:     fields["last_name"],
		Role:         role,
	}
	if raw := fields["reg_date"]; raw != "" {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			account.RegisteredAt = t
		}
	}
	if raw := fields[FieldLockID]; raw != "" {
		if id, err := strconv.Atoi(raw); err == nil {
			account.LockID = id
		}
	}
	return account
}
