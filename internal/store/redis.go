package store

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/insightdelivered/transfer-extractor/internal/models"
)

const (
	keyPrefix   = "transfer:session:"
	saveRetries = 3
)

// Redis stores entries as JSON under transfer:session:<id>.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to addr and verifies the connection.
func NewRedis(ctx context.Context, addr string, db int, ttl time.Duration) (*Redis, error) {
	client := redis.NewClient(&redis.Options{
		Addr:            addr,
		DB:              db,
		PoolSize:        20,
		MinIdleConns:    2,
		ConnMaxIdleTime: 5 * time.Minute,
		DialTimeout:     time.Second,
		ReadTimeout:     500 * time.Millisecond,
		WriteTimeout:    500 * time.Millisecond,
		MaxRetries:      2,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, errors.Wrapf(err, "connect to redis at %s", addr)
	}
	return &Redis{client: client, ttl: ttl}, nil
}

func sessionKey(session string) string {
	return keyPrefix + session
}

// Save compares and writes inside a WATCH transaction so concurrent saves
// for one session serialize on the stored revision.
func (r *Redis) Save(ctx context.Context, session string, revision int64, res models.Result) (bool, error) {
	key := sessionKey(session)
	written := false

	txf := func(tx *redis.Tx) error {
		written = false
		cur, err := getEntry(ctx, tx, key)
		switch {
		case err == nil:
			if cur.Revision > revision {
				return nil
			}
		case errors.Is(err, ErrNotFound):
		default:
			return err
		}

		data, err := sonic.Marshal(Entry{Revision: revision, Result: res, UpdatedAt: time.Now().UTC()})
		if err != nil {
			return errors.Wrap(err, "encode entry")
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, r.ttl)
			return nil
		})
		if err == nil {
			written = true
		}
		return err
	}

	for i := 0; i < saveRetries; i++ {
		err := r.client.Watch(ctx, txf, key)
		if err == nil {
			return written, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return false, errors.Wrapf(err, "save session %s", session)
	}
	return false, errors.Errorf("save session %s: too much contention after %d attempts", session, saveRetries)
}

func (r *Redis) Load(ctx context.Context, session string) (Entry, error) {
	return getEntry(ctx, r.client, sessionKey(session))
}

func (r *Redis) Delete(ctx context.Context, session string) error {
	if err := r.client.Del(ctx, sessionKey(session)).Err(); err != nil {
		return errors.Wrapf(err, "delete session %s", session)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func getEntry(ctx context.Context, c getter, key string) (Entry, error) {
	data, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return Entry{}, ErrNotFound
	}
	if err != nil {
		return Entry{}, errors.Wrapf(err, "load %s", key)
	}

	var e Entry
	if err := sonic.Unmarshal(data, &e); err != nil {
		return Entry{}, errors.Wrapf(err, "decode %s", key)
	}
	return e, nil
}
