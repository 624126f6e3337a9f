package lock

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/cjnghn/drone-topview-analysis/domain/services"
	"github.com/cjnghn/drone-topview-analysis/pkg/logger"
)

const keyPrefix = "ingest:lock:"

// Deletes the key only while it still holds our token
var releaseScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisTitleLocker serializes ingestions across processes sharing one Redis
type RedisTitleLocker struct {
	client *goredis.Client
}

func NewRedisTitleLocker(client *goredis.Client) *RedisTitleLocker {
	return &RedisTitleLocker{client: client}
}

var _ services.TitleLocker = (*RedisTitleLocker)(nil)

func (l *RedisTitleLocker) Acquire(ctx context.Context, title string, ttl time.Duration) (func(), error) {
	key := keyPrefix + title
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, services.ErrIngestInProgress
	}

	var once sync.Once
	release := func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := releaseScript.Run(ctx, l.client, []string{key}, token).Err(); err != nil {
				logger.IngestError("lock_release_failed", "Failed to release ingestion lock", err, map[string]interface{}{
					"title": title,
				})
			}
		})
	}
	return release, nil
}

// LocalTitleLocker serializes ingestions inside one process
type LocalTitleLocker struct {
	mu    sync.Mutex
	held  map[string]localHold
	seq   uint64
	nowFn func() time.Time
}

type localHold struct {
	token   uint64
	expires time.Time
}

func NewLocalTitleLocker() *LocalTitleLocker {
	return &LocalTitleLocker{
		held:  make(map[string]localHold),
		nowFn: time.Now,
	}
}

var _ services.TitleLocker = (*LocalTitleLocker)(nil)

// Acquire fails fast; an expired hold is taken over like a Redis key past its TTL
func (l *LocalTitleLocker) Acquire(ctx context.Context, title string, ttl time.Duration) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.nowFn()
	if hold, ok := l.held[title]; ok && now.Before(hold.expires) {
		return nil, services.ErrIngestInProgress
	}
	l.seq++
	token := l.seq
	l.held[title] = localHold{token: token, expires: now.Add(ttl)}

	var once sync.Once
	release := func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			if l.held[title].token == token {
				delete(l.held, title)
			}
		})
	}
	return release, nil
}
