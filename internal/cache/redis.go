package cache

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore はRedisを共有バックエンドとするTTLキャッシュの実装。
// 複数プロセスでキャッシュを共有したい場合にREDIS_ADDRで有効化する。
// プロセス内のシングルフライトはキー単位のロックで保証するが、
// プロセス間の重複フェッチまでは排除しない（last-write-winsで十分なため）。
type RedisStore struct {
	client *redis.Client
	logger *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewRedisStore はRedisStoreの新しいインスタンスを生成する。
func NewRedisStore(client *redis.Client, logger *slog.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

// GetOrFetch はStoreインターフェースを実装する。
// Redisへの読み書きに失敗した場合はキャッシュなしで素通しし、
// フェッチ結果をそのまま返す（キャッシュ障害を集約の致命傷にしない）。
func (s *RedisStore) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc) Entry {
	lock := s.keyLock(key)
	lock.Lock()
	defer lock.Unlock()

	if bs, err := s.client.Get(ctx, key).Bytes(); err == nil {
		var entry Entry
		if err := json.Unmarshal(bs, &entry); err == nil {
			return entry
		}
		s.logger.Warn("キャッシュエントリのデコードに失敗しました",
			slog.String("key", key),
		)
	}

	entry := fetch(ctx)

	bs, err := json.Marshal(entry)
	if err != nil {
		s.logger.Warn("キャッシュエントリのエンコードに失敗しました",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return entry
	}
	if err := s.client.Set(ctx, key, bs, ttl).Err(); err != nil {
		s.logger.Warn("キャッシュへの書き込みに失敗しました",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
	return entry
}

// keyLock はキー単位のロックを返す。
func (s *RedisStore) keyLock(key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	return lock
}
