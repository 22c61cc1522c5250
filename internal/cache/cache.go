// Package cache はソースアダプターのフェッチ結果をTTL付きでメモ化するキャッシュ層を提供する。
//
// キーは(ソース識別子, パラメータ)から構成し、get-or-fetch契約で読み抜ける。
// TTL窓内の同一キーへの並行リクエストは1回の外部フェッチに合流させ、
// レート制限のある外部APIへの重複呼び出しを防ぐ。期限切れ後の再取得は
// last-write-winsで上書きする。
package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/hitoshi/newsdeck/internal/model"
)

// Entry はキャッシュされる1回分のフェッチ結果。
// フェッチ失敗もエラーマーカーとしてキャッシュし（ネガティブキャッシュ）、
// 失敗中のソースをTTL窓内で叩き続けないようにする。
type Entry struct {
	Articles []model.Article    `json:"articles"`
	Err      *model.SourceError `json:"err,omitempty"`
}

// FetchFunc は実際の外部フェッチを行う関数。
// 失敗はEntry.Errとして返し、決してpanicや例外伝播をしない。
type FetchFunc func(ctx context.Context) Entry

// Store はget-or-fetch契約のキャッシュインターフェース。
type Store interface {
	// GetOrFetch はキーに対応する有効なキャッシュがあればそれを返し、
	// なければfetchを1回だけ実行して結果を保存してから返す。
	GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc) Entry
}

// HitRecorder はキャッシュのヒット/ミスを記録するメトリクスインターフェース。
type HitRecorder interface {
	RecordCacheHit(source string)
	RecordCacheMiss(source string)
}

// Key はソース識別子とパラメータからキャッシュキーを構成する。
func Key(source string, params ...string) string {
	if len(params) == 0 {
		return source
	}
	return source + "|" + strings.Join(params, "|")
}

// SourceFromKey はキャッシュキーからソース識別子部分を取り出す。
func SourceFromKey(key string) string {
	if idx := strings.IndexByte(key, '|'); idx >= 0 {
		return key[:idx]
	}
	return key
}

// memoryEntry はMemoryStoreの1キー分の状態。
// muがキー単位のシングルフライトを保証する。
type memoryEntry struct {
	mu        sync.Mutex
	value     Entry
	fetchedAt time.Time
	valid     bool
}

// MemoryStore はプロセス内TTLキャッシュの実装。
// キー空間は(ソース × パラメータ)で有界のため、期限切れエントリの
// 回収ループは持たない。
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	metrics HitRecorder // nil可
	now     func() time.Time
}

// NewMemoryStore はMemoryStoreの新しいインスタンスを生成する。
// metricsはnilを許容する。
func NewMemoryStore(metrics HitRecorder) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		metrics: metrics,
		now:     time.Now,
	}
}

// GetOrFetch はStoreインターフェースを実装する。
// 同一キーの並行呼び出しはキー単位のロックで直列化され、
// 先行呼び出しの結果が新鮮であれば後続はフェッチせずそれを受け取る。
func (s *MemoryStore) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch FetchFunc) Entry {
	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		e = &memoryEntry{}
		s.entries[key] = e
	}
	s.mu.Unlock()

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.valid && s.now().Sub(e.fetchedAt) < ttl {
		s.recordHit(key)
		return e.value
	}

	s.recordMiss(key)
	value := fetch(ctx)
	e.value = value
	e.fetchedAt = s.now()
	e.valid = true
	return value
}

func (s *MemoryStore) recordHit(key string) {
	if s.metrics != nil {
		s.metrics.RecordCacheHit(SourceFromKey(key))
	}
}

func (s *MemoryStore) recordMiss(key string) {
	if s.metrics != nil {
		s.metrics.RecordCacheMiss(SourceFromKey(key))
	}
}
