// Package favorites はセッション単位のお気に入りストアを提供する。
//
// お気に入りはパイプラインの外側に置かれる副次的な注記であり、
// 集約コアには一切到達しない。セッションIDをキーとしたプロセス内
// ストアで、URLで記事を識別する。アイドルセッションは定期的に回収する。
package favorites

import (
	"sync"
	"time"

	"github.com/hitoshi/newsdeck/internal/model"
)

// Store はセッション単位のお気に入り管理のインターフェース。
type Store interface {
	// List はセッションのお気に入りを追加順で返す。
	List(sessionID string) []model.Article
	// Add は記事をお気に入りに追加する。同一URLの再追加は上書きになる。
	Add(sessionID string, article model.Article)
	// Remove はURLで指定した記事をお気に入りから外す。
	// 存在した場合はtrueを返す。
	Remove(sessionID string, url string) bool
	// Contains はURLの記事がお気に入りに含まれるかを返す。
	Contains(sessionID string, url string) bool
}

// sessionFavorites は1セッション分のお気に入り状態。
// 追加順を保持するためorderとindexを併せ持つ。
type sessionFavorites struct {
	order      []string // 追加順のURL
	byURL      map[string]model.Article
	lastAccess time.Time
}

// MemoryStore はStoreのプロセス内実装。
// バックグラウンドでアイドルセッションのクリーンアップを行う。
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*sessionFavorites

	maxIdle time.Duration
	stopCh  chan struct{}
	now     func() time.Time
}

// NewMemoryStore はMemoryStoreの新しいインスタンスを生成する。
// maxIdleを超えてアクセスのないセッションはクリーンアップ対象になる。
// maxIdleが0以下の場合はデフォルト値24時間を使用する。
func NewMemoryStore(maxIdle time.Duration) *MemoryStore {
	if maxIdle <= 0 {
		maxIdle = 24 * time.Hour
	}
	s := &MemoryStore{
		sessions: make(map[string]*sessionFavorites),
		maxIdle:  maxIdle,
		stopCh:   make(chan struct{}),
		now:      time.Now,
	}

	go s.cleanupLoop()

	return s
}

// Stop はクリーンアップのバックグラウンドゴルーチンを停止する。
func (s *MemoryStore) Stop() {
	close(s.stopCh)
}

// List はStoreインターフェースを実装する。
func (s *MemoryStore) List(sessionID string) []model.Article {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return []model.Article{}
	}
	sess.lastAccess = s.now()

	out := make([]model.Article, 0, len(sess.order))
	for _, url := range sess.order {
		out = append(out, sess.byURL[url])
	}
	return out
}

// Add はStoreインターフェースを実装する。
func (s *MemoryStore) Add(sessionID string, article model.Article) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &sessionFavorites{byURL: make(map[string]model.Article)}
		s.sessions[sessionID] = sess
	}
	sess.lastAccess = s.now()

	if _, exists := sess.byURL[article.URL]; !exists {
		sess.order = append(sess.order, article.URL)
	}
	sess.byURL[article.URL] = article
}

// Remove はStoreインターフェースを実装する。
func (s *MemoryStore) Remove(sessionID string, url string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return false
	}
	sess.lastAccess = s.now()

	if _, exists := sess.byURL[url]; !exists {
		return false
	}
	delete(sess.byURL, url)
	for i, u := range sess.order {
		if u == url {
			sess.order = append(sess.order[:i], sess.order[i+1:]...)
			break
		}
	}
	return true
}

// Contains はStoreインターフェースを実装する。
func (s *MemoryStore) Contains(sessionID string, url string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[sessionID]
	if !ok {
		return false
	}
	_, exists := sess.byURL[url]
	return exists
}

// cleanupLoop はアイドルセッションを定期的に回収する。
func (s *MemoryStore) cleanupLoop() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

// cleanup はmaxIdleを超えてアクセスのないセッションを削除する。
func (s *MemoryStore) cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-s.maxIdle)
	for id, sess := range s.sessions {
		if sess.lastAccess.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}
