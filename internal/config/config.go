// Package config は環境変数からのアプリケーション設定読み込みを提供する。
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hitoshi/newsdeck/internal/model"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Fetch
	FetchTimeout       time.Duration
	FetchMaxSize       int64
	FetchMaxConcurrent int
	RedditLimit        int
	UserAgent          string
	// OutboundRatePerMin はソースごとの外向きリクエスト上限（req/min）。
	// 接続先APIのレート制限を尊重するための自主規制。
	OutboundRatePerMin int

	// Cache
	CacheTTL  time.Duration
	RedisAddr string // 空ならプロセス内キャッシュを使用

	// Worker
	RefreshInterval   time.Duration
	RefreshCategories []string

	// Rate Limit
	RateLimitGeneral int

	// Session
	SessionMaxAge int

	// Server
	ServerPort string

	// CORS
	CORSAllowedOrigin string
}

// Load は環境変数からConfigを読み込む。
// すべての項目に既定値があり、未設定でも起動できる。
// REFRESH_CATEGORIESに未知のカテゴリが含まれる場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{
		FetchTimeout:       getEnvDuration("FETCH_TIMEOUT", 15*time.Second),
		FetchMaxSize:       getEnvInt64("FETCH_MAX_SIZE", 1048576),
		FetchMaxConcurrent: getEnvInt("FETCH_MAX_CONCURRENT", 4),
		RedditLimit:        getEnvInt("REDDIT_LIMIT", 25),
		UserAgent:          getEnvString("USER_AGENT", "Newsdeck/1.0 Trending News Aggregator (+https://github.com/hitoshi/newsdeck)"),
		OutboundRatePerMin: getEnvInt("OUTBOUND_RATE_PER_MIN", 30),

		CacheTTL:  getEnvDuration("CACHE_TTL", 5*time.Minute),
		RedisAddr: getEnvString("REDIS_ADDR", ""),

		RefreshInterval:   getEnvDuration("REFRESH_INTERVAL", 5*time.Minute),
		RefreshCategories: splitCSV(getEnvString("REFRESH_CATEGORIES", "general,technology")),

		RateLimitGeneral: getEnvInt("RATE_LIMIT_GENERAL", 120),

		SessionMaxAge: getEnvInt("SESSION_MAX_AGE", 86400),

		ServerPort: getEnvString("SERVER_PORT", "8080"),

		CORSAllowedOrigin: getEnvString("CORS_ALLOWED_ORIGIN", "http://localhost:3000"),
	}

	// カテゴリ名の検証: 未知のカテゴリを黙ってフェッチ0件にしない
	var unknown []string
	for _, c := range cfg.RefreshCategories {
		if _, ok := model.DefaultCategories[c]; !ok {
			unknown = append(unknown, c)
		}
	}
	if len(unknown) > 0 {
		return nil, fmt.Errorf("unknown categories in REFRESH_CATEGORIES: %v", unknown)
	}

	return cfg, nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvInt64(key string, defaultVal int64) int64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return defaultVal
	}
	return i
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

// splitCSV はカンマ区切り文字列を空白除去済みのリストに分解する。
func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
