// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector はPrometheusメトリクスを収集する実装。
// aggregate.MetricsRecorderとcache.HitRecorderの両方を実装する。
type Collector struct {
	fetchSuccess *prometheus.CounterVec
	fetchFail    *prometheus.CounterVec
	fetchLatency prometheus.Histogram
	cacheHits    *prometheus.CounterVec
	cacheMisses  *prometheus.CounterVec
	aggregated   prometheus.Counter
	httpStatus   *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		fetchSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsdeck_fetch_success_total",
			Help: "ソースフェッチ成功の合計数",
		}, []string{"source"}),
		fetchFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsdeck_fetch_fail_total",
			Help: "ソースフェッチ失敗の合計数",
		}, []string{"source"}),
		fetchLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "newsdeck_fetch_latency_seconds",
			Help:    "ソースフェッチのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		cacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsdeck_cache_hits_total",
			Help: "キャッシュヒットの合計数",
		}, []string{"source"}),
		cacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsdeck_cache_misses_total",
			Help: "キャッシュミスの合計数",
		}, []string{"source"}),
		aggregated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "newsdeck_articles_aggregated_total",
			Help: "集約された記事の合計数（重複排除後）",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "newsdeck_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.fetchSuccess,
		c.fetchFail,
		c.fetchLatency,
		c.cacheHits,
		c.cacheMisses,
		c.aggregated,
		c.httpStatus,
	)

	return c
}

// RecordFetchSuccess はフェッチ成功を記録する。
func (c *Collector) RecordFetchSuccess(source string) {
	c.fetchSuccess.WithLabelValues(source).Inc()
}

// RecordFetchFailure はフェッチ失敗を記録する。
func (c *Collector) RecordFetchFailure(source string) {
	c.fetchFail.WithLabelValues(source).Inc()
}

// RecordFetchLatency はフェッチのレイテンシを記録する。
func (c *Collector) RecordFetchLatency(duration time.Duration) {
	c.fetchLatency.Observe(duration.Seconds())
}

// RecordCacheHit はキャッシュヒットを記録する。
func (c *Collector) RecordCacheHit(source string) {
	c.cacheHits.WithLabelValues(source).Inc()
}

// RecordCacheMiss はキャッシュミスを記録する。
func (c *Collector) RecordCacheMiss(source string) {
	c.cacheMisses.WithLabelValues(source).Inc()
}

// RecordArticlesAggregated は集約された記事数を記録する。
func (c *Collector) RecordArticlesAggregated(count int) {
	c.aggregated.Add(float64(count))
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
