// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ゲートウェイクライアントとハンドラー層から利用する。
type MetricsCollector interface {
	RecordUpstreamRequest(method string, statusCode int)
	RecordUpstreamLatency(duration time.Duration)
	RecordUpstreamFailure(reason string)
	RecordLoginSuccess()
	RecordLoginFailure()
	RecordStaleResponseDiscarded()
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  prometheus.Histogram
	upstreamFail     *prometheus.CounterVec
	loginSuccess     prometheus.Counter
	loginFail        prometheus.Counter
	staleDiscarded   prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "connectfood_upstream_requests_total",
			Help: "バックエンドAPIリクエストのメソッド・ステータス別合計数",
		}, []string{"method", "status_code"}),
		upstreamLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "connectfood_upstream_latency_seconds",
			Help:    "バックエンドAPIリクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		upstreamFail: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "connectfood_upstream_fail_total",
			Help: "バックエンドAPIリクエスト失敗の理由別合計数",
		}, []string{"reason"}),
		loginSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "connectfood_login_success_total",
			Help: "ログイン成功の合計数",
		}),
		loginFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "connectfood_login_fail_total",
			Help: "ログイン失敗の合計数",
		}),
		staleDiscarded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "connectfood_stale_responses_discarded_total",
			Help: "破棄された古い一覧レスポンスの合計数",
		}),
	}

	reg.MustRegister(
		c.upstreamRequests,
		c.upstreamLatency,
		c.upstreamFail,
		c.loginSuccess,
		c.loginFail,
		c.staleDiscarded,
	)

	return c
}

// RecordUpstreamRequest はバックエンドAPIリクエストの完了を記録する。
func (c *Collector) RecordUpstreamRequest(method string, statusCode int) {
	c.upstreamRequests.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
}

// RecordUpstreamLatency はバックエンドAPIリクエストのレイテンシを記録する。
func (c *Collector) RecordUpstreamLatency(duration time.Duration) {
	c.upstreamLatency.Observe(duration.Seconds())
}

// RecordUpstreamFailure はバックエンドAPIリクエストの失敗を記録する。
func (c *Collector) RecordUpstreamFailure(reason string) {
	c.upstreamFail.WithLabelValues(reason).Inc()
}

// RecordLoginSuccess はログイン成功を記録する。
func (c *Collector) RecordLoginSuccess() {
	c.loginSuccess.Inc()
}

// RecordLoginFailure はログイン失敗を記録する。
func (c *Collector) RecordLoginFailure() {
	c.loginFail.Inc()
}

// RecordStaleResponseDiscarded は古い一覧レスポンスの破棄を記録する。
func (c *Collector) RecordStaleResponseDiscarded() {
	c.staleDiscarded.Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
