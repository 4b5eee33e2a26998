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
// 貸出エンジンのMetricsRecorderとして使用する。
type Collector struct {
	loansCreated   prometheus.Counter
	loansReturned  prometheus.Counter
	loansExpired   prometheus.Counter
	borrowRejected *prometheus.CounterVec
	sweepDuration  prometheus.Histogram
	httpStatus     *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		loansCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "libman_loans_created_total",
			Help: "作成された貸出の合計数",
		}),
		loansReturned: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "libman_loans_returned_total",
			Help: "返却された貸出の合計数",
		}),
		loansExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "libman_loans_expired_total",
			Help: "自動期限切れ処理された貸出の合計数",
		}),
		borrowRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "libman_borrow_rejected_total",
			Help: "拒否理由別の貸出拒否数",
		}, []string{"reason"}),
		sweepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "libman_expiry_sweep_duration_seconds",
			Help:    "期限切れスイープの所要時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "libman_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.loansCreated,
		c.loansReturned,
		c.loansExpired,
		c.borrowRejected,
		c.sweepDuration,
		c.httpStatus,
	)

	return c
}

// RecordLoanCreated は貸出の作成を記録する。
func (c *Collector) RecordLoanCreated() {
	c.loansCreated.Inc()
}

// RecordLoanReturned は貸出の返却を記録する。
func (c *Collector) RecordLoanReturned() {
	c.loansReturned.Inc()
}

// RecordLoansExpired は期限切れ処理された貸出数を記録する。
func (c *Collector) RecordLoansExpired(count int) {
	c.loansExpired.Add(float64(count))
}

// RecordBorrowRejected は貸出の拒否を理由付きで記録する。
func (c *Collector) RecordBorrowRejected(reason string) {
	c.borrowRejected.WithLabelValues(reason).Inc()
}

// RecordSweepDuration は期限切れスイープの所要時間を記録する。
func (c *Collector) RecordSweepDuration(duration time.Duration) {
	c.sweepDuration.Observe(duration.Seconds())
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
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
