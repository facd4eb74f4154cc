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
// ハンドラーやサービス層から利用する。
type MetricsCollector interface {
	RecordLookupSuccess()
	RecordLookupFailure()
	RecordLookupLatency(duration time.Duration)
	RecordHandshake(result string)
	RecordLogSaved()
	RecordHTTPStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	lookupSuccess prometheus.Counter
	lookupFail    prometheus.Counter
	lookupLatency prometheus.Histogram
	handshake     *prometheus.CounterVec
	logsSaved     prometheus.Counter
	httpStatus    *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		lookupSuccess: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nutrilog_lookup_success_total",
			Help: "栄養データ生成成功の合計数",
		}),
		lookupFail: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nutrilog_lookup_fail_total",
			Help: "栄養データ生成失敗の合計数",
		}),
		lookupLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "nutrilog_lookup_latency_seconds",
			Help:    "栄養データ生成のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		handshake: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nutrilog_handshake_total",
			Help: "セッションハンドシェイクの結果別合計数",
		}, []string{"result"}),
		logsSaved: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "nutrilog_logs_saved_total",
			Help: "保存された栄養記録の合計数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "nutrilog_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.lookupSuccess,
		c.lookupFail,
		c.lookupLatency,
		c.handshake,
		c.logsSaved,
		c.httpStatus,
	)

	return c
}

// RecordLookupSuccess は栄養データ生成成功を記録する。
func (c *Collector) RecordLookupSuccess() {
	c.lookupSuccess.Inc()
}

// RecordLookupFailure は栄養データ生成失敗を記録する。
func (c *Collector) RecordLookupFailure() {
	c.lookupFail.Inc()
}

// RecordLookupLatency は栄養データ生成のレイテンシを記録する。
func (c *Collector) RecordLookupLatency(duration time.Duration) {
	c.lookupLatency.Observe(duration.Seconds())
}

// RecordHandshake はハンドシェイクの結果（success/fail）を記録する。
func (c *Collector) RecordHandshake(result string) {
	c.handshake.WithLabelValues(result).Inc()
}

// RecordLogSaved は栄養記録の保存を記録する。
func (c *Collector) RecordLogSaved() {
	c.logsSaved.Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
