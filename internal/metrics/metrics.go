// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層とHTTPミドルウェアから利用する。
type MetricsCollector interface {
	RecordRegistration(success bool)
	RecordLogin(success bool)
	RecordBooking(fare float64)
	RecordHTTPStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	registrations *prometheus.CounterVec
	logins        *prometheus.CounterVec
	bookings      prometheus.Counter
	fares         prometheus.Histogram
	httpStatus    *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ridebook_registrations_total",
			Help: "アカウント登録の試行数（結果別）",
		}, []string{"result"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ridebook_logins_total",
			Help: "ログインの試行数（結果別）",
		}, []string{"result"}),
		bookings: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ridebook_bookings_total",
			Help: "作成された予約の合計数",
		}),
		fares: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "ridebook_booking_fare",
			Help:    "予約ごとの運賃の分布",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500},
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ridebook_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.registrations,
		c.logins,
		c.bookings,
		c.fares,
		c.httpStatus,
	)

	return c
}

// RecordRegistration はアカウント登録の結果を記録する。
func (c *Collector) RecordRegistration(success bool) {
	c.registrations.WithLabelValues(resultLabel(success)).Inc()
}

// RecordLogin はログインの結果を記録する。
func (c *Collector) RecordLogin(success bool) {
	c.logins.WithLabelValues(resultLabel(success)).Inc()
}

// RecordBooking は予約の作成とその運賃を記録する。
func (c *Collector) RecordBooking(fare float64) {
	c.bookings.Inc()
	c.fares.Observe(fare)
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}

// NopCollector は何も記録しないMetricsCollector。
// コンソールモードやテストで使用する。
type NopCollector struct{}

func (NopCollector) RecordRegistration(bool) {}
func (NopCollector) RecordLogin(bool)        {}
func (NopCollector) RecordBooking(float64)   {}
func (NopCollector) RecordHTTPStatus(int)    {}

var (
	_ MetricsCollector = (*Collector)(nil)
	_ MetricsCollector = NopCollector{}
)

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// NewHTTPStatusMiddleware はレスポンスのステータスコードを記録するミドルウェアを返す。
func NewHTTPStatusMiddleware(collector MetricsCollector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rec, r)
			collector.RecordHTTPStatus(rec.statusCode)
		})
	}
}

// statusRecorder はhttp.ResponseWriterをラップし、最初に書き込まれたステータスコードを記録する。
type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if !sr.written {
		sr.statusCode = code
		sr.written = true
	}
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	sr.written = true
	return sr.ResponseWriter.Write(b)
}
