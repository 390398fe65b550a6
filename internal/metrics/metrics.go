package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	FetchTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chaptermap_fetch_total",
		Help: "Total spreadsheet fetch attempts",
	})
	FetchFailTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chaptermap_fetch_fail_total",
		Help: "Total failed load cycles by kind (fetch, decode)",
	}, []string{"kind"})
	FetchDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "chaptermap_fetch_duration_ms",
		Help:    "Spreadsheet fetch duration in milliseconds",
		Buckets: []float64{10, 50, 100, 200, 500, 1000, 2000, 5000, 10000},
	})
	FetchBytes = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "chaptermap_fetch_bytes",
		Help:    "Spreadsheet payload size in bytes",
		Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
	})
	RowsParsedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chaptermap_rows_parsed_total",
		Help: "Total rows accepted as members",
	})
	RowsRejectedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chaptermap_rows_rejected_total",
		Help: "Total rows rejected by reason",
	}, []string{"reason"})
	MembersLoaded = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "chaptermap_members_loaded",
		Help: "Members in the current snapshot",
	})
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chaptermap_csv_cache_hits_total",
		Help: "Total payload cache hits",
	})
	CacheMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "chaptermap_csv_cache_misses_total",
		Help: "Total payload cache misses",
	})
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "chaptermap_requests_total",
		Help: "Total API requests by route",
	}, []string{"route"})
	RequestDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "chaptermap_request_duration_ms",
		Help:    "API request duration in milliseconds",
		Buckets: []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000},
	}, []string{"route"})
)

func init() {
	prometheus.MustRegister(FetchTotal)
	prometheus.MustRegister(FetchFailTotal)
	prometheus.MustRegister(FetchDurationMs)
	prometheus.MustRegister(FetchBytes)
	prometheus.MustRegister(RowsParsedTotal)
	prometheus.MustRegister(RowsRejectedTotal)
	prometheus.MustRegister(MembersLoaded)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
}

// 文档注释：返回 Prometheus 指标处理器，在主入口挂载到 {API_BASE}/metrics
func Handler() http.Handler { return promhttp.Handler() }
