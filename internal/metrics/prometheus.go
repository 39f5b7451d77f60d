package metrics

import (
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	QueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vbm_explorer_query_duration_seconds",
			Help:    "Query processing duration in seconds, narration included",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"match"},
	)

	QueryTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vbm_explorer_query_total",
			Help: "Total number of questions processed",
		},
		[]string{"match"},
	)

	ConfidenceScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vbm_explorer_confidence_score",
			Help:    "Matcher confidence per question",
			Buckets: []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0},
		},
	)

	MatchedAnalyses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vbm_explorer_matched_analysis_total",
			Help: "Confident matches per outcome and specification",
		},
		[]string{"outcome", "specification"},
	)

	NarrationTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vbm_explorer_narration_total",
			Help: "Narration requests by provider and status",
		},
		[]string{"provider", "status"},
	)

	NarrationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vbm_explorer_narration_duration_seconds",
			Help:    "Narration provider latency in seconds",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"provider"},
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vbm_explorer_cache_hits_total",
			Help: "Total cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vbm_explorer_cache_misses_total",
			Help: "Total cache misses",
		},
		[]string{"cache_type"},
	)

	RateLimited = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "vbm_explorer_rate_limited_total",
			Help: "Requests rejected by the session quota",
		},
	)

	UserFeedback = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vbm_explorer_feedback_total",
			Help: "User feedback by type",
		},
		[]string{"type"},
	)

	CorpusAnalyses = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vbm_explorer_corpus_analyses",
			Help: "Loaded analyses per outcome",
		},
		[]string{"outcome"},
	)

	RedisKeyspace = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vbm_explorer_redis_keyspace",
			Help: "Redis keyspace hits and misses at the last health check",
		},
		[]string{"result"},
	)

	ServiceUp = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vbm_explorer_service_up",
			Help: "1 when the last health check of a dependency passed",
		},
		[]string{"service"},
	)
)

var registerOnce sync.Once

// Init registers every collector with the default registry. Safe to call more than once.
func Init() {
	registerOnce.Do(func() {
		prometheus.MustRegister(QueryDuration)
		prometheus.MustRegister(QueryTotal)
		prometheus.MustRegister(ConfidenceScore)
		prometheus.MustRegister(MatchedAnalyses)
		prometheus.MustRegister(NarrationTotal)
		prometheus.MustRegister(NarrationDuration)
		prometheus.MustRegister(CacheHits)
		prometheus.MustRegister(CacheMisses)
		prometheus.MustRegister(RateLimited)
		prometheus.MustRegister(UserFeedback)
		prometheus.MustRegister(CorpusAnalyses)
		prometheus.MustRegister(RedisKeyspace)
		prometheus.MustRegister(ServiceUp)
	})
}

func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
