// Package metrics exposes Prometheus instrumentation for ingestion and queries.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type collectors struct {
	once sync.Once

	filesProcessed  prometheus.Counter
	filesSkipped    prometheus.Counter
	summaryFailures prometheus.Counter
	pointsStored    prometheus.Counter
	embedFailures   prometheus.Counter
	queries         prometheus.Counter
	queryCacheHits  prometheus.Counter

	ingestDuration prometheus.Histogram
	queryDuration  prometheus.Histogram
}

var m collectors

func (c *collectors) init() {
	c.once.Do(func() {
		c.filesProcessed = prometheus.NewCounter(prometheus.CounterOpts{Name: "repo_rag_files_processed_total", Help: "Files analyzed during ingestion"})
		c.filesSkipped = prometheus.NewCounter(prometheus.CounterOpts{Name: "repo_rag_files_skipped_total", Help: "Admitted files skipped as unreadable or non-text"})
		c.summaryFailures = prometheus.NewCounter(prometheus.CounterOpts{Name: "repo_rag_summary_failures_total", Help: "LLM summaries replaced by a failure sentinel"})
		c.pointsStored = prometheus.NewCounter(prometheus.CounterOpts{Name: "repo_rag_points_stored_total", Help: "Points upserted into the vector index"})
		c.embedFailures = prometheus.NewCounter(prometheus.CounterOpts{Name: "repo_rag_embed_failures_total", Help: "Texts excluded because embedding failed or mismatched"})
		c.queries = prometheus.NewCounter(prometheus.CounterOpts{Name: "repo_rag_queries_total", Help: "Questions answered"})
		c.queryCacheHits = prometheus.NewCounter(prometheus.CounterOpts{Name: "repo_rag_query_cache_hits_total", Help: "Question embeddings served from cache"})

		c.ingestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "repo_rag_ingest_seconds",
			Help:    "Duration of repository ingestion runs",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		})
		c.queryDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "repo_rag_query_seconds",
			Help:    "Duration of question answering",
			Buckets: prometheus.DefBuckets,
		})

		prometheus.MustRegister(
			c.filesProcessed, c.filesSkipped, c.summaryFailures, c.pointsStored, c.embedFailures,
			c.queries, c.queryCacheHits,
			c.ingestDuration, c.queryDuration,
		)
	})
}

func FileProcessed() { m.init(); m.filesProcessed.Inc() }
func FileSkipped() { m.init(); m.filesSkipped.Inc() }
func SummaryFailed() { m.init(); m.summaryFailures.Inc() }
func EmbedFailed() { m.init(); m.embedFailures.Inc() }
func QueryAnswered() { m.init(); m.queries.Inc() }
func QueryCacheHit() { m.init(); m.queryCacheHits.Inc() }
func PointsStored(n int) { m.init(); m.pointsStored.Add(float64(n)) }

func ObserveIngest(d time.Duration) { m.init(); m.ingestDuration.Observe(d.Seconds()) }
func ObserveQuery(d time.Duration) { m.init(); m.queryDuration.Observe(d.Seconds()) }

// Handler serves the default Prometheus registry.
func Handler() http.Handler {
	m.init()
	return promhttp.Handler()
}
