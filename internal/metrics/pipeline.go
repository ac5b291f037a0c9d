package metrics

import "github.com/prometheus/client_golang/prometheus"

// Query pipeline Prometheus metrics.
var (
	PipelineQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prodask",
			Name:      "pipeline_queries_total",
			Help:      "Total queries processed, by terminal state",
		},
		[]string{"state"}, // generated / blocked / no_evidence / error
	)

	PipelineStageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "prodask",
			Name:      "pipeline_stage_duration_seconds",
			Help:      "Per-stage pipeline duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"stage"},
	)

	ModerationVerdictsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prodask",
			Name:      "moderation_verdicts_total",
			Help:      "Moderation verdicts, by outcome",
		},
		[]string{"verdict"}, // allowed / rejected / unavailable
	)

	RetrievalLadderStageTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prodask",
			Name:      "retrieval_ladder_stage_total",
			Help:      "Which fallback ladder stage produced results",
		},
		[]string{"stage"},
	)

	RetrievalDocuments = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "prodask",
			Name:      "retrieval_documents",
			Help:      "Documents retrieved per query after dedup and truncation",
			Buckets:   []float64{0, 1, 2, 4, 6, 8, 10, 13},
		},
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers Prometheus pipeline metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(PipelineQueriesTotal)
	prometheus.MustRegister(PipelineStageDuration)
	prometheus.MustRegister(ModerationVerdictsTotal)
	prometheus.MustRegister(RetrievalLadderStageTotal)
	prometheus.MustRegister(RetrievalDocuments)
	pipelineMetricsRegistered = true
}
