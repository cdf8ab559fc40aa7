// metrics — прикладные метрики comments-service (Prometheus).
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Результаты проверки «человек/бот».
const (
	VerifyAccepted = "accepted"
	VerifyRejected = "rejected"
	VerifyError    = "error"
)

// Metrics — набор счётчиков и гистограмм сервиса.
type Metrics struct {
	created      prometheus.Counter
	rejected     *prometheus.CounterVec
	deleted      prometheus.Counter
	votes        *prometheus.CounterVec
	verification *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec
}

// New регистрирует метрики в reg (prometheus.DefaultRegisterer в main, новый реестр в тестах).
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		created: f.NewCounter(prometheus.CounterOpts{
			Name: "comments_created_total",
			Help: "Total number of comments created",
		}),
		rejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "comments_rejected_total",
			Help: "Comments rejected on insert, by reason",
		}, []string{"reason"}),
		deleted: f.NewCounter(prometheus.CounterOpts{
			Name: "comments_deleted_total",
			Help: "Total number of comments removed, including cascaded replies",
		}),
		votes: f.NewCounterVec(prometheus.CounterOpts{
			Name: "comment_votes_total",
			Help: "Vote toggles, by direction",
		}, []string{"direction"}),
		verification: f.NewCounterVec(prometheus.CounterOpts{
			Name: "verification_results_total",
			Help: "Bot verification outcomes",
		}, []string{"result"}),
		httpDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
}

func (m *Metrics) CommentCreated() { m.created.Inc() }

// CommentRejected — reason: код ошибки (verification_failed, depth_limit_exceeded, ...).
func (m *Metrics) CommentRejected(reason string) { m.rejected.WithLabelValues(reason).Inc() }

func (m *Metrics) CommentsDeleted(n int64) { m.deleted.Add(float64(n)) }

func (m *Metrics) Vote(direction string) { m.votes.WithLabelValues(direction).Inc() }

func (m *Metrics) Verification(result string) { m.verification.WithLabelValues(result).Inc() }

func (m *Metrics) ObserveHTTP(method, route, status string, seconds float64) {
	m.httpDuration.WithLabelValues(method, route, status).Observe(seconds)
}
