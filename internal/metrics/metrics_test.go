package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg)

	m.CommentCreated()
	m.CommentCreated()
	m.CommentRejected("depth_limit_exceeded")
	m.CommentsDeleted(3)
	m.Vote("like")
	m.Vote("like")
	m.Vote("dislike")
	m.Verification(VerifyAccepted)
	m.Verification(VerifyError)
	m.ObserveHTTP("POST", "/posts/{slug}/comments", "201", 0.02)

	require.Equal(t, 2.0, testutil.ToFloat64(m.created))
	require.Equal(t, 1.0, testutil.ToFloat64(m.rejected.WithLabelValues("depth_limit_exceeded")))
	require.Equal(t, 3.0, testutil.ToFloat64(m.deleted))
	require.Equal(t, 2.0, testutil.ToFloat64(m.votes.WithLabelValues("like")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.votes.WithLabelValues("dislike")))
	require.Equal(t, 1.0, testutil.ToFloat64(m.verification.WithLabelValues(VerifyAccepted)))
	require.Equal(t, 1, testutil.CollectAndCount(m.httpDuration))
}

// TestNew_DuplicateRegistrationPanics — повторная регистрация в одном реестре недопустима.
func TestNew_DuplicateRegistrationPanics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	_ = New(reg)

	require.Panics(t, func() { _ = New(reg) })
}
