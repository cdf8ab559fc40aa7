package verify

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/blog-comments/internal/config"
	"github.com/pribylovaa/blog-comments/internal/metrics"
	"github.com/pribylovaa/blog-comments/pkg/log"
)

// recorder — накопитель исходов проверки.
type recorder struct {
	mu      sync.Mutex
	results []string
}

func (r *recorder) Verification(result string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
}

func newVerifier(t *testing.T, h http.HandlerFunc, timeout time.Duration) (*HTTPVerifier, *recorder) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	rec := &recorder{}
	return NewHTTP(config.VerifyConfig{URL: srv.URL, Secret: "s3cr3t", Timeout: timeout}, rec), rec
}

func TestVerify_Accepted_SendsForm(t *testing.T) {
	t.Parallel()

	var (
		method string
		form   url.Values
	)
	v, rec := newVerifier(t, func(w http.ResponseWriter, r *http.Request) {
		method = r.Method
		_ = r.ParseForm()
		form = r.PostForm
		_, _ = w.Write([]byte(`{"success": true}`))
	}, time.Second)

	ctx := WithRemoteIP(context.Background(), "203.0.113.7")
	require.True(t, v.Verify(ctx, "tok-1"))
	require.Equal(t, []string{metrics.VerifyAccepted}, rec.results)

	require.Equal(t, http.MethodPost, method)
	require.Equal(t, "s3cr3t", form.Get("secret"))
	require.Equal(t, "tok-1", form.Get("response"))
	require.Equal(t, "203.0.113.7", form.Get("remoteip"))
}

func TestVerify_FailClosed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		handler http.HandlerFunc
		want    string
	}{
		{
			name: "rejected",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`{"success": false, "error-codes": ["invalid-input-response"]}`))
			},
			want: metrics.VerifyRejected,
		},
		{
			name: "server error",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			},
			want: metrics.VerifyError,
		},
		{
			name: "garbage body",
			handler: func(w http.ResponseWriter, _ *http.Request) {
				_, _ = w.Write([]byte(`<html>`))
			},
			want: metrics.VerifyError,
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(2 * time.Second):
				}
				_, _ = w.Write([]byte(`{"success": true}`))
			},
			want: metrics.VerifyError,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			v, rec := newVerifier(t, tt.handler, 100*time.Millisecond)
			require.False(t, v.Verify(context.Background(), "tok"))
			require.Equal(t, []string{tt.want}, rec.results)
		})
	}
}

func TestVerify_Unreachable(t *testing.T) {
	t.Parallel()

	rec := &recorder{}
	v := NewHTTP(config.VerifyConfig{URL: "http://127.0.0.1:1/siteverify", Secret: "s", Timeout: 200 * time.Millisecond}, rec)

	require.False(t, v.Verify(context.Background(), "tok"))
	require.Equal(t, []string{metrics.VerifyError}, rec.results)
}

// TestVerify_TokenNotLogged — токен не попадает в логи ни при отказе, ни при ошибке.
func TestVerify_TokenNotLogged(t *testing.T) {
	t.Parallel()

	v, _ := newVerifier(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"success": false}`))
	}, time.Second)

	var buf bytes.Buffer
	lg := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := log.Into(context.Background(), lg)

	require.False(t, v.Verify(ctx, "very-secret-token"))
	require.NotContains(t, buf.String(), "very-secret-token")
	require.Contains(t, buf.String(), "verification_rejected")
}

func TestAllowAll(t *testing.T) {
	t.Parallel()
	require.True(t, AllowAll{}.Verify(context.Background(), "anything"))
}
