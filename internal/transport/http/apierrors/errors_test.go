package apierrors

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/blog-comments/internal/service"
)

func wrap(err error) error { return fmt.Errorf("service/moderation/Insert: %w", err) }

func TestToHTTP_ServiceMapping(t *testing.T) {
	tcs := []struct {
		name       string
		in         error
		wantStatus int
		wantCode   string
	}{
		{"malformed", ErrMalformedRequest, http.StatusBadRequest, "invalid_argument"},
		{"invalid_argument", wrap(service.ErrInvalidArgument), http.StatusBadRequest, "invalid_argument"},
		{"verification", wrap(service.ErrVerificationFailed), http.StatusUnprocessableEntity, "verification_failed"},
		{"post_not_found", wrap(service.ErrPostNotFound), http.StatusNotFound, "post_not_found"},
		{"parent_not_found", wrap(service.ErrParentNotFound), http.StatusNotFound, "parent_not_found"},
		{"not_found", wrap(service.ErrNotFound), http.StatusNotFound, "not_found"},
		{"cross_post", wrap(service.ErrCrossPostReply), http.StatusConflict, "cross_post_reply"},
		{"depth", wrap(service.ErrDepthLimitExceeded), http.StatusConflict, "depth_limit_exceeded"},
		{"forbidden", wrap(service.ErrForbidden), http.StatusForbidden, "forbidden"},
		{"canceled", wrap(context.Canceled), StatusClientClosedRequest, "canceled"},
		{"deadline", wrap(context.DeadlineExceeded), http.StatusGatewayTimeout, "deadline_exceeded"},
		{"internal", wrap(service.ErrInternal), http.StatusInternalServerError, "internal"},
		{"cycle", fmt.Errorf("op: %w: %w", service.ErrInternal, service.ErrTreeCycle), http.StatusInternalServerError, "internal"},
		{"unknown", errors.New("mongo: socket closed"), http.StatusInternalServerError, "internal"},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			gotStatus, resp := ToHTTP(tc.in)
			require.Equal(t, tc.wantStatus, gotStatus)
			require.Equal(t, tc.wantCode, resp.Error.Code)
			require.NotEmpty(t, resp.Error.Message)
		})
	}
}

func TestToHTTP_NilError_Returns500Internal(t *testing.T) {
	gotStatus, resp := ToHTTP(nil)
	require.Equal(t, http.StatusInternalServerError, gotStatus)
	require.Equal(t, "internal", resp.Error.Code)
	require.Equal(t, "internal error", resp.Error.Message)
}

func TestWriteError_IncludesRequestIDAndHidesDetails(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/comments/x", nil)
	req.Header.Set("X-Request-Id", "rid-1")
	rr := httptest.NewRecorder()

	WriteError(rr, req, errors.New("pq: password authentication failed"))

	require.Equal(t, http.StatusInternalServerError, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	require.NotContains(t, rr.Body.String(), "password")

	var env ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	require.Equal(t, "rid-1", env.Error.RequestID)
	require.Equal(t, "internal", env.Error.Code)
}
