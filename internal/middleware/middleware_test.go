package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRequestIDMiddleware(t *testing.T) {
	t.Run("generates an id when none is supplied", func(t *testing.T) {
		var ctxID string
		handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctxID = GetRequestID(r.Context())
		}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/words", nil))

		require.NotEmpty(t, ctxID)
		_, err := uuid.Parse(ctxID)
		assert.NoError(t, err)
		assert.Equal(t, ctxID, rec.Header().Get("X-Request-ID"))
	})

	t.Run("honors a valid client id", func(t *testing.T) {
		supplied := uuid.New().String()
		var ctxID string
		handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctxID = GetRequestID(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/words", nil)
		req.Header.Set("X-Request-ID", supplied)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, supplied, ctxID)
		assert.Equal(t, supplied, rec.Header().Get("X-Request-ID"))
	})

	t.Run("replaces a malformed client id", func(t *testing.T) {
		var ctxID string
		handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctxID = GetRequestID(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/words", nil)
		req.Header.Set("X-Request-ID", "not-a-uuid")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.NotEqual(t, "not-a-uuid", ctxID)
		_, err := uuid.Parse(ctxID)
		assert.NoError(t, err)
	})
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := RecoveryMiddleware(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()

	assert.NotPanics(t, func() {
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/quiz/sessions", nil))
	})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"internal server error"}`, rec.Body.String())
}
