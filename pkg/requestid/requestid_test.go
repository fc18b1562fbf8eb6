package requestid_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Tech-Scrappers/hrms-shared-contracts/pkg/requestid"
)

func serve(header string) (ctxID, respID string) {
	h := requestid.Middleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		ctxID = requestid.FromContext(r.Context())
	}))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(requestid.Header, header)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return ctxID, rec.Header().Get(requestid.Header)
}

func TestMiddleware(t *testing.T) {
	t.Parallel()

	t.Run("keeps a valid caller id", func(t *testing.T) {
		t.Parallel()

		ctxID, respID := serve("req_abc-123")
		assert.Equal(t, "req_abc-123", ctxID)
		assert.Equal(t, "req_abc-123", respID)
	})

	for _, bad := range []string{"", "a b", "<script>", strings.Repeat("a", 129)} {
		t.Run("replaces "+bad, func(t *testing.T) {
			t.Parallel()

			ctxID, respID := serve(bad)
			assert.NotEmpty(t, ctxID)
			assert.NotEqual(t, bad, ctxID)
			assert.Equal(t, ctxID, respID)
		})
	}
}

func TestLoggerExtractor(t *testing.T) {
	t.Parallel()

	_, ok := requestid.LoggerExtractor()(context.Background())
	assert.False(t, ok)

	attr, ok := requestid.LoggerExtractor()(requestid.WithContext(context.Background(), "r1"))
	assert.True(t, ok)
	assert.Equal(t, "r1", attr.Value.String())
}
