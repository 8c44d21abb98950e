package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/reviewchain/pkg/codec"
	"github.com/ssargent/reviewchain/pkg/review"
)

type fakeService struct {
	submitted []codec.Review
	updated   []codec.Review
	entries   map[string]review.Entry
	listing   review.Listing
	cached    review.Listing

	sendErr error
	listErr error
}

func (f *fakeService) Submit(_ context.Context, r codec.Review) (review.Receipt, error) {
	if f.sendErr != nil {
		return review.Receipt{}, f.sendErr
	}
	f.submitted = append(f.submitted, r)
	return review.Receipt{Signature: solana.Signature{1}, Address: solana.PublicKey{2}}, nil
}

func (f *fakeService) Update(_ context.Context, r codec.Review) (review.Receipt, error) {
	if f.sendErr != nil {
		return review.Receipt{}, f.sendErr
	}
	f.updated = append(f.updated, r)
	return review.Receipt{Signature: solana.Signature{3}}, nil
}

func (f *fakeService) Get(_ context.Context, author solana.PublicKey, title string) (review.Entry, bool, error) {
	e, ok := f.entries[author.String()+"/"+title]
	return e, ok, nil
}

func (f *fakeService) List(context.Context) (review.Listing, error) {
	return f.listing, f.listErr
}

func (f *fakeService) ListCached(context.Context) (review.Listing, error) {
	return f.cached, nil
}

type testServer struct {
	svc     *fakeService
	reg     *prometheus.Registry
	server  *Server
	handler http.Handler
}

func setupTestServer(t *testing.T, apiKey string) *testServer {
	t.Helper()
	svc := &fakeService{entries: map[string]review.Entry{}}
	reg := prometheus.NewRegistry()
	server := NewServer(svc, ServerConfig{APIKey: apiKey}, NewMetrics(reg), zerolog.Nop())
	return &testServer{svc: svc, reg: reg, server: server, handler: server.Router(reg)}
}

func (ts *testServer) do(t *testing.T, method, path, body string, headers map[string]string) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	ts.handler.ServeHTTP(w, req)

	var resp APIResponse
	if strings.HasPrefix(path, "/api/") {
		require.NoError(t, json.NewDecoder(bytes.NewReader(w.Body.Bytes())).Decode(&resp))
	}
	return w, resp
}

const pizzaJSON = `{"title":"Pizza Place","description":"Great crust","rating":5,"location":"Main St"}`

func TestServer_handleHealth(t *testing.T) {
	ts := setupTestServer(t, "")

	w, resp := ts.do(t, "GET", "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, map[string]interface{}{"status": "healthy"}, resp.Data)
}

func TestServer_handleSubmitReview(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		sendErr        error
		expectedStatus int
	}{
		{
			name:           "valid review",
			body:           pizzaJSON,
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "invalid json",
			body:           `{"title":`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "unknown field",
			body:           `{"title":"x","stars":5}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "rating out of byte range",
			body:           `{"title":"x","rating":300}`,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "capacity exceeded",
			body:           pizzaJSON,
			sendErr:        fmt.Errorf("%w: description needs 2000 bytes", codec.ErrCapacityExceeded),
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "no wallet",
			body:           pizzaJSON,
			sendErr:        review.ErrPreconditionFailed,
			expectedStatus: http.StatusPreconditionFailed,
		},
		{
			name:           "transport failure",
			body:           pizzaJSON,
			sendErr:        fmt.Errorf("%w: connection refused", review.ErrTransportFailure),
			expectedStatus: http.StatusBadGateway,
		},
		{
			name:           "unexpected failure",
			body:           pizzaJSON,
			sendErr:        errors.New("boom"),
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := setupTestServer(t, "")
			ts.svc.sendErr = tt.sendErr

			w, resp := ts.do(t, "POST", "/api/v1/reviews", tt.body, map[string]string{"Content-Type": "application/json"})
			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Equal(t, tt.expectedStatus == http.StatusCreated, resp.Success)

			if tt.expectedStatus == http.StatusCreated {
				require.Len(t, ts.svc.submitted, 1)
				assert.Equal(t, codec.Review{
					Title:       "Pizza Place",
					Description: "Great crust",
					Rating:      5,
					Location:    "Main St",
				}, ts.svc.submitted[0])
			} else {
				assert.NotEmpty(t, resp.Error)
			}
		})
	}

	t.Run("transport error message includes cause", func(t *testing.T) {
		ts := setupTestServer(t, "")
		ts.svc.sendErr = fmt.Errorf("%w: connection refused", review.ErrTransportFailure)

		_, resp := ts.do(t, "POST", "/api/v1/reviews", pizzaJSON, nil)
		assert.Contains(t, resp.Error, "connection refused")
	})
}

func TestServer_handleUpdateReview(t *testing.T) {
	ts := setupTestServer(t, "")

	w, resp := ts.do(t, "PUT", "/api/v1/reviews", pizzaJSON, nil)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, resp.Success)
	assert.Len(t, ts.svc.updated, 1)
}

func TestServer_handleListReviews(t *testing.T) {
	ts := setupTestServer(t, "")
	ts.svc.listing = review.Listing{
		PassID: "live",
		Entries: []review.Entry{
			{Address: solana.PublicKey{7}, Review: codec.Review{Title: "Pizza Place", Rating: 5}},
		},
		Skipped: 2,
	}
	ts.svc.cached = review.Listing{PassID: "cached", Cached: true}

	t.Run("live", func(t *testing.T) {
		w, resp := ts.do(t, "GET", "/api/v1/reviews", "", nil)
		require.Equal(t, http.StatusOK, w.Code)

		data, err := json.Marshal(resp.Data)
		require.NoError(t, err)
		var listing review.Listing
		require.NoError(t, json.Unmarshal(data, &listing))
		assert.Equal(t, "live", listing.PassID)
		assert.Equal(t, 2, listing.Skipped)
		require.Len(t, listing.Entries, 1)
		assert.Equal(t, "Pizza Place", listing.Entries[0].Review.Title)
		assert.Equal(t, solana.PublicKey{7}, listing.Entries[0].Address)

		assert.Equal(t, 1.0, testutil.ToFloat64(ts.server.metrics.reviewsListed))
		assert.Equal(t, 2.0, testutil.ToFloat64(ts.server.metrics.accountsSkippedTotal))
	})

	t.Run("cached", func(t *testing.T) {
		w, resp := ts.do(t, "GET", "/api/v1/reviews?cached=true", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "cached", resp.Data.(map[string]interface{})["pass_id"])
	})

	t.Run("transport failure", func(t *testing.T) {
		ts.svc.listErr = fmt.Errorf("%w: 503", review.ErrTransportFailure)
		defer func() { ts.svc.listErr = nil }()

		w, resp := ts.do(t, "GET", "/api/v1/reviews", "", nil)
		assert.Equal(t, http.StatusBadGateway, w.Code)
		assert.False(t, resp.Success)
	})
}

func TestServer_handleGetReview(t *testing.T) {
	ts := setupTestServer(t, "")
	author := solana.NewWallet().PublicKey()
	ts.svc.entries[author.String()+"/Pizza Place"] = review.Entry{
		Review: codec.Review{Title: "Pizza Place", Rating: 5},
	}

	t.Run("found", func(t *testing.T) {
		w, resp := ts.do(t, "GET", "/api/v1/reviews/"+author.String()+"/"+url.PathEscape("Pizza Place"), "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.True(t, resp.Success)
	})

	t.Run("not found", func(t *testing.T) {
		w, _ := ts.do(t, "GET", "/api/v1/reviews/"+author.String()+"/Nowhere", "", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("bad author", func(t *testing.T) {
		w, _ := ts.do(t, "GET", "/api/v1/reviews/not-a-key/Pizza", "", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestServer_WriteRequiresAPIKey(t *testing.T) {
	ts := setupTestServer(t, "secret")

	w, _ := ts.do(t, "POST", "/api/v1/reviews", pizzaJSON, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Empty(t, ts.svc.submitted)

	w, _ = ts.do(t, "POST", "/api/v1/reviews", pizzaJSON, map[string]string{"X-API-Key": "secret"})
	assert.Equal(t, http.StatusCreated, w.Code)

	// Reads stay open
	w, _ = ts.do(t, "GET", "/api/v1/reviews", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestServer_Metrics(t *testing.T) {
	ts := setupTestServer(t, "")
	ts.do(t, "GET", "/api/v1/health", "", nil)

	w, _ := ts.do(t, "GET", "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `reviewchain_http_requests_total{endpoint="/api/v1/health",method="GET",status_code="200"} 1`)
}
