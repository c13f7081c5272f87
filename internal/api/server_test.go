package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/projectintel/internal/config"
	"github.com/jonesrussell/projectintel/internal/discovery"
	"github.com/jonesrussell/projectintel/internal/intel"
	"github.com/jonesrussell/projectintel/internal/logger"
)

type fakeAnalyzer struct {
	report *intel.Report
	err    error
	panics bool
}

func (f *fakeAnalyzer) Analyze(_ context.Context, project string) (*intel.Report, error) {
	if f.panics {
		panic("analyzer exploded")
	}
	if f.err != nil {
		return nil, f.err
	}
	r := *f.report
	r.Project = project
	return &r, nil
}

func newTestServer(analyzer Analyzer) *Server {
	cfg := &config.Config{}
	cfg.Server.Port = 8060
	handler := NewHandler(analyzer, discovery.NewPageMetaExtractor(logger.NewNopLogger()), logger.NewNopLogger())
	return NewServer(cfg, handler, logger.NewNopLogger())
}

func doRequest(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestAnalyzeEndpoint(t *testing.T) {
	srv := newTestServer(&fakeAnalyzer{report: &intel.Report{Insight: "## Overview"}})

	w := doRequest(srv, http.MethodPost, "/api/v1/analyze", `{"project":"zora"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var report intel.Report
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, "zora", report.Project)
	assert.Equal(t, "## Overview", report.Insight)
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
}

func TestAnalyzeEndpoint_MissingProject(t *testing.T) {
	srv := newTestServer(&fakeAnalyzer{report: &intel.Report{}})

	w := doRequest(srv, http.MethodPost, "/api/v1/analyze", `{}`)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_REQUEST", resp.Code)
}

func TestAnalyzeEndpoint_NoDiscovery(t *testing.T) {
	srv := newTestServer(&fakeAnalyzer{err: intel.ErrNoDiscovery})

	w := doRequest(srv, http.MethodPost, "/api/v1/analyze", `{"project":"ghost"}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "NO_SOURCES_FOUND", resp.Code)
}

func TestAnalyzeEndpoint_PanicIsRecovered(t *testing.T) {
	srv := newTestServer(&fakeAnalyzer{panics: true})

	w := doRequest(srv, http.MethodPost, "/api/v1/analyze", `{"project":"zora"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INTERNAL_ERROR", resp.Code)
}

func TestPreviewEndpoint(t *testing.T) {
	page := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><head><title>Zora</title></head></html>`))
	}))
	defer page.Close()

	srv := newTestServer(&fakeAnalyzer{report: &intel.Report{}})

	w := doRequest(srv, http.MethodPost, "/api/v1/preview", `{"url":"`+page.URL+`"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Zora")
}

func TestPreviewEndpoint_MissingURL(t *testing.T) {
	srv := newTestServer(&fakeAnalyzer{report: &intel.Report{}})

	w := doRequest(srv, http.MethodPost, "/api/v1/preview", `{}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealthEndpoint(t *testing.T) {
	srv := newTestServer(&fakeAnalyzer{report: &intel.Report{}})

	w := doRequest(srv, http.MethodGet, "/health", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestRequestIDIsPropagated(t *testing.T) {
	srv := newTestServer(&fakeAnalyzer{report: &intel.Report{}})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set(RequestIDHeader, "fixed-id")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, "fixed-id", w.Header().Get(RequestIDHeader))
}

func TestCORSPreflight(t *testing.T) {
	srv := newTestServer(&fakeAnalyzer{report: &intel.Report{}})

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/analyze", nil)
	req.Header.Set("Origin", "https://example.com")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
