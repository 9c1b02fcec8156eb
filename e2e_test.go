package apiaudit_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	inboundhttp "github.com/sophialabs/apiaudit/internal/infrastructure/inbound/http"
	"github.com/sophialabs/apiaudit/internal/infrastructure/outbound/specsource"
	"github.com/sophialabs/apiaudit/internal/infrastructure/wiring"
	"github.com/sophialabs/apiaudit/internal/testutil"
)

const e2eOpenAPI = `{
  "openapi": "3.0.0",
  "info": {"title": "Orders API", "version": "1.0.0"},
  "paths": {
    "/orders": {
      "get": {"responses": {"200": {"description": "ok"}}},
      "post": {"responses": {"201": {"description": "created"}, "400": {"description": "bad"}}}
    },
    "/orders/{id}": {
      "get": {"responses": {"200": {"description": "ok"}, "404": {"description": "missing"}}}
    }
  }
}`

// setupE2E runs a fake service under test that also serves its own OpenAPI
// document, and an audit proxy in front of it writing artifacts to a temp dir.
func setupE2E(t *testing.T) (proxy *httptest.Server, artifactDir string) {
	t.Helper()

	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/openapi.json" {
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(e2eOpenAPI))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Method == "GET" && strings.HasPrefix(r.URL.Path, "/orders/"):
			w.Write([]byte(`{"id": 7, "total": 12.5}`))
		case r.Method == "POST" && r.URL.Path == "/orders":
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(`{"id": 8}`))
		default:
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error": "not found"}`))
		}
	}))
	t.Cleanup(backend.Close)

	artifactDir = t.TempDir()
	logger := &testutil.NoopLogger{}

	container, err := wiring.New(wiring.Params{
		ArtifactDir: artifactDir,
		Source:      specsource.NewHTTPSource(backend.URL+"/openapi.json", nil, logger),
		Logger:      logger,
		RunID:       "e2e-run",
	})
	if err != nil {
		t.Fatalf("failed to wire container: %v", err)
	}

	auditor := container.Auditor()
	auditor.Prepare(context.Background())
	if err := auditor.Record(context.Background()); err != nil {
		t.Fatalf("failed to start recording: %v", err)
	}

	target, err := url.Parse(backend.URL)
	if err != nil {
		t.Fatal(err)
	}
	srv := httptest.NewServer(inboundhttp.NewProxyServer(target, auditor, container.Recorder(), logger))
	t.Cleanup(srv.Close)

	return srv, artifactDir
}

func TestE2E_FullAuditCycle(t *testing.T) {
	proxy, artifactDir := setupE2E(t)

	// Specification snapshot exists before traffic flows.
	specData, err := os.ReadFile(filepath.Join(artifactDir, "spec.json"))
	if err != nil {
		t.Fatalf("expected specification snapshot: %v", err)
	}
	if !strings.Contains(string(specData), "/orders/{id}") {
		t.Errorf("snapshot missing path template:\n%s", specData)
	}

	// Drive traffic through the proxy like a test suite would.
	mustGet(t, proxy.URL+"/orders/7")
	mustPost(t, proxy.URL+"/orders", `{"total": 12.5}`)
	mustGet(t, proxy.URL+"/unknown/route")

	mustPost(t, proxy.URL+"/__audit/traffic/checkout", "")
	mustPost(t, proxy.URL+"/__audit/report", "")

	if _, err := os.Stat(filepath.Join(artifactDir, "traffic", "checkout.json")); err != nil {
		t.Errorf("expected traffic snapshot: %v", err)
	}

	report, err := os.ReadFile(filepath.Join(artifactDir, "report.txt"))
	if err != nil {
		t.Fatalf("expected report: %v", err)
	}
	for _, want := range []string{
		"Run ID:    e2e-run",
		"Tested paths:           2/2 (100%)",
		"Tested combos:          2/5 (40%)",
		"Traffic records:        3",
		"Undocumented endpoints: 1",
		"GET /unknown/route",
		"Missing Status Code Coverage:",
		"post: 400",
	} {
		if !strings.Contains(string(report), want) {
			t.Errorf("report missing %q\n---\n%s", want, report)
		}
	}
}

func TestE2E_StatusEndpoint(t *testing.T) {
	proxy, _ := setupE2E(t)

	mustGet(t, proxy.URL+"/orders/7")

	resp, err := http.Get(proxy.URL + "/__audit/status")
	if err != nil {
		t.Fatalf("GET status failed: %v", err)
	}
	defer resp.Body.Close()

	var status map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		t.Fatalf("failed to decode status: %v", err)
	}
	if status["state"] != "recording" {
		t.Errorf("expected recording, got %v", status["state"])
	}
	if status["records"] != float64(1) {
		t.Errorf("expected 1 pending record, got %v", status["records"])
	}
}

func mustGet(t *testing.T, url string) {
	t.Helper()
	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("GET %s failed: %v", url, err)
	}
	resp.Body.Close()
}

func mustPost(t *testing.T, url, body string) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	resp.Body.Close()
}
