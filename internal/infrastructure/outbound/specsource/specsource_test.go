package specsource_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/sophialabs/apiaudit/internal/infrastructure/outbound/filesystem"
	"github.com/sophialabs/apiaudit/internal/infrastructure/outbound/specsource"
	"github.com/sophialabs/apiaudit/internal/testutil"
)

func TestFileSource_Fetch(t *testing.T) {
	ctx := context.Background()
	store := filesystem.NewMemStore()
	if err := store.WriteFile(ctx, "spec.yaml", []byte(`
/items/{id}:
  get: [200, 404]
`)); err != nil {
		t.Fatal(err)
	}

	doc, err := specsource.NewFileSource("spec.yaml", store).Fetch(ctx)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if !doc.Declares("/items/{id}", "get", 404) {
		t.Error("expected declared combo from file")
	}
}

func TestFileSource_Missing(t *testing.T) {
	_, err := specsource.NewFileSource("nope.yaml", filesystem.NewMemStore()).Fetch(context.Background())
	if err == nil {
		t.Error("expected error for missing file")
	}
}

const openAPIDoc = `{
  "openapi": "3.0.0",
  "info": {"title": "Demo API", "version": "1.0.0"},
  "paths": {
    "/items/{id}": {
      "get": {
        "responses": {"200": {"description": "ok"}, "404": {"description": "missing"}}
      },
      "parameters": [{"name": "id", "in": "path"}]
    },
    "/items": {
      "post": {
        "responses": {"201": {"description": "created"}, "default": {"description": "error"}}
      }
    }
  }
}`

func TestReduceOpenAPI(t *testing.T) {
	doc, err := specsource.ReduceOpenAPI([]byte(openAPIDoc))
	if err != nil {
		t.Fatalf("ReduceOpenAPI failed: %v", err)
	}

	if want := []string{"/items/{id}", "/items"}; !reflect.DeepEqual(doc.Templates(), want) {
		t.Errorf("expected templates %v in document order, got %v", want, doc.Templates())
	}
	if got := doc.Statuses("/items/{id}", "get"); !reflect.DeepEqual(got, []int{200, 404}) {
		t.Errorf("expected [200 404], got %v", got)
	}
	// "default" has no integer status and "parameters" is not a method.
	if doc.ComboCount() != 3 {
		t.Errorf("expected 3 combos, got %d", doc.ComboCount())
	}
}

func TestReduceOpenAPI_NoPaths(t *testing.T) {
	if _, err := specsource.ReduceOpenAPI([]byte(`{"openapi": "3.0.0"}`)); err == nil {
		t.Error("expected error for document without paths")
	}
}

func TestHTTPSource_Fetch(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(openAPIDoc))
	}))
	defer ts.Close()

	source := specsource.NewHTTPSource(ts.URL+"/openapi.json", nil, &testutil.NoopLogger{})
	doc, err := source.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if doc.Len() != 2 {
		t.Errorf("expected 2 templates, got %d", doc.Len())
	}
}

func TestHTTPSource_Non200(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	_, err := specsource.NewHTTPSource(ts.URL, nil, &testutil.NoopLogger{}).Fetch(context.Background())
	if err == nil {
		t.Error("expected error for non-200 specification endpoint")
	}
}
