package services_test

import (
	"reflect"
	"testing"

	"github.com/sophialabs/apiaudit/internal/infrastructure/services"
)

func TestCapturePayload_JSON(t *testing.T) {
	got := services.CapturePayload("application/json", []byte(`{"name":"demo","count":2}`))

	m, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("expected parsed map, got %T", got)
	}
	if m["name"] != "demo" {
		t.Errorf("expected name=demo, got %v", m["name"])
	}
}

func TestCapturePayload_InvalidJSONFallsBackToRaw(t *testing.T) {
	raw := `{"broken":`
	got := services.CapturePayload("application/json", []byte(raw))

	if got != raw {
		t.Errorf("expected raw fallback %q, got %v", raw, got)
	}
}

func TestCapturePayload_SniffsJSONWithoutContentType(t *testing.T) {
	got := services.CapturePayload("", []byte(`[1, 2, 3]`))

	if _, ok := got.([]any); !ok {
		t.Errorf("expected parsed slice, got %T", got)
	}
}

func TestCapturePayload_XML(t *testing.T) {
	got := services.CapturePayload("application/xml", []byte(`<order><id>42</id><item>a</item><item>b</item></order>`))

	m, ok := got.(map[string]any)
	if !ok {
		t.Fatalf("expected parsed map, got %T: %v", got, got)
	}
	order, ok := m["order"].(map[string]any)
	if !ok {
		t.Fatalf("expected order element, got %v", m)
	}
	if order["id"] != "42" {
		t.Errorf("expected id=42, got %v", order["id"])
	}
	if items, ok := order["item"].([]any); !ok || !reflect.DeepEqual(items, []any{"a", "b"}) {
		t.Errorf("expected repeated items [a b], got %v", order["item"])
	}
}

func TestCapturePayload_EmptyBody(t *testing.T) {
	if got := services.CapturePayload("application/json", nil); got != nil {
		t.Errorf("expected nil for empty body, got %v", got)
	}
}

func TestCapturePayload_PlainText(t *testing.T) {
	got := services.CapturePayload("text/plain", []byte("hello"))
	if got != "hello" {
		t.Errorf("expected raw text, got %v", got)
	}
}
