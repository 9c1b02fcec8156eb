package apispec_test

import (
	"testing"

	"github.com/sophialabs/apiaudit/internal/domain/apispec"
)

func specWith(templates ...string) *apispec.Document {
	doc := apispec.NewDocument()
	for _, tpl := range templates {
		doc.Add(tpl, "get", 200)
	}
	return doc
}

func TestMatch_Exact(t *testing.T) {
	doc := specWith("/items", "/items/{id}")

	tpl, ok := apispec.Match("/items", doc)
	if !ok || tpl != "/items" {
		t.Errorf("expected /items, got %q (ok=%v)", tpl, ok)
	}
}

func TestMatch_Placeholder(t *testing.T) {
	doc := specWith("/a/{id}/b")

	tpl, ok := apispec.Match("/a/123/b", doc)
	if !ok || tpl != "/a/{id}/b" {
		t.Errorf("expected /a/{id}/b, got %q (ok=%v)", tpl, ok)
	}

	if _, ok := apispec.Match("/a/123/c", doc); ok {
		t.Error("expected no match for /a/123/c")
	}
}

func TestMatch_StripsQuery(t *testing.T) {
	doc := specWith("/a/{id}")

	withQuery, ok1 := apispec.Match("/a/123?x=1", doc)
	without, ok2 := apispec.Match("/a/123", doc)
	if !ok1 || !ok2 || withQuery != without {
		t.Errorf("query handling diverged: %q (ok=%v) vs %q (ok=%v)", withQuery, ok1, without, ok2)
	}
}

func TestMatch_TrailingSlashSignificant(t *testing.T) {
	doc := specWith("/items/{id}")

	if _, ok := apispec.Match("/items/123/", doc); ok {
		t.Error("trailing slash should not match a template without one")
	}
	// A placeholder never matches an empty segment.
	if _, ok := apispec.Match("/items/", doc); ok {
		t.Error("placeholder matched an empty segment")
	}
}

func TestMatch_SegmentCountMustAgree(t *testing.T) {
	doc := specWith("/a/{id}")

	if _, ok := apispec.Match("/a/1/2", doc); ok {
		t.Error("expected no match for extra segment")
	}
	if _, ok := apispec.Match("/a", doc); ok {
		t.Error("expected no match for missing segment")
	}
}

func TestMatch_DeclarationOrderTieBreak(t *testing.T) {
	first := apispec.NewDocument()
	first.Add("/a/{id}", "get", 200)
	first.Add("/a/{name}", "get", 200)

	if tpl, _ := apispec.Match("/a/123", first); tpl != "/a/{id}" {
		t.Errorf("expected first declared template to win, got %q", tpl)
	}

	// Exact match beats structural match regardless of order.
	doc := apispec.NewDocument()
	doc.Add("/a/{id}", "get", 200)
	doc.Add("/a/literal", "get", 200)

	if tpl, _ := apispec.Match("/a/literal", doc); tpl != "/a/literal" {
		t.Errorf("expected exact template to win, got %q", tpl)
	}
}

func TestMatch_EmptySpec(t *testing.T) {
	if _, ok := apispec.Match("/anything", apispec.NewDocument()); ok {
		t.Error("expected no match against empty specification")
	}
}
