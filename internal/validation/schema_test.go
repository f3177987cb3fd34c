package validation

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/goliatone/go-epub/book"
)

func TestValidateTreeAcceptsModelTrees(t *testing.T) {
	doc, err := book.NewDocument("page", []byte("<body><p>hi</p></body>"), book.Metadata{Title: "Page"})
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	binder := book.NewBinder(
		"e78d4f90-e078-49d2-beac-e95e8be70667",
		book.Metadata{Title: "Book", Version: "3"},
		book.NewTranslucentBinder(book.Metadata{Title: "Chapter"}, doc),
	)

	data, err := json.Marshal(book.ModelToTree(binder))
	if err != nil {
		t.Fatalf("marshal tree: %v", err)
	}
	if err := ValidateTree(data); err != nil {
		t.Fatalf("expected valid tree, got %v", err)
	}
}

func TestValidateTreeRejectsMissingTitle(t *testing.T) {
	err := ValidateTree([]byte(`{"id": "subcol"}`))
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !errors.Is(err, ErrTreeInvalid) {
		t.Fatalf("expected ErrTreeInvalid, got %v", err)
	}
	if issues := Issues(err); len(issues) == 0 {
		t.Fatal("expected at least one issue")
	}
}

func TestValidateTreeRejectsUnknownKeys(t *testing.T) {
	err := ValidateTree([]byte(`{"id": "subcol", "title": "x", "shortId": "abc"}`))
	if err == nil {
		t.Fatal("expected validation error for additional properties")
	}
}

func TestValidateTreeRejectsMalformedJSON(t *testing.T) {
	err := ValidateTree([]byte(`{"id":`))
	if err == nil {
		t.Fatal("expected decode error")
	}
	var payloadErr *PayloadValidationError
	if !errors.As(err, &payloadErr) {
		t.Fatalf("expected PayloadValidationError, got %T", err)
	}
}

func TestValidateTreeMapNilPayload(t *testing.T) {
	if err := ValidateTreeMap(nil); err == nil {
		t.Fatal("expected error for nil payload")
	}
}

func TestValidateTreeNestedContents(t *testing.T) {
	payload := map[string]any{
		"id":    "e78d4f90-e078-49d2-beac-e95e8be70667@3",
		"title": "Book",
		"contents": []any{
			map[string]any{
				"id":    "subcol",
				"title": "Chapter",
				"contents": []any{
					map[string]any{"id": "page.xhtml", "title": "Page"},
				},
			},
		},
	}
	if err := ValidateTreeMap(payload); err != nil {
		t.Fatalf("expected nested tree to validate, got %v", err)
	}
}
