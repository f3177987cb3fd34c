package htmldoc

import (
	"errors"
	"reflect"
	"testing"

	"github.com/goliatone/go-epub/book"
)

const navigationFixture = `
<div data-type="metadata">
  <h1 data-type="document-title">Book of Infinity</h1>
</div>
<nav id="toc">
  <ol>
    <li>
      <span>Part One</span>
      <ol>
        <li>
          <span>Chapter One</span>
          <ol><li><a href="e78d4f90-e078-49d2-beac-e95e8be70667@3.xhtml">Document One</a></li></ol>
        </li>
      </ol>
    </li>
    <li><a href="9b0903d2@1.6.xhtml">Part Two</a></li>
  </ol>
</nav>`

func TestParseNavigationTree(t *testing.T) {
	tree, err := ParseNavigationTree(parseFixture(t, navigationFixture), "9b0903d2@1.6")
	if err != nil {
		t.Fatalf("ParseNavigationTree returned error: %v", err)
	}

	want := &book.TreeNode{
		ID:    "9b0903d2@1.6",
		Title: "Book of Infinity",
		Contents: []*book.TreeNode{
			{ID: "subcol", Title: "Part One", Contents: []*book.TreeNode{
				{ID: "subcol", Title: "Chapter One", Contents: []*book.TreeNode{
					{ID: "e78d4f90-e078-49d2-beac-e95e8be70667@3.xhtml", Title: "Document One"},
				}},
			}},
			{ID: "9b0903d2@1.6.xhtml", Title: "Part Two"},
		},
	}
	if !reflect.DeepEqual(tree, want) {
		t.Fatalf("tree mismatch\n got: %+v\nwant: %+v", tree, want)
	}
}

func TestParseNavigationTreeTranslucentBinding(t *testing.T) {
	markup := `
<div data-type="metadata">
  <h1 data-type="document-title">Loose Pages</h1>
  <span data-type="binding" data-value="translucent"></span>
</div>
<nav id="toc"><ol><li><a href="yummy.xhtml">Yummy</a></li></ol></nav>`

	tree, err := ParseNavigationTree(parseFixture(t, markup), "faux")
	if err != nil {
		t.Fatalf("ParseNavigationTree returned error: %v", err)
	}
	if tree.ID != book.TranslucentBinderID {
		t.Fatalf("tree.ID = %q, want %q", tree.ID, book.TranslucentBinderID)
	}
}

func TestParseNavigationTreeMissingNav(t *testing.T) {
	markup := `<div data-type="metadata"><h1 data-type="document-title">No TOC</h1></div>`
	if _, err := ParseNavigationTree(parseFixture(t, markup), "x"); !errors.Is(err, ErrNoNavigation) {
		t.Fatalf("error = %v, want ErrNoNavigation", err)
	}
}

func TestParseNavigationTreeMissingTitle(t *testing.T) {
	markup := `<nav id="toc"><ol><li><a href="a.xhtml">A</a></li></ol></nav>`
	if _, err := ParseNavigationTree(parseFixture(t, markup), "x"); !errors.Is(err, ErrNoNavigationTitle) {
		t.Fatalf("error = %v, want ErrNoNavigationTitle", err)
	}
}

func TestParseNavigationTreeItemWithoutLink(t *testing.T) {
	markup := `
<div data-type="metadata"><h1 data-type="document-title">Broken</h1></div>
<nav id="toc"><ol><li><em>not a link</em></li></ol></nav>`
	if _, err := ParseNavigationTree(parseFixture(t, markup), "x"); err == nil {
		t.Fatalf("ParseNavigationTree did not reject a linkless item")
	}
}
