package htmldoc

import (
	"errors"
	"fmt"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/goliatone/go-epub/book"
)

var (
	// ErrNoNavigation reports a navigation document without a nav element.
	ErrNoNavigation = errors.New("htmldoc: navigation element not found")
	// ErrNoNavigationTitle reports a navigation document without a title.
	ErrNoNavigationTitle = errors.New("htmldoc: navigation title not found")
)

// ParseNavigationTree reads a navigation document into a tree. Leaf ids are
// the link targets as written, usually content file names. The id argument
// names the root node, except when the document marks itself translucent,
// in which case the root takes the shared translucent id.
func ParseNavigationTree(root *html.Node, id string) (*book.TreeNode, error) {
	doc := goquery.NewDocumentFromNode(root)

	if v, ok := doc.Find(`[data-type="binding"]`).First().Attr("data-value"); ok && v == "translucent" {
		id = book.TranslucentBinderID
	}

	title := doc.Find(`[data-type="document-title"], [data-type="title"]`).First()
	if title.Length() == 0 {
		return nil, ErrNoNavigationTitle
	}

	nav := doc.Find("nav").First()
	if nav.Length() == 0 {
		return nil, ErrNoNavigation
	}
	contents, err := navItems(nav)
	if err != nil {
		return nil, err
	}

	return &book.TreeNode{
		ID:       id,
		Title:    title.Text(),
		Contents: contents,
	}, nil
}

// navItems walks the ordered list directly under the given element. A list
// item holding its own list is a grouping node titled by its span; any
// other item must link to a content file.
func navItems(parent *goquery.Selection) ([]*book.TreeNode, error) {
	items := []*book.TreeNode{}
	var walkErr error
	parent.ChildrenFiltered("ol").First().ChildrenFiltered("li").EachWithBreak(func(i int, li *goquery.Selection) bool {
		if li.ChildrenFiltered("ol").Length() > 0 {
			contents, err := navItems(li)
			if err != nil {
				walkErr = err
				return false
			}
			items = append(items, &book.TreeNode{
				ID:       book.TranslucentBinderID,
				Title:    li.ChildrenFiltered("span").First().Text(),
				Contents: contents,
			})
			return true
		}

		link := li.ChildrenFiltered("a").First()
		if link.Length() == 0 {
			walkErr = fmt.Errorf("htmldoc: navigation item %d has no link", i)
			return false
		}
		href, _ := link.Attr("href")
		items = append(items, &book.TreeNode{ID: href, Title: link.Text()})
		return true
	})
	if walkErr != nil {
		return nil, walkErr
	}
	return items, nil
}
