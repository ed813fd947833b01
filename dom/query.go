package dom

import (
	"fmt"

	"github.com/andybalholm/cascadia"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// QuerySelector returns the first element in document order matching the
// CSS selector, or nil when nothing matches.
func (d *Document) QuerySelector(selector string) (*html.Node, error) {
	sel, err := cascadia.Parse(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
	}
	return cascadia.Query(d.root, sel), nil
}

// QuerySelectorAll returns every element matching the CSS selector.
func (d *Document) QuerySelectorAll(selector string) ([]*html.Node, error) {
	sel, err := cascadia.Parse(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid selector %q: %w", selector, err)
	}
	return cascadia.QueryAll(d.root, sel), nil
}

// QueryXPath returns the first node matching an XPath expression.
func (d *Document) QueryXPath(expr string) (*html.Node, error) {
	n, err := htmlquery.Query(d.root, expr)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath %q: %w", expr, err)
	}
	return n, nil
}

// GetElementByID returns the element whose id attribute equals id.
func (d *Document) GetElementByID(id string) *html.Node {
	var found *html.Node
	walk(d.root, func(n *html.Node) bool {
		if n.Type == html.ElementNode {
			if v, ok := Attr(n, "id"); ok && v == id {
				found = n
				return false
			}
		}
		return true
	})
	return found
}

// walk visits n and its descendants in document order until fn returns
// false.
func walk(n *html.Node, fn func(*html.Node) bool) bool {
	if !fn(n) {
		return false
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if !walk(c, fn) {
			return false
		}
	}
	return true
}
