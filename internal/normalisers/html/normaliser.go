package html

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/custodia-labs/quill/internal/core/domain"
	"github.com/custodia-labs/quill/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// minContentLength is the number of characters a content container must
// hold before it is preferred over the paragraph fallback.
const minContentLength = 100

// selector matches an element by tag, class or id.
type selector struct {
	tag   atom.Atom
	class string
	id    string
}

func (s selector) matches(n *html.Node) bool {
	if n.Type != html.ElementNode {
		return false
	}
	switch {
	case s.tag != 0:
		return n.DataAtom == s.tag
	case s.class != "":
		return hasClass(n, s.class)
	case s.id != "":
		return attr(n, "id") == s.id
	}
	return false
}

// contentSelectors locate the main content, in preference order.
var contentSelectors = []selector{
	{tag: atom.Article},
	{tag: atom.Main},
	{class: "content"},
	{id: "content"},
	{class: "post"},
	{class: "article-content"},
	{class: "entry-content"},
}

// unwanted elements are dropped before extraction.
var unwanted = []selector{
	{tag: atom.Script},
	{tag: atom.Style},
	{tag: atom.Noscript},
	{tag: atom.Nav},
	{tag: atom.Header},
	{tag: atom.Footer},
	{tag: atom.Aside},
	{class: "ads"},
	{id: "comments"},
}

// Normaliser handles HTML pages.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50
}

// Normalise extracts the title and main text of an HTML page.
// The returned content has all whitespace runs collapsed to single spaces.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawPage) (*domain.Page, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	doc, err := html.Parse(bytes.NewReader(raw.Content))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	title := ""
	if t := findFirst(doc, selector{tag: atom.Title}); t != nil {
		title = cleanText(textOf(t))
	}

	removeUnwanted(doc)

	return &domain.Page{
		URL:     raw.URL,
		Title:   title,
		Content: cleanText(extractContent(doc)),
	}, nil
}

// extractContent returns the text of the first sizeable content container,
// or of all paragraphs when no container qualifies.
func extractContent(doc *html.Node) string {
	for _, sel := range contentSelectors {
		node := findFirst(doc, sel)
		if node == nil {
			continue
		}
		text := textOf(node)
		if len(strings.TrimSpace(text)) > minContentLength {
			return text
		}
	}

	var paragraphs []string
	walk(doc, func(node *html.Node) bool {
		if node.Type == html.ElementNode && node.DataAtom == atom.P {
			paragraphs = append(paragraphs, textOf(node))
			return false
		}
		return true
	})
	return strings.Join(paragraphs, " ")
}

// removeUnwanted detaches every node matching an unwanted selector.
func removeUnwanted(doc *html.Node) {
	var doomed []*html.Node
	walk(doc, func(node *html.Node) bool {
		for _, sel := range unwanted {
			if sel.matches(node) {
				doomed = append(doomed, node)
				return false
			}
		}
		return true
	})
	for _, node := range doomed {
		if node.Parent != nil {
			node.Parent.RemoveChild(node)
		}
	}
}

// findFirst returns the first node in document order matching sel.
func findFirst(doc *html.Node, sel selector) *html.Node {
	var found *html.Node
	walk(doc, func(node *html.Node) bool {
		if found != nil {
			return false
		}
		if sel.matches(node) {
			found = node
			return false
		}
		return true
	})
	return found
}

// walk visits nodes depth-first. Returning false skips the node's children.
func walk(node *html.Node, visit func(*html.Node) bool) {
	if !visit(node) {
		return
	}
	for child := node.FirstChild; child != nil; child = child.NextSibling {
		walk(child, visit)
	}
}

// textOf concatenates the text beneath node, separating block elements.
func textOf(node *html.Node) string {
	var b strings.Builder
	walk(node, func(n *html.Node) bool {
		switch n.Type {
		case html.TextNode:
			b.WriteString(n.Data)
		case html.ElementNode:
			if isBlock(n.DataAtom) {
				b.WriteByte(' ')
			}
		}
		return true
	})
	return b.String()
}

func isBlock(a atom.Atom) bool {
	switch a {
	case atom.P, atom.Div, atom.Br, atom.Li, atom.Tr, atom.Td, atom.Th,
		atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6,
		atom.Blockquote, atom.Pre, atom.Section, atom.Article:
		return true
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

// cleanText collapses whitespace runs to single spaces.
func cleanText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
