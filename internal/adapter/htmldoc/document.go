package htmldoc

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/user/pane-scraper/internal/repository"
	"github.com/user/pane-scraper/pkg/utils"
	"golang.org/x/net/html"
)

// blockSelector lists the elements a browser renders on their own line.
const blockSelector = "address, article, aside, blockquote, dd, div, dl, dt, fieldset, figcaption, figure, " +
	"footer, form, h1, h2, h3, h4, h5, h6, header, hr, li, main, nav, ol, p, pre, section, table, tr, ul"

// Parser builds goquery-backed field sources from page snapshots.
type Parser struct{}

var _ repository.DocumentParser = Parser{}

// Parse strips script, style, noscript and hidden elements, then marks line
// breaks the way a browser lays them out, so that text lookups match what
// innerText returns on a live page.
func (Parser) Parse(src string) (repository.FieldSource, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		return nil, err
	}
	doc.Find("script, style, noscript, template, [hidden], [aria-hidden=true]").Remove()

	doc.Find("br").Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithNodes(textNode("\n"))
	})
	doc.Find(blockSelector).Each(func(_ int, s *goquery.Selection) {
		s.PrependNodes(textNode("\n"))
		s.AppendNodes(textNode("\n"))
	})
	doc.Find("td, th").Each(func(_ int, s *goquery.Selection) {
		s.AppendNodes(textNode(" "))
	})
	return &Document{doc: doc}, nil
}

func textNode(data string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: data}
}

// Document is a static FieldSource.
type Document struct {
	doc *goquery.Document
}

// Lookup reads the first element matching selector. A missing attribute
// counts as not found.
func (d *Document) Lookup(_ context.Context, selector, attr string) (string, bool, error) {
	sel := d.doc.Find(selector).First()
	if sel.Length() == 0 {
		return "", false, nil
	}
	if attr != "" {
		v, ok := sel.Attr(attr)
		return strings.TrimSpace(v), ok, nil
	}
	return visibleText(sel), true, nil
}

// visibleText joins the element's text lines, dropping blank ones.
func visibleText(sel *goquery.Selection) string {
	lines := strings.Split(sel.Text(), "\n")
	out := lines[:0]
	for _, l := range lines {
		if l = utils.CleanText(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
