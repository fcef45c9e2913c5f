package chromedp_browser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/chromedp"
	"github.com/user/pane-scraper/internal/entity"
	"github.com/user/pane-scraper/internal/repository"
)

// Page implements repository.PageRepository on the session's tab.
type Page struct {
	session *Session
}

var _ repository.PageRepository = (*Page)(nil)

func (p *Page) Navigate(ctx context.Context, url string) error {
	return p.session.run(ctx, chromedp.Navigate(url))
}

func (p *Page) WaitVisible(ctx context.Context, selector string) error {
	return p.session.run(ctx, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

func (p *Page) HTML(ctx context.Context) (string, error) {
	var html string
	err := p.session.run(ctx, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

type lookupResult struct {
	Found bool   `json:"found"`
	Value string `json:"value"`
}

// lookupScript reads the first match without waiting for it to appear.
const lookupScript = `(() => {
	const el = document.querySelector(%s);
	if (!el) return {found: false, value: ""};
	const attr = %s;
	if (attr) {
		const v = el.getAttribute(attr);
		return v === null ? {found: false, value: ""} : {found: true, value: v};
	}
	return {found: true, value: el.innerText || el.textContent || ""};
})()`

// Lookup reads the live DOM. A missing attribute counts as not found.
func (p *Page) Lookup(ctx context.Context, selector, attr string) (string, bool, error) {
	script, err := jsCall(lookupScript, selector, attr)
	if err != nil {
		return "", false, err
	}
	var res lookupResult
	if err := p.session.run(ctx, chromedp.Evaluate(script, &res)); err != nil {
		return "", false, fmt.Errorf("lookup %s: %w", selector, err)
	}
	return strings.TrimSpace(res.Value), res.Found, nil
}

const attributesScript = `Array.from(document.querySelectorAll(%s), el => el.getAttribute(%s) || "")`

func (p *Page) Attributes(ctx context.Context, selector, attr string) ([]string, error) {
	script, err := jsCall(attributesScript, selector, attr)
	if err != nil {
		return nil, err
	}
	var values []string
	if err := p.session.run(ctx, chromedp.Evaluate(script, &values)); err != nil {
		return nil, fmt.Errorf("read %s[%s]: %w", selector, attr, err)
	}
	return values, nil
}

// ListItems snapshots the nodes matching selector without waiting for more to appear.
func (p *Page) ListItems(ctx context.Context, selector string) ([]repository.ListItem, error) {
	var nodes []*cdp.Node
	err := p.session.run(ctx, chromedp.Nodes(selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0)))
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", selector, err)
	}
	items := make([]repository.ListItem, len(nodes))
	for i, n := range nodes {
		items[i] = &listItem{page: p, node: n}
	}
	return items, nil
}

func (p *Page) ScrollTarget(selector string) repository.ScrollTarget {
	return &scrollTarget{page: p, selector: selector}
}

type listItem struct {
	page *Page
	node *cdp.Node
}

// Click scrolls the node into view and clicks its centre.
func (li *listItem) Click(ctx context.Context) error {
	return li.page.session.run(ctx, chromedp.MouseClickNode(li.node))
}

// jsCall fills format with JSON-encoded string arguments.
func jsCall(format string, args ...string) (string, error) {
	encoded := make([]any, len(args))
	for i, a := range args {
		b, err := json.Marshal(a)
		if err != nil {
			return "", err
		}
		encoded[i] = string(b)
	}
	return fmt.Sprintf(format, encoded...), nil
}

// elementExpr is a JS expression for the scroll element behind selector.
func elementExpr(selector string) (string, error) {
	if selector == entity.DocumentScroll {
		return "(document.scrollingElement || document.documentElement)", nil
	}
	return jsCall(`(() => {
	const el = document.querySelector(%s);
	if (!el) throw new Error("scroll target not found");
	return el;
})()`, selector)
}
