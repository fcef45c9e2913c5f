package chromedp_browser

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
)

type scrollTarget struct {
	page     *Page
	selector string
}

func (s *scrollTarget) ScrollHeight(ctx context.Context) (int64, error) {
	el, err := elementExpr(s.selector)
	if err != nil {
		return 0, err
	}
	var height int64
	if err := s.page.session.run(ctx, chromedp.Evaluate(el+".scrollHeight", &height)); err != nil {
		return 0, fmt.Errorf("scroll height of %s: %w", s.selector, err)
	}
	return height, nil
}

func (s *scrollTarget) ScrollToEnd(ctx context.Context) error {
	el, err := elementExpr(s.selector)
	if err != nil {
		return err
	}
	script := fmt.Sprintf("(() => { const el = %s; el.scrollTop = el.scrollHeight; })()", el)
	if err := s.page.session.run(ctx, chromedp.Evaluate(script, nil)); err != nil {
		return fmt.Errorf("scroll %s: %w", s.selector, err)
	}
	return nil
}
