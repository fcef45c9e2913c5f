package chromedp_browser

import (
	"context"
	"fmt"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

// Options configures the browser process.
type Options struct {
	Headless    bool
	UserAgent   string
	ExecPath    string
	UserDataDir string
}

// Session owns one browser process and its single tab. It is not safe for
// concurrent use; a run drives it strictly sequentially.
type Session struct {
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger
}

// NewSession launches the browser and opens its tab. Cancelling parent, or
// calling Close, shuts the browser down.
func NewSession(parent context.Context, opts Options, logger *zap.Logger) (*Session, error) {
	allocOpts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
		chromedp.Flag("disable-gpu", opts.Headless),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.WindowSize(1366, 900),
	)
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.UserDataDir != "" {
		allocOpts = append(allocOpts, chromedp.UserDataDir(opts.UserDataDir))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, allocOpts...)
	sugar := logger.Sugar()
	taskCtx, taskCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(sugar.Debugf),
		chromedp.WithErrorf(sugar.Errorf),
	)

	// The first Run starts the browser; it must not use a timeout context or
	// the browser would die with it.
	if err := chromedp.Run(taskCtx); err != nil {
		taskCancel()
		allocCancel()
		return nil, fmt.Errorf("start browser: %w", err)
	}
	logger.Info("browser started", zap.Bool("headless", opts.Headless))

	return &Session{
		ctx: taskCtx,
		cancel: func() {
			taskCancel()
			allocCancel()
		},
		logger: logger,
	}, nil
}

// Page returns the session's tab.
func (s *Session) Page() *Page {
	return &Page{session: s}
}

// Close shuts the browser down.
func (s *Session) Close() {
	s.cancel()
	s.logger.Info("browser closed")
}

// run executes actions on the tab, bounded by the deadline and cancellation of ctx.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(s.ctx)
	defer cancel()
	if deadline, ok := ctx.Deadline(); ok {
		var dcancel context.CancelFunc
		runCtx, dcancel = context.WithDeadline(runCtx, deadline)
		defer dcancel()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}
