package gate

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/user/pane-scraper/internal/repository"
)

// Terminal waits for the operator to press Enter.
type Terminal struct {
	in  io.Reader
	out io.Writer
}

var _ repository.OperatorGate = (*Terminal)(nil)

func NewTerminal(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{in: in, out: out}
}

// Await prints prompt and returns once a line is read. If ctx ends first the
// read is abandoned; it cannot be interrupted, so the reader goroutine exits
// with the next line or EOF.
func (t *Terminal) Await(ctx context.Context, prompt string) error {
	banner := strings.Repeat("=", 50)
	fmt.Fprintf(t.out, "\n%s\n%s\n   Press Enter in this terminal to continue...\n", banner, prompt)

	done := make(chan error, 1)
	go func() {
		_, err := bufio.NewReader(t.in).ReadString('\n')
		if err == io.EOF {
			err = fmt.Errorf("stdin closed: %w", err)
		}
		done <- err
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-done:
		if err != nil {
			return err
		}
		fmt.Fprintf(t.out, "%s\nResuming...\n\n", banner)
		return nil
	}
}
