package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"golang.org/x/sync/errgroup"

	"rechat/internal/app"
	"rechat/internal/services/chat"
)

// runREPL runs c's client and reads commands from in until /quit, EOF or
// ctx ends.
func runREPL(ctx context.Context, c *app.Chat, in io.Reader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return c.Client.Run(ctx) })

	// The reader goroutine is left blocked on in if ctx ends first.
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	fmt.Fprintf(out, "-- you are %s, %s, /help for commands\n", c.Session.Self().DisplayName(), c.Session.TargetLabel())
	g.Go(func() error {
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return nil
			case line, ok := <-lines:
				if !ok {
					return nil
				}
				if quit := execLine(c.Session, line, out); quit {
					return nil
				}
			}
		}
	})
	return g.Wait()
}

func execLine(s *chat.Session, line string, out io.Writer) (quit bool) {
	cmd, err := chat.ParseInput(line)
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
		return false
	}
	quit, err = s.Exec(cmd)
	if err != nil {
		fmt.Fprintf(out, "error: %v\n", err)
	}
	return quit
}
