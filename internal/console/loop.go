// internal/console/loop.go
package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
)

// Handler runs one parsed command. A returned error is shown to the player
// and the loop keeps going.
type Handler func(Command) error

// Loop reads commands from in until the player quits, in reaches EOF or ctx
// is done. Help and blank lines are handled here.
func Loop(ctx context.Context, in io.Reader, out io.Writer, handle Handler) error {
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

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			cmd, err := ParseCommand(line)
			if err != nil {
				fmt.Fprintf(out, "  %v (type help)\n", err)
				continue
			}
			switch cmd.Kind {
			case "":
				continue
			case CmdQuit:
				return nil
			case CmdHelp:
				fmt.Fprintln(out, Help)
				continue
			}
			if err := handle(cmd); err != nil {
				fmt.Fprintf(out, "  %v\n", err)
			}
		}
	}
}
