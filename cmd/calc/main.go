// Command calc is a line-oriented terminal front end for the calculator
// engine. Each whitespace-separated token on a line is treated as a key
// press (0-9 . + - * x / = Enter Backspace c a _); after every line the
// history and display are printed.
//
//	$ calc
//	4 + 2 =
//	4 + 2 =
//	6
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"go-chi-calculator/internal/engine"
	"go-chi-calculator/internal/observability"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	if err := observability.InitLogger(zapcore.WarnLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer observability.SyncLogger()

	if err := run(os.Stdin, os.Stdout); err != nil {
		observability.Logger.Error("calc terminated", zap.Error(err))
		os.Exit(1)
	}
}

// run feeds key tokens from r into one engine state and renders to w.
func run(r io.Reader, w io.Writer) error {
	state := engine.New()
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		for _, key := range strings.Fields(scanner.Text()) {
			e, ok := engine.KeyEvent(key)
			if !ok {
				observability.Logger.Warn("ignoring unmapped key", zap.String("key", key))
				continue
			}
			state = engine.Transition(state, e)
		}

		if _, err := fmt.Fprintf(w, "%s\n%s\n", state.History, state.Display); err != nil {
			return fmt.Errorf("write display: %w", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read keys: %w", err)
	}
	return nil
}
