package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/octobees/icp-finder/internal/finder"
	"github.com/octobees/icp-finder/internal/render"
)

const defaultExportPath = "icp_results.csv"

type sessionRunner interface {
	RunSession(ctx context.Context, prompt string, acc *finder.Accumulator) (finder.Result, int, error)
}

// runChat reads prompts line by line. Lines starting with a slash are commands:
// /export [file], /clear and /quit.
func runChat(ctx context.Context, runner sessionRunner, in io.Reader, out io.Writer, show int) error {
	acc := finder.NewAccumulator()
	scanner := bufio.NewScanner(in)

	fmt.Fprintln(out, "Describe your ideal customer profile. Commands: /export [file], /clear, /quit")
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "/") {
			fields := strings.Fields(line)
			switch fields[0] {
			case "/quit", "/exit":
				return nil
			case "/clear":
				n := acc.Len()
				acc.Clear()
				fmt.Fprintf(out, "Cleared %d results.\n", n)
			case "/export":
				path := defaultExportPath
				if len(fields) > 1 {
					path = fields[1]
				}
				results := acc.Results()
				if err := exportCSV(path, results); err != nil {
					fmt.Fprintf(out, "Export failed: %v\n", err)
					continue
				}
				fmt.Fprintf(out, "Exported %d results to %s\n", len(results), path)
			default:
				fmt.Fprintf(out, "Unknown command %s\n", fields[0])
			}
			continue
		}

		res, added, err := runner.RunSession(ctx, line, acc)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			fmt.Fprintf(out, "Search failed: %v\n", err)
			continue
		}
		fmt.Fprintln(out, render.Summary(res, show))
		fmt.Fprintf(out, "Added %d new results (%d total).\n", added, acc.Len())
	}
}
