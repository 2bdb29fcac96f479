// Package repl is the interactive topic prompt.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/IshaanNene/knowledge-aggregator/internal/pipeline"
	"github.com/IshaanNene/knowledge-aggregator/internal/storage"
	"github.com/IshaanNene/knowledge-aggregator/internal/types"
)

// Runner is the part of the aggregator the REPL drives.
type Runner interface {
	ProcessTopic(ctx context.Context, topic string, opts pipeline.Options) (*types.RunResult, error)
	Status() pipeline.SystemStatus
	History() storage.RunStore
}

// REPL reads topics until the user quits.
type REPL struct {
	runner     Runner
	defaultMax int
	reader     *bufio.Reader
	out        io.Writer
	logger     *slog.Logger
}

// New creates a REPL reading from in and writing to out.
func New(runner Runner, defaultMax int, in io.Reader, out io.Writer, logger *slog.Logger) *REPL {
	return &REPL{
		runner:     runner,
		defaultMax: defaultMax,
		reader:     bufio.NewReader(in),
		out:        out,
		logger:     logger.With("component", "repl"),
	}
}

// Start runs the loop. It returns when the user types quit, exit or q, at
// end of input, or when ctx is cancelled.
func (r *REPL) Start(ctx context.Context) {
	r.println("Web Knowledge Aggregator - Interactive Mode")
	r.println("   Enter a topic to research. ':help' lists commands, 'quit' exits.")
	r.println("")

	for ctx.Err() == nil {
		line, ok := r.prompt("Topic: ")
		if !ok {
			break
		}
		if line == "" {
			continue
		}

		switch strings.ToLower(line) {
		case "quit", "exit", "q":
			r.println("Goodbye!")
			return
		case ":help":
			r.printHelp()
			continue
		case ":status":
			r.cmdStatus()
			continue
		case ":history":
			r.cmdHistory(ctx)
			continue
		case ":clear":
			fmt.Fprint(r.out, "\033[H\033[2J")
			continue
		}

		raw, ok := r.prompt(fmt.Sprintf("Max results (default %d): ", r.defaultMax))
		if !ok {
			break
		}
		maxResults, err := parseMax(raw)
		if err != nil {
			r.printf("Error: %v\n", err)
			continue
		}

		r.runTopic(ctx, line, maxResults)
	}
	r.println("")
	r.println("Goodbye!")
}

func (r *REPL) runTopic(ctx context.Context, topic string, maxResults int) {
	r.printf("\nProcessing %q...\n", topic)
	res, err := r.runner.ProcessTopic(ctx, topic, pipeline.Options{MaxResults: maxResults})
	if err != nil {
		r.logger.Debug("topic failed", "topic", topic, "error", err)
		r.printf("Error: %v\n\n", err)
		return
	}

	r.println(res.QuickSummary)
	r.printf("Report: %s\n", res.ReportPath)
	r.printf("Backup: %s\n\n", res.JSONPath)
}

func (r *REPL) printHelp() {
	r.println(`
Commands:
  <topic>      Research a topic, then answer the max-results prompt
  :status      Show configuration status
  :history     Show recent runs
  :clear       Clear the screen
  :help        Show this help
  quit         Exit (also: exit, q)`)
}

func (r *REPL) cmdStatus() {
	st := r.runner.Status()
	valid := "yes"
	if !st.ConfigValid {
		valid = "no (" + st.ConfigError + ")"
	}
	r.printf("  Config valid:   %s\n", valid)
	r.printf("  Engine:         %s\n", st.Components.Engine)
	r.printf("  Provider:       %s\n", st.AI.Provider)
	r.printf("  Deployment:     %s\n", st.AI.Deployment)
	r.printf("  Max results:    %d\n", st.MaxResults)
	r.printf("  Output dir:     %s\n", st.OutputDir)
	r.printf("  History:        %s\n", st.Components.History)
}

func (r *REPL) cmdHistory(ctx context.Context) {
	recs, err := r.runner.History().Recent(ctx, 10)
	if err != nil {
		r.printf("Error: %v\n", err)
		return
	}
	if len(recs) == 0 {
		r.println("  No runs recorded.")
		return
	}
	for _, rec := range recs {
		r.printf("  %s  %-9s %3d articles  %s\n", rec.FinishedAt.Format("2006-01-02 15:04"), rec.Status, rec.TotalArticles, rec.Topic)
	}
}

// prompt writes label and reads one trimmed line. ok is false at end of
// input with nothing read.
func (r *REPL) prompt(label string) (string, bool) {
	fmt.Fprint(r.out, label)
	line, err := r.reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && strings.TrimSpace(line) != "" {
			return strings.TrimSpace(line), true
		}
		return "", false
	}
	return strings.TrimSpace(line), true
}

func parseMax(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("max results must be a positive number, got %q", raw)
	}
	return n, nil
}

func (r *REPL) println(s string) { fmt.Fprintln(r.out, s) }

func (r *REPL) printf(format string, args ...any) { fmt.Fprintf(r.out, format, args...) }
