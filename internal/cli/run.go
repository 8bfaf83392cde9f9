package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	garmentag "github.com/anatolykoptev/go-garmentag"
)

// Result is the outcome of one CLI run.
type Result struct {
	ExitCode int
	Summary  garmentag.Summary
}

// Streams are the writers a run prints to.
type Streams struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Run parses args and executes them. It is the entry point used by main and
// by black-box tests.
func Run(ctx context.Context, args []string, getenv func(string) string, st Streams) Result {
	inv, err := ParseInvocation(args, getenv)
	if err != nil {
		fmt.Fprintln(st.Stderr, "Error:", err)
		return Result{ExitCode: ExitCode(err)}
	}
	return Execute(ctx, inv, st)
}

// Execute runs a parsed invocation, printing per-image lines and the batch
// summary to st.
func Execute(ctx context.Context, inv Invocation, st Streams) Result {
	logger, closer := newLogger(st.Stderr, inv.LogFile, inv.LogLevel)
	defer closer.Close()
	prev := slog.Default()
	slog.SetDefault(logger.With("run_id", uuid.NewString()))
	defer slog.SetDefault(prev)

	cfg := NewConfig(inv)
	cfg.OnTag = func(ev garmentag.TagEvent) {
		fmt.Fprintf(st.Stdout, "Renamed: %s -> %s (%s)\n", filepath.Base(ev.From), filepath.Base(ev.To), ev.Category)
	}

	cfg.OnFailure = func(f garmentag.ItemFailure) {
		fmt.Fprintf(st.Stderr, "Failed: %s: %v\n", filepath.Base(f.Path), f.Err)
	}

	if inv.SingleImage() {
		if _, err := cfg.Tag(ctx, inv.ImagePath); err != nil {
			fmt.Fprintln(st.Stderr, "Error:", err)
			return Result{ExitCode: ExitFailure}
		}
		return Result{ExitCode: ExitSuccess}
	}

	paths, err := cfg.ListCandidates(inv.InputDir)
	if err != nil {
		if errors.Is(err, garmentag.ErrDirectoryNotFound) {
			fmt.Fprintf(st.Stderr, "Error: Directory not found: %s\n", inv.InputDir)
		} else {
			fmt.Fprintln(st.Stderr, "Error:", err)
		}
		return Result{ExitCode: ExitFailure}
	}
	if len(paths) == 0 {
		fmt.Fprintf(st.Stdout, "No images to process in %s\n", inv.InputDir)
		return Result{ExitCode: ExitSuccess}
	}

	fmt.Fprintf(st.Stdout, "Found %d images to classify\n\n", len(paths))
	sum, err := cfg.ProcessPaths(ctx, paths)
	fmt.Fprintf(st.Stdout, "\nClassification completed: %d/%d successful\n", sum.Succeeded, sum.Attempted)

	res := Result{ExitCode: ExitSuccess, Summary: sum}
	if err != nil {
		fmt.Fprintln(st.Stderr, "Error:", err)
		res.ExitCode = ExitFailure
	}
	if inv.Strict && len(sum.Failures) > 0 {
		res.ExitCode = ExitFailure
	}
	return res
}

// NewConfig wires the library configuration for inv.
func NewConfig(inv Invocation) *garmentag.Config {
	cfg := &garmentag.Config{
		Oracle:     newOracle(inv),
		Extensions: inv.Extensions,
		OnPanic: func(tag string, r any) {
			slog.Error("garmentag: recovered panic", "tag", tag, "panic", fmt.Sprint(r))
		},
	}
	if inv.Memo {
		cfg.Cache = &garmentag.MemoryCache{}
	}
	return cfg
}

func newOracle(inv Invocation) garmentag.Oracle {
	if inv.OracleURL != "" {
		return &garmentag.HTTPOracle{URL: inv.OracleURL, Client: &http.Client{}}
	}
	fields := strings.Fields(inv.OracleCmd)
	if len(fields) == 0 {
		return nil
	}
	return &garmentag.ExecOracle{Command: fields[0], Args: fields[1:]}
}

// ExitCode extracts a semantic exit code from a ParseInvocation error.
func ExitCode(err error) int {
	var invErr *InvocationError
	if errors.As(err, &invErr) && invErr != nil && invErr.ExitCode != 0 {
		return invErr.ExitCode
	}
	return ExitInvalidInvocation
}
