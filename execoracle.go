package garmentag

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"strings"
)

// ExecOracle runs a pose worker process per classification. The worker reads
// a PNG image on stdin and writes one JSON landmark document to stdout.
type ExecOracle struct {
	Command string   // required: worker executable
	Args    []string // extra arguments
	Env     []string // environment; nil inherits the current process environment
	Dir     string   // working directory; empty means the current one
}

// Open implements Oracle. The process is started by Detect.
func (o *ExecOracle) Open(ctx context.Context) (Detector, error) {
	if o.Command == "" {
		return nil, fmt.Errorf("%w: ExecOracle.Command is empty", ErrNoOracle)
	}
	cmd := exec.CommandContext(ctx, o.Command, o.Args...) //nolint:gosec // worker command is operator-supplied
	cmd.Env = o.Env
	cmd.Dir = o.Dir
	return &execDetector{cmd: cmd}, nil
}

type execDetector struct {
	cmd *exec.Cmd
}

func (d *execDetector) Detect(_ context.Context, img image.Image) (LandmarkSet, error) {
	var in bytes.Buffer
	if err := png.Encode(&in, img); err != nil {
		return nil, fmt.Errorf("encoding image: %w", err)
	}

	var out, stderr bytes.Buffer
	d.cmd.Stdin = &in
	d.cmd.Stdout = &out
	d.cmd.Stderr = &stderr

	if err := d.cmd.Start(); err != nil {
		return nil, fmt.Errorf("starting pose worker: %w", err)
	}
	if err := d.cmd.Wait(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("pose worker: %w: %s", err, msg)
		}
		return nil, fmt.Errorf("pose worker: %w", err)
	}
	return decodePoseResponse(&out)
}

// Close kills the worker if it is still running.
func (d *execDetector) Close() error {
	if d.cmd.Process == nil || d.cmd.ProcessState != nil {
		return nil
	}
	if err := d.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	_ = d.cmd.Wait()
	return nil
}
