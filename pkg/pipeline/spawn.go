package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"

	"github.com/hashicorp/go-hclog"

	crerrors "github.com/provide-io/crafter/pkg/errors"
)

type spawnOptions struct {
	path   string
	args   []string
	dir    string
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

// spawn starts the game process and waits for it. A non-zero exit becomes
// a LaunchError carrying the code.
func spawn(ctx context.Context, opts spawnOptions, logger hclog.Logger) error {
	cmd := exec.CommandContext(ctx, opts.path, opts.args...)
	cmd.Dir = opts.dir
	cmd.Stdin = opts.stdin
	cmd.Stdout = opts.stdout
	cmd.Stderr = opts.stderr

	logger.Info("🚀 Launching game", "java", opts.path, "dir", opts.dir)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start process: %w", err)
	}

	if err := cmd.Wait(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			logger.Info("⏹️ Game exited", "code", exitErr.ExitCode())
			return &crerrors.LaunchError{Code: exitErr.ExitCode()}
		}
		return fmt.Errorf("process error: %w", err)
	}

	logger.Info("✅ Game exited cleanly")
	return nil
}
