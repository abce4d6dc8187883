package op

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math/rand"
	"os/exec"
	"time"
)

// CLI implements Client by shelling out to an op-compatible binary. The
// binary is resolved through /usr/bin/env, so a bare command name is looked
// up on PATH the same way a user's shell would.
//
// Authentication is entirely the external tool's concern: CLI inherits the
// ambient session established by a prior sign-in and never sees credentials.
type CLI struct {
	command string
	retries int
	backoff bool
	logger  *slog.Logger
}

// CLIOption configures a CLI client.
type CLIOption func(*CLI)

// WithRetries sets the number of extra fetch attempts after a failed
// GetItem. The default is 0: a single pass, no retry.
func WithRetries(n int) CLIOption {
	return func(c *CLI) {
		if n > 0 {
			c.retries = n
		}
	}
}

// WithoutBackoff disables sleeping between retry attempts. Intended for
// tests: the retry loop still runs, only the sleeps are skipped.
func WithoutBackoff() CLIOption {
	return func(c *CLI) {
		c.backoff = false
	}
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(logger *slog.Logger) CLIOption {
	return func(c *CLI) {
		c.logger = logger
	}
}

// NewCLI creates a client for the given command (e.g. "op" or an absolute
// path to the binary).
func NewCLI(command string, opts ...CLIOption) *CLI {
	c := &CLI{
		command: command,
		backoff: true,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// run invokes the tool with the given arguments and returns captured stdout
// and stderr along with the exit code. A start failure reports exit code -1.
func (c *CLI) run(ctx context.Context, args ...string) (stdout, stderr string, exitCode int, err error) {
	argv := append([]string{c.command}, args...)
	cmd := exec.CommandContext(ctx, "/usr/bin/env", argv...)

	var outBuf, errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err = cmd.Run()
	stdout = outBuf.String()
	stderr = errBuf.String()

	exitCode = -1
	if cmd.ProcessState != nil {
		exitCode = cmd.ProcessState.ExitCode()
	}
	return stdout, stderr, exitCode, err
}

// ListItems runs "items list --format=json" and extracts the id of every
// element. Any deviation from a JSON array of objects with string ids is
// fatal and returns a *ListError.
func (c *CLI) ListItems(ctx context.Context) ([]ItemRef, error) {
	args := []string{"items", "list", "--format=json"}

	stdout, stderr, exitCode, err := c.run(ctx, args...)
	if err != nil {
		return nil, &ListError{Err: &CommandError{
			Args:     args,
			ExitCode: exitCode,
			Stdout:   stdout,
			Stderr:   stderr,
			Err:      err,
		}}
	}

	var elements []json.RawMessage
	if err := json.Unmarshal([]byte(stdout), &elements); err != nil {
		return nil, &ListError{Err: fmt.Errorf("expected a JSON array from %q: %w", "items list", err)}
	}

	refs := make([]ItemRef, 0, len(elements))
	for i, element := range elements {
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(element, &obj); err != nil {
			return nil, &ListError{Err: fmt.Errorf("element %d is not an object: %w", i, err)}
		}

		rawID, ok := obj["id"]
		if !ok {
			return nil, &ListError{Err: fmt.Errorf("element %d has no id field", i)}
		}

		var id string
		if err := json.Unmarshal(rawID, &id); err != nil {
			return nil, &ListError{Err: fmt.Errorf("element %d: id is not a string: %w", i, err)}
		}

		refs = append(refs, ItemRef{ID: id, Raw: element})
	}

	return refs, nil
}

// GetItem runs "items get --format=json <id>" and returns stdout as an
// opaque JSON value.
//
// Compatibility quirk, preserved deliberately: if stdout parses as JSON the
// fetch counts as a success even when the subprocess exited non-zero. The
// tool's failure modes are too inconsistent to interpret its exit status
// reliably, but this policy can mask real errors (e.g. a JSON error body on
// stdout) — callers inspecting individual items should keep that in mind.
func (c *CLI) GetItem(ctx context.Context, id string) (json.RawMessage, error) {
	args := []string{"items", "get", "--format=json", id}

	var lastErr error
	for attempt := 1; attempt <= c.retries+1; attempt++ {
		stdout, stderr, exitCode, err := c.run(ctx, args...)

		trimmed := bytes.TrimSpace([]byte(stdout))
		if len(trimmed) > 0 && json.Valid(trimmed) {
			return json.RawMessage(trimmed), nil
		}

		switch {
		case err != nil:
			lastErr = &CommandError{
				Args:     args,
				ExitCode: exitCode,
				Stdout:   stdout,
				Stderr:   stderr,
				Err:      err,
			}
		case len(trimmed) == 0:
			lastErr = fmt.Errorf("command %q produced no output", "items get")
		default:
			lastErr = fmt.Errorf("command %q produced invalid JSON", "items get")
		}

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt <= c.retries {
			c.sleepBackoff(attempt)
		}
	}

	return nil, lastErr
}

// sleepBackoff waits a randomized interval that grows with the attempt
// number, to give a rate-limited or flaky tool room to recover.
func (c *CLI) sleepBackoff(attempt int) {
	d := time.Duration(attempt*3000+rand.Intn(3000)) * time.Millisecond
	if c.backoff {
		c.logger.Info("get item: backing off", "wait", d)
		time.Sleep(d)
	} else {
		c.logger.Info("get item: would have backed off", "wait", d)
	}
}

var _ Client = (*CLI)(nil)
