package testutil

import (
	"bytes"
	"os"
	"testing"

	"github.com/OFR-IIASA/message-ix-models/internal/cli"
	"github.com/OFR-IIASA/message-ix-models/internal/logutil"
)

// Result captures one CLI invocation: the exit code, the original error
// returned from inside the command, and the captured output streams.
type Result struct {
	ExitCode int
	Err      error
	Stdout   string
	Stderr   string
}

// CLIRunner invokes the mix-models CLI and records results for later
// assertion.
type CLIRunner struct {
	// Env holds environment variables applied for the duration of each
	// invocation.
	Env map[string]string

	// LastResult is the result of the most recent Invoke call.
	LastResult *Result
}

// NewCLIRunner returns a runner that applies env around each invocation.
func NewCLIRunner(env map[string]string) *CLIRunner {
	return &CLIRunner{Env: env}
}

// Invoke runs the mix-models CLI with args.
//
// Any change the invoked command makes to the global log level or default
// logger is reverted afterward, success or failure, so logging side effects
// never leak past a single invocation. The result is stored in LastResult.
func (r *CLIRunner) Invoke(args ...string) *Result {
	defer logutil.Preserve()()
	defer r.applyEnv()()

	var stdout, stderr bytes.Buffer
	cmd := cli.NewRootCommand()
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()

	result := &Result{
		ExitCode: cli.GetExitCode(err),
		Err:      err,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}
	r.LastResult = result
	return result
}

// AssertExit0 asserts that a result has exit code 0.
//
// If any args are given, Invoke is called first; otherwise the result from
// the last Invoke is used. On a non-zero exit the test fails with the
// ORIGINAL error captured during the invocation, so the root cause appears in
// the failure report instead of a generic assertion message.
func (r *CLIRunner) AssertExit0(tb testing.TB, args ...string) *Result {
	tb.Helper()

	if len(args) > 0 {
		r.Invoke(args...)
	}
	if r.LastResult == nil {
		tb.Fatal("AssertExit0: no command has been invoked")
		return nil
	}
	if r.LastResult.ExitCode != 0 {
		tb.Fatal(r.LastResult.Err)
		return nil
	}
	return r.LastResult
}

// applyEnv sets the runner's environment variables and returns a function
// restoring the previous values.
func (r *CLIRunner) applyEnv() func() {
	type saved struct {
		value string
		ok    bool
	}
	prev := make(map[string]saved, len(r.Env))
	for key, value := range r.Env {
		old, ok := os.LookupEnv(key)
		prev[key] = saved{old, ok}
		os.Setenv(key, value)
	}
	return func() {
		for key, s := range prev {
			if s.ok {
				os.Setenv(key, s.value)
			} else {
				os.Unsetenv(key)
			}
		}
	}
}
