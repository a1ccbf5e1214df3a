// Command mediaplug discovers media backends and plays through the selected
// one.
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	return execute(&app{}, args, stdout, stderr)
}

func execute(a *app, args []string, stdout, stderr io.Writer) int {
	cmd := newRootCommand(a)
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	// Cobra skips post-run hooks when RunE fails, so release here.
	err = errors.Join(err, a.teardown())
	if err == nil {
		return 0
	}

	fmt.Fprintf(stderr, "Error: %v\n", err)
	var exit *exitError
	if errors.As(err, &exit) {
		return exit.code
	}
	return 1
}

// exitError carries a process exit code.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// backendError marks failures to obtain a usable backend. They exit with -1.
func backendError(err error) error {
	return &exitError{code: -1, err: err}
}
