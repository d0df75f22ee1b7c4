// Copyright 2025 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package campaign

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
)

// A Runner runs one external command to completion.
type Runner interface {
	// Run runs name with args and returns what it wrote to its
	// error stream. A non-zero exit is an error; stderr is still
	// returned.
	Run(ctx context.Context, name string, args ...string) (stderr string, err error)
}

// ExecRunner runs commands as child processes.
type ExecRunner struct {
	// Dir is the working directory of the commands.
	Dir string
	// Stdout receives the commands' standard output. Nil discards it.
	Stdout io.Writer
	// Env, if non-nil, replaces the environment of the commands.
	Env []string
}

func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	cmd.Env = r.Env
	cmd.Stdout = r.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = io.Discard
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return stderr.String(), fmt.Errorf("%s: %w", name, err)
	}
	return stderr.String(), nil
}
