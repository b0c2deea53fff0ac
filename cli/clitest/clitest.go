// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package clitest runs table-driven tests against tools built with the cli
// package.
package clitest

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"go.astrophena.name/lmicreset/cli"
)

// Case is one invocation of a tool and what it must produce.
type Case[T cli.App] struct {
	Args []string
	// Env is the only environment the tool sees.
	Env map[string]string

	// WantErr is matched with errors.Is. WantErrType is matched with
	// errors.As against its dynamic type. With neither set the tool must
	// succeed.
	WantErr     error
	WantErrType error

	WantInStdout string
	WantInStderr string

	// CheckFunc inspects the tool after it returned.
	CheckFunc func(*testing.T, T)
}

// Run runs every case in a subtest against a tool freshly made by setup.
func Run[T cli.App](t *testing.T, setup func(*testing.T) T, cases map[string]Case[T]) {
	t.Helper()
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			app := setup(t)

			var stdout, stderr bytes.Buffer
			ctx := cli.WithEnv(context.Background(), &cli.Env{
				Args:   tc.Args,
				Getenv: func(key string) string { return tc.Env[key] },
				Stdout: &stdout,
				Stderr: &stderr,
			})
			err := cli.Run(ctx, app)

			checkErr(t, err, tc.WantErr, tc.WantErrType)
			if !strings.Contains(stdout.String(), tc.WantInStdout) {
				t.Errorf("stdout must contain %q, got %q", tc.WantInStdout, stdout.String())
			}
			if !strings.Contains(stderr.String(), tc.WantInStderr) {
				t.Errorf("stderr must contain %q, got %q", tc.WantInStderr, stderr.String())
			}
			if tc.CheckFunc != nil {
				tc.CheckFunc(t, app)
			}
		})
	}
}

func checkErr(t *testing.T, err, want, wantType error) {
	t.Helper()
	if want == nil && wantType == nil {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		return
	}
	if want != nil && !errors.Is(err, want) {
		t.Fatalf("error = %v, want %v", err, want)
	}
	if wantType != nil {
		target := reflect.New(reflect.TypeOf(wantType))
		if !errors.As(err, target.Interface()) {
			t.Fatalf("error = %v (%T), want it to be %T", err, err, wantType)
		}
	}
}
