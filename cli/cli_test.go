// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package cli_test

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"testing"

	"go.astrophena.name/lmicreset/cli"
	"go.astrophena.name/lmicreset/logger"
	"go.astrophena.name/lmicreset/testutil"
	"go.astrophena.name/lmicreset/version"
)

// hookApp mimics a build hook: it logs, prints its path and leftover
// arguments.
type hookApp struct {
	path string
}

func (a *hookApp) Flags(fs *flag.FlagSet) {
	fs.StringVar(&a.path, "path", "default.h", "header `file`")
}

func (a *hookApp) Run(ctx context.Context) error {
	env := cli.GetEnv(ctx)
	logger.Debug(ctx, "debug message")
	logger.Info(ctx, "info message")
	fmt.Fprintf(env.Stdout, "path=%s args=%v", a.path, env.Args)
	return nil
}

func run(t *testing.T, app cli.App, getenv func(string) string, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errb bytes.Buffer
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	ctx := cli.WithEnv(context.Background(), &cli.Env{
		Args:   args,
		Getenv: getenv,
		Stdout: &out,
		Stderr: &errb,
	})
	err = cli.Run(ctx, app)
	return out.String(), errb.String(), err
}

func TestRun(t *testing.T) {
	cases := map[string]struct {
		args         []string
		wantErr      error
		wantStdout   string
		wantInStderr []string
		notInStderr  []string
	}{
		"defaults": {
			wantStdout:   "path=default.h args=[]",
			wantInStderr: []string{"info message"},
			notInStderr:  []string{"debug message"},
		},
		"flags and arguments": {
			args:       []string{"-path", "a/b.h", "extra"},
			wantStdout: "path=a/b.h args=[extra]",
		},
		"verbose": {
			args:         []string{"-v"},
			wantStdout:   "path=default.h args=[]",
			wantInStderr: []string{"debug message", "info message"},
		},
		"unknown flag": {
			args:         []string{"-force"},
			wantErr:      errors.New("flag provided but not defined: -force"),
			wantInStderr: []string{"flag provided but not defined: -force", "Available flags:"},
		},
		"help": {
			args:         []string{"-h"},
			wantErr:      flag.ErrHelp,
			wantInStderr: []string{"Available flags:", "header file", "Enable debug logging."},
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			stdout, stderr, err := run(t, &hookApp{}, nil, tc.args...)
			switch {
			case tc.wantErr == nil && err != nil:
				t.Fatalf("unexpected error: %v", err)
			case tc.wantErr != nil && (err == nil || err.Error() != tc.wantErr.Error()):
				t.Fatalf("error = %v, want %v", err, tc.wantErr)
			}
			if tc.wantErr == nil {
				testutil.AssertEqual(t, stdout, tc.wantStdout)
			}
			for _, want := range tc.wantInStderr {
				if !strings.Contains(stderr, want) {
					t.Errorf("stderr must contain %q, got %q", want, stderr)
				}
			}
			for _, unwanted := range tc.notInStderr {
				if strings.Contains(stderr, unwanted) {
					t.Errorf("stderr must not contain %q, got %q", unwanted, stderr)
				}
			}
		})
	}
}

func TestRunVersion(t *testing.T) {
	stdout, stderr, err := run(t, &hookApp{}, nil, "-version")
	if !errors.Is(err, cli.ErrExitVersion) {
		t.Fatalf("error = %v, want ErrExitVersion", err)
	}
	testutil.AssertEqual(t, stdout, "")
	testutil.AssertEqual(t, stderr, version.Version().String())
}

func TestRunNoColor(t *testing.T) {
	orig := logger.IsTerminal
	logger.IsTerminal = func(io.Writer) bool { return true }
	t.Cleanup(func() { logger.IsTerminal = orig })

	_, colored, err := run(t, &hookApp{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(colored, "\x1b[") {
		t.Errorf("log output on a terminal must be colored, got %q", colored)
	}

	noColor := func(key string) string {
		if key == "NO_COLOR" {
			return "1"
		}
		return ""
	}
	_, plain, err := run(t, &hookApp{}, noColor)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(plain, "\x1b[") {
		t.Errorf("NO_COLOR must disable colors, got %q", plain)
	}
}

func TestDocComment(t *testing.T) {
	cli.SetDocComment([]byte("// header\n\n/*\nHook resets a header.\n\nIt takes no arguments.\n*/\npackage main\n"))
	t.Cleanup(func() { cli.SetDocComment(nil) })

	_, stderr, err := run(t, &hookApp{}, nil, "-h")
	if !errors.Is(err, flag.ErrHelp) {
		t.Fatalf("error = %v, want flag.ErrHelp", err)
	}
	if !strings.HasPrefix(stderr, "Hook resets a header.\n\nIt takes no arguments.\n\nAvailable flags:") {
		t.Errorf("help must start with the doc comment, got %q", stderr)
	}
}

func TestExitCode(t *testing.T) {
	errFailed := errors.New("header is a directory")
	name := version.CmdName()

	cases := map[string]struct {
		err        error
		wantCode   int
		wantStderr string
	}{
		"success":         {err: nil, wantCode: 0},
		"failure":         {err: errFailed, wantCode: 1, wantStderr: name + ": header is a directory\n"},
		"wrapped failure": {err: fmt.Errorf("resetting: %w", errFailed), wantCode: 1, wantStderr: name + ": resetting: header is a directory\n"},
		"help":            {err: fmt.Errorf("parsing: %w", flag.ErrHelp), wantCode: 1},
		"version":         {err: cli.ErrExitVersion, wantCode: 1},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var stderr bytes.Buffer
			code := cli.ExitCode(&cli.Env{Stderr: &stderr}, tc.err)
			testutil.AssertEqual(t, code, tc.wantCode)
			testutil.AssertEqual(t, stderr.String(), tc.wantStderr)
		})
	}
}
