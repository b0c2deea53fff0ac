// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package cli runs single-command tools: it parses flags, sets up logging
// and hands the tool its environment through a context.
package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"go.astrophena.name/lmicreset/logger"
	"go.astrophena.name/lmicreset/syncx"
	"go.astrophena.name/lmicreset/version"
)

// App is a command-line tool.
type App interface {
	Run(context.Context) error
}

// HasFlags is an App with its own command-line flags.
type HasFlags interface {
	App
	Flags(*flag.FlagSet)
}

var (
	// ErrInvalidArgs reports unusable command-line arguments. Wrap it with
	// details.
	ErrInvalidArgs = errors.New("invalid arguments")
	// ErrExitVersion is returned by Run after -version printed the build
	// information.
	ErrExitVersion = silence(errors.New("version flag exit"))
)

// silentError is an error Main exits with but doesn't print.
type silentError struct{ err error }

func silence(err error) error        { return &silentError{err} }
func (e *silentError) Error() string { return e.err.Error() }
func (e *silentError) Unwrap() error { return e.err }

func isSilent(err error) bool {
	var se *silentError
	return errors.Is(err, flag.ErrHelp) || errors.As(err, &se)
}

// Env is what a tool sees of the outside world.
type Env struct {
	Args   []string
	Getenv func(string) string
	Stdout io.Writer
	Stderr io.Writer

	logf syncx.Lazy[logger.Logf]
}

// OSEnv returns the environment of the current process.
func OSEnv() *Env {
	return &Env{
		Args:   os.Args[1:],
		Getenv: os.Getenv,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Logf prints an unstructured line to standard error.
func (e *Env) Logf(format string, args ...any) {
	e.logf.Get(func() logger.Logf {
		return log.New(e.Stderr, "", 0).Printf
	})(format, args...)
}

func (e *Env) getenv(key string) string {
	if e.Getenv == nil {
		return ""
	}
	return e.Getenv(key)
}

type ctxKey struct{}

// WithEnv returns a copy of ctx carrying e.
func WithEnv(ctx context.Context, e *Env) context.Context {
	return context.WithValue(ctx, ctxKey{}, e)
}

// GetEnv returns the environment stored in ctx, or [OSEnv] if there is none.
func GetEnv(ctx context.Context) *Env {
	if e, ok := ctx.Value(ctxKey{}).(*Env); ok {
		return e
	}
	return OSEnv()
}

// Main runs app until it returns or the process is interrupted, reports the
// error through [Env.Logf] and exits with status 1 on failure. Call it from
// main.
func Main(app App) {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	env := OSEnv()
	if code := exitCode(env, Run(WithEnv(ctx, env), app)); code != 0 {
		cancel()
		os.Exit(code)
	}
}

// exitCode reports err on the standard error of env unless it is silent and
// returns the process exit status for it.
func exitCode(env *Env, err error) int {
	if err == nil {
		return 0
	}
	if !isSilent(err) {
		env.Logf("%s: %v", version.CmdName(), err)
	}
	return 1
}

// Run parses the flags of app from the environment in ctx, handles -version
// and -v, installs a [logger.Logger] writing to standard error and runs app.
// Log colors are disabled by the NO_COLOR environment variable.
func Run(ctx context.Context, app App) error {
	env := GetEnv(ctx)

	fs := flag.NewFlagSet(version.CmdName(), flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	fs.Usage = func() { printUsage(fs, env.Stderr) }
	if fa, ok := app.(HasFlags); ok {
		fa.Flags(fs)
	}
	showVersion := boolFlag(fs, "version", "Show version.")
	verbose := boolFlag(fs, "v", "Enable debug logging.")

	if err := fs.Parse(env.Args); err != nil {
		// The flag package has printed the problem already.
		return silence(err)
	}
	env.Args = fs.Args()

	if *showVersion {
		fmt.Fprint(env.Stderr, version.Version())
		return ErrExitVersion
	}

	l := logger.New(nil)
	if *verbose {
		l.Level.Set(slog.LevelDebug)
	}
	l.AttachTerminal(env.Stderr, env.getenv("NO_COLOR") != "")

	return app.Run(WithEnv(logger.Put(ctx, l), env))
}

// boolFlag defines a standard flag unless the app took the name for itself.
func boolFlag(fs *flag.FlagSet, name, usage string) *bool {
	if fs.Lookup(name) != nil {
		return new(bool)
	}
	return fs.Bool(name, false, usage)
}

func printUsage(fs *flag.FlagSet, w io.Writer) {
	if docSrc != nil {
		fmt.Fprintln(w, doc.Get(docText))
	}
	fmt.Fprint(w, "Available flags:\n\n")
	fs.PrintDefaults()
}

var (
	docSrc []byte
	doc    syncx.Lazy[string]
)

// SetDocComment sets the text printed by -help to the block comment of src,
// usually the tool's doc.go embedded with //go:embed.
func SetDocComment(src []byte) {
	docSrc = src
	doc = syncx.Lazy[string]{}
}

// docText returns the lines between "/*" and "*/" of docSrc.
func docText() string {
	var sb strings.Builder
	s := bufio.NewScanner(bytes.NewReader(docSrc))
	inside := false
	for s.Scan() {
		switch line := s.Text(); {
		case line == "/*":
			inside = true
		case line == "*/":
			return sb.String()
		case inside:
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
