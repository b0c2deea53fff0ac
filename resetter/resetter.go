// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package resetter resets the project configuration header of the MCCI
// LoRaWAN LMIC library to a placeholder before a PlatformIO build.
//
// PlatformIO copies the library into .pio/libdeps/<env>/, including a
// project_config/lmic_project_config.h that may carry definitions left over
// from an earlier customization. The project configures the library through
// build_flags in platformio.ini instead, so the header is emptied before
// every build.
package resetter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"go.astrophena.name/lmicreset/logger"
)

const (
	// Content is written to the configuration header when it exists.
	Content = "// project-specific definitions\n"
	// LibraryName is the directory name PlatformIO installs the library under.
	LibraryName = "MCCI LoRaWAN LMIC library"
	// DefaultEnv is the PlatformIO environment of the project.
	DefaultEnv = "heltec_wifi_lora_32"
)

// DefaultPath is the configuration header path relative to the project
// directory.
var DefaultPath = ConfigPath(".", DefaultEnv)

// ConfigPath returns the location of the library's configuration header for
// the PlatformIO environment env inside projectDir.
func ConfigPath(projectDir, env string) string {
	return filepath.Join(projectDir, ".pio", "libdeps", env, LibraryName, "project_config", "lmic_project_config.h")
}

// ErrAccess is returned when the configuration header can't be checked or
// rewritten. It is always joined with the underlying error.
var ErrAccess = errors.New("filesystem access error")

// State is the outcome of a reset.
type State int

const (
	// Absent means the header did not exist and nothing was written.
	Absent State = iota
	// Exists means the header existed and was overwritten.
	Exists
)

func (s State) String() string {
	switch s {
	case Absent:
		return "absent"
	case Exists:
		return "exists"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

var banner = strings.Repeat("*", 70)

// Resetter overwrites a configuration header with [Content].
type Resetter struct {
	// Path is the header to reset. DefaultPath is used if empty.
	Path string
	// Stdout receives status messages. They are discarded if nil.
	Stdout io.Writer
	// DryRun reports what would be overwritten without touching the file.
	DryRun bool
}

func (r *Resetter) path() string {
	if r.Path == "" {
		return DefaultPath
	}
	return r.Path
}

// Reset checks whether the header exists and, if it does, truncates it and
// writes [Content]. A missing header is reported, not created.
//
// The status messages are framed by banners. The closing banner is not
// printed if Reset fails. The returned State is meaningless if err is not nil.
func (r *Resetter) Reset(ctx context.Context) (State, error) {
	w := r.Stdout
	if w == nil {
		w = io.Discard
	}
	path := r.path()

	fmt.Fprintln(w, " ")
	fmt.Fprintln(w, banner)

	logger.Debug(ctx, "checking config header", slog.String("path", path))
	state, err := check(path)
	if err != nil {
		return state, err
	}

	switch state {
	case Exists:
		fmt.Fprintln(w, LibraryName+" project config file exists -> overwriting it")
		fmt.Fprintln(w, "Find config in platformio.ini -> build_flags")
		if r.DryRun {
			fmt.Fprintf(w, "Would overwrite %s\n", path)
			break
		}
		if err := overwrite(path); err != nil {
			return state, err
		}
		logger.Info(ctx, "config header overwritten", slog.String("path", path))
	case Absent:
		fmt.Fprintln(w, "Config file is NOT existing")
	}

	fmt.Fprintln(w, banner)
	fmt.Fprintln(w, " ")
	return state, nil
}

func check(path string) (State, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return Exists, nil
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, syscall.ENOTDIR), errors.Is(err, syscall.ELOOP):
		return Absent, nil
	default:
		return Absent, fmt.Errorf("%w: checking config header: %w", ErrAccess, err)
	}
}

// overwrite truncates the existing file at path and writes Content. It never
// creates the file.
func overwrite(path string) (err error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_TRUNC, 0)
	if err != nil {
		return fmt.Errorf("%w: opening config header: %w", ErrAccess, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("%w: closing config header: %w", ErrAccess, cerr)
		}
	}()
	if _, err := io.WriteString(f, Content); err != nil {
		return fmt.Errorf("%w: writing config header: %w", ErrAccess, err)
	}
	return nil
}
