// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"

	"go.astrophena.name/lmicreset/cli"
	"go.astrophena.name/lmicreset/logger"
	"go.astrophena.name/lmicreset/resetter"
)

func main() { cli.Main(new(app)) }

type app struct {
	project string
	env     string
	path    string
	dry     bool

	state resetter.State
}

func (a *app) Flags(fs *flag.FlagSet) {
	fs.StringVar(&a.project, "project", ".", "PlatformIO project `dir`ectory.")
	fs.StringVar(&a.env, "env", resetter.DefaultEnv, "PlatformIO environment `name`.")
	fs.StringVar(&a.path, "path", "", "Reset this `file` instead of the header inside -project for -env.")
	fs.BoolVar(&a.dry, "dry", false, "Print whether the header would be overwritten, without making changes.")
}

func (a *app) Run(ctx context.Context) error {
	env := cli.GetEnv(ctx)
	if len(env.Args) > 0 {
		return fmt.Errorf("%w: unexpected arguments %q", cli.ErrInvalidArgs, env.Args)
	}

	path := a.path
	if path == "" {
		path = resetter.ConfigPath(a.project, a.env)
	}

	r := &resetter.Resetter{
		Path:   path,
		Stdout: env.Stdout,
		DryRun: a.dry,
	}
	state, err := r.Reset(ctx)
	if err != nil {
		return err
	}
	a.state = state
	logger.Debug(ctx, "reset finished", slog.String("state", state.String()), slog.Bool("dry", a.dry))
	return nil
}
