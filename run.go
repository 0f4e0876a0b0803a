package main

import (
	"context"
	"fmt"
	"io"

	"github.com/hivekrb/hivekrb/adapters"
	"github.com/hivekrb/hivekrb/auth/kerberos"
	"github.com/hivekrb/hivekrb/config"
	"github.com/hivekrb/hivekrb/core"
	"github.com/hivekrb/hivekrb/models"
	"github.com/hivekrb/hivekrb/output"
	"github.com/hivekrb/hivekrb/script"
)

// identity is a logged in principal which can be released.
type identity interface {
	core.Identity
	Destroy()
}

type runner struct {
	stdout  io.Writer
	log     models.Logger
	acquire func(kerberos.Config, models.Logger) (identity, error)
}

// run validates the configuration, logs in and executes the example script
// inside the identity context.
func (r *runner) run(ctx context.Context, cfg *config.Config) error {
	cfg.Expand()
	if err := cfg.Validate(); err != nil {
		return err
	}

	printer, err := output.NewPrinter(r.stdout, cfg.Format, r.log)
	if err != nil {
		return err
	}
	if _, err := new(adapters.Mux).GetAdapter(cfg.Driver); err != nil {
		return err
	}
	r.log.Debugf("%s driver, target %s", cfg.Driver, cfg.Endpoint().Target())

	fmt.Fprintln(r.stdout, "Login to KRB")
	id, err := r.acquire(cfg.Kerberos(), r.log)
	if err != nil {
		return err
	}
	defer id.Destroy()

	return id.Impersonate(ctx, func(ctx context.Context) error {
		session, err := adapters.OpenSession(ctx, cfg.Driver, id, cfg.Endpoint(),
			core.WithSessionLogger(r.log),
			core.WithConnectTimeout(cfg.ConnectTimeoutDuration()),
		)
		if err != nil {
			return err
		}
		defer session.Close()

		return core.NewRunner(
			core.WithRunnerLogger(r.log),
			core.WithStatementTimeout(cfg.QueryTimeoutDuration()),
			core.WithStatementHook(printer.Announce),
		).Run(ctx, session, script.Default(), printer.Handle)
	})
}
