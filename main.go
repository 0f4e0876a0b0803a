package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mjwhitta/cli"

	"github.com/hivekrb/hivekrb/adapters"
	"github.com/hivekrb/hivekrb/auth/kerberos"
	"github.com/hivekrb/hivekrb/config"
	"github.com/hivekrb/hivekrb/core"
	"github.com/hivekrb/hivekrb/logging"
	"github.com/hivekrb/hivekrb/models"
	"github.com/hivekrb/hivekrb/output/format"
)

// Exit codes
const (
	ExitSuccess = iota
	ExitError
)

// parseFlags fills a config from the command line.
func parseFlags() *config.Config {
	cfg := config.Defaults()
	d := config.Defaults()

	cli.Align = true
	cli.Banner = fmt.Sprintf("%s [OPTIONS]", os.Args[0])
	cli.Info(
		"Logs in to Kerberos with a keytab, then recreates and queries",
		"an example table on HiveServer2 over SPNEGO authenticated HTTP.",
	)
	cli.ExitStatus(
		"0 - Success",
		"1 - Error",
	)

	cli.Flag(&cfg.Server, "s", "server", d.Server, "The HiveServer2 address")
	cli.Flag(&cfg.Port, "p", "port", d.Port, "The HiveServer2 HTTP port")
	cli.Flag(&cfg.HivePrincipal, "hive-principal", "", "The principal for the HiveServer2 node (mandatory)")
	cli.Flag(&cfg.Principal, "principal", "", "The app principal (mandatory)")
	cli.Flag(&cfg.Keytab, "keytab", "", "The app's keytab (mandatory)")
	cli.Flag(&cfg.KrbConf, "krb-conf", "", "Path to krb5.conf")
	// cli only takes single letter short names, two letter ones are
	// registered as flags of their own
	cli.Flag(&cfg.HivePrincipal, "hp", "", "Same as --hive-principal")
	cli.Flag(&cfg.Principal, "pr", "", "Same as --principal")
	cli.Flag(&cfg.Keytab, "kt", "", "Same as --keytab")
	cli.Flag(&cfg.KrbConf, "kc", "", "Same as --krb-conf")
	cli.Flag(&cfg.HTTPPath, "http-path", d.HTTPPath, "HiveServer2 HTTP endpoint path")
	cli.Flag(&cfg.SSL, "ssl", false, "Use https")
	cli.Flag(&cfg.Driver, "driver", d.Driver, fmt.Sprintf("Client driver %v", new(adapters.Mux).Aliases()))
	cli.Flag(&cfg.DisableFAST, "disable-fast", false, "Disable Kerberos FAST negotiation")
	cli.Flag(&cfg.Format, "format", d.Format, fmt.Sprintf("Result format %v", format.Names()))
	cli.Flag(&cfg.ConnectTimeout, "connect-timeout", d.ConnectTimeout, "Bound on opening the session")
	cli.Flag(&cfg.QueryTimeout, "query-timeout", d.QueryTimeout, "Bound on each statement")
	cli.Flag(&cfg.Verbose, "v", "verbose", false, "Debug logging")

	cli.Parse()
	return cfg
}

func main() {
	cfg := parseFlags()
	logger := logging.New(os.Stderr, cfg.Verbose)
	if err := adapters.SetDriverLog(logging.NewConsoleWriter(os.Stderr), cfg.Verbose); err != nil {
		logger.Warnf("databricks log level: %s", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := &runner{
		stdout: os.Stdout,
		log:    logger,
		acquire: func(c kerberos.Config, log models.Logger) (identity, error) {
			id, err := kerberos.Acquire(c, kerberos.WithLogger(log))
			if err != nil {
				return nil, err
			}
			return id, nil
		},
	}

	err := r.run(ctx, cfg)
	stop()

	var argErr *core.ArgumentError
	switch {
	case err == nil:
		os.Exit(ExitSuccess)
	case errors.As(err, &argErr):
		fmt.Fprintln(os.Stdout, argErr.Error())
	default:
		logger.Error(err.Error())
	}
	os.Exit(ExitError)
}
