package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"github.com/manea-palluat/flexfit-workout-sub001/internal/config"
	"github.com/manea-palluat/flexfit-workout-sub001/internal/logging"
	"github.com/manea-palluat/flexfit-workout-sub001/internal/tracking"
)

const usage = `usage: flexfit [flags] <command> [command flags]

commands:
  login      -u <username>            sign in (password from FLEXFIT_PASSWORD)
  logout                              sign out and forget the session
  exercises  [-group <muscle group>]  list the exercise catalog
  log        -exercise <id> -set 10x60 [-set 8x62.5] [-date 2024-01-31]
  history    [-exercise <id>]         per-exercise summary, or one exercise day by day
  add-set    -record <id> -set 5x100 [-date 2024-01-31]
  delete     -record <id>
`

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	identityPath := flag.String("identity", defaultIdentityPath(), "file the signed-in session is kept in")
	logLevel := flag.String("log-level", "warn", "log level")
	logFile := flag.String("log-file", "", "write logs to this file instead of stdout")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if err := logging.Setup(logging.Params{
		LogFileName: *logFile,
		LogLevel:    *logLevel,
		Output:      os.Stderr,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "flexfit: %s\n", err)
		os.Exit(2)
	}

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %s", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli{
		cfg:        cfg,
		identities: &identityFile{path: *identityPath},
		out:        os.Stdout,
	}

	if err := app.run(ctx, flag.Arg(0), flag.Args()[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "flexfit %s: %s\n", flag.Arg(0), describe(err))
		os.Exit(1)
	}
}

// describe turns the error taxonomy into something a person can act on.
func describe(err error) string {
	switch {
	case errors.Is(err, tracking.ErrNotAuthenticated):
		return "not signed in, run: flexfit login -u <username>"
	case tracking.IsValidationError(err):
		return fmt.Sprintf("invalid input: %s", err)
	case tracking.IsRemoteError(err):
		return fmt.Sprintf("store unavailable, nothing was lost locally: %s", err)
	default:
		return err.Error()
	}
}
