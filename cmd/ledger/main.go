package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/congo-pay/ledger/internal/batch"
	"github.com/congo-pay/ledger/internal/config"
	"github.com/congo-pay/ledger/internal/diagnostics"
	"github.com/congo-pay/ledger/internal/ledger"
	"github.com/congo-pay/ledger/internal/logging"
	"github.com/congo-pay/ledger/internal/records"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	// .env is optional; the environment always wins over it.
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return 1
	}

	flags := flag.NewFlagSet("ledger", flag.ContinueOnError)
	flags.SetOutput(stderr)
	logLevel := flags.String("log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	flags.Usage = func() {
		fmt.Fprintln(stderr, "Usage: ledger [flags] <transactions.csv>")
		fmt.Fprintln(stderr, "\nReads transactions from the CSV file (or - for stdin) and writes")
		fmt.Fprintln(stderr, "one balance row per client to stdout.")
		fmt.Fprintln(stderr, "\nFlags:")
		flags.PrintDefaults()
	}
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if flags.NArg() != 1 {
		fmt.Fprintln(stderr, "Path for CSV file is needed")
		flags.Usage()
		return 2
	}

	logger := logging.New(stderr, *logLevel, cfg.LogFormat).With(
		slog.String("app", cfg.AppName),
		slog.String("env", cfg.AppEnv),
	)
	if envErr != nil && !errors.Is(envErr, fs.ErrNotExist) {
		logger.Warn("load .env", "error", envErr)
	}

	input, closeInput, err := openInput(flags.Arg(0), stdin)
	if err != nil {
		logger.Error("open input", "path", flags.Arg(0), "error", err)
		return 1
	}
	defer closeInput()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var opts []ledger.Option
	if cfg.DisputableWithdrawals {
		opts = append(opts, ledger.WithDisputePolicy(ledger.DepositsAndWithdrawals))
	}

	runner := batch.NewRunner(ledger.NewEngine(opts...), diagnostics.NewLoggerReporter(logger), logger)
	if _, err := runner.Run(ctx, records.NewDecoder(input), records.NewWriter(stdout, cfg.OutputPrecision)); err != nil {
		logger.Error("run failed", "error", err)
		return 1
	}
	return 0
}

func openInput(path string, stdin io.Reader) (io.Reader, func(), error) {
	if path == "-" {
		return stdin, func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}
