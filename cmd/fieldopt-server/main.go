// Command fieldopt-server serves the field scheduling API.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/lmittmann/tint"
	"github.com/spf13/pflag"

	"github.com/fieldopt/fieldopt-server/internal/exportdiag"
	"github.com/fieldopt/fieldopt-server/internal/pflagx"
	"github.com/fieldopt/fieldopt-server/pkg/fieldopt"
	"github.com/fieldopt/fieldopt-server/pkg/solver"
	"github.com/fieldopt/fieldopt-server/pkg/solver/reference"
	"github.com/fieldopt/fieldopt-server/pkg/solver/scip"
	"github.com/fieldopt/fieldopt-server/routes"
)

var (
	EnvPrefix = "FIELDOPT_SERVER_"
	Addr      = pflag.StringP("addr", "a", ":8080", "listen address")
	Backend   = pflag.StringP("solver", "s", "reference", "solver backend to use (reference, scip)")
	LogLevel  = pflagx.LevelP("log-level", "L", slog.LevelInfo, "log level")
	LogJSON   = pflag.Bool("log-json", false, "use json logs")
	Help      = pflag.BoolP("help", "h", false, "show this help text")
)

func main() {
	pflagx.ParseEnv(EnvPrefix)
	pflag.Parse()

	if *Help || pflag.NArg() != 0 {
		fmt.Printf("usage: %s [options]\n%s", os.Args[0], pflag.CommandLine.FlagUsages())
		if *Help {
			return
		}
		os.Exit(2)
	}

	if *LogJSON {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: LogLevel,
		})))
	} else {
		slog.SetDefault(slog.New(tint.NewHandler(os.Stdout, &tint.Options{
			Level: LogLevel,
		})))
	}
	slog.SetLogLoggerLevel(LogLevel.Level())

	if err := run(); err != nil {
		slog.Error("failed to run server", "error", err)
		os.Exit(1)
	}
}

func run() error {
	secret := os.Getenv("API_SECRET")
	if secret == "" {
		slog.Warn("no API_SECRET set; all solve requests will be rejected with 500")
	}

	solverBackend, err := newSolver(*Backend)
	if err != nil {
		return fmt.Errorf("initialize solver: %w", err)
	}
	slog.Info("solver: selected backend", "backend", *Backend)

	handler, err := routes.New(routes.Config{
		Engine:    fieldopt.NewEngine(solverBackend),
		Diag:      exportdiag.NewRing(),
		APISecret: secret,
	})
	if err != nil {
		return fmt.Errorf("initialize routes: %w", err)
	}

	slog.Info("http: listening", "addr", *Addr)
	return http.ListenAndServe(*Addr, handler)
}

func newSolver(name string) (solver.Solver, error) {
	switch name {
	case "reference", "":
		return reference.New(), nil
	case "scip":
		return scip.New(), nil
	default:
		return nil, fmt.Errorf("unknown solver backend %q", name)
	}
}
