package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/dvloznov/smsspend/internal/blobstore/sqlite"
	"github.com/dvloznov/smsspend/internal/config"
	"github.com/dvloznov/smsspend/internal/logger"
)

const (
	cmdUp      = "up"
	cmdDown    = "down"
	cmdVersion = "version"
)

func main() {
	cfg := config.Load()

	var (
		dbPath = flag.String("db", cfg.SQLiteDBPath, "Path to the SQLite database (or set SQLITE_DB_PATH env)")
		force  = flag.Bool("force", false, "Required for down, which drops the stored ledger")
	)
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: migrate [options] <up|down|version>\n\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	log := logger.NewWithOptions(logger.Options{
		Level:     cfg.LogLevel,
		Format:    cfg.LogFormat,
		Component: "migrate",
	})

	command, err := parseCommand(flag.Args(), *force)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n\n", err)
		flag.Usage()
		os.Exit(1)
	}

	if err := run(command, *dbPath, log); err != nil {
		log.Fatal().Err(err).Str("db_path", *dbPath).Str("command", command).Msg("Migration failed")
	}
}

func parseCommand(args []string, force bool) (string, error) {
	if len(args) != 1 {
		return "", fmt.Errorf("expected exactly one command")
	}
	switch args[0] {
	case cmdUp, cmdVersion:
		return args[0], nil
	case cmdDown:
		if !force {
			return "", fmt.Errorf("down drops the blobs table; pass -force to confirm")
		}
		return cmdDown, nil
	default:
		return "", fmt.Errorf("unknown command %q", args[0])
	}
}

func run(command, dbPath string, log zerolog.Logger) error {
	m, err := sqlite.OpenMigrator(dbPath)
	if err != nil {
		return err
	}
	defer m.Close()

	switch command {
	case cmdUp:
		if err := m.Up(); err != nil {
			return err
		}
	case cmdDown:
		if err := m.Down(); err != nil {
			return err
		}
	}

	version, dirty, err := m.Version()
	if err != nil {
		return err
	}
	log.Info().
		Str("db_path", dbPath).
		Str("command", command).
		Uint("version", version).
		Bool("dirty", dirty).
		Msg("Schema version")
	return nil
}
