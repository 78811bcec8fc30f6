package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"noticeboard/internal/config"
	"noticeboard/migrations"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("load dotenv", "error", err)
		os.Exit(1)
	}

	dbPath := flag.String("db", config.DatabasePath(), "path to sqlite database")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 1 {
		usage()
		os.Exit(2)
	}
	cmd := flag.Arg(0)

	if dir := filepath.Dir(*dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			slog.Error("create data directory", "path", dir, "error", err)
			os.Exit(1)
		}
	}

	db, err := sql.Open("sqlite", *dbPath)
	if err != nil {
		slog.Error("open database", "path", *dbPath, "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := migrations.Exec(db, cmd); err != nil {
		slog.Error("migrate", "command", cmd, "path", *dbPath, "error", err)
		_ = db.Close()
		os.Exit(1)
	}
	slog.Info("migrate done", "command", cmd, "path", *dbPath)
}

func usage() {
	out := flag.CommandLine.Output()
	fmt.Fprintln(out, "Usage: migrate [-db path] <command>")
	fmt.Fprintln(out, "Applies the noticeboard schema (listings, posts, listing reports).")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Commands:")
	for _, c := range migrations.Commands {
		fmt.Fprintf(out, "  %-10s  %s\n", c.Name, c.Help)
	}
	fmt.Fprintln(out)
	flag.PrintDefaults()
}
