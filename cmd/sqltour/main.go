// Package main runs the catalog SQL tour against an in-memory SQLite
// database or a configured PostgreSQL server.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	sqltourcmd "github.com/louisbranch/sqltour/internal/cmd/sqltour"
	"github.com/louisbranch/sqltour/internal/platform/config"
)

func main() {
	cfg, err := sqltourcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := sqltourcmd.Run(ctx, cfg, os.Stdout, os.Stderr); err != nil {
		stop()
		config.Exitf("sqltour: %v", err)
	}
}
