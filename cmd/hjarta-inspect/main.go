// Command hjarta-inspect merges configuration files the way the loader does
// and prints the masked result.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/pflag"

	hjarta "github.com/0xalexb/hjarta-config"
	"github.com/0xalexb/hjarta-config/config"
	"github.com/0xalexb/hjarta-config/config/expand"
	"github.com/0xalexb/hjarta-config/config/masking"
	"github.com/0xalexb/hjarta-config/config/merge"
	"github.com/0xalexb/hjarta-config/logging"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	flags := pflag.NewFlagSet("hjarta-inspect", pflag.ContinueOnError)
	flags.SetOutput(stderr)
	flags.Usage = func() {
		fmt.Fprintf(stderr, "Usage: hjarta-inspect [options] FILE...\n\n")
		fmt.Fprintf(stderr, "Merges configuration files in order and prints the masked result as JSON.\n")
		fmt.Fprintf(stderr, "Supported formats: .json, .json5, .toml, .yaml, .yml, .ini, .cfg, .env and\n")
		fmt.Fprintf(stderr, "Docker secrets directories.\n\n")
		fmt.Fprintf(stderr, "Options:\n")
		flags.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  hjarta-inspect config.yaml local.toml             # Merged data, later files win\n")
		fmt.Fprintf(stderr, "  hjarta-inspect --origins config.yaml .env         # Also show where each value came from\n")
		fmt.Fprintf(stderr, "  hjarta-inspect -s raise_on_conflict a.json b.json # Fail on keys set twice\n")
	}

	strategyFlag := flags.StringP("strategy", "s", merge.LastWins.String(), "Merge strategy: last_wins, first_wins or raise_on_conflict")
	originsFlag := flags.BoolP("origins", "o", false, "Print the source of every field")
	secretFlag := flags.StringArray("secret-name", nil, "Additional field name pattern to mask (repeatable)")
	expandFlag := flags.String("expand", string(expand.Default), "Environment expansion mode: default, disabled, empty or strict")
	levelFlag := flags.String("log-level", "warn", "Log level: debug, info, warn or error")
	versionFlag := flags.BoolP("version", "V", false, "Print version information")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}

		return exitUsage
	}

	if *versionFlag {
		fmt.Fprintf(stdout, "hjarta-inspect version %s (config %s, built %s)\n", hjarta.Version, hjarta.ConfigVersion, hjarta.CompiledAt)

		return exitOK
	}

	if flags.NArg() == 0 {
		flags.Usage()

		return exitUsage
	}

	strategy, err := merge.ParseStrategy(*strategyFlag)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)

		return exitUsage
	}

	mode, err := expand.ParseMode(*expandFlag)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)

		return exitUsage
	}

	sources := make([]config.Source, flags.NArg())
	for i, file := range flags.Args() {
		sources[i] = config.Source{File: file, ExpandEnv: mode, SecretFieldNames: *secretFlag}
	}

	logger := logging.NewLogger(logging.LoggerConfig{
		Level:      *levelFlag,
		Format:     logging.FormatText,
		RedactKeys: masking.DefaultSecretFieldNames,
	}, stderr)

	report, err := config.Inspect(config.Merge{Sources: sources, Strategy: strategy}, config.WithLogger(logger))
	if err != nil {
		fmt.Fprintln(stderr, err)

		return exitError
	}

	if err := printReport(stdout, report, *originsFlag); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)

		return exitError
	}

	return exitOK
}

func printReport(w io.Writer, report *config.LoadReport, origins bool) error {
	encoded, err := json.MarshalIndent(report.MergedData, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding merged data: %w", err)
	}

	fmt.Fprintln(w, string(encoded))

	if !origins {
		return nil
	}

	fmt.Fprintf(w, "\nField origins:\n")

	table := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)

	for _, origin := range report.FieldOrigins {
		fmt.Fprintf(table, "  %s\t%s\t#%d %s '%s'\n",
			origin.Key, masking.Stringify(origin.Value), origin.SourceIndex, origin.SourceLoaderType, origin.SourceFile)
	}

	if err := table.Flush(); err != nil {
		return fmt.Errorf("writing origins: %w", err)
	}

	return nil
}
