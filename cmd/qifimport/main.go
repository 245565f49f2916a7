package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rumor-ml/commons.systems/qifimport/internal/config"
	"github.com/rumor-ml/commons.systems/qifimport/internal/dedup"
	"github.com/rumor-ml/commons.systems/qifimport/internal/importer"
	"github.com/rumor-ml/commons.systems/qifimport/internal/ledger"
	"github.com/rumor-ml/commons.systems/qifimport/internal/report"
	"github.com/rumor-ml/commons.systems/qifimport/internal/rules"
	"github.com/rumor-ml/commons.systems/qifimport/internal/scanner"
	"github.com/rumor-ml/commons.systems/qifimport/internal/ui"
)

const (
	version = "0.1.0"
)

var (
	versionFlag = flag.Bool("version", false, "Show version")

	verbose = flag.Bool("verbose", false, "Verbose (debug) logging")
	quiet   = flag.Bool("quiet", false, "Silent mode, only log warnings")
	dryRun  = flag.Bool("dry-run", false, "Noop, do not write anything")

	currency       = flag.String("currency", "", "Currency ISO code (default: GBP)")
	defaultAccount = flag.String("account", "", "Default source account for records without one")
	bookFile       = flag.String("book", "", "Ledger book file")
	rulesFile      = flag.String("rules", "", "Category rules file (default: rules.txt)")
	cacheFile      = flag.String("cache", "", "Imported-file cache (default: ~/.qifimport-cache.json)")
	configFile     = flag.String("config", "", "Profile with flag defaults (default: ~/.qifimport.yaml)")
	reportFile     = flag.String("report", "", "Write a JSON run report to this file")
)

func main() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `qifimport - Import QIF, CSV and OFX statements into a ledger book

Usage:
  qifimport [flags] file-or-directory...

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprint(os.Stderr, `
Examples:
  # Import a single statement
  qifimport -book home.db -account "Assets:Current Account" jan.qif

  # Import a directory, inferring the source account from rules.txt
  qifimport -book home.db -rules rules.txt ~/statements

  # See what would happen without touching the book
  qifimport -book home.db -dry-run -verbose jan.qif

`)
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("qifimport version %s\n", version)
		os.Exit(0)
	}

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Error: at least one input file or directory is required\n\n")
		flag.Usage()
		os.Exit(1)
	}

	if err := run(flag.Args()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	ctx := context.Background()

	profile, err := loadProfile()
	if err != nil {
		return err
	}

	if !*quiet {
		ui.Header("Importing Statements")
		ui.Step(1, 4, "Scanning inputs")
	}
	inputs, err := scanner.Expand(args)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no importable files found")
	}
	if !*quiet {
		ui.Success(fmt.Sprintf("Found %d statement files", len(inputs)))
	}

	if !*quiet {
		ui.Step(2, 4, "Loading category rules")
	}
	engine, err := loadRules(profile.Rules)
	if err != nil {
		return err
	}
	if !*quiet {
		ui.Success(fmt.Sprintf("Loaded %d rules", engine.Len()))
	}

	if !*quiet {
		ui.Step(3, 4, "Opening ledger book")
	}
	cache, err := dedup.LoadFileSet(profile.Cache)
	if err != nil {
		return err
	}
	book, err := ledger.Open(profile.Book)
	if err != nil {
		return err
	}
	defer book.Close()

	if !*quiet {
		ui.Step(4, 4, "Importing")
	}
	imp := importer.New(book, engine, cache, importer.Options{
		DryRun:         *dryRun,
		Currency:       profile.Currency,
		DefaultAccount: profile.Account,
		CachePath:      profile.Cache,
		Verbose:        *verbose,
		Quiet:          *quiet,
	})

	rep, err := imp.Run(ctx, inputs)
	if err != nil {
		return err
	}

	printSummary(rep, imp.Stats())

	if *reportFile != "" {
		if err := report.WriteToFile(rep, *reportFile); err != nil {
			return err
		}
		if !*quiet {
			ui.Success(fmt.Sprintf("Report written to %s", *reportFile))
		}
	}

	return nil
}

// loadRules loads the rules file. A missing file is fatal only when the
// user named one explicitly; the implicit rules.txt default may be absent.
func loadRules(path string) (*rules.Engine, error) {
	if *rulesFile == "" && path == "rules.txt" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			if !*quiet {
				ui.Warning(fmt.Sprintf("No rules file at %s, importing without rules", path))
			}
			return rules.Empty(), nil
		}
	}
	return rules.LoadFromFile(path)
}

// loadProfile merges the command-line flags over the optional YAML profile
// and fills in the remaining defaults.
func loadProfile() (*config.Profile, error) {
	path := *configFile
	if path == "" {
		path = config.DefaultProfilePath()
	}
	loaded, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	profile := &config.Profile{
		Currency: *currency,
		Account:  *defaultAccount,
		Book:     *bookFile,
		Rules:    *rulesFile,
		Cache:    *cacheFile,
	}
	profile.Merge(loaded)

	if profile.Currency == "" {
		profile.Currency = "GBP"
	}
	if profile.Rules == "" {
		profile.Rules = "rules.txt"
	}
	if profile.Cache == "" {
		profile.Cache = config.DefaultCachePath()
	}
	if profile.Book == "" {
		return nil, fmt.Errorf("no ledger book: set -book or the book field in %s", path)
	}
	return profile, nil
}

func printSummary(rep *report.Report, stats *importer.Stats) {
	if *quiet {
		return
	}

	ui.Success(fmt.Sprintf("Posted %d transactions (%d duplicates, %d ignored)",
		rep.Posted, rep.Duplicates, rep.Ignored))
	if rep.DryRun {
		ui.Info("Dry run, nothing was written")
	}

	total := rep.RulesMatched + rep.RulesUnmatched
	if total > 0 {
		ui.Info(fmt.Sprintf("Rule coverage: %.1f%% (%d/%d matched)",
			rep.RuleCoverage, rep.RulesMatched, total))
		if rep.RulesUnmatched > 0 {
			if *verbose {
				for _, payee := range stats.UnmatchedExamples() {
					ui.Warning(fmt.Sprintf("No rule for payee %q", payee))
				}
			} else {
				ui.Info("Run with -verbose to see example unmatched payees")
			}
		}
	}
}
