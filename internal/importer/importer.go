// Package importer orchestrates a full import run: it takes the scanned
// inputs through parsing, categorization and duplicate detection, and posts
// the surviving records to the ledger book.
package importer

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rumor-ml/commons.systems/qifimport/internal/categorize"
	"github.com/rumor-ml/commons.systems/qifimport/internal/dedup"
	"github.com/rumor-ml/commons.systems/qifimport/internal/ledger"
	"github.com/rumor-ml/commons.systems/qifimport/internal/record"
	"github.com/rumor-ml/commons.systems/qifimport/internal/registry"
	"github.com/rumor-ml/commons.systems/qifimport/internal/report"
	"github.com/rumor-ml/commons.systems/qifimport/internal/rules"
	"github.com/rumor-ml/commons.systems/qifimport/internal/scanner"
	"github.com/rumor-ml/commons.systems/qifimport/internal/ui"
)

// Options configures an import run.
type Options struct {
	// DryRun performs every lookup and check but leaves the book and the
	// imported-file cache untouched.
	DryRun bool
	// Currency is the ISO code transactions are posted in.
	Currency string
	// DefaultAccount is the source account for records that do not name
	// one. When empty it is inferred per file by matching the file path
	// against the rules.
	DefaultAccount string
	// CachePath is where the imported-file cache is persisted.
	CachePath string
	// Verbose enables per-record progress messages.
	Verbose bool
	// Quiet suppresses everything except warnings and errors.
	Quiet bool
}

// Importer holds the collaborators of a run.
type Importer struct {
	book     *ledger.Book
	engine   *rules.Engine
	cat      *categorize.Categorizer
	registry *registry.Registry
	cache    *dedup.FileSet
	opts     Options
	stats    Stats
}

// New wires up an importer. The cache may be freshly loaded or empty; the
// importer adds to it but only Run persists it, and never on a dry run.
func New(book *ledger.Book, engine *rules.Engine, cache *dedup.FileSet, opts Options) *Importer {
	return &Importer{
		book:     book,
		engine:   engine,
		cat:      categorize.New(engine, book),
		registry: registry.New(),
		cache:    cache,
		opts:     opts,
		stats:    newStats(),
	}
}

// Stats returns the accumulated counters for the run so far.
func (imp *Importer) Stats() *Stats {
	return &imp.stats
}

// Run imports every input in order. On success (and only then, and never on
// a dry run) it commits the book and persists the imported-file cache, so a
// failure part-way leaves both exactly as they were.
func (imp *Importer) Run(ctx context.Context, inputs []scanner.Input) (*report.Report, error) {
	rep := &report.Report{
		GeneratedAt: time.Now(),
		DryRun:      imp.opts.DryRun,
		Currency:    imp.opts.Currency,
	}

	for _, input := range inputs {
		result, err := imp.importFile(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to import %s: %w", input.Path, err)
		}
		rep.Files = append(rep.Files, *result)
	}

	if !imp.opts.DryRun {
		if err := imp.book.Save(); err != nil {
			return nil, fmt.Errorf("failed to save book: %w", err)
		}
		if err := imp.cache.Save(imp.opts.CachePath); err != nil {
			return nil, fmt.Errorf("failed to save imported-file cache: %w", err)
		}
	}

	imp.stats.fill(rep)
	return rep, nil
}

// importFile runs a single input file through the full pipeline.
func (imp *Importer) importFile(ctx context.Context, input scanner.Input) (*report.FileResult, error) {
	base := input.Metadata.BaseName()
	result := &report.FileResult{File: base}

	if imp.cache.Contains(base) {
		if !imp.opts.Quiet {
			ui.Info(fmt.Sprintf("Skipping %s (already imported)", base))
		}
		result.Replayed = true
		return result, nil
	}

	defaultAccount, err := imp.defaultAccountFor(input.Path)
	if err != nil {
		return nil, err
	}

	p, err := imp.registry.FindParser(input.Path)
	if err != nil {
		return nil, err
	}
	result.Parser = p.Name()

	f, err := os.Open(input.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	records, err := p.Parse(ctx, f, input.Metadata)
	if err != nil {
		return nil, fmt.Errorf("parsing failed: %w", err)
	}
	result.Records = len(records)

	currency, err := imp.book.EnsureCurrency(imp.opts.Currency)
	if err != nil {
		return nil, err
	}

	for i := range records {
		rec := &records[i]
		rec.ApplyDefaults(defaultAccount)
		if err := rec.Validate(); err != nil {
			return nil, fmt.Errorf("invalid record in %s: %w", base, err)
		}

		posted, err := imp.postRecord(rec, currency, result)
		if err != nil {
			return nil, err
		}
		if posted && imp.opts.Verbose {
			ui.Info(fmt.Sprintf("Adding transaction for account %q (%s %s %s %s)",
				rec.Account, rec.Date.Format("2006-01-02"), rec.Payee,
				rec.EffectiveAmount(), currency.Mnemonic))
		}
	}

	imp.cache.Add(base)
	if !imp.opts.Quiet {
		ui.Success(fmt.Sprintf("%s: %d posted, %d duplicates, %d ignored",
			base, result.Posted, result.Duplicates, result.Ignored))
	}
	return result, nil
}

// postRecord resolves, deduplicates and posts one record. It reports whether
// the record survived to posting.
func (imp *Importer) postRecord(rec *record.Record, currency *ledger.Commodity, result *report.FileResult) (bool, error) {
	dest, err := imp.cat.Resolve(rec)
	if err != nil {
		return false, err
	}
	imp.stats.noteResolution(rec, dest)

	if dest == categorize.Ignore {
		if imp.opts.Verbose {
			ui.Info(fmt.Sprintf("Skipping entry %s (%s)",
				rec.Date.Format("2006-01-02"), rec.EffectiveAmount()))
		}
		result.Ignored++
		return false, nil
	}

	source, err := imp.book.AccountByPath(rec.Account)
	if err != nil {
		return false, fmt.Errorf("source account %q: %w", rec.Account, err)
	}

	var destAcc *ledger.Account
	if categorize.IsImbalance(dest) {
		// Imbalance accounts come into existence on first use.
		code := strings.TrimPrefix(dest, categorize.ImbalancePrefix)
		destAcc, err = imp.book.EnsureAccount(dest, code)
	} else {
		destAcc, err = imp.book.AccountByPath(dest)
	}
	if err != nil {
		return false, fmt.Errorf("destination account %q: %w", dest, err)
	}

	splits, err := imp.book.SplitsFor(source)
	if err != nil {
		return false, err
	}
	if dedup.MatchesExisting(splits, rec.Payee, rec.Date, rec.EffectiveAmount()) {
		if imp.opts.Verbose {
			ui.Info(fmt.Sprintf("Skipping %s %q (already in book)",
				rec.Date.Format("2006-01-02"), rec.Payee))
		}
		result.Duplicates++
		return false, nil
	}

	if !imp.opts.DryRun {
		if err := imp.book.AddTransaction(rec.Date, rec.Payee, currency, source, destAcc, rec.EffectiveAmount()); err != nil {
			return false, err
		}
	}
	result.Posted++
	return true, nil
}

// defaultAccountFor picks the source account for records that do not carry
// one: the -account flag if given, otherwise the first rule matching the
// file path.
func (imp *Importer) defaultAccountFor(path string) (string, error) {
	if imp.opts.DefaultAccount != "" {
		return imp.opts.DefaultAccount, nil
	}
	if account, ok := imp.engine.Match(path); ok {
		if !imp.opts.Quiet {
			ui.Info(fmt.Sprintf("Setting default import account to %s", account))
		}
		return account, nil
	}
	return "", fmt.Errorf("no default account: no rule matches file path %s and no account was given", path)
}
