// Package rules provides the pattern-based account categorization engine.
//
// The rule source is line-oriented text, one rule per line in the form
// "account-path;regular-expression". Lines that are blank or start with '#'
// are skipped. Rule order is significant: the first rule (top to bottom)
// whose pattern matches anywhere in the queried text wins.
package rules

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// ruleLine splits an input line into account and pattern. The first group
// is greedy, so the account runs up to the last semicolon on the line.
var ruleLine = regexp.MustCompile(`^(.+);(.+)$`)

// Rule is one immutable (pattern, destination account) pair.
type Rule struct {
	Account string
	Pattern *regexp.Regexp
}

// Engine evaluates rules against free-text descriptions in declared order.
type Engine struct {
	rules []Rule
}

// Load reads rules from a text stream.
//
// Malformed pattern syntax is a load-time fatal error: a rule that
// silently stopped matching would miscategorize every transaction it used
// to catch. Lines that don't have the two-field shape are logged and
// skipped, matching the long-standing behavior of the rules file format.
func Load(r io.Reader) (*Engine, error) {
	var loaded []Rule

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || trimmed[0] == '#' {
			continue
		}

		m := ruleLine.FindStringSubmatch(trimmed)
		if m == nil {
			fmt.Fprintf(os.Stderr, "Warning: ignoring rule line %d (incorrect format): %q\n", lineNo, line)
			continue
		}

		pattern, err := regexp.Compile(m[2])
		if err != nil {
			return nil, fmt.Errorf("rule line %d: invalid pattern %q: %w", lineNo, m[2], err)
		}

		loaded = append(loaded, Rule{Account: m[1], Pattern: pattern})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rules: %w", err)
	}

	return &Engine{rules: loaded}, nil
}

// LoadFromFile loads rules from a filesystem path.
func LoadFromFile(path string) (*Engine, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	defer f.Close()

	engine, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules from %q: %w", path, err)
	}
	return engine, nil
}

// Empty returns an engine with no rules; every lookup misses.
func Empty() *Engine {
	return &Engine{}
}

// Match returns the destination account of the first rule whose pattern
// matches anywhere within text (search, not full-string match), or
// ok=false when no rule matches.
func (e *Engine) Match(text string) (account string, ok bool) {
	for _, rule := range e.rules {
		if rule.Pattern.MatchString(text) {
			return rule.Account, true
		}
	}
	return "", false
}

// Len returns the number of loaded rules.
func (e *Engine) Len() int {
	return len(e.rules)
}

// Rules returns a copy of the rules in declared order, for inspection.
func (e *Engine) Rules() []Rule {
	out := make([]Rule, len(e.rules))
	copy(out, e.rules)
	return out
}
