package rules

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatch_FirstMatchWins(t *testing.T) {
	engine, err := Load(strings.NewReader(
		"Income:Job;.*SALARY.*\n" +
			"Expenses:Misc;.*\n"))
	require.NoError(t, err)
	require.Equal(t, 2, engine.Len())

	account, ok := engine.Match("MONTHLY SALARY")
	require.True(t, ok)
	assert.Equal(t, "Income:Job", account, "first declared rule must win over the catch-all")

	account, ok = engine.Match("anything else")
	require.True(t, ok)
	assert.Equal(t, "Expenses:Misc", account)
}

func TestMatch_SearchSemantics(t *testing.T) {
	engine, err := Load(strings.NewReader("Expenses:Groceries;TESCO\n"))
	require.NoError(t, err)

	// Substring search, not full-text equality.
	_, ok := engine.Match("CARD PAYMENT TO TESCO STORES 1234")
	assert.True(t, ok)

	_, ok = engine.Match("CARD PAYMENT TO SAINSBURYS")
	assert.False(t, ok)
}

func TestMatch_NoRules(t *testing.T) {
	_, ok := Empty().Match("anything")
	assert.False(t, ok)
}

func TestLoad_CommentsAndBlanksSkipped(t *testing.T) {
	engine, err := Load(strings.NewReader(
		"# payroll\n" +
			"\n" +
			"   \n" +
			"Income:Job;SALARY\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, engine.Len())
}

func TestLoad_MalformedLineSkipped(t *testing.T) {
	// No semicolon: logged and ignored, loading continues.
	engine, err := Load(strings.NewReader(
		"this line has no separator\n" +
			"Income:Job;SALARY\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, engine.Len())
}

func TestLoad_BadPatternFatal(t *testing.T) {
	_, err := Load(strings.NewReader("Expenses:Misc;[unclosed\n"))
	require.Error(t, err, "invalid pattern syntax must fail the load")
	assert.Contains(t, err.Error(), "invalid pattern")
}

func TestLoad_AccountRunsToLastSemicolon(t *testing.T) {
	// The account group is greedy: everything up to the last semicolon
	// belongs to the account path.
	engine, err := Load(strings.NewReader("Expenses:A;B;PATTERN\n"))
	require.NoError(t, err)

	rules := engine.Rules()
	require.Len(t, rules, 1)
	assert.Equal(t, "Expenses:A;B", rules[0].Account)
	assert.Equal(t, "PATTERN", rules[0].Pattern.String())
}

func TestLoad_OrderPreserved(t *testing.T) {
	engine, err := Load(strings.NewReader(
		"A;a\nB;b\nC;c\n"))
	require.NoError(t, err)

	got := make([]string, 0, 3)
	for _, r := range engine.Rules() {
		got = append(got, r.Account)
	}
	assert.Equal(t, []string{"A", "B", "C"}, got)
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile("/nonexistent/rules.txt")
	assert.Error(t, err)
}
