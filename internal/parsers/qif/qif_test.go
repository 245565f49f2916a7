package qif

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_SingleRecord(t *testing.T) {
	input := "!Type:Bank\n" +
		"D15/3/2024\n" +
		"T-1,234.56\n" +
		"PACME CORP\n" +
		"MMonthly invoice\n" +
		"^\n"

	p := NewParser()
	items, err := p.Parse(context.Background(), strings.NewReader(input), nil)
	require.NoError(t, err)
	require.Len(t, items, 1)

	it := items[0]
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), it.Date)
	assert.Equal(t, "-1234.56", it.Amount.String(), "thousands separator must be stripped, value exact")
	assert.Equal(t, "ACME CORP", it.Payee)
	assert.Equal(t, "Monthly invoice", it.Memo)
}

func TestParse_AccountCarryOver(t *testing.T) {
	input := "!Account\n" +
		"NAssets:Current Account\n" +
		"^\n" +
		"D1/1/2024\n" +
		"T10.00\n" +
		"PFIRST\n" +
		"^\n" +
		"D2/1/2024\n" +
		"T20.00\n" +
		"PSECOND\n" +
		"^\n"

	p := NewParser()
	items, err := p.Parse(context.Background(), strings.NewReader(input), nil)
	require.NoError(t, err)

	// The account-definition pseudo-record is suppressed; both
	// transactions carry the declared account.
	require.Len(t, items, 2)
	assert.Equal(t, "Assets:Current Account", items[0].Account)
	assert.Equal(t, "Assets:Current Account", items[1].Account)
	assert.Equal(t, "FIRST", items[0].Payee)
	assert.Equal(t, "SECOND", items[1].Payee)
}

func TestParse_TrailingUnterminatedRecordDiscarded(t *testing.T) {
	input := "D1/1/2024\n" +
		"T10.00\n" +
		"PKEPT\n" +
		"^\n" +
		"D2/1/2024\n" +
		"T20.00\n" +
		"PDISCARDED\n" // no trailing ^

	p := NewParser()
	items, err := p.Parse(context.Background(), strings.NewReader(input), nil)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "KEPT", items[0].Payee)
}

func TestParse_SplitFields(t *testing.T) {
	input := "D5/6/2024\n" +
		"T-50.00\n" +
		"PSHOP\n" +
		"SExpenses:Groceries\n" +
		"EWeekly shop\n" +
		"$-45.00\n" +
		"^\n"

	p := NewParser()
	items, err := p.Parse(context.Background(), strings.NewReader(input), nil)
	require.NoError(t, err)
	require.Len(t, items, 1)

	it := items[0]
	assert.Equal(t, "Expenses:Groceries", it.SplitCategory)
	assert.Equal(t, "Weekly shop", it.SplitMemo)
	require.True(t, it.SplitAmount.Valid)
	assert.Equal(t, "-45", it.SplitAmount.Decimal.String())
}

func TestParse_BlankLinesIgnored(t *testing.T) {
	input := "\nD1/1/2024\n\nT10.00\nPX\n^\n\n"

	p := NewParser()
	items, err := p.Parse(context.Background(), strings.NewReader(input), nil)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestParse_MalformedDateFatal(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"non-numeric", "Dabc/1/2024"},
		{"too few components", "D1/2024"},
		{"impossible date", "D31/2/2024"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := tt.line + "\nT10.00\nPX\n^\n"
			p := NewParser()
			_, err := p.Parse(context.Background(), strings.NewReader(input), nil)
			assert.Error(t, err)
		})
	}
}

func TestParse_MalformedAmountFatal(t *testing.T) {
	input := "D1/1/2024\nTnot-a-number\nPX\n^\n"
	p := NewParser()
	_, err := p.Parse(context.Background(), strings.NewReader(input), nil)
	assert.Error(t, err)
}

func TestParse_UnknownTagSkipped(t *testing.T) {
	input := "D1/1/2024\n" +
		"T10.00\n" +
		"Zmystery field\n" +
		"PX\n" +
		"^\n"

	p := NewParser()
	items, err := p.Parse(context.Background(), strings.NewReader(input), nil)
	require.NoError(t, err, "unknown tag must not abort the parse")
	require.Len(t, items, 1)
	assert.Equal(t, "X", items[0].Payee)
}

func TestParse_NumTagIgnoredOutsideAccountHeader(t *testing.T) {
	// An N line on a transaction record must not disturb the carried
	// account name.
	input := "!Account\n" +
		"NAssets:Current Account\n" +
		"^\n" +
		"D1/1/2024\n" +
		"N1042\n" +
		"T10.00\n" +
		"PX\n" +
		"^\n" +
		"D2/1/2024\n" +
		"T5.00\n" +
		"PY\n" +
		"^\n"

	p := NewParser()
	items, err := p.Parse(context.Background(), strings.NewReader(input), nil)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Assets:Current Account", items[1].Account)
}

func TestParse_Restartable(t *testing.T) {
	input := "D1/1/2024\nT10.00\nPX\n^\n"
	p := NewParser()

	first, err := p.Parse(context.Background(), strings.NewReader(input), nil)
	require.NoError(t, err)
	second, err := p.Parse(context.Background(), strings.NewReader(input), nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCanParse(t *testing.T) {
	p := NewParser()
	assert.True(t, p.CanParse("statements/march.qif", nil))
	assert.True(t, p.CanParse("statements/MARCH.QIF", nil))
	assert.False(t, p.CanParse("statements/march.csv", nil))
}

func TestStep_SingleTransition(t *testing.T) {
	// One line transition at a time against the explicit state struct.
	st := newState()

	emitted, err := st.step("D9/2/2024", 1, nil)
	require.NoError(t, err)
	assert.Nil(t, emitted)
	assert.Equal(t, time.Date(2024, 2, 9, 0, 0, 0, 0, time.UTC), st.current.Date)

	_, err = st.step("T1,000.01", 2, nil)
	require.NoError(t, err)
	assert.Equal(t, "1000.01", st.current.Amount.String())

	_, err = st.step("PPAYEE", 3, nil)
	require.NoError(t, err)

	emitted, err = st.step("^", 4, nil)
	require.NoError(t, err)
	require.NotNil(t, emitted)
	assert.Equal(t, "PAYEE", emitted.Payee)
	// The machine is reset for the next item.
	assert.True(t, st.current.Date.IsZero())
}
