package csv

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rumor-ml/commons.systems/qifimport/internal/record"
)

func parse(t *testing.T, input string) []record.Record {
	t.Helper()
	items, err := NewParser().Parse(context.Background(), strings.NewReader(input), nil)
	require.NoError(t, err)
	return items
}

func TestParse_TypeColumnSign(t *testing.T) {
	input := "Transaction Date,Transaction Remarks,Withdrawal Amount (INR ),debitCreditCode\n" +
		"2024-03-01,CARD PAYMENT,100.00,Debit\n" +
		"2024-03-02,REFUND,100.00,Credit\n"

	items := parse(t, input)
	require.Len(t, items, 2)

	assert.Equal(t, "-100", items[0].Amount.String(), "Debit rows are negative")
	assert.Equal(t, "100", items[1].Amount.String(), "non-Debit rows are positive")
	assert.Equal(t, "CARD PAYMENT", items[0].Payee)
}

func TestParse_WithdrawalDepositColumns(t *testing.T) {
	input := "Date,Description,Withdrawals,Deposits\n" +
		"2024-03-01,GROCERIES,50.00,--\n" +
		"2024-03-02,SALARY,--,50.00\n" +
		"2024-03-03,ODDITY,30.00,20.00\n"

	items := parse(t, input)
	require.Len(t, items, 3)

	assert.Equal(t, "-50", items[0].Amount.String())
	assert.Equal(t, "50", items[1].Amount.String())
	// When both columns carry values, the deposit is evaluated second and
	// overwrites the withdrawal.
	assert.Equal(t, "20", items[2].Amount.String())
}

func TestParse_PendingRowExcluded(t *testing.T) {
	input := "Date,Description,Withdrawals,Deposits\n" +
		"Pending,NOT YET SETTLED,10.00,--\n" +
		"2024-03-01,SETTLED,10.00,--\n"

	items := parse(t, input)
	require.Len(t, items, 1)
	assert.Equal(t, "SETTLED", items[0].Payee)
}

func TestParse_ThousandsSeparatorsExact(t *testing.T) {
	input := "Date,Description,Withdrawals,Deposits\n" +
		"2024-03-01,TRANSFER,\"1,234.56\",--\n"

	items := parse(t, input)
	require.Len(t, items, 1)
	assert.Equal(t, "-1234.56", items[0].Amount.String(), "amount must be decimal-exact")
}

func TestParse_PlaceholderZeroIgnored(t *testing.T) {
	input := "Date,Description,Withdrawals,Deposits\n" +
		"2024-03-01,NOTHING,0,0\n"

	items := parse(t, input)
	require.Len(t, items, 1)
	assert.True(t, items[0].Amount.IsZero(), "placeholder cells leave the amount unset")
}

func TestParse_DateLayouts(t *testing.T) {
	tests := []struct {
		value string
		want  time.Time
	}{
		{"2024-03-15", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"15/03/2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
		{"Mar 15, 2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, err := parseDate(tt.value)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParse_MalformedDateFatal(t *testing.T) {
	input := "Date,Description,Withdrawals,Deposits\n" +
		"garbage,X,10.00,--\n"

	_, err := NewParser().Parse(context.Background(), strings.NewReader(input), nil)
	assert.Error(t, err)
}

func TestParse_MalformedAmountFatal(t *testing.T) {
	input := "Date,Description,Withdrawals,Deposits\n" +
		"2024-03-01,X,abc,--\n"

	_, err := NewParser().Parse(context.Background(), strings.NewReader(input), nil)
	assert.Error(t, err)
}

func TestParse_MissingAliasLeavesFieldEmpty(t *testing.T) {
	// No description alias at all: the field stays empty, no error.
	input := "Date,Withdrawals,Deposits\n" +
		"2024-03-01,10.00,--\n"

	items := parse(t, input)
	require.Len(t, items, 1)
	assert.Empty(t, items[0].Payee)
}

func TestCanParse(t *testing.T) {
	p := NewParser()

	header := []byte("Date,Description,Withdrawals,Deposits\n")
	assert.True(t, p.CanParse("export.csv", header))
	assert.False(t, p.CanParse("export.qif", header))
	assert.True(t, p.CanParse("export.csv", []byte("AccountNumber,Other,Stuff\n")),
		"extension decides; unknown columns fail later in Parse")
}

func TestParseUnknownColumnsFailsOnDate(t *testing.T) {
	p := NewParser()

	input := "AccountNumber,Other,Stuff\n123,x,y\n"
	_, err := p.Parse(context.Background(), strings.NewReader(input), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing date")
}
