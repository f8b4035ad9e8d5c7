package entities

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCents(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    Cents
		wantErr bool
	}{
		{input: "5", want: 500},
		{input: "5.5", want: 550},
		{input: "5.50", want: 550},
		{input: "0.01", want: 1},
		{input: ".25", want: 25},
		{input: " 12.34 ", want: 1234},
		{input: "0.00", want: 0},
		{input: "1.234", wantErr: true},
		{input: "5.", wantErr: true},
		{input: "-1.00", wantErr: true},
		{input: "1e2", wantErr: true},
		{input: "abc", wantErr: true},
		{input: "", wantErr: true},
		{input: "1234567890123.00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			got, err := ParseCents(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCents_Multiply(t *testing.T) {
	t.Parallel()

	amount, err := Cents(500).Multiply(2)
	require.NoError(t, err)
	assert.Equal(t, Cents(1000), amount)
	assert.Equal(t, "10.00", amount.Decimal())

	// 0.10 * 3 must be exactly 0.30
	amount, err = Cents(10).Multiply(3)
	require.NoError(t, err)
	assert.Equal(t, "0.30", amount.Decimal())

	_, err = Cents(1 << 62).Multiply(4)
	assert.Error(t, err)
}

func TestCents_Format(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "0.01", Cents(1).Decimal())
	assert.Equal(t, "€12.05", Cents(1205).Euro())
	assert.Equal(t, "-1.50", Cents(-150).Decimal())
}

func TestCents_JSON(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(struct {
		Amount Cents `json:"amount"`
	}{Amount: 1000})
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount": 10.00}`, string(data))

	var decoded struct {
		Amount Cents `json:"amount"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"amount": 2.5}`), &decoded))
	assert.Equal(t, Cents(250), decoded.Amount)
}
