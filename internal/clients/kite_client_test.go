package clients

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	kiteconnect "github.com/zerodha/gokiteconnect/v4"
)

func TestHoldingFromKite(t *testing.T) {
	h := kiteconnect.Holding{
		Tradingsymbol:       "RELIANCE",
		Exchange:            "NSE",
		Quantity:            10,
		AveragePrice:        2450,
		LastPrice:           2500,
		DayChange:           25,
		DayChangePercentage: 1.01,
	}

	row, err := holdingFromKite(h)
	require.NoError(t, err)

	assert.Equal(t, "RELIANCE", row.Symbol)
	assert.Equal(t, "NSE", row.Exchange)
	assert.True(t, row.Quantity.Equal(decimal.NewFromInt(10)))
	assert.True(t, row.AvgPrice.Equal(decimal.NewFromInt(2450)))
	assert.True(t, row.LastPrice.Equal(decimal.NewFromInt(2500)))
	// per-share change scaled to the whole holding
	assert.True(t, row.DayChange.Equal(decimal.NewFromInt(250)), "day change: %s", row.DayChange)
}

func TestHoldingFromKite_RejectsNaN(t *testing.T) {
	h := kiteconnect.Holding{
		Tradingsymbol: "BROKEN",
		LastPrice:     math.NaN(),
	}

	_, err := holdingFromKite(h)
	assert.ErrorIs(t, err, ErrMalformedData)
}

func TestPositionsFromKite(t *testing.T) {
	rows, err := positionsFromKite([]kiteconnect.Position{
		{
			Tradingsymbol: "NIFTY24SEPFUT",
			Exchange:      "NFO",
			Product:       "NRML",
			Quantity:      50,
			AveragePrice:  22100,
			LastPrice:     22150,
			M2M:           2500,
		},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	assert.Equal(t, "NRML", rows[0].Product)
	assert.True(t, rows[0].M2M.Equal(decimal.NewFromInt(2500)))
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"network fault", kiteconnect.NewError(kiteconnect.NetworkError, "gateway timeout", nil), true},
		{"expired token", kiteconnect.NewError(kiteconnect.TokenError, "token expired", nil), false},
		{"bad input", kiteconnect.NewError(kiteconnect.InputError, "bad params", nil), false},
		{"malformed data", errors.Wrap(ErrMalformedData, "holding BROKEN"), false},
		{"plain transport error", errors.New("connection refused"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsTransient(tt.err))
		})
	}
}
