package validate

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInSet(t *testing.T) {
	allowed := []string{"VDC", "VAC", "OHMS", "FREQ"}

	tests := []struct {
		name    string
		value   string
		want    string
		wantErr bool
	}{
		{name: "exact match", value: "VDC", want: "VDC"},
		{name: "lowercase is normalized", value: "vdc", want: "VDC"},
		{name: "mixed case is normalized", value: "Ohms", want: "OHMS"},
		{name: "unknown symbol", value: "TEMP", wantErr: true},
		{name: "empty value", value: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := InSet("function", tt.value, allowed)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrValidation)
				assert.Contains(t, err.Error(), "function")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestInRange(t *testing.T) {
	tests := []struct {
		name    string
		v       float64
		wantErr bool
		detail  string
	}{
		{name: "inside", v: 1000},
		{name: "at minimum", v: 1e-6},
		{name: "at maximum", v: 40e6},
		{name: "below minimum", v: 0, wantErr: true, detail: "1e-06"},
		{name: "just below minimum", v: 9e-7, wantErr: true, detail: "below minimum"},
		{name: "above maximum", v: 50e6, wantErr: true, detail: "4e+07"},
		{name: "just above maximum", v: 40e6 + 1, wantErr: true, detail: "above maximum"},
		{name: "NaN rejected", v: math.NaN(), wantErr: true, detail: "finite"},
		{name: "positive infinity rejected", v: math.Inf(1), wantErr: true, detail: "finite"},
		{name: "negative infinity rejected", v: math.Inf(-1), wantErr: true, detail: "finite"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := InRange("frequency", tt.v, 1e-6, 40e6)
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrValidation)
			assert.Contains(t, err.Error(), tt.detail)
		})
	}
}

func TestIntInRangeNamesViolatedBound(t *testing.T) {
	err := IntInRange("range", 9, 1, 7)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "9")
	assert.Contains(t, err.Error(), "7")
}

func TestIntInRange(t *testing.T) {
	assert.NoError(t, IntInRange("range", 1, 1, 7))
	assert.NoError(t, IntInRange("range", 7, 1, 7))
	assert.Error(t, IntInRange("range", 0, 1, 7))
	assert.Error(t, IntInRange("range", 8, 1, 7))
}

func TestOneOfInts(t *testing.T) {
	allowed := []int{50, 75, 600}

	assert.NoError(t, OneOfInts("dB reference", 600, allowed))

	err := OneOfInts("dB reference", 55, allowed)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Contains(t, err.Error(), "50, 75, 600")
}

func TestOrderedPair(t *testing.T) {
	assert.NoError(t, OrderedPair("compare low", 1.0, "compare high", 2.0))

	err := OrderedPair("compare low", 2.0, "compare high", 1.0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)

	err = OrderedPair("compare low", 1.0, "compare high", 1.0)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestErrorMessage(t *testing.T) {
	err := &Error{Setting: "rate", Value: "X", Detail: "must be one of S, M, F"}
	assert.Equal(t, `invalid rate "X": must be one of S, M, F`, err.Error())
}
