package si514

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSolveRoundTrip(t *testing.T) {
	freqs := []uint32{
		MinFreq,
		150000,
		1000000,
		4096000,
		10000000,
		12288000,
		25000000,
		49152000,
		100000000,
		155520000,
		212500000,
		MaxFreq,
	}
	for _, freq := range freqs {
		p, err := Solve(freq, float64(FXO))
		require.NoError(t, err, "freq %d", freq)
		require.True(t, p.LSDiv <= 5, "freq %d: lsdiv %d", freq, p.LSDiv)
		require.True(t, p.HSDiv >= hsDivMin && p.HSDiv <= hsDivMax,
			"freq %d: hsdiv %d", freq, p.HSDiv)
		require.Zero(t, p.HSDiv%2, "freq %d: hsdiv %d not even", freq, p.HSDiv)
		fvco := uint64(freq) * uint64(p.HSDiv) << p.LSDiv
		require.True(t, fvco >= fvcoMin && fvco <= fvcoMax,
			"freq %d: fvco %d", freq, fvco)
		require.True(t, p.MInt < 1<<9, "freq %d: mint %d", freq, p.MInt)
		require.True(t, p.MFrac < 1<<29, "freq %d: mfrac %d", freq, p.MFrac)
		require.Equal(t, p, p.Registers().Params(), "freq %d", freq)
		require.InDelta(t, float64(freq), p.Frequency(float64(FXO)), 0.5,
			"freq %d", freq)
	}
}

func TestSolveRange(t *testing.T) {
	for _, freq := range []uint32{0, MinFreq - 1, MaxFreq + 1} {
		_, err := Solve(freq, float64(FXO))
		require.Error(t, err, "freq %d", freq)
		require.IsType(t, &FrequencyRangeError{}, err, "freq %d", freq)
	}
}

func TestSolve10MHz(t *testing.T) {
	p, err := Solve(10000000, float64(FXO))
	require.NoError(t, err)
	require.Equal(t, uint8(0), p.LSDiv)
	require.Equal(t, uint16(208), p.HSDiv)
	require.Equal(t, uint16(65), p.MInt)
	require.Equal(t, uint8(2), p.LP1)
	require.Equal(t, uint8(2), p.LP2)
	require.InDelta(t, 65.0406504, p.M(), 1e-6)
}

func TestRegistersPacking(t *testing.T) {
	p := Params{
		LSDiv: 3,
		HSDiv: 0x1fe,
		MInt:  429,
		MFrac: 0x1234567,
		LP1:   2,
		LP2:   3,
	}
	r := p.Registers()
	require.Equal(t, Registers{
		LP:       0x23,
		MFrac1:   0x67,
		MFrac2:   0x45,
		MFrac3:   0x23,
		MIntFrac: 0xa1,
		MInt:     0x35,
		HSDiv:    0xfe,
		LSHSDiv:  0x31,
	}, r)
	require.Equal(t, p, r.Params())
}
