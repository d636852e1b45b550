package si514

// Datasheet limits.
const (
	// MinFreq and MaxFreq bound the programmable output frequency in Hz.
	MinFreq uint32 = 100000
	MaxFreq uint32 = 250000000

	// FXO is the nominal crystal oscillator frequency in Hz.
	FXO = 31980000

	fvcoMin = 2080000000
	fvcoMax = 2500000000

	hsDivMin = 10
	hsDivMax = 1022
)

// Params holds the divider values programmed into the chip.
type Params struct {
	LSDiv uint8  // output divider exponent, divider is 2^LSDiv, 0..5
	HSDiv uint16 // high speed output divider, even, 10..1022
	MInt  uint16 // integer part of the feedback divider, 9 bits
	MFrac uint32 // fractional part of the feedback divider, 29 bits
	LP1   uint8  // PLL loop parameters, derived from M
	LP2   uint8
}

// M returns the feedback divider as a float.
func (p Params) M() float64 {
	return float64(p.MInt) + float64(p.MFrac)/float64(1<<29)
}

// Frequency decodes the output frequency in Hz produced by the
// parameters with the given crystal frequency.
func (p Params) Frequency(xtal float64) float64 {
	return xtal * p.M() / (float64(p.HSDiv) * float64(uint32(1)<<p.LSDiv))
}

// Solve calculates divider values producing freq from a crystal
// running at xtal Hz. The frequency must be within MinFreq..MaxFreq.
func Solve(freq uint32, xtal float64) (Params, error) {
	if freq < MinFreq || freq > MaxFreq {
		return Params{}, &FrequencyRangeError{Freq: freq}
	}
	ls := solveLSDiv(freq)
	hs := solveHSDiv(freq, ls)
	mInt, mFrac := solveM(ls, hs, freq, xtal)
	lp1, lp2 := solveLP(float64(mInt) + float64(mFrac)/float64(1<<29))
	return Params{
		LSDiv: ls,
		HSDiv: hs,
		MInt:  mInt,
		MFrac: mFrac,
		LP1:   lp1,
		LP2:   lp2,
	}, nil
}

// solveLSDiv finds the smallest LS_DIV exponent keeping the VCO in
// range with the maximum HS_DIV.
func solveLSDiv(freq uint32) uint8 {
	hsdivFreq := uint64(hsDivMax) * uint64(freq)
	var ls uint8
	for ls < 5 && hsdivFreq < fvcoMin {
		hsdivFreq *= 2
		ls++
	}
	return ls
}

// solveHSDiv does a binary search for the smallest even HS_DIV that
// keeps the VCO frequency at or above its minimum.
func solveHSDiv(freq uint32, ls uint8) uint16 {
	lsdivFreq := uint64(freq) << ls
	hsMin := uint64(hsDivMin / 2)
	hsMax := uint64(hsDivMax / 2)
	fvco := uint64(fvcoMin / 2)

	for i := 0; i < 10; i++ {
		hs := (hsMin + hsMax) / 2
		if lsdivFreq*hs >= fvco {
			hsMax = hs
		} else {
			hsMin = hs
		}
	}
	return uint16(2 * hsMax)
}

// solveM splits the required feedback divider into its integer part
// and 29-bit fraction.
func solveM(ls uint8, hs uint16, freq uint32, xtal float64) (uint16, uint32) {
	m := float64(uint64(1)<<ls) * float64(hs) * float64(freq) / xtal
	mInt := uint16(m)
	mFrac := uint32((m - float64(mInt)) * float64(1<<29))
	return mInt, mFrac
}

// solveLP picks the loop parameters from the M thresholds in the
// datasheet.
func solveLP(m float64) (uint8, uint8) {
	switch {
	case m < 65.259980246:
		return 2, 2
	case m < 67.859763463:
		return 2, 3
	case m < 72.937624981:
		return 3, 3
	case m < 75.843265046:
		return 3, 4
	}
	return 4, 4
}
