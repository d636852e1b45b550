// Package si514 programs the Si514 programmable clock generator.
//
// The chip synthesizes its output from a fixed crystal oscillator
// through a fractional feedback divider M and two output dividers
// (HS_DIV and the power-of-two LS_DIV):
//
//	fout = fxo * M / (HS_DIV * 2^LS_DIV)
//
// Solve picks divider values for a target frequency per the datasheet
// procedure; Device sequences the register writes over an I2C bus.
package si514
