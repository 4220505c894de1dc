// Package calculator implements the brewing arithmetic used by the CLI and
// the daemon API: alcohol by volume, apparent attenuation and alcohol yield
// from two specific-gravity readings, plus the hydrometer temperature
// correction, strike water, bitterness (IBU), color (SRM) and priming
// sugar calculators.
//
// Every function is pure. Inputs are already-parsed floating point values;
// ParseGravities and CanCalculate cover the string parsing done in front of
// them.
package calculator
