// Copyright (c) 2013, 2014 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chainutil

import (
	"errors"
	"math"
	"strconv"
)

// AmountUnit describes a method of converting an Amount to something
// other than the base unit of GAS.  The value of the AmountUnit is the
// exponent component of the decadic multiple to convert from an amount in
// GAS to an amount counted in units.
type AmountUnit int

// These constants define various units used when describing a GAS
// monetary amount.
const (
	AmountGAS     AmountUnit = 0
	AmountMilli   AmountUnit = -3
	AmountDatoshi AmountUnit = -8
)

// String returns the unit as a string.  For recognized units, the SI
// prefix is used, or "Datoshi" for the base unit.  For all unrecognized
// units, "1eN GAS" is returned, where N is the AmountUnit.
func (u AmountUnit) String() string {
	switch u {
	case AmountGAS:
		return "GAS"
	case AmountMilli:
		return "mGAS"
	case AmountDatoshi:
		return "Datoshi"
	default:
		return "1e" + strconv.FormatInt(int64(u), 10) + " GAS"
	}
}

const (
	// DatoshiPerGAS is the number of datoshi in one GAS.
	DatoshiPerGAS = 1e8

	// MaxDatoshi is the maximum transaction amount allowed in datoshi.
	MaxDatoshi = 52_000_000 * DatoshiPerGAS
)

// Amount represents the base GAS monetary unit (colloquially referred
// to as a `Datoshi').  A single Amount is equal to 1e-8 of a GAS.
type Amount int64

// round converts a floating point number, which may or may not be representable
// as an integer, to the Amount integer type by rounding to the nearest integer.
// This is performed by adding or subtracting 0.5 depending on the sign, and
// relying on integer truncation to round the value to the nearest Amount.
func round(f float64) Amount {
	if f < 0 {
		return Amount(f - 0.5)
	}
	return Amount(f + 0.5)
}

// NewAmount creates an Amount from a floating point value representing
// some value in GAS.  NewAmount errors if f is NaN or +-Infinity, but
// does not check that the amount is within the total amount of GAS
// producible as f may not refer to an amount at a single moment in time.
func NewAmount(f float64) (Amount, error) {
	// The amount is only considered invalid if it cannot be represented
	// as an integer type.  This may happen if f is NaN or +-Infinity.
	switch {
	case math.IsNaN(f):
		fallthrough
	case math.IsInf(f, 1):
		fallthrough
	case math.IsInf(f, -1):
		return 0, errors.New("invalid GAS amount")
	}

	return round(f * DatoshiPerGAS), nil
}

// ToUnit converts a monetary amount counted in GAS base units to a
// floating point value representing an amount of GAS.
func (a Amount) ToUnit(u AmountUnit) float64 {
	return float64(a) / math.Pow10(int(u+8))
}

// ToGAS is the equivalent of calling ToUnit with AmountGAS.
func (a Amount) ToGAS() float64 {
	return a.ToUnit(AmountGAS)
}

// Format formats a monetary amount counted in GAS base units as a
// string for a given unit.  The conversion will succeed for any unit,
// however, known units will be formatted with an appended label describing
// the units with SI notation, or "Datoshi" for the base unit.
func (a Amount) Format(u AmountUnit) string {
	units := " " + u.String()
	formatted := strconv.FormatFloat(a.ToUnit(u), 'f', -int(u+8), 64)
	return formatted + units
}

// String is the equivalent of calling Format with AmountGAS.
func (a Amount) String() string {
	return a.Format(AmountGAS)
}
