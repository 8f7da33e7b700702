package numeric

import (
	"math/big"
)

var (
	two64      = new(big.Int).Lsh(big.NewInt(1), 64)
	two128     = new(big.Int).Lsh(big.NewInt(1), 128)
	maxInt128  = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
	minInt128  = new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127))
	maxUint128 = new(big.Int).Sub(two128, big.NewInt(1))
	mask64     = new(big.Int).Sub(two64, big.NewInt(1))
)

// Int128 is a signed 128-bit integer in two's complement, stored as a signed
// high half and an unsigned low half.
type Int128 struct {
	hi int64
	lo uint64
}

// Int128FromParts returns the Int128 whose value is hi*2^64 + lo.
func Int128FromParts(hi int64, lo uint64) Int128 {
	return Int128{hi: hi, lo: lo}
}

// Int128FromBig converts b to an Int128.
// Returns false if b is outside [-2^127, 2^127-1].
func Int128FromBig(b *big.Int) (Int128, bool) {
	if b.Cmp(minInt128) < 0 || b.Cmp(maxInt128) > 0 {
		return Int128{}, false
	}
	m := new(big.Int).Set(b)
	if m.Sign() < 0 {
		m.Add(m, two128)
	}
	lo := new(big.Int).And(m, mask64).Uint64()
	hi := new(big.Int).Rsh(m, 64).Uint64()
	return Int128{hi: int64(hi), lo: lo}, true
}

// Hi returns the high 64 bits.
func (v Int128) Hi() int64 { return v.hi }

// Lo returns the low 64 bits.
func (v Int128) Lo() uint64 { return v.lo }

// IsZero reports whether v is zero.
func (v Int128) IsZero() bool { return v.hi == 0 && v.lo == 0 }

// Sign returns -1, 0 or +1.
func (v Int128) Sign() int {
	switch {
	case v.hi < 0:
		return -1
	case v.IsZero():
		return 0
	default:
		return 1
	}
}

// Big returns v as a new big.Int.
func (v Int128) Big() *big.Int {
	b := new(big.Int).SetInt64(v.hi)
	b.Lsh(b, 64)
	return b.Add(b, new(big.Int).SetUint64(v.lo))
}

func (v Int128) String() string {
	return v.Big().String()
}

// Uint128 is an unsigned 128-bit integer.
type Uint128 struct {
	hi uint64
	lo uint64
}

// Uint128FromParts returns the Uint128 whose value is hi*2^64 + lo.
func Uint128FromParts(hi, lo uint64) Uint128 {
	return Uint128{hi: hi, lo: lo}
}

// Uint128FromBig converts b to a Uint128.
// Returns false if b is negative or not below 2^128.
func Uint128FromBig(b *big.Int) (Uint128, bool) {
	if b.Sign() < 0 || b.Cmp(maxUint128) > 0 {
		return Uint128{}, false
	}
	lo := new(big.Int).And(b, mask64).Uint64()
	hi := new(big.Int).Rsh(b, 64).Uint64()
	return Uint128{hi: hi, lo: lo}, true
}

// Hi returns the high 64 bits.
func (v Uint128) Hi() uint64 { return v.hi }

// Lo returns the low 64 bits.
func (v Uint128) Lo() uint64 { return v.lo }

// IsZero reports whether v is zero.
func (v Uint128) IsZero() bool { return v.hi == 0 && v.lo == 0 }

// Sign returns 0 or +1.
func (v Uint128) Sign() int {
	if v.IsZero() {
		return 0
	}
	return 1
}

// Big returns v as a new big.Int.
func (v Uint128) Big() *big.Int {
	b := new(big.Int).SetUint64(v.hi)
	b.Lsh(b, 64)
	return b.Add(b, new(big.Int).SetUint64(v.lo))
}

func (v Uint128) String() string {
	return v.Big().String()
}
