package common

import (
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

var (
	// BigZero big int 0
	BigZero = big.NewInt(0)

	errEmptyNumber = errors.New("empty number string")
)

// GetBigIntFromStr new big int from string (decimal or 0x prefixed hex)
func GetBigIntFromStr(str string) (*big.Int, error) {
	str = strings.TrimSpace(str)
	if str == "" {
		return nil, errEmptyNumber
	}
	bi, ok := new(big.Int).SetString(str, 0)
	if !ok {
		return nil, fmt.Errorf("invalid number '%v'", str)
	}
	return bi, nil
}

// GetUint64FromStr get uint64 from string (decimal or 0x prefixed hex)
func GetUint64FromStr(str string) (uint64, error) {
	str = strings.TrimSpace(str)
	if str == "" {
		return 0, errEmptyNumber
	}
	return strconv.ParseUint(str, 0, 64)
}

// GetIntFromStr get int from decimal string
func GetIntFromStr(str string) (int, error) {
	res, err := strconv.ParseInt(strings.TrimSpace(str), 10, 64)
	if err != nil {
		return 0, err
	}
	return int(res), nil
}

// BigPow returns a ** b as a big integer.
func BigPow(a, b int64) *big.Int {
	r := big.NewInt(a)
	return r.Exp(r, big.NewInt(b), nil)
}

// CloneBigInt returns a copy, nil stays nil
func CloneBigInt(v *big.Int) *big.Int {
	if v == nil {
		return nil
	}
	return new(big.Int).Set(v)
}

// MinBigInt returns the smaller one
func MinBigInt(a, b *big.Int) *big.Int {
	if a.Cmp(b) <= 0 {
		return a
	}
	return b
}

// MaxBigInt returns the bigger one
func MaxBigInt(a, b *big.Int) *big.Int {
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}

// CeilDiv returns ceil(a / b) for non negative a and positive b
func CeilDiv(a, b *big.Int) *big.Int {
	q, m := new(big.Int).QuoRem(a, b, new(big.Int))
	if m.Sign() > 0 {
		q.Add(q, big.NewInt(1))
	}
	return q
}

// BigOrZero returns v, or zero if v is nil
func BigOrZero(v *big.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return v
}
