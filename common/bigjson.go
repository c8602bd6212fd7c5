package common

import (
	"math/big"
	"strconv"
	"strings"
)

// BigIntJSON big int json decoded from number or string
type BigIntJSON struct {
	*big.Int
}

// UnmarshalJSON json unmarshal
func (b *BigIntJSON) UnmarshalJSON(data []byte) error {
	str := strings.Trim(string(data), `"`)
	if str == "" || str == "null" {
		b.Int = nil
		return nil
	}
	bi, err := GetBigIntFromStr(str)
	if err != nil {
		return err
	}
	b.Int = bi
	return nil
}

// MarshalJSON json marshal as decimal string
func (b BigIntJSON) MarshalJSON() ([]byte, error) {
	if b.Int == nil {
		return []byte("null"), nil
	}
	return []byte(strconv.Quote(b.Int.String())), nil
}

// Value big int value, nil as zero
func (b BigIntJSON) Value() *big.Int {
	if b.Int == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(b.Int)
}

// Uint64JSON uint64 json decoded from number or string
type Uint64JSON uint64

// UnmarshalJSON json unmarshal
func (u *Uint64JSON) UnmarshalJSON(data []byte) error {
	str := strings.Trim(string(data), `"`)
	if str == "" || str == "null" {
		*u = 0
		return nil
	}
	v, err := GetUint64FromStr(str)
	if err != nil {
		return err
	}
	*u = Uint64JSON(v)
	return nil
}
