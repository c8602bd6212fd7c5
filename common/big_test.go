package common

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetBigIntFromStr(t *testing.T) {
	cases := []struct {
		str     string
		want    string
		wantErr bool
	}{
		{"1000", "1000", false},
		{"0x10", "16", false},
		{" 42 ", "42", false},
		{"", "", true},
		{"12ab", "", true},
	}
	for _, c := range cases {
		got, err := GetBigIntFromStr(c.str)
		if c.wantErr {
			if err == nil {
				t.Fatalf("%q expected error, got %v", c.str, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q unexpected error %v", c.str, err)
		}
		if got.String() != c.want {
			t.Fatalf("%q expected %v, but %v got", c.str, c.want, got)
		}
	}
}

func TestCeilDiv(t *testing.T) {
	cases := []struct {
		a, b, want int64
	}{
		{10, 5, 2},
		{11, 5, 3},
		{0, 7, 0},
		{1, 100, 1},
	}
	for _, c := range cases {
		got := CeilDiv(big.NewInt(c.a), big.NewInt(c.b))
		if got.Int64() != c.want {
			t.Fatalf("ceil(%v/%v) expected %v, but %v got", c.a, c.b, c.want, got)
		}
	}
}

func TestBigIntJSON(t *testing.T) {
	var v struct {
		A BigIntJSON `json:"a"`
		B BigIntJSON `json:"b"`
		C BigIntJSON `json:"c"`
		D Uint64JSON `json:"d"`
	}
	err := json.Unmarshal([]byte(`{"a":"1000000","b":42,"c":null,"d":"17"}`), &v)
	require.NoError(t, err)
	require.Equal(t, "1000000", v.A.Value().String())
	require.Equal(t, "42", v.B.Value().String())
	require.Nil(t, v.C.Int)
	require.Equal(t, "0", v.C.Value().String())
	require.Equal(t, Uint64JSON(17), v.D)

	require.Error(t, json.Unmarshal([]byte(`{"a":"abc"}`), &v))
}
