package tokens

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/anyswap/CrossSwap-Router/common"
)

// PctScale scale of 1e18 based fraction
var PctScale = common.BigPow(10, 18)

// ToBits calc
func ToBits(valueStr string, decimals uint8) *big.Int {
	parts := strings.Split(valueStr, ".")
	if len(parts) > 2 {
		return nil
	}

	ipart, ok := new(big.Int).SetString(parts[0], 10)
	if !ok {
		return nil
	}

	oneToken := common.BigPow(10, int64(decimals))
	result := new(big.Int).Mul(ipart, oneToken)

	var dpart *big.Int
	if len(parts) > 1 {
		dpart, ok = new(big.Int).SetString(parts[1], 10)
		if !ok {
			return nil
		}
		dpart.Mul(dpart, oneToken)
		dpart.Div(dpart, common.BigPow(10, int64(len(parts[1]))))
		result.Add(result, dpart)
	}

	return result
}

// FromBits amount to decimal units
func FromBits(value *big.Int, decimals uint8) decimal.Decimal {
	if value == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(value, -int32(decimals))
}

// ConvertTokenValue convert token value
func ConvertTokenValue(fromValue *big.Int, fromDecimals, toDecimals uint8) *big.Int {
	if fromDecimals == toDecimals || fromValue == nil {
		return fromValue
	}
	if fromDecimals > toDecimals {
		return new(big.Int).Div(fromValue, common.BigPow(10, int64(fromDecimals-toDecimals)))
	}
	return new(big.Int).Mul(fromValue, common.BigPow(10, int64(toDecimals-fromDecimals)))
}

// ConvertTokenValueCeil convert token value rounding up
func ConvertTokenValueCeil(fromValue *big.Int, fromDecimals, toDecimals uint8) *big.Int {
	if fromDecimals <= toDecimals || fromValue == nil {
		return ConvertTokenValue(fromValue, fromDecimals, toDecimals)
	}
	return common.CeilDiv(fromValue, common.BigPow(10, int64(fromDecimals-toDecimals)))
}

// AmountToUsd usd notional of stable amount
func AmountToUsd(amount *big.Int, decimals uint8) decimal.Decimal {
	return FromBits(amount, decimals)
}

// AddMarkup amount * (1 + percent/100), round up
func AddMarkup(amount *big.Int, percent decimal.Decimal) *big.Int {
	if amount == nil || percent.IsZero() {
		return amount
	}
	factor := decimal.NewFromInt(1).Add(percent.Div(decimal.NewFromInt(100)))
	return decimal.NewFromBigInt(amount, 0).Mul(factor).Ceil().BigInt()
}

// ApplyFraction floor(amount * fraction)
func ApplyFraction(amount *big.Int, fraction decimal.Decimal) *big.Int {
	if amount == nil || fraction.IsZero() {
		return big.NewInt(0)
	}
	return decimal.NewFromBigInt(amount, 0).Mul(fraction).Floor().BigInt()
}

// PctToDecimal 1e18 scaled pct to decimal fraction
func PctToDecimal(pct *big.Int) decimal.Decimal {
	if pct == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(pct, -18)
}

// SlippageToFraction percent slippage to fraction, auto uses fallback
func SlippageToFraction(slippage Slippage, autoFallback decimal.Decimal) decimal.Decimal {
	if slippage.Auto {
		return autoFallback
	}
	return slippage.Percent.Div(decimal.NewFromInt(100))
}
