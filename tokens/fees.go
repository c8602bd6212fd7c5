package tokens

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// ZeroFeeBreakdown zero fees in token
func ZeroFeeBreakdown(token Token) FeeBreakdown {
	zero := FeeAmount{Total: big.NewInt(0), Pct: decimal.Zero}
	return FeeBreakdown{
		Token:          token,
		LP:             zero,
		RelayerCapital: zero,
		RelayerGas:     zero,
		Total:          zero,
	}
}

// ExtractFeeBreakdown normalize suggested fees of input token
func ExtractFeeBreakdown(fees *SuggestedFees, token Token) FeeBreakdown {
	if fees == nil {
		return ZeroFeeBreakdown(token)
	}
	return FeeBreakdown{
		Token:          token,
		LP:             toFeeAmount(fees.LpFee),
		RelayerCapital: toFeeAmount(fees.RelayerCapitalFee),
		RelayerGas:     toFeeAmount(fees.RelayerGasFee),
		Total:          toFeeAmount(fees.TotalRelayFee),
	}
}

// NewFeeBreakdown fee breakdown with only a total fee
func NewFeeBreakdown(token Token, total, inputAmount *big.Int) FeeBreakdown {
	breakdown := ZeroFeeBreakdown(token)
	breakdown.Total = NewFeeAmount(total, inputAmount)
	return breakdown
}

// NewFeeAmount fee amount of input amount
func NewFeeAmount(total, inputAmount *big.Int) FeeAmount {
	if total == nil {
		total = big.NewInt(0)
	}
	pct := decimal.Zero
	if inputAmount != nil && inputAmount.Sign() > 0 {
		pct = decimal.NewFromBigInt(total, 0).Div(decimal.NewFromBigInt(inputAmount, 0))
	}
	return FeeAmount{Total: new(big.Int).Set(total), Pct: pct}
}

func toFeeAmount(fee RawFee) FeeAmount {
	total := fee.Total
	if total == nil {
		total = big.NewInt(0)
	}
	return FeeAmount{
		Total: new(big.Int).Set(total),
		Pct:   PctToDecimal(fee.Pct),
	}
}
