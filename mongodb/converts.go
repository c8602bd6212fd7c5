package mongodb

import (
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

const microUsdDecimals = 6

// DayKey utc day of time
func DayKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// GetSponsorshipUsageKey global usage key if user is zero, otherwise user usage key
func GetSponsorshipUsageKey(day string, user common.Address) string {
	if user == (common.Address{}) {
		return day
	}
	return strings.ToLower(fmt.Sprintf("%v:%v", day, user.Hex()))
}

// ToMicroUsd usd to micro usd, truncated
func ToMicroUsd(usd decimal.Decimal) int64 {
	return usd.Shift(microUsdDecimals).Truncate(0).IntPart()
}

// FromMicroUsd micro usd to usd
func FromMicroUsd(microUsd int64) decimal.Decimal {
	return decimal.New(microUsd, -microUsdDecimals)
}
