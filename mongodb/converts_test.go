package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestSponsorshipUsageKey(t *testing.T) {
	day := DayKey(time.Date(2024, 3, 9, 23, 30, 0, 0, time.FixedZone("UTC-2", -2*3600)))
	require.Equal(t, "2024-03-10", day)

	require.Equal(t, "2024-03-10", GetSponsorshipUsageKey(day, common.Address{}))
	user := common.HexToAddress("0x00000000000000000000000000000000000000AB")
	require.Equal(t, "2024-03-10:0x00000000000000000000000000000000000000ab", GetSponsorshipUsageKey(day, user))
}

func TestMicroUsd(t *testing.T) {
	require.Equal(t, int64(1234567891), ToMicroUsd(decimal.RequireFromString("1234.5678919")))
	require.Equal(t, "1234.567891", FromMicroUsd(1234567891).String())
	require.Equal(t, int64(0), ToMicroUsd(decimal.Zero))
}

func TestConvertToSponsorshipUsage(t *testing.T) {
	usage := ConvertToSponsorshipUsage(nil, nil)
	require.True(t, usage.GlobalVolumeUsd.IsZero())
	require.True(t, usage.UserVolumeUsd.IsZero())
	require.Zero(t, usage.AccountsCreated)

	usage = ConvertToSponsorshipUsage(
		&MgoSponsorshipUsage{VolumeMicroUsd: 5000000000, AccountsCreated: 3},
		&MgoSponsorshipUsage{VolumeMicroUsd: 250500000},
	)
	require.Equal(t, "5000", usage.GlobalVolumeUsd.String())
	require.Equal(t, "250.5", usage.UserVolumeUsd.String())
	require.Equal(t, uint64(3), usage.AccountsCreated)
}

func TestNotInitialized(t *testing.T) {
	_, err := FindSponsorshipUsage(context.Background(), "2024-03-10")
	require.ErrorIs(t, err, ErrNotInitialized)
}
