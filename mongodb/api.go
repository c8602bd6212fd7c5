package mongodb

import (
	"context"
	"errors"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/anyswap/CrossSwap-Router/log"
	"github.com/anyswap/CrossSwap-Router/router"
)

var _ router.SponsorshipUsageReader = UsageReader{}

// UsageReader reads sponsorship usage from mongodb
type UsageReader struct{}

// GetSponsorshipUsage impl router.SponsorshipUsageReader
func (UsageReader) GetSponsorshipUsage(ctx context.Context, user common.Address, day time.Time) (*router.SponsorshipUsage, error) {
	return GetSponsorshipUsage(ctx, user, day)
}

// FindSponsorshipUsage find usage record, nil if absent
func FindSponsorshipUsage(ctx context.Context, key string) (*MgoSponsorshipUsage, error) {
	if collSponsorshipUsage == nil {
		return nil, ErrNotInitialized
	}
	result := &MgoSponsorshipUsage{}
	err := collSponsorshipUsage.FindOne(ctx, bson.M{"_id": key}).Decode(result)
	if err = mgoError(err); err != nil {
		if errors.Is(err, ErrItemNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return result, nil
}

// GetSponsorshipUsage get global and user usage of day
func GetSponsorshipUsage(ctx context.Context, user common.Address, day time.Time) (*router.SponsorshipUsage, error) {
	dayKey := DayKey(day)
	global, err := FindSponsorshipUsage(ctx, GetSponsorshipUsageKey(dayKey, common.Address{}))
	if err != nil {
		return nil, err
	}
	userUsage, err := FindSponsorshipUsage(ctx, GetSponsorshipUsageKey(dayKey, user))
	if err != nil {
		return nil, err
	}
	return ConvertToSponsorshipUsage(global, userUsage), nil
}

// ConvertToSponsorshipUsage absent records count as zero usage
func ConvertToSponsorshipUsage(global, user *MgoSponsorshipUsage) *router.SponsorshipUsage {
	usage := &router.SponsorshipUsage{
		GlobalVolumeUsd: decimal.Zero,
		UserVolumeUsd:   decimal.Zero,
	}
	if global != nil {
		usage.GlobalVolumeUsd = FromMicroUsd(global.VolumeMicroUsd)
		usage.AccountsCreated = global.AccountsCreated
	}
	if user != nil {
		usage.UserVolumeUsd = FromMicroUsd(user.VolumeMicroUsd)
	}
	return usage
}

// RecordSponsoredDeposit add sponsored deposit to global and user usage of day
func RecordSponsoredDeposit(ctx context.Context, user common.Address, day time.Time, volumeUsd decimal.Decimal, accountCreated bool) error {
	if collSponsorshipUsage == nil {
		return ErrNotInitialized
	}
	if volumeUsd.IsNegative() {
		return errors.New("negative sponsored volume")
	}
	MgoWaitGroup.Add(1)
	defer MgoWaitGroup.Done()

	dayKey := DayKey(day)
	microUsd := ToMicroUsd(volumeUsd)
	now := time.Now().Unix()

	inc := bson.M{"volumeMicroUsd": microUsd, "deposits": 1}
	if accountCreated {
		inc["accountsCreated"] = 1
	}
	for _, u := range []common.Address{{}, user} {
		key := GetSponsorshipUsageKey(dayKey, u)
		set := bson.M{"day": dayKey, "timestamp": now}
		if u != (common.Address{}) {
			set["user"] = u.Hex()
		}
		updates := bson.M{"$inc": inc, "$set": set}
		_, err := collSponsorshipUsage.UpdateByID(ctx, key, updates, options.Update().SetUpsert(true))
		if err != nil {
			log.Error("mongodb record sponsored deposit failed", "key", key, "volumeUsd", volumeUsd, "err", err)
			return mgoError(err)
		}
	}
	log.Info("mongodb record sponsored deposit success", "day", dayKey, "user", user.Hex(), "volumeUsd", volumeUsd, "accountCreated", accountCreated)
	return nil
}
