package mongodb

const (
	tbSponsorshipUsages string = "SponsorshipUsages"
)

// MgoSponsorshipUsage sponsored volume of one day.
// The global record has key `day`, the user record has key `day:user`.
type MgoSponsorshipUsage struct {
	Key             string `bson:"_id"`
	Day             string `bson:"day"`
	User            string `bson:"user,omitempty"`
	VolumeMicroUsd  int64  `bson:"volumeMicroUsd"`
	Deposits        uint64 `bson:"deposits"`
	AccountsCreated uint64 `bson:"accountsCreated"`
	Timestamp       int64  `bson:"timestamp"`
}
