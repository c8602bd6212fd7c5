// Package mongodb stores the daily sponsorship usage in mongodb.
package mongodb

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/anyswap/CrossSwap-Router/log"
)

var (
	client    *mongo.Client
	database  *mongo.Database
	clientCtx = context.Background()

	collSponsorshipUsage *mongo.Collection

	initOnce sync.Once

	// MgoWaitGroup wait all mongodb related task done
	MgoWaitGroup = new(sync.WaitGroup)

	// ErrItemNotFound item not found
	ErrItemNotFound = errors.New("mgo error: item not found")
	// ErrItemIsDup item is duplicate
	ErrItemIsDup = errors.New("mgo error: item is duplicate")
	// ErrNotInitialized mongodb is not initialized
	ErrNotInitialized = errors.New("mgo error: not initialized")
)

// HasClient has client
func HasClient() bool {
	return client != nil
}

// MongoServerInit int mongodb server session
func MongoServerInit(appName string, hosts []string, dbName, user, pass string) {
	initOnce.Do(func() {
		clientOpts := &options.ClientOptions{
			AppName: &appName,
			Hosts:   hosts,
		}
		if user != "" {
			clientOpts.Auth = &options.Credential{
				AuthSource: dbName,
				Username:   user,
				Password:   pass,
			}
		}
		if err := connect(clientOpts, dbName); err != nil {
			log.Fatal("connect to mongodb failed", "hosts", hosts, "dbName", dbName, "err", err)
		}
		log.Info("connect to mongodb success", "hosts", hosts, "dbName", dbName)
	})
}

func connect(opts *options.ClientOptions, dbName string) (err error) {
	ctx, cancel := context.WithTimeout(clientCtx, 10*time.Second)
	defer cancel()

	client, err = mongo.Connect(ctx, opts)
	if err != nil {
		return err
	}
	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		return err
	}
	database = client.Database(dbName)
	return initCollections(ctx)
}

func initCollections(ctx context.Context) error {
	collSponsorshipUsage = database.Collection(tbSponsorshipUsages)
	_, err := collSponsorshipUsage.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "day", Value: 1}}},
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "day", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("create indexes of %v failed: %w", tbSponsorshipUsages, err)
	}
	return nil
}

// Disconnect wait running tasks then disconnect
func Disconnect() {
	if client == nil {
		return
	}
	MgoWaitGroup.Wait()
	ctx, cancel := context.WithTimeout(clientCtx, 5*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		log.Warn("disconnect mongodb failed", "err", err)
		return
	}
	log.Info("disconnect mongodb success")
}

func mgoError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return ErrItemNotFound
	case mongo.IsDuplicateKeyError(err):
		return ErrItemIsDup
	default:
		return err
	}
}
