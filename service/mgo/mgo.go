package mgo

import (
	"context"
	"sync"

	mongoutil "EduTalk/data/database/mgo/mongoutil"
	"EduTalk/data/database/utils/tx"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	mu     sync.RWMutex
	client *mongoutil.Client
)

// Init connects and installs the shared client. The service fails
// fast at boot rather than running degraded.
func Init(ctx context.Context, cfg *mongoutil.Config) error {
	cli, err := mongoutil.NewMongoDB(ctx, cfg)
	if err != nil {
		return err
	}
	mu.Lock()
	client = cli
	mu.Unlock()
	return nil
}

func GetDB() *mongo.Database {
	mu.RLock()
	defer mu.RUnlock()
	if client == nil {
		panic("Mongo not ready: call Init first")
	}
	return client.GetDB()
}

func GetTx() tx.Tx {
	mu.RLock()
	defer mu.RUnlock()
	if client == nil {
		panic("Mongo not ready: call Init first")
	}
	return client.GetTx()
}

func TryGetDB() (*mongo.Database, bool) {
	mu.RLock()
	defer mu.RUnlock()
	if client == nil {
		return nil, false
	}
	return client.GetDB(), true
}

// Close disconnects the shared client.
func Close(ctx context.Context) error {
	mu.Lock()
	defer mu.Unlock()
	if client == nil {
		return nil
	}
	err := client.GetDB().Client().Disconnect(ctx)
	client = nil
	return err
}
