package tx

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo"
)

// Tx runs fn inside one transaction; every write in fn commits or
// none do.
type Tx interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type mongoTx struct {
	client *mongo.Client
}

// NewMongoTx builds a Tx backed by MongoDB sessions. The transaction
// path requires a replica set; standalone deployments surface the
// driver's error on first use.
func NewMongoTx(ctx context.Context, client *mongo.Client) (Tx, error) {
	return &mongoTx{client: client}, nil
}

func (t *mongoTx) Transaction(ctx context.Context, fn func(ctx context.Context) error) error {
	sess, err := t.client.StartSession()
	if err != nil {
		return err
	}
	defer sess.EndSession(ctx)

	_, err = sess.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	})
	return err
}
