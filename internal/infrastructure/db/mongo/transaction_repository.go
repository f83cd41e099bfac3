package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/catattrans/umkm-api/internal/core/domain"
	"github.com/catattrans/umkm-api/internal/core/ports"
)

const transactionCollection = "transactions"

// TransactionRepository persists bookkeeping entries. Entries are never
// physically removed; deletion flips is_deleted so exports and audits can
// still reach the history.
type TransactionRepository struct {
	coll *mongo.Collection
}

func NewTransactionRepository(db *mongo.Database) *TransactionRepository {
	return &TransactionRepository{coll: db.Collection(transactionCollection)}
}

// EnsureIndexes creates the listing indexes. Call once at startup.
func (r *TransactionRepository) EnsureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "transaction_date", Value: -1}}},
		{Keys: bson.D{{Key: "created_by", Value: 1}, {Key: "transaction_date", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("create transaction indexes: %w", err)
	}
	return nil
}

func (r *TransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	if _, err := r.coll.InsertOne(ctx, tx); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

func (r *TransactionRepository) FindByID(ctx context.Context, id string) (*domain.Transaction, error) {
	var tx domain.Transaction
	err := r.coll.FindOne(ctx, bson.M{"_id": id, "is_deleted": false}).Decode(&tx)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrTransactionNotFound
		}
		return nil, fmt.Errorf("find transaction: %w", err)
	}
	return &tx, nil
}

func (r *TransactionRepository) List(ctx context.Context, filter ports.TransactionFilter) ([]*domain.Transaction, error) {
	query := bson.M{"is_deleted": false}
	if filter.CreatedBy != "" {
		query["created_by"] = filter.CreatedBy
	}
	if filter.Type != "" {
		query["type"] = filter.Type
	}
	if !filter.From.IsZero() || !filter.To.IsZero() {
		window := bson.M{}
		if !filter.From.IsZero() {
			window["$gte"] = filter.From
		}
		if !filter.To.IsZero() {
			window["$lt"] = filter.To
		}
		query["transaction_date"] = window
	}

	cursor, err := r.coll.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "transaction_date", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	out := []*domain.Transaction{}
	for cursor.Next(ctx) {
		var tx domain.Transaction
		if err := cursor.Decode(&tx); err != nil {
			return nil, fmt.Errorf("decode transaction: %w", err)
		}
		out = append(out, &tx)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return out, nil
}

func (r *TransactionRepository) SoftDelete(ctx context.Context, id string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "is_deleted": false},
		bson.M{"$set": bson.M{"is_deleted": true, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("soft delete transaction: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrTransactionNotFound
	}
	return nil
}
