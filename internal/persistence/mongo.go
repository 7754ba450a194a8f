package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fjod/go_cart/storefront/internal/domain"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const cartRetention = 90 * 24 * time.Hour

type cartDocument struct {
	Key       string         `bson:"_id"`
	Items     map[string]int `bson:"items"`
	UpdatedAt time.Time      `bson:"updated_at"`
}

// storedCart is read loosely so both item shapes decode.
type storedCart struct {
	Items map[string]bson.RawValue `bson:"items"`
}

// MongoPersister keeps one document per cart in the carts collection.
type MongoPersister struct {
	collection *mongo.Collection
	logger     *zap.Logger
}

func NewMongoPersister(db *mongo.Database, logger *zap.Logger) *MongoPersister {
	return &MongoPersister{
		collection: db.Collection("carts"),
		logger:     logger,
	}
}

func (m *MongoPersister) Load(ctx context.Context, key string) (domain.CartState, bool, error) {
	var doc storedCart
	err := m.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to find cart: %w", err)
	}

	state, err := decodeItems(doc.Items)
	if err != nil {
		m.logger.Warn("discarding stored cart", zap.String("key", key), zap.Error(err))
		return nil, false, nil
	}
	return state, true, nil
}

func (m *MongoPersister) Save(ctx context.Context, key string, state domain.CartState) error {
	doc := cartDocument{
		Key:       key,
		Items:     map[string]int(state.Clone()),
		UpdatedAt: time.Now(),
	}

	filter := bson.M{"_id": key}
	opts := options.Replace().SetUpsert(true)
	if _, err := m.collection.ReplaceOne(ctx, filter, doc, opts); err != nil {
		return fmt.Errorf("failed to upsert cart: %w", err)
	}
	return nil
}

// CreateIndexes expires carts untouched for the retention period.
func (m *MongoPersister) CreateIndexes(ctx context.Context) error {
	index := mongo.IndexModel{
		Keys:    bson.D{{Key: "updated_at", Value: 1}},
		Options: options.Index().SetExpireAfterSeconds(int32(cartRetention.Seconds())),
	}

	if _, err := m.collection.Indexes().CreateOne(ctx, index); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func decodeItems(items map[string]bson.RawValue) (domain.CartState, error) {
	state := make(domain.CartState, len(items))
	for id, value := range items {
		qty, ok := value.AsInt64OK()
		if !ok {
			qty, ok = legacyQuantity(value)
		}
		if !ok {
			return nil, fmt.Errorf("%w: product %q", ErrMalformedCart, id)
		}
		if id == "" || qty <= 0 {
			continue
		}
		state[id] = int(qty)
	}
	return state, nil
}

func legacyQuantity(value bson.RawValue) (int64, bool) {
	doc, ok := value.DocumentOK()
	if !ok {
		return 0, false
	}
	qty, err := doc.LookupErr("quantity")
	if err != nil {
		return 0, false
	}
	return qty.AsInt64OK()
}
