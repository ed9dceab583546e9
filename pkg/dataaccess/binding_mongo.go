package dataaccess

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/intercord/pkg/dataaccess/monitoring"
	"github.com/Jacobbrewer1/intercord/pkg/entities"
	"github.com/Jacobbrewer1/intercord/pkg/logging"
	"github.com/prometheus/client_golang/prometheus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const mongoBindingDalName = "mongo_binding_dal"

type mongoBindingDal struct {
	// l is the logger.
	l *slog.Logger

	// client is the database.
	client *mongo.Client
}

// NewMongoBindingDal creates a binding registry backed by the MongoDB client.
func NewMongoBindingDal(l *slog.Logger, client *mongo.Client) BindingDal {
	l = l.With(slog.String(logging.KeyDal, mongoBindingDalName))

	if client == nil {
		l.Warn("MongoDB is nil, this can cause a panic. Proceeding...")
	}

	return &mongoBindingDal{
		l:      l,
		client: client,
	}
}

func (d *mongoBindingDal) collection() *mongo.Collection {
	return d.client.Database(mongoDatabase).Collection(bindingsCollection)
}

func (d *mongoBindingDal) observe(query string) *prometheus.Timer {
	monitoring.StoreTotalRequests.WithLabelValues(mongoBindingDalName, query).Inc()
	monitoring.MongoTotalRequests.WithLabelValues(mongoBindingDalName, query, mongoDatabase, bindingsCollection).Inc()
	return prometheus.NewTimer(monitoring.MongoLatency.WithLabelValues(mongoBindingDalName, query, mongoDatabase, bindingsCollection))
}

func (d *mongoBindingDal) SaveBinding(ctx context.Context, binding *entities.Binding) error {
	t := d.observe("save_binding")
	defer t.ObserveDuration()

	// Replace the whole document, a binding is never merged.
	opts := options.Replace().SetUpsert(true)
	_, err := d.collection().ReplaceOne(ctx, bson.M{"channel_id": binding.ChannelID}, binding, opts)
	if err != nil {
		return fmt.Errorf("error saving binding: %w", err)
	}
	return nil
}

func (d *mongoBindingDal) GetBinding(ctx context.Context, channelID string) (*entities.Binding, error) {
	t := d.observe("get_binding")
	defer t.ObserveDuration()

	binding := new(entities.Binding)
	err := d.collection().FindOne(ctx, bson.M{"channel_id": channelID}).Decode(binding)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrBindingNotFound
	} else if err != nil {
		return nil, fmt.Errorf("error getting binding: %w", err)
	}
	return binding, nil
}

func (d *mongoBindingDal) DeleteBinding(ctx context.Context, channelID string) (bool, error) {
	t := d.observe("delete_binding")
	defer t.ObserveDuration()

	res, err := d.collection().DeleteOne(ctx, bson.M{"channel_id": channelID})
	if err != nil {
		return false, fmt.Errorf("error deleting binding: %w", err)
	}
	return res.DeletedCount > 0, nil
}

func (d *mongoBindingDal) ListBindings(ctx context.Context) ([]*entities.Binding, error) {
	t := d.observe("list_bindings")
	defer t.ObserveDuration()

	opts := options.Find().SetSort(bson.D{{Key: "registered_at", Value: 1}, {Key: "channel_id", Value: 1}})
	cur, err := d.collection().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("error listing bindings: %w", err)
	}

	list := make([]*entities.Binding, 0)
	if err := cur.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("error decoding bindings: %w", err)
	}
	return list, nil
}

func (d *mongoBindingDal) CountBindings(ctx context.Context) (int64, error) {
	t := d.observe("count_bindings")
	defer t.ObserveDuration()

	n, err := d.collection().CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("error counting bindings: %w", err)
	}
	return n, nil
}
