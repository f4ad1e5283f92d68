package repository

import (
	"context"
	"trivio/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type SetRepo interface {
	// Basic CRUD Operations
	Create(ctx context.Context, set *model.TriviaSet) error
	GetByID(ctx context.Context, id string) (*model.TriviaSet, error)
	Update(ctx context.Context, set *model.TriviaSet) error
	Delete(ctx context.Context, id string) error

	// Browsing
	GetAll(ctx context.Context) ([]*model.TriviaSet, error)
	GetByHost(ctx context.Context, hostID string) ([]*model.TriviaSet, error)

	// Play-completion stats (merge write, never replaces the document)
	IncrementStats(ctx context.Context, id string, delta model.SetStats) error
}

type setRepo struct {
	collection *mongo.Collection
}

func NewSetRepo(db *mongo.Database) SetRepo {
	return &setRepo{
		collection: db.Collection("sets"),
	}
}

func (r *setRepo) Create(ctx context.Context, set *model.TriviaSet) error {
	// Generate ObjectID if not provided
	if set.ID == "" {
		set.ID = primitive.NewObjectID().Hex()
	}

	_, err := r.collection.InsertOne(ctx, set)
	if err != nil {
		return err
	}

	return nil
}

func (r *setRepo) GetByID(ctx context.Context, id string) (*model.TriviaSet, error) {
	raw, err := r.collection.FindOne(ctx, map[string]interface{}{"_id": id}).Raw()
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil // Set not found
		}
		return nil, err
	}
	return decodeSet(raw)
}

// decodeSet reads a set document in whichever schema it was written. Flat
// documents store their clue tables as nested arrays and are upgraded to the
// indexed schema on the way out.
func decodeSet(doc bson.Raw) (*model.TriviaSet, error) {
	var set model.TriviaSet
	if err := bson.Unmarshal(doc, &set); err == nil && set.Schema() == model.SchemaIndexed {
		return &set, nil
	}

	var legacy model.LegacyTriviaSet
	if err := bson.Unmarshal(doc, &legacy); err != nil {
		return nil, err
	}
	return legacy.Upgrade(), nil
}

func (r *setRepo) Update(ctx context.Context, set *model.TriviaSet) error {
	_, err := r.collection.ReplaceOne(ctx, map[string]interface{}{"_id": set.ID}, set)
	return err
}

func (r *setRepo) Delete(ctx context.Context, id string) error {
	_, err := r.collection.DeleteOne(ctx, map[string]interface{}{"_id": id})
	return err
}

func (r *setRepo) GetAll(ctx context.Context) ([]*model.TriviaSet, error) {
	return r.find(ctx, bson.M{})
}

func (r *setRepo) GetByHost(ctx context.Context, hostID string) ([]*model.TriviaSet, error) {
	return r.find(ctx, bson.M{"userID": hostID})
}

func (r *setRepo) find(ctx context.Context, filter bson.M) ([]*model.TriviaSet, error) {
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	// Decode per document so flat and indexed sets can live in the same
	// collection.
	var sets []*model.TriviaSet
	for cursor.Next(ctx) {
		set, err := decodeSet(cursor.Current)
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return sets, nil
}

func (r *setRepo) IncrementStats(ctx context.Context, id string, delta model.SetStats) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$inc": bson.M{
			"stats.plays":        delta.Plays,
			"stats.rating":       delta.Rating,
			"stats.numRatings":   delta.NumRatings,
			"stats.averageScore": delta.AverageScore,
		},
	})
	return err
}
