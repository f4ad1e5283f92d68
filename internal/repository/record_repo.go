package repository

import (
	"context"
	"trivio/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type RecordRepo interface {
	Create(ctx context.Context, record *model.GameRecord) error
	GetByID(ctx context.Context, id string) (*model.GameRecord, error)
	GetByHost(ctx context.Context, hostID string, limit int) ([]*model.GameRecord, error)
}

type recordRepo struct {
	collection *mongo.Collection
}

func NewRecordRepo(db *mongo.Database) RecordRepo {
	return &recordRepo{
		collection: db.Collection("games"),
	}
}

func (r *recordRepo) Create(ctx context.Context, record *model.GameRecord) error {
	if record.ID == "" {
		record.ID = primitive.NewObjectID().Hex()
	}

	_, err := r.collection.InsertOne(ctx, record)
	if err != nil {
		return err
	}

	return nil
}

func (r *recordRepo) GetByID(ctx context.Context, id string) (*model.GameRecord, error) {
	var record model.GameRecord
	err := r.collection.FindOne(ctx, map[string]interface{}{"_id": id}).Decode(&record)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil // Record not found
		}
		return nil, err
	}

	return &record, nil
}

func (r *recordRepo) GetByHost(ctx context.Context, hostID string, limit int) ([]*model.GameRecord, error) {
	opts := options.Find().SetSort(bson.M{"date": -1})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.M{"hostId": hostID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []*model.GameRecord
	if err = cursor.All(ctx, &records); err != nil {
		return nil, err
	}

	return records, nil
}
