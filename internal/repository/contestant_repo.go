package repository

import (
	"context"
	"trivio/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ContestantRepo interface {
	Save(ctx context.Context, contestant *model.SavedContestant) error
	GetByTeamID(ctx context.Context, hostID, teamID string) (*model.SavedContestant, error)
	GetAllByHost(ctx context.Context, hostID string) ([]*model.SavedContestant, error)
	Delete(ctx context.Context, hostID, teamID string) error
}

type contestantRepo struct {
	collection *mongo.Collection
}

func NewContestantRepo(db *mongo.Database) ContestantRepo {
	return &contestantRepo{
		collection: db.Collection("contestants"),
	}
}

// Save upserts by (hostId, teamId) so repeated roster edits overwrite the
// same profile instead of piling up copies.
func (r *contestantRepo) Save(ctx context.Context, contestant *model.SavedContestant) error {
	if contestant.ID == "" {
		contestant.ID = primitive.NewObjectID().Hex()
	}

	filter := bson.M{"hostId": contestant.HostID, "teamId": contestant.TeamID}
	update := bson.M{"$set": bson.M{
		"hostId":    contestant.HostID,
		"teamId":    contestant.TeamID,
		"name":      contestant.Name,
		"members":   contestant.Members,
		"color":     contestant.Color,
		"createdAt": contestant.CreatedAt,
	}}
	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (r *contestantRepo) GetByTeamID(ctx context.Context, hostID, teamID string) (*model.SavedContestant, error) {
	var contestant model.SavedContestant
	err := r.collection.FindOne(ctx, map[string]interface{}{"hostId": hostID, "teamId": teamID}).Decode(&contestant)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil // Contestant not found
		}
		return nil, err
	}

	return &contestant, nil
}

func (r *contestantRepo) GetAllByHost(ctx context.Context, hostID string) ([]*model.SavedContestant, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"hostId": hostID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var contestants []*model.SavedContestant
	if err = cursor.All(ctx, &contestants); err != nil {
		return nil, err
	}

	return contestants, nil
}

func (r *contestantRepo) Delete(ctx context.Context, hostID, teamID string) error {
	_, err := r.collection.DeleteOne(ctx, map[string]interface{}{"hostId": hostID, "teamId": teamID})
	return err
}
