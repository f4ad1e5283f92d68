package repository

import (
	"context"
	"log"
	"trivio/internal/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// LiveRepo stores live game session documents and their remote players. A
// session is keyed by the host's ID, so one host runs at most one live game.
type LiveRepo interface {
	Put(ctx context.Context, game *model.LiveGame) error
	GetByHostID(ctx context.Context, hostID string) (*model.LiveGame, error)
	GetByPlayerCode(ctx context.Context, code string) (*model.LiveGame, error)
	GetByHostCode(ctx context.Context, code string) (*model.LiveGame, error)
	Delete(ctx context.Context, hostID string) error

	AddPlayer(ctx context.Context, player *model.LivePlayer) error
	GetPlayer(ctx context.Context, hostID, playerID string) (*model.LivePlayer, error)
	GetPlayers(ctx context.Context, hostID string) ([]*model.LivePlayer, error)
	UpdatePlayer(ctx context.Context, player *model.LivePlayer) error
	DeletePlayers(ctx context.Context, hostID string) error

	// Subscribe streams session document updates for one game until ctx is
	// cancelled. Requires a replica set; callers fall back to polling if the
	// returned error is non-nil.
	Subscribe(ctx context.Context, hostID string) (<-chan *model.LiveGame, error)
}

type liveRepo struct {
	games   *mongo.Collection
	players *mongo.Collection
}

func NewLiveRepo(db *mongo.Database) LiveRepo {
	return &liveRepo{
		games:   db.Collection("livegames"),
		players: db.Collection("liveplayers"),
	}
}

// Put upserts the whole session document; the host ID is the document key.
func (r *liveRepo) Put(ctx context.Context, game *model.LiveGame) error {
	_, err := r.games.ReplaceOne(ctx,
		map[string]interface{}{"_id": game.HostID},
		game,
		options.Replace().SetUpsert(true))
	return err
}

func (r *liveRepo) GetByHostID(ctx context.Context, hostID string) (*model.LiveGame, error) {
	return r.findGame(ctx, map[string]interface{}{"_id": hostID})
}

func (r *liveRepo) GetByPlayerCode(ctx context.Context, code string) (*model.LiveGame, error) {
	return r.findGame(ctx, map[string]interface{}{"playerCode": code})
}

func (r *liveRepo) GetByHostCode(ctx context.Context, code string) (*model.LiveGame, error) {
	return r.findGame(ctx, map[string]interface{}{"hostCode": code})
}

func (r *liveRepo) findGame(ctx context.Context, filter map[string]interface{}) (*model.LiveGame, error) {
	var game model.LiveGame
	err := r.games.FindOne(ctx, filter).Decode(&game)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil // Game not found
		}
		return nil, err
	}

	return &game, nil
}

func (r *liveRepo) Delete(ctx context.Context, hostID string) error {
	_, err := r.games.DeleteOne(ctx, map[string]interface{}{"_id": hostID})
	return err
}

func (r *liveRepo) AddPlayer(ctx context.Context, player *model.LivePlayer) error {
	if player.ID == "" {
		player.ID = primitive.NewObjectID().Hex()
	}

	_, err := r.players.InsertOne(ctx, player)
	if err != nil {
		return err
	}

	return nil
}

func (r *liveRepo) GetPlayer(ctx context.Context, hostID, playerID string) (*model.LivePlayer, error) {
	var player model.LivePlayer
	err := r.players.FindOne(ctx, map[string]interface{}{"_id": playerID, "hostId": hostID}).Decode(&player)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil // Player not found
		}
		return nil, err
	}

	return &player, nil
}

func (r *liveRepo) GetPlayers(ctx context.Context, hostID string) ([]*model.LivePlayer, error) {
	opts := options.Find().SetSort(bson.M{"joinOrdinal": 1})
	cursor, err := r.players.Find(ctx, bson.M{"hostId": hostID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var players []*model.LivePlayer
	if err = cursor.All(ctx, &players); err != nil {
		return nil, err
	}

	return players, nil
}

func (r *liveRepo) UpdatePlayer(ctx context.Context, player *model.LivePlayer) error {
	_, err := r.players.ReplaceOne(ctx, map[string]interface{}{"_id": player.ID}, player)
	return err
}

func (r *liveRepo) DeletePlayers(ctx context.Context, hostID string) error {
	_, err := r.players.DeleteMany(ctx, map[string]interface{}{"hostId": hostID})
	return err
}

func (r *liveRepo) Subscribe(ctx context.Context, hostID string) (<-chan *model.LiveGame, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"documentKey._id": hostID}}},
	}
	stream, err := r.games.Watch(ctx, pipeline,
		options.ChangeStream().SetFullDocument(options.UpdateLookup))
	if err != nil {
		return nil, err
	}

	updates := make(chan *model.LiveGame)
	go func() {
		defer close(updates)
		defer stream.Close(context.Background())

		for stream.Next(ctx) {
			var event struct {
				FullDocument *model.LiveGame `bson:"fullDocument"`
			}
			if err := stream.Decode(&event); err != nil {
				log.Printf("live stream decode error for game %s: %v", hostID, err)
				continue
			}
			if event.FullDocument == nil {
				continue // delete events carry no document
			}
			select {
			case updates <- event.FullDocument:
			case <-ctx.Done():
				return
			}
		}
	}()

	return updates, nil
}
