package main

import (
	"context"
	"fmt"
	"log"
	"time"
	"trivio/config"
	"trivio/internal/model"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("Failed to connect to MongoDB: %v", err)
	}
	defer client.Disconnect(ctx)

	db := client.Database(cfg.MongoDB)
	setColl := db.Collection("sets")

	set := sampleSet()
	if _, err := setColl.InsertOne(ctx, set); err != nil {
		log.Fatalf("Failed to insert set: %v", err)
	}

	fmt.Printf("Seeded set %q with id %s\n", set.Title, set.ID)
}

func sampleSet() *model.TriviaSet {
	r1Cats := []string{"GO FIGURE", "WORLD CAPITALS", "THE SEA", "POTENT POTABLES", "BEFORE & AFTER", "SPORTS SHORTS"}
	r2Cats := []string{"SCIENCE", "OPERA", "U.S. HISTORY", "WORD ORIGINS", "FILMS OF THE 90s", "RIVERS"}

	set := &model.TriviaSet{
		ID:              primitive.NewObjectID().Hex(),
		Title:           "Launch Night Sampler",
		UserID:          "host_seed",
		Tags:            []string{"sample", "general"},
		Round1Len:       len(r1Cats),
		Round2Len:       len(r2Cats),
		HasTwoRounds:    true,
		Round1Cats:      r1Cats,
		Round2Cats:      r2Cats,
		Round1Clues:     make(map[int][]string),
		Round1Responses: make(map[int][]string),
		Round2Clues:     make(map[int][]string),
		Round2Responses: make(map[int][]string),
		Round1Daily:     []int{2, 3},
		Round2Daily1:    []int{0, 2},
		Round2Daily2:    []int{4, 3},
		FinalCategory:   "STATE NICKNAMES",
		FinalClue:       "This state's nickname honors a bird that is not native to it",
		FinalResponse:   "What is Maryland?",
		IsPublic:        true,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	for c := range r1Cats {
		for v := 0; v < 5; v++ {
			set.Round1Clues[c] = append(set.Round1Clues[c],
				fmt.Sprintf("Round 1 clue for %s, %d points", r1Cats[c], 200*(v+1)))
			set.Round1Responses[c] = append(set.Round1Responses[c],
				fmt.Sprintf("What is the round 1 answer for %s #%d?", r1Cats[c], v+1))
		}
	}
	for c := range r2Cats {
		for v := 0; v < 5; v++ {
			set.Round2Clues[c] = append(set.Round2Clues[c],
				fmt.Sprintf("Round 2 clue for %s, %d points", r2Cats[c], 400*(v+1)))
			set.Round2Responses[c] = append(set.Round2Responses[c],
				fmt.Sprintf("What is the round 2 answer for %s #%d?", r2Cats[c], v+1))
		}
	}
	set.NumClues = 2 * len(r1Cats) * 5

	return set
}
