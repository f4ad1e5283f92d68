package model

import (
	"time"

	"github.com/google/uuid"
)

// Team is a contestant (solo or grouped) in a game. Index is the team's
// position on the podium rail and doubles as its array key in the roster;
// the roster keeps indices dense.
type Team struct {
	ID      string   `json:"id" bson:"id"`
	Index   int      `json:"index" bson:"index"`
	Name    string   `json:"name" bson:"name"`
	Members []string `json:"members" bson:"members"`
	Score   int      `json:"score" bson:"score"`
	Color   string   `json:"color" bson:"color"`
	// Saved marks a contestant persisted across sessions; mutations on saved
	// teams are mirrored to the contestants collection.
	Saved bool `json:"saved,omitempty" bson:"-"`
}

// NewTeam builds a team with a fresh ID when none is supplied.
func NewTeam(id string, index int, name string, members []string, score int, color string) Team {
	if id == "" {
		id = uuid.New().String()
	}
	if members == nil {
		members = []string{}
	}
	return Team{ID: id, Index: index, Name: name, Members: members, Score: score, Color: color}
}

// SavedContestant is the persisted form of a reusable team profile, stored
// per host under their contestants collection.
type SavedContestant struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	HostID    string    `json:"hostId" bson:"hostId"`
	TeamID    string    `json:"teamId" bson:"teamId"`
	Name      string    `json:"name" bson:"name"`
	Members   []string  `json:"members" bson:"members"`
	Color     string    `json:"color" bson:"color"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
}

// GameRecord is the summary written when a game finishes.
type GameRecord struct {
	ID         string            `json:"id" bson:"_id,omitempty"`
	HostID     string            `json:"hostId" bson:"hostId"`
	SetID      string            `json:"setId" bson:"episode_played"`
	PlayedAt   time.Time         `json:"playedAt" bson:"date"`
	Steps      int               `json:"steps" bson:"steps"`
	CluesSolved int              `json:"cluesSolved" bson:"qs_solved"`
	TeamIDs    []string          `json:"teamIds" bson:"team_ids"`
	NameByID   map[string]string `json:"nameIdMap" bson:"name_id_map"`
	ColorByID  map[string]string `json:"colorIdMap" bson:"color_id_map"`
	// ScoreHistory holds each team's score after every question step, keyed
	// by team ID.
	ScoreHistory map[string][]int `json:"scoreHistory" bson:"score_history"`
}
