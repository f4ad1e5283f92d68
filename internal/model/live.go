package model

import (
	"fmt"
	"time"
)

// LiveDisplay is what every client of a live game should be rendering right
// now. Values arrive as strings on the session document and are parsed at the
// boundary; unknown strings are rejected rather than passed through.
type LiveDisplay string

const (
	DisplayBoard         LiveDisplay = "board"
	DisplayClue          LiveDisplay = "clue"
	DisplayResponse      LiveDisplay = "response"
	DisplayPreWager      LiveDisplay = "preWVC"
	DisplayPreFinalClue  LiveDisplay = "preFinalClue"
	DisplayFinalClue     LiveDisplay = "finalClue"
	DisplayFinalResponse LiveDisplay = "finalResponse"
	DisplayFinalStats    LiveDisplay = "finalStats"
)

// ParseLiveDisplay validates a display string from a stored document.
func ParseLiveDisplay(s string) (LiveDisplay, error) {
	switch LiveDisplay(s) {
	case DisplayBoard, DisplayClue, DisplayResponse, DisplayPreWager,
		DisplayPreFinalClue, DisplayFinalClue, DisplayFinalResponse, DisplayFinalStats:
		return LiveDisplay(s), nil
	}
	return "", fmt.Errorf("unknown live display %q", s)
}

// LiveGame is the remotely synchronized session document for a hosted live
// game. Keyed by host ID so one host can run at most one live game.
type LiveGame struct {
	HostID       string `json:"hostId" bson:"_id"`
	HostName     string `json:"hostName" bson:"hostName"`
	SetID        string `json:"setId" bson:"userSetID"`
	HostCode     string `json:"hostCode" bson:"hostCode"`
	PlayerCode   string `json:"playerCode" bson:"playerCode"`
	HostHasJoined bool  `json:"hostHasJoined" bson:"hostHasJoined"`
	GameHasBegun  bool  `json:"gameHasBegun" bson:"gameHasBegun"`

	Display         string    `json:"currentGameDisplay" bson:"currentGameDisplay"`
	CurrentPlayerID string    `json:"currentPlayerId" bson:"currentPlayerId"`
	BuzzersEnabled  bool      `json:"buzzersEnabled" bson:"buzzersEnabled"`
	BuzzersEnabledAt time.Time `json:"buzzersEnabledAt" bson:"buzzersEnabledDateTime"`
	BuzzerWinnerID  string    `json:"buzzerWinnerId" bson:"buzzerWinnerId"`

	// Selected clue coordinates while Display is clue/response.
	SelectedCategory int `json:"selectedCategory" bson:"selectedCategory"`
	SelectedValue    int `json:"selectedValue" bson:"selectedValue"`

	// Seconds contestants get to answer once narration finishes. Stamped at
	// creation so every device counts down the same window.
	AnswerWindowSec int `json:"answerWindowSec" bson:"answerWindowSec"`

	NumSubmitted int       `json:"numSubmitted" bson:"numSubmitted"`
	StartedAt    time.Time `json:"startedAt" bson:"dateInitiated"`
}

// LivePlayer is one remote contestant inside a live game.
type LivePlayer struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	HostID       string    `json:"hostId" bson:"hostId"`
	Nickname     string    `json:"nickname" bson:"nickname"`
	Score        int       `json:"score" bson:"score"`
	JoinOrdinal  int       `json:"joinOrdinal" bson:"joinOrdinal"`
	InBuzzerRace bool      `json:"inBuzzerRace" bson:"inBuzzerRace"`
	LastBuzzedAt time.Time `json:"lastBuzzedAt" bson:"lastBuzzedDateTime"`
	Response     string    `json:"response" bson:"currentResponse"`
	Wager        int       `json:"wager" bson:"currentWager"`
	JoinedAt     time.Time `json:"joinedAt" bson:"joinedAt"`
}

// LiveResponseStatus is the host's grade for a buzzer winner's answer.
type LiveResponseStatus string

const (
	ResponseNeither   LiveResponseStatus = "neither"
	ResponseCorrect   LiveResponseStatus = "correct"
	ResponseIncorrect LiveResponseStatus = "incorrect"
)
