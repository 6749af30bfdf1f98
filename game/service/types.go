package service

import (
	"time"

	"github.com/quizroom/quizroom/game/session"
)

// Room event names broadcast to a game's subscribers.
const (
	EventJoin        = "join"
	EventStart       = "start"
	EventChangeScore = "changescore"
)

// GameInfo is a snapshot of one game for listings and scoreboards.
type GameInfo struct {
	GameID    int            `json:"gameid"`
	State     string         `json:"state"`
	Questions int            `json:"questions"`
	Players   []session.User `json:"players"`
	CreatedAt time.Time      `json:"created_at"`
}

// JoinResult confirms a successful join.
type JoinResult struct {
	GameID   int    `json:"gameid"`
	Username string `json:"username"`
}

// QuestionCard is one served question together with the asking player's
// current score. The answer is deliberately absent.
type QuestionCard struct {
	Question string `json:"question"`
	QID      int    `json:"qid"`
	Score    int    `json:"score"`
}

// AnswerResult reports the outcome of an answer submission. CorrectAnswer
// is populated only for incorrect submissions.
type AnswerResult struct {
	Correct       bool   `json:"correct"`
	Delta         int    `json:"delta"`
	NewScore      int    `json:"new_score"`
	CorrectAnswer string `json:"correct_answer,omitempty"`
}

// JoinEvent is the payload of a "join" broadcast.
type JoinEvent struct {
	Username string `json:"username"`
}

// ScoreEvent is the payload of a "changescore" broadcast.
type ScoreEvent struct {
	Username string `json:"username"`
	Amount   int    `json:"amount"`
}
