package service

import (
	"context"
)

// Broadcaster delivers an event to every connected subscriber of a game's
// room. Implementations must deliver events for the same game ID in the
// order they were broadcast; no ordering is required across different
// games. The websocket hub is the production implementation.
type Broadcaster interface {
	BroadcastEvent(gameID int, event string, payload any)
}

// QuizService defines all game-related operations exposed to transports.
type QuizService interface {
	// Game lifecycle
	CreateGame(ctx context.Context, rawQuestions string) (*GameInfo, error)
	CreateGameFromBank(ctx context.Context, setName string) (*GameInfo, error)
	StartGame(ctx context.Context, gameID int) error
	EndGame(ctx context.Context, gameID int) error

	// Membership and play
	JoinGame(ctx context.Context, gameID int, username string) (*JoinResult, error)
	NextQuestion(ctx context.Context, gameID int, username string) (*QuestionCard, error)
	SubmitAnswer(ctx context.Context, gameID int, username string, qid int, answer string) (*AnswerResult, error)

	// Introspection
	GetGame(ctx context.Context, gameID int) (*GameInfo, error)
	ListGames(ctx context.Context) ([]*GameInfo, error)
}
