package service

import (
	"context"
	"fmt"
	"log"

	"github.com/quizroom/quizroom/game/bank"
	"github.com/quizroom/quizroom/game/quiz"
	"github.com/quizroom/quizroom/game/session"
)

// quizServiceImpl implements QuizService over the registry, an optional
// question bank, and the room broadcaster.
type quizServiceImpl struct {
	registry    *session.Registry
	bank        *bank.Manager // nil when no bank directory is configured
	broadcaster Broadcaster
}

// NewQuizService creates a new quiz service. The bank manager may be nil;
// CreateGameFromBank then fails cleanly.
func NewQuizService(registry *session.Registry, bankMgr *bank.Manager, broadcaster Broadcaster) QuizService {
	return &quizServiceImpl{
		registry:    registry,
		bank:        bankMgr,
		broadcaster: broadcaster,
	}
}

// CreateGame parses the raw question text and registers a new game in the
// Lobby state.
func (s *quizServiceImpl) CreateGame(ctx context.Context, rawQuestions string) (*GameInfo, error) {
	questions, err := quiz.ParseQuestions(rawQuestions)
	if err != nil {
		return nil, err
	}
	return s.createGame(questions)
}

// CreateGameFromBank registers a new game using a named question set.
func (s *quizServiceImpl) CreateGameFromBank(ctx context.Context, setName string) (*GameInfo, error) {
	if s.bank == nil {
		return nil, fmt.Errorf("%w: no question bank configured", bank.ErrSetNotFound)
	}
	questions, err := s.bank.Load(setName)
	if err != nil {
		return nil, err
	}
	return s.createGame(questions)
}

func (s *quizServiceImpl) createGame(questions []quiz.Question) (*GameInfo, error) {
	sess, err := s.registry.Create(questions)
	if err != nil {
		return nil, err
	}
	log.Printf("Created game %d with %d questions", sess.ID(), sess.QuestionCount())
	return snapshot(sess), nil
}

// JoinGame adds the player to the game and announces the join to the
// members already in the room. The broadcast goes out before the caller's
// own subscription is expected, so the joiner does not see their own join.
func (s *quizServiceImpl) JoinGame(ctx context.Context, gameID int, username string) (*JoinResult, error) {
	sess, err := s.registry.Get(gameID)
	if err != nil {
		return nil, err
	}

	if _, err := sess.AddUser(username); err != nil {
		return nil, err
	}
	log.Printf("User %q joined game %d", username, gameID)

	s.broadcaster.BroadcastEvent(gameID, EventJoin, JoinEvent{Username: username})
	return &JoinResult{GameID: gameID, Username: username}, nil
}

// StartGame moves the game to the Active state and broadcasts "start" to
// the room. The broadcast is re-sent even when the game was already
// active: the host pressing start again re-signals waiting players.
func (s *quizServiceImpl) StartGame(ctx context.Context, gameID int) error {
	sess, err := s.registry.Get(gameID)
	if err != nil {
		return err
	}

	if sess.Start() {
		log.Printf("Starting game %d", gameID)
	}
	s.broadcaster.BroadcastEvent(gameID, EventStart, nil)
	return nil
}

// NextQuestion draws a random question for the player along with their
// current score.
func (s *quizServiceImpl) NextQuestion(ctx context.Context, gameID int, username string) (*QuestionCard, error) {
	sess, err := s.registry.Get(gameID)
	if err != nil {
		return nil, err
	}

	score, err := sess.ScoreOf(username)
	if err != nil {
		return nil, err
	}

	qid, q := sess.PickQuestion()
	return &QuestionCard{Question: q.Text, QID: qid, Score: score}, nil
}

// SubmitAnswer scores the submission and broadcasts the applied delta.
// The score mutation completes inside the session before the broadcast is
// enqueued, so no subscriber can observe a changescore event ahead of the
// state it describes.
func (s *quizServiceImpl) SubmitAnswer(ctx context.Context, gameID int, username string, qid int, answer string) (*AnswerResult, error) {
	sess, err := s.registry.Get(gameID)
	if err != nil {
		return nil, err
	}

	outcome, err := sess.SubmitAnswer(username, qid, answer)
	if err != nil {
		return nil, err
	}

	s.broadcaster.BroadcastEvent(gameID, EventChangeScore, ScoreEvent{
		Username: username,
		Amount:   outcome.Delta,
	})

	result := &AnswerResult{
		Correct:  outcome.Correct,
		Delta:    outcome.Delta,
		NewScore: outcome.NewScore,
	}
	if !outcome.Correct {
		result.CorrectAnswer = outcome.CorrectAnswer
	}
	return result, nil
}

// GetGame returns a snapshot of one game.
func (s *quizServiceImpl) GetGame(ctx context.Context, gameID int) (*GameInfo, error) {
	sess, err := s.registry.Get(gameID)
	if err != nil {
		return nil, err
	}
	return snapshot(sess), nil
}

// ListGames returns snapshots of all active games.
func (s *quizServiceImpl) ListGames(ctx context.Context) ([]*GameInfo, error) {
	sessions := s.registry.List()
	result := make([]*GameInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, snapshot(sess))
	}
	return result, nil
}

// EndGame removes the game from the registry, freeing its code.
func (s *quizServiceImpl) EndGame(ctx context.Context, gameID int) error {
	if err := s.registry.Remove(gameID); err != nil {
		return err
	}
	log.Printf("Ended game %d", gameID)
	return nil
}

func snapshot(sess *session.Session) *GameInfo {
	return &GameInfo{
		GameID:    sess.ID(),
		State:     sess.State().String(),
		Questions: sess.QuestionCount(),
		Players:   sess.Scoreboard(),
		CreatedAt: sess.CreatedAt(),
	}
}
