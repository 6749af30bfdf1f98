package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/quizroom/quizroom/game/bank"
	"github.com/quizroom/quizroom/game/quiz"
	"github.com/quizroom/quizroom/game/service"
	"github.com/quizroom/quizroom/game/session"
)

// Inbound message types.
const (
	typeCreateGame     = "creategame"
	typeJoinGame       = "joingame"
	typeStartGame      = "startgame"
	typeGetQuestion    = "getquestion"
	typeAnswerQuestion = "answerquestion"
)

// User-facing error messages. Each failure condition gets its own
// wording so clients can tell them apart.
const (
	msgMalformedMessage  = "malformed message"
	msgUnknownType       = "unknown message type"
	msgInvalidQuestions  = "question text is empty or malformed"
	msgMissingGameCode   = "missing game code"
	msgMalformedGameCode = "game code must be a number"
	msgUnknownGame       = "unknown game code"
	msgMissingUsername   = "missing username"
	msgUsernameTaken     = "username already taken"
	msgUnknownUser       = "unknown user"
	msgUnknownQuestion   = "unknown question id"
	msgUnknownBankSet    = "unknown question set"
	msgRegistryFull      = "no game codes available"
	msgInternal          = "internal error"
)

var (
	errMissingGameCode   = errors.New(msgMissingGameCode)
	errMalformedGameCode = errors.New(msgMalformedGameCode)
)

// clientMessage is the inbound envelope. ID is an optional client
// correlation number echoed on direct replies. GameID is kept raw
// because clients send it as either a JSON string or a number.
type clientMessage struct {
	Type     string          `json:"type"`
	ID       int64           `json:"id,omitempty"`
	Data     string          `json:"data,omitempty"`
	GameID   json.RawMessage `json:"gameid,omitempty"`
	Username string          `json:"username,omitempty"`
	QID      int             `json:"qid,omitempty"`
	Answer   string          `json:"answer,omitempty"`
}

type errorReply struct {
	Type    string `json:"type"`
	ID      int64  `json:"id,omitempty"`
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type createGameReply struct {
	Type    string `json:"type"`
	ID      int64  `json:"id,omitempty"`
	Success bool   `json:"success"`
	GameID  int    `json:"gameid"`
}

type joinGameReply struct {
	Type     string `json:"type"`
	ID       int64  `json:"id,omitempty"`
	Success  bool   `json:"success"`
	GameID   int    `json:"gameid"`
	Username string `json:"username"`
}

type questionReply struct {
	Type     string `json:"type"`
	ID       int64  `json:"id,omitempty"`
	Question string `json:"question"`
	QID      int    `json:"qid"`
	Score    int    `json:"score"`
}

type answerReply struct {
	Type          string `json:"type"`
	ID            int64  `json:"id,omitempty"`
	Success       bool   `json:"success"`
	CorrectAnswer string `json:"correctanswer,omitempty"`
}

// ProtocolHandler translates inbound socket messages into service calls
// and room subscriptions.
type ProtocolHandler struct {
	svc service.QuizService
	hub *Hub
}

// NewProtocolHandler creates a protocol handler bound to the hub it
// subscribes clients on.
func NewProtocolHandler(svc service.QuizService, hub *Hub) *ProtocolHandler {
	return &ProtocolHandler{svc: svc, hub: hub}
}

// ServeHTTP upgrades the request and serves the quiz protocol on the
// resulting connection.
func (p *ProtocolHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.hub.ServeWS(w, r, p)
}

// HandleMessage dispatches one inbound message. The returned bytes are
// the direct reply, or nil when the message type owes none.
func (p *ProtocolHandler) HandleMessage(c *Client, data []byte) []byte {
	var msg clientMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return marshalReply(errorReply{Type: "error", Success: false, Error: msgMalformedMessage})
	}

	ctx := context.Background()

	switch msg.Type {
	case typeCreateGame:
		return p.handleCreateGame(ctx, c, msg)
	case typeJoinGame:
		return p.handleJoinGame(ctx, c, msg)
	case typeStartGame:
		return p.handleStartGame(ctx, msg)
	case typeGetQuestion:
		return p.handleGetQuestion(ctx, msg)
	case typeAnswerQuestion:
		return p.handleAnswerQuestion(ctx, msg)
	default:
		return errReply(msg, msgUnknownType+" "+strconv.Quote(msg.Type))
	}
}

func (p *ProtocolHandler) handleCreateGame(ctx context.Context, c *Client, msg clientMessage) []byte {
	info, err := p.svc.CreateGame(ctx, msg.Data)
	if err != nil {
		return errReply(msg, errorMessage(err))
	}

	// The creator watches the room from the start.
	p.hub.Subscribe(c, info.GameID)

	return marshalReply(createGameReply{
		Type:    msg.Type,
		ID:      msg.ID,
		Success: true,
		GameID:  info.GameID,
	})
}

func (p *ProtocolHandler) handleJoinGame(ctx context.Context, c *Client, msg clientMessage) []byte {
	gameID, err := parseGameCode(msg.GameID)
	if err != nil {
		return errReply(msg, errorMessage(err))
	}
	if msg.Username == "" {
		return errReply(msg, msgMissingUsername)
	}

	result, err := p.svc.JoinGame(ctx, gameID, msg.Username)
	if err != nil {
		return errReply(msg, errorMessage(err))
	}

	// Subscribe after the service has broadcast the join, so the joiner
	// does not receive their own join event.
	p.hub.Subscribe(c, gameID)

	return marshalReply(joinGameReply{
		Type:     msg.Type,
		ID:       msg.ID,
		Success:  true,
		GameID:   result.GameID,
		Username: result.Username,
	})
}

func (p *ProtocolHandler) handleStartGame(ctx context.Context, msg clientMessage) []byte {
	gameID, err := parseGameCode(msg.GameID)
	if err != nil {
		return errReply(msg, errorMessage(err))
	}

	if err := p.svc.StartGame(ctx, gameID); err != nil {
		return errReply(msg, errorMessage(err))
	}
	// Success carries no direct reply; the room hears "start".
	return nil
}

func (p *ProtocolHandler) handleGetQuestion(ctx context.Context, msg clientMessage) []byte {
	gameID, err := parseGameCode(msg.GameID)
	if err != nil {
		return errReply(msg, errorMessage(err))
	}
	if msg.Username == "" {
		return errReply(msg, msgMissingUsername)
	}

	card, err := p.svc.NextQuestion(ctx, gameID, msg.Username)
	if err != nil {
		return errReply(msg, errorMessage(err))
	}

	return marshalReply(questionReply{
		Type:     msg.Type,
		ID:       msg.ID,
		Question: card.Question,
		QID:      card.QID,
		Score:    card.Score,
	})
}

func (p *ProtocolHandler) handleAnswerQuestion(ctx context.Context, msg clientMessage) []byte {
	gameID, err := parseGameCode(msg.GameID)
	if err != nil {
		return errReply(msg, errorMessage(err))
	}
	if msg.Username == "" {
		return errReply(msg, msgMissingUsername)
	}

	result, err := p.svc.SubmitAnswer(ctx, gameID, msg.Username, msg.QID, msg.Answer)
	if err != nil {
		return errReply(msg, errorMessage(err))
	}

	reply := answerReply{Type: msg.Type, ID: msg.ID, Success: result.Correct}
	if !result.Correct {
		reply.CorrectAnswer = result.CorrectAnswer
	}
	return marshalReply(reply)
}

// parseGameCode accepts a game code sent as a JSON number or as a
// numeric string.
func parseGameCode(raw json.RawMessage) (int, error) {
	if len(raw) == 0 {
		return 0, errMissingGameCode
	}

	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return n, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0, errMalformedGameCode
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errMissingGameCode
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errMalformedGameCode
	}
	return n, nil
}

// errorMessage maps internal errors onto their user-facing wording.
func errorMessage(err error) string {
	switch {
	case errors.Is(err, errMissingGameCode),
		errors.Is(err, errMalformedGameCode):
		return err.Error()
	case errors.Is(err, quiz.ErrInvalidFormat):
		return msgInvalidQuestions
	case errors.Is(err, session.ErrGameNotFound):
		return msgUnknownGame
	case errors.Is(err, session.ErrUsernameTaken):
		return msgUsernameTaken
	case errors.Is(err, session.ErrUnknownUser):
		return msgUnknownUser
	case errors.Is(err, session.ErrUnknownQuestion):
		return msgUnknownQuestion
	case errors.Is(err, session.ErrRegistryFull):
		return msgRegistryFull
	case errors.Is(err, bank.ErrSetNotFound):
		return msgUnknownBankSet
	default:
		return msgInternal
	}
}

func errReply(msg clientMessage, text string) []byte {
	return marshalReply(errorReply{
		Type:    msg.Type,
		ID:      msg.ID,
		Success: false,
		Error:   text,
	})
}

func marshalReply(v any) []byte {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("Failed to marshal reply: %v", err)
		return nil
	}
	return data
}
