package mcp

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/quizroom/quizroom/game/service"
	"github.com/quizroom/quizroom/game/session"
)

type noopBroadcaster struct{}

func (noopBroadcaster) BroadcastEvent(gameID int, event string, payload any) {}

func newTestServer(t *testing.T) *Server {
	t.Helper()
	svc := service.NewQuizService(session.NewRegistry(), nil, noopBroadcaster{})
	return NewServer(svc)
}

func toolRequest(args map[string]interface{}) mcp.CallToolRequest {
	var request mcp.CallToolRequest
	request.Params.Arguments = args
	return request
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("Expected content in tool result")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("Expected text content, got %T", result.Content[0])
	}
	return text.Text
}

func TestToolFlow(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	result, err := srv.handleCreateGame(ctx, toolRequest(map[string]interface{}{
		"data": "2+2?>|<4",
	}))
	if err != nil {
		t.Fatalf("create_game failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("create_game returned error: %s", resultText(t, result))
	}

	// Pull the assigned code back out through the service.
	games, err := srv.svc.ListGames(ctx)
	if err != nil || len(games) != 1 {
		t.Fatalf("Expected 1 game, got %d (err %v)", len(games), err)
	}
	gameID := float64(games[0].GameID)

	result, err = srv.handleJoinGame(ctx, toolRequest(map[string]interface{}{
		"gameid": gameID, "username": "alice",
	}))
	if err != nil || result.IsError {
		t.Fatalf("join_game failed: %v %v", err, result)
	}

	result, err = srv.handleStartGame(ctx, toolRequest(map[string]interface{}{
		"gameid": gameID,
	}))
	if err != nil || result.IsError {
		t.Fatalf("start_game failed: %v %v", err, result)
	}

	result, err = srv.handleGetQuestion(ctx, toolRequest(map[string]interface{}{
		"gameid": gameID, "username": "alice",
	}))
	if err != nil || result.IsError {
		t.Fatalf("get_question failed: %v %v", err, result)
	}
	if !strings.Contains(resultText(t, result), "2+2?") {
		t.Errorf("Expected question text, got %q", resultText(t, result))
	}

	// Drawing through the service gives a qid to answer against. With a
	// single question in the set the draw is deterministic.
	card, err := srv.svc.NextQuestion(ctx, int(gameID), "alice")
	if err != nil {
		t.Fatalf("NextQuestion failed: %v", err)
	}

	result, err = srv.handleAnswerQuestion(ctx, toolRequest(map[string]interface{}{
		"gameid": gameID, "username": "alice",
		"qid": float64(card.QID), "answer": "4",
	}))
	if err != nil || result.IsError {
		t.Fatalf("answer_question failed: %v %v", err, result)
	}
	if !strings.Contains(resultText(t, result), "Correct!") {
		t.Errorf("Expected correct verdict, got %q", resultText(t, result))
	}

	result, err = srv.handleListGames(ctx, toolRequest(nil))
	if err != nil || result.IsError {
		t.Fatalf("list_games failed: %v %v", err, result)
	}
	if !strings.Contains(resultText(t, result), "alice: 1") {
		t.Errorf("Expected scoreboard entry, got %q", resultText(t, result))
	}

	result, err = srv.handleEndGame(ctx, toolRequest(map[string]interface{}{
		"gameid": gameID,
	}))
	if err != nil || result.IsError {
		t.Fatalf("end_game failed: %v %v", err, result)
	}
	if games, _ := srv.svc.ListGames(ctx); len(games) != 0 {
		t.Errorf("Expected no games after end_game, got %d", len(games))
	}
}

func TestToolErrors(t *testing.T) {
	srv := newTestServer(t)
	ctx := context.Background()

	t.Run("call without arguments", func(t *testing.T) {
		// Clients may send tools/call with no arguments object at all.
		var request mcp.CallToolRequest
		result, err := srv.handleCreateGame(ctx, request)
		if err != nil {
			t.Fatalf("create_game errored: %v", err)
		}
		if !result.IsError {
			t.Error("Expected error result from create_game")
		}
		result, err = srv.handleStartGame(ctx, request)
		if err != nil {
			t.Fatalf("start_game errored: %v", err)
		}
		if !result.IsError {
			t.Error("Expected error result from start_game")
		}
	})

	t.Run("create with no input", func(t *testing.T) {
		result, err := srv.handleCreateGame(ctx, toolRequest(map[string]interface{}{}))
		if err != nil {
			t.Fatalf("Handler errored: %v", err)
		}
		if !result.IsError {
			t.Error("Expected error result")
		}
	})

	t.Run("join unknown game", func(t *testing.T) {
		result, err := srv.handleJoinGame(ctx, toolRequest(map[string]interface{}{
			"gameid": float64(session.GameIDSpace), "username": "alice",
		}))
		if err != nil {
			t.Fatalf("Handler errored: %v", err)
		}
		if !result.IsError {
			t.Error("Expected error result")
		}
	})

	t.Run("malformed game code", func(t *testing.T) {
		result, err := srv.handleStartGame(ctx, toolRequest(map[string]interface{}{
			"gameid": "not-a-number",
		}))
		if err != nil {
			t.Fatalf("Handler errored: %v", err)
		}
		if !result.IsError {
			t.Error("Expected error result")
		}
	})

	t.Run("game code as numeric string", func(t *testing.T) {
		created, err := srv.handleCreateGame(ctx, toolRequest(map[string]interface{}{
			"data": "q>|<a",
		}))
		if err != nil || created.IsError {
			t.Fatalf("create_game failed: %v %v", err, created)
		}
		games, _ := srv.svc.ListGames(ctx)
		if len(games) != 1 {
			t.Fatalf("Expected 1 game, got %d", len(games))
		}
		result, err := srv.handleStartGame(ctx, toolRequest(map[string]interface{}{
			"gameid": strconv.Itoa(games[0].GameID),
		}))
		if err != nil || result.IsError {
			t.Errorf("Expected numeric string to be accepted, got %v %v", err, result)
		}
	})
}
