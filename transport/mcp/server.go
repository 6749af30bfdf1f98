package mcp

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/quizroom/quizroom/game/service"
)

// Server exposes the quiz operations as MCP tools so an agent can host
// or play a game. Tool handlers call the service directly.
type Server struct {
	svc       service.QuizService
	mcpServer *server.MCPServer
}

// NewServer creates a new MCP server over the quiz service.
func NewServer(svc service.QuizService) *Server {
	s := &Server{svc: svc}
	s.initMCPServer()
	return s
}

// initMCPServer initializes the MCP server with all tools
func (s *Server) initMCPServer() {
	s.mcpServer = server.NewMCPServer(
		"Quizroom",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Quizroom - MCP Interface

Room-based realtime quiz games. A host uploads question/answer pairs
and receives a numeric game code; players join with that code and a
username, then pull random questions and submit answers. Correct
answers score +1, incorrect answers score -2.

AVAILABLE TOOLS:
- create_game: Upload questions (or name a question set) and get a game code
- join_game: Join a game with a code and a username
- start_game: Signal the round start to the room
- get_question: Draw a random question for a player
- answer_question: Submit an answer and get the score change
- list_games: List active games with their scoreboards
- end_game: Close a game and free its code

QUESTION FORMAT:
One question per line, question and answer separated by ">|<", e.g.:
2+2?>|<4
Answers are compared exactly, case-sensitive.`),
	)

	s.registerTools()
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.Tool{
		Name:        "create_game",
		Description: "Create a new game from raw question text or a named question set, returning the game code players join with",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"data": map[string]interface{}{
					"type":        "string",
					"description": "Raw question text, one 'question>|<answer' pair per line",
				},
				"bank": map[string]interface{}{
					"type":        "string",
					"description": "Name of a question set from the server's bank directory (alternative to data)",
				},
			},
		},
	}, s.handleCreateGame)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "join_game",
		Description: "Join a game as a player",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"gameid": map[string]interface{}{
					"type":        "integer",
					"description": "Game code",
				},
				"username": map[string]interface{}{
					"type":        "string",
					"description": "Player name, unique within the game",
				},
			},
			Required: []string{"gameid", "username"},
		},
	}, s.handleJoinGame)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "start_game",
		Description: "Start the round; every player in the room is notified",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"gameid": map[string]interface{}{
					"type":        "integer",
					"description": "Game code",
				},
			},
			Required: []string{"gameid"},
		},
	}, s.handleStartGame)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "get_question",
		Description: "Draw a random question for a player, with their current score",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"gameid": map[string]interface{}{
					"type":        "integer",
					"description": "Game code",
				},
				"username": map[string]interface{}{
					"type":        "string",
					"description": "Player name",
				},
			},
			Required: []string{"gameid", "username"},
		},
	}, s.handleGetQuestion)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "answer_question",
		Description: "Submit an answer for a previously drawn question. Correct scores +1, incorrect scores -2 and reveals the answer",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"gameid": map[string]interface{}{
					"type":        "integer",
					"description": "Game code",
				},
				"username": map[string]interface{}{
					"type":        "string",
					"description": "Player name",
				},
				"qid": map[string]interface{}{
					"type":        "integer",
					"description": "Question id from get_question",
				},
				"answer": map[string]interface{}{
					"type":        "string",
					"description": "Answer text, compared exactly",
				},
			},
			Required: []string{"gameid", "username", "qid", "answer"},
		},
	}, s.handleAnswerQuestion)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "list_games",
		Description: "List all active games with their states and scoreboards",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, s.handleListGames)

	s.mcpServer.AddTool(mcp.Tool{
		Name:        "end_game",
		Description: "End a game and free its code",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"gameid": map[string]interface{}{
					"type":        "integer",
					"description": "Game code",
				},
			},
			Required: []string{"gameid"},
		},
	}, s.handleEndGame)
}

// GetMCPServer returns the underlying MCP server for serving
func (s *Server) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}

// argGameID reads the gameid argument, tolerating numbers and numeric
// strings.
func argGameID(args map[string]interface{}) (int, error) {
	switch v := args["gameid"].(type) {
	case float64:
		return int(v), nil
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("gameid must be a number, got %q", v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("gameid is required")
	}
}

// Tool handlers

func (s *Server) handleCreateGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	// A tools/call may omit arguments entirely; reads from the nil map
	// then fall through to the per-field checks.
	args, _ := request.Params.Arguments.(map[string]interface{})
	data, _ := args["data"].(string)
	bankSet, _ := args["bank"].(string)

	var info *service.GameInfo
	var err error
	switch {
	case bankSet != "":
		info, err = s.svc.CreateGameFromBank(ctx, bankSet)
	case data != "":
		info, err = s.svc.CreateGame(ctx, data)
	default:
		return mcp.NewToolResultError("either data or bank is required"), nil
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created game %d with %d questions.\nPlayers join with game code %d.",
		info.GameID, info.Questions, info.GameID)
	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleJoinGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	gameID, err := argGameID(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	username, _ := args["username"].(string)
	if username == "" {
		return mcp.NewToolResultError("username is required"), nil
	}

	join, err := s.svc.JoinGame(ctx, gameID, username)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Joined game %d as %q with score 0.", join.GameID, join.Username)
	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleStartGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	gameID, err := argGameID(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.svc.StartGame(ctx, gameID); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Game %d started.", gameID)), nil
}

func (s *Server) handleGetQuestion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	gameID, err := argGameID(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	username, _ := args["username"].(string)
	if username == "" {
		return mcp.NewToolResultError("username is required"), nil
	}

	card, err := s.svc.NextQuestion(ctx, gameID, username)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Question (qid %d): %s\nYour score: %d", card.QID, card.Question, card.Score)
	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleAnswerQuestion(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	gameID, err := argGameID(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	username, _ := args["username"].(string)
	if username == "" {
		return mcp.NewToolResultError("username is required"), nil
	}
	qidRaw, ok := args["qid"].(float64)
	if !ok {
		return mcp.NewToolResultError("qid is required"), nil
	}
	answer, _ := args["answer"].(string)

	outcome, err := s.svc.SubmitAnswer(ctx, gameID, username, int(qidRaw), answer)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var result string
	if outcome.Correct {
		result = fmt.Sprintf("Correct! +1 point. Your score is now %d.", outcome.NewScore)
	} else {
		result = fmt.Sprintf("Incorrect (-2 points). The answer was %q. Your score is now %d.",
			outcome.CorrectAnswer, outcome.NewScore)
	}
	return mcp.NewToolResultText(result), nil
}

func (s *Server) handleListGames(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	games, err := s.svc.ListGames(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Games (%d):\n\n", len(games))
	for _, g := range games {
		fmt.Fprintf(&b, "- Game %d [%s] %d questions, %d players\n",
			g.GameID, g.State, g.Questions, len(g.Players))
		for _, p := range g.Players {
			fmt.Fprintf(&b, "    %s: %d\n", p.Username, p.Score)
		}
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleEndGame(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, _ := request.Params.Arguments.(map[string]interface{})
	gameID, err := argGameID(args)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := s.svc.EndGame(ctx, gameID); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Game %d ended.", gameID)), nil
}
