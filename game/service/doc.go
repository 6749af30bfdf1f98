// Package service provides the business logic layer for the quizroom
// server.
//
// The service package implements:
//   - Game creation from raw uploads or named bank sets
//   - Join, start, question serving, and answer scoring
//   - Room broadcasts tied to each state change
//   - Game listing and explicit teardown
//
// Core Interfaces:
//
// QuizService is the main service interface used by every transport
// (WebSocket protocol, REST API, MCP tools). Broadcaster abstracts the
// room fan-out so the service never touches connections directly; the
// websocket hub implements it in production and tests substitute a
// recorder.
//
// Architecture:
//
// The service layer sits between the transports and the session state
// machine. Transports validate and decode their own wire formats, then
// call the service; the service performs the state mutation through
// session/registry operations and emits the matching room event. Because
// the session mutation completes before the broadcast is enqueued, a
// subscriber that reads its own score after seeing a changescore event
// always observes the updated value.
//
// Usage:
//
//	registry := session.NewRegistry()
//	svc := service.NewQuizService(registry, bankMgr, hub)
//
//	info, err := svc.CreateGame(ctx, "2+2?>|<4\n3+3?>|<6")
//	join, err := svc.JoinGame(ctx, info.GameID, "alice")
//	card, err := svc.NextQuestion(ctx, info.GameID, "alice")
//	result, err := svc.SubmitAnswer(ctx, info.GameID, "alice", card.QID, "4")
package service
