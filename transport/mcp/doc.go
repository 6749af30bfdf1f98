// Package mcp exposes the quiz service as Model Context Protocol tools
// so an agent can host or play games over stdio.
//
// Tools map one-to-one onto the service operations: create_game,
// join_game, start_game, get_question, answer_question, list_games,
// end_game. Handlers call the service directly; the broadcaster still
// fans room events out to any WebSocket clients watching the same game,
// so an agent and human players can share a room.
//
// Usage:
//
//	mcpSrv := mcp.NewServer(svc)
//	server.ServeStdio(mcpSrv.GetMCPServer())
package mcp
