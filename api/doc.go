// Package api provides the HTTP surface of the quizroom server: REST
// endpoints for game management and the WebSocket upgrade path used by
// the realtime protocol.
//
// Routes:
//
//	POST   /api/games          create a game ({"data": raw} or {"bank": name})
//	GET    /api/games          list active games, newest first
//	GET    /api/games/{id}     one game's state and scoreboard
//	POST   /api/games/{id}/start  move the game to the active state
//	DELETE /api/games/{id}     end the game and free its code
//	GET    /ws                 WebSocket upgrade (quiz wire protocol)
//	GET    /healthz            health check
//
// Errors are returned as {"error": message} with a status code mapped
// from the service error: 404 for unknown games or question sets, 400
// for malformed uploads, 503 when no game codes are left.
package api
