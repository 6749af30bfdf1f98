// Package websocket provides the realtime transport for quizroom: a hub
// that groups connections into per-game rooms and a protocol handler
// that maps inbound JSON messages onto the quiz service.
//
// The websocket package implements:
//   - Connection lifecycle with ping/pong keepalive (gorilla/websocket)
//   - Per-game rooms with ordered broadcast fan-out
//   - The quiz wire protocol: creategame, joingame, startgame,
//     getquestion, answerquestion
//
// Architecture:
//
// The Hub owns all room state inside a single event loop goroutine.
// Subscriptions and broadcasts travel through one channel, so their
// relative order is exact: a connection subscribed after a broadcast was
// enqueued never receives that broadcast. This is what makes a joining
// player miss their own join announcement while everyone already in the
// room sees it.
//
// Each client runs the usual two pumps. readPump feeds inbound frames to
// the ProtocolHandler, which validates the envelope, calls the service,
// and hands back the direct reply. Room events (join, start,
// changescore) originate in the service layer and reach clients through
// Hub.BroadcastEvent, which implements service.Broadcaster.
//
// Wire Protocol:
//
// Requests are JSON envelopes with a "type" field and an optional "id"
// correlation number echoed on the reply. The game code is accepted as
// either a JSON number or a numeric string. Failures reply with
// {success:false, error:...} where each failure condition has distinct
// wording. A startgame success has no direct reply; the room receives
// the "start" event instead.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//	svc := service.NewQuizService(registry, bankMgr, hub)
//	handler := websocket.NewProtocolHandler(svc, hub)
//	router.Handle("/ws", handler)
package websocket
