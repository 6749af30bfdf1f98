// Package session provides the game-session state machine and the
// process-wide registry of active games.
//
// The session package implements:
//   - Thread-safe session state: questions, membership, scores
//   - Unique game code allocation with collision retry
//   - Per-session question ID assignment
//   - Atomic join semantics (duplicate usernames lose the race cleanly)
//   - Opt-in idle-session cleanup
//
// Core Types:
//
// Registry is the directory mapping short numeric game codes to live
// Sessions. Session owns one game's complete state and guards it with its
// own lock, so operations on unrelated games never serialize against each
// other.
//
// Game Codes:
//
// Codes are integers in [0, 65535], short enough for players to type. A
// code stays reserved while its session is live and becomes reusable only
// after removal. The small space is a deliberate capacity ceiling: the
// registry refuses new games once all codes are in use.
//
// Concurrency:
//
// Both Registry and Session are safe for concurrent use from many socket
// connections. The atomicity units that matter are code allocation plus
// insertion, the username existence-check plus insert, and the score
// read-modify-write on answer submission; each runs under a single lock
// acquisition.
//
// Usage:
//
//	registry := session.NewRegistry()
//
//	sess, err := registry.Create(questions)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	user, err := sess.AddUser("alice")
//	qid, q := sess.PickQuestion()
//	outcome, err := sess.SubmitAnswer("alice", qid, "4")
//
// Lifecycle:
//
// A session starts in Lobby, moves to Active when the host starts the
// round, and has no terminal state. By default sessions live for the
// process lifetime; callers may remove them explicitly or reap idle ones
// with CleanupIdle.
package session
