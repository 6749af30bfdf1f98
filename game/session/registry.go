package session

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"sync"
	"time"

	"github.com/quizroom/quizroom/game/quiz"
)

var (
	ErrGameNotFound = errors.New("game not found")
	ErrRegistryFull = errors.New("no free game codes")
)

const (
	// GameIDSpace bounds game codes to [0, GameIDSpace). Codes are short on
	// purpose so players can type them; this caps the server at 65536
	// concurrently active games.
	GameIDSpace = 1 << 16

	// questionIDSpace bounds per-session question IDs to [1, questionIDSpace).
	// The space is large enough that handles never need reuse within a
	// session.
	questionIDSpace = 10_000_000
)

// Registry is the process-wide directory of active sessions keyed by game
// code. It owns game code allocation: codes are drawn uniformly at random
// and retried on collision, and allocation plus insertion happen under one
// lock so two concurrent creates can never share a code. A code becomes
// reusable only after its session is removed.
type Registry struct {
	mu    sync.RWMutex
	games map[int]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		games: make(map[int]*Session),
	}
}

// Create allocates a fresh game code, assigns every question a distinct
// random question ID, and inserts a new session in the Lobby state. The
// session is fully constructed before it becomes visible to Get. Returns
// ErrRegistryFull when the code space is exhausted.
func (r *Registry) Create(questions []quiz.Question) (*Session, error) {
	if len(questions) == 0 {
		return nil, quiz.ErrInvalidFormat
	}

	byID, qids := assignQuestionIDs(questions)

	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.games) >= GameIDSpace {
		return nil, ErrRegistryFull
	}

	// Uniform draw with retry. Expected O(1) retries at low load; degrades
	// as the active count approaches the code space, which the full-check
	// above turns from a livelock into an error.
	var id int
	for {
		id = randIndex(GameIDSpace)
		if _, taken := r.games[id]; !taken {
			break
		}
	}

	sess := newSession(id, byID, qids)
	r.games[id] = sess
	return sess, nil
}

// Get returns the session for a game code.
func (r *Registry) Get(id int) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sess, ok := r.games[id]
	if !ok {
		return nil, ErrGameNotFound
	}
	return sess, nil
}

// Remove deletes a session, freeing its game code for reuse.
func (r *Registry) Remove(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.games[id]; !ok {
		return ErrGameNotFound
	}
	delete(r.games, id)
	return nil
}

// List returns a snapshot of all active sessions.
func (r *Registry) List() []*Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Session, 0, len(r.games))
	for _, sess := range r.games {
		result = append(result, sess)
	}
	return result
}

// Count returns the number of active sessions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.games)
}

// CleanupIdle removes sessions whose last activity is older than maxAge and
// returns how many were removed. Sessions otherwise live for the process
// lifetime; reaping is an opt-in policy wired up in main.
func (r *Registry) CleanupIdle(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, sess := range r.games {
		if sess.LastActive().Before(cutoff) {
			delete(r.games, id)
			removed++
		}
	}
	return removed
}

// assignQuestionIDs samples distinct random IDs in [1, questionIDSpace),
// one per question, preserving input order in the returned slice.
func assignQuestionIDs(questions []quiz.Question) (map[int]quiz.Question, []int) {
	byID := make(map[int]quiz.Question, len(questions))
	qids := make([]int, 0, len(questions))

	for _, q := range questions {
		var qid int
		for {
			qid = 1 + randIndex(questionIDSpace-1)
			if _, taken := byID[qid]; !taken {
				break
			}
		}
		byID[qid] = q
		qids = append(qids, qid)
	}
	return byID, qids
}

// randIndex returns a uniform random int in [0, n) using crypto/rand.
func randIndex(n int) int {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic("crypto/rand failure: " + err.Error())
	}
	return int(binary.BigEndian.Uint64(buf[:]) % uint64(n))
}
