package session

import (
	"errors"
	"sync"
	"time"

	"github.com/quizroom/quizroom/game/quiz"
)

var (
	ErrUsernameTaken   = errors.New("username already taken")
	ErrUnknownUser     = errors.New("user not in game")
	ErrUnknownQuestion = errors.New("question not in game")
)

// Score deltas applied on answer submission.
const (
	CorrectDelta   = 1
	IncorrectDelta = -2
)

// State is the lifecycle state of a session.
type State int

const (
	// Lobby is the pre-round state: players are joining.
	Lobby State = iota
	// Active means the host has started the round.
	Active
)

func (s State) String() string {
	if s == Active {
		return "active"
	}
	return "lobby"
}

// User is one player in a session. Scores are signed and unbounded in both
// directions; negative scores are normal.
type User struct {
	Username string `json:"username"`
	Score    int    `json:"score"`
}

// AnswerOutcome reports the result of a single answer submission.
type AnswerOutcome struct {
	Correct       bool
	Delta         int
	NewScore      int
	CorrectAnswer string
}

// Session holds one game's complete state: its fixed question set, the
// members and their scores, and the lifecycle state. All methods are safe
// for concurrent use; each session carries its own lock so unrelated games
// never contend.
type Session struct {
	id int

	mu         sync.RWMutex
	state      State
	questions  map[int]quiz.Question
	qids       []int // stable order for uniform random picks
	users      map[string]*User
	createdAt  time.Time
	lastActive time.Time
}

// newSession builds a session from a question set keyed by pre-allocated
// question IDs. The question set is fixed for the session's lifetime.
// Construction goes through Registry.Create.
func newSession(id int, questions map[int]quiz.Question, qids []int) *Session {
	now := time.Now()
	return &Session{
		id:         id,
		state:      Lobby,
		questions:  questions,
		qids:       qids,
		users:      make(map[string]*User),
		createdAt:  now,
		lastActive: now,
	}
}

// ID returns the session's game code.
func (s *Session) ID() int {
	return s.id
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// AddUser registers a new player with a score of zero. The existence check
// and the insert happen under one lock, so two concurrent joins with the
// same name resolve to exactly one winner; the loser gets ErrUsernameTaken.
// Usernames are case-sensitive.
func (s *Session) AddUser(username string) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[username]; exists {
		return nil, ErrUsernameTaken
	}

	user := &User{Username: username}
	s.users[username] = user
	s.lastActive = time.Now()
	return user, nil
}

// Start transitions the session from Lobby to Active. Calling it on an
// already-active session is a no-op; the return value reports whether this
// call performed the transition.
func (s *Session) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastActive = time.Now()
	if s.state == Active {
		return false
	}
	s.state = Active
	return true
}

// PickQuestion returns one question drawn uniformly at random from the full
// set, independent of prior picks. Repeats across calls are expected.
func (s *Session) PickQuestion() (int, quiz.Question) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastActive = time.Now()
	qid := s.qids[randIndex(len(s.qids))]
	return qid, s.questions[qid]
}

// Question looks up a question by ID.
func (s *Session) Question(qid int) (quiz.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	q, ok := s.questions[qid]
	if !ok {
		return quiz.Question{}, ErrUnknownQuestion
	}
	return q, nil
}

// QuestionCount returns the size of the session's question set.
func (s *Session) QuestionCount() int {
	return len(s.qids)
}

// ScoreOf returns the current score for a member.
func (s *Session) ScoreOf(username string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[username]
	if !ok {
		return 0, ErrUnknownUser
	}
	return user.Score, nil
}

// SubmitAnswer checks an answer against the stored one with exact string
// equality and applies the score delta (+1 correct, -2 incorrect). The same
// question may be answered repeatedly by the same user; every submission
// re-scores. The mutation completes before SubmitAnswer returns, so a
// follow-up ScoreOf never observes a stale value relative to the outcome.
func (s *Session) SubmitAnswer(username string, qid int, answer string) (*AnswerOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	q, ok := s.questions[qid]
	if !ok {
		return nil, ErrUnknownQuestion
	}
	user, ok := s.users[username]
	if !ok {
		return nil, ErrUnknownUser
	}

	s.lastActive = time.Now()

	outcome := &AnswerOutcome{CorrectAnswer: q.Answer}
	if answer == q.Answer {
		outcome.Correct = true
		outcome.Delta = CorrectDelta
	} else {
		outcome.Delta = IncorrectDelta
	}
	user.Score += outcome.Delta
	outcome.NewScore = user.Score

	return outcome, nil
}

// Scoreboard returns a snapshot of all members and their scores.
func (s *Session) Scoreboard() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	board := make([]User, 0, len(s.users))
	for _, u := range s.users {
		board = append(board, *u)
	}
	return board
}

// UserCount returns the number of members.
func (s *Session) UserCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// CreatedAt returns the session creation time.
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// LastActive returns the time of the most recent mutation.
func (s *Session) LastActive() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastActive
}
