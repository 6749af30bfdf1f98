package service

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/quizroom/quizroom/game/bank"
	"github.com/quizroom/quizroom/game/quiz"
	"github.com/quizroom/quizroom/game/session"
)

// recordingBroadcaster captures broadcasts for assertions.
type recordingBroadcaster struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	gameID  int
	event   string
	payload any
}

func (b *recordingBroadcaster) BroadcastEvent(gameID int, event string, payload any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, recordedEvent{gameID: gameID, event: event, payload: payload})
}

func (b *recordingBroadcaster) all() []recordedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]recordedEvent(nil), b.events...)
}

func (b *recordingBroadcaster) last() *recordedEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.events) == 0 {
		return nil
	}
	ev := b.events[len(b.events)-1]
	return &ev
}

func newTestService(t *testing.T) (QuizService, *recordingBroadcaster) {
	t.Helper()
	broadcaster := &recordingBroadcaster{}
	svc := NewQuizService(session.NewRegistry(), nil, broadcaster)
	return svc, broadcaster
}

const sampleQuestions = "2+2?>|<4\n3+3?>|<6"

func TestCreateGame(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	t.Run("valid upload", func(t *testing.T) {
		info, err := svc.CreateGame(ctx, sampleQuestions)
		if err != nil {
			t.Fatalf("CreateGame failed: %v", err)
		}
		if info.Questions != 2 {
			t.Errorf("Expected 2 questions, got %d", info.Questions)
		}
		if info.State != "lobby" {
			t.Errorf("Expected lobby state, got %q", info.State)
		}
		if len(info.Players) != 0 {
			t.Errorf("Expected no players, got %d", len(info.Players))
		}
	})

	t.Run("malformed upload creates nothing", func(t *testing.T) {
		before, _ := svc.ListGames(ctx)
		_, err := svc.CreateGame(ctx, "badline")
		if !errors.Is(err, quiz.ErrInvalidFormat) {
			t.Errorf("Expected ErrInvalidFormat, got %v", err)
		}
		after, _ := svc.ListGames(ctx)
		if len(after) != len(before) {
			t.Error("Expected no game to be created from a malformed upload")
		}
	})
}

func TestCreateGameFromBank(t *testing.T) {
	ctx := context.Background()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "math.txt"), []byte(sampleQuestions+"\n"), 0o644); err != nil {
		t.Fatalf("Failed to write bank file: %v", err)
	}
	bankMgr, err := bank.NewManager(dir)
	if err != nil {
		t.Fatalf("Failed to create bank manager: %v", err)
	}

	svc := NewQuizService(session.NewRegistry(), bankMgr, &recordingBroadcaster{})

	t.Run("known set", func(t *testing.T) {
		info, err := svc.CreateGameFromBank(ctx, "math")
		if err != nil {
			t.Fatalf("CreateGameFromBank failed: %v", err)
		}
		if info.Questions != 2 {
			t.Errorf("Expected 2 questions, got %d", info.Questions)
		}
	})

	t.Run("unknown set", func(t *testing.T) {
		_, err := svc.CreateGameFromBank(ctx, "geography")
		if !errors.Is(err, bank.ErrSetNotFound) {
			t.Errorf("Expected ErrSetNotFound, got %v", err)
		}
	})

	t.Run("no bank configured", func(t *testing.T) {
		bare, _ := newTestService(t)
		_, err := bare.CreateGameFromBank(ctx, "math")
		if !errors.Is(err, bank.ErrSetNotFound) {
			t.Errorf("Expected ErrSetNotFound, got %v", err)
		}
	})
}

func TestJoinGame(t *testing.T) {
	svc, broadcaster := newTestService(t)
	ctx := context.Background()

	info, err := svc.CreateGame(ctx, sampleQuestions)
	if err != nil {
		t.Fatalf("CreateGame failed: %v", err)
	}

	t.Run("join broadcasts to the room", func(t *testing.T) {
		result, err := svc.JoinGame(ctx, info.GameID, "alice")
		if err != nil {
			t.Fatalf("JoinGame failed: %v", err)
		}
		if result.Username != "alice" || result.GameID != info.GameID {
			t.Errorf("Unexpected join result: %+v", result)
		}

		ev := broadcaster.last()
		if ev == nil {
			t.Fatal("Expected a join broadcast")
		}
		if ev.event != EventJoin || ev.gameID != info.GameID {
			t.Errorf("Expected join broadcast for game %d, got %+v", info.GameID, ev)
		}
		if payload, ok := ev.payload.(JoinEvent); !ok || payload.Username != "alice" {
			t.Errorf("Unexpected join payload: %+v", ev.payload)
		}
	})

	t.Run("duplicate username", func(t *testing.T) {
		n := len(broadcaster.all())
		_, err := svc.JoinGame(ctx, info.GameID, "alice")
		if !errors.Is(err, session.ErrUsernameTaken) {
			t.Errorf("Expected ErrUsernameTaken, got %v", err)
		}
		if len(broadcaster.all()) != n {
			t.Error("Expected no broadcast for a rejected join")
		}
	})

	t.Run("unknown game", func(t *testing.T) {
		_, err := svc.JoinGame(ctx, session.GameIDSpace, "bob")
		if !errors.Is(err, session.ErrGameNotFound) {
			t.Errorf("Expected ErrGameNotFound, got %v", err)
		}
	})
}

func TestStartGame(t *testing.T) {
	svc, broadcaster := newTestService(t)
	ctx := context.Background()

	info, _ := svc.CreateGame(ctx, sampleQuestions)

	if err := svc.StartGame(ctx, info.GameID); err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}

	got, _ := svc.GetGame(ctx, info.GameID)
	if got.State != "active" {
		t.Errorf("Expected active state, got %q", got.State)
	}

	ev := broadcaster.last()
	if ev == nil || ev.event != EventStart {
		t.Fatalf("Expected start broadcast, got %+v", ev)
	}

	// A second start stays active and still re-broadcasts.
	if err := svc.StartGame(ctx, info.GameID); err != nil {
		t.Fatalf("Second StartGame failed: %v", err)
	}
	starts := 0
	for _, ev := range broadcaster.all() {
		if ev.event == EventStart {
			starts++
		}
	}
	if starts != 2 {
		t.Errorf("Expected 2 start broadcasts, got %d", starts)
	}
}

func TestNextQuestion(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	info, _ := svc.CreateGame(ctx, sampleQuestions)
	svc.JoinGame(ctx, info.GameID, "alice")

	t.Run("serves a question with current score", func(t *testing.T) {
		card, err := svc.NextQuestion(ctx, info.GameID, "alice")
		if err != nil {
			t.Fatalf("NextQuestion failed: %v", err)
		}
		if card.Question != "2+2?" && card.Question != "3+3?" {
			t.Errorf("Unexpected question %q", card.Question)
		}
		if card.QID == 0 {
			t.Error("Expected a non-zero qid")
		}
		if card.Score != 0 {
			t.Errorf("Expected score 0, got %d", card.Score)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.NextQuestion(ctx, info.GameID, "ghost")
		if !errors.Is(err, session.ErrUnknownUser) {
			t.Errorf("Expected ErrUnknownUser, got %v", err)
		}
	})
}

func TestSubmitAnswer(t *testing.T) {
	svc, broadcaster := newTestService(t)
	ctx := context.Background()

	info, _ := svc.CreateGame(ctx, sampleQuestions)
	svc.JoinGame(ctx, info.GameID, "alice")

	// Draw until we get the 2+2 question so the expected answer is known.
	var card *QuestionCard
	for {
		c, err := svc.NextQuestion(ctx, info.GameID, "alice")
		if err != nil {
			t.Fatalf("NextQuestion failed: %v", err)
		}
		if c.Question == "2+2?" {
			card = c
			break
		}
	}

	t.Run("correct answer", func(t *testing.T) {
		result, err := svc.SubmitAnswer(ctx, info.GameID, "alice", card.QID, "4")
		if err != nil {
			t.Fatalf("SubmitAnswer failed: %v", err)
		}
		if !result.Correct || result.Delta != 1 || result.NewScore != 1 {
			t.Errorf("Unexpected result: %+v", result)
		}
		if result.CorrectAnswer != "" {
			t.Error("Correct answer must not be revealed on success")
		}

		ev := broadcaster.last()
		if ev == nil || ev.event != EventChangeScore {
			t.Fatalf("Expected changescore broadcast, got %+v", ev)
		}
		payload, ok := ev.payload.(ScoreEvent)
		if !ok || payload.Username != "alice" || payload.Amount != 1 {
			t.Errorf("Unexpected changescore payload: %+v", ev.payload)
		}
	})

	t.Run("incorrect answer", func(t *testing.T) {
		result, err := svc.SubmitAnswer(ctx, info.GameID, "alice", card.QID, "5")
		if err != nil {
			t.Fatalf("SubmitAnswer failed: %v", err)
		}
		if result.Correct || result.Delta != -2 {
			t.Errorf("Unexpected result: %+v", result)
		}
		if result.CorrectAnswer != "4" {
			t.Errorf("Expected revealed answer '4', got %q", result.CorrectAnswer)
		}
		if result.NewScore != -1 {
			t.Errorf("Expected score -1, got %d", result.NewScore)
		}

		payload, _ := broadcaster.last().payload.(ScoreEvent)
		if payload.Amount != -2 {
			t.Errorf("Expected broadcast amount -2, got %d", payload.Amount)
		}
	})

	t.Run("exactly one broadcast per submission", func(t *testing.T) {
		before := len(broadcaster.all())
		svc.SubmitAnswer(ctx, info.GameID, "alice", card.QID, "4")
		if got := len(broadcaster.all()) - before; got != 1 {
			t.Errorf("Expected exactly 1 broadcast, got %d", got)
		}
	})

	t.Run("unknown question broadcasts nothing", func(t *testing.T) {
		before := len(broadcaster.all())
		_, err := svc.SubmitAnswer(ctx, info.GameID, "alice", 999999999, "4")
		if !errors.Is(err, session.ErrUnknownQuestion) {
			t.Errorf("Expected ErrUnknownQuestion, got %v", err)
		}
		if len(broadcaster.all()) != before {
			t.Error("Expected no broadcast for an unknown question")
		}
	})
}

func TestEndGame(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	info, _ := svc.CreateGame(ctx, sampleQuestions)

	if err := svc.EndGame(ctx, info.GameID); err != nil {
		t.Fatalf("EndGame failed: %v", err)
	}
	if _, err := svc.GetGame(ctx, info.GameID); !errors.Is(err, session.ErrGameNotFound) {
		t.Error("Expected game to be gone after EndGame")
	}
	if err := svc.EndGame(ctx, info.GameID); !errors.Is(err, session.ErrGameNotFound) {
		t.Errorf("Expected ErrGameNotFound on double end, got %v", err)
	}
}

func TestListGames(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	a, _ := svc.CreateGame(ctx, sampleQuestions)
	b, _ := svc.CreateGame(ctx, sampleQuestions)

	games, err := svc.ListGames(ctx)
	if err != nil {
		t.Fatalf("ListGames failed: %v", err)
	}
	if len(games) != 2 {
		t.Fatalf("Expected 2 games, got %d", len(games))
	}

	found := map[int]bool{}
	for _, g := range games {
		found[g.GameID] = true
	}
	if !found[a.GameID] || !found[b.GameID] {
		t.Error("Expected both games in the listing")
	}
}
