package bank

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/quizroom/quizroom/game/quiz"
)

var ErrSetNotFound = errors.New("question set not found")

const setExtension = ".txt"

// SetInfo describes one question set available in the bank.
type SetInfo struct {
	Name      string `json:"name"`
	Questions int    `json:"questions"`
}

// Manager loads and caches named question sets from a directory. Set files
// use the same ">|<" line format as direct uploads and are keyed by their
// basename without extension.
type Manager struct {
	dir  string
	mu   sync.RWMutex
	sets map[string][]quiz.Question
}

// NewManager creates a bank manager over the given directory and parses
// every set it contains. Loading is strict: an unparsable set file fails
// the whole load, the same all-or-nothing stance the upload parser takes.
func NewManager(dir string) (*Manager, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, fmt.Errorf("question bank directory does not exist: %s", dir)
	}

	m := &Manager{
		dir:  dir,
		sets: make(map[string][]quiz.Question),
	}
	if err := m.Reload(); err != nil {
		return nil, err
	}
	return m, nil
}

// Load returns the question set with the given name.
func (m *Manager) Load(name string) ([]quiz.Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	set, ok := m.sets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSetNotFound, name)
	}
	return set, nil
}

// List returns the available sets sorted by nothing in particular; callers
// that care about ordering sort the result.
func (m *Manager) List() []SetInfo {
	m.mu.RLock()
	defer m.mu.RUnlock()

	infos := make([]SetInfo, 0, len(m.sets))
	for name, set := range m.sets {
		infos = append(infos, SetInfo{Name: name, Questions: len(set)})
	}
	return infos
}

// Reload rescans the directory, replacing the cached sets. If any file
// fails to read or parse, the cache is left untouched and the error names
// the offending file.
func (m *Manager) Reload() error {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return fmt.Errorf("failed to read bank directory: %w", err)
	}

	sets := make(map[string][]quiz.Question)

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), setExtension) {
			continue
		}

		data, err := os.ReadFile(filepath.Join(m.dir, entry.Name()))
		if err != nil {
			return fmt.Errorf("failed to read question file %s: %w", entry.Name(), err)
		}

		questions, err := quiz.ParseQuestions(string(data))
		if err != nil {
			return fmt.Errorf("question file %s: %w", entry.Name(), err)
		}

		name := strings.TrimSuffix(entry.Name(), setExtension)
		sets[name] = questions
	}

	m.mu.Lock()
	m.sets = sets
	m.mu.Unlock()

	return nil
}

// Count returns the number of loaded sets.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sets)
}
