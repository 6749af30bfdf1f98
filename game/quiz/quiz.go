package quiz

import (
	"errors"
	"strings"
)

// Delimiter separates the question text from the answer on each line of an
// uploaded question set.
const Delimiter = ">|<"

// ErrInvalidFormat is returned when an uploaded question set is empty or
// contains at least one line that does not split into exactly one question
// and one answer. Validation is all-or-nothing: a single bad line rejects
// the whole batch.
var ErrInvalidFormat = errors.New("invalid question format")

// Question is a single question/answer pair. Both fields are taken verbatim
// from the upload; answer checking is exact-match and case-sensitive.
type Question struct {
	Text   string `json:"text"`
	Answer string `json:"answer"`
}

// ParseQuestions parses raw delimited text into an ordered question list.
// Each non-empty line must contain exactly one Delimiter. Fields are not
// trimmed or normalized. An empty input, or any malformed line, yields
// ErrInvalidFormat and no questions.
func ParseQuestions(text string) ([]Question, error) {
	if text == "" {
		return nil, ErrInvalidFormat
	}

	var questions []Question
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}

		parts := strings.Split(line, Delimiter)
		if len(parts) != 2 {
			return nil, ErrInvalidFormat
		}
		questions = append(questions, Question{Text: parts[0], Answer: parts[1]})
	}

	if len(questions) == 0 {
		return nil, ErrInvalidFormat
	}
	return questions, nil
}
