// Package quiz provides the question data model and upload parsing for the
// quizroom server.
//
// Question sets arrive as plain text, one question per line, with the
// question and its answer separated by the ">|<" delimiter:
//
//	What is 2+2?>|<4
//	Capital of France?>|<Paris
//
// Parsing is strict and all-or-nothing: a single malformed line invalidates
// the entire upload, so a game is never created from a partially-valid set.
//
// Usage:
//
//	questions, err := quiz.ParseQuestions(raw)
//	if errors.Is(err, quiz.ErrInvalidFormat) {
//		// reject the upload
//	}
package quiz
