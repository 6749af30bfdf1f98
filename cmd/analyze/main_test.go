package main

import (
	"testing"

	"github.com/quizroom/quizroom/game/quiz"
)

func TestAnalyzeSet(t *testing.T) {
	questions := []quiz.Question{
		{Text: "2+2?", Answer: "4"},
		{Text: "What is the capital of France?", Answer: "Paris"},
		{Text: "3+3?", Answer: "6"},
	}

	stats := analyzeSet("math", questions)

	if stats.Questions != 3 {
		t.Errorf("Expected 3 questions, got %d", stats.Questions)
	}
	if stats.ShortestQ != 4 {
		t.Errorf("Expected shortest question 4 chars, got %d", stats.ShortestQ)
	}
	if stats.LongestQ != len("What is the capital of France?") {
		t.Errorf("Expected longest question %d chars, got %d", len("What is the capital of France?"), stats.LongestQ)
	}
	if stats.ShortestA != 1 || stats.LongestA != 5 {
		t.Errorf("Expected answer lengths 1-5, got %d-%d", stats.ShortestA, stats.LongestA)
	}

	wantAvg := float64(1+5+1) / 3
	if stats.AvgAnswerL != wantAvg {
		t.Errorf("Expected avg answer length %.2f, got %.2f", wantAvg, stats.AvgAnswerL)
	}
}

func TestAnalyzeSetEmpty(t *testing.T) {
	stats := analyzeSet("empty", nil)
	if stats.Questions != 0 {
		t.Errorf("Expected 0 questions, got %d", stats.Questions)
	}
}

func TestAnalyzeSetSingle(t *testing.T) {
	stats := analyzeSet("one", []quiz.Question{{Text: "q?", Answer: "a"}})
	if stats.ShortestQ != 2 || stats.LongestQ != 2 {
		t.Errorf("Expected question lengths 2-2, got %d-%d", stats.ShortestQ, stats.LongestQ)
	}
}
