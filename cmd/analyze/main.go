// Command analyze prints quick, human-readable statistics about the
// question sets in a bank directory: set sizes, question and answer
// length ranges, and questions that repeat across sets. It is a
// companion to the validate command, which checks format correctness.
//
// Usage: analyze [dir]   (default ./questions)
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/quizroom/quizroom/game/bank"
	"github.com/quizroom/quizroom/game/quiz"
)

// SetStats summarizes one question set.
type SetStats struct {
	Name       string
	Questions  int
	ShortestQ  int
	LongestQ   int
	ShortestA  int
	LongestA   int
	AvgAnswerL float64
}

func main() {
	dir := "./questions"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	mgr, err := bank.NewManager(dir)
	if err != nil {
		fmt.Printf("Error loading question bank: %v\n", err)
		os.Exit(1)
	}

	sets := mgr.List()
	if len(sets) == 0 {
		fmt.Printf("No question sets found in %s\n", dir)
		os.Exit(1)
	}
	sort.Slice(sets, func(i, j int) bool { return sets[i].Name < sets[j].Name })

	// Questions seen across sets, for overlap reporting
	seenIn := make(map[string][]string)

	for _, info := range sets {
		fmt.Printf("\n=== Analyzing %s ===\n", info.Name)
		questions, err := mgr.Load(info.Name)
		if err != nil {
			fmt.Printf("Error loading set: %v\n", err)
			continue
		}

		stats := analyzeSet(info.Name, questions)
		printStats(stats)

		for _, q := range questions {
			seenIn[q.Text] = append(seenIn[q.Text], info.Name)
		}
	}

	printOverlaps(seenIn)
}

// analyzeSet computes length statistics for one parsed set.
func analyzeSet(name string, questions []quiz.Question) SetStats {
	stats := SetStats{Name: name, Questions: len(questions)}
	if len(questions) == 0 {
		return stats
	}

	stats.ShortestQ = len(questions[0].Text)
	stats.LongestQ = stats.ShortestQ
	stats.ShortestA = len(questions[0].Answer)
	stats.LongestA = stats.ShortestA
	totalA := 0

	for _, q := range questions {
		if l := len(q.Text); l < stats.ShortestQ {
			stats.ShortestQ = l
		} else if l > stats.LongestQ {
			stats.LongestQ = l
		}
		if l := len(q.Answer); l < stats.ShortestA {
			stats.ShortestA = l
		} else if l > stats.LongestA {
			stats.LongestA = l
		}
		totalA += len(q.Answer)
	}
	stats.AvgAnswerL = float64(totalA) / float64(len(questions))

	return stats
}

func printStats(stats SetStats) {
	fmt.Printf("Questions: %d\n", stats.Questions)
	fmt.Printf("Question length: %d-%d chars\n", stats.ShortestQ, stats.LongestQ)
	fmt.Printf("Answer length: %d-%d chars (avg %.1f)\n", stats.ShortestA, stats.LongestA, stats.AvgAnswerL)
}

// printOverlaps reports questions that appear in more than one set.
func printOverlaps(seenIn map[string][]string) {
	var shared []string
	for text, sets := range seenIn {
		if len(sets) > 1 {
			shared = append(shared, text)
		}
	}
	if len(shared) == 0 {
		return
	}
	sort.Strings(shared)

	fmt.Printf("\n=== Questions shared across sets ===\n")
	for _, text := range shared {
		sets := seenIn[text]
		sort.Strings(sets)
		fmt.Printf("%q appears in: %v\n", text, sets)
	}
}
