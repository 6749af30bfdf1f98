// Command validate provides a small CLI that lints question files in a
// bank directory before they are served. It checks:
//   - Every non-empty line splits into exactly two fields on ">|<"
//   - Files contain at least one question
//   - Duplicate question texts within a file (warning only)
//   - Empty question or answer fields (warning only)
//
// Usage: validate [dir]   (default ./questions)
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/quizroom/quizroom/game/quiz"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Notes contains informational messages and warnings;
// otherwise it accumulates the errors that were found.
type ValidationResult struct {
	File  string
	Valid bool
	Notes []string
}

// validateFile lints a single question file. It reports every bad line
// rather than stopping at the first, which the strict parser cannot do.
func validateFile(filePath string) ValidationResult {
	result := ValidationResult{
		File:  filepath.Base(filePath),
		Valid: true,
		Notes: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Notes = append(result.Notes, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	lines := strings.Split(string(data), "\n")
	seen := make(map[string]int)
	questionCount := 0
	duplicates := 0
	emptyFields := 0

	for i, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}

		fields := strings.Split(line, quiz.Delimiter)
		if len(fields) != 2 {
			result.Valid = false
			result.Notes = append(result.Notes, fmt.Sprintf(
				"Line %d: expected exactly 2 fields separated by %q, got %d", i+1, quiz.Delimiter, len(fields)))
			continue
		}
		questionCount++

		if fields[0] == "" || fields[1] == "" {
			emptyFields++
			result.Notes = append(result.Notes, fmt.Sprintf(
				"Warning line %d: empty question or answer field", i+1))
		}

		if prev, ok := seen[fields[0]]; ok {
			duplicates++
			result.Notes = append(result.Notes, fmt.Sprintf(
				"Warning line %d: duplicate question text (first seen on line %d)", i+1, prev))
		} else {
			seen[fields[0]] = i + 1
		}
	}

	if questionCount == 0 && result.Valid {
		result.Valid = false
		result.Notes = append(result.Notes, "File contains no questions")
	}

	// Cross-check with the parser the server actually uses.
	if result.Valid {
		if _, err := quiz.ParseQuestions(string(data)); err != nil {
			result.Valid = false
			result.Notes = append(result.Notes, fmt.Sprintf("Parser rejected file: %v", err))
		}
	}

	if result.Valid {
		result.Notes = append(result.Notes, fmt.Sprintf("✓ Questions: %d", questionCount))
		if duplicates > 0 {
			result.Notes = append(result.Notes, fmt.Sprintf("✓ Duplicates: %d (warnings)", duplicates))
		}
		if emptyFields > 0 {
			result.Notes = append(result.Notes, fmt.Sprintf("✓ Empty fields: %d (warnings)", emptyFields))
		}
	}

	return result
}

// main scans the bank directory for *.txt files and validates each one,
// printing a concise report and exiting with non-zero status if any are
// invalid.
func main() {
	dir := "./questions"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(dir, "*.txt"))
	if err != nil {
		fmt.Printf("Error finding question files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No question files found in %s\n", dir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateFile(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, note := range result.Notes {
				fmt.Println("  " + note)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, note := range result.Notes {
				if !strings.HasPrefix(note, "✓") {
					fmt.Println("  ❌ " + note)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All question files are valid!")
	} else {
		fmt.Println("❌ Some question files have errors")
		os.Exit(1)
	}
}
