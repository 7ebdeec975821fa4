package services

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"profileapp/internal/config"
	"profileapp/internal/models"
)

// MathQuestionServiceInterface defines the interface for the deterministic
// fallback question generator.
type MathQuestionServiceInterface interface {
	Generate() *models.Question
}

// MathQuestionService produces a random arithmetic multiple-choice question
// without touching any external service, so a question can always be served.
type MathQuestionService struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewMathQuestionService creates a generator seeded from the current time.
func NewMathQuestionService() *MathQuestionService {
	return NewMathQuestionServiceWithRand(rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewMathQuestionServiceWithRand creates a generator using the provided
// random source, letting tests fix the sequence.
func NewMathQuestionServiceWithRand(rng *rand.Rand) *MathQuestionService {
	return &MathQuestionService{rng: rng}
}

var mathOperators = []string{"+", "-", "*", "/"}

// Generate returns a question of the form "a op b = ?" with the correct
// value among three shuffled numeric options and the fixed "other" option
// appended last. Division truncates toward zero, so a dividend smaller than
// the divisor yields a correct answer of 0. Distractors are drawn from
// [1,40] without deduplication and may coincide with the correct answer.
func (s *MathQuestionService) Generate() *models.Question {
	s.mu.Lock()
	defer s.mu.Unlock()

	num1 := s.rng.Intn(20) + 1
	num2 := s.rng.Intn(20) + 1
	operator := mathOperators[s.rng.Intn(len(mathOperators))]

	var correct int
	switch operator {
	case "+":
		correct = num1 + num2
	case "-":
		correct = num1 - num2
	case "*":
		correct = num1 * num2
	case "/":
		correct = num1 / num2
	}

	options := []string{
		fmt.Sprintf("%d", correct),
		fmt.Sprintf("%d", s.rng.Intn(40)+1),
		fmt.Sprintf("%d", s.rng.Intn(40)+1),
	}
	s.rng.Shuffle(len(options), func(i, j int) {
		options[i], options[j] = options[j], options[i]
	})

	return &models.Question{
		Text:    fmt.Sprintf("%d %s %d = ?", num1, operator, num2),
		Options: append(options, config.OtherOption),
	}
}
