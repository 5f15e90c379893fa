// Command seed-assessments inserts a sample published assessment for local
// development and e2e runs.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/learnlytics/learnlytics-backend/internal/config"
	"github.com/learnlytics/learnlytics-backend/internal/database"
	"github.com/learnlytics/learnlytics-backend/internal/logger"
	"github.com/learnlytics/learnlytics-backend/internal/model"
	"github.com/learnlytics/learnlytics-backend/internal/repository"
)

func main() {
	var (
		title    = flag.String("title", "Intro to JavaScript", "Assessment title")
		duration = flag.Int("duration", 30, "Duration in minutes")
	)
	flag.Parse()

	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer rdb.Close()

	assessmentRepo := repository.NewAssessmentRepository(pool, rdb, cfg, log)

	assessment := &model.Assessment{
		ID:              uuid.New(),
		Title:           *title,
		Description:     "Seeded assessment with one MCQ and one coding question.",
		Skills:          []string{"javascript", "fundamentals"},
		DurationMinutes: *duration,
		Published:       true,
		Questions: []model.Question{
			{
				ID:             uuid.New(),
				QuestionType:   model.QuestionTypeMcq,
				Prompt:         "Which of these are JavaScript primitive types?",
				Points:         5,
				Options:        []string{"Object", "String", "Number", "Array"},
				CorrectAnswers: []int{1, 2},
				ShuffleOptions: true,
			},
			{
				ID:             uuid.New(),
				QuestionType:   model.QuestionTypeCoding,
				Prompt:         "Write a function add(a, b) that returns the sum of two numbers.",
				Points:         10,
				Language:       "JavaScript",
				StarterCode:    "function add(a, b) {\n  // your code here\n}",
				TestCases:      []string{"add(1, 2)", "add(-1, 1)"},
				ExpectedOutput: "3\n0",
			},
		},
		CreatedBy: "seed",
	}

	if err := assessmentRepo.Insert(ctx, assessment); err != nil {
		log.Error().Err(err).Msg("Seed insert failed")
		os.Exit(1)
	}

	fmt.Printf("Seeded assessment %s (%q, %d minutes)\n", assessment.ID, assessment.Title, assessment.DurationMinutes)
}
