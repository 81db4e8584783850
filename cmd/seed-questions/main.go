package main

import (
	"context"
	"fmt"
	"time"

	"github.com/Ayushant/skillspan-hub/internal/config"
	"github.com/Ayushant/skillspan-hub/internal/database"
	"github.com/Ayushant/skillspan-hub/internal/logger"
	"github.com/Ayushant/skillspan-hub/internal/model"
	"github.com/Ayushant/skillspan-hub/internal/repository"
)

// seedQuestions is a small starter bank covering each category so a fresh
// install has something to grant sessions against.
var seedQuestions = []model.QuizQuestion{
	{
		Title:         "Launch window alignment",
		Description:   "A Mars transfer launch window opens roughly every 26 months. What orbital relationship does the window wait for?",
		OptionA:       "Earth and Mars at opposition",
		OptionB:       "Hohmann transfer phase angle between Earth and Mars",
		OptionC:       "Mars perihelion passage",
		OptionD:       "Solar conjunction",
		CorrectAnswer: model.OptionB,
		Category:      "mission-planning",
		Difficulty:    2,
	},
	{
		Title:         "Habitat pressure loss",
		Description:   "During a slow cabin depressurization, which action takes priority?",
		OptionA:       "Radio mission control",
		OptionB:       "Locate and patch the leak",
		OptionC:       "Don pressure suits and isolate the affected module",
		OptionD:       "Vent the module completely",
		CorrectAnswer: model.OptionC,
		Category:      "life-support",
		Difficulty:    1,
	},
	{
		Title:         "Regolith water extraction",
		Description:   "Which process extracts water from hydrated Martian regolith?",
		OptionA:       "Electrolysis",
		OptionB:       "Thermal baking and condensation",
		OptionC:       "Reverse osmosis",
		OptionD:       "Sublimation trapping",
		CorrectAnswer: model.OptionB,
		Category:      "resource-utilization",
		Difficulty:    2,
	},
	{
		Title:         "Crew radiation budget",
		Description:   "A solar particle event is forecast during surface operations. What is the standard crew response?",
		OptionA:       "Continue EVA with dosimeter checks",
		OptionB:       "Shelter behind the rover",
		OptionC:       "Return to the habitat storm shelter",
		OptionD:       "Deploy a portable shield tent",
		CorrectAnswer: model.OptionC,
		Category:      "crew-safety",
		Difficulty:    1,
	},
	{
		Title:         "Communications delay",
		Description:   "One-way light time between Earth and Mars at maximum separation is closest to which value?",
		OptionA:       "4 minutes",
		OptionB:       "12 minutes",
		OptionC:       "22 minutes",
		OptionD:       "45 minutes",
		CorrectAnswer: model.OptionC,
		Category:      "communications",
		Difficulty:    1,
	},
}

func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	questionRepo := repository.NewQuestionRepository(pool)

	existing, err := questionRepo.Count(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to count questions")
	}
	if existing > 0 {
		fmt.Printf("Question bank already has %d questions, nothing to do\n", existing)
		return
	}

	fmt.Printf("=== Seeding %d Questions ===\n", len(seedQuestions))

	created := 0
	for i := range seedQuestions {
		q := seedQuestions[i]
		if err := questionRepo.Create(ctx, &q); err != nil {
			log.Error().Err(err).Str("title", q.Title).Msg("Failed to create question")
			continue
		}
		created++
		fmt.Printf("  [%d/%d] %s\n", created, len(seedQuestions), q.Title)
	}

	fmt.Printf("Done. Created %d questions\n", created)
}
