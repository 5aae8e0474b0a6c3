package main

import (
	"log"

	"habitforge/internal/config"
	"habitforge/internal/credentials"
	"habitforge/internal/database"
	"habitforge/internal/models"
	"habitforge/internal/repository"
)

// Seeds a fresh database with the starter content catalog: one published
// module per habit category, the badge catalog, and a demo family with one
// child so a local build is usable immediately. Running against a non-empty
// database adds duplicate content, so this tool is for fresh setups only.
func main() {
	cfg := config.Load()

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	moduleRepo := repository.NewModuleRepository(db)
	badgeRepo := repository.NewBadgeRepository(db)
	childRepo := repository.NewChildRepository(db)

	seedModules(moduleRepo)
	seedBadges(badgeRepo)
	seedDemoFamily(childRepo)

	log.Println("Seed complete")
}

func seedModules(repo *repository.ModuleRepository) {
	modules := []models.ContentModule{
		{
			Title:    "Sparkling Smiles",
			Category: models.CategoryHygiene,
			MinAge:   4, MaxAge: 8,
			Activities: []models.Activity{
				{Title: "Two-Minute Toothbrushing", Type: "timer", DurationMinutes: 2, Points: 10,
					Steps: []string{"Wet your brush", "Pea-sized toothpaste", "Brush every side for the whole song", "Rinse and smile"}},
				{Title: "Hand Washing Hero", Type: "checklist", DurationMinutes: 1, Points: 10,
					Steps: []string{"Soap up", "Scrub while singing happy birthday twice", "Rinse", "Dry with a clean towel"}},
				{Title: "Tidy-Up Time", Type: "checklist", DurationMinutes: 5, Points: 15,
					Steps: []string{"Pick up toys", "Clothes in the basket", "Make your bed"}},
			},
		},
		{
			Title:    "Rainbow Plates",
			Category: models.CategoryNutrition,
			MinAge:   4, MaxAge: 8,
			Activities: []models.Activity{
				{Title: "Try a New Veggie", Type: "challenge", DurationMinutes: 10, Points: 20,
					Steps: []string{"Pick a vegetable you have not tried", "Take three bites", "Describe how it tastes"}},
				{Title: "Water First", Type: "checklist", DurationMinutes: 1, Points: 5,
					Steps: []string{"Drink a glass of water before your snack"}},
				{Title: "Build a Rainbow Plate", Type: "challenge", DurationMinutes: 15, Points: 20,
					Steps: []string{"Find foods of three different colors", "Arrange them on your plate", "Eat the rainbow"}},
			},
		},
		{
			Title:    "Sleepy Time Routine",
			Category: models.CategorySleep,
			MinAge:   4, MaxAge: 8,
			Activities: []models.Activity{
				{Title: "Screens Off Wind-Down", Type: "timer", DurationMinutes: 30, Points: 15,
					Steps: []string{"Put screens away", "Pick a quiet activity", "Keep it calm until bedtime"}},
				{Title: "Bedtime Checklist", Type: "checklist", DurationMinutes: 10, Points: 10,
					Steps: []string{"Brush teeth", "Pajamas on", "Pick tomorrow's clothes", "Lights out on time"}},
				{Title: "Story and Snuggle", Type: "challenge", DurationMinutes: 15, Points: 10,
					Steps: []string{"Choose a book", "Read or listen to one story", "Say goodnight"}},
			},
		},
		{
			Title:    "Move and Groove",
			Category: models.CategoryMovement,
			MinAge:   4, MaxAge: 8,
			Activities: []models.Activity{
				{Title: "Morning Stretch", Type: "timer", DurationMinutes: 5, Points: 10,
					Steps: []string{"Reach for the sky", "Touch your toes", "Five big arm circles each way"}},
				{Title: "Dance Party", Type: "timer", DurationMinutes: 10, Points: 15,
					Steps: []string{"Pick a favorite song", "Dance until it ends", "Bonus song if you are still going"}},
				{Title: "Outdoor Adventure", Type: "challenge", DurationMinutes: 20, Points: 20,
					Steps: []string{"Go outside", "Run, bike, or play for twenty minutes"}},
			},
		},
		{
			Title:    "Focus Power",
			Category: models.CategoryFocus,
			MinAge:   5, MaxAge: 9,
			Activities: []models.Activity{
				{Title: "Quiet Minute", Type: "timer", DurationMinutes: 1, Points: 10,
					Steps: []string{"Sit comfortably", "Close your eyes", "Count ten slow breaths"}},
				{Title: "One Thing at a Time", Type: "challenge", DurationMinutes: 15, Points: 15,
					Steps: []string{"Pick one task", "Put everything else away", "Finish before starting anything new"}},
				{Title: "Puzzle Time", Type: "challenge", DurationMinutes: 15, Points: 15,
					Steps: []string{"Choose a puzzle or brain game", "Work on it without stopping", "Show someone what you solved"}},
			},
		},
		{
			Title:    "Kindness Counts",
			Category: models.CategoryKindness,
			MinAge:   4, MaxAge: 9,
			Activities: []models.Activity{
				{Title: "Secret Good Deed", Type: "challenge", DurationMinutes: 10, Points: 20,
					Steps: []string{"Do something helpful without being asked", "Keep it a surprise"}},
				{Title: "Three Thank-Yous", Type: "checklist", DurationMinutes: 5, Points: 10,
					Steps: []string{"Thank three different people today", "Tell them why"}},
				{Title: "Share Something", Type: "challenge", DurationMinutes: 10, Points: 15,
					Steps: []string{"Pick a toy, snack, or game", "Share it with someone"}},
			},
		},
	}

	for i := range modules {
		modules[i].Status = models.ModulePublished
		modules[i].Version = 1
		created, err := repo.CreateModule(&modules[i])
		if err != nil {
			log.Fatalf("Failed to seed module %q: %v", modules[i].Title, err)
		}
		log.Printf("Seeded module %q (%s) with %d activities", created.Title, created.Category, len(created.Activities))
	}
}

func seedBadges(repo *repository.BadgeRepository) {
	badges := []models.Badge{
		{Name: "First Steps", Description: "Complete your first module", Icon: "footprints",
			Kind: models.BadgeModuleCount, Threshold: 1},
		{Name: "Habit Builder", Description: "Complete five modules", Icon: "hammer",
			Kind: models.BadgeModuleCount, Threshold: 5},
		{Name: "On a Roll", Description: "Keep a three day streak", Icon: "flame",
			Kind: models.BadgeStreakLength, Threshold: 3},
		{Name: "Unstoppable", Description: "Keep a seven day streak", Icon: "rocket",
			Kind: models.BadgeStreakLength, Threshold: 7},
		{Name: "Streak Legend", Description: "Keep a thirty day streak", Icon: "crown",
			Kind: models.BadgeStreakLength, Threshold: 30},
		{Name: "Busy Bee", Description: "Complete ten activities", Icon: "bee",
			Kind: models.BadgeActivityCount, Threshold: 10},
		{Name: "Activity Ace", Description: "Complete fifty activities", Icon: "medal",
			Kind: models.BadgeActivityCount, Threshold: 50},
		{Name: "Sparkle Champion", Description: "Finish every hygiene module", Icon: "sparkles",
			Kind: models.BadgeCategoryMilestone, Threshold: 100, Category: models.CategoryHygiene},
		{Name: "Healthy Eater", Description: "Finish every nutrition module", Icon: "apple",
			Kind: models.BadgeCategoryMilestone, Threshold: 100, Category: models.CategoryNutrition},
		{Name: "Dream Keeper", Description: "Finish every sleep module", Icon: "moon",
			Kind: models.BadgeCategoryMilestone, Threshold: 100, Category: models.CategorySleep},
		{Name: "Motion Master", Description: "Finish every movement module", Icon: "bolt",
			Kind: models.BadgeCategoryMilestone, Threshold: 100, Category: models.CategoryMovement},
		{Name: "Deep Thinker", Description: "Finish every focus module", Icon: "brain",
			Kind: models.BadgeCategoryMilestone, Threshold: 100, Category: models.CategoryFocus},
		{Name: "Heart of Gold", Description: "Finish every kindness module", Icon: "heart",
			Kind: models.BadgeCategoryMilestone, Threshold: 100, Category: models.CategoryKindness},
	}

	for _, badge := range badges {
		if _, err := repo.CreateBadge(&badge); err != nil {
			log.Fatalf("Failed to seed badge %q: %v", badge.Name, err)
		}
	}
	log.Printf("Seeded %d badges", len(badges))
}

func seedDemoFamily(repo *repository.ChildRepository) {
	code, err := credentials.GenerateFamilyCode()
	if err != nil {
		log.Fatalf("Failed to generate family code: %v", err)
	}

	family, err := repo.CreateFamily(code, "demo@example.com")
	if err != nil {
		log.Fatalf("Failed to seed family: %v", err)
	}

	child, err := repo.CreateChild(family.ID, "Demo Kid", 6, "teal")
	if err != nil {
		log.Fatalf("Failed to seed child: %v", err)
	}

	log.Printf("Seeded demo family: code=%s child=%d (%s)", family.FamilyCode, child.ID, child.Name)
}
