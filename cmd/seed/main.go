package main

import (
	"log"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/ratingtales/rating-tales/internal/config"
	"github.com/ratingtales/rating-tales/internal/database"
	"github.com/ratingtales/rating-tales/internal/models"
	"github.com/ratingtales/rating-tales/internal/utils"
	"gorm.io/gorm/clause"
)

const (
	seedUserCount  = 10
	seedMovieCount = 20
	seedPassword   = "password123"
)

// Seeds demo users, movies, genre tags, reviews and favorites for local
// development. Safe to re-run: existing rows are left alone.
func main() {
	cfg := config.Load()
	database.Connect(cfg)
	database.Migrate()

	var count int64
	database.DB.Model(&models.User{}).Count(&count)
	if count > 0 {
		log.Println("Database already seeded, nothing to do")
		return
	}

	passwordHash, err := utils.HashPassword(seedPassword)
	if err != nil {
		log.Fatal("Failed to hash password:", err)
	}

	users := make([]models.User, 0, seedUserCount)
	for i := 0; i < seedUserCount; i++ {
		gender := models.GenderMale
		if gofakeit.Bool() {
			gender = models.GenderFemale
		}
		users = append(users, models.User{
			ID:           uuid.New(),
			FullName:     gofakeit.Name(),
			Username:     gofakeit.Username(),
			Email:        gofakeit.Email(),
			PasswordHash: passwordHash,
			Age:          gofakeit.Number(16, 70),
			Gender:       gender,
			Bio:          gofakeit.Sentence(12),
		})
	}
	if err := database.DB.Create(&users).Error; err != nil {
		log.Fatal("Failed to seed users:", err)
	}

	movies := make([]models.Movie, 0, seedMovieCount)
	for i := 0; i < seedMovieCount; i++ {
		owner := users[gofakeit.Number(0, len(users)-1)]
		movies = append(movies, models.Movie{
			ID:              uuid.New(),
			Title:           gofakeit.MovieName(),
			Summary:         gofakeit.Paragraph(1, 3, 12, " "),
			ReleaseDate:     gofakeit.DateRange(time.Date(1980, 1, 1, 0, 0, 0, 0, time.UTC), time.Now()),
			DurationHours:   gofakeit.Number(1, 3),
			DurationMinutes: gofakeit.Number(0, 59),
			AgeRating:       models.AgeRatings[gofakeit.Number(0, len(models.AgeRatings)-1)],
			PosterImage:     "poster_seed_placeholder.jpg",
			TrailerURL:      gofakeit.URL(),
			UploadedBy:      owner.ID,
		})
	}
	if err := database.DB.Create(&movies).Error; err != nil {
		log.Fatal("Failed to seed movies:", err)
	}

	for _, movie := range movies {
		// One to three genre tags per movie
		for i, n := 0, gofakeit.Number(1, 3); i < n; i++ {
			tag := models.MovieGenre{
				MovieID: movie.ID,
				Genre:   models.Genres[gofakeit.Number(0, len(models.Genres)-1)],
			}
			database.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&tag)
		}

		for _, user := range users {
			if gofakeit.Number(0, 2) != 0 {
				continue
			}
			review := models.Review{
				MovieID: movie.ID,
				UserID:  user.ID,
				Rating:  float64(gofakeit.Number(1, 10)) / 2,
				Comment: gofakeit.Sentence(8),
			}
			database.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&review)

			if gofakeit.Bool() {
				fav := models.Favorite{MovieID: movie.ID, UserID: user.ID}
				database.DB.Clauses(clause.OnConflict{DoNothing: true}).Create(&fav)
			}
		}
	}

	log.Printf("Seeded %d users and %d movies (password for all users: %s)", len(users), len(movies), seedPassword)
}
