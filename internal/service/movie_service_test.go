package service_test

import (
	"os"
	"testing"
	"time"

	"github.com/ratingtales/rating-tales/internal/models"
	"github.com/ratingtales/rating-tales/internal/repository"
	"github.com/ratingtales/rating-tales/internal/service"
	"github.com/ratingtales/rating-tales/internal/testutil"
	"github.com/ratingtales/rating-tales/internal/upload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type movieFixture struct {
	db      *gorm.DB
	movies  *service.MovieService
	reviews *service.ReviewService
	uploads *upload.Store
	owner   *models.User
	other   *models.User
}

func setupMovieFixture(t *testing.T) *movieFixture {
	td := testutil.SetupTestDatabase(t)
	t.Cleanup(func() { td.Teardown(t) })

	uploads, err := upload.NewStore(t.TempDir())
	require.NoError(t, err)

	owner, err := testutil.CreateTestUser("owner", "owner@example.com", "Test123456")
	require.NoError(t, err)
	require.NoError(t, td.DB.Create(owner).Error)

	other, err := testutil.CreateTestUser("other", "other@example.com", "Test123456")
	require.NoError(t, err)
	require.NoError(t, td.DB.Create(other).Error)

	movieRepo := repository.NewMovieRepository(td.DB)
	reviewRepo := repository.NewReviewRepository(td.DB)

	return &movieFixture{
		db:      td.DB,
		movies:  service.NewMovieService(movieRepo, reviewRepo, uploads),
		reviews: service.NewReviewService(reviewRepo, movieRepo),
		uploads: uploads,
		owner:   owner,
		other:   other,
	}
}

func validMovieInput() service.MovieInput {
	return service.MovieInput{
		Title:           "Interconnected",
		Summary:         "A story about everything being connected.",
		ReleaseDate:     time.Date(2021, 3, 12, 0, 0, 0, 0, time.UTC),
		DurationHours:   2,
		DurationMinutes: 10,
		AgeRating:       models.AgeRatingPG13,
		Genres:          []string{"drama", "sci-fi"},
		TrailerURL:      "https://example.com/trailer",
		Poster: &service.FileUpload{
			Data:        []byte("poster bytes"),
			ContentType: "image/jpeg",
			Filename:    "poster.jpg",
		},
	}
}

// blockGenreInserts installs a trigger that aborts every insert into the
// genre-tag table, forcing the surrounding transaction to roll back while
// reads and deletes keep working.
func blockGenreInserts(t *testing.T, db *gorm.DB) {
	require.NoError(t, db.Exec(
		`CREATE TRIGGER block_genre_inserts BEFORE INSERT ON movie_genres
		 BEGIN SELECT RAISE(ABORT, 'genre insert blocked'); END`,
	).Error)
}

func posterEntries(t *testing.T, f *movieFixture) []os.DirEntry {
	entries, err := os.ReadDir(f.uploads.Dir(upload.KindPoster))
	require.NoError(t, err)
	return entries
}

func TestCreate_StoresMovieGenresAndPoster(t *testing.T) {
	f := setupMovieFixture(t)

	movie, err := f.movies.Create(validMovieInput(), f.owner.ID)
	require.NoError(t, err)

	assert.Equal(t, f.owner.ID, movie.UploadedBy)
	assert.NotEmpty(t, movie.PosterImage)
	assert.FileExists(t, f.uploads.Path(upload.KindPoster, movie.PosterImage))

	detail, err := f.movies.Get(movie.ID)
	require.NoError(t, err)
	assert.Equal(t, "drama, sci-fi", detail.GenreList)
	assert.Equal(t, "N/A", detail.AverageRating)
	assert.Equal(t, "owner", detail.UploaderName)
}

func TestCreate_ValidationErrors(t *testing.T) {
	f := setupMovieFixture(t)

	cases := []struct {
		name   string
		mutate func(*service.MovieInput)
	}{
		{"missing title", func(in *service.MovieInput) { in.Title = " " }},
		{"missing summary", func(in *service.MovieInput) { in.Summary = "" }},
		{"zero release date", func(in *service.MovieInput) { in.ReleaseDate = time.Time{} }},
		{"zero duration", func(in *service.MovieInput) { in.DurationHours = 0; in.DurationMinutes = 0 }},
		{"bad age rating", func(in *service.MovieInput) { in.AgeRating = "PG-18" }},
		{"no genres", func(in *service.MovieInput) { in.Genres = nil }},
		{"unknown genre", func(in *service.MovieInput) { in.Genres = []string{"romance"} }},
		{"missing poster", func(in *service.MovieInput) { in.Poster = nil }},
		{"trailer url and file", func(in *service.MovieInput) {
			in.TrailerFile = &service.FileUpload{Data: []byte("v"), ContentType: "video/mp4", Filename: "t.mp4"}
		}},
	}

	for _, tc := range cases {
		in := validMovieInput()
		tc.mutate(&in)

		_, err := f.movies.Create(in, f.owner.ID)

		var verr *service.ValidationError
		assert.ErrorAs(t, err, &verr, tc.name)
	}

	// Nothing was written for any rejected input
	assert.Empty(t, posterEntries(t, f))
}

func TestCreate_InvalidPosterTypeRejectedBeforeWrite(t *testing.T) {
	f := setupMovieFixture(t)

	in := validMovieInput()
	in.Poster = &service.FileUpload{Data: []byte("%PDF-"), ContentType: "application/pdf", Filename: "poster.pdf"}

	_, err := f.movies.Create(in, f.owner.ID)

	assert.ErrorIs(t, err, upload.ErrInvalidType)
	assert.Empty(t, posterEntries(t, f))
}

func TestCreate_DBFailureDeletesStoredPoster(t *testing.T) {
	f := setupMovieFixture(t)

	// Sabotage the genre-tag insert so the transaction rolls back after
	// the poster already hit the disk
	blockGenreInserts(t, f.db)

	_, err := f.movies.Create(validMovieInput(), f.owner.ID)
	require.Error(t, err)

	assert.Empty(t, posterEntries(t, f), "compensation must delete the stored poster")

	var count int64
	require.NoError(t, f.db.Model(&models.Movie{}).Count(&count).Error)
	assert.Equal(t, int64(0), count, "movie row must not survive the rollback")
}

func TestUpdate_OwnerReplacesGenresAndPoster(t *testing.T) {
	f := setupMovieFixture(t)

	movie, err := f.movies.Create(validMovieInput(), f.owner.ID)
	require.NoError(t, err)
	oldPoster := movie.PosterImage

	in := validMovieInput()
	in.Title = "Interconnected: Director's Cut"
	in.Genres = []string{"action"}
	in.Poster = &service.FileUpload{Data: []byte("new poster"), ContentType: "image/png", Filename: "new.png"}

	updated, err := f.movies.Update(movie.ID, in, f.owner.ID)
	require.NoError(t, err)

	assert.Equal(t, "Interconnected: Director's Cut", updated.Title)
	assert.NotEqual(t, oldPoster, updated.PosterImage)
	assert.NoFileExists(t, f.uploads.Path(upload.KindPoster, oldPoster), "replaced poster is deleted after commit")
	assert.FileExists(t, f.uploads.Path(upload.KindPoster, updated.PosterImage))

	detail, err := f.movies.Get(movie.ID)
	require.NoError(t, err)
	assert.Equal(t, "action", detail.GenreList, "genre set is fully replaced")
}

func TestUpdate_NonOwnerDenied(t *testing.T) {
	f := setupMovieFixture(t)

	movie, err := f.movies.Create(validMovieInput(), f.owner.ID)
	require.NoError(t, err)

	in := validMovieInput()
	in.Title = "Hijacked"

	_, err = f.movies.Update(movie.ID, in, f.other.ID)
	assert.ErrorIs(t, err, service.ErrPermissionDenied)
}

func TestUpdate_TrailerSourceExclusive(t *testing.T) {
	f := setupMovieFixture(t)

	movie, err := f.movies.Create(validMovieInput(), f.owner.ID)
	require.NoError(t, err)
	require.NotEmpty(t, movie.TrailerURL)

	// Switching to an uploaded trailer clears the URL
	in := validMovieInput()
	in.TrailerURL = ""
	in.TrailerFile = &service.FileUpload{Data: []byte("video"), ContentType: "video/mp4", Filename: "t.mp4"}

	updated, err := f.movies.Update(movie.ID, in, f.owner.ID)
	require.NoError(t, err)
	assert.Empty(t, updated.TrailerURL)
	assert.NotEmpty(t, updated.TrailerFile)

	// And switching back to a URL clears (and deletes) the file
	trailerFile := updated.TrailerFile
	in = validMovieInput()
	in.TrailerURL = "https://example.com/new-trailer"

	updated, err = f.movies.Update(movie.ID, in, f.owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/new-trailer", updated.TrailerURL)
	assert.Empty(t, updated.TrailerFile)
	assert.NoFileExists(t, f.uploads.Path(upload.KindTrailer, trailerFile))
}

func TestUpdate_DBFailureLeavesNoOrphanAndKeepsOriginalPoster(t *testing.T) {
	f := setupMovieFixture(t)

	movie, err := f.movies.Create(validMovieInput(), f.owner.ID)
	require.NoError(t, err)
	originalPoster := movie.PosterImage

	// Break the genre reinsert so the update transaction rolls back after
	// the replacement poster was written
	blockGenreInserts(t, f.db)

	in := validMovieInput()
	in.Poster = &service.FileUpload{Data: []byte("replacement"), ContentType: "image/png", Filename: "replacement.png"}

	_, err = f.movies.Update(movie.ID, in, f.owner.ID)
	require.Error(t, err)

	// Only the original poster remains on disk
	entries := posterEntries(t, f)
	require.Len(t, entries, 1)
	assert.Equal(t, originalPoster, entries[0].Name())

	// And the record still references it
	var storedPoster string
	require.NoError(t, f.db.Model(&models.Movie{}).
		Select("poster_image").
		Where("id = ?", movie.ID).
		Scan(&storedPoster).Error)
	assert.Equal(t, originalPoster, storedPoster)
}

func TestDelete_CascadesAndRemovesFiles(t *testing.T) {
	f := setupMovieFixture(t)

	movie, err := f.movies.Create(validMovieInput(), f.owner.ID)
	require.NoError(t, err)

	require.NoError(t, f.reviews.Submit(movie.ID, f.other.ID, 4.0, "Nice"))
	favoriteRepo := repository.NewFavoriteRepository(f.db)
	require.NoError(t, favoriteRepo.Add(movie.ID, f.other.ID))

	require.NoError(t, f.movies.Delete(movie.ID, f.owner.ID))

	// No orphaned rows reference the deleted movie
	for table, model := range map[string]interface{}{
		"movie_genres": &models.MovieGenre{},
		"reviews":      &models.Review{},
		"favorites":    &models.Favorite{},
	} {
		var count int64
		require.NoError(t, f.db.Model(model).Where("movie_id = ?", movie.ID).Count(&count).Error)
		assert.Equal(t, int64(0), count, "orphaned rows in %s", table)
	}

	assert.NoFileExists(t, f.uploads.Path(upload.KindPoster, movie.PosterImage))

	_, err = f.movies.Get(movie.ID)
	assert.ErrorIs(t, err, service.ErrMovieNotFound)
}

func TestDelete_NonOwnerDenied(t *testing.T) {
	f := setupMovieFixture(t)

	movie, err := f.movies.Create(validMovieInput(), f.owner.ID)
	require.NoError(t, err)

	err = f.movies.Delete(movie.ID, f.other.ID)
	assert.ErrorIs(t, err, service.ErrPermissionDenied)

	// Still there
	_, err = f.movies.Get(movie.ID)
	assert.NoError(t, err)
}

func TestListAll_NewestFirstWithAnnotations(t *testing.T) {
	f := setupMovieFixture(t)

	first, err := f.movies.Create(validMovieInput(), f.owner.ID)
	require.NoError(t, err)

	in := validMovieInput()
	in.Title = "Second Feature"
	in.Genres = []string{"comedy"}
	second, err := f.movies.Create(in, f.other.ID)
	require.NoError(t, err)

	// Make creation order observable under SQLite's second-granularity
	require.NoError(t, f.db.Model(&models.Movie{}).Where("id = ?", first.ID).
		Update("created_at", time.Now().Add(-time.Hour)).Error)

	require.NoError(t, f.reviews.Submit(first.ID, f.other.ID, 3.0, ""))
	require.NoError(t, f.reviews.Submit(first.ID, f.owner.ID, 4.0, ""))

	list, err := f.movies.ListAll()
	require.NoError(t, err)
	require.Len(t, list, 2)

	assert.Equal(t, second.ID, list[0].ID, "newest first")
	assert.Equal(t, first.ID, list[1].ID)
	assert.Equal(t, "3.5", list[1].AverageRating)
	assert.Equal(t, "N/A", list[0].AverageRating)
	assert.Equal(t, "drama, sci-fi", list[1].GenreList)
}

func TestListByOwner(t *testing.T) {
	f := setupMovieFixture(t)

	_, err := f.movies.Create(validMovieInput(), f.owner.ID)
	require.NoError(t, err)

	in := validMovieInput()
	in.Title = "Someone Else's"
	_, err = f.movies.Create(in, f.other.ID)
	require.NoError(t, err)

	mine, err := f.movies.ListByOwner(f.owner.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, f.owner.ID, mine[0].UploadedBy)
}
