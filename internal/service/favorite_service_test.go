package service_test

import (
	"testing"

	"github.com/ratingtales/rating-tales/internal/models"
	"github.com/ratingtales/rating-tales/internal/repository"
	"github.com/ratingtales/rating-tales/internal/service"
	"github.com/ratingtales/rating-tales/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type favoriteFixture struct {
	db        *gorm.DB
	favorites *service.FavoriteService
	reviews   *service.ReviewService
	user      *models.User
	movie     *models.Movie
}

func setupFavoriteFixture(t *testing.T) *favoriteFixture {
	td := testutil.SetupTestDatabase(t)
	t.Cleanup(func() { td.Teardown(t) })

	user, err := testutil.DefaultTestUser()
	require.NoError(t, err)
	require.NoError(t, td.DB.Create(user).Error)

	movie := testutil.CreateTestMovie(user.ID, "Favorite Me")
	require.NoError(t, td.DB.Create(movie).Error)

	favoriteRepo := repository.NewFavoriteRepository(td.DB)
	movieRepo := repository.NewMovieRepository(td.DB)
	reviewRepo := repository.NewReviewRepository(td.DB)

	return &favoriteFixture{
		db:        td.DB,
		favorites: service.NewFavoriteService(favoriteRepo, movieRepo, reviewRepo),
		reviews:   service.NewReviewService(reviewRepo, movieRepo),
		user:      user,
		movie:     movie,
	}
}

func favoriteCount(t *testing.T, db *gorm.DB) int64 {
	var count int64
	require.NoError(t, db.Model(&models.Favorite{}).Count(&count).Error)
	return count
}

func TestAdd_ThenAdd_LeavesSingleRow(t *testing.T) {
	f := setupFavoriteFixture(t)

	require.NoError(t, f.favorites.Add(f.movie.ID, f.user.ID))
	require.NoError(t, f.favorites.Add(f.movie.ID, f.user.ID))

	assert.Equal(t, int64(1), favoriteCount(t, f.db))

	favorited, err := f.favorites.IsFavorited(f.movie.ID, f.user.ID)
	require.NoError(t, err)
	assert.True(t, favorited)
}

func TestAdd_UnknownMovie(t *testing.T) {
	f := setupFavoriteFixture(t)

	ghost := testutil.CreateTestMovie(f.user.ID, "Ghost")
	err := f.favorites.Add(ghost.ID, f.user.ID)
	assert.ErrorIs(t, err, service.ErrMovieNotFound)
}

func TestRemove_Idempotent(t *testing.T) {
	f := setupFavoriteFixture(t)

	require.NoError(t, f.favorites.Add(f.movie.ID, f.user.ID))

	removed, err := f.favorites.Remove(f.movie.ID, f.user.ID)
	require.NoError(t, err)
	assert.True(t, removed)
	assert.Equal(t, int64(0), favoriteCount(t, f.db))

	// Removing a non-favorited movie succeeds but reports nothing removed
	removed, err = f.favorites.Remove(f.movie.ID, f.user.ID)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, int64(0), favoriteCount(t, f.db))
}

func TestIsFavorited_FalseByDefault(t *testing.T) {
	f := setupFavoriteFixture(t)

	favorited, err := f.favorites.IsFavorited(f.movie.ID, f.user.ID)
	require.NoError(t, err)
	assert.False(t, favorited)
}

func TestList_AnnotatedLikeCatalog(t *testing.T) {
	f := setupFavoriteFixture(t)

	// Tag and rate the movie so annotations have something to show
	require.NoError(t, f.db.Create(&models.MovieGenre{MovieID: f.movie.ID, Genre: "action"}).Error)
	require.NoError(t, f.db.Create(&models.MovieGenre{MovieID: f.movie.ID, Genre: "sci-fi"}).Error)
	require.NoError(t, f.reviews.Submit(f.movie.ID, f.user.ID, 4.0, ""))

	require.NoError(t, f.favorites.Add(f.movie.ID, f.user.ID))

	list, err := f.favorites.List(f.user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, f.movie.ID, list[0].ID)
	assert.Contains(t, list[0].GenreList, "action")
	assert.Contains(t, list[0].GenreList, "sci-fi")
	assert.Equal(t, "4.0", list[0].AverageRating)
}

func TestList_EmptyWithoutFavorites(t *testing.T) {
	f := setupFavoriteFixture(t)

	list, err := f.favorites.List(f.user.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}
