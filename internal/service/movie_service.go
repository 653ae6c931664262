package service

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ratingtales/rating-tales/internal/models"
	"github.com/ratingtales/rating-tales/internal/repository"
	"github.com/ratingtales/rating-tales/internal/upload"
	"github.com/ratingtales/rating-tales/pkg/logger"
	"go.uber.org/zap"
)

// FileUpload carries one multipart file from the handler into the service.
type FileUpload struct {
	Data        []byte
	ContentType string
	Filename    string
}

type MovieService struct {
	movieRepo  *repository.MovieRepository
	reviewRepo *repository.ReviewRepository
	uploads    *upload.Store
}

func NewMovieService(movieRepo *repository.MovieRepository, reviewRepo *repository.ReviewRepository, uploads *upload.Store) *MovieService {
	return &MovieService{
		movieRepo:  movieRepo,
		reviewRepo: reviewRepo,
		uploads:    uploads,
	}
}

type MovieInput struct {
	Title           string
	Summary         string
	ReleaseDate     time.Time
	DurationHours   int
	DurationMinutes int
	AgeRating       models.AgeRating
	Genres          []string

	// Trailer source is exclusive: URL or file, never both.
	TrailerURL  string
	TrailerFile *FileUpload

	Poster *FileUpload
}

// MovieSummary is a catalog row annotated the way listings render it.
type MovieSummary struct {
	models.Movie
	GenreList     string `json:"genre_list"`
	AverageRating string `json:"average_rating"`
}

// MovieDetail adds review data to a single movie page.
type MovieDetail struct {
	MovieSummary
	UploaderName string          `json:"uploader_name"`
	Reviews      []models.Review `json:"reviews"`
}

// Create validates the attributes, stores the media files and inserts the
// movie row plus genre tags in one transaction. Files written before a
// failed commit are deleted as compensation.
func (s *MovieService) Create(in MovieInput, ownerID uuid.UUID) (*models.Movie, error) {
	if err := validateMovieInput(in, true); err != nil {
		logger.Log.Warn("Movie validation failed",
			zap.String("owner_id", ownerID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	posterRef, err := s.uploads.Save(upload.KindPoster, in.Poster.Data, in.Poster.ContentType, in.Poster.Filename)
	if err != nil {
		return nil, err
	}

	trailerRef := ""
	if in.TrailerFile != nil {
		trailerRef, err = s.uploads.Save(upload.KindTrailer, in.TrailerFile.Data, in.TrailerFile.ContentType, in.TrailerFile.Filename)
		if err != nil {
			s.compensate(upload.KindPoster, posterRef)
			return nil, err
		}
	}

	movie := &models.Movie{
		ID:              uuid.New(),
		Title:           in.Title,
		Summary:         in.Summary,
		ReleaseDate:     in.ReleaseDate,
		DurationHours:   in.DurationHours,
		DurationMinutes: in.DurationMinutes,
		AgeRating:       in.AgeRating,
		PosterImage:     posterRef,
		TrailerURL:      in.TrailerURL,
		TrailerFile:     trailerRef,
		UploadedBy:      ownerID,
	}

	if err := s.movieRepo.CreateWithGenres(movie, in.Genres); err != nil {
		// No two-phase commit across disk and DB: delete what we wrote
		s.compensate(upload.KindPoster, posterRef)
		s.compensate(upload.KindTrailer, trailerRef)
		logger.Log.Error("Failed to create movie",
			zap.String("owner_id", ownerID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	logger.Log.Info("Movie created",
		zap.String("movie_id", movie.ID.String()),
		zap.String("title", movie.Title),
		zap.String("owner_id", ownerID.String()),
	)

	return movie, nil
}

// Update applies an owner-only edit. The genre set is fully replaced, new
// media files are stored before the transaction and compensated on failure;
// replaced files are deleted only after the commit succeeds.
func (s *MovieService) Update(movieID uuid.UUID, in MovieInput, requesterID uuid.UUID) (*models.Movie, error) {
	movie, err := s.movieRepo.GetMovieByID(movieID)
	if err != nil {
		return nil, err
	}
	if movie == nil {
		return nil, ErrMovieNotFound
	}
	if movie.UploadedBy != requesterID {
		logger.Log.Warn("Movie edit denied",
			zap.String("movie_id", movieID.String()),
			zap.String("requester_id", requesterID.String()),
		)
		return nil, ErrPermissionDenied
	}

	if err := validateMovieInput(in, false); err != nil {
		return nil, err
	}

	oldPoster := movie.PosterImage
	oldTrailer := movie.TrailerFile

	newPoster := ""
	if in.Poster != nil {
		newPoster, err = s.uploads.Save(upload.KindPoster, in.Poster.Data, in.Poster.ContentType, in.Poster.Filename)
		if err != nil {
			return nil, err
		}
	}

	newTrailer := ""
	if in.TrailerFile != nil {
		newTrailer, err = s.uploads.Save(upload.KindTrailer, in.TrailerFile.Data, in.TrailerFile.ContentType, in.TrailerFile.Filename)
		if err != nil {
			s.compensate(upload.KindPoster, newPoster)
			return nil, err
		}
	}

	movie.Title = in.Title
	movie.Summary = in.Summary
	movie.ReleaseDate = in.ReleaseDate
	movie.DurationHours = in.DurationHours
	movie.DurationMinutes = in.DurationMinutes
	movie.AgeRating = in.AgeRating
	if newPoster != "" {
		movie.PosterImage = newPoster
	}
	switch {
	case newTrailer != "":
		movie.TrailerFile = newTrailer
		movie.TrailerURL = ""
	case in.TrailerURL != "":
		movie.TrailerURL = in.TrailerURL
		movie.TrailerFile = ""
	}
	movie.Genres = nil
	movie.Uploader = nil

	if err := s.movieRepo.UpdateWithGenres(movie, in.Genres); err != nil {
		// Rollback happened in the DB; compensate the file writes so no
		// orphan replaces the still-referenced originals
		s.compensate(upload.KindPoster, newPoster)
		s.compensate(upload.KindTrailer, newTrailer)
		logger.Log.Error("Failed to update movie",
			zap.String("movie_id", movieID.String()),
			zap.Error(err),
		)
		return nil, err
	}

	// Commit succeeded: the old files are no longer referenced
	if newPoster != "" {
		_ = s.uploads.Replace(upload.KindPoster, oldPoster, newPoster)
	}
	if movie.TrailerFile != oldTrailer || movie.TrailerURL != "" {
		_ = s.uploads.Replace(upload.KindTrailer, oldTrailer, movie.TrailerFile)
	}

	logger.Log.Info("Movie updated",
		zap.String("movie_id", movieID.String()),
		zap.String("title", movie.Title),
	)

	return movie, nil
}

// Delete removes an owned movie. Genre tags, reviews and favorites cascade
// at the data layer; stored files are removed after the row is gone.
func (s *MovieService) Delete(movieID, requesterID uuid.UUID) error {
	movie, err := s.movieRepo.GetMovieByID(movieID)
	if err != nil {
		return err
	}
	if movie == nil {
		return ErrMovieNotFound
	}
	if movie.UploadedBy != requesterID {
		logger.Log.Warn("Movie delete denied",
			zap.String("movie_id", movieID.String()),
			zap.String("requester_id", requesterID.String()),
		)
		return ErrPermissionDenied
	}

	if err := s.movieRepo.Delete(movieID); err != nil {
		logger.Log.Error("Failed to delete movie",
			zap.String("movie_id", movieID.String()),
			zap.Error(err),
		)
		return err
	}

	_ = s.uploads.Remove(upload.KindPoster, movie.PosterImage)
	_ = s.uploads.Remove(upload.KindTrailer, movie.TrailerFile)

	logger.Log.Info("Movie deleted",
		zap.String("movie_id", movieID.String()),
		zap.String("title", movie.Title),
	)

	return nil
}

// Get returns one movie with genre/average annotations, the uploader's
// name and its reviews newest-first.
func (s *MovieService) Get(movieID uuid.UUID) (*MovieDetail, error) {
	movie, err := s.movieRepo.GetMovieByID(movieID)
	if err != nil {
		return nil, err
	}
	if movie == nil {
		return nil, ErrMovieNotFound
	}

	avg, ok, err := s.reviewRepo.Average(movieID)
	if err != nil {
		return nil, err
	}

	reviews, err := s.reviewRepo.ListByMovie(movieID)
	if err != nil {
		return nil, err
	}

	detail := &MovieDetail{
		MovieSummary: summarize(*movie, avg, ok),
		Reviews:      reviews,
	}
	if movie.Uploader != nil {
		detail.UploaderName = movie.Uploader.Username
	}
	return detail, nil
}

// ListAll returns the catalog newest-first, annotated with comma-joined
// genres and the current average rating.
func (s *MovieService) ListAll() ([]MovieSummary, error) {
	movies, err := s.movieRepo.ListAll()
	if err != nil {
		return nil, err
	}
	return s.annotate(movies)
}

// ListByOwner returns the movies one user uploaded, same annotations.
func (s *MovieService) ListByOwner(ownerID uuid.UUID) ([]MovieSummary, error) {
	movies, err := s.movieRepo.ListByOwner(ownerID)
	if err != nil {
		return nil, err
	}
	return s.annotate(movies)
}

func (s *MovieService) annotate(movies []models.Movie) ([]MovieSummary, error) {
	averages, err := s.reviewRepo.AverageByMovie()
	if err != nil {
		return nil, err
	}

	summaries := make([]MovieSummary, 0, len(movies))
	for _, m := range movies {
		avg, ok := averages[m.ID]
		summaries = append(summaries, summarize(m, avg, ok))
	}
	return summaries, nil
}

func summarize(m models.Movie, avg float64, hasRating bool) MovieSummary {
	genres := make([]string, 0, len(m.Genres))
	for _, g := range m.Genres {
		genres = append(genres, g.Genre)
	}

	if hasRating {
		avg = math.Round(avg*10) / 10
	}
	return MovieSummary{
		Movie:         m,
		GenreList:     strings.Join(genres, ", "),
		AverageRating: FormatAverage(avg, hasRating),
	}
}

func (s *MovieService) compensate(kind upload.Kind, ref string) {
	if ref == "" {
		return
	}
	if err := s.uploads.Remove(kind, ref); err != nil {
		logger.Log.Error("Failed to remove file after rollback",
			zap.String("kind", string(kind)),
			zap.String("filename", ref),
			zap.Error(err),
		)
	}
}

func validateMovieInput(in MovieInput, requirePoster bool) error {
	verr := &ValidationError{}

	if strings.TrimSpace(in.Title) == "" {
		verr.add("title is required")
	}
	if strings.TrimSpace(in.Summary) == "" {
		verr.add("summary is required")
	}
	if in.ReleaseDate.IsZero() {
		verr.add("release date is required")
	}
	if in.DurationHours < 0 || in.DurationMinutes < 0 || in.DurationMinutes > 59 ||
		(in.DurationHours == 0 && in.DurationMinutes == 0) {
		verr.add("duration is required")
	}
	if !models.ValidAgeRating(in.AgeRating) {
		verr.add("invalid age rating")
	}
	if len(in.Genres) == 0 {
		verr.add("at least one genre must be selected")
	}
	for _, g := range in.Genres {
		if !models.ValidGenre(g) {
			verr.add("invalid genre selected")
			break
		}
	}
	if in.TrailerURL != "" && in.TrailerFile != nil {
		verr.add("provide a trailer link or a trailer file, not both")
	}
	if requirePoster && in.Poster == nil {
		verr.add("poster image is required")
	}

	return verr.orNil()
}
