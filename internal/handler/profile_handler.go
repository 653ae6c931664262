package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ratingtales/rating-tales/internal/service"
	"github.com/ratingtales/rating-tales/internal/upload"
	"github.com/ratingtales/rating-tales/pkg/logger"
	"go.uber.org/zap"
)

type ProfileHandler struct {
	authService *service.AuthService
	uploads     *upload.Store
}

func NewProfileHandler(authService *service.AuthService, uploads *upload.Store) *ProfileHandler {
	return &ProfileHandler{
		authService: authService,
		uploads:     uploads,
	}
}

func (h *ProfileHandler) Get(c *gin.Context) {
	user, err := h.authService.GetUser(currentUserID(c))
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

type ProfileForm struct {
	FullName *string `form:"full_name"`
	Username *string `form:"username"`
	Email    *string `form:"email"`
	Age      *int    `form:"age"`
	Gender   *string `form:"gender"`
	Bio      *string `form:"bio"`
}

// Update applies a partial profile edit: only the submitted fields change.
func (h *ProfileHandler) Update(c *gin.Context) {
	var form ProfileForm
	if err := c.ShouldBind(&form); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	fields := make(map[string]interface{})
	if form.FullName != nil {
		fields["full_name"] = *form.FullName
	}
	if form.Username != nil {
		fields["username"] = *form.Username
	}
	if form.Email != nil {
		fields["email"] = *form.Email
	}
	if form.Age != nil {
		fields["age"] = *form.Age
	}
	if form.Gender != nil {
		fields["gender"] = *form.Gender
	}
	if form.Bio != nil {
		fields["bio"] = *form.Bio
	}

	if err := h.authService.UpdateProfile(currentUserID(c), fields); err != nil {
		respondServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Profile updated"})
}

// UploadImage replaces the user's avatar. The file is written first; if the
// record update fails the new file is deleted so no orphan remains, and the
// old avatar is only removed once the new reference is committed.
func (h *ProfileHandler) UploadImage(c *gin.Context) {
	file, err := readFormFile(c, "profile_image")
	if err != nil || file == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Profile image file is required"})
		return
	}

	newRef, err := h.uploads.Save(upload.KindAvatar, file.Data, file.ContentType, file.Filename)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	oldRef, err := h.authService.UpdateProfileImage(currentUserID(c), newRef)
	if err != nil {
		if rmErr := h.uploads.Remove(upload.KindAvatar, newRef); rmErr != nil {
			logger.Log.Error("Failed to remove avatar after rollback",
				zap.String("filename", newRef),
				zap.Error(rmErr),
			)
		}
		respondServiceError(c, err)
		return
	}

	if err := h.uploads.Replace(upload.KindAvatar, oldRef, newRef); err != nil {
		logger.Log.Error("Failed to remove replaced avatar",
			zap.String("filename", oldRef),
			zap.Error(err),
		)
	}

	c.JSON(http.StatusOK, gin.H{
		"message":       "Profile image updated",
		"profile_image": newRef,
	})
}
