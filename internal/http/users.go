package http

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"elite-app/internal/service"
	"elite-app/internal/storage"
)

const maxProfileImageSize = 5 << 20

type loginResponse struct {
	Token string `json:"token"`
	Role  string `json:"role"`
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) signup(c *gin.Context) {
	var req service.SignupInput
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid request body", "error": err.Error()})
		return
	}

	if _, err := h.users.Signup(c.Request.Context(), req); err != nil {
		h.respondError(c, err, "Error creating user")
		return
	}
	c.JSON(http.StatusCreated, gin.H{"msg": "User registered successfully"})
}

func (h *Handler) login(c *gin.Context) {
	var req service.LoginInput
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid request body", "error": err.Error()})
		return
	}

	res, err := h.users.Login(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err, "Server error")
		return
	}
	c.JSON(http.StatusOK, loginResponse{Token: res.Token, Role: res.Role})
}

func (h *Handler) logout(c *gin.Context) {
	if err := h.users.Logout(c.Request.Context(), currentClaims(c)); err != nil {
		h.respondError(c, err, "Error logging out")
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "Logged out successfully"})
}

func (h *Handler) listUsers(c *gin.Context) {
	users, err := h.users.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Error fetching users")
		return
	}
	c.JSON(http.StatusOK, users)
}

func (h *Handler) me(c *gin.Context) {
	user, err := h.users.Me(c.Request.Context(), currentUserID(c))
	if err != nil {
		h.respondError(c, err, "Server error")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) updateProfile(c *gin.Context) {
	ctx := c.Request.Context()
	userID := currentUserID(c)

	var (
		req service.ProfileInput
		ref *string
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		req = profileFromForm(c)
		uploaded, err := h.storeProfileImage(c)
		if err != nil {
			var bad badUploadError
			if errors.As(err, &bad) {
				c.JSON(http.StatusBadRequest, gin.H{"msg": bad.Error()})
				return
			}
			h.respondError(c, err, "Error updating profile")
			return
		}
		ref = uploaded
	} else if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid request body", "error": err.Error()})
		return
	}

	var previous string
	if ref != nil {
		if current, err := h.users.Me(ctx, userID); err == nil {
			previous = current.ProfileImage
		}
	}

	user, err := h.users.UpdateProfile(ctx, userID, req, ref)
	if err != nil {
		if ref != nil {
			h.removeImage(c, *ref)
		}
		h.respondError(c, err, "Error updating profile")
		return
	}
	if previous != "" && ref != nil && previous != *ref {
		h.removeImage(c, previous)
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) adminUpdate(c *gin.Context) {
	var req service.AdminUpdateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid request body", "error": err.Error()})
		return
	}

	user, err := h.users.AdminUpdate(c.Request.Context(), currentUserID(c), c.Param("id"), req)
	if err != nil {
		h.respondError(c, err, "Error updating profile")
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) deleteUser(c *gin.Context) {
	user, err := h.users.Delete(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Error deleting user")
		return
	}
	if user.ProfileImage != "" {
		h.removeImage(c, user.ProfileImage)
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listActivities(c *gin.Context) {
	activities, err := h.activities.Recent(c.Request.Context(), service.DefaultRecentActivities)
	if err != nil {
		h.respondError(c, err, "Error fetching activities")
		return
	}
	c.JSON(http.StatusOK, activities)
}

func (h *Handler) getStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": h.status.Get()})
}

func (h *Handler) updateStatus(c *gin.Context) {
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "Invalid request body", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "System status updated", "status": h.status.Set(req.Status)})
}

func (h *Handler) serveUpload(c *gin.Context) {
	if h.storage == nil {
		c.JSON(http.StatusNotFound, gin.H{"msg": "File not found"})
		return
	}
	obj, err := h.storage.Open(c.Request.Context(), storage.Reference(c.Param("name")))
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) || errors.Is(err, storage.ErrInvalidReference) {
			c.JSON(http.StatusNotFound, gin.H{"msg": "File not found"})
			return
		}
		h.respondError(c, err, "Error reading file")
		return
	}
	defer obj.Body.Close()
	c.DataFromReader(http.StatusOK, obj.Size, obj.ContentType, obj.Body, nil)
}

type badUploadError struct {
	msg string
}

func (e badUploadError) Error() string { return e.msg }

// storeProfileImage saves the optional "profileImage" part and returns its
// reference, or nil when no file was sent.
func (h *Handler) storeProfileImage(c *gin.Context) (*string, error) {
	file, err := c.FormFile("profileImage")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, badUploadError{msg: fmt.Sprintf("Invalid upload: %v", err)}
	}
	if h.storage == nil {
		return nil, errors.New("storage service not configured")
	}

	contentType := file.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return nil, badUploadError{msg: "Only image files are allowed!"}
	}
	if file.Size > maxProfileImageSize {
		return nil, badUploadError{msg: "Image exceeds the 5MB limit"}
	}

	f, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	ref, err := h.storage.Put(c.Request.Context(), storage.ObjectName(file.Filename, time.Now()), f, contentType)
	if err != nil {
		return nil, err
	}
	return &ref, nil
}

func (h *Handler) removeImage(c *gin.Context, ref string) {
	if h.storage == nil {
		return
	}
	if err := h.storage.Delete(c.Request.Context(), ref); err != nil {
		h.logger.WithError(err).WithField("ref", ref).Warn("remove profile image")
	}
}

func profileFromForm(c *gin.Context) service.ProfileInput {
	field := func(name string) *string {
		if v, ok := c.GetPostForm(name); ok {
			return &v
		}
		return nil
	}
	return service.ProfileInput{
		Contact:       field("contact"),
		Bio:           field("bio"),
		Mail:          field("mail"),
		Qualification: field("qualification"),
		Location:      field("location"),
	}
}
