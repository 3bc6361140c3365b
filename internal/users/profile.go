package users

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"marketplace/internal/apperr"
	"marketplace/internal/auth"
	"marketplace/internal/domain/user"
	"marketplace/internal/media"
	"marketplace/internal/store"
)

type updateInfoReq struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	PhoneNumber string `json:"phoneNumber"`
	Name        string `json:"name" binding:"required"`
}

func (h *Handler) UpdateInfo(c *gin.Context) {
	var req updateInfoReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.BindError(err))
		return
	}
	u := auth.CurrentUser(c)
	if !auth.CheckPassword(u.PasswordHash, req.Password) {
		apperr.Respond(c, apperr.Auth("Please provide the correct information"))
		return
	}

	u.Name = req.Name
	u.Email = normalizeEmail(req.Email)
	u.PhoneNumber = req.PhoneNumber
	if err := h.save(c, &u); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "user": u})
}

func (h *Handler) UpdateAvatar(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		apperr.Respond(c, apperr.Validation("image file is required"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		apperr.Respond(c, apperr.Validation("unreadable image file"))
		return
	}
	defer f.Close()

	ctx := c.Request.Context()
	img, err := h.deps.Uploader.Upload(ctx, media.FolderAvatars, fh.Filename, f)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	u := auth.CurrentUser(c)
	old := u.Avatar
	u.Avatar = img
	if err := h.save(c, &u); err != nil {
		apperr.Respond(c, err)
		return
	}
	if old.PublicID != "" {
		if err := h.deps.Uploader.Delete(ctx, old.PublicID); err != nil {
			log.Printf("delete old avatar %s: %v", old.PublicID, err)
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": u})
}

type addressReq struct {
	ID          string `json:"_id"`
	Country     string `json:"country" binding:"required"`
	City        string `json:"city" binding:"required"`
	Address1    string `json:"address1" binding:"required"`
	Address2    string `json:"address2"`
	ZipCode     string `json:"zipCode" binding:"required"`
	AddressType string `json:"addressType" binding:"required"`
}

// UpsertAddress replaces the address with the given _id or appends a new
// one. Each address type may appear once per user.
func (h *Handler) UpsertAddress(c *gin.Context) {
	var req addressReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.BindError(err))
		return
	}
	u := auth.CurrentUser(c)

	if i := u.AddressByType(req.AddressType); i >= 0 && u.Addresses[i].ID != req.ID {
		apperr.Respond(c, apperr.Validation(req.AddressType+" address already exist"))
		return
	}

	addr := user.Address{
		ID:          req.ID,
		Country:     req.Country,
		City:        req.City,
		Address1:    req.Address1,
		Address2:    req.Address2,
		ZipCode:     req.ZipCode,
		AddressType: req.AddressType,
	}
	if i := u.AddressByID(req.ID); req.ID != "" && i >= 0 {
		u.Addresses[i] = addr
	} else {
		addr.ID = uuid.NewString()
		u.Addresses = append(u.Addresses, addr)
	}

	if err := h.save(c, &u); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": u})
}

func (h *Handler) DeleteAddress(c *gin.Context) {
	u := auth.CurrentUser(c)
	if i := u.AddressByID(c.Param("id")); i >= 0 {
		u.Addresses = append(u.Addresses[:i], u.Addresses[i+1:]...)
		if err := h.save(c, &u); err != nil {
			apperr.Respond(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "user": u})
}

type updatePasswordReq struct {
	OldPassword     string `json:"oldPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=4"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
}

func (h *Handler) UpdatePassword(c *gin.Context) {
	var req updatePasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.BindError(err))
		return
	}
	u := auth.CurrentUser(c)
	if !auth.CheckPassword(u.PasswordHash, req.OldPassword) {
		apperr.Respond(c, apperr.Auth("old password is incorrect!"))
		return
	}
	if req.NewPassword != req.ConfirmPassword {
		apperr.Respond(c, apperr.Validation("password doesn't matched with each other"))
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	u.PasswordHash = hash
	if err := h.save(c, &u); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Password updated successfully"})
}

func (h *Handler) save(c *gin.Context, u *user.User) error {
	err := h.deps.Users.Update(c.Request.Context(), u)
	switch {
	case errors.Is(err, store.ErrDuplicate):
		return apperr.Conflict("email is already in use")
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound("user doesn't exists")
	}
	return err
}
