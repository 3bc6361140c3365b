package users

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"marketplace/internal/apperr"
	"marketplace/internal/auth"
	domainmedia "marketplace/internal/domain/media"
	"marketplace/internal/domain/user"
	"marketplace/internal/mail"
	"marketplace/internal/media"
	"marketplace/internal/store"
)

type Dependencies struct {
	Users      store.Users
	Uploader   media.Uploader
	Mailer     mail.Mailer
	Sessions   auth.Sessions
	Activation *auth.JWTManager
	// ActivationBaseURL is the storefront origin that hosts /activation/<token>.
	ActivationBaseURL string
}

type Handler struct {
	deps Dependencies
}

func NewHandler(d Dependencies) *Handler {
	return &Handler{deps: d}
}

func (h *Handler) Routes(rg *gin.RouterGroup, gate *auth.Gate) {
	rg.POST("/create-user", h.CreateUser)
	rg.POST("/activation", h.Activate)
	rg.POST("/login-user", h.Login)
	rg.GET("/getuser", gate.RequireUser(), h.GetUser)
	rg.GET("/logout", h.Logout)
	rg.PUT("/update-user-info", gate.RequireUser(), h.UpdateInfo)
	rg.PUT("/update-avatar", gate.RequireUser(), h.UpdateAvatar)
	rg.PUT("/update-user-addresses", gate.RequireUser(), h.UpsertAddress)
	rg.DELETE("/delete-user-address/:id", gate.RequireUser(), h.DeleteAddress)
	rg.PUT("/update-user-password", gate.RequireUser(), h.UpdatePassword)
}

// pendingUser is the registration carried inside an activation token.
type pendingUser struct {
	Name         string            `json:"name"`
	Email        string            `json:"email"`
	PasswordHash string            `json:"password_hash"`
	Avatar       domainmedia.Image `json:"avatar"`
}

type signupForm struct {
	Name     string `form:"name" binding:"required"`
	Email    string `form:"email" binding:"required,email"`
	Password string `form:"password" binding:"required,min=4"`
}

func normalizeEmail(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

func (h *Handler) CreateUser(c *gin.Context) {
	var form signupForm
	if err := c.ShouldBind(&form); err != nil {
		apperr.Respond(c, apperr.BindError(err))
		return
	}
	form.Email = normalizeEmail(form.Email)
	ctx := c.Request.Context()

	if _, err := h.deps.Users.ByEmail(ctx, form.Email); err == nil {
		apperr.Respond(c, apperr.Conflict("User already exists"))
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		apperr.Respond(c, err)
		return
	}

	fh, err := c.FormFile("file")
	if err != nil {
		apperr.Respond(c, apperr.Validation("avatar file is required"))
		return
	}
	f, err := fh.Open()
	if err != nil {
		apperr.Respond(c, apperr.Validation("unreadable avatar file"))
		return
	}
	avatar, err := h.deps.Uploader.Upload(ctx, media.FolderAvatars, fh.Filename, f)
	_ = f.Close()
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	hash, err := auth.HashPassword(form.Password)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	token, err := auth.SignActivation(h.deps.Activation, auth.AudienceUserActivation, pendingUser{
		Name: form.Name, Email: form.Email, PasswordHash: hash, Avatar: avatar,
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	url := strings.TrimRight(h.deps.ActivationBaseURL, "/") + "/activation/" + token
	subject, body := mail.ActivationMessage(form.Name, url)
	if err := h.deps.Mailer.Send(form.Email, subject, body); err != nil {
		if derr := h.deps.Uploader.Delete(ctx, avatar.PublicID); derr != nil {
			log.Printf("delete orphaned avatar %s: %v", avatar.PublicID, derr)
		}
		apperr.Respond(c, apperr.Upstream("could not send activation email", err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Please check your email - " + form.Email + " to activate your account!",
	})
}

type activationReq struct {
	ActivationToken string `json:"activation_token" binding:"required"`
}

func (h *Handler) Activate(c *gin.Context) {
	var req activationReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.BindError(err))
		return
	}
	pending, err := auth.ParseActivation[pendingUser](h.deps.Activation, auth.AudienceUserActivation, req.ActivationToken)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	u := user.User{
		Name:         pending.Name,
		Email:        pending.Email,
		PasswordHash: pending.PasswordHash,
		Avatar:       pending.Avatar,
		Role:         user.RoleUser,
		Addresses:    []user.Address{},
	}
	if err := h.deps.Users.Create(c.Request.Context(), &u); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			apperr.Respond(c, apperr.Conflict("User already exists"))
			return
		}
		apperr.Respond(c, err)
		return
	}
	h.respondWithSession(c, u)
}

type loginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *Handler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.BindError(err))
		return
	}

	u, err := h.deps.Users.ByEmail(c.Request.Context(), normalizeEmail(req.Email))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		apperr.Respond(c, err)
		return
	}
	if err != nil || !auth.CheckPassword(u.PasswordHash, req.Password) {
		apperr.Respond(c, apperr.Auth("Please provide the correct information"))
		return
	}
	h.respondWithSession(c, u)
}

func (h *Handler) respondWithSession(c *gin.Context, u user.User) {
	token, err := h.deps.Sessions.Issue(c, auth.UserCookie, u.ID, auth.RoleUser)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "user": u, "token": token})
}

func (h *Handler) GetUser(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "user": auth.CurrentUser(c)})
}

func (h *Handler) Logout(c *gin.Context) {
	h.deps.Sessions.Clear(c, auth.UserCookie)
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Log out successful!"})
}
