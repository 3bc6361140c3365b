package shops

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"marketplace/internal/apperr"
	"marketplace/internal/auth"
	domainmedia "marketplace/internal/domain/media"
	"marketplace/internal/domain/shop"
	"marketplace/internal/mail"
	"marketplace/internal/media"
	"marketplace/internal/store"
)

type Dependencies struct {
	Shops             store.Shops
	Uploader          media.Uploader
	Mailer            mail.Mailer
	Sessions          auth.Sessions
	Activation        *auth.JWTManager
	ActivationBaseURL string
}

type Handler struct {
	deps Dependencies
}

func NewHandler(d Dependencies) *Handler {
	return &Handler{deps: d}
}

func (h *Handler) Routes(rg *gin.RouterGroup, gate *auth.Gate) {
	rg.POST("/create-shop", h.CreateShop)
	rg.POST("/activation", h.Activate)
	rg.POST("/login-shop", h.Login)
	rg.GET("/getSeller", gate.RequireSeller(), h.GetSeller)
	rg.GET("/logout", h.Logout)
	rg.GET("/get-shop-info/:id", h.Info)
}

type pendingShop struct {
	Name         string            `json:"name"`
	Email        string            `json:"email"`
	PasswordHash string            `json:"password_hash"`
	Description  string            `json:"description,omitempty"`
	Address      string            `json:"address"`
	PhoneNumber  string            `json:"phone_number"`
	ZipCode      string            `json:"zip_code"`
	Avatar       domainmedia.Image `json:"avatar"`
}

type createShopForm struct {
	Name        string `form:"name" binding:"required"`
	Email       string `form:"email" binding:"required,email"`
	Password    string `form:"password" binding:"required,min=6"`
	Address     string `form:"address" binding:"required"`
	PhoneNumber string `form:"phoneNumber" binding:"required"`
	ZipCode     string `form:"zipCode" binding:"required"`
	Description string `form:"description"`
}

func (h *Handler) CreateShop(c *gin.Context) {
	var form createShopForm
	if err := c.ShouldBind(&form); err != nil {
		apperr.Respond(c, apperr.BindError(err))
		return
	}
	email := strings.ToLower(strings.TrimSpace(form.Email))
	ctx := c.Request.Context()

	if _, err := h.deps.Shops.ByEmail(ctx, email); err == nil {
		apperr.Respond(c, apperr.Conflict("Shop already exists"))
		return
	} else if !errors.Is(err, store.ErrNotFound) {
		apperr.Respond(c, err)
		return
	}

	var avatar domainmedia.Image
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			apperr.Respond(c, apperr.Validation("unreadable avatar file"))
			return
		}
		avatar, err = h.deps.Uploader.Upload(ctx, media.FolderAvatars, fh.Filename, f)
		_ = f.Close()
		if err != nil {
			apperr.Respond(c, err)
			return
		}
	}

	hash, err := auth.HashPassword(form.Password)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	token, err := auth.SignActivation(h.deps.Activation, auth.AudienceSellerActivation, pendingShop{
		Name:         form.Name,
		Email:        email,
		PasswordHash: hash,
		Description:  form.Description,
		Address:      form.Address,
		PhoneNumber:  form.PhoneNumber,
		ZipCode:      form.ZipCode,
		Avatar:       avatar,
	})
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	url := strings.TrimRight(h.deps.ActivationBaseURL, "/") + "/seller/activation/" + token
	subject, body := mail.ActivationMessage(form.Name, url)
	if err := h.deps.Mailer.Send(email, subject, body); err != nil {
		if avatar.PublicID != "" {
			if derr := h.deps.Uploader.Delete(ctx, avatar.PublicID); derr != nil {
				log.Printf("delete orphaned shop avatar %s: %v", avatar.PublicID, derr)
			}
		}
		apperr.Respond(c, apperr.Upstream("could not send activation email", err))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Please check your email - " + email + " to activate your shop!",
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
	p, err := auth.ParseActivation[pendingShop](h.deps.Activation, auth.AudienceSellerActivation, req.ActivationToken)
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	s := shop.Shop{
		Name:         p.Name,
		Email:        p.Email,
		PasswordHash: p.PasswordHash,
		Description:  p.Description,
		Address:      p.Address,
		PhoneNumber:  p.PhoneNumber,
		ZipCode:      p.ZipCode,
		Avatar:       p.Avatar,
		Role:         shop.RoleSeller,
	}
	if err := h.deps.Shops.Create(c.Request.Context(), &s); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			apperr.Respond(c, apperr.Conflict("Shop already exists"))
			return
		}
		apperr.Respond(c, err)
		return
	}
	h.respondWithSession(c, s)
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
	s, err := h.deps.Shops.ByEmail(c.Request.Context(), strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		apperr.Respond(c, err)
		return
	}
	if err != nil || !auth.CheckPassword(s.PasswordHash, req.Password) {
		apperr.Respond(c, apperr.Auth("Please provide the correct information"))
		return
	}
	h.respondWithSession(c, s)
}

func (h *Handler) respondWithSession(c *gin.Context, s shop.Shop) {
	token, err := h.deps.Sessions.Issue(c, auth.SellerCookie, s.ID, auth.RoleSeller)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "seller": s, "token": token})
}

func (h *Handler) GetSeller(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "seller": auth.CurrentSeller(c)})
}

func (h *Handler) Logout(c *gin.Context) {
	h.deps.Sessions.Clear(c, auth.SellerCookie)
	c.JSON(http.StatusCreated, gin.H{"success": true, "message": "Log out successful!"})
}

func (h *Handler) Info(c *gin.Context) {
	s, err := h.deps.Shops.ByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		apperr.Respond(c, apperr.NotFound("Shop not found"))
		return
	}
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "shop": s})
}
