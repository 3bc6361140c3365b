package orders

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"marketplace/internal/apperr"
	"marketplace/internal/auth"
	"marketplace/internal/domain/order"
	"marketplace/internal/store"
)

type Handler struct {
	splitter *Splitter
	orders   store.Orders
}

func NewHandler(splitter *Splitter, orders store.Orders) *Handler {
	return &Handler{splitter: splitter, orders: orders}
}

func (h *Handler) Routes(rg *gin.RouterGroup, gate *auth.Gate) {
	rg.POST("/create-order", gate.RequireUser(), h.Create)
	rg.GET("/get-all-orders/:userId", gate.RequireUser(), h.ListForUser)
	rg.GET("/get-seller-all-orders/:shopId", gate.RequireSeller(), h.ListForShop)
	rg.PUT("/update-order-status/:id", gate.RequireSeller(), h.UpdateStatus)
}

func (h *Handler) Create(c *gin.Context) {
	var co order.Checkout
	if err := c.ShouldBindJSON(&co); err != nil {
		apperr.Respond(c, apperr.BindError(err))
		return
	}
	if co.User.ID != auth.CurrentUser(c).ID {
		apperr.Respond(c, apperr.Auth("cannot place an order for another user"))
		return
	}

	orders, err := h.splitter.Split(c.Request.Context(), co)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "orders": orders})
}

func (h *Handler) ListForUser(c *gin.Context) {
	userID := c.Param("userId")
	if userID != auth.CurrentUser(c).ID {
		apperr.Respond(c, apperr.Auth("cannot read another user's orders"))
		return
	}
	orders, err := h.orders.ListByUser(c.Request.Context(), userID)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "orders": orders})
}

func (h *Handler) ListForShop(c *gin.Context) {
	shopID := c.Param("shopId")
	if shopID != auth.CurrentSeller(c).ID {
		apperr.Respond(c, apperr.Auth("cannot read another shop's orders"))
		return
	}
	orders, err := h.orders.ListByShop(c.Request.Context(), shopID)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "orders": orders})
}

type updateStatusReq struct {
	Status string `json:"status" binding:"required"`
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	var req updateStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Respond(c, apperr.BindError(err))
		return
	}
	if !order.ValidStatus(req.Status) {
		apperr.Respond(c, apperr.Validation("unknown order status "+req.Status))
		return
	}

	ctx := c.Request.Context()
	o, err := h.orders.ByID(ctx, c.Param("id"))
	if errors.Is(err, store.ErrNotFound) || (err == nil && o.ShopID != auth.CurrentSeller(c).ID) {
		apperr.Respond(c, apperr.NotFound("Order not found with this id"))
		return
	}
	if err != nil {
		apperr.Respond(c, err)
		return
	}

	o.Status = req.Status
	if req.Status == order.StatusDelivered {
		now := time.Now().UTC()
		o.DeliveredAt = &now
		o.PaymentInfo.Status = order.PaymentSucceeded
	}
	if err := h.orders.Update(ctx, &o); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "order": o})
}
