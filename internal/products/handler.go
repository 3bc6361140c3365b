package products

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"marketplace/internal/apperr"
	"marketplace/internal/auth"
	"marketplace/internal/store"
)

type Handler struct {
	catalog  *Catalog
	products store.Products
}

func NewHandler(catalog *Catalog, products store.Products) *Handler {
	return &Handler{catalog: catalog, products: products}
}

func (h *Handler) Routes(rg *gin.RouterGroup, gate *auth.Gate) {
	rg.POST("/create-product", h.Create)
	rg.GET("/get-all-products-shop/:id", h.ListByShop)
	rg.DELETE("/delete-shop-product/:id", gate.RequireSeller(), h.Delete)
	rg.GET("/get-all-products", h.List)
	rg.GET("/get-product/:id", h.Get)
}

type createProductForm struct {
	ShopID        string  `form:"shopId" binding:"required"`
	Name          string  `form:"name" binding:"required"`
	Description   string  `form:"description" binding:"required"`
	Category      string  `form:"category" binding:"required"`
	Tags          string  `form:"tags"`
	OriginalPrice float64 `form:"originalPrice" binding:"gte=0"`
	DiscountPrice float64 `form:"discountPrice" binding:"required,gt=0"`
	Stock         int     `form:"stock" binding:"gte=0"`
}

func (h *Handler) Create(c *gin.Context) {
	var form createProductForm
	if err := c.ShouldBind(&form); err != nil {
		apperr.Respond(c, apperr.BindError(err))
		return
	}
	in := NewProduct{
		ShopID:        form.ShopID,
		Name:          form.Name,
		Description:   form.Description,
		Category:      form.Category,
		Tags:          form.Tags,
		OriginalPrice: form.OriginalPrice,
		DiscountPrice: form.DiscountPrice,
		Stock:         form.Stock,
	}
	if mf, err := c.MultipartForm(); err == nil {
		in.Images = mf.File["images"]
	}

	p, err := h.catalog.Create(c.Request.Context(), in)
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"success": true, "product": p})
}

func (h *Handler) ListByShop(c *gin.Context) {
	products, err := h.products.ListByShop(c.Request.Context(), c.Param("id"))
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "products": products})
}

func (h *Handler) List(c *gin.Context) {
	products, err := h.products.List(c.Request.Context())
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "products": products})
}

func (h *Handler) Get(c *gin.Context) {
	p, err := h.products.ByID(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		apperr.Respond(c, apperr.NotFound("Product not found with this id!"))
		return
	}
	if err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "product": p})
}

func (h *Handler) Delete(c *gin.Context) {
	if err := h.catalog.Delete(c.Request.Context(), auth.CurrentSeller(c), c.Param("id")); err != nil {
		apperr.Respond(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Product deleted successfully!"})
}
