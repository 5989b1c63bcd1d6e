package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/isell/backend/internal/application/catalog"
	"github.com/isell/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
)

// ProductHandler exposes the read-only storefront catalog.
type ProductHandler struct {
	BaseHandler
	products *catalogapp.ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(products *catalogapp.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// RegisterRoutes registers product routes on the API group
func (h *ProductHandler) RegisterRoutes(rg *gin.RouterGroup) {
	products := rg.Group("/products")
	{
		products.GET("", h.List)
		products.GET("/:id", h.Get)
		products.GET("/:id/calculate", h.Calculate)
	}
}

// List returns products matching an optional name search, paginated.
func (h *ProductHandler) List(c *gin.Context) {
	listReq := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, "Invalid pagination parameters")
		return
	}

	page, err := h.products.List(c.Request.Context(), listReq.Page, listReq.PageSize, listReq.Search)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, page.Items, page.Total, page.Page, page.PageSize)
}

// Get returns one product.
func (h *ProductHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	product, err := h.products.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// Calculate previews the monthly installment for one product. The tariff and
// down payment arrive as query parameters so product pages can call this
// without building a full schedule request.
func (h *ProductHandler) Calculate(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}

	tariffID, err := uuid.Parse(c.Query("installment_period"))
	if err != nil {
		h.BadRequest(c, "Query parameter 'installment_period' must be a tariff ID")
		return
	}

	downPayment, err := decimal.NewFromString(c.Query("total_down_payment"))
	if err != nil {
		h.BadRequest(c, "Query parameter 'total_down_payment' must be a number")
		return
	}

	result, err := h.products.CalculatePayment(c.Request.Context(), id, tariffID, downPayment)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}
