package handler

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	"pricewatch/internal/app/pricewatch/entity"
	"pricewatch/internal/app/pricewatch/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// SweepTrigger запускает внеочередной проход проверки цен
type SweepTrigger interface {
	TriggerNow() bool
}

// ProductHandler обрабатывает HTTP запросы к товарам
type ProductHandler struct {
	productService service.ProductServiceInterface
	trigger        SweepTrigger
	validator      *validator.Validate
}

// NewProductHandler создает новый обработчик товаров
func NewProductHandler(productService service.ProductServiceInterface, trigger SweepTrigger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		trigger:        trigger,
		validator:      validator.New(),
	}
}

// ListProducts обрабатывает GET /api/products
func (h *ProductHandler) ListProducts(c *gin.Context) {
	products, err := h.productService.ListProducts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get products"})
		return
	}

	response := entity.ProductListResponse{
		Products: products,
		Total:    len(products),
	}

	c.JSON(http.StatusOK, response)
}

// AddProduct обрабатывает POST /api/products.
// Страница товара загружается сразу: сбой загрузки - ошибка запроса (400),
// сбой хранилища - ошибка сервера (500).
func (h *ProductHandler) AddProduct(c *gin.Context) {
	var req entity.AddProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.validator.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": formatValidationError(err)})
		return
	}

	product, err := h.productService.AddProduct(c.Request.Context(), req.URL)
	if err != nil {
		if errors.Is(err, service.ErrFetchFailed) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to fetch product page"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add product"})
		return
	}

	c.JSON(http.StatusCreated, product)
}

// GetProduct обрабатывает GET /api/products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get product"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// GetHistory обрабатывает GET /api/products/:id/history
func (h *ProductHandler) GetHistory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	points, err := h.productService.GetHistory(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get price history"})
		return
	}

	response := entity.HistoryResponse{
		ProductID: id.String(),
		Points:    points,
		Total:     len(points),
	}

	c.JSON(http.StatusOK, response)
}

// DeleteProduct обрабатывает DELETE /api/products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product ID"})
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		if errors.Is(err, service.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}

	c.JSON(http.StatusOK, entity.SuccessResponse{
		Message: "Product deleted successfully",
	})
}

// CheckNow обрабатывает POST /api/products/check.
// Проход запускается в фоне; если проход уже идет - запрос пропускается
// и вызывающий получает 409.
func (h *ProductHandler) CheckNow(c *gin.Context) {
	if accepted := h.trigger.TriggerNow(); !accepted {
		c.JSON(http.StatusConflict, entity.CheckResponse{
			Accepted: false,
			Message:  "Sweep already running",
		})
		return
	}

	c.JSON(http.StatusAccepted, entity.CheckResponse{
		Accepted: true,
		Message:  "Sweep started",
	})
}

// ExportCSV обрабатывает GET /api/products/export
func (h *ProductHandler) ExportCSV(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.productService.ExportCSV(c.Request.Context(), &buf); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to export products"})
		return
	}

	filename := "products-" + time.Now().Format("2006-01-02") + ".csv"
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// formatValidationError форматирует ошибки валидации
func formatValidationError(err error) string {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) && len(validationErrors) > 0 {
		return validationErrors[0].Field() + " validation failed"
	}
	return "Validation failed"
}
