package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pricewatch/internal/app/pricewatch/entity"
	"pricewatch/internal/app/pricewatch/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockProductService мок для ProductServiceInterface
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) AddProduct(ctx context.Context, url string) (*entity.Product, error) {
	args := m.Called(ctx, url)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockProductService) ListProducts(ctx context.Context) ([]entity.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.Product), args.Error(1)
}

func (m *MockProductService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Product), args.Error(1)
}

func (m *MockProductService) GetHistory(ctx context.Context, id uuid.UUID) ([]entity.PriceHistory, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entity.PriceHistory), args.Error(1)
}

func (m *MockProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProductService) ExportCSV(ctx context.Context, w io.Writer) error {
	args := m.Called(ctx, w)
	return args.Error(0)
}

// stubTrigger всегда отвечает одним и тем же решением
type stubTrigger struct {
	accept bool
}

func (t *stubTrigger) TriggerNow() bool {
	return t.accept
}

func setupTestRouter(svc service.ProductServiceInterface, trigger SweepTrigger) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewProductHandler(svc, trigger)

	r := gin.New()
	api := r.Group("/api")
	{
		api.GET("/products", h.ListProducts)
		api.POST("/products", h.AddProduct)
		api.POST("/products/check", h.CheckNow)
		api.GET("/products/export", h.ExportCSV)
		api.GET("/products/:id", h.GetProduct)
		api.GET("/products/:id/history", h.GetHistory)
		api.DELETE("/products/:id", h.DeleteProduct)
	}
	return r
}

func performRequest(r *gin.Engine, method, path string, body []byte) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ===================== ListProducts Tests =====================

func TestListProducts_OK(t *testing.T) {
	// Arrange
	svc := new(MockProductService)
	router := setupTestRouter(svc, &stubTrigger{})

	svc.On("ListProducts", mock.Anything).Return([]entity.Product{
		{ID: uuid.New(), URL: "https://shop.example.com/a", Name: "A", CurrentPrice: 100},
		{ID: uuid.New(), URL: "https://shop.example.com/b", Name: "B", CurrentPrice: 200},
	}, nil)

	// Act
	w := performRequest(router, http.MethodGet, "/api/products", nil)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)

	var resp entity.ProductListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
	assert.Len(t, resp.Products, 2)
}

func TestListProducts_ServiceError(t *testing.T) {
	// Arrange
	svc := new(MockProductService)
	router := setupTestRouter(svc, &stubTrigger{})

	svc.On("ListProducts", mock.Anything).Return(nil, errors.New("db down"))

	// Act
	w := performRequest(router, http.MethodGet, "/api/products", nil)

	// Assert
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// ===================== AddProduct Tests =====================

func TestAddProduct_Created(t *testing.T) {
	// Arrange
	svc := new(MockProductService)
	router := setupTestRouter(svc, &stubTrigger{})

	url := "https://shop.example.com/item/42"
	product := &entity.Product{
		ID:           uuid.New(),
		URL:          url,
		Name:         "Widget",
		CurrentPrice: 1500,
		CreatedAt:    time.Now(),
	}
	svc.On("AddProduct", mock.Anything, url).Return(product, nil)

	body, _ := json.Marshal(entity.AddProductRequest{URL: url})

	// Act
	w := performRequest(router, http.MethodPost, "/api/products", body)

	// Assert
	assert.Equal(t, http.StatusCreated, w.Code)

	var resp entity.Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, product.ID, resp.ID)
	assert.Equal(t, "Widget", resp.Name)
	svc.AssertExpectations(t)
}

func TestAddProduct_InvalidBody(t *testing.T) {
	// Arrange
	svc := new(MockProductService)
	router := setupTestRouter(svc, &stubTrigger{})

	// Act
	w := performRequest(router, http.MethodPost, "/api/products", []byte("{not json"))

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "AddProduct", mock.Anything, mock.Anything)
}

func TestAddProduct_MissingURL(t *testing.T) {
	// Arrange
	svc := new(MockProductService)
	router := setupTestRouter(svc, &stubTrigger{})

	// Act
	w := performRequest(router, http.MethodPost, "/api/products", []byte(`{}`))

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "AddProduct", mock.Anything, mock.Anything)
}

func TestAddProduct_NotAValidURL(t *testing.T) {
	// Arrange
	svc := new(MockProductService)
	router := setupTestRouter(svc, &stubTrigger{})

	body, _ := json.Marshal(entity.AddProductRequest{URL: "not-a-url"})

	// Act
	w := performRequest(router, http.MethodPost, "/api/products", body)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "AddProduct", mock.Anything, mock.Anything)
}

func TestAddProduct_FetchFailed(t *testing.T) {
	// Arrange
	svc := new(MockProductService)
	router := setupTestRouter(svc, &stubTrigger{})

	url := "https://shop.example.com/item/gone"
	svc.On("AddProduct", mock.Anything, url).Return(nil, service.ErrFetchFailed)

	body, _ := json.Marshal(entity.AddProductRequest{URL: url})

	// Act
	w := performRequest(router, http.MethodPost, "/api/products", body)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Failed to fetch product page")
}

func TestAddProduct_StoreFailed(t *testing.T) {
	// Arrange
	svc := new(MockProductService)
	router := setupTestRouter(svc, &stubTrigger{})

	url := "https://shop.example.com/item/42"
	svc.On("AddProduct", mock.Anything, url).Return(nil, errors.New("db down"))

	body, _ := json.Marshal(entity.AddProductRequest{URL: url})

	// Act
	w := performRequest(router, http.MethodPost, "/api/products", body)

	// Assert
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// ===================== GetProduct Tests =====================

func TestGetProduct_OK(t *testing.T) {
	// Arrange
	svc := new(MockProductService)
	router := setupTestRouter(svc, &stubTrigger{})

	id := uuid.New()
	svc.On("GetProduct", mock.Anything, id).Return(&entity.Product{
		ID: id, URL: "https://shop.example.com/a", Name: "A", CurrentPrice: 100,
	}, nil)

	// Act
	w := performRequest(router, http.MethodGet, "/api/products/"+id.String(), nil)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetProduct_InvalidID(t *testing.T) {
	// Arrange
	svc := new(MockProductService)
	router := setupTestRouter(svc, &stubTrigger{})

	// Act
	w := performRequest(router, http.MethodGet, "/api/products/not-a-uuid", nil)

	// Assert
	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "GetProduct", mock.Anything, mock.Anything)
}

func TestGetProduct_NotFound(t *testing.T) {
	// Arrange
	svc := new(MockProductService)
	router := setupTestRouter(svc, &stubTrigger{})

	id := uuid.New()
	svc.On("GetProduct", mock.Anything, id).Return(nil, service.ErrProductNotFound)

	// Act
	w := performRequest(router, http.MethodGet, "/api/products/"+id.String(), nil)

	// Assert
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ===================== GetHistory Tests =====================

func TestGetHistory_OK(t *testing.T) {
	// Arrange
	svc := new(MockProductService)
	router := setupTestRouter(svc, &stubTrigger{})

	id := uuid.New()
	svc.On("GetHistory", mock.Anything, id).Return([]entity.PriceHistory{
		{ID: uuid.New(), ProductID: id, Price: 100, CheckedAt: time.Now()},
	}, nil)

	// Act
	w := performRequest(router, http.MethodGet, "/api/products/"+id.String()+"/history", nil)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)

	var resp entity.HistoryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, id.String(), resp.ProductID)
	assert.Equal(t, 1, resp.Total)
}

func TestGetHistory_NotFound(t *testing.T) {
	// Arrange
	svc := new(MockProductService)
	router := setupTestRouter(svc, &stubTrigger{})

	id := uuid.New()
	svc.On("GetHistory", mock.Anything, id).Return(nil, service.ErrProductNotFound)

	// Act
	w := performRequest(router, http.MethodGet, "/api/products/"+id.String()+"/history", nil)

	// Assert
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ===================== DeleteProduct Tests =====================

func TestDeleteProduct_OK(t *testing.T) {
	// Arrange
	svc := new(MockProductService)
	router := setupTestRouter(svc, &stubTrigger{})

	id := uuid.New()
	svc.On("DeleteProduct", mock.Anything, id).Return(nil)

	// Act
	w := performRequest(router, http.MethodDelete, "/api/products/"+id.String(), nil)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "deleted")
}

func TestDeleteProduct_NotFound(t *testing.T) {
	// Arrange
	svc := new(MockProductService)
	router := setupTestRouter(svc, &stubTrigger{})

	id := uuid.New()
	svc.On("DeleteProduct", mock.Anything, id).Return(service.ErrProductNotFound)

	// Act
	w := performRequest(router, http.MethodDelete, "/api/products/"+id.String(), nil)

	// Assert
	assert.Equal(t, http.StatusNotFound, w.Code)
}

// ===================== CheckNow Tests =====================

func TestCheckNow_Accepted(t *testing.T) {
	// Arrange
	svc := new(MockProductService)
	router := setupTestRouter(svc, &stubTrigger{accept: true})

	// Act
	w := performRequest(router, http.MethodPost, "/api/products/check", nil)

	// Assert
	assert.Equal(t, http.StatusAccepted, w.Code)

	var resp entity.CheckResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Accepted)
}

func TestCheckNow_ConflictWhileSweepRunning(t *testing.T) {
	// Arrange
	svc := new(MockProductService)
	router := setupTestRouter(svc, &stubTrigger{accept: false})

	// Act
	w := performRequest(router, http.MethodPost, "/api/products/check", nil)

	// Assert
	assert.Equal(t, http.StatusConflict, w.Code)

	var resp entity.CheckResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Accepted)
}

// ===================== ExportCSV Tests =====================

func TestExportCSV_OK(t *testing.T) {
	// Arrange
	svc := new(MockProductService)
	router := setupTestRouter(svc, &stubTrigger{})

	svc.On("ExportCSV", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			w := args.Get(1).(io.Writer)
			_, _ = w.Write([]byte("id,name,url,current_price\n"))
		}).
		Return(nil)

	// Act
	w := performRequest(router, http.MethodGet, "/api/products/export", nil)

	// Assert
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, w.Body.String(), "id,name,url,current_price")
}

func TestExportCSV_ServiceError(t *testing.T) {
	// Arrange
	svc := new(MockProductService)
	router := setupTestRouter(svc, &stubTrigger{})

	svc.On("ExportCSV", mock.Anything, mock.Anything).Return(errors.New("db down"))

	// Act
	w := performRequest(router, http.MethodGet, "/api/products/export", nil)

	// Assert
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
