package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	salesapp "github.com/pos/backend/internal/application/sales"
	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/partner"
	"github.com/pos/backend/internal/domain/sales"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/pos/backend/internal/domain/shared/valueobject"
	"github.com/pos/backend/internal/interfaces/http/middleware"
)

type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*sales.Sale, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindBySaleNumber(ctx context.Context, tenantID uuid.UUID, saleNumber string) (*sales.Sale, error) {
	args := m.Called(ctx, tenantID, saleNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]sales.Sale, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sales.Sale), args.Error(1)
}

func (m *MockSaleRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSaleRepository) GenerateSaleNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

func (m *MockSaleRepository) CreateWithStockDeduction(ctx context.Context, sale *sales.Sale, allowNegativeStock bool) error {
	args := m.Called(ctx, sale, allowNegativeStock)
	return args.Error(0)
}

func (m *MockSaleRepository) CancelWithStockRestore(ctx context.Context, sale *sales.Sale) error {
	args := m.Called(ctx, sale)
	return args.Error(0)
}

func (m *MockSaleRepository) GetStats(ctx context.Context, tenantID uuid.UUID, now time.Time) (*sales.Stats, error) {
	args := m.Called(ctx, tenantID, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Stats), args.Error(1)
}

type MockRefundRepository struct {
	mock.Mock
}

func (m *MockRefundRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*sales.Refund, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Refund), args.Error(1)
}

func (m *MockRefundRepository) FindBySaleID(ctx context.Context, tenantID, saleID uuid.UUID) (*sales.Refund, error) {
	args := m.Called(ctx, tenantID, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Refund), args.Error(1)
}

func (m *MockRefundRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]sales.Refund, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sales.Refund), args.Error(1)
}

func (m *MockRefundRepository) GenerateRefundNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	args := m.Called(ctx, tenantID)
	return args.String(0), args.Error(1)
}

func (m *MockRefundRepository) CreateWithStockRestore(ctx context.Context, refund *sales.Refund, sale *sales.Sale) error {
	args := m.Called(ctx, refund, sale)
	return args.Error(0)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByBarcode(ctx context.Context, tenantID uuid.UUID, barcode string) (*catalog.Product, error) {
	args := m.Called(ctx, tenantID, barcode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, tenantID uuid.UUID, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, tenantID, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindLowStock(ctx context.Context, tenantID uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) ListCategories(ctx context.Context, tenantID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockProductRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockProductRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) ExistsBySKU(ctx context.Context, tenantID uuid.UUID, sku string) (bool, error) {
	args := m.Called(ctx, tenantID, sku)
	return args.Bool(0), args.Error(1)
}

type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, tenantID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]partner.Customer, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindSummariesForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]partner.CustomerSummary, error) {
	args := m.Called(ctx, tenantID, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]partner.CustomerSummary), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	args := m.Called(ctx, customer)
	return args.Error(0)
}

func (m *MockCustomerRepository) DeleteForTenant(ctx context.Context, tenantID, id uuid.UUID) error {
	args := m.Called(ctx, tenantID, id)
	return args.Error(0)
}

func (m *MockCustomerRepository) CountForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, tenantID, filter)
	return args.Get(0).(int64), args.Error(1)
}

var testTenantID = uuid.MustParse("00000000-0000-0000-0000-000000000001")

type saleTestEnv struct {
	router       *gin.Engine
	saleRepo     *MockSaleRepository
	refundRepo   *MockRefundRepository
	productRepo  *MockProductRepository
	customerRepo *MockCustomerRepository
}

func setupSaleTestRouter() *saleTestEnv {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()

	env := &saleTestEnv{
		saleRepo:     new(MockSaleRepository),
		refundRepo:   new(MockRefundRepository),
		productRepo:  new(MockProductRepository),
		customerRepo: new(MockCustomerRepository),
	}

	service := salesapp.NewSaleService(env.saleRepo, env.refundRepo, env.productRepo, env.customerRepo, false, zap.NewNop())
	handler := NewSaleHandler(service)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		setJWTContext(c, testTenantID, uuid.New())
		c.Next()
	})

	group := router.Group("/api/v1/sales")
	group.POST("", handler.Create)
	group.GET("/number/:number", handler.GetByNumber)
	group.GET("/:id", handler.GetByID)
	group.POST("/:id/cancel", handler.Cancel)
	group.POST("/:id/refund", handler.Refund)
	group.GET("/:id/refund", handler.GetRefund)

	env.router = router
	return env
}

func completedSaleFixture(t *testing.T, tenantID uuid.UUID) *sales.Sale {
	t.Helper()
	sale, err := sales.NewSale(tenantID, "V-000042", uuid.New(), sales.PaymentMethodCash, "")
	require.NoError(t, err)
	_, err = sale.AddItem(uuid.New(), "Coca Cola 1.5L", "COCA-1500", 2, valueobject.NewMoneyARSFromFloat(1500))
	require.NoError(t, err)
	require.NoError(t, sale.Finalize())
	sale.ClearDomainEvents()
	return sale
}

func TestSaleHandler_Create(t *testing.T) {
	env := setupSaleTestRouter()

	product, err := catalog.NewProduct(testTenantID, "Coca Cola 1.5L", valueobject.NewMoneyARSFromFloat(1500))
	require.NoError(t, err)
	require.NoError(t, product.SetQuantity(10))

	env.saleRepo.On("GenerateSaleNumber", mock.Anything, testTenantID).Return("V-000001", nil)
	env.productRepo.On("FindByIDs", mock.Anything, testTenantID, mock.Anything).Return([]catalog.Product{*product}, nil)
	env.saleRepo.On("CreateWithStockDeduction", mock.Anything, mock.Anything, false).Return(nil)

	body, _ := json.Marshal(map[string]interface{}{
		"payment_method": "CASH",
		"items": []map[string]interface{}{
			{"product_id": product.ID.String(), "quantity": 2},
		},
	})

	req, _ := http.NewRequest(http.MethodPost, "/api/v1/sales", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.True(t, response["success"].(bool))

	data := response["data"].(map[string]interface{})
	assert.Equal(t, "V-000001", data["sale_number"])
	assert.Equal(t, "COMPLETED", data["status"])
	assert.Equal(t, "3000", data["total"])

	env.saleRepo.AssertExpectations(t)
	env.productRepo.AssertExpectations(t)
}

func TestSaleHandler_Create_InvalidPaymentMethod(t *testing.T) {
	env := setupSaleTestRouter()

	body, _ := json.Marshal(map[string]interface{}{
		"payment_method": "BITCOIN",
		"items": []map[string]interface{}{
			{"product_id": uuid.New().String(), "quantity": 1},
		},
	})

	req, _ := http.NewRequest(http.MethodPost, "/api/v1/sales", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_VALIDATION")
	env.saleRepo.AssertNotCalled(t, "GenerateSaleNumber", mock.Anything, mock.Anything)
}

func TestSaleHandler_Create_EmptyItems(t *testing.T) {
	env := setupSaleTestRouter()

	body, _ := json.Marshal(map[string]interface{}{
		"payment_method": "CASH",
		"items":          []map[string]interface{}{},
	})

	req, _ := http.NewRequest(http.MethodPost, "/api/v1/sales", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env.saleRepo.AssertNotCalled(t, "GenerateSaleNumber", mock.Anything, mock.Anything)
}

func TestSaleHandler_Create_InsufficientStock(t *testing.T) {
	env := setupSaleTestRouter()

	product, err := catalog.NewProduct(testTenantID, "Coca Cola 1.5L", valueobject.NewMoneyARSFromFloat(1500))
	require.NoError(t, err)
	require.NoError(t, product.SetQuantity(1))

	env.saleRepo.On("GenerateSaleNumber", mock.Anything, testTenantID).Return("V-000002", nil)
	env.productRepo.On("FindByIDs", mock.Anything, testTenantID, mock.Anything).Return([]catalog.Product{*product}, nil)
	env.saleRepo.On("CreateWithStockDeduction", mock.Anything, mock.Anything, false).Return(shared.ErrInsufficientStock)

	body, _ := json.Marshal(map[string]interface{}{
		"payment_method": "CASH",
		"items": []map[string]interface{}{
			{"product_id": product.ID.String(), "quantity": 5},
		},
	})

	req, _ := http.NewRequest(http.MethodPost, "/api/v1/sales", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_INSUFFICIENT_STOCK")
}

func TestSaleHandler_GetByID_NotFound(t *testing.T) {
	env := setupSaleTestRouter()

	saleID := uuid.New()
	env.saleRepo.On("FindByIDForTenant", mock.Anything, testTenantID, saleID).Return(nil, shared.ErrNotFound)

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/sales/"+saleID.String(), nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_NOT_FOUND")
}

func TestSaleHandler_GetByID_InvalidID(t *testing.T) {
	env := setupSaleTestRouter()

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/sales/not-a-uuid", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSaleHandler_GetByNumber(t *testing.T) {
	env := setupSaleTestRouter()

	sale := completedSaleFixture(t, testTenantID)
	env.saleRepo.On("FindBySaleNumber", mock.Anything, testTenantID, "V-000042").Return(sale, nil)

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/sales/number/V-000042", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "V-000042", data["sale_number"])
	env.saleRepo.AssertExpectations(t)
}

func TestSaleHandler_GetByNumber_NotFound(t *testing.T) {
	env := setupSaleTestRouter()

	env.saleRepo.On("FindBySaleNumber", mock.Anything, testTenantID, "V-999999").Return(nil, shared.ErrNotFound)

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/sales/number/V-999999", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSaleHandler_Cancel(t *testing.T) {
	env := setupSaleTestRouter()

	sale := completedSaleFixture(t, testTenantID)
	env.saleRepo.On("FindByIDForTenant", mock.Anything, testTenantID, sale.ID).Return(sale, nil)
	env.saleRepo.On("CancelWithStockRestore", mock.Anything, sale).Return(nil)

	body, _ := json.Marshal(map[string]interface{}{"reason": "customer changed their mind"})
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/sales/"+sale.ID.String()+"/cancel", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "CANCELLED", data["status"])
	env.saleRepo.AssertExpectations(t)
}

func TestSaleHandler_Cancel_AlreadyCancelled(t *testing.T) {
	env := setupSaleTestRouter()

	sale := completedSaleFixture(t, testTenantID)
	require.NoError(t, sale.Cancel("first cancellation"))
	env.saleRepo.On("FindByIDForTenant", mock.Anything, testTenantID, sale.ID).Return(sale, nil)

	body, _ := json.Marshal(map[string]interface{}{"reason": "again"})
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/sales/"+sale.ID.String()+"/cancel", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_INVALID_STATE")
	env.saleRepo.AssertNotCalled(t, "CancelWithStockRestore", mock.Anything, mock.Anything)
}

func TestSaleHandler_Refund(t *testing.T) {
	env := setupSaleTestRouter()

	sale := completedSaleFixture(t, testTenantID)
	env.saleRepo.On("FindByIDForTenant", mock.Anything, testTenantID, sale.ID).Return(sale, nil)
	env.refundRepo.On("GenerateRefundNumber", mock.Anything, testTenantID).Return("DEV-000001", nil)
	env.refundRepo.On("CreateWithStockRestore", mock.Anything, mock.Anything, sale).Return(nil)

	body, _ := json.Marshal(map[string]interface{}{"reason": "defective product"})
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/sales/"+sale.ID.String()+"/refund", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	data := response["data"].(map[string]interface{})
	assert.Equal(t, "DEV-000001", data["refund_number"])
	assert.Equal(t, "V-000042", data["sale_number"])
	env.refundRepo.AssertExpectations(t)
}

func TestSaleHandler_Refund_MissingReason(t *testing.T) {
	env := setupSaleTestRouter()

	body, _ := json.Marshal(map[string]interface{}{})
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/sales/"+uuid.New().String()+"/refund", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	env.saleRepo.AssertNotCalled(t, "FindByIDForTenant", mock.Anything, mock.Anything, mock.Anything)
}

func TestSaleHandler_GetRefund_NotFound(t *testing.T) {
	env := setupSaleTestRouter()

	saleID := uuid.New()
	env.refundRepo.On("FindBySaleID", mock.Anything, testTenantID, saleID).Return(nil, shared.ErrNotFound)

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/sales/"+saleID.String()+"/refund", nil)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}
