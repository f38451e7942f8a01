package sales

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pos/backend/internal/domain/catalog"
	"github.com/pos/backend/internal/domain/partner"
	"github.com/pos/backend/internal/domain/sales"
	"github.com/pos/backend/internal/domain/shared"
)

// SaleService handles the sale lifecycle: create, cancel and refund.
// Every stock side effect is delegated to the repositories, which
// bundle it with the status change in one transaction.
type SaleService struct {
	saleRepo           sales.SaleRepository
	refundRepo         sales.RefundRepository
	productRepo        catalog.ProductRepository
	customerRepo       partner.CustomerRepository
	allowNegativeStock bool
	logger             *zap.Logger
}

// NewSaleService creates a new SaleService
func NewSaleService(
	saleRepo sales.SaleRepository,
	refundRepo sales.RefundRepository,
	productRepo catalog.ProductRepository,
	customerRepo partner.CustomerRepository,
	allowNegativeStock bool,
	logger *zap.Logger,
) *SaleService {
	return &SaleService{
		saleRepo:           saleRepo,
		refundRepo:         refundRepo,
		productRepo:        productRepo,
		customerRepo:       customerRepo,
		allowNegativeStock: allowNegativeStock,
		logger:             logger,
	}
}

// Create creates a sale, deducting stock atomically.
// The total is always recomputed server side from catalog prices.
func (s *SaleService) Create(ctx context.Context, tenantID, userID uuid.UUID, req CreateSaleRequest) (*SaleResponse, error) {
	saleNumber, err := s.saleRepo.GenerateSaleNumber(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	sale, err := sales.NewSale(tenantID, saleNumber, userID, sales.PaymentMethod(req.PaymentMethod), req.Note)
	if err != nil {
		return nil, err
	}

	if req.CustomerID != nil {
		customer, err := s.customerRepo.FindByIDForTenant(ctx, tenantID, *req.CustomerID)
		if err != nil {
			return nil, err
		}
		if err := sale.SetCustomer(customer.ID, customer.Name); err != nil {
			return nil, err
		}
	}

	// Merge duplicate product lines before resolving the catalog
	quantities := make(map[uuid.UUID]int, len(req.Items))
	order := make([]uuid.UUID, 0, len(req.Items))
	for _, item := range req.Items {
		if _, seen := quantities[item.ProductID]; !seen {
			order = append(order, item.ProductID)
		}
		quantities[item.ProductID] += item.Quantity
	}

	products, err := s.productRepo.FindByIDs(ctx, tenantID, order)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	for _, productID := range order {
		product, ok := byID[productID]
		if !ok {
			return nil, shared.ErrNotFound
		}
		if !product.Active {
			return nil, shared.NewDomainError("PRODUCT_INACTIVE", "Product is not available for sale: "+product.Name)
		}
		if _, err := sale.AddItem(product.ID, product.Name, product.SKU, quantities[productID], product.UnitPrice()); err != nil {
			return nil, err
		}
	}

	if err := sale.Finalize(); err != nil {
		return nil, err
	}

	if err := s.saleRepo.CreateWithStockDeduction(ctx, sale, s.allowNegativeStock); err != nil {
		return nil, err
	}

	s.logger.Info("sale created",
		zap.String("tenant_id", tenantID.String()),
		zap.String("sale_number", sale.SaleNumber),
		zap.String("total", sale.Total.String()),
		zap.Int("items", sale.ItemCount()),
	)

	response := ToSaleResponse(sale)
	return &response, nil
}

// GetByID retrieves a sale by ID
func (s *SaleService) GetByID(ctx context.Context, tenantID, saleID uuid.UUID) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindByIDForTenant(ctx, tenantID, saleID)
	if err != nil {
		return nil, err
	}
	response := ToSaleResponse(sale)
	return &response, nil
}

// GetByNumber retrieves a sale by its sale number (the receipt identifier)
func (s *SaleService) GetByNumber(ctx context.Context, tenantID uuid.UUID, saleNumber string) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindBySaleNumber(ctx, tenantID, saleNumber)
	if err != nil {
		return nil, err
	}
	response := ToSaleResponse(sale)
	return &response, nil
}

// List retrieves sales with filtering and pagination
func (s *SaleService) List(ctx context.Context, tenantID uuid.UUID, filter SaleListFilter) ([]SaleResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}

	if filter.CustomerID != nil {
		domainFilter.Filters["customer_id"] = *filter.CustomerID
	}
	if filter.Status != "" {
		domainFilter.Filters["status"] = filter.Status
	}
	if filter.PaymentMethod != "" {
		domainFilter.Filters["payment_method"] = filter.PaymentMethod
	}
	if filter.From != nil {
		domainFilter.Filters["from"] = *filter.From
	}
	if filter.To != nil {
		domainFilter.Filters["to"] = *filter.To
	}

	result, err := s.saleRepo.FindAllForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	total, err := s.saleRepo.CountForTenant(ctx, tenantID, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	return ToSaleResponses(result), total, nil
}

// Cancel cancels a completed sale and restores its stock exactly once
func (s *SaleService) Cancel(ctx context.Context, tenantID, saleID uuid.UUID, req CancelSaleRequest) (*SaleResponse, error) {
	sale, err := s.saleRepo.FindByIDForTenant(ctx, tenantID, saleID)
	if err != nil {
		return nil, err
	}

	if err := sale.Cancel(req.Reason); err != nil {
		return nil, err
	}

	if err := s.saleRepo.CancelWithStockRestore(ctx, sale); err != nil {
		return nil, err
	}

	s.logger.Info("sale cancelled",
		zap.String("tenant_id", tenantID.String()),
		zap.String("sale_number", sale.SaleNumber),
	)

	response := ToSaleResponse(sale)
	return &response, nil
}

// Refund refunds a completed sale: records the refund, restores stock
// and moves the sale to REFUNDED, all in one transaction.
func (s *SaleService) Refund(ctx context.Context, tenantID, saleID, userID uuid.UUID, req RefundSaleRequest) (*RefundResponse, error) {
	sale, err := s.saleRepo.FindByIDForTenant(ctx, tenantID, saleID)
	if err != nil {
		return nil, err
	}

	refundNumber, err := s.refundRepo.GenerateRefundNumber(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	refund, err := sales.NewRefund(refundNumber, sale, userID, req.Reason)
	if err != nil {
		return nil, err
	}

	if err := sale.MarkRefunded(); err != nil {
		return nil, err
	}

	if err := s.refundRepo.CreateWithStockRestore(ctx, refund, sale); err != nil {
		return nil, err
	}

	s.logger.Info("sale refunded",
		zap.String("tenant_id", tenantID.String()),
		zap.String("sale_number", sale.SaleNumber),
		zap.String("refund_number", refund.RefundNumber),
	)

	response := ToRefundResponse(refund)
	return &response, nil
}

// GetRefundForSale returns the refund record for a sale, if one exists
func (s *SaleService) GetRefundForSale(ctx context.Context, tenantID, saleID uuid.UUID) (*RefundResponse, error) {
	refund, err := s.refundRepo.FindBySaleID(ctx, tenantID, saleID)
	if err != nil {
		return nil, err
	}
	response := ToRefundResponse(refund)
	return &response, nil
}
