package router

import (
	"github.com/gin-gonic/gin"

	"github.com/pos/backend/internal/interfaces/http/handler"
)

// RouteRegistrar defines the interface for registering routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router manages HTTP route registration
type Router struct {
	engine     *gin.Engine
	apiVersion string
	registrars []RouteRegistrar
}

// NewRouter creates a new Router instance
func NewRouter(engine *gin.Engine) *Router {
	return &Router{
		engine:     engine,
		apiVersion: "v1",
		registrars: make([]RouteRegistrar, 0),
	}
}

// Register adds a RouteRegistrar to be registered later
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup registers all routes with the engine
func (r *Router) Setup() {
	api := r.engine.Group("/api/" + r.apiVersion)

	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// AuthRoutes wires the authentication endpoints
type AuthRoutes struct {
	handler *handler.AuthHandler
}

// NewAuthRoutes creates the auth route registrar
func NewAuthRoutes(h *handler.AuthHandler) *AuthRoutes {
	return &AuthRoutes{handler: h}
}

// RegisterRoutes registers auth routes
func (r *AuthRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", r.handler.Register)
		auth.POST("/login", r.handler.Login)
		auth.POST("/refresh", r.handler.Refresh)
		auth.GET("/me", r.handler.Me)
		auth.GET("/tenant", r.handler.Tenant)
	}
	rg.POST("/users", r.handler.CreateUser)
}

// ProductRoutes wires the product endpoints
type ProductRoutes struct {
	handler *handler.ProductHandler
}

// NewProductRoutes creates the product route registrar
func NewProductRoutes(h *handler.ProductHandler) *ProductRoutes {
	return &ProductRoutes{handler: h}
}

// RegisterRoutes registers product routes
func (r *ProductRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	products := rg.Group("/products")
	{
		products.POST("", r.handler.Create)
		products.GET("", r.handler.List)
		products.GET("/categories", r.handler.ListCategories)
		products.GET("/low-stock", r.handler.ListLowStock)
		products.GET("/barcode/:barcode", r.handler.GetByBarcode)
		products.GET("/:id", r.handler.GetByID)
		products.PUT("/:id", r.handler.Update)
		products.PUT("/:id/stock", r.handler.AdjustStock)
		products.DELETE("/:id", r.handler.Delete)
	}
}

// CustomerRoutes wires the customer endpoints
type CustomerRoutes struct {
	handler *handler.CustomerHandler
}

// NewCustomerRoutes creates the customer route registrar
func NewCustomerRoutes(h *handler.CustomerHandler) *CustomerRoutes {
	return &CustomerRoutes{handler: h}
}

// RegisterRoutes registers customer routes
func (r *CustomerRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	customers := rg.Group("/customers")
	{
		customers.POST("", r.handler.Create)
		customers.GET("", r.handler.List)
		customers.GET("/:id", r.handler.GetByID)
		customers.PUT("/:id", r.handler.Update)
		customers.DELETE("/:id", r.handler.Delete)
	}
}

// SaleRoutes wires the sale lifecycle endpoints
type SaleRoutes struct {
	handler *handler.SaleHandler
}

// NewSaleRoutes creates the sale route registrar
func NewSaleRoutes(h *handler.SaleHandler) *SaleRoutes {
	return &SaleRoutes{handler: h}
}

// RegisterRoutes registers sale routes
func (r *SaleRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	sales := rg.Group("/sales")
	{
		sales.POST("", r.handler.Create)
		sales.GET("", r.handler.List)
		sales.GET("/number/:number", r.handler.GetByNumber)
		sales.GET("/:id", r.handler.GetByID)
		sales.POST("/:id/cancel", r.handler.Cancel)
		sales.POST("/:id/refund", r.handler.Refund)
		sales.GET("/:id/refund", r.handler.GetRefund)
	}
}

// ReportRoutes wires the reporting endpoints
type ReportRoutes struct {
	handler *handler.ReportHandler
}

// NewReportRoutes creates the report route registrar
func NewReportRoutes(h *handler.ReportHandler) *ReportRoutes {
	return &ReportRoutes{handler: h}
}

// RegisterRoutes registers report routes
func (r *ReportRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	reports := rg.Group("/reports")
	{
		reports.GET("/stats", r.handler.GetStats)
	}
}

// SystemRoutes wires the system endpoints
type SystemRoutes struct {
	handler *handler.SystemHandler
}

// NewSystemRoutes creates the system route registrar
func NewSystemRoutes(h *handler.SystemHandler) *SystemRoutes {
	return &SystemRoutes{handler: h}
}

// RegisterRoutes registers system routes
func (r *SystemRoutes) RegisterRoutes(rg *gin.RouterGroup) {
	system := rg.Group("/system")
	{
		system.GET("/info", r.handler.GetSystemInfo)
	}
}
