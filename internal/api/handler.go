package api

import (
	"net/http"
	"strconv"
	"time"

	"sales-service/internal/domain"
	"sales-service/internal/service"
	"sales-service/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler contains HTTP handlers
type Handler struct {
	products   *service.ProductService
	categories *service.CategoryService
	customers  *service.CustomerService
	sales      *service.SaleService
}

// NewHandler creates a new HTTP handler
func NewHandler(
	products *service.ProductService,
	categories *service.CategoryService,
	customers *service.CustomerService,
	sales *service.SaleService,
) *Handler {
	return &Handler{
		products:   products,
		categories: categories,
		customers:  customers,
		sales:      sales,
	}
}

// SetupRoutes sets up HTTP routes
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())
	router.Use(gin.Logger())

	router.GET("/health", h.healthCheck)
	router.GET("/ready", h.readinessCheck)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.POST("/products", h.createProduct)
		v1.GET("/products", h.listProducts)
		v1.GET("/products/:id", h.getProduct)
		v1.PUT("/products/:id", h.updateProduct)
		v1.POST("/products/:id/stock", h.adjustStock)
		v1.POST("/products/:id/activate", h.activateProduct)
		v1.POST("/products/:id/deactivate", h.deactivateProduct)

		v1.POST("/categories", h.createCategory)
		v1.GET("/categories", h.listCategories)
		v1.GET("/categories/:id", h.getCategory)
		v1.PUT("/categories/:id", h.updateCategory)

		v1.POST("/customers", h.createCustomer)
		v1.GET("/customers", h.listCustomers)
		v1.GET("/customers/:id", h.getCustomer)
		v1.PUT("/customers/:id", h.updateCustomer)
		v1.POST("/customers/:id/deactivate", h.deactivateCustomer)

		v1.POST("/sales", h.createSale)
		v1.GET("/sales", h.listSales)
		v1.GET("/sales/:id", h.getSale)
		v1.POST("/sales/:id/items", h.addSaleItem)
		v1.DELETE("/sales/:id/items/:productId", h.removeSaleItem)
		v1.POST("/sales/:id/discount", h.applyDiscount)
		v1.POST("/sales/:id/complete", h.completeSale)
		v1.POST("/sales/:id/cancel", h.cancelSale)
	}
}

// healthCheck handles health check requests
func (h *Handler) healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "healthy",
		"time":   time.Now().Unix(),
	})
}

// readinessCheck handles readiness check requests
func (h *Handler) readinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"time":   time.Now().Unix(),
	})
}

// respond maps a service outcome onto the HTTP response: a fatal error is a
// 500, a NotFound failure a 404, any other business failure a 400 carrying
// the code/message pair, and success the given status with the value.
func respond[T any](c *gin.Context, res domain.Result[T], err error, okStatus int) {
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "internal error",
		})
		return
	}
	if !res.IsOK() {
		f := res.Failure()
		status := http.StatusBadRequest
		if f.Code == domain.CodeNotFound {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{
			"code":  f.Code,
			"error": f.Message,
		})
		return
	}
	c.JSON(okStatus, res.Value())
}

func parseID(c *gin.Context, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid id",
		})
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"details": err.Error(),
		})
		return false
	}
	return true
}

func (h *Handler) createProduct(c *gin.Context) {
	var cmd service.CreateProductCommand
	if !bindJSON(c, &cmd) {
		return
	}
	res, err := h.products.CreateProduct(c.Request.Context(), cmd)
	respond(c, res, err, http.StatusCreated)
}

func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.products.ListProducts(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) getProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	res, err := h.products.GetProduct(c.Request.Context(), id)
	respond(c, res, err, http.StatusOK)
}

func (h *Handler) updateProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var cmd service.UpdateProductCommand
	if !bindJSON(c, &cmd) {
		return
	}
	res, err := h.products.UpdateProduct(c.Request.Context(), id, cmd)
	respond(c, res, err, http.StatusOK)
}

func (h *Handler) adjustStock(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var cmd service.AdjustStockCommand
	if !bindJSON(c, &cmd) {
		return
	}
	res, err := h.products.AdjustStock(c.Request.Context(), id, cmd)
	respond(c, res, err, http.StatusOK)
}

func (h *Handler) activateProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	res, err := h.products.ActivateProduct(c.Request.Context(), id)
	respond(c, res, err, http.StatusOK)
}

func (h *Handler) deactivateProduct(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	res, err := h.products.DeactivateProduct(c.Request.Context(), id)
	respond(c, res, err, http.StatusOK)
}

func (h *Handler) createCategory(c *gin.Context) {
	var cmd service.CreateCategoryCommand
	if !bindJSON(c, &cmd) {
		return
	}
	res, err := h.categories.CreateCategory(c.Request.Context(), cmd)
	respond(c, res, err, http.StatusCreated)
}

func (h *Handler) listCategories(c *gin.Context) {
	categories, err := h.categories.ListCategories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, categories)
}

func (h *Handler) getCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	res, err := h.categories.GetCategory(c.Request.Context(), id)
	respond(c, res, err, http.StatusOK)
}

func (h *Handler) updateCategory(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var cmd service.UpdateCategoryCommand
	if !bindJSON(c, &cmd) {
		return
	}
	res, err := h.categories.UpdateCategory(c.Request.Context(), id, cmd)
	respond(c, res, err, http.StatusOK)
}

func (h *Handler) createCustomer(c *gin.Context) {
	var cmd service.CreateCustomerCommand
	if !bindJSON(c, &cmd) {
		return
	}
	res, err := h.customers.CreateCustomer(c.Request.Context(), cmd)
	respond(c, res, err, http.StatusCreated)
}

func (h *Handler) listCustomers(c *gin.Context) {
	customers, err := h.customers.ListCustomers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, customers)
}

func (h *Handler) getCustomer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	res, err := h.customers.GetCustomer(c.Request.Context(), id)
	respond(c, res, err, http.StatusOK)
}

func (h *Handler) updateCustomer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var cmd service.UpdateCustomerCommand
	if !bindJSON(c, &cmd) {
		return
	}
	res, err := h.customers.UpdateCustomer(c.Request.Context(), id, cmd)
	respond(c, res, err, http.StatusOK)
}

func (h *Handler) deactivateCustomer(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	res, err := h.customers.DeactivateCustomer(c.Request.Context(), id)
	respond(c, res, err, http.StatusOK)
}

func (h *Handler) createSale(c *gin.Context) {
	var cmd service.CreateSaleCommand
	if !bindJSON(c, &cmd) {
		return
	}
	res, err := h.sales.CreateSale(c.Request.Context(), cmd)
	respond(c, res, err, http.StatusCreated)
}

// listSales returns sales filtered by ?status=, defaulting to PENDING.
func (h *Handler) listSales(c *gin.Context) {
	status := domain.SaleStatus(c.DefaultQuery("status", string(domain.SaleStatusPending)))
	switch status {
	case domain.SaleStatusPending, domain.SaleStatusCompleted, domain.SaleStatusCancelled:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	sales, err := h.sales.ListSales(c.Request.Context(), status)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}
	c.JSON(http.StatusOK, sales)
}

func (h *Handler) getSale(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	res, err := h.sales.GetSale(c.Request.Context(), id)
	respond(c, res, err, http.StatusOK)
}

func (h *Handler) addSaleItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var cmd service.SaleItemCommand
	if !bindJSON(c, &cmd) {
		return
	}
	res, err := h.sales.AddItem(c.Request.Context(), id, cmd)
	respond(c, res, err, http.StatusOK)
}

func (h *Handler) removeSaleItem(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	productID, ok := parseID(c, "productId")
	if !ok {
		return
	}
	res, err := h.sales.RemoveItem(c.Request.Context(), id, productID)
	respond(c, res, err, http.StatusOK)
}

func (h *Handler) applyDiscount(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var cmd service.ApplyDiscountCommand
	if !bindJSON(c, &cmd) {
		return
	}
	res, err := h.sales.ApplyDiscount(c.Request.Context(), id, cmd)
	respond(c, res, err, http.StatusOK)
}

func (h *Handler) completeSale(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	res, err := h.sales.CompleteSale(c.Request.Context(), id)
	respond(c, res, err, http.StatusOK)
}

func (h *Handler) cancelSale(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	res, err := h.sales.CancelSale(c.Request.Context(), id)
	respond(c, res, err, http.StatusOK)
}

// prometheusMiddleware collects HTTP metrics
func prometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Writer.Status())

		util.HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Observe(duration)

		util.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method,
			c.FullPath(),
			status,
		).Inc()
	}
}
