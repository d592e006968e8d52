package handler

import (
	"encoding/csv"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rl1809/retail-core/internal/core/domain"
	"github.com/rl1809/retail-core/internal/core/service"
)

// HTTPHandler exposes the catalog, inventory, order and reporting services
// over JSON.
type HTTPHandler struct {
	catalog   *service.CatalogService
	inventory *service.InventoryService
	orders    *service.OrderService
	reporting *service.ReportingService
	logger    *zap.Logger
}

func NewHTTPHandler(
	catalog *service.CatalogService,
	inventory *service.InventoryService,
	orders *service.OrderService,
	reporting *service.ReportingService,
	logger *zap.Logger,
) *HTTPHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPHandler{
		catalog:   catalog,
		inventory: inventory,
		orders:    orders,
		reporting: reporting,
		logger:    logger,
	}
}

// Router wires the Gin engine with all routes and middlewares.
func (h *HTTPHandler) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(h.logger))

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	{
		api.POST("/products", h.CreateProduct)
		api.GET("/products", h.ListProducts)
		api.GET("/products/:id", h.GetProduct)
		api.PUT("/products/:id", h.UpdateProduct)
		api.DELETE("/products/:id", h.DeleteProduct)

		api.POST("/customers", h.CreateCustomer)
		api.GET("/customers", h.ListCustomers)
		api.GET("/customers/:id", h.GetCustomer)
		api.PUT("/customers/:id", h.UpdateCustomer)
		api.DELETE("/customers/:id", h.DeleteCustomer)

		api.POST("/suppliers", h.CreateSupplier)
		api.GET("/suppliers", h.ListSuppliers)
		api.GET("/suppliers/:id", h.GetSupplier)
		api.PUT("/suppliers/:id", h.UpdateSupplier)
		api.DELETE("/suppliers/:id", h.DeleteSupplier)

		api.POST("/inventory/:id/receive", h.ReceiveStock)
		api.POST("/inventory/:id/issue", h.IssueStock)
		api.POST("/inventory/:id/adjust", h.AdjustStock)
		api.GET("/inventory/status", h.InventoryStatus)
		api.GET("/inventory/ledger", h.Ledger)

		api.POST("/orders", h.CreateOrder)
		api.GET("/orders", h.ListOrders)
		api.GET("/orders/:id", h.GetOrder)
		api.POST("/orders/:id/cancel", h.CancelOrder)

		api.GET("/reports/inventory", h.ExportInventoryReport)
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}

// writeError maps domain errors onto HTTP statuses. Insufficiency carries its
// per-line detail so clients can show every short line.
func (h *HTTPHandler) writeError(c *gin.Context, err error) {
	var insufficient *domain.InsufficientStockError
	if errors.As(err, &insufficient) {
		c.JSON(http.StatusConflict, gin.H{
			"error":       "insufficient stock",
			"short_lines": insufficient.Lines,
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrDuplicateRequest):
		c.JSON(http.StatusConflict, gin.H{"error": "duplicate request"})
	case errors.Is(err, domain.ErrInvalidState), errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		h.logger.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

func (h *HTTPHandler) CreateProduct(c *gin.Context) {
	var p domain.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	id, err := h.catalog.CreateProduct(c.Request.Context(), &p)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *HTTPHandler) GetProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	p, err := h.catalog.GetProduct(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *HTTPHandler) ListProducts(c *gin.Context) {
	products, err := h.catalog.ListProducts(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, products)
}

func (h *HTTPHandler) UpdateProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var p domain.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	p.ID = id
	if err := h.catalog.UpdateProduct(c.Request.Context(), p); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HTTPHandler) DeleteProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.catalog.DeleteProduct(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HTTPHandler) CreateCustomer(c *gin.Context) {
	var cust domain.Customer
	if err := c.ShouldBindJSON(&cust); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	id, err := h.catalog.CreateCustomer(c.Request.Context(), &cust)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *HTTPHandler) GetCustomer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	cust, err := h.catalog.GetCustomer(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cust)
}

func (h *HTTPHandler) ListCustomers(c *gin.Context) {
	customers, err := h.catalog.ListCustomers(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, customers)
}

func (h *HTTPHandler) UpdateCustomer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var cust domain.Customer
	if err := c.ShouldBindJSON(&cust); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	cust.ID = id
	if err := h.catalog.UpdateCustomer(c.Request.Context(), cust); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HTTPHandler) DeleteCustomer(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.catalog.DeleteCustomer(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HTTPHandler) CreateSupplier(c *gin.Context) {
	var sup domain.Supplier
	if err := c.ShouldBindJSON(&sup); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	id, err := h.catalog.CreateSupplier(c.Request.Context(), &sup)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

func (h *HTTPHandler) GetSupplier(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	sup, err := h.catalog.GetSupplier(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, sup)
}

func (h *HTTPHandler) ListSuppliers(c *gin.Context) {
	suppliers, err := h.catalog.ListSuppliers(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, suppliers)
}

func (h *HTTPHandler) UpdateSupplier(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var sup domain.Supplier
	if err := c.ShouldBindJSON(&sup); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	sup.ID = id
	if err := h.catalog.UpdateSupplier(c.Request.Context(), sup); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *HTTPHandler) DeleteSupplier(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.catalog.DeleteSupplier(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type stockMovementRequest struct {
	Quantity int    `json:"quantity"`
	Notes    string `json:"notes"`
}

func (h *HTTPHandler) ReceiveStock(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req stockMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	after, err := h.inventory.ReceiveStock(c.Request.Context(), id, req.Quantity, req.Notes)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quantity": after})
}

func (h *HTTPHandler) IssueStock(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req stockMovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	after, err := h.inventory.IssueStock(c.Request.Context(), id, req.Quantity, req.Notes)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quantity": after})
}

type adjustStockRequest struct {
	Quantity int    `json:"quantity"`
	Notes    string `json:"notes"`
}

func (h *HTTPHandler) AdjustStock(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req adjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.inventory.AdjustTo(c.Request.Context(), id, req.Quantity, req.Notes); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"quantity": req.Quantity})
}

func (h *HTTPHandler) InventoryStatus(c *gin.Context) {
	rows, err := h.reporting.GetInventoryStatus(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rows)
}

func (h *HTTPHandler) Ledger(c *gin.Context) {
	var productID int64
	if raw := c.Query("product_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product_id"})
			return
		}
		productID = id
	}

	var from, to *time.Time
	if raw := c.Query("from"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from timestamp"})
			return
		}
		from = &ts
	}
	if raw := c.Query("to"); raw != "" {
		ts, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to timestamp"})
			return
		}
		to = &ts
	}

	limit, _ := strconv.Atoi(c.Query("limit"))

	entries, err := h.reporting.GetLedger(c.Request.Context(), productID, from, to, limit)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

type createOrderRequest struct {
	RequestID     string                   `json:"request_id"`
	CustomerID    int64                    `json:"customer_id"`
	Lines         []service.OrderLineInput `json:"lines"`
	Discount      float64                  `json:"discount"`
	PaymentMethod domain.PaymentMethod     `json:"payment_method"`
}

func (h *HTTPHandler) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.RequestID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request_id is required"})
		return
	}

	orderID, err := h.orders.CreateOrder(c.Request.Context(),
		req.RequestID, req.CustomerID, req.Lines, req.Discount, req.PaymentMethod)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": orderID})
}

func (h *HTTPHandler) GetOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	order, lines, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order, "lines": lines})
}

func (h *HTTPHandler) ListOrders(c *gin.Context) {
	orders, err := h.orders.ListOrders(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (h *HTTPHandler) CancelOrder(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.orders.CancelOrder(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ExportInventoryReport streams the inventory report as CSV. The reporting
// service produces rows; this adapter owns the encoding.
func (h *HTTPHandler) ExportInventoryReport(c *gin.Context) {
	filter := service.ReportFilter(c.DefaultQuery("filter", "all"))

	rows, err := h.reporting.ExportInventoryRows(c.Request.Context(), filter)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="inventory_report.csv"`)
	w := csv.NewWriter(c.Writer)
	if err := w.WriteAll(rows); err != nil {
		h.logger.Error("csv write failed", zap.Error(err))
	}
}
