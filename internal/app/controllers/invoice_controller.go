package controllers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stayease/stayease-api/internal/app/models"
	"github.com/stayease/stayease-api/internal/app/models/dto"
	"github.com/stayease/stayease-api/internal/app/services"
	"github.com/stayease/stayease-api/internal/middleware"
)

// InvoiceController handles invoices and their transactions
type InvoiceController struct {
	invoiceService *services.InvoiceService
}

// NewInvoiceController creates a new InvoiceController
func NewInvoiceController(invoiceService *services.InvoiceService) *InvoiceController {
	return &InvoiceController{invoiceService: invoiceService}
}

type invoiceListQuery struct {
	pageQuery
	UserID      int64                `form:"userId" binding:"omitempty,min=1"`
	ApartmentID int64                `form:"apartmentId" binding:"omitempty,min=1"`
	Status      models.InvoiceStatus `form:"status" binding:"omitempty,oneof=pending paid overdue cancelled"`
	Type        models.InvoiceType   `form:"type" binding:"omitempty,oneof=rent utilities maintenance parking other"`
}

type transactionListQuery struct {
	pageQuery
	InvoiceID int64                    `form:"invoiceId" binding:"omitempty,min=1"`
	Status    models.TransactionStatus `form:"status" binding:"omitempty,oneof=pending completed failed cancelled"`
}

type revenueQuery struct {
	Year int `form:"year" binding:"omitempty,min=2000,max=9999"`
}

// GetAllInvoices lists invoices. Residents only see their own.
// @Summary List invoices
// @Tags invoices
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, paid, overdue or cancelled"
// @Param type query string false "Invoice type"
// @Param userId query int false "Resident (admin only)"
// @Param apartmentId query int false "Apartment"
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse[models.Invoice]}
// @Router /invoices [get]
func (c *InvoiceController) GetAllInvoices(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	var q invoiceListQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}
	filter := models.InvoiceFilter{Page: q.Page, PageSize: q.PageSize}
	if q.UserID > 0 {
		filter.UserID = &q.UserID
	}
	if q.ApartmentID > 0 {
		filter.ApartmentID = &q.ApartmentID
	}
	if q.Status != "" {
		filter.Status = &q.Status
	}
	if q.Type != "" {
		filter.Type = &q.Type
	}

	invoices, err := c.invoiceService.List(ctx.Request.Context(), actor, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, invoices)
}

// GetInvoiceByID returns one invoice
// @Summary Get invoice
// @Tags invoices
// @Produce json
// @Security BearerAuth
// @Param id path int true "Invoice ID"
// @Success 200 {object} dto.APIResponse{data=models.Invoice}
// @Failure 404 {object} dto.ErrorResponse "Invoice not found"
// @Router /invoices/{id} [get]
func (c *InvoiceController) GetInvoiceByID(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	invoice, err := c.invoiceService.Get(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, invoice)
}

// CreateInvoice issues an invoice
// @Summary Create invoice
// @Tags invoices
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body dto.CreateInvoiceRequest true "Invoice"
// @Success 201 {object} dto.APIResponse{data=models.Invoice}
// @Router /invoices [post]
func (c *InvoiceController) CreateInvoice(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	var req dto.CreateInvoiceRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	invoice, err := c.invoiceService.Create(ctx.Request.Context(), actor, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, invoice, "Tạo hóa đơn thành công")
}

// CancelInvoice cancels an unpaid invoice
// @Summary Cancel invoice
// @Tags invoices
// @Produce json
// @Security BearerAuth
// @Param id path int true "Invoice ID"
// @Success 200 {object} dto.APIResponse{data=models.Invoice}
// @Failure 409 {object} dto.ErrorResponse "Invoice already paid"
// @Router /invoices/{id}/cancel [post]
func (c *InvoiceController) CancelInvoice(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	invoice, err := c.invoiceService.Cancel(ctx.Request.Context(), actor, id)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, invoice)
}

// MarkOverdue moves pending invoices past their due date to overdue
// @Summary Mark overdue invoices
// @Tags invoices
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.MarkOverdueResponse}
// @Router /invoices/mark-overdue [post]
func (c *InvoiceController) MarkOverdue(ctx *gin.Context) {
	n, err := c.invoiceService.MarkOverdue(ctx.Request.Context())
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, dto.MarkOverdueResponse{Updated: n})
}

// GetRevenue aggregates paid invoices of a year
// @Summary Revenue statistics
// @Tags invoices
// @Produce json
// @Security BearerAuth
// @Param year query int false "Year, defaults to the current one"
// @Success 200 {object} dto.APIResponse{data=dto.RevenueResponse}
// @Router /invoices/revenue [get]
func (c *InvoiceController) GetRevenue(ctx *gin.Context) {
	var q revenueQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}
	if q.Year == 0 {
		q.Year = time.Now().Year()
	}
	revenue, err := c.invoiceService.Revenue(ctx.Request.Context(), q.Year)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, revenue)
}

// GetAllTransactions lists payment transactions. Non-admins only see their own.
// @Summary List transactions
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param invoiceId query int false "Invoice"
// @Param status query string false "pending, completed, failed or cancelled"
// @Success 200 {object} dto.APIResponse{data=dto.ListResponse[models.Transaction]}
// @Router /transactions [get]
func (c *InvoiceController) GetAllTransactions(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	var q transactionListQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}
	filter := models.TransactionFilter{Page: q.Page, PageSize: q.PageSize}
	if q.InvoiceID > 0 {
		filter.InvoiceID = &q.InvoiceID
	}
	if q.Status != "" {
		filter.Status = &q.Status
	}

	transactions, err := c.invoiceService.ListTransactions(ctx.Request.Context(), actor, filter)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, transactions)
}
