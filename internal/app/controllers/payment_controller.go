package controllers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/stayease/stayease-api/internal/app/models/dto"
	"github.com/stayease/stayease-api/internal/app/services"
	"github.com/stayease/stayease-api/internal/middleware"
	"github.com/stayease/stayease-api/internal/pkg/apperrors"
	"github.com/stayease/stayease-api/internal/pkg/email"
)

//go:embed templates/payment.html
var templateFS embed.FS

var paymentPageTemplate = template.Must(template.New("payment.html").Funcs(template.FuncMap{
	"vnd":      email.FormatVND,
	"date":     func(t time.Time) string { return t.Format("02/01/2006") },
	"datetime": func(t *time.Time) string { return t.Format("15:04 02/01/2006") },
}).ParseFS(templateFS, "templates/payment.html"))

// PaymentController handles payment links, callbacks and manual confirmation
type PaymentController struct {
	paymentService *services.PaymentService
	logger         zerolog.Logger
}

// NewPaymentController creates a new PaymentController
func NewPaymentController(paymentService *services.PaymentService, logger zerolog.Logger) *PaymentController {
	return &PaymentController{paymentService: paymentService, logger: logger}
}

// CreatePaymentURL mints a payment link for an unpaid invoice
// @Summary Create payment URL
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Invoice ID"
// @Param request body dto.CreatePaymentURLRequest true "Gateway"
// @Success 201 {object} dto.APIResponse{data=dto.PaymentURLResponse}
// @Failure 409 {object} dto.ErrorResponse "Invoice already paid or cancelled"
// @Router /invoices/{id}/payment-url [post]
func (c *PaymentController) CreatePaymentURL(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.CreatePaymentURLRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	resp, err := c.paymentService.CreatePaymentURL(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondCreated(ctx, resp, "Tạo liên kết thanh toán thành công")
}

// ConfirmPayment records a bank transfer checked by an administrator
// @Summary Confirm payment
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Invoice ID"
// @Param request body dto.ConfirmPaymentRequest true "Transaction code"
// @Success 200 {object} dto.APIResponse{data=services.Settlement}
// @Router /invoices/{id}/confirm-payment [post]
func (c *PaymentController) ConfirmPayment(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	id, ok := pathID(ctx, "id")
	if !ok {
		return
	}
	var req dto.ConfirmPaymentRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	settlement, err := c.paymentService.ConfirmPayment(ctx.Request.Context(), actor, id, &req)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	if settlement.AlreadyProcessed {
		ctx.JSON(http.StatusOK, dto.NewSuccessResponse(settlement, "Hóa đơn đã được thanh toán trước đó"))
		return
	}
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(settlement, "Xác nhận thanh toán thành công"))
}

// Callback receives signed payment notifications
// @Summary Payment callback
// @Tags payments
// @Accept json
// @Produce json
// @Param request body dto.PaymentCallbackRequest true "Notification"
// @Success 200 {object} dto.APIResponse{data=dto.PaymentCallbackResponse}
// @Failure 401 {object} dto.ErrorResponse "Bad signature"
// @Router /payments/callback [post]
func (c *PaymentController) Callback(ctx *gin.Context) {
	var req dto.PaymentCallbackRequest
	if !middleware.BindJSON(ctx, &req) {
		return
	}
	resp, err := c.paymentService.ProcessCallback(ctx.Request.Context(), &req)
	if err != nil {
		c.logger.Warn().Err(err).Str("code", req.TransactionCode).Str("status", req.Status).Msg("Payment callback rejected")
		middleware.HandleAPIError(ctx, err)
		return
	}
	respondOK(ctx, resp)
}

// TransactionQR returns the VietQR image of a transaction
// @Summary Transaction QR code
// @Tags transactions
// @Produce png
// @Security BearerAuth
// @Param code path string true "Transaction code"
// @Success 200 {file} binary
// @Router /transactions/{code}/qr [get]
func (c *PaymentController) TransactionQR(ctx *gin.Context) {
	actor, ok := currentActor(ctx)
	if !ok {
		return
	}
	png, err := c.paymentService.TransactionQR(ctx.Request.Context(), actor, ctx.Param("code"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Header("Cache-Control", "no-store")
	ctx.Data(http.StatusOK, "image/png", png)
}

type paymentPageQuery struct {
	TransactionCode string `form:"txn" binding:"required,max=50"`
	ReturnURL       string `form:"returnUrl" binding:"omitempty,url"`
}

type paymentPageView struct {
	*services.PaymentPage
	QRImage   template.URL
	ReturnURL string
}

// PaymentPage renders the public page a payment link points to
func (c *PaymentController) PaymentPage(ctx *gin.Context) {
	invoiceID, ok := pathID(ctx, "invoiceId")
	if !ok {
		return
	}
	var q paymentPageQuery
	if !middleware.BindQuery(ctx, &q) {
		return
	}

	page, err := c.paymentService.PaymentPage(ctx.Request.Context(), invoiceID, q.TransactionCode)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrResourceNotFound, apperrors.ErrBadRequest) {
			ctx.String(http.StatusNotFound, "Không tìm thấy giao dịch")
			return
		}
		middleware.HandleAPIError(ctx, err)
		return
	}

	view := paymentPageView{PaymentPage: page, ReturnURL: q.ReturnURL}
	// data: URIs are rejected by html/template unless marked safe; this one is produced server side
	view.QRImage = template.URL(page.QRDataURI)

	var buf bytes.Buffer
	if err := paymentPageTemplate.Execute(&buf, view); err != nil {
		c.logger.Error().Err(err).Int64("invoice_id", invoiceID).Msg("Failed to render payment page")
		middleware.HandleAPIError(ctx, err)
		return
	}
	ctx.Header("Cache-Control", "no-store")
	ctx.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
