package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stayease/stayease-api/internal/app/controllers"
	"github.com/stayease/stayease-api/internal/app/models"
	"github.com/stayease/stayease-api/internal/app/models/dto"
	"github.com/stayease/stayease-api/internal/middleware"
)

// Controllers groups every HTTP handler set the router mounts
type Controllers struct {
	Auth           *controllers.AuthController
	User           *controllers.UserController
	Apartment      *controllers.ApartmentController
	Amenity        *controllers.AmenityController
	Invoice        *controllers.InvoiceController
	Payment        *controllers.PaymentController
	Post           *controllers.PostController
	ServiceRequest *controllers.ServiceRequestController
	Dashboard      *controllers.DashboardController
	Upload         *controllers.UploadController
}

// SetupRouter configures all application routes
func SetupRouter(router *gin.Engine, c Controllers, authMiddleware *middleware.AuthMiddleware, storagePath string) {
	api := router.Group("/api")

	// --- Public routes ---
	auth := api.Group("/auth")
	{
		auth.POST("/register", c.Auth.Register)
		auth.POST("/login", c.Auth.Login)
		auth.POST("/refresh", c.Auth.RefreshToken)
		auth.POST("/logout", c.Auth.Logout)
	}

	// Signed by the payment channel, no user token
	api.POST("/payments/callback", c.Payment.Callback)

	api.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{
			"status": "ok",
			"time":   time.Now().UTC(),
		}, ""))
	})

	// Payment links point here
	router.GET("/payment/:invoiceId", c.Payment.PaymentPage)
	router.Static("/uploads", storagePath)

	// --- Authenticated routes ---
	authenticated := api.Group("")
	authenticated.Use(authMiddleware.JWTAuth())

	adminOnly := authMiddleware.RoleRequired(models.RoleAdmin)

	authenticated.GET("/auth/me", c.Auth.Me)

	apartments := authenticated.Group("/apartments")
	{
		apartments.GET("", c.Apartment.GetAllApartments)
		apartments.GET("/:id", c.Apartment.GetApartmentByID)

		apartmentsAdmin := apartments.Group("", adminOnly)
		{
			apartmentsAdmin.POST("", c.Apartment.CreateApartment)
			apartmentsAdmin.PUT("/:id", c.Apartment.UpdateApartment)
			apartmentsAdmin.DELETE("/:id", c.Apartment.DeleteApartment)
		}
	}

	amenities := authenticated.Group("/amenities")
	{
		amenities.GET("", c.Amenity.GetAllAmenities)
		amenities.GET("/:id", c.Amenity.GetAmenityByID)

		amenitiesAdmin := amenities.Group("", adminOnly)
		{
			amenitiesAdmin.POST("", c.Amenity.CreateAmenity)
			amenitiesAdmin.PUT("/:id", c.Amenity.UpdateAmenity)
			amenitiesAdmin.DELETE("/:id", c.Amenity.DeleteAmenity)
		}
	}

	users := authenticated.Group("/users", adminOnly)
	{
		users.GET("", c.User.ListUsers)
		users.POST("", c.User.CreateUser)
		users.GET("/:id", c.User.GetUser)
		users.PUT("/:id", c.User.UpdateUser)
		users.PATCH("/:id/status", c.User.UpdateUserStatus)
		users.DELETE("/:id", c.User.DeleteUser)
	}

	residents := authenticated.Group("/residents", adminOnly)
	{
		residents.POST("", c.User.CreateResident)
		residents.PUT("/:id", c.User.UpdateResident)
		residents.DELETE("/:id", c.User.DeleteResident)
	}

	invoices := authenticated.Group("/invoices")
	{
		// Residents only see their own invoices; the service scopes the listing
		invoices.GET("", c.Invoice.GetAllInvoices)
		invoices.GET("/:id", c.Invoice.GetInvoiceByID)
		invoices.POST("/:id/payment-url", authMiddleware.RoleRequired(models.RoleResident), c.Payment.CreatePaymentURL)

		invoicesAdmin := invoices.Group("", adminOnly)
		{
			invoicesAdmin.POST("", c.Invoice.CreateInvoice)
			invoicesAdmin.GET("/revenue", c.Invoice.GetRevenue)
			invoicesAdmin.POST("/mark-overdue", c.Invoice.MarkOverdue)
			invoicesAdmin.POST("/:id/cancel", c.Invoice.CancelInvoice)
			invoicesAdmin.POST("/:id/confirm-payment", c.Payment.ConfirmPayment)
		}
	}

	transactions := authenticated.Group("/transactions")
	{
		transactions.GET("", c.Invoice.GetAllTransactions)
		transactions.GET("/:code/qr", c.Payment.TransactionQR)
	}

	posts := authenticated.Group("/posts")
	{
		posts.GET("", c.Post.GetAllPosts)
		posts.POST("", c.Post.CreatePost)
		posts.GET("/:id", c.Post.GetPostByID)
		posts.PUT("/:id", c.Post.UpdatePost)
		posts.DELETE("/:id", c.Post.DeletePost)
		posts.POST("/:id/like", c.Post.ToggleLike)
		posts.POST("/:id/comments", c.Post.AddComment)
		posts.DELETE("/:id/comments/:commentId", c.Post.DeleteComment)
		posts.POST("/:id/comments/:commentId/like", c.Post.ToggleCommentLike)
	}

	requests := authenticated.Group("/service-requests")
	{
		requests.GET("", c.ServiceRequest.GetAllServiceRequests)
		requests.POST("", c.ServiceRequest.CreateServiceRequest)
		requests.GET("/:id", c.ServiceRequest.GetServiceRequestByID)
		requests.POST("/:id/accept", authMiddleware.RoleRequired(models.RoleStaff), c.ServiceRequest.AcceptServiceRequest)
		requests.POST("/:id/assign", adminOnly, c.ServiceRequest.AssignServiceRequest)
		requests.PATCH("/:id/status", c.ServiceRequest.UpdateServiceRequestStatus)
		requests.GET("/:id/messages", c.ServiceRequest.GetMessages)
		requests.POST("/:id/messages", c.ServiceRequest.SendMessage)
		requests.GET("/:id/ws", c.ServiceRequest.Subscribe)
	}

	authenticated.POST("/upload/image", c.Upload.UploadImage)

	dashboard := authenticated.Group("/dashboard")
	{
		dashboard.GET("/admin", adminOnly, c.Dashboard.GetAdminDashboard)
		dashboard.GET("/staff", authMiddleware.RoleRequired(models.RoleStaff), c.Dashboard.GetStaffDashboard)
		dashboard.GET("/resident", authMiddleware.RoleRequired(models.RoleResident), c.Dashboard.GetResidentDashboard)
	}
}
