package router

import (
	"log/slog"
	"net/http"
	"slices"
	"time"

	"hubln/config"
	"hubln/internal/handler"
	"hubln/internal/middleware"
	"hubln/internal/repository"
	"hubln/internal/service"
	"hubln/internal/ws"
	"hubln/pkg/cloudinary"
	"hubln/pkg/payment"
	"hubln/pkg/storage"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Deps are the process-wide collaborators. Redis, Images and Archive may be nil.
type Deps struct {
	Config  *config.Config
	DB      *gorm.DB
	Logger  *slog.Logger
	Redis   *redis.Client
	Images  cloudinary.Client
	Archive storage.Archiver
	Gateway payment.Gateway
	Hub     *ws.Hub
}

func Setup(d Deps) *gin.Engine {
	cfg := d.Config
	if cfg.Server.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(cors.New(corsConfig(cfg.CORS.AllowedOrigins)))

	var limiter, authLimiter middleware.Limiter
	if d.Redis != nil {
		limiter = middleware.NewRedisRateLimiter(d.Redis, cfg.RateLimit.Requests, cfg.RateLimit.Window)
		authLimiter = middleware.NewRedisRateLimiter(d.Redis, 10, time.Minute)
	} else {
		limiter = middleware.NewInMemoryRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
		authLimiter = middleware.NewInMemoryRateLimiter(10, time.Minute)
	}

	// Repositories
	userRepo := repository.NewUserRepository(d.DB)
	referralRepo := repository.NewReferralRepository(d.DB)
	productRepo := repository.NewProductRepository(d.DB)
	priceRepo := repository.NewPriceRepository(d.DB)
	couponRepo := repository.NewCouponRepository(d.DB)
	submissionRepo := repository.NewSubmissionRepository(d.DB)
	commissionRepo := repository.NewCommissionRepository(d.DB)
	withdrawalRepo := repository.NewWithdrawalRepository(d.DB)
	paymentRepo := repository.NewPaymentRepository(d.DB)
	announcementRepo := repository.NewAnnouncementRepository(d.DB)
	capitalGiroRepo := repository.NewCapitalGiroRepository(d.DB)
	notificationRepo := repository.NewNotificationRepository(d.DB)
	auditRepo := repository.NewAuditLogRepository(d.DB)
	settingRepo := repository.NewSettingRepository(d.DB)
	adminRepo := repository.NewAdminRepository(d.DB)

	// Services
	notifSvc := service.NewNotificationService(notificationRepo, d.Hub)
	auditSvc := service.NewAuditService(auditRepo)
	authSvc := service.NewAuthService(cfg, userRepo, referralRepo)
	pricingSvc := service.NewPricingService(userRepo, productRepo, priceRepo)
	productSvc := service.NewProductService(productRepo)
	couponSvc := service.NewCouponService(couponRepo, productRepo, pricingSvc)
	statusSvc := service.NewStatusService(submissionRepo)
	submissionSvc := service.NewSubmissionService(d.DB, submissionRepo, productRepo, couponRepo, pricingSvc, statusSvc, notifSvc)
	commissionSvc := service.NewCommissionService(d.DB, commissionRepo, withdrawalRepo, userRepo, productRepo, priceRepo, submissionRepo, notifSvc)
	paymentSvc := service.NewPaymentService(d.DB, d.Gateway, submissionRepo, paymentRepo, userRepo, settingRepo, commissionSvc, notifSvc)
	referralSvc := service.NewReferralService(userRepo, referralRepo, commissionRepo, pricingSvc)
	importSvc := service.NewImportService(d.Archive)
	announcementSvc := service.NewAnnouncementService(announcementRepo, d.Images, cfg.Cloudinary.Folder, d.Redis)
	capitalGiroSvc := service.NewCapitalGiroService(capitalGiroRepo, notifSvc)
	adminSvc := service.NewAdminService(adminRepo, userRepo, settingRepo)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc, referralSvc)
	productHandler := handler.NewProductHandler(productSvc, pricingSvc, auditSvc)
	couponHandler := handler.NewCouponHandler(couponSvc, auditSvc)
	submissionHandler := handler.NewSubmissionHandler(submissionSvc, statusSvc, importSvc, submissionRepo, auditSvc)
	paymentHandler := handler.NewPaymentHandler(paymentSvc, cfg.Asaas.WebhookToken)
	commissionHandler := handler.NewCommissionHandler(commissionSvc, auditSvc)
	announcementHandler := handler.NewAnnouncementHandler(announcementSvc, auditSvc)
	capitalGiroHandler := handler.NewCapitalGiroHandler(capitalGiroSvc, auditSvc)
	notificationHandler := handler.NewNotificationHandler(notifSvc)
	adminHandler := handler.NewAdminHandler(adminSvc, auditSvc)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ws/notifications", ws.Notifications(&cfg.JWT, d.Hub))

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(limiter, "api", cfg.RateLimit.Window))
	{
		authGroup := api.Group("/auth")
		authGroup.Use(middleware.RateLimit(authLimiter, "auth", time.Minute))
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)

		api.POST("/webhooks/asaas", paymentHandler.AsaasWebhook)
		api.GET("/announcements", announcementHandler.List)

		protected := api.Group("")
		protected.Use(middleware.AuthRequired(&cfg.JWT))
		{
			protected.GET("/me", authHandler.Me)
			protected.PATCH("/me", authHandler.UpdateProfile)
			protected.GET("/me/referrals", authHandler.ReferralNetwork)

			protected.GET("/products", productHandler.ListOffers)
			protected.GET("/products/:id/price", productHandler.ResolvePrice)
			protected.GET("/me/prices", productHandler.ListMyPrices)
			protected.PUT("/me/prices/:id", productHandler.SetCustomPrice)
			protected.DELETE("/me/prices/:id", productHandler.DeleteCustomPrice)

			protected.POST("/coupons", couponHandler.Create)
			protected.GET("/coupons", couponHandler.ListMine)
			protected.POST("/coupons/validate", couponHandler.Validate)
			protected.DELETE("/coupons/:id", couponHandler.Deactivate)

			protected.POST("/submissions", submissionHandler.Create)
			protected.GET("/submissions", submissionHandler.ListMine)
			protected.POST("/submissions/spreadsheet", submissionHandler.ParseSpreadsheet)
			protected.POST("/submissions/delete", submissionHandler.DeleteMany)
			protected.GET("/submissions/:id", submissionHandler.Get)
			protected.GET("/submissions/:id/status", submissionHandler.Status)
			protected.DELETE("/submissions/:id", submissionHandler.Delete)
			protected.DELETE("/submissions/clients/:id", submissionHandler.DeleteClient)
			protected.POST("/submissions/:id/payment", paymentHandler.Create)
			protected.POST("/submissions/:id/payment/sync", paymentHandler.Sync)
			protected.GET("/submissions/:id/payments", paymentHandler.List)

			protected.GET("/commissions", commissionHandler.ListMine)
			protected.GET("/commissions/balance", commissionHandler.Balance)
			protected.POST("/commissions/withdraw", commissionHandler.Withdraw)
			protected.GET("/withdrawals", commissionHandler.ListMyWithdrawals)

			protected.POST("/capital-giro", capitalGiroHandler.Create)
			protected.GET("/capital-giro", capitalGiroHandler.ListMine)

			protected.GET("/notifications", notificationHandler.List)
			protected.POST("/notifications/read-all", notificationHandler.MarkAllRead)
			protected.POST("/notifications/:id/read", notificationHandler.MarkRead)
		}

		admin := api.Group("/admin")
		admin.Use(middleware.AuthRequired(&cfg.JWT), middleware.AdminRequired())
		{
			admin.GET("/dashboard", adminHandler.Dashboard)
			admin.GET("/users", adminHandler.ListUsers)
			admin.GET("/users/:id", adminHandler.GetUser)
			admin.PATCH("/users/:id/role", adminHandler.UpdateRole)
			admin.PATCH("/users/:id/active", adminHandler.SetActive)
			admin.GET("/settings", adminHandler.GetSettings)
			admin.PUT("/settings", adminHandler.UpdateSetting)
			admin.GET("/audit-logs", adminHandler.AuditLogs)

			admin.GET("/products", productHandler.AdminList)
			admin.POST("/products", productHandler.Create)
			admin.PATCH("/products/:id", productHandler.Update)

			admin.POST("/coupons/:id/use", couponHandler.Use)

			admin.GET("/submissions", submissionHandler.AdminList)
			admin.GET("/clients", submissionHandler.AdminListClients)
			admin.PATCH("/clients/:id/status", submissionHandler.UpdateClientStatus)
			admin.POST("/clients/status", submissionHandler.BulkUpdateClientStatus)
			admin.POST("/submissions/:id/status", submissionHandler.RecomputeStatus)
			admin.POST("/submissions/:id/commission", commissionHandler.CreateForSubmission)

			admin.GET("/withdrawals", commissionHandler.AdminListWithdrawals)
			admin.POST("/withdrawals/:id/paid", commissionHandler.MarkWithdrawalPaid)

			admin.GET("/announcements", announcementHandler.AdminList)
			admin.POST("/announcements", announcementHandler.Create)
			admin.PATCH("/announcements/:id", announcementHandler.Update)
			admin.DELETE("/announcements/:id", announcementHandler.Delete)

			admin.GET("/capital-giro", capitalGiroHandler.AdminList)
			admin.PATCH("/capital-giro/:id", capitalGiroHandler.Review)
		}
	}

	return r
}

// corsConfig allows every origin, without credentials, when the list is empty or contains "*".
func corsConfig(origins []string) cors.Config {
	c := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"X-Request-ID", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || slices.Contains(origins, "*") {
		c.AllowAllOrigins = true
		return c
	}
	c.AllowOrigins = origins
	c.AllowCredentials = true
	return c
}
