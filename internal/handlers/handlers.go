package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"storefront/internal/config"
	"storefront/internal/middleware"
	"storefront/internal/repository"
	"storefront/internal/security"
	"storefront/internal/service"
	"storefront/internal/storage"
)

type HandlerSet struct {
	log        zerolog.Logger
	cfg        *config.AppConfig
	codec      *security.TokenCodec
	authSvc    *service.AuthService
	catalogSvc *service.CatalogService
	orderSvc   *service.OrderService
	db         *pgxpool.Pool
	cache      *redis.Client
	store      *storage.PhotoStore
	users      *repository.UserRepository
}

func NewHandlerSet(
	log zerolog.Logger,
	db *pgxpool.Pool,
	cache *redis.Client,
	store *storage.PhotoStore,
	codec *security.TokenCodec,
	cfg *config.AppConfig,
) HandlerSet {
	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	productRepo := repository.NewProductRepository(db)
	orderRepo := repository.NewOrderRepository(db)

	authSvc := service.NewAuthService(userRepo, codec, log)
	catalogSvc := service.NewCatalogService(categoryRepo, productRepo, store, cache, cache, cfg, log)
	orderSvc := service.NewOrderService(orderRepo, productRepo, cache, cfg, log)

	return HandlerSet{
		log:        log,
		cfg:        cfg,
		codec:      codec,
		authSvc:    authSvc,
		catalogSvc: catalogSvc,
		orderSvc:   orderSvc,
		db:         db,
		cache:      cache,
		store:      store,
		users:      userRepo,
	}
}

func (h HandlerSet) Register(router *gin.RouterGroup) {
	router.GET("/healthz", h.Health)

	authed := middleware.Authenticate(h.codec, h.log)
	adminOnly := middleware.RequireAdmin(h.users, h.log)

	v1 := router.Group("/v1")
	{
		auth := v1.Group("/auth")
		auth.POST("/register", h.RegisterUser)
		auth.POST("/login", h.Login)
		auth.POST("/forgot-password", h.ForgotPassword)

		account := v1.Group("/auth")
		account.Use(authed)
		account.GET("/check", h.CheckAuth)
		account.GET("/profile", h.Profile)
		account.PUT("/profile", h.UpdateProfile)

		adminProbe := v1.Group("/auth")
		adminProbe.Use(authed, adminOnly)
		adminProbe.GET("/admin-check", h.CheckAdmin)

		v1.GET("/categories", h.ListCategories)
		v1.GET("/categories/:slug/products", h.CategoryProducts)
		v1.GET("/products", h.ListProducts)
		v1.GET("/products/:slug", h.ProductDetail)
		v1.GET("/products/:slug/photo", h.ProductPhoto)
		v1.GET("/products/:slug/related", h.RelatedProducts)

		orders := v1.Group("/orders")
		orders.Use(authed)
		orders.POST("", h.Checkout)
		orders.GET("", h.MyOrders)
		orders.GET("/:id", h.OrderDetail)

		admin := v1.Group("/admin")
		admin.Use(authed, adminOnly)
		admin.POST("/categories", h.AdminCreateCategory)
		admin.PUT("/categories/:id", h.AdminUpdateCategory)
		admin.DELETE("/categories/:id", h.AdminDeleteCategory)
		admin.POST("/products", h.AdminCreateProduct)
		admin.PUT("/products/:id", h.AdminUpdateProduct)
		admin.DELETE("/products/:id", h.AdminDeleteProduct)
		admin.POST("/products/:id/photo", h.AdminUploadPhoto)
		admin.GET("/orders", h.AdminListOrders)
		admin.PUT("/orders/:id/status", h.AdminUpdateOrderStatus)
	}
}

func pageParams(c *gin.Context) (page, perPage int) {
	return intQuery(c, "page", 1), intQuery(c, "perPage", 0)
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
