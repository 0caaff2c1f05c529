package routes

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"studentmart/handlers"
	"studentmart/middleware"
	"studentmart/models"
)

func SetupRouter(allowedOrigins []string) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "StudentMart API is running!",
			"version": "1.0.0",
			"status":  "healthy",
		})
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	// Auth: signup/login are public and tightly rate limited.
	auth := router.Group("/api/auth")
	auth.Use(middleware.RateLimit(20, time.Minute))
	auth.POST("/register", handlers.Register)
	auth.POST("/login", handlers.Login)

	authPrivate := router.Group("/api/auth")
	authPrivate.Use(middleware.JWTAuthMiddleware())
	authPrivate.GET("/me", handlers.GetMe)
	authPrivate.PUT("/profile", handlers.UpdateProfile)
	authPrivate.PUT("/change-password", handlers.ChangePassword)

	// Products: browsing is public, mutation is vendor/admin only.
	router.GET("/api/products", handlers.GetAllProducts)
	router.GET("/api/products/:id", handlers.GetProduct)

	products := router.Group("/api/products")
	products.Use(middleware.JWTAuthMiddleware())
	products.GET("/vendor/my-products", middleware.RequireRoles(models.RoleVendor), handlers.GetMyProducts)
	products.POST("", middleware.RequireRoles(models.RoleVendor, models.RoleAdmin), handlers.CreateProduct)
	products.PUT("/:id", middleware.RequireRoles(models.RoleVendor, models.RoleAdmin), handlers.UpdateProduct)
	products.DELETE("/:id", middleware.RequireRoles(models.RoleVendor, models.RoleAdmin), handlers.DeleteProduct)
	products.POST("/:id/reviews", handlers.AddReview)

	// Messages
	messages := router.Group("/api/messages")
	messages.Use(middleware.JWTAuthMiddleware())
	messages.POST("", handlers.SendMessage)
	messages.GET("/conversations", handlers.GetConversations)
	messages.GET("/unread-count", handlers.GetUnreadCount)
	messages.GET("/conversation/:userId", handlers.GetConversation)
	messages.PUT("/:id/read", handlers.MarkMessageRead)
	messages.DELETE("/:id", handlers.DeleteMessage)

	// Orders
	orders := router.Group("/api/orders")
	orders.Use(middleware.JWTAuthMiddleware())
	orders.POST("", handlers.CreateOrder)
	orders.POST("/:id/pay", handlers.InitializePayment)
	orders.GET("/verify/:reference", handlers.VerifyPayment)
	orders.GET("/my-orders", handlers.GetMyOrders)
	orders.GET("/:id", handlers.GetOrder)

	// Users: profile view is public, the rest is admin only.
	router.GET("/api/users/:id", handlers.GetUser)

	users := router.Group("/api/users")
	users.Use(middleware.JWTAuthMiddleware(), middleware.RequireRoles(models.RoleAdmin))
	users.GET("", handlers.GetAllUsers)
	users.GET("/admin/statistics", handlers.GetStatistics)
	users.PUT("/:id", handlers.UpdateUser)
	users.PUT("/:id/deactivate", handlers.DeactivateUser)
	users.PUT("/:id/activate", handlers.ActivateUser)
	users.DELETE("/:id", handlers.DeleteUser)

	// Wishlist
	wishlist := router.Group("/api/wishlist")
	wishlist.Use(middleware.JWTAuthMiddleware())
	wishlist.GET("", handlers.GetWishlist)
	wishlist.GET("/check/:productId", handlers.CheckWishlist)
	wishlist.POST("/:productId", handlers.AddToWishlist)
	wishlist.DELETE("/:productId", handlers.RemoveFromWishlist)

	// Push notifications
	router.GET("/api/push/vapid-public-key", handlers.GetVapidPublicKey)

	push := router.Group("/api/push")
	push.Use(middleware.JWTAuthMiddleware())
	push.POST("/subscribe", handlers.SubscribePush)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"error": "Route not found",
			"path":  c.Request.URL.Path,
		})
	})

	return router
}
