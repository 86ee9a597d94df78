package routes

import (
	"crm/controllers"
	"crm/middleware"

	"github.com/gin-gonic/gin"
)

func InitializeRoutes(router gin.IRouter, sellers *controllers.SellerController, transactions *controllers.TransactionController, auth middleware.AuthConfig) {
	seller := router.Group("/sellers")
	seller.Use(middleware.WriteGuard(auth))
	{
		seller.GET("", sellers.ListSellers)
		seller.POST("", sellers.CreateSeller)
		seller.GET("/top-seller/:period", sellers.GetTopSeller)
		seller.GET("/amount/:amount/:period", sellers.GetSellersUnderAmount)
		seller.GET("/:id", sellers.GetSeller)
		seller.PUT("/:id", sellers.UpdateSeller)
		seller.DELETE("/:id", sellers.DeleteSeller)
		seller.GET("/:id/best-period", sellers.GetBestPeriod)
	}

	transaction := router.Group("/transactions")
	transaction.Use(middleware.WriteGuard(auth))
	{
		transaction.GET("", transactions.ListTransactions)
		transaction.POST("", transactions.CreateTransaction)
		transaction.GET("/seller/:id", transactions.ListBySeller)
		transaction.GET("/:id", transactions.GetTransaction)
	}
}

// InitializeOpsRoutes registers health and metrics endpoints.
func InitializeOpsRoutes(router gin.IRouter, store controllers.Pinger, metricsAllowedIPs []string) {
	router.GET("/healthz", controllers.Health(store))
	router.GET("/metrics", middleware.MetricsHandler(metricsAllowedIPs))
}
