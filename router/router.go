package router

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/restolive/backend/controllers"
	"github.com/restolive/backend/delivery"
	"github.com/restolive/backend/feed"
	"github.com/restolive/backend/middlewares"
	"github.com/restolive/backend/store"
)

func SetupRouter(db *gorm.DB, hub *feed.Hub, quoter delivery.Quoter) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())

	s := store.NewGorm(db)

	orderCtrl := controllers.NewOrderController(s)
	quoteCtrl := controllers.NewQuoteController(s, quoter)
	feedCtrl := controllers.NewFeedController(hub)

	api := r.Group("/api")
	{
		api.POST("/branches/:branch_id/orders", orderCtrl.CreateOrder)
		api.GET("/orders/recent", orderCtrl.GetRecentOrders)
		api.GET("/orders/:order_id", orderCtrl.GetOrderByID)
		api.PATCH("/orders/:order_id/status", orderCtrl.UpdateOrderStatus)
		api.GET("/delivery/quote", quoteCtrl.QuoteDelivery)
	}

	ws := r.Group("/ws")
	ws.Use(middlewares.WebSocketAuthMiddleware())
	{
		ws.GET("/orders", feedCtrl.OrderFeed)
	}

	return r
}
