package httpserver

import (
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/mkamenev/storefront/internal/handlers"
)

type Deps struct {
	DB              *gorm.DB
	ProductHandler  *handlers.ProductHTTP
	CartHandler     *handlers.CartHTTP
	CheckoutHandler *handlers.CheckoutHTTP
	OrderHandler    *handlers.OrderHTTP
	WebhookHandler  *handlers.WebhookHTTP
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(200) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(200) })

	v1 := e.Group("/api/v1")

	products := v1.Group("/products")
	products.GET("", d.ProductHandler.GetProducts)
	products.GET("/:id", d.ProductHandler.GetProduct)

	cart := v1.Group("/cart")
	cart.GET("", d.CartHandler.GetCart)
	cart.POST("", d.CartHandler.AddToCart)
	cart.POST("/items/:id", d.CartHandler.UpdateItem)

	checkout := v1.Group("/checkout")
	checkout.POST("/info", d.CheckoutHandler.SaveInfo)
	checkout.POST("/payment", d.CheckoutHandler.CreatePayment)
	checkout.GET("/success", d.CheckoutHandler.Success)
	checkout.GET("/complete", d.CheckoutHandler.Complete)

	orders := v1.Group("/orders")
	orders.GET("", d.OrderHandler.ListOrders)
	orders.GET("/:number", d.OrderHandler.GetOrder)

	v1.POST("/webhook/stripe", d.WebhookHandler.HandleStripe)
}
