package route

import (
	"github.com/gofiber/fiber/v2"

	"smartstudy_backend/internals/features/commerce/orders/controller"
	orderService "smartstudy_backend/internals/features/commerce/orders/service"
	middlewares "smartstudy_backend/internals/middlewares"
)

// Base: /api/public
func OrderPublicRoutes(r fiber.Router, svc *orderService.OrderService) {
	ctl := controller.NewOrderController(svc)
	r.Post("/payments/midtrans/webhook", middlewares.WebhookRateLimiter(), ctl.MidtransWebhook)
}

// Base: /api/u
func OrderUserRoutes(r fiber.Router, svc *orderService.OrderService) {
	ctl := controller.NewOrderController(svc)
	r.Post("/batches/:id/checkout", ctl.CheckoutBatch)

	o := r.Group("/orders")
	o.Get("/", ctl.MyOrders)
	o.Get("/:orderId", ctl.MyOrder)
}
