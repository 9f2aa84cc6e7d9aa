package controller

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"smartstudy_backend/internals/features/commerce/orders/dto"
	"smartstudy_backend/internals/features/commerce/orders/model"
	orderService "smartstudy_backend/internals/features/commerce/orders/service"
	helper "smartstudy_backend/internals/helpers"
)

type OrderController struct {
	Svc *orderService.OrderService
}

func NewOrderController(svc *orderService.OrderService) *OrderController {
	return &OrderController{Svc: svc}
}

// WriteOrderError: sentinel order → status HTTP, sisanya lewat MapDBError.
func WriteOrderError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, orderService.ErrAlreadyEnrolled):
		return helper.JsonError(c, fiber.StatusConflict, err.Error())
	case errors.Is(err, orderService.ErrItemNotFound), errors.Is(err, orderService.ErrOrderNotFound):
		return helper.JsonError(c, fiber.StatusNotFound, err.Error())
	case errors.Is(err, orderService.ErrFreeItem):
		return helper.JsonError(c, fiber.StatusBadRequest, err.Error())
	case errors.Is(err, orderService.ErrInvalidReferral):
		return helper.JsonValidationError(c, map[string]string{"referral_code": err.Error()})
	case errors.Is(err, orderService.ErrInvalidSignature):
		return helper.JsonError(c, fiber.StatusUnauthorized, err.Error())
	case errors.Is(err, orderService.ErrGateway):
		return helper.JsonError(c, fiber.StatusBadGateway, "payment gateway unavailable")
	}
	return helper.WriteDBError(c, err)
}

// 🟢 POST /api/u/batches/:id/checkout
func (ctl *OrderController) CheckoutBatch(c *fiber.Ctx) error {
	batchID, err := helper.ParseUUIDParam(c, "id")
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	var req dto.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid body")
	}
	if fe := helper.ValidateStruct(&req); fe != nil {
		return helper.JsonValidationError(c, fe)
	}

	res, err := ctl.Svc.Checkout(c.UserContext(), orderService.CheckoutInput{
		UserID:       userID,
		ItemType:     model.ItemBatch,
		BatchID:      &batchID,
		ReferralCode: req.ReferralCode,
		PaymentMode:  req.PaymentMode,
	})
	if err != nil {
		return WriteOrderError(c, err)
	}
	if res.Settled {
		return helper.JsonCreated(c, "order paid, enrollment active", res)
	}
	return helper.JsonCreated(c, "order created, continue to payment", res)
}

// 🟢 GET /api/u/orders?status=
func (ctl *OrderController) MyOrders(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	p := helper.ResolvePaging(c, 20, 100)
	rows, total, err := ctl.Svc.MyOrders(c.UserContext(), userID, strings.TrimSpace(c.Query("status")), p.Offset, p.Limit)
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	pg := helper.BuildPaginationFromPage(total, p.Page, p.PerPage)
	return helper.JsonList(c, "ok", rows, &pg)
}

// 🟢 GET /api/u/orders/:orderId
func (ctl *OrderController) MyOrder(c *fiber.Ctx) error {
	userID, err := helper.GetUserIDFromToken(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	o, err := ctl.Svc.GetMine(c.UserContext(), userID, c.Params("orderId"))
	if err != nil {
		return WriteOrderError(c, err)
	}
	return helper.JsonOK(c, "ok", o)
}

// 🟢 POST /api/public/payments/midtrans/webhook
func (ctl *OrderController) MidtransWebhook(c *fiber.Ctx) error {
	var n orderService.Notification
	if err := c.BodyParser(&n); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid payload")
	}
	if n.OrderID == "" || n.TransactionStatus == "" {
		return helper.JsonError(c, fiber.StatusBadRequest, "invalid payload")
	}
	o, err := ctl.Svc.HandleNotification(c.UserContext(), n)
	if err != nil {
		return WriteOrderError(c, err)
	}
	return helper.JsonOK(c, "notification processed", fiber.Map{"order_id": o.OrderID, "status": o.Status})
}
