package controller

import (
	"github.com/gofiber/fiber/v2"

	homeService "smartstudy_backend/internals/features/home/service"
	helper "smartstudy_backend/internals/helpers"
)

type HomeController struct {
	Svc *homeService.HomeService
}

func NewHomeController(svc *homeService.HomeService) *HomeController {
	return &HomeController{Svc: svc}
}

// 🟢 GET /api/public/home
func (ctl *HomeController) Index(c *fiber.Ctx) error {
	out, err := ctl.Svc.Index(c.UserContext())
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	return helper.JsonOK(c, "ok", out)
}

// 🟢 GET /api/public/search?q=
func (ctl *HomeController) Search(c *fiber.Ctx) error {
	q := c.Query("q")
	if len(q) > 100 {
		return helper.JsonValidationError(c, map[string]string{"q": "q must be at most 100 characters"})
	}
	out, err := ctl.Svc.Search(c.UserContext(), q)
	if err != nil {
		return helper.WriteDBError(c, err)
	}
	return helper.JsonOK(c, "ok", out)
}
