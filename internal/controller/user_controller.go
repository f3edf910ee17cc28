package controller

import (
	"voice-meditation-be/internal/pkg/serverutils"
	"voice-meditation-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IUserController interface {
	RegisterRoutes(r fiber.Router)
	GetStats(ctx *fiber.Ctx) error
}

type userController struct {
	statsService service.IStatsService
}

func NewUserController(statsService service.IStatsService) IUserController {
	return &userController{statsService: statsService}
}

func (c *userController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/user")
	h.Get("/stats", serverutils.JwtMiddleware, c.GetStats)
}

func (c *userController) GetStats(ctx *fiber.Ctx) error {
	userID, ok := serverutils.GetUserID(ctx)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
	}

	res, err := c.statsService.GetUserStats(ctx.Context(), userID)
	if err != nil {
		// A principal without a profile row is surfaced as 500, not 404.
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch user stats"})
	}
	return ctx.JSON(res)
}
