package controller

import (
	"errors"

	"voice-meditation-be/internal/dto"
	"voice-meditation-be/internal/pkg/serverutils"
	"voice-meditation-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ISessionController interface {
	RegisterRoutes(r fiber.Router)
	Start(ctx *fiber.Ctx) error
	Complete(ctx *fiber.Ctx) error
}

type sessionController struct {
	service service.ISessionService
}

func NewSessionController(service service.ISessionService) ISessionController {
	return &sessionController{service: service}
}

func (c *sessionController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/sessions")
	h.Post("/start", serverutils.JwtMiddleware, c.Start)
	h.Post("/complete", serverutils.JwtMiddleware, c.Complete)
}

func (c *sessionController) Start(ctx *fiber.Ctx) error {
	userID, ok := serverutils.GetUserID(ctx)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
	}

	var req dto.StartSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	res, err := c.service.Start(ctx.Context(), userID, &req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidDuration) {
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Duration is required and must be at least 1 minute"})
		}
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create session"})
	}
	return ctx.JSON(res)
}

func (c *sessionController) Complete(ctx *fiber.Ctx) error {
	userID, ok := serverutils.GetUserID(ctx)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
	}

	var req dto.CompleteSessionRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	res, err := c.service.Complete(ctx.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionIDMissing):
			return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Session ID is required"})
		case errors.Is(err, service.ErrSessionNotFound):
			// A foreign session and a missing one answer identically so
			// non-owners learn nothing about existence.
			return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Session not found or access denied"})
		default:
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to complete session"})
		}
	}
	return ctx.JSON(res)
}
