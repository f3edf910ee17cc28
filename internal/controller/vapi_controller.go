package controller

import (
	"fmt"

	"voice-meditation-be/internal/dto"
	"voice-meditation-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IVapiController interface {
	RegisterRoutes(r fiber.Router)
	GetToken(ctx *fiber.Ctx) error
	Webhook(ctx *fiber.Ctx) error
	GetWidgetConfig(ctx *fiber.Ctx) error
}

type vapiController struct {
	voiceService   service.IVoiceService
	webhookService service.IWebhookService
}

func NewVapiController(voiceService service.IVoiceService, webhookService service.IWebhookService) IVapiController {
	return &vapiController{
		voiceService:   voiceService,
		webhookService: webhookService,
	}
}

func (c *vapiController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/vapi")
	h.Get("/token", c.GetToken)
	h.Post("/webhook", c.Webhook)

	r.Get("/widget/config", c.GetWidgetConfig)
}

func (c *vapiController) GetToken(ctx *fiber.Ctx) error {
	creds, err := c.voiceService.GetWebCallCredentials()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("Failed to get web call credentials: %v", err),
		})
	}
	return ctx.JSON(creds)
}

// Webhook is the unauthenticated provider callback. Success is always
// {ok:true}; any failure collapses to a generic 500 so the provider can
// retry the delivery.
func (c *vapiController) Webhook(ctx *fiber.Ctx) error {
	var event dto.VapiWebhookEvent
	if err := ctx.BodyParser(&event); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Webhook processing failed"})
	}

	if err := c.webhookService.HandleEvent(ctx.Context(), &event); err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Webhook processing failed"})
	}
	return ctx.JSON(fiber.Map{"ok": true})
}

func (c *vapiController) GetWidgetConfig(ctx *fiber.Ctx) error {
	cfg, err := c.voiceService.GetWidgetConfig()
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": fmt.Sprintf("Failed to get widget config: %v", err),
		})
	}
	return ctx.JSON(cfg)
}
