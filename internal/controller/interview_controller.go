package controller

import (
	"ai-interview-be/internal/dto"
	"ai-interview-be/internal/pkg/serverutils"
	"ai-interview-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IInterviewController interface {
	RegisterRoutes(r fiber.Router)
	Chat(ctx *fiber.Ctx) error
	ShowSession(ctx *fiber.Ctx) error
	ResetSession(ctx *fiber.Ctx) error
	TurnHistory(ctx *fiber.Ctx) error
	Execute(ctx *fiber.Ctx) error
}

type interviewController struct {
	interviewService service.IInterviewService
}

func NewInterviewController(interviewService service.IInterviewService) IInterviewController {
	return &interviewController{
		interviewService: interviewService,
	}
}

func (c *interviewController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/interview/v1")
	h.Post("chat", c.Chat)
	h.Post("execute", c.Execute)
	h.Get("session/:id", c.ShowSession)
	h.Get("session/:id/turns", c.TurnHistory)
	h.Post("session/:id/reset", c.ResetSession)
}

func (c *interviewController) Chat(ctx *fiber.Ctx) error {
	var req dto.SendTurnRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.interviewService.SendTurn(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success process turn", res))
}

func (c *interviewController) ShowSession(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	res, err := c.interviewService.GetSession(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show session", res))
}

func (c *interviewController) ResetSession(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	res, err := c.interviewService.ResetSession(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success reset session", res))
}

func (c *interviewController) TurnHistory(ctx *fiber.Ctx) error {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid session id")
	}

	res, err := c.interviewService.ListTurns(ctx.Context(), id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show turn history", res))
}

func (c *interviewController) Execute(ctx *fiber.Ctx) error {
	var req dto.ExecuteCodeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.interviewService.ExecuteCode(ctx.Context(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success execute code", res))
}
