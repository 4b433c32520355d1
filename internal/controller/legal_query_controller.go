package controller

import (
	"juris-rag-be/internal/dto"
	"juris-rag-be/internal/pkg/serverutils"
	"juris-rag-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type ILegalQueryController interface {
	RegisterRoutes(r fiber.Router)
	Query(ctx *fiber.Ctx) error
}

type legalQueryController struct {
	legalQueryService service.ILegalQueryService
}

func NewLegalQueryController(legalQueryService service.ILegalQueryService) ILegalQueryController {
	return &legalQueryController{
		legalQueryService: legalQueryService,
	}
}

func (c *legalQueryController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/legal/v1")
	h.Use(serverutils.SessionMiddleware)
	h.Post("query", c.Query)
}

func (c *legalQueryController) Query(ctx *fiber.Ctx) error {
	var req dto.LegalQueryRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if req.SessionId == "" {
		req.SessionId = serverutils.SessionID(ctx)
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.legalQueryService.Ask(ctx.UserContext(), &req)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success answer query", res))
}
