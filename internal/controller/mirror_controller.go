package controller

import (
	"oxbow-be/internal/dto"
	"oxbow-be/internal/pkg/serverutils"
	"oxbow-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IMirrorController interface {
	RegisterRoutes(r fiber.Router)
	UnassignedCount(ctx *fiber.Ctx) error
	Status(ctx *fiber.Ctx) error
	Eligibility(ctx *fiber.Ctx) error
	Generate(ctx *fiber.Ctx) error
	MarkViewed(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	Share(ctx *fiber.Ctx) error
	SharedWithMe(ctx *fiber.Ctx) error
}

type mirrorController struct {
	mirrorService service.IMirrorService
}

func NewMirrorController(mirrorService service.IMirrorService) IMirrorController {
	return &mirrorController{
		mirrorService: mirrorService,
	}
}

func (c *mirrorController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/mirror/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Get("unassigned-count", c.UnassignedCount)
	h.Get("status", c.Status)
	h.Get("eligibility", c.Eligibility)
	h.Post("generate", c.Generate)
	h.Get("shared", c.SharedWithMe)
	h.Get("", c.List)
	h.Get(":id", c.Show)
	h.Post(":id/viewed", c.MarkViewed)
	h.Post(":id/share", c.Share)
}

func (c *mirrorController) UnassignedCount(ctx *fiber.Ctx) error {
	userId, err := userIdFrom(ctx)
	if err != nil {
		return err
	}

	res, err := c.mirrorService.UnassignedCount(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get unassigned count", res))
}

func (c *mirrorController) Status(ctx *fiber.Ctx) error {
	userId, err := userIdFrom(ctx)
	if err != nil {
		return err
	}

	res, err := c.mirrorService.CheckStatus(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success check status", res))
}

func (c *mirrorController) Eligibility(ctx *fiber.Ctx) error {
	userId, err := userIdFrom(ctx)
	if err != nil {
		return err
	}

	res, err := c.mirrorService.CheckEligibility(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success check eligibility", res))
}

// Generate answers 202 while the worker runs and 200 when the mirror came
// back inline.
func (c *mirrorController) Generate(ctx *fiber.Ctx) error {
	userId, err := userIdFrom(ctx)
	if err != nil {
		return err
	}

	res, err := c.mirrorService.RequestGeneration(ctx.UserContext(), userId)
	if err != nil {
		return err
	}

	if res.Mirror != nil {
		return ctx.JSON(serverutils.SuccessResponse("Mirror generated", res))
	}
	return ctx.Status(fiber.StatusAccepted).JSON(serverutils.AcceptedResponse("Mirror generation started", res))
}

func (c *mirrorController) MarkViewed(ctx *fiber.Ctx) error {
	userId, err := userIdFrom(ctx)
	if err != nil {
		return err
	}
	id, err := paramId(ctx)
	if err != nil {
		return err
	}

	if err := c.mirrorService.MarkViewed(ctx.UserContext(), userId, id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Mirror marked as viewed", nil))
}

func (c *mirrorController) List(ctx *fiber.Ctx) error {
	userId, err := userIdFrom(ctx)
	if err != nil {
		return err
	}

	res, err := c.mirrorService.ListMirrors(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list mirrors", res))
}

func (c *mirrorController) Show(ctx *fiber.Ctx) error {
	userId, err := userIdFrom(ctx)
	if err != nil {
		return err
	}
	id, err := paramId(ctx)
	if err != nil {
		return err
	}

	res, err := c.mirrorService.ShowMirror(ctx.UserContext(), userId, id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success show mirror", res))
}

func (c *mirrorController) Share(ctx *fiber.Ctx) error {
	userId, err := userIdFrom(ctx)
	if err != nil {
		return err
	}
	id, err := paramId(ctx)
	if err != nil {
		return err
	}

	var req dto.ShareMirrorRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.BadRequest("Invalid request body")
	}
	req.MirrorId = id

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.mirrorService.ShareMirror(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success share mirror", res))
}

func (c *mirrorController) SharedWithMe(ctx *fiber.Ctx) error {
	userId, err := userIdFrom(ctx)
	if err != nil {
		return err
	}

	res, err := c.mirrorService.ListSharedWithMe(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list shared mirrors", res))
}

func userIdFrom(ctx *fiber.Ctx) (uuid.UUID, error) {
	userIdStr, _ := ctx.Locals("user_id").(string)
	userId, err := uuid.Parse(userIdStr)
	if err != nil {
		return uuid.Nil, fiber.ErrUnauthorized
	}
	return userId, nil
}

func paramId(ctx *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Params("id"))
	if err != nil {
		return uuid.Nil, serverutils.BadRequest("Invalid id")
	}
	return id, nil
}
