package controller

import (
	"oxbow-be/internal/dto"
	"oxbow-be/internal/pkg/serverutils"
	"oxbow-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IFriendController interface {
	RegisterRoutes(r fiber.Router)
	Request(ctx *fiber.Ctx) error
	Accept(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Remove(ctx *fiber.Ctx) error
}

type friendController struct {
	friendService service.IFriendService
}

func NewFriendController(friendService service.IFriendService) IFriendController {
	return &friendController{
		friendService: friendService,
	}
}

func (c *friendController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/friend/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("", c.Request)
	h.Get("", c.List)
	h.Put(":id/accept", c.Accept)
	h.Delete(":id", c.Remove)
}

func (c *friendController) Request(ctx *fiber.Ctx) error {
	userId, err := userIdFrom(ctx)
	if err != nil {
		return err
	}

	var req dto.FriendRequest
	if err := ctx.BodyParser(&req); err != nil {
		return serverutils.BadRequest("Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.friendService.RequestFriend(ctx.UserContext(), userId, &req)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Friend request sent", res))
}

func (c *friendController) Accept(ctx *fiber.Ctx) error {
	userId, err := userIdFrom(ctx)
	if err != nil {
		return err
	}
	id, err := paramId(ctx)
	if err != nil {
		return err
	}

	res, err := c.friendService.AcceptFriend(ctx.UserContext(), userId, id)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Friend request accepted", res))
}

func (c *friendController) List(ctx *fiber.Ctx) error {
	userId, err := userIdFrom(ctx)
	if err != nil {
		return err
	}

	res, err := c.friendService.ListFriends(ctx.UserContext(), userId)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success list friends", res))
}

func (c *friendController) Remove(ctx *fiber.Ctx) error {
	userId, err := userIdFrom(ctx)
	if err != nil {
		return err
	}
	id, err := paramId(ctx)
	if err != nil {
		return err
	}

	if err := c.friendService.RemoveFriend(ctx.UserContext(), userId, id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Friend removed", nil))
}
