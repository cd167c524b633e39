package controller

import (
	"errors"
	"strconv"

	"legal-assistant-be/internal/dto"
	"legal-assistant-be/internal/pkg/serverutils"
	"legal-assistant-be/internal/service"
	"legal-assistant-be/pkg/conversation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const ClientIDHeader = "X-Client-Id"

func init() {
	serverutils.RegisterStatusMapper(conversationErrorStatus)
}

func conversationErrorStatus(err error) (int, bool) {
	switch {
	case errors.Is(err, conversation.ErrInvalidMode):
		return fiber.StatusBadRequest, true
	case errors.Is(err, conversation.ErrModeNotSelected):
		return fiber.StatusUnprocessableEntity, true
	case errors.Is(err, conversation.ErrModeAlreadySelected),
		errors.Is(err, conversation.ErrTurnInProgress),
		errors.Is(err, conversation.ErrTurnDiscarded):
		return fiber.StatusConflict, true
	case errors.Is(err, service.ErrReportNotFound):
		return fiber.StatusNotFound, true
	}
	return 0, false
}

type IChatController interface {
	RegisterRoutes(r fiber.Router)
	GetSession(ctx *fiber.Ctx) error
	SelectMode(ctx *fiber.Ctx) error
	SendMessage(ctx *fiber.Ctx) error
	StartNew(ctx *fiber.Ctx) error
	GetReport(ctx *fiber.Ctx) error
	ListConversations(ctx *fiber.Ctx) error
}

type chatController struct {
	engine service.IChatEngineService
}

func NewChatController(engine service.IChatEngineService) IChatController {
	return &chatController{
		engine: engine,
	}
}

func (c *chatController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/chat/v1")
	h.Get("conversations", serverutils.JwtMiddleware, c.ListConversations)

	// Anonymous visitors can chat; a token only adds server-side transcripts
	h.Get("session", serverutils.OptionalJwtMiddleware, c.GetSession)
	h.Post("mode", serverutils.OptionalJwtMiddleware, c.SelectMode)
	h.Post("messages", serverutils.OptionalJwtMiddleware, c.SendMessage)
	h.Post("new", serverutils.OptionalJwtMiddleware, c.StartNew)
	h.Get("messages/:index/report", serverutils.OptionalJwtMiddleware, c.GetReport)
}

// ParseClientID accepts only uuids so the id can be used inside storage keys
func ParseClientID(raw string) (string, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", fiber.NewError(fiber.StatusBadRequest, "Missing or invalid client id")
	}
	return id.String(), nil
}

func currentUser(ctx *fiber.Ctx) conversation.User {
	userID, email := serverutils.Identity(ctx)
	return conversation.User{ID: userID, Email: email}
}

func (c *chatController) GetSession(ctx *fiber.Ctx) error {
	clientID, err := ParseClientID(ctx.Get(ClientIDHeader))
	if err != nil {
		return err
	}

	res := c.engine.Session(ctx.UserContext(), clientID, currentUser(ctx))
	return ctx.JSON(serverutils.SuccessResponse("Success get session", res))
}

func (c *chatController) SelectMode(ctx *fiber.Ctx) error {
	clientID, err := ParseClientID(ctx.Get(ClientIDHeader))
	if err != nil {
		return err
	}

	var req dto.SelectModeRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.engine.SelectMode(ctx.UserContext(), clientID, currentUser(ctx), req.Mode)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success select mode", res))
}

func (c *chatController) SendMessage(ctx *fiber.Ctx) error {
	clientID, err := ParseClientID(ctx.Get(ClientIDHeader))
	if err != nil {
		return err
	}

	var req dto.SendMessageRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.engine.Submit(ctx.UserContext(), clientID, currentUser(ctx), req.Message)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success send message", res))
}

func (c *chatController) StartNew(ctx *fiber.Ctx) error {
	clientID, err := ParseClientID(ctx.Get(ClientIDHeader))
	if err != nil {
		return err
	}

	res := c.engine.StartNew(ctx.UserContext(), clientID, currentUser(ctx))
	return ctx.JSON(serverutils.SuccessResponse("Success start new conversation", res))
}

func (c *chatController) GetReport(ctx *fiber.Ctx) error {
	clientID, err := ParseClientID(ctx.Get(ClientIDHeader))
	if err != nil {
		return err
	}

	index, err := strconv.Atoi(ctx.Params("index"))
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid message index")
	}

	res, err := c.engine.Report(ctx.UserContext(), clientID, currentUser(ctx), index)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get report", res))
}

func (c *chatController) ListConversations(ctx *fiber.Ctx) error {
	res, err := c.engine.ListConversations(ctx.UserContext(), currentUser(ctx))
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("Success get conversations", res))
}
