package roomhandler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chatrelay/internal/chat"
)

type Handler struct {
	registry *chat.Registry
}

func New(registry *chat.Registry) *Handler { return &Handler{registry: registry} }

func (h *Handler) Register(r gin.IRoutes) {
	r.GET("/rooms", h.list)
	r.GET("/rooms/:name", h.info)
	r.POST("/rooms", h.create)
}

func (h *Handler) list(c *gin.Context) {
	c.JSON(http.StatusOK, h.registry.Rooms())
}

func (h *Handler) info(c *gin.Context) {
	room := h.registry.Room(c.Param("name"))
	if room == nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: chat.ErrRoomNotFound.Error()})
		return
	}
	c.JSON(http.StatusOK, chat.RoomInfo{Name: room.Name(), Members: room.Size()})
}

func (h *Handler) create(c *gin.Context) {
	var body CreateRoomBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	switch err := h.registry.CreateRoom(body.Name); {
	case errors.Is(err, chat.ErrRoomExists):
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	case errors.Is(err, chat.ErrNameRequired):
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
	case err != nil:
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusCreated, chat.RoomInfo{Name: body.Name, Members: 0})
	}
}
