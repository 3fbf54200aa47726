package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"hostelportal/internal/service"
)

// HostelHandler serves room and feedback listings.
type HostelHandler struct {
	rooms    service.RoomService
	feedback service.FeedbackService
}

// NewHostelHandler creates a hostel handler.
func NewHostelHandler(rooms service.RoomService, feedback service.FeedbackService) *HostelHandler {
	return &HostelHandler{rooms: rooms, feedback: feedback}
}

// ListRooms godoc
// @Summary List rooms
// @Description Staff see every room; a student sees the assigned room only.
// @Tags rooms
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Room
// @Failure 401 {object} errors.ErrorResponse
// @Router /rooms [get]
func (h *HostelHandler) ListRooms(c echo.Context) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return err
	}
	rooms, err := h.rooms.ListRooms(c.Request().Context(), claims)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, rooms)
}

// ListFeedback godoc
// @Summary List feedback
// @Description Staff see all feedback; a student sees their own.
// @Tags feedback
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Feedback
// @Failure 401 {object} errors.ErrorResponse
// @Router /feedback [get]
func (h *HostelHandler) ListFeedback(c echo.Context) error {
	claims, err := claimsFrom(c)
	if err != nil {
		return err
	}
	items, err := h.feedback.ListFeedback(c.Request().Context(), claims)
	if err != nil {
		return errorResponse(c, err)
	}
	return c.JSON(http.StatusOK, items)
}
