package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-airline-seat-reservation/internal/domain/seat"
)

type SeatHandler struct {
	service SeatServiceInterface
}

func NewSeatHandler(s SeatServiceInterface) *SeatHandler {
	return &SeatHandler{service: s}
}

type SeatResponse struct {
	ID         string     `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	AirplaneID string     `json:"airplane_id" example:"550e8400-e29b-41d4-a716-446655440000"`
	SeatNumber string     `json:"seat_number" example:"12A"`
	Category   string     `json:"category" example:"standard"`
	Status     string     `json:"status" example:"free"`
	HeldUntil  *time.Time `json:"held_until,omitempty"`
}

type FreeCountResponse struct {
	FlightID  string `json:"flight_id"`
	FreeSeats int    `json:"free_seats" example:"142"`
}

func toSeatResponse(s *seat.Seat) SeatResponse {
	resp := SeatResponse{
		ID: s.ID, AirplaneID: s.AirplaneID, SeatNumber: s.SeatNumber,
		Category: string(s.Category), Status: string(s.Status),
	}
	// ホールド期限は保持者以外にも見せる（リトライ時期の目安になる）
	if s.Status == seat.StatusHeld {
		resp.HeldUntil = s.HeldUntil
	}
	return resp
}

// Hold godoc
// @Summary 座席をホールド
// @Description 座席を一時的にホールドします（TTL付き）。同一ユーザーの再試行は冪等に成功します
// @Tags seats
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param id path string true "座席ID"
// @Success 200 {object} SeatResponse
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "他のユーザーがホールド中、または予約済み"
// @Router /seats/{id}/hold [post]
func (h *SeatHandler) Hold(c echo.Context) error {
	act, err := actorFromRequest(c)
	if err != nil {
		return err
	}
	held, err := h.service.HoldSeat(c.Request().Context(), c.Param("id"), act)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, toSeatResponse(held))
}

// Release godoc
// @Summary ホールドを解除
// @Description 自分のホールドを明示的に解除します
// @Tags seats
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param id path string true "座席ID"
// @Success 204
// @Failure 401 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "ホールドの所有者ではない"
// @Router /seats/{id}/hold [delete]
func (h *SeatHandler) Release(c echo.Context) error {
	act, err := actorFromRequest(c)
	if err != nil {
		return err
	}
	if err := h.service.ReleaseSeat(c.Request().Context(), c.Param("id"), act); err != nil {
		return domainError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetSeatMap godoc
// @Summary 便の座席マップを取得
// @Description 期限切れホールドは空席として報告されます
// @Tags seats
// @Produce json
// @Param id path string true "便ID"
// @Success 200 {array} SeatResponse
// @Failure 404 {object} ErrorResponse
// @Router /flights/{id}/seats [get]
func (h *SeatHandler) GetSeatMap(c echo.Context) error {
	seats, err := h.service.GetSeatMap(c.Request().Context(), c.Param("id"))
	if err != nil {
		return domainError(err)
	}
	resp := make([]SeatResponse, len(seats))
	for i, s := range seats {
		resp[i] = toSeatResponse(s)
	}
	return c.JSON(http.StatusOK, resp)
}

// CountFree godoc
// @Summary 便の空席数を取得
// @Tags seats
// @Produce json
// @Param id path string true "便ID"
// @Success 200 {object} FreeCountResponse
// @Failure 404 {object} ErrorResponse
// @Router /flights/{id}/seats/free-count [get]
func (h *SeatHandler) CountFree(c echo.Context) error {
	flightID := c.Param("id")
	count, err := h.service.CountFreeSeats(c.Request().Context(), flightID)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, FreeCountResponse{FlightID: flightID, FreeSeats: count})
}
