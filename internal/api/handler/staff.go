package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// StaffHandler はカウンター業務向けのスタッフ専用操作を提供する
// 権限チェックはサービス層が行い、ここではリクエストの変換だけを担う
type StaffHandler struct {
	service BookingServiceInterface
}

func NewStaffHandler(s BookingServiceInterface) *StaffHandler {
	return &StaffHandler{service: s}
}

type ReassignSeatRequest struct {
	TicketID  string `json:"ticket_id" validate:"required"`
	NewSeatID string `json:"new_seat_id" validate:"required"`
}

// SearchByPNR godoc
// @Summary PNRで予約を検索
// @Description PNRコードから予約を検索します（スタッフのみ）
// @Tags staff
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param X-User-Role header string true "ロール" default(staff)
// @Param code path string true "PNRコード"
// @Success 200 {object} BookingResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /staff/bookings/pnr/{code} [get]
func (h *StaffHandler) SearchByPNR(c echo.Context) error {
	act, err := actorFromRequest(c)
	if err != nil {
		return err
	}
	b, err := h.service.SearchByPNR(c.Request().Context(), c.Param("code"), act)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// CancelBooking godoc
// @Summary 予約を強制キャンセル
// @Description スタッフ権限で予約をキャンセルします。出発直前の制限を受けません
// @Tags staff
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param X-User-Role header string true "ロール" default(staff)
// @Param id path string true "予約ID"
// @Success 200 {object} BookingResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /staff/bookings/{id}/cancel [post]
func (h *StaffHandler) CancelBooking(c echo.Context) error {
	act, err := actorFromRequest(c)
	if err != nil {
		return err
	}
	b, err := h.service.StaffCancelBooking(c.Request().Context(), c.Param("id"), act)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// ReassignSeat godoc
// @Summary 座席を付け替え
// @Description 航空券の座席を別の空席に付け替えます（スタッフのみ）。予約済みの座席には付け替えできません
// @Tags staff
// @Accept json
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param X-User-Role header string true "ロール" default(staff)
// @Param id path string true "予約ID"
// @Param request body ReassignSeatRequest true "付け替え情報"
// @Success 200 {object} BookingResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "付け替え先が空席ではない"
// @Router /staff/bookings/{id}/reassign [post]
func (h *StaffHandler) ReassignSeat(c echo.Context) error {
	act, err := actorFromRequest(c)
	if err != nil {
		return err
	}
	var req ReassignSeatRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	b, err := h.service.ReassignSeat(c.Request().Context(), c.Param("id"), req.TicketID, req.NewSeatID, act)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}
