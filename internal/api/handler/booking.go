package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-airline-seat-reservation/internal/application"
	"github.com/sanosuguru/go-airline-seat-reservation/internal/domain/booking"
)

type BookingHandler struct {
	service BookingServiceInterface
}

func NewBookingHandler(s BookingServiceInterface) *BookingHandler {
	return &BookingHandler{service: s}
}

type CreateBookingRequest struct {
	FlightID           string   `json:"flight_id" validate:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	SeatIDs            []string `json:"seat_ids" validate:"required,min=1" example:"seat-1,seat-2"`
	PassengerFirstName string   `json:"passenger_first_name" validate:"required" example:"Taro"`
	PassengerLastName  string   `json:"passenger_last_name" validate:"required" example:"Yamada"`
}

type PayBookingRequest struct {
	Method string `json:"method" validate:"required,oneof=card apple_pay google_pay" example:"card"`
}

type TicketResponse struct {
	ID                 string     `json:"id"`
	SeatID             string     `json:"seat_id"`
	TicketNumber       string     `json:"ticket_number" example:"TK3F2A9C01"`
	PassengerFirstName string     `json:"passenger_first_name"`
	PassengerLastName  string     `json:"passenger_last_name"`
	Status             string     `json:"status" example:"active"`
	CheckedInAt        *time.Time `json:"checked_in_at,omitempty"`
	BoardingPass       *string    `json:"boarding_pass,omitempty"`
}

type PaymentResponse struct {
	ID        string    `json:"id"`
	Amount    float64   `json:"amount" example:"25000"`
	Method    string    `json:"method" example:"card"`
	Status    string    `json:"status" example:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

type BookingResponse struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	FlightID  string            `json:"flight_id"`
	Status    string            `json:"status" example:"pending_payment"`
	PNR       string            `json:"pnr" example:"A3K9PQ"`
	ExpiresAt time.Time         `json:"expires_at"`
	Tickets   []TicketResponse  `json:"tickets"`
	Payments  []PaymentResponse `json:"payments,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

func toTicketResponse(t *booking.Ticket) TicketResponse {
	return TicketResponse{
		ID: t.ID, SeatID: t.SeatID, TicketNumber: t.TicketNumber,
		PassengerFirstName: t.PassengerFirstName, PassengerLastName: t.PassengerLastName,
		Status: string(t.Status), CheckedInAt: t.CheckedInAt, BoardingPass: t.BoardingPass,
	}
}

func toBookingResponse(b *booking.Booking) BookingResponse {
	resp := BookingResponse{
		ID: b.ID, UserID: b.UserID, FlightID: b.FlightID,
		Status: string(b.Status), PNR: b.PNR, ExpiresAt: b.ExpiresAt,
		Tickets: make([]TicketResponse, len(b.Tickets)), CreatedAt: b.CreatedAt,
	}
	for i, t := range b.Tickets {
		resp.Tickets[i] = toTicketResponse(t)
	}
	for _, p := range b.Payments {
		resp.Payments = append(resp.Payments, PaymentResponse{
			ID: p.ID, Amount: p.Amount, Method: string(p.Method),
			Status: string(p.Status), CreatedAt: p.CreatedAt,
		})
	}
	return resp
}

// Create godoc
// @Summary 予約を作成
// @Description ホールド済み座席から予約を作成します。全座席が自分の有効なホールドである必要があります
// @Tags bookings
// @Accept json
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param request body CreateBookingRequest true "予約情報"
// @Success 201 {object} BookingResponse
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "ホールドが無効または期限切れ"
// @Router /bookings [post]
func (h *BookingHandler) Create(c echo.Context) error {
	act, err := actorFromRequest(c)
	if err != nil {
		return err
	}
	var req CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	b, err := h.service.CreateBooking(c.Request().Context(), application.CreateBookingInput{
		FlightID: req.FlightID,
		SeatIDs:  req.SeatIDs,
		Passenger: booking.Passenger{
			FirstName: req.PassengerFirstName,
			LastName:  req.PassengerLastName,
		},
		Actor: act,
	})
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusCreated, toBookingResponse(b))
}

// GetByID godoc
// @Summary 予約を取得
// @Tags bookings
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param id path string true "予約ID"
// @Success 200 {object} BookingResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /bookings/{id} [get]
func (h *BookingHandler) GetByID(c echo.Context) error {
	act, err := actorFromRequest(c)
	if err != nil {
		return err
	}
	b, err := h.service.GetBooking(c.Request().Context(), c.Param("id"), act)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// GetUserBookings godoc
// @Summary 自分の予約一覧を取得
// @Tags bookings
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} BookingResponse
// @Failure 401 {object} ErrorResponse
// @Router /bookings [get]
func (h *BookingHandler) GetUserBookings(c echo.Context) error {
	act, err := actorFromRequest(c)
	if err != nil {
		return err
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	bookings, err := h.service.GetUserBookings(c.Request().Context(), act, limit, offset)
	if err != nil {
		return domainError(err)
	}
	resp := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		resp[i] = toBookingResponse(b)
	}
	return c.JSON(http.StatusOK, resp)
}

// Pay godoc
// @Summary 予約の支払いを行う
// @Description 支払いを記録し、予約を確定します。期限切れ・キャンセル済みの予約は支払えません
// @Tags bookings
// @Accept json
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param id path string true "予約ID"
// @Param request body PayBookingRequest true "支払い方法"
// @Success 200 {object} BookingResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "支払い済み、または期限切れ"
// @Router /bookings/{id}/pay [post]
func (h *BookingHandler) Pay(c echo.Context) error {
	act, err := actorFromRequest(c)
	if err != nil {
		return err
	}
	var req PayBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	b, err := h.service.PayBooking(c.Request().Context(), c.Param("id"), booking.PaymentMethod(req.Method), act)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// Cancel godoc
// @Summary 予約をキャンセル
// @Description 予約全体をキャンセルし、座席を解放します。出発1時間前を過ぎると拒否されます
// @Tags bookings
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param id path string true "予約ID"
// @Success 200 {object} BookingResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "キャンセル済み、または出発直前"
// @Router /bookings/{id}/cancel [post]
func (h *BookingHandler) Cancel(c echo.Context) error {
	act, err := actorFromRequest(c)
	if err != nil {
		return err
	}
	b, err := h.service.CancelBooking(c.Request().Context(), c.Param("id"), act)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// CancelTicket godoc
// @Summary 航空券を1枚キャンセル
// @Description 航空券をキャンセルし、その座席を解放します。最後の1枚の場合は予約ごとキャンセルされます
// @Tags tickets
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param id path string true "航空券ID"
// @Success 200 {object} BookingResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Router /tickets/{id}/cancel [post]
func (h *BookingHandler) CancelTicket(c echo.Context) error {
	act, err := actorFromRequest(c)
	if err != nil {
		return err
	}
	b, _, err := h.service.CancelTicket(c.Request().Context(), c.Param("id"), act)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, toBookingResponse(b))
}

// CheckIn godoc
// @Summary 航空券のチェックイン
// @Description 搭乗券番号を発行します。受付は出発24時間前から1時間前までです
// @Tags tickets
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param id path string true "航空券ID"
// @Success 200 {object} TicketResponse
// @Failure 403 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "チェックイン済み、または受付時間外"
// @Router /tickets/{id}/check-in [post]
func (h *BookingHandler) CheckIn(c echo.Context) error {
	act, err := actorFromRequest(c)
	if err != nil {
		return err
	}
	t, err := h.service.CheckInTicket(c.Request().Context(), c.Param("id"), act)
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, toTicketResponse(t))
}
