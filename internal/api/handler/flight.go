package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-airline-seat-reservation/internal/application"
	"github.com/sanosuguru/go-airline-seat-reservation/internal/domain/flight"
)

type FlightHandler struct {
	service FlightServiceInterface
}

func NewFlightHandler(s FlightServiceInterface) *FlightHandler {
	return &FlightHandler{service: s}
}

type CreateAirplaneRequest struct {
	Model            string `json:"model" validate:"required" example:"A320neo"`
	Rows             int    `json:"rows" validate:"required,min=1" example:"30"`
	SeatsPerRow      int    `json:"seats_per_row" validate:"required,min=1,max=6" example:"6"`
	ExtraLegroomRows int    `json:"extra_legroom_rows" validate:"min=0" example:"4"`
}

type AirplaneResponse struct {
	ID         string `json:"id"`
	Model      string `json:"model" example:"A320neo"`
	TotalSeats int    `json:"total_seats" example:"180"`
	IsActive   bool   `json:"is_active"`
}

type CreateFlightRequest struct {
	FlightNumber     string    `json:"flight_number" validate:"required" example:"NH204"`
	DepartureAirport string    `json:"departure_airport" validate:"required,len=3" example:"HND"`
	ArrivalAirport   string    `json:"arrival_airport" validate:"required,len=3" example:"SFO"`
	DepartureTime    time.Time `json:"departure_time" validate:"required"`
	ArrivalTime      time.Time `json:"arrival_time" validate:"required"`
	AirplaneID       string    `json:"airplane_id" validate:"required"`
	BasePrice        float64   `json:"base_price" validate:"min=0" example:"52000"`
	Gate             string    `json:"gate" example:"114"`
}

type FlightResponse struct {
	ID               string    `json:"id"`
	FlightNumber     string    `json:"flight_number" example:"NH204"`
	DepartureAirport string    `json:"departure_airport" example:"HND"`
	ArrivalAirport   string    `json:"arrival_airport" example:"SFO"`
	DepartureTime    time.Time `json:"departure_time"`
	ArrivalTime      time.Time `json:"arrival_time"`
	AirplaneID       string    `json:"airplane_id"`
	Status           string    `json:"status" example:"scheduled"`
	BasePrice        float64   `json:"base_price" example:"52000"`
	Gate             string    `json:"gate,omitempty" example:"114"`
}

func toFlightResponse(f *flight.Flight) FlightResponse {
	return FlightResponse{
		ID: f.ID, FlightNumber: f.FlightNumber,
		DepartureAirport: f.DepartureAirport, ArrivalAirport: f.ArrivalAirport,
		DepartureTime: f.DepartureTime, ArrivalTime: f.ArrivalTime,
		AirplaneID: f.AirplaneID, Status: string(f.Status),
		BasePrice: f.BasePrice, Gate: f.Gate,
	}
}

// CreateAirplane godoc
// @Summary 機体を登録
// @Description 機体を登録し、座席マップを生成します
// @Tags flights
// @Accept json
// @Produce json
// @Param request body CreateAirplaneRequest true "機体情報"
// @Success 201 {object} AirplaneResponse
// @Failure 400 {object} ErrorResponse
// @Router /airplanes [post]
func (h *FlightHandler) CreateAirplane(c echo.Context) error {
	var req CreateAirplaneRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	airplane, err := h.service.CreateAirplane(c.Request().Context(), application.CreateAirplaneInput{
		Model:            req.Model,
		Rows:             req.Rows,
		SeatsPerRow:      req.SeatsPerRow,
		ExtraLegroomRows: req.ExtraLegroomRows,
	})
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusCreated, AirplaneResponse{
		ID: airplane.ID, Model: airplane.Model,
		TotalSeats: airplane.TotalSeats, IsActive: airplane.IsActive,
	})
}

// GetAirplaneSeats godoc
// @Summary 機体の座席一覧を取得
// @Tags flights
// @Produce json
// @Param id path string true "機体ID"
// @Success 200 {array} SeatResponse
// @Failure 404 {object} ErrorResponse
// @Router /airplanes/{id}/seats [get]
func (h *FlightHandler) GetAirplaneSeats(c echo.Context) error {
	seats, err := h.service.GetAirplaneSeats(c.Request().Context(), c.Param("id"))
	if err != nil {
		return domainError(err)
	}
	resp := make([]SeatResponse, len(seats))
	for i, s := range seats {
		resp[i] = toSeatResponse(s)
	}
	return c.JSON(http.StatusOK, resp)
}

// Create godoc
// @Summary 便を登録
// @Tags flights
// @Accept json
// @Produce json
// @Param request body CreateFlightRequest true "便情報"
// @Success 201 {object} FlightResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse "機体が見つからない"
// @Router /flights [post]
func (h *FlightHandler) Create(c echo.Context) error {
	var req CreateFlightRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	fl, err := h.service.CreateFlight(c.Request().Context(), application.CreateFlightInput{
		FlightNumber:     req.FlightNumber,
		DepartureAirport: req.DepartureAirport,
		ArrivalAirport:   req.ArrivalAirport,
		DepartureTime:    req.DepartureTime,
		ArrivalTime:      req.ArrivalTime,
		AirplaneID:       req.AirplaneID,
		BasePrice:        req.BasePrice,
		Gate:             req.Gate,
	})
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusCreated, toFlightResponse(fl))
}

// GetByID godoc
// @Summary 便を取得
// @Tags flights
// @Produce json
// @Param id path string true "便ID"
// @Success 200 {object} FlightResponse
// @Failure 404 {object} ErrorResponse
// @Router /flights/{id} [get]
func (h *FlightHandler) GetByID(c echo.Context) error {
	fl, err := h.service.GetFlight(c.Request().Context(), c.Param("id"))
	if err != nil {
		return domainError(err)
	}
	return c.JSON(http.StatusOK, toFlightResponse(fl))
}

// List godoc
// @Summary 便の一覧を取得
// @Tags flights
// @Produce json
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} FlightResponse
// @Router /flights [get]
func (h *FlightHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	flights, err := h.service.ListFlights(c.Request().Context(), limit, offset)
	if err != nil {
		return domainError(err)
	}
	resp := make([]FlightResponse, len(flights))
	for i, f := range flights {
		resp[i] = toFlightResponse(f)
	}
	return c.JSON(http.StatusOK, resp)
}
