package booking

import "time"

// Status は予約の状態を表す
//
// CREATED は作成トランザクション内の一時状態で、永続化されるのは
// PENDING_PAYMENT 以降のみ
type Status string

const (
	StatusCreated        Status = "created"
	StatusPendingPayment Status = "pending_payment"
	StatusConfirmed      Status = "confirmed"
	StatusCancelled      Status = "cancelled"
)

// TicketStatus は航空券の状態を表す
type TicketStatus string

const (
	TicketStatusActive    TicketStatus = "active"
	TicketStatusCancelled TicketStatus = "cancelled"
)

// PaymentMethod は支払い方法を表す
type PaymentMethod string

const (
	PaymentMethodCard      PaymentMethod = "card"
	PaymentMethodApplePay  PaymentMethod = "apple_pay"
	PaymentMethodGooglePay PaymentMethod = "google_pay"
)

// PaymentStatus は支払いの状態を表す
type PaymentStatus string

const (
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Booking は予約エンティティを表す
type Booking struct {
	ID        string
	UserID    string
	FlightID  string
	Status    Status
	PNR       string
	ExpiresAt time.Time
	Tickets   []*Ticket
	Payments  []*Payment
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Ticket は予約内の1座席分の航空券を表す
type Ticket struct {
	ID                 string
	BookingID          string
	SeatID             string
	TicketNumber       string
	PassengerFirstName string
	PassengerLastName  string
	Status             TicketStatus
	CheckedInAt        *time.Time
	BoardingPass       *string
	CreatedAt          time.Time
}

// Payment は予約に対する支払い記録を表す（追記のみ）
type Payment struct {
	ID        string
	BookingID string
	Amount    float64
	Method    PaymentMethod
	Status    PaymentStatus
	CreatedAt time.Time
}

// Passenger は航空券に記載する搭乗者情報
type Passenger struct {
	FirstName string
	LastName  string
}

// NewBooking は支払い待ちの新しい予約を作成する
func NewBooking(flightID, userID, pnr string, paymentWindow time.Duration) *Booking {
	now := time.Now()
	return &Booking{
		UserID:    userID,
		FlightID:  flightID,
		Status:    StatusPendingPayment,
		PNR:       pnr,
		ExpiresAt: now.Add(paymentWindow),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NewTicket は新しい航空券を作成する
func NewTicket(seatID, ticketNumber string, passenger Passenger) *Ticket {
	return &Ticket{
		SeatID:             seatID,
		TicketNumber:       ticketNumber,
		PassengerFirstName: passenger.FirstName,
		PassengerLastName:  passenger.LastName,
		Status:             TicketStatusActive,
		CreatedAt:          time.Now(),
	}
}

// IsExpired は支払い期限が過ぎているかを返す
func (b *Booking) IsExpired(now time.Time) bool {
	return b.Status == StatusPendingPayment && b.ExpiresAt.Before(now)
}

// Pay は予約を支払い済み（確定）に遷移させる
func (b *Booking) Pay() error {
	switch b.Status {
	case StatusConfirmed:
		return ErrBookingAlreadyPaid
	case StatusCancelled:
		return ErrBookingExpiredOrCancelled
	}
	now := time.Now()
	if b.ExpiresAt.Before(now) {
		return ErrBookingExpiredOrCancelled
	}
	b.Status = StatusConfirmed
	b.UpdatedAt = now
	return nil
}

// Cancel は予約をキャンセルに遷移させる
func (b *Booking) Cancel() error {
	if b.Status == StatusCancelled {
		return ErrBookingAlreadyCancelled
	}
	now := time.Now()
	b.Status = StatusCancelled
	b.UpdatedAt = now
	for _, t := range b.Tickets {
		if t.Status == TicketStatusActive {
			t.Status = TicketStatusCancelled
		}
	}
	return nil
}

// ActiveTickets はキャンセルされていない航空券の一覧を返す
func (b *Booking) ActiveTickets() []*Ticket {
	active := make([]*Ticket, 0, len(b.Tickets))
	for _, t := range b.Tickets {
		if t.Status == TicketStatusActive {
			active = append(active, t)
		}
	}
	return active
}

// ActiveSeatIDs はキャンセルされていない航空券の座席ID一覧を返す
func (b *Booking) ActiveSeatIDs() []string {
	tickets := b.ActiveTickets()
	ids := make([]string, len(tickets))
	for i, t := range tickets {
		ids[i] = t.SeatID
	}
	return ids
}

// FindTicket はIDから航空券を探す
func (b *Booking) FindTicket(ticketID string) *Ticket {
	for _, t := range b.Tickets {
		if t.ID == ticketID {
			return t
		}
	}
	return nil
}

// Cancel は航空券を個別にキャンセルする
func (t *Ticket) Cancel() error {
	if t.Status == TicketStatusCancelled {
		return ErrTicketAlreadyCancelled
	}
	t.Status = TicketStatusCancelled
	return nil
}

// CheckIn は航空券にチェックインを記録する
func (t *Ticket) CheckIn(boardingPass string) error {
	if t.Status != TicketStatusActive {
		return ErrTicketAlreadyCancelled
	}
	if t.CheckedInAt != nil {
		return ErrAlreadyCheckedIn
	}
	now := time.Now()
	t.CheckedInAt = &now
	t.BoardingPass = &boardingPass
	return nil
}

// Validate は予約の検証を行う
func (b *Booking) Validate() error {
	if b.FlightID == "" {
		return ErrFlightIDRequired
	}
	if b.UserID == "" {
		return ErrUserIDRequired
	}
	if b.PNR == "" {
		return ErrPNRRequired
	}
	if len(b.Tickets) == 0 {
		return ErrTicketsRequired
	}
	return nil
}
