package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

// イベント種別
const (
	EventBookingCreated   = "booking_created"
	EventBookingConfirmed = "booking_confirmed"
	EventBookingCancelled = "booking_cancelled"
	EventSeatReassigned   = "seat_reassigned"
	EventTicketCheckedIn  = "ticket_checked_in"
)

// BookingEvent は通知サービスが購読する予約イベント
type BookingEvent struct {
	Type      string    `json:"type"`
	BookingID string    `json:"booking_id"`
	UserID    string    `json:"user_id"`
	FlightID  string    `json:"flight_id"`
	PNR       string    `json:"pnr"`
	Status    string    `json:"status"`
	SeatIDs   []string  `json:"seat_ids,omitempty"`
	ExpiresAt time.Time `json:"expires_at,omitempty"`
	EmittedAt time.Time `json:"emitted_at"`
}

// Producer は予約イベントをKafkaへ配信する
type Producer struct {
	writer *kafka.Writer
	topic  string
}

// NewProducer は新しいProducerを作成する
func NewProducer(brokers []string, topic string) *Producer {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	return &Producer{writer: writer, topic: topic}
}

// Publish は予約イベントを配信する
// キーはbooking_idなので、同一予約のイベント順序はパーティション内で保たれる
func (p *Producer) Publish(ctx context.Context, event BookingEvent) error {
	event.EmittedAt = time.Now()
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("イベントのシリアライズに失敗: %w", err)
	}
	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(event.BookingID),
		Value: data,
		Time:  time.Now(),
	}
	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("イベント配信に失敗: %w", err)
	}
	return nil
}

// Close はProducerを閉じる
func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
