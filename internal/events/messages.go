package events

import (
	"encoding/json"
	"time"
)

// ReportDeliveryMessage records the outcome of one channel attempt for
// one generated report. Consumers (audit dashboards, alerting) are
// external; this service only publishes.
type ReportDeliveryMessage struct {
	UserID    int64     `json:"user_id"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	Channel   string    `json:"channel"`
	Success   bool      `json:"success"`
	Error     string    `json:"error,omitempty"`
	MessageID string    `json:"message_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (m *ReportDeliveryMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ReportDeliveryMessageFromJSON(data []byte) (*ReportDeliveryMessage, error) {
	var msg ReportDeliveryMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
