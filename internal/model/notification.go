package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationStatus string

const (
	NotificationStatusPending   NotificationStatus = "pending"
	NotificationStatusSent      NotificationStatus = "sent"
	NotificationStatusDelivered NotificationStatus = "delivered"
	NotificationStatusFailed    NotificationStatus = "failed"
	NotificationStatusExpired   NotificationStatus = "expired"
)

type NotificationChannel string

const (
	ChannelEmail    NotificationChannel = "email"
	ChannelSMS      NotificationChannel = "sms"
	ChannelPush     NotificationChannel = "push"
	ChannelChat     NotificationChannel = "chat"
	ChannelWhatsApp NotificationChannel = "whatsapp"
	ChannelInApp    NotificationChannel = "in_app"
)

// AllChannels enumerates every delivery medium the dispatcher knows.
var AllChannels = []NotificationChannel{
	ChannelEmail, ChannelSMS, ChannelPush, ChannelChat, ChannelWhatsApp, ChannelInApp,
}

type NotificationPriority string

const (
	PriorityLow    NotificationPriority = "low"
	PriorityNormal NotificationPriority = "normal"
	PriorityUrgent NotificationPriority = "urgent"
)

// Notification categories
const (
	CategoryOrder     = "order"
	CategoryDelivery  = "delivery"
	CategoryInventory = "inventory"
	CategorySystem    = "system"
)

// Notification is one history record in the dispatch queue. Created at
// enqueue time with status pending; only the dispatcher moves it through
// its lifecycle.
type Notification struct {
	Base
	UserID       uuid.UUID            `json:"user_id" db:"user_id"`
	Channel      NotificationChannel  `json:"channel" db:"channel"`
	Category     string               `json:"category" db:"category"`
	Priority     NotificationPriority `json:"priority" db:"priority"`
	Title        string               `json:"title" db:"title"`
	Message      string               `json:"message" db:"message"`
	Status       NotificationStatus   `json:"status" db:"status"`
	RetryCount   int                  `json:"retry_count" db:"retry_count"`
	LastError    string               `json:"last_error,omitempty" db:"last_error"`
	ScheduledFor time.Time            `json:"scheduled_for" db:"scheduled_for"`
	ExpiresAt    *time.Time           `json:"expires_at,omitempty" db:"expires_at"`
	SentAt       *time.Time           `json:"sent_at,omitempty" db:"sent_at"`
	OrderID      *uuid.UUID           `json:"order_id,omitempty" db:"order_id"`
}

// NotificationFilters narrows history listings.
type NotificationFilters struct {
	UserID  *uuid.UUID
	Status  *NotificationStatus
	Channel *NotificationChannel
	Pagination
}

// StatsPeriod is the lookback window for dispatch statistics.
type StatsPeriod string

const (
	PeriodDay   StatsPeriod = "day"
	PeriodWeek  StatsPeriod = "week"
	PeriodMonth StatsPeriod = "month"
	PeriodYear  StatsPeriod = "year"
)

// Lookback converts the period into a duration ending at now.
func (p StatsPeriod) Lookback() time.Duration {
	switch p {
	case PeriodWeek:
		return 7 * 24 * time.Hour
	case PeriodMonth:
		return 30 * 24 * time.Hour
	case PeriodYear:
		return 365 * 24 * time.Hour
	default:
		return 24 * time.Hour
	}
}

// NotificationStats aggregates dispatch counts over one period.
type NotificationStats struct {
	Period     StatsPeriod    `json:"period"`
	Total      int            `json:"total"`
	ByStatus   map[string]int `json:"by_status"`
	ByChannel  map[string]int `json:"by_channel"`
	ByCategory map[string]int `json:"by_category"`
}
