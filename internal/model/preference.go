package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// QuietHours is a per-user window during which only urgent notifications
// go out. Start and End are "HH:MM" in the user's timezone; the window
// may wrap midnight (Start > End).
type QuietHours struct {
	Enabled  bool   `json:"enabled" db:"quiet_enabled"`
	Start    string `json:"start" db:"quiet_start"`
	End      string `json:"end" db:"quiet_end"`
	Timezone string `json:"timezone" db:"quiet_timezone"`
}

// Contains reports whether t falls inside the quiet window, handling the
// wraparound case where the window spans midnight.
func (q QuietHours) Contains(t time.Time) bool {
	if !q.Enabled {
		return false
	}

	loc, err := time.LoadLocation(q.Timezone)
	if err != nil {
		loc = time.UTC
	}
	local := t.In(loc)
	minute := local.Hour()*60 + local.Minute()

	start, ok1 := parseClock(q.Start)
	end, ok2 := parseClock(q.End)
	if !ok1 || !ok2 {
		return false
	}

	if start <= end {
		return minute >= start && minute < end
	}
	// Window spans midnight, e.g. 22:00-08:00.
	return minute >= start || minute < end
}

func parseClock(s string) (int, bool) {
	var h, m int
	if n, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil || n != 2 {
		return 0, false
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}

// ChannelContact is a delivery address for one channel. Verification is
// performed by an external flow; the dispatcher only reads the flag.
type ChannelContact struct {
	Address  string `json:"address"`
	Verified bool   `json:"verified"`
}

// UserNotificationPreferences controls what the dispatcher may deliver
// to one user. Owned by the preference service; the dispatcher only
// queries it.
type UserNotificationPreferences struct {
	UserID     uuid.UUID                               `json:"user_id"`
	Channels   map[NotificationChannel]bool            `json:"channels"`
	Categories map[string]bool                         `json:"categories"`
	Quiet      QuietHours                              `json:"quiet_hours"`
	Contacts   map[NotificationChannel]ChannelContact  `json:"contacts"`
	UpdatedAt  time.Time                               `json:"updated_at"`
}

// DefaultPreferences is what a user gets before ever touching settings:
// every channel and category enabled, quiet hours off.
func DefaultPreferences(userID uuid.UUID) *UserNotificationPreferences {
	channels := make(map[NotificationChannel]bool, len(AllChannels))
	for _, c := range AllChannels {
		channels[c] = true
	}
	return &UserNotificationPreferences{
		UserID:   userID,
		Channels: channels,
		Categories: map[string]bool{
			CategoryOrder:     true,
			CategoryDelivery:  true,
			CategoryInventory: true,
			CategorySystem:    true,
		},
		Quiet:    QuietHours{Timezone: "UTC"},
		Contacts: make(map[NotificationChannel]ChannelContact),
	}
}

// ChannelEnabled defaults to enabled for channels never toggled.
func (p *UserNotificationPreferences) ChannelEnabled(c NotificationChannel) bool {
	v, ok := p.Channels[c]
	if !ok {
		return true
	}
	return v
}

// CategoryEnabled defaults to enabled for categories never toggled.
func (p *UserNotificationPreferences) CategoryEnabled(cat string) bool {
	v, ok := p.Categories[cat]
	if !ok {
		return true
	}
	return v
}
