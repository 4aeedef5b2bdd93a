package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDisplayIsOnline(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	at := func(d time.Duration) *time.Time {
		ts := now.Add(-d)
		return &ts
	}

	cases := []struct {
		name        string
		lastCheckIn *time.Time
		want        bool
	}{
		{"never checked in", nil, false},
		{"nine minutes ago", at(9 * time.Minute), true},
		{"eleven minutes ago", at(11 * time.Minute), false},
		{"exactly at threshold", at(OnlineThreshold), false},
		{"just now", at(0), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			d := Display{LastCheckIn: tc.lastCheckIn}
			assert.Equal(t, tc.want, d.IsOnline(now))
		})
	}
}
