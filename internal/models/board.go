// Package models provides data models for the trade board system.
package models

import (
	"sort"
	"time"

	"github.com/trade-board/internal/types"
)

// Board represents a named reporting configuration: user roster, account
// shares, reporting date window and capability flags.
type Board struct {
	Name          string             `json:"name"`
	AllowPractice bool               `json:"allow_practice"`
	AllowCombine  bool               `json:"allow_combine"`
	AllowXFA      bool               `json:"allow_xfa"`
	AllowMultiple bool               `json:"allow_multiple"`
	StartDate     time.Time          `json:"start_date"`
	EndDate       time.Time          `json:"end_date"`
	Shares        map[string][]Share `json:"shares"`
}

// Share represents one brokerage sub-account assigned to a user. Platform
// selects the trade API endpoint; the optional dates narrow the board window
// for this share only.
type Share struct {
	AccountID   int64      `json:"account_id"`
	Platform    string     `json:"platform,omitempty"`
	AccountType string     `json:"account_type,omitempty"`
	StartDate   *time.Time `json:"start_date,omitempty"`
	EndDate     *time.Time `json:"end_date,omitempty"`
}

// PlatformID returns the platform the share's trades are fetched from.
func (s *Share) PlatformID() types.PlatformID {
	return types.ParsePlatformID(s.Platform)
}

// Window is an inclusive date window used to filter raw trades.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// EffectiveWindow returns the board window with the share's per-share
// overrides applied. Overrides replace the board bounds, they do not clamp.
func (b *Board) EffectiveWindow(share *Share) Window {
	w := Window{Start: b.StartDate, End: b.EndDate}
	if share.StartDate != nil {
		w.Start = *share.StartDate
	}
	if share.EndDate != nil {
		w.End = *share.EndDate
	}
	return w
}

// Users returns the roster in deterministic (sorted) order.
func (b *Board) Users() []string {
	users := make([]string, 0, len(b.Shares))
	for user := range b.Shares {
		users = append(users, user)
	}
	sort.Strings(users)
	return users
}
