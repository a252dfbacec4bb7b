package giveaway

import (
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a giveaway record.
type Status string

const (
	StatusActive    Status = "active"
	StatusEnded     Status = "ended"
	StatusClaimed   Status = "claimed"
	StatusCancelled Status = "cancelled"
	// StatusForfeited is reached when a claim window lapses and no replacement
	// pool remains. Terminal, like cancelled.
	StatusForfeited Status = "forfeited"
)

// Configuration limits.
const (
	DefaultEmoji = "\U0001f389"

	MinWinnerCount = 1
	MaxWinnerCount = 50

	MinDurationSeconds = 60
	MaxDurationSeconds = 365 * 24 * 3600

	MinClaimSeconds = 60
	MaxClaimSeconds = 30 * 24 * 3600

	MaxPrizeLength = 256
)

// Record is one giveaway, keyed by the hosting message id. JSON field names
// match the documents written by earlier versions of the bot, including the
// legacy single-value prize/winner fields that Normalize folds in.
type Record struct {
	MessageID   string   `json:"message_id"`
	GuildID     string   `json:"guild_id"`
	ChannelID   string   `json:"channel_id"`
	HostID      string   `json:"host_id"`
	Prize       string   `json:"prize,omitempty"` // legacy single prize
	Prizes      []string `json:"prizes"`
	Description string   `json:"description,omitempty"`
	EndAt       int64    `json:"end_ts"` // unix seconds
	Emoji       string   `json:"emoji"`
	Entries     []string `json:"entries"`
	WinnerID    string   `json:"winner_id,omitempty"` // legacy single winner
	WinnerIDs   []string `json:"winner_ids"`
	WinnerCount int      `json:"winner_count"`
	ClaimedIDs  []string `json:"claimed_winner_ids"`
	Status      Status   `json:"status"`

	ClaimEnabled  bool  `json:"claim_enabled"`
	ClaimSeconds  int64 `json:"claim_seconds"`
	ClaimDeadline int64 `json:"claim_deadline_ts,omitempty"` // unix seconds, 0 = none
}

// Options carries validated creation input.
type Options struct {
	Prizes          []string
	Description     string
	WinnerCount     int
	DurationSeconds int64
	Emoji           string
	ClaimEnabled    bool
	ClaimSeconds    int64
}

// Validate checks every constraint and names the violated one.
func (o *Options) Validate() error {
	if len(trimPrizes(o.Prizes)) == 0 {
		return &ValidationError{Field: "prizes", Reason: "at least one prize is required"}
	}
	if o.WinnerCount < MinWinnerCount || o.WinnerCount > MaxWinnerCount {
		return &ValidationError{
			Field:  "winners",
			Reason: fmt.Sprintf("must be between %d and %d", MinWinnerCount, MaxWinnerCount),
		}
	}
	if o.DurationSeconds < MinDurationSeconds || o.DurationSeconds > MaxDurationSeconds {
		return &ValidationError{
			Field:  "duration",
			Reason: fmt.Sprintf("must be between %d seconds and 365 days", MinDurationSeconds),
		}
	}
	if o.ClaimEnabled {
		if o.ClaimSeconds < MinClaimSeconds || o.ClaimSeconds > MaxClaimSeconds {
			return &ValidationError{
				Field:  "claim window",
				Reason: fmt.Sprintf("must be between %d seconds and 30 days", MinClaimSeconds),
			}
		}
	}
	return nil
}

// NewRecord builds an active record from validated options. Call
// Options.Validate first; NewRecord does not re-check.
func NewRecord(guildID, channelID, hostID, messageID string, now time.Time, o Options) *Record {
	prizes := trimPrizes(o.Prizes)
	emoji := o.Emoji
	if emoji == "" {
		emoji = DefaultEmoji
	}
	claimSeconds := o.ClaimSeconds
	if !o.ClaimEnabled {
		claimSeconds = 0
	}
	return &Record{
		MessageID:    messageID,
		GuildID:      guildID,
		ChannelID:    channelID,
		HostID:       hostID,
		Prize:        prizes[0],
		Prizes:       prizes,
		Description:  strings.TrimSpace(o.Description),
		EndAt:        now.Unix() + o.DurationSeconds,
		Emoji:        emoji,
		Entries:      []string{},
		WinnerIDs:    []string{},
		WinnerCount:  o.WinnerCount,
		ClaimedIDs:   []string{},
		Status:       StatusActive,
		ClaimEnabled: o.ClaimEnabled,
		ClaimSeconds: claimSeconds,
	}
}

// Normalize reconciles legacy single-value fields and applies defaults so
// records written by older versions of the bot load cleanly.
func (r *Record) Normalize() {
	if len(r.Prizes) == 0 && strings.TrimSpace(r.Prize) != "" {
		r.Prizes = []string{strings.TrimSpace(r.Prize)}
	}
	r.Prizes = trimPrizes(r.Prizes)
	if len(r.Prizes) > 0 {
		r.Prize = r.Prizes[0]
	}
	if len(r.WinnerIDs) == 0 && r.WinnerID != "" {
		r.WinnerIDs = []string{r.WinnerID}
	}
	if r.WinnerCount < MinWinnerCount {
		r.WinnerCount = 1
	} else if r.WinnerCount > MaxWinnerCount {
		r.WinnerCount = MaxWinnerCount
	}
	if r.Emoji == "" {
		r.Emoji = DefaultEmoji
	}
	if r.Status == "" {
		r.Status = StatusActive
	}
	if r.Entries == nil {
		r.Entries = []string{}
	}
	if r.WinnerIDs == nil {
		r.WinnerIDs = []string{}
	}
	if r.ClaimedIDs == nil {
		r.ClaimedIDs = []string{}
	}
}

// Clone returns a deep copy so callers can read without racing mutators.
func (r *Record) Clone() *Record {
	c := *r
	c.Prizes = append([]string(nil), r.Prizes...)
	c.Entries = append([]string(nil), r.Entries...)
	c.WinnerIDs = append([]string(nil), r.WinnerIDs...)
	c.ClaimedIDs = append([]string(nil), r.ClaimedIDs...)
	return &c
}

// IsTerminal reports whether no further transitions are permitted.
func (r *Record) IsTerminal() bool {
	return r.Status == StatusCancelled || r.Status == StatusClaimed || r.Status == StatusForfeited
}

// HasEntry reports whether the user is currently entered.
func (r *Record) HasEntry(userID string) bool {
	return contains(r.Entries, userID)
}

// IsWinner reports whether the user is in the current winner set.
func (r *Record) IsWinner(userID string) bool {
	return contains(r.WinnerIDs, userID)
}

// HasClaimed reports whether the user has already claimed.
func (r *Record) HasClaimed(userID string) bool {
	return contains(r.ClaimedIDs, userID)
}

// AllClaimed reports whether every current winner has claimed. False when
// there are no winners at all.
func (r *Record) AllClaimed() bool {
	if len(r.WinnerIDs) == 0 {
		return false
	}
	for _, w := range r.WinnerIDs {
		if !contains(r.ClaimedIDs, w) {
			return false
		}
	}
	return true
}

// setWinners replaces the winner set wholesale, keeping the legacy field in
// sync, and resets the claim bookkeeping.
func (r *Record) setWinners(winners []string) {
	r.WinnerIDs = winners
	r.WinnerID = ""
	if len(winners) > 0 {
		r.WinnerID = winners[0]
	}
	r.ClaimedIDs = []string{}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func trimPrizes(prizes []string) []string {
	out := make([]string, 0, len(prizes))
	for _, p := range prizes {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if len(p) > MaxPrizeLength {
			p = p[:MaxPrizeLength]
		}
		out = append(out, p)
	}
	return out
}
