package helpers

import (
	"sync/atomic"

	tele "gopkg.in/telebot.v4"
)

const replyStatsKey = "reply_stats"

// ReplyStats counts replies queued while one update is handled. Sends run on
// the dispatcher, so replies are counted when queued, not when delivered.
type ReplyStats struct {
	messages atomic.Int32
	keyboard atomic.Bool
}

// AttachReplyStats stores a fresh counter on the update context.
func AttachReplyStats(c tele.Context) *ReplyStats {
	s := &ReplyStats{}
	c.Set(replyStatsKey, s)
	return s
}

// ReplyStatsFrom returns the counter attached to c, or nil.
func ReplyStatsFrom(c tele.Context) *ReplyStats {
	if c == nil {
		return nil
	}
	s, _ := c.Get(replyStatsKey).(*ReplyStats)
	return s
}

func (s *ReplyStats) record(withKeyboard bool) {
	if s == nil {
		return
	}
	s.messages.Add(1)
	if withKeyboard {
		s.keyboard.Store(true)
	}
}

// Snapshot returns the reply count and whether any reply carried a keyboard.
func (s *ReplyStats) Snapshot() (int, bool) {
	if s == nil {
		return 0, false
	}
	return int(s.messages.Load()), s.keyboard.Load()
}
