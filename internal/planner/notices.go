package planner

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type Level string

const (
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// Notice is a short, non-fatal message for the user.
type Notice struct {
	Level   Level     `json:"level"`
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

type Notifier interface {
	Notify(level Level, message string)
}

const maxNotices = 20

// NoticeLog keeps the most recent notices in arrival order.
type NoticeLog struct {
	mu      sync.Mutex
	notices []Notice
	now     func() time.Time
}

func NewNoticeLog() *NoticeLog {
	return &NoticeLog{now: time.Now}
}

func (l *NoticeLog) Notify(level Level, message string) {
	entry := logrus.WithField("notice", message)
	switch level {
	case LevelError:
		entry.Warn("user notice")
	default:
		entry.Debug("user notice")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.notices = append(l.notices, Notice{Level: level, Message: message, At: l.now()})
	if len(l.notices) > maxNotices {
		l.notices = append([]Notice(nil), l.notices[len(l.notices)-maxNotices:]...)
	}
}

func (l *NoticeLog) Notices() []Notice {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Notice(nil), l.notices...)
}

// Last returns the newest notice, if any.
func (l *NoticeLog) Last() (Notice, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.notices) == 0 {
		return Notice{}, false
	}
	return l.notices[len(l.notices)-1], true
}

func (l *NoticeLog) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notices = nil
}
