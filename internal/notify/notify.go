// Package notify is the fire-and-forget notification sink the stores report user-facing outcomes to.
package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Variant selects how a notification is presented.
type Variant string

const (
	VariantDefault     Variant = "default"
	VariantDestructive Variant = "destructive"
)

// Notification is a transient message for the shopper.
type Notification struct {
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Variant     Variant   `json:"variant"`
	At          time.Time `json:"at"`
}

// Notifier receives notifications. Implementations must not block and must not fail the caller.
type Notifier interface {
	Notify(n Notification)
}

// Info builds a default notification.
func Info(title, description string) Notification {
	return Notification{Title: title, Description: description, Variant: VariantDefault}
}

// Failure builds a destructive notification.
func Failure(title, description string) Notification {
	return Notification{Title: title, Description: description, Variant: VariantDestructive}
}

// Nop discards every notification.
type Nop struct{}

func (Nop) Notify(Notification) {}

// ZapNotifier writes notifications to a logger.
type ZapNotifier struct {
	logger *zap.Logger
}

func NewZapNotifier(logger *zap.Logger) *ZapNotifier {
	return &ZapNotifier{logger: logger}
}

func (z *ZapNotifier) Notify(n Notification) {
	fields := []zap.Field{
		zap.String("title", n.Title),
		zap.String("description", n.Description),
	}
	if n.Variant == VariantDestructive {
		z.logger.Warn("notification", fields...)
		return
	}
	z.logger.Info("notification", fields...)
}

// Recorder keeps the most recent notifications in memory.
type Recorder struct {
	mu    sync.Mutex
	limit int
	items []Notification
	now   func() time.Time
}

// NewRecorder keeps at most limit notifications; a non-positive limit keeps 50.
func NewRecorder(limit int) *Recorder {
	if limit <= 0 {
		limit = 50
	}
	return &Recorder{limit: limit, now: time.Now}
}

func (r *Recorder) Notify(n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n.At.IsZero() {
		n.At = r.now()
	}
	r.items = append(r.items, n)
	if over := len(r.items) - r.limit; over > 0 {
		r.items = append(r.items[:0:0], r.items[over:]...)
	}
}

// All returns the recorded notifications, oldest first.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Notification(nil), r.items...)
}

// Drain returns the recorded notifications and forgets them.
func (r *Recorder) Drain() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := r.items
	r.items = nil
	return items
}

// Last returns the newest notification, if any.
func (r *Recorder) Last() (Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.items) == 0 {
		return Notification{}, false
	}
	return r.items[len(r.items)-1], true
}

// Multi fans a notification out to several notifiers.
type Multi []Notifier

func (m Multi) Notify(n Notification) {
	for _, target := range m {
		if target != nil {
			target.Notify(n)
		}
	}
}
