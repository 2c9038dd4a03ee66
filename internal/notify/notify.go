package notify

import (
	"sync"
	"time"

	"linkboard/internal/metrics"

	"go.uber.org/zap"
)

// Level is the severity of a toast
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// DefaultTTL is how long a toast stays visible when no TTL is configured
const DefaultTTL = 5 * time.Second

// Notifier is what the hooks need to report outcomes to the user
type Notifier interface {
	Success(msg string)
	Error(msg string)
}

// Toast is one transient notification
type Toast struct {
	Level     Level
	Message   string
	ExpiresAt time.Time
}

// Queue holds the toasts of one view session until they are shown or expire
type Queue struct {
	mu     sync.Mutex
	toasts []Toast
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// NewQueue creates a toast queue. A non-positive ttl falls back to DefaultTTL.
func NewQueue(ttl time.Duration, logger *zap.Logger) *Queue {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Queue{ttl: ttl, now: time.Now, logger: logger}
}

func (q *Queue) Success(msg string) { q.push(LevelSuccess, msg) }

func (q *Queue) Error(msg string) { q.push(LevelError, msg) }

func (q *Queue) push(level Level, msg string) {
	q.mu.Lock()
	q.toasts = append(q.toasts, Toast{Level: level, Message: msg, ExpiresAt: q.now().Add(q.ttl)})
	q.mu.Unlock()

	metrics.ToastsTotal.WithLabelValues(string(level)).Inc()
	q.logger.Debug("toast queued", zap.String("level", string(level)), zap.String("message", msg))
}

// Drain returns the toasts that have not expired and empties the queue.
// Each toast is shown at most once.
func (q *Queue) Drain() []Toast {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := q.now()
	live := make([]Toast, 0, len(q.toasts))
	for _, t := range q.toasts {
		if now.Before(t.ExpiresAt) {
			live = append(live, t)
		}
	}
	q.toasts = nil
	return live
}

// Len reports the number of queued toasts, expired ones included
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.toasts)
}
