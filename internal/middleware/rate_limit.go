package middleware

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/time/rate"

	"mission-desk/internal/domain"
	"mission-desk/internal/dto"
)

// visitor wraps a limiter with its last use so idle entries can be dropped.
type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// AccountRateLimiter limits requests per authenticated account.
type AccountRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    rate.Limit
	burst    int
	idle     time.Duration
	stop     chan struct{}
	stopOnce sync.Once
}

// NewAccountRateLimiter allows perMinute requests per account with the given burst.
// perMinute <= 0 disables limiting.
func NewAccountRateLimiter(perMinute, burst int) *AccountRateLimiter {
	l := &AccountRateLimiter{
		visitors: make(map[string]*visitor),
		burst:    burst,
		idle:     10 * time.Minute,
		stop:     make(chan struct{}),
	}
	if perMinute > 0 {
		l.limit = rate.Every(time.Minute / time.Duration(perMinute))
		if l.burst < 1 {
			l.burst = 1
		}
		go l.cleanup()
	}
	return l
}

func (l *AccountRateLimiter) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case now := <-ticker.C:
			l.mu.Lock()
			for key, v := range l.visitors {
				if now.Sub(v.lastSeen) > l.idle {
					delete(l.visitors, key)
				}
			}
			l.mu.Unlock()
		}
	}
}

// Close stops the cleanup goroutine.
func (l *AccountRateLimiter) Close() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *AccountRateLimiter) allow(key string) bool {
	l.mu.Lock()
	v, ok := l.visitors[key]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.visitors[key] = v
	}
	v.lastSeen = time.Now()
	l.mu.Unlock()
	return v.limiter.Allow()
}

// Handler must run after Protected; anonymous requests are keyed by IP.
func (l *AccountRateLimiter) Handler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if l.limit == 0 {
			return c.Next()
		}
		key := AccountID(c)
		if key == "" {
			key = "ip:" + c.IP()
		}
		if !l.allow(key) {
			err := domain.NewRateLimitedError()
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Success: false,
				Code:    string(err.Code),
				Message: err.Message,
			})
		}
		return c.Next()
	}
}
