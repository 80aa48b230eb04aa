package redis

import (
	"errors"
	"fmt"

	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrLockNotAcquired = errors.New("lock not acquired")

var unlockScript = redis.NewScript(`
local val = redis.call("GET", KEYS[1])
if val == ARGV[1] then
  return redis.call("DEL", KEYS[1])
else
  return 0
end
`)

// WithAppointmentLock runs fn while holding a short-lived advisory lock for
// the appointment, so concurrent meeting generation for the same appointment
// cannot both pass the idempotency check.
func WithAppointmentLock(appointmentID uint, ttl time.Duration, fn func() error) error {
	key := fmt.Sprintf("lock:meeting:%d", appointmentID)
	token := uuid.NewString()

	ok, err := Client.SetNX(Ctx, key, token, ttl).Result()
	if err != nil {
		return fmt.Errorf("acquire meeting lock: %w", err)
	}
	if !ok {
		return ErrLockNotAcquired
	}

	defer func() {
		_, _ = unlockScript.Run(Ctx, Client, []string{key}, token).Result()
	}()

	return fn()
}
