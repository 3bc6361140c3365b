// Package breaker configures the circuit breakers placed in front of
// third-party services (mail relay, image host).
package breaker

import (
	"log"
	"time"

	"github.com/sony/gobreaker/v2"
)

type Settings struct {
	// Failures is the number of consecutive failures that opens the breaker.
	Failures uint32
	// Cooldown is how long the breaker stays open before a trial request.
	Cooldown time.Duration
}

var Default = Settings{Failures: 5, Cooldown: 30 * time.Second}

func New[T any](name string, s Settings) *gobreaker.CircuitBreaker[T] {
	return gobreaker.NewCircuitBreaker[T](gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     s.Cooldown,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= s.Failures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("breaker %s: %s -> %s", name, from, to)
		},
	})
}
