package health

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

const DefaultTimeout = 2 * time.Second

// CheckFunc reports whether a dependency is usable.
type CheckFunc func(ctx context.Context) error

// Checker serves liveness and readiness probes.
type Checker struct {
	timeout time.Duration

	mu     sync.RWMutex
	checks map[string]CheckFunc
}

func NewChecker(timeout time.Duration) *Checker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Checker{timeout: timeout, checks: map[string]CheckFunc{}}
}

// Register adds a readiness dependency under name.
func (h *Checker) Register(name string, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checks[name] = fn
}

// CheckReadiness runs every registered check and returns per-dependency
// results ("ok" or the error text) and whether all passed.
func (h *Checker) CheckReadiness(ctx context.Context) (map[string]string, bool) {
	h.mu.RLock()
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	fns := make([]CheckFunc, len(names))
	for i, name := range names {
		fns[i] = h.checks[name]
	}
	h.mu.RUnlock()

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	results := make(map[string]string, len(names))
	ready := true
	for i, name := range names {
		if err := fns[i](ctx); err != nil {
			results[name] = err.Error()
			ready = false
			continue
		}
		results[name] = "ok"
	}
	return results, ready
}

// Liveness answers as long as the process serves HTTP.
func (h *Checker) Liveness(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "healthy"})
}

// Readiness answers 503 while any dependency check fails.
func (h *Checker) Readiness(c *fiber.Ctx) error {
	results, ready := h.CheckReadiness(c.UserContext())
	if !ready {
		log.Warnf("[Health] Not ready: %v", results)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "not ready",
			"checks": results,
		})
	}
	return c.JSON(fiber.Map{"status": "ready", "checks": results})
}
