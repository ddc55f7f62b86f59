package health

import (
	"sync"
	"time"

	"waifuhub/backend/pkg/logger"
)

// Status represents the health status of a component
type Status string

const (
	// StatusUp indicates a component is working correctly
	StatusUp Status = "up"
	// StatusDown indicates a component is not working
	StatusDown Status = "down"
	// StatusDegraded indicates a component is working but with reduced functionality
	StatusDegraded Status = "degraded"
)

// Component represents a system component that can be health-checked
type Component struct {
	Name        string    `json:"name"`
	Status      Status    `json:"status"`
	Description string    `json:"description,omitempty"`
	Error       string    `json:"error,omitempty"`
	LastChecked time.Time `json:"last_checked"`
}

// Check represents a health check function
type Check func() (Status, string, error)

// Checker runs registered checks periodically and serves the latest snapshot.
type Checker struct {
	checks      map[string]Check
	components  map[string]*Component
	checkPeriod time.Duration
	stop        chan struct{}
	mutex       sync.RWMutex
	log         *logger.Logger
}

// NewChecker creates a new health checker
func NewChecker(log *logger.Logger, checkPeriod time.Duration) *Checker {
	if checkPeriod <= 0 {
		checkPeriod = 30 * time.Second
	}
	return &Checker{
		checks:      make(map[string]Check),
		components:  make(map[string]*Component),
		checkPeriod: checkPeriod,
		stop:        make(chan struct{}),
		log:         log,
	}
}

// RegisterCheck registers a new health check
func (c *Checker) RegisterCheck(name string, check Check) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.checks[name] = check
	c.components[name] = &Component{
		Name:        name,
		Status:      StatusDown,
		Description: "Not checked yet",
	}
}

// RegisterDatabaseCheck wires the primary store into the checker. The
// database is the only critical component; everything else degrades.
func (c *Checker) RegisterDatabaseCheck(ping func() error) {
	c.RegisterCheck("database", func() (Status, string, error) {
		if err := ping(); err != nil {
			return StatusDown, "database unreachable", err
		}
		return StatusUp, "database connection established", nil
	})
}

// RegisterCacheCheck wires the feed cache. A down cache is degraded, not
// down; reads fall through to the database.
func (c *Checker) RegisterCacheCheck(ping func() error) {
	c.RegisterCheck("cache", func() (Status, string, error) {
		if err := ping(); err != nil {
			return StatusDegraded, "cache unreachable, serving from database", err
		}
		return StatusUp, "cache reachable", nil
	})
}

// RegisterUpstreamCheck reports whether a generation collaborator is
// configured and its breaker is accepting calls.
func (c *Checker) RegisterUpstreamCheck(name string, ready func() error) {
	c.RegisterCheck(name, func() (Status, string, error) {
		if err := ready(); err != nil {
			return StatusDegraded, "upstream unavailable", err
		}
		return StatusUp, "upstream ready", nil
	})
}

// RunChecks executes all registered health checks
func (c *Checker) RunChecks() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for name, check := range c.checks {
		status, description, err := check()

		component := c.components[name]
		component.Status = status
		component.Description = description
		component.LastChecked = time.Now()

		if err != nil {
			component.Error = err.Error()
			c.log.Error("Health check failed",
				"component", name,
				"status", string(status),
				"error", err.Error(),
			)
		} else {
			component.Error = ""
		}
	}
}

// Start begins periodic health checks
func (c *Checker) Start() {
	go func() {
		c.RunChecks()

		ticker := time.NewTicker(c.checkPeriod)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				c.RunChecks()
			case <-c.stop:
				return
			}
		}
	}()
}

// Stop ends periodic checking.
func (c *Checker) Stop() {
	close(c.stop)
}

// GetStatus returns a copy of the current component snapshot.
func (c *Checker) GetStatus() map[string]*Component {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	result := make(map[string]*Component, len(c.components))
	for k, v := range c.components {
		componentCopy := *v
		result[k] = &componentCopy
	}
	return result
}

// IsSystemHealthy returns true when no critical component is down.
func (c *Checker) IsSystemHealthy() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	for _, component := range c.components {
		if component.Status == StatusDown && component.Name == "database" {
			return false
		}
	}
	return true
}
