package fetch

import (
	"math/rand"
	"sync"
)

// UserAgentPool hands out identification headers round-robin from a fixed
// pool, starting at a random offset so restarts do not always lead with the
// same agent.
type UserAgentPool struct {
	agents []string
	mu     sync.Mutex
	next   int
}

// NewUserAgentPool builds a pool from the configured agents. An empty slice
// yields a pool whose Next returns "".
func NewUserAgentPool(agents []string) *UserAgentPool {
	p := &UserAgentPool{agents: agents}
	if len(agents) > 0 {
		p.next = rand.Intn(len(agents))
	}
	return p
}

// Next returns the next agent string in rotation. Safe for concurrent use.
func (p *UserAgentPool) Next() string {
	if len(p.agents) == 0 {
		return ""
	}
	p.mu.Lock()
	agent := p.agents[p.next]
	p.next = (p.next + 1) % len(p.agents)
	p.mu.Unlock()
	return agent
}
