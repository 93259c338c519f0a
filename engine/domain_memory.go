package engine

import (
	"sync"
	"time"
)

type memoryEntry struct {
	engine    string
	expiresAt time.Time
}

// DomainMemory remembers which engine last fetched each domain
// successfully. Entries expire after the TTL.
type DomainMemory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time

	done     chan struct{}
	stopOnce sync.Once
}

// NewDomainMemory creates a DomainMemory with the given TTL and starts a
// background goroutine that prunes expired entries every hour.
func NewDomainMemory(ttl time.Duration) *DomainMemory {
	dm := &DomainMemory{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	go dm.cleanupLoop()
	return dm
}

// Get returns the remembered engine for domain, or "" if none is live.
func (dm *DomainMemory) Get(domain string) string {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	e, ok := dm.entries[domain]
	if !ok {
		return ""
	}
	if dm.now().After(e.expiresAt) {
		delete(dm.entries, domain)
		return ""
	}
	return e.engine
}

// Set records that engine succeeded for domain.
func (dm *DomainMemory) Set(domain, engine string) {
	dm.mu.Lock()
	dm.entries[domain] = memoryEntry{engine: engine, expiresAt: dm.now().Add(dm.ttl)}
	dm.mu.Unlock()
}

// Delete forgets domain.
func (dm *DomainMemory) Delete(domain string) {
	dm.mu.Lock()
	delete(dm.entries, domain)
	dm.mu.Unlock()
}

// Stop terminates the background cleanup goroutine. It is safe to call
// more than once.
func (dm *DomainMemory) Stop() {
	dm.stopOnce.Do(func() { close(dm.done) })
}

func (dm *DomainMemory) prune() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	now := dm.now()
	for domain, e := range dm.entries {
		if now.After(e.expiresAt) {
			delete(dm.entries, domain)
		}
	}
}

func (dm *DomainMemory) cleanupLoop() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-dm.done:
			return
		case <-ticker.C:
			dm.prune()
		}
	}
}
