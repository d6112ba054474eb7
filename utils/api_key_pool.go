package utils

import (
	"errors"
	"math/rand"
	"sync"
	"time"
)

// APIKeyPool rotates a set of TTS API keys, putting keys that hit rate
// limits or vendor errors on a cooldown before they are handed out again
type APIKeyPool struct {
	mu       sync.Mutex
	keys     []string
	usage    map[string]int
	cooldown map[string]time.Time
}

// NewAPIKeyPool creates a pool; nil when no keys are configured
func NewAPIKeyPool(keys []string) *APIKeyPool {
	if len(keys) == 0 {
		return nil
	}
	return &APIKeyPool{
		keys:     keys,
		usage:    make(map[string]int),
		cooldown: make(map[string]time.Time),
	}
}

// Pick returns an available key, preferring the least-used ones
func (p *APIKeyPool) Pick() (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	available := p.availableLocked()
	if len(available) == 0 {
		return "", errors.New("no available API keys")
	}

	minUsage := -1
	for _, key := range available {
		if minUsage == -1 || p.usage[key] < minUsage {
			minUsage = p.usage[key]
		}
	}

	candidates := make([]string, 0, len(available))
	for _, key := range available {
		if p.usage[key] == minUsage {
			candidates = append(candidates, key)
		}
	}

	key := candidates[rand.Intn(len(candidates))]
	p.usage[key]++
	return key, nil
}

// MarkFailed puts a key on cooldown
func (p *APIKeyPool) MarkFailed(key string, retryAfter time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cooldown[key] = time.Now().Add(retryAfter)
}

func (p *APIKeyPool) availableLocked() []string {
	now := time.Now()
	available := make([]string, 0, len(p.keys))
	for _, key := range p.keys {
		if until, ok := p.cooldown[key]; ok {
			if now.Before(until) {
				continue
			}
			delete(p.cooldown, key)
		}
		available = append(available, key)
	}
	return available
}
