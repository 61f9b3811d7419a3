// Package network reports connectivity status to the sync coordinator.
// The real transition signal comes from the OS or the backend's health
// endpoint; the core only consumes the Oracle contract.
package network

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/habitkit/habitkit/internal/logger"
)

// Oracle answers point-in-time connectivity checks and streams
// status-change events.
type Oracle interface {
	// Online reports whether the remote backend is currently reachable.
	Online(ctx context.Context) bool
	// Watch emits the new status on every online/offline transition
	// until ctx is done.
	Watch(ctx context.Context) <-chan bool
}

// Static is an oracle pinned to a fixed status, used for the --offline
// flag and in tests.
type Static struct {
	mu     sync.Mutex
	online bool
	subs   []chan bool
}

func NewStatic(online bool) *Static {
	return &Static{online: online}
}

func (s *Static) Online(ctx context.Context) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.online
}

// SetOnline flips the status and notifies watchers on change.
func (s *Static) SetOnline(online bool) {
	s.mu.Lock()
	changed := s.online != online
	s.online = online
	subs := append([]chan bool(nil), s.subs...)
	s.mu.Unlock()

	if !changed {
		return
	}
	for _, ch := range subs {
		select {
		case ch <- online:
		default:
		}
	}
}

func (s *Static) Watch(ctx context.Context) <-chan bool {
	ch := make(chan bool, 1)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		for i, sub := range s.subs {
			if sub == ch {
				s.subs = append(s.subs[:i], s.subs[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
	}()
	return ch
}

// Probe determines connectivity by periodically issuing HEAD requests
// against the backend's health endpoint.
type Probe struct {
	url      string
	interval time.Duration
	client   *http.Client

	mu   sync.Mutex
	last bool
}

func NewProbe(url string, interval time.Duration) *Probe {
	return &Probe{
		url:      url,
		interval: interval,
		client:   &http.Client{Timeout: 3 * time.Second},
	}
}

func (p *Probe) Online(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, p.url, nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode < 500
}

func (p *Probe) Watch(ctx context.Context) <-chan bool {
	ch := make(chan bool, 1)

	p.mu.Lock()
	p.last = p.Online(ctx)
	p.mu.Unlock()

	go func() {
		defer close(ch)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				online := p.Online(ctx)
				p.mu.Lock()
				changed := online != p.last
				p.last = online
				p.mu.Unlock()
				if changed {
					logger.Info("Connectivity changed", "online", online)
					select {
					case ch <- online:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()
	return ch
}
