package connector

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// pinger tracks whether one backing service currently looks reachable,
// polling it on a fixed interval so a hot request path never blocks on a
// liveness probe. checkNow forces an out-of-band probe when a request just
// failed, so a flapping service is noticed before the next tick.
type pinger struct {
	name     string
	pingURL  string
	client   *http.Client
	alive    atomic.Bool
	interval time.Duration
}

func newPinger(name, pingURL string, client *http.Client, interval time.Duration) *pinger {
	p := &pinger{name: name, pingURL: pingURL, client: client, interval: interval}
	p.alive.Store(true) // optimistic until the first probe says otherwise
	return p
}

// run polls the service until stop is closed. Call it in its own goroutine.
func (p *pinger) run(stop <-chan struct{}) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	p.checkNow()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			p.checkNow()
		}
	}
}

// checkNow performs an immediate liveness probe, independent of the
// regular polling interval.
func (p *pinger) checkNow() {
	resp, err := p.client.Get(p.pingURL)
	if err != nil {
		if p.alive.CompareAndSwap(true, false) {
			log.Warn().Str("service", p.name).Err(err).Msg("service went unreachable")
		}
		return
	}
	defer resp.Body.Close()

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	if ok {
		if p.alive.CompareAndSwap(false, true) {
			log.Info().Str("service", p.name).Msg("service recovered")
		}
		return
	}
	if p.alive.CompareAndSwap(true, false) {
		log.Warn().Str("service", p.name).Int("status", resp.StatusCode).Msg("service reported unhealthy")
	}
}

func (p *pinger) isAlive() bool {
	return p.alive.Load()
}
