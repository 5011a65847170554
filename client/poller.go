package client

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

const DefaultPollInterval = 3 * time.Second

// Poller refetches the current menu on a fixed interval. The refetch replaces
// the locally patched tree, so the server copy always wins. A new Poller is
// disabled.
type Poller struct {
	store    *Store
	interval time.Duration
	enabled  atomic.Bool
	log      logrus.FieldLogger
}

func NewPoller(store *Store, interval time.Duration, log logrus.FieldLogger) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{store: store, interval: interval, log: log}
}

func (p *Poller) Enable()       { p.enabled.Store(true) }
func (p *Poller) Disable()      { p.enabled.Store(false) }
func (p *Poller) Enabled() bool { return p.enabled.Load() }

// Run polls until ctx is done. Ticks are skipped while the poller is disabled
// or no menu is selected.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	if !p.Enabled() {
		return
	}
	current := p.store.State().CurrentMenu
	if current == nil {
		return
	}
	if _, err := p.store.FetchMenu(ctx, current.ID); err != nil && ctx.Err() == nil {
		p.log.WithError(err).WithField("menu_id", current.ID.String()).Debug("poll failed")
	}
}
