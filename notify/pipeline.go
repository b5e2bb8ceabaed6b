package notify

import (
	"fmt"
	"sync"
	"time"

	"github.com/restolive/backend/models"
	"github.com/restolive/backend/syncclient"
	"github.com/restolive/backend/utils"
)

// record tracks one order id for dedup and expiry. Process-local only.
type record struct {
	firstSeenAt time.Time
	dismissedAt *time.Time
}

// Pipeline drives every new-order side effect: audio cue, vibration, system
// notification, in-app banner, and the "new" highlight on the list. Each step
// is independently best effort; one failing never blocks the rest. An order
// id fires at most once per session no matter how many delivery paths
// surface it.
type Pipeline struct {
	Sound  Sounder
	Motor  Vibrator
	System SystemNotifier
	Banner Banner

	// BannerTTL is single-digit seconds, HighlightTTL tens of seconds; both
	// clear on their own unless the user dismisses first.
	BannerTTL    time.Duration
	HighlightTTL time.Duration

	// OpenDetail is called when the user clicks a banner.
	OpenDetail func(orderID uint)

	mu           sync.Mutex
	seen         map[uint]*record
	bannerTimers map[uint]*time.Timer
	highlights   map[uint]*time.Timer
}

func NewPipeline(sound Sounder, motor Vibrator, system SystemNotifier, banner Banner) *Pipeline {
	return &Pipeline{
		Sound:        sound,
		Motor:        motor,
		System:       system,
		Banner:       banner,
		BannerTTL:    6 * time.Second,
		HighlightTTL: 30 * time.Second,
		seen:         make(map[uint]*record),
		bannerTimers: make(map[uint]*time.Timer),
		highlights:   make(map[uint]*time.Timer),
	}
}

// HandleChange feeds the pipeline from the sync client. Only changes that
// introduce an order id notify; updates never do.
func (p *Pipeline) HandleChange(change syncclient.Change) {
	if !change.IsNew {
		return
	}
	p.NotifyNewOrder(change.Order)
}

// NotifyNewOrder runs the full notification sequence for an order, once.
func (p *Pipeline) NotifyNewOrder(order models.Order) {
	p.mu.Lock()
	if _, dup := p.seen[order.ID]; dup {
		p.mu.Unlock()
		return
	}
	p.seen[order.ID] = &record{firstSeenAt: time.Now()}
	p.mu.Unlock()

	p.playSound(order)
	p.vibrate(order)
	p.systemNotify(order)
	p.showBanner(order)
	p.highlight(order)
}

func (p *Pipeline) playSound(order models.Order) {
	if p.Sound == nil {
		return
	}
	if err := p.Sound.Play(); err != nil {
		utils.ErrorLogger.Printf("notify: audio cue for order %d failed, falling back to beep: %v", order.ID, err)
		if berr := p.Sound.Beep(); berr != nil {
			utils.ErrorLogger.Printf("notify: beep fallback failed: %v", berr)
		}
	}
}

func (p *Pipeline) vibrate(order models.Order) {
	if p.Motor == nil || !p.Motor.Available() {
		return
	}
	if err := p.Motor.Vibrate(); err != nil {
		utils.ErrorLogger.Printf("notify: vibration for order %d failed: %v", order.ID, err)
	}
}

func (p *Pipeline) systemNotify(order models.Order) {
	if p.System == nil {
		return
	}
	perm := p.System.Permission()
	if perm == PermissionDefault {
		var err error
		if perm, err = p.System.RequestPermission(); err != nil {
			utils.ErrorLogger.Printf("notify: permission request failed: %v", err)
			return
		}
	}
	if perm != PermissionGranted {
		return
	}
	body := fmt.Sprintf("%s - %s (%s)", order.OrderNumber, order.CustomerName,
		utils.FormatCurrency(order.TotalAmount))
	if err := p.System.Show("New order", body); err != nil {
		utils.ErrorLogger.Printf("notify: system notification for order %d failed: %v", order.ID, err)
	}
}

func (p *Pipeline) showBanner(order models.Order) {
	if p.Banner == nil {
		return
	}
	text := fmt.Sprintf("New order %s from %s", order.OrderNumber, order.CustomerName)
	p.Banner.Show(order.ID, text)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.bannerTimers[order.ID] = time.AfterFunc(p.BannerTTL, func() {
		p.expireBanner(order.ID)
	})
}

func (p *Pipeline) highlight(order models.Order) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.highlights[order.ID] = time.AfterFunc(p.HighlightTTL, func() {
		p.clearHighlight(order.ID)
	})
}

// IsHighlighted reports whether the order still carries the "new" marker.
func (p *Pipeline) IsHighlighted(orderID uint) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.highlights[orderID]
	return ok
}

// Dismiss is the explicit user dismissal: banner and highlight clear
// immediately instead of waiting out their windows.
func (p *Pipeline) Dismiss(orderID uint) {
	p.mu.Lock()
	if rec, ok := p.seen[orderID]; ok && rec.dismissedAt == nil {
		now := time.Now()
		rec.dismissedAt = &now
	}
	p.stopBannerTimerLocked(orderID)
	p.stopHighlightTimerLocked(orderID)
	p.mu.Unlock()

	if p.Banner != nil {
		p.Banner.Dismiss(orderID)
	}
}

// ClickBanner opens the order detail. The banner's own expiry timer is
// cancelled first so it cannot self-dismiss mid-interaction.
func (p *Pipeline) ClickBanner(orderID uint) {
	p.mu.Lock()
	p.stopBannerTimerLocked(orderID)
	p.mu.Unlock()

	if p.OpenDetail != nil {
		p.OpenDetail(orderID)
	}
}

// Close stops all pending timers.
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id := range p.bannerTimers {
		p.stopBannerTimerLocked(id)
	}
	for id := range p.highlights {
		p.stopHighlightTimerLocked(id)
	}
}

func (p *Pipeline) expireBanner(orderID uint) {
	p.mu.Lock()
	delete(p.bannerTimers, orderID)
	p.mu.Unlock()
	if p.Banner != nil {
		p.Banner.Dismiss(orderID)
	}
}

func (p *Pipeline) clearHighlight(orderID uint) {
	p.mu.Lock()
	delete(p.highlights, orderID)
	p.mu.Unlock()
}

func (p *Pipeline) stopBannerTimerLocked(orderID uint) {
	if t, ok := p.bannerTimers[orderID]; ok {
		t.Stop()
		delete(p.bannerTimers, orderID)
	}
}

func (p *Pipeline) stopHighlightTimerLocked(orderID uint) {
	if t, ok := p.highlights[orderID]; ok {
		t.Stop()
		delete(p.highlights, orderID)
	}
}
