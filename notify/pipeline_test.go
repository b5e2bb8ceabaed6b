package notify

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/restolive/backend/models"
	"github.com/restolive/backend/syncclient"
)

type fakeSounder struct {
	mu      sync.Mutex
	plays   int
	beeps   int
	playErr error
	beepErr error
}

func (s *fakeSounder) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.plays++
	return s.playErr
}

func (s *fakeSounder) Beep() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.beeps++
	return s.beepErr
}

type fakeVibrator struct {
	mu         sync.Mutex
	vibrations int
}

func (v *fakeVibrator) Available() bool { return true }

func (v *fakeVibrator) Vibrate() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.vibrations++
	return nil
}

type fakeNotifier struct {
	mu         sync.Mutex
	permission Permission
	requests   int
	shown      []string
}

func (n *fakeNotifier) Permission() Permission {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.permission
}

func (n *fakeNotifier) RequestPermission() (Permission, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.requests++
	if n.permission == PermissionDefault {
		n.permission = PermissionGranted
	}
	return n.permission, nil
}

func (n *fakeNotifier) Show(title, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.shown = append(n.shown, title+": "+body)
	return nil
}

func newTestPipeline() (*Pipeline, *fakeSounder, *fakeVibrator, *fakeNotifier, *MemoryBanner) {
	sound := &fakeSounder{}
	motor := &fakeVibrator{}
	system := &fakeNotifier{permission: PermissionDefault}
	banner := NewMemoryBanner()
	p := NewPipeline(sound, motor, system, banner)
	return p, sound, motor, system, banner
}

func order(id uint) models.Order {
	return models.Order{
		ID:           id,
		OrderNumber:  "ORD-20260828-0001",
		CustomerName: "Rina",
		TotalAmount:  64,
	}
}

func TestNotifyRunsEveryChannel(t *testing.T) {
	p, sound, motor, system, banner := newTestPipeline()
	defer p.Close()

	p.NotifyNewOrder(order(1))

	assert.Equal(t, 1, sound.plays)
	assert.Zero(t, sound.beeps)
	assert.Equal(t, 1, motor.vibrations)
	require.Len(t, system.shown, 1)
	assert.Contains(t, system.shown[0], "ORD-20260828-0001")
	assert.True(t, banner.Visible(1))
	assert.True(t, p.IsHighlighted(1))
}

func TestNotifyAtMostOncePerOrder(t *testing.T) {
	p, sound, _, system, _ := newTestPipeline()
	defer p.Close()

	// The same order can surface through the live feed, a resync snapshot,
	// and a reconnect replay. Only the first sighting notifies.
	p.NotifyNewOrder(order(1))
	p.NotifyNewOrder(order(1))
	p.HandleChange(syncclient.Change{Order: order(1), IsNew: true})

	assert.Equal(t, 1, sound.plays)
	assert.Len(t, system.shown, 1)
}

func TestUpdatesNeverNotify(t *testing.T) {
	p, sound, _, _, banner := newTestPipeline()
	defer p.Close()

	p.HandleChange(syncclient.Change{Order: order(2), IsNew: false})

	assert.Zero(t, sound.plays)
	assert.False(t, banner.Visible(2))
}

func TestSoundFallsBackToBeep(t *testing.T) {
	p, sound, _, _, _ := newTestPipeline()
	defer p.Close()
	sound.playErr = errors.New("asset missing")

	p.NotifyNewOrder(order(1))

	assert.Equal(t, 1, sound.plays)
	assert.Equal(t, 1, sound.beeps)
}

func TestFailedSoundDoesNotBlockOtherChannels(t *testing.T) {
	p, sound, motor, system, banner := newTestPipeline()
	defer p.Close()
	sound.playErr = errors.New("asset missing")
	sound.beepErr = errors.New("no audio device")

	p.NotifyNewOrder(order(1))

	assert.Equal(t, 1, motor.vibrations)
	assert.Len(t, system.shown, 1)
	assert.True(t, banner.Visible(1))
}

func TestPermissionRequestedOnce(t *testing.T) {
	p, _, _, system, _ := newTestPipeline()
	defer p.Close()

	p.NotifyNewOrder(order(1))
	p.NotifyNewOrder(order(2))

	assert.Equal(t, 1, system.requests)
	assert.Len(t, system.shown, 2)
}

func TestDeniedPermissionSkipsSystemNotification(t *testing.T) {
	p, _, _, system, banner := newTestPipeline()
	defer p.Close()
	system.permission = PermissionDenied

	p.NotifyNewOrder(order(1))

	assert.Zero(t, system.requests)
	assert.Empty(t, system.shown)
	assert.True(t, banner.Visible(1))
}

func TestBannerExpiresOnItsOwn(t *testing.T) {
	p, _, _, _, banner := newTestPipeline()
	defer p.Close()
	p.BannerTTL = 30 * time.Millisecond
	p.HighlightTTL = time.Minute

	p.NotifyNewOrder(order(1))
	require.True(t, banner.Visible(1))

	require.Eventually(t, func() bool { return !banner.Visible(1) },
		time.Second, 5*time.Millisecond)
	assert.True(t, p.IsHighlighted(1))
}

func TestHighlightExpiresOnItsOwn(t *testing.T) {
	p, _, _, _, _ := newTestPipeline()
	defer p.Close()
	p.HighlightTTL = 30 * time.Millisecond

	p.NotifyNewOrder(order(1))
	require.True(t, p.IsHighlighted(1))

	require.Eventually(t, func() bool { return !p.IsHighlighted(1) },
		time.Second, 5*time.Millisecond)
}

func TestDismissClearsImmediately(t *testing.T) {
	p, _, _, _, banner := newTestPipeline()
	defer p.Close()
	p.BannerTTL = time.Minute
	p.HighlightTTL = time.Minute

	p.NotifyNewOrder(order(1))
	p.Dismiss(1)

	assert.False(t, banner.Visible(1))
	assert.False(t, p.IsHighlighted(1))
}

func TestClickBannerOpensDetailAndCancelsExpiry(t *testing.T) {
	p, _, _, _, banner := newTestPipeline()
	defer p.Close()
	p.BannerTTL = 30 * time.Millisecond

	var opened []uint
	p.OpenDetail = func(orderID uint) { opened = append(opened, orderID) }

	p.NotifyNewOrder(order(1))
	p.ClickBanner(1)

	assert.Equal(t, []uint{1}, opened)

	// The expiry timer was cancelled; the banner stays until dismissed.
	time.Sleep(60 * time.Millisecond)
	assert.True(t, banner.Visible(1))

	p.Dismiss(1)
	assert.False(t, banner.Visible(1))
}
