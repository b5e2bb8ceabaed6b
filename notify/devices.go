package notify

import (
	"fmt"
	"os"
	"sync"

	"github.com/restolive/backend/utils"
)

type Permission string

const (
	PermissionDefault Permission = "default"
	PermissionGranted Permission = "granted"
	PermissionDenied  Permission = "denied"
)

// Sounder plays the new-order audio cue. Beep is the synthesized two-tone
// fallback for when the asset cannot play.
type Sounder interface {
	Play() error
	Beep() error
}

// Vibrator triggers device vibration where the platform has one.
type Vibrator interface {
	Available() bool
	Vibrate() error
}

// SystemNotifier shows OS-level notifications behind a one-time permission
// prompt.
type SystemNotifier interface {
	Permission() Permission
	RequestPermission() (Permission, error)
	Show(title, body string) error
}

// Banner is the in-app banner surface.
type Banner interface {
	Show(orderID uint, text string)
	Dismiss(orderID uint)
}

// TerminalSounder is the default implementation for terminal staff clients:
// the audio asset is a configured command-free bell, the fallback a double
// bell.
type TerminalSounder struct {
	// AssetPath is the audio file a richer client would play; empty means
	// the asset is unavailable and Play fails over to Beep.
	AssetPath string
}

func (s *TerminalSounder) Play() error {
	if s.AssetPath == "" {
		return fmt.Errorf("no audio asset configured")
	}
	if _, err := os.Stat(s.AssetPath); err != nil {
		return fmt.Errorf("audio asset unavailable: %w", err)
	}
	fmt.Fprint(os.Stdout, "\a")
	return nil
}

func (s *TerminalSounder) Beep() error {
	fmt.Fprint(os.Stdout, "\a\a")
	return nil
}

// NoVibrator is for platforms without a vibration motor.
type NoVibrator struct{}

func (NoVibrator) Available() bool { return false }
func (NoVibrator) Vibrate() error  { return nil }

// LogNotifier stands in for a platform notification center: permission is
// asked once, then notifications go to the log.
type LogNotifier struct {
	mu         sync.Mutex
	permission Permission
}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{permission: PermissionDefault}
}

func (n *LogNotifier) Permission() Permission {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.permission
}

func (n *LogNotifier) RequestPermission() (Permission, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.permission == PermissionDefault {
		n.permission = PermissionGranted
	}
	return n.permission, nil
}

func (n *LogNotifier) Show(title, body string) error {
	utils.InfoLogger.Printf("notification: %s - %s", title, body)
	return nil
}

// MemoryBanner keeps the set of visible banners; a UI layer would render it.
type MemoryBanner struct {
	mu      sync.Mutex
	banners map[uint]string
}

func NewMemoryBanner() *MemoryBanner {
	return &MemoryBanner{banners: make(map[uint]string)}
}

func (b *MemoryBanner) Show(orderID uint, text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.banners[orderID] = text
}

func (b *MemoryBanner) Dismiss(orderID uint) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.banners, orderID)
}

// Visible reports whether the banner for an order is currently shown.
func (b *MemoryBanner) Visible(orderID uint) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.banners[orderID]
	return ok
}
