// staffterm is a terminal staff client: it subscribes to the order feed,
// keeps a local synchronized view, and runs the new-order notification
// pipeline against the terminal.
package main

import (
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/restolive/backend/config"
	"github.com/restolive/backend/notify"
	"github.com/restolive/backend/syncclient"
	"github.com/restolive/backend/utils"
)

func main() {
	utils.InitLogger()

	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to load configuration: %v", err)
	}
	utils.InitJWT(cfg.JWTSecret)

	token := cfg.StaffToken
	if token == "" {
		// Dev convenience: mint a local token with the shared secret.
		token, err = utils.GenerateToken(1, "staff")
		if err != nil {
			utils.ErrorLogger.Fatalf("Failed to mint staff token: %v", err)
		}
	}

	feedURL := "ws" + strings.TrimPrefix(cfg.ServerURL, "http") + "/ws/orders?token=" + token

	client := syncclient.New(syncclient.Config{
		FeedURL:      feedURL,
		Snapshotter:  syncclient.NewHTTPSnapshotter(cfg.ServerURL, token),
		Backoff:      cfg.SyncBackoff,
		SnapshotSize: cfg.SyncSnapshotSize,
	})

	pipeline := notify.NewPipeline(
		&notify.TerminalSounder{},
		notify.NoVibrator{},
		notify.NewLogNotifier(),
		notify.NewMemoryBanner(),
	)
	pipeline.BannerTTL = cfg.BannerTTL
	pipeline.HighlightTTL = cfg.HighlightTTL
	pipeline.OpenDetail = func(orderID uint) {
		utils.InfoLogger.Printf("open order %d", orderID)
	}

	client.Start()
	defer client.Close()
	defer pipeline.Close()

	utils.InfoLogger.Printf("Watching order feed at %s", cfg.ServerURL)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case change, ok := <-client.Events():
			if !ok {
				return
			}
			pipeline.HandleChange(change)
			utils.InfoLogger.Printf("order %s is now %s",
				change.Order.OrderNumber, change.Order.Status)
		case <-stop:
			utils.InfoLogger.Println("Shutting down staff terminal")
			return
		}
	}
}
