package collector

import (
	"fmt"
	"time"

	"github.com/qepting91/devfeed/internal/config"
	"github.com/qepting91/devfeed/internal/domain"
)

// NewFeedClient selects the backend implementation based on the mode.
func NewFeedClient(cfg config.Config, tags []string) (domain.FeedClient, error) {
	switch cfg.Mode {
	case "api":
		return NewClient(ClientOptions{
			BaseURL:    cfg.BaseURL,
			UserAgent:  cfg.UserAgent,
			Timeout:    cfg.Timeout,
			RatePerSec: cfg.RatePerSec,
			Credentials: Credentials{
				Token:     cfg.Token,
				SessionID: cfg.SessionID,
				CSRFToken: cfg.CSRFToken,
			},
		})
	case "mock":
		// Simulated latency keeps overlapping ticks observable.
		return NewMockClient(MockOptions{Tags: tags, Authenticated: true, Latency: 300 * time.Millisecond}), nil
	default:
		return nil, fmt.Errorf("unknown mode: %s (use 'api' or 'mock')", cfg.Mode)
	}
}
