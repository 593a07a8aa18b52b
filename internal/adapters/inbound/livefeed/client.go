// Package livefeed streams finished maps from the league's WebSocket feed
// and publishes them onto the event bus, archiving every raw frame.
package livefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/gorilla/websocket"

	"league-predictor/internal/events"
	"league-predictor/internal/telemetry"
)

const (
	minBackoff  = 1 * time.Second
	maxBackoff  = 30 * time.Second
	readTimeout = 90 * time.Second
)

// Client connects to the live feed, parses incoming frames, and publishes
// map results to the bus.
type Client struct {
	url   string
	bus   *events.Bus
	store *Store

	seenMatches map[int]bool // first-frame-per-series debug logging
}

func NewClient(url string, bus *events.Bus, store *Store) *Client {
	return &Client{
		url:         url,
		bus:         bus,
		store:       store,
		seenMatches: make(map[int]bool),
	}
}

// ConnectWithRetry connects to the feed and reconnects on failure with
// exponential backoff. Blocks until ctx is cancelled.
func (c *Client) ConnectWithRetry(ctx context.Context) {
	attempt := 0
	for {
		if ctx.Err() != nil {
			return
		}

		connStart := time.Now()
		err := c.connect(ctx)
		if ctx.Err() != nil {
			return
		}

		if time.Since(connStart) > time.Minute {
			attempt = 0
		}

		attempt++
		telemetry.Metrics.FeedReconnects.Inc()
		backoff := time.Duration(float64(minBackoff) * math.Pow(2, float64(min(attempt-1, 5))))
		if backoff > maxBackoff {
			backoff = maxBackoff
		}

		if err != nil {
			telemetry.Warnf("livefeed: connection lost (attempt %d): %v, retrying in %s",
				attempt, err, backoff)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
	}
}

func (c *Client) connect(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	// Reset deadline on server pings so quiet periods don't trigger a timeout.
	conn.SetPingHandler(func(appData string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(5*time.Second))
	})

	telemetry.Infof("livefeed: connected to %s", c.url)

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		conn.SetReadDeadline(time.Now().Add(readTimeout))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}

		telemetry.Metrics.FramesReceived.Inc()

		// Persist every raw frame before parsing.
		c.store.Insert(frameStage(raw), raw)

		c.handleFrame(raw)
	}
}

func (c *Client) handleFrame(raw []byte) {
	g, final, err := ParseFrame(raw)
	if err != nil {
		telemetry.Metrics.FrameParseErrors.Inc()
		telemetry.Warnf("livefeed: skipping frame: %v", err)
		return
	}

	if !c.seenMatches[g.MatchID] {
		c.seenMatches[g.MatchID] = true
		telemetry.Metrics.ActiveSeries.Inc()
		telemetry.Debugf("livefeed: new series id=%d  %q vs %q  stage=%q",
			g.MatchID, g.Teams[0], g.Teams[1], g.Stage)
	}

	now := time.Now()
	c.bus.Publish(events.Event{
		ID:        strconv.Itoa(g.MatchID) + ":" + now.Format(time.RFC3339Nano),
		Type:      events.EventMapResult,
		Stage:     g.Stage,
		MatchID:   g.MatchID,
		Timestamp: now,
		Payload:   events.MapResult{Game: g},
	})

	if final {
		delete(c.seenMatches, g.MatchID)
		telemetry.Metrics.ActiveSeries.Dec()
		c.bus.Publish(events.Event{
			ID:        strconv.Itoa(g.MatchID) + ":final",
			Type:      events.EventMatchFinal,
			Stage:     g.Stage,
			MatchID:   g.MatchID,
			Timestamp: now,
			Payload: events.MatchFinal{
				Stage:   g.Stage,
				MatchID: g.MatchID,
				Teams:   g.Teams,
				Score:   g.Score,
			},
		})
	}
}

// frameStage peeks the stage id for archival tagging without a full parse.
func frameStage(raw []byte) string {
	var peek struct {
		Stage string `json:"stage"`
	}
	if err := json.Unmarshal(raw, &peek); err != nil {
		return ""
	}
	return peek.Stage
}
