package deepgram

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/gcsuri/AVA-AI-Voice-Agent-for-Asterisk/internal/ws"
)

// keepAliveLoop keeps the agent session alive across silence. Each tick it
// checks whether any caller audio went out since the previous tick; if not,
// it sends one KeepAlive frame. The flag is cleared every tick regardless,
// so a single quiet interval is enough to resume heartbeats.
func (p *Provider) keepAliveLoop(ctx context.Context, client *ws.Client) {
	ticker := time.NewTicker(p.keepAliveInterval)
	defer ticker.Stop()

	msg, err := json.Marshal(keepAliveMessage{Type: "KeepAlive"})
	if err != nil {
		logrus.Errorf("deepgram: marshal keepalive message: %v", err)
		return
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-client.Done():
			return
		case <-ticker.C:
			if !p.audioFlowing.Load() {
				if err := client.SendText(msg); err != nil {
					if !ws.IsExpectedClose(err) {
						logrus.Warnf("deepgram: failed to send keepalive: %v", err)
					}
					return
				}
				p.m.KeepAlivesSent.Inc()
				logrus.Debug("deepgram: keepalive sent")
			}
			p.audioFlowing.Store(false)
		}
	}
}
