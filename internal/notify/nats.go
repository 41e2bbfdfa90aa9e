package notify

import (
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/MarcoSchenker/Lab-1-sub000/truco"
)

// NATSPublisher mirrors match events onto a NATS subject tree so external
// consumers (spectator feeds, analytics) can follow matches without holding
// a websocket to the game server.
//
// Subjects:
//
//	truco.match.<code>.<event>   one message per applied action
//	truco.match.<code>.finished  terminal result
type NATSPublisher struct {
	nc *nats.Conn
}

type stateChangedMessage struct {
	MatchCode string         `json:"match_code"`
	Seq       uint64         `json:"seq"`
	Event     string         `json:"event"`
	Snapshot  truco.Snapshot `json:"snapshot"`
}

type matchFinishedMessage struct {
	MatchCode  string         `json:"match_code"`
	WinnerTeam string         `json:"winner_team"`
	Scores     map[string]int `json:"scores"`
}

func NewNATSPublisher(url string) (*NATSPublisher, error) {
	if url == "" {
		url = nats.DefaultURL
	}
	nc, err := nats.Connect(url,
		nats.Name("truco-server"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Printf("[Notify] nats disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("[Notify] nats reconnected to %s", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats at %s: %w", url, err)
	}
	return &NATSPublisher{nc: nc}, nil
}

func (p *NATSPublisher) Close() {
	if p == nil || p.nc == nil {
		return
	}
	if err := p.nc.Drain(); err != nil {
		p.nc.Close()
	}
}

func (p *NATSPublisher) OnStateChanged(matchCode string, seq uint64, event string, snap truco.Snapshot) {
	p.publish(fmt.Sprintf("truco.match.%s.%s", matchCode, event), stateChangedMessage{
		MatchCode: matchCode,
		Seq:       seq,
		Event:     event,
		Snapshot:  snap,
	})
}

func (p *NATSPublisher) OnMatchFinished(matchCode string, winnerTeam string, scores map[string]int) {
	p.publish(fmt.Sprintf("truco.match.%s.finished", matchCode), matchFinishedMessage{
		MatchCode:  matchCode,
		WinnerTeam: winnerTeam,
		Scores:     scores,
	})
}

func (p *NATSPublisher) publish(subject string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		log.Printf("[Notify] marshal for %s failed: %v", subject, err)
		return
	}
	if err := p.nc.Publish(subject, data); err != nil {
		log.Printf("[Notify] publish to %s failed: %v", subject, err)
	}
}
