// Package telemetry publishes a periodic lobby-wide snapshot to an MQTT
// broker so external dashboards can observe server load without polling the
// Ops API.
package telemetry

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog/log"

	"github.com/kongor-lobby/masterserver/internal/lobby"
	"github.com/kongor-lobby/masterserver/internal/session"
)

// TopicLobbyStatus is where the periodic snapshot is published.
const TopicLobbyStatus = "manager/lobby/status"

// Publisher owns the MQTT connection and the snapshot ticker.
type Publisher struct {
	client    mqtt.Client
	directory *lobby.Directory
	sessions  *session.Registry
	interval  time.Duration
}

// NewPublisher configures (but does not connect) an MQTT client for the
// given broker URL, e.g. "tcp://broker.example.com:1883".
func NewPublisher(brokerURL, clientID string, directory *lobby.Directory, sessions *session.Registry, interval time.Duration) *Publisher {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(brokerURL)
	opts.SetClientID(clientID)
	opts.SetAutoReconnect(true)
	opts.SetMaxReconnectInterval(30 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetCleanSession(false)
	opts.SetOnConnectHandler(func(mqtt.Client) {
		log.Info().Str("broker", brokerURL).Msg("mqtt connected")
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.Warn().Err(err).Msg("mqtt connection lost")
	})

	return &Publisher{
		client:    mqtt.NewClient(opts),
		directory: directory,
		sessions:  sessions,
		interval:  interval,
	}
}

// lobbySnapshot is the payload published on every tick.
type lobbySnapshot struct {
	TotalSessions      int            `json:"totalSessions"`
	TotalRooms         int            `json:"totalRooms"`
	RoomsInGame        int            `json:"roomsInGame"`
	ChannelServerRooms map[string]int `json:"channelServerRooms"`
	Timestamp          string         `json:"timestamp"`
}

func (p *Publisher) snapshot() lobbySnapshot {
	snap := lobbySnapshot{
		TotalSessions:      p.sessions.Count(),
		ChannelServerRooms: make(map[string]int),
		Timestamp:          time.Now().UTC().Format(time.RFC3339),
	}

	for idx := uint16(0); ; idx++ {
		server, ok := p.directory.Server(idx)
		if !ok {
			break
		}
		serverRooms := 0
		for _, ch := range server.Channels() {
			for _, room := range ch.Rooms() {
				serverRooms++
				snap.TotalRooms++
				if room.InGame() {
					snap.RoomsInGame++
				}
			}
		}
		snap.ChannelServerRooms[server.Name] = serverRooms
	}
	return snap
}

// Run connects to the broker, publishes a snapshot every interval, and
// disconnects when ctx is cancelled.
func (p *Publisher) Run(ctx context.Context) error {
	token := p.client.Connect()
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("telemetry: mqtt connect: %w", token.Error())
	}
	defer p.client.Disconnect(250)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.publish()
		}
	}
}

func (p *Publisher) publish() {
	if !p.client.IsConnected() {
		return
	}
	data, err := json.Marshal(p.snapshot())
	if err != nil {
		log.Warn().Err(err).Msg("failed to marshal lobby snapshot")
		return
	}
	token := p.client.Publish(TopicLobbyStatus, 1, false, data)
	go func() {
		token.Wait()
		if token.Error() != nil {
			log.Warn().Err(token.Error()).Msg("mqtt publish failed")
		}
	}()
}
