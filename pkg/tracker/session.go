package tracker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/fleetlive/fleetlive/pkg/events"
	"github.com/fleetlive/fleetlive/pkg/fleet"
	"github.com/fleetlive/fleetlive/pkg/registry"
	"github.com/gofiber/contrib/websocket"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10

	sendBufferSize = 256
)

var errSessionClosed = errors.New("session closed")
var errSendBufferFull = errors.New("session send buffer full")

// Session is the server side of one observer connection. It joins its
// topic on the hub, sends the registry snapshot, then pumps inbound
// reports into the Updater and outbound broadcasts to the socket until
// the connection dies.
type Session struct {
	conn     *websocket.Conn
	topic    string
	hub      *Hub
	updater  *Updater
	registry registry.Registry
	events   EventPublisher

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func NewSession(conn *websocket.Conn, topic string, hub *Hub, updater *Updater, vehicleRegistry registry.Registry, eventPublisher EventPublisher) *Session {
	return &Session{
		conn:     conn,
		topic:    topic,
		hub:      hub,
		updater:  updater,
		registry: vehicleRegistry,
		events:   eventPublisher,

		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}
}

// Deliver implements Member. It hands the broadcast to the write pump
// without blocking; a closed session or a full buffer reports an error
// so the hub drops this member.
func (session *Session) Deliver(message []byte) error {
	select {
	case <-session.done:
		return errSessionClosed
	default:
	}

	select {
	case session.send <- message:
		return nil
	default:
		return errSendBufferFull
	}
}

// Run drives the session until the connection closes. Leaving the hub
// happens on every exit path, however the session ends.
func (session *Session) Run() {
	session.hub.Join(session.topic, session)
	defer session.close()

	log.Info().
		Str("topic", session.topic).
		Str("remote", session.conn.RemoteAddr().String()).
		Msg("Session connected")

	if session.events != nil {
		session.events(events.TypeSessionConnected, map[string]string{"topic": session.topic})
	}

	if err := session.sendSnapshot(); err != nil {
		log.Error().Err(err).Str("topic", session.topic).Msg("Failed to send registry snapshot")
		return
	}

	var pumps conc.WaitGroup
	pumps.Go(session.writePump)

	session.readPump()

	session.shutdown()
	pumps.Wait()
}

// sendSnapshot reads the full registry and queues it as a single
// message, so a joining observer always starts from complete state.
func (session *Session) sendSnapshot() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	vehicles, err := session.registry.ListAllVehicles(ctx)
	if err != nil {
		return err
	}

	snapshot := make([]fleet.PositionMessage, 0, len(vehicles))
	for _, vehicle := range vehicles {
		snapshot = append(snapshot, vehicle.PositionMessage())
	}

	message, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}

	return session.Deliver(message)
}

func (session *Session) readPump() {
	session.conn.SetReadDeadline(time.Now().Add(pongWait))
	session.conn.SetPongHandler(func(string) error {
		session.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, payload, err := session.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug().Err(err).Str("topic", session.topic).Msg("Session read failed")
			}
			return
		}

		session.updater.HandleReport(context.Background(), session.topic, payload)
	}
}

func (session *Session) writePump() {
	pingTicker := time.NewTicker(pingPeriod)
	defer pingTicker.Stop()

	for {
		select {
		case message := <-session.send:
			session.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := session.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				session.shutdown()
				return
			}
		case <-pingTicker.C:
			session.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := session.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				session.shutdown()
				return
			}
		case <-session.done:
			return
		}
	}
}

func (session *Session) shutdown() {
	session.closeOnce.Do(func() {
		close(session.done)
	})
}

func (session *Session) close() {
	session.shutdown()
	session.hub.Leave(session.topic, session)
	session.conn.Close()

	log.Info().Str("topic", session.topic).Msg("Session disconnected")

	if session.events != nil {
		session.events(events.TypeSessionDisconnected, map[string]string{"topic": session.topic})
	}
}
