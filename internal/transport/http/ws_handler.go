package http

import (
	"encoding/json"
	"net/http"

	"daily-spark-service/internal/app"
	"daily-spark-service/internal/domain"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Subscriber hands out per-user invalidation streams.
type Subscriber interface {
	Subscribe(userID string) (<-chan domain.Invalidation, func())
}

type WSHandler struct {
	service   *app.PracticeService
	updates   Subscriber
	minAnswer int
	log       logrus.FieldLogger
	upgrader  websocket.Upgrader
}

func NewWSHandler(service *app.PracticeService, updates Subscriber, minAnswer int, log logrus.FieldLogger) *WSHandler {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &WSHandler{
		service:   service,
		updates:   updates,
		minAnswer: minAnswer,
		log:       log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type invalidatePayload struct {
	Channels []domain.Channel `json:"channels"`
}

// ServeWS upgrades the request and keeps the client's views fresh: it pushes
// today's question and stats on connect, then an invalidate event whenever
// the user's data changes. Clients may submit answers over the same socket.
func (h *WSHandler) ServeWS(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		http.Error(w, "missing userId", http.StatusBadRequest)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("ws upgrade failed")
		return
	}
	defer conn.Close()

	log := h.log.WithField("user_id", userID)
	ctx := r.Context()

	// Subscribe before the initial snapshot so no change slips between them.
	updates, cancel := h.updates.Subscribe(userID)
	defer cancel()

	send := make(chan outboundMessage, 16)
	closeSignals := make(chan struct{})
	writerDone := make(chan struct{})
	updatesDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.WithError(err).Debug("ws write error")
				// Unblocks the read loop.
				_ = conn.Close()
				return
			}
		}
	}()

	go func() {
		defer close(updatesDone)
		for {
			select {
			case update, ok := <-updates:
				if !ok {
					return
				}
				select {
				case send <- outboundMessage{Type: "invalidate", Payload: invalidatePayload{Channels: update.Channels}}:
				case <-closeSignals:
					return
				case <-writerDone:
					return
				}
			case <-closeSignals:
				return
			}
		}
	}()

	push := func(msg outboundMessage) bool { return deliver(send, writerDone, msg) }

	if question, err := h.service.DailyQuestion(ctx); err != nil {
		push(errorMessage(err))
	} else {
		push(outboundMessage{Type: "question", Payload: question})
	}
	if stats, err := h.service.Stats(ctx, userID); err != nil {
		push(errorMessage(err))
	} else {
		push(outboundMessage{Type: "stats", Payload: stats})
	}

	for {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		var reply outboundMessage
		switch inbound.Type {
		case "answer":
			var payload submitRequest
			if err := json.Unmarshal(inbound.Payload, &payload); err != nil {
				reply = outboundMessage{Type: "error", Payload: errorResponse{Status: "invalid_request", Message: "invalid answer payload"}}
				break
			}
			answer, err := submit(ctx, h.service, userID, payload, h.minAnswer)
			if err != nil {
				reply = errorMessage(err)
				break
			}
			reply = outboundMessage{Type: "answerAccepted", Payload: answer}
		default:
			reply = outboundMessage{Type: "error", Payload: errorResponse{Status: "invalid_request", Message: "unsupported message type"}}
		}
		if !push(reply) {
			break
		}
	}

	close(closeSignals)
	<-updatesDone
	close(send)
	<-writerDone
}

// deliver queues msg for the writer. It reports false once the writer has
// stopped, so callers never block on a dead connection.
func deliver(send chan<- outboundMessage, writerDone <-chan struct{}, msg outboundMessage) bool {
	select {
	case send <- msg:
		return true
	case <-writerDone:
		return false
	}
}

// errorMessage reports already answered as its own informational type.
func errorMessage(err error) outboundMessage {
	_, status := errorStatus(err)
	if status == "already_answered" {
		return outboundMessage{Type: "alreadyAnswered", Payload: errorResponse{Status: status, Message: err.Error()}}
	}
	return outboundMessage{Type: "error", Payload: errorResponse{Status: status, Message: err.Error()}}
}
