package ws

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/odinenx/live-rooms/internal/room"
	"github.com/odinenx/live-rooms/internal/room/plan"
	"github.com/odinenx/live-rooms/pkg/contracts/events"
)

// Hub gerencia conexões WebSocket e assinaturas de canais de sala.
// Também é o chat-intake: join/chat/reaction do cliente viram chamadas
// nos mutadores do Registry; os eventos resultantes voltam pelo
// Broadcast, alimentado pelo relay.
type Hub struct {
	upgrader websocket.Upgrader
	log      *zap.Logger
	reg      *room.Registry

	mu sync.RWMutex
	// canal -> conjunto de conexões inscritas
	subs map[string]map[*websocket.Conn]struct{}
	// conexão -> sessão de sala, pra derrubar presença no disconnect
	sessions map[*websocket.Conn]session
}

type session struct {
	roomID string
	userID string
}

// NewHub cria o hub com política customizada de origem (CORS).
func NewHub(log *zap.Logger, reg *room.Registry, allowOrigin func(r *http.Request) bool) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{CheckOrigin: allowOrigin},
		log:      log,
		reg:      reg,
		subs:     make(map[string]map[*websocket.Conn]struct{}),
		sessions: make(map[*websocket.Conn]session),
	}
}

// HandleWS gerencia o ciclo de vida de uma conexão WebSocket.
// Cada cliente pode se inscrever em múltiplos canais de sala.
func (h *Hub) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	for {
		var msg ClientMsg
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case "subscribe":
			h.mu.Lock()
			if _, ok := h.subs[msg.Channel]; !ok {
				h.subs[msg.Channel] = make(map[*websocket.Conn]struct{})
			}
			h.subs[msg.Channel][conn] = struct{}{}
			h.mu.Unlock()
		case "unsubscribe":
			h.mu.Lock()
			if m, ok := h.subs[msg.Channel]; ok {
				delete(m, conn)
				if len(m) == 0 {
					delete(h.subs, msg.Channel)
				}
			}
			h.mu.Unlock()
		case "ping":
			_ = conn.WriteJSON(ServerMsg{Type: "pong"})
		case "join":
			h.handleJoin(conn, msg)
		case "chat":
			h.handleChat(conn, msg)
		case "reaction":
			if err := h.reg.SendReaction(msg.RoomID, msg.UserID, msg.Reaction); err != nil {
				h.replyError(conn, err)
			}
		}
	}

	// limpa assinaturas e presença ao desconectar
	h.mu.Lock()
	for _, set := range h.subs {
		delete(set, conn)
	}
	sess, hadSession := h.sessions[conn]
	delete(h.sessions, conn)
	h.mu.Unlock()

	if hadSession {
		if err := h.reg.SetUserOnline(sess.roomID, sess.userID, false); err != nil {
			h.log.Debug("offline on disconnect", zap.Error(err))
		}
	}
}

func (h *Hub) handleJoin(conn *websocket.Conn, msg ClientMsg) {
	p, err := plan.Parse(msg.Plan)
	if err != nil {
		h.replyError(conn, err)
		return
	}
	picks := make([]room.PickRequest, len(msg.Picks))
	for i, pk := range msg.Picks {
		picks[i] = room.PickRequest{BetType: pk.BetType, Outcome: pk.Outcome, Price: pk.Price}
	}
	u, err := h.reg.AddUser(msg.RoomID, msg.Username, p, picks)
	if err != nil {
		h.replyError(conn, err)
		return
	}

	h.mu.Lock()
	h.sessions[conn] = session{roomID: msg.RoomID, userID: u.ID}
	h.mu.Unlock()

	_ = conn.WriteJSON(ServerMsg{Type: "joined", RoomID: msg.RoomID, UserID: u.ID})
}

func (h *Hub) handleChat(conn *websocket.Conn, msg ClientMsg) {
	kind := room.MessageKind(msg.Kind)
	if msg.Kind == "" {
		kind = room.KindText
	}
	if _, err := h.reg.SendMessage(msg.RoomID, msg.UserID, msg.Content, kind); err != nil {
		h.replyError(conn, err)
	}
}

func (h *Hub) replyError(conn *websocket.Conn, err error) {
	_ = conn.WriteJSON(ServerMsg{Type: "error", Reason: err.Error()})
}

// Broadcast envia o evento para todos os clientes inscritos no canal
// correspondente. Nenhum inscrito é no-op.
func (h *Hub) Broadcast(ev events.ChannelEvent) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.subs[ev.Channel]))
	for c := range h.subs[ev.Channel] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()
	if len(conns) == 0 {
		return
	}

	b, _ := json.Marshal(ev)
	for _, c := range conns {
		if err := c.WriteMessage(websocket.TextMessage, b); err != nil {
			h.log.Debug("ws write failed", zap.Error(err))
			_ = c.Close()
		}
	}
}
