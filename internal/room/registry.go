package room

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/odinenx/live-rooms/internal/room/broadcast"
	"github.com/odinenx/live-rooms/internal/room/plan"
	"github.com/odinenx/live-rooms/internal/shared/metrics"
	"github.com/odinenx/live-rooms/pkg/contracts/channels"
	"github.com/odinenx/live-rooms/pkg/contracts/events"
)

func nowUTC() time.Time { return time.Now().UTC() }

// Registry é o dono das salas ativas e do barramento de eventos.
// Cada mutação de sala passa por aqui, segura o lock da sala e emite os
// efeitos colaterais pelo broadcaster antes de retornar.
type Registry struct {
	log *zap.Logger
	bus *broadcast.Broadcaster

	mu        sync.RWMutex
	rooms     map[string]*GameRoom
	byFixture map[int64]string

	// RoomCreated, quando definido, roda logo após o registro de uma sala
	// nova. O gateway usa pra anexar a fila de saída aos canais da sala.
	RoomCreated func(*GameRoom)
}

func NewRegistry(log *zap.Logger) *Registry {
	return &Registry{
		log:       log,
		bus:       broadcast.New(),
		rooms:     make(map[string]*GameRoom),
		byFixture: make(map[int64]string),
	}
}

// Bus expõe o broadcaster para assinantes externos (gateway, relay).
func (r *Registry) Bus() *broadcast.Broadcaster { return r.bus }

// CreateRoom aloca uma sala com status live e minuto 0. O evento de
// ciclo de vida room_created vai só pro log, não pro barramento.
func (r *Registry) CreateRoom(fixtureID int64, homeTeam, awayTeam string) *GameRoom {
	g := &GameRoom{
		id:        uuid.NewString(),
		fixtureID: fixtureID,
		homeTeam:  homeTeam,
		awayTeam:  awayTeam,
		status:    StatusLive,
		createdAt: nowUTC(),
	}

	r.mu.Lock()
	r.rooms[g.id] = g
	r.byFixture[fixtureID] = g.id
	r.mu.Unlock()

	r.log.Info("room_created",
		zap.String("room_id", g.id),
		zap.Int64("fixture_id", fixtureID),
		zap.String("match", fmt.Sprintf("%s vs %s", homeTeam, awayTeam)),
	)

	if r.RoomCreated != nil {
		r.RoomCreated(g)
	}
	return g
}

// Room busca a sala pelo id.
func (r *Registry) Room(roomID string) (*GameRoom, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.rooms[roomID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, roomID)
	}
	return g, nil
}

// RoomByFixture resolve a sala que acompanha uma fixture do feed.
func (r *Registry) RoomByFixture(fixtureID int64) (*GameRoom, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byFixture[fixtureID]
	if !ok {
		return nil, fmt.Errorf("%w: fixture %d", ErrRoomNotFound, fixtureID)
	}
	return r.rooms[id], nil
}

// CloseRoom remove a sala e derruba seus canais no barramento. O
// histórico sobrevive no espelho externo, não em memória.
func (r *Registry) CloseRoom(roomID string) error {
	r.mu.Lock()
	g, ok := r.rooms[roomID]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrRoomNotFound, roomID)
	}
	delete(r.rooms, roomID)
	delete(r.byFixture, g.fixtureID)
	r.mu.Unlock()

	if st := g.Status(); st != StatusFinished {
		r.log.Warn("closing room before finish", zap.String("room_id", roomID), zap.String("status", string(st)))
	}
	for _, ch := range channels.AllForRoom(roomID) {
		r.bus.RemoveChannel(ch)
	}
	r.log.Info("room_closed", zap.String("room_id", roomID))
	return nil
}

// PickRequest é um pick cru vindo de fora, validado no AddUser.
type PickRequest struct {
	BetType string
	Outcome string
	Price   float64
}

// AddUser valida os picks, anexa o usuário à sala e emite o insert em
// room:<id>:users seguido da mensagem de sistema de entrada. Pick
// malformado rejeita o join inteiro: invalid-pick nunca aparece na
// liquidação.
func (r *Registry) AddUser(roomID, displayName string, p plan.Plan, picks []PickRequest) (*RoomUser, error) {
	g, err := r.Room(roomID)
	if err != nil {
		return nil, err
	}

	odds := make([]*UserOdd, 0, len(picks))
	for _, pk := range picks {
		o, err := buildOdd(pk)
		if err != nil {
			return nil, r.reject("invalid-pick", err)
		}
		odds = append(odds, o)
	}

	u := &RoomUser{
		ID:       uuid.NewString(),
		Name:     displayName,
		Plan:     p,
		Odds:     odds,
		Online:   true,
		JoinedAt: nowUTC(),
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	g.users = append(g.users, u)
	r.publish(channels.Users(g.id), events.TableRoomUsers, events.EventInsert, nil, userRecordLocked(g, u))
	r.appendSystemLocked(g, fmt.Sprintf("%s joined", displayName))
	return u, nil
}

// SetUserOnline alterna presença e emite o update em room:<id>:users.
func (r *Registry) SetUserOnline(roomID, userID string, online bool) error {
	g, err := r.Room(roomID)
	if err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	u := g.findUserLocked(userID)
	if u == nil {
		return r.reject("unknown-sender", fmt.Errorf("%w: %s", ErrUnknownSender, userID))
	}
	if u.Online == online {
		return nil
	}
	old := userRecordLocked(g, u)
	u.Online = online
	r.publish(channels.Users(g.id), events.TableRoomUsers, events.EventUpdate, old, userRecordLocked(g, u))
	return nil
}

// SendReaction emite uma reação rápida em room:<id>:reactions. Não entra
// no histórico do chat; o espelho mantém tabela própria.
func (r *Registry) SendReaction(roomID, userID, reaction string) error {
	g, err := r.Room(roomID)
	if err != nil {
		return err
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	u := g.findUserLocked(userID)
	if u == nil || !u.Online {
		return r.reject("unknown-sender", fmt.Errorf("%w: %s", ErrUnknownSender, userID))
	}
	rec := events.RoomReactionRecord{
		RoomID:    g.id,
		UserID:    u.ID,
		Reaction:  reaction,
		CreatedAt: nowUTC(),
	}
	r.publish(channels.Reactions(g.id), events.TableRoomReactions, events.EventInsert, nil, rec)
	return nil
}

// SubscribeRoom anexa o callback aos seis canais da sala de uma vez.
func (r *Registry) SubscribeRoom(roomID string, fn func(channel string, ev events.RealtimeEvent)) []*broadcast.Subscription {
	subs := make([]*broadcast.Subscription, 0, 6)
	for _, ch := range channels.AllForRoom(roomID) {
		ch := ch
		subs = append(subs, r.bus.Subscribe(ch, func(ev events.RealtimeEvent) {
			fn(ch, ev)
		}))
	}
	return subs
}

// publish emite o evento no canal e contabiliza a métrica. Entrega
// síncrona: todos os callbacks retornam antes do publish devolver.
func (r *Registry) publish(channel, table string, typ events.EventType, oldRec, newRec any) {
	metrics.EventsPublished.WithLabelValues(table).Inc()
	r.bus.Publish(channel, events.RealtimeEvent{
		Table:     table,
		EventType: typ,
		OldRecord: oldRec,
		NewRecord: newRec,
		Timestamp: nowUTC(),
	})
}

func (r *Registry) appendSystemLocked(g *GameRoom, content string) *ChatMessage {
	m := &ChatMessage{
		ID:         uuid.NewString(),
		SenderID:   "system",
		SenderName: "system",
		Content:    content,
		Kind:       KindSystem,
		CreatedAt:  nowUTC(),
	}
	g.messages = append(g.messages, m)
	r.publish(channels.Messages(g.id), events.TableRoomMessages, events.EventInsert, nil, messageRecordLocked(g, m))
	return m
}

// reject contabiliza a rejeição e devolve o erro sem tocar no estado.
func (r *Registry) reject(reason string, err error) error {
	metrics.OperationsRejected.WithLabelValues(reason).Inc()
	r.log.Debug("operation rejected", zap.String("reason", reason), zap.Error(err))
	return err
}

// buildOdd valida um pick cru e pré-calcula a linha do over-under.
func buildOdd(p PickRequest) (*UserOdd, error) {
	if p.Price <= 0 {
		return nil, fmt.Errorf("%w: price must be positive, got %v", ErrInvalidPick, p.Price)
	}

	o := &UserOdd{
		Type:    BetType(p.BetType),
		Outcome: p.Outcome,
		Price:   p.Price,
		Status:  OddPending,
	}

	switch o.Type {
	case BetMatchResult:
		switch p.Outcome {
		case OutcomeHome, OutcomeDraw, OutcomeAway:
		default:
			return nil, fmt.Errorf("%w: match-result outcome %q", ErrInvalidPick, p.Outcome)
		}
	case BetOverUnder:
		side, lineStr, ok := strings.Cut(p.Outcome, "-")
		if !ok || (side != "over" && side != "under") {
			return nil, fmt.Errorf("%w: over-under outcome %q", ErrInvalidPick, p.Outcome)
		}
		line, err := strconv.ParseFloat(lineStr, 64)
		if err != nil || line <= 0 {
			return nil, fmt.Errorf("%w: over-under line %q", ErrInvalidPick, lineStr)
		}
		o.ouOver = side == "over"
		o.ouLine = line
	case BetBothTeamsScore:
		if p.Outcome != OutcomeYes && p.Outcome != OutcomeNo {
			return nil, fmt.Errorf("%w: both-teams-to-score outcome %q", ErrInvalidPick, p.Outcome)
		}
	default:
		return nil, fmt.Errorf("%w: unknown bet type %q", ErrInvalidPick, p.BetType)
	}
	return o, nil
}
