package room

import (
	"github.com/odinenx/live-rooms/pkg/contracts/channels"
	"github.com/odinenx/live-rooms/pkg/contracts/events"
)

// Causa da celebração carregada no evento.
type CelebrationCause string

const (
	CauseGoal   CelebrationCause = "goal"
	CauseOddWon CelebrationCause = "odd-won"
)

// Escopo: "room" quando a celebração é de gol (todos na sala), "user"
// quando é o acerto individual de um pick.
const (
	ScopeRoom = "room"
	ScopeUser = "user"
)

// fireCelebrationLocked resolve o efeito pelo plano do usuário e publica
// em room:<id>:celebrations. Dispatcher puro de efeito colateral, nenhum
// estado próprio.
func (r *Registry) fireCelebrationLocked(g *GameRoom, u *RoomUser, cause CelebrationCause, scope string) {
	caps := u.Capabilities()
	rec := events.CelebrationRecord{
		RoomID:  g.id,
		UserID:  u.ID,
		Effect:  caps.CelebrationEffect,
		Cause:   string(cause),
		Scope:   scope,
		FiredAt: nowUTC(),
	}
	r.publish(channels.Celebrations(g.id), events.TableCelebrations, events.EventInsert, nil, rec)
}
