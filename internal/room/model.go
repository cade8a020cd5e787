package room

import (
	"sort"
	"sync"
	"time"

	"github.com/odinenx/live-rooms/internal/room/plan"
)

// Status do ciclo de vida da sala.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusLive      Status = "live"
	StatusHalftime  Status = "halftime"
	StatusFinished  Status = "finished"
)

// OddStatus: pending -> won|lost, transição monotônica. Estado terminal
// nunca é reavaliado.
type OddStatus string

const (
	OddPending OddStatus = "pending"
	OddWon     OddStatus = "won"
	OddLost    OddStatus = "lost"
)

// MessageKind classifica mensagens do chat. KindSystem só é criado
// internamente pelo engine.
type MessageKind string

const (
	KindText     MessageKind = "text"
	KindGIF      MessageKind = "gif"
	KindSticker  MessageKind = "sticker"
	KindReaction MessageKind = "reaction"
	KindSystem   MessageKind = "system"
)

// BetType identifica a regra de liquidação de um pick.
type BetType string

const (
	BetMatchResult    BetType = "match-result"
	BetOverUnder      BetType = "over-under"
	BetBothTeamsScore BetType = "both-teams-to-score"
)

// Resultados aceitos por tipo de aposta.
const (
	OutcomeHome = "home"
	OutcomeDraw = "draw"
	OutcomeAway = "away"
	OutcomeYes  = "yes"
	OutcomeNo   = "no"
)

// UserOdd é um pick do usuário aguardando liquidação. Pertence a um
// único RoomUser, nunca compartilhado.
type UserOdd struct {
	Type    BetType
	Outcome string
	Price   float64
	Status  OddStatus

	// pré-calculado na validação do pick over-under
	ouOver bool
	ouLine float64
}

// RoomUser é um usuário presente na sala. O plano é imutável durante a
// sessão: mudar de plano exige sair e entrar de novo.
type RoomUser struct {
	ID       string
	Name     string
	Plan     plan.Plan
	Odds     []*UserOdd
	Online   bool
	JoinedAt time.Time
}

// Capabilities resolve o conjunto de permissões do plano do usuário.
func (u *RoomUser) Capabilities() plan.Capabilities {
	return plan.ForPlan(u.Plan)
}

// ChatMessage referencia o remetente por id (lookup fraco): o usuário
// pode sair da sala sem invalidar o histórico.
type ChatMessage struct {
	ID         string
	SenderID   string
	SenderName string
	Content    string
	Kind       MessageKind
	CreatedAt  time.Time
}

// GameRoom é uma sessão de partida ao vivo. Toda mutação passa pelo
// Registry segurando g.mu: um escritor por sala, salas independentes
// entre si.
type GameRoom struct {
	mu sync.Mutex

	id        string
	fixtureID int64
	homeTeam  string
	awayTeam  string
	homeScore int
	awayScore int
	minute    int
	status    Status
	users     []*RoomUser // ordem de entrada
	messages  []*ChatMessage
	createdAt time.Time
}

func (g *GameRoom) ID() string       { return g.id }
func (g *GameRoom) FixtureID() int64 { return g.fixtureID }
func (g *GameRoom) HomeTeam() string { return g.homeTeam }
func (g *GameRoom) AwayTeam() string { return g.awayTeam }

func (g *GameRoom) Score() (home, away int) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.homeScore, g.awayScore
}

func (g *GameRoom) Minute() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.minute
}

func (g *GameRoom) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status
}

// Messages devolve uma cópia do histórico, em ordem cronológica.
func (g *GameRoom) Messages() []*ChatMessage {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*ChatMessage, len(g.messages))
	copy(out, g.messages)
	return out
}

// Users devolve uma cópia da lista de membros, em ordem de entrada.
func (g *GameRoom) Users() []*RoomUser {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*RoomUser, len(g.users))
	copy(out, g.users)
	return out
}

// ViewersCount conta os usuários online.
func (g *GameRoom) ViewersCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.viewersLocked()
}

func (g *GameRoom) viewersLocked() int {
	n := 0
	for _, u := range g.users {
		if u.Online {
			n++
		}
	}
	return n
}

// RankedListing lista os usuários online ordenados por plano (elite no
// topo), empate resolvido pela ordem de entrada. Recalculado a cada
// chamada: o flag online muda independente do plano.
func (g *GameRoom) RankedListing() []*RoomUser {
	g.mu.Lock()
	defer g.mu.Unlock()
	online := make([]*RoomUser, 0, len(g.users))
	for _, u := range g.users {
		if u.Online {
			online = append(online, u)
		}
	}
	sort.SliceStable(online, func(i, j int) bool {
		return online[i].Plan.Rank() > online[j].Plan.Rank()
	})
	return online
}

func (g *GameRoom) findUserLocked(userID string) *RoomUser {
	for _, u := range g.users {
		if u.ID == userID {
			return u
		}
	}
	return nil
}
