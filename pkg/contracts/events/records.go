package events

import "time"

// Registros que trafegam dentro do envelope RealtimeEvent.
// O shape de cada um espelha a tabela correspondente do sync externo.

type GameRoomRecord struct {
	RoomID       string `json:"room_id"`
	FixtureID    int64  `json:"fixture_id"`
	HomeTeam     string `json:"home_team"`
	AwayTeam     string `json:"away_team"`
	HomeScore    int    `json:"home_score"`
	AwayScore    int    `json:"away_score"`
	Minute       int    `json:"minute"`
	Status       string `json:"status"`
	ViewersCount int    `json:"viewers_count"`
}

type PickRecord struct {
	BetType string  `json:"bet_type"`
	Outcome string  `json:"outcome"`
	Price   float64 `json:"price"`
	Status  string  `json:"status"`
}

type RoomUserRecord struct {
	RoomID   string       `json:"room_id"`
	UserID   string       `json:"user_id"`
	Username string       `json:"username"`
	Plan     string       `json:"plan"`
	Picks    []PickRecord `json:"picks"`
	IsOnline bool         `json:"is_online"`
	JoinedAt time.Time    `json:"joined_at"`
}

type RoomMessageRecord struct {
	ID          string    `json:"id"`
	RoomID      string    `json:"room_id"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	Content     string    `json:"content"`
	MessageType string    `json:"message_type"`
	CreatedAt   time.Time `json:"created_at"`
}

type UserOddRecord struct {
	RoomID    string    `json:"room_id"`
	UserID    string    `json:"user_id"`
	BetType   string    `json:"bet_type"`
	Outcome   string    `json:"outcome"`
	Price     float64   `json:"price"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

type RoomReactionRecord struct {
	RoomID    string    `json:"room_id"`
	UserID    string    `json:"user_id"`
	Reaction  string    `json:"reaction"`
	CreatedAt time.Time `json:"created_at"`
}

// CelebrationRecord: scope "room" para gol (todos online) ou "user" para
// acerto individual de odd.
type CelebrationRecord struct {
	RoomID  string    `json:"room_id"`
	UserID  string    `json:"user_id,omitempty"`
	Effect  string    `json:"effect"`
	Cause   string    `json:"cause"`
	Scope   string    `json:"scope"`
	FiredAt time.Time `json:"fired_at"`
}
