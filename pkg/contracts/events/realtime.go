package events

import "time"

// Tipo de mudança carregada por um RealtimeEvent.
type EventType string

const (
	EventInsert EventType = "insert"
	EventUpdate EventType = "update"
	EventDelete EventType = "delete"
)

// Tabelas espelhadas pelo sync externo. Todo evento referencia uma delas.
const (
	TableGameRooms     = "game_rooms"
	TableRoomUsers     = "room_users"
	TableRoomMessages  = "room_messages"
	TableUserOdds      = "user_odds_status"
	TableRoomReactions = "room_reactions"
	TableCelebrations  = "room_celebrations"
)

// RealtimeEvent é o envelope único trocado com assinantes externos.
// OldRecord é nil em inserts; NewRecord sempre presente.
type RealtimeEvent struct {
	Table     string    `json:"table"`
	EventType EventType `json:"event_type"`
	OldRecord any       `json:"old_record"`
	NewRecord any       `json:"new_record"`
	Timestamp time.Time `json:"timestamp"`
}

// ChannelEvent amarra o evento ao canal de origem quando atravessa
// transportes externos (Redis, Kafka, WebSocket).
type ChannelEvent struct {
	Channel string        `json:"channel"`
	Event   RealtimeEvent `json:"event"`
}
