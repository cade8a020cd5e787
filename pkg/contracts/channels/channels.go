package channels

import "fmt"

// Convenção de nome: room:<room_id>:<topic>.
const (
	TopicMessages     = "messages"
	TopicUsers        = "users"
	TopicScore        = "score"
	TopicOdds         = "odds"
	TopicCelebrations = "celebrations"
	TopicReactions    = "reactions"
)

// Tópicos Kafka usados entre os serviços.
const (
	ScoreUpdates    = "score_updates"
	ScoreUpdatesDLQ = "score_updates_dlq"
	RoomEvents      = "room_events"
	RoomEventsDLQ   = "room_events_dlq"
)

// Canal Redis Pub/Sub para fan-out de eventos entre instâncias.
const RoomEventsBroadcast = "room_events_broadcast"

func Room(roomID, topic string) string {
	return fmt.Sprintf("room:%s:%s", roomID, topic)
}

func Messages(roomID string) string     { return Room(roomID, TopicMessages) }
func Users(roomID string) string        { return Room(roomID, TopicUsers) }
func Score(roomID string) string        { return Room(roomID, TopicScore) }
func Odds(roomID string) string         { return Room(roomID, TopicOdds) }
func Celebrations(roomID string) string { return Room(roomID, TopicCelebrations) }
func Reactions(roomID string) string    { return Room(roomID, TopicReactions) }

// AllForRoom retorna os seis canais de uma sala, na ordem em que os
// assinantes externos costumam anexar.
func AllForRoom(roomID string) []string {
	return []string{
		Messages(roomID),
		Users(roomID),
		Score(roomID),
		Odds(roomID),
		Celebrations(roomID),
		Reactions(roomID),
	}
}
