package mirror

import (
	"encoding/json"
	"fmt"

	"github.com/odinenx/live-rooms/pkg/contracts/events"
)

// channelEventWire é o envelope como chega do Kafka. Os records ficam
// crus até sabermos a tabela, aí cada um vira o struct certo.
type channelEventWire struct {
	Channel string            `json:"channel"`
	Event   realtimeEventWire `json:"event"`
}

type realtimeEventWire struct {
	Table     string          `json:"table"`
	EventType string          `json:"event_type"`
	OldRecord json.RawMessage `json:"old_record"`
	NewRecord json.RawMessage `json:"new_record"`
}

func parseEvent(raw []byte) (*channelEventWire, error) {
	var ev channelEventWire
	if err := json.Unmarshal(raw, &ev); err != nil {
		return nil, fmt.Errorf("unmarshal channel event: %w", err)
	}
	if ev.Event.Table == "" {
		return nil, fmt.Errorf("channel event without table (channel %q)", ev.Channel)
	}
	return &ev, nil
}

func decodeRecord[T any](raw json.RawMessage, table string) (*T, error) {
	var rec T
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode %s record: %w", table, err)
	}
	return &rec, nil
}

func decodeRoom(raw json.RawMessage) (*events.GameRoomRecord, error) {
	return decodeRecord[events.GameRoomRecord](raw, events.TableGameRooms)
}

func decodeUser(raw json.RawMessage) (*events.RoomUserRecord, error) {
	return decodeRecord[events.RoomUserRecord](raw, events.TableRoomUsers)
}

func decodeMessage(raw json.RawMessage) (*events.RoomMessageRecord, error) {
	return decodeRecord[events.RoomMessageRecord](raw, events.TableRoomMessages)
}

func decodeOdd(raw json.RawMessage) (*events.UserOddRecord, error) {
	return decodeRecord[events.UserOddRecord](raw, events.TableUserOdds)
}

func decodeReaction(raw json.RawMessage) (*events.RoomReactionRecord, error) {
	return decodeRecord[events.RoomReactionRecord](raw, events.TableRoomReactions)
}
