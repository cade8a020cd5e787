package room

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/odinenx/live-rooms/pkg/contracts/channels"
	"github.com/odinenx/live-rooms/pkg/contracts/events"
)

// SendMessage valida e publica uma mensagem de chat. Ordem de validação:
// remetente online na sala, depois capacidade de gif, depois sticker.
// Rejeição não publica evento nenhum e não altera o histórico.
func (r *Registry) SendMessage(roomID, senderID, content string, kind MessageKind) (*ChatMessage, error) {
	g, err := r.Room(roomID)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	sender := g.findUserLocked(senderID)
	if sender == nil || !sender.Online {
		return nil, r.reject("unknown-sender", fmt.Errorf("%w: %s", ErrUnknownSender, senderID))
	}

	caps := sender.Capabilities()
	switch kind {
	case KindGIF:
		if !caps.CanSendGIF {
			return nil, r.reject("capability-denied", fmt.Errorf("%w: plan %s cannot send gif", ErrCapabilityDenied, sender.Plan))
		}
	case KindSticker:
		if !caps.CanSendSticker {
			return nil, r.reject("capability-denied", fmt.Errorf("%w: plan %s cannot send sticker", ErrCapabilityDenied, sender.Plan))
		}
	case KindSystem:
		// mensagens de sistema só nascem dentro do engine
		return nil, r.reject("capability-denied", fmt.Errorf("%w: system messages are internal", ErrCapabilityDenied))
	case KindText, KindReaction:
	default:
		return nil, r.reject("capability-denied", fmt.Errorf("%w: unknown message kind %q", ErrCapabilityDenied, kind))
	}

	m := &ChatMessage{
		ID:         uuid.NewString(),
		SenderID:   sender.ID,
		SenderName: sender.Name,
		Content:    content,
		Kind:       kind,
		CreatedAt:  nowUTC(),
	}
	g.messages = append(g.messages, m)
	r.publish(channels.Messages(g.id), events.TableRoomMessages, events.EventInsert, nil, messageRecordLocked(g, m))
	return m, nil
}
