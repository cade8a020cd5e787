package mirror

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/odinenx/live-rooms/pkg/contracts/events"
)

// Store materializa os eventos de sala no Postgres. Cada upsert é
// idempotente, então reprocessar o tópico nunca duplica linha.
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

func NewStore(db *sql.DB, log *zap.Logger) *Store {
	return &Store{db: db, log: log}
}

// Apply aplica um evento cru do tópico room_events no espelho.
func (s *Store) Apply(ctx context.Context, raw []byte) error {
	ev, err := parseEvent(raw)
	if err != nil {
		return err
	}

	switch ev.Event.Table {
	case events.TableGameRooms:
		return s.upsertRoom(ctx, ev.Event.NewRecord)
	case events.TableRoomUsers:
		return s.upsertUser(ctx, ev.Event.NewRecord)
	case events.TableRoomMessages:
		return s.insertMessage(ctx, ev.Event.NewRecord)
	case events.TableUserOdds:
		return s.upsertOdd(ctx, ev.Event.NewRecord)
	case events.TableRoomReactions:
		return s.insertReaction(ctx, ev.Event.NewRecord)
	case events.TableCelebrations:
		// celebração é efeito visual efêmero, não persiste
		s.log.Debug("celebration skipped", zap.String("channel", ev.Channel))
		return nil
	default:
		s.log.Warn("unknown table in event", zap.String("table", ev.Event.Table))
		return nil
	}
}

func (s *Store) upsertRoom(ctx context.Context, raw json.RawMessage) error {
	rec, err := decodeRoom(raw)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO game_rooms (room_id, fixture_id, home_team, away_team, home_score, away_score, minute, status, viewers_count, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
		ON CONFLICT (room_id) DO UPDATE SET
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			minute = EXCLUDED.minute,
			status = EXCLUDED.status,
			viewers_count = EXCLUDED.viewers_count,
			updated_at = NOW()
	`, rec.RoomID, rec.FixtureID, rec.HomeTeam, rec.AwayTeam, rec.HomeScore, rec.AwayScore, rec.Minute, rec.Status, rec.ViewersCount)
	if err != nil {
		return fmt.Errorf("upsert game_rooms %s: %w", rec.RoomID, err)
	}
	return nil
}

func (s *Store) upsertUser(ctx context.Context, raw json.RawMessage) error {
	rec, err := decodeUser(raw)
	if err != nil {
		return err
	}
	picks, err := json.Marshal(rec.Picks)
	if err != nil {
		return fmt.Errorf("marshal picks: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO room_users (room_id, user_id, username, plan, picks, is_online, joined_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (room_id, user_id) DO UPDATE SET
			picks = EXCLUDED.picks,
			is_online = EXCLUDED.is_online
	`, rec.RoomID, rec.UserID, rec.Username, rec.Plan, picks, rec.IsOnline, rec.JoinedAt)
	if err != nil {
		return fmt.Errorf("upsert room_users %s/%s: %w", rec.RoomID, rec.UserID, err)
	}
	return nil
}

func (s *Store) insertMessage(ctx context.Context, raw json.RawMessage) error {
	rec, err := decodeMessage(raw)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO room_messages (id, room_id, user_id, username, content, message_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`, rec.ID, rec.RoomID, rec.UserID, rec.Username, rec.Content, rec.MessageType, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert room_messages %s: %w", rec.ID, err)
	}
	return nil
}

func (s *Store) upsertOdd(ctx context.Context, raw json.RawMessage) error {
	rec, err := decodeOdd(raw)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO user_odds_status (room_id, user_id, bet_type, outcome, price, status, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (room_id, user_id, bet_type, outcome) DO UPDATE SET
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at
	`, rec.RoomID, rec.UserID, rec.BetType, rec.Outcome, rec.Price, rec.Status, rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert user_odds_status %s/%s: %w", rec.RoomID, rec.UserID, err)
	}
	return nil
}

func (s *Store) insertReaction(ctx context.Context, raw json.RawMessage) error {
	rec, err := decodeReaction(raw)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO room_reactions (room_id, user_id, reaction, created_at)
		VALUES ($1, $2, $3, $4)
	`, rec.RoomID, rec.UserID, rec.Reaction, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert room_reactions %s: %w", rec.RoomID, err)
	}
	return nil
}
