package room

import (
	"github.com/odinenx/live-rooms/pkg/contracts/events"
)

// Construtores dos registros carregados nos RealtimeEvents. O shape
// espelha as tabelas que o sync externo mantém; o engine nunca escreve
// no banco diretamente. Chamar sempre com g.mu em posse.

func roomRecordLocked(g *GameRoom) events.GameRoomRecord {
	return events.GameRoomRecord{
		RoomID:       g.id,
		FixtureID:    g.fixtureID,
		HomeTeam:     g.homeTeam,
		AwayTeam:     g.awayTeam,
		HomeScore:    g.homeScore,
		AwayScore:    g.awayScore,
		Minute:       g.minute,
		Status:       string(g.status),
		ViewersCount: g.viewersLocked(),
	}
}

func userRecordLocked(g *GameRoom, u *RoomUser) events.RoomUserRecord {
	picks := make([]events.PickRecord, len(u.Odds))
	for i, o := range u.Odds {
		picks[i] = events.PickRecord{
			BetType: string(o.Type),
			Outcome: o.Outcome,
			Price:   o.Price,
			Status:  string(o.Status),
		}
	}
	return events.RoomUserRecord{
		RoomID:   g.id,
		UserID:   u.ID,
		Username: u.Name,
		Plan:     string(u.Plan),
		Picks:    picks,
		IsOnline: u.Online,
		JoinedAt: u.JoinedAt,
	}
}

func messageRecordLocked(g *GameRoom, m *ChatMessage) events.RoomMessageRecord {
	return events.RoomMessageRecord{
		ID:          m.ID,
		RoomID:      g.id,
		UserID:      m.SenderID,
		Username:    m.SenderName,
		Content:     m.Content,
		MessageType: string(m.Kind),
		CreatedAt:   m.CreatedAt,
	}
}

func oddRecordLocked(g *GameRoom, u *RoomUser, o *UserOdd) events.UserOddRecord {
	return events.UserOddRecord{
		RoomID:    g.id,
		UserID:    u.ID,
		BetType:   string(o.Type),
		Outcome:   o.Outcome,
		Price:     o.Price,
		Status:    string(o.Status),
		UpdatedAt: nowUTC(),
	}
}
