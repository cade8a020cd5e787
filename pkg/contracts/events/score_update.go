package events

import "time"

// ScoreUpdate é a mensagem consumida do tópico "score_updates".
// Emitida pelo feed de placar (ou pelo match-simulator) e aplicada
// pelo consumer do room-service na sala correspondente à fixture.
type ScoreUpdate struct {
	FixtureID int64     `json:"fixture_id"`
	HomeScore int       `json:"home_score"`
	AwayScore int       `json:"away_score"`
	Minute    int       `json:"minute"`
	Scorer    string    `json:"scorer,omitempty"`
	Finished  bool      `json:"finished,omitempty"`
	Ts        time.Time `json:"ts"`
}
