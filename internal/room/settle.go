package room

import (
	"fmt"

	"github.com/odinenx/live-rooms/internal/shared/metrics"
	"github.com/odinenx/live-rooms/pkg/contracts/channels"
	"github.com/odinenx/live-rooms/pkg/contracts/events"
)

// SettledPick descreve uma transição pending -> won|lost ocorrida num
// mesmo ApplyScoreUpdate ou SetStatus.
type SettledPick struct {
	UserID  string
	BetType BetType
	Outcome string
	Status  OddStatus
}

// ScoreResult agrega os efeitos de um update de placar aceito.
type ScoreResult struct {
	GoalScored bool
	Settled    []SettledPick
}

// ApplyScoreUpdate aplica um update de placar vindo do feed. Placar e
// minuto são monotônicos: regressão rejeita com invalid-score-transition
// sem tocar em nada. Repetir o mesmo update é aceito e não produz evento.
func (r *Registry) ApplyScoreUpdate(roomID string, newHome, newAway, minute int, scorer string) (*ScoreResult, error) {
	g, err := r.Room(roomID)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if newHome < g.homeScore || newAway < g.awayScore || minute < g.minute {
		return nil, r.reject("invalid-score-transition", fmt.Errorf(
			"%w: %d-%d (%d') -> %d-%d (%d')",
			ErrInvalidScoreTransition,
			g.homeScore, g.awayScore, g.minute, newHome, newAway, minute,
		))
	}
	if newHome == g.homeScore && newAway == g.awayScore && minute == g.minute {
		return &ScoreResult{}, nil
	}

	old := roomRecordLocked(g)
	homeGoal := newHome > g.homeScore
	awayGoal := newAway > g.awayScore
	g.homeScore = newHome
	g.awayScore = newAway
	g.minute = minute

	r.publish(channels.Score(g.id), events.TableGameRooms, events.EventUpdate, old, roomRecordLocked(g))

	res := &ScoreResult{GoalScored: homeGoal || awayGoal}
	if homeGoal {
		r.appendSystemLocked(g, goalMessage(g, g.homeTeam, scorer))
	}
	if awayGoal {
		r.appendSystemLocked(g, goalMessage(g, g.awayTeam, scorer))
	}
	if res.GoalScored {
		// celebração de gol: todos os online, cada um com o efeito do
		// próprio plano, sem vínculo com pick nenhum
		for _, u := range g.users {
			if u.Online {
				r.fireCelebrationLocked(g, u, CauseGoal, ScopeRoom)
			}
		}
	}

	res.Settled = r.settleLocked(g, false)
	return res, nil
}

// SetStatus muda o ciclo de vida da sala. A transição para finished
// dispara a liquidação final dos picks ainda pendentes.
func (r *Registry) SetStatus(roomID string, status Status) (*ScoreResult, error) {
	g, err := r.Room(roomID)
	if err != nil {
		return nil, err
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.status == status {
		return &ScoreResult{}, nil
	}
	old := roomRecordLocked(g)
	g.status = status
	r.publish(channels.Score(g.id), events.TableGameRooms, events.EventUpdate, old, roomRecordLocked(g))

	res := &ScoreResult{}
	if status == StatusFinished {
		res.Settled = r.settleLocked(g, true)
	}
	return res, nil
}

func goalMessage(g *GameRoom, team, scorer string) string {
	if scorer != "" {
		return fmt.Sprintf("GOAL! %s - %s (%d') %d x %d", team, scorer, g.minute, g.homeScore, g.awayScore)
	}
	return fmt.Sprintf("GOAL! %s (%d') %d x %d", team, g.minute, g.homeScore, g.awayScore)
}

// settleLocked percorre todos os picks pendentes da sala e aplica as
// transições decididas pelo placar atual. Estados terminais são pulados,
// então repetir o mesmo placar nunca reliquida nada.
func (r *Registry) settleLocked(g *GameRoom, final bool) []SettledPick {
	var out []SettledPick
	for _, u := range g.users {
		for _, o := range u.Odds {
			if o.Status != OddPending {
				continue
			}
			next := evaluateOdd(g, o, final)
			if next == OddPending {
				continue
			}

			old := oddRecordLocked(g, u, o)
			o.Status = next
			metrics.OddsSettled.WithLabelValues(string(next)).Inc()
			r.publish(channels.Odds(g.id), events.TableUserOdds, events.EventUpdate, old, oddRecordLocked(g, u, o))

			if next == OddWon {
				r.appendSystemLocked(g, fmt.Sprintf("%s won: %s %s @ %.2f", u.Name, o.Type, o.Outcome, o.Price))
				r.fireCelebrationLocked(g, u, CauseOddWon, ScopeUser)
			}

			out = append(out, SettledPick{
				UserID:  u.ID,
				BetType: o.Type,
				Outcome: o.Outcome,
				Status:  next,
			})
		}
	}
	return out
}

// evaluateOdd decide a transição de um pick pendente para o placar
// corrente. Devolve OddPending quando nada está matematicamente decidido.
func evaluateOdd(g *GameRoom, o *UserOdd, final bool) OddStatus {
	total := g.homeScore + g.awayScore

	switch o.Type {
	case BetMatchResult:
		if final {
			winner := OutcomeDraw
			if g.homeScore > g.awayScore {
				winner = OutcomeHome
			} else if g.awayScore > g.homeScore {
				winner = OutcomeAway
			}
			if o.Outcome == winner {
				return OddWon
			}
			return OddLost
		}
		// regra assimétrica intencional: ao vivo só marca perdido quando o
		// lado oposto está estritamente na frente; draw nunca perde antes
		// do fim, e vitória só se confirma no apito final
		if o.Outcome == OutcomeHome && g.awayScore > g.homeScore {
			return OddLost
		}
		if o.Outcome == OutcomeAway && g.homeScore > g.awayScore {
			return OddLost
		}
		return OddPending

	case BetOverUnder:
		// decidido junto: no instante em que o total passa da linha, over
		// ganha e under perde
		if float64(total) > o.ouLine {
			if o.ouOver {
				return OddWon
			}
			return OddLost
		}
		if final {
			// linha não foi superada até o fim
			if o.ouOver {
				return OddLost
			}
			return OddWon
		}
		return OddPending

	case BetBothTeamsScore:
		both := g.homeScore > 0 && g.awayScore > 0
		if both {
			if o.Outcome == OutcomeYes {
				return OddWon
			}
			return OddLost
		}
		if final {
			if o.Outcome == OutcomeNo {
				return OddWon
			}
			return OddLost
		}
		return OddPending
	}

	// tipo desconhecido não passa pela validação do AddUser
	return OddPending
}
