package room

import "errors"

// Taxonomia de rejeição do engine. Toda falha é devolvida de forma
// síncrona ao chamador com o estado da sala intacto; nada é retentado
// aqui dentro.
var (
	ErrInvalidScoreTransition = errors.New("invalid-score-transition")
	ErrCapabilityDenied       = errors.New("capability-denied")
	ErrUnknownSender          = errors.New("unknown-sender")
	ErrInvalidPick            = errors.New("invalid-pick")
	ErrRoomNotFound           = errors.New("room-not-found")
)
