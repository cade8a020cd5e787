package ws

// ClientMsg representa uma mensagem recebida do cliente WebSocket.
// Type: subscribe | unsubscribe | ping | join | chat | reaction
// Channel: obrigatório para subscribe/unsubscribe
// RoomID/UserID: obrigatórios nos tipos de intake (join/chat/reaction)
type ClientMsg struct {
	Type     string    `json:"type"`
	Channel  string    `json:"channel,omitempty"`
	RoomID   string    `json:"roomId,omitempty"`
	UserID   string    `json:"userId,omitempty"`
	Username string    `json:"username,omitempty"`
	Plan     string    `json:"plan,omitempty"`
	Picks    []PickMsg `json:"picks,omitempty"`
	Content  string    `json:"content,omitempty"`
	Kind     string    `json:"kind,omitempty"`
	Reaction string    `json:"reaction,omitempty"`
}

// PickMsg é um pick cru enviado no join; validado pelo engine.
type PickMsg struct {
	BetType string  `json:"betType"`
	Outcome string  `json:"outcome"`
	Price   float64 `json:"price"`
}

// Respostas diretas do gateway para o cliente. Eventos de sala chegam
// pelo Broadcast, não por aqui.
type ServerMsg struct {
	Type   string `json:"type"` // joined | error | pong
	RoomID string `json:"roomId,omitempty"`
	UserID string `json:"userId,omitempty"`
	Reason string `json:"reason,omitempty"`
}
