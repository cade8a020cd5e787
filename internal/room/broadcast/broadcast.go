package broadcast

import (
	"sync"

	"github.com/odinenx/live-rooms/pkg/contracts/events"
)

// Callback recebe eventos publicados no canal assinado. Executa de forma
// síncrona com o Publish: callbacks lentos travam o pipeline da sala,
// então devem apenas enfileirar para uma fila de saída.
type Callback func(ev events.RealtimeEvent)

// Subscription é o handle devolvido pelo Subscribe, usado para cancelar.
type Subscription struct {
	channel string
	id      uint64
}

type subscriber struct {
	id uint64
	fn Callback
}

// Broadcaster é o barramento de dispatch direto em processo. Cada Registry
// possui o seu; nada aqui é estado global, o que permite teardown limpo e
// isolamento entre testes.
type Broadcaster struct {
	mu     sync.RWMutex
	nextID uint64
	subs   map[string][]subscriber
}

func New() *Broadcaster {
	return &Broadcaster{subs: make(map[string][]subscriber)}
}

// Subscribe registra o callback no canal, criando o canal se não existir.
func (b *Broadcaster) Subscribe(channel string, fn Callback) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	b.subs[channel] = append(b.subs[channel], subscriber{id: b.nextID, fn: fn})
	return &Subscription{channel: channel, id: b.nextID}
}

// Publish entrega o evento a todos os inscritos, na ordem de inscrição,
// antes de retornar. Canal desconhecido é no-op: tolera a corrida de
// publicar antes de alguém assinar. Não há replay para quem chega depois.
func (b *Broadcaster) Publish(channel string, ev events.RealtimeEvent) {
	b.mu.RLock()
	current := b.subs[channel]
	fns := make([]Callback, len(current))
	for i, s := range current {
		fns[i] = s.fn
	}
	b.mu.RUnlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Unsubscribe remove o callback; idempotente.
func (b *Broadcaster) Unsubscribe(s *Subscription) {
	if s == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	list := b.subs[s.channel]
	for i, sub := range list {
		if sub.id == s.id {
			b.subs[s.channel] = append(list[:i:i], list[i+1:]...)
			break
		}
	}
	if len(b.subs[s.channel]) == 0 {
		delete(b.subs, s.channel)
	}
}

// RemoveChannel descarta o canal e todos os inscritos. Usado no teardown
// da sala.
func (b *Broadcaster) RemoveChannel(channel string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, channel)
}

// Subscribers informa quantos callbacks estão registrados no canal.
func (b *Broadcaster) Subscribers(channel string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[channel])
}
