package plan

import "fmt"

// Plan é o nível de assinatura do usuário. Imutável durante a sessão
// de sala; troca de plano exige sair e entrar de novo.
type Plan string

const (
	Free  Plan = "free"
	Basic Plan = "basic"
	Pro   Plan = "pro"
	Elite Plan = "elite"
)

// Capabilities é o conjunto de permissões derivado do plano.
type Capabilities struct {
	CanSendGIF           bool
	CanSendSticker       bool
	CustomCatalogEnabled bool
	CelebrationEffect    string
}

// Parse valida um plano vindo de fora (feed, API externa).
func Parse(s string) (Plan, error) {
	switch Plan(s) {
	case Free, Basic, Pro, Elite:
		return Plan(s), nil
	}
	return "", fmt.Errorf("unknown plan %q", s)
}

// Rank ordinal: elite > pro > basic > free. Usado pela listagem ordenada.
func (p Plan) Rank() int {
	switch p {
	case Elite:
		return 3
	case Pro:
		return 2
	case Basic:
		return 1
	default:
		return 0
	}
}

// ForPlan é total sobre os quatro planos; plano desconhecido cai no
// conjunto do free, que não concede nada.
func ForPlan(p Plan) Capabilities {
	switch p {
	case Basic:
		return Capabilities{
			CanSendGIF:        true,
			CelebrationEffect: "colored-confetti",
		}
	case Pro:
		return Capabilities{
			CanSendGIF:        true,
			CanSendSticker:    true,
			CelebrationEffect: "premium-animation",
		}
	case Elite:
		return Capabilities{
			CanSendGIF:           true,
			CanSendSticker:       true,
			CustomCatalogEnabled: true,
			CelebrationEffect:    "full-custom",
		}
	default:
		return Capabilities{
			CelebrationEffect: "simple-confetti",
		}
	}
}
