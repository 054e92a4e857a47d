// Package domain concentra entidades e estruturas centrais do rate limiter.
package domain

import "time"

// Record é o estado persistido do contador de uma chave. ResetAt é fixado na
// abertura da janela e não desliza a cada requisição (janela fixa).
type Record struct {
	Count   int64     `json:"count"`
	ResetAt time.Time `json:"reset_at"`
}

// Expired indica se a janela do registro já fechou no instante informado.
// Um contador de janela fechada é obsoleto e vale zero.
func (r Record) Expired(now time.Time) bool {
	return !now.Before(r.ResetAt)
}

// Request carrega os atributos usados na derivação de chaves. Origin é o
// identificador de origem resolvido pela camada de transporte; vale
// "unknown" quando nenhum header identificador está presente.
type Request struct {
	Origin string
	UserID string
	APIKey string
	Path   string
}

// Policy é uma configuração imutável de rate limiting. Políticas nomeadas
// distintas (auth, trading, public) são apenas valores diferentes deste tipo.
type Policy struct {
	Name      string
	Window    time.Duration
	Limit     int
	KeyFunc   KeyFunc // nil usa OriginKey
	Whitelist []string
	Message   string
}

func (p Policy) Validate() error {
	if p.Limit <= 0 {
		return ErrInvalidLimit
	}
	if p.Window <= 0 {
		return ErrInvalidWindow
	}
	return nil
}

func (p Policy) Key(req Request) string {
	if p.KeyFunc != nil {
		return p.KeyFunc(req)
	}
	return OriginKey(req)
}

func (p Policy) Whitelisted(origin string) bool {
	for _, entry := range p.Whitelist {
		if entry == origin {
			return true
		}
	}
	return false
}

// Result é o desfecho de uma verificação. Toda verificação resolve em um
// Result; falhas de infraestrutura viram Allowed=true com FailedOpen marcado.
type Result struct {
	Allowed    bool
	Limit      int
	Remaining  int
	ResetAt    time.Time
	RetryAfter int // segundos até o reset da janela, preenchido na rejeição
	Message    string
	FailedOpen bool
}
