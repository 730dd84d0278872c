package domain

import "time"

// Patient es un paciente de la clínica. El teléfono funciona como
// identidad de chat: coincide con el session_id de WhatsApp.
type Patient struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}
