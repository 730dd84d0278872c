package domain

import "time"

// Tipos de remitente aceptados en el historial de chat.
const (
	SenderHuman  = "human"
	SenderAI     = "ai"
	SenderSystem = "system"
)

// ChatMessage es un mensaje persistido dentro de una conversación.
// Seq es un contador por sesión puramente informativo: vale 0 cuando
// redis no está configurado y las lecturas nunca dependen de él.
type ChatMessage struct {
	ID         string    `json:"id"`
	SessionID  string    `json:"session_id"`
	SenderType string    `json:"sender_type"`
	Content    string    `json:"content"`
	Seq        int64     `json:"seq,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// SessionSummary resume una conversación para el listado del dashboard.
// PatientName se resuelve contra la tabla de pacientes por teléfono y
// queda vacío cuando no hay coincidencia.
type SessionSummary struct {
	SessionID    string    `json:"session_id"`
	PatientName  string    `json:"patient_name,omitempty"`
	LastMessage  string    `json:"last_message"`
	LastSender   string    `json:"last_sender"`
	MessageCount int64     `json:"message_count"`
	LastActivity time.Time `json:"last_activity"`
}
