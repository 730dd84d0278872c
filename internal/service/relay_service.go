package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"clinic-relay/internal/domain"
	"clinic-relay/internal/repository"
	"clinic-relay/internal/webhook"
)

var (
	ErrRelayNotConfigured = errors.New("relay service not configured")
	ErrRelayInvalidInput  = errors.New("sessionId and message are required")
)

// RelayService orquesta el manejo de un mensaje entrante de chat:
// validar, persistir, reenviar al webhook y persistir la respuesta
// sincrónica si la hay.
type RelayService struct {
	logger   *zap.Logger
	messages repository.MessageRepository
	notifier webhook.Notifier
	seq      SessionSequencer
}

// RelayInput es la sumisión cruda del cliente. SenderType es opcional.
type RelayInput struct {
	SessionID  string
	Message    string
	SenderType string
}

// RelayResult describe cuánto del pipeline se completó. Forwarded en false
// significa que el mensaje quedó guardado pero el webhook no lo aceptó.
type RelayResult struct {
	Inbound   domain.ChatMessage
	Forwarded bool
	Reply     *domain.ChatMessage
}

func NewRelayService(logger *zap.Logger, messages repository.MessageRepository, notifier webhook.Notifier, seq SessionSequencer) *RelayService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RelayService{
		logger:   logger,
		messages: messages,
		notifier: notifier,
		seq:      seq,
	}
}

// Relay ejecuta la secuencia completa. El contrato de fallos parciales:
//   - input inválido: ErrRelayInvalidInput, cero efectos.
//   - falla la persistencia del entrante: error, el webhook nunca se llama.
//   - falla el forward: resultado exitoso con Forwarded=false.
//   - falla la persistencia de la respuesta: solo se loguea.
//
// El forward y la persistencia de la respuesta corren sobre un contexto
// desacoplado del caller: si el cliente se desconecta, el mensaje ya durable
// igual llega al webhook.
func (s *RelayService) Relay(ctx context.Context, in RelayInput) (RelayResult, error) {
	if s == nil || s.messages == nil || s.notifier == nil {
		return RelayResult{}, ErrRelayNotConfigured
	}

	in.SessionID = strings.TrimSpace(in.SessionID)
	in.Message = strings.TrimSpace(in.Message)
	in.SenderType = strings.TrimSpace(in.SenderType)
	if in.SessionID == "" || in.Message == "" {
		return RelayResult{}, ErrRelayInvalidInput
	}
	if in.SenderType == "" {
		in.SenderType = domain.SenderHuman
	}

	inbound := domain.ChatMessage{
		ID:         uuid.NewString(),
		SessionID:  in.SessionID,
		SenderType: in.SenderType,
		Content:    in.Message,
		Seq:        s.nextSeq(ctx, in.SessionID),
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.messages.Create(ctx, inbound); err != nil {
		return RelayResult{}, fmt.Errorf("persist inbound message: %w", err)
	}

	result := RelayResult{Inbound: inbound}

	detached := context.WithoutCancel(ctx)
	reply, err := s.notifier.Forward(detached, webhook.Event{
		SessionID:  inbound.SessionID,
		Message:    inbound.Content,
		SenderType: inbound.SenderType,
		Timestamp:  inbound.CreatedAt,
	})
	if err != nil {
		s.logger.Warn("webhook forward failed",
			zap.String("session_id", inbound.SessionID),
			zap.Error(err),
		)
		return result, nil
	}
	result.Forwarded = true

	if reply.Response == "" {
		return result, nil
	}

	aiMsg := domain.ChatMessage{
		ID:         uuid.NewString(),
		SessionID:  inbound.SessionID,
		SenderType: domain.SenderAI,
		Content:    reply.Response,
		Seq:        s.nextSeq(detached, inbound.SessionID),
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.messages.Create(detached, aiMsg); err != nil {
		// El caller ya tiene su mensaje guardado y reenviado; la respuesta
		// del webhook es un enriquecimiento best-effort.
		s.logger.Error("persist webhook reply failed",
			zap.String("session_id", inbound.SessionID),
			zap.Error(err),
		)
		return result, nil
	}
	result.Reply = &aiMsg

	return result, nil
}

// History devuelve el historial ordenado de una sesión.
func (s *RelayService) History(ctx context.Context, sessionID string) ([]domain.ChatMessage, error) {
	if s == nil || s.messages == nil {
		return nil, ErrRelayNotConfigured
	}
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return []domain.ChatMessage{}, nil
	}
	return s.messages.ListBySessionID(ctx, sessionID)
}

// Sessions lista las conversaciones para el panel de chat en vivo.
func (s *RelayService) Sessions(ctx context.Context) ([]domain.SessionSummary, error) {
	if s == nil || s.messages == nil {
		return nil, ErrRelayNotConfigured
	}
	return s.messages.ListSessions(ctx)
}

func (s *RelayService) nextSeq(ctx context.Context, sessionID string) int64 {
	if s.seq == nil {
		return 0
	}
	return s.seq.Next(ctx, sessionID)
}
