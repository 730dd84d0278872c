package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// Event es el cuerpo que se reenvía al webhook de automatización por cada
// mensaje entrante de chat.
type Event struct {
	SessionID  string    `json:"sessionId"`
	Message    string    `json:"message"`
	SenderType string    `json:"senderType"`
	Timestamp  time.Time `json:"timestamp"`
}

// Reply es la respuesta sincrónica opcional del webhook. Cualquier cuerpo
// que no tenga un campo "response" se trata como "sin respuesta".
type Reply struct {
	Response string `json:"response"`
}

// Notifier define el contrato hacia el sistema de workflows externo.
type Notifier interface {
	Forward(ctx context.Context, ev Event) (Reply, error)
	Notify(ctx context.Context, action string, fields map[string]interface{}) error
}

// HTTPClient implementa Notifier contra un endpoint HTTP opaco (n8n u otro).
type HTTPClient struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewHTTPClient construye el cliente con un timeout acotado; el timeout es
// la única política de fallo, no hay reintentos.
func NewHTTPClient(url string, timeout time.Duration, logger *zap.Logger) *HTTPClient {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTTPClient{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

// Forward envía el mensaje al webhook y parsea defensivamente la respuesta.
// Un 2xx sin campo "response" (o con cuerpo no parseable) devuelve Reply vacío
// sin error: el forward en sí fue exitoso.
func (c *HTTPClient) Forward(ctx context.Context, ev Event) (Reply, error) {
	respBody, status, err := c.post(ctx, ev)
	if err != nil {
		return Reply{}, fmt.Errorf("forward: %w", err)
	}
	if status < 200 || status >= 300 {
		c.logger.Warn("webhook non-success status", zap.Int("status", status), zap.ByteString("body", respBody))
		return Reply{}, fmt.Errorf("forward: webhook status=%d", status)
	}

	var reply Reply
	if err := json.Unmarshal(respBody, &reply); err != nil {
		c.logger.Debug("webhook reply not parseable, ignoring", zap.Error(err))
		return Reply{}, nil
	}
	return reply, nil
}

// Notify envía un evento de acción (turnos) al mismo webhook. La respuesta
// se ignora; solo importa si la entrega fue aceptada.
func (c *HTTPClient) Notify(ctx context.Context, action string, fields map[string]interface{}) error {
	body := map[string]interface{}{
		"action":    action,
		"timestamp": time.Now().UTC(),
	}
	for k, v := range fields {
		body[k] = v
	}

	respBody, status, err := c.post(ctx, body)
	if err != nil {
		return fmt.Errorf("notify %s: %w", action, err)
	}
	if status < 200 || status >= 300 {
		c.logger.Warn("webhook notify non-success status",
			zap.String("action", action),
			zap.Int("status", status),
			zap.ByteString("body", respBody),
		)
		return fmt.Errorf("notify %s: webhook status=%d", action, status)
	}
	return nil
}

func (c *HTTPClient) post(ctx context.Context, payload interface{}) ([]byte, int, error) {
	bodyBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, 0, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}
	return respBody, resp.StatusCode, nil
}
