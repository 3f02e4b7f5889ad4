package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cleberrangel/diane-api/internal/capture"
	"github.com/cleberrangel/diane-api/internal/logger"
	"github.com/cleberrangel/diane-api/internal/metrics"
	"github.com/cleberrangel/diane-api/internal/model"
)

// EventCaptureNotification é o evento enviado a cada notificação de captura
const EventCaptureNotification = "capture.notification"

// WebhookService envia as notificações de captura para um webhook externo
type WebhookService struct {
	url        string
	httpClient *http.Client
}

// NewWebhookService cria um novo serviço de webhook. URL vazia desativa o envio.
func NewWebhookService(url string, timeout time.Duration) *WebhookService {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &WebhookService{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Enabled informa se há um webhook configurado
func (w *WebhookService) Enabled() bool {
	return w != nil && w.url != ""
}

// Notify implementa capture.Notifier
func (w *WebhookService) Notify(ctx context.Context, userID string, n capture.Notification) error {
	if !w.Enabled() {
		return nil
	}

	payload := model.NotificationPayload{
		Event:       EventCaptureNotification,
		UserID:      userID,
		Kind:        string(n.Kind),
		Message:     n.Message,
		Description: n.Description,
		DurationMs:  n.DurationMs,
		SentAt:      time.Now().UTC(),
	}

	err := w.send(ctx, payload)
	metrics.Get().IncrementWebhook(err == nil)
	return err
}

// send envia o payload para o webhook
func (w *WebhookService) send(ctx context.Context, payload model.NotificationPayload) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("criar request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("enviar webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("webhook retornou status %d: %s", resp.StatusCode, string(respBody))
	}

	logger.Get(ctx).Info().
		Str("url", w.url).
		Int("status", resp.StatusCode).
		Str("kind", payload.Kind).
		Msg("Webhook enviado com sucesso")

	return nil
}
