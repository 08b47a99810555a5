package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"lyrnios-backend/internal/model"
	"lyrnios-backend/internal/platform/rabbitmq"
	"lyrnios-backend/internal/repository"
)

type MessageAppender interface {
	Append(ctx context.Context, in repository.AppendMessageInput) (*model.ChatMessage, error)
}

type HistoryInvalidator interface {
	DeleteHistory(ctx context.Context, sessionID string) error
}

// MessagePersistWorker drains the persist queue into the message store. A
// delivery that cannot be decoded or stored is dropped, not requeued.
type MessagePersistWorker struct {
	conn      *amqp.Connection
	repo      MessageAppender
	history   HistoryInvalidator
	queueName string
	log       *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewMessagePersistWorker(
	conn *amqp.Connection,
	repo MessageAppender,
	history HistoryInvalidator,
	queueName string,
	log *zap.Logger,
) *MessagePersistWorker {
	if log == nil {
		log = zap.NewNop()
	}
	return &MessagePersistWorker{
		conn:      conn,
		repo:      repo,
		history:   history,
		queueName: queueName,
		log:       log,
	}
}

func (w *MessagePersistWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	if _, err := rabbitmq.DeclareQueue(ch, w.queueName); err != nil {
		_ = ch.Close()
		cancel()
		return err
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}
				if err := w.handle(workerCtx, d.Body); err != nil {
					w.log.Error("persist queued message failed", zap.Error(err))
					_ = d.Nack(false, false)
					continue
				}
				_ = d.Ack(false)
			}
		}
	}()

	w.log.Info("message persist worker started", zap.String("queue", w.queueName))
	return nil
}

func (w *MessagePersistWorker) handle(ctx context.Context, body []byte) error {
	var msg model.PendingMessage
	if err := json.Unmarshal(body, &msg); err != nil {
		return fmt.Errorf("decode pending message failed: %w", err)
	}

	if _, err := w.repo.Append(ctx, repository.AppendMessageInput{
		SessionID: msg.SessionID,
		Role:      msg.Role,
		Content:   msg.Content,
		Data:      msg.Data,
	}); err != nil {
		return fmt.Errorf("session %s: %w", msg.SessionID, err)
	}

	if w.history != nil {
		if err := w.history.DeleteHistory(ctx, msg.SessionID); err != nil {
			w.log.Warn("drop session history failed", zap.String("session_id", msg.SessionID), zap.Error(err))
		}
	}
	return nil
}

func (w *MessagePersistWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
