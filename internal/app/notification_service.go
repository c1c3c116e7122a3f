// internal/app/notification_service.go
package app

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"soup_menu_bot/internal/domain/subscription"
	domainTelegram "soup_menu_bot/internal/domain/telegram"
	"soup_menu_bot/internal/infra/metrics"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// NotificationService manages the daily soup broadcast and its subscribers.
type NotificationService interface {
	Subscribe(ctx context.Context, chatID int64) (added bool, err error)
	Unsubscribe(ctx context.Context, chatID int64) (removed bool, err error)
	// BroadcastDailySoup sends today's listing once to every current subscriber.
	BroadcastDailySoup(ctx context.Context) (BroadcastReport, error)
}

// BroadcastReport summarizes one broadcast run.
type BroadcastReport struct {
	Recipients int
	Delivered  int
	Removed    int // Permanently unreachable, dropped from the subscriber set
	Failed     int // Transient failures, still subscribed
}

// NotificationServiceImpl implements the NotificationService interface.
type NotificationServiceImpl struct {
	subscribers    subscription.Store
	queries        *QueryService
	telegramClient domainTelegram.Client
	logger         *logrus.Entry
	metrics        *metrics.Metrics
	sendTimeout    time.Duration
	concurrency    int
}

func NewNotificationServiceImpl(
	subs subscription.Store,
	queries *QueryService,
	tc domainTelegram.Client,
	logger *logrus.Entry,
	m *metrics.Metrics,
	sendTimeout time.Duration,
	concurrency int,
) *NotificationServiceImpl {
	if concurrency < 1 {
		concurrency = 1
	}
	return &NotificationServiceImpl{
		subscribers:    subs,
		queries:        queries,
		telegramClient: tc,
		logger:         logger,
		metrics:        m,
		sendTimeout:    sendTimeout,
		concurrency:    concurrency,
	}
}

func (s *NotificationServiceImpl) Subscribe(ctx context.Context, chatID int64) (bool, error) {
	added, err := s.subscribers.Add(ctx, chatID)
	if err != nil {
		return false, fmt.Errorf("failed to subscribe chat %d: %w", chatID, err)
	}
	s.logger.WithFields(logrus.Fields{"chat_id": chatID, "added": added}).Info("Chat subscribed to daily soup")
	return added, nil
}

func (s *NotificationServiceImpl) Unsubscribe(ctx context.Context, chatID int64) (bool, error) {
	removed, err := s.subscribers.Remove(ctx, chatID)
	if err != nil {
		return false, fmt.Errorf("failed to unsubscribe chat %d: %w", chatID, err)
	}
	s.logger.WithFields(logrus.Fields{"chat_id": chatID, "removed": removed}).Info("Chat unsubscribed from daily soup")
	return removed, nil
}

// BroadcastDailySoup renders today's listing once and fans it out to a snapshot of the
// subscribers. A failing recipient never stops delivery to the others.
func (s *NotificationServiceImpl) BroadcastDailySoup(ctx context.Context) (BroadcastReport, error) {
	started := time.Now()
	defer func() { s.metrics.ObserveBroadcast(time.Since(started).Seconds()) }()

	reply, err := s.queries.DailyMessage(ctx)
	if err != nil {
		return BroadcastReport{}, fmt.Errorf("failed to build daily soup message: %w", err)
	}

	chatIDs, err := s.subscribers.List(ctx)
	if err != nil {
		return BroadcastReport{}, fmt.Errorf("failed to list subscribers: %w", err)
	}
	if len(chatIDs) == 0 {
		s.logger.Info("No subscribers. Daily soup broadcast will not send any messages.")
		return BroadcastReport{}, nil
	}
	s.logger.WithField("recipients", len(chatIDs)).Info("Starting daily soup broadcast")

	var delivered, removed, failed atomic.Int64
	g := new(errgroup.Group)
	g.SetLimit(s.concurrency)
	for _, chatID := range chatIDs {
		g.Go(func() error {
			switch s.deliver(ctx, chatID, reply.Text) {
			case deliveryOK:
				delivered.Add(1)
			case deliveryRemoved:
				removed.Add(1)
			default:
				failed.Add(1)
			}
			return nil
		})
	}
	_ = g.Wait()

	report := BroadcastReport{
		Recipients: len(chatIDs),
		Delivered:  int(delivered.Load()),
		Removed:    int(removed.Load()),
		Failed:     int(failed.Load()),
	}
	s.logger.WithFields(logrus.Fields{
		"recipients": report.Recipients,
		"delivered":  report.Delivered,
		"removed":    report.Removed,
		"failed":     report.Failed,
	}).Info("Daily soup broadcast finished")
	return report, nil
}

type deliveryResult int

const (
	deliveryOK deliveryResult = iota
	deliveryRemoved
	deliveryFailed
)

func (s *NotificationServiceImpl) deliver(ctx context.Context, chatID int64, text string) (result deliveryResult) {
	logCtx := s.logger.WithField("chat_id", chatID)
	defer func() {
		if r := recover(); r != nil {
			logCtx.WithField("panic", r).Error("Panic while sending daily soup")
			result = deliveryFailed
		}
		s.metrics.RecordDelivery(result.String())
	}()

	err := s.sendWithTimeout(ctx, chatID, text)
	if err == nil {
		logCtx.Debug("Sent daily soup notification")
		return deliveryOK
	}

	if errors.Is(err, domainTelegram.ErrChatUnreachable) {
		logCtx.WithError(err).Warn("Chat is unreachable, removing subscriber")
		if _, rmErr := s.subscribers.Remove(ctx, chatID); rmErr != nil {
			logCtx.WithError(rmErr).Error("Failed to remove unreachable subscriber")
			return deliveryFailed
		}
		return deliveryRemoved
	}

	logCtx.WithError(err).Warn("Failed to send daily soup notification, keeping subscriber")
	return deliveryFailed
}

// sendWithTimeout bounds a single send. The underlying client may not honor ctx,
// so the send runs in its own goroutine and is abandoned on expiry.
func (s *NotificationServiceImpl) sendWithTimeout(ctx context.Context, chatID int64, text string) error {
	if s.sendTimeout <= 0 {
		return s.telegramClient.SendMessage(ctx, chatID, text)
	}
	ctx, cancel := context.WithTimeout(ctx, s.sendTimeout)
	defer cancel()

	done := make(chan error, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- fmt.Errorf("panic while sending to chat %d: %v", chatID, r)
			}
		}()
		done <- s.telegramClient.SendMessage(ctx, chatID, text)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return fmt.Errorf("send to chat %d aborted: %w", chatID, ctx.Err())
	}
}

func (r deliveryResult) String() string {
	switch r {
	case deliveryOK:
		return "delivered"
	case deliveryRemoved:
		return "removed"
	default:
		return "failed"
	}
}
