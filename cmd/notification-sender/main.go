package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/girolab/backend/internal/config"
	"github.com/girolab/backend/internal/lib/sl"
	"github.com/girolab/backend/internal/rabbitmq"
	"github.com/girolab/backend/internal/services/tax"
)

func main() {
	cfg := config.MustLoad()
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	logger.Info("starting notification-sender", slog.String("env", cfg.Env))

	conn, err := rabbitmq.Connect(cfg.AMQPURL, 5, 2*time.Second)
	if err != nil {
		logger.Error("failed to connect to RabbitMQ", sl.Err(err))
		os.Exit(1)
	}
	defer func() {
		_ = conn.Close()
	}()

	ch, err := rabbitmq.SetupChannel(conn, cfg.Exchange, []rabbitmq.QueueConfig{
		{QueueName: cfg.ReportsQueue, RoutingKey: cfg.RoutingKey},
	})
	if err != nil {
		logger.Error("failed to setup RabbitMQ channel", sl.Err(err))
		os.Exit(1)
	}
	defer func() {
		_ = ch.Close()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// TODO: отправлять push-уведомление о сроке оплаты вместо записи в лог.
	handler := func(body []byte) error {
		var event tax.ReportEvent
		if err := json.Unmarshal(body, &event); err != nil {
			return fmt.Errorf("error unmarshalling message: %w", err)
		}
		logger.Info("tax report created",
			slog.Int64("report_id", event.ReportID),
			slog.String("user_uid", event.UserUID),
			slog.String("type", event.Type),
			slog.Float64("amount", event.Amount),
			slog.Time("due_date", event.DueDate))
		return nil
	}

	if err := rabbitmq.ConsumerMessage(ctx, ch, cfg.ReportsQueue, handler); err != nil {
		logger.Error("failed to start consumer", sl.Err(err))
		os.Exit(1)
	}

	<-ctx.Done()
	logger.Info("notification sender shutting down gracefully")
}
