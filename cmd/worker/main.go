package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/autopay/backend/internal/config"
	"github.com/autopay/backend/internal/events"
	"github.com/autopay/backend/internal/logger"
	"github.com/autopay/backend/internal/models"
	repo "github.com/autopay/backend/internal/repository"
	"github.com/autopay/backend/internal/store"
)

const (
	queueName   = "autopay.audit"
	consumerTag = "audit-worker"
	bindingKey  = "payment.#"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env, "worker")
	slog.SetDefault(log)

	if cfg.AMQPURL == "" {
		log.Error("AMQP_URL not set")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, cfg)
	if err != nil {
		log.Error("store open", "err", err)
		os.Exit(1)
	}
	defer st.Close()

	conn, err := amqp.DialConfig(cfg.AMQPURL, amqp.Config{
		Properties: amqp.Table{
			"connection_name": "autopay_audit_worker",
		},
	})
	if err != nil {
		log.Error("amqp dial", "err", err)
		os.Exit(1)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Error("amqp channel", "err", err)
		os.Exit(1)
	}
	defer ch.Close()

	// one unacked message at a time
	if err := ch.Qos(1, 0, false); err != nil {
		log.Error("amqp qos", "err", err)
		os.Exit(1)
	}

	err = ch.ExchangeDeclare(
		cfg.AMQPExchange, // name
		"topic",          // type
		true,             // durable
		false,            // auto-deleted
		false,            // internal
		false,            // no-wait
		nil,              // arguments
	)
	if err != nil {
		log.Error("declare exchange", "err", err)
		os.Exit(1)
	}

	q, err := ch.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	if err != nil {
		log.Error("declare queue", "err", err)
		os.Exit(1)
	}

	if err := ch.QueueBind(q.Name, bindingKey, cfg.AMQPExchange, false, nil); err != nil {
		log.Error("bind queue", "err", err)
		os.Exit(1)
	}

	msgs, err := ch.Consume(
		q.Name,      // queue
		consumerTag, // consumer tag
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
	if err != nil {
		log.Error("register consumer", "err", err)
		os.Exit(1)
	}

	notifyClose := make(chan *amqp.Error, 1)
	ch.NotifyClose(notifyClose)

	log.Info("worker started", "queue", q.Name, "exchange", cfg.AMQPExchange)

	for {
		select {
		case <-ctx.Done():
			log.Info("shutting down...")
			return
		case amqpErr := <-notifyClose:
			if amqpErr != nil {
				log.Error("amqp channel closed", "err", amqpErr)
				os.Exit(1)
			}
			return
		case d, ok := <-msgs:
			if !ok {
				log.Error("consumer channel closed")
				os.Exit(1)
			}
			handleDelivery(st.Repos.AuditLogs, d, log)
		}
	}
}

// handleDelivery turns an admitted-transaction event into an audit log row.
// Unparseable events are dropped; storage failures requeue the delivery.
func handleDelivery(logs repo.AuditLogs, d amqp.Delivery, log *slog.Logger) {
	var evt events.TransactionAdmitted
	if err := json.Unmarshal(d.Body, &evt); err != nil {
		log.Warn("bad event payload, dropping", "err", err)
		if err := d.Nack(false, false); err != nil {
			log.Warn("nack", "err", err)
		}
		return
	}

	entry := models.AuditLog{
		EntityType: "transaction",
		EntityID:   &evt.TxID,
		Action:     "admitted",
		Details: map[string]any{
			"amount":           evt.Amount,
			"currency":         evt.Currency,
			"sender_account":   evt.SenderAccount,
			"receiver_account": evt.ReceiverAccount,
			"status":           evt.Status,
			"timestamp":        evt.Timestamp,
		},
	}

	saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := logs.Create(saveCtx, entry); err != nil {
		log.Warn("audit save failed, requeueing", "tx_id", evt.TxID, "err", err)
		if err := d.Nack(false, true); err != nil {
			log.Warn("nack", "err", err)
		}
		return
	}

	if err := d.Ack(false); err != nil {
		log.Warn("ack", "err", err)
		return
	}
	log.Info("audit stored", "tx_id", evt.TxID, "routing_key", d.RoutingKey)
}
