package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/autopay/backend/internal/events"
	"github.com/autopay/backend/internal/metrics"
	"github.com/autopay/backend/internal/models"
	repo "github.com/autopay/backend/internal/repository"
	"github.com/autopay/backend/internal/webhook"
	"github.com/autopay/backend/internal/worker"
)

const sideEffectTimeout = 30 * time.Second

// Analyzer produces a short model-written note about one transaction.
type Analyzer interface {
	AnalyzeTransaction(ctx context.Context, tx models.Transaction) (string, error)
	Model() string
}

type PaymentService struct {
	pipeline *webhook.Pipeline
	trx      repo.Transactions
	insights repo.Insights
	analyzer Analyzer
	pub      events.Publisher
	wp       *worker.Pool
}

func NewPaymentService(pipeline *webhook.Pipeline, repos repo.Repositories, analyzer Analyzer, pub events.Publisher, wp *worker.Pool) *PaymentService {
	return &PaymentService{
		pipeline: pipeline,
		trx:      repos.Transactions,
		insights: repos.Insights,
		analyzer: analyzer,
		pub:      pub,
		wp:       wp,
	}
}

// ProcessWebhook runs the admission pipeline. A fresh admission hands event
// publishing and AI enrichment to the worker pool; neither can delay or fail
// the webhook response.
func (s *PaymentService) ProcessWebhook(ctx context.Context, env webhook.Envelope) (webhook.Result, error) {
	res, err := s.pipeline.Process(ctx, env)
	if err != nil {
		return webhook.Result{}, err
	}

	if res.Admitted {
		rec := res.Record
		if !s.wp.TrySubmit(func() { s.publishAdmitted(rec) }) {
			metrics.EventsPublished.WithLabelValues("error").Inc()
			slog.Warn("worker pool full, event dropped", "tx_id", rec.TxID)
		}
		if s.analyzer == nil {
			metrics.EnrichmentTotal.WithLabelValues("skipped").Inc()
		} else if !s.wp.TrySubmit(func() { s.enrich(rec) }) {
			metrics.EnrichmentTotal.WithLabelValues("skipped").Inc()
			slog.Warn("worker pool full, enrichment skipped", "tx_id", rec.TxID)
		}
	}
	return res, nil
}

func (s *PaymentService) publishAdmitted(tx models.Transaction) {
	ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancel()

	evt := events.TransactionAdmitted{
		TxID:            tx.TxID,
		Amount:          tx.Amount,
		Currency:        tx.Currency,
		SenderAccount:   tx.SenderAccount,
		ReceiverAccount: tx.ReceiverAccount,
		Status:          string(tx.Status),
		Timestamp:       tx.Timestamp,
	}
	if err := s.pub.Publish(ctx, events.RouteAdmitted, evt); err != nil {
		metrics.EventsPublished.WithLabelValues("error").Inc()
		slog.Warn("event publish failed", "tx_id", tx.TxID, "err", err)
		return
	}
	metrics.EventsPublished.WithLabelValues("ok").Inc()
}

func (s *PaymentService) enrich(tx models.Transaction) {
	ctx, cancel := context.WithTimeout(context.Background(), sideEffectTimeout)
	defer cancel()

	summary, err := s.analyzer.AnalyzeTransaction(ctx, tx)
	if err != nil {
		metrics.EnrichmentTotal.WithLabelValues("error").Inc()
		slog.Warn("enrichment failed", "tx_id", tx.TxID, "err", err)
		return
	}

	in := models.Insight{
		TxID:      tx.TxID,
		Summary:   summary,
		Model:     s.analyzer.Model(),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.insights.Save(ctx, in); err != nil {
		metrics.EnrichmentTotal.WithLabelValues("error").Inc()
		slog.Warn("insight save failed", "tx_id", tx.TxID, "err", err)
		return
	}
	metrics.EnrichmentTotal.WithLabelValues("ok").Inc()
}

// TransactionDetail is the read-path shape: the stored record plus its AI
// insight when one exists.
type TransactionDetail struct {
	models.Transaction
	Insight *models.Insight `json:"insight,omitempty"`
}

// GetTransaction looks up a stored transaction by its tx_id. The insight
// lookup is best effort; a failing insight read never hides the record.
func (s *PaymentService) GetTransaction(ctx context.Context, txID string) (TransactionDetail, bool, error) {
	tx, found, err := s.trx.FindByTxID(ctx, txID)
	if err != nil || !found {
		return TransactionDetail{}, false, err
	}

	detail := TransactionDetail{Transaction: tx}
	if in, ok, err := s.insights.FindByTxID(ctx, txID); err == nil && ok {
		detail.Insight = &in
	} else if err != nil {
		slog.Debug("insight lookup failed", "tx_id", txID, "err", err)
	}
	return detail, true, nil
}
