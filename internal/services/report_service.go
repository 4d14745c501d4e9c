package services

import (
	"context"
	"errors"
	"time"

	"github.com/autopay/backend/internal/models"
	repo "github.com/autopay/backend/internal/repository"
)

// ReportMetrics are the headline numbers for a reporting window.
type ReportMetrics struct {
	TotalCount      int     `json:"total_count"`
	TotalAmount     float64 `json:"total_amount"`
	AverageAmount   float64 `json:"average_amount"`
	SuccessfulCount int     `json:"successful_count"`
	PendingCount    int     `json:"pending_count"`
	SuccessRate     float64 `json:"success_rate"`
}

// ReportAnalyzer writes the narrative part of a report.
type ReportAnalyzer interface {
	DailyReport(ctx context.Context, txs []models.Transaction) (string, error)
}

type ReportService struct {
	trx      repo.Transactions
	analyzer ReportAnalyzer
}

// NewReportService builds a report service. analyzer may be nil; Narrative
// then reports that no analyzer is configured.
func NewReportService(trx repo.Transactions, analyzer ReportAnalyzer) *ReportService {
	return &ReportService{trx: trx, analyzer: analyzer}
}

// WindowTransactions fetches everything admitted within the trailing window.
func (s *ReportService) WindowTransactions(ctx context.Context, window time.Duration) ([]models.Transaction, error) {
	return s.trx.ListSince(ctx, time.Now().UTC().Add(-window))
}

// Metrics computes the basic numbers for a batch of transactions.
func (s *ReportService) Metrics(txs []models.Transaction) ReportMetrics {
	if len(txs) == 0 {
		return ReportMetrics{}
	}

	var m ReportMetrics
	m.TotalCount = len(txs)
	for _, tx := range txs {
		m.TotalAmount += tx.Amount
		switch tx.Status {
		case models.TxnSuccess:
			m.SuccessfulCount++
		case models.TxnPending:
			m.PendingCount++
		}
	}
	m.AverageAmount = m.TotalAmount / float64(m.TotalCount)
	m.SuccessRate = float64(m.SuccessfulCount) / float64(m.TotalCount) * 100
	return m
}

// Narrative asks the model for the human-readable report.
func (s *ReportService) Narrative(ctx context.Context, txs []models.Transaction) (string, error) {
	if s.analyzer == nil {
		return "", errors.New("analyzer not configured")
	}
	return s.analyzer.DailyReport(ctx, txs)
}
