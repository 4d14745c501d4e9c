package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/autopay/backend/internal/models"
)

// AnalyzeTransaction asks the model for a short categorization and risk note
// on a single admitted transaction.
func (c *Client) AnalyzeTransaction(ctx context.Context, tx models.Transaction) (string, error) {
	var b strings.Builder
	b.WriteString("You are a financial analyst AI. In at most three sentences, categorize the payment below and point out anything unusual about it.\n\n")
	writeTransactionLine(&b, 1, tx)
	return c.Generate(ctx, b.String())
}

// DailyReport asks the model for a narrative analysis of a batch of
// transactions.
func (c *Client) DailyReport(ctx context.Context, txs []models.Transaction) (string, error) {
	if len(txs) == 0 {
		return "Daily Transaction Report\n\nNo transactions found for this period.", nil
	}

	analysis, err := c.Generate(ctx, analysisPrompt(txs))
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString("DAILY TRANSACTION ANALYSIS REPORT\n")
	b.WriteString(strings.Repeat("=", 50))
	b.WriteString("\n\n")
	b.WriteString(analysis)
	return b.String(), nil
}

func analysisPrompt(txs []models.Transaction) string {
	var total float64
	successful, pending := 0, 0
	for _, tx := range txs {
		total += tx.Amount
		switch tx.Status {
		case models.TxnSuccess:
			successful++
		case models.TxnPending:
			pending++
		}
	}

	var b strings.Builder
	b.WriteString("You are a financial analyst AI. Analyze the following transaction data and provide a comprehensive report.\n\n")
	b.WriteString("TRANSACTION SUMMARY:\n")
	fmt.Fprintf(&b, "- Total Transactions: %d\n", len(txs))
	fmt.Fprintf(&b, "- Total Amount: $%.2f\n", total)
	fmt.Fprintf(&b, "- Successful Transactions: %d\n", successful)
	fmt.Fprintf(&b, "- Pending Transactions: %d\n\n", pending)
	b.WriteString("DETAILED TRANSACTIONS:\n")
	for i, tx := range txs {
		writeTransactionLine(&b, i+1, tx)
	}
	b.WriteString("\nPlease provide a detailed analysis including:\n")
	b.WriteString("1. Overall transaction patterns and trends\n")
	b.WriteString("2. Notable observations (large amounts, frequent senders/receivers)\n")
	b.WriteString("3. Success rate analysis\n")
	b.WriteString("4. Any potential concerns or anomalies\n")
	b.WriteString("5. Recommendations for optimization\n\n")
	b.WriteString("Format the response in a clear, human-readable report with sections and bullet points.\n")
	return b.String()
}

func writeTransactionLine(b *strings.Builder, n int, tx models.Transaction) {
	fmt.Fprintf(b, "%d. ID: %s, Amount: $%.2f, Currency: %s, Sender: %s, Receiver: %s, Status: %s",
		n, tx.TxID, tx.Amount, tx.Currency, tx.SenderAccount, tx.ReceiverAccount, tx.Status)
	if !tx.Timestamp.IsZero() {
		fmt.Fprintf(b, ", Time: %s", tx.Timestamp.Format("2006-01-02T15:04:05Z07:00"))
	}
	if tx.Description != nil && *tx.Description != "" {
		fmt.Fprintf(b, ", Description: %s", *tx.Description)
	}
	b.WriteByte('\n')
}
