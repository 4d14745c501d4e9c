package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/autopay/backend/internal/events"
	"github.com/autopay/backend/internal/models"
	repo "github.com/autopay/backend/internal/repository"
	"github.com/autopay/backend/internal/webhook"
	"github.com/autopay/backend/internal/worker"
)

type fakeTransactions struct {
	mu   sync.Mutex
	m    map[string]models.Transaction
	list []models.Transaction
}

func newFakeTransactions() *fakeTransactions {
	return &fakeTransactions{m: make(map[string]models.Transaction)}
}

func (f *fakeTransactions) FindByTxID(_ context.Context, txID string) (models.Transaction, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	tx, ok := f.m[txID]
	return tx, ok, nil
}

func (f *fakeTransactions) InsertIfAbsent(_ context.Context, tx models.Transaction) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.m[tx.TxID]; ok {
		return false, nil
	}
	f.m[tx.TxID] = tx
	return true, nil
}

func (f *fakeTransactions) ListSince(_ context.Context, since time.Time) ([]models.Transaction, error) {
	return f.list, nil
}

type fakeInsights struct {
	mu      sync.Mutex
	m       map[string]models.Insight
	findErr error
}

func newFakeInsights() *fakeInsights {
	return &fakeInsights{m: make(map[string]models.Insight)}
}

func (f *fakeInsights) Save(_ context.Context, in models.Insight) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.m[in.TxID] = in
	return nil
}

func (f *fakeInsights) FindByTxID(_ context.Context, txID string) (models.Insight, bool, error) {
	if f.findErr != nil {
		return models.Insight{}, false, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	in, ok := f.m[txID]
	return in, ok, nil
}

type fakePublisher struct {
	mu        sync.Mutex
	published []events.TransactionAdmitted
	keys      []string
}

func (p *fakePublisher) Publish(_ context.Context, routingKey string, body any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	evt, ok := body.(events.TransactionAdmitted)
	if !ok {
		return errors.New("unexpected event type")
	}
	p.published = append(p.published, evt)
	p.keys = append(p.keys, routingKey)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.published)
}

type fakeAnalyzer struct {
	err error
}

func (a fakeAnalyzer) AnalyzeTransaction(context.Context, models.Transaction) (string, error) {
	if a.err != nil {
		return "", a.err
	}
	return "routine transfer", nil
}

func (a fakeAnalyzer) Model() string { return "test-model" }

func servicePipeline(store webhook.TransactionStore) *webhook.Pipeline {
	at := time.Unix(1_700_000_000, 0)
	p := webhook.NewPipeline(
		webhook.Verifier{Secret: "s3cr3t"},
		webhook.Guard{MaxAge: 300 * time.Second, Skew: 5 * time.Second, Now: func() time.Time { return at }},
		webhook.AmountPolicy{Max: 1_000_000},
		webhook.NewLedger(store),
	)
	p.Now = func() time.Time { return at }
	return p
}

// admissionEnvelope builds a signed body-mode delivery for txID.
func admissionEnvelope(txID string) webhook.Envelope {
	body := fmt.Sprintf(`{"tx_id":%q,"amount":10,"currency":"USD","sender_account":"ACC1","receiver_account":"ACC2","timestamp":1700000000}`, txID)
	mac := hmac.New(sha256.New, []byte("s3cr3t"))
	mac.Write([]byte(body))
	return webhook.Envelope{Body: []byte(body), Signature: hex.EncodeToString(mac.Sum(nil))}
}

func TestProcessWebhook_AdmissionTriggersSideEffects(t *testing.T) {
	trx := newFakeTransactions()
	ins := newFakeInsights()
	pub := &fakePublisher{}
	wp := worker.NewPool(2)

	svc := NewPaymentService(servicePipeline(trx), repo.Repositories{Transactions: trx, Insights: ins}, fakeAnalyzer{}, pub, wp)

	res, err := svc.ProcessWebhook(context.Background(), admissionEnvelope("tx1"))
	if err != nil {
		t.Fatalf("process: %v", err)
	}
	if !res.Admitted {
		t.Fatalf("expected admission")
	}

	wp.Stop() // drain the queued side effects

	if pub.count() != 1 {
		t.Fatalf("expected one published event, got %d", pub.count())
	}
	if pub.keys[0] != events.RouteAdmitted {
		t.Fatalf("expected routing key %q, got %q", events.RouteAdmitted, pub.keys[0])
	}
	if pub.published[0].TxID != "tx1" || pub.published[0].Amount != 10 {
		t.Fatalf("unexpected event: %+v", pub.published[0])
	}

	in, ok, _ := ins.FindByTxID(context.Background(), "tx1")
	if !ok {
		t.Fatalf("expected a stored insight")
	}
	if in.Summary != "routine transfer" || in.Model != "test-model" {
		t.Fatalf("unexpected insight: %+v", in)
	}
}

func TestProcessWebhook_DuplicateSkipsSideEffects(t *testing.T) {
	trx := newFakeTransactions()
	ins := newFakeInsights()
	pub := &fakePublisher{}
	wp := worker.NewPool(2)

	svc := NewPaymentService(servicePipeline(trx), repo.Repositories{Transactions: trx, Insights: ins}, fakeAnalyzer{}, pub, wp)
	env := admissionEnvelope("tx1")
	ctx := context.Background()

	if _, err := svc.ProcessWebhook(ctx, env); err != nil {
		t.Fatalf("first delivery: %v", err)
	}
	res, err := svc.ProcessWebhook(ctx, env)
	if err != nil {
		t.Fatalf("second delivery: %v", err)
	}
	if res.Admitted {
		t.Fatalf("expected duplicate")
	}

	wp.Stop()

	if pub.count() != 1 {
		t.Fatalf("expected side effects only for the first delivery, got %d events", pub.count())
	}
}

func TestProcessWebhook_RejectionsPropagate(t *testing.T) {
	trx := newFakeTransactions()
	wp := worker.NewPool(1)
	defer wp.Stop()

	svc := NewPaymentService(servicePipeline(trx), repo.Repositories{Transactions: trx, Insights: newFakeInsights()}, nil, &fakePublisher{}, wp)

	env := admissionEnvelope("tx1")
	env.Signature = "deadbeef"
	if _, err := svc.ProcessWebhook(context.Background(), env); !errors.Is(err, webhook.ErrInvalidSignature) {
		t.Fatalf("expected ErrInvalidSignature, got %v", err)
	}
}

func TestProcessWebhook_NilAnalyzerStillPublishes(t *testing.T) {
	trx := newFakeTransactions()
	ins := newFakeInsights()
	pub := &fakePublisher{}
	wp := worker.NewPool(2)

	svc := NewPaymentService(servicePipeline(trx), repo.Repositories{Transactions: trx, Insights: ins}, nil, pub, wp)

	if _, err := svc.ProcessWebhook(context.Background(), admissionEnvelope("tx1")); err != nil {
		t.Fatalf("process: %v", err)
	}
	wp.Stop()

	if pub.count() != 1 {
		t.Fatalf("expected event without analyzer, got %d", pub.count())
	}
	if _, ok, _ := ins.FindByTxID(context.Background(), "tx1"); ok {
		t.Fatalf("expected no insight without analyzer")
	}
}

func TestGetTransaction_AttachesInsight(t *testing.T) {
	trx := newFakeTransactions()
	ins := newFakeInsights()
	trx.m["tx1"] = models.Transaction{TxID: "tx1", Amount: 10, Currency: "USD", Status: models.TxnSuccess}
	ins.m["tx1"] = models.Insight{TxID: "tx1", Summary: "routine transfer", Model: "test-model"}

	svc := NewPaymentService(nil, repo.Repositories{Transactions: trx, Insights: ins}, nil, &fakePublisher{}, nil)

	detail, found, err := svc.GetTransaction(context.Background(), "tx1")
	if err != nil || !found {
		t.Fatalf("get: found=%v err=%v", found, err)
	}
	if detail.TxID != "tx1" {
		t.Fatalf("unexpected record: %+v", detail.Transaction)
	}
	if detail.Insight == nil || detail.Insight.Summary != "routine transfer" {
		t.Fatalf("expected attached insight, got %+v", detail.Insight)
	}
}

func TestGetTransaction_UnknownID(t *testing.T) {
	svc := NewPaymentService(nil, repo.Repositories{Transactions: newFakeTransactions(), Insights: newFakeInsights()}, nil, &fakePublisher{}, nil)

	_, found, err := svc.GetTransaction(context.Background(), "missing")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if found {
		t.Fatalf("expected not found")
	}
}

func TestGetTransaction_InsightFailureIsNotFatal(t *testing.T) {
	trx := newFakeTransactions()
	ins := newFakeInsights()
	trx.m["tx1"] = models.Transaction{TxID: "tx1", Amount: 10}
	ins.findErr = errors.New("insight store down")

	svc := NewPaymentService(nil, repo.Repositories{Transactions: trx, Insights: ins}, nil, &fakePublisher{}, nil)

	detail, found, err := svc.GetTransaction(context.Background(), "tx1")
	if err != nil || !found {
		t.Fatalf("get: found=%v err=%v", found, err)
	}
	if detail.Insight != nil {
		t.Fatalf("expected record without insight, got %+v", detail.Insight)
	}
}
