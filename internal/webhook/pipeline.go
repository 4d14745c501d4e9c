package webhook

import (
	"context"
	"time"

	"github.com/autopay/backend/internal/models"
)

// Result is the terminal outcome of an accepted delivery. Admitted is false
// for duplicates, in which case Record is the original stored record.
type Result struct {
	Admitted bool
	Record   models.Transaction
}

// Pipeline runs one delivery through signature, replay, payload and
// idempotency checks, in that order. A failed stage is terminal; later
// stages never observe unverified input.
type Pipeline struct {
	Verifier Verifier
	Guard    Guard
	Policy   AmountPolicy
	Ledger   *Ledger
	Now      func() time.Time
}

func NewPipeline(v Verifier, g Guard, policy AmountPolicy, ledger *Ledger) *Pipeline {
	return &Pipeline{
		Verifier: v,
		Guard:    g,
		Policy:   policy,
		Ledger:   ledger,
		Now:      time.Now,
	}
}

// Process admits a single webhook delivery. Rejections come back as the
// package sentinel errors; a duplicate is not an error.
func (p *Pipeline) Process(ctx context.Context, env Envelope) (Result, error) {
	if err := p.Verifier.Verify(env.SignedPayload(), env.Signature); err != nil {
		return Result{}, err
	}

	rawTS := env.Timestamp
	var payload Payload
	parsed := false
	if rawTS == "" {
		// body-carried timestamp: the structural parse happens here, after
		// the signature over the body has already been verified
		var err error
		payload, err = ParsePayload(env.Body)
		if err != nil {
			return Result{}, err
		}
		parsed = true
		rawTS = payload.Timestamp.String()
	}

	claimed, err := ParseTimestamp(rawTS)
	if err != nil {
		return Result{}, err
	}
	if err := p.Guard.Check(claimed); err != nil {
		return Result{}, err
	}

	if !parsed {
		payload, err = ParsePayload(env.Body)
		if err != nil {
			return Result{}, err
		}
	}
	if errs := payload.Validate(p.Policy); errs != nil {
		return Result{}, &PayloadError{Fields: errs}
	}

	record, admitted, err := p.Ledger.Admit(ctx, payload.Record(p.Now()))
	if err != nil {
		return Result{}, err
	}
	return Result{Admitted: admitted, Record: record}, nil
}
