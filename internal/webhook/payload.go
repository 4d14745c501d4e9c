package webhook

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/autopay/backend/internal/api/validate"
	"github.com/autopay/backend/internal/models"
)

var (
	idPattern       = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	currencyPattern = regexp.MustCompile(`^[A-Z]{3}$`)
	unsafeChars     = strings.NewReplacer("<", "", ">", "", `"`, "", "'", "", ";", "", "&", "")
)

// Payload is the recognized shape of a webhook body. Unknown fields are
// ignored; amounts stay json.Number until validated so precision checks see
// the sender's literal.
type Payload struct {
	TxID            string      `json:"tx_id"`
	Amount          json.Number `json:"amount"`
	Currency        string      `json:"currency"`
	SenderAccount   string      `json:"sender_account"`
	ReceiverAccount string      `json:"receiver_account"`
	Description     string      `json:"description"`
	Timestamp       json.Number `json:"timestamp"`
}

// AmountPolicy bounds the accepted amount range.
type AmountPolicy struct {
	AllowNonPositive bool
	Max              float64
}

// ParsePayload decodes a webhook body. Any structural failure, including
// trailing data after the JSON document, maps to ErrMalformedPayload.
func ParsePayload(body []byte) (Payload, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var p Payload
	if err := dec.Decode(&p); err != nil {
		return Payload{}, fmt.Errorf("%w: not a JSON object", ErrMalformedPayload)
	}
	if dec.More() {
		return Payload{}, fmt.Errorf("%w: trailing data after document", ErrMalformedPayload)
	}
	return p, nil
}

// Validate applies the field rules. tx_id and amount are mandatory; the
// remaining fields are validated only when present. It returns nil when the
// payload is acceptable.
func (p Payload) Validate(policy AmountPolicy) validate.Errs {
	var errs validate.Errs
	add := func(e *validate.ErrField) {
		if e != nil {
			errs = append(errs, *e)
		}
	}

	if e := validate.Required("tx_id", p.TxID); e != nil {
		add(e)
	} else {
		add(validate.LenRange("tx_id", p.TxID, 1, 100))
		add(validate.Pattern("tx_id", p.TxID, idPattern, "must contain only letters, digits, underscore or hyphen"))
	}

	if p.Amount.String() == "" {
		add(&validate.ErrField{Field: "amount", Msg: "required"})
	} else if f, err := p.Amount.Float64(); err != nil {
		add(&validate.ErrField{Field: "amount", Msg: "must be a number"})
	} else {
		if !policy.AllowNonPositive && f <= 0 {
			add(&validate.ErrField{Field: "amount", Msg: "must be greater than zero"})
		}
		if f > policy.Max {
			add(&validate.ErrField{Field: "amount", Msg: fmt.Sprintf("must not exceed %.2f", policy.Max)})
		}
		if math.Abs(f*100-math.Round(f*100)) > 1e-9 {
			add(&validate.ErrField{Field: "amount", Msg: "at most 2 decimal places"})
		}
	}

	if p.Currency != "" {
		add(validate.Pattern("currency", p.Currency, currencyPattern, "must be a 3-letter uppercase code"))
	}

	for field, value := range map[string]string{
		"sender_account":   p.SenderAccount,
		"receiver_account": p.ReceiverAccount,
	} {
		if value == "" {
			continue
		}
		add(validate.LenRange(field, value, 1, 50))
		add(validate.Pattern(field, value, idPattern, "must contain only letters, digits, underscore or hyphen"))
	}
	if p.SenderAccount != "" && p.SenderAccount == p.ReceiverAccount {
		add(&validate.ErrField{Field: "receiver_account", Msg: "must differ from sender_account"})
	}

	if p.Description != "" {
		add(validate.MaxLen("description", sanitizeDescription(p.Description), 500))
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Record converts a validated payload into the stored transaction shape.
// Timestamp is the admission instant, not the sender's claimed time.
func (p Payload) Record(now time.Time) models.Transaction {
	amount, _ := p.Amount.Float64()
	tx := models.Transaction{
		TxID:            p.TxID,
		Amount:          amount,
		Currency:        p.Currency,
		SenderAccount:   p.SenderAccount,
		ReceiverAccount: p.ReceiverAccount,
		Status:          models.TxnSuccess,
		Timestamp:       now.UTC(),
	}
	if cleaned := sanitizeDescription(p.Description); cleaned != "" {
		tx.Description = &cleaned
	}
	return tx
}

// sanitizeDescription strips characters that break log lines and naive
// renderers downstream.
func sanitizeDescription(s string) string {
	return strings.TrimSpace(unsafeChars.Replace(s))
}
