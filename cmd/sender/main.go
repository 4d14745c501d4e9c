package main

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// payload mirrors what an upstream payment provider would deliver.
type payload struct {
	TxID            string  `json:"tx_id"`
	Amount          float64 `json:"amount"`
	Currency        string  `json:"currency"`
	SenderAccount   string  `json:"sender_account"`
	ReceiverAccount string  `json:"receiver_account"`
	Description     string  `json:"description"`
}

func main() {
	_ = godotenv.Load()

	cmd := &cobra.Command{
		Use:   "sender",
		Short: "Send signed test webhooks at a running AutoPay instance",
		RunE: func(cmd *cobra.Command, args []string) error {
			url, _ := cmd.Flags().GetString("url")
			secret, _ := cmd.Flags().GetString("secret")
			count, _ := cmd.Flags().GetInt("count")
			interval, _ := cmd.Flags().GetDuration("interval")

			if secret == "" {
				return fmt.Errorf("no webhook secret: pass --secret or set WEBHOOK_SECRET")
			}
			if count > 0 {
				return sendBatch(url, secret, count, interval)
			}
			return runScenarios(url, secret, interval)
		},
	}

	cmd.Flags().String("url", "http://localhost:8080/payments/webhook", "Webhook endpoint")
	cmd.Flags().String("secret", os.Getenv("WEBHOOK_SECRET"), "Signing secret")
	cmd.Flags().IntP("count", "n", 0, "Send this many valid webhooks instead of the scenario flow")
	cmd.Flags().Duration("interval", time.Second, "Delay between requests")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// runScenarios exercises the interesting admission paths: a fresh delivery,
// an exact duplicate, a bad signature, then another fresh delivery.
func runScenarios(url, secret string, interval time.Duration) error {
	first := randomPayload()

	scenarios := []struct {
		name   string
		body   payload
		secret string
	}{
		{"Valid Transaction", first, secret},
		{"Duplicate Transaction", duplicateOf(first), secret},
		{"Invalid Signature", randomPayload(), "wrong_secret"},
		{"Another Valid Transaction", randomPayload(), secret},
	}

	for i, sc := range scenarios {
		if i > 0 {
			time.Sleep(interval)
		}
		fmt.Printf("=== %s ===\n", sc.name)
		if err := send(url, sc.secret, sc.body); err != nil {
			fmt.Fprintf(os.Stderr, "request failed: %v\n", err)
		}
	}
	return nil
}

func sendBatch(url, secret string, count int, interval time.Duration) error {
	for i := 0; i < count; i++ {
		if i > 0 {
			time.Sleep(interval)
		}
		if err := send(url, secret, randomPayload()); err != nil {
			fmt.Fprintf(os.Stderr, "request failed: %v\n", err)
		}
	}
	return nil
}

func send(url, secret string, p payload) error {
	body, err := json.Marshal(p)
	if err != nil {
		return err
	}

	ts := strconv.FormatInt(time.Now().Unix(), 10)
	req, err := http.NewRequest("POST", url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Timestamp", ts)
	req.Header.Set("X-Signature", sign(secret, ts, body))

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	fmt.Printf("Status: %d\nResponse: %s\n", resp.StatusCode, strings.TrimSpace(string(respBody)))
	return nil
}

// sign computes the hex HMAC over "{timestamp}.{body}".
func sign(secret, ts string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ts + "."))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func randomPayload() payload {
	return payload{
		TxID:            "tx_" + hexID(12),
		Amount:          float64(rand.Intn(9999)+1) / 100,
		Currency:        "USD",
		SenderAccount:   "ACC" + strings.ToUpper(hexID(8)),
		ReceiverAccount: "ACC" + strings.ToUpper(hexID(8)),
		Description:     "Payment for order #" + strings.ToUpper(hexID(10)),
	}
}

// duplicateOf reuses the tx_id so the server answers already_processed.
func duplicateOf(p payload) payload {
	d := randomPayload()
	d.TxID = p.TxID
	return d
}

func hexID(n int) string {
	s := strings.ReplaceAll(uuid.NewString(), "-", "")
	if n > len(s) {
		n = len(s)
	}
	return s[:n]
}
