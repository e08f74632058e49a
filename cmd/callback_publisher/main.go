package main

import (
	"encoding/json"
	"flag"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"oip/checkout/common/model"
	"oip/checkout/internal/app/config"
	"oip/checkout/internal/app/infra/mq/lmstfy"
)

// 向回调队列投递一条支付结果，用于本地联调 callback consumer
//
//	go run ./cmd/callback_publisher -order <id> -key pk_001 -amount 42800
//	go run ./cmd/callback_publisher -order <id> -type PAYMENT_FAILED -reason "card declined"
func main() {
	orderID := flag.String("order", "", "order id")
	callbackType := flag.String("type", model.CallbackTypeApproved, "PAYMENT_APPROVED or PAYMENT_FAILED")
	paymentKey := flag.String("key", "", "gateway payment key")
	amount := flag.String("amount", "", "approved amount, empty to skip amount check")
	provider := flag.String("provider", "TOSS", "pg provider")
	method := flag.String("method", "card", "payment method")
	reason := flag.String("reason", "", "failure reason")
	delay := flag.Uint("delay", 0, "delay seconds")
	flag.Parse()

	cfg, err := config.LoadDefault()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.ValidateConsumer(); err != nil {
		log.Fatalf("Config validation failed: %v", err)
	}

	callback := &model.PaymentCallback{
		EventID:    uuid.NewString(),
		Type:       *callbackType,
		OrderID:    *orderID,
		PGProvider: *provider,
		PaymentKey: *paymentKey,
		Method:     *method,
		Reason:     *reason,
	}
	if *callbackType == model.CallbackTypeApproved {
		callback.ApprovedAt = time.Now().Unix()
	}
	if *amount != "" {
		d, err := decimal.NewFromString(*amount)
		if err != nil {
			log.Fatalf("Invalid amount %q: %v", *amount, err)
		}
		callback.Amount = &d
	}
	if err := callback.Validate(); err != nil {
		log.Fatalf("Invalid callback: %v", err)
	}

	data, err := json.Marshal(callback)
	if err != nil {
		log.Fatalf("Marshal callback failed: %v", err)
	}

	client := lmstfy.NewClient(cfg.Lmstfy.Host, cfg.Lmstfy.Port, cfg.Lmstfy.Namespace, cfg.Lmstfy.Token)
	jobID, err := client.Publish(cfg.Lmstfy.CallbackQueue, data, uint32(*delay))
	if err != nil {
		log.Fatalf("Publish failed: %v", err)
	}
	log.Printf("Published callback: job_id=%s queue=%s order_id=%s type=%s", jobID, cfg.Lmstfy.CallbackQueue, *orderID, *callbackType)
}
