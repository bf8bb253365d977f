package main

import (
	"encoding/json"
	"testing"
)

func TestParseBrokers(t *testing.T) {
	brokers := parseBrokers("kafka-1:9092, kafka-2:9092,,")
	if len(brokers) != 2 {
		t.Fatalf("expected 2 brokers, got %d", len(brokers))
	}
	if brokers[0] != "kafka-1:9092" || brokers[1] != "kafka-2:9092" {
		t.Fatalf("unexpected brokers: %v", brokers)
	}

	if got := parseBrokers(""); len(got) != 0 {
		t.Fatalf("expected no brokers for empty input, got %v", got)
	}
}

func TestExtractReplayMessage(t *testing.T) {
	dlqBody, err := json.Marshal(map[string]any{
		"outbox_id":      "outbox-1",
		"aggregate_type": "product",
		"aggregate_id":   "product-1",
		"event_type":     "stock.sold",
		"payload":        json.RawMessage(`{"product_id":"product-1","quantity":2}`),
		"publish_error":  "broker unavailable",
	})
	if err != nil {
		t.Fatalf("marshal dlq body: %v", err)
	}
	value, err := json.Marshal(map[string]any{
		"id":             "outbox-1",
		"aggregate_type": "product",
		"aggregate_id":   "product-1",
		"event_type":     "stock.sold",
		"payload":        json.RawMessage(dlqBody),
	})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}

	msg, ok, err := extractReplayMessage(value, "storefront.inventory.events")
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if !ok {
		t.Fatal("expected replayable message")
	}
	if msg.topic != "storefront.inventory.events" {
		t.Fatalf("unexpected topic: %s", msg.topic)
	}
	if msg.key != "product-1" {
		t.Fatalf("expected aggregate id as key, got %s", msg.key)
	}

	var replay replayEnvelope
	if err := json.Unmarshal(msg.value, &replay); err != nil {
		t.Fatalf("decode replay: %v", err)
	}
	if replay.EventType != "stock.sold" || replay.AggregateID != "product-1" {
		t.Fatalf("unexpected replay envelope: %+v", replay)
	}
	if string(replay.Payload) != `{"product_id":"product-1","quantity":2}` {
		t.Fatalf("original payload must survive replay, got %s", replay.Payload)
	}
}

func TestExtractReplayMessage_ForeignFormat(t *testing.T) {
	_, ok, err := extractReplayMessage([]byte("not json"), "topic")
	if err != nil || ok {
		t.Fatalf("expected silent skip for non-json, got ok=%v err=%v", ok, err)
	}

	_, ok, err = extractReplayMessage([]byte(`{"id":"x"}`), "topic")
	if err != nil || ok {
		t.Fatalf("expected skip for envelope without payload, got ok=%v err=%v", ok, err)
	}
}
