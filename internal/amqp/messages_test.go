package amqp

import (
	"testing"
)

func TestTransactionEventRoundTrip(t *testing.T) {
	event := NewTransactionEvent(OpCreated, "tx-123")
	if event.EventID == "" {
		t.Fatal("event should get an id")
	}

	body, err := event.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	got, err := TransactionEventFromJSON(body)
	if err != nil {
		t.Fatalf("TransactionEventFromJSON() error = %v", err)
	}
	if got.EventID != event.EventID || got.Op != OpCreated || got.TransactionID != "tx-123" {
		t.Errorf("round trip = %+v", got)
	}
}

func TestTransactionEventFromJSON_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"unknown op", `{"event_id":"e","op":"updated","transaction_id":"tx-1"}`},
		{"missing transaction id", `{"event_id":"e","op":"created"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := TransactionEventFromJSON([]byte(tt.body)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}
