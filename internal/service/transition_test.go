package service

import (
	"testing"

	"github.com/nore-menu/api/internal/database"
)

func TestIsKnownProductionStatus(t *testing.T) {
	known := []database.ProductionStatus{
		database.ProductionStatusPending,
		database.ProductionStatusPreparing,
		database.ProductionStatusReady,
		database.ProductionStatusDelivered,
		database.ProductionStatusCancelled,
	}
	for _, s := range known {
		if !IsKnownProductionStatus(s) {
			t.Errorf("%s should be a known production status", s)
		}
	}
	for _, s := range []database.ProductionStatus{"", "PENDING", "done", "served"} {
		if IsKnownProductionStatus(s) {
			t.Errorf("%q should not be a known production status", s)
		}
	}
}

func TestIsKnownWhatsappStatus(t *testing.T) {
	known := []database.WhatsappStatus{
		database.WhatsappStatusPENDING,
		database.WhatsappStatusVALIDATED,
		database.WhatsappStatusCANCELLED,
	}
	for _, s := range known {
		if !IsKnownWhatsappStatus(s) {
			t.Errorf("%s should be a known whatsapp status", s)
		}
	}
	for _, s := range []database.WhatsappStatus{"", "pending", "validated", "DONE"} {
		if IsKnownWhatsappStatus(s) {
			t.Errorf("%q should not be a known whatsapp status", s)
		}
	}
}

func TestCanonicalProductionTransitions(t *testing.T) {
	cases := []struct {
		current   database.ProductionStatus
		next      database.ProductionStatus
		canonical bool
	}{
		{database.ProductionStatusPending, database.ProductionStatusPreparing, true},
		{database.ProductionStatusPending, database.ProductionStatusCancelled, true},
		{database.ProductionStatusPreparing, database.ProductionStatusReady, true},
		{database.ProductionStatusPreparing, database.ProductionStatusCancelled, true},
		{database.ProductionStatusReady, database.ProductionStatusDelivered, true},
		{database.ProductionStatusReady, database.ProductionStatusCancelled, true},

		// Skips and reversals are off-path but still legal at the
		// service layer; they get a WARN log, not a rejection.
		{database.ProductionStatusPending, database.ProductionStatusReady, false},
		{database.ProductionStatusPending, database.ProductionStatusDelivered, false},
		{database.ProductionStatusPreparing, database.ProductionStatusPending, false},
		{database.ProductionStatusDelivered, database.ProductionStatusPending, false},
		{database.ProductionStatusDelivered, database.ProductionStatusCancelled, false},
		{database.ProductionStatusCancelled, database.ProductionStatusPreparing, false},
		{database.ProductionStatusPending, database.ProductionStatusPending, false},
	}
	for _, c := range cases {
		got := IsCanonicalProductionTransition(c.current, c.next)
		if got != c.canonical {
			t.Errorf("%s -> %s: canonical = %v, want %v", c.current, c.next, got, c.canonical)
		}
	}
}

func TestCanonicalWhatsappTransitions(t *testing.T) {
	cases := []struct {
		current   database.WhatsappStatus
		next      database.WhatsappStatus
		canonical bool
	}{
		{database.WhatsappStatusPENDING, database.WhatsappStatusVALIDATED, true},
		{database.WhatsappStatusPENDING, database.WhatsappStatusCANCELLED, true},

		// Double validation and validate-after-cancel happen when two
		// staff race or a customer calls back; off-path, still applied.
		{database.WhatsappStatusVALIDATED, database.WhatsappStatusVALIDATED, false},
		{database.WhatsappStatusVALIDATED, database.WhatsappStatusCANCELLED, false},
		{database.WhatsappStatusCANCELLED, database.WhatsappStatusVALIDATED, false},
		{database.WhatsappStatusPENDING, database.WhatsappStatusPENDING, false},
	}
	for _, c := range cases {
		got := IsCanonicalWhatsappTransition(c.current, c.next)
		if got != c.canonical {
			t.Errorf("%s -> %s: canonical = %v, want %v", c.current, c.next, got, c.canonical)
		}
	}
}
