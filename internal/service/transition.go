package service

import "github.com/nore-menu/api/internal/database"

// Both state machines accept any transition between known states:
// staff regularly walk orders backwards to correct mistakes (a served
// order marked by accident, a cancelled intent validated after a phone
// call). The canonical paths below exist so that off-path transitions
// are a visible, logged decision instead of an absence of checks.

// canonicalProductionTransitions is the expected kitchen flow.
// cancelled is reachable from any non-terminal state.
var canonicalProductionTransitions = map[database.ProductionStatus][]database.ProductionStatus{
	database.ProductionStatusPending:   {database.ProductionStatusPreparing, database.ProductionStatusCancelled},
	database.ProductionStatusPreparing: {database.ProductionStatusReady, database.ProductionStatusCancelled},
	database.ProductionStatusReady:     {database.ProductionStatusDelivered, database.ProductionStatusCancelled},
}

// canonicalWhatsappTransitions is the expected intent flow; both
// targets are terminal.
var canonicalWhatsappTransitions = map[database.WhatsappStatus][]database.WhatsappStatus{
	database.WhatsappStatusPENDING: {database.WhatsappStatusVALIDATED, database.WhatsappStatusCANCELLED},
}

func IsKnownProductionStatus(s database.ProductionStatus) bool {
	switch s {
	case database.ProductionStatusPending,
		database.ProductionStatusPreparing,
		database.ProductionStatusReady,
		database.ProductionStatusDelivered,
		database.ProductionStatusCancelled:
		return true
	}
	return false
}

func IsKnownWhatsappStatus(s database.WhatsappStatus) bool {
	switch s {
	case database.WhatsappStatusPENDING,
		database.WhatsappStatusVALIDATED,
		database.WhatsappStatusCANCELLED:
		return true
	}
	return false
}

// IsCanonicalProductionTransition reports whether current→next follows
// the expected kitchen flow. Off-path transitions are still applied.
func IsCanonicalProductionTransition(current, next database.ProductionStatus) bool {
	for _, s := range canonicalProductionTransitions[current] {
		if s == next {
			return true
		}
	}
	return false
}

// IsCanonicalWhatsappTransition reports whether current→next follows
// the expected intent flow. Off-path transitions (double validation,
// validate-after-cancel) are still applied.
func IsCanonicalWhatsappTransition(current, next database.WhatsappStatus) bool {
	for _, s := range canonicalWhatsappTransitions[current] {
		if s == next {
			return true
		}
	}
	return false
}
