package models

// order item types sold through checkout
const (
	ItemTypeTournament   = "tournament"
	ItemTypeActivity     = "activity"
	ItemTypeAddon        = "addon"
	ItemTypeEventTier    = "event_tier"
	ItemTypeSpecialEvent = "special_event"
	ItemTypeMerchandise  = "merchandise"
)

// RegistrationItemTypes lists the item types that imply a registration row.
var RegistrationItemTypes = []string{
	ItemTypeTournament,
	ItemTypeActivity,
	ItemTypeEventTier,
	ItemTypeSpecialEvent,
}

func IsRegistrationItemType(itemType string) bool {
	for _, t := range RegistrationItemTypes {
		if t == itemType {
			return true
		}
	}
	return false
}

// order statuses, written by the checkout webhook handlers and read here
const (
	OrderStatusPending   = "pending"
	OrderStatusCompleted = "completed"
	OrderStatusRefunded  = "refunded"
	OrderStatusCanceled  = "canceled"
)

// IsTerminalOrderStatus reports whether payment reached a final state.
func IsTerminalOrderStatus(status string) bool {
	switch status {
	case OrderStatusCompleted, OrderStatusRefunded, OrderStatusCanceled:
		return true
	}
	return false
}

// registration payment statuses
const (
	PaymentStatusPaid     = "paid"
	PaymentStatusComped   = "comped"
	PaymentStatusRefunded = "refunded"
)

const (
	SponsorTierGold   = "gold"
	SponsorTierSilver = "silver"
	SponsorTierBronze = "bronze"
)
