package model

import (
	"time"

	"examvault-membership/internal/domain"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"      // terminal
	OrderStatusCancelled OrderStatus = "cancelled" // terminal
	OrderStatusExpired   OrderStatus = "expired"   // terminal, set by the sweeper
)

// Terminal reports whether no further transition out of the status is allowed.
func (s OrderStatus) Terminal() bool {
	switch s {
	case OrderStatusPaid, OrderStatusCancelled, OrderStatusExpired:
		return true
	case OrderStatusPending:
		return false
	}
	return false
}

// Payment method tags recorded on orders. Free-form in storage; these two are
// the values this subsystem writes.
const (
	PaymentMethodManualTransfer = "manual_transfer"
	PaymentMethodInvitationCode = "invitation_code"
)

// VipOrder records one attempt by a user to acquire entitlement. Amounts are
// integer cents to keep two-decimal currency semantics exact.
type VipOrder struct {
	ID               string
	UserID           string
	PlanType         PlanType
	AmountCents      int64
	Status           OrderStatus
	PaymentMethod    string
	PaymentReference string
	CreatedAt        time.Time
	PaidAt           *time.Time
	ExpiresAt        *time.Time // the VIP expiry this order produced, set once paid
}

func NewVipOrder(id, userID string, plan PlanType, amountCents int64, method string) (*VipOrder, error) {
	if id == "" || userID == "" || !plan.Valid() || amountCents < 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &VipOrder{
		ID:            id,
		UserID:        userID,
		PlanType:      plan,
		AmountCents:   amountCents,
		Status:        OrderStatusPending,
		PaymentMethod: method,
		CreatedAt:     time.Now(),
	}, nil
}

// OrderStats aggregates the operator dashboard numbers.
type OrderStats struct {
	Pending           int
	Paid              int
	RevenueCentsTotal int64
}
