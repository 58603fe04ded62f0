package domain

import "time"

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// Client record statuses, in tie-break priority order (highest first).
const (
	StatusApproved   = "approved"
	StatusRejected   = "rejected"
	StatusCancelled  = "cancelled"
	StatusProcessing = "processing"
	StatusPending    = "pending"
)

var StatusPriority = []string{
	StatusApproved,
	StatusRejected,
	StatusCancelled,
	StatusProcessing,
	StatusPending,
}

func IsValidClientStatus(s string) bool {
	for _, st := range StatusPriority {
		if st == s {
			return true
		}
	}
	return false
}

const (
	DiscountPercentage = "percentage"
	DiscountFixed      = "fixed"
)

const (
	CommissionPending   = "pending"
	CommissionWithdrawn = "withdrawn"
)

// CommissionHoldingPeriod is how long a commission stays pending before it can be withdrawn.
const CommissionHoldingPeriod = 7 * 24 * time.Hour

const (
	WithdrawalRequested = "requested"
	WithdrawalPaid      = "paid"
)

const (
	CapitalGiroPending     = "pending"
	CapitalGiroUnderReview = "under_review"
	CapitalGiroApproved    = "approved"
	CapitalGiroRejected    = "rejected"
)

const (
	NotifSubmissionStatus  = "SUBMISSION_STATUS"
	NotifPaymentConfirmed  = "PAYMENT_CONFIRMED"
	NotifCommissionCreated = "COMMISSION_CREATED"
	NotifCapitalGiro       = "CAPITAL_GIRO_REVIEWED"
	NotifWithdrawalPaid    = "WITHDRAWAL_PAID"
)

const (
	SettingPixDueDays     = "pix_due_days"
	SettingSupportContact = "support_contact"
)

const ReferralCodeLength = 4
