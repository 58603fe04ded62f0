package service

import (
	"errors"

	"hubln/internal/apperr"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound       = apperr.New(apperr.NotFound, "UserNotFound", "user not found")
	ErrProductNotFound    = apperr.New(apperr.NotFound, "ProductNotFound", "product not found or inactive")
	ErrSubmissionNotFound = apperr.New(apperr.NotFound, "SubmissionNotFound", "submission not found")
	ErrClientNotFound     = apperr.New(apperr.NotFound, "ClientNotFound", "client not found")
	ErrForbidden          = apperr.New(apperr.Forbidden, "Forbidden", "you are not allowed to perform this action")
	ErrCannotModifyPaid   = apperr.New(apperr.StateConflict, "CannotModifyPaid", "paid submissions cannot be modified")
	ErrChargeOpen         = apperr.New(apperr.StateConflict, "PaymentInProgress", "a PIX charge is open for this submission; it can change once the charge expires")
	ErrInvalidClient      = apperr.New(apperr.InvalidInput, "InvalidClient", "invalid client data")
	ErrInvalidPrice       = apperr.New(apperr.InvalidInput, "InvalidPrice", "price must be greater than zero")

	ErrCouponNotFound  = apperr.New(apperr.NotFound, "NotFound", "coupon not found")
	ErrInactive        = apperr.New(apperr.StateConflict, "Inactive", "coupon is inactive")
	ErrWrongProduct    = apperr.New(apperr.InvalidInput, "WrongProduct", "coupon is not valid for this product")
	ErrExpired         = apperr.New(apperr.StateConflict, "Expired", "coupon has expired")
	ErrExhausted       = apperr.New(apperr.StateConflict, "Exhausted", "coupon usage limit reached")
	ErrSelfUse         = apperr.New(apperr.InvalidInput, "SelfUse", "you cannot use your own coupon")
	ErrDuplicateCode   = apperr.New(apperr.Conflict, "DuplicateCode", "coupon code already exists")
	ErrInvalidDiscount = apperr.New(apperr.InvalidInput, "InvalidDiscount", "invalid discount")

	ErrReferrerNotFound   = apperr.New(apperr.NotFound, "ReferrerNotFound", "referrer not found for referral code")
	ErrSomeUnavailable    = apperr.New(apperr.StateConflict, "SomeUnavailable", "some commissions are not available for withdrawal")
	ErrNotPaid            = apperr.New(apperr.StateConflict, "NotPaid", "submission is not paid")
	ErrWithdrawalNotFound = apperr.New(apperr.NotFound, "WithdrawalNotFound", "withdrawal not found")

	ErrEmailExists         = apperr.New(apperr.Conflict, "EmailExists", "email already registered")
	ErrInvalidCreds        = apperr.New(apperr.Forbidden, "InvalidCredentials", "invalid email or password")
	ErrAccountDisabled     = apperr.New(apperr.Forbidden, "AccountDisabled", "account is disabled")
	ErrInvalidReferralCode = apperr.New(apperr.InvalidInput, "InvalidReferralCode", "referral code does not exist")
	ErrInvalidToken        = apperr.New(apperr.Forbidden, "InvalidToken", "invalid or expired token")

	ErrAnnouncementNotFound = apperr.New(apperr.NotFound, "AnnouncementNotFound", "announcement not found")
	ErrCapitalGiroNotFound  = apperr.New(apperr.NotFound, "CapitalGiroNotFound", "capital giro request not found")
	ErrCapitalGiroFinal     = apperr.New(apperr.StateConflict, "CapitalGiroFinal", "request has already been decided")
	ErrPaymentNotStarted    = apperr.New(apperr.StateConflict, "PaymentNotStarted", "no payment has been created for this submission")
)

// notFound maps gorm.ErrRecordNotFound to nf and anything else to an internal error.
func notFound(err error, nf *apperr.Error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nf
	}
	return apperr.Internal(err)
}
