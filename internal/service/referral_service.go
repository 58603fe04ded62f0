package service

import (
	"hubln/internal/apperr"
	"hubln/internal/domain"
	"hubln/internal/repository"

	"github.com/shopspring/decimal"
)

// ReferralService exposes a user's one-level referral network.
type ReferralService struct {
	users       *repository.UserRepository
	referrals   *repository.ReferralRepository
	commissions *repository.CommissionRepository
	pricing     *PricingService
}

func NewReferralService(
	users *repository.UserRepository,
	referrals *repository.ReferralRepository,
	commissions *repository.CommissionRepository,
	pricing *PricingService,
) *ReferralService {
	return &ReferralService{users: users, referrals: referrals, commissions: commissions, pricing: pricing}
}

type ReferrerSummary struct {
	ID           uint   `json:"id"`
	Name         string `json:"name"`
	ReferralCode string `json:"referral_code"`
}

type ReferralNetwork struct {
	ReferralCode       string                    `json:"referral_code"`
	ReferredBy         *ReferrerSummary          `json:"referred_by"`
	Referrals          []repository.ReferredUser `json:"referrals"`
	TotalReferrals     int64                     `json:"total_referrals"`
	CommissionsPending decimal.Decimal           `json:"commissions_pending"`
	CommissionsPaidOut decimal.Decimal           `json:"commissions_withdrawn"`
}

func (s *ReferralService) GetMyReferralNetwork(userID uint, page, limit int) (*ReferralNetwork, error) {
	me, err := s.users.GetByID(userID)
	if err != nil {
		return nil, notFound(err, ErrUserNotFound)
	}
	list, total, err := s.referrals.ListReferredBy(me.ReferralCode, limit, (page-1)*limit)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	pending, err := s.commissions.SumByStatus(userID, domain.CommissionPending)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	withdrawn, err := s.commissions.SumByStatus(userID, domain.CommissionWithdrawn)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	net := &ReferralNetwork{
		ReferralCode:       me.ReferralCode,
		Referrals:          list,
		TotalReferrals:     total,
		CommissionsPending: roundMoney(pending),
		CommissionsPaidOut: roundMoney(withdrawn),
	}
	ref, err := s.pricing.Referrer(me)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if ref != nil {
		net.ReferredBy = &ReferrerSummary{ID: ref.ID, Name: ref.Name, ReferralCode: ref.ReferralCode}
	}
	return net, nil
}
