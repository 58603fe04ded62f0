package service

import "testing"

func TestGetMyReferralNetwork(t *testing.T) {
	f := newFixture(t)
	svc := NewReferralService(f.users, f.referrals, f.commissions, f.pricing)
	product := f.product(t, "75")
	top := f.user(t, "Top", nil)
	seller := f.user(t, "Seller", top)
	f.customPrice(t, seller.ID, product.ID, "175")
	buyer := f.user(t, "Buyer", seller)
	f.user(t, "Idle", seller)
	paidCommission(t, f, seller, buyer, product, 2)

	net, err := svc.GetMyReferralNetwork(seller.ID, 1, 20)
	if err != nil {
		t.Fatalf("network: %v", err)
	}
	if net.ReferralCode != seller.ReferralCode || net.TotalReferrals != 2 || len(net.Referrals) != 2 {
		t.Fatalf("unexpected network: %+v", net)
	}
	if net.ReferredBy == nil || net.ReferredBy.ID != top.ID {
		t.Fatalf("referred by = %+v, want %d", net.ReferredBy, top.ID)
	}
	assertMoney(t, "pending", net.CommissionsPending, "200")
	assertMoney(t, "withdrawn", net.CommissionsPaidOut, "0")

	paid := map[string]int64{}
	for _, r := range net.Referrals {
		paid[r.Name] = r.PaidSubmissionsCount
	}
	if paid["Buyer"] != 1 || paid["Idle"] != 0 {
		t.Fatalf("paid submission counts = %v", paid)
	}
}
