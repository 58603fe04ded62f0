package service

import (
	"testing"

	"hubln/internal/domain"
)

func TestCalculateStatus(t *testing.T) {
	const (
		ap = domain.StatusApproved
		rj = domain.StatusRejected
		cn = domain.StatusCancelled
		pr = domain.StatusProcessing
		pe = domain.StatusPending
	)
	cases := []struct {
		name string
		in   []string
		want string
	}{
		{"empty", nil, pe},
		{"uniform", []string{rj, rj}, rj},
		{"majority", []string{pe, ap, ap}, ap},
		{"majority over priority", []string{ap, pe, pe}, pe},
		{"tie prefers approved", []string{rj, ap}, ap},
		{"tie prefers rejected over cancelled", []string{cn, rj}, rj},
		{"tie prefers processing over pending", []string{pe, pr, pe, pr}, pr},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := CalculateStatus(tc.in); got != tc.want {
				t.Fatalf("CalculateStatus(%v) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
