package coupon

import (
	"context"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCouponRepo struct {
	coupon   *Coupon
	err      error
	gotCode  string
	gotCalls int
}

func (m *mockCouponRepo) FindByCode(_ context.Context, code string) (*Coupon, error) {
	m.gotCode = code
	m.gotCalls++
	return m.coupon, m.err
}

func TestRepoValidator_Validate(t *testing.T) {
	fixedNow := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	pastTime := fixedNow.Add(-24 * time.Hour)
	futureTime := fixedNow.Add(24 * time.Hour)

	tests := []struct {
		name       string
		repo       *mockCouponRepo
		code       string
		want       Result
		wantErr    bool
	}{
		{
			name: "active coupon without expiry is applicable",
			repo: &mockCouponRepo{coupon: &Coupon{
				Code:            "ALUNO10",
				DiscountPercent: 10,
				Active:          true,
			}},
			code: "ALUNO10",
			want: Result{Applicable: true, DiscountPercent: 10, Code: "ALUNO10", Reason: ReasonValid},
		},
		{
			name: "active coupon before expiry is applicable",
			repo: &mockCouponRepo{coupon: &Coupon{
				Code:            "VOLTA15",
				DiscountPercent: 15,
				Active:          true,
				ValidUntil:      &futureTime,
			}},
			code: "VOLTA15",
			want: Result{Applicable: true, DiscountPercent: 15, Code: "VOLTA15", Reason: ReasonValid},
		},
		{
			name: "unknown code",
			repo: &mockCouponRepo{err: ErrNotFound},
			code: "BOGUS",
			want: Result{Code: "BOGUS", Reason: ReasonNotFound},
		},
		{
			name: "inactive coupon",
			repo: &mockCouponRepo{coupon: &Coupon{
				Code:            "DESATIVADO",
				DiscountPercent: 20,
				Active:          false,
			}},
			code: "DESATIVADO",
			want: Result{Code: "DESATIVADO", Reason: ReasonInactive},
		},
		{
			name: "expired coupon",
			repo: &mockCouponRepo{coupon: &Coupon{
				Code:            "VENCIDO",
				DiscountPercent: 10,
				Active:          true,
				ValidUntil:      &pastTime,
			}},
			code: "VENCIDO",
			want: Result{Code: "VENCIDO", Reason: ReasonExpired},
		},
		{
			name: "expiry exactly at now counts as expired",
			repo: &mockCouponRepo{coupon: &Coupon{
				Code:            "AGORA",
				DiscountPercent: 10,
				Active:          true,
				ValidUntil:      &fixedNow,
			}},
			code: "AGORA",
			want: Result{Code: "AGORA", Reason: ReasonExpired},
		},
		{
			name:    "storage failure propagates",
			repo:    &mockCouponRepo{err: errors.New("connection reset")},
			code:    "ALUNO10",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewRepoValidator(tt.repo)

			got, err := v.Validate(context.Background(), tt.code, fixedNow)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRepoValidator_PassesCodeThrough(t *testing.T) {
	// Case normalization is the repository's job (lookup is case-insensitive
	// in SQL); the validator must not mangle the code.
	repo := &mockCouponRepo{coupon: &Coupon{Code: "ALUNO10", DiscountPercent: 10, Active: true}}
	v := NewRepoValidator(repo)

	got, err := v.Validate(context.Background(), "aluno10", time.Now())
	require.NoError(t, err)
	assert.Equal(t, "aluno10", repo.gotCode)
	assert.Equal(t, "ALUNO10", got.Code, "result carries the canonical stored code")
}
