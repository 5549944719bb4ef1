// internal/contract/contract_test.go
package contract

import (
	"errors"
	"strings"
	"testing"
	"time"

	"lending-workers/internal/assessment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock() time.Time { return time.UnixMilli(1_700_000_000_000) }

func TestMessages(t *testing.T) {
	s := New(1005)

	assert.Equal(t, "Hello, Farida! Welcome to Afghan Community Lending Platform", s.Hello("Farida"))
	assert.Contains(t, s.PoolStats(), "23 active loans")
	assert.Equal(t, "Loan request submitted for Agriculture in Afghanistan. Awaiting AI assessment...",
		s.RequestLoan(500, "Agriculture"))
	assert.Contains(t, s.LendingInfo(), "94% unbanked")
}

func TestAssessLoan_Threshold(t *testing.T) {
	s := New(1005)

	assert.Contains(t, s.AssessLoan(651), "Loan approved")
	assert.Contains(t, s.AssessLoan(650), "Assessment complete")
	assert.Contains(t, s.AssessLoan(0), "Assessment complete")
}

func TestCall_Receipt(t *testing.T) {
	s := New(1005, WithClock(fixedClock), WithSource(assessment.NewSeededSource(1, 2)))

	r, err := s.Call(MethodAssessLoan, Args{CreditScore: 700})
	require.NoError(t, err)

	assert.True(t, r.Success)
	assert.Equal(t, "ALG_LOYW3V28", r.TxID)
	assert.GreaterOrEqual(t, r.BlockNumber, 8500)
	assert.Less(t, r.BlockNumber, 9500)
	assert.Equal(t, 1005, r.AppIndex)
	assert.Equal(t, MethodAssessLoan, r.Method)
	assert.Equal(t, 700, r.Args.CreditScore)
	assert.Contains(t, r.Message, "Loan approved")
}

func TestCall_AllMethods(t *testing.T) {
	s := New(7)
	for _, m := range []string{MethodHello, MethodPoolStats, MethodRequestLoan, MethodAssessLoan, MethodLendingInfo} {
		r, err := s.Call(m, Args{Name: "x", Purpose: "Education"})
		require.NoError(t, err, m)
		assert.NotEmpty(t, r.Message, m)
		assert.True(t, strings.HasPrefix(r.TxID, "ALG_"), m)
	}
}

func TestCall_UnknownMethod(t *testing.T) {
	_, err := New(1005).Call("withdrawAll", Args{})

	var unknown *UnknownMethodError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "withdrawAll", unknown.Method)
}
