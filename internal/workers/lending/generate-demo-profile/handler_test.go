// internal/workers/lending/generate-demo-profile/handler_test.go
package generatedemoprofile

import (
	"context"
	"testing"
	"time"

	"lending-workers/internal/common/errors"
	"lending-workers/internal/common/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_Execute_Ranges(t *testing.T) {
	h := NewHandler(LoadConfig(), logger.NewNoOpLogger())

	for i := 0; i < 200; i++ {
		out, err := h.Execute(context.Background(), &Input{})
		require.NoError(t, err)

		p := out.Profile
		assert.GreaterOrEqual(t, p.PhoneActivity.AccountAge, 120.0)
		assert.Less(t, p.PhoneActivity.AccountAge, 620.0)
		assert.GreaterOrEqual(t, p.PhoneActivity.PaymentFrequency, 5)
		assert.Less(t, p.PhoneActivity.PaymentFrequency, 25)
		assert.GreaterOrEqual(t, p.SocialFactors.CommunityEndorsements, 1)
		assert.LessOrEqual(t, p.SocialFactors.CommunityEndorsements, 4)
		assert.GreaterOrEqual(t, p.EconomicIndicators.EstimatedIncome, 200.0)
		assert.Less(t, p.EconomicIndicators.EstimatedIncome, 600.0)
	}
}

func TestHandler_Execute_SeedIsReproducible(t *testing.T) {
	h := NewHandler(LoadConfig(), logger.NewNoOpLogger())
	seed := uint64(42)

	a, err := h.Execute(context.Background(), &Input{Seed: &seed})
	require.NoError(t, err)
	b, err := h.Execute(context.Background(), &Input{Seed: &seed})
	require.NoError(t, err)

	assert.Equal(t, a.Profile, b.Profile)

	_, err = time.Parse(time.RFC3339, a.GeneratedAt)
	assert.NoError(t, err)
}

func TestHandler_Execute_DeadlinePassed(t *testing.T) {
	h := NewHandler(LoadConfig(), logger.NewNoOpLogger())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	out, err := h.Execute(ctx, &Input{})
	require.Error(t, err)
	assert.Nil(t, out)

	stdErr := errors.Normalize(err)
	assert.Equal(t, errors.ErrCodeAssessmentTimeout, stdErr.Code)
	assert.True(t, stdErr.Retryable)
}
