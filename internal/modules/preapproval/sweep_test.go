package preapproval

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"societyhub/internal/domain"
)

func TestScheduleExpirySweep_Disabled(t *testing.T) {
	f := setupTestService(t)
	assert.Nil(t, f.svc.ScheduleExpirySweep(context.Background(), 0))
}

func TestScheduleExpirySweep_MaterialisesExpiry(t *testing.T) {
	f := setupTestService(t)
	p := f.create(t, f.society.Resident, "2026-02-20")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stop := f.svc.ScheduleExpirySweep(ctx, 10*time.Millisecond)
	require.NotNil(t, stop)
	defer close(stop)

	require.Eventually(t, func() bool {
		stored, err := f.preApprovals.GetByID(context.Background(), p.ID)
		return err == nil && stored.Status == domain.PreApprovalExpired
	}, 2*time.Second, 10*time.Millisecond)
}
