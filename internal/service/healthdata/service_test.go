package healthdata

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/medconnect-api/internal/model"
	"github.com/jwalitptl/medconnect-api/internal/repository/memory"
	apperrors "github.com/jwalitptl/medconnect-api/pkg/errors"
)

func TestHealthData(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.NewHealthDataRepository())

	earlier := time.Now().Add(-time.Hour)
	_, err := svc.Create(ctx, "pat-1", model.CreateHealthDataRequest{Type: model.HealthWeight, Value: "70", Unit: "kg", RecordedAt: &earlier})
	require.NoError(t, err)
	_, err = svc.Create(ctx, "pat-1", model.CreateHealthDataRequest{Type: model.HealthHeartRate, Value: "72", Unit: "bpm"})
	require.NoError(t, err)
	other, err := svc.Create(ctx, "pat-2", model.CreateHealthDataRequest{Type: model.HealthSteps, Value: "9000"})
	require.NoError(t, err)

	all, err := svc.List(ctx, "pat-1", "")
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, model.HealthHeartRate, all[0].Type, "newest reading first")

	weights, err := svc.List(ctx, "pat-1", model.HealthWeight)
	require.NoError(t, err)
	assert.Len(t, weights, 1)

	_, err = svc.List(ctx, "pat-1", "mood")
	assert.True(t, apperrors.HasCode(err, apperrors.ErrBadRequest))

	future := time.Now().Add(time.Hour)
	_, err = svc.Create(ctx, "pat-1", model.CreateHealthDataRequest{Type: model.HealthWeight, Value: "1", RecordedAt: &future})
	assert.True(t, apperrors.HasCode(err, apperrors.ErrBadRequest))

	err = svc.Delete(ctx, "pat-1", other.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrNotFound))
}
