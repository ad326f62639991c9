package reminder

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/medconnect-api/internal/model"
	"github.com/jwalitptl/medconnect-api/internal/repository/memory"
	apperrors "github.com/jwalitptl/medconnect-api/pkg/errors"
)

func TestReminders(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.NewReminderRepository())

	r, err := svc.Create(ctx, "pat-1", model.CreateReminderRequest{MedicineName: " Metformin ", Dosage: "500mg", Time: "08:00"})
	require.NoError(t, err)
	assert.Equal(t, "Metformin", r.MedicineName)

	list, err := svc.List(ctx, "pat-1")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	err = svc.Delete(ctx, "pat-2", r.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrNotFound), "other patients cannot delete")

	require.NoError(t, svc.Delete(ctx, "pat-1", r.ID))
	list, err = svc.List(ctx, "pat-1")
	require.NoError(t, err)
	assert.Empty(t, list)
}
