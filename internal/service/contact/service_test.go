package contact

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/medconnect-api/internal/model"
	"github.com/jwalitptl/medconnect-api/internal/repository/memory"
	apperrors "github.com/jwalitptl/medconnect-api/pkg/errors"
	"github.com/jwalitptl/medconnect-api/pkg/logger"
)

type contactMailer struct {
	received chan *model.Contact
}

func (m *contactMailer) SendPasswordReset(context.Context, string, string) error { return nil }
func (m *contactMailer) SendWelcome(context.Context, string, string) error { return nil }
func (m *contactMailer) SendAppointmentBooked(context.Context, *model.Appointment) error {
	return nil
}
func (m *contactMailer) SendAppointmentCancelled(context.Context, *model.Appointment) error {
	return nil
}
func (m *contactMailer) SendCustom(context.Context, string, string, string) error { return nil }

func (m *contactMailer) SendContactReceived(_ context.Context, c *model.Contact) error {
	m.received <- c
	return nil
}

func TestSubmitStoresAndForwards(t *testing.T) {
	repos := memory.New()
	mailer := &contactMailer{received: make(chan *model.Contact, 1)}
	svc := NewService(repos.Contacts, mailer, logger.Nop())
	ctx := context.Background()

	c, err := svc.Submit(ctx, model.CreateContactRequest{
		Name:    "  Meera ",
		Email:   "Meera@Example.com",
		Subject: "Billing",
		Message: "Where is my receipt?",
	})
	require.NoError(t, err)
	assert.Equal(t, "Meera", c.Name)
	assert.Equal(t, "meera@example.com", c.Email)

	select {
	case forwarded := <-mailer.received:
		assert.Equal(t, c.ID, forwarded.ID)
	case <-time.After(2 * time.Second):
		t.Fatal("contact message was not forwarded")
	}

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	require.NoError(t, svc.Delete(ctx, c.ID))
	err = svc.Delete(ctx, uuid.NewString())
	assert.True(t, apperrors.HasCode(err, apperrors.ErrNotFound))
}
