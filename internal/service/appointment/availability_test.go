package appointment

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jwalitptl/medconnect-api/internal/model"
)

func testDoctor() *model.Doctor {
	return &model.Doctor{
		Base:       model.Base{ID: "doc-1"},
		FixedSlots: []string{"10:00", "12:00", "14:00", "16:00"},
		IsActive:   true,
		Available:  true,
	}
}

func TestComputeAvailability(t *testing.T) {
	doc := testDoctor()
	doc.BookedSlots = []model.BookedSlot{
		{Date: "2024-06-01", Time: "14:00"},
		{Date: "2024-06-01", Time: "10:00"},
		{Date: "2024-06-02", Time: "12:00"},
	}

	status := ComputeAvailability(doc, "2024-06-01")

	assert.Equal(t, []string{"12:00", "16:00"}, status.AvailableSlots)
	assert.Equal(t, []string{"14:00", "10:00"}, status.BookedSlots)
	assert.Equal(t, 4, status.TotalSlots)
	assert.Equal(t, 2, status.BookedCount)
	assert.True(t, status.Available)
	assert.False(t, status.IsFullyBooked)
	assert.Empty(t, status.Reason)
}

func TestComputeAvailabilityPartitionsFixedSlots(t *testing.T) {
	doc := testDoctor()
	doc.BookedSlots = []model.BookedSlot{{Date: "2024-06-01", Time: "12:00"}, {Date: "2024-06-01", Time: "16:00"}}

	status := ComputeAvailability(doc, "2024-06-01")

	union := append(append([]string{}, status.AvailableSlots...), status.BookedSlots...)
	assert.ElementsMatch(t, doc.FixedSlots, union)
	for _, a := range status.AvailableSlots {
		assert.NotContains(t, status.BookedSlots, a)
	}
}

func TestComputeAvailabilityFullyBooked(t *testing.T) {
	doc := testDoctor()
	for _, slot := range doc.FixedSlots {
		doc.BookedSlots = append(doc.BookedSlots, model.BookedSlot{Date: "2024-06-01", Time: slot})
	}

	status := ComputeAvailability(doc, "2024-06-01")

	assert.Empty(t, status.AvailableSlots)
	assert.True(t, status.IsFullyBooked)
	assert.False(t, status.Available)
	assert.Equal(t, reasonFullyBooked, status.Reason)
}

func TestComputeAvailabilityInactiveDoctor(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*model.Doctor)
		reason string
	}{
		{"inactive", func(d *model.Doctor) { d.IsActive = false }, reasonInactive},
		{"not accepting", func(d *model.Doctor) { d.Available = false }, reasonUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := testDoctor()
			tt.mutate(doc)

			status := ComputeAvailability(doc, "2024-06-01")

			assert.NotNil(t, status.AvailableSlots)
			assert.Empty(t, status.AvailableSlots)
			assert.False(t, status.Available)
			assert.False(t, status.IsFullyBooked)
			assert.Equal(t, tt.reason, status.Reason)
		})
	}
}

func TestComputeAvailabilityOtherDateUntouched(t *testing.T) {
	doc := testDoctor()
	doc.BookedSlots = []model.BookedSlot{{Date: "2024-06-02", Time: "10:00"}}

	status := ComputeAvailability(doc, "2024-06-01")

	assert.Equal(t, doc.FixedSlots, status.AvailableSlots)
	assert.Empty(t, status.BookedSlots)
}
