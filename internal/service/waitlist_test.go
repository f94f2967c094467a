package service

import (
	"context"
	"testing"

	"github.com/Eursukkul/event-registration/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWaitlistTransition_RejectsIllegalMoves(t *testing.T) {
	store := newFakeStore()
	w := waitlist{regRepo: fakeRegRepo{s: store}}

	tests := []struct {
		from, to models.RegistrationStatus
	}{
		{models.StatusConfirmed, models.StatusWaitlisted},
		{models.StatusCancelled, models.StatusConfirmed},
		{models.StatusCancelled, models.StatusWaitlisted},
		{models.StatusCancelled, models.StatusCancelled},
	}
	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			reg := &models.Registration{EventID: 1, UserID: 1, Status: tt.from, RegisteredAt: baseTime}
			require.NoError(t, fakeRegRepo{s: store}.Create(context.Background(), nil, reg))

			err := w.transition(context.Background(), nil, reg, tt.to, baseTime)

			assert.ErrorIs(t, err, ErrInvalidStateTransition)
			assert.Equal(t, KindInvariant, KindOf(err))
			assert.Equal(t, tt.from, store.registration(reg.ID).Status)

			delete(store.regs, reg.ID)
		})
	}
}

func TestWaitlistPromote_EmptyQueue(t *testing.T) {
	store := newFakeStore()
	w := waitlist{regRepo: fakeRegRepo{s: store}}

	promoted, err := w.promote(context.Background(), nil, 1, 3)

	assert.NoError(t, err)
	assert.Empty(t, promoted)
}
