package services

import (
	"context"
	"errors"
	"testing"

	"github.com/JCHEPO/kiu/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedParticipationFixture() (*fakeEventRepo, *fakeParticipantRepo, *fakeUserRepo) {
	er := newFakeEventRepo()
	er.addEvent(&domain.Event{
		ID: "ev-1", Title: "Asado", MaxParticipants: 3,
		GenderRestriction: domain.RestrictionMixed, CreatorID: "user-1",
	})
	pr := newFakeParticipantRepo()
	pr.joined["ev-1"] = []string{"user-1"}
	ur := newFakeUserRepo()
	ur.addUser("user-1", domain.GenderMan)
	ur.addUser("user-2", domain.GenderWoman)
	ur.addUser("user-3", domain.GenderMan)
	ur.addUser("user-4", domain.GenderOther)
	return er, pr, ur
}

func TestParticipationService_Join(t *testing.T) {
	ctx := context.Background()

	t.Run("success broadcasts the refreshed snapshot", func(t *testing.T) {
		er, pr, ur := seedParticipationFixture()
		bc := &fakeBroadcaster{}
		svc := NewParticipationService(er, pr, ur, bc)

		detail, err := svc.Join(ctx, "ev-1", "user-2")
		require.NoError(t, err)
		require.NotNil(t, detail)
		assert.Equal(t, []string{"user-1", "user-2"}, pr.joined["ev-1"])
		require.Len(t, bc.eventUpdates, 1)
		assert.Equal(t, "ev-1", bc.eventUpdates[0].ID)
	})

	t.Run("already joined", func(t *testing.T) {
		er, pr, ur := seedParticipationFixture()
		svc := NewParticipationService(er, pr, ur, &fakeBroadcaster{})
		_, err := svc.Join(ctx, "ev-1", "user-1")
		require.True(t, errors.Is(err, domain.ErrAlreadyJoined))
	})

	t.Run("full event counts manual attendees too", func(t *testing.T) {
		er, pr, ur := seedParticipantFixtureNearCapacity()
		bc := &fakeBroadcaster{}
		svc := NewParticipationService(er, pr, ur, bc)
		_, err := svc.Join(ctx, "ev-1", "user-3")
		require.True(t, errors.Is(err, domain.ErrEventFull))
		assert.Empty(t, bc.eventUpdates)
	})

	t.Run("event not found", func(t *testing.T) {
		er, pr, ur := seedParticipationFixture()
		svc := NewParticipationService(er, pr, ur, &fakeBroadcaster{})
		_, err := svc.Join(ctx, "ev-missing", "user-2")
		require.True(t, errors.Is(err, domain.ErrNotFound))
	})

	genderTests := []struct {
		name        string
		restriction domain.GenderRestriction
		caller      string
		wantErr     error
	}{
		{name: "men only admits a man", restriction: domain.RestrictionMenOnly, caller: "user-3"},
		{name: "men only rejects a woman", restriction: domain.RestrictionMenOnly, caller: "user-2", wantErr: domain.ErrForbidden},
		{name: "men only rejects other", restriction: domain.RestrictionMenOnly, caller: "user-4", wantErr: domain.ErrForbidden},
		{name: "women only admits a woman", restriction: domain.RestrictionWomenOnly, caller: "user-2"},
		{name: "women only rejects a man", restriction: domain.RestrictionWomenOnly, caller: "user-3", wantErr: domain.ErrForbidden},
		{name: "mixed admits everyone", restriction: domain.RestrictionMixed, caller: "user-4"},
	}

	for _, tt := range genderTests {
		t.Run(tt.name, func(t *testing.T) {
			er, pr, ur := seedParticipationFixture()
			er.byID["ev-1"].GenderRestriction = tt.restriction
			svc := NewParticipationService(er, pr, ur, &fakeBroadcaster{})
			_, err := svc.Join(ctx, "ev-1", tt.caller)
			if tt.wantErr != nil {
				require.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
		})
	}
}

// seedParticipantFixtureNearCapacity builds a 3-seat event holding the creator,
// one joined user, and one manual attendee.
func seedParticipantFixtureNearCapacity() (*fakeEventRepo, *fakeParticipantRepo, *fakeUserRepo) {
	er, pr, ur := seedParticipationFixture()
	pr.joined["ev-1"] = []string{"user-1", "user-2"}
	pr.manual["ev-1"] = []string{"Tia Marta"}
	return er, pr, ur
}

func TestParticipationService_Leave(t *testing.T) {
	ctx := context.Background()

	t.Run("success removes and broadcasts", func(t *testing.T) {
		er, pr, ur := seedParticipationFixture()
		pr.joined["ev-1"] = []string{"user-1", "user-2"}
		bc := &fakeBroadcaster{}
		svc := NewParticipationService(er, pr, ur, bc)

		detail, err := svc.Leave(ctx, "ev-1", "user-2")
		require.NoError(t, err)
		require.NotNil(t, detail)
		assert.Equal(t, []string{"user-1"}, pr.joined["ev-1"])
		require.Len(t, bc.eventUpdates, 1)
	})

	t.Run("creator cannot leave", func(t *testing.T) {
		er, pr, ur := seedParticipationFixture()
		svc := NewParticipationService(er, pr, ur, &fakeBroadcaster{})
		_, err := svc.Leave(ctx, "ev-1", "user-1")
		require.True(t, errors.Is(err, domain.ErrCreatorCannotLeave))
	})

	t.Run("leaving without having joined is a no-op", func(t *testing.T) {
		er, pr, ur := seedParticipationFixture()
		svc := NewParticipationService(er, pr, ur, &fakeBroadcaster{})
		detail, err := svc.Leave(ctx, "ev-1", "user-2")
		require.NoError(t, err)
		require.NotNil(t, detail)
	})
}

func TestParticipationService_AddManualParticipant(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		callerID string
		attendee string
		seed     func(*fakeParticipantRepo)
		wantErr  error
	}{
		{name: "creator adds attendee", callerID: "user-1", attendee: "Tia Marta"},
		{name: "trims surrounding whitespace", callerID: "user-1", attendee: "  Tia Marta  "},
		{name: "blank name", callerID: "user-1", attendee: "   ", wantErr: domain.ErrInvalidInput},
		{name: "forbidden for non creator", callerID: "user-2", attendee: "Tia Marta", wantErr: domain.ErrForbidden},
		{
			name: "full roster", callerID: "user-1", attendee: "Tia Marta",
			seed: func(pr *fakeParticipantRepo) {
				pr.joined["ev-1"] = []string{"user-1", "user-2", "user-3"}
			},
			wantErr: domain.ErrEventFull,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			er, pr, ur := seedParticipationFixture()
			if tt.seed != nil {
				tt.seed(pr)
			}
			bc := &fakeBroadcaster{}
			svc := NewParticipationService(er, pr, ur, bc)
			_, err := svc.AddManualParticipant(ctx, "ev-1", tt.callerID, tt.attendee)
			if tt.wantErr != nil {
				require.True(t, errors.Is(err, tt.wantErr))
				assert.Empty(t, bc.eventUpdates)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, []string{"Tia Marta"}, pr.manual["ev-1"])
			require.Len(t, bc.eventUpdates, 1)
		})
	}
}

func TestParticipationService_RemoveManualParticipant(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		callerID string
		index    int
		wantErr  error
		wantLeft []string
	}{
		{name: "removes by position", callerID: "user-1", index: 0, wantLeft: []string{"Primo Juan"}},
		{name: "negative index", callerID: "user-1", index: -1, wantErr: domain.ErrInvalidIndex},
		{name: "index past the end", callerID: "user-1", index: 2, wantErr: domain.ErrInvalidIndex},
		{name: "forbidden for non creator", callerID: "user-2", index: 0, wantErr: domain.ErrForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			er, pr, ur := seedParticipationFixture()
			pr.manual["ev-1"] = []string{"Tia Marta", "Primo Juan"}
			svc := NewParticipationService(er, pr, ur, &fakeBroadcaster{})
			_, err := svc.RemoveManualParticipant(ctx, "ev-1", tt.callerID, tt.index)
			if tt.wantErr != nil {
				require.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantLeft, pr.manual["ev-1"])
		})
	}
}
