package test

import (
	"context"
	"errors"
	"testing"

	"github.com/MrEthical07/dojoauth"
	"github.com/MrEthical07/dojoauth/guard"
	"github.com/MrEthical07/dojoauth/session"
	"github.com/stretchr/testify/require"
)

func TestRegisterThenReloadRestoresSession(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	first := s.store("laptop")
	first.Initialize(ctx)

	created, err := first.Register(ctx, dojoauth.RegisterInput{
		Name:             "Acme Sales",
		Email:            "owner@acme.io",
		Password:         "correct-horse",
		AccountKind:      session.KindCompany,
		OrganizationName: "Acme",
	})
	require.NoError(t, err)
	require.Equal(t, session.RoleCompany, created.Role)
	require.True(t, s.redis.Exists("dojo:session:laptop"))

	reloaded := s.store("laptop")
	st := reloaded.Initialize(ctx)
	require.True(t, st.Authenticated)
	require.True(t, session.Equal(created, st.Session))

	table := guard.DefaultTable()
	policy := guard.DefaultPolicy()
	require.Equal(t, guard.Render, table.Evaluate(policy, "/empresa/convites", st).Kind)
	require.Equal(t, guard.Action{Kind: guard.Redirect, Path: "/empresa"}, table.Evaluate(policy, "/login", st))

	other := s.store("desktop").Initialize(ctx)
	require.False(t, other.Authenticated, "profiles must not share a record")
}

func TestLogoutRemovesRecordForNextProcess(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	_, err := s.dir.Seed(directoryAccount("rep@acme.io"))
	require.NoError(t, err)

	st := s.store("default")
	st.Initialize(ctx)
	_, err = st.Login(ctx, "rep@acme.io", "correct-horse")
	require.NoError(t, err)
	require.NoError(t, st.Logout(ctx))
	require.False(t, s.redis.Exists("dojo:session:default"))

	next := s.store("default").Initialize(ctx)
	require.False(t, next.Authenticated)
	require.Equal(t, guard.Action{Kind: guard.Redirect, Path: "/login"},
		guard.DefaultTable().Evaluate(guard.DefaultPolicy(), "/dashboard", next))
}

func TestLoginThrottledAcrossTheWire(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	_, err := s.dir.Seed(directoryAccount("rep@acme.io"))
	require.NoError(t, err)

	st := s.store("default")
	st.Initialize(ctx)

	for i := 0; i < maxLoginAttempts; i++ {
		_, err := st.Login(ctx, "rep@acme.io", "wrong")
		require.ErrorIs(t, err, dojoauth.ErrInvalidCredentials)
	}
	_, err = st.Login(ctx, "rep@acme.io", "correct-horse")
	require.ErrorIs(t, err, dojoauth.ErrAuthRateLimited)

	state := st.State()
	require.False(t, state.Authenticated)
	require.False(t, state.Loading)
	require.False(t, s.redis.Exists("dojo:session:default"))
}

func TestInviteReachesDirectory(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	_, err := s.dir.Seed(directoryAccount("taken@acme.io"))
	require.NoError(t, err)

	st := s.store("default")
	st.Initialize(ctx)
	owner, err := st.Register(ctx, dojoauth.RegisterInput{
		Name: "Owner", Email: "owner@acme.io", Password: "correct-horse",
		AccountKind: session.KindCompany, OrganizationName: "Acme",
	})
	require.NoError(t, err)

	id, err := st.SendInvite(ctx, "New.Rep@Acme.io", session.RoleManager, "tp-1")
	require.NoError(t, err)

	invites := s.dir.Invites(owner.UserID)
	require.Len(t, invites, 1)
	require.Equal(t, id, invites[0].ID)
	require.Equal(t, "new.rep@acme.io", invites[0].Email)
	require.Equal(t, session.StatusPending, invites[0].Status)
	require.Equal(t, []string{"tp-1"}, invites[0].TrainingPathIDs)

	_, err = st.SendInvite(ctx, "taken@acme.io", session.RoleCollaborator)
	require.ErrorIs(t, err, dojoauth.ErrInviteDispatchFailed)
	require.ErrorIs(t, err, dojoauth.ErrAccountExists)
	require.False(t, dojoauth.Retryable(err))

	require.Equal(t, owner.UserID, st.State().Session.UserID, "invites never change the session")
}

func TestCorruptRecordStartsSignedOut(t *testing.T) {
	s := newStack(t)
	ctx := context.Background()

	require.NoError(t, s.redis.Set("dojo:session:default", `{"v":1,"session":{"id":""}}`))

	st := s.store("default")
	state := st.Initialize(ctx)
	require.True(t, state.Ready)
	require.False(t, state.Authenticated)
	require.Equal(t, uint64(1), st.MetricsSnapshot().Counters[dojoauth.MetricStorageCorrupt])

	_, err := st.Login(ctx, "nobody@acme.io", "pw")
	require.True(t, errors.Is(err, dojoauth.ErrInvalidCredentials))
}
