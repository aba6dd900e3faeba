package guard

import (
	"context"
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct {
	err   error
	calls int
}

func (f *fakePinger) Ping(context.Context) error {
	f.calls++
	return f.err
}

func TestCheck(t *testing.T) {
	down := errors.New("connection refused")

	tests := []struct {
		name       string
		owner      string
		db         Pinger
		req        Requirements
		subj       Subject
		wantReason Reason
		wantErr    error
		wantMiss   []int64
	}{
		{
			name: "no requirements passes",
			subj: Subject{UserID: "u1"},
		},
		{
			name:       "owner only rejects non-owner",
			owner:      "owner",
			req:        Requirements{OwnerOnly: true},
			subj:       Subject{UserID: "u1"},
			wantReason: ReasonOwnerOnly,
			wantErr:    ErrOwnerOnly,
		},
		{
			name:  "owner only passes owner",
			owner: "owner",
			req:   Requirements{OwnerOnly: true},
			subj:  Subject{UserID: "owner"},
		},
		{
			name:       "owner only with no configured owner rejects everyone",
			req:        Requirements{OwnerOnly: true},
			subj:       Subject{UserID: ""},
			wantReason: ReasonOwnerOnly,
			wantErr:    ErrOwnerOnly,
		},
		{
			name:  "owner check precedes permission checks",
			owner: "owner",
			req: Requirements{
				OwnerOnly: true,
				User:      []int64{discordgo.PermissionBanMembers},
			},
			subj:       Subject{UserID: "u1", UserPermissions: discordgo.PermissionBanMembers},
			wantReason: ReasonOwnerOnly,
			wantErr:    ErrOwnerOnly,
		},
		{
			name:       "db required without pinger",
			req:        Requirements{UsesDB: true},
			wantReason: ReasonDependencyUnavailable,
			wantErr:    ErrDependencyUnavailable,
		},
		{
			name:       "db required and down",
			db:         &fakePinger{err: down},
			req:        Requirements{UsesDB: true},
			wantReason: ReasonDependencyUnavailable,
			wantErr:    down,
		},
		{
			name: "db required and up",
			db:   &fakePinger{},
			req:  Requirements{UsesDB: true},
		},
		{
			name:       "user lacks ban members",
			req:        Requirements{User: []int64{discordgo.PermissionBanMembers}},
			subj:       Subject{UserPermissions: discordgo.PermissionKickMembers},
			wantReason: ReasonUserPermissions,
			wantErr:    ErrMissingUserPermissions,
			wantMiss:   []int64{discordgo.PermissionBanMembers},
		},
		{
			name: "user has exactly ban members",
			req:  Requirements{User: []int64{discordgo.PermissionBanMembers}},
			subj: Subject{UserPermissions: discordgo.PermissionBanMembers},
		},
		{
			name: "administrator covers user requirements",
			req:  Requirements{User: []int64{discordgo.PermissionBanMembers, discordgo.PermissionManageRoles}},
			subj: Subject{UserPermissions: discordgo.PermissionAdministrator},
		},
		{
			name:       "bot lacks one of two",
			req:        Requirements{Bot: []int64{discordgo.PermissionSendMessages, discordgo.PermissionManageRoles}},
			subj:       Subject{BotPermissions: discordgo.PermissionSendMessages},
			wantReason: ReasonBotPermissions,
			wantErr:    ErrMissingBotPermissions,
			wantMiss:   []int64{discordgo.PermissionManageRoles},
		},
		{
			name: "user check precedes bot check",
			req: Requirements{
				User: []int64{discordgo.PermissionManageRoles},
				Bot:  []int64{discordgo.PermissionManageRoles},
			},
			wantReason: ReasonUserPermissions,
			wantErr:    ErrMissingUserPermissions,
			wantMiss:   []int64{discordgo.PermissionManageRoles},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &Authorizer{OwnerID: tt.owner, DB: tt.db}
			err := a.Check(context.Background(), tt.req, tt.subj)

			if tt.wantReason == 0 {
				assert.NoError(t, err)
				return
			}

			var rej *Rejection
			require.ErrorAs(t, err, &rej)
			assert.Equal(t, tt.wantReason, rej.Reason)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantMiss, rej.Missing)
		})
	}
}

func TestCheckSkipsPingWhenNotRequired(t *testing.T) {
	p := &fakePinger{err: errors.New("down")}
	a := &Authorizer{DB: p}

	require.NoError(t, a.Check(context.Background(), Requirements{}, Subject{}))
	assert.Zero(t, p.calls)
}

func TestRejectionMessageNamesPermissions(t *testing.T) {
	rej := &Rejection{Reason: ReasonUserPermissions, Missing: []int64{discordgo.PermissionBanMembers, 1 << 60}}

	assert.Contains(t, rej.Message(), "Ban Members")
	assert.Contains(t, rej.Message(), "0x1000000000000000")
	assert.Contains(t, rej.Error(), "Ban Members")
}

func TestNormalize(t *testing.T) {
	got := Normalize([]int64{
		discordgo.PermissionBanMembers,
		0,
		discordgo.PermissionKickMembers,
		discordgo.PermissionBanMembers,
	})
	assert.Equal(t, []int64{discordgo.PermissionBanMembers, discordgo.PermissionKickMembers}, got)
}
