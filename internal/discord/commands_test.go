package discord

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/C-EO/codebot/internal/config"
	"github.com/C-EO/codebot/pkg/retrylimit"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	remote    []*discordgo.ApplicationCommand
	created   []string
	deleted   []string
	failOn    string
	throttled int
}

func (f *fakeAPI) api() commandAPI {
	return commandAPI{
		list: func(_, _ string) ([]*discordgo.ApplicationCommand, error) {
			return f.remote, nil
		},
		create: func(_, _ string, c *discordgo.ApplicationCommand) (*discordgo.ApplicationCommand, error) {
			if c.Name == f.failOn {
				return nil, errors.New("boom")
			}
			if f.throttled > 0 {
				f.throttled--
				return nil, &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusServiceUnavailable}}
			}
			f.created = append(f.created, c.Name)
			return c, nil
		},
		remove: func(_, _, id string) error {
			f.deleted = append(f.deleted, id)
			return nil
		},
	}
}

func newTestSyncer(t *testing.T, api *fakeAPI) *commandSyncer {
	s := newCommandSyncer(api.api(), t.TempDir(), zerolog.Nop())
	s.limiter = retrylimit.Unlimited()
	s.retry.InitialDelay = time.Millisecond
	return s
}

func appCmd(name, desc string, opts ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: name, Description: desc, Options: opts}
}

func TestHashCommandIgnoresOptionOrder(t *testing.T) {
	a := &discordgo.ApplicationCommandOption{Name: "a", Type: discordgo.ApplicationCommandOptionString}
	b := &discordgo.ApplicationCommandOption{Name: "b", Type: discordgo.ApplicationCommandOptionInteger}

	assert.Equal(t, hashCommand(appCmd("x", "d", a, b)), hashCommand(appCmd("x", "d", b, a)))
	assert.NotEqual(t, hashCommand(appCmd("x", "d", a)), hashCommand(appCmd("x", "changed", a)))
}

func TestSyncRegistersMissingAndDeletesObsolete(t *testing.T) {
	api := &fakeAPI{remote: []*discordgo.ApplicationCommand{{ID: "old-id", Name: "old"}}}
	s := newTestSyncer(t, api)

	err := s.sync(context.Background(), "app", "g1", []*discordgo.ApplicationCommand{appCmd("ping", "Ping")})
	require.NoError(t, err)

	assert.Equal(t, []string{"ping"}, api.created)
	assert.Equal(t, []string{"old-id"}, api.deleted)

	hashes, err := s.cache.load("g1")
	require.NoError(t, err)
	assert.Contains(t, hashes, "ping")
	assert.NotContains(t, hashes, "old")
}

func TestSyncSkipsUnchanged(t *testing.T) {
	ping := appCmd("ping", "Ping")
	api := &fakeAPI{}
	s := newTestSyncer(t, api)
	ctx := context.Background()

	require.NoError(t, s.sync(ctx, "app", "g1", []*discordgo.ApplicationCommand{ping}))
	api.remote = []*discordgo.ApplicationCommand{{ID: "1", Name: "ping"}}
	api.created = nil

	require.NoError(t, s.sync(ctx, "app", "g1", []*discordgo.ApplicationCommand{ping}))
	assert.Empty(t, api.created)

	require.NoError(t, s.sync(ctx, "app", "g1", []*discordgo.ApplicationCommand{appCmd("ping", "Pong")}))
	assert.Equal(t, []string{"ping"}, api.created)
}

func TestSyncKeepsGoingAfterCreateFailure(t *testing.T) {
	api := &fakeAPI{failOn: "bad"}
	s := newTestSyncer(t, api)

	err := s.sync(context.Background(), "app", "g1", []*discordgo.ApplicationCommand{appCmd("bad", "x"), appCmd("good", "y")})
	require.NoError(t, err)
	assert.Equal(t, []string{"good"}, api.created)

	hashes, err := s.cache.load("g1")
	require.NoError(t, err)
	assert.NotContains(t, hashes, "bad")
}

func TestHashCacheMissingFile(t *testing.T) {
	hashes, err := hashCache{dir: t.TempDir()}.load("nope")
	require.NoError(t, err)
	assert.Empty(t, hashes)
}

func TestPublishSystemEventDoesNotBlock(t *testing.T) {
	for range cap(systemEventBus) {
		PublishSystemEvent(SystemEvent{Type: SystemEventRefreshCommands})
	}
	assert.False(t, PublishSystemEvent(SystemEvent{Type: SystemEventRefreshCommands}))
	for len(systemEventBus) > 0 {
		<-systemEventBus
	}
}

func TestSyncRetriesServerErrors(t *testing.T) {
	api := &fakeAPI{throttled: 2}
	s := newTestSyncer(t, api)

	require.NoError(t, s.sync(context.Background(), "app", "g1", []*discordgo.ApplicationCommand{appCmd("ping", "Ping")}))
	assert.Equal(t, []string{"ping"}, api.created)
}

func TestTransientRESTError(t *testing.T) {
	rest := func(code int) error {
		return &discordgo.RESTError{Response: &http.Response{StatusCode: code}}
	}

	for code, want := range map[int]bool{
		http.StatusTooManyRequests: true,
		http.StatusBadGateway:      true,
		http.StatusBadRequest:      false,
		http.StatusForbidden:       false,
	} {
		got, _ := transientRESTError(rest(code))
		assert.Equal(t, want, got, "status %d", code)
	}

	got, _ := transientRESTError(errors.New("plain"))
	assert.False(t, got)
}

func TestBlacklist(t *testing.T) {
	b := &Bot{cfg: &config.Config{DiscordGuildBlacklist: []string{"bad"}}}
	assert.True(t, b.isGuildBlacklisted("bad"))
	assert.False(t, b.isGuildBlacklisted("good"))
}

func TestSyncGuildSkippedWhenDisabled(t *testing.T) {
	b := &Bot{cfg: &config.Config{}, log: zerolog.Nop(), synced: map[string]bool{}}
	assert.NoError(t, b.syncGuild("g1", true))
	assert.Empty(t, b.synced)
}
