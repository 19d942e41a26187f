package ticketing

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strconv"
	"sync"
	"testing"

	"github.com/Jacobbrewer1/ticketdesk/pkg/dataaccess"
	"github.com/Jacobbrewer1/ticketdesk/pkg/dataaccess/connection"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"
)

const (
	testGuildID   = "1000"
	testChannelID = "2000"
	testUserID    = "3000"
)

type permissionCall struct {
	ChannelID  string
	TargetID   string
	TargetType discordgo.PermissionOverwriteType
	Allow      int64
	Deny       int64
}

type sentFile struct {
	Name    string
	Content string
}

type sentMessage struct {
	ChannelID string
	Msg       *discordgo.MessageSend
	Files     []sentFile
}

// fakePlatform records every call made against it.
type fakePlatform struct {
	mu sync.Mutex

	nextID      int
	channels    map[string]*discordgo.Channel
	roles       map[string]bool
	members     map[string]bool
	history     map[string][]*discordgo.Message
	permissions []permissionCall
	removed     []string
	sent        []sentMessage
	responses   []*discordgo.InteractionResponse
	followUps   []*discordgo.WebhookParams
	deleted     []string
	pageCalls   int

	removeErr  error
	respondErr error

	// acked holds the interactions that already got their initial response.
	acked map[*discordgo.Interaction]bool

	// sendPanic makes SendMessage panic.
	sendPanic bool
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		nextID:   5000,
		channels: make(map[string]*discordgo.Channel),
		roles:    make(map[string]bool),
		members:  make(map[string]bool),
		history:  make(map[string][]*discordgo.Message),
		acked:    make(map[*discordgo.Interaction]bool),
	}
}

func (f *fakePlatform) CreateTextChannel(guildID, name string) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.nextID++
	c := &discordgo.Channel{
		ID:      strconv.Itoa(f.nextID),
		GuildID: guildID,
		Name:    name,
		Type:    discordgo.ChannelTypeGuildText,
	}
	f.channels[c.ID] = c
	return c, nil
}

func (f *fakePlatform) Channel(channelID string) (*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	c, ok := f.channels[channelID]
	if !ok {
		return nil, fmt.Errorf("unknown channel %s", channelID)
	}
	return c, nil
}

func (f *fakePlatform) GuildChannels(guildID string) ([]*discordgo.Channel, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	channels := make([]*discordgo.Channel, 0, len(f.channels))
	for _, c := range f.channels {
		if c.GuildID == guildID {
			channels = append(channels, c)
		}
	}
	sort.Slice(channels, func(a, b int) bool { return channels[a].ID < channels[b].ID })
	return channels, nil
}

func (f *fakePlatform) DeleteChannel(channelID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.channels, channelID)
	f.deleted = append(f.deleted, channelID)
	return nil
}

func (f *fakePlatform) SetPermission(channelID, targetID string, targetType discordgo.PermissionOverwriteType, allow, deny int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.permissions = append(f.permissions, permissionCall{
		ChannelID:  channelID,
		TargetID:   targetID,
		TargetType: targetType,
		Allow:      allow,
		Deny:       deny,
	})

	if c, ok := f.channels[channelID]; ok {
		c.PermissionOverwrites = append(removeOverwrite(c.PermissionOverwrites, targetID), &discordgo.PermissionOverwrite{
			ID:    targetID,
			Type:  targetType,
			Allow: allow,
			Deny:  deny,
		})
	}
	return nil
}

func removeOverwrite(overwrites []*discordgo.PermissionOverwrite, targetID string) []*discordgo.PermissionOverwrite {
	kept := make([]*discordgo.PermissionOverwrite, 0, len(overwrites))
	for _, o := range overwrites {
		if o.ID != targetID {
			kept = append(kept, o)
		}
	}
	return kept
}

func (f *fakePlatform) RemovePermission(channelID, targetID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.removed = append(f.removed, channelID+"/"+targetID)
	if f.removeErr != nil {
		return f.removeErr
	}

	if c, ok := f.channels[channelID]; ok {
		c.PermissionOverwrites = removeOverwrite(c.PermissionOverwrites, targetID)
	}
	return nil
}

func (f *fakePlatform) ResolveGrant(_, id string) (discordgo.PermissionOverwriteType, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.roles[id] {
		return discordgo.PermissionOverwriteTypeRole, true
	}
	if f.members[id] {
		return discordgo.PermissionOverwriteTypeMember, true
	}
	return 0, false
}

func (f *fakePlatform) SendMessage(channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.sendPanic {
		panic("send failed")
	}

	sent := sentMessage{ChannelID: channelID, Msg: msg}
	for _, file := range msg.Files {
		b, err := io.ReadAll(file.Reader)
		if err != nil {
			return nil, err
		}
		sent.Files = append(sent.Files, sentFile{Name: file.Name, Content: string(b)})
	}
	f.sent = append(f.sent, sent)

	f.nextID++
	return &discordgo.Message{ID: strconv.Itoa(f.nextID), ChannelID: channelID}, nil
}

// Messages pages like the platform: at most limit messages after afterID, newest first.
func (f *fakePlatform) Messages(channelID string, limit int, afterID string) ([]*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.pageCalls++
	after, err := strconv.ParseUint(afterID, 10, 64)
	if err != nil {
		return nil, err
	}

	page := make([]*discordgo.Message, 0, limit)
	for _, m := range f.history[channelID] {
		id, _ := strconv.ParseUint(m.ID, 10, 64)
		if id > after {
			page = append(page, m)
		}
		if len(page) == limit {
			break
		}
	}

	for a, b := 0, len(page)-1; a < b; a, b = a+1, b-1 {
		page[a], page[b] = page[b], page[a]
	}
	return page, nil
}

func (f *fakePlatform) Respond(i *discordgo.Interaction, resp *discordgo.InteractionResponse) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.respondErr != nil {
		return f.respondErr
	}
	if f.acked[i] {
		return fmt.Errorf("interaction %s has already been acknowledged", i.ID)
	}
	f.acked[i] = true
	f.responses = append(f.responses, resp)
	return nil
}

func (f *fakePlatform) FollowUp(_ *discordgo.Interaction, params *discordgo.WebhookParams) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.followUps = append(f.followUps, params)
	return nil
}

func (f *fakePlatform) lastResponse(t *testing.T) *discordgo.InteractionResponse {
	t.Helper()
	require.NotEmpty(t, f.responses, "no interaction response")
	return f.responses[len(f.responses)-1]
}

func newTestStore(t *testing.T) dataaccess.Store {
	t.Helper()

	s, err := dataaccess.NewStore(context.Background(), slog.Default(), &dataaccess.StoreConfig{
		Driver:     dataaccess.DriverSQLite,
		SQLitePath: connection.MemoryPath,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func newTestService(t *testing.T, opts *Options) (*Service, *fakePlatform, dataaccess.Store) {
	t.Helper()

	p := newFakePlatform()
	store := newTestStore(t)
	if opts == nil {
		opts = DefaultOptions()
	}
	opts.HistoryRateLimit = 0
	return NewService(slog.Default(), store, p, opts), p, store
}

func testUser() *discordgo.User {
	return &discordgo.User{ID: testUserID, Username: "alice"}
}

func componentInteraction(customID string, values ...string) *discordgo.Interaction {
	return &discordgo.Interaction{
		ID:        "9000",
		Type:      discordgo.InteractionMessageComponent,
		GuildID:   testGuildID,
		ChannelID: testChannelID,
		Member:    &discordgo.Member{User: testUser()},
		Data: discordgo.MessageComponentInteractionData{
			CustomID: customID,
			Values:   values,
		},
	}
}

func commandInteraction(name string, admin bool, options ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.Interaction {
	var perms int64
	if admin {
		perms = discordgo.PermissionAdministrator
	}
	return &discordgo.Interaction{
		ID:        "9001",
		Type:      discordgo.InteractionApplicationCommand,
		GuildID:   testGuildID,
		ChannelID: testChannelID,
		Member:    &discordgo.Member{User: testUser(), Permissions: perms},
		Data: discordgo.ApplicationCommandInteractionData{
			Name:    name,
			Options: options,
		},
	}
}

func stringOption(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionString,
		Value: value,
	}
}

func roleOption(name, roleID string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{
		Name:  name,
		Type:  discordgo.ApplicationCommandOptionRole,
		Value: roleID,
	}
}
