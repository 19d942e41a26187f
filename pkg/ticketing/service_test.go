package ticketing

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/Jacobbrewer1/ticketdesk/pkg/entities"
	"github.com/Jacobbrewer1/ticketdesk/pkg/messages"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"
)

func seedScenario(t *testing.T, svc *Service) {
	t.Helper()

	login, payment := "login", "payment"
	for _, c := range []*entities.Category{
		{Main: "billing"},
		{Main: "tech", Sub: &login},
		{Main: "tech", Sub: &payment},
	} {
		require.NoError(t, svc.store.AddCategory(context.Background(), c))
	}
}

func TestSelectMain_NoCategories(t *testing.T) {
	svc, p, _ := newTestService(t, nil)

	svc.HandleInteraction(componentInteraction(CustomIDMainSelect, NoCategoriesValue))

	resp := p.lastResponse(t)
	require.Equal(t, messages.NoCategoriesNotice, resp.Data.Content)
	require.Equal(t, discordgo.MessageFlagsEphemeral, resp.Data.Flags)
	require.Empty(t, p.channels)
}

func TestMainSelectMenu(t *testing.T) {
	svc, _, _ := newTestService(t, nil)

	menu, err := svc.mainSelectMenu(context.Background())
	require.NoError(t, err)
	require.Equal(t, CustomIDMainSelect, menu.CustomID)
	require.Equal(t, messages.PanelPlaceholder, menu.Placeholder)
	require.Equal(t, []discordgo.SelectMenuOption{{Label: messages.NoCategoriesLabel, Value: NoCategoriesValue}}, menu.Options)

	seedScenario(t, svc)
	menu, err = svc.mainSelectMenu(context.Background())
	require.NoError(t, err)
	require.Len(t, menu.Options, 2)
	require.Equal(t, "billing", menu.Options[0].Value)
	require.Equal(t, "tech", menu.Options[1].Value)
}

func TestSelectMain_Leaf(t *testing.T) {
	svc, p, _ := newTestService(t, nil)
	seedScenario(t, svc)

	svc.HandleInteraction(componentInteraction(CustomIDMainSelect, "billing"))

	require.Len(t, p.channels, 1)
	channel := p.channels["5001"]
	require.NotNil(t, channel)
	require.Equal(t, "ticket-billing-alice", channel.Name)

	// Welcome message.
	require.Len(t, p.sent, 1)
	welcome := p.sent[0]
	require.Equal(t, channel.ID, welcome.ChannelID)
	require.Equal(t, "<@"+testUserID+">님, 문의가 접수되었습니다.", welcome.Msg.Content)
	require.Equal(t, messages.TicketWelcomeTitle, welcome.Msg.Embeds[0].Title)
	require.Equal(t, "**billing** 관련 문의입니다.\n관리자가 확인 전까지 문의 내용을 남겨주세요.", welcome.Msg.Embeds[0].Description)
	require.Equal(t, colorGreen, welcome.Msg.Embeds[0].Color)

	button := welcome.Msg.Components[0].(discordgo.ActionsRow).Components[0].(discordgo.Button)
	require.Equal(t, CustomIDClose, button.CustomID)
	require.Equal(t, discordgo.DangerButton, button.Style)
	require.Equal(t, messages.CloseButtonLabel, button.Label)

	resp := p.lastResponse(t)
	require.Equal(t, "티켓이 생성되었습니다: <#5001>", resp.Data.Content)
	require.Equal(t, discordgo.MessageFlagsEphemeral, resp.Data.Flags)
}

func TestSelectMain_Branching(t *testing.T) {
	svc, p, _ := newTestService(t, nil)
	seedScenario(t, svc)

	svc.HandleInteraction(componentInteraction(CustomIDMainSelect, "tech"))

	require.Empty(t, p.channels)
	resp := p.lastResponse(t)
	require.Equal(t, "**tech**의 하위 항목을 선택해주세요.", resp.Data.Content)
	require.Equal(t, discordgo.MessageFlagsEphemeral, resp.Data.Flags)

	menu := resp.Data.Components[0].(discordgo.ActionsRow).Components[0].(discordgo.SelectMenu)
	require.Equal(t, "tech의 세부 항목을 선택하세요", menu.Placeholder)
	require.Equal(t, subSelectCustomID("tech"), menu.CustomID)
	require.Equal(t, []discordgo.SelectMenuOption{
		{Label: "login", Value: "login"},
		{Label: "payment", Value: "payment"},
	}, menu.Options)

	// Choosing a sub category opens the ticket under the sub category.
	svc.HandleInteraction(componentInteraction(menu.CustomID, "login"))
	require.Len(t, p.channels, 1)
	require.Equal(t, "ticket-login-alice", p.channels["5001"].Name)
}

func TestSelectMain_Mixed(t *testing.T) {
	svc, p, _ := newTestService(t, nil)
	seedScenario(t, svc)
	require.NoError(t, svc.store.AddCategory(context.Background(), &entities.Category{Main: "tech"}))

	svc.HandleInteraction(componentInteraction(CustomIDMainSelect, "tech"))

	require.Empty(t, p.channels)
	resp := p.lastResponse(t)
	require.Contains(t, resp.Data.Content, "**tech**")
	require.Equal(t, discordgo.MessageFlagsEphemeral, resp.Data.Flags)
}

func TestSelectMain_StaleCategory(t *testing.T) {
	svc, p, _ := newTestService(t, nil)

	svc.HandleInteraction(componentInteraction(CustomIDMainSelect, "sales"))

	require.Empty(t, p.channels)
	require.Equal(t, messages.NoCategoriesNotice, p.lastResponse(t).Data.Content)
}

func TestOpenTicket_Permissions(t *testing.T) {
	svc, p, store := newTestService(t, nil)
	seedScenario(t, svc)

	ctx := context.Background()
	for _, id := range []string{"role-1", "gone", "member-1"} {
		require.NoError(t, store.SaveAdmin(ctx, &entities.AdminGrant{ID: id}))
	}
	p.roles["role-1"] = true
	p.members["member-1"] = true

	svc.HandleInteraction(componentInteraction(CustomIDMainSelect, "billing"))

	require.Equal(t, []permissionCall{
		{ChannelID: "5001", TargetID: testGuildID, TargetType: discordgo.PermissionOverwriteTypeRole, Deny: discordgo.PermissionViewChannel},
		{ChannelID: "5001", TargetID: testUserID, TargetType: discordgo.PermissionOverwriteTypeMember, Allow: requesterAllow},
		{ChannelID: "5001", TargetID: "role-1", TargetType: discordgo.PermissionOverwriteTypeRole, Allow: adminAllow},
		{ChannelID: "5001", TargetID: "member-1", TargetType: discordgo.PermissionOverwriteTypeMember, Allow: adminAllow},
	}, p.permissions)
}

// seedTicketChannel registers testChannelID as an open ticket of testUserID with an admin member grant.
func seedTicketChannel(p *fakePlatform) {
	p.channels[testChannelID] = &discordgo.Channel{
		ID:      testChannelID,
		GuildID: testGuildID,
		Name:    "ticket-billing-alice",
		Type:    discordgo.ChannelTypeGuildText,
		PermissionOverwrites: []*discordgo.PermissionOverwrite{
			{ID: testGuildID, Type: discordgo.PermissionOverwriteTypeRole, Deny: discordgo.PermissionViewChannel},
			{ID: testUserID, Type: discordgo.PermissionOverwriteTypeMember, Allow: requesterAllow},
			{ID: "member-1", Type: discordgo.PermissionOverwriteTypeMember, Allow: adminAllow},
		},
	}
}

func TestCloseTicket(t *testing.T) {
	svc, p, _ := newTestService(t, nil)
	seedTicketChannel(p)

	svc.HandleInteraction(componentInteraction(CustomIDClose))

	require.Equal(t, []string{testChannelID + "/" + testUserID}, p.removed)

	resp := p.lastResponse(t)
	require.Equal(t, discordgo.InteractionResponseChannelMessageWithSource, resp.Type)
	require.Zero(t, resp.Data.Flags)
	require.Equal(t, messages.TicketClosedTitle, resp.Data.Embeds[0].Title)
	require.Equal(t, messages.TicketClosedDescription, resp.Data.Embeds[0].Description)
	require.Equal(t, colorRed, resp.Data.Embeds[0].Color)

	button := resp.Data.Components[0].(discordgo.ActionsRow).Components[0].(discordgo.Button)
	require.Equal(t, CustomIDDelete, button.CustomID)
	require.Equal(t, discordgo.SecondaryButton, button.Style)
	require.Equal(t, messages.DeleteButtonLabel, button.Label)
}

func TestCloseTicket_ByAdmin(t *testing.T) {
	svc, p, store := newTestService(t, nil)
	seedScenario(t, svc)
	require.NoError(t, store.SaveAdmin(context.Background(), &entities.AdminGrant{ID: "7777"}))
	p.members["7777"] = true

	// alice opens the ticket.
	svc.HandleInteraction(componentInteraction(CustomIDMainSelect, "billing"))
	require.Contains(t, p.channels, "5001")

	// An admin closes it from inside the ticket channel.
	i := componentInteraction(CustomIDClose)
	i.ChannelID = "5001"
	i.Member = &discordgo.Member{User: &discordgo.User{ID: "7777", Username: "admin"}}
	svc.HandleInteraction(i)

	require.Equal(t, []string{"5001/" + testUserID}, p.removed)
	require.Equal(t, messages.TicketClosedTitle, p.lastResponse(t).Data.Embeds[0].Title)

	// Only the admin grant and the everyone deny remain.
	remaining := make([]string, 0)
	for _, o := range p.channels["5001"].PermissionOverwrites {
		remaining = append(remaining, o.ID)
	}
	require.ElementsMatch(t, []string{testGuildID, "7777"}, remaining)
}

func TestCloseTicket_AlreadyRevoked(t *testing.T) {
	svc, p, _ := newTestService(t, nil)
	seedTicketChannel(p)
	p.removeErr = &discordgo.RESTError{
		Response: &http.Response{StatusCode: http.StatusNotFound},
		Message:  &discordgo.APIErrorMessage{Code: discordgo.ErrCodeUnknownOverwrite},
	}

	svc.HandleInteraction(componentInteraction(CustomIDClose))

	require.Equal(t, messages.TicketClosedTitle, p.lastResponse(t).Data.Embeds[0].Title)
}

func TestCloseTicket_NoRequesterOverwrite(t *testing.T) {
	svc, p, _ := newTestService(t, nil)
	seedTicketChannel(p)
	p.channels[testChannelID].PermissionOverwrites = p.channels[testChannelID].PermissionOverwrites[:1]

	// An already closed ticket has no requester overwrite.
	svc.HandleInteraction(componentInteraction(CustomIDClose))

	require.Empty(t, p.removed)
	require.Equal(t, messages.TicketClosedTitle, p.lastResponse(t).Data.Embeds[0].Title)
}

func TestPanicAfterAck(t *testing.T) {
	svc, p, _ := newTestService(t, nil)
	p.sendPanic = true

	// The panel is acknowledged before it is sent.
	svc.HandleInteraction(commandInteraction(CommandSetup, true))

	require.Len(t, p.responses, 1)
	require.Equal(t, messages.SetupDone, p.responses[0].Data.Content)
	require.Len(t, p.followUps, 1)
	require.Equal(t, messages.ErrUserErrorProcessing, p.followUps[0].Content)
	require.Equal(t, discordgo.MessageFlagsEphemeral, p.followUps[0].Flags)
}

func TestPanicBeforeAck(t *testing.T) {
	svc, p, _ := newTestService(t, nil)
	seedScenario(t, svc)
	p.sendPanic = true

	// The welcome message is sent before the response.
	svc.HandleInteraction(componentInteraction(CustomIDMainSelect, "billing"))

	require.Equal(t, messages.ErrUserErrorProcessing, p.lastResponse(t).Data.Content)
	require.Empty(t, p.followUps)
}

func seedHistory(p *fakePlatform, channelID string, n int) time.Time {
	start := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	for idx := 0; idx < n; idx++ {
		p.history[channelID] = append(p.history[channelID], &discordgo.Message{
			ID:        strconv.Itoa(100000 + idx),
			ChannelID: channelID,
			Content:   "message " + strconv.Itoa(idx),
			Timestamp: start.Add(time.Duration(idx) * time.Minute),
			Author:    &discordgo.User{ID: testUserID, Username: "alice", Discriminator: "0"},
		})
	}
	return start
}

func TestDeleteTicket(t *testing.T) {
	svc, p, _ := newTestService(t, nil)
	p.channels[testChannelID] = &discordgo.Channel{
		ID:      testChannelID,
		GuildID: testGuildID,
		Name:    "ticket-billing-alice",
		Type:    discordgo.ChannelTypeGuildText,
	}
	seedHistory(p, testChannelID, 250)

	svc.HandleInteraction(componentInteraction(CustomIDDelete))

	// Acknowledged before the export.
	require.Equal(t, discordgo.InteractionResponseDeferredMessageUpdate, p.responses[0].Type)
	require.Empty(t, p.followUps)

	// Three pages for 250 messages.
	require.Equal(t, 3, p.pageCalls)

	// The log channel was created and the transcript sent to it.
	require.Len(t, p.sent, 1)
	sent := p.sent[0]
	logChannel := p.channels[sent.ChannelID]
	require.NotNil(t, logChannel)
	require.Equal(t, messages.DefaultLogChannelName, logChannel.Name)
	require.Equal(t, "📄 **티켓 종료 기록:** `ticket-billing-alice`", sent.Msg.Content)

	require.Len(t, sent.Files, 1)
	require.Equal(t, "ticket-billing-alice.txt", sent.Files[0].Name)

	lines := strings.Split(strings.TrimSuffix(sent.Files[0].Content, "\n"), "\n")
	require.Len(t, lines, 251)
	require.Equal(t, "--- Ticket Log: ticket-billing-alice ---", lines[0])
	require.Equal(t, "[2024-05-01 09:00] alice: message 0", lines[1])
	require.Equal(t, "[2024-05-01 09:01] alice: message 1", lines[2])
	require.Equal(t, "[2024-05-01 13:09] alice: message 249", lines[250])

	// The ticket channel is gone.
	require.Equal(t, []string{testChannelID}, p.deleted)
	require.NotContains(t, p.channels, testChannelID)
}

func TestDeleteTicket_ReusesLogChannel(t *testing.T) {
	svc, p, _ := newTestService(t, nil)
	logChannel, err := p.CreateTextChannel(testGuildID, messages.DefaultLogChannelName)
	require.NoError(t, err)
	p.channels[testChannelID] = &discordgo.Channel{ID: testChannelID, GuildID: testGuildID, Name: "ticket-x-alice"}

	svc.HandleInteraction(componentInteraction(CustomIDDelete))

	require.Len(t, p.sent, 1)
	require.Equal(t, logChannel.ID, p.sent[0].ChannelID)
	require.Equal(t, "--- Ticket Log: ticket-x-alice ---\n", p.sent[0].Files[0].Content)
	require.Len(t, p.channels, 1)
}

func TestDeleteTicket_FailureAfterAck(t *testing.T) {
	svc, p, _ := newTestService(t, nil)

	// The channel is unknown, so the export fails after the acknowledgement.
	svc.HandleInteraction(componentInteraction(CustomIDDelete))

	require.Len(t, p.responses, 1)
	require.Len(t, p.followUps, 1)
	require.Equal(t, messages.ErrUserErrorProcessing, p.followUps[0].Content)
	require.Empty(t, p.deleted)
}

func TestUnknownComponent(t *testing.T) {
	svc, p, _ := newTestService(t, nil)

	svc.HandleInteraction(componentInteraction("something_else"))

	require.Empty(t, p.responses)
	require.Empty(t, p.followUps)
}

func TestStoreFailure(t *testing.T) {
	svc, p, store := newTestService(t, nil)
	require.NoError(t, store.Close(context.Background()))

	svc.HandleInteraction(componentInteraction(CustomIDMainSelect, "billing"))

	resp := p.lastResponse(t)
	require.Equal(t, messages.ErrUserErrorProcessing, resp.Data.Content)
	require.Equal(t, discordgo.MessageFlagsEphemeral, resp.Data.Flags)
}

func TestParseAction(t *testing.T) {
	tests := []struct {
		customID string
		want     Action
	}{
		{customID: "ticket_close", want: ActionClose},
		{customID: "ticket_delete", want: ActionDelete},
		{customID: "ticket_main_select", want: ActionUnknown},
		{customID: "", want: ActionUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.customID, func(t *testing.T) {
			got := ParseAction(tt.customID)
			require.Equal(t, tt.want, got)
			if got != ActionUnknown {
				require.Equal(t, tt.customID, got.CustomID())
			}
		})
	}
}

func TestInteractionName(t *testing.T) {
	require.Equal(t, CustomIDClose, InteractionName(componentInteraction(CustomIDClose)))
	require.Equal(t, CustomIDSubSelectPrefix, InteractionName(componentInteraction(subSelectCustomID("tech"), "login")))
	require.Equal(t, CommandSetup, InteractionName(commandInteraction(CommandSetup, true)))
}

func TestSelectMain_LogsTicketChannel(t *testing.T) {
	svc, _, _ := newTestService(t, nil)
	seedScenario(t, svc)

	buf := new(bytes.Buffer)
	svc.l = slog.New(slog.NewJSONHandler(buf, nil))

	svc.HandleInteraction(componentInteraction(CustomIDMainSelect, "billing"))

	var line string
	for _, l := range strings.Split(buf.String(), "\n") {
		if strings.Contains(l, `"msg":"Ticket opened"`) {
			line = l
		}
	}
	require.NotEmpty(t, line)
	require.Equal(t, 1, strings.Count(line, `"channel_id":`))

	entry := make(map[string]any)
	require.NoError(t, json.Unmarshal([]byte(line), &entry))
	require.Equal(t, testChannelID, entry["channel_id"])
	require.Equal(t, "5001", entry["ticket_channel_id"])
}
