package ticketing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/ticketdesk/pkg/dataaccess"
	"github.com/Jacobbrewer1/ticketdesk/pkg/entities"
	"github.com/Jacobbrewer1/ticketdesk/pkg/logging"
	"github.com/Jacobbrewer1/ticketdesk/pkg/messages"
	"github.com/bwmarrin/discordgo"
)

const (
	// CommandSetup publishes the ticket panel.
	CommandSetup = "셋업"

	// CommandEmbed edits the ticket panel text.
	CommandEmbed = "임베드설정"

	// CommandCategory registers a category.
	CommandCategory = "카테고리추가"

	// CommandAdmin registers an admin role.
	CommandAdmin = "관리자지정"
)

const (
	optionTitle   = "제목"
	optionContent = "내용"
	optionMain    = "대분류"
	optionSub     = "하위분류"
	optionTarget  = "대상"
)

// maxCategoryLength keeps categories inside the select menu and custom ID limits.
const maxCategoryLength = 80

// Commands returns the application commands to register.
// When enforceAdmin is false only the setup command requires the administrator permission.
func Commands(enforceAdmin bool) []*discordgo.ApplicationCommand {
	adminPerm := int64(discordgo.PermissionAdministrator)
	noDM := false

	gated := func(cmd *discordgo.ApplicationCommand, always bool) *discordgo.ApplicationCommand {
		cmd.Type = discordgo.ChatApplicationCommand
		cmd.DMPermission = &noDM
		if always || enforceAdmin {
			cmd.DefaultMemberPermissions = &adminPerm
		}
		return cmd
	}

	return []*discordgo.ApplicationCommand{
		gated(&discordgo.ApplicationCommand{
			Name:              CommandSetup,
			NameLocalizations: &map[discordgo.Locale]string{discordgo.EnglishUS: "setup"},
			Description:       "티켓 생성용 메인 임베드를 전송합니다.",
		}, true),
		gated(&discordgo.ApplicationCommand{
			Name:              CommandEmbed,
			NameLocalizations: &map[discordgo.Locale]string{discordgo.EnglishUS: "embed"},
			Description:       "인터페이스에 표시될 내용을 수정합니다.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        optionTitle,
					Type:        discordgo.ApplicationCommandOptionString,
					Description: "임베드 제목",
					Required:    true,
					MaxLength:   256,
				},
				{
					Name:        optionContent,
					Type:        discordgo.ApplicationCommandOptionString,
					Description: "임베드 내용",
					Required:    true,
				},
			},
		}, false),
		gated(&discordgo.ApplicationCommand{
			Name:              CommandCategory,
			NameLocalizations: &map[discordgo.Locale]string{discordgo.EnglishUS: "category"},
			Description:       "문의 카테고리를 추가합니다. 하위분류는 생략 가능합니다.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        optionMain,
					Type:        discordgo.ApplicationCommandOptionString,
					Description: "대분류",
					Required:    true,
					MaxLength:   maxCategoryLength,
				},
				{
					Name:        optionSub,
					Type:        discordgo.ApplicationCommandOptionString,
					Description: "하위분류",
					Required:    false,
					MaxLength:   maxCategoryLength,
				},
			},
		}, false),
		gated(&discordgo.ApplicationCommand{
			Name:              CommandAdmin,
			NameLocalizations: &map[discordgo.Locale]string{discordgo.EnglishUS: "admin"},
			Description:       "티켓 채널을 볼 수 있는 역할을 추가합니다.",
			Options: []*discordgo.ApplicationCommandOption{
				{
					Name:        optionTarget,
					Type:        discordgo.ApplicationCommandOptionRole,
					Description: "관리자 역할",
					Required:    true,
				},
			},
		}, false),
	}
}

func (s *Service) handleCommand(ctx context.Context, l *slog.Logger, i *discordgo.Interaction) error {
	data := i.ApplicationCommandData()

	if i.GuildID == "" {
		return s.respondEphemeral(i, messages.GuildOnly)
	}

	if s.requiresAdmin(data.Name) && !isAdministrator(i) {
		l.Warn("Rejected admin command from non administrator")
		return s.respondEphemeral(i, messages.AdminOnly)
	}

	opts := optionMap(data.Options)

	switch data.Name {
	case CommandSetup:
		return s.publishPanel(ctx, i)
	case CommandEmbed:
		return s.editPanel(ctx, i, opts[optionTitle].StringValue(), opts[optionContent].StringValue())
	case CommandCategory:
		var sub *string
		if o, ok := opts[optionSub]; ok && o.StringValue() != "" {
			v := o.StringValue()
			sub = &v
		}
		return s.addCategory(ctx, l, i, opts[optionMain].StringValue(), sub)
	case CommandAdmin:
		return s.registerAdmin(ctx, l, i, opts[optionTarget].RoleValue(nil, "").ID)
	default:
		return fmt.Errorf("no controller found for command %s", data.Name)
	}
}

func (s *Service) requiresAdmin(command string) bool {
	return command == CommandSetup || s.opts.EnforceAdminPermissions
}

func isAdministrator(i *discordgo.Interaction) bool {
	return i.Member != nil && i.Member.Permissions&discordgo.PermissionAdministrator == discordgo.PermissionAdministrator
}

func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, o := range options {
		m[o.Name] = o
	}
	return m
}

// panelConfig reads the panel text, falling back to the defaults per key.
func (s *Service) panelConfig(ctx context.Context) (*entities.PanelConfig, error) {
	cfg := entities.DefaultPanelConfig()

	title, err := s.store.GetConfig(ctx, entities.ConfigKeyTitle)
	switch {
	case err == nil:
		cfg.Title = title
	case !errors.Is(err, dataaccess.ErrNotFound):
		return nil, fmt.Errorf("error getting panel title: %w", err)
	}

	desc, err := s.store.GetConfig(ctx, entities.ConfigKeyDescription)
	switch {
	case err == nil:
		cfg.Description = desc
	case !errors.Is(err, dataaccess.ErrNotFound):
		return nil, fmt.Errorf("error getting panel description: %w", err)
	}

	return cfg, nil
}

// publishPanel sends the ticket panel into the invoking channel.
func (s *Service) publishPanel(ctx context.Context, i *discordgo.Interaction) error {
	cfg, err := s.panelConfig(ctx)
	if err != nil {
		return err
	}

	menu, err := s.mainSelectMenu(ctx)
	if err != nil {
		return err
	}

	if err := s.respondEphemeral(i, messages.SetupDone); err != nil {
		return err
	}

	if _, err := s.platform.SendMessage(i.ChannelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{
			{
				Title:       cfg.Title,
				Description: cfg.Description,
				Color:       colorBlue,
			},
		},
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{menu},
			},
		},
	}); err != nil {
		return &ackedError{err: fmt.Errorf("error sending panel: %w", err)}
	}
	return nil
}

func (s *Service) editPanel(ctx context.Context, i *discordgo.Interaction, title, desc string) error {
	if err := s.store.SetConfig(ctx, entities.ConfigKeyTitle, title); err != nil {
		return fmt.Errorf("error saving panel title: %w", err)
	}
	if err := s.store.SetConfig(ctx, entities.ConfigKeyDescription, desc); err != nil {
		return fmt.Errorf("error saving panel description: %w", err)
	}
	return s.respondEphemeral(i, messages.EmbedUpdated)
}

func (s *Service) addCategory(ctx context.Context, l *slog.Logger, i *discordgo.Interaction, main string, sub *string) error {
	category := &entities.Category{Main: main, Sub: sub}
	if err := s.store.AddCategory(ctx, category); err != nil {
		return fmt.Errorf("error adding category: %w", err)
	}

	reply := fmt.Sprintf(messages.CategoryAdded, main, category.SubOrDefault(messages.NoSubCategory))

	// Warn when the new row leaves the main category unusable.
	rows, err := s.store.GetCategoriesByMain(ctx, main)
	if err != nil {
		return fmt.Errorf("error getting categories: %w", err)
	}
	if _, err := entities.NewCategoryNode(main, rows); errors.Is(err, entities.ErrMixedCategory) {
		l.Warn("Category is registered both with and without sub categories", slog.String(logging.KeyCategory, main))
		reply += fmt.Sprintf(messages.CategoryMixedWarning, main)
	}

	return s.respondEphemeral(i, reply)
}

func (s *Service) registerAdmin(ctx context.Context, l *slog.Logger, i *discordgo.Interaction, roleID string) error {
	if err := s.store.SaveAdmin(ctx, &entities.AdminGrant{ID: roleID}); err != nil {
		return fmt.Errorf("error saving admin: %w", err)
	}

	l.Info("Admin registered", slog.String("role_id", roleID))
	return s.respondEphemeral(i, fmt.Sprintf(messages.AdminRegistered, "<@&"+roleID+">"))
}
