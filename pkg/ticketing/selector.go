package ticketing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Jacobbrewer1/ticketdesk/pkg/entities"
	"github.com/Jacobbrewer1/ticketdesk/pkg/logging"
	"github.com/Jacobbrewer1/ticketdesk/pkg/messages"
	"github.com/bwmarrin/discordgo"
)

// maxSelectOptions is the most options a select menu can carry.
const maxSelectOptions = 25

// mainSelectMenu builds the main category select menu from the registered categories.
func (s *Service) mainSelectMenu(ctx context.Context) (discordgo.SelectMenu, error) {
	rows, err := s.store.GetCategories(ctx)
	if err != nil {
		return discordgo.SelectMenu{}, fmt.Errorf("error getting categories: %w", err)
	}

	mains := entities.MainCategories(rows)
	if len(mains) == 0 {
		return discordgo.SelectMenu{
			MenuType:    discordgo.StringSelectMenu,
			CustomID:    CustomIDMainSelect,
			Placeholder: messages.PanelPlaceholder,
			Options: []discordgo.SelectMenuOption{
				{Label: messages.NoCategoriesLabel, Value: NoCategoriesValue},
			},
		}, nil
	}

	return discordgo.SelectMenu{
		MenuType:    discordgo.StringSelectMenu,
		CustomID:    CustomIDMainSelect,
		Placeholder: messages.PanelPlaceholder,
		Options:     s.selectOptions(mains),
	}, nil
}

// subSelectMenu builds the sub category select menu for a branching category.
func (s *Service) subSelectMenu(node *entities.CategoryNode) discordgo.SelectMenu {
	return discordgo.SelectMenu{
		MenuType:    discordgo.StringSelectMenu,
		CustomID:    subSelectCustomID(node.Main),
		Placeholder: fmt.Sprintf(messages.SubPlaceholder, node.Main),
		Options:     s.selectOptions(node.Subs),
	}
}

func (s *Service) selectOptions(values []string) []discordgo.SelectMenuOption {
	if len(values) > maxSelectOptions {
		s.l.Warn("Too many options for a select menu, extra options are dropped",
			slog.Int("count", len(values)),
			slog.Int("max", maxSelectOptions),
		)
		values = values[:maxSelectOptions]
	}

	opts := make([]discordgo.SelectMenuOption, 0, len(values))
	for _, v := range values {
		opts = append(opts, discordgo.SelectMenuOption{Label: v, Value: v})
	}
	return opts
}

// selectMain handles a selection from the main category menu.
func (s *Service) selectMain(ctx context.Context, l *slog.Logger, i *discordgo.Interaction, values []string) error {
	if len(values) == 0 || values[0] == NoCategoriesValue {
		return s.respondEphemeral(i, messages.NoCategoriesNotice)
	}
	main := values[0]

	rows, err := s.store.GetCategoriesByMain(ctx, main)
	if err != nil {
		return fmt.Errorf("error getting categories: %w", err)
	}

	node, err := entities.NewCategoryNode(main, rows)
	if err != nil {
		mixed := new(entities.MixedCategoryError)
		switch {
		case errors.Is(err, entities.ErrUnknownCategory):
			// The menu was published before the category went away.
			l.Warn("Selected category is not registered", slog.String(logging.KeyCategory, main))
			return s.respondEphemeral(i, messages.NoCategoriesNotice)
		case errors.As(err, &mixed):
			l.Warn("Selected category is misconfigured", slog.String(logging.KeyCategory, main))
			return s.respondEphemeral(i, fmt.Sprintf(messages.MixedCategory, mixed.Main))
		default:
			return fmt.Errorf("error resolving category: %w", err)
		}
	}

	switch node.Kind {
	case entities.CategoryLeaf:
		return s.openTicket(ctx, l, i, node.Main)
	case entities.CategoryBranching:
		return s.respondEphemeralComponents(i, fmt.Sprintf(messages.SubPrompt, node.Main), []discordgo.MessageComponent{
			discordgo.ActionsRow{
				Components: []discordgo.MessageComponent{s.subSelectMenu(node)},
			},
		})
	default:
		return fmt.Errorf("unhandled category kind %d", node.Kind)
	}
}

// selectSub handles a selection from a sub category menu.
func (s *Service) selectSub(ctx context.Context, l *slog.Logger, i *discordgo.Interaction, main string, values []string) error {
	if len(values) == 0 {
		return fmt.Errorf("no sub category selected for %s", main)
	}
	return s.openTicket(ctx, l.With(slog.String("main", main)), i, values[0])
}
