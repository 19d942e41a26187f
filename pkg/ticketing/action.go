package ticketing

import "strings"

const (
	// CustomIDMainSelect is the custom ID of the main category select menu.
	CustomIDMainSelect = "ticket_main_select"

	// CustomIDSubSelectPrefix prefixes the custom ID of a sub category select menu. The main category follows it.
	CustomIDSubSelectPrefix = "ticket_sub_select:"

	// CustomIDClose is the custom ID of the close ticket button.
	CustomIDClose = "ticket_close"

	// CustomIDDelete is the custom ID of the backup and delete button.
	CustomIDDelete = "ticket_delete"

	// NoCategoriesValue is the value of the placeholder option shown when no categories exist.
	NoCategoriesValue = "none"
)

// Action is a ticket lifecycle control.
type Action int

const (
	// ActionUnknown is any custom ID that is not a lifecycle control.
	ActionUnknown Action = iota

	// ActionClose revokes the requester's access.
	ActionClose

	// ActionDelete archives the transcript and removes the channel.
	ActionDelete
)

// ParseAction parses a component custom ID into an action.
func ParseAction(customID string) Action {
	switch customID {
	case CustomIDClose:
		return ActionClose
	case CustomIDDelete:
		return ActionDelete
	default:
		return ActionUnknown
	}
}

// CustomID is the component custom ID of the action.
func (a Action) CustomID() string {
	switch a {
	case ActionClose:
		return CustomIDClose
	case ActionDelete:
		return CustomIDDelete
	default:
		return ""
	}
}

func (a Action) String() string {
	switch a {
	case ActionClose:
		return "close"
	case ActionDelete:
		return "delete"
	default:
		return "unknown"
	}
}

// subSelectCustomID is the custom ID of the sub category select menu for main.
func subSelectCustomID(main string) string {
	return CustomIDSubSelectPrefix + main
}

// parseSubSelect returns the main category of a sub category select custom ID.
func parseSubSelect(customID string) (string, bool) {
	return strings.CutPrefix(customID, CustomIDSubSelectPrefix)
}
