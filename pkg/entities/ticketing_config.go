package entities

const (
	// ConfigKeyTitle is the config key for the panel embed title.
	ConfigKeyTitle = "title"

	// ConfigKeyDescription is the config key for the panel embed description.
	ConfigKeyDescription = "desc"
)

const (
	// DefaultPanelTitle is used when no title has been configured.
	DefaultPanelTitle = "고객센터 문의하기"

	// DefaultPanelDescription is used when no description has been configured.
	DefaultPanelDescription = "아래 메뉴를 눌러 상담을 시작하세요."
)

// ConfigEntry is a single key/value config row.
type ConfigEntry struct {
	// Key is the config key.
	Key string `json:"key" bson:"key" db:"key"`

	// Value is the stored value.
	Value string `json:"value" bson:"value" db:"value"`
}

// PanelConfig is the text shown on the published ticket panel.
type PanelConfig struct {
	// Title is the embed title.
	Title string `json:"title" bson:"title"`

	// Description is the embed description.
	Description string `json:"description" bson:"description"`
}

// DefaultPanelConfig returns the panel text used when nothing is configured.
func DefaultPanelConfig() *PanelConfig {
	return &PanelConfig{
		Title:       DefaultPanelTitle,
		Description: DefaultPanelDescription,
	}
}
