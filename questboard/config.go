package questboard

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/disgoorg/snowflake/v2"
	"github.com/pelletier/go-toml/v2"

	"github.com/Richiks1/questboard/questboard/board"
)

func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err = toml.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type Config struct {
	Log     LogConfig     `toml:"log"`
	Bot     BotConfig     `toml:"bot"`
	Board   BoardConfig   `toml:"board"`
	Storage StorageConfig `toml:"storage"`
	Spaces  SpacesConfig  `toml:"spaces"`
	Web     WebConfig     `toml:"web"`
}

type BotConfig struct {
	DevGuilds []snowflake.ID `toml:"dev_guilds"`
	Token     string         `toml:"token"`
}

type LogConfig struct {
	Level slog.Level `toml:"level"`
}

// BoardConfig owns the fixed quest set: the layout entries are the
// authoritative names, validated 1:1 against persisted state at startup.
type BoardConfig struct {
	BaseImage           string        `toml:"base_image"`
	AdminChannel        snowflake.ID  `toml:"admin_channel"`
	AnnouncementChannel snowflake.ID  `toml:"announcement_channel"`
	ModeratorRole       snowflake.ID  `toml:"moderator_role"`
	Quests              []QuestRegion `toml:"quests"`
}

type QuestRegion struct {
	Name string `toml:"name"`
	X0   int    `toml:"x0"`
	Y0   int    `toml:"y0"`
	X1   int    `toml:"x1"`
	Y1   int    `toml:"y1"`
}

// Layout converts the configured quest regions into the renderer's layout.
// Duplicate names are a configuration error, not a runtime one.
func (c BoardConfig) Layout() (board.Layout, error) {
	layout := make(board.Layout, len(c.Quests))
	for _, q := range c.Quests {
		if q.Name == "" {
			return nil, fmt.Errorf("board quest with empty name")
		}
		if _, ok := layout[q.Name]; ok {
			return nil, fmt.Errorf("duplicate board quest %q", q.Name)
		}
		layout[q.Name] = board.Region{X0: q.X0, Y0: q.Y0, X1: q.X1, Y1: q.Y1}
	}
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	return layout, nil
}

type StorageConfig struct {
	// Driver selects the store backend: "file" (default), "postgres" or
	// "mongo".
	Driver        string `toml:"driver"`
	File          string `toml:"file"`
	PostgresDSN   string `toml:"postgres_dsn"`
	MongoURI      string `toml:"mongo_uri"`
	MongoDatabase string `toml:"mongo_database"`
}

// SpacesConfig enables mirroring board artifacts through S3-compatible
// object storage. Empty bucket means disabled.
type SpacesConfig struct {
	Key          string `toml:"key"`
	Secret       string `toml:"secret"`
	Region       string `toml:"region"`
	Bucket       string `toml:"bucket"`
	Root         string `toml:"root"`
	BaseImageKey string `toml:"base_image_key"`
}

func (c SpacesConfig) Enabled() bool {
	return c.Bucket != ""
}

type WebConfig struct {
	Addr string `toml:"addr"`
}
