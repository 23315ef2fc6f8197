package config

import (
	"sync"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfighcl"
	"github.com/sirupsen/logrus"
)

// Конфиг читаем из hcl файла, переменные окружения его перекрывают (префикс DNF_).
// Все ключи необязательные, с дефолтами приложение работает как есть
type Config struct {
	MaxItems         int           `hcl:"max_items" env:"MAX_ITEMS" default:"30"`
	OrderStrategy    string        `hcl:"order_strategy" env:"ORDER_STRATEGY" default:"random"`
	RotationInterval time.Duration `hcl:"rotation_interval" env:"ROTATION_INTERVAL" default:"10s"`
	FetchInterval    time.Duration `hcl:"fetch_interval" env:"FETCH_INTERVAL" default:"30m"`
	RefreshInterval  time.Duration `hcl:"refresh_interval" env:"REFRESH_INTERVAL" default:"30m"`
	RequestTimeout   time.Duration `hcl:"request_timeout" env:"REQUEST_TIMEOUT" default:"10s"`
	UserAgent        string        `hcl:"user_agent" env:"USER_AGENT"`

	HackerNewsEnabled bool `hcl:"hackernews_enabled" env:"HACKERNEWS_ENABLED" default:"true"`
	HackerNewsCount   int  `hcl:"hackernews_count" env:"HACKERNEWS_COUNT" default:"8"`
	LobstersEnabled   bool `hcl:"lobsters_enabled" env:"LOBSTERS_ENABLED" default:"true"`
	LobstersCount     int  `hcl:"lobsters_count" env:"LOBSTERS_COUNT" default:"5"`
	DevToEnabled      bool `hcl:"devto_enabled" env:"DEVTO_ENABLED" default:"false"`
	DevToCount        int  `hcl:"devto_count" env:"DEVTO_COUNT" default:"5"`
	RSSEnabled        bool `hcl:"rss_enabled" env:"RSS_ENABLED" default:"true"`
	RSSItemsPerFeed   int  `hcl:"rss_items_per_feed" env:"RSS_ITEMS_PER_FEED" default:"10"`
	// yaml со списком фидов, без него берем встроенный список
	FeedsFile string `hcl:"feeds_file" env:"FEEDS_FILE"`

	FilterKeywords []string `hcl:"filter_keywords" env:"FILTER_KEYWORDS"`

	LogLevel  string `hcl:"log_level" env:"LOG_LEVEL" default:"info"`
	LogFormat string `hcl:"log_format" env:"LOG_FORMAT" default:"text"`

	// Необязательные поверхности: телеграм бот, реестр фидов в postgres, summary и http панель
	TelegramBotToken  string `hcl:"telegram_bot_token" env:"TELEGRAM_BOT_TOKEN"`
	TelegramChannelID int64  `hcl:"telegram_channel_id" env:"TELEGRAM_CHANNEL_ID"`
	DatabaseDSN       string `hcl:"database_dsn" env:"DATABASE_DSN"`
	OpenAIKey         string `hcl:"openai_key" env:"OPENAI_KEY"`
	OpenAIPrompt      string `hcl:"openai_prompt" env:"OPENAI_PROMPT"`
	HTTPAddr          string `hcl:"http_addr" env:"HTTP_ADDR"`
}

var (
	cfg  Config
	once sync.Once
)

// Get читает конфиг один раз за время жизни процесса.
func Get() Config {
	once.Do(func() {
		loaded, err := Load("./config.hcl", "./config.local.hcl")
		if err != nil {
			// Логгер еще не настроен, пишем в стандартный
			logrus.WithError(err).Error("failed to load config")
		}

		cfg = loaded
	})

	return cfg
}

// Load читает конфиг из переданных файлов и окружения.
// Флаги командной строки принадлежат cli, поэтому здесь их не разбираем
func Load(files ...string) (Config, error) {
	var c Config

	loader := aconfig.LoaderFor(&c, aconfig.Config{
		EnvPrefix: "DNF",
		SkipFlags: true,
		Files:     files,
		FileDecoders: map[string]aconfig.FileDecoder{
			".hcl": aconfighcl.New(),
		},
	})

	if err := loader.Load(); err != nil {
		return c, err
	}

	return c, nil
}
