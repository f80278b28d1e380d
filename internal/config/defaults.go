package config

const (
	defaultInboxDir       = "~/.local/share/quill/inbox"
	defaultArchiveDir     = "~/.local/share/quill/archive"
	defaultDataDir        = "~/.local/share/quill"
	defaultLogDir         = "~/.local/share/quill/logs"
	defaultWorkers        = 4
	defaultPollInterval   = 5
	defaultTimezone       = "Europe/London"
	defaultDayCutoff      = "04:00"
	defaultOpenAIBaseURL  = "https://api.openai.com"
	defaultTranscription  = "whisper-1"
	defaultPolishModel    = "gpt-4o-mini"
	defaultTemperature    = 0.2
	defaultOpenAITimeout  = 300
	defaultNotionBaseURL  = "https://api.notion.com"
	defaultNotionTimeout  = 30
	defaultNotifyTimeout  = 10
	defaultLogFormat      = "auto"
	defaultLogLevel       = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			InboxDir:   defaultInboxDir,
			ArchiveDir: defaultArchiveDir,
			DataDir:    defaultDataDir,
			LogDir:     defaultLogDir,
		},
		Pipeline: Pipeline{
			Workers:      defaultWorkers,
			PollInterval: defaultPollInterval,
		},
		Journal: Journal{
			Timezone:  defaultTimezone,
			DayCutoff: defaultDayCutoff,
		},
		OpenAI: OpenAI{
			BaseURL:            defaultOpenAIBaseURL,
			TranscriptionModel: defaultTranscription,
			PolishModel:        defaultPolishModel,
			Temperature:        defaultTemperature,
			TimeoutSeconds:     defaultOpenAITimeout,
		},
		Notion: Notion{
			BaseURL:        defaultNotionBaseURL,
			TimeoutSeconds: defaultNotionTimeout,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
