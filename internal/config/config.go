package config

import (
	"encoding/json"
	"flag"
	"fmt"
	"go.uber.org/zap/zapcore"
	"io"
	"os"
	"time"
)

const (
	EditorSource = "source"
	EditorRich   = "rich"

	ProviderOpenAI = "openai"
	ProviderMock   = "mock"
)

type JsonDuration struct {
	time.Duration
}

func (j *JsonDuration) UnmarshalJSON(b []byte) error {
	var s string
	err := json.Unmarshal(b, &s)
	if err != nil {
		return err
	}
	var duration time.Duration
	duration, err = time.ParseDuration(s)
	if err != nil {
		return err
	}
	j.Duration = duration
	return err
}

func (j JsonDuration) MarshalJSON() ([]byte, error) {
	return json.Marshal(j.Duration.String())
}

type Configuration struct {
	Logging struct {
		MaxSize         int
		MaxBackups      int
		MaxAge          int
		Level           zapcore.Level
		ConsoleLogLevel zapcore.Level
		File            string
		HttpAccessFile  string
		DbLogFile       string
	}
	ListeningPort    string
	ListeningAddress string
	// AllowedOrigins lists foreign origins that may call the API with credentials.
	AllowedOrigins []string
	// EnvFile is loaded into the process environment before secrets are resolved.
	EnvFile  string
	Database struct {
		Host            string
		Port            uint
		Username        string
		Password        string
		DatabaseName    string
		MaxIdleConns    int
		MaxOpenConns    int
		ConnMaxLifetime *JsonDuration
	}
	Generation struct {
		Provider string
		Model    string
		BaseURL  string
		// CredentialEnv names the secret holding the provider credential.
		CredentialEnv   string
		InstructionFile string
	}
	Editor    string
	Converter struct {
		Enabled     bool
		Command     string
		Args        []string
		Extension   string
		ContentType string
	}
	Session struct {
		IdleTimeout   *JsonDuration
		SigningKeyEnv string
		PasscodeHash  string
		SecureCookie  bool
	}
}

var config *Configuration

func InitConfig() *Configuration {
	configFile := flag.String("config", "config.json", "Path to config file (json)")
	flag.Parse()
	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "\nUsage of %s:\n", os.Args[0])
		flag.PrintDefaults()
		_, _ = fmt.Fprint(os.Stderr, "\n")
	}

	file, err := os.Open(*configFile)
	if err != nil {
		flag.Usage()
		panic("Error opening config file: " + err.Error())
	}
	defer file.Close()

	c, err := Load(file)
	if err != nil {
		flag.Usage()
		panic("Error parsing config file: " + err.Error())
	}
	config = c

	return config
}

// Load decodes a JSON configuration and fills in defaults.
func Load(r io.Reader) (*Configuration, error) {
	var c Configuration
	if err := json.NewDecoder(r).Decode(&c); err != nil {
		return nil, err
	}
	applyDefaults(&c)
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func applyDefaults(c *Configuration) {
	if c.Logging.MaxSize <= 0 {
		c.Logging.MaxSize = 500
	}
	if c.Logging.MaxBackups <= 0 {
		c.Logging.MaxBackups = 3
	}
	if c.Logging.MaxAge <= 0 {
		c.Logging.MaxAge = 28
	}
	if c.ListeningPort == "" {
		c.ListeningPort = "8080"
	}
	if c.Generation.Provider == "" {
		c.Generation.Provider = ProviderOpenAI
	}
	if c.Generation.Model == "" {
		c.Generation.Model = "gemini-1.5-pro"
	}
	if c.Generation.BaseURL == "" && c.Generation.Provider == ProviderOpenAI {
		// Gemini's OpenAI-compatible endpoint
		c.Generation.BaseURL = "https://generativelanguage.googleapis.com/v1beta/openai/"
	}
	if c.Generation.CredentialEnv == "" {
		c.Generation.CredentialEnv = "GEMINI_API_KEY"
	}
	if c.Editor == "" {
		c.Editor = EditorSource
	}
	if c.Converter.Command == "" {
		c.Converter.Command = "pandoc"
		if len(c.Converter.Args) == 0 {
			c.Converter.Args = []string{"{input}", "-o", "{output}"}
		}
	}
	if c.Converter.Extension == "" {
		c.Converter.Extension = "pdf"
	}
	if c.Converter.ContentType == "" {
		c.Converter.ContentType = "application/pdf"
	}
	if c.Session.IdleTimeout == nil || c.Session.IdleTimeout.Duration <= 0 {
		c.Session.IdleTimeout = &JsonDuration{Duration: 2 * time.Hour}
	}
	if c.Session.SigningKeyEnv == "" {
		c.Session.SigningKeyEnv = "SESSION_SIGNING_KEY"
	}
	if c.Database.ConnMaxLifetime == nil {
		c.Database.ConnMaxLifetime = &JsonDuration{Duration: time.Hour}
	}
}

func (c *Configuration) validate() error {
	switch c.Editor {
	case EditorSource, EditorRich:
	default:
		return fmt.Errorf("unknown editor %q (want %q or %q)", c.Editor, EditorSource, EditorRich)
	}
	switch c.Generation.Provider {
	case ProviderOpenAI, ProviderMock:
	default:
		return fmt.Errorf("generation provider %s not supported", c.Generation.Provider)
	}
	return nil
}

// UsesDatabase reports whether sessions are kept in Postgres instead of process memory.
func (c *Configuration) UsesDatabase() bool {
	return len(c.Database.Host) > 0
}

func Config() *Configuration {
	return config
}

func Port() string {
	return config.ListeningPort
}

func Address() string {
	return config.ListeningAddress
}
