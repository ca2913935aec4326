package main

import (
	"career-ebook-generator/internal/auth"
	"career-ebook-generator/internal/config"
	"career-ebook-generator/internal/constants"
	"career-ebook-generator/internal/converter"
	"career-ebook-generator/internal/database"
	"career-ebook-generator/internal/ebook"
	"career-ebook-generator/internal/environment"
	"career-ebook-generator/internal/export"
	"career-ebook-generator/internal/generation"
	"career-ebook-generator/internal/instruction"
	"career-ebook-generator/internal/logging"
	"career-ebook-generator/internal/metrics"
	"career-ebook-generator/internal/routes"
	"career-ebook-generator/internal/sanitize"
	"career-ebook-generator/internal/web"
	"context"
	"crypto/rand"
	"fmt"
	"github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapio"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	c := config.InitConfig()

	logger := logging.InitLogging(c)

	if err := config.LoadEnvFile(c.EnvFile); err != nil {
		logger.LogErrorf(logging.GetLogTypeInitialization(), "loading env file failed: %s", err.Error())
		return
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewPrometheusRecorder(reg)

	controllerRegistry, settings, err := injectDependencies(c, logger, recorder)
	if err != nil {
		logger.LogErrorf(nil, "injecting depencies failed: %s", err.Error())
		return
	}
	settings.MetricsHandler = metrics.HTTPHandler(reg)
	settings.AllowedOrigins = c.AllowedOrigins

	ginLogger := logging.InitGinLogger(c)

	gin.DefaultWriter = io.MultiWriter(&zapio.Writer{Log: ginLogger, Level: config.Config().Logging.Level})
	if config.Config().Logging.Level == zap.DebugLevel {
		logger.LogDebug(nil, "Enabling Gin debug (writes to access log)")
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		ginzap.GinzapWithConfig(ginLogger, &ginzap.Config{
			TimeFormat: time.RFC3339,
			UTC:        false,
			SkipPaths:  []string{"/status", "/heartbeat", "/metrics"},
		}),
		ginzap.RecoveryWithZap(ginLogger, true),
	)

	tmpl, err := web.Templates()
	if err != nil {
		logger.LogErrorf(logging.GetLogTypeInitialization(), "parsing page templates failed: %s", err.Error())
		return
	}
	r.SetHTMLTemplate(tmpl)

	// Routes
	routes.InitRouter(r, controllerRegistry, settings)

	ctx, cancel := context.WithCancel(context.Background())
	SetupCloseHandler(logger, cancel)

	authController := controllerRegistry[constants.Auth].(*auth.Controller)
	go runJanitor(ctx, logger, authController.AuthService, c.Session.IdleTimeout.Duration)

	if len(config.Config().ListeningAddress) == 0 && len(config.Config().ListeningPort) == 0 {
		panic("No listening address/port provided")
	}

	logger.LogInfof(nil, "API running. Listening on %s:%s", config.Address(), config.Port())

	err = r.Run(config.Address() + ":" + config.Port())
	if err != nil {
		logger.LogErrorf(nil, "Listening on %s:%s failed: %s", config.Address(), config.Port(), err.Error())
		return
	}
}

// injectDependencies builds the controllers. A configuration error (missing provider
// credential, unusable instruction template) does not stop the server: the page shows it
// and the e-book routes refuse to run.
func injectDependencies(c *config.Configuration, logger logging.Logger, recorder metrics.Recorder) (map[int]any, routes.Settings, error) {
	repository, err := database.InitRepository(c, logger)
	if err != nil {
		logger.LogError(nil, "error initializing session store: ", err)
		return nil, routes.Settings{}, err
	}

	env := environment.Environment(repository, logger, recorder)

	signingKey, err := sessionSigningKey(c, logger)
	if err != nil {
		return nil, routes.Settings{}, err
	}

	var configErr error
	provider, err := buildProvider(c)
	if err != nil {
		logger.LogErrorf(logging.GetLogTypeInitialization(), "generation provider unavailable: %v", err)
		configErr = err
	}

	instructions := instruction.Default()
	if len(c.Generation.InstructionFile) > 0 {
		instructions, err = instruction.NewBuilderFromFile(c.Generation.InstructionFile)
		if err != nil {
			logger.LogErrorf(logging.GetLogTypeInitialization(), "instruction template unusable: %v", err)
			configErr = err
		}
	}

	var exporter *export.Exporter
	if c.Converter.Enabled {
		exporter = &export.Exporter{
			Converter: &converter.Command{
				Name:      c.Converter.Command,
				Args:      c.Converter.Args,
				Extension: c.Converter.Extension,
			},
			Extension:   c.Converter.Extension,
			ContentType: c.Converter.ContentType,
		}
		logger.LogInfof(logging.GetLogTypeInitialization(), "fixed-layout export enabled via %s", c.Converter.Command)
	}

	workflow := &ebook.Workflow{
		Env:          env,
		Instructions: instructions,
		Provider:     provider,
		Sanitizer:    sanitize.Sanitizer{StripWrapper: c.Editor == config.EditorRich},
		Exporter:     exporter,
	}

	authService := &auth.AuthService{Env: env, PasscodeHash: c.Session.PasscodeHash}

	ebookController := &ebook.Controller{
		Env:      env,
		Workflow: workflow,
	}

	authController := &auth.Controller{
		Env:          env,
		AuthService:  authService,
		SigningKey:   signingKey,
		TokenTTL:     c.Session.IdleTimeout.Duration,
		SecureCookie: c.Session.SecureCookie,
	}

	pageController := &web.Controller{
		Env:              env,
		ConfigError:      configErr,
		Editor:           c.Editor,
		Model:            c.Generation.Model,
		ConvertEnabled:   exporter.Enabled(),
		ExportExtension:  c.Converter.Extension,
		PasscodeRequired: authService.PasscodeRequired(),
		SigningKey:       signingKey,
	}

	controllerRegistry := make(map[int]any)
	controllerRegistry[constants.Ebook] = ebookController
	controllerRegistry[constants.Auth] = authController
	controllerRegistry[constants.Page] = pageController

	settings := routes.Settings{
		SigningKey:   signingKey,
		TokenTTL:     c.Session.IdleTimeout.Duration,
		SecureCookie: c.Session.SecureCookie,
		ConfigError:  configErr,
	}
	return controllerRegistry, settings, nil
}

func buildProvider(c *config.Configuration) (generation.Provider, error) {
	if c.Generation.Provider == config.ProviderMock {
		return &generation.MockProvider{}, nil
	}

	credential, err := config.Secret(c.Generation.CredentialEnv)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", generation.ErrMissingCredential, err)
	}

	provider, err := generation.NewOpenAIProvider(generation.Settings{
		Model:      c.Generation.Model,
		Credential: credential,
		BaseURL:    c.Generation.BaseURL,
	})
	if err != nil {
		return nil, err
	}
	return provider, nil
}

// sessionSigningKey reads the cookie signing key from the secret store. Without one,
// a random key is used and sessions do not survive a restart.
func sessionSigningKey(c *config.Configuration, logger logging.Logger) ([]byte, error) {
	if key, err := config.Secret(c.Session.SigningKeyEnv); err == nil {
		return []byte(key), nil
	}

	logger.LogWarnf(logging.GetLogTypeInitialization(), "%s not set; using a random session signing key", c.Session.SigningKeyEnv)
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		return nil, err
	}
	return key, nil
}

func runJanitor(ctx context.Context, logger *logging.DefaultLogger, service *auth.AuthService, idleTimeout time.Duration) {
	defer logger.RecoverPanic("session janitor")

	interval := idleTimeout / 4
	if interval > 5*time.Minute {
		interval = 5 * time.Minute
	}
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := service.PurgeIdleSessions(ctx, idleTimeout); err != nil {
				logger.LogErrorf(logging.GetLogTypeJanitor(), "purging idle sessions failed: %v", err)
			}
		}
	}
}

func SetupCloseHandler(logger logging.Logger, cancel context.CancelFunc) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	go func() {
		<-c
		fmt.Println()
		logger.LogWarnf(nil, "Cleaning up...")
		cancel()
		time.Sleep(1 * time.Second)
		os.Exit(1)
	}()
}
