package services

import (
	"fmt"
	"net/http"

	"meloburn/internal/api/audiodb"
	"meloburn/internal/api/discogs"
	"meloburn/internal/api/lastfm"
	"meloburn/internal/api/musicbrainz"
	"meloburn/internal/api/navidrome"
	"meloburn/internal/api/spotify"
	"meloburn/internal/api/webclient"
	"meloburn/internal/cache"
	"meloburn/internal/config"
	"meloburn/internal/core/burn"
	"meloburn/internal/core/enrich"
	"meloburn/internal/core/imaging"
	"meloburn/internal/core/metadata"
	"meloburn/internal/core/organizer"
	"meloburn/internal/core/resolver"
	"meloburn/internal/core/transfer"
	"meloburn/internal/core/volume"
	"meloburn/internal/interfaces"
	"meloburn/internal/shared"
)

// ServiceContainer holds all application services
type ServiceContainer struct {
	Config           interfaces.ConfigService
	Logger           interfaces.LoggerService
	WarningCollector interfaces.WarningCollectorService
	Cache            *cache.Store
	Resolver         interfaces.ResolverService
	Extractor        interfaces.MetadataExtractor
	Enricher         *enrich.Enricher
	Images           interfaces.ImageService
	Organizer        *organizer.Organizer
	Transfer         *transfer.Engine
	Volume           interfaces.VolumeService
	Burn             *burn.Runner
}

// NewServiceContainer creates a new service container with all services initialized
func NewServiceContainer(cfg *config.Config, httpClient *http.Client) *ServiceContainer {
	// Create logger first as other services may need it
	logger := NewConsoleLogger()
	logger.SetDebugMode(cfg.Debug || shared.IsDebugMode())

	warningCollector := shared.NewWarningCollector(true)
	shared.AddUnknownSentinels(cfg.Organize.ExtraUnknownSentinels...)

	store := cache.NewStore(cache.NewJSONFile(cfg.Paths.CacheFile), logger)

	web := webclient.New(webclient.Config{
		UserAgent: cfg.Providers.UserAgent,
		Timeout:   cfg.Timeout(),
	}, httpClient)
	lookup := resolver.New(store, web, NewProviders(cfg, httpClient), logger, warningCollector)

	extractor := metadata.NewExtractor(logger)
	enricher := enrich.New(extractor, lookup, logger, warningCollector)
	images := imaging.NewCoverService(cfg.Organize.CoverMaxSize)
	org := organizer.New(enricher, images, logger, warningCollector)
	engine := transfer.New(logger, warningCollector)
	vol := volume.New(logger)

	return &ServiceContainer{
		Config:           NewConfigService(),
		Logger:           logger,
		WarningCollector: warningCollector,
		Cache:            store,
		Resolver:         lookup,
		Extractor:        extractor,
		Enricher:         enricher,
		Images:           images,
		Organizer:        org,
		Transfer:         engine,
		Volume:           vol,
		Burn:             burn.NewRunner(org, engine, vol, logger, warningCollector),
	}
}

// NewProviders builds the lookup chains in their fixed order: TheAudioDB, Last.fm,
// MusicBrainz and Discogs, then Spotify and Subsonic when configured.
func NewProviders(cfg *config.Config, httpClient *http.Client) resolver.Providers {
	audioDBConfig := audiodb.DefaultConfig()
	audioDBConfig.Timeout = cfg.Timeout()
	if cfg.Providers.UserAgent != "" {
		audioDBConfig.UserAgent = cfg.Providers.UserAgent
	}

	lastFMConfig := lastfm.DefaultConfig()
	lastFMConfig.APIKey = cfg.Providers.LastFMAPIKey
	lastFMConfig.Timeout = cfg.Timeout()
	if cfg.Providers.UserAgent != "" {
		lastFMConfig.UserAgent = cfg.Providers.UserAgent
	}

	mbConfig := musicbrainz.DefaultConfig()
	mbConfig.Timeout = cfg.Timeout()
	mbConfig.PostCallDelay = cfg.MusicBrainzDelay()
	if cfg.Providers.MusicBrainzUserAgent != "" {
		mbConfig.UserAgent = cfg.Providers.MusicBrainzUserAgent
	}

	discogsConfig := discogs.DefaultConfig()
	discogsConfig.Token = cfg.Providers.DiscogsToken
	discogsConfig.Timeout = cfg.Timeout()
	if cfg.Providers.UserAgent != "" {
		discogsConfig.UserAgent = cfg.Providers.UserAgent
	}

	var providers resolver.Providers
	providers.Add(
		audiodb.NewClient(audioDBConfig, httpClient),
		lastfm.NewClient(lastFMConfig, httpClient),
		musicbrainz.NewClientWithConfig(mbConfig, httpClient),
		discogs.NewClient(discogsConfig, httpClient),
	)

	if sp := spotify.NewSpotifyClient(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret, cfg.Timeout()); sp.Configured() {
		providers.Add(sp)
	}
	if nd := navidrome.NewNavidromeClient(cfg.Subsonic.URL, cfg.Subsonic.Username, cfg.Subsonic.Password, cfg.Timeout(), httpClient); nd.Configured() {
		providers.Add(nd)
	}
	return providers
}

// ConfigService implementation
type ConfigService struct{}

func NewConfigService() *ConfigService {
	return &ConfigService{}
}

func (cs *ConfigService) LoadConfig(configFile string) (*config.Config, error) {
	cfg := &config.Config{}
	return cfg, config.LoadConfig(configFile, cfg)
}

func (cs *ConfigService) SaveConfig(configFile string, cfg *config.Config) error {
	return config.SaveConfig(configFile, cfg)
}

func (cs *ConfigService) ValidateConfig(cfg *config.Config) error {
	if cfg == nil {
		return fmt.Errorf("config is required")
	}
	return cfg.Validate()
}

func (cs *ConfigService) GetDefaultConfig() *config.Config {
	return config.DefaultConfig()
}

func (cs *ConfigService) EnsureConfigExists(configFile string) error {
	if !shared.FileExists(configFile) {
		defaultConfig := cs.GetDefaultConfig()
		return cs.SaveConfig(configFile, defaultConfig)
	}
	return nil
}

// ConsoleLogger implementation
type ConsoleLogger struct {
	debugMode bool
}

func NewConsoleLogger() *ConsoleLogger {
	return &ConsoleLogger{debugMode: false}
}

func (cl *ConsoleLogger) Info(message string, args ...interface{}) {
	shared.ColorInfo.Printf(message+"\n", args...)
}

func (cl *ConsoleLogger) Warning(message string, args ...interface{}) {
	shared.ColorWarning.Printf("⚠️ "+message+"\n", args...)
}

func (cl *ConsoleLogger) Error(message string, args ...interface{}) {
	shared.ColorError.Printf("❌ "+message+"\n", args...)
}

func (cl *ConsoleLogger) Debug(message string, args ...interface{}) {
	if !cl.debugMode {
		return
	}
	shared.ColorDebug.Printf("🐛 DEBUG: "+message+"\n", args...)
}

func (cl *ConsoleLogger) Success(message string, args ...interface{}) {
	shared.ColorSuccess.Printf("✅ "+message+"\n", args...)
}

func (cl *ConsoleLogger) SetDebugMode(enabled bool) {
	cl.debugMode = enabled
}
