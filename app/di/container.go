package di

import (
	"context"
	"fmt"
	"log/slog"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentity"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/labstack/echo/v4"

	"pettracker/app/config"
	"pettracker/app/driver/cognito"
	"pettracker/app/driver/filestore"
	"pettracker/app/driver/localcache"
	"pettracker/app/driver/postgres"
	"pettracker/app/driver/s3store"
	"pettracker/app/gateway"
	"pettracker/app/port"
	"pettracker/app/rest"
	"pettracker/app/usecase"
)

// Container holds all dependencies for the application
type Container struct {
	Config *config.Config
	Logger *slog.Logger

	// Drivers
	DB    *postgres.DB
	Cache *localcache.Cache

	// Gateways
	CredentialGateway port.CredentialExchanger

	// Usecases
	SessionUsecase port.SessionUsecase
	PetUsecase     port.PetUsecase
}

// NewContainer creates and initializes a new dependency injection container
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Container, error) {
	container := &Container{
		Config: cfg,
		Logger: logger,
	}

	// Initialize database connection
	var err error
	container.DB, err = postgres.NewConnection(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize durable storage and the serialized local cache over it
	store, err := filestore.New(cfg.CacheFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cache storage: %w", err)
	}
	container.Cache = localcache.New(store, logger)

	// Initialize AWS clients
	awsOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AWSAccessKeyID != "" {
		awsOpts = append(awsOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey, "")))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	userPoolClient := cognitoidentityprovider.NewFromConfig(awsCfg)
	identityClient := cognitoidentity.NewFromConfig(awsCfg)
	s3Client := s3.NewFromConfig(awsCfg)

	// Initialize drivers
	provider := cognito.NewProvider(cfg, userPoolClient, logger)
	identityPool := cognito.NewIdentityPool(cfg, identityClient, logger)
	objectStore := s3store.New(cfg, s3Client, logger)

	// Initialize repositories
	petRepository := postgres.NewPetRepository(container.DB.Pool(), logger)

	// Initialize gateways
	container.CredentialGateway = gateway.NewCredentialGateway(identityPool, container.Cache, logger)

	// Initialize usecases
	container.SessionUsecase = usecase.NewSessionUsecase(provider, container.CredentialGateway, container.Cache, logger)
	container.PetUsecase = usecase.NewPetUsecase(petRepository, objectStore, logger)

	logger.Info("Container initialized with full dependency stack")

	return container, nil
}

// CreateRouter creates and returns a fully configured Echo router
func (c *Container) CreateRouter() *echo.Echo {
	routerConfig := rest.RouterConfig{
		Logger:             c.Logger,
		SessionUsecase:     c.SessionUsecase,
		PetUsecase:         c.PetUsecase,
		DB:                 c.DB,
		RateLimitPerSecond: c.Config.RateLimitPerSecond,
		RateLimitBurst:     c.Config.RateLimitBurst,
		EnableDebug:        c.Config.LogLevel == "debug",
	}

	router := rest.NewRouter(routerConfig)

	c.Logger.Info("Full API router created")
	return router
}

// Close closes all resources
func (c *Container) Close() error {
	// Drain pending cache writes before shutdown
	if c.Cache != nil {
		c.Cache.Close()
	}

	if c.DB != nil {
		c.DB.Close()
	}

	c.Logger.Info("Container closed successfully")
	return nil
}
