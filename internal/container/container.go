// Package container builds the application's dependency graph once at startup.
package container

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/oksasatya/devcamper-api/config"
	"github.com/oksasatya/devcamper-api/internal/application"
	"github.com/oksasatya/devcamper-api/internal/domain/repository"
	"github.com/oksasatya/devcamper-api/internal/infrastructure/geocoder"
	"github.com/oksasatya/devcamper-api/internal/infrastructure/mongodb"
	pginfra "github.com/oksasatya/devcamper-api/internal/infrastructure/postgres"
	"github.com/oksasatya/devcamper-api/internal/infrastructure/search"
	photostore "github.com/oksasatya/devcamper-api/internal/infrastructure/storage"
	"github.com/oksasatya/devcamper-api/pkg/helpers"
	"github.com/oksasatya/devcamper-api/pkg/mailer"
)

// Container holds the shared clients and the services handed to the router.
// Optional clients (Postgres, Elasticsearch, GCS, RabbitMQ) are nil when disabled.
type Container struct {
	Config *config.Config
	Logger *logrus.Logger

	Mongo  *mongo.Client
	PGPool *pgxpool.Pool
	Redis  *redis.Client
	ES     *elasticsearch.Client
	GCS    *storage.Client
	Rabbit *helpers.RabbitPublisher

	JWT     *helpers.JWTManager
	Cookies *helpers.CookieManager

	Auth      *application.AuthService
	Bootcamps *application.BootcampService
	Courses   *application.CourseService
	Reviews   *application.ReviewService
	Users     *application.UserService

	closers []func()
}

// Build connects every backing service and wires the application services.
// On error, anything already opened is closed and a nil container is returned.
func Build(ctx context.Context, cfg *config.Config, logger *logrus.Logger) (*Container, error) {
	c := &Container{Config: cfg, Logger: logger}
	if err := c.wire(ctx); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}

func (c *Container) wire(ctx context.Context) error {
	cfg, logger := c.Config, c.Logger

	var err error
	c.Mongo, err = mongodb.Connect(ctx, cfg.MongoURI)
	if err != nil {
		return err
	}
	c.onClose(func() { _ = c.Mongo.Disconnect(context.Background()) })
	db := c.Mongo.Database(cfg.MongoDatabase)
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	var audit repository.AuditRepository
	if cfg.AuditEnabled {
		c.PGPool, err = pginfra.NewPool(ctx, cfg, logger)
		if err != nil {
			return err
		}
		c.onClose(c.PGPool.Close)
		audit = pginfra.NewAuditRepository(c.PGPool)
	}

	c.Redis = helpers.NewRedisClient(ctx, cfg, logger)
	c.onClose(func() { _ = c.Redis.Close() })

	sender, err := c.buildMailer()
	if err != nil {
		return err
	}
	photos, err := c.buildPhotoStore(ctx)
	if err != nil {
		return err
	}
	index, err := c.buildSearchIndex(ctx)
	if err != nil {
		return err
	}

	geo := geocoder.NewCached(geocoder.NewMapQuest(cfg.GeocoderAPIKey), geocoder.NewRedisCache(c.Redis), cfg.GeocoderCacheTTL, logger)

	c.JWT = helpers.NewJWTManager(cfg.JWTSecret, cfg.JWTExpire)
	c.Cookies = helpers.NewCookie(cfg.CookieDomain, cfg.CookieSecure || cfg.IsProduction(), cfg.JWTCookieExpire)
	hasher := helpers.NewBcryptHasher(0)

	bootcamps := mongodb.NewBootcampRepository(db)
	courses := mongodb.NewCourseRepository(db)
	reviews := mongodb.NewReviewRepository(db)
	users := mongodb.NewUserRepository(db)

	c.Auth = application.NewAuthService(users, hasher, c.JWT, sender, audit, cfg.AppName, cfg.ResetTokenTTL, logger)
	c.Bootcamps = application.NewBootcampService(bootcamps, courses, reviews, geo, photos, index, cfg.MaxFileUpload, logger)
	c.Courses = application.NewCourseService(courses, bootcamps, logger)
	c.Reviews = application.NewReviewService(reviews, bootcamps, logger)
	c.Users = application.NewUserService(users, hasher, logger)
	return nil
}

func (c *Container) buildMailer() (mailer.Sender, error) {
	cfg := c.Config
	if !cfg.MailSendEnabled {
		c.Logger.Warn("MAIL_SEND_ENABLED=false; outgoing mail is only logged")
		return mailer.LogSender{Logger: c.Logger}, nil
	}
	switch cfg.MailDriver {
	case "smtp":
		return mailer.NewSMTP(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPEmail, cfg.SMTPPassword, cfg.FromEmail, cfg.FromName), nil
	case "mailgun":
		if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" {
			return nil, errors.New("mailgun: MAILGUN_DOMAIN and MAILGUN_API_KEY are required")
		}
		return mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, fmt.Sprintf("%s <%s>", cfg.FromName, cfg.FromEmail)), nil
	case "queue":
		pub, err := helpers.NewRabbitPublisher(cfg)
		if err != nil {
			return nil, fmt.Errorf("rabbitmq: %w", err)
		}
		c.Rabbit = pub
		c.onClose(pub.Close)
		return mailer.NewQueue(pub), nil
	}
	return nil, fmt.Errorf("unknown MAIL_DRIVER %q", cfg.MailDriver)
}

func (c *Container) buildPhotoStore(ctx context.Context) (application.PhotoStore, error) {
	cfg := c.Config
	switch cfg.PhotoStorage {
	case "gcs":
		client, err := helpers.NewGCSClient(ctx, cfg)
		if err != nil {
			return nil, fmt.Errorf("gcs: %w", err)
		}
		c.GCS = client
		c.onClose(func() { _ = client.Close() })
		return photostore.NewGCSStore(client, cfg.GCSBucket), nil
	case "local", "":
		return photostore.NewLocalStore(cfg.FileUploadPath)
	}
	return nil, fmt.Errorf("unknown PHOTO_STORAGE %q", cfg.PhotoStorage)
}

// buildSearchIndex returns a nil index when no Elasticsearch address is configured.
func (c *Container) buildSearchIndex(ctx context.Context) (application.SearchIndex, error) {
	es, err := helpers.NewESClient(ctx, c.Config)
	if errors.Is(err, helpers.ErrSearchDisabled) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	c.ES = es
	index := search.NewBootcampIndex(es, c.Config.ESBootcampsIndex, c.Logger)
	if err := index.EnsureIndex(ctx); err != nil {
		return nil, fmt.Errorf("elasticsearch: %w", err)
	}
	return index, nil
}

func (c *Container) onClose(fn func()) {
	c.closers = append(c.closers, fn)
}

// Close releases clients in reverse order of creation.
func (c *Container) Close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}
