package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/devcamper-api/config"
	"github.com/oksasatya/devcamper-api/internal/infrastructure/mongodb"
	"github.com/oksasatya/devcamper-api/pkg/helpers"
)

func main() {
	importData := flag.Bool("i", false, "import the seed data")
	destroyData := flag.Bool("d", false, "delete every bootcamp, course, review and user")
	dir := flag.String("dir", "data/seed", "directory holding the seed JSON files")
	flag.Parse()

	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	if *importData == *destroyData {
		logger.Fatal("pass exactly one of -i (import) or -d (destroy)")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	client, err := mongodb.Connect(ctx, cfg.MongoURI)
	if err != nil {
		logger.Fatalf("%v", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	db := client.Database(cfg.MongoDatabase)

	if *destroyData {
		for _, coll := range []string{mongodb.CollectionReviews, mongodb.CollectionCourses, mongodb.CollectionBootcamps, mongodb.CollectionUsers} {
			res, err := db.Collection(coll).DeleteMany(ctx, map[string]any{})
			if err != nil {
				logger.Fatalf("delete %s: %v", coll, err)
			}
			logger.Infof("deleted %d documents from %s", res.DeletedCount, coll)
		}
		logger.Info("data destroyed")
		return
	}

	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		logger.Fatalf("%v", err)
	}
	s := &seeder{
		users:     mongodb.NewUserRepository(db),
		bootcamps: mongodb.NewBootcampRepository(db),
		courses:   mongodb.NewCourseRepository(db),
		reviews:   mongodb.NewReviewRepository(db),
		hasher:    helpers.NewBcryptHasher(0),
		logger:    logger,
	}
	if err := s.importAll(ctx, *dir); err != nil {
		logger.Fatalf("import failed: %v", err)
	}
}
