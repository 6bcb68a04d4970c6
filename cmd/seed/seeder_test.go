package main

import (
	"context"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/devcamper-api/internal/domain/query"
	"github.com/oksasatya/devcamper-api/internal/testutil/memstore"
	"github.com/oksasatya/devcamper-api/pkg/helpers"
)

func TestSeeder_ImportsFixturesWithAverages(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	users := memstore.NewUsers()
	bootcamps := memstore.NewBootcamps()
	courses := memstore.NewCourses()
	reviews := memstore.NewReviews()
	hasher := helpers.NewBcryptHasher(bcrypt.MinCost)
	s := &seeder{users: users, bootcamps: bootcamps, courses: courses, reviews: reviews, hasher: hasher, logger: logger}

	require.NoError(t, s.importAll(context.Background(), "../../data/seed"))

	ctx := context.Background()
	admin, err := users.GetByEmail(ctx, "admin@devcamper.io")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())
	assert.True(t, hasher.Compare(admin.Password, "123456"))

	pub, err := users.GetByEmail(ctx, "publisher@devcamper.io")
	require.NoError(t, err)
	n, err := bootcamps.CountByUser(ctx, pub.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	records, err := bootcamps.List(ctx, query.Parse(map[string][]string{"name": {"Devworks Bootcamp"}}))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "devworks-bootcamp", records[0]["slug"])
	assert.EqualValues(t, 9000, records[0]["averageCost"])
	assert.EqualValues(t, 9, records[0]["averageRating"])
}

func TestSeeder_FailsWithoutFixtures(t *testing.T) {
	s := &seeder{
		users:     memstore.NewUsers(),
		bootcamps: memstore.NewBootcamps(),
		courses:   memstore.NewCourses(),
		reviews:   memstore.NewReviews(),
		hasher:    helpers.NewBcryptHasher(bcrypt.MinCost),
		logger:    logrus.New(),
	}
	err := s.importAll(context.Background(), t.TempDir())
	assert.Error(t, err)
}
