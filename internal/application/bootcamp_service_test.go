package application

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/devcamper-api/internal/domain/apperror"
	"github.com/oksasatya/devcamper-api/internal/domain/entity"
	"github.com/oksasatya/devcamper-api/internal/domain/query"
)

func TestBootcampCreate_GeocodesAndSlugs(t *testing.T) {
	f := newFixture()
	pub := f.user(entity.RolePublisher, "pub@example.com")

	b := f.publishBootcamp(pub, "Devworks Bootcamp")

	assert.Equal(t, "devworks-bootcamp", b.Slug)
	assert.Equal(t, pub.ID, b.User)
	assert.Equal(t, entity.DefaultPhoto, b.Photo)
	require.NotNil(t, b.Location)
	assert.Equal(t, []float64{-71.104028, 42.350846}, b.Location.Coordinates)
	assert.Equal(t, "Devworks Bootcamp", f.index.indexed[b.ID])
}

func TestBootcampCreate_PublisherLimitedToOne(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	pub := f.user(entity.RolePublisher, "pub@example.com")
	admin := f.user(entity.RoleAdmin, "admin@example.com")

	f.publishBootcamp(pub, "First")
	_, err := f.bootcamp.Create(ctx, pub, BootcampInput{Name: "Second", Address: "02118", Careers: []string{"Other"}})
	require.Error(t, err)
	assert.True(t, apperror.Is(err, apperror.KindBadRequest))
	assert.Equal(t, "The user with ID "+pub.ID+" has already published a bootcamp", apperror.PublicMessage(err))

	f.publishBootcamp(admin, "Admin One")
	f.publishBootcamp(admin, "Admin Two")
	assert.Equal(t, 3, f.bootcamps.Len())
}

func TestBootcampCreate_GeocoderFailure(t *testing.T) {
	f := newFixture()
	pub := f.user(entity.RolePublisher, "pub@example.com")
	f.geocoder.err = apperror.Upstream("Geocoder request failed", errors.New("timeout"))

	_, err := f.bootcamp.Create(context.Background(), pub, BootcampInput{Name: "X", Address: "02118"})
	assert.True(t, apperror.Is(err, apperror.KindUpstream))
	assert.Zero(t, f.bootcamps.Len())
}

func TestBootcampGet_NotFound(t *testing.T) {
	f := newFixture()
	_, err := f.bootcamp.Get(context.Background(), "5d725a1b7b292f5f8ceff788")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
	assert.Equal(t, "Bootcamp not found with id of 5d725a1b7b292f5f8ceff788", apperror.PublicMessage(err))
}

func TestBootcampMutations_RequireOwnership(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := f.user(entity.RolePublisher, "owner@example.com")
	other := f.user(entity.RolePublisher, "other@example.com")
	admin := f.user(entity.RoleAdmin, "admin@example.com")
	b := f.publishBootcamp(owner, "Owned")

	name := "Hijacked"
	_, err := f.bootcamp.Update(ctx, other, b.ID, BootcampPatch{Name: &name})
	assert.True(t, apperror.Is(err, apperror.KindForbidden))
	assert.True(t, apperror.Is(f.bootcamp.Delete(ctx, other, b.ID), apperror.KindForbidden))

	name = "Renamed By Owner"
	updated, err := f.bootcamp.Update(ctx, owner, b.ID, BootcampPatch{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "renamed-by-owner", updated.Slug)

	housing := true
	updated, err = f.bootcamp.Update(ctx, admin, b.ID, BootcampPatch{Housing: &housing})
	require.NoError(t, err)
	assert.True(t, updated.Housing)
	assert.Equal(t, "Renamed By Owner", updated.Name)

	require.NoError(t, f.bootcamp.Delete(ctx, admin, b.ID))
	assert.Zero(t, f.bootcamps.Len())
	assert.Equal(t, []string{b.ID}, f.index.deleted)
}

func TestBootcampUpdate_ReGeocodesAddress(t *testing.T) {
	f := newFixture()
	owner := f.user(entity.RolePublisher, "owner@example.com")
	b := f.publishBootcamp(owner, "Moving")

	addr := "10001"
	updated, err := f.bootcamp.Update(context.Background(), owner, b.ID, BootcampPatch{Address: &addr})
	require.NoError(t, err)
	assert.Equal(t, []float64{-73.99, 40.75}, updated.Location.Coordinates)
}

type hookGeocoder struct {
	next Geocoder
	hook func()
}

func (g hookGeocoder) Geocode(ctx context.Context, address string) (*entity.Location, error) {
	g.hook()
	return g.next.Geocode(ctx, address)
}

func TestBootcampUpdate_KeepsAverageWrittenDuringEdit(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := f.user(entity.RolePublisher, "owner@example.com")
	b := f.publishBootcamp(owner, "Racing")

	// A course lands while the edit waits on geocoding.
	f.bootcamp.Geocoder = hookGeocoder{next: f.geocoder, hook: func() {
		_, err := f.course.Create(ctx, owner, b.ID, CourseInput{
			Title: "Full Stack", Description: "All of it", Weeks: "12", Tuition: 9000, MinimumSkill: "beginner",
		})
		require.NoError(t, err)
	}}

	addr, name := "10001", "Racing Renamed"
	updated, err := f.bootcamp.Update(ctx, owner, b.ID, BootcampPatch{Name: &name, Address: &addr})
	require.NoError(t, err)
	assert.Equal(t, "racing-renamed", updated.Slug)
	require.NotNil(t, updated.AverageCost)
	assert.Equal(t, 9000.0, *updated.AverageCost)

	stored, err := f.bootcamps.GetByID(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.AverageCost)
	assert.Equal(t, 9000.0, *stored.AverageCost)
	assert.Equal(t, "Racing Renamed", stored.Name)
}

func TestBootcampDelete_CascadesChildren(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := f.user(entity.RolePublisher, "owner@example.com")
	reviewer := f.user(entity.RoleUser, "reviewer@example.com")
	b := f.publishBootcamp(owner, "Cascade")
	keep := f.publishBootcamp(f.user(entity.RolePublisher, "keep@example.com"), "Keep")

	for i := 0; i < 3; i++ {
		_, err := f.course.Create(ctx, owner, b.ID, CourseInput{Title: "c", Tuition: 1000})
		require.NoError(t, err)
	}
	_, err := f.review.Create(ctx, reviewer, b.ID, ReviewInput{Title: "ok", Text: "fine", Rating: 7})
	require.NoError(t, err)
	_, err = f.review.Create(ctx, reviewer, keep.ID, ReviewInput{Title: "ok", Text: "fine", Rating: 5})
	require.NoError(t, err)

	require.NoError(t, f.bootcamp.Delete(ctx, owner, b.ID))

	courses, err := f.courses.ListByBootcamp(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, courses)
	reviews, err := f.reviews.ListByBootcamp(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, reviews)
	assert.Equal(t, 1, f.reviews.Len())
	_, err = f.bootcamps.GetByID(ctx, b.ID)
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestBootcampList_ExpandsCourses(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := f.user(entity.RolePublisher, "owner@example.com")
	b := f.publishBootcamp(owner, "With Courses")
	f.publishBootcamp(f.user(entity.RolePublisher, "p2@example.com"), "Without Courses")
	_, err := f.course.Create(ctx, owner, b.ID, CourseInput{Title: "Front End", Tuition: 8000})
	require.NoError(t, err)

	res, err := f.bootcamp.List(ctx, map[string][]string{"sort": {"name"}})
	require.NoError(t, err)
	require.Equal(t, 2, res.Count)

	assert.Equal(t, "With Courses", res.Data[0]["name"])
	courses := res.Data[0]["courses"].([]query.Record)
	require.Len(t, courses, 1)
	assert.Equal(t, "Front End", courses[0]["title"])
	assert.Equal(t, []query.Record{}, res.Data[1]["courses"])
}

func TestBootcampList_StorageFailureIsGeneric(t *testing.T) {
	f := newFixture()
	f.bootcamps.ListErr = errors.New("connection reset")

	_, err := f.bootcamp.List(context.Background(), nil)
	require.Error(t, err)
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
	assert.Equal(t, "Server Error", apperror.PublicMessage(err))
}

func TestWithinRadius(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.publishBootcamp(f.user(entity.RolePublisher, "p1@example.com"), "Boston")

	near, err := f.bootcamp.WithinRadius(ctx, "02118", "10")
	require.NoError(t, err)
	require.Len(t, near, 1)
	assert.Equal(t, "Boston", near[0].Name)

	far, err := f.bootcamp.WithinRadius(ctx, "10001", "10")
	require.NoError(t, err)
	assert.Empty(t, far)

	_, err = f.bootcamp.WithinRadius(ctx, "02118", "abc")
	assert.True(t, apperror.Is(err, apperror.KindBadRequest))

	_, err = f.bootcamp.WithinRadius(ctx, "99999", "10")
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestUploadPhoto(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := f.user(entity.RolePublisher, "owner@example.com")
	b := f.publishBootcamp(owner, "Photogenic")

	stored, err := f.bootcamp.UploadPhoto(ctx, owner, b.ID, &PhotoUpload{
		Filename: "Campus.JPG", ContentType: "image/jpeg", Size: 5, Body: strings.NewReader("jpeg!"),
	})
	require.NoError(t, err)
	assert.Equal(t, "photo_"+b.ID+".jpg", stored)
	assert.Equal(t, []byte("jpeg!"), f.photos.saved[stored])

	got, err := f.bootcamps.GetByID(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, stored, got.Photo)
}

func TestUploadPhoto_Rejections(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	owner := f.user(entity.RolePublisher, "owner@example.com")
	other := f.user(entity.RolePublisher, "other@example.com")
	b := f.publishBootcamp(owner, "Strict")

	cases := []struct {
		name  string
		actor *entity.User
		file  *PhotoUpload
		kind  apperror.Kind
		msg   string
	}{
		{"missing file", owner, nil, apperror.KindBadRequest, "Please upload a file"},
		{"not an image", owner, &PhotoUpload{Filename: "a.pdf", ContentType: "application/pdf", Size: 1, Body: strings.NewReader("x")}, apperror.KindBadRequest, "Please upload an image file"},
		{"too large", owner, &PhotoUpload{Filename: "a.png", ContentType: "image/png", Size: 1001, Body: strings.NewReader("x")}, apperror.KindBadRequest, "Please upload an image less than 1000"},
		{"not owner", other, &PhotoUpload{Filename: "a.png", ContentType: "image/png", Size: 1, Body: strings.NewReader("x")}, apperror.KindForbidden, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.bootcamp.UploadPhoto(ctx, tc.actor, b.ID, tc.file)
			require.Error(t, err)
			assert.Equal(t, tc.kind, apperror.KindOf(err))
			if tc.msg != "" {
				assert.Equal(t, tc.msg, apperror.PublicMessage(err))
			}
		})
	}
	assert.Empty(t, f.photos.saved)
}

func TestSearch(t *testing.T) {
	f := newFixture()
	f.index.hits = []query.Record{{"id": "1", "name": "Devworks"}}

	hits, err := f.bootcamp.Search(context.Background(), "dev", 0)
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	_, err = f.bootcamp.Search(context.Background(), "  ", 0)
	assert.True(t, apperror.Is(err, apperror.KindBadRequest))

	f.bootcamp.Index = nil
	hits, err = f.bootcamp.Search(context.Background(), "dev", 0)
	require.NoError(t, err)
	assert.Empty(t, hits)
}
