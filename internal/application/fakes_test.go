package application

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/oksasatya/devcamper-api/internal/domain/apperror"
	"github.com/oksasatya/devcamper-api/internal/domain/entity"
	"github.com/oksasatya/devcamper-api/internal/domain/query"
	"github.com/oksasatya/devcamper-api/internal/testutil/memstore"
	"github.com/oksasatya/devcamper-api/pkg/helpers"
	"github.com/oksasatya/devcamper-api/pkg/mailer"
)

type fakeGeocoder struct {
	points map[string][2]float64
	err    error
}

func (g *fakeGeocoder) Geocode(_ context.Context, address string) (*entity.Location, error) {
	if g.err != nil {
		return nil, g.err
	}
	p, ok := g.points[address]
	if !ok {
		return nil, apperror.NotFound("No location found for %s", address)
	}
	return &entity.Location{Type: "Point", Coordinates: []float64{p[0], p[1]}, FormattedAddress: address}, nil
}

type fakePhotos struct {
	saved map[string][]byte
	err   error
}

func (p *fakePhotos) Save(_ context.Context, name, _ string, r io.Reader) (string, error) {
	if p.err != nil {
		return "", p.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	if p.saved == nil {
		p.saved = map[string][]byte{}
	}
	p.saved[name] = b
	return name, nil
}

type fakeIndex struct {
	mu      sync.Mutex
	indexed map[string]string
	deleted []string
	hits    []query.Record
}

func (i *fakeIndex) Index(_ context.Context, b *entity.Bootcamp) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.indexed == nil {
		i.indexed = map[string]string{}
	}
	i.indexed[b.ID] = b.Name
	return nil
}

func (i *fakeIndex) Delete(_ context.Context, id string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.deleted = append(i.deleted, id)
	return nil
}

func (i *fakeIndex) Search(context.Context, string, int) ([]query.Record, error) {
	return i.hits, nil
}

type fakeMailer struct {
	sent []mailer.Message
	err  error
}

func (m *fakeMailer) Send(_ context.Context, msg mailer.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

var errSMTPDown = errors.New("smtp: connection refused")

type fixture struct {
	users     *memstore.Users
	bootcamps *memstore.Bootcamps
	courses   *memstore.Courses
	reviews   *memstore.Reviews
	audit     *memstore.Audit
	geocoder  *fakeGeocoder
	photos    *fakePhotos
	index     *fakeIndex
	mail      *fakeMailer

	auth      *AuthService
	bootcamp  *BootcampService
	course    *CourseService
	review    *ReviewService
	userAdmin *UserService
}

func newFixture() *fixture {
	f := &fixture{
		users:     memstore.NewUsers(),
		bootcamps: memstore.NewBootcamps(),
		courses:   memstore.NewCourses(),
		reviews:   memstore.NewReviews(),
		audit:     &memstore.Audit{},
		geocoder: &fakeGeocoder{points: map[string][2]float64{
			"233 Bay State Rd Boston MA 02215": {-71.104028, 42.350846},
			"02118":                            {-71.07, 42.34},
			"10001":                            {-73.99, 40.75},
		}},
		photos: &fakePhotos{},
		index:  &fakeIndex{},
		mail:   &fakeMailer{},
	}
	hasher := helpers.NewBcryptHasher(bcrypt.MinCost)
	f.auth = NewAuthService(f.users, hasher, helpers.NewJWTManager("test-secret", time.Hour), f.mail, f.audit, "DevCamper", 10*time.Minute, nil)
	f.bootcamp = NewBootcampService(f.bootcamps, f.courses, f.reviews, f.geocoder, f.photos, f.index, 1000, nil)
	f.course = NewCourseService(f.courses, f.bootcamps, nil)
	f.review = NewReviewService(f.reviews, f.bootcamps, nil)
	f.userAdmin = NewUserService(f.users, hasher, nil)
	return f
}

func (f *fixture) user(role entity.Role, email string) *entity.User {
	u := &entity.User{Name: string(role), Email: email, Role: role}
	if err := f.users.Create(context.Background(), u); err != nil {
		panic(err)
	}
	return u
}

func (f *fixture) publishBootcamp(owner *entity.User, name string) *entity.Bootcamp {
	b, err := f.bootcamp.Create(context.Background(), owner, BootcampInput{
		Name:        name,
		Description: "A bootcamp",
		Address:     "233 Bay State Rd Boston MA 02215",
		Careers:     []string{"Web Development"},
	})
	if err != nil {
		panic(err)
	}
	return b
}
