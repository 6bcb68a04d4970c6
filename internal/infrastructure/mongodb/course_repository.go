package mongodb

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oksasatya/devcamper-api/internal/domain/entity"
	"github.com/oksasatya/devcamper-api/internal/domain/query"
	"github.com/oksasatya/devcamper-api/internal/domain/repository"
)

type mongoCourse struct {
	ID                   primitive.ObjectID `bson:"_id"`
	Title                string             `bson:"title"`
	Description          string             `bson:"description"`
	Weeks                string             `bson:"weeks"`
	Tuition              float64            `bson:"tuition"`
	MinimumSkill         string             `bson:"minimumSkill"`
	ScholarshipAvailable bool               `bson:"scholarshipAvailable"`
	CreatedAt            time.Time          `bson:"createdAt"`
	Bootcamp             primitive.ObjectID `bson:"bootcamp"`
	User                 primitive.ObjectID `bson:"user"`
}

type CourseRepository struct {
	coll *mongo.Collection
}

var _ repository.CourseRepository = (*CourseRepository)(nil)

func NewCourseRepository(db *mongo.Database) *CourseRepository {
	return &CourseRepository{coll: db.Collection(CollectionCourses)}
}

func (r *CourseRepository) Create(ctx context.Context, c *entity.Course) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	doc, err := toMongoCourse(c)
	if err != nil {
		return err
	}
	doc.ID = primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return translate(err, "")
	}
	c.ID = doc.ID.Hex()
	return nil
}

func (r *CourseRepository) GetByID(ctx context.Context, id string) (*entity.Course, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var doc mongoCourse
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, translate(err, id)
	}
	return fromMongoCourse(&doc), nil
}

func (r *CourseRepository) Update(ctx context.Context, c *entity.Course) error {
	doc, err := toMongoCourse(c)
	if err != nil {
		return err
	}
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		return translate(err, c.ID)
	}
	if res.MatchedCount == 0 {
		return notFound(c.ID)
	}
	return nil
}

func (r *CourseRepository) Delete(ctx context.Context, id string) error {
	return deleteOne(ctx, r.coll, id)
}

func (r *CourseRepository) ListByBootcamp(ctx context.Context, bootcampID string) ([]*entity.Course, error) {
	oid, err := parseID(bootcampID)
	if err != nil {
		return nil, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"bootcamp": oid}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []mongoCourse
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*entity.Course, 0, len(docs))
	for i := range docs {
		out = append(out, fromMongoCourse(&docs[i]))
	}
	return out, nil
}

func (r *CourseRepository) ListByBootcamps(ctx context.Context, bootcampIDs []string) (map[string][]query.Record, error) {
	out := map[string][]query.Record{}
	oids := parseIDs(bootcampIDs)
	if len(oids) == 0 {
		return out, nil
	}
	cursor, err := r.coll.Find(ctx, bson.M{"bootcamp": bson.M{"$in": oids}},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		rec := normalize(doc)
		key, _ := rec["bootcamp"].(string)
		out[key] = append(out[key], rec)
	}
	return out, cursor.Err()
}

func (r *CourseRepository) DeleteByBootcamp(ctx context.Context, bootcampID string) (int64, error) {
	return deleteByBootcamp(ctx, r.coll, bootcampID)
}

func (r *CourseRepository) AverageTuition(ctx context.Context, bootcampID string) (*float64, error) {
	return average(ctx, r.coll, bootcampID, "tuition")
}

func (r *CourseRepository) List(ctx context.Context, q query.Query) ([]query.Record, error) {
	return listRecords(ctx, r.coll, q, nil)
}

func (r *CourseRepository) CountAll(ctx context.Context) (int64, error) {
	return countAll(ctx, r.coll)
}

func toMongoCourse(c *entity.Course) (*mongoCourse, error) {
	doc := &mongoCourse{
		Title:                c.Title,
		Description:          c.Description,
		Weeks:                c.Weeks,
		Tuition:              c.Tuition,
		MinimumSkill:         c.MinimumSkill,
		ScholarshipAvailable: c.ScholarshipAvailable,
		CreatedAt:            c.CreatedAt,
	}
	var err error
	if c.ID != "" {
		if doc.ID, err = parseID(c.ID); err != nil {
			return nil, err
		}
	}
	if doc.Bootcamp, err = parseID(c.Bootcamp); err != nil {
		return nil, err
	}
	if doc.User, err = parseID(c.User); err != nil {
		return nil, err
	}
	return doc, nil
}

func fromMongoCourse(doc *mongoCourse) *entity.Course {
	return &entity.Course{
		ID:                   doc.ID.Hex(),
		Title:                doc.Title,
		Description:          doc.Description,
		Weeks:                doc.Weeks,
		Tuition:              doc.Tuition,
		MinimumSkill:         doc.MinimumSkill,
		ScholarshipAvailable: doc.ScholarshipAvailable,
		CreatedAt:            doc.CreatedAt,
		Bootcamp:             hexOrEmpty(doc.Bootcamp),
		User:                 hexOrEmpty(doc.User),
	}
}
