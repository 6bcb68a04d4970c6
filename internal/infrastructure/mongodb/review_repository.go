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

type mongoReview struct {
	ID        primitive.ObjectID `bson:"_id"`
	Title     string             `bson:"title"`
	Text      string             `bson:"text"`
	Rating    int                `bson:"rating"`
	CreatedAt time.Time          `bson:"createdAt"`
	Bootcamp  primitive.ObjectID `bson:"bootcamp"`
	User      primitive.ObjectID `bson:"user"`
}

// ReviewRepository relies on the unique (bootcamp, user) index to reject a second review.
type ReviewRepository struct {
	coll *mongo.Collection
}

var _ repository.ReviewRepository = (*ReviewRepository)(nil)

func NewReviewRepository(db *mongo.Database) *ReviewRepository {
	return &ReviewRepository{coll: db.Collection(CollectionReviews)}
}

func (r *ReviewRepository) Create(ctx context.Context, rv *entity.Review) error {
	if rv.CreatedAt.IsZero() {
		rv.CreatedAt = time.Now().UTC()
	}
	doc, err := toMongoReview(rv)
	if err != nil {
		return err
	}
	doc.ID = primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return translate(err, "")
	}
	rv.ID = doc.ID.Hex()
	return nil
}

func (r *ReviewRepository) GetByID(ctx context.Context, id string) (*entity.Review, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var doc mongoReview
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, translate(err, id)
	}
	return fromMongoReview(&doc), nil
}

func (r *ReviewRepository) Update(ctx context.Context, rv *entity.Review) error {
	doc, err := toMongoReview(rv)
	if err != nil {
		return err
	}
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": doc.ID}, doc)
	if err != nil {
		return translate(err, rv.ID)
	}
	if res.MatchedCount == 0 {
		return notFound(rv.ID)
	}
	return nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id string) error {
	return deleteOne(ctx, r.coll, id)
}

func (r *ReviewRepository) ListByBootcamp(ctx context.Context, bootcampID string) ([]*entity.Review, error) {
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

	var docs []mongoReview
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*entity.Review, 0, len(docs))
	for i := range docs {
		out = append(out, fromMongoReview(&docs[i]))
	}
	return out, nil
}

func (r *ReviewRepository) DeleteByBootcamp(ctx context.Context, bootcampID string) (int64, error) {
	return deleteByBootcamp(ctx, r.coll, bootcampID)
}

func (r *ReviewRepository) AverageRating(ctx context.Context, bootcampID string) (*float64, error) {
	return average(ctx, r.coll, bootcampID, "rating")
}

func (r *ReviewRepository) List(ctx context.Context, q query.Query) ([]query.Record, error) {
	return listRecords(ctx, r.coll, q, nil)
}

func (r *ReviewRepository) CountAll(ctx context.Context) (int64, error) {
	return countAll(ctx, r.coll)
}

func toMongoReview(rv *entity.Review) (*mongoReview, error) {
	doc := &mongoReview{Title: rv.Title, Text: rv.Text, Rating: rv.Rating, CreatedAt: rv.CreatedAt}
	var err error
	if rv.ID != "" {
		if doc.ID, err = parseID(rv.ID); err != nil {
			return nil, err
		}
	}
	if doc.Bootcamp, err = parseID(rv.Bootcamp); err != nil {
		return nil, err
	}
	if doc.User, err = parseID(rv.User); err != nil {
		return nil, err
	}
	return doc, nil
}

func fromMongoReview(doc *mongoReview) *entity.Review {
	return &entity.Review{
		ID:        doc.ID.Hex(),
		Title:     doc.Title,
		Text:      doc.Text,
		Rating:    doc.Rating,
		CreatedAt: doc.CreatedAt,
		Bootcamp:  hexOrEmpty(doc.Bootcamp),
		User:      hexOrEmpty(doc.User),
	}
}
