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

type mongoLocation struct {
	Type             string    `bson:"type"`
	Coordinates      []float64 `bson:"coordinates"`
	FormattedAddress string    `bson:"formattedAddress,omitempty"`
	Street           string    `bson:"street,omitempty"`
	City             string    `bson:"city,omitempty"`
	State            string    `bson:"state,omitempty"`
	Zipcode          string    `bson:"zipcode,omitempty"`
	Country          string    `bson:"country,omitempty"`
}

type mongoBootcamp struct {
	ID            primitive.ObjectID `bson:"_id"`
	User          primitive.ObjectID `bson:"user"`
	Name          string             `bson:"name"`
	Slug          string             `bson:"slug"`
	Description   string             `bson:"description"`
	Website       string             `bson:"website,omitempty"`
	Phone         string             `bson:"phone,omitempty"`
	Email         string             `bson:"email,omitempty"`
	Location      *mongoLocation     `bson:"location,omitempty"`
	Careers       []string           `bson:"careers"`
	AverageRating *float64           `bson:"averageRating,omitempty"`
	AverageCost   *float64           `bson:"averageCost,omitempty"`
	Photo         string             `bson:"photo"`
	Housing       bool               `bson:"housing"`
	JobAssistance bool               `bson:"jobAssistance"`
	JobGuarantee  bool               `bson:"jobGuarantee"`
	AcceptGi      bool               `bson:"acceptGi"`
	CreatedAt     time.Time          `bson:"createdAt"`
}

type BootcampRepository struct {
	coll *mongo.Collection
}

var _ repository.BootcampRepository = (*BootcampRepository)(nil)

func NewBootcampRepository(db *mongo.Database) *BootcampRepository {
	return &BootcampRepository{coll: db.Collection(CollectionBootcamps)}
}

func (r *BootcampRepository) Create(ctx context.Context, b *entity.Bootcamp) error {
	if b.CreatedAt.IsZero() {
		b.CreatedAt = time.Now().UTC()
	}
	doc, err := toMongoBootcamp(b)
	if err != nil {
		return err
	}
	doc.ID = primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return translate(err, "")
	}
	b.ID = doc.ID.Hex()
	return nil
}

func (r *BootcampRepository) GetByID(ctx context.Context, id string) (*entity.Bootcamp, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	var doc mongoBootcamp
	if err := r.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		return nil, translate(err, id)
	}
	return fromMongoBootcamp(&doc), nil
}

// bootcampEditable are the fields Update writes. averageCost, averageRating
// and photo have their own setters and are never overwritten by an edit.
var bootcampEditable = []string{
	"name", "slug", "description", "website", "phone", "email", "location",
	"careers", "housing", "jobAssistance", "jobGuarantee", "acceptGi",
}

func (r *BootcampRepository) Update(ctx context.Context, b *entity.Bootcamp) error {
	doc, err := toMongoBootcamp(b)
	if err != nil {
		return err
	}
	return updateOwned(ctx, r.coll, doc.ID, doc, bootcampEditable...)
}

func (r *BootcampRepository) Delete(ctx context.Context, id string) error {
	return deleteOne(ctx, r.coll, id)
}

func (r *BootcampRepository) CountByUser(ctx context.Context, userID string) (int64, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return 0, nil
	}
	return r.coll.CountDocuments(ctx, bson.M{"user": oid})
}

func (r *BootcampRepository) WithinRadius(ctx context.Context, lng, lat, radius float64) ([]*entity.Bootcamp, error) {
	filter := bson.M{
		"location": bson.M{
			"$geoWithin": bson.M{"$centerSphere": bson.A{bson.A{lng, lat}, radius}},
		},
	}
	cursor, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []mongoBootcamp
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	out := make([]*entity.Bootcamp, 0, len(docs))
	for i := range docs {
		out = append(out, fromMongoBootcamp(&docs[i]))
	}
	return out, nil
}

func (r *BootcampRepository) Summaries(ctx context.Context, ids []string) (map[string]query.Record, error) {
	out := map[string]query.Record{}
	oids := parseIDs(ids)
	if len(oids) == 0 {
		return out, nil
	}
	opts := options.Find().SetProjection(bson.D{{Key: "name", Value: 1}, {Key: "description", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": oids}}, opts)
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
		out[rec.ID()] = rec
	}
	return out, cursor.Err()
}

func (r *BootcampRepository) SetAverageCost(ctx context.Context, id string, avg *float64) error {
	return r.setOrUnset(ctx, id, "averageCost", avg)
}

func (r *BootcampRepository) SetAverageRating(ctx context.Context, id string, avg *float64) error {
	return r.setOrUnset(ctx, id, "averageRating", avg)
}

func (r *BootcampRepository) SetPhoto(ctx context.Context, id, photo string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": bson.M{"photo": photo}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return notFound(id)
	}
	return nil
}

func (r *BootcampRepository) setOrUnset(ctx context.Context, id, field string, v *float64) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	update := bson.M{"$unset": bson.M{field: ""}}
	if v != nil {
		update = bson.M{"$set": bson.M{field: *v}}
	}
	_, err = r.coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	return err
}

func (r *BootcampRepository) List(ctx context.Context, q query.Query) ([]query.Record, error) {
	return listRecords(ctx, r.coll, q, nil)
}

func (r *BootcampRepository) CountAll(ctx context.Context) (int64, error) {
	return countAll(ctx, r.coll)
}

func toMongoBootcamp(b *entity.Bootcamp) (*mongoBootcamp, error) {
	doc := &mongoBootcamp{
		Name:          b.Name,
		Slug:          b.Slug,
		Description:   b.Description,
		Website:       b.Website,
		Phone:         b.Phone,
		Email:         b.Email,
		Careers:       b.Careers,
		AverageRating: b.AverageRating,
		AverageCost:   b.AverageCost,
		Photo:         b.Photo,
		Housing:       b.Housing,
		JobAssistance: b.JobAssistance,
		JobGuarantee:  b.JobGuarantee,
		AcceptGi:      b.AcceptGi,
		CreatedAt:     b.CreatedAt,
	}
	if b.ID != "" {
		oid, err := parseID(b.ID)
		if err != nil {
			return nil, err
		}
		doc.ID = oid
	}
	if b.User != "" {
		oid, err := parseID(b.User)
		if err != nil {
			return nil, err
		}
		doc.User = oid
	}
	if l := b.Location; l != nil {
		doc.Location = &mongoLocation{
			Type: l.Type, Coordinates: l.Coordinates, FormattedAddress: l.FormattedAddress,
			Street: l.Street, City: l.City, State: l.State, Zipcode: l.Zipcode, Country: l.Country,
		}
	}
	return doc, nil
}

func fromMongoBootcamp(doc *mongoBootcamp) *entity.Bootcamp {
	b := &entity.Bootcamp{
		ID:            doc.ID.Hex(),
		User:          hexOrEmpty(doc.User),
		Name:          doc.Name,
		Slug:          doc.Slug,
		Description:   doc.Description,
		Website:       doc.Website,
		Phone:         doc.Phone,
		Email:         doc.Email,
		Careers:       doc.Careers,
		AverageRating: doc.AverageRating,
		AverageCost:   doc.AverageCost,
		Photo:         doc.Photo,
		Housing:       doc.Housing,
		JobAssistance: doc.JobAssistance,
		JobGuarantee:  doc.JobGuarantee,
		AcceptGi:      doc.AcceptGi,
		CreatedAt:     doc.CreatedAt,
	}
	if l := doc.Location; l != nil {
		b.Location = &entity.Location{
			Type: l.Type, Coordinates: l.Coordinates, FormattedAddress: l.FormattedAddress,
			Street: l.Street, City: l.City, State: l.State, Zipcode: l.Zipcode, Country: l.Country,
		}
	}
	return b
}
