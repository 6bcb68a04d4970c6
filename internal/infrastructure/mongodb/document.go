package mongodb

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/oksasatya/devcamper-api/internal/domain/apperror"
	"github.com/oksasatya/devcamper-api/internal/domain/query"
)

// parseID converts a hex id; a malformed id is reported as a missing resource.
func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, notFound(id)
	}
	return oid, nil
}

func parseIDs(ids []string) []primitive.ObjectID {
	out := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		if oid, err := primitive.ObjectIDFromHex(id); err == nil {
			out = append(out, oid)
		}
	}
	return out
}

func notFound(id string) error {
	return apperror.NotFound("Resource not found with id of %s", id)
}

func hexOrEmpty(oid primitive.ObjectID) string {
	if oid.IsZero() {
		return ""
	}
	return oid.Hex()
}

// ownedUpdate builds an update that writes only the owned fields of doc.
// Owned fields the encoded document omits (omitempty) are unset; every
// other field of the stored document is left as it is.
func ownedUpdate(doc any, owned ...string) (bson.M, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return nil, err
	}
	var encoded bson.M
	if err := bson.Unmarshal(raw, &encoded); err != nil {
		return nil, err
	}
	set, unset := bson.M{}, bson.M{}
	for _, f := range owned {
		if v, ok := encoded[f]; ok {
			set[f] = v
		} else {
			unset[f] = ""
		}
	}
	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	return update, nil
}

// updateOwned applies ownedUpdate(doc, owned...) to the document with the given id.
func updateOwned(ctx context.Context, coll *mongo.Collection, oid primitive.ObjectID, doc any, owned ...string) error {
	update, err := ownedUpdate(doc, owned...)
	if err != nil {
		return err
	}
	res, err := coll.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return translate(err, oid.Hex())
	}
	if res.MatchedCount == 0 {
		return notFound(oid.Hex())
	}
	return nil
}

// translate converts driver errors into the error taxonomy.
func translate(err error, id string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return notFound(id)
	case mongo.IsDuplicateKeyError(err):
		return apperror.DuplicateKey(err)
	}
	return err
}

// normalize turns a raw document into a record: _id becomes id, ObjectIDs become hex strings
// and BSON dates become time values.
func normalize(doc bson.M) query.Record {
	out := make(query.Record, len(doc))
	for k, v := range doc {
		if k == "_id" {
			k = "id"
		}
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch x := v.(type) {
	case primitive.ObjectID:
		return x.Hex()
	case primitive.DateTime:
		return x.Time().UTC()
	case bson.M:
		return normalize(x)
	case bson.D:
		return normalize(x.Map())
	case bson.A:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = normalizeValue(item)
		}
		return out
	}
	return v
}

// listRecords runs a query.Query against coll and returns normalized records.
func listRecords(ctx context.Context, coll *mongo.Collection, q query.Query, extra bson.D) ([]query.Record, error) {
	filter := buildFilter(q.Filter)
	filter = append(filter, extra...)

	opts := options.Find().
		SetProjection(buildProjection(q.Select)).
		SetSort(buildSort(q.Sort))
	if q.Limit > 0 {
		opts.SetSkip(int64(q.Skip())).SetLimit(int64(q.Limit))
	}

	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []query.Record
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, err
		}
		records = append(records, normalize(doc))
	}
	return records, cursor.Err()
}

func countAll(ctx context.Context, coll *mongo.Collection) (int64, error) {
	return coll.CountDocuments(ctx, bson.D{})
}

// average computes the mean of field over documents whose bootcamp is bootcampID.
// It returns nil when no document matches.
func average(ctx context.Context, coll *mongo.Collection, bootcampID, field string) (*float64, error) {
	oid, err := parseID(bootcampID)
	if err != nil {
		return nil, err
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "bootcamp", Value: oid}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$bootcamp"},
			{Key: "avg", Value: bson.D{{Key: "$avg", Value: "$" + field}}},
		}}},
	}
	cursor, err := coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Avg *float64 `bson:"avg"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0].Avg, nil
}

func deleteByBootcamp(ctx context.Context, coll *mongo.Collection, bootcampID string) (int64, error) {
	oid, err := parseID(bootcampID)
	if err != nil {
		return 0, err
	}
	res, err := coll.DeleteMany(ctx, bson.M{"bootcamp": oid})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func deleteOne(ctx context.Context, coll *mongo.Collection, id string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}
	res, err := coll.DeleteOne(ctx, bson.M{"_id": oid})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return notFound(id)
	}
	return nil
}
