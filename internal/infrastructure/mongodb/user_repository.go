package mongodb

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/oksasatya/devcamper-api/internal/domain/apperror"
	"github.com/oksasatya/devcamper-api/internal/domain/entity"
	"github.com/oksasatya/devcamper-api/internal/domain/query"
	"github.com/oksasatya/devcamper-api/internal/domain/repository"
)

type mongoUser struct {
	ID                  primitive.ObjectID `bson:"_id"`
	Name                string             `bson:"name"`
	Email               string             `bson:"email"`
	Role                string             `bson:"role"`
	Password            string             `bson:"password"`
	ResetPasswordToken  string             `bson:"resetPasswordToken,omitempty"`
	ResetPasswordExpire *time.Time         `bson:"resetPasswordExpire,omitempty"`
	CreatedAt           time.Time          `bson:"createdAt"`
}

type UserRepository struct {
	coll *mongo.Collection
}

var _ repository.UserRepository = (*UserRepository)(nil)

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(CollectionUsers)}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	doc, err := toMongoUser(u)
	if err != nil {
		return err
	}
	doc.ID = primitive.NewObjectID()
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return translate(err, "")
	}
	u.ID = doc.ID.Hex()
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid}, func() error { return notFound(id) })
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"email": strings.ToLower(strings.TrimSpace(email))}, func() error {
		return apperror.NotFound("There is no user with that email")
	})
}

func (r *UserRepository) GetByResetToken(ctx context.Context, tokenHash string, now time.Time) (*entity.User, error) {
	filter := bson.M{
		"resetPasswordToken":  tokenHash,
		"resetPasswordExpire": bson.M{"$gt": now},
	}
	return r.findOne(ctx, filter, func() error { return apperror.NotFound("reset token not found") })
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M, missing func() error) (*entity.User, error) {
	var doc mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, missing()
		}
		return nil, err
	}
	return fromMongoUser(&doc), nil
}

// Update replaces the stored user. Cleared reset fields are removed from the document.
var userEditable = []string{"name", "email", "role", "password", "resetPasswordToken", "resetPasswordExpire"}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	doc, err := toMongoUser(u)
	if err != nil {
		return err
	}
	return updateOwned(ctx, r.coll, doc.ID, doc, userEditable...)
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	return deleteOne(ctx, r.coll, id)
}

func (r *UserRepository) List(ctx context.Context, q query.Query) ([]query.Record, error) {
	return listRecords(ctx, r.coll, q, nil)
}

func (r *UserRepository) CountAll(ctx context.Context) (int64, error) {
	return countAll(ctx, r.coll)
}

func toMongoUser(u *entity.User) (*mongoUser, error) {
	doc := &mongoUser{
		Name:                u.Name,
		Email:               strings.ToLower(strings.TrimSpace(u.Email)),
		Role:                string(u.Role),
		Password:            u.Password,
		ResetPasswordToken:  u.ResetPasswordToken,
		ResetPasswordExpire: u.ResetPasswordExpire,
		CreatedAt:           u.CreatedAt,
	}
	if u.ID != "" {
		oid, err := parseID(u.ID)
		if err != nil {
			return nil, err
		}
		doc.ID = oid
	}
	return doc, nil
}

func fromMongoUser(doc *mongoUser) *entity.User {
	return &entity.User{
		ID:                  doc.ID.Hex(),
		Name:                doc.Name,
		Email:               doc.Email,
		Role:                entity.Role(doc.Role),
		Password:            doc.Password,
		ResetPasswordToken:  doc.ResetPasswordToken,
		ResetPasswordExpire: doc.ResetPasswordExpire,
		CreatedAt:           doc.CreatedAt,
	}
}
