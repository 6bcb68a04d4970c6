package mongodb

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/oksasatya/devcamper-api/internal/domain/entity"
)

func TestBootcampUpdate_LeavesDerivedFieldsAlone(t *testing.T) {
	stale := 1000.0
	doc, err := toMongoBootcamp(&entity.Bootcamp{
		ID:          "5d713995b721c3bb38c1f5d0",
		User:        "5d7a514b5d2c12c7449be045",
		Name:        "Devworks Bootcamp",
		Slug:        "devworks-bootcamp",
		Description: "Full stack",
		Careers:     []string{"Web Development"},
		AverageCost: &stale,
		Photo:       "old.jpg",
		Housing:     true,
		CreatedAt:   time.Now(),
	})
	require.NoError(t, err)

	update, err := ownedUpdate(doc, bootcampEditable...)
	require.NoError(t, err)

	set := update["$set"].(bson.M)
	assert.Equal(t, "Devworks Bootcamp", set["name"])
	assert.Equal(t, true, set["housing"])
	for _, derived := range []string{"averageCost", "averageRating", "photo", "user", "createdAt", "_id"} {
		assert.NotContains(t, set, derived)
	}

	unset := update["$unset"].(bson.M)
	assert.Contains(t, unset, "website")
	assert.Contains(t, unset, "location")
	assert.NotContains(t, unset, "averageCost")
}

func TestUserUpdate_ClearsResetTokenAndKeepsCreatedAt(t *testing.T) {
	doc, err := toMongoUser(&entity.User{
		ID:        "5d7a514b5d2c12c7449be045",
		Name:      "John",
		Email:     "john@gmail.com",
		Role:      entity.RoleUser,
		Password:  "$2a$10$hash",
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)

	update, err := ownedUpdate(doc, userEditable...)
	require.NoError(t, err)

	set := update["$set"].(bson.M)
	assert.Equal(t, "john@gmail.com", set["email"])
	assert.NotContains(t, set, "createdAt")
	assert.Equal(t, bson.M{"resetPasswordToken": "", "resetPasswordExpire": ""}, update["$unset"])
}
