package helpers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oksasatya/devcamper-api/config"
)

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "https://storage.googleapis.com/camp-photos/bootcamps/photo_b1.jpg",
		PublicURL("camp-photos", "bootcamps/photo_b1.jpg"))
	assert.Equal(t, "https://storage.googleapis.com/camp-photos/bootcamps/my%20photo.jpg",
		PublicURL("camp-photos", "bootcamps/my photo.jpg"))
}

func TestNewGCSClient_RequiresBucket(t *testing.T) {
	_, err := NewGCSClient(context.Background(), &config.Config{})
	assert.ErrorContains(t, err, "GCS_BUCKET")
}
