package templates

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type stubResolver struct {
	geo Geo
	err error
}

func (s stubResolver) Lookup(context.Context, string) (Geo, error) { return s.geo, s.err }

func TestLocalize(t *testing.T) {
	data := NewResetPasswordData("DevCamper", "Jane", "jane@example.com", "http://x", WithIP("1.2.3.4"))
	Localize(context.Background(), stubResolver{geo: Geo{City: "Boston", Region: "MA", Country: "US"}}, data)
	assert.Equal(t, "Boston, MA, US", data["Location"])
}

func TestLocalize_KeepsExistingAndIgnoresFailures(t *testing.T) {
	data := map[string]any{"IP": "1.2.3.4", "Location": "Paris"}
	Localize(context.Background(), stubResolver{geo: Geo{City: "Boston"}}, data)
	assert.Equal(t, "Paris", data["Location"])

	data = map[string]any{"IP": "1.2.3.4"}
	Localize(context.Background(), stubResolver{err: errors.New("down")}, data)
	assert.NotContains(t, data, "Location")
}

func TestDefaultFn(t *testing.T) {
	assert.Equal(t, "x", defaultFn("x", ""))
	assert.Equal(t, "x", defaultFn("x", nil))
	assert.Equal(t, "y", defaultFn("x", "y"))
	assert.Equal(t, "x", defaultFn("x", 0))
}

func TestIPAPIResolver_SkipsLocalAddresses(t *testing.T) {
	r := IPAPIResolver{}
	for _, ip := range []string{"127.0.0.1", "10.0.0.8", "192.168.1.20", "::1"} {
		_, err := r.Lookup(context.Background(), ip)
		assert.ErrorIs(t, err, ErrLocalIP, ip)
	}
	_, err := r.Lookup(context.Background(), "not-an-ip")
	assert.Error(t, err)
}
