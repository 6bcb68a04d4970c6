package templates

import (
	"context"
	"strings"
	"time"
)

// Option pattern
type Option func(*EmailData)

func WithIP(ip string) Option        { return func(d *EmailData) { d.IP = ip } }
func WithUserAgent(ua string) Option { return func(d *EmailData) { d.UserAgent = ua } }

func setLocation(d *EmailData, loc string) {
	if s := strings.TrimSpace(loc); s != "" {
		d.Location = s
	}
}

func WithExpiresAt(t time.Time) Option {
	return func(d *EmailData) {
		utc := t.UTC()
		d.ExpiresAt = utc
		d.ExpiresAtText = utc.Format("02 January 2006, 15:04 MST")
	}
}

func NewBaseEmailData(appName, typ, name, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:           name,
		Email:          email,
		RecipientEmail: email,
		Type:           typ,
		AppName:        appName,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

// NewResetPasswordData builds the data of the reset_password template.
func NewResetPasswordData(appName, name, email, resetURL string, opts ...Option) map[string]any {
	d := NewBaseEmailData(appName, ResetPassword, name, email, opts...)
	d.ResetURL = resetURL
	return ToMap(d)
}

// Localize fills Location from the IP in data when it is missing. The email worker calls it
// before rendering a queued job.
func Localize(ctx context.Context, r GeoResolver, data map[string]any) {
	if data == nil || r == nil {
		return
	}
	if loc, _ := data["Location"].(string); strings.TrimSpace(loc) != "" {
		return
	}
	ip, _ := data["IP"].(string)
	if strings.TrimSpace(ip) == "" {
		return
	}
	if g, err := r.Lookup(ctx, ip); err == nil {
		if s := FormatGeo(g); s != "" {
			data["Location"] = s
		}
	}
}
