// Package geocoder resolves free-form addresses into GeoJSON locations.
package geocoder

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oksasatya/devcamper-api/internal/domain/apperror"
	"github.com/oksasatya/devcamper-api/internal/domain/entity"
)

const mapQuestURL = "https://www.mapquestapi.com/geocoding/v1/address"

// MapQuest implements geocoding using the MapQuest address API.
type MapQuest struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

func NewMapQuest(apiKey string) *MapQuest {
	return &MapQuest{APIKey: apiKey, BaseURL: mapQuestURL, Client: &http.Client{Timeout: 5 * time.Second}}
}

type mapQuestResponse struct {
	Info struct {
		StatusCode int      `json:"statuscode"`
		Messages   []string `json:"messages"`
	} `json:"info"`
	Results []struct {
		Locations []struct {
			Street     string `json:"street"`
			AdminArea5 string `json:"adminArea5"` // city
			AdminArea3 string `json:"adminArea3"` // state
			AdminArea1 string `json:"adminArea1"` // country
			PostalCode string `json:"postalCode"`
			LatLng     struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"latLng"`
		} `json:"locations"`
	} `json:"results"`
}

// Geocode returns the best match for address. No match is a NotFound, a provider failure an Upstream error.
func (m *MapQuest) Geocode(ctx context.Context, address string) (*entity.Location, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return nil, apperror.Validation("Please add an address")
	}
	if m.Client == nil {
		m.Client = &http.Client{Timeout: 5 * time.Second}
	}
	base := m.BaseURL
	if base == "" {
		base = mapQuestURL
	}

	q := url.Values{}
	q.Set("key", m.APIKey)
	q.Set("location", address)
	q.Set("maxResults", "1")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+q.Encode(), nil)
	if err != nil {
		return nil, apperror.Upstream("Geocoding failed", err)
	}
	resp, err := m.Client.Do(req)
	if err != nil {
		return nil, apperror.Upstream("Geocoding failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperror.Upstream("Geocoding failed", fmt.Errorf("mapquest: status %d", resp.StatusCode))
	}
	var body mapQuestResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, apperror.Upstream("Geocoding failed", err)
	}
	if body.Info.StatusCode != 0 {
		return nil, apperror.Upstream("Geocoding failed", fmt.Errorf("mapquest: %s", strings.Join(body.Info.Messages, "; ")))
	}
	if len(body.Results) == 0 || len(body.Results[0].Locations) == 0 {
		return nil, apperror.NotFound("Could not geocode address %s", address)
	}

	l := body.Results[0].Locations[0]
	return &entity.Location{
		Type:             "Point",
		Coordinates:      []float64{l.LatLng.Lng, l.LatLng.Lat},
		FormattedAddress: formatAddress(l.Street, l.AdminArea5, l.AdminArea3, l.PostalCode, l.AdminArea1),
		Street:           l.Street,
		City:             l.AdminArea5,
		State:            l.AdminArea3,
		Zipcode:          l.PostalCode,
		Country:          l.AdminArea1,
	}, nil
}

// formatAddress renders "street, city, state zipcode, country", skipping empty parts.
func formatAddress(street, city, state, zipcode, country string) string {
	var parts []string
	for _, p := range []string{street, city, strings.TrimSpace(state + " " + zipcode), country} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
