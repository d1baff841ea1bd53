package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"roomsync/internal/domain"
)

// One adapter per SourceKind. Each owns its auth scheme, forward fetch
// window, and query shape; normalization is shared.

const dateLayout = "2006-01-02"

func window(days int) (string, string) {
	from := time.Now().UTC().Truncate(24 * time.Hour)
	return from.Format(dateLayout), from.AddDate(0, 0, days).Format(dateLayout)
}

func fetchWindow(ctx context.Context, c *Client, cfg domain.SourceConfig, path string, days int, hdr http.Header, extra url.Values) ([]domain.CanonicalBooking, error) {
	from, to := window(days)
	q := url.Values{}
	q.Set("from", from)
	q.Set("to", to)
	for k, vs := range extra {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u := strings.TrimRight(cfg.Endpoint, "/") + path + "?" + q.Encode()

	var payload any
	if err := c.getJSON(ctx, string(cfg.Kind), u, hdr, &payload); err != nil {
		return nil, err
	}

	raw := extractList(payload)
	out := make([]domain.CanonicalBooking, 0, len(raw))
	for _, m := range raw {
		cb, err := normalizeBooking(cfg.Name, m)
		if err != nil {
			// keep the record so the orchestrator counts it as an error
			// instead of silently dropping it
			log.Warn().Str("source", cfg.Name).Err(err).Msg("unusable vendor record")
		}
		out = append(out, cb)
	}
	return out, nil
}

func bearerHeader(cfg domain.SourceConfig) http.Header {
	h := http.Header{}
	h.Set("Authorization", "Bearer "+cfg.APIKey)
	return h
}

func keyPairHeader(cfg domain.SourceConfig) http.Header {
	h := http.Header{}
	h.Set("X-API-Key", cfg.APIKey)
	h.Set("X-Secret-Key", cfg.APISecret)
	return h
}

// ---- PMS ----

type PMSAdapter struct {
	c *Client
}

func NewPMSAdapter(c *Client) *PMSAdapter { return &PMSAdapter{c: c} }

func (a *PMSAdapter) Fetch(ctx context.Context, cfg domain.SourceConfig) ([]domain.CanonicalBooking, error) {
	return fetchWindow(ctx, a.c, cfg, "/reservations", 30, bearerHeader(cfg), nil)
}

func (a *PMSAdapter) Probe(ctx context.Context, cfg domain.SourceConfig) (time.Duration, error) {
	return a.c.probe(ctx, cfg.Endpoint, bearerHeader(cfg))
}

// ---- OTA ----

type OTAAdapter struct {
	c       *Client
	hotelID string // property identifier required by OTA query contracts
}

func NewOTAAdapter(c *Client, hotelID string) *OTAAdapter {
	return &OTAAdapter{c: c, hotelID: hotelID}
}

func (a *OTAAdapter) Fetch(ctx context.Context, cfg domain.SourceConfig) ([]domain.CanonicalBooking, error) {
	if a.hotelID == "" {
		return nil, fmt.Errorf("ota adapter requires a hotel id")
	}
	extra := url.Values{"hotel_id": []string{a.hotelID}}
	return fetchWindow(ctx, a.c, cfg, "/bookings", 60, keyPairHeader(cfg), extra)
}

func (a *OTAAdapter) Probe(ctx context.Context, cfg domain.SourceConfig) (time.Duration, error) {
	return a.c.probe(ctx, cfg.Endpoint, keyPairHeader(cfg))
}

// ---- Channel manager ----

type ChannelManagerAdapter struct {
	c          *Client
	propertyID string
}

func NewChannelManagerAdapter(c *Client, propertyID string) *ChannelManagerAdapter {
	return &ChannelManagerAdapter{c: c, propertyID: propertyID}
}

func (a *ChannelManagerAdapter) Fetch(ctx context.Context, cfg domain.SourceConfig) ([]domain.CanonicalBooking, error) {
	if a.propertyID == "" {
		return nil, fmt.Errorf("channel manager adapter requires a property id")
	}
	extra := url.Values{"property_id": []string{a.propertyID}}
	return fetchWindow(ctx, a.c, cfg, "/channel/reservations", 45, keyPairHeader(cfg), extra)
}

func (a *ChannelManagerAdapter) Probe(ctx context.Context, cfg domain.SourceConfig) (time.Duration, error) {
	return a.c.probe(ctx, cfg.Endpoint, keyPairHeader(cfg))
}

// ---- Direct booking API ----

type DirectAdapter struct {
	c *Client
}

func NewDirectAdapter(c *Client) *DirectAdapter { return &DirectAdapter{c: c} }

func (a *DirectAdapter) Fetch(ctx context.Context, cfg domain.SourceConfig) ([]domain.CanonicalBooking, error) {
	return fetchWindow(ctx, a.c, cfg, "/api/bookings", 30, bearerHeader(cfg), nil)
}

func (a *DirectAdapter) Probe(ctx context.Context, cfg domain.SourceConfig) (time.Duration, error) {
	return a.c.probe(ctx, cfg.Endpoint, bearerHeader(cfg))
}

// Registry wires one adapter per kind for the orchestrator.
func Registry(c *Client, propertyID string) map[domain.SourceKind]domain.SourceAdapter {
	return map[domain.SourceKind]domain.SourceAdapter{
		domain.KindPMS:            NewPMSAdapter(c),
		domain.KindOTA:            NewOTAAdapter(c, propertyID),
		domain.KindChannelManager: NewChannelManagerAdapter(c, propertyID),
		domain.KindDirect:         NewDirectAdapter(c),
	}
}
