package timeline

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// gameAlias identifies the requesting game on activity feed calls.
const gameAlias = "ba"

// ActivityRecord is one raw activity from the feed. Time fields are Unix
// seconds; Build converts them to milliseconds.
type ActivityRecord struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	BeginAt     int64  `json:"begin_at"`
	EndAt       int64  `json:"end_at"`
	PubArea     string `json:"pub_area"`
}

// StudentRecord is one raw character from the roster snapshot.
type StudentRecord struct {
	Name         string `json:"Name"`
	FamilyName   string `json:"FamilyName"`
	PersonalName string `json:"PersonalName"`
	BirthDay     string `json:"BirthDay"`
}

// ActivityFeed fetches the activity records in effect at the given time.
type ActivityFeed interface {
	Activities(ctx context.Context, now time.Time) ([]ActivityRecord, error)
}

// RosterFeed fetches the character roster snapshot.
type RosterFeed interface {
	Roster(ctx context.Context) ([]StudentRecord, error)
}

// Doer is the injected HTTP client capability.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// HTTPActivityFeed queries the activity endpoint over HTTP.
type HTTPActivityFeed struct {
	Endpoint string
	Client   Doer
}

var _ ActivityFeed = (*HTTPActivityFeed)(nil)

func (f *HTTPActivityFeed) Activities(ctx context.Context, now time.Time) ([]ActivityRecord, error) {
	u, err := url.Parse(f.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse activity endpoint: %w", err)
	}
	query := u.Query()
	query.Set("active_at", strconv.FormatInt(now.Unix(), 10))
	u.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("build activity request: %w", err)
	}
	req.Header.Set("game-alias", gameAlias)

	res, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("activity request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("activity request: unexpected http status %d", res.StatusCode)
	}

	var envelope struct {
		Data []ActivityRecord `json:"data"`
	}
	if err := json.NewDecoder(res.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode activity response: %w", err)
	}
	return envelope.Data, nil
}

// HTTPRosterFeed fetches the static roster JSON over HTTP.
type HTTPRosterFeed struct {
	Endpoint string
	Client   Doer
}

var _ RosterFeed = (*HTTPRosterFeed)(nil)

func (f *HTTPRosterFeed) Roster(ctx context.Context) ([]StudentRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.Endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build roster request: %w", err)
	}

	res, err := f.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("roster request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("roster request: unexpected http status %d", res.StatusCode)
	}

	var roster []StudentRecord
	if err := json.NewDecoder(res.Body).Decode(&roster); err != nil {
		return nil, fmt.Errorf("decode roster response: %w", err)
	}
	return roster, nil
}
