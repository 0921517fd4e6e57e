package timeline

import (
	"context"
	"time"
)

type fakeActivityFeed struct {
	records []ActivityRecord
	err     error
}

func (f *fakeActivityFeed) Activities(ctx context.Context, now time.Time) ([]ActivityRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}

type fakeRosterFeed struct {
	records []StudentRecord
	err     error
}

func (f *fakeRosterFeed) Roster(ctx context.Context) ([]StudentRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.records, nil
}
