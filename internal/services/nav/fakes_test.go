package nav

import (
	"context"

	"github.com/millennium-tools/banav/internal/services/nav/assets"
	"github.com/millennium-tools/banav/internal/services/nav/timeline"
)

type fakeResolver struct {
	result   assets.Result
	ok       bool
	registry *assets.HandleRegistry
}

func (f *fakeResolver) Lookup(ctx context.Context, name string) (assets.Result, bool) {
	return f.result, f.ok
}

func (f *fakeResolver) Handles() *assets.HandleRegistry {
	return f.registry
}

type fakeBuilder struct {
	events []timeline.Event
	err    error
}

func (f *fakeBuilder) Build(ctx context.Context) ([]timeline.Event, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.events, nil
}
