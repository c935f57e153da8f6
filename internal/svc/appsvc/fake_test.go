package appsvc

import (
	"context"
	"sort"
	"sync"

	"github.com/yusufsyaifudin/appstore/internal/svc/apprepo"
)

type seqUID struct {
	mu sync.Mutex
	n  uint64
}

func (s *seqUID) NextID() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return s.n, nil
}

// memAppRepo keeps apps in map. List applies status, featured and category filter only.
type memAppRepo struct {
	mu       sync.Mutex
	apps     map[int64]apprepo.App
	lastList apprepo.InputList
	writes   int
}

var _ apprepo.Repo = (*memAppRepo)(nil)

func newMemAppRepo() *memAppRepo {
	return &memAppRepo{apps: map[int64]apprepo.App{}}
}

func (m *memAppRepo) Create(_ context.Context, in apprepo.InputCreate) (out apprepo.OutCreate, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	m.apps[in.App.ID] = in.App
	out.App = in.App
	return
}

func (m *memAppRepo) GetByID(_ context.Context, in apprepo.InputGetByID) (out apprepo.OutGetByID, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	app, ok := m.apps[in.ID]
	if !ok {
		err = apprepo.ErrNotFound
		return
	}

	out.App = app
	return
}

func (m *memAppRepo) List(_ context.Context, in apprepo.InputList) (out apprepo.OutList, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastList = in
	out.Apps = make([]apprepo.App, 0)
	for _, app := range m.apps {
		if app.Status != in.Status {
			continue
		}

		if in.Featured && !app.Featured {
			continue
		}

		if in.Category != "" && app.Category != in.Category {
			continue
		}

		out.Apps = append(out.Apps, app)
	}

	sort.Slice(out.Apps, func(i, j int) bool {
		return out.Apps[i].ID > out.Apps[j].ID
	})
	return
}

func (m *memAppRepo) ListByDeveloper(_ context.Context, in apprepo.InputListByDeveloper) (out apprepo.OutListByDeveloper, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out.Apps = make([]apprepo.App, 0)
	for _, app := range m.apps {
		if app.DeveloperID == in.DeveloperID {
			out.Apps = append(out.Apps, app)
		}
	}
	return
}

func (m *memAppRepo) Update(_ context.Context, in apprepo.InputUpdate) (out apprepo.OutUpdate, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	old, ok := m.apps[in.App.ID]
	if !ok {
		err = apprepo.ErrNotFound
		return
	}

	m.writes++
	app := in.App
	app.Rating, app.TotalRatings, app.Downloads, app.CreatedAt = old.Rating, old.TotalRatings, old.Downloads, old.CreatedAt
	m.apps[app.ID] = app
	out.App = app
	return
}

func (m *memAppRepo) DelByID(_ context.Context, in apprepo.InputDelByID) (out apprepo.OutDelByID, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.apps[in.ID]
	if ok {
		m.writes++
		delete(m.apps, in.ID)
	}

	out.Success = ok
	return
}

func (m *memAppRepo) IncrementDownloads(_ context.Context, in apprepo.InputIncrementDownloads) (out apprepo.OutIncrementDownloads, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	app, ok := m.apps[in.ID]
	if !ok {
		err = apprepo.ErrNotFound
		return
	}

	app.Downloads++
	app.UpdatedAt = in.UpdatedAt
	m.apps[in.ID] = app
	out.Downloads = app.Downloads
	return
}

func (m *memAppRepo) SetRating(_ context.Context, in apprepo.InputSetRating) (out apprepo.OutSetRating, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	app, ok := m.apps[in.ID]
	if !ok {
		err = apprepo.ErrNotFound
		return
	}

	app.Rating, app.TotalRatings, app.UpdatedAt = in.Rating, in.TotalRatings, in.UpdatedAt
	m.apps[in.ID] = app
	out.App = app
	return
}
