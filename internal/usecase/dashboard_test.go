package usecase

import (
	"context"
	"testing"
	"time"
)

type fakeDashboardRepo struct {
	Repository

	statusCalls int
}

func (r *fakeDashboardRepo) CountTasksByStatus(context.Context) (map[TaskStatus]int, error) {
	r.statusCalls++
	return map[TaskStatus]int{
		TaskStatusTodo:       4,
		TaskStatusInProgress: 2,
	}, nil
}

func (r *fakeDashboardRepo) CountOverdueTasks(context.Context, time.Time) (int, error) {
	return 3, nil
}

func (r *fakeDashboardRepo) CountTasksByTrack(context.Context) ([]TrackTaskCount, error) {
	return nil, nil
}

type fakeCache struct {
	store map[string][]byte
}

func (c *fakeCache) Get(_ context.Context, key string) ([]byte, error) {
	return c.store[key], nil
}

func (c *fakeCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.store[key] = value
	return nil
}

func TestGetDashboardSummaryUsesCache(t *testing.T) {
	repo := &fakeDashboardRepo{}
	cache := &fakeCache{store: make(map[string][]byte)}
	uc := New(repo, nil, nil, nil, cache)

	first, err := uc.GetDashboardSummary(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.OverdueCount != 3 {
		t.Errorf("overdue count = %d, want 3", first.OverdueCount)
	}
	if repo.statusCalls != 1 {
		t.Fatalf("expected 1 repo call, got %d", repo.statusCalls)
	}

	second, err := uc.GetDashboardSummary(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.statusCalls != 1 {
		t.Errorf("second call should be served from cache, repo called %d times", repo.statusCalls)
	}
	if second.TasksByStatus[TaskStatusTodo] != 4 {
		t.Errorf("cached summary lost data: %+v", second)
	}
}

func TestGetDashboardSummaryWithoutCache(t *testing.T) {
	repo := &fakeDashboardRepo{}
	uc := New(repo, nil, nil, nil, nil)

	if _, err := uc.GetDashboardSummary(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := uc.GetDashboardSummary(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.statusCalls != 2 {
		t.Errorf("expected repo hit on every call without cache, got %d", repo.statusCalls)
	}
}
