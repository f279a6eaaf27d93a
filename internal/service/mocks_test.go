package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/visitech/portfolio-api/internal/domain"
)

// MockRepoSource 模拟 port.RepoSource
type MockRepoSource struct {
	mock.Mock
}

func (m *MockRepoSource) ListRepositories(ctx context.Context) ([]*domain.RepoRecord, error) {
	args := m.Called(ctx)
	repos, _ := args.Get(0).([]*domain.RepoRecord)
	return repos, args.Error(1)
}

func (m *MockRepoSource) GetRepository(ctx context.Context, name string) (*domain.RepoRecord, error) {
	args := m.Called(ctx, name)
	repo, _ := args.Get(0).(*domain.RepoRecord)
	return repo, args.Error(1)
}

func (m *MockRepoSource) GetReadme(ctx context.Context, name string) (*string, error) {
	args := m.Called(ctx, name)
	readme, _ := args.Get(0).(*string)
	return readme, args.Error(1)
}

func (m *MockRepoSource) GetLanguages(ctx context.Context, name string) (map[string]int, error) {
	args := m.Called(ctx, name)
	langs, _ := args.Get(0).(map[string]int)
	return langs, args.Error(1)
}

func (m *MockRepoSource) GetRecentCommits(ctx context.Context, name string, limit int) ([]domain.CommitRecord, error) {
	args := m.Called(ctx, name, limit)
	commits, _ := args.Get(0).([]domain.CommitRecord)
	return commits, args.Error(1)
}

func (m *MockRepoSource) GetContributors(ctx context.Context, name string) ([]domain.ContributorRecord, error) {
	args := m.Called(ctx, name)
	contributors, _ := args.Get(0).([]domain.ContributorRecord)
	return contributors, args.Error(1)
}

func (m *MockRepoSource) GetTopics(ctx context.Context, name string) ([]string, error) {
	args := m.Called(ctx, name)
	topics, _ := args.Get(0).([]string)
	return topics, args.Error(1)
}

func (m *MockRepoSource) GetRateLimitStatus(ctx context.Context) (*domain.RateLimitStatus, error) {
	args := m.Called(ctx)
	status, _ := args.Get(0).(*domain.RateLimitStatus)
	return status, args.Error(1)
}

// MockSnapshotStore 模拟 port.SnapshotStore
type MockSnapshotStore struct {
	mock.Mock
}

func (m *MockSnapshotStore) SaveProjects(ctx context.Context, projects []*domain.Project) error {
	args := m.Called(ctx, projects)
	return args.Error(0)
}

func (m *MockSnapshotStore) LoadProjects(ctx context.Context) ([]*domain.Project, error) {
	args := m.Called(ctx)
	projects, _ := args.Get(0).([]*domain.Project)
	return projects, args.Error(1)
}
