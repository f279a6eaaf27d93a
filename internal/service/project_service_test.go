package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/visitech/portfolio-api/internal/adapter/analyzer"
	"github.com/visitech/portfolio-api/internal/common"
	"github.com/visitech/portfolio-api/internal/domain"
)

func strPtr(s string) *string { return &s }

func repoRecord(name string, stars int, updatedDaysAgo int) *domain.RepoRecord {
	now := time.Now()
	return &domain.RepoRecord{
		Name:        name,
		FullName:    "vjrivmon/" + name,
		HTMLURL:     "https://github.com/vjrivmon/" + name,
		Description: strPtr("Project " + name),
		Topics:      []string{},
		Stars:       stars,
		Size:        200,
		CreatedAt:   now.AddDate(-1, 0, 0),
		UpdatedAt:   now.AddDate(0, 0, -updatedDaysAgo),
		PushedAt:    now.AddDate(0, 0, -updatedDaysAgo),
	}
}

func newTestService(source *MockRepoSource, store *MockSnapshotStore) *ProjectService {
	settings := Settings{Owner: "vjrivmon", Concurrency: 2, CommitLimit: 5}
	if store == nil {
		return NewProjectService(source, analyzer.NewAnalyzer(nil), nil, settings)
	}
	return NewProjectService(source, analyzer.NewAnalyzer(nil), store, settings)
}

func TestNewProjectService_Defaults(t *testing.T) {
	svc := NewProjectService(new(MockRepoSource), analyzer.NewAnalyzer(nil), nil, Settings{})
	assert.Equal(t, 10, svc.settings.CommitLimit)
	assert.Equal(t, domain.FeaturedProjects, svc.settings.Featured)
	assert.Nil(t, svc.store)
}

func TestProjectService_GetAllProjects(t *testing.T) {
	source := new(MockRepoSource)
	store := new(MockSnapshotStore)

	source.On("ListRepositories", mock.Anything).Return([]*domain.RepoRecord{
		repoRecord("older", 1, 40),
		repoRecord("newest", 2, 1),
		repoRecord("middle", 3, 10),
	}, nil)
	source.On("GetReadme", mock.Anything, "newest").Return(strPtr("![shot](https://example.com/s.png)"), nil)
	source.On("GetReadme", mock.Anything, "middle").Return(nil, errors.New("timeout"))
	source.On("GetReadme", mock.Anything, "older").Return(nil, nil)
	source.On("GetLanguages", mock.Anything, "newest").Return(map[string]int{"Go": 100}, nil)
	source.On("GetLanguages", mock.Anything, "middle").Return(map[string]int{"Python": 50}, nil)
	source.On("GetLanguages", mock.Anything, "older").Return(nil, errors.New("boom"))
	store.On("SaveProjects", mock.Anything, mock.MatchedBy(func(ps []*domain.Project) bool { return len(ps) == 3 })).Return(nil)

	projects, err := newTestService(source, store).GetAllProjects(context.Background())
	require.NoError(t, err)
	require.Len(t, projects, 3)

	assert.Equal(t, "newest", projects[0].Name)
	assert.Equal(t, "middle", projects[1].Name)
	assert.Equal(t, "older", projects[2].Name)

	assert.Equal(t, []string{"https://example.com/s.png"}, projects[0].Screenshots)
	assert.Nil(t, projects[1].Readme, "README 失败按缺失处理")
	assert.Len(t, projects[1].Languages, 1)
	assert.Equal(t, []domain.Language{}, projects[2].Languages, "语言失败按缺失处理")

	source.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestProjectService_GetAllProjects_ListFailure(t *testing.T) {
	t.Run("没有快照时返回空列表", func(t *testing.T) {
		source := new(MockRepoSource)
		source.On("ListRepositories", mock.Anything).Return(nil, errors.New("network down"))

		ctx, degraded := common.WithDegraded(context.Background())
		projects, err := newTestService(source, nil).GetAllProjects(ctx)
		require.NoError(t, err)
		assert.NotNil(t, projects)
		assert.Empty(t, projects)
		assert.True(t, degraded.IsSet())
	})

	t.Run("退回快照", func(t *testing.T) {
		source := new(MockRepoSource)
		store := new(MockSnapshotStore)
		source.On("ListRepositories", mock.Anything).Return(nil, errors.New("network down"))
		store.On("LoadProjects", mock.Anything).Return([]*domain.Project{{ID: "cached", Name: "cached"}}, nil)

		ctx, degraded := common.WithDegraded(context.Background())
		projects, err := newTestService(source, store).GetAllProjects(ctx)
		require.NoError(t, err)
		require.Len(t, projects, 1)
		assert.Equal(t, "cached", projects[0].Name)
		assert.True(t, degraded.IsSet())
		store.AssertNotCalled(t, "SaveProjects", mock.Anything, mock.Anything)
	})

	t.Run("快照也失败", func(t *testing.T) {
		source := new(MockRepoSource)
		store := new(MockSnapshotStore)
		source.On("ListRepositories", mock.Anything).Return(nil, errors.New("network down"))
		store.On("LoadProjects", mock.Anything).Return(nil, errors.New("db down"))

		projects, err := newTestService(source, store).GetAllProjects(context.Background())
		require.NoError(t, err)
		assert.Empty(t, projects)
	})

	t.Run("上下文取消时返回错误", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		source := new(MockRepoSource)
		source.On("ListRepositories", mock.Anything).Return(nil, context.Canceled)

		_, err := newTestService(source, nil).GetAllProjects(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestProjectService_GetAllProjects_SnapshotSaveFailureIgnored(t *testing.T) {
	source := new(MockRepoSource)
	store := new(MockSnapshotStore)
	source.On("ListRepositories", mock.Anything).Return([]*domain.RepoRecord{repoRecord("one", 0, 1)}, nil)
	source.On("GetReadme", mock.Anything, "one").Return(nil, nil)
	source.On("GetLanguages", mock.Anything, "one").Return(nil, nil)
	store.On("SaveProjects", mock.Anything, mock.Anything).Return(common.NewError(common.ErrCodeDatabase, "db down"))

	ctx, degraded := common.WithDegraded(context.Background())
	projects, err := newTestService(source, store).GetAllProjects(ctx)
	require.NoError(t, err)
	assert.Len(t, projects, 1)
	assert.False(t, degraded.IsSet(), "数据源正常时不算降级")
}

func TestProjectService_GetProjectByID(t *testing.T) {
	source := new(MockRepoSource)
	repo := repoRecord("aura-backend", 4, 3)
	lastCommit := time.Now().AddDate(0, 0, -3).Truncate(time.Second)

	source.On("GetRepository", mock.Anything, "aura-backend").Return(repo, nil)
	source.On("GetReadme", mock.Anything, "aura-backend").Return(strPtr("# Aura"), nil)
	source.On("GetLanguages", mock.Anything, "aura-backend").Return(map[string]int{"Python": 10}, nil)
	source.On("GetRecentCommits", mock.Anything, "aura-backend", 5).Return([]domain.CommitRecord{
		{SHA: "a", AuthoredAt: lastCommit},
		{SHA: "b", AuthoredAt: lastCommit.Add(-time.Hour)},
	}, nil)
	source.On("GetContributors", mock.Anything, "aura-backend").Return([]domain.ContributorRecord{
		{Login: "vjrivmon", AvatarURL: "https://a/1", HTMLURL: "https://github.com/vjrivmon", Contributions: 40},
		{Login: "friend", AvatarURL: "https://a/2", HTMLURL: "https://github.com/friend", Contributions: 2},
	}, nil)
	source.On("GetTopics", mock.Anything, "aura-backend").Return([]string{"ai", "voice"}, nil)

	detail, err := newTestService(source, nil).GetProjectByID(context.Background(), "aura-backend")
	require.NoError(t, err)
	require.NotNil(t, detail)

	assert.Equal(t, "aura-backend", detail.ID)
	assert.Equal(t, "Aura Backend", detail.DisplayName)
	assert.Equal(t, 2, detail.Commits)
	require.NotNil(t, detail.LastCommitAt)
	assert.True(t, lastCommit.Equal(*detail.LastCommitAt))
	assert.Equal(t, []string{"ai", "voice"}, detail.Topics)
	assert.Empty(t, repo.Topics, "原始记录不应被修改")

	require.Len(t, detail.Contributors, 2)
	assert.Equal(t, domain.Contributor{
		Username: "vjrivmon", AvatarURL: "https://a/1", ProfileURL: "https://github.com/vjrivmon",
		Contributions: 40, Role: "Owner",
	}, detail.Contributors[0])
	assert.Equal(t, "Contributor", detail.Contributors[1].Role)
	source.AssertExpectations(t)
}

func TestProjectService_GetProjectByID_SkipsTopicsWhenPresent(t *testing.T) {
	source := new(MockRepoSource)
	repo := repoRecord("ecocity", 1, 1)
	repo.Topics = []string{"iot"}

	source.On("GetRepository", mock.Anything, "ecocity").Return(repo, nil)
	source.On("GetReadme", mock.Anything, "ecocity").Return(nil, errors.New("x"))
	source.On("GetLanguages", mock.Anything, "ecocity").Return(nil, errors.New("x"))
	source.On("GetRecentCommits", mock.Anything, "ecocity", 5).Return(nil, errors.New("x"))
	source.On("GetContributors", mock.Anything, "ecocity").Return(nil, errors.New("x"))

	detail, err := newTestService(source, nil).GetProjectByID(context.Background(), "ecocity")
	require.NoError(t, err)
	require.NotNil(t, detail)
	assert.Equal(t, []string{"iot"}, detail.Topics)
	assert.Equal(t, []domain.Contributor{}, detail.Contributors)
	assert.Nil(t, detail.LastCommitAt)
	source.AssertNotCalled(t, "GetTopics", mock.Anything, mock.Anything)
}

func TestProjectService_GetProjectByID_NotFoundAndErrors(t *testing.T) {
	source := new(MockRepoSource)
	source.On("GetRepository", mock.Anything, "nonexistent").Return(nil, nil)
	source.On("GetRepository", mock.Anything, "broken").
		Return(nil, common.WrapError(common.ErrCodeGitHubAPI, "GitHub API 调用失败", errors.New("502")))
	svc := newTestService(source, nil)

	detail, err := svc.GetProjectByID(context.Background(), "nonexistent")
	assert.NoError(t, err)
	assert.Nil(t, detail)

	detail, err = svc.GetProjectByID(context.Background(), "  ")
	assert.NoError(t, err)
	assert.Nil(t, detail)

	// 非法仓库名不发往数据源
	detail, err = svc.GetProjectByID(context.Background(), "../../users/x")
	assert.NoError(t, err)
	assert.Nil(t, detail)
	source.AssertNotCalled(t, "GetRepository", mock.Anything, "../../users/x")

	detail, err = svc.GetProjectByID(context.Background(), "broken")
	require.Error(t, err)
	assert.Nil(t, detail)
	assert.Equal(t, common.ErrCodeGitHubAPI, common.CodeOf(err))
}

func TestProjectService_GetFeaturedProjects(t *testing.T) {
	tests := []struct {
		name  string
		repos []*domain.RepoRecord
		want  int
	}{
		{name: "没有项目", repos: []*domain.RepoRecord{}, want: 0},
		{name: "少于六个", repos: []*domain.RepoRecord{repoRecord("a", 0, 1), repoRecord("b", 0, 1), repoRecord("vimyp", 0, 1)}, want: 3},
		{
			name: "多于六个",
			repos: []*domain.RepoRecord{
				repoRecord("p1", 1, 1), repoRecord("p2", 2, 1), repoRecord("p3", 3, 1), repoRecord("p4", 4, 1),
				repoRecord("p5", 5, 1), repoRecord("p6", 6, 1), repoRecord("p7", 7, 1), repoRecord("neurospot", 0, 1),
			},
			want: 6,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := new(MockRepoSource)
			source.On("ListRepositories", mock.Anything).Return(tt.repos, nil)
			source.On("GetReadme", mock.Anything, mock.Anything).Return(nil, nil)
			source.On("GetLanguages", mock.Anything, mock.Anything).Return(nil, nil)

			featured, err := newTestService(source, nil).GetFeaturedProjects(context.Background())
			require.NoError(t, err)
			assert.Len(t, featured, tt.want)
		})
	}
}

func TestProjectService_CategoryAndSearch(t *testing.T) {
	source := new(MockRepoSource)
	iot := repoRecord("ecocity", 0, 1)
	web := repoRecord("osyris-web", 0, 1)
	web.Description = strPtr("Scout group website")
	source.On("ListRepositories", mock.Anything).Return([]*domain.RepoRecord{iot, web}, nil)
	source.On("GetReadme", mock.Anything, mock.Anything).Return(nil, nil)
	source.On("GetLanguages", mock.Anything, mock.Anything).Return(nil, nil)
	svc := newTestService(source, nil)
	ctx := context.Background()

	byCategory, err := svc.GetProjectsByCategory(ctx, domain.CategoryIoT)
	require.NoError(t, err)
	require.Len(t, byCategory, 1)
	assert.Equal(t, "ecocity", byCategory[0].Name)

	found, err := svc.SearchProjects(ctx, "SCOUT")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "osyris-web", found[0].Name)
}

func TestProjectService_GetProjectStats(t *testing.T) {
	source := new(MockRepoSource)
	source.On("ListRepositories", mock.Anything).Return([]*domain.RepoRecord{repoRecord("ecocity", 3, 1)}, nil)
	source.On("GetReadme", mock.Anything, mock.Anything).Return(nil, nil)
	source.On("GetLanguages", mock.Anything, mock.Anything).Return(nil, nil)

	stats, err := newTestService(source, nil).GetProjectStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalProjects)
	assert.Equal(t, 3, stats.Metrics.TotalStars)
	assert.Equal(t, 1, stats.Metrics.RecentlyUpdated)
}

func TestProjectService_GetRateLimitStatus(t *testing.T) {
	source := new(MockRepoSource)
	reset := time.Date(2026, 10, 16, 13, 0, 0, 0, time.UTC)
	source.On("GetRateLimitStatus", mock.Anything).Return(&domain.RateLimitStatus{Limit: 60, Remaining: 12, Reset: reset}, nil).Once()
	source.On("GetRateLimitStatus", mock.Anything).Return(nil, errors.New("boom")).Once()
	svc := newTestService(source, nil)

	status, err := svc.GetRateLimitStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 12, status.Remaining)

	_, err = svc.GetRateLimitStatus(context.Background())
	assert.Error(t, err)
}
