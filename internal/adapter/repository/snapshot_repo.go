package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/visitech/portfolio-api/internal/common"
	"github.com/visitech/portfolio-api/internal/domain"
)

// projectSnapshot 最近一次成功抓取的项目快照，一行一个项目。
// 常用的列单独存放便于排查，完整的 Project 以 JSON 存在 payload 中。
type projectSnapshot struct {
	Name             string    `gorm:"primaryKey;size:255"`
	Category         string    `gorm:"size:32;index"`
	Stars            int
	ProjectUpdatedAt time.Time `gorm:"index"`
	Payload          string    `gorm:"type:text"`
	SnapshotAt       time.Time
}

func (projectSnapshot) TableName() string {
	return "project_snapshots"
}

// SnapshotRepo 实现了 port.SnapshotStore 接口
type SnapshotRepo struct {
	db      *gorm.DB
	nowFunc func() time.Time
}

// NewSnapshotRepo 初始化数据库连接并自动迁移表结构。driver 为 postgres 或 sqlite。
func NewSnapshotRepo(driver, dsn string) (*SnapshotRepo, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, common.NewError(common.ErrCodeInvalidInput, fmt.Sprintf("不支持的快照数据库驱动: %q", driver))
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, common.WrapError(common.ErrCodeDatabase, "连接数据库失败", err)
	}

	if err := db.AutoMigrate(&projectSnapshot{}); err != nil {
		return nil, common.WrapError(common.ErrCodeDatabase, "数据库迁移失败", err)
	}

	return &SnapshotRepo{db: db, nowFunc: time.Now}, nil
}

// SaveProjects 用本次结果整体替换快照 (同一事务内先删后插)
func (r *SnapshotRepo) SaveProjects(ctx context.Context, projects []*domain.Project) error {
	now := r.now()
	rows := make([]projectSnapshot, 0, len(projects))
	for _, p := range projects {
		if p == nil {
			continue
		}
		payload, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("序列化项目 %s 失败: %w", p.Name, err)
		}
		rows = append(rows, projectSnapshot{
			Name:             p.Name,
			Category:         string(p.Category),
			Stars:            p.Stars,
			ProjectUpdatedAt: p.UpdatedAt,
			Payload:          string(payload),
			SnapshotAt:       now,
		})
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&projectSnapshot{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return common.WrapError(common.ErrCodeDatabase, "保存项目快照失败", err)
	}
	return nil
}

// LoadProjects 读取快照，按项目更新时间倒序。无法解析的行会被跳过。
func (r *SnapshotRepo) LoadProjects(ctx context.Context) ([]*domain.Project, error) {
	var rows []projectSnapshot
	err := r.db.WithContext(ctx).
		Order("project_updated_at desc").
		Find(&rows).Error
	if err != nil {
		return nil, common.WrapError(common.ErrCodeDatabase, "读取项目快照失败", err)
	}

	projects := make([]*domain.Project, 0, len(rows))
	for _, row := range rows {
		var p domain.Project
		if err := json.Unmarshal([]byte(row.Payload), &p); err != nil {
			log.Printf("⚠️ 跳过无法解析的快照 %s: %v", row.Name, err)
			continue
		}
		projects = append(projects, &p)
	}
	return projects, nil
}

// Close 关闭底层连接
func (r *SnapshotRepo) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (r *SnapshotRepo) now() time.Time {
	if r.nowFunc != nil {
		return r.nowFunc()
	}
	return time.Now()
}
