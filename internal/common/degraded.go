package common

import (
	"context"
	"sync/atomic"
)

type degradedKey struct{}

// Degraded 记录一次调用是否走了降级路径 (快照或空列表)。
// 并发标记安全，nil 时 IsSet 返回 false。
type Degraded struct {
	set atomic.Bool
}

// IsSet 是否已被标记为降级
func (d *Degraded) IsSet() bool {
	return d != nil && d.set.Load()
}

// WithDegraded 在 ctx 上挂一个降级标记，调用方在下游返回后读取
func WithDegraded(ctx context.Context) (context.Context, *Degraded) {
	d := &Degraded{}
	return context.WithValue(ctx, degradedKey{}, d), d
}

// MarkDegraded 标记当前调用结果来自降级路径，ctx 上没有标记时忽略
func MarkDegraded(ctx context.Context) {
	if d, ok := ctx.Value(degradedKey{}).(*Degraded); ok {
		d.set.Store(true)
	}
}
