package memimplement

import (
	"github.com/OMEGACYBER/zoxaa-aicompanion/model"
)

// pageBounds clamps a pager against n items, mirroring the sql backend's
// LIMIT/OFFSET handling. Limit <= 0 means no paging.
func pageBounds(pager *model.Pager, n int) (int, int) {
	if pager == nil || pager.Limit <= 0 {
		return 0, n
	}
	start := pager.Offset
	if start < 0 {
		start = 0
	}
	if start > n {
		start = n
	}
	end := start + pager.Limit
	if end > n {
		end = n
	}
	return start, end
}

// orderSpec resolves the effective sort field and direction.
func orderSpec(order *model.Order, defaultField string) (string, bool) {
	if order != nil && order.OrderBy != "" {
		return order.OrderBy, order.OrderAsc
	}
	return defaultField, false
}
