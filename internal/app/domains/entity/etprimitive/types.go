package etprimitive

// 基础类型和通用值对象

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 200
)

// Pagination 分页参数
type Pagination struct {
	Page  int
	Limit int
	Total int64
}

// Normalize 修正非法分页参数
func (p Pagination) Normalize() Pagination {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

// Offset 计算查询偏移量
func (p Pagination) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.Limit
}
