package entity

// Models 需要迁移的全部表
func Models() []interface{} {
	return []interface{}{
		&Order{},
		&Payment{},
		&OrderLog{},
	}
}
