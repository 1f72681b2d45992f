package repository

import "gorm.io/gorm"

// Paginate applies LIMIT/OFFSET for a 1-based page.
func Paginate(page, limit int) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page < 1 {
			page = 1
		}
		return db.Limit(limit).Offset((page - 1) * limit)
	}
}

// listPage counts the rows matched by q and loads one ordered page into dest.
func listPage(q *gorm.DB, page, limit int, order string, dest interface{}, preloads ...string) (int64, error) {
	q = q.Session(&gorm.Session{})
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, err
	}
	find := q
	for _, p := range preloads {
		find = find.Preload(p)
	}
	err := find.Order(order).Scopes(Paginate(page, limit)).Find(dest).Error
	return total, err
}

func likePattern(s string) string {
	return "%" + s + "%"
}
