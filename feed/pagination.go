package feed

import (
	"strconv"
	"strings"

	"socialfeed/models"
)

// ClampPagination приводит page >= 1 и 1 <= limit <= max
func ClampPagination(page, limit, max int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 1
	}
	if max > 0 && limit > max {
		limit = max
	}
	return page, limit
}

// ParsePagination разбирает строковые параметры. Нечисловые значения - ошибка,
// числовые вне диапазона зажимаются
func ParsePagination(pageStr, limitStr string, defaultLimit, max int) (int, int, error) {
	page, limit := 1, defaultLimit
	if s := strings.TrimSpace(pageStr); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, &ValidationError{Field: "page", Value: pageStr}
		}
		page = v
	}
	if s := strings.TrimSpace(limitStr); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			return 0, 0, &ValidationError{Field: "limit", Value: limitStr}
		}
		limit = v
	}
	page, limit = ClampPagination(page, limit, max)
	return page, limit, nil
}

func newPagination(total int64, page, limit int) models.Pagination {
	pages := 0
	if total > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return models.Pagination{Total: total, Page: page, Limit: limit, Pages: pages}
}
