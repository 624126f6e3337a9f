package serviceimpl

import (
	"errors"

	"gorm.io/gorm"

	"github.com/cjnghn/drone-topview-analysis/domain/dto"
	"github.com/cjnghn/drone-topview-analysis/domain/services"
)

// paginate turns a 1-based page and limit into offset and limit
func paginate(page, limit int) (int, int) {
	page, limit = dto.NormalizePage(page, limit)
	return (page - 1) * limit, limit
}

// notFound maps a missing row onto services.ErrNotFound
func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return services.ErrNotFound
	}
	return err
}
