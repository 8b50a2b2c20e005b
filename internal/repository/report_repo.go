package repository

import (
	"gorm.io/gorm"

	"github.com/voke-app/voke_server/internal/model"
)

type ReportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

func (r *ReportRepository) Create(report *model.Report) error {
	return r.db.Create(report).Error
}

func (r *ReportRepository) GetByID(id int64) (*model.Report, error) {
	var report model.Report
	err := r.db.Preload("Post").Where("id = ?", id).First(&report).Error
	if err != nil {
		return nil, err
	}
	return &report, nil
}

// Resolve 将待处理举报标记为已处理，返回是否命中
func (r *ReportRepository) Resolve(id int64) (bool, error) {
	res := r.db.Model(&model.Report{}).
		Where("id = ? AND status = ?", id, "pending").
		Update("status", "resolved")
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *ReportRepository) List(page, pageSize int, status string) ([]*model.Report, int64, error) {
	var reports []*model.Report
	var total int64

	query := r.db.Model(&model.Report{})
	if status != "" {
		query = query.Where("status = ?", status)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.Preload("Post").Order("created_at DESC").
		Offset(offset).Limit(pageSize).Find(&reports).Error
	return reports, total, err
}

// ExistsByReporter 同一用户对同一帖子是否已举报过
func (r *ReportRepository) ExistsByReporter(postID, reporterID int64) (bool, error) {
	var count int64
	err := r.db.Model(&model.Report{}).
		Where("post_id = ? AND reporter_id = ?", postID, reporterID).
		Count(&count).Error
	return count > 0, err
}
