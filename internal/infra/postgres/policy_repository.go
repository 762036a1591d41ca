package postgres

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"game-search-service/internal/domain"
)

// PolicyRepository implements domain.PolicySource on the company_policies table.
type PolicyRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewPolicyRepository creates a new policy repository.
func NewPolicyRepository(db *gorm.DB, logger *zap.Logger) *PolicyRepository {
	return &PolicyRepository{db: db, logger: logger}
}

// CompanyPolicies returns every stored company policy. Rows with an unknown
// level are skipped.
func (r *PolicyRepository) CompanyPolicies(ctx context.Context) ([]domain.CompanyPolicy, error) {
	var models []CompanyPolicyModel
	if err := r.db.WithContext(ctx).Order("company").Find(&models).Error; err != nil {
		return nil, fmt.Errorf("listing company policies: %w", err)
	}

	policies := make([]domain.CompanyPolicy, 0, len(models))
	for _, m := range models {
		level, ok := domain.ParseCopyrightLevel(m.Level)
		if !ok {
			r.logger.Warn("skipping company policy with unknown level",
				zap.String("company", m.Company),
				zap.String("level", m.Level),
			)
			continue
		}
		policies = append(policies, domain.CompanyPolicy{
			Company: m.Company,
			Level:   level,
			Reason:  m.Reason,
		})
	}

	return policies, nil
}

// Save creates or replaces the policy of one company.
func (r *PolicyRepository) Save(ctx context.Context, p domain.CompanyPolicy) error {
	model := CompanyPolicyModel{Company: p.Company, Level: p.Level.String(), Reason: p.Reason}

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "company"}},
		DoUpdates: clause.AssignmentColumns([]string{"level", "reason", "updated_at"}),
	}).Create(&model).Error
	if err != nil {
		return fmt.Errorf("saving policy for %s: %w", p.Company, err)
	}

	return nil
}
