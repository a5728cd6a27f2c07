package services

import (
	"errors"
	"log"

	"vibe-economy-system/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

type BadgeService struct {
	DB     *gorm.DB
	Config *EconomyConfig
}

func NewBadgeService(db *gorm.DB, cfg *EconomyConfig) *BadgeService {
	return &BadgeService{DB: db, Config: cfg}
}

// BadgeCode derives the stable catalog code from a badge display name.
func BadgeCode(name string) string {
	return slug.Make(name)
}

// EnsureCatalog seeds BadgeType rows from the injected catalog (idempotent).
func (s *BadgeService) EnsureCatalog() error {
	for _, spec := range s.Config.Badges {
		code := BadgeCode(spec.Name)
		var count int64
		if err := s.DB.Model(&models.BadgeType{}).Where("code = ?", code).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}
		badge := models.BadgeType{
			ID:          uuid.NewString(),
			Code:        code,
			Name:        spec.Name,
			Description: spec.Description,
			Rarity:      spec.Rarity,
			IconURL:     spec.IconURL,
		}
		if err := s.DB.Create(&badge).Error; err != nil {
			return err
		}
		log.Printf("🎖️ Badge catalog seeded: %s (%s)", spec.Name, code)
	}
	return nil
}

// IssueBadge awards a badge inside the caller's transaction, idempotently:
// if the user already holds the code, nothing happens and ok is false.
func IssueBadge(tx *gorm.DB, externalUserID, code, metadata string) (bool, error) {
	var count int64
	if err := tx.Model(&models.UserBadge{}).
		Where("external_user_id = ? AND badge_code = ?", externalUserID, code).
		Count(&count).Error; err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}
	userBadge := models.UserBadge{
		ID:             uuid.NewString(),
		ExternalUserID: externalUserID,
		BadgeCode:      code,
		Metadata:       metadata,
	}
	if err := tx.Create(&userBadge).Error; err != nil {
		// A concurrent issue of the same badge loses to the unique index; that
		// still counts as "already held".
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// TierBadgeCode resolves the badge code issued when a user reaches tier, or ""
// when the catalog has none configured for it.
func (s *BadgeService) TierBadgeCode(tier int) string {
	name, ok := s.Config.TierBadgeNames[tier]
	if !ok {
		return ""
	}
	return BadgeCode(name)
}
