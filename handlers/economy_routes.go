// handlers/economy_routes.go
package handlers

import (
	"errors"
	"strconv"

	"vibe-economy-system/middleware"
	"vibe-economy-system/models"
	"vibe-economy-system/services"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupEconomyRoutes(app *fiber.App, orchestrator *services.RewardOrchestrator, ledger *services.LedgerService) {
	// 🔐 Secured routes — require user context (userID, roles) from Gateway
	securedGroup := app.Group("/", middleware.UserContextMiddleware())

	securedGroup.Post("/rewards/award", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var req struct {
			Action         string                 `json:"action"`
			Metadata       services.AwardMetadata `json:"metadata"`
			IdempotencyKey *string                `json:"idempotencyKey"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}

		// Ledger provenance comes from the verified transport context, not the
		// client-supplied body.
		if deviceID, _ := c.Locals("device_id").(string); deviceID != "" {
			req.Metadata.DeviceFingerprint = deviceID
		}
		if ip, _ := c.Locals("client_ip").(string); ip != "" {
			req.Metadata.IPAddress = ip
		}

		result, err := orchestrator.AwardReward(userID, req.Action, req.Metadata, req.IdempotencyKey)
		if err != nil {
			return respondEconomyError(c, err)
		}
		return c.JSON(result)
	})

	securedGroup.Post("/missions/:type/:id/claim", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		missionType := models.MissionType(c.Params("type"))
		if missionType != models.MissionTypeDaily && missionType != models.MissionTypeWeekly {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "mission type must be daily or weekly"})
		}

		result, err := orchestrator.ClaimMission(userID, c.Params("id"), missionType)
		if err != nil {
			return respondEconomyError(c, err)
		}
		return c.JSON(result)
	})

	securedGroup.Get("/user/economy", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)

		var state *models.UserEconomyState
		err := orchestrator.DB.Transaction(func(tx *gorm.DB) error {
			var txErr error
			state, txErr = orchestrator.EnsureEconomyState(tx, userID)
			return txErr
		})
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load economy state",
			})
		}

		return c.JSON(fiber.Map{
			"xp":                 state.XP,
			"coins":              state.Coins,
			"gems":               state.Gems,
			"level":              state.Level,
			"tier":               state.Tier,
			"tier_name":          services.TierName(state.Tier),
			"daily_coins_earned": state.DailyCoinsEarned,
			"daily_xp_earned":    state.DailyXPEarned,
			"account_status":     state.AccountStatus,
		})
	})

	securedGroup.Get("/user/missions", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		var missions []models.Mission
		if err := orchestrator.DB.
			Where("external_user_id = ?", userID).
			Order("type ASC, created_at ASC").
			Find(&missions).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch missions"})
		}
		return c.JSON(missions)
	})

	securedGroup.Get("/user/transactions", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		limit, _ := strconv.Atoi(c.Query("limit", "20"))
		entries, err := ledger.RecentByUser(userID, limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch transactions"})
		}
		return c.JSON(entries)
	})

	securedGroup.Get("/user/badges", func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(string)
		var badges []models.UserBadge
		if err := orchestrator.DB.
			Where("external_user_id = ?", userID).
			Order("awarded_at DESC").
			Find(&badges).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch badges"})
		}
		return c.JSON(badges)
	})

	// --- Admin: fraud review surface ---
	adminGroup := securedGroup.Group("/admin", middleware.RequireAdmin())

	adminGroup.Get("/fraud/checks", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "100"))
		if limit < 1 || limit > 500 {
			limit = 100
		}
		var checks []models.FraudCheck
		query := orchestrator.DB.Order("created_at DESC").Limit(limit)
		if userID := c.Query("user_id"); userID != "" {
			query = query.Where("external_user_id = ?", userID)
		}
		if err := query.Find(&checks).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch fraud checks"})
		}
		return c.JSON(checks)
	})

	adminGroup.Get("/transactions/flagged", func(c *fiber.Ctx) error {
		limit, _ := strconv.Atoi(c.Query("limit", "100"))
		entries, err := ledger.Flagged(limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to fetch flagged transactions"})
		}
		return c.JSON(entries)
	})

	// Manual review override: lift or impose a sanction after human review.
	adminGroup.Patch("/users/:id/status", func(c *fiber.Ctx) error {
		var req struct {
			Status models.AccountStatus `json:"status"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
		}
		switch req.Status {
		case models.AccountStatusActive, models.AccountStatusUnderReview,
			models.AccountStatusSuspended, models.AccountStatusBanned:
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid account status"})
		}

		result := orchestrator.DB.Model(&models.UserEconomyState{}).
			Where("external_user_id = ?", c.Params("id")).
			Updates(map[string]interface{}{
				"account_status": req.Status,
				"version":        gorm.Expr("version + 1"),
			})
		if result.Error != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to update status"})
		}
		if result.RowsAffected == 0 {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "user not found"})
		}
		return c.JSON(fiber.Map{"message": "status updated", "status": req.Status})
	})
}

// respondEconomyError maps the service error taxonomy onto HTTP responses.
// Sanction denials stay generic so thresholds cannot be probed.
func respondEconomyError(c *fiber.Ctx, err error) error {
	var rateErr *services.RateLimitError
	var validationErr *services.ValidationError
	var blockedErr *services.BlockedError
	var sanctionErr *services.FraudSanctionError

	switch {
	case errors.As(err, &rateErr):
		return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": rateErr.Error()})
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validationErr.Error()})
	case errors.As(err, &blockedErr):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": blockedErr.Error()})
	case errors.As(err, &sanctionErr):
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": sanctionErr.Error()})
	case errors.Is(err, services.ErrMissionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrMissionNotCompleted):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrMissionAlreadyClaimed):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, services.ErrPersistence):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "temporary failure, please retry"})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}
