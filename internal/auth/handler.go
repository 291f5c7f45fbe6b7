package auth

import (
	"strings"
	"time"

	"immobilien-backend/internal/apperr"
	"immobilien-backend/internal/config"
	"immobilien-backend/internal/database"
	"immobilien-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
)

type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Company   string `json:"company"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/auth/register
func RegisterHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body RegisterRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.InvalidInput("Geçersiz istek gövdesi")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))
		body.FirstName = strings.TrimSpace(body.FirstName)
		body.LastName = strings.TrimSpace(body.LastName)

		if body.Email == "" || body.Password == "" || body.FirstName == "" || body.LastName == "" {
			return apperr.InvalidInput("Email, şifre, isim ve soyisim zorunlu")
		}
		if len(body.Password) < 8 {
			return apperr.InvalidInput("Şifre en az 8 karakter olmalı")
		}

		// Aynı email ile ikinci hesap açılamaz
		var count int64
		database.DB.Model(&models.User{}).
			Where("email = ?", body.Email).
			Count(&count)
		if count > 0 {
			return apperr.Conflict("Bu email zaten kayıtlı")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(body.Password), bcrypt.DefaultCost)
		if err != nil {
			return apperr.Internal("Şifre hashlenemedi", err)
		}

		user := models.User{
			Email:        body.Email,
			PasswordHash: string(hash),
			FirstName:    body.FirstName,
			LastName:     body.LastName,
			Phone:        strings.TrimSpace(body.Phone),
			Company:      strings.TrimSpace(body.Company),
			Role:         models.RoleLandlord,
			IsActive:     true,
		}

		if err := database.DB.Create(&user).Error; err != nil {
			return apperr.Internal("Kullanıcı oluşturulamadı", err)
		}

		token, err := GenerateToken(cfg.JWTSecret, &user)
		if err != nil {
			return apperr.Internal("Token oluşturulamadı", err)
		}

		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"token": token,
			"user": fiber.Map{
				"id":    user.ID,
				"email": user.Email,
				"name":  user.FullName(),
				"role":  user.Role,
			},
		})
	}
}

// POST /api/auth/login
func LoginHandler(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body LoginRequest
		if err := c.BodyParser(&body); err != nil {
			return apperr.InvalidInput("Geçersiz istek gövdesi")
		}

		body.Email = strings.TrimSpace(strings.ToLower(body.Email))

		var user models.User
		if err := database.DB.Where("email = ?", body.Email).First(&user).Error; err != nil {
			return apperr.Unauthenticated("Email veya şifre hatalı")
		}

		if !user.IsActive {
			return apperr.Forbidden("Hesap devre dışı bırakılmış")
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(body.Password)); err != nil {
			return apperr.Unauthenticated("Email veya şifre hatalı")
		}

		now := time.Now()
		database.DB.Model(&user).Update("last_login_at", now)

		token, err := GenerateToken(cfg.JWTSecret, &user)
		if err != nil {
			return apperr.Internal("Token oluşturulamadı", err)
		}

		return c.JSON(fiber.Map{
			"token": token,
			"user": fiber.Map{
				"id":      user.ID,
				"email":   user.Email,
				"name":    user.FullName(),
				"role":    user.Role,
				"company": user.Company,
			},
		})
	}
}

// GET /api/auth/me
func MeHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := CallerID(c)
		if err != nil {
			return err
		}

		var user models.User
		if err := database.DB.First(&user, userID).Error; err != nil {
			return apperr.NotFound("Kullanıcı bulunamadı")
		}

		return c.JSON(fiber.Map{
			"user_id":    user.ID,
			"email":      user.Email,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"phone":      user.Phone,
			"company":    user.Company,
			"role":       user.Role,
			"last_login_at": user.LastLoginAt,
		})
	}
}
