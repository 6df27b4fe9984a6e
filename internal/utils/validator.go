package utils

import (
	"reflect"
	"strings"

	"github.com/KLH-F-2025/campus-safety-service/internal/models"
	"github.com/go-playground/validator/v10"
)

// Custom validation functions

func ValidateEmergencyType(fl validator.FieldLevel) bool {
	return models.EmergencyType(fl.Field().String()).Valid()
}

func ValidateUserRole(fl validator.FieldLevel) bool {
	validRoles := []models.UserRole{
		models.RoleStudent,
		models.RoleAdmin,
	}

	value := fl.Field().String()
	for _, validRole := range validRoles {
		if string(validRole) == value {
			return true
		}
	}
	return false
}

// RegisterCustomValidators registers all custom validators
func RegisterCustomValidators(validate *validator.Validate) {
	validate.RegisterValidation("emergency_type", ValidateEmergencyType)
	validate.RegisterValidation("user_role", ValidateUserRole)

	// Register custom tag name function for better error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}
