package model

import (
	"pricing-engine/internal/shared/apperror"
)

// Predefined business errors for the rule domain.
var (
	ErrRuleNotFound = &apperror.AppError{
		Code:       apperror.ErrCodeNotFound,
		Message:    "discount rule not found",
		HTTPStatus: 404,
	}

	ErrRuleInactive = &apperror.AppError{
		Code:       apperror.ErrCodeInactiveOrExpired,
		Message:    "discount rule is not active",
		HTTPStatus: 400,
	}

	ErrRuleNoTargets = &apperror.AppError{
		Code:       apperror.ErrCodeNoTargets,
		Message:    "discount rule has no targeting criteria configured",
		HTTPStatus: 400,
	}

	ErrRuleAlreadyApplied = &apperror.AppError{
		Code:       apperror.ErrCodeConflict,
		Message:    "discount rule is already applied to the catalog",
		HTTPStatus: 409,
	}

	ErrRuleNotApplied = &apperror.AppError{
		Code:       apperror.ErrCodeConflict,
		Message:    "discount rule is not applied to the catalog",
		HTTPStatus: 409,
	}

	ErrRuleInUse = &apperror.AppError{
		Code:       apperror.ErrCodeConflict,
		Message:    "discount rule is applied to the catalog and cannot be deleted",
		HTTPStatus: 409,
	}
)
