package model

import (
	"pricing-engine/internal/shared/apperror"
)

// Predefined business errors for the promo domain.
var (
	ErrPromoNotFound = &apperror.AppError{
		Code:       apperror.ErrCodeNotFound,
		Message:    "promo code not found",
		HTTPStatus: 404,
	}

	ErrPromoInactive = &apperror.AppError{
		Code:       apperror.ErrCodeInactiveOrExpired,
		Message:    "promo code has been deactivated",
		HTTPStatus: 400,
	}

	ErrPromoNotStarted = &apperror.AppError{
		Code:       apperror.ErrCodeInactiveOrExpired,
		Message:    "promo code is not yet active",
		HTTPStatus: 400,
	}

	ErrPromoExpired = &apperror.AppError{
		Code:       apperror.ErrCodeInactiveOrExpired,
		Message:    "promo code has expired",
		HTTPStatus: 400,
	}

	ErrPromoUsageLimitReached = &apperror.AppError{
		Code:       apperror.ErrCodeLimitExceeded,
		Message:    "promo code has reached its usage limit",
		HTTPStatus: 400,
	}

	ErrPromoCustomerLimitReached = &apperror.AppError{
		Code:       apperror.ErrCodeLimitExceeded,
		Message:    "you have reached the usage limit for this promo code",
		HTTPStatus: 400,
	}

	ErrPromoMinOrderNotMet = &apperror.AppError{
		Code:       apperror.ErrCodeOrderConstraint,
		Message:    "order total does not meet the promo code's minimum",
		HTTPStatus: 400,
	}

	ErrPromoCodeExists = &apperror.AppError{
		Code:       apperror.ErrCodeConflict,
		Message:    "a promo code with this code already exists",
		HTTPStatus: 409,
	}
)
