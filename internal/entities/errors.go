package entities

import "errors"

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrEmailTaken          = errors.New("email already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrAccountInactive     = errors.New("account is inactive")
	ErrProfileNotFound     = errors.New("profile not found")
	ErrProfileNotApproved  = errors.New("profile is not approved")
	ErrRegistrationPending = errors.New("registration already pending")

	ErrCategoryNotFound = errors.New("category not found")
	ErrCategoryTaken    = errors.New("category already exists")

	ErrProductNotFound    = errors.New("product not found")
	ErrProductUnavailable = errors.New("product is not available")
	ErrInsufficientStock  = errors.New("insufficient stock")
	ErrInvalidProduct     = errors.New("invalid product")

	ErrAddressNotFound = errors.New("address not found")

	ErrCartNotFound     = errors.New("cart not found")
	ErrCartItemNotFound = errors.New("item not found in cart")

	ErrOrderNotFound     = errors.New("order not found")
	ErrEmptyOrder        = errors.New("order must contain at least one item")
	ErrInvalidTransition = errors.New("invalid order status transition")
	ErrDelivererRequired = errors.New("order has no assigned deliverer")
	ErrDelivererNotFound = errors.New("deliverer not found")

	ErrDeliveryNotFound      = errors.New("delivery not found")
	ErrDeliveryCompleted     = errors.New("delivery already completed")
	ErrInvalidDeliveryStatus = errors.New("invalid delivery status")

	ErrPaymentNotFound         = errors.New("payment not found")
	ErrPaymentAlreadyProcessed = errors.New("payment already processed")

	ErrForbidden = errors.New("access denied")
)
