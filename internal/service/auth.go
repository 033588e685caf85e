package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillov6/marketplace-service/internal/entities"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type UserRepo interface {
	CreateUser(ctx context.Context, u entities.User) error
	GetUserByEmail(ctx context.Context, email string) (entities.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (entities.User, error)
}

type ProfileRepo interface {
	CreateCustomer(ctx context.Context, c entities.Customer) error
	CreateSeller(ctx context.Context, s entities.Seller) error
	CreateDeliverer(ctx context.Context, d entities.Deliverer) error
	GetCustomerByUserID(ctx context.Context, userID uuid.UUID) (entities.Customer, error)
	GetSellerByUserID(ctx context.Context, userID uuid.UUID) (entities.Seller, error)
	GetDelivererByUserID(ctx context.Context, userID uuid.UUID) (entities.Deliverer, error)
}

type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte)
	Delete(key string)
}

type authService struct {
	logger    *slog.Logger
	txManager TxManager
	users     UserRepo
	profiles  ProfileRepo
	cache     Cache

	jwtSecret []byte
	jwtTTL    time.Duration
}

func NewAuthService(logger *slog.Logger, txManager TxManager, users UserRepo, profiles ProfileRepo, cache Cache, jwtSecret string, jwtTTL time.Duration) *authService {
	return &authService{
		logger:    logger.With(slog.String("service", "auth")),
		txManager: txManager,
		users:     users,
		profiles:  profiles,
		cache:     cache,
		jwtSecret: []byte(jwtSecret),
		jwtTTL:    jwtTTL,
	}
}

type RegisterCustomerParams struct {
	Email    string
	Password string
	FullName string
	Phone    string
	Address  string
}

// RegisterCustomer creates the identity and profile and logs the
// customer straight in; customers need no approval.
func (s *authService) RegisterCustomer(ctx context.Context, p RegisterCustomerParams) (entities.User, string, error) {
	user := entities.User{
		ID:       uuid.New(),
		Email:    p.Email,
		Role:     entities.RoleCustomer,
		IsActive: true,
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return entities.User{}, "", fmt.Errorf("failed to hash password: %w", err)
	}
	user.PasswordHash = string(hash)

	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		if err := s.users.CreateUser(ctx, user); err != nil {
			return err
		}
		return s.profiles.CreateCustomer(ctx, entities.Customer{
			ID:       uuid.New(),
			UserID:   user.ID,
			FullName: p.FullName,
			Phone:    p.Phone,
			Address:  p.Address,
			Status:   entities.ApprovalApproved,
		})
	})
	if err != nil {
		return entities.User{}, "", err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return entities.User{}, "", err
	}

	s.logger.InfoContext(ctx, "customer registered", slog.String("user_id", user.ID.String()))
	return user, token, nil
}

type RegisterSellerParams struct {
	Email     string
	Password  string
	ShopName  string
	Documents []string
}

// RegisterSeller leaves the profile pending; no token is issued until
// an admin approves it.
func (s *authService) RegisterSeller(ctx context.Context, p RegisterSellerParams) error {
	if err := s.checkPendingRegistration(ctx, p.Email, entities.RoleSeller); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := entities.User{
		ID:           uuid.New(),
		Email:        p.Email,
		PasswordHash: string(hash),
		Role:         entities.RoleSeller,
		IsActive:     true,
	}

	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		if err := s.users.CreateUser(ctx, user); err != nil {
			return err
		}
		return s.profiles.CreateSeller(ctx, entities.Seller{
			ID:        uuid.New(),
			UserID:    user.ID,
			ShopName:  p.ShopName,
			Documents: p.Documents,
			Status:    entities.ApprovalPending,
		})
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "seller registration submitted", slog.String("user_id", user.ID.String()))
	return nil
}

type RegisterDelivererParams struct {
	Email         string
	Password      string
	FullName      string
	LicenseNumber string
	NIC           string
}

func (s *authService) RegisterDeliverer(ctx context.Context, p RegisterDelivererParams) error {
	if err := s.checkPendingRegistration(ctx, p.Email, entities.RoleDeliverer); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(p.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	user := entities.User{
		ID:           uuid.New(),
		Email:        p.Email,
		PasswordHash: string(hash),
		Role:         entities.RoleDeliverer,
		IsActive:     true,
	}

	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		if err := s.users.CreateUser(ctx, user); err != nil {
			return err
		}
		return s.profiles.CreateDeliverer(ctx, entities.Deliverer{
			ID:            uuid.New(),
			UserID:        user.ID,
			FullName:      p.FullName,
			LicenseNumber: p.LicenseNumber,
			NIC:           p.NIC,
			Status:        entities.ApprovalPending,
		})
	})
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "deliverer registration submitted", slog.String("user_id", user.ID.String()))
	return nil
}

// checkPendingRegistration distinguishes "come back later" from
// "email taken" for re-submitted seller/deliverer registrations.
func (s *authService) checkPendingRegistration(ctx context.Context, email string, role entities.Role) error {
	existing, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, entities.ErrUserNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	var status entities.ApprovalStatus
	switch role {
	case entities.RoleSeller:
		seller, err := s.profiles.GetSellerByUserID(ctx, existing.ID)
		if err == nil {
			status = seller.Status
		}
	case entities.RoleDeliverer:
		deliverer, err := s.profiles.GetDelivererByUserID(ctx, existing.ID)
		if err == nil {
			status = deliverer.Status
		}
	}

	if status == entities.ApprovalPending {
		return entities.ErrRegistrationPending
	}
	return entities.ErrEmailTaken
}

func (s *authService) Login(ctx context.Context, email, password string) (entities.User, string, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if errors.Is(err, entities.ErrUserNotFound) {
		return entities.User{}, "", entities.ErrInvalidCredentials
	}
	if err != nil {
		return entities.User{}, "", err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return entities.User{}, "", entities.ErrInvalidCredentials
	}

	if !user.IsActive {
		return entities.User{}, "", entities.ErrAccountInactive
	}

	// sellers and deliverers may not log in until approved
	switch user.Role {
	case entities.RoleSeller:
		seller, err := s.profiles.GetSellerByUserID(ctx, user.ID)
		if err != nil {
			return entities.User{}, "", err
		}
		if seller.Status != entities.ApprovalApproved {
			return entities.User{}, "", fmt.Errorf("%w: seller is %s", entities.ErrProfileNotApproved, seller.Status)
		}
	case entities.RoleDeliverer:
		deliverer, err := s.profiles.GetDelivererByUserID(ctx, user.ID)
		if err != nil {
			return entities.User{}, "", err
		}
		if deliverer.Status != entities.ApprovalApproved {
			return entities.User{}, "", fmt.Errorf("%w: deliverer is %s", entities.ErrProfileNotApproved, deliverer.Status)
		}
	}

	token, err := s.issueToken(user)
	if err != nil {
		return entities.User{}, "", err
	}
	return user, token, nil
}

func (s *authService) issueToken(user entities.User) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.jwtTTL)),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// ParseToken validates the signature and expiry and returns the user id.
func (s *authService) ParseToken(tokenString string) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return uuid.Nil, entities.ErrInvalidCredentials
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok {
		return uuid.Nil, entities.ErrInvalidCredentials
	}
	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, entities.ErrInvalidCredentials
	}
	return userID, nil
}

// ResolveActor loads the user and its role profile, caching the result
// so repeated requests skip the profile lookups.
func (s *authService) ResolveActor(ctx context.Context, userID uuid.UUID) (entities.Actor, error) {
	key := userID.String()

	if data, ok := s.cache.Get(key); ok {
		var actor entities.Actor
		if err := actor.Unmarshal(data); err == nil {
			return actor, nil
		}
		s.cache.Delete(key)
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return entities.Actor{}, err
	}
	if !user.IsActive {
		return entities.Actor{}, entities.ErrAccountInactive
	}

	actor := entities.Actor{User: user}
	switch user.Role {
	case entities.RoleCustomer:
		customer, err := s.profiles.GetCustomerByUserID(ctx, userID)
		if err != nil {
			return entities.Actor{}, err
		}
		actor.Customer = &customer
	case entities.RoleSeller:
		seller, err := s.profiles.GetSellerByUserID(ctx, userID)
		if err != nil {
			return entities.Actor{}, err
		}
		actor.Seller = &seller
	case entities.RoleDeliverer:
		deliverer, err := s.profiles.GetDelivererByUserID(ctx, userID)
		if err != nil {
			return entities.Actor{}, err
		}
		actor.Deliverer = &deliverer
	}

	if data, err := actor.Marshal(); err == nil {
		s.cache.Set(key, data)
	} else {
		s.logger.ErrorContext(ctx, "failed to marshal actor", slog.Any("error", err))
	}
	return actor, nil
}
