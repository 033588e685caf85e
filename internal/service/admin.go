package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/kirillov6/marketplace-service/internal/entities"

	"github.com/google/uuid"
)

type ApprovalRepo interface {
	GetSellerByID(ctx context.Context, id uuid.UUID) (entities.Seller, error)
	GetDelivererByID(ctx context.Context, id uuid.UUID) (entities.Deliverer, error)
	GetCustomerByID(ctx context.Context, id uuid.UUID) (entities.Customer, error)
	GetCustomerByUserID(ctx context.Context, userID uuid.UUID) (entities.Customer, error)
	GetSellerByUserID(ctx context.Context, userID uuid.UUID) (entities.Seller, error)
	GetDelivererByUserID(ctx context.Context, userID uuid.UUID) (entities.Deliverer, error)
	SetSellerApproval(ctx context.Context, id uuid.UUID, status entities.ApprovalStatus, reason string, verifiedAt *time.Time) error
	SetDelivererApproval(ctx context.Context, id uuid.UUID, status entities.ApprovalStatus, reason string, verifiedAt *time.Time) error
	ListSellers(ctx context.Context, filter entities.ProfileFilter) ([]entities.Seller, int, error)
	ListDeliverers(ctx context.Context, filter entities.ProfileFilter) ([]entities.Deliverer, int, error)
	ListCustomers(ctx context.Context, filter entities.ProfileFilter) ([]entities.Customer, int, error)
}

type UserDirectory interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (entities.User, error)
	ListUsers(ctx context.Context, filter entities.UserFilter) ([]entities.User, int, error)
}

// adminService drives the seller/deliverer approval workflow and the
// account directory. Every approval decision evicts the cached actor
// so the new status takes effect on the subject's next request.
type adminService struct {
	logger   *slog.Logger
	profiles ApprovalRepo
	users    UserDirectory
	cache    Cache
}

func NewAdminService(logger *slog.Logger, profiles ApprovalRepo, users UserDirectory, cache Cache) *adminService {
	return &adminService{
		logger:   logger.With(slog.String("service", "admin")),
		profiles: profiles,
		users:    users,
		cache:    cache,
	}
}

func (s *adminService) ApproveSeller(ctx context.Context, id uuid.UUID) (entities.Seller, error) {
	seller, err := s.profiles.GetSellerByID(ctx, id)
	if err != nil {
		return entities.Seller{}, err
	}

	now := time.Now()
	if err := s.profiles.SetSellerApproval(ctx, id, entities.ApprovalApproved, "", &now); err != nil {
		return entities.Seller{}, err
	}
	s.cache.Delete(seller.UserID.String())

	seller.Status = entities.ApprovalApproved
	seller.Reason = ""
	seller.VerifiedAt = &now

	s.logger.InfoContext(ctx, "seller approved", slog.String("seller_id", id.String()))
	return seller, nil
}

func (s *adminService) RejectSeller(ctx context.Context, id uuid.UUID, reason string) (entities.Seller, error) {
	seller, err := s.profiles.GetSellerByID(ctx, id)
	if err != nil {
		return entities.Seller{}, err
	}

	if err := s.profiles.SetSellerApproval(ctx, id, entities.ApprovalRejected, reason, nil); err != nil {
		return entities.Seller{}, err
	}
	s.cache.Delete(seller.UserID.String())

	seller.Status = entities.ApprovalRejected
	seller.Reason = reason
	seller.VerifiedAt = nil

	s.logger.InfoContext(ctx, "seller rejected",
		slog.String("seller_id", id.String()),
		slog.String("reason", reason),
	)
	return seller, nil
}

func (s *adminService) ApproveDeliverer(ctx context.Context, id uuid.UUID) (entities.Deliverer, error) {
	deliverer, err := s.profiles.GetDelivererByID(ctx, id)
	if err != nil {
		return entities.Deliverer{}, err
	}

	now := time.Now()
	if err := s.profiles.SetDelivererApproval(ctx, id, entities.ApprovalApproved, "", &now); err != nil {
		return entities.Deliverer{}, err
	}
	s.cache.Delete(deliverer.UserID.String())

	deliverer.Status = entities.ApprovalApproved
	deliverer.Reason = ""
	deliverer.VerifiedAt = &now

	s.logger.InfoContext(ctx, "deliverer approved", slog.String("deliverer_id", id.String()))
	return deliverer, nil
}

func (s *adminService) RejectDeliverer(ctx context.Context, id uuid.UUID, reason string) (entities.Deliverer, error) {
	deliverer, err := s.profiles.GetDelivererByID(ctx, id)
	if err != nil {
		return entities.Deliverer{}, err
	}

	if err := s.profiles.SetDelivererApproval(ctx, id, entities.ApprovalRejected, reason, nil); err != nil {
		return entities.Deliverer{}, err
	}
	s.cache.Delete(deliverer.UserID.String())

	deliverer.Status = entities.ApprovalRejected
	deliverer.Reason = reason
	deliverer.VerifiedAt = nil

	s.logger.InfoContext(ctx, "deliverer rejected",
		slog.String("deliverer_id", id.String()),
		slog.String("reason", reason),
	)
	return deliverer, nil
}

func (s *adminService) ListSellers(ctx context.Context, filter entities.ProfileFilter) ([]entities.Seller, int, error) {
	filter.Page = filter.Page.Normalize()
	return s.profiles.ListSellers(ctx, filter)
}

func (s *adminService) ListDeliverers(ctx context.Context, filter entities.ProfileFilter) ([]entities.Deliverer, int, error) {
	filter.Page = filter.Page.Normalize()
	return s.profiles.ListDeliverers(ctx, filter)
}

func (s *adminService) ListCustomers(ctx context.Context, filter entities.ProfileFilter) ([]entities.Customer, int, error) {
	filter.Page = filter.Page.Normalize()
	return s.profiles.ListCustomers(ctx, filter)
}

func (s *adminService) GetCustomer(ctx context.Context, id uuid.UUID) (entities.Customer, error) {
	return s.profiles.GetCustomerByID(ctx, id)
}

// ListUsers is the aggregated account directory: every user row paired
// with its role profile.
func (s *adminService) ListUsers(ctx context.Context, filter entities.UserFilter) ([]entities.UserAccount, int, error) {
	filter.Page = filter.Page.Normalize()
	users, total, err := s.users.ListUsers(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	accounts := make([]entities.UserAccount, 0, len(users))
	for _, user := range users {
		account, err := s.attachProfile(ctx, user)
		if err != nil {
			return nil, 0, err
		}
		accounts = append(accounts, account)
	}
	return accounts, total, nil
}

func (s *adminService) GetUser(ctx context.Context, id uuid.UUID) (entities.UserAccount, error) {
	user, err := s.users.GetUserByID(ctx, id)
	if err != nil {
		return entities.UserAccount{}, err
	}
	return s.attachProfile(ctx, user)
}

// attachProfile tolerates a missing profile row; the account is still
// listed, just without one.
func (s *adminService) attachProfile(ctx context.Context, user entities.User) (entities.UserAccount, error) {
	account := entities.UserAccount{User: user}

	switch user.Role {
	case entities.RoleCustomer:
		customer, err := s.profiles.GetCustomerByUserID(ctx, user.ID)
		if err == nil {
			account.Customer = &customer
		} else if !errors.Is(err, entities.ErrProfileNotFound) {
			return entities.UserAccount{}, err
		}
	case entities.RoleSeller:
		seller, err := s.profiles.GetSellerByUserID(ctx, user.ID)
		if err == nil {
			account.Seller = &seller
		} else if !errors.Is(err, entities.ErrProfileNotFound) {
			return entities.UserAccount{}, err
		}
	case entities.RoleDeliverer:
		deliverer, err := s.profiles.GetDelivererByUserID(ctx, user.ID)
		if err == nil {
			account.Deliverer = &deliverer
		} else if !errors.Is(err, entities.ErrProfileNotFound) {
			return entities.UserAccount{}, err
		}
	}
	return account, nil
}
