package service

import (
	"context"
	"log/slog"

	"github.com/kirillov6/marketplace-service/internal/entities"

	"github.com/google/uuid"
)

type AddressRepo interface {
	ListAddresses(ctx context.Context, customerID uuid.UUID) ([]entities.Address, error)
	GetAddressByID(ctx context.Context, id uuid.UUID) (entities.Address, error)
	CreateAddress(ctx context.Context, a entities.Address) error
	UpdateAddress(ctx context.Context, a entities.Address) error
	DeleteAddress(ctx context.Context, id uuid.UUID) error
	UnsetDefaultAddresses(ctx context.Context, customerID uuid.UUID) error
	SetDefaultAddress(ctx context.Context, id uuid.UUID) error
}

// addressService manages the customer's address book. Every mutation
// returns the refreshed book so clients never need a follow-up read.
type addressService struct {
	logger    *slog.Logger
	txManager TxManager
	addresses AddressRepo
}

func NewAddressService(logger *slog.Logger, txManager TxManager, addresses AddressRepo) *addressService {
	return &addressService{
		logger:    logger.With(slog.String("service", "addresses")),
		txManager: txManager,
		addresses: addresses,
	}
}

type AddAddressParams struct {
	Label      string
	Street     string
	City       string
	PostalCode string
	Country    string
	IsDefault  bool
}

type UpdateAddressParams struct {
	Label      *string
	Street     *string
	City       *string
	PostalCode *string
	Country    *string
	IsDefault  *bool
}

func (s *addressService) ListAddresses(ctx context.Context, customerID uuid.UUID) ([]entities.Address, error) {
	return s.addresses.ListAddresses(ctx, customerID)
}

// AddAddress appends to the book. The first address becomes the
// default automatically; an explicit default displaces the current
// one.
func (s *addressService) AddAddress(ctx context.Context, customerID uuid.UUID, p AddAddressParams) ([]entities.Address, error) {
	var book []entities.Address

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		existing, err := s.addresses.ListAddresses(ctx, customerID)
		if err != nil {
			return err
		}

		isDefault := p.IsDefault
		if len(existing) == 0 {
			isDefault = true
		} else if isDefault {
			if err := s.addresses.UnsetDefaultAddresses(ctx, customerID); err != nil {
				return err
			}
		}

		err = s.addresses.CreateAddress(ctx, entities.Address{
			ID:         uuid.New(),
			CustomerID: customerID,
			Label:      p.Label,
			Street:     p.Street,
			City:       p.City,
			PostalCode: p.PostalCode,
			Country:    p.Country,
			IsDefault:  isDefault,
		})
		if err != nil {
			return err
		}

		book, err = s.addresses.ListAddresses(ctx, customerID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "address added",
		slog.String("customer_id", customerID.String()),
		slog.Int("book_size", len(book)),
	)
	return book, nil
}

func (s *addressService) UpdateAddress(ctx context.Context, customerID, addressID uuid.UUID, p UpdateAddressParams) ([]entities.Address, error) {
	var book []entities.Address

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		address, err := s.ownAddress(ctx, customerID, addressID)
		if err != nil {
			return err
		}

		if p.Label != nil {
			address.Label = *p.Label
		}
		if p.Street != nil {
			address.Street = *p.Street
		}
		if p.City != nil {
			address.City = *p.City
		}
		if p.PostalCode != nil {
			address.PostalCode = *p.PostalCode
		}
		if p.Country != nil {
			address.Country = *p.Country
		}
		if p.IsDefault != nil && *p.IsDefault && !address.IsDefault {
			if err := s.addresses.UnsetDefaultAddresses(ctx, customerID); err != nil {
				return err
			}
			address.IsDefault = true
		}

		if err := s.addresses.UpdateAddress(ctx, address); err != nil {
			return err
		}

		book, err = s.addresses.ListAddresses(ctx, customerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

// DeleteAddress removes the entry; when the default goes away the
// oldest remaining address takes over so the book never ends up
// without one.
func (s *addressService) DeleteAddress(ctx context.Context, customerID, addressID uuid.UUID) ([]entities.Address, error) {
	var book []entities.Address

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		address, err := s.ownAddress(ctx, customerID, addressID)
		if err != nil {
			return err
		}
		if err := s.addresses.DeleteAddress(ctx, address.ID); err != nil {
			return err
		}

		remaining, err := s.addresses.ListAddresses(ctx, customerID)
		if err != nil {
			return err
		}
		if address.IsDefault && len(remaining) > 0 {
			if err := s.addresses.SetDefaultAddress(ctx, remaining[0].ID); err != nil {
				return err
			}
			remaining[0].IsDefault = true
		}

		book = remaining
		return nil
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

func (s *addressService) SetDefaultAddress(ctx context.Context, customerID, addressID uuid.UUID) ([]entities.Address, error) {
	var book []entities.Address

	err := s.txManager.Do(ctx, func(ctx context.Context) error {
		address, err := s.ownAddress(ctx, customerID, addressID)
		if err != nil {
			return err
		}
		if err := s.addresses.UnsetDefaultAddresses(ctx, customerID); err != nil {
			return err
		}
		if err := s.addresses.SetDefaultAddress(ctx, address.ID); err != nil {
			return err
		}

		book, err = s.addresses.ListAddresses(ctx, customerID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return book, nil
}

// ownAddress hides other customers' addresses behind not-found.
func (s *addressService) ownAddress(ctx context.Context, customerID, addressID uuid.UUID) (entities.Address, error) {
	address, err := s.addresses.GetAddressByID(ctx, addressID)
	if err != nil {
		return entities.Address{}, err
	}
	if address.CustomerID != customerID {
		return entities.Address{}, entities.ErrAddressNotFound
	}
	return address, nil
}
