package command

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/eaglebank/mcp-banking/internal/bank"
	"github.com/eaglebank/mcp-banking/internal/repository"
	"github.com/eaglebank/mcp-banking/shared/apperrors"
	"github.com/eaglebank/mcp-banking/shared/cqrs"
	"github.com/eaglebank/mcp-banking/shared/events"
	"github.com/eaglebank/mcp-banking/shared/models"
	"github.com/eaglebank/mcp-banking/shared/utils"
)

const (
	msgAlreadySynced = "User already synced with dummy bank"
	msgSynced        = "Successfully synced with dummy bank"
)

// UserStore is the write side of the user repository.
type UserStore interface {
	ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error)
	CreateWithAccounts(ctx context.Context, user *models.User, accounts []*models.Account) error
	SetCustomerOID(ctx context.Context, userID int64, customerOID string) error
}

// SyncResult is the outcome of linking a user to the bank.
type SyncResult struct {
	Message     string `json:"message"`
	CustomerOID string `json:"customer_oid"`
}

// UserCommandService registers users and links them to the external bank.
type UserCommandService struct {
	users    UserStore
	bank     bank.API
	notifier events.Notifier
}

func NewUserCommandService(users UserStore, bankAPI bank.API, notifier events.Notifier) *UserCommandService {
	return &UserCommandService{users: users, bank: bankAPI, notifier: notifier}
}

// displayName is the name the bank knows the customer by.
func displayName(u *models.User) string {
	if u.FullName != nil && *u.FullName != "" {
		return *u.FullName
	}
	return u.Username
}

// defaultAccounts are opened for every new user with a zero balance.
func defaultAccounts(u *models.User) []*models.Account {
	owner := u.Username
	if u.FullName != nil && *u.FullName != "" {
		owner = *u.FullName
	}
	return []*models.Account{
		{AccountName: owner + "'s Checking", AccountType: models.AccountTypeChecking, Currency: models.DefaultCurrency},
		{AccountName: owner + "'s Savings", AccountType: models.AccountTypeSavings, Currency: models.DefaultCurrency},
	}
}

// Register creates a user with its default accounts. The bank is asked for a
// customer id first; if that fails the user is still created, unlinked.
func (s *UserCommandService) Register(ctx context.Context, cmd cqrs.RegisterUserCommand) (*models.User, error) {
	exists, err := s.users.ExistsByUsernameOrEmail(ctx, cmd.Username, cmd.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, apperrors.New(apperrors.ErrConflict, "Username or email already registered")
	}

	passwordHash, err := utils.HashPassword(cmd.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user := &models.User{
		Username:     cmd.Username,
		Email:        cmd.Email,
		PasswordHash: passwordHash,
		FullName:     models.StringPtr(cmd.FullName),
		IsActive:     true,
	}

	if oid, err := s.bank.RegisterCustomer(ctx, displayName(user)); err != nil {
		log.Printf("Failed to register %s with bank, continuing unlinked: %v", user.Username, err)
	} else {
		user.CustomerOID = &oid
		log.Printf("Customer registered with bank: %s", oid)
	}

	err = s.users.CreateWithAccounts(ctx, user, defaultAccounts(user))
	if errors.Is(err, repository.ErrCustomerOIDTaken) {
		log.Printf("Customer id %s already belongs to another user, registering %s unlinked", *user.CustomerOID, user.Username)
		user.CustomerOID = nil
		err = s.users.CreateWithAccounts(ctx, user, defaultAccounts(user))
	}
	if err != nil {
		if user.CustomerOID != nil {
			s.releaseCustomer(ctx, *user.CustomerOID)
		}
		return nil, err
	}

	log.Printf("New user registered: %s", user.Username)
	s.notifier.Notify(ctx, events.UserRegistered, events.UserRegisteredEvent{
		UserID:      user.ID,
		Username:    user.Username,
		CustomerOID: user.CustomerOID,
	})
	return user, nil
}

// releaseCustomer deletes a bank customer created for a registration that was
// never stored. Failures are logged only.
func (s *UserCommandService) releaseCustomer(ctx context.Context, oid string) {
	if err := s.bank.DeleteCustomer(context.WithoutCancel(ctx), oid); err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		log.Printf("Failed to remove orphaned bank customer %s: %v", oid, err)
		return
	}
	log.Printf("Removed orphaned bank customer %s", oid)
}

// SyncCustomer makes sure the user has a customer id the bank recognizes.
func (s *UserCommandService) SyncCustomer(ctx context.Context, cmd cqrs.SyncCustomerCommand) (*SyncResult, error) {
	user := cmd.User
	if user.CustomerOID != nil && *user.CustomerOID != "" {
		exists, err := s.bank.CustomerExists(ctx, *user.CustomerOID)
		if err != nil {
			log.Printf("Could not confirm bank customer %s: %v", *user.CustomerOID, err)
		}
		if err == nil && exists {
			return &SyncResult{Message: msgAlreadySynced, CustomerOID: *user.CustomerOID}, nil
		}
	}

	oid, err := s.bank.RegisterCustomer(ctx, displayName(user))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.New(apperrors.ErrInvalidRequest, "Failed to sync with dummy bank"), err)
	}
	if err := s.users.SetCustomerOID(ctx, user.ID, oid); err != nil {
		return nil, fmt.Errorf("%w: %v", apperrors.New(apperrors.ErrInvalidRequest, "Failed to store customer id"), err)
	}
	user.CustomerOID = &oid

	s.notifier.Notify(ctx, events.CustomerSynced, events.CustomerSyncedEvent{
		UserID:      user.ID,
		Username:    user.Username,
		CustomerOID: oid,
	})
	return &SyncResult{Message: msgSynced, CustomerOID: oid}, nil
}
