package command

import (
	"context"
	"fmt"
	"log"

	"github.com/eaglebank/mcp-banking/internal/bank"
	"github.com/eaglebank/mcp-banking/internal/repository"
	"github.com/eaglebank/mcp-banking/shared/models"
	"github.com/eaglebank/mcp-banking/shared/utils"
	"github.com/shopspring/decimal"
)

const demoPassword = "password123"

// UserCounter reports whether the database already holds users.
type UserCounter interface {
	Count(ctx context.Context) (int64, error)
}

// DemoSeeder inserts fixed rows in one transaction.
type DemoSeeder interface {
	Seed(ctx context.Context, users []repository.SeedUser, transactions []*models.Transaction) error
}

// SeedService loads the demo dataset on first start.
type SeedService struct {
	users  UserCounter
	seeder DemoSeeder
	bank   bank.API
}

func NewSeedService(users UserCounter, seeder DemoSeeder, bankAPI bank.API) *SeedService {
	return &SeedService{users: users, seeder: seeder, bank: bankAPI}
}

// SeedDemoData is a no-op when any user exists. It reports whether data was inserted.
func (s *SeedService) SeedDemoData(ctx context.Context) (bool, error) {
	n, err := s.users.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	hash, err := utils.HashPassword(demoPassword)
	if err != nil {
		return false, fmt.Errorf("failed to hash demo password: %w", err)
	}

	users := demoUsers(hash)
	for _, su := range users {
		oid, err := s.bank.RegisterCustomer(ctx, displayName(su.User))
		if err != nil {
			log.Printf("Demo user %s not linked to bank: %v", su.User.Username, err)
			continue
		}
		su.User.CustomerOID = &oid
	}

	if err := s.seeder.Seed(ctx, users, demoTransactions()); err != nil {
		return false, fmt.Errorf("failed to seed demo data: %w", err)
	}
	log.Printf("Seeded demo data: %d users", len(users))
	return true, nil
}

func demoUsers(passwordHash string) []repository.SeedUser {
	return []repository.SeedUser{
		{
			User: &models.User{
				Username: "john_doe", Email: "john@example.com",
				PasswordHash: passwordHash, FullName: models.StringPtr("John Doe"), IsActive: true,
			},
			Accounts: []*models.Account{
				{ID: "ACC001", AccountName: "John's Checking", AccountType: models.AccountTypeChecking, Balance: decimal.NewFromInt(5000), Currency: models.DefaultCurrency},
				{ID: "ACC002", AccountName: "John's Savings", AccountType: models.AccountTypeSavings, Balance: decimal.NewFromInt(15000), Currency: models.DefaultCurrency},
			},
		},
		{
			User: &models.User{
				Username: "jane_smith", Email: "jane@example.com",
				PasswordHash: passwordHash, FullName: models.StringPtr("Jane Smith"), IsActive: true,
			},
			Accounts: []*models.Account{
				{ID: "ACC003", AccountName: "Jane's Checking", AccountType: models.AccountTypeChecking, Balance: decimal.NewFromInt(3000), Currency: models.DefaultCurrency},
				{ID: "ACC004", AccountName: "Jane's Savings", AccountType: models.AccountTypeSavings, Balance: decimal.NewFromInt(8000), Currency: models.DefaultCurrency},
			},
		},
	}
}

func demoTransactions() []*models.Transaction {
	acc := func(id string) *string { return &id }
	return []*models.Transaction{
		{
			ID: "TXN001", FromAccountID: acc("ACC001"), Amount: decimal.NewFromInt(50),
			Currency: models.DefaultCurrency, Description: models.StringPtr("ATM Withdrawal"),
			TransactionType: models.TransactionTypeWithdrawal, Status: models.TransactionStatusCompleted,
		},
		{
			ID: "TXN002", ToAccountID: acc("ACC001"), Amount: decimal.NewFromInt(1000),
			Currency: models.DefaultCurrency, Description: models.StringPtr("Salary Deposit"),
			TransactionType: models.TransactionTypeDeposit, Status: models.TransactionStatusCompleted,
		},
		{
			ID: "TXN003", FromAccountID: acc("ACC001"), ToAccountID: acc("ACC003"), Amount: decimal.NewFromInt(200),
			Currency: models.DefaultCurrency, Description: models.StringPtr("Transfer to Jane"),
			TransactionType: models.TransactionTypeTransfer, Status: models.TransactionStatusCompleted,
		},
	}
}
