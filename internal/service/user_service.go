package service

import (
	"errors"

	"waifuhub/backend/internal/models"
	apperrors "waifuhub/backend/pkg/errors"
	"waifuhub/backend/pkg/jwt"

	"gorm.io/gorm"
)

// UserService handles wallet identity. Connecting a wallet is the only way a
// user row comes into existence.
type UserService struct {
	db     *gorm.DB
	tokens *jwt.Service
}

// NewUserService creates a new user service
func NewUserService(db *gorm.DB, tokens *jwt.Service) *UserService {
	return &UserService{db: db, tokens: tokens}
}

// Connect upserts the user for a wallet address and issues a session token.
// Reconnecting an existing wallet returns the same row; a supplied username
// replaces the stored one.
func (s *UserService) Connect(req *models.ConnectRequest) (*models.User, string, error) {
	var user models.User
	result := s.db.Where("wallet_address = ?", req.WalletAddress).First(&user)
	switch {
	case result.Error == nil:
		if req.Username != "" && req.Username != user.Username {
			user.Username = req.Username
			if err := s.db.Model(&user).Update("username", req.Username).Error; err != nil {
				return nil, "", apperrors.NewPersistenceFailure("failed to update username")
			}
		}
	case errors.Is(result.Error, gorm.ErrRecordNotFound):
		user = models.User{
			WalletAddress: req.WalletAddress,
			Username:      req.Username,
		}
		if user.Username == "" {
			user.Username = defaultUsername(req.WalletAddress)
		}
		if err := s.db.Create(&user).Error; err != nil {
			// Two concurrent first connects race on the wallet unique index;
			// the loser picks up the winner's row.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				if lookupErr := s.db.Where("wallet_address = ?", req.WalletAddress).First(&user).Error; lookupErr != nil {
					return nil, "", apperrors.NewPersistenceFailure("failed to load user")
				}
			} else {
				return nil, "", apperrors.NewPersistenceFailure("failed to create user")
			}
		}
	default:
		return nil, "", apperrors.NewPersistenceFailure("failed to look up user")
	}

	token, err := s.tokens.GenerateToken(user.ID, user.WalletAddress)
	if err != nil {
		return nil, "", apperrors.NewInternal("failed to issue session token")
	}
	return &user, token, nil
}

// GetUserByID retrieves a user by ID
func (s *UserService) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	result := s.db.First(&user, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("user not found")
		}
		return nil, apperrors.NewPersistenceFailure("failed to load user")
	}
	return &user, nil
}

// GetUserByWallet retrieves a user by wallet address
func (s *UserService) GetUserByWallet(wallet string) (*models.User, error) {
	var user models.User
	result := s.db.Where("wallet_address = ?", wallet).First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperrors.NewNotFound("user not found")
		}
		return nil, apperrors.NewPersistenceFailure("failed to load user")
	}
	return &user, nil
}

func defaultUsername(wallet string) string {
	if len(wallet) <= 5 {
		return wallet
	}
	return wallet[:5]
}
