// internal/services/payment_service.go
package services

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
	"gorm.io/gorm"

	"github.com/promptsig/vault-backend/internal/config"
	"github.com/promptsig/vault-backend/internal/database"
	"github.com/promptsig/vault-backend/internal/models"
	"github.com/promptsig/vault-backend/internal/utils"
)

// PaymentService sells ledger credit for fiat: a Stripe payment intent is
// created against a pending CreditPurchase, and confirmation mints the
// purchased credit into the buyer's token account.
type PaymentService struct {
	db     *gorm.DB
	tokens *TokenService
	config *config.Config
}

type CreateTopUpRequest struct {
	Amount   uint64 `json:"amount" binding:"required"` // in credits, 1 credit == 1 cent
	Currency string `json:"currency,omitempty"`
}

type TopUpIntentResponse struct {
	PurchaseID   uuid.UUID `json:"purchase_id"`
	ClientSecret string    `json:"client_secret"`
	PaymentID    string    `json:"payment_id"`
	Status       string    `json:"status"`
}

func NewPaymentService(db *gorm.DB, tokens *TokenService, config *config.Config) *PaymentService {
	// Initialize Stripe
	stripe.Key = config.Payment.StripeSecretKey

	return &PaymentService{
		db:     db,
		tokens: tokens,
		config: config,
	}
}

// CreateTopUpIntent opens a pending purchase and its Stripe payment
// intent. Credits are denominated one-to-one against cents.
func (s *PaymentService) CreateTopUpIntent(userID uuid.UUID, req *CreateTopUpRequest) (*TopUpIntentResponse, error) {
	if req.Amount < s.config.Payment.MinimumTopUp {
		return nil, fmt.Errorf("minimum top-up is %d credits", s.config.Payment.MinimumTopUp)
	}

	currency := req.Currency
	if currency == "" {
		currency = "usd"
	}

	purchase := &models.CreditPurchase{
		UserID: userID,
		Amount: req.Amount,
		Status: models.PurchaseStatusPending,
	}
	if err := s.db.Create(purchase).Error; err != nil {
		return nil, fmt.Errorf("failed to create purchase: %w", err)
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(req.Amount)),
		Currency: stripe.String(currency),
	}
	params.AddMetadata("user_id", userID.String())
	params.AddMetadata("purchase_id", purchase.ID.String())

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}

	purchase.PaymentReference = pi.ID
	if err := s.db.Save(purchase).Error; err != nil {
		return nil, fmt.Errorf("failed to store payment reference: %w", err)
	}

	return &TopUpIntentResponse{
		PurchaseID:   purchase.ID,
		ClientSecret: pi.ClientSecret,
		PaymentID:    pi.ID,
		Status:       string(pi.Status),
	}, nil
}

// ConfirmTopUp settles a purchase against Stripe's view of the payment.
// A succeeded payment mints the credit exactly once; re-confirming a
// completed purchase is a no-op.
func (s *PaymentService) ConfirmTopUp(userID uuid.UUID, purchaseID uuid.UUID) (*models.CreditPurchase, error) {
	var purchase models.CreditPurchase
	if err := s.db.First(&purchase, "id = ? AND user_id = ?", purchaseID, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("purchase not found")
		}
		return nil, fmt.Errorf("failed to load purchase: %w", err)
	}
	if purchase.Status == models.PurchaseStatusCompleted {
		return &purchase, nil
	}

	pi, err := paymentintent.Get(purchase.PaymentReference, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to get payment intent: %w", err)
	}

	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		err = database.WithTransaction(s.db, func(tx *gorm.DB) error {
			now := time.Now()
			purchase.Status = models.PurchaseStatusCompleted
			purchase.ProcessedAt = &now
			if err := tx.Save(&purchase).Error; err != nil {
				return fmt.Errorf("failed to update purchase: %w", err)
			}
			return s.tokens.Credit(tx, models.LedgerOwnerForUser(userID), purchase.Amount)
		})
		if err != nil {
			return nil, err
		}
		log.WithFields(log.Fields{
			"user_id": userID,
			"amount":  purchase.Amount,
		}).Info("Credit top-up completed")

	case stripe.PaymentIntentStatusRequiresAction, stripe.PaymentIntentStatusRequiresConfirmation:
		// Still in flight; leave the purchase pending.

	default:
		purchase.Status = models.PurchaseStatusFailed
		if err := s.db.Save(&purchase).Error; err != nil {
			return nil, fmt.Errorf("failed to update purchase: %w", err)
		}
	}

	return &purchase, nil
}

// GetBalance reports the user's live ledger balance.
func (s *PaymentService) GetBalance(userID uuid.UUID) (uint64, error) {
	return s.tokens.Balance(models.LedgerOwnerForUser(userID))
}

// GetPurchaseHistory lists the user's top-ups, newest first.
func (s *PaymentService) GetPurchaseHistory(userID uuid.UUID, pagination utils.PaginationParams) ([]models.CreditPurchase, *utils.PaginationResult, error) {
	query := s.db.Model(&models.CreditPurchase{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to count purchases: %w", err)
	}

	var purchases []models.CreditPurchase
	if err := utils.ApplyPagination(query.Order("created_at DESC"), pagination).Find(&purchases).Error; err != nil {
		return nil, nil, fmt.Errorf("failed to list purchases: %w", err)
	}

	result := utils.CreatePaginationResult(purchases, total, pagination)
	return purchases, &result, nil
}
