package services

import (
	"context"
	"crypto/rand"
	"errors"
	"math/big"
	"time"

	"github.com/kevinleven52/Ac.Connect/models"
	"github.com/kevinleven52/Ac.Connect/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

const (
	couponCodePrefix     = "ACconnectGift"
	couponCodeRandomLen  = 6
	couponDiscount       = 10 // percent
	couponValidityPeriod = 30 * 24 * time.Hour
)

const couponCodeCharset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// CouponService manages per-user gift coupons. Issuing a coupon for a user
// retires any prior one, keeping at most one active coupon per user.
type CouponService interface {
	GetCoupon(ctx context.Context, userID primitive.ObjectID) (*models.Coupon, *ServiceError)
	ValidateCoupon(ctx context.Context, userID primitive.ObjectID, code string) (*models.Coupon, *ServiceError)
	IssueForUser(ctx context.Context, userID primitive.ObjectID) (*models.Coupon, *ServiceError)
	Deactivate(ctx context.Context, code string, userID primitive.ObjectID) *ServiceError
}

type couponServiceImpl struct {
	repo   repository.CouponRepository
	logger *zap.Logger
}

// NewCouponService creates a new CouponService.
func NewCouponService(repo repository.CouponRepository, logger *zap.Logger) CouponService {
	return &couponServiceImpl{repo: repo, logger: logger}
}

// GetCoupon returns the caller's active coupon, or NotFound.
func (s *couponServiceImpl) GetCoupon(ctx context.Context, userID primitive.ObjectID) (*models.Coupon, *ServiceError) {
	coupon, err := s.repo.FindActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound("No coupons found")
		}
		s.logger.Error("Failed to load coupon", zap.Error(err))
		return nil, internal("Failed to load coupon")
	}
	return coupon, nil
}

// ValidateCoupon checks that an active coupon with the given code belongs to
// the caller. An expired coupon is rejected distinctly from a missing one.
func (s *couponServiceImpl) ValidateCoupon(ctx context.Context, userID primitive.ObjectID, code string) (*models.Coupon, *ServiceError) {
	coupon, err := s.repo.FindActiveByCodeAndUser(ctx, code, userID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notFound("Coupon not found")
		}
		s.logger.Error("Failed to look up coupon", zap.String("code", code), zap.Error(err))
		return nil, internal("Failed to validate coupon")
	}

	if coupon.Expired(time.Now()) {
		return nil, badRequest("Coupon has expired")
	}
	return coupon, nil
}

// IssueForUser deletes any prior coupon for the user and creates a fresh 10%
// coupon valid for 30 days.
func (s *couponServiceImpl) IssueForUser(ctx context.Context, userID primitive.ObjectID) (*models.Coupon, *ServiceError) {
	if err := s.repo.DeleteByUser(ctx, userID); err != nil {
		s.logger.Error("Failed to retire prior coupon", zap.String("user_id", userID.Hex()), zap.Error(err))
		return nil, internal("Failed to issue coupon")
	}

	coupon := &models.Coupon{
		Code:               couponCodePrefix + randomCode(couponCodeRandomLen),
		DiscountPercentage: couponDiscount,
		ExpirationDate:     time.Now().Add(couponValidityPeriod),
		IsActive:           true,
		UserID:             userID,
	}
	if err := s.repo.Create(ctx, coupon); err != nil {
		s.logger.Error("Failed to create coupon", zap.String("user_id", userID.Hex()), zap.Error(err))
		return nil, internal("Failed to issue coupon")
	}

	s.logger.Info("Coupon issued",
		zap.String("user_id", userID.Hex()),
		zap.String("code", coupon.Code),
	)
	return coupon, nil
}

// Deactivate marks the coupon matching code and owner as used.
func (s *couponServiceImpl) Deactivate(ctx context.Context, code string, userID primitive.ObjectID) *ServiceError {
	if err := s.repo.Deactivate(ctx, code, userID); err != nil {
		s.logger.Error("Failed to deactivate coupon", zap.String("code", code), zap.Error(err))
		return internal("Failed to deactivate coupon")
	}
	return nil
}

func randomCode(n int) string {
	max := big.NewInt(int64(len(couponCodeCharset)))
	code := make([]byte, n)
	for i := range code {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken.
			idx = big.NewInt(int64(i) % max.Int64())
		}
		code[i] = couponCodeCharset[idx.Int64()]
	}
	return string(code)
}
