package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	batchModel "smartstudy_backend/internals/features/batches/model"
	batchRepo "smartstudy_backend/internals/features/batches/repository"
	"smartstudy_backend/internals/features/commerce/orders/model"
	refService "smartstudy_backend/internals/features/commerce/referrals/service"
	courseModel "smartstudy_backend/internals/features/courses/model"
	notifModel "smartstudy_backend/internals/features/users/notifications/model"
	notifService "smartstudy_backend/internals/features/users/notifications/service"
	userModel "smartstudy_backend/internals/features/users/user/model"
)

var (
	ErrAlreadyEnrolled  = errors.New("already enrolled")
	ErrItemNotFound     = errors.New("item not found")
	ErrFreeItem         = errors.New("item is free, enroll directly")
	ErrInvalidReferral  = errors.New("referral code is invalid or inactive")
	ErrInvalidSignature = errors.New("invalid signature")
	ErrOrderNotFound    = errors.New("order not found")
	ErrGateway          = errors.New("payment gateway error")
)

var nowFunc = func() time.Time { return time.Now().UTC() }

type OrderService struct {
	DB       *gorm.DB
	Gateway  Gateway
	Notifier notifService.Notifier
}

func New(db *gorm.DB, gw Gateway, n notifService.Notifier) *OrderService {
	return &OrderService{DB: db, Gateway: gw, Notifier: n}
}

// NewOrderID: SS + YYYYMMDD + 8 hex kapital.
func NewOrderID(now time.Time) string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "SS" + now.Format("20060102") + strings.ToUpper(hex[:8])
}

type CheckoutInput struct {
	UserID       uuid.UUID
	ItemType     string
	BatchID      *uuid.UUID
	PlanType     string
	ClassLevel   string
	Stream       string
	ReferralCode string
	PaymentMode  string
}

type CheckoutResult struct {
	Order       model.OrderModel `json:"order"`
	SnapToken   string           `json:"snap_token,omitempty"`
	RedirectURL string           `json:"redirect_url,omitempty"`
	Settled     bool             `json:"settled"`
}

type pricedItem struct {
	name  string
	price decimal.Decimal
}

func (s *OrderService) resolveItem(ctx context.Context, in *CheckoutInput) (*pricedItem, error) {
	db := s.DB.WithContext(ctx)
	switch in.ItemType {
	case model.ItemBatch:
		if in.BatchID == nil {
			return nil, ErrItemNotFound
		}
		var b batchModel.BatchModel
		if err := db.Where("id = ? AND is_active = ?", *in.BatchID, true).First(&b).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrItemNotFound
			}
			return nil, err
		}
		enrolled, err := batchRepo.IsEnrolledInBatch(ctx, s.DB, in.UserID, b.ID)
		if err != nil {
			return nil, err
		}
		if enrolled {
			return nil, ErrAlreadyEnrolled
		}
		if b.IsFree {
			return nil, ErrFreeItem
		}
		return &pricedItem{name: b.Name, price: b.EffectivePrice()}, nil

	case model.ItemPlan:
		price, ok := courseModel.PlanPrice(in.PlanType)
		if !ok {
			return nil, ErrItemNotFound
		}
		if price.IsZero() {
			return nil, ErrFreeItem
		}
		var n int64
		if err := db.Model(&courseModel.EnrollmentModel{}).
			Where("user_id = ? AND class_level = ? AND stream = ? AND payment_status = ? AND expires_at > ? AND course_type <> ?",
				in.UserID, in.ClassLevel, in.Stream, courseModel.PaymentCompleted, nowFunc(), courseModel.CourseTypeFree).
			Count(&n).Error; err != nil {
			return nil, err
		}
		if n > 0 {
			return nil, ErrAlreadyEnrolled
		}
		return &pricedItem{name: fmt.Sprintf("%s plan %s %s", in.PlanType, in.ClassLevel, in.Stream), price: price}, nil
	}
	return nil, ErrItemNotFound
}

// Checkout membuat order pending; tanpa gateway (atau nominal 0) langsung settle.
func (s *OrderService) Checkout(ctx context.Context, in CheckoutInput) (*CheckoutResult, error) {
	item, err := s.resolveItem(ctx, &in)
	if err != nil {
		return nil, err
	}

	o := model.OrderModel{
		OrderID:        NewOrderID(nowFunc()),
		UserID:         in.UserID,
		ItemType:       in.ItemType,
		BatchID:        in.BatchID,
		OriginalAmount: item.price,
		DiscountAmount: decimal.Zero,
		Amount:         item.price,
		PaymentMode:    in.PaymentMode,
		Status:         model.StatusPending,
	}
	if in.ItemType == model.ItemPlan {
		o.PlanType = in.PlanType
		o.ClassLevel = in.ClassLevel
		o.Stream = in.Stream
	}

	if code := strings.TrimSpace(in.ReferralCode); code != "" {
		rc, se, err := refService.LookupActive(s.DB.WithContext(ctx), code)
		if errors.Is(err, refService.ErrCodeInvalid) {
			return nil, ErrInvalidReferral
		}
		if err != nil {
			return nil, err
		}
		o.DiscountAmount, o.Amount = refService.ApplyDiscount(item.price, rc.DiscountPercentage)
		o.ReferralCodeID = &rc.ID
		o.ReferralCode = rc.Code
		o.SalesExecutiveID = &se.ID
	}

	if err := s.DB.WithContext(ctx).Create(&o).Error; err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}
	log.Printf("[ORDER] %s created user=%s item=%s amount=%s", o.OrderID, o.UserID, o.ItemType, o.Amount)

	res := &CheckoutResult{}
	// nominal yang dibulatkan jadi 0 tidak bisa ditagih lewat midtrans
	if s.Gateway == nil || grossAmount(&o) <= 0 {
		settled, err := s.ApplyStatus(ctx, o.OrderID, model.StatusSuccessful)
		if err != nil {
			return nil, err
		}
		res.Order = *settled
		res.Settled = true
		return res, nil
	}

	var u userModel.UserModel
	if err := s.DB.WithContext(ctx).First(&u, "id = ?", in.UserID).Error; err != nil {
		return nil, err
	}
	token, redirect, err := s.Gateway.CreateSnap(ctx, &o, Customer{
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Phone:     u.Phone,
	}, item.name)
	if err != nil {
		log.Printf("[MIDTRANS] snap %s failed: %v", o.OrderID, err)
		if uerr := s.DB.WithContext(ctx).Model(&model.OrderModel{}).Where("id = ?", o.ID).
			Update("status", model.StatusFailed).Error; uerr != nil {
			log.Printf("[ORDER] %s mark failed error: %v", o.OrderID, uerr)
		}
		return nil, fmt.Errorf("%w: %v", ErrGateway, err)
	}
	if err := s.DB.WithContext(ctx).Model(&o).Updates(map[string]any{
		"snap_token":   token,
		"redirect_url": redirect,
	}).Error; err != nil {
		return nil, err
	}
	o.SnapToken, o.RedirectURL = token, redirect
	res.Order = o
	res.SnapToken = token
	res.RedirectURL = redirect
	return res, nil
}

/* =========================================================
   Webhook / settlement
========================================================= */

type Notification struct {
	OrderID           string `json:"order_id"`
	StatusCode        string `json:"status_code"`
	GrossAmount       string `json:"gross_amount"`
	SignatureKey      string `json:"signature_key"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	PaymentType       string `json:"payment_type"`
}

// MapTransactionStatus: "" berarti status tidak berubah.
func MapTransactionStatus(txStatus, fraud string) string {
	switch strings.ToLower(txStatus) {
	case "capture":
		if fraud == "" || strings.EqualFold(fraud, "accept") {
			return model.StatusSuccessful
		}
		return ""
	case "settlement":
		return model.StatusSuccessful
	case "deny", "cancel", "failure":
		return model.StatusFailed
	case "expire":
		return model.StatusExpired
	}
	return ""
}

func (s *OrderService) HandleNotification(ctx context.Context, n Notification) (*model.OrderModel, error) {
	key := ""
	if s.Gateway != nil {
		key = s.Gateway.ServerKey()
	}
	if !VerifySignature(n, key) {
		log.Printf("[MIDTRANS] bad signature for order %s", n.OrderID)
		return nil, ErrInvalidSignature
	}
	next := MapTransactionStatus(n.TransactionStatus, n.FraudStatus)
	log.Printf("[MIDTRANS] order=%s transaction_status=%s fraud=%s -> %q", n.OrderID, n.TransactionStatus, n.FraudStatus, next)
	if next == "" {
		var o model.OrderModel
		if err := s.DB.WithContext(ctx).First(&o, "order_id = ?", n.OrderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrOrderNotFound
			}
			return nil, err
		}
		return &o, nil
	}
	return s.ApplyStatus(ctx, n.OrderID, next)
}

// ApplyStatus idempoten: status sama = no-op, order successful tidak pernah turun status.
// pending → successful menjalankan enrollment + usage referral dalam satu transaksi.
func (s *OrderService) ApplyStatus(ctx context.Context, orderID, next string) (*model.OrderModel, error) {
	var o model.OrderModel
	settledNow := false
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&o, "order_id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		if o.Status == next || o.Status == model.StatusSuccessful {
			return nil
		}
		if next != model.StatusSuccessful {
			if o.Status != model.StatusPending {
				return nil
			}
			o.Status = next
			return tx.Model(&o).Update("status", next).Error
		}

		now := nowFunc()
		res := tx.Model(&model.OrderModel{}).
			Where("id = ? AND status <> ?", o.ID, model.StatusSuccessful).
			Updates(map[string]any{"status": model.StatusSuccessful, "paid_at": now})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		o.Status = model.StatusSuccessful
		o.PaidAt = &now
		if err := fulfil(tx, &o, now); err != nil {
			return err
		}
		if o.ReferralCodeID != nil {
			if err := refService.IncrementUsage(tx, *o.ReferralCodeID); err != nil {
				return err
			}
		}
		settledNow = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	if settledNow {
		log.Printf("[ORDER] %s settled user=%s", o.OrderID, o.UserID)
		s.notifySettled(ctx, &o)
	}
	return &o, nil
}

func fulfil(tx *gorm.DB, o *model.OrderModel, now time.Time) error {
	switch o.ItemType {
	case model.ItemBatch:
		if o.BatchID == nil {
			return ErrItemNotFound
		}
		return batchRepo.Enroll(tx, o.UserID, *o.BatchID)
	case model.ItemPlan:
		e := courseModel.EnrollmentModel{
			UserID:        o.UserID,
			CourseType:    o.PlanType,
			ClassLevel:    o.ClassLevel,
			Stream:        o.Stream,
			AmountPaid:    o.Amount,
			PaymentStatus: courseModel.PaymentCompleted,
			EnrolledAt:    now,
		}
		return tx.Create(&e).Error
	}
	return ErrItemNotFound
}

func (s *OrderService) notifySettled(ctx context.Context, o *model.OrderModel) {
	if s.Notifier == nil {
		return
	}
	what := "your plan"
	if o.ItemType == model.ItemBatch && o.BatchID != nil {
		var b batchModel.BatchModel
		if err := s.DB.WithContext(ctx).Select("name").First(&b, "id = ?", *o.BatchID).Error; err == nil {
			what = b.Name
		}
	}
	msg := fmt.Sprintf("Payment for order %s received. You are now enrolled in %s.", o.OrderID, what)
	if err := s.Notifier.Notify(ctx, o.UserID, notifModel.TypePayment, "Enrollment confirmed", msg); err != nil {
		log.Printf("[ORDER] notify %s failed: %v", o.OrderID, err)
	}
}

/* =========================================================
   Queries & maintenance
========================================================= */

func (s *OrderService) MyOrders(ctx context.Context, userID uuid.UUID, status string, offset, limit int) ([]model.OrderModel, int64, error) {
	q := s.DB.WithContext(ctx).Model(&model.OrderModel{}).Where("user_id = ?", userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []model.OrderModel
	if err := q.Order("created_at DESC").Offset(offset).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

func (s *OrderService) GetMine(ctx context.Context, userID uuid.UUID, orderID string) (*model.OrderModel, error) {
	var o model.OrderModel
	if err := s.DB.WithContext(ctx).First(&o, "order_id = ? AND user_id = ?", orderID, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &o, nil
}

// ExpirePending: order pending lebih tua dari ttl → expired.
func (s *OrderService) ExpirePending(ctx context.Context, ttl time.Duration) (int64, error) {
	res := s.DB.WithContext(ctx).Model(&model.OrderModel{}).
		Where("status = ? AND created_at < ?", model.StatusPending, nowFunc().Add(-ttl)).
		Update("status", model.StatusExpired)
	return res.RowsAffected, res.Error
}
