package orders

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/atelierno/storefront-backend/internal/basket"
	"github.com/atelierno/storefront-backend/internal/catalog"
	"github.com/atelierno/storefront-backend/internal/delivery"
	"github.com/atelierno/storefront-backend/internal/pricing"
	"github.com/atelierno/storefront-backend/internal/promo"
	"github.com/atelierno/storefront-backend/pkg/db"
	"github.com/atelierno/storefront-backend/pkg/db/models"
	"github.com/atelierno/storefront-backend/pkg/enums"
	pkgerrors "github.com/atelierno/storefront-backend/pkg/errors"
	"github.com/atelierno/storefront-backend/pkg/identity"
	"github.com/atelierno/storefront-backend/pkg/logger"
)

// TaskRecalculateTotal recomputes an order's total price. The task key is the
// order ID.
const TaskRecalculateTotal = "order.recalculate_total"

// Enqueuer schedules deduplicated background tasks.
type Enqueuer interface {
	Enqueue(ctx context.Context, kind, key string) error
}

// ServiceParams groups dependencies for the orders service.
type ServiceParams struct {
	Repo        *Repository
	BasketRepo  *basket.Repository
	CatalogRepo *catalog.Repository
	PromoRepo   *promo.Repository
	Delivery    delivery.Service
	Client      *db.Client
	Queue       Enqueuer
	Logger      *logger.Logger
}

// Service places and manages orders, including the asynchronous total
// recomputation triggered by every line mutation.
type Service interface {
	Checkout(ctx context.Context, ident identity.Identity, input CheckoutInput) (OrderDTO, error)
	List(ctx context.Context, ident identity.Identity) ([]OrderDTO, error)
	Get(ctx context.Context, ident identity.Identity, orderID uuid.UUID) (OrderDTO, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, target enums.OrderStatus) (OrderDTO, error)
	// RecalculateTotal is the task handler: it reprices the order from its
	// lines, delivery tier and promo code inside one transaction.
	RecalculateTotal(ctx context.Context, orderID uuid.UUID) error
}

type service struct {
	repo        *Repository
	basketRepo  *basket.Repository
	catalogRepo *catalog.Repository
	promoRepo   *promo.Repository
	delivery    delivery.Service
	client      *db.Client
	queue       Enqueuer
	logg        *logger.Logger
}

// NewService builds an orders service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "orders repo is required")
	}
	if params.BasketRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "basket repo is required")
	}
	if params.CatalogRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog repo is required")
	}
	if params.PromoRepo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "promo repo is required")
	}
	if params.Delivery == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery service is required")
	}
	if params.Client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "db client is required")
	}
	if params.Queue == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "task queue is required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{
		repo:        params.Repo,
		basketRepo:  params.BasketRepo,
		catalogRepo: params.CatalogRepo,
		promoRepo:   params.PromoRepo,
		delivery:    params.Delivery,
		client:      params.Client,
		queue:       params.Queue,
		logg:        params.Logger,
	}, nil
}

// Checkout converts the identity's basket into an order: available lines are
// snapshotted into order lines, sale counters are bumped and the basket is
// cleared, all in one transaction. The total is recomputed asynchronously.
func (s *service) Checkout(ctx context.Context, ident identity.Identity, input CheckoutInput) (OrderDTO, error) {
	if ident.IsZero() {
		return OrderDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "identity is required")
	}
	if strings.TrimSpace(input.Name) == "" {
		return OrderDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if strings.TrimSpace(input.Email) == "" {
		return OrderDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "email is required")
	}
	if !input.PaymentMethod.IsValid() {
		return OrderDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown payment method")
	}

	var promoID *uuid.UUID
	if code := strings.TrimSpace(input.PromoCode); code != "" {
		found, err := s.promoRepo.FindByCode(ctx, code)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "promo code not found")
			}
			return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load promo code")
		}
		if !found.IsActive {
			return OrderDTO{}, pkgerrors.New(pkgerrors.CodeStateConflict, "promo code is no longer active")
		}
		promoID = &found.ID
	}

	lines, err := s.basketRepo.List(ctx, ident.Key())
	if err != nil {
		return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list basket")
	}

	orderable := make([]models.BasketLine, 0, len(lines))
	for _, line := range lines {
		if line.SizeVariant == nil || line.SizeVariant.Available {
			orderable = append(orderable, line)
		}
	}
	if len(orderable) == 0 {
		return OrderDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "basket has no orderable lines")
	}

	order := &models.Order{
		ID:            uuid.New(),
		IdentityKey:   ident.Key(),
		Name:          input.Name,
		Email:         input.Email,
		City:          input.City,
		Phone:         input.Phone,
		Address:       input.Address,
		Postcode:      input.Postcode,
		Note:          input.Note,
		Status:        enums.OrderStatusNew,
		PaymentMethod: input.PaymentMethod,
		PromoCodeID:   promoID,
		TotalPrice:    decimal.Zero,
	}
	if ident.IsAuthenticated() {
		userID := ident.UserID()
		order.UserID = &userID
	}

	err = s.client.WithTx(ctx, func(tx *gorm.DB) error {
		txCatalog := s.catalogRepo.WithTx(tx)

		for _, line := range orderable {
			product := line.Product
			if product == nil {
				loaded, err := txCatalog.FindByID(ctx, line.ProductID)
				if err != nil {
					return err
				}
				product = loaded
			}

			colorID := line.ColorVariantID
			sizeID := line.SizeVariantID
			order.Lines = append(order.Lines, models.OrderLine{
				ID:             uuid.New(),
				OrderID:        order.ID,
				ProductID:      line.ProductID,
				ColorVariantID: &colorID,
				SizeVariantID:  &sizeID,
				Quantity:       line.Quantity,
				UnitPrice:      product.CurrentPrice,
				LineTotal:      pricing.LineTotal(line.Quantity, product.CurrentPrice),
			})
		}

		if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return err
		}
		for _, line := range orderable {
			if err := txCatalog.IncrementSaleCount(ctx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}
		return s.basketRepo.WithTx(tx).DeleteAll(ctx, ident.Key())
	})
	if err != nil {
		return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "place order")
	}

	if err := s.queue.Enqueue(ctx, TaskRecalculateTotal, order.ID.String()); err != nil {
		s.logg.Error(ctx, "enqueue order recalculation", err)
	}

	ctx = s.logg.WithField(ctx, "order_id", order.ID.String())
	s.logg.Info(ctx, "order placed")
	return s.Get(ctx, ident, order.ID)
}

// List returns the identity's orders.
func (s *service) List(ctx context.Context, ident identity.Identity) ([]OrderDTO, error) {
	if ident.IsZero() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "identity is required")
	}
	orders, err := s.repo.ListForIdentity(ctx, ident.Key())
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	out := make([]OrderDTO, 0, len(orders))
	for _, order := range orders {
		out = append(out, toOrderDTO(order))
	}
	return out, nil
}

// Get returns one of the identity's orders.
func (s *service) Get(ctx context.Context, ident identity.Identity, orderID uuid.UUID) (OrderDTO, error) {
	if ident.IsZero() {
		return OrderDTO{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "identity is required")
	}
	order, err := s.repo.FindForIdentity(ctx, ident.Key(), orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
		}
		return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return toOrderDTO(*order), nil
}

// UpdateStatus moves an order along the status graph; transitions outside the
// graph are rejected.
func (s *service) UpdateStatus(ctx context.Context, orderID uuid.UUID, target enums.OrderStatus) (OrderDTO, error) {
	if !target.IsValid() {
		return OrderDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}

	var updated models.Order
	err := s.client.WithTx(ctx, func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.First(&order, "id = ?", orderID).Error; err != nil {
			return err
		}
		if !order.Status.CanTransitionTo(target) {
			return pkgerrors.New(pkgerrors.CodeStateConflict,
				"cannot transition order from "+order.Status.String()+" to "+target.String())
		}
		if err := tx.Model(&models.Order{}).
			Where("id = ?", orderID).
			UpdateColumn("status", target).Error; err != nil {
			return err
		}
		order.Status = target
		updated = order
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeNotFound, err, "order not found")
		}
		if typed := pkgerrors.As(err); typed != nil {
			return OrderDTO{}, typed
		}
		return OrderDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order status")
	}

	ctx = s.logg.WithFields(ctx, map[string]any{"order_id": orderID.String(), "status": target.String()})
	s.logg.Info(ctx, "order status updated")
	return toOrderDTO(updated), nil
}

// RecalculateTotal reprices the order in one transaction: the subtotal from
// its lines, the delivery tier resolved from the subtotal, and the promo
// discount when the attached code is still active. The total never drops
// below zero. A missing order aborts the task without error.
func (s *service) RecalculateTotal(ctx context.Context, orderID uuid.UUID) error {
	if orderID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}

	return s.client.WithTx(ctx, func(tx *gorm.DB) error {
		var order models.Order
		if err := tx.Preload("Lines").First(&order, "id = ?", orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				s.logg.Warn(s.logg.WithField(ctx, "order_id", orderID.String()), "order vanished before recalculation")
				return nil
			}
			return err
		}

		subtotal := decimal.Zero
		for _, line := range order.Lines {
			subtotal = subtotal.Add(line.LineTotal)
		}

		deliveryPrice := decimal.Zero
		var deliveryTierID *uuid.UUID
		if subtotal.IsPositive() {
			resolution, err := s.delivery.Resolve(ctx, subtotal)
			if err != nil {
				return err
			}
			deliveryPrice = resolution.Price
			deliveryTierID = resolution.TierID
		}

		discount := decimal.Zero
		if order.PromoCodeID != nil {
			found, err := s.promoRepo.WithTx(tx).FindByID(ctx, *order.PromoCodeID)
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			if err == nil && found.IsActive {
				discount = found.DiscountPrice
			}
		}

		total := subtotal.Add(deliveryPrice).Sub(discount)
		if total.IsNegative() {
			total = decimal.Zero
		}

		return tx.Model(&models.Order{}).
			Where("id = ?", order.ID).
			UpdateColumns(map[string]any{
				"total_price":      total,
				"delivery_tier_id": deliveryTierID,
			}).Error
	})
}

func toOrderDTO(order models.Order) OrderDTO {
	dto := OrderDTO{
		ID:            order.ID,
		Status:        order.Status,
		PaymentMethod: order.PaymentMethod,
		Name:          order.Name,
		Email:         order.Email,
		City:          order.City,
		Phone:         order.Phone,
		Address:       order.Address,
		Postcode:      order.Postcode,
		Note:          order.Note,
		TotalPrice:    order.TotalPrice,
		CreatedAt:     order.CreatedAt,
	}
	if order.PromoCode != nil {
		dto.PromoCode = order.PromoCode.Code
	}
	if order.DeliveryTier != nil {
		dto.DeliveryTitle = order.DeliveryTier.Title
	}
	dto.Lines = make([]OrderLineDTO, 0, len(order.Lines))
	for _, line := range order.Lines {
		item := OrderLineDTO{
			ID:        line.ID,
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			LineTotal: line.LineTotal,
		}
		if line.Product != nil {
			item.ProductTitle = line.Product.Title
		}
		dto.Lines = append(dto.Lines, item)
	}
	return dto
}
