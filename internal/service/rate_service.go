package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"backend/internal/model"
	"backend/internal/rates"
	"backend/internal/repository"
	ws "backend/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrRateNotFound = errors.New("exchange rate not found")
	ErrRateDate     = errors.New("rate date is required")
	ErrRateCurrency = errors.New("currency is required")
)

type SaveRateRequest struct {
	Currency string          `json:"currency"`
	Date     string          `json:"date"`
	CashRate decimal.Decimal `json:"cash_rate"`
	VisaRate decimal.Decimal `json:"visa_rate"`
	JCBRate  decimal.Decimal `json:"jcb_rate"`
	AddedBy  string          `json:"added_by"`
}

// ResolvedRate answers "what rate applies" for a currency, payment
// method and date. Missing=true means no usable rate existed and the
// cost math will treat the rate as 1.
type ResolvedRate struct {
	Currency      string          `json:"currency"`
	PaymentMethod string          `json:"payment_method"`
	Date          string          `json:"date"`
	Rate          decimal.Decimal `json:"rate"`
	Missing       bool            `json:"missing"`
}

type ExchangeRateService interface {
	List(ctx context.Context, limit int) ([]model.ExchangeRate, error)
	Save(ctx context.Context, req SaveRateRequest) (*model.ExchangeRate, error)
	Delete(ctx context.Context, id uuid.UUID, operator string) error
	Resolve(ctx context.Context, currency, paymentMethod, date string) (ResolvedRate, error)
}

type exchangeRateService struct {
	rateRepo  repository.ExchangeRateRepository
	auditRepo repository.AuditRepository
	txManager repository.TransactionManager
	hub       *ws.Hub
}

func NewExchangeRateService(
	rateRepo repository.ExchangeRateRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) ExchangeRateService {
	return &exchangeRateService{
		rateRepo:  rateRepo,
		auditRepo: auditRepo,
		txManager: txManager,
		hub:       hub,
	}
}

func (s *exchangeRateService) List(ctx context.Context, limit int) ([]model.ExchangeRate, error) {
	return s.rateRepo.List(ctx, limit)
}

// Save upserts on the (currency, date) key: re-entering rates for a day
// overwrites that day's record instead of stacking duplicates.
func (s *exchangeRateService) Save(ctx context.Context, req SaveRateRequest) (*model.ExchangeRate, error) {
	req.Currency = strings.ToUpper(strings.TrimSpace(req.Currency))
	if req.Currency == "" {
		return nil, ErrRateCurrency
	}
	if strings.TrimSpace(req.Date) == "" {
		return nil, ErrRateDate
	}
	if req.CashRate.IsNegative() || req.VisaRate.IsNegative() || req.JCBRate.IsNegative() {
		return nil, ErrNegativePrice
	}

	existing, err := s.rateRepo.FindByCurrencyAndDate(ctx, req.Currency, req.Date)
	if err != nil {
		return nil, fmt.Errorf("failed to look up rate: %w", err)
	}

	rate := existing
	if rate == nil {
		rate = &model.ExchangeRate{Currency: req.Currency, Date: req.Date}
	}
	rate.CashRate = req.CashRate
	rate.VisaRate = req.VisaRate
	rate.JCBRate = req.JCBRate

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var persistErr error
		if existing == nil {
			persistErr = s.rateRepo.Create(txCtx, rate)
		} else {
			persistErr = s.rateRepo.Update(txCtx, rate)
		}
		if persistErr != nil {
			return fmt.Errorf("failed to save rate: %w", persistErr)
		}
		return s.logRateAction(txCtx, rate, model.ActionSaveRate, req.AddedBy)
	})
	if err != nil {
		return nil, err
	}

	s.broadcastRatesSnapshot(ctx)
	return rate, nil
}

func (s *exchangeRateService) Delete(ctx context.Context, id uuid.UUID, operator string) error {
	rate, err := s.rateRepo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrRateNotFound
	}
	if err != nil {
		return err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.rateRepo.Delete(txCtx, id); err != nil {
			return fmt.Errorf("failed to delete rate: %w", err)
		}
		return s.logRateAction(txCtx, rate, model.ActionDeleteRate, operator)
	})
	if err != nil {
		return err
	}

	s.broadcastRatesSnapshot(ctx)
	return nil
}

// Resolve runs the same lookup the purchase ledger uses: exact date,
// else the most recent earlier record, else missing.
func (s *exchangeRateService) Resolve(ctx context.Context, currency, paymentMethod, date string) (ResolvedRate, error) {
	records, err := s.rateRepo.List(ctx, 0)
	if err != nil {
		return ResolvedRate{}, fmt.Errorf("failed to load exchange rates: %w", err)
	}
	table := rates.NewTable(records)
	rate, ok := table.RateFor(currency, paymentMethod, date)
	return ResolvedRate{
		Currency:      strings.ToUpper(currency),
		PaymentMethod: paymentMethod,
		Date:          date,
		Rate:          rate,
		Missing:       !ok,
	}, nil
}

func (s *exchangeRateService) logRateAction(ctx context.Context, rate *model.ExchangeRate, action, operator string) error {
	details, _ := json.Marshal(map[string]interface{}{
		"currency":  rate.Currency,
		"date":      rate.Date,
		"cash_rate": rate.CashRate,
		"visa_rate": rate.VisaRate,
		"jcb_rate":  rate.JCBRate,
	})
	entry := &model.AuditLog{
		Operator:   operator,
		Action:     action,
		EntityID:   rate.ID.String(),
		EntityName: rate.Currency + " " + rate.Date,
		Details:    string(details),
	}
	if err := s.auditRepo.Log(ctx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func (s *exchangeRateService) broadcastRatesSnapshot(ctx context.Context) {
	snapshot, err := s.rateRepo.List(ctx, 0)
	if err != nil {
		return
	}
	s.hub.BroadcastEvent(ws.EventRatesSnapshot, snapshot)
}
