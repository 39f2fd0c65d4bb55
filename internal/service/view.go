package service

import (
	"payments/internal/domain"
	"payments/internal/money"
	"payments/internal/redis"
)

// toView projects a stored payment into display units.
func toView(p *domain.Payment) *domain.PaymentView {
	return &domain.PaymentView{
		Status:   p.Status,
		Amount:   money.ToDisplayAmount(p.Amount),
		Currency: p.Currency,
		Sender:   p.Sender,
		Receiver: p.Receiver,
	}
}

func toCached(paymentID string, v *domain.PaymentView) *redis.CachedPayment {
	return &redis.CachedPayment{
		PaymentID: paymentID,
		Status:    string(v.Status),
		Amount:    v.Amount,
		Currency:  v.Currency,
		Sender:    v.Sender,
		Receiver:  v.Receiver,
	}
}

func fromCached(c *redis.CachedPayment) *domain.PaymentView {
	return &domain.PaymentView{
		Status:   domain.PaymentStatus(c.Status),
		Amount:   c.Amount,
		Currency: c.Currency,
		Sender:   c.Sender,
		Receiver: c.Receiver,
	}
}
