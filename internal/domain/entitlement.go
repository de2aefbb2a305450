package domain

import (
	"fmt"
	"time"
)

// FreeInterviewLimit — число бесплатных интервью за всё время.
const FreeInterviewLimit = 1

const (
	// PremiumContentDeniedReason отдаётся на закрытых для бесплатного тарифа раундах.
	PremiumContentDeniedReason = "Versant rounds are only available for premium users. Please upgrade to access this feature."
	premiumExpiredReason       = "Your premium subscription has expired. Please renew to continue."
	freeTrialExhaustedFormat   = "Free trial expired. You have used %d out of %d free interview. Please upgrade to premium for unlimited interviews."
)

// Entitlement — вычисленное состояние доступа пользователя. Не хранится и не кэшируется.
type Entitlement struct {
	IsPremium               bool
	CanGenerate             bool
	CanAccessPremiumContent bool
	// RemainingFree равен nil для премиум-пользователей.
	RemainingFree   *int
	InterviewsTaken int
	Expired         bool
}

// EvaluateEntitlement вычисляет доступ по текущему состоянию учётной записи.
func EvaluateEntitlement(acc Account, now time.Time) Entitlement {
	premium := acc.SubscriptionStatus == SubscriptionActive &&
		acc.SubscriptionEnd != nil && acc.SubscriptionEnd.After(now)

	ent := Entitlement{
		IsPremium:               premium,
		CanGenerate:             premium || acc.InterviewsTaken < FreeInterviewLimit,
		CanAccessPremiumContent: premium,
		InterviewsTaken:         acc.InterviewsTaken,
		Expired:                 !premium && acc.SubscriptionEnd != nil && !acc.SubscriptionEnd.After(now),
	}
	if !premium {
		remaining := FreeInterviewLimit - acc.InterviewsTaken
		if remaining < 0 {
			remaining = 0
		}
		ent.RemainingFree = &remaining
	}
	return ent
}

// Plan возвращает код тарифа.
func (e Entitlement) Plan() string {
	if e.IsPremium {
		return PlanPremium
	}
	return PlanFree
}

// RequireGenerate возвращает *DeniedError, если запускать интервью нельзя.
func (e Entitlement) RequireGenerate() error {
	if e.CanGenerate {
		return nil
	}
	if e.Expired {
		return &DeniedError{Reason: premiumExpiredReason}
	}
	return &DeniedError{Reason: fmt.Sprintf(freeTrialExhaustedFormat, e.InterviewsTaken, FreeInterviewLimit)}
}

// RequirePremiumContent возвращает *DeniedError для закрытых раундов.
func (e Entitlement) RequirePremiumContent() error {
	if e.CanAccessPremiumContent {
		return nil
	}
	return &DeniedError{Reason: PremiumContentDeniedReason}
}
