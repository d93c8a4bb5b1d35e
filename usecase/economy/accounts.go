package economy

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/fastygo/shopbot/domain"
)

// GetAccount returns the account of userID, creating it on first access.
func (uc *UseCase) GetAccount(ctx context.Context, userID string) (*domain.Account, error) {
	return uc.accounts.GetOrCreate(ctx, userID)
}

// FindAccount returns the account of userID without creating it.
func (uc *UseCase) FindAccount(userID string) (*domain.Account, error) {
	account, ok := uc.accounts.Get(userID)
	if !ok {
		return nil, domain.ErrAccountNotFound
	}
	return account, nil
}

// Give credits amount of currencyID to userID and returns the new balance.
func (uc *UseCase) Give(ctx context.Context, actorID, userID, currencyID string, amount decimal.Decimal) (decimal.Decimal, error) {
	cur, err := uc.checkTransfer(currencyID, amount)
	if err != nil {
		return decimal.Zero, err
	}
	balance, err := uc.accounts.AddBalance(ctx, userID, cur, amount)
	if err != nil {
		return decimal.Zero, err
	}
	uc.record(ctx, domain.AuditBalance, actorID, "<@%s> gave %s %s to <@%s>",
		actorID, domain.FormatAmount(domain.RoundAmount(amount)), cur.Label(), userID)
	return balance, nil
}

// Take debits amount of currencyID from userID, flooring the balance at zero.
func (uc *UseCase) Take(ctx context.Context, actorID, userID, currencyID string, amount decimal.Decimal) (decimal.Decimal, error) {
	cur, err := uc.checkTransfer(currencyID, amount)
	if err != nil {
		return decimal.Zero, err
	}
	balance, err := uc.accounts.TakeBalance(ctx, userID, cur, amount)
	if err != nil {
		return decimal.Zero, err
	}
	uc.record(ctx, domain.AuditBalance, actorID, "<@%s> took %s %s from <@%s>",
		actorID, domain.FormatAmount(domain.RoundAmount(amount)), cur.Label(), userID)
	return balance, nil
}

// Empty clears every balance and item of userID.
func (uc *UseCase) Empty(ctx context.Context, actorID, userID string) error {
	if _, err := uc.accounts.GetOrCreate(ctx, userID); err != nil {
		return err
	}
	if err := uc.accounts.Empty(ctx, userID); err != nil {
		return err
	}
	uc.record(ctx, domain.AuditBalance, actorID, "<@%s> emptied the account of <@%s>", actorID, userID)
	return nil
}

func (uc *UseCase) checkTransfer(currencyID string, amount decimal.Decimal) (*domain.Currency, error) {
	if !domain.RoundAmount(amount).IsPositive() {
		return nil, domain.Invalidf("the amount must be greater than zero")
	}
	return uc.currencies.Get(currencyID)
}
