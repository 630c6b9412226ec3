package inmemory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	analyticsdomain "opsboard/internal/domain/analytics"
	seminarsdomain "opsboard/internal/domain/seminars"
	transactionsdomain "opsboard/internal/domain/transactions"
	userdomain "opsboard/internal/domain/user"
)

func TestTransactionsPagingAndOrder(t *testing.T) {
	store := NewStore()
	repo := store.Transactions()
	ctx := context.Background()

	for day := 1; day <= 5; day++ {
		require.NoError(t, repo.CreateTransaction(ctx, &transactionsdomain.Transaction{
			ID:        string(rune('a' + day)),
			UnitID:    "unit-1",
			Date:      time.Date(2026, 4, day, 0, 0, 0, 0, time.UTC),
			Type:      transactionsdomain.TypeExpense,
			Amount:    decimal.NewFromInt(int64(day)),
			AmountAED: decimal.NewFromInt(int64(day)),
		}))
	}

	items, total, err := repo.ListTransactions(ctx, "unit-1", transactionsdomain.ListFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, items, 2)
	assert.Equal(t, 4, items[0].Date.Day())
	assert.Equal(t, 3, items[1].Date.Day())

	items, _, err = repo.ListTransactions(ctx, "unit-1", transactionsdomain.ListFilter{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestAnalyticsProjectionUsesNormalizedAmount(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	require.NoError(t, store.Seminars().CreateSeminar(ctx, &seminarsdomain.Seminar{ID: "sem-1", UnitID: "unit-1", Name: "Bootcamp"}))
	require.NoError(t, store.Transactions().CreateTransaction(ctx, &transactionsdomain.Transaction{
		ID:        "t-1",
		UnitID:    "unit-1",
		Date:      time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC),
		Type:      transactionsdomain.TypeIncome,
		Amount:    decimal.NewFromInt(10),
		Currency:  "USD",
		AmountAED: decimal.RequireFromString("36.73"),
		Metadata:  map[string]string{transactionsdomain.MetadataSeminarKey: "sem-1"},
	}))

	txs, err := store.Analytics().ListTransactions(ctx, "unit-1")
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, analyticsdomain.TypeIncome, txs[0].Type)
	assert.True(t, txs[0].Amount.Equal(decimal.RequireFromString("36.73")))
	assert.Equal(t, "sem-1", txs[0].SeminarID())

	names, err := store.Analytics().ListSeminarNames(ctx, "unit-1")
	require.NoError(t, err)
	assert.Equal(t, []analyticsdomain.NameRef{{ID: "sem-1", Name: "Bootcamp"}}, names)
}

func TestTransactionCallbackCanNestCalls(t *testing.T) {
	store := NewStore()
	repo := store.Seminars()
	ctx := context.Background()
	boom := errors.New("boom")

	err := repo.Transaction(ctx, func(tx seminarsdomain.Repository) error {
		exists, err := tx.NameExists(ctx, "unit-1", "Bootcamp", "")
		if err != nil {
			return err
		}
		assert.False(t, exists)
		if err := tx.CreateSeminar(ctx, &seminarsdomain.Seminar{ID: "sem-1", UnitID: "unit-1", Name: "Bootcamp"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	items, err := repo.ListSeminars(ctx, "unit-1")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestProfilesUpsertMergesFields(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Profiles()

	email := "ana@example.com"
	require.NoError(t, repo.UpsertProfile(ctx, &userdomain.Profile{UserID: "u-1", Email: &email}))
	name := "Ana"
	require.NoError(t, repo.UpsertProfile(ctx, &userdomain.Profile{UserID: "u-1", Name: &name}))

	profiles, err := repo.ListProfiles(ctx, []string{"u-1", "missing"})
	require.NoError(t, err)
	require.Len(t, profiles, 1)
	assert.Equal(t, "ana@example.com", *profiles[0].Email)
	assert.Equal(t, "Ana", *profiles[0].Name)
}
