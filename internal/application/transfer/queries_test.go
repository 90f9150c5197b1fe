package transfer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/lumberyard-api/internal/application/dto"
	"github.com/jhoicas/lumberyard-api/internal/domain"
	"github.com/jhoicas/lumberyard-api/internal/domain/entity"
)

func TestGetByID(t *testing.T) {
	f := newFixture(t)
	f.seed(whAserradero, entity.StockRecord{Dried: 10})
	created := f.create(t, whAserradero, whDeposito, item(entity.WoodStatusDried, 2))

	got, err := f.uc.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.TransferNumber, got.TransferNumber)
	require.Len(t, got.Items, 1)
	assert.Equal(t, int64(2), got.Items[0].Quantity)

	_, err = f.uc.GetByID(context.Background(), "no-existe")
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestPendingApprovals_SoloBodegasAsignadas(t *testing.T) {
	f := newFixture(t)
	f.seed(whPatio, entity.StockRecord{Dried: 100})
	f.store.AssignWarehouse(actorAna, whPatio)

	mine := f.create(t, whPatio, whDeposito, item(entity.WoodStatusDried, 1))
	f.create(t, whCliente, whDeposito, item(entity.WoodStatusDried, 1)) // otra bodega
	done := f.create(t, whPatio, whDeposito, item(entity.WoodStatusDried, 1))
	_, err := f.uc.Approve(context.Background(), actorAna, done.ID)
	require.NoError(t, err)

	list, err := f.uc.PendingApprovals(context.Background(), actorAna)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, mine.ID, list[0].ID)

	none, err := f.uc.PendingApprovals(context.Background(), "user-sin-bodegas")
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	_, err = f.uc.PendingApprovals(context.Background(), "")
	assert.True(t, errors.Is(err, domain.ErrUnauthorized))
}

func TestList_Filtros(t *testing.T) {
	f := newFixture(t)
	f.seed(whAserradero, entity.StockRecord{Dried: 100})
	f.seed(whPatio, entity.StockRecord{Dried: 100})
	ctx := context.Background()

	first := f.create(t, whAserradero, whDeposito, item(entity.WoodStatusDried, 1))
	f.clock.Set(baseTime.Add(time.Hour))
	f.create(t, whPatio, whDeposito, item(entity.WoodStatusDried, 1))
	f.clock.Set(baseTime.AddDate(0, 0, 2))
	last := f.create(t, whProveedor, whAserradero, item(entity.WoodStatusDried, 1))

	all, err := f.uc.List(ctx, dto.TransferListRequest{})
	require.NoError(t, err)
	require.Len(t, all.Items, 3)
	assert.Equal(t, last.ID, all.Items[0].ID, "más recientes primero")
	assert.Equal(t, 20, all.Page.Limit)

	pending, err := f.uc.List(ctx, dto.TransferListRequest{Status: string(entity.TransferStatusPending)})
	require.NoError(t, err)
	require.Len(t, pending.Items, 1)
	assert.Equal(t, whPatio, pending.Items[0].FromWarehouseID)

	// warehouse_id coincide con origen o destino.
	byWarehouse, err := f.uc.List(ctx, dto.TransferListRequest{WarehouseID: whAserradero})
	require.NoError(t, err)
	assert.Len(t, byWarehouse.Items, 2)

	from := baseTime.AddDate(0, 0, 1)
	byDate, err := f.uc.List(ctx, dto.TransferListRequest{FromDate: &from})
	require.NoError(t, err)
	require.Len(t, byDate.Items, 1)
	assert.Equal(t, last.ID, byDate.Items[0].ID)

	to := baseTime.Add(30 * time.Minute)
	untilFirst, err := f.uc.List(ctx, dto.TransferListRequest{ToDate: &to})
	require.NoError(t, err)
	require.Len(t, untilFirst.Items, 1)
	assert.Equal(t, first.ID, untilFirst.Items[0].ID)

	paged, err := f.uc.List(ctx, dto.TransferListRequest{PageRequest: dto.PageRequest{Limit: 2, Offset: 2}})
	require.NoError(t, err)
	require.Len(t, paged.Items, 1)
	assert.Equal(t, first.ID, paged.Items[0].ID)
}

func TestList_Validacion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.List(ctx, dto.TransferListRequest{Status: "LOST"})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	from, to := baseTime, baseTime.Add(-time.Hour)
	_, err = f.uc.List(ctx, dto.TransferListRequest{FromDate: &from, ToDate: &to})
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))

	out, err := f.uc.List(ctx, dto.TransferListRequest{PageRequest: dto.PageRequest{Limit: 500}})
	require.NoError(t, err)
	assert.Equal(t, 100, out.Page.Limit)
}
