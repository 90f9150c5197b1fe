package approval_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/lumberyard-api/internal/domain/approval"
	"github.com/jhoicas/lumberyard-api/internal/domain/entity"
)

func wh(tracked, needsApproval bool) *entity.Warehouse {
	return &entity.Warehouse{ID: "w", StockControlEnabled: tracked, RequiresApproval: needsApproval}
}

func TestDecideCreate(t *testing.T) {
	tests := []struct {
		name     string
		from, to *entity.Warehouse
		want     approval.CreateDecision
	}{
		{
			name: "origen con aprobación queda pendiente y verifica stock",
			from: wh(true, true), to: wh(true, false),
			want: approval.CreateDecision{Status: entity.TransferStatusPending, CheckStock: true},
		},
		{
			name: "origen con aprobación sin control no verifica stock",
			from: wh(false, true), to: wh(true, false),
			want: approval.CreateDecision{Status: entity.TransferStatusPending},
		},
		{
			name: "origen con control se despacha de inmediato",
			from: wh(true, false), to: wh(true, false),
			want: approval.CreateDecision{
				Status: entity.TransferStatusInTransit, CheckStock: true, DispatchNow: true,
				Dispatch: approval.Dispatch{BookSource: true, BookDestination: true},
			},
		},
		{
			name: "destino sin control no registra tránsito entrante",
			from: wh(true, false), to: wh(false, false),
			want: approval.CreateDecision{
				Status: entity.TransferStatusInTransit, CheckStock: true, DispatchNow: true,
				Dispatch: approval.Dispatch{BookSource: true},
			},
		},
		{
			name: "origen sin control queda aprobado sin efecto",
			from: wh(false, false), to: wh(true, false),
			want: approval.CreateDecision{Status: entity.TransferStatusApproved},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, approval.DecideCreate(tt.from, tt.to))
		})
	}
}

func TestDecideDispatch(t *testing.T) {
	assert.Equal(t, approval.Dispatch{BookSource: true, BookDestination: true}, approval.DecideDispatch(wh(true, true), wh(true, true)))
	assert.Equal(t, approval.Dispatch{BookDestination: true}, approval.DecideDispatch(wh(false, true), wh(true, false)))
	assert.Equal(t, approval.Dispatch{}, approval.DecideDispatch(nil, nil))
}

func TestBanderasConBodegaNil(t *testing.T) {
	assert.False(t, approval.TracksStock(nil))
	assert.False(t, approval.NeedsApproval(nil))
}
