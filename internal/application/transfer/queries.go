package transfer

import (
	"context"
	"fmt"

	"github.com/jhoicas/lumberyard-api/internal/application/dto"
	"github.com/jhoicas/lumberyard-api/internal/domain"
	"github.com/jhoicas/lumberyard-api/internal/domain/entity"
	"github.com/jhoicas/lumberyard-api/internal/domain/repository"
)

// GetByID devuelve un traslado con sus ítems.
func (uc *UseCase) GetByID(ctx context.Context, id string) (*dto.TransferResponse, error) {
	t, err := uc.transferRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, fmt.Errorf("traslado %s: %w", id, domain.ErrNotFound)
	}
	return ToTransferResponse(t), nil
}

// List devuelve traslados filtrados por estado, bodega (origen o destino) y rango de fecha.
func (uc *UseCase) List(ctx context.Context, in dto.TransferListRequest) (*dto.TransferListResponse, error) {
	in.DefaultPage()
	filter := repository.TransferFilter{
		WarehouseID: in.WarehouseID,
		FromDate:    in.FromDate,
		ToDate:      in.ToDate,
		Limit:       in.Limit,
		Offset:      in.Offset,
	}
	if in.Status != "" {
		s := entity.TransferStatus(in.Status)
		if !s.Valid() {
			return nil, domain.NewValidationError("status", fmt.Sprintf("desconocido: %q", in.Status))
		}
		filter.Status = s
	}
	if in.FromDate != nil && in.ToDate != nil && in.ToDate.Before(*in.FromDate) {
		return nil, domain.NewValidationError("to_date", "no puede ser anterior a from_date")
	}
	list, err := uc.transferRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := &dto.TransferListResponse{
		Items: make([]dto.TransferResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: in.Limit, Offset: in.Offset},
	}
	for _, t := range list {
		out.Items = append(out.Items, *ToTransferResponse(t))
	}
	return out, nil
}

// PendingApprovals traslados PENDING cuya bodega de origen está asignada al actor.
func (uc *UseCase) PendingApprovals(ctx context.Context, actorID string) ([]dto.TransferResponse, error) {
	if actorID == "" {
		return nil, domain.ErrUnauthorized
	}
	ids, err := uc.assignmentRepo.WarehouseIDsForUser(ctx, actorID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.TransferResponse, 0)
	if len(ids) == 0 {
		return out, nil
	}
	list, err := uc.transferRepo.ListPendingBySource(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, t := range list {
		out = append(out, *ToTransferResponse(t))
	}
	return out, nil
}

// ToTransferResponse mapea el agregado al DTO.
func ToTransferResponse(t *entity.Transfer) *dto.TransferResponse {
	items := make([]dto.TransferItemResponse, 0, len(t.Items))
	for _, it := range t.Items {
		items = append(items, dto.TransferItemResponse{
			ID:             it.ID,
			MaterialTypeID: it.MaterialTypeID,
			Thickness:      it.Thickness,
			Quantity:       it.Quantity,
			WoodStatus:     string(it.WoodStatus),
			Remarks:        it.Remarks,
		})
	}
	return &dto.TransferResponse{
		ID:              t.ID,
		TransferNumber:  t.TransferNumber,
		FromWarehouseID: t.FromWarehouseID,
		ToWarehouseID:   t.ToWarehouseID,
		TransferDate:    t.TransferDate,
		Status:          string(t.Status),
		Notes:           t.Notes,
		Items:           items,
		CreatedByID:     t.CreatedByID,
		ApprovedByID:    t.ApprovedByID,
		ApprovedAt:      t.ApprovedAt,
		CompletedAt:     t.CompletedAt,
		CancelledByID:   t.CancelledByID,
		CancelledAt:     t.CancelledAt,
		CreatedAt:       t.CreatedAt,
		UpdatedAt:       t.UpdatedAt,
	}
}
