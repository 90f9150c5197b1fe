package repository

import (
	"context"

	"github.com/jhoicas/lumberyard-api/internal/domain/entity"
)

// WarehouseRepository puerto de lectura del directorio de bodegas. El alta y edición
// pertenecen a otro módulo; el motor de traslados solo consulta las banderas de política.
type WarehouseRepository interface {
	// GetByID devuelve nil, nil si la bodega no existe.
	GetByID(ctx context.Context, id string) (*entity.Warehouse, error)
}

// AssignmentRepository puerto al colaborador de identidad: bodegas asignadas a un usuario.
type AssignmentRepository interface {
	WarehouseIDsForUser(ctx context.Context, userID string) ([]string, error)
}
