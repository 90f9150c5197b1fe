package memory

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/jhoicas/lumberyard-api/internal/domain/entity"
)

// Seed contenido inicial del almacén en memoria: el directorio de bodegas (que el núcleo no
// administra), las asignaciones usuario-bodega y saldos de apertura.
type Seed struct {
	Warehouses  []SeedWarehouse  `mapstructure:"warehouses"`
	Assignments []SeedAssignment `mapstructure:"assignments"`
	Stock       []SeedStock      `mapstructure:"stock"`
}

type SeedWarehouse struct {
	ID                  string `mapstructure:"id"`
	Code                string `mapstructure:"code"`
	Name                string `mapstructure:"name"`
	StockControlEnabled bool   `mapstructure:"stock_control_enabled"`
	RequiresApproval    bool   `mapstructure:"requires_approval"`
	Status              string `mapstructure:"status"`
}

type SeedAssignment struct {
	UserID      string `mapstructure:"user_id"`
	WarehouseID string `mapstructure:"warehouse_id"`
}

type SeedStock struct {
	WarehouseID       string `mapstructure:"warehouse_id"`
	MaterialTypeID    string `mapstructure:"material_type_id"`
	Thickness         string `mapstructure:"thickness"`
	NotDried          int64  `mapstructure:"not_dried"`
	UnderDrying       int64  `mapstructure:"under_drying"`
	Dried             int64  `mapstructure:"dried"`
	Damaged           int64  `mapstructure:"damaged"`
	MinimumStockLevel *int64 `mapstructure:"minimum_stock_level"`
}

// LoadSeed lee la semilla desde un archivo YAML, JSON o TOML (según la extensión).
func LoadSeed(path string) (*Seed, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("leer semilla %s: %w", path, err)
	}
	var seed Seed
	if err := v.Unmarshal(&seed); err != nil {
		return nil, fmt.Errorf("decodificar semilla %s: %w", path, err)
	}
	if err := seed.validate(); err != nil {
		return nil, fmt.Errorf("semilla %s: %w", path, err)
	}
	return &seed, nil
}

func (s *Seed) validate() error {
	var errs []error
	known := make(map[string]bool, len(s.Warehouses))
	codes := make(map[string]bool, len(s.Warehouses))
	for i, w := range s.Warehouses {
		switch {
		case strings.TrimSpace(w.ID) == "":
			errs = append(errs, fmt.Errorf("warehouses[%d]: id requerido", i))
		case known[w.ID]:
			errs = append(errs, fmt.Errorf("warehouses[%d]: id %q repetido", i, w.ID))
		case w.Code != "" && codes[w.Code]:
			errs = append(errs, fmt.Errorf("warehouses[%d]: code %q repetido", i, w.Code))
		case w.Status != "" && w.Status != entity.WarehouseStatusActive && w.Status != entity.WarehouseStatusArchived:
			errs = append(errs, fmt.Errorf("warehouses[%d]: status %q inválido", i, w.Status))
		}
		known[w.ID] = true
		if w.Code != "" {
			codes[w.Code] = true
		}
	}
	for i, a := range s.Assignments {
		if a.UserID == "" || !known[a.WarehouseID] {
			errs = append(errs, fmt.Errorf("assignments[%d]: usuario y bodega conocida requeridos", i))
		}
	}
	for i, r := range s.Stock {
		if !known[r.WarehouseID] || r.MaterialTypeID == "" || r.Thickness == "" {
			errs = append(errs, fmt.Errorf("stock[%d]: bodega conocida, material y espesor requeridos", i))
			continue
		}
		if r.NotDried < 0 || r.UnderDrying < 0 || r.Dried < 0 || r.Damaged < 0 ||
			(r.MinimumStockLevel != nil && *r.MinimumStockLevel < 0) {
			errs = append(errs, fmt.Errorf("stock[%d]: cantidades negativas", i))
		}
	}
	return errors.Join(errs...)
}

// Apply carga la semilla en el almacén. Los registros de stock no pasan por el diario de ajustes:
// son el estado de partida.
func (s *Seed) Apply(store *Store) {
	for _, w := range s.Warehouses {
		store.PutWarehouse(entity.Warehouse{
			ID:                  w.ID,
			Code:                w.Code,
			Name:                w.Name,
			StockControlEnabled: w.StockControlEnabled,
			RequiresApproval:    w.RequiresApproval,
			Status:              w.Status,
		})
	}
	for _, a := range s.Assignments {
		store.AssignWarehouse(a.UserID, a.WarehouseID)
	}
	for _, r := range s.Stock {
		store.PutStock(entity.StockRecord{
			WarehouseID:       r.WarehouseID,
			MaterialTypeID:    r.MaterialTypeID,
			Thickness:         r.Thickness,
			NotDried:          r.NotDried,
			UnderDrying:       r.UnderDrying,
			Dried:             r.Dried,
			Damaged:           r.Damaged,
			MinimumStockLevel: r.MinimumStockLevel,
		})
	}
}
