package tenant

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

type seedBranch struct {
	Code, Name, Address, Phone string
}

type seedCategory struct {
	Code, Name, Description string
}

type seedProduct struct {
	Code, Name, CategoryCode string
	PurchasePriceCents       int64
	SalePriceCents           int64
	MinimumStock             int64
	StockByBranch            map[string]int64
}

type seedEmployee struct {
	Code, Name, Role, BranchCode, Phone, Email string
	SalaryCents                                int64
}

type seedSupplier struct {
	Code, Name, Contact, Phone, Email, Address string
}

// The starter catalog every new store opens with.
var (
	seedBranches = []seedBranch{
		{"SUC001", "Sucursal Central", "Av. Principal #100", "555-0001"},
		{"SUC002", "Sucursal Norte", "Blvd. Norte #200", "555-0002"},
	}

	seedCategories = []seedCategory{
		{"CAT001", "Bebidas", "Refrescos, jugos, agua"},
		{"CAT002", "Lacteos", "Leche, queso, yogurt"},
		{"CAT003", "Abarrotes", "Arroz, frijol, aceite"},
		{"CAT004", "Snacks", "Papas, galletas, dulces"},
		{"CAT005", "Limpieza", "Jabon, detergente, cloro"},
	}

	seedProducts = []seedProduct{
		{"PROD001", "Coca-Cola 600ml", "CAT001", 1000, 1800, 20, map[string]int64{"SUC001": 100, "SUC002": 80}},
		{"PROD002", "Leche Entera 1L", "CAT002", 1800, 2800, 15, map[string]int64{"SUC001": 50, "SUC002": 40}},
		{"PROD003", "Arroz 1kg", "CAT003", 2000, 3500, 10, map[string]int64{"SUC001": 60, "SUC002": 45}},
		{"PROD004", "Papas Sabritas", "CAT004", 1200, 2200, 25, map[string]int64{"SUC001": 80, "SUC002": 60}},
		{"PROD005", "Jabon Zote", "CAT005", 800, 1500, 10, map[string]int64{"SUC001": 40, "SUC002": 30}},
		{"PROD006", "Frijol Negro 1kg", "CAT003", 2500, 4000, 10, map[string]int64{"SUC001": 35, "SUC002": 28}},
		{"PROD007", "Agua Natural 1L", "CAT001", 500, 1200, 30, map[string]int64{"SUC001": 150, "SUC002": 120}},
		{"PROD008", "Galletas Marias", "CAT004", 1500, 2500, 15, map[string]int64{"SUC001": 45, "SUC002": 35}},
	}

	seedEmployees = []seedEmployee{
		{"EMP001", "Juan Perez", "Cajero", "SUC001", "555-1001", "juan.perez@tienda.local", 800000},
		{"EMP002", "Maria Garcia", "Gerente", "SUC001", "555-1002", "maria.garcia@tienda.local", 1500000},
		{"EMP003", "Carlos Lopez", "Cajero", "SUC002", "555-1003", "carlos.lopez@tienda.local", 800000},
	}

	seedSuppliers = []seedSupplier{
		{"PROV001", "Distribuidora del Norte", "Luis Ramirez", "555-2001", "norte@dist.com", "Parque Industrial Nte. 12"},
		{"PROV002", "Abarrotes Mayoreo SA", "Ana Torres", "555-2002", "mayoreo@abr.com", "Central de Abastos Bodega 7"},
	}
)

// seed inserts the starter data set, one collection at a time, only
// when the target table is still empty. Existing data is never touched.
func (p *Provisioner) seed(ctx context.Context, key string) error {
	t := func(name string) string { return pgx.Identifier{key, name}.Sanitize() }

	empty, err := p.tableEmpty(ctx, t("branches"))
	if err != nil {
		return err
	}
	if empty {
		for _, b := range seedBranches {
			if _, err := p.db.Exec(ctx, fmt.Sprintf(
				`INSERT INTO %s (code, name, address, phone, active) VALUES ($1, $2, $3, $4, TRUE)`, t("branches")),
				b.Code, b.Name, b.Address, b.Phone); err != nil {
				return fmt.Errorf("tenant: seed branches: %w", err)
			}
		}
	}

	empty, err = p.tableEmpty(ctx, t("categories"))
	if err != nil {
		return err
	}
	if empty {
		for _, c := range seedCategories {
			if _, err := p.db.Exec(ctx, fmt.Sprintf(
				`INSERT INTO %s (code, name, description) VALUES ($1, $2, $3)`, t("categories")),
				c.Code, c.Name, c.Description); err != nil {
				return fmt.Errorf("tenant: seed categories: %w", err)
			}
		}
	}

	empty, err = p.tableEmpty(ctx, t("products"))
	if err != nil {
		return err
	}
	if empty {
		for _, prod := range seedProducts {
			if _, err := p.db.Exec(ctx, fmt.Sprintf(
				`INSERT INTO %s (code, name, category_code, purchase_price_cents, sale_price_cents, minimum_stock, active)
				 VALUES ($1, $2, $3, $4, $5, $6, TRUE)`, t("products")),
				prod.Code, prod.Name, prod.CategoryCode, prod.PurchasePriceCents, prod.SalePriceCents, prod.MinimumStock); err != nil {
				return fmt.Errorf("tenant: seed products: %w", err)
			}
			for branch, qty := range prod.StockByBranch {
				if _, err := p.db.Exec(ctx, fmt.Sprintf(
					`INSERT INTO %s (product_code, branch_code, quantity) VALUES ($1, $2, $3)
					 ON CONFLICT (product_code, branch_code) DO NOTHING`, t("stock_levels")),
					prod.Code, branch, qty); err != nil {
					return fmt.Errorf("tenant: seed stock levels: %w", err)
				}
			}
		}
	}

	empty, err = p.tableEmpty(ctx, t("employees"))
	if err != nil {
		return err
	}
	if empty {
		for _, e := range seedEmployees {
			if _, err := p.db.Exec(ctx, fmt.Sprintf(
				`INSERT INTO %s (code, name, role, branch_code, phone, email, salary_cents, active)
				 VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)`, t("employees")),
				e.Code, e.Name, e.Role, e.BranchCode, e.Phone, e.Email, e.SalaryCents); err != nil {
				return fmt.Errorf("tenant: seed employees: %w", err)
			}
		}
	}

	empty, err = p.tableEmpty(ctx, t("suppliers"))
	if err != nil {
		return err
	}
	if empty {
		for _, s := range seedSuppliers {
			if _, err := p.db.Exec(ctx, fmt.Sprintf(
				`INSERT INTO %s (code, name, contact, phone, email, address, active)
				 VALUES ($1, $2, $3, $4, $5, $6, TRUE)`, t("suppliers")),
				s.Code, s.Name, s.Contact, s.Phone, s.Email, s.Address); err != nil {
				return fmt.Errorf("tenant: seed suppliers: %w", err)
			}
		}
	}

	return nil
}

func (p *Provisioner) tableEmpty(ctx context.Context, table string) (bool, error) {
	var count int
	if err := p.db.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table)).Scan(&count); err != nil {
		return false, fmt.Errorf("tenant: count %s: %w", table, err)
	}
	return count == 0, nil
}
