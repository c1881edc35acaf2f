// Package pg persists entity-store snapshots in PostgreSQL using the legacy
// relational schema. The store itself stays in memory; this layer loads a
// snapshot at startup and writes one back after mutations.
package pg

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pharmalytics/pharmalytics/internal/platform/db"
	"github.com/pharmalytics/pharmalytics/internal/shared"
	"github.com/pharmalytics/pharmalytics/internal/store"
)

//go:embed schema.sql
var schemaSQL string

// Repository persists snapshots in PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// EnsureSchema creates the legacy tables when missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("pg: ensure schema: %w", mapError(err))
	}
	return nil
}

// Load reads the full database contents into a snapshot.
func (r *Repository) Load(ctx context.Context) (store.Snapshot, error) {
	var snap store.Snapshot

	err := r.withTx(ctx, func(tx pgx.Tx) error {
		var err error
		if snap.Regions, err = loadRegions(ctx, tx); err != nil {
			return err
		}
		if snap.Representatives, err = loadRepresentatives(ctx, tx); err != nil {
			return err
		}
		if snap.Customers, err = loadCustomers(ctx, tx); err != nil {
			return err
		}
		if snap.Products, err = loadProducts(ctx, tx); err != nil {
			return err
		}
		if snap.Inventory, err = loadInventory(ctx, tx); err != nil {
			return err
		}
		if snap.Shipments, err = loadShipments(ctx, tx); err != nil {
			return err
		}
		if snap.Orders, err = loadOrders(ctx, tx); err != nil {
			return err
		}
		if snap.Interactions, err = loadInteractions(ctx, tx); err != nil {
			return err
		}
		if snap.OrderPlaced, err = loadOrderPlaced(ctx, tx); err != nil {
			return err
		}
		if snap.Involvements, err = loadInvolvements(ctx, tx); err != nil {
			return err
		}
		if snap.Shipping, err = loadShipping(ctx, tx); err != nil {
			return err
		}
		snap.Allocations, err = loadAllocations(ctx, tx)
		return err
	})
	if err != nil {
		return store.Snapshot{}, fmt.Errorf("pg: load snapshot: %w", mapError(err))
	}
	return snap, nil
}

// Save replaces the database contents with the snapshot. The write happens
// inside one repeatable-read transaction so readers never observe a partial
// replacement.
func (r *Repository) Save(ctx context.Context, snap store.Snapshot) error {
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `TRUNCATE Involvement, Order_Placed, Allocation, Shipping, Interaction, Orders, Shipment, Inventory, Product, Pharmacy, Hospital, Doctors, Customer, Sales_Representative, Region`); err != nil {
			return err
		}
		if err := saveRegions(ctx, tx, snap.Regions); err != nil {
			return err
		}
		if err := saveRepresentatives(ctx, tx, snap.Representatives); err != nil {
			return err
		}
		if err := saveCustomers(ctx, tx, snap.Customers); err != nil {
			return err
		}
		if err := saveProducts(ctx, tx, snap.Products); err != nil {
			return err
		}
		if err := saveInventory(ctx, tx, snap.Inventory); err != nil {
			return err
		}
		if err := saveShipments(ctx, tx, snap.Shipments); err != nil {
			return err
		}
		if err := saveOrders(ctx, tx, snap.Orders); err != nil {
			return err
		}
		if err := saveInteractions(ctx, tx, snap.Interactions); err != nil {
			return err
		}
		if err := saveShipping(ctx, tx, snap.Shipping); err != nil {
			return err
		}
		if err := saveAllocations(ctx, tx, snap.Allocations); err != nil {
			return err
		}
		if err := saveOrderPlaced(ctx, tx, snap.OrderPlaced); err != nil {
			return err
		}
		return saveInvolvements(ctx, tx, snap.Involvements)
	})
	if err != nil {
		return fmt.Errorf("pg: save snapshot: %w", mapError(err))
	}
	return nil
}

func (r *Repository) withTx(ctx context.Context, fn func(pgx.Tx) error) error {
	if r == nil || r.pool == nil {
		return errors.New("pg: repository not initialised")
	}
	return db.WithTx(ctx, r.pool, fn)
}

// mapError translates integrity-class SQLSTATEs onto the shared sentinels.
func mapError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, "23") {
		return fmt.Errorf("%w: %s", shared.ErrConstraint, pgErr.Message)
	}
	return err
}
