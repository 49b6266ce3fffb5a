package inventory

import (
	"context"
	"strings"
	"testing"
	"time"

	"udm-portal/internal/audit"
	"udm-portal/internal/httpx"
	"udm-portal/internal/models"
	"udm-portal/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func entryInput(lot string) EntryInput {
	return EntryInput{SupplyInput: supplyInput(lot)}
}

func uintPtr(n uint) *uint { return &n }

func newEntryService(t *testing.T) (*EntryService, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	return NewEntryService(db, audit.NewRecorder(db, testutil.Logger())), db
}

func TestCreateEntryDefaults(t *testing.T) {
	svc, db := newEntryService(t)
	alice := testutil.CreateUser(t, db, "alice")

	entry, err := svc.Create(context.Background(), principal(alice), entryInput("LOT-1"))
	require.NoError(t, err)
	assert.Equal(t, models.EntryNewSupply, entry.EntryType)
	assert.Equal(t, models.StatusAccepted, entry.Status)
	assert.Nil(t, entry.ProductID)

	resp := NewEntryResponse(entry)
	assert.Nil(t, resp.Product)
	require.NotNil(t, resp.CreatedBy)
	assert.Equal(t, "alice@example.com", resp.CreatedBy.Email)
}

func TestEntryLotNumberIsNotUnique(t *testing.T) {
	svc, db := newEntryService(t)
	alice := testutil.CreateUser(t, db, "alice")
	ctx := context.Background()

	_, err := svc.Create(ctx, principal(alice), entryInput("LOT-1"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, principal(alice), entryInput("LOT-1"))
	require.NoError(t, err)
}

func TestCreateEntryValidation(t *testing.T) {
	svc, db := newEntryService(t)
	alice := testutil.CreateUser(t, db, "alice")
	ctx := context.Background()

	in := entryInput("LOT-1")
	in.EntryType = "Scrapped"
	_, err := svc.Create(ctx, principal(alice), in)
	require.Error(t, err)
	assert.Equal(t, "entry_type must be one of: New_Supply, Replacement, Maintenance, Inspection", err.Error())

	in = entryInput("LOT-1")
	in.Notes = strings.Repeat("n", 501)
	_, err = svc.Create(ctx, principal(alice), in)
	require.Error(t, err)
	assert.Equal(t, "notes must be at most 500 characters", err.Error())
}

func TestEntryProductMustBeOwned(t *testing.T) {
	svc, db := newEntryService(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	alicesProduct := testutil.CreateProduct(t, db, alice.ID, "LOT-A")
	bobsProduct := testutil.CreateProduct(t, db, bob.ID, "LOT-B")

	in := entryInput("LOT-A")
	in.ProductID = &alicesProduct.ID
	_, err := svc.Create(ctx, principal(bob), in)
	require.Error(t, err)
	assert.True(t, httpx.IsKind(err, httpx.KindNotFound))
	assert.Equal(t, msgProductNotFound, err.Error())

	in.ProductID = uintPtr(9999)
	_, err = svc.Create(ctx, principal(bob), in)
	assert.True(t, httpx.IsKind(err, httpx.KindNotFound))

	in.ProductID = &bobsProduct.ID
	entry, err := svc.Create(ctx, principal(bob), in)
	require.NoError(t, err)
	resp := NewEntryResponse(entry)
	require.NotNil(t, resp.Product)
	assert.Equal(t, "LOT-B", resp.Product.LotNumber)

	// relinking to someone else's product is rejected and leaves the link intact
	_, err = svc.Update(ctx, principal(bob), entry.ID, EntryUpdate{ProductID: &alicesProduct.ID})
	assert.True(t, httpx.IsKind(err, httpx.KindNotFound))
	unchanged, err := svc.Get(ctx, principal(bob), entry.ID)
	require.NoError(t, err)
	require.NotNil(t, unchanged.ProductID)
	assert.Equal(t, bobsProduct.ID, *unchanged.ProductID)

	unlinked, err := svc.Update(ctx, principal(bob), entry.ID, EntryUpdate{ProductID: uintPtr(0)})
	require.NoError(t, err)
	assert.Nil(t, unlinked.ProductID)
}

func TestUpdateEntryPartial(t *testing.T) {
	svc, db := newEntryService(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	entry, err := svc.Create(ctx, principal(alice), entryInput("LOT-1"))
	require.NoError(t, err)

	_, err = svc.Update(ctx, principal(bob), entry.ID, EntryUpdate{Notes: strPtr("mine now")})
	assert.True(t, httpx.IsKind(err, httpx.KindNotFound))

	maintenance := string(models.EntryMaintenance)
	updated, err := svc.Update(ctx, principal(alice), entry.ID, EntryUpdate{
		EntryType: &maintenance,
		Notes:     strPtr("  bolts retightened "),
		SupplyUpdate: SupplyUpdate{
			InspectionDate: strPtr("2025-06-30"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, models.EntryMaintenance, updated.EntryType)
	assert.Equal(t, "bolts retightened", updated.Notes)
	assert.Equal(t, time.June, updated.InspectionDate.Month())
	assert.Equal(t, "Northern Forge", updated.VendorName)
}

func TestListEntriesFiltersAndScoping(t *testing.T) {
	svc, db := newEntryService(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	product := testutil.CreateProduct(t, db, alice.ID, "LOT-A")

	linked := entryInput("LOT-A")
	linked.ProductID = &product.ID
	linked.EntryType = string(models.EntryInspection)
	_, err := svc.Create(ctx, principal(alice), linked)
	require.NoError(t, err)
	_, err = svc.Create(ctx, principal(alice), entryInput("LOT-X"))
	require.NoError(t, err)
	_, err = svc.Create(ctx, principal(bob), entryInput("LOT-A"))
	require.NoError(t, err)

	page := httpx.Page{Page: 1, Limit: 10}
	entries, total, err := svc.List(ctx, principal(alice), EntryFilter{Page: page})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, entries, 2)

	_, total, err = svc.List(ctx, principal(alice), EntryFilter{EntryType: "Inspection", Page: page})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	_, total, err = svc.List(ctx, principal(alice), EntryFilter{ProductID: product.ID, Page: page})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	entries, total, err = svc.List(ctx, principal(bob), EntryFilter{Search: "lot-a", Page: page})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, bob.ID, entries[0].CreatedBy)

	_, _, _, err = svc.ListByProduct(ctx, principal(bob), product.ID, page)
	assert.True(t, httpx.IsKind(err, httpx.KindNotFound))

	owner, byProduct, total, err := svc.ListByProduct(ctx, principal(alice), product.ID, page)
	require.NoError(t, err)
	assert.Equal(t, "LOT-A", owner.LotNumber)
	assert.Equal(t, int64(1), total)
	require.Len(t, byProduct, 1)
	assert.Equal(t, models.EntryInspection, byProduct[0].EntryType)
}

func TestDeleteEntry(t *testing.T) {
	svc, db := newEntryService(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	entry, err := svc.Create(ctx, principal(alice), entryInput("LOT-1"))
	require.NoError(t, err)

	assert.True(t, httpx.IsKind(svc.Delete(ctx, principal(bob), entry.ID), httpx.KindNotFound))
	require.NoError(t, svc.Delete(ctx, principal(alice), entry.ID))
	_, err = svc.Get(ctx, principal(alice), entry.ID)
	assert.True(t, httpx.IsKind(err, httpx.KindNotFound))

	var actions []models.AuditAction
	require.NoError(t, db.Model(&models.AuditLog{}).Where("entity_type = ?", models.EntityEntry).
		Order("id").Pluck("action", &actions).Error)
	assert.Equal(t, []models.AuditAction{models.AuditActionCreate, models.AuditActionDelete}, actions)
}
