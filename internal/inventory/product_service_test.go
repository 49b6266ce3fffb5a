package inventory

import (
	"context"
	"testing"

	"udm-portal/internal/audit"
	"udm-portal/internal/auth"
	"udm-portal/internal/httpx"
	"udm-portal/internal/models"
	"udm-portal/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func principal(u models.User) auth.Principal {
	return auth.Principal{UserID: u.ID, Username: u.Username, Email: u.Email, Role: u.Role}
}

func supplyInput(lot string) SupplyInput {
	return SupplyInput{
		LotNumber:            lot,
		ItemType:             "Elastic Rail Clip",
		VendorName:           "Northern Forge",
		VendorID:             "NF-7",
		DateOfSupply:         "2025-04-02",
		WarrantyPeriodMonths: 24,
		QuantitySupplied:     50,
		InspectionDate:       "2025-04-05T10:00:00Z",
		InspectedBy:          "R. Iyer",
	}
}

func strPtr(s string) *string { return &s }

func newProductService(t *testing.T) (*ProductService, *gorm.DB) {
	t.Helper()
	db := testutil.NewDB(t)
	return NewProductService(db, audit.NewRecorder(db, testutil.Logger())), db
}

func TestCreateProductDefaultsAndTrims(t *testing.T) {
	svc, db := newProductService(t)
	alice := testutil.CreateUser(t, db, "alice")

	in := supplyInput("  LOT-1  ")
	in.Image = strPtr("   ")
	product, err := svc.Create(context.Background(), principal(alice), in)
	require.NoError(t, err)

	assert.Equal(t, "LOT-1", product.LotNumber)
	assert.Equal(t, models.StatusAccepted, product.Status)
	assert.Nil(t, product.Image)
	assert.Equal(t, 2025, product.DateOfSupply.Year())
	require.NotNil(t, product.Creator)
	assert.Equal(t, "alice", product.Creator.Username)

	var logs []models.AuditLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, models.AuditActionCreate, logs[0].Action)
	assert.Equal(t, product.ID, logs[0].EntityID)
}

func TestCreateProductValidation(t *testing.T) {
	svc, db := newProductService(t)
	alice := testutil.CreateUser(t, db, "alice")
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*SupplyInput)
		msg    string
	}{
		{"missing lot", func(in *SupplyInput) { in.LotNumber = " " }, "lot_number is required"},
		{"zero quantity", func(in *SupplyInput) { in.QuantitySupplied = 0 }, "quantity_supplied is required"},
		{"negative warranty", func(in *SupplyInput) { in.WarrantyPeriodMonths = -3 }, "warranty_period_months must be at least 1"},
		{"bad status", func(in *SupplyInput) { in.Status = "Lost" }, "status must be one of: Accepted, Rejected, Pending"},
		{"bad date", func(in *SupplyInput) { in.DateOfSupply = "02/04/2025" }, "date_of_supply must be a date (YYYY-MM-DD)"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := supplyInput("LOT-V")
			tt.mutate(&in)
			_, err := svc.Create(ctx, principal(alice), in)
			require.Error(t, err)
			assert.True(t, httpx.IsKind(err, httpx.KindValidation))
			assert.Equal(t, tt.msg, err.Error())
		})
	}
}

func TestLotNumberIsGloballyUnique(t *testing.T) {
	svc, db := newProductService(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	_, err := svc.Create(ctx, principal(alice), supplyInput("LOT-1"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, principal(bob), supplyInput("LOT-1"))
	require.Error(t, err)
	assert.True(t, httpx.IsKind(err, httpx.KindConflict))
	assert.Equal(t, msgLotExists, err.Error())

	other, err := svc.Create(ctx, principal(bob), supplyInput("LOT-2"))
	require.NoError(t, err)

	_, err = svc.Update(ctx, principal(bob), other.ID, SupplyUpdate{LotNumber: strPtr("LOT-1")})
	assert.True(t, httpx.IsKind(err, httpx.KindConflict))

	// keeping its own lot number is not a conflict
	updated, err := svc.Update(ctx, principal(bob), other.ID, SupplyUpdate{LotNumber: strPtr("LOT-2"), QuantitySupplied: intPtr(7)})
	require.NoError(t, err)
	assert.Equal(t, 7, updated.QuantitySupplied)
}

func TestLotNumberScenarioDeleteThenRecreate(t *testing.T) {
	svc, db := newProductService(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	created, err := svc.Create(ctx, principal(alice), supplyInput("LOT-1"))
	require.NoError(t, err)

	_, err = svc.Create(ctx, principal(bob), supplyInput("LOT-1"))
	require.Error(t, err)

	// bob cannot delete alice's product
	err = svc.Delete(ctx, principal(bob), created.ID)
	assert.True(t, httpx.IsKind(err, httpx.KindNotFound))

	require.NoError(t, svc.Delete(ctx, principal(alice), created.ID))
	recreated, err := svc.Create(ctx, principal(bob), supplyInput("LOT-1"))
	require.NoError(t, err)
	assert.Equal(t, bob.ID, recreated.CreatedBy)
}

func TestProductOwnershipScoping(t *testing.T) {
	svc, db := newProductService(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	mine := testutil.CreateProduct(t, db, alice.ID, "LOT-A")
	testutil.CreateProduct(t, db, bob.ID, "LOT-B")

	_, err := svc.Get(ctx, principal(bob), mine.ID)
	assert.True(t, httpx.IsKind(err, httpx.KindNotFound))
	_, err = svc.Update(ctx, principal(bob), mine.ID, SupplyUpdate{ItemType: strPtr("Sleeper")})
	assert.True(t, httpx.IsKind(err, httpx.KindNotFound))

	filters := []ProductFilter{
		{},
		{Search: "lot"},
		{Status: string(models.StatusAccepted)},
		{ItemType: "Rail Clip"},
		{Search: "acme", Status: string(models.StatusAccepted), ItemType: "Rail Clip"},
	}
	for _, f := range filters {
		f.Page = httpx.Page{Page: 1, Limit: 10}
		products, total, err := svc.List(ctx, principal(bob), f)
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		for _, p := range products {
			assert.Equal(t, bob.ID, p.CreatedBy)
		}
	}
}

func TestListProductsFiltersAndPagination(t *testing.T) {
	svc, db := newProductService(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")

	for _, lot := range []string{"LOT-1", "LOT-2", "LOT-3", "lot_%4", "PILOT-5"} {
		testutil.CreateProduct(t, db, alice.ID, lot)
	}
	require.NoError(t, db.Model(&models.Product{}).Where("lot_number = ?", "PILOT-5").
		Updates(map[string]any{"status": models.StatusPending, "item_type": "Fish Plate"}).Error)

	products, total, err := svc.List(ctx, principal(alice), ProductFilter{Page: httpx.Page{Page: 1, Limit: 2}})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	require.Len(t, products, 2)
	assert.Equal(t, "PILOT-5", products[0].LotNumber)
	assert.Equal(t, 3, httpx.Page{Page: 1, Limit: 2}.TotalPages(total))

	products, total, err = svc.List(ctx, principal(alice), ProductFilter{Page: httpx.Page{Page: 9, Limit: 2}})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Empty(t, products)

	_, total, err = svc.List(ctx, principal(alice), ProductFilter{Search: "lot", Page: httpx.Page{Page: 1, Limit: 10}})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)

	// search also reaches vendor_name and item_type
	_, total, err = svc.List(ctx, principal(alice), ProductFilter{Search: "ACME", Page: httpx.Page{Page: 1, Limit: 10}})
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)

	products, total, err = svc.List(ctx, principal(alice), ProductFilter{Search: "fish", Page: httpx.Page{Page: 1, Limit: 10}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "PILOT-5", products[0].LotNumber)

	_, total, err = svc.List(ctx, principal(alice), ProductFilter{Search: "olt", Page: httpx.Page{Page: 1, Limit: 10}})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)

	// wildcards in the search are literal
	products, total, err = svc.List(ctx, principal(alice), ProductFilter{Search: "_%", Page: httpx.Page{Page: 1, Limit: 10}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "lot_%4", products[0].LotNumber)

	_, total, err = svc.List(ctx, principal(alice), ProductFilter{Status: "Pending", Page: httpx.Page{Page: 1, Limit: 10}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	_, total, err = svc.List(ctx, principal(alice), ProductFilter{ItemType: "fish plate", Page: httpx.Page{Page: 1, Limit: 10}})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total, "item_type filter is exact")
}

func TestDeleteProductUnlinksEntries(t *testing.T) {
	svc, db := newProductService(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	product := testutil.CreateProduct(t, db, alice.ID, "LOT-1")

	entries := NewEntryService(db, audit.NewRecorder(db, testutil.Logger()))
	in := entryInput("LOT-1")
	in.ProductID = &product.ID
	entry, err := entries.Create(ctx, principal(alice), in)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, principal(alice), product.ID))

	kept, err := entries.Get(ctx, principal(alice), entry.ID)
	require.NoError(t, err)
	assert.Nil(t, kept.ProductID)
	assert.Nil(t, NewEntryResponse(kept).Product)
}

func TestUpdateProductClearsImage(t *testing.T) {
	svc, db := newProductService(t)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")

	in := supplyInput("LOT-IMG")
	in.Image = strPtr("/uploads/clip.png")
	product, err := svc.Create(ctx, principal(alice), in)
	require.NoError(t, err)
	require.NotNil(t, product.Image)

	updated, err := svc.Update(ctx, principal(alice), product.ID, SupplyUpdate{
		Image:  strPtr(""),
		Status: strPtr("Rejected"),
	})
	require.NoError(t, err)
	assert.Nil(t, updated.Image)
	assert.Equal(t, models.StatusRejected, updated.Status)
	assert.Equal(t, "LOT-IMG", updated.LotNumber)
}

func intPtr(n int) *int { return &n }
