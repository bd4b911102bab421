package csvimport

import (
	"fmt"
	"strings"
	"testing"

	"whatsbot-gateway/internal/models"
	"whatsbot-gateway/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestImporter(t *testing.T) (*Importer, *store.Store) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Order{}))

	st := store.NewStore(db, store.NewSelection())
	return NewImporter(st), st
}

func TestDetectColumns(t *testing.T) {
	t.Run("shopify-style headers", func(t *testing.T) {
		m := DetectColumns([]string{"Lineitem name", "Billing Name", "Billing Phone", "Billing Address", "Status"})
		assert.Equal(t, 0, m.Product)
		assert.Equal(t, 1, m.Name)
		assert.Equal(t, 2, m.Phone)
		assert.Equal(t, 3, m.Address)
		assert.Equal(t, 4, m.Status)
		assert.Equal(t, -1, m.OrderNumber)
	})

	t.Run("shuffled columns with synonyms", func(t *testing.T) {
		m := DetectColumns([]string{"Customer Name", "Mobile", "Product", "Delivery Address", "Order Status", "Order No"})
		assert.Equal(t, 2, m.Product)
		assert.Equal(t, 0, m.Name)
		assert.Equal(t, 1, m.Phone)
		assert.Equal(t, 3, m.Address)
		assert.Equal(t, 4, m.Status)
		assert.Equal(t, 5, m.OrderNumber)
	})

	t.Run("unmatched headers keep positional defaults", func(t *testing.T) {
		m := DetectColumns([]string{"A", "B", "C", "D", "E"})
		assert.Equal(t, ColumnMap{Product: 0, Name: 1, Phone: 2, Address: 3, Status: 4, OrderNumber: -1}, m)
	})
}

func TestNormalizePhone(t *testing.T) {
	assert.Equal(t, "3214567890", NormalizePhone("321-456-7890"))
	assert.Equal(t, "923001234567", NormalizePhone("+92 (300) 123-4567"))
	assert.Equal(t, "", NormalizePhone("no digits"))
}

func TestImportSpecExample(t *testing.T) {
	imp, st := newTestImporter(t)

	csv := "Lineitem name,Billing Name,Billing Phone,Billing Address,Status\n" +
		"Blender,Ali Khan,321-456-7890,\"House 5, Lahore\",To Process\n"

	res, err := imp.Import(csv)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)

	orders, _, err := st.List(store.ListFilter{})
	require.NoError(t, err)
	require.Len(t, orders, 1)

	got := orders[0]
	assert.Equal(t, "Blender", got.Product)
	assert.Equal(t, "Ali Khan", got.Name)
	assert.Equal(t, "3214567890", got.Phone)
	assert.Equal(t, "House 5, Lahore", got.Address)
	assert.Equal(t, models.StatusToProcess, got.Status)
}

func TestImportNormalizesStatusAndSkipsInvalidRows(t *testing.T) {
	imp, st := newTestImporter(t)

	csv := strings.Join([]string{
		"Lineitem name,Billing Name,Billing Phone,Billing Address,Status",
		"Blender,Ali,3001111111,Lahore,customer did not respond",
		"Mixer,Sana,3002222222,Karachi,unknown-status",
		"Toaster,,3003333333,Multan,To Process", // no name
		"Kettle,Bilal,---,Quetta,To Process",    // phone has no digits
	}, "\n")

	res, err := imp.Import(csv)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Imported)
	assert.Equal(t, 2, res.SkippedInvalid)

	orders, _, err := st.List(store.ListFilter{Search: "Ali"})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, models.StatusNotResponding, orders[0].Status)

	orders, _, err = st.List(store.ListFilter{Search: "Sana"})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, models.StatusToProcess, orders[0].Status)
}

func TestImportDeduplicatesByPhone(t *testing.T) {
	imp, st := newTestImporter(t)

	_, err := st.Add(models.Order{Name: "Existing", Phone: "3001111111", Status: models.StatusToProcess})
	require.NoError(t, err)

	csv := strings.Join([]string{
		"Lineitem name,Billing Name,Billing Phone,Billing Address,Status",
		"Blender,Ali,300-111-1111,Lahore,To Process",  // duplicates existing order
		"Mixer,Sana,3002222222,Karachi,To Process",    // new
		"Toaster,Sana Again,3002222222,Karachi,To Process", // duplicates earlier row
	}, "\n")

	res, err := imp.Import(csv)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 2, res.SkippedDuplicates)

	_, total, err := st.List(store.ListFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
}

func TestImportAssignsOrderNumbers(t *testing.T) {
	imp, st := newTestImporter(t)

	t.Run("source column with hash prefix", func(t *testing.T) {
		csv := "Order Number,Billing Name,Billing Phone\n#5012,Ali,3001111111\n"
		// Order Number header maps via "order"; name/phone via substring.
		_, err := imp.Import(csv)
		require.NoError(t, err)

		orders, _, err := st.List(store.ListFilter{Search: "Ali"})
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, "5012", orders[0].OrderNumber)
	})

	t.Run("fallback pool when no source column", func(t *testing.T) {
		csv := "Lineitem name,Billing Name,Billing Phone\nBlender,Sana,3002222222\n"
		_, err := imp.Import(csv)
		require.NoError(t, err)

		orders, _, err := st.List(store.ListFilter{Search: "Sana"})
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.NotEmpty(t, orders[0].OrderNumber)
	})
}

func TestPreviewBoundsRows(t *testing.T) {
	var b strings.Builder
	b.WriteString("Lineitem name,Billing Name,Billing Phone,Billing Address,Status\n")
	for i := 0; i < 25; i++ {
		fmt.Fprintf(&b, "Product %d,Name %d,30000000%02d,Addr,To Process\n", i, i, i)
	}

	headers, rows, cols, err := Preview(b.String())
	require.NoError(t, err)
	assert.Len(t, headers, 5)
	assert.Len(t, rows, PreviewRows)
	assert.Equal(t, 0, cols.Product)
}

func TestParseHandlesCRLFAndBlankLines(t *testing.T) {
	csv := "Lineitem name,Billing Name,Billing Phone\r\nBlender,Ali,3001111111\r\n\r\nMixer,Sana,3002222222\r\n"
	_, rows, _, err := Preview(csv)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestImportEmptyFile(t *testing.T) {
	imp, _ := newTestImporter(t)
	_, err := imp.Import("")
	assert.ErrorIs(t, err, ErrEmptyFile)
}
