package save_test

import (
	"io"
	"testing"

	"noircase/internal/catalog"
	"noircase/internal/db"
	"noircase/internal/save"
	"noircase/internal/testhelpers"
)

// newTestAdapter creates an adapter over a fresh in-memory database and the
// embedded catalog.
func newTestAdapter(t *testing.T) (*save.Adapter, *db.Database) {
	t.Helper()

	dbs, err := db.NewDatabase(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := dbs.Close(); err != nil {
			t.Fatal(err)
		}
	})

	cat, err := catalog.New()
	if err != nil {
		t.Fatal(err)
	}

	return save.NewAdapter(dbs, cat, "noircase-test", testhelpers.NewLogger(io.Discard)), dbs
}
