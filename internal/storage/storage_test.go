package storage

import (
	"bufio"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bestydev/woolworths-catalog-scraper/internal/models"
)

func writerProduct(id string, price float64) *models.Product {
	p := models.NewProduct(id, "woolworths.co.nz", time.Now().UTC())
	p.Name = "Product " + id
	p.CurrentPrice = &price
	return p
}

func TestRunWriter_OneLinePerProduct(t *testing.T) {
	dir := t.TempDir()

	w, err := NewRunWriter(dir, "woolworths_products")
	require.NoError(t, err)

	require.NoError(t, w.Write(writerProduct("1", 3.45)))
	require.NoError(t, w.Write(writerProduct("2", 7.00)))
	require.NoError(t, w.Close())

	assert.Equal(t, 2, w.Count())
	assert.True(t, strings.HasPrefix(w.Path(), dir))
	assert.Contains(t, w.Path(), "woolworths_products_")

	file, err := os.Open(w.Path())
	require.NoError(t, err)
	defer file.Close()

	var ids []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var p models.Product
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &p))
		ids = append(ids, p.ID)
	}
	require.NoError(t, scanner.Err())
	assert.Equal(t, []string{"1", "2"}, ids)
}

func TestRunWriter_WriteAfterClose(t *testing.T) {
	w, err := NewRunWriter(t.TempDir(), "woolworths_products")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	assert.Error(t, w.Write(writerProduct("1", 1.00)))
	// Closing twice is harmless.
	assert.NoError(t, w.Close())
}

func TestRunWriter_CreatesOutputDir(t *testing.T) {
	dir := t.TempDir() + "/runs/today"

	w, err := NewRunWriter(dir, "woolworths_products")
	require.NoError(t, err)
	defer w.Close()

	_, err = os.Stat(dir)
	assert.NoError(t, err)
}
