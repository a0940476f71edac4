package database_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/smritirangarajan/spenderella/internal/database"
)

func TestSchema_DeclaresTables(t *testing.T) {
	schema := database.Schema()

	for _, table := range []string{"users", "report_settings", "reports", "transactions", "category_rules"} {
		assert.Contains(t, schema, "CREATE TABLE IF NOT EXISTS "+table+" (")
	}

	assert.NotContains(t, schema, "DROP ")
}
