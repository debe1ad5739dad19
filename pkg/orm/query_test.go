package orm_test

import (
	"errors"
	"testing"

	"github.com/shashiranjanraj/storefront/pkg/orm"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslate(t *testing.T) {
	assert.NoError(t, orm.Translate(nil))
	assert.ErrorIs(t, orm.Translate(gorm.ErrRecordNotFound), orm.ErrNotFound)

	dup := orm.Translate(errors.New("UNIQUE constraint failed: users.email"))
	assert.ErrorIs(t, dup, orm.ErrDuplicate)

	for _, msg := range []string{
		"FOREIGN KEY constraint failed",
		`ERROR: update or delete on table "products" violates foreign key constraint "fk_order_items_product" (SQLSTATE 23503)`,
		"Error 1451 (23000): Cannot delete or update a parent row: a foreign key constraint fails",
		`mssql: The DELETE statement conflicted with the REFERENCE constraint "fk_order_items_product".`,
	} {
		err := orm.Translate(errors.New(msg))
		assert.ErrorIs(t, err, orm.ErrReferenced, msg)
		assert.NotErrorIs(t, err, orm.ErrDuplicate, msg)
	}

	other := errors.New("connection reset")
	assert.Same(t, other, orm.Translate(other))
}
