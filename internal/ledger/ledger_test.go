package ledger

import (
	"testing"
	"time"

	"github.com/fjod/go_cart/superscan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var base = time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

func tx(id string, offset time.Duration) domain.Transaction {
	return domain.Transaction{
		ID:    id,
		Date:  base.Add(offset),
		Items: []domain.CartLine{{ProductID: "p", Quantity: 1}},
	}
}

func TestLedger_Append_RejectsDuplicate(t *testing.T) {
	l := New()

	require.NoError(t, l.Append(tx("a", 0)))
	assert.ErrorIs(t, l.Append(tx("a", time.Minute)), ErrDuplicateTransaction)
	assert.Equal(t, 1, l.Len())
}

func TestLedger_List_NewestFirst(t *testing.T) {
	l := New()
	require.NoError(t, l.Append(tx("old", 0)))
	require.NoError(t, l.Append(tx("new", time.Hour)))
	require.NoError(t, l.Append(tx("middle", time.Minute)))

	ids := func(txs []domain.Transaction) []string {
		out := make([]string, 0, len(txs))
		for _, x := range txs {
			out = append(out, x.ID)
		}
		return out
	}

	assert.Equal(t, []string{"new", "middle", "old"}, ids(l.List()))
	assert.Equal(t, []string{"old", "new", "middle"}, ids(l.All()))
}

func TestLedger_List_SameDateKeepsReverseInsertion(t *testing.T) {
	l := New()
	require.NoError(t, l.Append(tx("first", 0)))
	require.NoError(t, l.Append(tx("second", 0)))

	list := l.List()
	require.Len(t, list, 2)
	assert.Equal(t, "second", list[0].ID)
	assert.Equal(t, "first", list[1].ID)
}

func TestLedger_Get(t *testing.T) {
	l := New()
	require.NoError(t, l.Append(tx("a", 0)))

	got, err := l.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "a", got.ID)

	_, err = l.Get("b")
	assert.ErrorIs(t, err, ErrTransactionNotFound)
}

func TestLedger_EntriesAreImmutable(t *testing.T) {
	l := New()
	orig := tx("a", 0)
	require.NoError(t, l.Append(orig))

	orig.Items[0].Quantity = 42
	got, _ := l.Get("a")
	assert.Equal(t, 1, got.Items[0].Quantity)

	got.Items[0].Quantity = 7
	again, _ := l.Get("a")
	assert.Equal(t, 1, again.Items[0].Quantity)
}

func TestLedger_Restore(t *testing.T) {
	l := New()
	l.Restore([]domain.Transaction{tx("a", 0), tx("b", time.Second), tx("a", time.Hour)})

	assert.Equal(t, 2, l.Len())
	all := l.All()
	assert.Equal(t, "a", all[0].ID)
	assert.Equal(t, "b", all[1].ID)
}
