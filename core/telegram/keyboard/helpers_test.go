package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInlineButtonsRows(t *testing.T) {
	rm := InlineButtonsRows(
		[]InlineBtn{{Text: "◀️", Unique: "admin_prev", Data: "2"}, {Text: "▶️", Unique: "admin_next", Data: "2"}},
		nil,
		[]InlineBtn{{Text: "🧾", Unique: "admin_receipt", Data: "42|2"}},
	)
	require.NotNil(t, rm)
	require.Len(t, rm.InlineKeyboard, 2)
	assert.Len(t, rm.InlineKeyboard[0], 2)
	assert.Equal(t, "admin_prev", rm.InlineKeyboard[0][0].Unique)
	assert.Equal(t, "42|2", rm.InlineKeyboard[1][0].Data)
}

func TestInlineButtonsRowsEmpty(t *testing.T) {
	assert.Nil(t, InlineButtonsRows())
	assert.Nil(t, InlineButtonsRows(nil, []InlineBtn{}))
}
