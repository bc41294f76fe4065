package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abdymaleeq925/tablecrm/internal/crm"
	"github.com/abdymaleeq925/tablecrm/internal/order"
)

func TestAuthSuccessKicksOffReferenceLoad(t *testing.T) {
	m := New(order.NewOps(nil, nil), "abc")

	next, cmd := m.Update(authMsg(order.AuthResult{}))
	m = next.(Model)
	assert.Equal(t, order.PhaseAuthenticated, m.session.Phase)
	assert.True(t, m.session.Busy, "busy until references arrive")
	require.NotNil(t, cmd, "reference load must follow authentication")

	next, _ = m.Update(refsMsg{refs: order.References{
		Products: []crm.PriceItem{{NomenclatureID: 10, NomenclatureName: "Widget", Price: 100}},
		Loaded:   true,
	}})
	m = next.(Model)
	assert.False(t, m.session.Busy)
	assert.True(t, m.session.Refs.Loaded)
}

func TestAuthFailureStaysOnTokenScreen(t *testing.T) {
	m := New(order.NewOps(nil, nil), "bad")

	next, _ := m.Update(authMsg(order.AuthResult{Err: &order.AuthError{Msg: "invalid token"}}))
	m = next.(Model)
	assert.Equal(t, order.PhaseUnauthenticated, m.session.Phase)
	assert.Contains(t, m.View(), "invalid token")
}

func TestSubmitSuccessShowsNotice(t *testing.T) {
	m := New(order.NewOps(nil, nil), "abc")
	m.session.Phase = order.PhaseAuthenticated
	m.session.Refs.Products = []crm.PriceItem{{NomenclatureID: 10, NomenclatureName: "Widget", Price: 100}}
	m.session.AddProduct(10)

	next, _ := m.Update(submitMsg(order.SubmitResult{Posted: true, DocID: 1001}))
	m = next.(Model)
	require.NotNil(t, m.session.Notice)
	assert.Contains(t, m.View(), "created and posted")
	assert.True(t, m.session.Cart.Empty())
}
