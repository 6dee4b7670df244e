package models

import (
	"testing"

	dErrors "foodsupply/pkg/domain-errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegulatorExempts(t *testing.T) {
	supplier := &Supplier{OrgID: "XYZ Corp"}
	products := []Product{{ProductID: "P1"}, {ProductID: "P2"}}

	t.Run("exempt organization passes every product", func(t *testing.T) {
		r := &Regulator{ExemptedOrgIDs: []string{"XYZ Corp"}}
		assert.True(t, r.Exempts(supplier, products))
	})

	t.Run("all products exempt passes", func(t *testing.T) {
		r := &Regulator{ExemptedProductIDs: []string{"P2", "P1"}}
		assert.True(t, r.Exempts(supplier, products))
	})

	t.Run("one non exempt product fails", func(t *testing.T) {
		r := &Regulator{ExemptedProductIDs: []string{"P1"}}
		assert.False(t, r.Exempts(supplier, products))
	})

	t.Run("empty lists fail", func(t *testing.T) {
		r := &Regulator{}
		assert.False(t, r.Exempts(supplier, products))
	})
}

func TestRegulatorAddExemptions(t *testing.T) {
	r, err := NewRegulator("reg@gov.uk", "UK", []string{"ACME"}, nil)
	require.NoError(t, err)

	added := r.AddExemptions([]string{" ACME ", "XYZ Corp", "XYZ Corp", ""}, []string{"P1"})
	assert.Equal(t, 2, added)
	assert.Equal(t, []string{"ACME", "XYZ Corp"}, r.ExemptedOrgIDs)
	assert.Equal(t, []string{"P1"}, r.ExemptedProductIDs)

	assert.Equal(t, 0, r.AddExemptions([]string{"ACME"}, []string{"P1"}))
	assert.Len(t, r.ExemptedOrgIDs, 2)
}

func TestRetailerReceiveIsIdempotent(t *testing.T) {
	r, err := NewRetailer("shop@high.st")
	require.NoError(t, err)
	products := []Product{{ProductID: "p1", Quantity: 3}}

	assert.True(t, r.Receive("L1", products))
	assert.False(t, r.Receive("L1", products))
	assert.True(t, r.HasReceived("L1"))
	assert.Len(t, r.Products, 1)

	assert.True(t, r.Receive("L2", []Product{{ProductID: "p2", Quantity: 1}}))
	assert.Len(t, r.Products, 2)
	assert.Equal(t, "p1", r.Products[0].ProductID)
}

func TestPartyClone(t *testing.T) {
	r := &Retailer{Products: []Product{{ProductID: "p1"}}}
	c := r.Clone().(*Retailer)
	c.Receive("L9", []Product{{ProductID: "p9"}})
	assert.Len(t, r.Products, 1)
	assert.Empty(t, r.ReceivedListings)

	reg := &Regulator{ExemptedOrgIDs: []string{"A"}}
	rc := reg.Clone().(*Regulator)
	rc.AddExemptions([]string{"B"}, nil)
	assert.Equal(t, []string{"A"}, reg.ExemptedOrgIDs)
}

func TestRegisterPartyRequestBuild(t *testing.T) {
	t.Run("supplier", func(t *testing.T) {
		req := RegisterPartyRequest{Role: " Supplier ", ID: "s@acme.org", CountryID: "UK", OrgID: "ACME"}
		req.Normalize()
		p, err := req.Build()
		require.NoError(t, err)
		s, ok := p.(*Supplier)
		require.True(t, ok)
		assert.Equal(t, RoleSupplier, s.Role())
		assert.Equal(t, "ACME", s.OrgID)
	})

	t.Run("supplier without org", func(t *testing.T) {
		req := RegisterPartyRequest{Role: "supplier", ID: "s@acme.org"}
		_, err := req.Build()
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("regulator with exemptions", func(t *testing.T) {
		req := RegisterPartyRequest{Role: "regulator", ID: "reg", ExemptedOrgIDs: []string{"A", "A"}}
		p, err := req.Build()
		require.NoError(t, err)
		assert.Equal(t, []string{"A"}, p.(*Regulator).ExemptedOrgIDs)
	})

	t.Run("unknown role", func(t *testing.T) {
		req := RegisterPartyRequest{Role: "broker", ID: "b"}
		_, err := req.Build()
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})

	t.Run("missing id", func(t *testing.T) {
		req := RegisterPartyRequest{Role: "importer"}
		_, err := req.Build()
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}
