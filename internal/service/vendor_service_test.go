package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rfpflow/internal/apperr"
)

func TestVendorCreateAndList(t *testing.T) {
	svc := NewVendorService(newFakeVendorStore())

	v, err := svc.Create(context.Background(), 1, VendorInput{
		Name: "Acme", Email: "sales@acme.test", Category: "hardware",
	})
	require.NoError(t, err)
	assert.NotZero(t, v.ID)

	_, err = svc.Create(context.Background(), 1, VendorInput{
		Name: "SeatCo", Email: "hello@seatco.test", Category: "furniture",
	})
	require.NoError(t, err)

	all, err := svc.List(context.Background(), 1, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	hardware, err := svc.List(context.Background(), 1, "hardware")
	require.NoError(t, err)
	require.Len(t, hardware, 1)
	assert.Equal(t, "Acme", hardware[0].Name)
}

func TestVendorCreateValidation(t *testing.T) {
	svc := NewVendorService(newFakeVendorStore())
	_, err := svc.Create(context.Background(), 1, VendorInput{Name: "NoEmail"})
	assert.True(t, apperr.IsValidation(err))
}

func TestVendorUpdatePartial(t *testing.T) {
	svc := NewVendorService(newFakeVendorStore())
	v, err := svc.Create(context.Background(), 1, VendorInput{
		Name: "Acme", Email: "sales@acme.test", Phone: "123",
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), v.ID, VendorInput{Phone: "456"})
	require.NoError(t, err)
	assert.Equal(t, "Acme", updated.Name)
	assert.Equal(t, "456", updated.Phone)
}

func TestVendorGetAndDelete(t *testing.T) {
	svc := NewVendorService(newFakeVendorStore())
	v, err := svc.Create(context.Background(), 1, VendorInput{Name: "Acme", Email: "a@b.test"})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), v.ID)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), v.ID))
	_, err = svc.Get(context.Background(), v.ID)
	assert.True(t, apperr.IsNotFound(err))
	assert.True(t, apperr.IsNotFound(svc.Delete(context.Background(), v.ID)))
}
