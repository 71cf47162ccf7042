package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodedAccount(t *testing.T) account {
	t.Helper()
	a, err := Decode[account]([]byte(validAccount))
	require.NoError(t, err)
	return a
}

func TestSetTrimsAndAssigns(t *testing.T) {
	w := widget{ID: 1, Title: "Widget"}
	require.NoError(t, Set(&w, "title", "  Gadget "))
	assert.Equal(t, "Gadget", w.Title)

	// Go field names resolve as well as JSON names.
	require.NoError(t, Set(&w, "ID", 9))
	assert.Equal(t, 9, w.ID)
}

func TestSetRejectsWrongType(t *testing.T) {
	w := widget{ID: 1, Title: "Widget"}
	err := Set(&w, "id", "seven")
	requireValidationError(t, err, "id")
	assert.Equal(t, 1, w.ID)
}

func TestSetNumericConversion(t *testing.T) {
	w := widget{ID: 1, Title: "Widget"}

	require.NoError(t, Set(&w, "id", 2.0))
	assert.Equal(t, 2, w.ID)

	requireValidationError(t, Set(&w, "id", 2.5), "id")
	assert.Equal(t, 2, w.ID)

	a := decodedAccount(t)
	require.NoError(t, Set(&a, "address.coordinates.lat", 10))
	assert.InDelta(t, 10.0, a.Address.Coordinates.Lat, 0.0001)
}

func TestSetConstraints(t *testing.T) {
	a := decodedAccount(t)

	requireValidationError(t, Set(&a, "id", 0), "id")
	assert.Equal(t, 7, a.ID)

	requireValidationError(t, Set(&a, "email", "nope"), "email")
	assert.Equal(t, "emily@example.com", a.Email)

	require.NoError(t, Set(&a, "email", " new@example.com "))
	assert.Equal(t, "new@example.com", a.Email)
}

func TestSetNested(t *testing.T) {
	a := decodedAccount(t)

	require.NoError(t, Set(&a, "address.city", " Tempe "))
	assert.Equal(t, "Tempe", a.Address.City)

	require.NoError(t, Set(&a, "address.state", "AZ"))
	require.NotNil(t, a.Address.State)
	assert.Equal(t, "AZ", *a.Address.State)

	require.NoError(t, Set(&a, "address", address{City: " Mesa "}))
	assert.Equal(t, "Mesa", a.Address.City)
}

func TestSetNil(t *testing.T) {
	a := decodedAccount(t)
	nick := "em"
	a.Nickname = &nick

	require.NoError(t, Set(&a, "nickname", nil))
	assert.Nil(t, a.Nickname)

	requireValidationError(t, Set(&a, "email", nil), "email")

	require.NoError(t, Set(&a, "tags", nil))
	assert.Nil(t, a.Tags)
}

func TestSetUnknownField(t *testing.T) {
	w := widget{ID: 1, Title: "Widget"}
	requireValidationError(t, Set(&w, "colour", "red"), "colour")
	requireValidationError(t, Set(&w, "title.inner", "x"), "title")
}

func TestSetRevertsWhenCheckerFails(t *testing.T) {
	p := taggedPage{
		Items:  []widget{{ID: 1, Title: "a"}, {ID: 2, Title: "b"}},
		Paging: Paging{Total: 2, Limit: 2},
	}

	requireValidationError(t, Set(&p, "limit", 1), "")
	assert.Equal(t, 2, p.Limit)

	require.NoError(t, Set(&p, "limit", 5))
	assert.Equal(t, 5, p.Limit)
}

func TestSetDoesNotTouchCallerValue(t *testing.T) {
	a := decodedAccount(t)

	tags := []string{" billing ", "ops"}
	require.NoError(t, Set(&a, "tags", tags))
	assert.Equal(t, []string{"billing", "ops"}, a.Tags)
	assert.Equal(t, []string{" billing ", "ops"}, tags)

	// trimmed storage is not shared either
	a.Tags[1] = "changed"
	assert.Equal(t, "ops", tags[1])

	state := " AZ "
	addr := address{City: "Tempe", State: &state, Coordinates: coordinates{Lat: 1, Lng: 2}}
	require.NoError(t, Set(&a, "address", addr))
	require.NotNil(t, a.Address.State)
	assert.Equal(t, "AZ", *a.Address.State)
	assert.Equal(t, " AZ ", state)
}
