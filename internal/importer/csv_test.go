package importer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	cases := map[string]float64{
		"$1,250.00": 1250,
		"45.5":      45.5,
		"-20":       -20,
		"AUD 99":    99,
		"":          0,
		"free":      0,
	}
	for raw, expected := range cases {
		assert.Equal(t, expected, parseAmount(raw), "input %q", raw)
	}
}

func TestParseCount(t *testing.T) {
	assert.Equal(t, 4, parseCount("4"))
	assert.Equal(t, 0, parseCount(""))
	assert.Equal(t, 0, parseCount("four"))
}

func TestParseCsvDate(t *testing.T) {
	iso := parseCsvDate("2026-06-30")
	require.NotNil(t, iso)
	assert.Equal(t, time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC), *iso)

	australian := parseCsvDate("30/06/2026")
	require.NotNil(t, australian)
	assert.Equal(t, time.Date(2026, time.June, 30, 0, 0, 0, 0, time.UTC), *australian)

	short := parseCsvDate("3/6/2026")
	require.NotNil(t, short)
	assert.Equal(t, time.Date(2026, time.June, 3, 0, 0, 0, 0, time.UTC), *short)

	bareYear := parseCsvDate("2027")
	require.NotNil(t, bareYear)
	assert.Equal(t, time.Date(2027, time.December, 31, 0, 0, 0, 0, time.UTC), *bareYear)

	assert.Nil(t, parseCsvDate(""))
	assert.Nil(t, parseCsvDate("next week"))
}

func TestHeaderMapRecognisesColumns(t *testing.T) {
	m := headerMap([]string{"First Name", "Surname... last", "Fellowship", "Concession?", "Fee Status", "Membership Expiry", "Camp Site", "Site Type"})

	assert.Equal(t, 0, m["first_name"])
	assert.Equal(t, 1, m["last_name"])
	assert.Equal(t, 2, m["fellowship"])
	assert.Equal(t, 3, m["concession"])
	assert.Equal(t, 4, m["site_fee_status"])
	assert.Equal(t, 5, m["site_fee_paid_until"])
	assert.Equal(t, 6, m["site_number"])
	assert.Equal(t, 7, m["site_type"])
}

func TestHeaderMapPositionalFallback(t *testing.T) {
	m := headerMap([]string{"a", "b", "c"})

	assert.Equal(t, 0, m["first_name"])
	assert.Equal(t, 1, m["last_name"])
	assert.Equal(t, 2, m["fellowship"])
	assert.Equal(t, 3, m["concession"])
	assert.Equal(t, 4, m["site_fee_status"])

	_, hasPaidUntil := m["site_fee_paid_until"]
	assert.False(t, hasPaidUntil)
	_, hasSite := m["site_number"]
	assert.False(t, hasSite)
}
