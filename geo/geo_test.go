package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/opentransit/gtfsstats/model"
)

func TestDistance(t *testing.T) {
	index := NewStopIndex([]model.Stop{
		{ID: "tlv", Lat: 32.0853, Lon: 34.7818},
		{ID: "jlm", Lat: 31.7683, Lon: 35.2137},
		{ID: "same", Lat: 32.0853, Lon: 34.7818},
	})

	// Tel Aviv to Jerusalem is roughly 54 km as the crow flies.
	d := index.Distance("tlv", "jlm")
	assert.InDelta(t, 54000, d, 1500)

	// Symmetric.
	assert.Equal(t, d, index.Distance("jlm", "tlv"))

	assert.Equal(t, 0.0, index.Distance("tlv", "same"))
	assert.Equal(t, 0.0, index.Distance("tlv", "tlv"))
}

func TestDistanceUnknownStop(t *testing.T) {
	index := NewStopIndex([]model.Stop{{ID: "tlv", Lat: 32.0853, Lon: 34.7818}})

	assert.False(t, model.Defined(index.Distance("tlv", "nope")))
	assert.False(t, model.Defined(index.Distance("nope", "tlv")))
	assert.False(t, model.Defined(StopIndex{}.Distance("a", "b")))
}

func TestDistanceMissingCoordinates(t *testing.T) {
	// Stops without a position must not collapse onto (0, 0) and
	// produce real distances.
	index := NewStopIndex([]model.Stop{
		{ID: "tlv", Lat: 32.0853, Lon: 34.7818},
		{ID: "blank", Lat: model.Undefined(), Lon: model.Undefined()},
		{ID: "halfblank", Lat: 32.0853, Lon: model.Undefined()},
	})

	assert.False(t, model.Defined(index.Distance("tlv", "blank")))
	assert.False(t, model.Defined(index.Distance("blank", "tlv")))
	assert.False(t, model.Defined(index.Distance("blank", "blank")))
	assert.False(t, model.Defined(index.Distance("tlv", "halfblank")))
}
