package wardroom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatHeading(t *testing.T) {
	assert.Equal(t, "0° N", FormatHeading(0))
	assert.Equal(t, "90° E", FormatHeading(90))
	assert.Equal(t, "312° NW", FormatHeading(312))
	// Wraps negative and oversized headings into [0,360).
	assert.Equal(t, "270° W", FormatHeading(-90))
	assert.Equal(t, "10° N", FormatHeading(370))
	// 350 rounds up to the northern label, not past the table.
	assert.Equal(t, "350° N", FormatHeading(350))
}

func TestFormatDrift(t *testing.T) {
	assert.Equal(t, "centerline", FormatDrift(0))
	assert.Equal(t, "centerline", FormatDrift(0.9))
	assert.Equal(t, "centerline", FormatDrift(-0.9))
	assert.Equal(t, "5 pt starboard", FormatDrift(5.2))
	assert.Equal(t, "8 pt port", FormatDrift(-7.8))
}

func TestFormatEfficiencyAndFuel(t *testing.T) {
	assert.Equal(t, "Efficiency 94%", FormatEfficiency(0.94))
	assert.Equal(t, "12.5% fuel", FormatFuel(12.5))
}
