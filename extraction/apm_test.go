package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractAPMFromHeadingBlock(t *testing.T) {
	text := `Some introduction text.

Application Portfolio Management Details

APM Name: Billing Platform
APM ID  APM0012345
Service offering: Compute
Environment: Production


Unrelated: footer content`

	got := ExtractAPM(text)

	assert.Equal(t, "Billing Platform", got["APM Name"])
	assert.Equal(t, "APM0012345", got["APM ID"])
	assert.Equal(t, "Compute", got["Service offering"])
	assert.Equal(t, "Production", got["Environment"])
	// the double blank line ends the APM block
	assert.NotContains(t, got, "Unrelated")
}

func TestExtractAPMWithoutHeading(t *testing.T) {
	text := `random preamble
APM ID: APM0045678
Business Unit: Payments`

	got := ExtractAPM(text)

	assert.Equal(t, "APM0045678", got["APM ID"])
	assert.Equal(t, "Payments", got["Business Unit"])
}

func TestExtractAPMBackfillsOwnerEmail(t *testing.T) {
	text := `Application Portfolio Management Details

Service offering: Compute
Environment: Production
For escalations reach jane.doe@example.com directly`

	got := ExtractAPM(text)

	assert.Equal(t, "jane.doe@example.com", got["Application Owner"])
}

func TestExtractAPMStripsPastedLinks(t *testing.T) {
	text := `Application Portfolio Management Details

APM Name: Billing https://wiki.internal/apm/billing
Environment: Production`

	got := ExtractAPM(text)

	assert.Equal(t, "Billing", got["APM Name"])
}

func TestExtractAPMEmptyText(t *testing.T) {
	assert.Empty(t, ExtractAPM("   "))
}
