package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Student", "Company", "Status"},
		Rows: []map[string]string{
			{"Student": "Asha Rao", "Company": "Acme", "Status": "pending"},
			{"Student": "Ravi Kumar", "Company": "Globex", "Status": "hired"},
		},
	}
}

func TestCSVRender(t *testing.T) {
	data, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)
	assert.Equal(t, "Student,Company,Status\nAsha Rao,Acme,pending\nRavi Kumar,Globex,hired\n", string(data))
}

func TestCSVRenderNoHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFRender(t *testing.T) {
	data, err := NewPDFExporter().Render(sampleDataset(), "Applications Report")
	require.NoError(t, err)
	assert.True(t, len(data) > 0)
	assert.Equal(t, "%PDF", string(data[:4]))
}
