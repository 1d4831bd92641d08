package exporter

import (
	"consolidator/pkg/contracts/domain"
)

// DefaultPreviewRows is the number of rows shown when none is configured.
const DefaultPreviewRows = 10

// BuildPreview renders the first n rows of the table as strings.
func BuildPreview(table *domain.ConsolidatedTable, n int) domain.Preview {
	if n <= 0 {
		n = DefaultPreviewRows
	}
	if n > table.Len() {
		n = table.Len()
	}

	preview := domain.Preview{
		Columns:   table.ColumnNames(),
		Rows:      make([]domain.PreviewRow, n),
		TotalRows: table.Len(),
	}
	for i := 0; i < n; i++ {
		values := make([]string, len(table.Columns))
		for j := range table.Columns {
			values[j] = cellText(&table.Columns[j], i)
		}
		preview.Rows[i] = domain.PreviewRow{Fecha: formatDate(table.Dates[i]), Values: values}
	}
	return preview
}
