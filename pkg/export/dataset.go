package export

// Column maps a row key to the header label shown in the file.
type Column struct {
	Key   string
	Label string
}

// Dataset defines tabular export content. Columns keep their declared order.
type Dataset struct {
	Columns []Column
	Rows    []map[string]string
}

// Labels returns the header labels in column order.
func (d Dataset) Labels() []string {
	labels := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		labels[i] = col.Label
		if labels[i] == "" {
			labels[i] = col.Key
		}
	}
	return labels
}

// Record returns one row's values in column order.
func (d Dataset) Record(row map[string]string) []string {
	record := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		record[i] = row[col.Key]
	}
	return record
}
