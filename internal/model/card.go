package model

// ColumnMapping holds the zero-based CSV column index of each field a
// statement parser needs. Indices may repeat and may exceed a row's width.
type ColumnMapping struct {
	DateColumn        int `yaml:"date_column"`
	AmountColumn      int `yaml:"amount_column"`
	CategoryColumn    int `yaml:"category_column"`
	DescriptionColumn int `yaml:"description_column"`
}

// DefaultColumnMapping is the layout new cards start with.
func DefaultColumnMapping() ColumnMapping {
	return ColumnMapping{DateColumn: 0, AmountColumn: 1, CategoryColumn: 2, DescriptionColumn: 3}
}

// Valid reports whether every index is non-negative.
func (m ColumnMapping) Valid() bool {
	return m.DateColumn >= 0 && m.AmountColumn >= 0 && m.CategoryColumn >= 0 && m.DescriptionColumn >= 0
}

// CategoryMapping translates a card-issuer category label into a custom category id.
type CategoryMapping struct {
	CardProvidedCategory string `yaml:"card_provided_category"`
	CustomCategoryID     string `yaml:"custom_category_id"`
}

// Card is a tracked credit-card account and its statement import settings.
type Card struct {
	ID               string            `yaml:"id"`
	Name             string            `yaml:"name"`
	CSVColumnMapping ColumnMapping     `yaml:"csv_column_mapping"`
	CategoryMappings []CategoryMapping `yaml:"category_mappings,omitempty"`
}
