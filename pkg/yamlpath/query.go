package yamlpath

// Component is one step of a Query: either a mapping key or a sequence
// index, applied in order from the document root.
type Component struct {
	Key      string
	Index    int
	IsIndex  bool
}

// Query is an ordered path of Components identifying a single node.
type Query struct {
	Components []Component
}

// QueryBuilder incrementally builds a Query.
type QueryBuilder struct {
	components []Component
}

// NewQueryBuilder starts an empty query.
func NewQueryBuilder() *QueryBuilder {
	return &QueryBuilder{}
}

// Key appends a mapping-key component.
func (b *QueryBuilder) Key(key string) *QueryBuilder {
	b.components = append(b.components, Component{Key: key})
	return b
}

// Index appends a sequence-index component.
func (b *QueryBuilder) Index(i int) *QueryBuilder {
	b.components = append(b.components, Component{Index: i, IsIndex: true})
	return b
}

// Build finalizes the query.
func (b *QueryBuilder) Build() Query {
	return Query{Components: b.components}
}
