package models

// Named is implemented by every definition that carries a display name.
type Named interface {
	GetName() string
}

// Slugged is implemented by definitions addressable by slug.
type Slugged interface {
	GetSlug() string
}
