package sqlite

const (
	createObjects = `CREATE TABLE objects (
    object_id TEXT PRIMARY KEY,
    type TEXT NOT NULL,
    title TEXT NOT NULL,
    slug TEXT NOT NULL,
    metadata TEXT NOT NULL,
    created_at TEXT NOT NULL,
    modified_at TEXT NOT NULL
);`

	idxObjectsType = `CREATE INDEX idx_objects_type ON objects(type);`
	idxObjectsSlug = `CREATE UNIQUE INDEX idx_objects_slug ON objects(type, slug);`
)

// schemaDDL lists the statements run on Attach, in order.
var schemaDDL = []string{
	createObjects,
	idxObjectsType,
	idxObjectsSlug,
}

// objectColumns is the column order used by every SELECT and INSERT.
const objectColumns = "object_id, type, title, slug, metadata, created_at, modified_at"
