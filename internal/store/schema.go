package store

// Schema objects are owned by this package and recreated wholesale on every
// rebuild. There is no migration path and no runtime introspection; the
// layout below is the contract the query layer compiles against.
//
// search_index is an external-content FTS5 table over documents. It is
// populated once per rebuild, after every document row exists, so its row set
// always mirrors the documents table exactly.
const schemaSQL = `
CREATE TABLE documents (
	id INTEGER PRIMARY KEY,
	slug TEXT UNIQUE NOT NULL,
	title TEXT NOT NULL,
	raw_body TEXT,
	rendered_html TEXT,
	created_fs TEXT NOT NULL,
	modified_fs TEXT NOT NULL,
	created_fm TEXT,
	topics_raw TEXT
);

CREATE TABLE topics (
	id INTEGER PRIMARY KEY,
	name TEXT UNIQUE NOT NULL
);

CREATE TABLE document_topics (
	document_id INTEGER NOT NULL,
	topic_id INTEGER NOT NULL,
	FOREIGN KEY (document_id) REFERENCES documents (id),
	FOREIGN KEY (topic_id) REFERENCES topics (id)
);

CREATE VIRTUAL TABLE search_index USING fts5(
	title,
	raw_body,
	topics_raw,
	content=documents,
	content_rowid=id
);
`
