package models

import "time"

// Publication is one row of a profile page.
type Publication struct {
	Ref              string
	Title            string
	DisplayAuthors   string
	AttributeAuthors string
	Citations        int
	HasCitations     bool
}

// CacheEntry is a previously retrieved full author list.
type CacheEntry struct {
	ID          string    `bson:"_id"`
	AuthorsText string    `bson:"authors_text"`
	StoredAt    time.Time `bson:"stored_at"`
}

type RoleRecord struct {
	RunID        string `bson:"run_id"`
	PaperKey     string `bson:"paper_key"`
	Title        string `bson:"title"`
	Authors      string `bson:"authors"`
	MatchedIndex int    `bson:"matched_index"`
	MatchedText  string `bson:"matched_text"`
	First        bool   `bson:"first"`
	Second       bool   `bson:"second"`
	CoFirst      bool   `bson:"co_first"`
	Last         bool   `bson:"last"`
	Truncated    bool   `bson:"truncated"`
	Expanded     bool   `bson:"expanded"`
	Highlighted  bool   `bson:"highlighted"`
	Citations    int    `bson:"citations"`
	UpdatedAt    int64  `bson:"updated_at"`
}
