package searchidx

// MandatoryFields are the stored index fields the Index Reader requires
// to be present before it will consider the schema usable (spec.md §4.1).
var MandatoryFields = []string{
	"session_id",
	"agent",
	"project",
	"branch",
	"cwd",
	"created",
	"modified",
	"lines",
	"export_path",
	"first_msg_role",
	"first_msg_content",
	"last_msg_role",
	"last_msg_content",
	"derivation_type",
	"is_sidechain",
}

// OptionalFields are stored fields that may be absent from older indices
// without that counting as a schema mismatch.
var OptionalFields = []string{
	"claude_home",
}

// BodyField is the indexed, stored field holding the full transcript
// text that the Query Engine searches and excerpts snippets from. It is
// never surfaced on session.Session.
const BodyField = "body"
