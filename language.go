package docbot

// Script identifies how a language is tokenized, which in turn selects the
// indexing and ranking strategy used for it.
type Script string

// Script families known to the index.
const (
	ScriptUnknown Script = ""
	ScriptLatin   Script = "latin"
	ScriptCJK     Script = "cjk"
)

// NGramIndexed reports whether pages in this script lack whitespace word
// boundaries and therefore need generated n-gram terms in the index.
func (s Script) NGramIndexed() bool {
	return s == ScriptCJK
}

// Languages maps a language tag (as found in URLs) to its script family.
// New languages are supported by adding a tag here; new script families
// additionally need a ranking strategy registered with the search engine.
type Languages map[string]Script

// DefaultLanguages returns the languages of the default documentation site.
func DefaultLanguages() Languages {
	return Languages{
		"en-us": ScriptLatin,
		"ja-jp": ScriptCJK,
		"zh-cn": ScriptCJK,
	}
}

// Script returns the script family for tag, or ScriptUnknown.
func (l Languages) Script(tag string) Script {
	return l[tag]
}

// NGramIndexed reports whether pages in tag get generated n-gram terms.
func (l Languages) NGramIndexed(tag string) bool {
	return l.Script(tag).NGramIndexed()
}
