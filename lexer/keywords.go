package lexer

// keywords maps lowercase SQL keywords to their token types.
// Uses a two-level lookup: first by length bucket, then a linear scan of
// that bucket's entries, with zero allocations.

// kwEntry is a keyword table entry.
type kwEntry struct {
	word string
	tok  TokenType
}

// Keywords organized by string length for fast dispatch.
// The lexer lowercases the candidate before lookup.
var keywordsByLen [32][]kwEntry

func init() {
	words := []kwEntry{
		{"add", ADD},
		{"after", AFTER},
		{"all", ALL},
		{"alter", ALTER},
		{"always", ALWAYS},
		{"analyze", ANALYZE},
		{"and", AND},
		{"as", AS},
		{"asc", ASC},
		{"auto_increment", AUTO_INCREMENT},
		{"before", BEFORE},
		{"begin", BEGIN},
		{"between", BETWEEN},
		{"bigint", BIGINT},
		{"binary", BINARY},
		{"blob", BLOB},
		{"boolean", BOOLEAN},
		{"by", BY},
		{"cascade", CASCADE},
		{"case", CASE},
		{"cast", CAST},
		{"change", CHANGE},
		{"char", CHAR},
		{"character", CHARACTER},
		{"check", CHECK},
		{"collate", COLLATE},
		{"column", COLUMN},
		{"comment", COMMENT_KW},
		{"commit", COMMIT},
		{"conflict", CONFLICT},
		{"constraint", CONSTRAINT},
		{"create", CREATE},
		{"cross", CROSS},
		{"database", DATABASE},
		{"date", DATE},
		{"datetime", DATETIME},
		{"decimal", DECIMAL},
		{"default", DEFAULT},
		{"deferrable", DEFERRABLE},
		{"deferred", DEFERRED},
		{"define", DEFINE},
		{"delete", DELETE},
		{"desc", DESC},
		{"distinct", DISTINCT},
		{"do", DO},
		{"double", DOUBLE},
		{"drop", DROP},
		{"each", EACH},
		{"else", ELSE},
		{"end", END},
		{"engine", ENGINE},
		{"enum", ENUM},
		{"escape", ESCAPE},
		{"except", EXCEPT},
		{"exists", EXISTS},
		{"explain", EXPLAIN},
		{"false", FALSE_KW},
		{"first", FIRST},
		{"float", FLOAT_KW},
		{"for", FOR},
		{"foreign", FOREIGN},
		{"from", FROM},
		{"full", FULL},
		{"function", FUNCTION},
		{"generated", GENERATED},
		{"glob", GLOB},
		{"group", GROUP},
		{"having", HAVING},
		{"if", IF},
		{"ignore", IGNORE},
		{"in", IN},
		{"index", INDEX},
		{"inner", INNER},
		{"input", INPUT},
		{"insert", INSERT},
		{"instead", INSTEAD},
		{"int", INT_KW},
		{"integer", INTEGER},
		{"intersect", INTERSECT},
		{"into", INTO},
		{"is", IS},
		{"isnull", ISNULL},
		{"join", JOIN},
		{"json", JSON},
		{"jsonb", JSONB},
		{"key", KEY},
		{"last", LAST},
		{"left", LEFT},
		{"like", LIKE},
		{"limit", LIMIT},
		{"longblob", LONGBLOB},
		{"longtext", LONGTEXT},
		{"match", MATCH},
		{"mediumblob", MEDIUMBLOB},
		{"mediumint", MEDIUMINT},
		{"mediumtext", MEDIUMTEXT},
		{"natural", NATURAL},
		{"nchar", NCHAR},
		{"no", NO},
		{"not", NOT},
		{"nothing", NOTHING},
		{"notnull", NOTNULL},
		{"null", NULL_KW},
		{"numeric", NUMERIC},
		{"of", OF},
		{"offset", OFFSET},
		{"on", ON},
		{"or", OR},
		{"order", ORDER},
		{"outer", OUTER},
		{"output", OUTPUT},
		{"partition", PARTITION},
		{"plan", PLAN},
		{"pragma", PRAGMA},
		{"primary", PRIMARY},
		{"procedure", PROCEDURE},
		{"query", QUERY},
		{"real", REAL},
		{"recursive", RECURSIVE},
		{"references", REFERENCES},
		{"regexp", REGEXP},
		{"reindex", REINDEX},
		{"release", RELEASE},
		{"rename", RENAME},
		{"replace", REPLACE},
		{"restrict", RESTRICT},
		{"returning", RETURNING},
		{"right", RIGHT},
		{"rollback", ROLLBACK},
		{"row", ROW},
		{"rowid", ROWID},
		{"savepoint", SAVEPOINT},
		{"select", SELECT},
		{"set", SET},
		{"show", SHOW},
		{"smallint", SMALLINT},
		{"stored", STORED},
		{"table", TABLE},
		{"tables", TABLES},
		{"temp", TEMP},
		{"temporary", TEMPORARY},
		{"text", TEXT},
		{"then", THEN},
		{"time", TIME},
		{"timestamp", TIMESTAMP},
		{"tinyblob", TINYBLOB},
		{"tinyint", TINYINT},
		{"tinytext", TINYTEXT},
		{"to", TO},
		{"transaction", TRANSACTION},
		{"trigger", TRIGGER},
		{"true", TRUE_KW},
		{"truncate", TRUNCATE},
		{"union", UNION},
		{"unique", UNIQUE},
		{"update", UPDATE},
		{"use", USE},
		{"using", USING},
		{"vacuum", VACUUM},
		{"values", VALUES},
		{"varbinary", VARBINARY},
		{"varchar", VARCHAR},
		{"view", VIEW},
		{"virtual", VIRTUAL},
		{"when", WHEN},
		{"where", WHERE},
		{"with", WITH},
		{"without", WITHOUT},
		{"year", YEAR},
	}
	for _, e := range words {
		l := len(e.word)
		if l < len(keywordsByLen) {
			keywordsByLen[l] = append(keywordsByLen[l], e)
		}
	}
}

// lookupKeyword returns the token for a keyword, or IDENT if not found.
// val must be lowercase. This function performs zero allocations.
func lookupKeyword(val []byte) TokenType {
	l := len(val)
	if l == 0 || l >= len(keywordsByLen) {
		return IDENT
	}
	bucket := keywordsByLen[l]
	for i := range bucket {
		if bytesEqualString(val, bucket[i].word) {
			return bucket[i].tok
		}
	}
	return IDENT
}

func bytesEqualString(b []byte, s string) bool {
	if len(b) != len(s) {
		return false
	}
	for i := 0; i < len(b); i++ {
		if b[i] != s[i] {
			return false
		}
	}
	return true
}
