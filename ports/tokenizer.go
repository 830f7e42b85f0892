package ports

import "github.com/openclave/sigil/core"

// Tokenizer converts between sessions and bearer tokens
type Tokenizer interface {
	SessionToToken(session *core.Session) (string, error)
	TokenToSession(token string) (*core.Session, error)
}
