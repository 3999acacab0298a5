package parsers

import (
	"io"

	"github.com/username/fursio/src/models"
)

// Parser turns one broker's raw statement export into the typed statement
// model. Implementations never fail on malformed content; rows that cannot
// be confidently classified are dropped and an unrecognizable input yields
// empty collections. The error return covers I/O only.
type Parser interface {
	Parse(file io.Reader) (*models.StatementExport, error)
}
