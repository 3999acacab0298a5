package parsers

import (
	"fmt"

	"github.com/username/fursio/src/parsers/revolut"
)

func GetParser(source string) (Parser, error) {
	switch source {
	case "revolut":
		return revolut.NewParser(), nil
	default:
		return nil, fmt.Errorf("no parser available for source: %s", source)
	}
}
