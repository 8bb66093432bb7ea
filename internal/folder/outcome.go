package folder

import "github.com/MrSnakeDoc/tabsaver/internal/domain"

type lookupKind int

const (
	lookupFound lookupKind = iota
	lookupNotFound
	lookupSearchError
)

func (k lookupKind) String() string {
	switch k {
	case lookupFound:
		return "found"
	case lookupNotFound:
		return "not_found"
	default:
		return "search_error"
	}
}

// lookup is the result of looking a folder up by key or title.
type lookup struct {
	kind   lookupKind
	folder domain.Node // set when kind == lookupFound
	err    error       // set when kind == lookupSearchError
}

func found(n domain.Node) lookup { return lookup{kind: lookupFound, folder: n} }
func notFound() lookup           { return lookup{kind: lookupNotFound} }
func searchError(err error) lookup {
	return lookup{kind: lookupSearchError, err: err}
}

type removalKind int

const (
	removalDeleted removalKind = iota
	removalError
)

func (k removalKind) String() string {
	if k == removalDeleted {
		return "deleted"
	}
	return "delete_error"
}

// removal is the result of emptying a found folder.
type removal struct {
	kind removalKind
	err  error
}
