package bookmarks

import (
	"context"
	"fmt"
	"html"
	"strings"

	"github.com/MrSnakeDoc/tabsaver/internal/domain"
)

// Tree is the read side of a Store needed for exporting.
type Tree interface {
	Children(ctx context.Context, parentID string) ([]domain.Node, error)
}

// ExportHTML renders every tabsaver folder under the root as a Netscape
// bookmark file, importable by any browser.
func ExportHTML(ctx context.Context, tree Tree) (string, error) {
	roots, err := tree.Children(ctx, RootID)
	if err != nil {
		return "", err
	}

	var b strings.Builder

	// Header
	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<TITLE>Bookmarks</TITLE>\n")
	b.WriteString("<H1>Bookmarks</H1>\n")
	b.WriteString("<DL><p>\n")

	for _, n := range roots {
		if !n.IsFolder() || !domain.IsTabsaverTitle(n.Title) {
			continue
		}
		if err := writeNode(ctx, &b, tree, n, 1); err != nil {
			return "", err
		}
	}

	// Footer
	b.WriteString("</DL><p>\n")

	return b.String(), nil
}

// writeNode writes a folder (recursively) or a bookmark entry.
func writeNode(ctx context.Context, b *strings.Builder, tree Tree, n domain.Node, indent int) error {
	prefix := strings.Repeat("    ", indent)

	if !n.IsFolder() {
		fmt.Fprintf(b,
			"%s<DT><A HREF=\"%s\" ADD_DATE=\"%d\">%s</A>\n",
			prefix,
			html.EscapeString(n.URL),
			n.CreatedAt.Unix(),
			html.EscapeString(n.Title),
		)
		return nil
	}

	children, err := tree.Children(ctx, n.ID)
	if err != nil {
		return err
	}

	fmt.Fprintf(b, "%s<DT><H3 ADD_DATE=\"%d\">%s</H3>\n", prefix, n.CreatedAt.Unix(), html.EscapeString(n.Title))
	fmt.Fprintf(b, "%s<DL><p>\n", prefix)
	for _, child := range children {
		if err := writeNode(ctx, b, tree, child, indent+1); err != nil {
			return err
		}
	}
	fmt.Fprintf(b, "%s</DL><p>\n", prefix)

	return nil
}
