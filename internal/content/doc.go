// Package content normalizes a raw catalog into selectable items.
//
// A catalog carries songs (with lyricist, composer and arranger name lists
// and tags), standalone people and standalone tags. [Build] turns it into an
// immutable [Registry] holding one [Item] per song, per unique tag and per
// unique person name. A person who holds several roles is a single item
// whose [Person] payload lists every role with its song count.
//
// Items carry a sealed [Kind] payload; [Match] forces callers to handle
// every variant:
//
//	label := content.Match(item,
//	    func(s content.Song) string { return s.Title },
//	    func(p content.Person) string { return fmt.Sprint(len(p.Roles), " roles") },
//	    func(content.Tag) string { return "#" + item.Name },
//	)
package content
