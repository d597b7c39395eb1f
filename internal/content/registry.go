package content

import (
	"strings"
)

// BuildReport counts the catalog entries skipped during Build.
type BuildReport struct {
	SkippedSongs  int `json:"skippedSongs"`
	SkippedNames  int `json:"skippedNames"`
	SkippedPeople int `json:"skippedPeople"`
	SkippedTags   int `json:"skippedTags"`
}

func (r BuildReport) Skipped() int {
	return r.SkippedSongs + r.SkippedNames + r.SkippedPeople + r.SkippedTags
}

// Registry is the immutable item pool built from one catalog snapshot.
type Registry struct {
	items      []Item
	index      map[string]int
	maxRelated int
	counts     TypeCounts
}

// Empty returns a registry with no items.
func Empty() *Registry {
	return &Registry{index: map[string]int{}}
}

type personAcc struct {
	name  string
	roles [3]map[string]struct{}
	songs map[string]struct{}
}

type tagAcc struct {
	name  string
	songs map[string]struct{}
}

// Build normalizes a catalog. Malformed entries are skipped and counted;
// an empty result is a valid registry.
//
// Person related count is the number of distinct songs the person touched
// in any role. Per-role counts are distinct songs per role.
func Build(cat Catalog) (*Registry, BuildReport) {
	var report BuildReport

	var songs []Item
	seenSongs := make(map[string]struct{})
	people := make(map[string]*personAcc)
	var personOrder []string
	tags := make(map[string]*tagAcc)
	var tagOrder []string

	person := func(key, name string) *personAcc {
		acc, ok := people[key]
		if !ok {
			acc = &personAcc{name: name, songs: make(map[string]struct{})}
			for i := range acc.roles {
				acc.roles[i] = make(map[string]struct{})
			}
			people[key] = acc
			personOrder = append(personOrder, key)
		}
		return acc
	}
	tag := func(key, name string) *tagAcc {
		acc, ok := tags[key]
		if !ok {
			acc = &tagAcc{name: name, songs: make(map[string]struct{})}
			tags[key] = acc
			tagOrder = append(tagOrder, key)
		}
		return acc
	}

	for _, rec := range cat.Songs {
		id := strings.TrimSpace(rec.ID)
		title := strings.TrimSpace(rec.Title)
		if id == "" || title == "" {
			report.SkippedSongs++
			continue
		}
		if _, dup := seenSongs[id]; dup {
			report.SkippedSongs++
			continue
		}
		seenSongs[id] = struct{}{}

		song := Song{SourceID: id, Title: title}
		contributors := make(map[string]struct{})
		lists := [3][]string{rec.Lyricists, rec.Composers, rec.Arrangers}
		for _, role := range allRoles {
			var kept []string
			for _, raw := range lists[role] {
				name := cleanName(raw)
				if name == "" {
					report.SkippedNames++
					continue
				}
				key := foldName(name)
				contributors[key] = struct{}{}
				acc := person(key, name)
				acc.roles[role][id] = struct{}{}
				acc.songs[id] = struct{}{}
				kept = append(kept, name)
			}
			switch role {
			case RoleLyricist:
				song.Lyricists = kept
			case RoleComposer:
				song.Composers = kept
			case RoleArranger:
				song.Arrangers = kept
			}
		}
		for _, raw := range rec.Tags {
			name := cleanName(raw)
			if name == "" {
				report.SkippedNames++
				continue
			}
			tag(foldName(name), name).songs[id] = struct{}{}
			song.Tags = append(song.Tags, name)
		}
		songs = append(songs, newItem("song:"+id, title, len(contributors), song))
	}

	for _, raw := range cat.People {
		name := cleanName(raw)
		if name == "" {
			report.SkippedPeople++
			continue
		}
		if _, ok := people[foldName(name)]; !ok {
			// a person without any role on a song has an empty role set
			report.SkippedPeople++
		}
	}

	for _, raw := range cat.Tags {
		name := cleanName(raw)
		if name == "" {
			report.SkippedTags++
			continue
		}
		tag(foldName(name), name)
	}

	reg := &Registry{index: make(map[string]int)}
	for _, it := range songs {
		reg.add(it)
	}
	for _, key := range personOrder {
		acc := people[key]
		var roles []RoleCount
		for _, role := range allRoles {
			if n := len(acc.roles[role]); n > 0 {
				roles = append(roles, RoleCount{Role: role, Songs: n})
			}
		}
		reg.add(newItem("person:"+key, acc.name, len(acc.songs), Person{Roles: roles}))
	}
	for _, key := range tagOrder {
		acc := tags[key]
		reg.add(newItem("tag:"+key, acc.name, len(acc.songs), Tag{}))
	}

	return reg, report
}

func (r *Registry) add(it Item) {
	r.index[it.ID] = len(r.items)
	r.items = append(r.items, it)
	r.counts.Add(it.Type, 1)
	if it.RelatedCount > r.maxRelated {
		r.maxRelated = it.RelatedCount
	}
}

func (r *Registry) Len() int { return len(r.items) }

// Items returns a copy of the pool in build order: songs, people, tags.
func (r *Registry) Items() []Item {
	out := make([]Item, len(r.items))
	copy(out, r.items)
	return out
}

// At returns the i-th item in build order.
func (r *Registry) At(i int) Item { return r.items[i] }

func (r *Registry) Lookup(id string) (Item, bool) {
	i, ok := r.index[id]
	if !ok {
		return Item{}, false
	}
	return r.items[i], true
}

func (r *Registry) MaxRelated() int { return r.maxRelated }

func (r *Registry) CountByType() TypeCounts { return r.counts }

// PresentTypes lists the types with at least one item, in round-robin order.
func (r *Registry) PresentTypes() []Type {
	var out []Type
	for _, t := range AllTypes {
		if r.counts.Get(t) > 0 {
			out = append(out, t)
		}
	}
	return out
}

func cleanName(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func foldName(s string) string {
	return strings.ToLower(s)
}
