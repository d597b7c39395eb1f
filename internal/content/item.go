package content

import (
	"fmt"
	"strings"
)

// Type is the content variant of an item.
type Type uint8

const (
	TypeSong Type = iota + 1
	TypePerson
	TypeTag
)

// AllTypes lists the variants in round-robin order.
var AllTypes = []Type{TypeSong, TypePerson, TypeTag}

func (t Type) String() string {
	switch t {
	case TypeSong:
		return "song"
	case TypePerson:
		return "person"
	case TypeTag:
		return "tag"
	}
	return "unknown"
}

func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "song":
		return TypeSong, nil
	case "person":
		return TypePerson, nil
	case "tag":
		return TypeTag, nil
	}
	return 0, fmt.Errorf("content: unknown type %q", s)
}

func (t Type) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *Type) UnmarshalText(b []byte) error {
	v, err := ParseType(string(b))
	if err != nil {
		return err
	}
	*t = v
	return nil
}

// Role is a contributor role on a song.
type Role uint8

const (
	RoleLyricist Role = iota
	RoleComposer
	RoleArranger
)

var allRoles = []Role{RoleLyricist, RoleComposer, RoleArranger}

func (r Role) String() string {
	switch r {
	case RoleLyricist:
		return "lyricist"
	case RoleComposer:
		return "composer"
	case RoleArranger:
		return "arranger"
	}
	return "unknown"
}

func ParseRole(s string) (Role, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, r := range allRoles {
		if r.String() == name {
			return r, nil
		}
	}
	return 0, fmt.Errorf("content: unknown role %q", s)
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (r *Role) UnmarshalText(b []byte) error {
	v, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = v
	return nil
}

// RoleCount is one role a person holds and the number of distinct songs
// they hold it on.
type RoleCount struct {
	Role  Role `json:"role"`
	Songs int  `json:"songs"`
}

// Kind is the variant payload of an item. It is sealed: only Song, Person
// and Tag implement it.
type Kind interface {
	kind() Type
}

type Song struct {
	SourceID  string
	Title     string
	Lyricists []string
	Composers []string
	Arrangers []string
	Tags      []string
}

type Person struct {
	Roles []RoleCount
}

type Tag struct{}

func (Song) kind() Type   { return TypeSong }
func (Person) kind() Type { return TypePerson }
func (Tag) kind() Type    { return TypeTag }

// Item is a normalized, selectable unit of content.
type Item struct {
	ID           string
	Type         Type
	Name         string
	RelatedCount int
	Kind         Kind
}

func newItem(id, name string, related int, k Kind) Item {
	return Item{ID: id, Type: k.kind(), Name: name, RelatedCount: related, Kind: k}
}

// Roles returns the role list of a person item and nil for other variants.
func (it Item) Roles() []RoleCount {
	return Match(it,
		func(Song) []RoleCount { return nil },
		func(p Person) []RoleCount { return append([]RoleCount(nil), p.Roles...) },
		func(Tag) []RoleCount { return nil },
	)
}

// Match dispatches on the item's variant. Every handler is required.
func Match[T any](it Item, song func(Song) T, person func(Person) T, tag func(Tag) T) T {
	switch k := it.Kind.(type) {
	case Song:
		return song(k)
	case Person:
		return person(k)
	case Tag:
		return tag(k)
	default:
		panic(fmt.Sprintf("content: item %q has unknown kind %T", it.ID, it.Kind))
	}
}

// TypeCounts tallies a quantity per content type.
type TypeCounts struct {
	Song   int `json:"song"`
	Person int `json:"person"`
	Tag    int `json:"tag"`
}

func (c *TypeCounts) Add(t Type, n int) {
	switch t {
	case TypeSong:
		c.Song += n
	case TypePerson:
		c.Person += n
	case TypeTag:
		c.Tag += n
	}
}

func (c TypeCounts) Get(t Type) int {
	switch t {
	case TypeSong:
		return c.Song
	case TypePerson:
		return c.Person
	case TypeTag:
		return c.Tag
	}
	return 0
}

func (c TypeCounts) Total() int { return c.Song + c.Person + c.Tag }
