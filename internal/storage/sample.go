package storage

import (
	"strconv"

	"github.com/san-kum/lyricfield/internal/engine"
)

// Sample is one recorded row of a run.
type Sample struct {
	Time            float64 `json:"time"`
	Bubbles         int     `json:"bubbles"`
	Displayed       int     `json:"displayed"`
	Songs           int     `json:"songs"`
	People          int     `json:"people"`
	Tags            int     `json:"tags"`
	Selections      int     `json:"selections"`
	ForcedRotations int     `json:"forcedRotations"`
	CompletedCycles int     `json:"completedCycles"`
	Unresolved      int     `json:"unresolved"`
}

// Columns lists the CSV columns after "time", in file order.
var Columns = []string{
	"bubbles", "displayed", "songs", "people", "tags",
	"selections", "forced_rotations", "completed_cycles", "unresolved",
}

func SampleFrom(f engine.Frame) Sample {
	s := f.Stats
	return Sample{
		Time:            f.Time,
		Bubbles:         len(f.Bubbles),
		Displayed:       s.Displayed,
		Songs:           s.DisplayedByType.Song,
		People:          s.DisplayedByType.Person,
		Tags:            s.DisplayedByType.Tag,
		Selections:      s.Selections,
		ForcedRotations: s.ForcedRotations,
		CompletedCycles: s.CompletedCycles,
		Unresolved:      f.Collision.Unresolved,
	}
}

func (s Sample) values() []int {
	return []int{
		s.Bubbles, s.Displayed, s.Songs, s.People, s.Tags,
		s.Selections, s.ForcedRotations, s.CompletedCycles, s.Unresolved,
	}
}

// Column returns the named column as a float.
func (s Sample) Column(name string) (float64, bool) {
	if name == "time" {
		return s.Time, true
	}
	for i, c := range Columns {
		if c == name {
			return float64(s.values()[i]), true
		}
	}
	return 0, false
}

func (s Sample) record() []string {
	row := []string{strconv.FormatFloat(s.Time, 'f', 6, 64)}
	for _, v := range s.values() {
		row = append(row, strconv.Itoa(v))
	}
	return row
}

func parseSample(record []string) (Sample, bool) {
	if len(record) != len(Columns)+1 {
		return Sample{}, false
	}
	t, err := strconv.ParseFloat(record[0], 64)
	if err != nil {
		return Sample{}, false
	}
	vals := make([]int, len(Columns))
	for i := range Columns {
		v, err := strconv.Atoi(record[i+1])
		if err != nil {
			return Sample{}, false
		}
		vals[i] = v
	}
	return Sample{
		Time: t, Bubbles: vals[0], Displayed: vals[1], Songs: vals[2], People: vals[3], Tags: vals[4],
		Selections: vals[5], ForcedRotations: vals[6], CompletedCycles: vals[7], Unresolved: vals[8],
	}, true
}

// Recorder is an engine observer keeping every n-th frame as a Sample.
type Recorder struct {
	every  int
	frames int
	rows   []Sample
}

func NewRecorder(every int) *Recorder {
	if every < 1 {
		every = 1
	}
	return &Recorder{every: every}
}

func (r *Recorder) OnFrame(f engine.Frame) {
	if r.frames%r.every == 0 {
		r.rows = append(r.rows, SampleFrom(f))
	}
	r.frames++
}

func (r *Recorder) Samples() []Sample { return r.rows }
