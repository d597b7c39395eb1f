package tracker_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/lyricfield/internal/content"
	"github.com/san-kum/lyricfield/internal/dynamo"
	"github.com/san-kum/lyricfield/internal/tracker"
)

func TestTracker(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Tracker Suite")
}

var _ = Describe("Tracker rotation", func() {
	var (
		tr     *tracker.Tracker
		shown  []content.Item
		params dynamo.Params
	)

	selectAndTrack := func() content.Item {
		it, ok := tr.SelectNextContent()
		Expect(ok).To(BeTrue())
		Expect(tr.TrackDisplayedItem(it.ID, "bubble-"+it.ID, it.Type)).To(BeTrue())
		return it
	}

	BeforeEach(func() {
		params = dynamo.DefaultParams()
		params.MaxDisplayedItems = 3
		tr = tracker.New(params, tracker.WithSeed(42))
		report := tr.Initialize(content.Catalog{Tags: []string{"dawn", "dusk", "noon"}})
		Expect(report.Skipped()).To(BeZero())
		Expect(tr.TotalContent()).To(Equal(3))

		shown = nil
		for i := 0; i < 3; i++ {
			shown = append(shown, selectAndTrack())
		}
	})

	It("shows every item once per cycle", func() {
		ids := map[string]bool{}
		for _, it := range shown {
			ids[it.ID] = true
		}
		Expect(ids).To(HaveLen(3))
		Expect(tr.Stats().ItemsInCurrentCycle).To(Equal(3))
		Expect(tr.Stats().ForcedRotations).To(BeZero())
	})

	Context("when every item is still displayed", func() {
		It("forces a rotation instead of giving up early", func() {
			_, ok := tr.SelectNextContent()
			Expect(ok).To(BeFalse())

			stats := tr.Stats()
			Expect(stats.ForcedRotations).To(Equal(1))
			Expect(stats.CompletedCycles).To(Equal(1))
			Expect(stats.CurrentCycle).To(Equal(2))
			Expect(stats.ItemsInCurrentCycle).To(BeZero())
			Expect(stats.Displayed).To(Equal(3))
		})

		It("does not rotate an already empty cycle again", func() {
			tr.SelectNextContent()
			tr.SelectNextContent()
			Expect(tr.Stats().ForcedRotations).To(Equal(1))
		})
	})

	Context("when an item is untracked after the rotation", func() {
		It("resumes normal selection", func() {
			tr.SelectNextContent()
			freed := shown[1]
			tr.UntrackDisplayedItem("bubble-" + freed.ID)

			it, ok := tr.SelectNextContent()
			Expect(ok).To(BeTrue())
			Expect(it.ID).To(Equal(freed.ID))

			stats := tr.Stats()
			Expect(stats.ForcedRotations).To(Equal(1))
			Expect(stats.ItemsInCurrentCycle).To(Equal(1))
		})
	})

	Context("with a larger pool", func() {
		It("keeps exposure across types roughly even", func() {
			cat := content.Catalog{
				Songs: []content.SongRecord{
					{ID: "1", Title: "A", Lyricists: []string{"P1"}, Tags: []string{"t1"}},
					{ID: "2", Title: "B", Lyricists: []string{"P2"}, Tags: []string{"t2"}},
					{ID: "3", Title: "C", Lyricists: []string{"P3"}, Tags: []string{"t3"}},
				},
			}
			tr = tracker.New(dynamo.DefaultParams(), tracker.WithSeed(9))
			tr.Initialize(cat)

			for i := 0; i < 90; i++ {
				_, ok := tr.SelectNextContent()
				Expect(ok).To(BeTrue())
			}
			exp := tr.Stats().ExposureByType
			Expect(exp.Total()).To(Equal(90))
			for _, n := range []int{exp.Song, exp.Person, exp.Tag} {
				Expect(n).To(BeNumerically("~", 30, 6))
			}
			Expect(tr.Stats().ForcedRotations).To(BeNumerically(">=", 9))
		})
	})
})
