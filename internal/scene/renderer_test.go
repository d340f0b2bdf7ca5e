package scene_test

import (
	"context"
	"strconv"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/navtrace/internal/geom"
	"github.com/san-kum/navtrace/internal/palette"
	"github.com/san-kum/navtrace/internal/scene"
	"github.com/san-kum/navtrace/internal/trace"
)

const seatDoc = `{
  "seats": [
    {"x": 0, "y": 0, "agent": [7, null, null], "nexts": [[1, 1]]},
    {"x": 1, "y": 0, "agent": [null, 7, null], "nexts": [[0, 1], [1, 1]]}
  ],
  "agents": {
    "7": [
      {"shape": [[-0.4,-0.4],[0.4,-0.4],[0.4,0.4],[-0.4,0.4],[-0.4,-0.4],null], "state": "n"},
      {"shape": [[0.6,-0.4],[1.4,-0.4],[1.4,0.4],[0.6,0.4],[0.6,-0.4],null,[0.9,0.1],[1.1,0.1],[1.0,0.3]], "state": "s"},
      null
    ]
  }
}`

const gridDoc = `[
  {"map": [[1, null], [null, null]], "agents": {"1": {"x": 0, "y": 0, "state": "m", "next": [1, 1, 0.5], "dest": [[1, 1], [0, 1]]}}},
  {"map": [[null, null], [null, 1]], "agents": {"1": {"x": 1, "y": 1, "state": "n"}, "2": {"x": 0, "y": 1, "state": "s", "next": [0, 0, 7]}}}
]`

func mustParse(doc string) *trace.Trace {
	tr, err := trace.Parse([]byte(doc))
	Expect(err).NotTo(HaveOccurred())
	return tr
}

func names(slots []scene.Slot) []string {
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.Drawable.Layer.String() + ":" + s.Drawable.Name
	}
	return out
}

var _ = Describe("Renderer", func() {
	var r *scene.Renderer

	BeforeEach(func() {
		r = scene.New(scene.DefaultConfig())
	})

	Describe("seat traces", func() {
		var tr *trace.Trace

		BeforeEach(func() {
			tr = mustParse(seatDoc)
		})

		It("puts the empty slot before the agents in the occupancy layer", func() {
			slots := r.OccupancyLayer(tr, 0)
			Expect(slots).To(HaveLen(2))
			Expect(slots[0].Drawable.Name).To(Equal("empty"))
			Expect(slots[0].Drawable.Style.Fill).To(Equal("#d0d0d0"))
			Expect(slots[0].Drawable.Paths).To(Equal(geom.Polygon{geom.UnitSquare(geom.Pt(1, 0))}))
			Expect(slots[1].Drawable.Name).To(Equal("7"))
			Expect(slots[1].Drawable.Paths).To(Equal(geom.Polygon{geom.UnitSquare(geom.Pt(0, 0))}))
		})

		It("traverses unit squares starting at the lower-left corner", func() {
			sq := r.OccupancyLayer(tr, 0)[1].Drawable.Paths[0]
			Expect(sq).To(Equal(geom.Subpath{
				{X: -0.5, Y: -0.5}, {X: -0.5, Y: 0.5}, {X: 0.5, Y: 0.5}, {X: 0.5, Y: -0.5}, {X: -0.5, Y: -0.5},
			}))
		})

		It("keeps a placeholder for an agent that occupies nothing", func() {
			slots := r.OccupancyLayer(tr, 2)
			Expect(slots[0].IsPlaceholder()).To(BeFalse())
			Expect(slots[0].Drawable.Paths).To(HaveLen(2))
			Expect(slots[1].IsPlaceholder()).To(BeTrue())
			Expect(slots[1].Drawable.Style.Fill).To(Equal(palette.Default().Color("7", palette.ShadeOccupancy)))
		})

		It("splits agent shapes at null points", func() {
			slots := r.AgentLayer(tr, 1)
			Expect(slots).To(HaveLen(1))
			Expect(slots[0].Drawable.Paths).To(HaveLen(2))
			Expect(slots[0].Drawable.Paths[1]).To(HaveLen(3))
		})

		It("styles the alternate state with a pattern and dotted outline", func() {
			alt := r.AgentLayer(tr, 0)[0].Drawable.Style
			Expect(alt.Pattern).To(Equal("x"))
			Expect(alt.Dash).To(Equal(scene.DashDot))

			plain := r.AgentLayer(tr, 1)[0].Drawable.Style
			Expect(plain.Pattern).To(BeEmpty())
			Expect(plain.Dash).To(Equal(scene.DashSolid))
			Expect(plain.Mode).To(Equal(scene.ModeOutline))
			Expect(plain.Opacity).To(Equal(0.8))
			Expect(plain.Fill).To(Equal(palette.Default().Color("7", palette.ShadeFill)))
			Expect(plain.Line).To(Equal(palette.Default().Color("7", palette.ShadeOutline)))
		})

		It("renders an absent record as a transparent placeholder", func() {
			s := r.AgentLayer(tr, 2)[0]
			Expect(s.IsPlaceholder()).To(BeTrue())
			Expect(s.Drawable.Paths).To(BeNil())
			Expect(s.Drawable.Style.Opacity).To(BeZero())
		})

		It("draws one arrow per non-degenerate adjacency", func() {
			bg := r.PathArrowLayer(tr)
			Expect(bg.Drawable.Name).To(Equal("path"))
			Expect(bg.Drawable.Style.Fill).To(Equal("#404040"))
			Expect(bg.Drawable.Paths).To(HaveLen(2))
			for _, a := range bg.Drawable.Paths {
				Expect(a).To(HaveLen(7))
			}
			Expect(r.Background(tr)).To(Equal(bg))
		})

		It("has no destination layer", func() {
			s, err := r.BuildScene(tr, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(s.Destinations).To(BeEmpty())
			Expect(names(s.Slots())).To(Equal([]string{
				"background:path", "occupancy:empty", "occupancy:7", "agents:7",
			}))
		})
	})

	Describe("grid traces", func() {
		var tr *trace.Trace

		BeforeEach(func() {
			tr = mustParse(gridDoc)
		})

		It("interpolates the marker towards the next cell", func() {
			s := r.AgentLayer(tr, 0)[0]
			Expect(s.IsPlaceholder()).To(BeFalse())
			b := s.Drawable.Paths.Bounds()
			Expect((b.Min.X + b.Max.X) / 2).To(BeNumerically("~", 0.5, 1e-9))
			Expect((b.Min.Y + b.Max.Y) / 2).To(BeNumerically("~", 0.5, 1e-9))
			Expect(s.Drawable.Paths[0]).To(HaveLen(17))
		})

		It("clamps progress past the next cell", func() {
			s := r.AgentLayer(tr, 1)[1]
			b := s.Drawable.Paths.Bounds()
			Expect((b.Min.X + b.Max.X) / 2).To(BeNumerically("~", 0, 1e-9))
			Expect((b.Min.Y + b.Max.Y) / 2).To(BeNumerically("~", 0, 1e-9))
		})

		It("draws diamonds when configured", func() {
			cfg := scene.DefaultConfig()
			cfg.Marker = scene.MarkerDiamond
			s := scene.New(cfg).AgentLayer(tr, 1)[0]
			Expect(s.Drawable.Paths[0]).To(Equal(geom.Diamond(geom.Pt(1, 1), 0.3)))
		})

		It("has no empty slot and skips unoccupied cells", func() {
			slots := r.OccupancyLayer(tr, 1)
			Expect(names(slots)).To(Equal([]string{"occupancy:1", "occupancy:2"}))
			Expect(slots[0].Drawable.Paths).To(Equal(geom.Polygon{geom.UnitSquare(geom.Pt(1, 1))}))
			Expect(slots[1].IsPlaceholder()).To(BeTrue())
		})

		It("marks one diamond per destination", func() {
			slots := r.DestinationLayer(tr, 0)
			Expect(slots).To(HaveLen(2))
			Expect(slots[0].Drawable.Paths).To(Equal(geom.Polygon{
				geom.Diamond(geom.Pt(1, 1), 0.15),
				geom.Diamond(geom.Pt(0, 1), 0.15),
			}))
			Expect(slots[0].Drawable.Style.Opacity).To(Equal(0.6))
			Expect(slots[1].IsPlaceholder()).To(BeTrue())
		})

		It("outlines the grid boundary", func() {
			bg := r.Background(tr)
			Expect(bg.Drawable.Style.Mode).To(Equal(scene.ModeOutline))
			Expect(bg.Drawable.Paths.Bounds()).To(Equal(geom.Rect{Min: geom.Pt(-0.5, -0.5), Max: geom.Pt(1.5, 1.5)}))
		})

		It("keeps an agent's slot index in every layer and frame", func() {
			scenes, err := r.BuildAllScenes(context.Background(), tr)
			Expect(err).NotTo(HaveOccurred())
			Expect(scenes).To(HaveLen(2))
			for _, s := range scenes {
				Expect(names(s.Slots())).To(Equal([]string{
					"background:boundary",
					"occupancy:1", "occupancy:2",
					"agents:1", "agents:2",
					"destinations:1", "destinations:2",
				}))
			}
		})
	})

	Describe("BuildScene", func() {
		It("rejects steps out of range", func() {
			tr := mustParse(gridDoc)
			_, err := r.BuildScene(tr, 2)
			Expect(err).To(MatchError(scene.ErrStepOutOfRange))
			_, err = r.BuildScene(tr, -1)
			Expect(err).To(MatchError(scene.ErrStepOutOfRange))
		})
	})

	Describe("BuildAllScenes", func() {
		var tr *trace.Trace

		BeforeEach(func() {
			var b strings.Builder
			b.WriteString("[")
			for t := 0; t < 100; t++ {
				if t > 0 {
					b.WriteString(",")
				}
				x := t % 4
				b.WriteString(`{"map": [`)
				for cx := 0; cx < 4; cx++ {
					if cx > 0 {
						b.WriteString(",")
					}
					if cx == x {
						b.WriteString(`[1]`)
					} else {
						b.WriteString(`[null]`)
					}
				}
				b.WriteString(`], "agents": {"1": {"x": ` + strconv.Itoa(x) + `, "y": 0, "state": "m"}}}`)
			}
			b.WriteString("]")
			tr = mustParse(b.String())
		})

		It("matches sequential BuildScene results", func() {
			scenes, err := r.BuildAllScenes(context.Background(), tr)
			Expect(err).NotTo(HaveOccurred())
			Expect(scenes).To(HaveLen(100))
			for t, s := range scenes {
				want, err := r.BuildScene(tr, t)
				Expect(err).NotTo(HaveOccurred())
				Expect(s).To(Equal(want))
				Expect(s.NumSlots()).To(Equal(scenes[0].NumSlots()))
			}
		})

		It("stops when the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			_, err := r.BuildAllScenes(ctx, tr)
			Expect(err).To(MatchError(context.Canceled))
		})
	})

	Describe("Bounds", func() {
		It("covers seats and agent shapes", func() {
			b := scene.Bounds(mustParse(seatDoc))
			Expect(b.Min).To(Equal(geom.Pt(-0.5, -0.5)))
			Expect(b.Max).To(Equal(geom.Pt(1.5, 0.5)))
		})
	})
})
