// Command shadowdemo simulates an interactive renderer drawing shadow
// volumes through the q3 shadow volume cache, and reports cache behavior.
//
// The renderer is headless: buffers live in host memory. Geometries are
// unit squares scattered on a grid, each casting a volume from every
// light. Geometries are edited and lights moved periodically to exercise
// staleness.
//
// Usage:
//
//	shadowdemo [-config demo.toml] [-budget 64] [-frames 100] [-v]
package main

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"

	"github.com/gogpu/q3"
	"github.com/gogpu/q3/gpubuf"
	"github.com/gogpu/q3/gpusharing"
	"github.com/gogpu/q3/object"
	"github.com/gogpu/q3/shadowvol"
)

func main() {
	cfg, err := parseArgs(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}
	if cfg.Verbose {
		q3.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	stats, err := run(cfg, os.Stdout)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("%d frames: %d hits, %d misses, %d stale, %d evicted, %d volumes in %d bytes",
		cfg.Frames, stats.Hits, stats.Misses, stats.Stale, stats.Evictions, stats.Volumes, stats.TotalBytes)
}

// scene is the simulated world.
type scene struct {
	geoms  []*object.Geometry
	lights []*object.Light
}

func newScene(cfg config) *scene {
	s := &scene{}
	for i := range cfg.Geometries {
		g := object.NewGeometry()
		x, z := float32(i%10)*3, float32(i/10)*3
		g.LocalToWorld = q3.Translate4x4(x, 0, z)
		if i%4 == 0 {
			// Per-vertex shade values for every other geometry.
			_ = g.SetProperty(object.PropertyCustomTextureCoordinates, &object.CustomTextureCoordinates{
				TextureUnit:    1,
				NumPoints:      4,
				CoordsPerPoint: 1,
				Coords:         []float32{0, 0.25, 0.5, 1},
			})
		}
		s.geoms = append(s.geoms, g)
	}
	for i := range cfg.Lights {
		if i == 0 {
			s.lights = append(s.lights, object.NewDirectionalLight(q3.Pt3(0.3, -1, 0.2)))
			continue
		}
		s.lights = append(s.lights, object.NewPointLight(q3.Pt3(float32(i)*5, 10, 0)))
	}
	return s
}

// run simulates cfg.Frames frames and returns the final cache statistics.
func run(cfg config, out io.Writer) (shadowvol.Stats, error) {
	rec := gpubuf.NewRecorder()
	rec.DropCalls = true
	ctx, err := gpusharing.NewContext(rec, nil, nil)
	if err != nil {
		return shadowvol.Stats{}, err
	}
	defer ctx.Close()

	m := shadowvol.NewManager()
	s := newScene(cfg)

	for frame := range cfg.Frames {
		if cfg.EditEvery > 0 && frame > 0 && frame%cfg.EditEvery == 0 {
			g := s.geoms[(frame/cfg.EditEvery)%len(s.geoms)]
			if err := g.SetTransform(g.LocalToWorld.Multiply(q3.RotateZ4x4(0.1))); err != nil {
				return shadowvol.Stats{}, err
			}
		}
		if cfg.MoveLightEvery > 0 && frame > 0 && frame%cfg.MoveLightEvery == 0 {
			l := s.lights[(frame/cfg.MoveLightEvery)%len(s.lights)]
			p := l.Position()
			p.X += 0.5
			if err := l.SetPosition(p); err != nil {
				return shadowvol.Stats{}, err
			}
		}

		m.StartFrame(ctx, cfg.BudgetKB)
		var built int
		for _, g := range s.geoms {
			for _, l := range s.lights {
				pos, ok := l.LocalPosition(g)
				if !ok {
					continue
				}
				if m.RenderShadowVolume(ctx, g, l, pos) {
					continue
				}
				points, numTri, numQuads, indices := squareVolume(pos)
				if err := m.AddShadowVolume(ctx, g, l, pos, points, 3*numTri, 4*numQuads, indices); err != nil {
					return shadowvol.Stats{}, fmt.Errorf("frame %d: %w", frame, err)
				}
				built++
			}
		}
		m.Flush(ctx)

		if cfg.Verbose {
			st, _ := m.Stats(ctx)
			fmt.Fprintf(out, "frame %3d: built %3d, %4d volumes, %7d bytes, %d GPU bytes\n",
				frame, built, st.Volumes, st.TotalBytes, rec.Allocated())
		}
	}

	st, _ := m.Stats(ctx)
	return st, nil
}

// squareVolume builds the shadow volume of the unit square in the XZ
// plane cast by a light at localLightPos.
//
// The square's corners are followed by their extrusions to infinity. For
// a directional light all extrusions meet in one point, so the sides are
// triangles; otherwise they are quads.
func squareVolume(localLightPos q3.RationalPoint4D) (points []q3.RationalPoint4D, numTri, numQuads int, indices []uint32) {
	corners := [4]q3.Point3D{
		q3.Pt3(0, 0, 0), q3.Pt3(1, 0, 0), q3.Pt3(1, 0, 1), q3.Pt3(0, 0, 1),
	}
	for _, c := range corners {
		points = append(points, c.Rational())
	}

	// Front cap.
	indices = append(indices, 0, 1, 2, 0, 2, 3)
	numTri = 2

	if localLightPos.IsInfinite() {
		points = append(points, q3.RationalPoint4D{X: -localLightPos.X, Y: -localLightPos.Y, Z: -localLightPos.Z})
		for i := range uint32(4) {
			indices = append(indices, i, (i+1)%4, 4)
		}
		numTri += 4
		return points, numTri, 0, indices
	}

	l := localLightPos.Point3D()
	for _, c := range corners {
		d := c.Sub(l)
		points = append(points, q3.RationalPoint4D{X: d.X, Y: d.Y, Z: d.Z})
	}
	for i := range uint32(4) {
		j := (i + 1) % 4
		indices = append(indices, i, j, j+4, i+4)
	}
	return points, numTri, 4, indices
}
