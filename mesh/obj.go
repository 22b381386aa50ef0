package mesh

import (
	"bufio"
	"fmt"
	"image/color"
	"io"
	"os"

	"gonum.org/v1/gonum/spatial/r3"
)

// OBJWriter is a Sink that writes each published mesh as Wavefront OBJ.
// Vertex colors are emitted as the common "v x y z r g b" extension.
type OBJWriter struct {
	w io.Writer
}

// NewOBJWriter returns a sink writing to w.
func NewOBJWriter(w io.Writer) *OBJWriter {
	return &OBJWriter{w: w}
}

// Publish implements Sink.
func (o *OBJWriter) Publish(vertices []r3.Vec, indices []int32, normals []r3.Vec, uvs []UV, colors []color.RGBA, tangents []Tangent) error {
	bw := bufio.NewWriter(o.w)

	fmt.Fprintf(bw, "# metaballs: %d vertices, %d triangles\n", len(vertices), len(indices)/3)
	for i, v := range vertices {
		if i < len(colors) {
			c := colors[i]
			fmt.Fprintf(bw, "v %g %g %g %.4f %.4f %.4f\n", v.X, v.Y, v.Z,
				float64(c.R)/255, float64(c.G)/255, float64(c.B)/255)
		} else {
			fmt.Fprintf(bw, "v %g %g %g\n", v.X, v.Y, v.Z)
		}
	}
	for _, uv := range uvs {
		fmt.Fprintf(bw, "vt %g %g\n", uv.U, uv.V)
	}
	for _, n := range normals {
		fmt.Fprintf(bw, "vn %g %g %g\n", n.X, n.Y, n.Z)
	}

	withUV := len(uvs) == len(vertices)
	withNormal := len(normals) == len(vertices)
	for i := 0; i+2 < len(indices); i += 3 {
		bw.WriteString("f")
		for _, idx := range indices[i : i+3] {
			k := idx + 1
			switch {
			case withUV && withNormal:
				fmt.Fprintf(bw, " %d/%d/%d", k, k, k)
			case withNormal:
				fmt.Fprintf(bw, " %d//%d", k, k)
			case withUV:
				fmt.Fprintf(bw, " %d/%d", k, k)
			default:
				fmt.Fprintf(bw, " %d", k)
			}
		}
		bw.WriteString("\n")
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("writing obj: %w", err)
	}
	return nil
}

// WriteOBJFile writes m to path.
func WriteOBJFile(path string, m *Mesh) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating obj file: %w", err)
	}
	if err := m.PublishTo(NewOBJWriter(f)); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing obj file: %w", err)
	}
	return nil
}
