// meshconv converts Wavefront OBJ meshes to the rangefire model table format.
//
// Usage:
//
//	go run ./cmd/meshconv [-out path] [-append] [-scale s] name=file.obj[:glyph[:color]] ...
//
// Polygons are fan-triangulated; only vertex positions are kept.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rangefire/rangefire/internal/data"
)

// ---------------------------------------------------------------------------
// OBJ parsing
// ---------------------------------------------------------------------------

// parseOBJ reads vertex positions and faces from r. Face indices may be
// negative (relative to the vertices read so far) and may carry /vt/vn parts.
func parseOBJ(r io.Reader, scale float32) (vertices []float32, indices []uint32, err error) {
	sc := bufio.NewScanner(r)
	line := 0
	count := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, nil, fmt.Errorf("line %d: vertex needs 3 coordinates", line)
			}
			for _, f := range fields[1:4] {
				v, err := strconv.ParseFloat(f, 32)
				if err != nil {
					return nil, nil, fmt.Errorf("line %d: %w", line, err)
				}
				vertices = append(vertices, float32(v)*scale)
			}
			count++
		case "f":
			if len(fields) < 4 {
				return nil, nil, fmt.Errorf("line %d: face needs 3 vertices", line)
			}
			poly := make([]uint32, 0, len(fields)-1)
			for _, f := range fields[1:] {
				idx, err := faceIndex(f, count)
				if err != nil {
					return nil, nil, fmt.Errorf("line %d: %w", line, err)
				}
				poly = append(poly, idx)
			}
			for i := 1; i+1 < len(poly); i++ {
				indices = append(indices, poly[0], poly[i], poly[i+1])
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, nil, err
	}
	if len(indices) == 0 {
		return nil, nil, fmt.Errorf("no faces")
	}
	return vertices, indices, nil
}

// faceIndex turns one OBJ face reference into a zero-based vertex index.
func faceIndex(ref string, count int) (uint32, error) {
	if i := strings.IndexByte(ref, '/'); i >= 0 {
		ref = ref[:i]
	}
	n, err := strconv.Atoi(ref)
	if err != nil {
		return 0, fmt.Errorf("bad face index %q", ref)
	}
	if n < 0 {
		n = count + n + 1
	}
	if n < 1 || n > count {
		return 0, fmt.Errorf("face index %d out of range (1..%d)", n, count)
	}
	return uint32(n - 1), nil
}

// parseModelArg splits name=file.obj[:glyph[:color]].
func parseModelArg(arg string) (name, path, glyph, color string, err error) {
	name, rest, ok := strings.Cut(arg, "=")
	if !ok || name == "" || rest == "" {
		return "", "", "", "", fmt.Errorf("bad model argument %q, want name=file.obj[:glyph[:color]]", arg)
	}
	parts := strings.SplitN(rest, ":", 3)
	path = parts[0]
	if len(parts) > 1 {
		glyph = parts[1]
	}
	if len(parts) > 2 {
		color = parts[2]
	}
	return name, path, glyph, color, nil
}

// ---------------------------------------------------------------------------
// Output
// ---------------------------------------------------------------------------

func convert(arg string, scale float32) (data.ModelEntry, error) {
	name, path, glyph, color, err := parseModelArg(arg)
	if err != nil {
		return data.ModelEntry{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return data.ModelEntry{}, err
	}
	defer f.Close()
	vertices, indices, err := parseOBJ(f, scale)
	if err != nil {
		return data.ModelEntry{}, fmt.Errorf("%s: %w", path, err)
	}
	return data.ModelEntry{Name: name, Glyph: glyph, Color: color, Vertices: vertices, Indices: indices}, nil
}

// merge replaces entries of the same name in existing and appends new ones.
func merge(existing, added []data.ModelEntry) []data.ModelEntry {
	pos := make(map[string]int, len(existing))
	for i, e := range existing {
		pos[e.Name] = i
	}
	for _, e := range added {
		if i, ok := pos[e.Name]; ok {
			existing[i] = e
			continue
		}
		pos[e.Name] = len(existing)
		existing = append(existing, e)
	}
	return existing
}

func writeYAML(path string, entries []data.ModelEntry) error {
	out, err := yaml.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	// Round-trip through the loader so a bad table is never written.
	if _, err := data.ParseModelTable(out); err != nil {
		return err
	}
	if path == "-" {
		_, err = os.Stdout.Write(out)
		return err
	}
	return os.WriteFile(path, out, 0o644)
}

func readExisting(path string) ([]data.ModelEntry, error) {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var entries []data.ModelEntry
	if err := yaml.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return entries, nil
}

func main() {
	out := flag.String("out", "-", "model table to write (- for stdout)")
	appendTo := flag.Bool("append", false, "merge into the existing table at -out")
	scale := flag.Float64("scale", 1, "uniform scale applied to positions")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintln(os.Stderr, "usage: meshconv [-out path] [-append] [-scale s] name=file.obj[:glyph[:color]] ...")
		os.Exit(1)
	}

	var entries []data.ModelEntry
	if *appendTo && *out != "-" {
		existing, err := readExisting(*out)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
			os.Exit(1)
		}
		entries = existing
	}

	added := make([]data.ModelEntry, 0, flag.NArg())
	for _, arg := range flag.Args() {
		e, err := convert(arg, float32(*scale))
		if err != nil {
			fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
			os.Exit(1)
		}
		fmt.Fprintf(os.Stderr, "  %s: %d vertices, %d triangles\n", e.Name, len(e.Vertices)/3, len(e.Indices)/3)
		added = append(added, e)
	}

	if err := writeYAML(*out, merge(entries, added)); err != nil {
		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		os.Exit(1)
	}
}
