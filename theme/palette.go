package theme

import (
	"bufio"
	"embed"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Southclaws/fault"
	"github.com/Southclaws/fault/fmsg"
)

//go:embed palettes/*.gpl
var builtin embed.FS

type RGB [3]uint8

type Palette struct {
	Name   string
	Colors []RGB
}

// LoadGPL reads a GIMP palette file. Names without a path separator are
// looked up among the built-in palettes first.
func LoadGPL(path string) (*Palette, error) {
	if !strings.ContainsRune(path, os.PathSeparator) {
		if f, err := builtin.Open("palettes/" + strings.TrimSuffix(path, ".gpl") + ".gpl"); err == nil {
			defer f.Close()
			return ParseGPL(f, path)
		}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fault.Wrap(err, fmsg.With("open palette "+path))
	}
	defer f.Close()
	return ParseGPL(f, path)
}

// ParseGPL parses GIMP palette text. name is used in errors only.
func ParseGPL(r io.Reader, name string) (*Palette, error) {
	p := &Palette{}
	scanner := bufio.NewScanner(r)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "Name:") {
			p.Name = strings.TrimSpace(strings.TrimPrefix(line, "Name:"))
			continue
		}

		// Skip headers and comments
		if line == "" || line[0] == '#' || strings.HasPrefix(line, "GIMP") || strings.HasPrefix(line, "Columns") {
			continue
		}

		// first 3 fields are R G B
		fields := strings.Fields(line)
		if len(fields) >= 3 {
			r, err1 := strconv.Atoi(fields[0])
			g, err2 := strconv.Atoi(fields[1])
			b, err3 := strconv.Atoi(fields[2])
			if err1 == nil && err2 == nil && err3 == nil {
				p.Colors = append(p.Colors, RGB{uint8(r), uint8(g), uint8(b)})
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fault.Wrap(err, fmsg.With("read palette "+name))
	}

	if len(p.Colors) == 0 {
		return nil, fault.New("no colors found in palette " + name)
	}

	return p, nil
}

// Lookup returns interpolated color for normalized value 0-1
func (p *Palette) Lookup(norm float64) RGB {
	if norm <= 0 {
		return p.Colors[0]
	}
	if norm >= 1 {
		return p.Colors[len(p.Colors)-1]
	}

	pos := norm * float64(len(p.Colors)-1)
	i := int(pos)
	frac := pos - float64(i)

	c0 := p.Colors[i]
	c1 := p.Colors[i+1]

	return RGB{
		lerp(c0[0], c1[0], frac),
		lerp(c0[1], c1[1], frac),
		lerp(c0[2], c1[2], frac),
	}
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(float64(a)*(1-t) + float64(b)*t)
}
