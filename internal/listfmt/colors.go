// Package listfmt renders archive contents the way `ls -l` renders a
// directory: grouped by directory, colored per LS_COLORS, with
// directories holding at most one child flattened into their parent.
package listfmt

import (
	"os"
	"strconv"
	"strings"

	archreader "github.com/desertwitch/archreader"
	"github.com/fatih/color"
)

// lsType extends [archreader.FileType] with the three pseudo-types
// LS_COLORS also assigns colors to: the reset sequence, a dangling
// ("orphan") symlink target, and an executable regular file.
type lsType uint8

const (
	lsNone lsType = iota
	lsNotFound
	lsRegular
	lsDirectory
	lsSymlink
	lsBlock
	lsCharacter
	lsFIFO
	lsSocket
	lsUnknown
	lsReset
	lsOrphan
	lsExecutable
)

func lsTypeFrom(t archreader.FileType) lsType {
	switch t {
	case archreader.TypeNotFound:
		return lsNotFound
	case archreader.TypeRegular:
		return lsRegular
	case archreader.TypeDirectory:
		return lsDirectory
	case archreader.TypeSymlink:
		return lsSymlink
	case archreader.TypeBlock:
		return lsBlock
	case archreader.TypeCharacter:
		return lsCharacter
	case archreader.TypeFIFO:
		return lsFIFO
	case archreader.TypeSocket:
		return lsSocket
	case archreader.TypeNone, archreader.TypeUnknown:
		return lsUnknown
	default:
		return lsUnknown
	}
}

// builtinLSColors is the fallback palette used when LS_COLORS is unset,
// the same defaults coreutils ships.
const builtinLSColors = "rs=0:di=01;34:ln=01;36:mh=00:pi=40;33:so=01;35:" +
	"do=01;35:bd=40;33;01:cd=40;33;01:or=40;31;01:mi=00:su=37;41:sg=30;43:" +
	"ca=30;41:tw=30;42:ow=34;42:st=37;44:ex=01;32"

var lsColorKeys = map[string]lsType{
	"bd": lsBlock,
	"cd": lsCharacter,
	"di": lsDirectory,
	"ex": lsExecutable,
	"ln": lsSymlink,
	"mi": lsNotFound,
	"no": lsRegular,
	"or": lsOrphan,
	"pi": lsFIFO,
	"rs": lsReset,
	"so": lsSocket,
}

// Painter colors filenames for display, the way `ls --color` does.
type Painter struct {
	types map[lsType]*color.Color
	exts  map[string]*color.Color
	reset string
	plain bool
}

// NewPainter builds a Painter from the LS_COLORS environment variable,
// falling back to the built-in default palette when it is unset. When
// plain is true, every Sprint call returns its input unmodified.
func NewPainter(plain bool) *Painter {
	p := &Painter{
		types: make(map[lsType]*color.Color),
		exts:  make(map[string]*color.Color),
		plain: plain,
	}

	env := os.Getenv("LS_COLORS")
	if env == "" {
		env = builtinLSColors
	}

	p.parse(env)

	if c, ok := p.types[lsReset]; ok {
		p.reset = c.Sprint("")
	}

	return p
}

func (p *Painter) parse(env string) {
	for _, field := range strings.Split(env, ":") {
		name, value, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}

		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if name == "" || value == "" {
			continue
		}

		if t, ok := lsColorKeys[name]; ok {
			p.types[t] = colorFromSGR(value)

			continue
		}

		if strings.HasPrefix(name, "*.") {
			p.exts[name[1:]] = colorFromSGR(value)
		}
	}
}

// colorFromSGR builds a [color.Color] from a semicolon-separated SGR
// attribute list, as LS_COLORS entries are written (e.g. "01;34").
func colorFromSGR(sgr string) *color.Color {
	parts := strings.Split(sgr, ";")
	attrs := make([]color.Attribute, 0, len(parts))

	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			continue
		}

		attrs = append(attrs, color.Attribute(n))
	}

	c := color.New(attrs...)
	c.EnableColor()

	return c
}

// findColor resolves the color to use for printed, a file type, and
// its permission bits: an exact type match, falling back to the
// executable color when any execute bit is set (whatever the type),
// falling back to an extension match, falling back to no color at all.
func (p *Painter) findColor(printed string, typ lsType, perms uint16) *color.Color {
	const anyExec = 0o111

	c, ok := p.types[typ]
	if !ok && perms&anyExec != 0 {
		c, ok = p.types[lsExecutable]
	}
	if ok {
		return c
	}

	dot := strings.LastIndexByte(printed, '.')
	slash := strings.LastIndexByte(printed, '/')

	if dot < 0 {
		return nil
	}
	if slash < 0 {
		if dot == 0 {
			return nil
		}
	} else if dot == slash+1 {
		return nil
	}

	if c, ok := p.exts[printed[dot:]]; ok {
		return c
	}

	return nil
}

// Sprint colors name per typ/perms, as [Painter.findColor] resolves it.
func (p *Painter) Sprint(name string, typ archreader.FileType, perms uint16) string {
	if p.plain {
		return name
	}

	c := p.findColor(name, lsTypeFrom(typ), perms)
	if c == nil {
		return name
	}

	return c.Sprint(name)
}
