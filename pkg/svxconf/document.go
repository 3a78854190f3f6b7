package svxconf

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/ini.v1"
)

// DefaultConfigPath is where svxlink installs its configuration.
const DefaultConfigPath = "/etc/svxlink/svxlink.conf"

// WriteMode selects how Document.Write opens the target file.
type WriteMode int

const (
	// ModeAppend appends the serialized document to the file,
	// creating it if needed. This mirrors svxlink's habit of stacking
	// generated sections onto an existing config.
	ModeAppend WriteMode = iota
	// ModeTruncate replaces the file contents.
	ModeTruncate
)

func init() {
	// svxlink.conf carries KEY=VALUE without padding around '='.
	ini.PrettyFormat = false
}

// Document is an in-memory svxlink configuration bound to its source path.
// It is a thin layer over the INI store; all parsing and serialization is
// the store's.
type Document struct {
	path string
	file *ini.File
}

// Load reads and parses the configuration at path. No existence check is
// done here; a missing, unreadable or malformed file surfaces the store's
// error.
func Load(path string) (*Document, error) {
	f, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return &Document{path: path, file: f}, nil
}

// Path returns the path the document was loaded from.
func (d *Document) Path() string {
	return d.path
}

// SectionNames returns the document's section names in order, without the
// store's implicit default section.
func (d *Document) SectionNames() []string {
	names := make([]string, 0, len(d.file.Sections()))
	for _, sec := range d.file.Sections() {
		if sec.Name() == ini.DefaultSection {
			continue
		}
		names = append(names, sec.Name())
	}
	return names
}

// Get returns the raw value of option in section, untyped and unvalidated.
// Both section and option are matched as the store has them.
func (d *Document) Get(section, option string) (string, error) {
	sec, err := d.file.GetSection(section)
	if err != nil {
		return "", fmt.Errorf("section not found: %s", section)
	}
	key, err := sec.GetKey(option)
	if err != nil {
		return "", fmt.Errorf("option %s not found in section %s", option, section)
	}
	return key.Value(), nil
}

// RemoteNodes scans the document and builds a NetNode for every section
// whose TYPE option is exactly "Net". Sections without a TYPE option are
// skipped silently. A qualifying section carrying an option outside the
// Net allow-list surfaces that ValidationError.
func (d *Document) RemoteNodes() ([]*NetNode, error) {
	var nodes []*NetNode
	for _, sec := range d.file.Sections() {
		if sec.Name() == ini.DefaultSection {
			continue
		}
		typ, err := sec.GetKey("TYPE")
		if err != nil || typ.Value() != TypeNet {
			continue
		}

		items := make([]Item, 0, len(sec.Keys()))
		for _, key := range sec.Keys() {
			items = append(items, Item{Name: key.Name(), Value: key.Value()})
		}

		node, err := NewNetNode(sec.Name(), items)
		if err != nil {
			return nil, fmt.Errorf("section %q: %w", sec.Name(), err)
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}

// AddSection creates a new section named after the record and copies the
// record's items into it in order. It fails if the section already exists.
// A failure while copying leaves the section partially populated; callers
// that need all-or-nothing should reload the document.
func (d *Document) AddSection(rec Record) error {
	name := rec.SectionName()
	if _, err := d.file.GetSection(name); err == nil {
		return fmt.Errorf("section %q already exists", name)
	}

	sec, err := d.file.NewSection(name)
	if err != nil {
		return fmt.Errorf("failed to add section %q: %w", name, err)
	}

	for _, item := range rec.Items() {
		if _, err := sec.NewKey(item.Name, item.Value); err != nil {
			return fmt.Errorf("failed to set %s in section %q: %w", item.Name, name, err)
		}
	}
	return nil
}

// WriteTo serializes the whole document to w in INI form.
func (d *Document) WriteTo(w io.Writer) error {
	if _, err := d.file.WriteTo(w); err != nil {
		return fmt.Errorf("failed to serialize document: %w", err)
	}
	return nil
}

// Write serializes the whole document to fileName under the given mode.
// There is no atomic replace here; callers wanting crash safety should
// back the file up first (see pkg/backup).
func (d *Document) Write(fileName string, mode WriteMode) error {
	flags := os.O_WRONLY | os.O_CREATE
	switch mode {
	case ModeAppend:
		flags |= os.O_APPEND
	case ModeTruncate:
		flags |= os.O_TRUNC
	default:
		return fmt.Errorf("unknown write mode %d", mode)
	}

	f, err := os.OpenFile(fileName, flags, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", fileName, err)
	}

	if _, err := d.file.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", fileName, err)
	}
	return f.Close()
}
