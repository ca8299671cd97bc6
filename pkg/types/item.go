package types

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// ItemKind classifies a filesystem entry
type ItemKind int

const (
	KindOther ItemKind = iota
	KindFile
	KindDirectory
)

func (k ItemKind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	default:
		return "other"
	}
}

// ItemMetadata is a read-only snapshot of one entry, taken immediately
// before rules are evaluated against it.
// A directory always has an empty Extension and a zero Size.
type ItemMetadata struct {
	Path      string
	Kind      ItemKind
	Name      string
	Extension string
	Size      uint64
	ModTime   time.Time
}

// IsFile reports whether the entry is a regular file
func (m ItemMetadata) IsFile() bool {
	return m.Kind == KindFile
}

// IsDir reports whether the entry is a directory
func (m ItemMetadata) IsDir() bool {
	return m.Kind == KindDirectory
}

// String returns a human-readable representation
func (m ItemMetadata) String() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s: %s", m.Kind, m.Path))
	if m.Kind == KindFile {
		sb.WriteString(fmt.Sprintf(" (%d bytes", m.Size))
		if m.Extension != "" {
			sb.WriteString(fmt.Sprintf(", %s", m.Extension))
		}
		sb.WriteString(")")
	}
	return sb.String()
}

// Inspect builds the metadata snapshot for path. Symlinks are followed.
// If the path does not resolve, the kind is guessed from the name (file when
// it has an extension) and the modification time falls back to now.
func Inspect(path string) ItemMetadata {
	name := filepath.Base(path)
	item := ItemMetadata{
		Path:      path,
		Kind:      KindOther,
		Name:      name,
		Extension: Extension(name),
	}

	info, err := os.Stat(path)
	if err != nil {
		if item.Extension == "" {
			item.Kind = KindDirectory
		} else {
			item.Kind = KindFile
		}
		item.ModTime = time.Now()
		return item
	}

	switch {
	case info.Mode().IsRegular():
		item.Kind = KindFile
		item.Size = uint64(info.Size())
	case info.IsDir():
		item.Kind = KindDirectory
		item.Extension = ""
	}

	item.ModTime = info.ModTime()
	if item.ModTime.IsZero() {
		item.ModTime = time.Now()
	}
	return item
}

// Exists reports whether path resolves to an existing entry
func Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Extension returns the final dot suffix of name, including the dot.
// Names without a dot, or whose only dot is the leading one (".bashrc"),
// have no extension.
func Extension(name string) string {
	ext := filepath.Ext(name)
	if ext == name {
		return ""
	}
	return ext
}

// SplitName splits name into stem and extension as Extension does
func SplitName(name string) (stem, ext string) {
	ext = Extension(name)
	return strings.TrimSuffix(name, ext), ext
}
