package builder

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"trailhead/internal/codec"
	"trailhead/internal/store"
)

// RecordFile records a source file: a file node named by the absolute path
// with the path delimiter, plus the file metadata row. Indexed files also
// get their full text stored so the viewer can display code. Recording the
// same path twice resolves to the existing node.
func (b *Builder) RecordFile(path string, indexed bool) (store.ElementID, error) {
	// Relative and absolute spellings of the same file must land on one
	// node, so the path is resolved before it names anything.
	path, err := filepath.Abs(path)
	if err != nil {
		return 0, fmt.Errorf("recording file: %w", err)
	}
	hierarchy := codec.NewNameHierarchy(codec.DelimiterFile, codec.NameElement{Name: path})
	serialized, err := hierarchy.SerializeName()
	if err != nil {
		return 0, err
	}

	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("recording file: %w", err)
	}
	var content string
	if indexed {
		data, err := os.ReadFile(path)
		if err != nil {
			return 0, fmt.Errorf("recording file: %w", err)
		}
		content = string(data)
	}

	var fileID store.ElementID
	err = b.db.Savepoint("record_file", func() error {
		id, err := b.nodeIfAbsent(serialized, store.NodeKindFile)
		if err != nil {
			return err
		}
		fileID = id

		node, err := b.db.GetNode(id)
		if err != nil {
			return err
		}
		if node.Kind != store.NodeKindFile {
			node.Kind = store.NodeKindFile
			if err := b.db.UpdateNode(node); err != nil {
				return err
			}
		}

		if _, err := b.db.GetFile(id); err == nil {
			return nil
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		file := store.File{
			ID:               id,
			Path:             path,
			ModificationTime: info.ModTime().Format("2006-01-02 15:04:05"),
			Indexed:          indexed,
			Complete:         true,
			LineCount:        countLines(content),
		}
		if err := b.db.NewFile(file); err != nil {
			return err
		}
		if indexed {
			return b.db.NewFileContent(id, content)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	b.logger.Debug("file recorded", zap.String("path", path), zap.Int64("id", int64(fileID)))
	return fileID, nil
}

// countLines counts the lines of a file the way a line-by-line read would:
// a trailing newline does not open another line, and a file whose text was
// never read counts as zero.
func countLines(content string) int {
	if content == "" {
		return 0
	}
	n := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}

// RecordFileLanguage sets the language of a previously recorded file.
func (b *Builder) RecordFileLanguage(fileID store.ElementID, language string) error {
	file, err := b.db.GetFile(fileID)
	if err != nil {
		return err
	}
	file.Language = language
	return b.db.UpdateFile(file)
}

// RecordLocalSymbol records a scope-local name, deduplicated by name.
func (b *Builder) RecordLocalSymbol(name string) (store.ElementID, error) {
	if id, ok := b.locals[name]; ok {
		return id, nil
	}
	ls, err := b.db.GetLocalSymbolByName(name)
	if err == nil {
		b.locals[name] = ls.ID
		return ls.ID, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return 0, err
	}
	ls, err = b.db.NewLocalSymbol(name)
	if err != nil {
		return 0, err
	}
	b.locals[name] = ls.ID
	return ls.ID, nil
}

// The location records below all attach a source range to a previously
// recorded element. They differ only in the location kind.

// RecordSymbolLocation marks where a symbol's name token appears.
func (b *Builder) RecordSymbolLocation(elementID, fileID store.ElementID, startLine, startColumn, endLine, endColumn int) error {
	return b.recordLocation(elementID, fileID, startLine, startColumn, endLine, endColumn, store.LocationToken)
}

// RecordSymbolScopeLocation marks the full extent of a symbol's body.
func (b *Builder) RecordSymbolScopeLocation(elementID, fileID store.ElementID, startLine, startColumn, endLine, endColumn int) error {
	return b.recordLocation(elementID, fileID, startLine, startColumn, endLine, endColumn, store.LocationScope)
}

// RecordSymbolSignatureLocation marks a symbol's signature.
func (b *Builder) RecordSymbolSignatureLocation(elementID, fileID store.ElementID, startLine, startColumn, endLine, endColumn int) error {
	return b.recordLocation(elementID, fileID, startLine, startColumn, endLine, endColumn, store.LocationSignature)
}

// RecordReferenceLocation marks where a reference edge occurs.
func (b *Builder) RecordReferenceLocation(referenceID, fileID store.ElementID, startLine, startColumn, endLine, endColumn int) error {
	return b.recordLocation(referenceID, fileID, startLine, startColumn, endLine, endColumn, store.LocationToken)
}

// RecordQualifierLocation marks a qualifier token of a name.
func (b *Builder) RecordQualifierLocation(elementID, fileID store.ElementID, startLine, startColumn, endLine, endColumn int) error {
	return b.recordLocation(elementID, fileID, startLine, startColumn, endLine, endColumn, store.LocationQualifier)
}

// RecordLocalSymbolLocation marks where a local symbol appears.
func (b *Builder) RecordLocalSymbolLocation(localSymbolID, fileID store.ElementID, startLine, startColumn, endLine, endColumn int) error {
	return b.recordLocation(localSymbolID, fileID, startLine, startColumn, endLine, endColumn, store.LocationLocalSymbol)
}

// RecordAtomicSourceRange marks a range that must stay whole in snippets.
func (b *Builder) RecordAtomicSourceRange(elementID, fileID store.ElementID, startLine, startColumn, endLine, endColumn int) error {
	return b.recordLocation(elementID, fileID, startLine, startColumn, endLine, endColumn, store.LocationAtomicRange)
}

func (b *Builder) recordLocation(elementID, fileID store.ElementID, startLine, startColumn, endLine, endColumn int, kind store.LocationKind) error {
	return b.db.Savepoint("record_location", func() error {
		loc, err := b.db.NewSourceLocation(fileID, startLine, startColumn, endLine, endColumn, kind)
		if err != nil {
			return err
		}
		_, err = b.db.NewOccurrence(elementID, loc.ID)
		return err
	})
}

// RecordError records an indexer diagnostic together with the range it
// points at.
func (b *Builder) RecordError(message string, fatal bool, fileID store.ElementID, startLine, startColumn, endLine, endColumn int) (store.ElementID, error) {
	var errID store.ElementID
	err := b.db.Savepoint("record_error", func() error {
		e, err := b.db.NewError(message, fatal, true, "")
		if err != nil {
			return err
		}
		errID = e.ID
		return b.recordLocation(e.ID, fileID, startLine, startColumn, endLine, endColumn, store.LocationIndexerError)
	})
	if err != nil {
		return 0, fmt.Errorf("recording error: %w", err)
	}
	return errID, nil
}
