package ninja

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"

	"github.com/jward/kunai/internal/graph"
)

const depsMagic = "# ninjadeps\n"

// DepsParser reads a binary .ninja_deps log and pushes graph.DepsEntry
// records to a writer. Grounded on
// original_source/src/app/parsers/ninja/deps_parser.cpp.
type DepsParser struct {
	writer graph.DepsWriter
	empty  bool
}

// NewDepsParser returns a parser that will push decoded deps entries to
// writer.
func NewDepsParser(writer graph.DepsWriter) *DepsParser {
	return &DepsParser{writer: writer, empty: true}
}

// Empty reports whether Parse has pushed any deps entries yet.
func (p *DepsParser) Empty() bool {
	return p.empty
}

// Parse reads and decodes the .ninja_deps file at path.
func (p *DepsParser) Parse(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	return p.parseBytes(data)
}

func (p *DepsParser) parseBytes(data []byte) error {
	if len(data) < 16 || !bytes.Equal(data[:12], []byte(depsMagic)) {
		return fmt.Errorf("%w: bad .ninja_deps signature", graph.ErrFormat)
	}

	version := binary.LittleEndian.Uint32(data[12:16])
	if version != 3 && version != 4 {
		return fmt.Errorf("%w: unsupported .ninja_deps version %d", graph.ErrFormat, version)
	}

	pos := 16
	paths := make(map[uint32]string)
	var nextPathID uint32

	for pos < len(data) {
		if pos+4 > len(data) {
			break
		}
		header := binary.LittleEndian.Uint32(data[pos : pos+4])
		pos += 4

		isDeps := header&0x80000000 != 0
		payloadLen := int(header & 0x7FFFFFFF)
		if payloadLen == 0 {
			continue
		}
		if pos+payloadLen > len(data) {
			return fmt.Errorf("%w: truncated record at offset %d", graph.ErrFormat, pos-4)
		}
		payload := data[pos : pos+payloadLen]
		pos += payloadLen

		if !isDeps {
			if err := p.readPathRecord(payload, paths, nextPathID); err != nil {
				return err
			}
			nextPathID++
			continue
		}

		if err := p.readDepsRecord(payload, version, paths); err != nil {
			return err
		}
	}
	return nil
}

func (p *DepsParser) readPathRecord(payload []byte, paths map[uint32]string, id uint32) error {
	if len(payload) < 4 {
		return fmt.Errorf("%w: path record too short", graph.ErrFormat)
	}
	pathBytes := payload[:len(payload)-4] // trailing 4 bytes are a checksum, ignored.
	if nul := bytes.IndexByte(pathBytes, 0); nul >= 0 {
		pathBytes = pathBytes[:nul]
	}
	paths[id] = string(pathBytes)
	return nil
}

func (p *DepsParser) readDepsRecord(payload []byte, version uint32, paths map[uint32]string) error {
	tsSize := 4
	if version == 4 {
		tsSize = 8
	}
	if len(payload) < 4+tsSize {
		return fmt.Errorf("%w: deps record too short", graph.ErrFormat)
	}

	outputID := binary.LittleEndian.Uint32(payload[:4])
	var mtime uint64
	if version == 4 {
		mtime = binary.LittleEndian.Uint64(payload[4:12])
	} else {
		mtime = uint64(binary.LittleEndian.Uint32(payload[4:8]))
	}

	entry := graph.DepsEntry{MTime: mtime}
	if target, ok := paths[outputID]; ok {
		entry.Target = target
	} else {
		entry.Target = fmt.Sprintf("<unknown:%d>", outputID)
	}

	for off := 4 + tsSize; off+4 <= len(payload); off += 4 {
		depID := binary.LittleEndian.Uint32(payload[off : off+4])
		if dep, ok := paths[depID]; ok {
			entry.Deps = append(entry.Deps, dep)
		}
	}

	p.empty = false
	return p.writer.InsertDepsEntry(entry)
}
