// Package ninja parses Ninja's textual build.ninja grammar and its binary
// .ninja_deps log, pushing decoded records to a graph.BuildWriter or
// graph.DepsWriter sink.
//
// Grounded on original_source/src/app/parsers/ninja/build_parser.cpp and
// deps_parser.cpp: the variable-expansion, include/subninja, and
// build-statement decomposition rules are ported line-for-line in
// semantics (not in syntax -- this is idiomatic Go, not a transliteration).
package ninja

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jward/kunai/internal/graph"
)

// BuildParser reads a build.ninja file (and anything it pulls in via
// include/subninja) and pushes graph.BuildLink records to a writer.
type BuildParser struct {
	writer  graph.BuildWriter
	baseDir string
	visited map[string]bool
	empty   bool

	// globals accumulates top-level variable assignments across the whole
	// parse, not just the current file: include and subninja targets can
	// both read variables set before them, matching the original's single
	// running variable table rather than a fresh scope per file.
	globals map[string]string
}

// NewBuildParser returns a parser that will push decoded build statements
// to writer.
func NewBuildParser(writer graph.BuildWriter) *BuildParser {
	return &BuildParser{
		writer:  writer,
		visited: make(map[string]bool),
		empty:   true,
		globals: make(map[string]string),
	}
}

// Empty reports whether Parse has pushed any build statements yet.
func (p *BuildParser) Empty() bool {
	return p.empty
}

// Parse opens path (the top-level build.ninja) and recursively follows any
// include/subninja directives it contains. A missing top-level file is
// fatal; missing included files are tolerated.
func (p *BuildParser) Parse(path string) error {
	p.baseDir = filepath.Dir(path)
	return p.parseFile(path, false)
}

func (p *BuildParser) parseFile(path string, optional bool) error {
	if p.visited[path] {
		return nil
	}
	p.visited[path] = true

	f, err := os.Open(path)
	if err != nil {
		if optional {
			return nil
		}
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		line := scanner.Text()

		for strings.HasSuffix(line, "$") && scanner.Scan() {
			line = strings.TrimSuffix(line, "$")
			line += strings.TrimSpace(scanner.Text())
		}

		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		switch {
		case strings.HasPrefix(trimmed, "include "):
			target := strings.TrimSpace(strings.TrimPrefix(trimmed, "include "))
			target = expandVars(target, p.globals)
			if err := p.parseFile(p.resolvePath(target), true); err != nil {
				return err
			}

		case strings.HasPrefix(trimmed, "subninja "):
			target := strings.TrimSpace(strings.TrimPrefix(trimmed, "subninja "))
			target = expandVars(target, p.globals)
			if err := p.parseFile(p.resolvePath(target), true); err != nil {
				return err
			}

		case strings.HasPrefix(trimmed, "build "):
			if err := p.parseBuildStatement(trimmed); err != nil {
				return err
			}

		case strings.HasPrefix(trimmed, "rule "):
			// The rule body's indented lines (command = ..., etc.) carry no
			// information this parser needs. They fall through the switch
			// on the next iterations since none of the cases below match an
			// indented line, so nothing further is required here.

		case strings.Contains(trimmed, "=") && !strings.HasPrefix(line, " "):
			parseVariable(trimmed, p.globals)
		}
	}
	return scanner.Err()
}

func (p *BuildParser) resolvePath(path string) string {
	if path == "" || path[0] == '/' || path[0] == '\\' || p.baseDir == "" || p.baseDir == "." {
		return path
	}
	return filepath.Join(p.baseDir, path)
}

func parseVariable(line string, vars map[string]string) {
	eq := strings.Index(line, "=")
	if eq < 0 {
		return
	}
	name := strings.TrimSpace(line[:eq])
	value := strings.TrimSpace(line[eq+1:])
	vars[name] = expandVars(value, vars)
}

// expandVars applies Ninja's `$$`, `${name}`, `$name` substitution rules
// against vars. Unresolved variables expand to the empty string.
func expandVars(input string, vars map[string]string) string {
	var out strings.Builder
	out.Grow(len(input))

	for i := 0; i < len(input); i++ {
		c := input[i]
		if c != '$' || i+1 >= len(input) {
			out.WriteByte(c)
			continue
		}

		next := input[i+1]
		switch {
		case next == '$':
			out.WriteByte('$')
			i++
		case next == '{':
			end := strings.IndexByte(input[i+2:], '}')
			if end < 0 {
				out.WriteByte(c)
				continue
			}
			name := input[i+2 : i+2+end]
			out.WriteString(vars[name])
			i += 2 + end
		default:
			j := i + 1
			for j < len(input) && isNameByte(input[j]) {
				j++
			}
			out.WriteString(vars[input[i+1:j]])
			i = j - 1
		}
	}
	return out.String()
}

func isNameByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

// parseBuildStatement decodes `build outputs: rule inputs [| implicit] [|| order-only]`
// and pushes the resulting graph.BuildLink to the writer. Any indented
// edge-local variable lines that follow fall through the caller's switch
// unmatched, the same way a rule block's indented lines do, so they never
// reach here.
func (p *BuildParser) parseBuildStatement(line string) error {
	stmt := strings.TrimPrefix(line, "build ")
	stmt = strings.NewReplacer("\\", "/").Replace(stmt)

	locals := make(map[string]string, len(p.globals))
	for k, v := range p.globals {
		locals[k] = v
	}

	colon := strings.Index(stmt, ":")
	if colon < 0 {
		return nil
	}
	outputsStr := strings.TrimSpace(stmt[:colon])
	rest := strings.TrimSpace(stmt[colon+1:])

	var rule, inputsStr string
	if space := strings.IndexByte(rest, ' '); space < 0 {
		rule = rest
	} else {
		rule = rest[:space]
		inputsStr = rest[space+1:]
	}
	rule = strings.TrimSpace(rule)

	link := graph.BuildLink{Rule: rule}
	for _, tok := range strings.Fields(outputsStr) {
		link.Outputs = append(link.Outputs, expandVars(tok, locals))
	}
	if len(link.Outputs) > 0 {
		link.Target = link.Outputs[0]
	}

	explicitStr, implicitStr, orderOnlyStr := splitInputs(inputsStr)
	link.Explicit = expandFields(explicitStr, locals)
	link.Implicit = expandFields(implicitStr, locals)
	link.OrderOnly = expandFields(orderOnlyStr, locals)

	p.empty = false
	return p.writer.InsertBuildLink(link)
}

// splitInputs separates the explicit/implicit/order-only segments on the
// literal " | " / " || " separators, order-only first since it's the
// outermost delimiter.
func splitInputs(s string) (explicit, implicit, orderOnly string) {
	if idx := strings.Index(s, " || "); idx >= 0 {
		orderOnly = s[idx+4:]
		s = s[:idx]
	}
	if idx := strings.Index(s, " | "); idx >= 0 {
		implicit = s[idx+3:]
		s = s[:idx]
	}
	explicit = s
	return explicit, implicit, orderOnly
}

func expandFields(s string, vars map[string]string) []string {
	fields := strings.Fields(s)
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if expanded := expandVars(f, vars); expanded != "" {
			out = append(out, expanded)
		}
	}
	return out
}
