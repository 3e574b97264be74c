// Package cmakereply parses the CMake File API reply directory
// (<build_dir>/.cmake/api/v1/reply/) and pushes decoded targets to a
// graph.CMakeTargetWriter sink.
//
// Grounded on original_source/src/app/parsers/cmake_reply_parser.cpp: a
// minimal line-based extractor for quoted string values keyed by field
// name, per spec.md §4.5, rather than a full JSON parser -- sufficient for
// the shape of documents CMake actually emits.
package cmakereply

import (
	"bufio"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jward/kunai/internal/graph"
)

// Parser reads a CMake File API reply directory.
type Parser struct {
	writer   graph.CMakeTargetWriter
	buildDir string
}

// New returns a parser that will push decoded targets to writer.
func New(writer graph.CMakeTargetWriter) *Parser {
	return &Parser{writer: writer}
}

// Parse walks <buildDir>/.cmake/api/v1/reply/ if it exists. Absence of the
// reply directory is not an error; malformed documents are skipped rather
// than aborting the whole parse.
func (p *Parser) Parse(buildDir string) error {
	p.buildDir = buildDir
	replyDir := filepath.Join(buildDir, ".cmake", "api", "v1", "reply")

	if info, err := os.Stat(replyDir); err != nil || !info.IsDir() {
		return nil
	}

	indexFile := findLatest(replyDir, "index-")
	if indexFile == "" {
		return nil
	}

	codeModelFile := findCodeModelReference(indexFile)
	if codeModelFile == "" {
		return nil
	}

	codeModelPath := filepath.Join(replyDir, codeModelFile)
	targetFiles := findTargetReferences(codeModelPath)

	for _, tf := range targetFiles {
		target, ok := parseTargetFile(filepath.Join(replyDir, tf), buildDir)
		if !ok {
			continue
		}
		if err := p.writer.InsertCMakeTarget(target); err != nil {
			return err
		}
	}
	return nil
}

func findLatest(dir, prefix string) string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	var candidates []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, ".json") {
			candidates = append(candidates, name)
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	sort.Strings(candidates)
	return filepath.Join(dir, candidates[len(candidates)-1])
}

// extractJSONString does a best-effort scan for `"key": "value"` on a
// single line. It is not a JSON parser: it does not handle escaped quotes
// or values spanning multiple lines, which is sufficient for the flat
// field layout CMake's reply documents use for id/name/type/jsonFile/path.
func extractJSONString(line, key string) string {
	needle := `"` + key + `"`
	keyPos := strings.Index(line, needle)
	if keyPos < 0 {
		return ""
	}
	colon := strings.IndexByte(line[keyPos:], ':')
	if colon < 0 {
		return ""
	}
	rest := line[keyPos+colon:]
	first := strings.IndexByte(rest, '"')
	if first < 0 {
		return ""
	}
	second := strings.IndexByte(rest[first+1:], '"')
	if second < 0 {
		return ""
	}
	return rest[first+1 : first+1+second]
}

func findCodeModelReference(indexPath string) string {
	f, err := os.Open(indexPath)
	if err != nil {
		return ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	inCodeModel := false
	for scanner.Scan() {
		line := scanner.Text()
		if strings.Contains(line, "codemodel-v2") {
			inCodeModel = true
		}
		if inCodeModel {
			if jsonFile := extractJSONString(line, "jsonFile"); jsonFile != "" && strings.Contains(jsonFile, "codemodel-v2") {
				return jsonFile
			}
		}
	}
	return ""
}

func findTargetReferences(codeModelPath string) []string {
	f, err := os.Open(codeModelPath)
	if err != nil {
		return nil
	}
	defer f.Close()

	var targetFiles []string
	inTargets := false
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.Contains(line, `"targets"`) {
			inTargets = true
			continue
		}
		if !inTargets {
			continue
		}
		if strings.Contains(line, "]") {
			break
		}
		if jsonFile := extractJSONString(line, "jsonFile"); jsonFile != "" {
			targetFiles = append(targetFiles, jsonFile)
		}
	}
	return targetFiles
}

func parseTargetFile(path, buildDir string) (graph.CMakeTarget, bool) {
	f, err := os.Open(path)
	if err != nil {
		return graph.CMakeTarget{}, false
	}
	defer f.Close()

	var target graph.CMakeTarget
	inSources := false
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()

		if target.ID == "" {
			if id := extractJSONString(line, "id"); id != "" {
				target.ID = id
			}
		}
		if target.Name == "" {
			if name := extractJSONString(line, "name"); name != "" {
				target.Name = name
			}
		}
		if target.Kind == "" {
			if kind := extractJSONString(line, "type"); kind != "" {
				target.Kind = kind
			}
		}

		if strings.Contains(line, `"sources"`) {
			inSources = true
			continue
		}
		if inSources {
			if strings.Contains(line, "]") {
				inSources = false
				continue
			}
			if p := extractJSONString(line, "path"); p != "" {
				target.Sources = append(target.Sources, resolveSourcePath(p, buildDir))
			}
		}
	}

	return target, target.ID != ""
}

func resolveSourcePath(path, buildDir string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.ToSlash(filepath.Join(buildDir, path))
}
