package classify

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/lumenlang/lumenbuild/src/core"
)

// codeFenceLang is the fenced-code-block language tag that marks a runnable
// doctest inside a package's `.lm.md` files, used during blackbox doctest
// extraction.
const codeFenceLang = "lumen"

// TargetFile is one file selected into a build target: its on-disk path.
type TargetFile struct {
	Path string
}

// Files resolves the file set for one build target at a given (backend,
// opt-level) pair :
//
//   - Source: regular files classified as source, admitted by predicate.
//   - InlineTest: identical to Source (compiled with test mode enabled by
//     the caller, not by file selection).
//   - WhiteboxTest: source files plus whitebox files, both predicate-filtered.
//   - BlackboxTest: blackbox files plus generated doctest files extracted
//     from markdown docs, both predicate-filtered.
//   - SubPackage: the manifest's explicit sub-package file list, unfiltered.
func Files(pkg *core.DiscoveredPackage, kind core.TargetKind, backend core.Backend, opt core.OptLevel) ([]string, error) {
	if kind == core.SubPackage {
		files := append([]string(nil), pkg.Manifest.SubPackageFiles...)
		sort.Strings(files)
		return files, nil
	}

	var out []string
	for _, name := range pkg.RegularFiles {
		fileKind, namePred := ClassifyFilename(name)
		admitted, err := admittedBy(pkg, name, namePred, backend, opt)
		if err != nil {
			return nil, err
		}
		if !admitted {
			continue
		}
		switch kind {
		case core.Source, core.InlineTest:
			if fileKind == SourceFile {
				out = append(out, name)
			}
		case core.WhiteboxTest:
			if fileKind == SourceFile || fileKind == WhiteboxFile {
				out = append(out, name)
			}
		case core.BlackboxTest:
			if fileKind == BlackboxFile {
				out = append(out, name)
			}
		}
	}

	if kind == core.BlackboxTest {
		for _, doc := range pkg.MarkdownDocs {
			_, namePred := ClassifyFilename(strings.TrimSuffix(doc, ".md"))
			admitted, err := admittedBy(pkg, doc, namePred, backend, opt)
			if err != nil {
				return nil, err
			}
			if !admitted {
				continue
			}
			extracted, err := extractDoctests(pkg.Root, doc)
			if err != nil {
				return nil, err
			}
			out = append(out, extracted...)
		}
	}

	sort.Strings(out)
	return out, nil
}

func admittedBy(pkg *core.DiscoveredPackage, name string, namePred Predicate, backend core.Backend, opt core.OptLevel) (bool, error) {
	combined := namePred
	if expr, ok := pkg.Manifest.SupportedTargets[name]; ok {
		manifestPred, err := EvalExpr(expr)
		if err != nil {
			return false, fmt.Errorf("package %s, file %s: %w", pkg.Fqn, name, err)
		}
		combined = And(namePred, manifestPred)
	}
	return combined(backend, opt), nil
}

// extractDoctests reads a `.lm.md` file and returns one synthetic file
// identifier per fenced `lumen` code block it contains, in document order
// ("generated doctest files extracted from Markdown").
func extractDoctests(root, docName string) ([]string, error) {
	f, err := os.Open(filepath.Join(root, docName))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var blocks []string
	inBlock := false
	index := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		switch {
		case !inBlock && strings.HasPrefix(trimmed, "```"+codeFenceLang):
			inBlock = true
		case inBlock && trimmed == "```":
			inBlock = false
			blocks = append(blocks, fmt.Sprintf("%s#doctest-%d", docName, index))
			index++
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return blocks, nil
}
