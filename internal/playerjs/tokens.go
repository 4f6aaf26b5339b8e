package playerjs

import (
	"bytes"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/dop251/goja"
)

// ErrNoSignatureOps is returned when a player script has no recognizable
// signature scramble.
var ErrNoSignatureOps = errors.New("playerjs: signature operations not found")

// TokenSet is what a player script contributes to URL decipherment: the
// signature op list and, when present, the n-parameter transform.
type TokenSet struct {
	PlayerURL string
	Ops       []Op
	NFunction string

	mu      sync.Mutex
	prog    *goja.Program
	progErr error
	vm      *goja.Runtime
	nFn     func(string) string
}

// Signature deciphers an obfuscated signature.
func (t *TokenSet) Signature(s string) string {
	return ApplyOps(t.Ops, s)
}

// HasN reports whether the script carried an n-parameter transform.
func (t *TokenSet) HasN() bool {
	return t.NFunction != ""
}

const nFuncGlobal = "ytstreamN"

// TransformN runs the n-parameter transform. Calls are serialized on a
// single goja runtime per TokenSet.
func (t *TokenSet) TransformN(n string) (out string, err error) {
	if !t.HasN() {
		return n, nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.nFn == nil {
		if t.prog == nil && t.progErr == nil {
			t.prog, t.progErr = goja.Compile("n.js", nFuncGlobal+"="+t.NFunction, false)
		}
		if t.progErr != nil {
			return "", fmt.Errorf("playerjs: compile n-function: %w", t.progErr)
		}
		vm := goja.New()
		if _, err := vm.RunProgram(t.prog); err != nil {
			return "", fmt.Errorf("playerjs: load n-function: %w", err)
		}
		var fn func(string) string
		if err := vm.ExportTo(vm.Get(nFuncGlobal), &fn); err != nil {
			return "", fmt.Errorf("playerjs: export n-function: %w", err)
		}
		t.vm, t.nFn = vm, fn
	}

	defer func() {
		if r := recover(); r != nil {
			out, err = "", fmt.Errorf("playerjs: n-function panicked: %v", r)
		}
	}()
	return t.nFn(n), nil
}

const (
	jsVar      = `[a-zA-Z_\$][a-zA-Z_0-9\$]*`
	reverseDef = `:function\(a\)\{(?:return )?a\.reverse\(\)\}`
	spliceDef  = `:function\(a,b\)\{a\.splice\(0,b\)\}`
	swapDef    = `:function\(a,b\)\{var c=a\[0\];a\[0\]=a\[b(?:%a\.length)?\];a\[b(?:%a\.length)?\]=c(?:;return a)?\}`
)

var (
	helperObjPattern = regexp.MustCompile(fmt.Sprintf(
		`(?:var|let|const)\s+(%[1]s)=\{((?:(?:%[1]s%[2]s|%[1]s%[3]s|%[1]s%[4]s),?\n?)+)\}\s*;?`,
		jsVar, swapDef, spliceDef, reverseDef))
	reverseKeyPattern = regexp.MustCompile(fmt.Sprintf(`(?m)(?:^|,)(%s)%s`, jsVar, reverseDef))
	spliceKeyPattern  = regexp.MustCompile(fmt.Sprintf(`(?m)(?:^|,)(%s)%s`, jsVar, spliceDef))
	swapKeyPattern    = regexp.MustCompile(fmt.Sprintf(`(?m)(?:^|,)(%s)%s`, jsVar, swapDef))

	scrambleBody = fmt.Sprintf(`a=a\.split\([^\)]*\);\s*((?:(?:a=)?%[1]s(?:\.%[1]s|\[[^\]]+\])\(a,\d+\);?\s*)+)return a\.join\([^\)]*\)\}`, jsVar)
	scramblePatterns = []*regexp.Regexp{
		regexp.MustCompile(`function(?:\s+` + jsVar + `)?\(a\)\{` + scrambleBody),
		regexp.MustCompile(jsVar + `\s*=\s*function\(a\)\{` + scrambleBody),
	}

	// n-transform call sites: b=Name[idx](b) or b=Name(b).
	nCallPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\.get\("n"\)\)\s*&&\s*\(b=([a-zA-Z0-9$]+)(?:\[(\d+)\])?\([a-zA-Z0-9$]+\)`),
		regexp.MustCompile(`\.get\("n"\).*?&&.*?([a-zA-Z0-9$]+)(?:\[(\d+)\])?\([a-zA-Z0-9$]+\)`),
	}
)

// ExtractTokens scans a player script. A missing signature scramble is an
// error; a missing n-transform is not.
func ExtractTokens(playerURL, script string) (*TokenSet, error) {
	body := []byte(script)
	ops, err := extractOps(body)
	if err != nil {
		return nil, err
	}
	nfn, _ := extractNFunction(body)
	return &TokenSet{PlayerURL: playerURL, Ops: ops, NFunction: nfn}, nil
}

func extractOps(body []byte) ([]Op, error) {
	obj := helperObjPattern.FindSubmatch(body)
	var scramble []byte
	for _, re := range scramblePatterns {
		if m := re.FindSubmatch(body); len(m) > 1 {
			scramble = m[1]
			break
		}
	}
	if len(obj) < 3 || len(scramble) == 0 {
		return nil, ErrNoSignatureOps
	}

	keys := map[string]OpKind{}
	for re, kind := range map[*regexp.Regexp]OpKind{
		reverseKeyPattern: OpReverse,
		spliceKeyPattern:  OpSplice,
		swapKeyPattern:    OpSwap,
	} {
		if m := re.FindSubmatch(obj[2]); len(m) > 1 {
			keys[string(m[1])] = kind
		}
	}

	callPattern, err := regexp.Compile(fmt.Sprintf(
		`(?:a=)?%s(?:\.(%s)|\[(?:"(%s)"|'(%s)')\])\(a,(\d+)\)`,
		regexp.QuoteMeta(string(obj[1])), jsVar, jsVar, jsVar))
	if err != nil {
		return nil, err
	}

	var ops []Op
	for _, m := range callPattern.FindAllSubmatch(scramble, -1) {
		key := firstNonEmpty(m[1], m[2], m[3])
		kind, ok := keys[key]
		if !ok {
			continue
		}
		arg, _ := strconv.Atoi(string(m[4]))
		ops = append(ops, Op{Kind: kind, Arg: arg})
	}
	if len(ops) == 0 {
		return nil, ErrNoSignatureOps
	}
	return ops, nil
}

func extractNFunction(body []byte) (string, error) {
	for _, re := range nCallPatterns {
		m := re.FindSubmatch(body)
		if m == nil {
			continue
		}
		name := string(m[1])
		if len(m[2]) > 0 {
			idx, _ := strconv.Atoi(string(m[2]))
			resolved, err := arrayElement(body, name, idx)
			if err != nil {
				return "", err
			}
			name = resolved
		}
		return functionSource(body, name)
	}
	return "", errors.New("playerjs: n-function call site not found")
}

// arrayElement resolves `var name=[a,b,c]` to its idx-th identifier.
func arrayElement(body []byte, name string, idx int) (string, error) {
	re := regexp.MustCompile(`(?:var|let|const)\s+` + regexp.QuoteMeta(name) + `\s*=\s*\[([^\]]*)\]`)
	m := re.FindSubmatch(body)
	if m == nil {
		return "", fmt.Errorf("playerjs: n-function array %s not found", name)
	}
	parts := strings.Split(string(m[1]), ",")
	if idx < 0 || idx >= len(parts) {
		return "", fmt.Errorf("playerjs: n-function array %s has no index %d", name, idx)
	}
	return strings.TrimSpace(parts[idx]), nil
}

// functionSource returns the definition of name, from its first token to
// the matching closing brace.
func functionSource(body []byte, name string) (string, error) {
	start := -1
	for _, def := range []string{name + "=function(", name + " = function(", "function " + name + "("} {
		for off := 0; ; {
			i := bytes.Index(body[off:], []byte(def))
			if i < 0 {
				break
			}
			i += off
			if i == 0 || !isIdentByte(body[i-1]) || strings.HasPrefix(def, "function ") {
				start = i
				break
			}
			off = i + 1
		}
		if start >= 0 {
			break
		}
	}
	if start < 0 {
		return "", fmt.Errorf("playerjs: n-function %s not defined", name)
	}

	pos := start + bytes.IndexByte(body[start:], '{') + 1
	var quote byte
	for depth := 1; depth > 0; pos++ {
		if pos >= len(body) {
			return "", fmt.Errorf("playerjs: n-function %s is unterminated", name)
		}
		switch b := body[pos]; b {
		case '{':
			if quote == 0 {
				depth++
			}
		case '}':
			if quote == 0 {
				depth--
			}
		case '`', '"', '\'':
			if body[pos-1] == '\\' && (pos < 2 || body[pos-2] != '\\') {
				continue
			}
			if quote == 0 {
				quote = b
			} else if quote == b {
				quote = 0
			}
		}
	}
	return string(body[start:pos]), nil
}

func isIdentByte(b byte) bool {
	return b == '_' || b == '$' || b == '.' || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z') || ('0' <= b && b <= '9')
}

func firstNonEmpty(groups ...[]byte) string {
	for _, g := range groups {
		if len(g) > 0 {
			return string(g)
		}
	}
	return ""
}
