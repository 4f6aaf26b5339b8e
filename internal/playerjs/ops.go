package playerjs

import (
	"strconv"
	"strings"
)

// OpKind identifies one primitive of the signature scramble.
type OpKind byte

const (
	OpReverse OpKind = 'r'
	OpSplice  OpKind = 's'
	OpSwap    OpKind = 'w'
)

// Op is a single signature transformation step.
type Op struct {
	Kind OpKind
	Arg  int
}

func (o Op) String() string {
	if o.Kind == OpReverse {
		return "r"
	}
	return string(o.Kind) + strconv.Itoa(o.Arg)
}

func (o Op) apply(bs []byte) []byte {
	switch o.Kind {
	case OpReverse:
		for l, r := 0, len(bs)-1; l < r; l, r = l+1, r-1 {
			bs[l], bs[r] = bs[r], bs[l]
		}
	case OpSplice:
		if o.Arg >= 0 && o.Arg <= len(bs) {
			bs = bs[o.Arg:]
		}
	case OpSwap:
		if len(bs) > 0 {
			pos := o.Arg % len(bs)
			bs[0], bs[pos] = bs[pos], bs[0]
		}
	}
	return bs
}

// ApplyOps runs ops over s in order.
func ApplyOps(ops []Op, s string) string {
	bs := []byte(s)
	for _, op := range ops {
		bs = op.apply(bs)
	}
	return string(bs)
}

// FormatOps renders ops in their compact token form, e.g. "s1 r w3".
func FormatOps(ops []Op) string {
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = op.String()
	}
	return strings.Join(parts, " ")
}
