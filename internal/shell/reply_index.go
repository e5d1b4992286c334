package shell

import (
	"fmt"
	"strconv"
	"strings"
)

// ReplyRef is a resolved reference to one assistant reply.
type ReplyRef struct {
	Index       int // 0-based position among the replies
	Description string
}

// ParseReplyIndex resolves a /copy argument against count replies.
// "1", "2", ... count back from the latest; ".1", ".2", ... count from the first.
func ParseReplyIndex(arg string, count int) (ReplyRef, error) {
	fromStart := strings.HasPrefix(arg, ".")
	num, err := strconv.Atoi(strings.TrimPrefix(arg, "."))
	if err != nil {
		return ReplyRef{}, fmt.Errorf("invalid reply index %q (use 1, 2, ... or .1, .2, ...)", arg)
	}
	if num < 1 || num > count {
		return ReplyRef{}, fmt.Errorf("reply index %s is out of range (%d replies)", arg, count)
	}

	if fromStart {
		return ReplyRef{Index: num - 1, Description: ordinal(num, false)}, nil
	}
	return ReplyRef{Index: count - num, Description: ordinal(num, true)}, nil
}

func ordinal(num int, fromEnd bool) string {
	if fromEnd {
		switch num {
		case 1:
			return "latest reply"
		case 2:
			return "previous reply"
		default:
			return fmt.Sprintf("reply %d from the end", num)
		}
	}
	switch num {
	case 1:
		return "first reply"
	case 2:
		return "second reply"
	case 3:
		return "third reply"
	default:
		return fmt.Sprintf("reply #%d", num)
	}
}
