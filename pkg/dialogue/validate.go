package dialogue

import (
	"fmt"
	"strings"

	apperrors "dialogue-navigator/internal/common/errors"
)

// Validate checks the structure the traversal engine relies on and reports
// every violation at once. It works on trees built in code as well as loaded
// ones.
func Validate(t *Tree) error {
	if t == nil || t.Root == nil {
		return apperrors.NewTreeValidationFailedError([]string{"root: missing"})
	}

	var violations []string
	fail := func(path, format string, args ...interface{}) {
		violations = append(violations, path+": "+fmt.Sprintf(format, args...))
	}

	seen := map[*Node]string{}
	Walk(t.Root, func(path string, depth int, n *Node) bool {
		if first, ok := seen[n]; ok {
			fail(path, "node is already reachable from %s", first)
			return false
		}
		seen[n] = path

		if strings.TrimSpace(n.Prompt) == "" {
			fail(path, "empty prompt")
		}
		if len(n.Options) == 0 {
			fail(path, "no options")
		}

		keys := make(map[string]bool, len(n.Options))
		for _, opt := range n.Options {
			optPath := fmt.Sprintf("%s.options[%s]", path, opt.Key)
			if strings.TrimSpace(opt.Key) == "" {
				fail(optPath, "empty key")
			}
			if keys[opt.Key] {
				fail(optPath, "duplicate key %q", opt.Key)
			}
			keys[opt.Key] = true

			if strings.TrimSpace(opt.Text) == "" {
				fail(optPath, "empty text")
			}
			switch opt.Kind {
			case KindFollowup:
				if opt.Followup == nil {
					fail(optPath, "followup option without a followup node")
				}
			case KindLeaf, KindReturnToRoot:
				if opt.Followup != nil {
					fail(optPath, "%s option carries a followup node", opt.Kind)
				}
			default:
				fail(optPath, "unknown kind %d", int(opt.Kind))
			}
		}
		return true
	})

	if len(violations) > 0 {
		return apperrors.NewTreeValidationFailedError(violations)
	}
	return nil
}
